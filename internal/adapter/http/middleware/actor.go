package middleware

import (
	"net/http"

	"github.com/annuu1/finance-partner/internal/domain"
)

// ActorHeader carries the acting partner's ID for audit attribution.
const ActorHeader = "X-Actor-ID"

// Actor propagates the acting partner from the request header into the
// context so audit records name who performed each mutation.
func Actor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if actor := r.Header.Get(ActorHeader); actor != "" {
			r = r.WithContext(domain.WithActor(r.Context(), actor))
		}

		next.ServeHTTP(w, r)
	})
}
