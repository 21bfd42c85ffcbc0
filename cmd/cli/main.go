package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var (
	baseURL string
	timeout time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "finance-cli",
		Short: "Partner finance CLI tool",
		Long:  `A command line interface for the partner finance tracker API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the finance API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	rootCmd.AddCommand(balanceCmd(), pairwiseCmd(), summaryCmd(), ledgerCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func balanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "balance <partner-id>",
		Short: "Show a partner's aggregate balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return getJSON("/api/v1/partners/" + args[0] + "/balance")
		},
	}
}

func pairwiseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pairwise <partner-id> <other-id>",
		Short: "Show the net personal balance between two partners",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return getJSON("/api/v1/partners/" + args[0] + "/balance/with/" + args[1])
		},
	}
}

func summaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary <year> <month>",
		Short: "Show the monthly sales summary",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return getJSON(fmt.Sprintf("/api/v1/sales/summary?year=%s&month=%s", args[0], args[1]))
		},
	}
}

func ledgerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Ledger maintenance operations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "reconcile",
		Short: "Rebuild all balances from the recorded history",
		RunE: func(cmd *cobra.Command, args []string) error {
			return postJSON("/api/v1/ledger/reconcile")
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "verify",
		Short: "Check recorded balances against derived values",
		RunE: func(cmd *cobra.Command, args []string) error {
			return getJSON("/api/v1/ledger/verify")
		},
	})

	return cmd
}

func getJSON(path string) error {
	client := &http.Client{Timeout: timeout}
	resp, err := client.Get(baseURL + path)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	return renderResponse(resp)
}

func postJSON(path string) error {
	client := &http.Client{Timeout: timeout}
	resp, err := client.Post(baseURL+path, "application/json", strings.NewReader("{}"))
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	return renderResponse(resp)
}

func renderResponse(resp *http.Response) error {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("request failed (status %d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var result any
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}

	printJSON(result)
	return nil
}

func printJSON(v any) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("%v\n", v)
		return
	}
	fmt.Println(string(out))
}
