package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/spf13/cobra"
)

type options struct {
	baseURL string
	timeout time.Duration
	token   string
	key     string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "coinledger-cli",
		Short:         "Coinledger CLI tool",
		Long:          `A command line interface for interacting with the coinledger API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.baseURL, "url", "http://localhost:8080", "Base URL of the coinledger API")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "Request timeout")
	rootCmd.PersistentFlags().StringVar(&opts.token, "token", os.Getenv("COINLEDGER_TOKEN"), "Bearer token (defaults to $COINLEDGER_TOKEN)")
	rootCmd.PersistentFlags().StringVar(&opts.key, "idempotency-key", "", "Idempotency-Key for mutating requests (random when empty)")

	rootCmd.AddCommand(
		newAccountCmd(opts),
		newEventsCmd(opts),
		newAdminCmd(opts),
		newJobsCmd(opts),
		newReconcileCmd(opts),
		newPricesCmd(opts),
		newTokenCmd(),
		newMigrateCmd(),
	)

	return rootCmd
}

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("request failed (status %d): %s", e.Status, strings.TrimSpace(e.Body))
}

// do sends one request and pretty-prints the JSON answer to out. Re-running
// a mutating command with the same --idempotency-key replays the first answer.
func (o *options) do(ctx context.Context, out io.Writer, method, path string, body any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, strings.TrimRight(o.baseURL, "/")+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method != http.MethodGet {
		key := o.key
		if key == "" {
			key = ulid.Make().String()
		}
		req.Header.Set("Idempotency-Key", key)
	}
	if o.token != "" {
		req.Header.Set("Authorization", "Bearer "+o.token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("making request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	// 207 carries a partially failed job; print it and still fail.
	if resp.StatusCode >= 300 || resp.StatusCode == http.StatusMultiStatus {
		if resp.StatusCode == http.StatusMultiStatus {
			printJSON(out, data)
		}
		return &APIError{Status: resp.StatusCode, Body: string(data)}
	}

	if resp.StatusCode != http.StatusNoContent {
		printJSON(out, data)
	}
	return nil
}

func printJSON(out io.Writer, data []byte) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		fmt.Fprintln(out, string(data))
		return
	}
	fmt.Fprintln(out, buf.String())
}
