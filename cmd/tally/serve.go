package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"tally/internal/demoapi"
	"tally/internal/records"
)

const shutdownTimeout = 5 * time.Second

type serveOptions struct {
	addr  string
	token string
	seed  bool
}

func (c *cli) newServeDemoCmd() *cobra.Command {
	opts := serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve-demo",
		Short: "Run an in-memory backend for trying the dashboards",
		Long: `Run an in-memory backend speaking the same REST contract as the real
server: GET/POST /items, PUT/DELETE /items/{id} and GET /users. Data is lost
when the process exits.`,
		Example: `  tally serve-demo --addr :5000 --token demo
  tally login --token demo
  tally --base-url http://localhost:5000`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serveDemo(ctx, cmd, opts, nil)
		},
	}
	cmd.Flags().StringVar(&opts.addr, "addr", "127.0.0.1:5000", "Listen address")
	cmd.Flags().StringVar(&opts.token, "token", "demo", "Bearer token the server requires (empty disables the check)")
	cmd.Flags().BoolVar(&opts.seed, "seed", true, "Start with a few sample items")
	return cmd
}

func newDemoServer(opts serveOptions) *demoapi.Server {
	srv := demoapi.NewServer(opts.token, []records.User{
		{ID: "u1", Username: "admin", Role: "admin"},
		{ID: "u2", Username: "alice", Role: "user"},
	})
	if opts.seed {
		srv.Seed(
			records.ItemDraft{Title: "Buy milk", Description: "Two litres, semi-skimmed"},
			records.ItemDraft{Title: "Write report", Description: "Quarterly numbers for the **team** meeting"},
			records.ItemDraft{Title: "Renew passport", Description: "Photos are in the drawer", Completed: true},
		)
	}
	return srv
}

// serveDemo listens until ctx is done. ready, when non-nil, receives the
// bound address once the listener is open.
func serveDemo(ctx context.Context, cmd *cobra.Command, opts serveOptions, ready chan<- string) error {
	ln, err := net.Listen("tcp", opts.addr)
	if err != nil {
		return printFailure(cmd.ErrOrStderr(), "Cannot listen on "+opts.addr, err.Error(),
			"Pick another address with --addr")
	}

	httpSrv := &http.Server{
		Handler:           newDemoServer(opts).Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	addr := ln.Addr().String()
	out := cmd.OutOrStdout()
	printSuccess(out, "Demo backend listening on http://%s", addr)
	if opts.token != "" {
		cyan.Fprintf(out, "  tally login --token %s\n", opts.token)
	}
	cyan.Fprintf(out, "  tally --base-url http://%s\n", addr)
	if ready != nil {
		ready <- addr
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpSrv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	printSuccess(out, "Demo backend stopped")
	return nil
}
