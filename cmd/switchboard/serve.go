package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/aretw0/switchboard"
	"github.com/aretw0/switchboard/internal/cli"
	"github.com/aretw0/switchboard/internal/presentation/tui"
	httpAdapter "github.com/aretw0/switchboard/pkg/adapters/http"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  `Exposes the orchestrator as a JSON API over HTTP, with optional /metrics and /events (SSE).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")
		watch, _ := cmd.Flags().GetBool("watch")

		app, err := newApp(cmd, func(o *cli.AppOptions) {
			o.Metrics = true
			o.Streams = true
		})
		if err != nil {
			return err
		}
		defer app.Close(context.Background())

		cfg := app.Config
		if addr == "" {
			addr = cfg.Server.Addr
		}

		var opts []httpAdapter.Option
		if cfg.Server.Metrics {
			opts = append(opts, httpAdapter.WithMetrics(app.Metrics.Handler()))
		}
		if cfg.Server.Events {
			opts = append(opts, httpAdapter.WithStreams(app.Streams))
		}
		srv := httpAdapter.NewServer(addr, httpAdapter.NewHandler(app.Orchestrator, opts...))

		sigCtx := cli.NewSignalContext(context.Background())
		defer sigCtx.Cancel()

		if watch || cfg.Routing.Watch {
			go func() {
				if err := cli.WatchRouting(sigCtx, app, os.Stdout); err != nil {
					app.Logger.Error("Routing watcher stopped", "err", err)
				}
			}()
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		go func() {
			tui.PrintBanner(os.Stdout, switchboard.Version)
			fmt.Printf("Starting Switchboard Server on %s\n", srv.Addr)
			serverErrors <- srv.ListenAndServe()
		}()

		// Blocking main and waiting for shutdown.
		select {
		case err := <-serverErrors:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("server error: %w", err)

		case <-sigCtx.Done():
			fmt.Printf("\nStart shutdown... Signal: %v\n", sigCtx.Signal())

			// Give outstanding requests a deadline for completion.
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			// Asking listener to shut down and shed load.
			if err := srv.Shutdown(ctx); err != nil {
				fmt.Printf("Graceful shutdown did not complete in %v: %v\n", 5*time.Second, err)
				if err := srv.Close(); err != nil {
					fmt.Printf("Error killing server: %v\n", err)
				}
			}
			fmt.Println("Switchboard Server stopped gracefully")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Address to listen on (default: server.addr from config)")
	serveCmd.Flags().BoolP("watch", "w", false, "Reload the routing table when it changes")
}
