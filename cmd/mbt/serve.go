package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aretw0/mbtassist"
	"github.com/aretw0/mbtassist/internal/presentation/table"
	"github.com/aretw0/mbtassist/internal/presentation/tui"
	httpAdapter "github.com/aretw0/mbtassist/pkg/adapters/http"
	"github.com/aretw0/mbtassist/pkg/generator"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP editing API",
		Long: `Serves the model editing API, test generation, CSV and Mermaid export, and
Prometheus metrics on /metrics. With --open the named project is loaded first.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("addr") {
				a.cfg.HTTP.Addr, _ = cmd.Flags().GetString("addr")
			}

			reg := prometheus.NewRegistry()
			reg.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)

			ws := httpAdapter.NewWorkspace(nil)
			if name, _ := cmd.Flags().GetString("open"); name != "" {
				doc, err := a.store.Load(cmd.Context(), name)
				if err != nil {
					return fmt.Errorf("failed to open project %q: %w", name, err)
				}
				if _, err := ws.Replace(doc); err != nil {
					return err
				}
			}

			server, err := httpAdapter.New(cmd.Context(),
				httpAdapter.WithWorkspace(ws),
				httpAdapter.WithStore(a.store),
				httpAdapter.WithLocker(a.locker),
				httpAdapter.WithLogger(a.logger),
				httpAdapter.WithRegistry(reg),
				httpAdapter.WithGeneratorOptions(
					generator.WithSentinel(a.cfg.Sentinel),
					generator.WithMaxPaths(a.cfg.MaxPaths),
				),
			)
			if err != nil {
				return err
			}

			srv := &http.Server{
				Addr:              a.cfg.HTTP.Addr,
				Handler:           server,
				ReadHeaderTimeout: 10 * time.Second,
			}

			if table.IsTerminal(os.Stderr) {
				tui.PrintBanner(cmd.ErrOrStderr(), mbtassist.Version)
			}

			// Channel to listen for errors coming from the listener.
			serverErrors := make(chan error, 1)

			go func() {
				a.logger.Info("HTTP server listening", "address", srv.Addr, "store", a.cfg.Store.Kind)
				serverErrors <- srv.ListenAndServe()
			}()

			// Channel to listen for interrupt or terminate signals.
			shutdown := make(chan os.Signal, 1)
			signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(shutdown)

			// Blocking main and waiting for shutdown.
			select {
			case err := <-serverErrors:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return fmt.Errorf("server error: %w", err)

			case sig := <-shutdown:
				a.logger.Info("shutdown started", "signal", sig.String())

				// Give outstanding requests a deadline for completion.
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()

				// Asking listener to shut down and shed load.
				if err := srv.Shutdown(ctx); err != nil {
					a.logger.Error("graceful shutdown did not complete", "timeout", 5*time.Second, "error", err)
					if err := srv.Close(); err != nil {
						return fmt.Errorf("could not stop server: %w", err)
					}
				}
				a.logger.Info("HTTP server stopped gracefully")
				return nil
			}
		},
	}

	cmd.Flags().String("addr", ":8080", "Address to listen on")
	cmd.Flags().String("open", "", "Load this stored project into the workspace at startup")
	return cmd
}
