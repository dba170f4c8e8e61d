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

	"github.com/spf13/cobra"

	"github.com/gogpu/compose/internal/server"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP render server",
		Long:  `Starts the render service: POST /render and /preview produce images, GET and PUT /template administer the stored template.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			if listen, _ := cmd.Flags().GetString("listen"); listen != "" {
				a.cfg.Listen = listen
			}
			return runServe(cmd.Context(), a)
		},
	}
	cmd.Flags().StringP("listen", "l", "", "Address to listen on; overrides the configuration")
	return cmd
}

func runServe(ctx context.Context, a *app) error {
	st, release, err := a.store(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = release() }()

	metrics := server.NewMetrics()
	renderer, err := a.renderer(metrics.Acquirer(a.loader()))
	if err != nil {
		return err
	}

	srv := server.New(renderer, st,
		server.WithMetrics(metrics),
		server.WithLogger(a.logger),
		server.WithTimeout(a.cfg.Render.Timeout),
		server.WithOutputDir(a.cfg.Output.Dir, a.cfg.Output.BaseURL),
	)
	httpSrv := &http.Server{
		Addr:              a.cfg.Listen,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)
	go func() {
		a.logger.Info("starting server", "addr", httpSrv.Addr, "template_backend", a.cfg.Template.Backend)
		serverErrors <- httpSrv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		a.logger.Info("shutting down", "signal", sig.String())

		// Give outstanding requests a deadline for completion.
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := httpSrv.Shutdown(ctx); err != nil {
			a.logger.Error("graceful shutdown did not complete", "timeout", shutdownTimeout, "error", err)
			return httpSrv.Close()
		}
		a.logger.Info("server stopped")
		return nil
	}
}
