package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/davranaff/coffee/internal/database"
	"github.com/davranaff/coffee/internal/handler"
	"github.com/davranaff/coffee/internal/lib/email"
	"github.com/davranaff/coffee/internal/router"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 30 * time.Second

func newServeCommand() *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, the chat hub and the background workers",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			defer a.loggerService.Shutdown()

			return serve(cmd.Context(), a, migrate)
		},
	}

	cmd.Flags().BoolVar(&migrate, "migrate", true, "apply pending migrations before starting")
	return cmd
}

func serve(parent context.Context, a *app, migrate bool) error {
	log := a.log

	if migrate {
		if err := database.Migrate(parent, &log, a.cfg, -1); err != nil {
			return err
		}
	}

	if err := a.connect(); err != nil {
		return err
	}
	srv, services := a.srv, a.services

	srv.Job.InitHandlers(services.JobDependencies(email.NewClient(a.cfg, &log)))
	if err := srv.Job.Start(); err != nil {
		return err
	}

	if a.cfg.Auth.AdminEmail != "" && a.cfg.Auth.AdminPassword != "" {
		if _, err := services.Auth.EnsureAdmin(parent, a.cfg.Auth.AdminEmail, a.cfg.Auth.AdminPassword); err != nil {
			log.Error().Err(err).Msg("failed to ensure admin account")
		}
	}

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go services.Hub.Run(ctx)

	r := router.NewRouter(srv, handler.NewHandlers(srv, services), services)
	srv.SetupHTTPServer(r)

	serveErr := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	var failure error
	select {
	case failure = <-serveErr:
		log.Error().Err(failure).Msg("server stopped")
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	}

	services.Hub.Close()
	if err := shutdown(srv.Shutdown); err != nil {
		return err
	}

	if failure == nil {
		log.Info().Msg("server exited properly")
	}
	return failure
}

func shutdown(fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return fn(ctx)
}
