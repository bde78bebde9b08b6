// Command coffee runs the coffee shop API and its maintenance tasks.
package main

import (
	"fmt"
	"os"

	"github.com/davranaff/coffee/internal/config"
	"github.com/davranaff/coffee/internal/logger"
	"github.com/davranaff/coffee/internal/repository"
	"github.com/davranaff/coffee/internal/server"
	"github.com/davranaff/coffee/internal/service"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:           "coffee",
		Short:         "Coffee shop ordering API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newServeCommand(),
		newMigrateCommand(),
		newSeedCommand(),
		newCreateAdminCommand(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app is what every command needs: config and logging, plus the server
// container and services for commands that touch the database.
type app struct {
	cfg           *config.Config
	log           zerolog.Logger
	loggerService *logger.LoggerService
	srv           *server.Server
	services      *service.Services
}

func loadApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	loggerService := logger.NewLoggerService(cfg.Observability)
	log := logger.NewLoggerWithService(cfg.Observability, loggerService)

	return &app{cfg: cfg, log: log, loggerService: loggerService}, nil
}

// connect builds the server container and the services on top of it.
func (a *app) connect() error {
	srv, err := server.New(a.cfg, &a.log, a.loggerService)
	if err != nil {
		return fmt.Errorf("failed to initialize server: %w", err)
	}

	services, err := service.NewServices(srv, repository.NewRepositories(srv))
	if err != nil {
		return fmt.Errorf("could not create services: %w", err)
	}

	a.srv = srv
	a.services = services
	return nil
}

func (a *app) close() {
	if a.srv != nil {
		if err := a.srv.DB.Close(); err != nil {
			a.log.Warn().Err(err).Msg("failed to close database")
		}
		if a.srv.Redis != nil {
			_ = a.srv.Redis.Close()
		}
		if a.srv.Job != nil {
			a.srv.Job.Client.Close()
		}
	}
	a.loggerService.Shutdown()
}
