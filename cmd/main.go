package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"

	_ "task_tracker/docs"
	"task_tracker/internal/config"
	"task_tracker/internal/handlers"
	"task_tracker/internal/logger"
	"task_tracker/internal/observability"
	"task_tracker/internal/repository"
	"task_tracker/internal/repository/db"
	"task_tracker/internal/server"
	"task_tracker/internal/service"
)

// @title                       Task Tracker API
// @version                     1.0
// @description                 Multi-user task tracker with bearer-token auth.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	// TASKS_CONFIG_FILE points at an explicit config file; otherwise configs/config.yml is optional.
	cfg, err := config.Load(os.Getenv("TASKS_CONFIG_FILE"))
	if err != nil {
		logger.Get(logger.InfoLevel).Fatalw("error reading config", "err", err)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	defer func() { _ = log.Sync() }()

	if cfg.UsesDefaultSecret() {
		log.Warnw("auth.secret is the demo default; set TASKS_AUTH_SECRET")
	}

	repos, closeStore, err := openStore(cfg, log)
	if err != nil {
		log.Fatalw("failed to init store", "driver", cfg.Store.Driver, "err", err)
	}
	defer closeStore()

	services, err := buildServices(cfg, repos, log)
	if err != nil {
		log.Fatalw("failed to init services", "err", err)
	}

	metrics := observability.NewMetrics()
	apiHandler := handlers.NewHandler(services, log, metrics)

	srv := server.New(server.Options{
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
	})
	runHTTPServer(srv, cfg.Port, apiHandler, log)

	waitForShutdown(srv, cfg, log)
}

// openStore picks the repository backend. Both default to process memory.
func openStore(cfg config.Config, log *logger.Logger) (*repository.Repository, func(), error) {
	if cfg.Store.Driver != config.DriverSQLite {
		log.Infow("store_opened", "driver", config.DriverMemory)
		return repository.NewMemoryRepository(), func() {}, nil
	}

	conn, err := db.InitDB(cfg.Store.Path)
	if err != nil {
		return nil, nil, err
	}
	log.Infow("store_opened", "driver", config.DriverSQLite, "path", cfg.Store.Path)
	return repository.NewSQLiteRepository(conn), func() { closeDB(conn, log) }, nil
}

func closeDB(conn *sql.DB, log *logger.Logger) {
	if err := conn.Close(); err != nil {
		log.Errorw("failed to close sqlite", "err", err)
	}
}

func buildServices(cfg config.Config, repos *repository.Repository, log *logger.Logger) (*service.Service, error) {
	hasher, err := service.NewPasswordHasher(cfg.Auth.Hasher)
	if err != nil {
		return nil, err
	}
	tokens, err := service.NewTokenManager(cfg.Auth.Secret)
	if err != nil {
		return nil, err
	}
	return service.NewService(repos, service.Deps{
		Hasher:   hasher,
		Tokens:   tokens,
		TokenTTL: cfg.Auth.TokenTTL,
		Log:      log,
	})
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		log.Infow("http_listening", "port", port)
		if err := srv.Run(port, handler.InitRoutes()); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(srv *server.Server, cfg config.Config, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "err", err)
	}
}
