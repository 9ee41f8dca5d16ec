// Package main initializes and starts the admin dashboard backend,
// setting up configuration, logging, the database store, repositories,
// services and HTTP handlers.
package main

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	nethttp "net/http"

	"github.com/atinyakov/AdminBoard/internal/certgen"
	"github.com/atinyakov/AdminBoard/internal/config"
	"github.com/atinyakov/AdminBoard/internal/db"
	"github.com/atinyakov/AdminBoard/internal/logger"
	"github.com/atinyakov/AdminBoard/internal/middleware"
	"github.com/atinyakov/AdminBoard/internal/repository"
	"github.com/atinyakov/AdminBoard/internal/server/handler/http"
	"github.com/atinyakov/AdminBoard/internal/service"
	"go.uber.org/zap"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Parse command-line, file and environment configuration.
	options, err := config.Parse()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	// Initialize structured logging.
	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init(options.LogLevel); err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(2)
	}
	zapLogger := log.Log

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Open the store and create missing tables.
	store, err := db.Open(ctx, options.Driver, options.DatabaseDSN, options.MaxConns)
	if err != nil {
		zapLogger.Fatal("cannot init database", zap.Error(err))
	}
	defer func() {
		if err := store.Close(); err != nil {
			zapLogger.Error("failed to close database", zap.Error(err))
		}
	}()

	// Watch the store in the background for /healthz.
	health := db.StartHealthCheck(ctx, store.DB, options.HealthInterval, zapLogger)

	// Initialize repositories for both resource tables and users.
	articleRepo := repository.NewResourceRepository(store.DB, store.Dialect, repository.ArticleSchema(options.MaxPageLimit))
	roomRepo := repository.NewResourceRepository(store.DB, store.Dialect, repository.MeetingRoomSchema(options.MaxPageLimit))
	userRepo := repository.NewUserRepository(store.DB, store.Dialect)

	// Initialize business-logic services.
	authService := service.NewAuthService(userRepo)
	authenticator, err := service.NewAuthenticator(options.AuthMode, authService)
	if err != nil {
		zapLogger.Fatal("invalid auth mode", zap.Error(err))
	}

	routerOpts := http.RouterOptions{
		Apps: options.Apps,
		Resources: map[string]*http.ResourceHandler{
			"article":     {Service: service.NewResourceService(articleRepo), Logger: zapLogger},
			"meetingroom": {Service: service.NewResourceService(roomRepo), Logger: zapLogger},
		},
		Auth: &http.AuthHandler{
			Authenticator: authenticator,
			Users:         authService,
			Logger:        zapLogger,
		},
		Health:         &http.HealthHandler{Health: health},
		AllowedOrigins: options.AllowedOrigins,
		Logger:         zapLogger,
	}
	if options.RequireToken {
		routerOpts.RequireToken = middleware.RequireToken(authService)
	}

	server := &nethttp.Server{
		Addr:              options.Addr,
		Handler:           http.NewRouter(routerOpts),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Load server TLS certificate and key when HTTPS is configured.
	if options.TLSCert != "" {
		tlsConfig, err := certgen.LoadServerTLS(options.TLSCert, options.TLSKey)
		if err != nil {
			zapLogger.Fatal("failed to load server TLS cert/key", zap.Error(err))
		}
		server.TLSConfig = tlsConfig
	}

	errCh := make(chan error, 1)
	go func() {
		zapLogger.Info("starting server",
			zap.String("addr", options.Addr),
			zap.String("driver", store.Dialect.String()),
			zap.String("auth_mode", options.AuthMode),
			zap.Bool("tls", options.TLSCert != ""),
		)
		if server.TLSConfig != nil {
			errCh <- server.ListenAndServeTLS("", "")
			return
		}
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, nethttp.ErrServerClosed) {
			zapLogger.Error("server stopped", zap.Error(err))
		}
	case <-ctx.Done():
		zapLogger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			zapLogger.Error("graceful shutdown failed", zap.Error(err))
		}
	}
}
