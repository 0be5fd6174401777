package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"finitefield.org/boardgame-store/internal/store/catalog"
	"finitefield.org/boardgame-store/internal/store/config"
	"finitefield.org/boardgame-store/internal/store/httpserver"
	"finitefield.org/boardgame-store/internal/store/login"
	"finitefield.org/boardgame-store/internal/store/observability"
	"finitefield.org/boardgame-store/internal/store/session"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP storefront",
	RunE:  runServe,
}

func loadConfig() (config.Config, error) {
	var opts []config.Option
	if configFile != "" {
		opts = append(opts, config.WithConfigFile(configFile))
	}
	return config.Load(opts...)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	baseLogger, err := observability.NewLogger(cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("initialise logger: %w", err)
	}
	defer func() {
		_ = baseLogger.Sync()
	}()
	logger := baseLogger.Named("store").With(zap.String("env", cfg.Environment))

	if cfg.Session.Ephemeral {
		logger.Warn("session keys not configured; using ephemeral keys, sessions will not survive a restart")
	}

	games, err := catalog.Load(cfg.Catalog.File)
	if err != nil {
		return err
	}

	sessions, err := session.NewManager(session.Config{
		CookieName:   cfg.Session.CookieName,
		HashKey:      cfg.Session.HashKey,
		BlockKey:     cfg.Session.BlockKey,
		CookieSecure: cfg.Session.CookieSecure,
		IdleTimeout:  cfg.Session.IdleTimeout,
	})
	if err != nil {
		return fmt.Errorf("initialise sessions: %w", err)
	}

	srv, err := httpserver.New(httpserver.Config{
		Address:          cfg.Server.Addr,
		Catalog:          catalog.NewStaticService(games),
		Sessions:         sessions,
		Authenticator:    login.NewStubAuthenticator(cfg.Login.Latency),
		Logger:           logger,
		RedirectDelay:    cfg.Login.RedirectDelay,
		CSRFCookieSecure: cfg.Session.CookieSecure,
		ReadTimeout:      cfg.Server.ReadTimeout,
		WriteTimeout:     cfg.Server.WriteTimeout,
		IdleTimeout:      cfg.Server.IdleTimeout,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	logger.Info("storefront listening", zap.String("addr", cfg.Server.Addr), zap.Int("games", games.Len()))

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
