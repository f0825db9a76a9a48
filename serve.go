package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"median/config"
	"median/database"
	"median/events"
	"median/handlers"
	"median/middleware"
	"median/notify"
	"median/store"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			logger, err := config.NewLogger(cfg.Log)
			if err != nil {
				return err
			}
			defer logger.Sync()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, logger)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	auth, err := middleware.NewAuthenticator(cfg.Auth)
	if err != nil {
		return err
	}

	s, err := loadStore(ctx, cfg, logger)
	if err != nil {
		return err
	}

	notifier, err := newNotifier(ctx, cfg.Notify)
	if err != nil {
		return err
	}
	defer notifier.Close()

	hub := events.NewHub(logger, originChecker(cfg.Server.AllowedOrigins))
	changes, unsubscribe := s.Subscribe()
	defer unsubscribe()
	go hub.Run(ctx, changes)

	gin.SetMode(cfg.Server.Mode)
	router := handlers.NewRouter(handlers.Deps{
		Store:          s,
		Notifier:       notifier,
		Hub:            hub,
		Auth:           auth,
		Logger:         logger,
		APIPrefix:      cfg.Server.APIPrefix,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting",
			zap.String("addr", srv.Addr),
			zap.String("prefix", cfg.Server.APIPrefix),
			zap.Bool("require_auth", auth.Required()),
			zap.Any("counts", s.Counts()))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}

	if cfg.Seed.SavePath != "" {
		if err := store.SaveSeedFile(shutdownCtx, cfg.Seed.SavePath, s.Snapshot()); err != nil {
			return err
		}
		logger.Info("snapshot saved", zap.String("path", cfg.Seed.SavePath))
	}
	return nil
}

// loadStore seeds a store from Postgres, a fixture file or the builtin
// seed, in that order of preference.
func loadStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*store.Store, error) {
	var (
		seed   store.Seed
		source string
		err    error
	)

	switch {
	case cfg.Seed.FromDatabase:
		source = "database"
		seed, err = seedFromDatabase(ctx, cfg.DatabaseURL, logger)
	case cfg.Seed.Path != "":
		source = cfg.Seed.Path
		seed, err = store.LoadSeedFile(cfg.Seed.Path)
	default:
		source = "builtin"
		seed, err = store.DefaultSeed()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load seed from %s: %w", source, err)
	}

	logger.Info("seed loaded", zap.String("source", source))
	return store.New(seed, store.WithLogger(logger)), nil
}

func seedFromDatabase(ctx context.Context, databaseURL string, logger *zap.Logger) (store.Seed, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	db, err := database.Connect(connectCtx, databaseURL, logger)
	if err != nil {
		return store.Seed{}, err
	}
	defer db.Close()

	return db.LoadSeed(ctx)
}

func newNotifier(ctx context.Context, cfg config.NotifyConfig) (notify.Notifier, error) {
	nc := notify.DefaultConfig()
	nc.TTL = cfg.TTL
	nc.MaxPerUser = cfg.MaxPerUser

	if cfg.Backend == "redis" {
		return notify.NewRedisNotifier(ctx, notify.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Config:   nc,
		})
	}
	return notify.NewMemoryNotifier(nc), nil
}

// originChecker accepts websocket upgrades from the CORS origins, or from
// anywhere when none are configured.
func originChecker(origins []string) func(*http.Request) bool {
	if len(origins) == 0 {
		return nil
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || slices.Contains(origins, origin)
	}
}
