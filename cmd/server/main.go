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

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"privacyhub/internal/config"
	"privacyhub/internal/crypto"
	"privacyhub/internal/db"
	"privacyhub/internal/logging"
	"privacyhub/internal/observability"
	"privacyhub/internal/server"
	"privacyhub/internal/services"
	"privacyhub/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Development())
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	identities, closeDB, err := openIdentities(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeDB()

	metrics := observability.NewMetrics()
	catalogue := store.DefaultCatalogue()
	profiles := store.NewMemoryProfiles(catalogue)

	tokens := services.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	revocations := services.NewRevocations(cfg.RevocationCapacity, cfg.TokenTTL)
	auth, err := services.NewAuthService(identities, profiles, tokens, cfg.BcryptCost, logger, metrics)
	if err != nil {
		return fmt.Errorf("auth service: %w", err)
	}
	scans := services.NewScanService(store.NewMemoryScans(), services.ScanConfig{
		Delay:     cfg.ScanDelay,
		Timeout:   cfg.ScanTimeout,
		Workers:   cfg.ScanWorkers,
		QueueSize: cfg.ScanQueueSize,
	}, logger, metrics)

	handler := server.NewRouter(server.Deps{
		Logger:      logger,
		Metrics:     metrics,
		CORSOrigins: cfg.CORSOrigins,
		Auth:        auth,
		Tokens:      tokens,
		Revocations: revocations,
		Scans:       scans,
		Identities:  identities,
		Profiles:    profiles,
		Alerts:      store.NewMemoryAlerts(catalogue),
		Checklists:  store.NewMemoryChecklists(catalogue),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return scans.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutdown initiated")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("server stopped")
	return nil
}

// openIdentities picks the credential backend. Without DATABASE_URL
// identities live in memory and are lost on restart.
func openIdentities(ctx context.Context, cfg *config.Config, logger *zap.Logger) (store.IdentityStore, func(), error) {
	if cfg.DatabaseURL == "" {
		logger.Warn("DATABASE_URL not set; identities are kept in memory")
		return store.NewMemoryIdentities(), func() {}, nil
	}

	sealer, err := crypto.NewSealer(cfg.EncryptionKey, cfg.BlindIndexKey)
	if err != nil {
		return nil, nil, fmt.Errorf("sealer: %w", err)
	}
	conn, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.RunMigrations(ctx, conn); err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("migrations: %w", err)
	}
	logger.Info("identities backed by postgres")
	return store.NewPostgresIdentities(conn, sealer), func() { conn.Close() }, nil
}
