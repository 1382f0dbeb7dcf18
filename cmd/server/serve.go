package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"storeadmin/backend/internal/config"
	addressdomain "storeadmin/backend/internal/domain/address"
	authdomain "storeadmin/backend/internal/domain/auth"
	"storeadmin/backend/internal/httpserver"
	"storeadmin/backend/internal/infrastructure/memory"
	"storeadmin/backend/internal/infrastructure/postgres"
	"storeadmin/backend/internal/infrastructure/redisstore"
	"storeadmin/backend/internal/infrastructure/token"
	"storeadmin/backend/internal/logging"
	addressusecase "storeadmin/backend/internal/usecase/address"
	authusecase "storeadmin/backend/internal/usecase/auth"
	userusecase "storeadmin/backend/internal/usecase/user"
)

const shutdownTimeout = 10 * time.Second

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API until SIGINT or SIGTERM. Postgres storage is migrated
on startup.`,
		RunE: runServe,
	}

	cmd.Flags().String("port", "", "listen port (overrides HTTP_PORT)")
	cmd.Flags().String("storage", "", "user and address storage: postgres or memory (overrides STORAGE)")
	cmd.Flags().String("token-store", "", "session storage: postgres, redis or memory (overrides TOKEN_STORE)")
	cmd.Flags().String("log-level", "", "debug, info, warn or error (overrides LOG_LEVEL)")
	cmd.Flags().String("log-format", "", "json or text (overrides LOG_FORMAT)")

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd.Flags())
	if err != nil {
		return oops.Code("CONFIG_INVALID").Wrap(err)
	}

	logger := logging.Setup("storeadmin", version, cfg.LogFormat, cfg.LogLevel, os.Stderr)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	issuer := token.NewIssuer(cfg.JWTSecret, cfg.TokenTTL, cfg.JWTIssuer, st.sessions)
	if purger, ok := st.sessions.(token.ExpiredSessionPurger); ok && cfg.TokenTTL > 0 && cfg.SessionSweepInterval > 0 {
		go token.Sweep(ctx, purger, cfg.SessionSweepInterval, logger)
	}

	services := httpserver.Services{
		Auth: authusecase.NewService(st.users, issuer,
			authusecase.WithBcryptCost(cfg.BcryptCost),
			authusecase.WithLogger(logger),
		),
		Users:     userusecase.NewService(st.users),
		Addresses: addressusecase.NewService(st.addresses),
	}

	opts := []httpserver.Option{httpserver.WithLogger(logger)}
	if cfg.MetricsEnabled {
		registry := prometheus.NewRegistry()
		registry.MustRegister(collectors.NewGoCollector())
		registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		opts = append(opts, httpserver.WithMetrics(registry))
	}
	server := httpserver.NewServer(cfg, services, opts...)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening",
			"addr", server.Addr(),
			"storage", cfg.Storage,
			"token_store", cfg.TokenStore,
		)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return oops.Code("HTTP_SERVER_FAILED").Wrap(err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
		return err
	}
	logger.Info("graceful shutdown completed")
	return nil
}

// stores holds the repositories selected by configuration.
type stores struct {
	users     authdomain.UserRepository
	addresses addressdomain.Repository
	sessions  authdomain.SessionStore
	closers   []func()
}

func (s *stores) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

func openStores(ctx context.Context, cfg config.Config, logger *slog.Logger) (*stores, error) {
	st := &stores{}

	var db *postgres.Database
	switch cfg.Storage {
	case config.BackendPostgres:
		var err error
		db, err = postgres.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		st.closers = append(st.closers, db.Close)

		if err := db.Migrate(ctx); err != nil {
			st.Close()
			return nil, oops.Code("MIGRATION_FAILED").Wrap(err)
		}
		st.users = postgres.NewUserRepository(db.Pool)
		st.addresses = postgres.NewAddressRepository(db.Pool)
	default:
		logger.Warn("using in-memory storage; data is lost on restart")
		st.users = memory.NewUserRepository()
		st.addresses = memory.NewAddressRepository()
	}

	switch cfg.TokenStore {
	case config.BackendPostgres:
		st.sessions = postgres.NewSessionRepository(db.Pool)
	case config.BackendRedis:
		client, err := redisstore.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			st.Close()
			return nil, err
		}
		st.closers = append(st.closers, func() { closeRedis(client, logger) })
		st.sessions = redisstore.NewSessionStore(client)
	default:
		st.sessions = memory.NewSessionStore()
	}

	return st, nil
}

func closeRedis(client *redis.Client, logger *slog.Logger) {
	if err := client.Close(); err != nil {
		logger.Warn("closing redis client", "error", err)
	}
}
