package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"cquiz-service/internal/config"
	"cquiz-service/internal/dashboard"
	"cquiz-service/internal/domain"
	"cquiz-service/internal/identity"
	pgsink "cquiz-service/internal/infra/postgres"
	"cquiz-service/internal/logging"
	"cquiz-service/internal/repo"
	"cquiz-service/internal/store"
	memorystore "cquiz-service/internal/store/memory"
	redisstore "cquiz-service/internal/store/redis"
	sqlitestore "cquiz-service/internal/store/sqlite"
	transport "cquiz-service/internal/transport/http"
)

// NewServeCmd builds the CLI subcommand to start the service.
func NewServeCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the quiz service",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), *configPath, *port)
		},
	}
}

func runServe(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log, err := logging.Init(cfg.Log.Level, cfg.Log.File)
	if err != nil {
		return err
	}
	defer log.Sync()

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	durable, closeStore, err := openDurableStore(cfg, log)
	if err != nil {
		return err
	}
	if closeStore != nil {
		defer closeStore()
	}

	var sink repo.RemoteSink
	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
		sink = pgsink.NewSink(pool)
		log.Info("remote mirror enabled")
	}

	hooks := repo.Hooks{
		Sink:   sink,
		Notify: func(message string) { log.Info(message) },
	}
	tests := repo.NewTestRepository(durable, cfg.Storage.Keys.Tests, hooks, log)
	results := repo.NewResultRepository(durable, cfg.Storage.Keys.Results, log)

	if err := seedSampleTest(ctx, tests); err != nil {
		log.Warn("seeding sample test failed", zap.Error(err))
	}

	interval := config.IntervalDuration(cfg.Dashboard.PollInterval, dashboard.DefaultInterval)
	wsHandler := transport.NewWSHandler(identity.DefaultDirectory(), tests, results, cfg.Storage.Keys.User, interval, log)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", wsHandler.ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info("starting quiz service", zap.String("port", finalPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("failed to start server", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info("shutting down server")
	case <-ctx.Done():
		log.Info("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// openDurableStore picks the durable KV backend: Redis when configured,
// otherwise SQLite when a path is set, otherwise in-process memory.
func openDurableStore(cfg config.Config, log *zap.Logger) (store.KV, func(), error) {
	if cfg.Storage.Redis.Addr != "" {
		client := goredis.NewClient(&goredis.Options{
			Addr:     cfg.Storage.Redis.Addr,
			Password: cfg.Storage.Redis.Password,
			DB:       cfg.Storage.Redis.DB,
		})
		log.Info("using redis durable store", zap.String("addr", cfg.Storage.Redis.Addr))
		return redisstore.NewStore(client, cfg.Storage.Redis.Prefix), func() { _ = client.Close() }, nil
	}
	if cfg.Storage.SQLitePath != "" {
		s, err := sqlitestore.NewStore(cfg.Storage.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		log.Info("using sqlite durable store", zap.String("path", cfg.Storage.SQLitePath))
		return s, func() { _ = s.Close() }, nil
	}
	log.Info("using in-memory durable store")
	return memorystore.NewStore(), nil, nil
}

// seedSampleTest makes a fresh instance demo-able without a teacher login.
func seedSampleTest(ctx context.Context, tests *repo.TestRepository) error {
	existing, err := tests.List(ctx)
	if err != nil || len(existing) > 0 {
		return err
	}
	_, err = tests.Save(ctx, domain.Test{
		Title:     "Sample: Mental Arithmetic",
		CreatedBy: "TCH001",
		Questions: []domain.Question{
			{Text: "What is 2 + 2?", Options: []string{"3", "4", "5"}, CorrectIndex: 1},
			{Text: "What is 9 x 3?", Options: []string{"27", "21", "18"}, CorrectIndex: 0},
		},
	})
	return err
}
