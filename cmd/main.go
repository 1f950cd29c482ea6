package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/touchline/pickscore/internal/adapters/cache"
	"github.com/touchline/pickscore/internal/adapters/http/api"
	"github.com/touchline/pickscore/internal/adapters/repository"
	"github.com/touchline/pickscore/internal/app"
	"github.com/touchline/pickscore/internal/config"
	"github.com/touchline/pickscore/pkg/logger"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 15 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func main() {
	// A missing .env is fine; container environments inject vars directly.
	_ = godotenv.Load()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	store, cleanup, err := buildStore(ctx, cfg, log)
	if err != nil {
		log.Error(ctx, "failed to build store", logger.Error(err))
		return
	}
	defer cleanup()

	opts := []app.Option{
		app.WithLogger(log),
		app.WithWorkerCount(cfg.GradeWorkerCount),
	}
	if !cfg.DisableCache {
		mem := cache.NewMemory(cache.WithMaxEntries(cfg.CacheMaxEntries))
		ttl := time.Duration(cfg.CacheTTLSeconds) * time.Second
		opts = append(opts, app.WithCache(cache.NewCoordinator(mem, cache.WithTTL(ttl), cache.WithLogger(log))))
	}
	svc := app.New(store, opts...)

	r := mux.NewRouter()
	api.NewServer(svc).Register(r)

	corsHandler := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{"GET", "POST", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           corsHandler(r),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
		}
	}()

	<-ctx.Done()
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}
	log.Info(ctx, "server stopped")
}

// buildStore selects postgres when a database URL is configured and the
// in-memory store otherwise.
func buildStore(ctx context.Context, cfg *config.Config, log logger.Logger) (repository.Store, func(), error) {
	if cfg.DatabaseURL == "" {
		log.Info(ctx, "no database_url configured; using in-memory store")
		return repository.NewMemStore(), func() {}, nil
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	poolCfg.MaxConns = int32(cfg.DBMaxConns)
	poolCfg.MinConns = int32(cfg.DBMinConns)
	poolCfg.MaxConnLifetime = time.Hour
	poolCfg.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	log.Info(ctx, "connected to postgres")
	return repository.NewPGStore(pool), pool.Close, nil
}
