package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/at-ishikawa/studykit/internal/bootstrap"
	"github.com/at-ishikawa/studykit/internal/config"
	"github.com/at-ishikawa/studykit/internal/database"
	"github.com/at-ishikawa/studykit/schemas"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loadConfig() > %w", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("zap.NewProduction() > %w", err)
	}

	app := bootstrap.New(logger, shutdownTimeout)
	app.AddShutdownHook("logger", func(_ context.Context) error {
		_ = logger.Sync()
		return nil
	})

	db, err := database.Open(cfg.Database)
	if err != nil {
		return fmt.Errorf("database.Open() > %w", err)
	}
	app.AddShutdownHook("database", func(_ context.Context) error {
		return db.Close()
	})

	ctx := context.Background()
	if err := database.Migrate(ctx, db, schemas.Migrations); err != nil {
		return fmt.Errorf("database.Migrate() > %w", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			logger.Warn("health check failed", zap.Error(err))
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: corsMiddleware(cfg.Server.CORS, mux),
	}
	app.AddShutdownHook("http server", server.Shutdown)

	return app.Run(ctx, func(ctx context.Context) error {
		logger.Info("starting server", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server.ListenAndServe() > %w", err)
		}
		<-ctx.Done()
		return nil
	})
}

func loadConfig() (*config.Config, error) {
	configFile := os.Getenv("STUDYKIT_CONFIG")
	loader, err := config.NewConfigLoader(configFile)
	if err != nil {
		return nil, fmt.Errorf("config.NewConfigLoader() > %w", err)
	}
	return loader.Load()
}

func corsMiddleware(cfg config.CORSConfig, next http.Handler) http.Handler {
	allowed := map[string]bool{}
	for _, origin := range cfg.AllowedOrigins {
		allowed[origin] = true
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := r.Header.Get("Origin"); allowed[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.Header().Set("Access-Control-Max-Age", "3600")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
