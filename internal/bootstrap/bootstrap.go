// Package bootstrap provides application lifecycle helpers.
package bootstrap

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// App manages application lifecycle with graceful shutdown support.
type App struct {
	logger          *zap.Logger
	shutdownTimeout time.Duration

	mu    sync.Mutex
	hooks []hook
}

type hook struct {
	name string
	fn   func(ctx context.Context) error
}

// New creates a new App. Shutdown hooks share the given timeout.
func New(logger *zap.Logger, shutdownTimeout time.Duration) *App {
	return &App{
		logger:          logger,
		shutdownTimeout: shutdownTimeout,
	}
}

// AddShutdownHook registers a named function to call during graceful
// shutdown. Hooks run in reverse order (LIFO). Thread-safe.
func (a *App) AddShutdownHook(name string, fn func(ctx context.Context) error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.hooks = append(a.hooks, hook{name: name, fn: fn})
}

// Run sets up signal handling and executes the run function. On SIGINT or
// SIGTERM it calls registered shutdown hooks in LIFO order. If run returns an
// error before a signal, that error is returned.
func (a *App) Run(ctx context.Context, run func(ctx context.Context) error) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		if err := run(ctx); err != nil {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx := context.Background()
		if a.shutdownTimeout > 0 {
			var cancelShutdown context.CancelFunc
			shutdownCtx, cancelShutdown = context.WithTimeout(shutdownCtx, a.shutdownTimeout)
			defer cancelShutdown()
		}
		return a.shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (a *App) shutdown(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	var errs []error
	for i := len(a.hooks) - 1; i >= 0; i-- {
		h := a.hooks[i]
		a.logger.Info("running shutdown hook", zap.String("hook", h.name))
		if err := h.fn(ctx); err != nil {
			a.logger.Error("shutdown hook failed", zap.String("hook", h.name), zap.Error(err))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
