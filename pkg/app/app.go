// Package app wires the store, services and router together.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/wadjakorntonsri/shortly/pkg/adapters/handler"
	"github.com/wadjakorntonsri/shortly/pkg/adapters/repository"
	"github.com/wadjakorntonsri/shortly/pkg/config"
	"github.com/wadjakorntonsri/shortly/pkg/core/services"
	"github.com/wadjakorntonsri/shortly/pkg/ports"
)

type Application struct {
	Config   *config.Config
	Repo     ports.StateRepository
	State    *services.StateStore
	Registry *services.LinkRegistry
	Accounts *services.AccountService
	Tokens   *services.TokenService
	Handler  http.Handler
	log      *slog.Logger
}

// New opens the configured store and builds the router on top of it.
func New(ctx context.Context, cfg *config.Config, log *slog.Logger) (*Application, error) {
	repo, err := repository.Open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.StoreDriver, err)
	}
	return NewWithRepository(cfg, repo, log), nil
}

// NewWithRepository builds the application on an already opened store.
func NewWithRepository(cfg *config.Config, repo ports.StateRepository, log *slog.Logger) *Application {
	state := services.NewStateStore(repo)
	tokens := services.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	registry := services.NewLinkRegistry(state,
		services.WithBaseURL(cfg.BaseURL),
		services.WithDefaultTTL(cfg.DefaultTTLSeconds),
	)
	accounts := services.NewAccountService(state, tokens)

	return &Application{
		Config:   cfg,
		Repo:     repo,
		State:    state,
		Registry: registry,
		Accounts: accounts,
		Tokens:   tokens,
		Handler:  handler.NewRouter(cfg, registry, accounts, tokens, log),
		log:      log,
	}
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (a *Application) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:         ":" + a.Config.Port,
		Handler:      a.Handler,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("server starting", "addr", server.Addr, "store", a.Config.StoreDriver, "base_url", a.Config.BaseURL)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (a *Application) Close() error {
	return a.Repo.Close()
}
