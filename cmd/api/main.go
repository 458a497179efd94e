// Command api serves the chat REST endpoints and the event socket.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/PaulBabatuyi/chater/internal/account"
	"github.com/PaulBabatuyi/chater/internal/auth"
	"github.com/PaulBabatuyi/chater/internal/config"
	"github.com/PaulBabatuyi/chater/internal/data"
	"github.com/PaulBabatuyi/chater/internal/db"
	"github.com/PaulBabatuyi/chater/internal/messenger"
	"github.com/PaulBabatuyi/chater/internal/middleware"
	"github.com/PaulBabatuyi/chater/internal/realtime"
	"github.com/PaulBabatuyi/chater/internal/seed"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// run wires every component and blocks until SIGINT/SIGTERM, so deferred
// cleanup always runs before the process exits.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := config.NewLogger(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	gin.SetMode(gin.ReleaseMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = store.Close(closeCtx)
	}()

	jwtMgr, err := newJWTManager(cfg)
	if err != nil {
		return err
	}

	if cfg.Seed {
		if _, err := seed.Populate(ctx, store, time.Now(), log); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
	}

	hub := realtime.NewHub(log.With("component", "hub"))
	defer hub.Shutdown()

	msgr := messenger.New(store, hub, messenger.WithLogger(log.With("component", "messenger")))
	if _, err := msgr.Bootstrap(ctx); err != nil {
		return fmt.Errorf("bootstrap public dialog: %w", err)
	}
	accounts := account.New(store, jwtMgr, log.With("component", "account"))

	// small burst allows a couple of quick retries on login/registration
	limiter := middleware.NewLimiterStore(cfg.RateLimitRPM, cfg.RateLimitBurst, time.Minute)
	defer limiter.Stop()

	srv := newServer(accounts, msgr, limiter, realtime.NewServer(hub, jwtMgr, log.With("component", "socket")), log)
	srv.cookieSecure = cfg.CookieSecure
	srv.cookieTTL = jwtMgr.Duration()

	httpServer := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           srv.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", "addr", cfg.Addr(), "store", storeKind(cfg))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

// openStore returns the MongoDB store when a URI is configured and the
// in-memory store otherwise.
func openStore(ctx context.Context, cfg config.Config, log *slog.Logger) (data.Store, error) {
	if cfg.MongoURI == "" {
		return data.NewMemoryStore(), nil
	}

	client, err := db.New(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to DB: %w", err)
	}
	if err := client.CreateIndexes(ctx); err != nil {
		_ = client.Close(ctx)
		return nil, fmt.Errorf("failed to create indexes: %w", err)
	}
	log.Info("connected to MongoDB", "database", cfg.MongoDatabase)
	return data.NewMongoStore(client), nil
}

func storeKind(cfg config.Config) string {
	if cfg.MongoURI == "" {
		return "memory"
	}
	return "mongodb"
}

// newJWTManager prefers JWT_KEYS so secrets can be rotated; JWT_SECRET is
// the single-key fallback.
func newJWTManager(cfg config.Config) (*auth.JWTManager, error) {
	if cfg.JWTKeys == "" {
		return auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL), nil
	}
	keys, err := cfg.SigningKeys()
	if err != nil {
		return nil, err
	}
	return auth.NewJWTManagerFromKeys(keys, cfg.JWTActiveKid, cfg.TokenTTL), nil
}
