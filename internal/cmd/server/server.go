// Package server wires configuration and lifecycle for the API server
// process.
package server

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/ironlog/ironlog/internal/app"
	"github.com/ironlog/ironlog/internal/platform/config"
	"github.com/ironlog/ironlog/internal/platform/otel"
	"github.com/ironlog/ironlog/internal/state"
	"github.com/ironlog/ironlog/internal/storage/sqlite"
	"github.com/ironlog/ironlog/internal/web"
)

// Config holds the server command configuration.
type Config struct {
	HTTPAddr     string `env:"IRONLOG_HTTP_ADDR" envDefault:"localhost:8097"`
	DBPath       string `env:"IRONLOG_DB_PATH" envDefault:"ironlog.db"`
	OTelEnabled  bool   `env:"IRONLOG_OTEL_ENABLED" envDefault:"true"`
	OTelEndpoint string `env:"IRONLOG_OTEL_ENDPOINT"`
}

// ParseConfig layers flags over environment variables.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP listen address")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "path to the event log database")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the API server and blocks until ctx is cancelled.
func Run(ctx context.Context, cfg Config) error {
	shutdownOtel, err := otel.Setup(ctx, otel.Config{
		ServiceName: "ironlog-server",
		Endpoint:    cfg.OTelEndpoint,
		Enabled:     cfg.OTelEnabled,
	})
	if err != nil {
		return fmt.Errorf("init otel: %w", err)
	}
	defer func() {
		if err := shutdownOtel(context.Background()); err != nil {
			log.Printf("otel shutdown: %v", err)
		}
	}()

	store, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Printf("close store: %v", err)
		}
	}()

	prefs, err := state.Load(ctx, store)
	if err != nil {
		return fmt.Errorf("load app state: %w", err)
	}

	application := app.New(store, prefs)
	handler := web.New(application)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("server listening at %s", cfg.HTTPAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}
}
