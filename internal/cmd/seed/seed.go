// Package seed wires configuration and lifecycle for the demo-data
// populator.
package seed

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/ironlog/ironlog/internal/platform/config"
	demoseed "github.com/ironlog/ironlog/internal/seed"
	"github.com/ironlog/ironlog/internal/storage/sqlite"
)

// Config holds the seed command configuration.
type Config struct {
	DBPath  string `env:"IRONLOG_DB_PATH" envDefault:"ironlog.db"`
	Seed    int64  `env:"IRONLOG_SEED" envDefault:"1"`
	Weeks   int    `env:"IRONLOG_SEED_WEEKS" envDefault:"8"`
	Force   bool
	Verbose bool
}

// ParseConfig layers flags over environment variables.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "path to the event log database")
	fs.Int64Var(&cfg.Seed, "seed", cfg.Seed, "rng seed for the generated schedule")
	fs.IntVar(&cfg.Weeks, "weeks", cfg.Weeks, "length of the generated schedule in weeks")
	fs.BoolVar(&cfg.Force, "force", false, "populate even when the store already has events")
	fs.BoolVar(&cfg.Verbose, "v", false, "log each generated workout")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run populates the store with a demo schedule.
func Run(ctx context.Context, cfg Config) error {
	store, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Printf("close store: %v", err)
		}
	}()

	count, err := store.EventCount(ctx)
	if err != nil {
		return fmt.Errorf("count events: %w", err)
	}
	if count > 0 && !cfg.Force {
		return fmt.Errorf("store already has %d events; pass -force to seed anyway", count)
	}

	generator := demoseed.New(demoseed.Config{Seed: cfg.Seed, Weeks: cfg.Weeks, Verbose: cfg.Verbose})
	n, err := generator.Populate(ctx, store, time.Now().UTC())
	if err != nil {
		return err
	}
	log.Printf("seeded %d events into %s", n, cfg.DBPath)
	return nil
}
