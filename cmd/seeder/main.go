// Command seeder fills the database with a demo account and generated job
// applications. It is intended for local development and demos, not as
// part of the main server.
//
// Flags:
//
//	--email         demo account email (default demo@example.com)
//	--password      demo account password (default demo-password)
//	--applications  how many applications to generate (default 60)
//	--seed          RNG seed; equal seeds produce equal datasets
//	--dry-run       generate without writing to DB
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/appdex/jobtrack-backend/internal/adapter/postgres"
	applicationrepo "github.com/appdex/jobtrack-backend/internal/adapter/postgres/application"
	tagrepo "github.com/appdex/jobtrack-backend/internal/adapter/postgres/tag"
	userrepo "github.com/appdex/jobtrack-backend/internal/adapter/postgres/user"
	"github.com/appdex/jobtrack-backend/internal/app"
	"github.com/appdex/jobtrack-backend/internal/config"
	"github.com/appdex/jobtrack-backend/internal/seed"
)

func main() {
	emailFlag := flag.String("email", "demo@example.com", "demo account email")
	passwordFlag := flag.String("password", "demo-password", "demo account password")
	countFlag := flag.Int("applications", 60, "number of applications to generate")
	seedFlag := flag.Int64("seed", time.Now().UnixNano(), "RNG seed")
	dryRunFlag := flag.Bool("dry-run", false, "generate without writing to DB")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := app.NewLogger(cfg.Log)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if cfg.Database.Migrate {
		if err := postgres.Migrate(ctx, cfg.Database.DSN); err != nil {
			logger.Error("run migrations", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Error("connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	seeder := seed.New(logger, userrepo.New(pool), tagrepo.New(pool), applicationrepo.New(pool))

	result, err := seeder.Run(ctx, seed.Config{
		Email:        *emailFlag,
		Username:     "demo",
		Password:     *passwordFlag,
		Applications: *countFlag,
		Rand:         *seedFlag,
		DryRun:       *dryRunFlag,
	})
	if err != nil {
		logger.Error("seeding failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("done",
		slog.Bool("user_created", result.UserCreated),
		slog.Int("applications", result.Applications),
		slog.Int("tags", result.Tags),
	)
}
