// Cookrank - Dish Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cookrank

// Command seed fills MongoDB with a synthetic dish catalog and user base
// for local development and load testing.
//
//	seed --dishes 500 --users 200 --reset
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/tomtom215/cookrank/internal/config"
	"github.com/tomtom215/cookrank/internal/logging"
	"github.com/tomtom215/cookrank/internal/recommend"
	"github.com/tomtom215/cookrank/internal/store/mongo"
)

type seedOptions struct {
	configFile string
	dishes     int
	users      int
	seed       int64
	reset      bool
}

// writer is the write side of the document store.
type writer interface {
	InsertDishes(ctx context.Context, dishes []recommend.Dish) (int, error)
	UpsertActivity(ctx context.Context, a *recommend.UserActivity) error
	UpsertPreferences(ctx context.Context, p *recommend.UserPreferences) error
}

func newRootCmd() *cobra.Command {
	opts := &seedOptions{}
	cmd := &cobra.Command{
		Use:          "seed",
		Short:        "Seed MongoDB with synthetic dishes and users",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSeed(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.configFile, "config", "", "config file (default: config.yaml lookup)")
	cmd.Flags().IntVar(&opts.dishes, "dishes", 500, "Number of dishes to create")
	cmd.Flags().IntVar(&opts.users, "users", 200, "Number of users to create")
	cmd.Flags().Int64Var(&opts.seed, "seed", 42, "Random seed")
	cmd.Flags().BoolVar(&opts.reset, "reset", false, "Drop the collections before seeding")
	return cmd
}

func runSeed(ctx context.Context, opts *seedOptions) error {
	if opts.dishes <= 0 {
		return fmt.Errorf("--dishes must be positive, got %d", opts.dishes)
	}

	var (
		cfg *config.Config
		err error
	)
	if opts.configFile != "" {
		cfg, err = config.LoadFile(opts.configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}
	logging.Init(logging.Config{Level: cfg.Logging.Level, Format: "console", Output: os.Stderr})

	store, err := mongo.New(ctx, &cfg.Mongo, logging.Logger())
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := store.Close(closeCtx); err != nil {
			logging.Error().Err(err).Msg("Error closing MongoDB client")
		}
	}()

	if opts.reset {
		if err := store.Drop(ctx); err != nil {
			return err
		}
		if err := store.EnsureIndexes(ctx); err != nil {
			return err
		}
		logging.Info().Str("database", cfg.Mongo.Database).Msg("Collections dropped")
	}

	return seed(ctx, store, newGenerator(opts.seed, time.Now()), opts.dishes, opts.users)
}

// seed generates and writes the catalog, then the users.
func seed(ctx context.Context, w writer, g *generator, dishCount, userCount int) error {
	dishes := g.dishes(dishCount)
	inserted, err := w.InsertDishes(ctx, dishes)
	if err != nil {
		return err
	}

	users := g.users(userCount, dishes)
	for _, u := range users {
		if err := w.UpsertActivity(ctx, u.activity); err != nil {
			return err
		}
		if err := w.UpsertPreferences(ctx, u.preferences); err != nil {
			return err
		}
	}

	logging.Info().
		Int("dishes", inserted).
		Int("users", len(users)).
		Msg("Seed complete")
	return nil
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
