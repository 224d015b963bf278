// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/taibuivan/refcatalog/internal/core/reference"
	"github.com/taibuivan/refcatalog/internal/core/reference/memstore"
	"github.com/taibuivan/refcatalog/internal/platform/config"
	"github.com/taibuivan/refcatalog/internal/platform/constants"
	pgstore "github.com/taibuivan/refcatalog/internal/platform/postgres"
	redisstore "github.com/taibuivan/refcatalog/internal/platform/redis"
)

// newRootCmd builds a fresh command tree so tests never share flag state.
func newRootCmd() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:   "catalogctl",
		Short: "Operate the reference catalog",
		Long: `catalogctl applies schema migrations and inspects or removes references.

Configuration comes from the environment (and an optional .env file):
DATABASE_URL, MIGRATION_PATH, STORE_DRIVER, REDIS_URL and CACHE_TTL.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log at debug level")

	logger := func() *slog.Logger {
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})).
			With(slog.String(constants.FieldApp, "catalogctl"))
	}

	root.AddCommand(newMigrateCmd(logger))
	root.AddCommand(newReferenceCmd(logger))

	return root
}

// openService builds the engine over the configured store and, when REDIS_URL
// is set, the same read cache the API serves from, so CLI writes drop the
// cached views. The returned function releases every opened resource.
func openService(ctx context.Context, cfg *config.Config, log *slog.Logger) (*reference.Service, func(), error) {
	var (
		store   reference.Store
		release []func()
	)
	closeAll := func() {
		for i := len(release) - 1; i >= 0; i-- {
			release[i]()
		}
	}

	switch cfg.StoreDriver {
	case config.StoreDriverPostgres:
		pool, err := pgstore.NewPool(ctx, cfg.DatabaseURL, log)
		if err != nil {
			return nil, nil, err
		}
		store = reference.NewPostgresStore(pool)
		release = append(release, pool.Close)

	case config.StoreDriverMemory:
		store = memstore.New()

	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}

	rdb, err := redisstore.NewClient(ctx, cfg.RedisURL, log)
	if err != nil {
		closeAll()
		return nil, nil, err
	}

	var options []reference.Option
	if rdb != nil {
		release = append(release, func() {
			if cerr := rdb.Close(); cerr != nil {
				log.Warn("redis close error", slog.Any("error", cerr))
			}
		})
		options = append(options, reference.WithCache(reference.NewRedisCache(rdb, cfg.CacheTTL)))
	}

	return reference.NewService(store, options...), closeAll, nil
}
