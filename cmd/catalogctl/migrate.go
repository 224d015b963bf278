// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/taibuivan/refcatalog/internal/platform/config"
	"github.com/taibuivan/refcatalog/internal/platform/migration"
)

var errMigrationsNeedPostgres = errors.New("migrations require STORE_DRIVER=postgres")

func newMigrateCmd(logger func() *slog.Logger) *cobra.Command {
	var path string

	migrate := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the catalog schema",
	}
	migrate.PersistentFlags().StringVar(&path, "path", "", "Migrations directory (defaults to MIGRATION_PATH)")

	// load resolves the configuration shared by every migrate sub-command.
	load := func() (*config.Config, error) {
		cfg, err := config.Load()
		if err != nil {
			return nil, err
		}
		if cfg.StoreDriver != config.StoreDriverPostgres {
			return nil, errMigrationsNeedPostgres
		}
		if path != "" {
			cfg.MigrationPath = path
		}
		return cfg, nil
	}

	migrate.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply every pending migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			if err := migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, logger()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
			return nil
		},
	})

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back applied migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if steps < 1 {
				return fmt.Errorf("--steps must be at least 1, got %d", steps)
			}
			cfg, err := load()
			if err != nil {
				return err
			}
			if err := migration.RunDown(cfg.DatabaseURL, cfg.MigrationPath, steps, logger()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "rolled back %d migration(s)\n", steps)
			return nil
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "Number of migrations to roll back")
	migrate.AddCommand(down)

	migrate.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the applied schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			status, err := migration.Version(cfg.DatabaseURL, cfg.MigrationPath, logger())
			if err != nil {
				return err
			}

			switch {
			case status.Empty:
				fmt.Fprintln(cmd.OutOrStdout(), "no migrations applied")
			case status.Dirty:
				fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty)\n", status.Version)
			default:
				fmt.Fprintf(cmd.OutOrStdout(), "version %d\n", status.Version)
			}
			return nil
		},
	})

	return migrate
}
