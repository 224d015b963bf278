// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/taibuivan/refcatalog/internal/core/reference"
	"github.com/taibuivan/refcatalog/internal/platform/config"
	"github.com/taibuivan/refcatalog/internal/platform/ctxutil"
)

func newReferenceCmd(logger func() *slog.Logger) *cobra.Command {
	ref := &cobra.Command{
		Use:     "reference",
		Aliases: []string{"ref"},
		Short:   "Inspect or remove references",
	}

	// withService runs fn against a service bound to the configured store.
	withService := func(cmd *cobra.Command, fn func(service *reference.Service) error) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		log := logger()
		ctx := ctxutil.WithLogger(cmd.Context(), log)
		cmd.SetContext(ctx)

		service, closeStore, err := openService(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer closeStore()

		return fn(service)
	}

	ref.AddCommand(&cobra.Command{
		Use:   "show <id>",
		Short: "Print a reference with every association as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			return withService(cmd, func(service *reference.Service) error {
				found, err := service.GetReferenceByID(cmd.Context(), id, reference.All())
				if err != nil {
					return err
				}

				encoder := json.NewEncoder(cmd.OutOrStdout())
				encoder.SetIndent("", "  ")
				return encoder.Encode(reference.Serialize(found))
			})
		},
	})

	ref.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a reference and everything it owns",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			return withService(cmd, func(service *reference.Service) error {
				count, err := service.DeleteReferenceByID(cmd.Context(), id)
				if err != nil {
					return err
				}
				if count == 0 {
					return fmt.Errorf("reference %d not found", id)
				}

				fmt.Fprintf(cmd.OutOrStdout(), "deleted reference %d\n", id)
				return nil
			})
		},
	})

	return ref
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid reference id %q", raw)
	}
	return id, nil
}
