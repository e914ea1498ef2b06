package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newImportCmd() *cobra.Command {
	var seedPath string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Replace the collection with the seed file contents",
		Long:  "Drops the character collection, recreates it and bulk inserts every record from the seed file. Existing data is lost.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			if seedPath != "" {
				cfg.SeedFile = seedPath
			}

			deps, err := buildDependencies(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer func() {
				if err := deps.close(context.Background()); err != nil {
					log.Error("failed to release resources", "error", err)
				}
			}()

			n, err := deps.service.Import(ctx)
			if err != nil {
				return fmt.Errorf("importing %s: %w", cfg.SeedFile, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d characters from %s\n", n, cfg.SeedFile)
			return nil
		},
	}
	cmd.Flags().StringVar(&seedPath, "seed", "", "Seed file to import (defaults to SEED_FILE)")
	return cmd
}
