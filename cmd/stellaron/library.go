package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/skaarfundgandr/Stellaron/internal/config"
	"github.com/skaarfundgandr/Stellaron/internal/library"
)

func newImportCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <dir>",
		Short: "Scan a directory and catalog every book found",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := loggerFromFlags(cmd)
			if err != nil {
				return err
			}

			dbPath, _ := cmd.Flags().GetString("db")
			workers, _ := cmd.Flags().GetInt("workers")

			store, err := library.OpenStore(dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			importer := library.NewImporter(store, workers, logger)
			summary, err := importer.ImportDir(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "imported %d, duplicates %d, failed %d\n",
				summary.Imported, summary.Duplicates, summary.Failed)
			if summary.Failed > 0 {
				return fmt.Errorf("%d books failed to import", summary.Failed)
			}
			return nil
		},
	}
	cmd.Flags().String("db", cfg.DatabasePath, "Catalog database path")
	cmd.Flags().Int("workers", cfg.Workers, "Concurrent import workers")
	return cmd
}

func newListCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List cataloged books",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dbPath, _ := cmd.Flags().GetString("db")

			store, err := library.OpenStore(dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			books, err := store.ListBooks(cmd.Context())
			if err != nil {
				return err
			}

			if len(books) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "catalog is empty")
				return nil
			}
			for _, b := range books {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\t%s\n",
					b.ID, b.Title, strings.Join(b.Authors, ", "), shortSum(b.Checksum))
			}
			return nil
		},
	}
	cmd.Flags().String("db", cfg.DatabasePath, "Catalog database path")
	return cmd
}

func shortSum(sum string) string {
	if len(sum) > 12 {
		return sum[:12]
	}
	return sum
}
