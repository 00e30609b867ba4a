// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-searcher/internal/store"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Load papers or venues from YAML or JSON files",
	Long: `Import reads records from .yaml, .yml, or .json files into the database.
Papers whose title, venue, and year already exist are skipped. Venues are
upserted by abbreviation.`,
}

var importPapersCmd = &cobra.Command{
	Use:   "papers <file>...",
	Short: "Import paper records",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runImportPapers,
}

func runImportPapers(cmd *cobra.Command, args []string) error {
	st, _, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	out := cmd.OutOrStdout()
	var failed int
	for _, path := range args {
		papers, err := store.LoadPapersFile(path)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "importing %s (%d papers)\n", path, len(papers))
		summary, err := st.SavePapers(context.Background(), papers, out)
		if err != nil {
			return fmt.Errorf("importing %s: %w", path, err)
		}
		failed += summary.Failed
	}
	if failed > 0 {
		return fmt.Errorf("%d paper(s) failed to import", failed)
	}
	return nil
}

var importVenuesCmd = &cobra.Command{
	Use:   "venues <file>...",
	Short: "Import CCF venue records",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runImportVenues,
}

func runImportVenues(cmd *cobra.Command, args []string) error {
	st, _, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	out := cmd.OutOrStdout()
	var failed int
	for _, path := range args {
		venues, err := store.LoadVenuesFile(path)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "importing %s (%d venues)\n", path, len(venues))
		summary, err := st.SaveVenues(context.Background(), venues, out)
		if err != nil {
			return fmt.Errorf("importing %s: %w", path, err)
		}
		failed += summary.Failed
	}
	if failed > 0 {
		return fmt.Errorf("%d venue(s) failed to import", failed)
	}
	return nil
}

var initDBCmd = &cobra.Command{
	Use:   "init-db",
	Short: "Create the database and its tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, _, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()
		fmt.Fprintf(cmd.OutOrStdout(), "Initialized %s\n", st.Path())
		return nil
	},
}

func init() {
	importCmd.AddCommand(importPapersCmd)
	importCmd.AddCommand(importVenuesCmd)

	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(initDBCmd)
}
