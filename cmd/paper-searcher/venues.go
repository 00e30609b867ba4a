// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-searcher/internal/search"
	"github.com/pdiddy/paper-searcher/pkg/types"
)

var venuesCmd = &cobra.Command{
	Use:   "venues",
	Short: "Look up CCF-ranked venues",
}

var venuesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List venues, optionally filtered by rank, domain, or type",
	RunE:  runVenuesList,
}

func runVenuesList(cmd *cobra.Command, args []string) error {
	rank, _ := cmd.Flags().GetString("rank")
	domain, _ := cmd.Flags().GetString("domain")
	venueType, _ := cmd.Flags().GetString("type")
	filter, err := search.ParseVenueFilter(rank, domain, venueType)
	if err != nil {
		return err
	}

	st, _, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	venues, err := st.ListVenues(context.Background(), filter)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		return writeJSON(out, venues)
	}
	if len(venues) == 0 {
		fmt.Fprintln(out, "No venues found.")
		return nil
	}

	fmt.Fprintf(out, "%-12s  %-4s  %-10s  %-6s  %s\n", "Abbr", "Rank", "Type", "Domain", "Full name")
	fmt.Fprintln(out, strings.Repeat("-", 100))
	for _, v := range venues {
		fmt.Fprintf(out, "%-12s  %-4s  %-10s  %-6s  %s\n",
			v.Abbreviation, v.Rank, v.Type, v.Domain, truncate(v.FullName, 60))
	}
	fmt.Fprintf(out, "\n%d venues\n", len(venues))
	return nil
}

var venuesShowCmd = &cobra.Command{
	Use:   "show <abbreviation>",
	Short: "Show one venue",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, _, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		v, err := st.VenueInfo(context.Background(), args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
			return writeJSON(out, v)
		}
		fmt.Fprintf(out, "%s  %s\n", v.Abbreviation, v.FullName)
		fmt.Fprintf(out, "  rank:      CCF-%s\n", v.Rank)
		fmt.Fprintf(out, "  type:      %s\n", v.Type)
		fmt.Fprintf(out, "  domain:    %s (%s)\n", v.Domain, types.Domains[v.Domain])
		if v.Publisher != "" {
			fmt.Fprintf(out, "  publisher: %s\n", v.Publisher)
		}
		if v.DBLPURL != "" {
			fmt.Fprintf(out, "  dblp:      %s\n", v.DBLPURL)
		}
		return nil
	},
}

var venuesStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Count venues by rank, type, and domain",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, _, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		stats, err := st.VenueStatistics(context.Background())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
			return writeJSON(out, stats)
		}
		fmt.Fprintf(out, "Total venues: %d\n", stats.Total)
		printCounts(out, "By rank", stats.ByRank)
		printCounts(out, "By type", stats.ByType)
		printCounts(out, "By domain", stats.ByDomain)
		return nil
	},
}

func printCounts(w io.Writer, title string, counts map[string]int) {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Fprintf(w, "\n%s:\n", title)
	for _, k := range keys {
		fmt.Fprintf(w, "  %-12s %d\n", k, counts[k])
	}
}

func init() {
	venuesListCmd.Flags().String("rank", "", "filter by CCF rank: A, B, or C")
	venuesListCmd.Flags().String("domain", "", "filter by domain code, e.g. NIS")
	venuesListCmd.Flags().String("type", "", "filter by type: conference or journal")

	for _, c := range []*cobra.Command{venuesListCmd, venuesShowCmd, venuesStatsCmd} {
		c.Flags().Bool("json", false, "output as JSON")
		venuesCmd.AddCommand(c)
	}

	rootCmd.AddCommand(venuesCmd)
}
