// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-searcher/internal/client"
	"github.com/pdiddy/paper-searcher/internal/query"
	"github.com/pdiddy/paper-searcher/internal/search"
	"github.com/pdiddy/paper-searcher/pkg/types"
)

// --- search ---

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search papers by keyword, venue, and year",
	Long: `Search runs a keyword query over paper titles and abstracts. Terms are
joined with + (AND) or | (OR) and evaluated strictly left to right, so
"ai+security|privacy" means (ai AND security) OR privacy. An empty query
matches every paper.

Results are ordered by year, newest first. With --remote the query is
sent to a running "serve" instance instead of the local database.`,
	Example: `  paper-searcher search "security|iot" --venues ccs --years 2023,2024
  paper-searcher search "federated+learning" --limit 50 --json`,
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	raw := rawFromFlags(cmd, args)
	jsonOutput, _ := cmd.Flags().GetBool("json")
	out := cmd.OutOrStdout()

	var resp types.SearchResponse
	if c, err := remoteClient(cmd); err != nil {
		return err
	} else if c != nil {
		resp, err = c.Search(context.Background(), raw)
		if err != nil {
			return err
		}
	} else {
		st, cfg, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()
		resp = search.New(st, st, cfg.Policy).Search(context.Background(), raw)
	}

	if jsonOutput {
		if err := writeJSON(out, resp); err != nil {
			return err
		}
	}
	if !resp.OK() {
		return errors.New(resp.Msg)
	}
	if !jsonOutput {
		formatSearchOutput(out, resp.SearchPage, raw)
	}
	return nil
}

func formatSearchOutput(w io.Writer, page *types.SearchPage, raw query.RawRequest) {
	if len(page.Rows) == 0 {
		fmt.Fprintf(w, "No results (%d total).\n", page.Total)
		return
	}

	fmt.Fprintf(w, "%-8s  %-8s  %-4s  %s\n", "ID", "Venue", "Year", "Title")
	fmt.Fprintln(w, strings.Repeat("-", 100))
	for _, p := range page.Rows {
		fmt.Fprintf(w, "%-8d  %-8s  %-4d  %s\n", p.ID, p.Venue, p.Year, truncate(p.Title, 74))
	}
	fmt.Fprintf(w, "\n%d of %d results (offset %s)\n", len(page.Rows), page.Total, raw.Offset)
}

// --- abstract ---

var abstractCmd = &cobra.Command{
	Use:   "abstract <id>",
	Short: "Print the title and abstract of a paper",
	Args:  cobra.ExactArgs(1),
	RunE:  runAbstract,
}

func runAbstract(cmd *cobra.Command, args []string) error {
	id, err := search.ParseID(args[0])
	if err != nil {
		return err
	}

	var row types.TitleAbstract
	if c, err := remoteClient(cmd); err != nil {
		return err
	} else if c != nil {
		resp, err := c.Abstract(context.Background(), id)
		if err != nil {
			return err
		}
		if resp.Code != types.CodeOK {
			return errors.New(resp.Msg)
		}
		if len(resp.Data) == 0 {
			return fmt.Errorf("paper %d: not found", id)
		}
		row = resp.Data[0]
	} else {
		st, _, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()
		row, err = st.Abstract(context.Background(), id)
		if err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, row.Title)
	fmt.Fprintln(out)
	if row.Abstract == nil {
		fmt.Fprintln(out, "(no abstract)")
	} else {
		fmt.Fprintln(out, *row.Abstract)
	}
	return nil
}

// --- export ---

var exportCmd = &cobra.Command{
	Use:   "export [query]",
	Short: "Export matching papers to YAML or JSON",
	Long: `Export writes every paper matching the query and filters to a file.
It accepts the same query syntax and --venues/--years filters as search.`,
	RunE: runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	outPath, _ := cmd.Flags().GetString("out")
	if outPath == "" {
		outPath = "export." + format
	}

	st, cfg, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	raw := rawFromFlags(cmd, args)
	raw.Offset, raw.Limit = "0", "1"
	req, err := query.Validate(raw, cfg.Policy)
	if err != nil {
		return err
	}

	var n int
	switch format {
	case "yaml", "":
		n, err = st.ExportYAML(context.Background(), req.Compile(), outPath)
	case "json":
		n, err = st.ExportJSON(context.Background(), req.Compile(), outPath)
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d papers to %s\n", n, outPath)
	return nil
}

// --- shared helpers ---

// rawFromFlags builds a request from positional query words and the
// filter flags. A filter flag counts as present only when given.
func rawFromFlags(cmd *cobra.Command, args []string) query.RawRequest {
	offset, _ := cmd.Flags().GetInt("offset")
	limit, _ := cmd.Flags().GetInt("limit")
	raw := query.RawRequest{
		Query:  strings.Join(args, " "),
		Offset: fmt.Sprint(offset),
		Limit:  fmt.Sprint(limit),
	}
	if cmd.Flags().Changed("venues") {
		v, _ := cmd.Flags().GetString("venues")
		raw.Venues = query.Set(v)
	}
	if cmd.Flags().Changed("years") {
		v, _ := cmd.Flags().GetString("years")
		raw.Years = query.Set(v)
	}
	return raw
}

// remoteClient returns a client when --remote is set, else nil. The
// server must pass a health check first.
func remoteClient(cmd *cobra.Command) (*client.Client, error) {
	remote, _ := cmd.Flags().GetString("remote")
	if remote == "" {
		return nil, nil
	}
	retries, _ := cmd.Flags().GetInt("retries")
	c, err := client.New(remote,
		client.WithMaxRetries(retries),
		client.WithProgress(cmd.ErrOrStderr()))
	if err != nil {
		return nil, err
	}
	if err := c.Health(context.Background()); err != nil {
		return nil, fmt.Errorf("server %s: %w", remote, err)
	}
	return c, nil
}

func addRemoteFlags(cmd *cobra.Command) {
	cmd.Flags().String("remote", "", "query a running server at this base URL instead of the local database")
	cmd.Flags().Int("retries", 0, "retries on HTTP 429/503 from --remote (0 uses the client default)")
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().String("venues", "", "comma-separated venue codes, e.g. ccs,ndss")
	cmd.Flags().String("years", "", "comma-separated years, e.g. 2023,2024")
}

func init() {
	addFilterFlags(searchCmd)
	searchCmd.Flags().Int("offset", 0, "number of results to skip")
	searchCmd.Flags().Int("limit", 20, "maximum results to return (capped by policy.max_limit)")
	searchCmd.Flags().Bool("json", false, "print the JSON response envelope")
	addRemoteFlags(searchCmd)

	addRemoteFlags(abstractCmd)

	addFilterFlags(exportCmd)
	exportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	exportCmd.Flags().String("out", "", "output file (default export.<format>)")

	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(abstractCmd)
	rootCmd.AddCommand(exportCmd)
}
