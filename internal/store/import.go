// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paper-searcher/pkg/types"
)

// ImportSummary holds counts from a paper or venue import run.
type ImportSummary struct {
	Added   int
	Updated int
	Skipped int
	Failed  int
}

// Total returns the number of records processed.
func (s ImportSummary) Total() int {
	return s.Added + s.Updated + s.Skipped + s.Failed
}

// SavePapers inserts papers in one transaction. A paper whose title,
// venue, and year already exist is skipped; a paper that cannot be
// inserted (missing fields, title taken by another venue) is counted as
// failed and the run continues. Progress lines are written to w.
func (s *Store) SavePapers(ctx context.Context, papers []types.Paper, w io.Writer) (ImportSummary, error) {
	var summary ImportSummary

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return summary, storageErr("begin", err)
	}
	defer tx.Rollback()

	for _, p := range papers {
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		p.Venue = strings.ToUpper(strings.TrimSpace(p.Venue))
		p.Title = strings.TrimSpace(p.Title)
		if p.Title == "" || p.Venue == "" || p.Year == 0 {
			fmt.Fprintf(w, "failed  %q: title, conference, and year are required\n", p.Title)
			summary.Failed++
			continue
		}

		var exists int
		err := tx.QueryRowContext(ctx,
			`SELECT 1 FROM papers WHERE title = ? AND conference = ? AND year = ?`,
			p.Title, p.Venue, p.Year,
		).Scan(&exists)
		if err == nil {
			fmt.Fprintf(w, "skipped %s %d %q\n", p.Venue, p.Year, p.Title)
			summary.Skipped++
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return summary, storageErr("lookup paper", err)
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO papers (conference, year, volume, title, href, origin, abstract, bib, cat)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			p.Venue, p.Year, p.Volume, p.Title,
			nullable(p.Href), nullable(p.Origin), p.Abstract, nullable(p.Bib), nullable(p.Category),
		)
		if err != nil {
			fmt.Fprintf(w, "failed  %s %d %q: %v\n", p.Venue, p.Year, p.Title, err)
			summary.Failed++
			continue
		}
		fmt.Fprintf(w, "added   %s %d %q\n", p.Venue, p.Year, p.Title)
		summary.Added++
	}

	if err := tx.Commit(); err != nil {
		return summary, storageErr("commit", err)
	}

	fmt.Fprintf(w, "\nadded: %d, skipped: %d, failed: %d\n",
		summary.Added, summary.Skipped, summary.Failed)
	return summary, nil
}

// SaveVenues upserts venues by abbreviation in one transaction. Invalid
// records are counted as failed and the run continues.
func (s *Store) SaveVenues(ctx context.Context, venues []types.Venue, w io.Writer) (ImportSummary, error) {
	var summary ImportSummary

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return summary, storageErr("begin", err)
	}
	defer tx.Rollback()

	for _, v := range venues {
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		v.Abbreviation = strings.TrimSpace(v.Abbreviation)
		if err := checkVenue(v); err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", v.Abbreviation, err)
			summary.Failed++
			continue
		}

		var id int64
		err := tx.QueryRowContext(ctx,
			`SELECT id FROM venues WHERE abbreviation = ?`, v.Abbreviation,
		).Scan(&id)
		switch {
		case err == nil:
			_, err = tx.ExecContext(ctx,
				`UPDATE venues SET full_name = ?, publisher = ?, ccf_rank = ?, venue_type = ?,
					domain = ?, dblp_url = ?, updated_at = CURRENT_TIMESTAMP
				 WHERE id = ?`,
				v.FullName, nullable(v.Publisher), string(v.Rank), string(v.Type),
				v.Domain, nullable(v.DBLPURL), id,
			)
			if err != nil {
				fmt.Fprintf(w, "failed  %s: %v\n", v.Abbreviation, err)
				summary.Failed++
				continue
			}
			fmt.Fprintf(w, "updated %s\n", v.Abbreviation)
			summary.Updated++
		case errors.Is(err, sql.ErrNoRows):
			_, err = tx.ExecContext(ctx,
				`INSERT INTO venues (abbreviation, full_name, publisher, ccf_rank, venue_type, domain, dblp_url)
				 VALUES (?, ?, ?, ?, ?, ?, ?)`,
				v.Abbreviation, v.FullName, nullable(v.Publisher), string(v.Rank), string(v.Type),
				v.Domain, nullable(v.DBLPURL),
			)
			if err != nil {
				fmt.Fprintf(w, "failed  %s: %v\n", v.Abbreviation, err)
				summary.Failed++
				continue
			}
			fmt.Fprintf(w, "added   %s\n", v.Abbreviation)
			summary.Added++
		default:
			return summary, storageErr("lookup venue", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return summary, storageErr("commit", err)
	}

	fmt.Fprintf(w, "\nadded: %d, updated: %d, failed: %d\n",
		summary.Added, summary.Updated, summary.Failed)
	return summary, nil
}

func checkVenue(v types.Venue) error {
	switch {
	case v.Abbreviation == "":
		return fmt.Errorf("abbreviation is required")
	case strings.TrimSpace(v.FullName) == "":
		return fmt.Errorf("full_name is required")
	case !v.Rank.Valid():
		return fmt.Errorf("unknown ccf_rank %q", v.Rank)
	case v.Type != types.VenueConference && v.Type != types.VenueJournal:
		return fmt.Errorf("unknown venue_type %q", v.Type)
	case v.Domain == "":
		return fmt.Errorf("domain is required")
	}
	return nil
}

// nullable maps the empty string to SQL NULL.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// LoadPapersFile reads a list of papers from a .yaml, .yml, or .json file.
func LoadPapersFile(path string) ([]types.Paper, error) {
	var papers []types.Paper
	if err := loadFile(path, &papers); err != nil {
		return nil, err
	}
	return papers, nil
}

// LoadVenuesFile reads a list of venues from a .yaml, .yml, or .json file.
func LoadVenuesFile(path string) ([]types.Venue, error) {
	var venues []types.Venue
	if err := loadFile(path, &venues); err != nil {
		return nil, err
	}
	return venues, nil
}

func loadFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, v)
	case ".json":
		err = json.Unmarshal(data, v)
	default:
		return fmt.Errorf("unsupported file type %q (want .yaml, .yml, or .json)", ext)
	}
	if err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}
