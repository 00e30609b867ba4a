// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/pdiddy/paper-searcher/pkg/types"
)

const venueColumns = `id, abbreviation, full_name, publisher, ccf_rank, venue_type, domain, dblp_url, created_at, updated_at`

// ListVenues returns venues matching filter ordered by abbreviation.
func (s *Store) ListVenues(ctx context.Context, filter types.VenueFilter) ([]types.Venue, error) {
	var (
		conds []string
		args  []any
	)
	if filter.Rank != "" {
		conds = append(conds, "ccf_rank = ?")
		args = append(args, string(filter.Rank))
	}
	if filter.Domain != "" {
		conds = append(conds, "domain = ?")
		args = append(args, filter.Domain)
	}
	if filter.Type != "" {
		conds = append(conds, "venue_type = ?")
		args = append(args, string(filter.Type))
	}

	q := "SELECT " + venueColumns + " FROM venues"
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY abbreviation"

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, storageErr("list venues", err)
	}
	defer rows.Close()

	venues := []types.Venue{}
	for rows.Next() {
		v, err := scanVenue(rows)
		if err != nil {
			return nil, storageErr("list venues", err)
		}
		venues = append(venues, v)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list venues", err)
	}
	return venues, nil
}

// VenueInfo returns the venue with the given abbreviation, compared
// case-insensitively. It returns ErrNotFound when there is none.
func (s *Store) VenueInfo(ctx context.Context, abbr string) (types.Venue, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+venueColumns+" FROM venues WHERE abbreviation = ? COLLATE NOCASE",
		strings.TrimSpace(abbr),
	)
	v, err := scanVenue(row)
	if errors.Is(err, sql.ErrNoRows) {
		return v, fmt.Errorf("venue %q: %w", abbr, ErrNotFound)
	}
	if err != nil {
		return v, storageErr("venue info", err)
	}
	return v, nil
}

// VenueRank returns the CCF rank of the venue with the given abbreviation.
func (s *Store) VenueRank(ctx context.Context, abbr string) (types.CCFRank, error) {
	v, err := s.VenueInfo(ctx, abbr)
	if err != nil {
		return "", err
	}
	return v.Rank, nil
}

// VenueStatistics counts venues by rank, type, and domain.
func (s *Store) VenueStatistics(ctx context.Context) (types.VenueStatistics, error) {
	stats := types.VenueStatistics{
		ByRank:   map[string]int{},
		ByType:   map[string]int{},
		ByDomain: map[string]int{},
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM venues`).Scan(&stats.Total); err != nil {
		return stats, storageErr("venue statistics", err)
	}

	groups := []struct {
		column string
		into   map[string]int
	}{
		{"ccf_rank", stats.ByRank},
		{"venue_type", stats.ByType},
		{"domain", stats.ByDomain},
	}
	for _, g := range groups {
		if err := groupCount(ctx, s.db, g.column, g.into); err != nil {
			return stats, err
		}
	}
	return stats, nil
}

// groupCount fills into with per-value counts of column. column is one
// of a fixed set of names, never caller input.
func groupCount(ctx context.Context, q queryer, column string, into map[string]int) error {
	rows, err := q.QueryContext(ctx,
		"SELECT "+column+", COUNT(*) FROM venues GROUP BY "+column+" ORDER BY "+column)
	if err != nil {
		return storageErr("venue statistics", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			key string
			n   int
		)
		if err := rows.Scan(&key, &n); err != nil {
			return storageErr("venue statistics", err)
		}
		into[key] = n
	}
	if err := rows.Err(); err != nil {
		return storageErr("venue statistics", err)
	}
	return nil
}

func scanVenue(sc scanner) (types.Venue, error) {
	var (
		v         types.Venue
		rank      string
		venueType string
		publisher sql.NullString
		dblpURL   sql.NullString
		createdAt sql.NullTime
		updatedAt sql.NullTime
	)
	if err := sc.Scan(&v.ID, &v.Abbreviation, &v.FullName, &publisher, &rank, &venueType,
		&v.Domain, &dblpURL, &createdAt, &updatedAt); err != nil {
		return v, err
	}
	v.Rank = types.CCFRank(rank)
	v.Type = types.VenueType(venueType)
	v.Publisher = publisher.String
	v.DBLPURL = dblpURL.String
	v.CreatedAt = createdAt.Time
	v.UpdatedAt = updatedAt.Time
	return v, nil
}
