// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/pdiddy/paper-searcher/internal/query"
	"github.com/pdiddy/paper-searcher/pkg/types"
)

var selectPapers = "SELECT " + strings.Join(types.PaperColumns, ", ") + " FROM papers"

// Count returns the number of papers matching pred.
func (s *Store) Count(ctx context.Context, pred query.Predicate) (int, error) {
	var total int
	err := s.withConn(ctx, func(conn *sql.Conn) error {
		var err error
		total, err = count(ctx, conn, pred)
		return err
	})
	return total, err
}

// Fetch returns one page of papers matching pred, newest year first.
func (s *Store) Fetch(ctx context.Context, pred query.Predicate, page query.Page) ([]types.Paper, error) {
	var papers []types.Paper
	err := s.withConn(ctx, func(conn *sql.Conn) error {
		var err error
		papers, err = fetch(ctx, conn, pred, page)
		return err
	})
	return papers, err
}

// Search runs the count and the page fetch on one connection. The
// connection is released whether or not either query fails.
func (s *Store) Search(ctx context.Context, pred query.Predicate, page query.Page) (types.SearchPage, error) {
	var res types.SearchPage
	err := s.withConn(ctx, func(conn *sql.Conn) error {
		total, err := count(ctx, conn, pred)
		if err != nil {
			return err
		}
		rows, err := fetch(ctx, conn, pred, page)
		if err != nil {
			return err
		}
		res = types.SearchPage{Rows: rows, Total: total}
		return nil
	})
	return res, err
}

func count(ctx context.Context, q queryer, pred query.Predicate) (int, error) {
	var total int
	err := q.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM papers WHERE "+pred.SQL(), pred.Args()...,
	).Scan(&total)
	if err != nil {
		return 0, storageErr("count", err)
	}
	return total, nil
}

func fetch(ctx context.Context, q queryer, pred query.Predicate, page query.Page) ([]types.Paper, error) {
	args := append(pred.Args(), page.Limit, page.Offset)
	rows, err := q.QueryContext(ctx,
		selectPapers+" WHERE "+pred.SQL()+" ORDER BY year DESC, id LIMIT ? OFFSET ?", args...,
	)
	if err != nil {
		return nil, storageErr("fetch", err)
	}
	defer rows.Close()

	papers := []types.Paper{}
	for rows.Next() {
		p, err := scanPaper(rows)
		if err != nil {
			return nil, storageErr("fetch", err)
		}
		papers = append(papers, p)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("fetch", err)
	}
	return papers, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPaper(sc scanner) (types.Paper, error) {
	var (
		p        types.Paper
		volume   sql.NullInt64
		abstract sql.NullString
		href     sql.NullString
		origin   sql.NullString
		bib      sql.NullString
		category sql.NullString
	)
	if err := sc.Scan(&p.ID, &p.Venue, &p.Year, &volume, &p.Title,
		&href, &origin, &abstract, &bib, &category); err != nil {
		return p, err
	}
	if volume.Valid {
		v := int(volume.Int64)
		p.Volume = &v
	}
	if abstract.Valid {
		a := abstract.String
		p.Abstract = &a
	}
	p.Href = href.String
	p.Origin = origin.String
	p.Bib = bib.String
	p.Category = category.String
	return p, nil
}

// Abstract returns the title and abstract of the paper with the given id.
// It returns ErrNotFound when no such paper exists.
func (s *Store) Abstract(ctx context.Context, id int64) (types.TitleAbstract, error) {
	var (
		out      types.TitleAbstract
		abstract sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT title, abstract FROM papers WHERE id = ?`, id,
	).Scan(&out.Title, &abstract)
	if errors.Is(err, sql.ErrNoRows) {
		return out, fmt.Errorf("paper %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return out, storageErr("abstract", err)
	}
	if abstract.Valid {
		a := abstract.String
		out.Abstract = &a
	}
	return out, nil
}
