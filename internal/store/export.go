// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paper-searcher/internal/query"
	"github.com/pdiddy/paper-searcher/pkg/types"
)

// exportBatch is the page size used to read matching papers for export.
var exportBatch = 1000

// ExportYAML writes every paper matching pred to path as a YAML list and
// returns the number of papers written.
func (s *Store) ExportYAML(ctx context.Context, pred query.Predicate, path string) (int, error) {
	papers, err := s.exportPapers(ctx, pred)
	if err != nil {
		return 0, err
	}
	data, err := yaml.Marshal(papers)
	if err != nil {
		return 0, fmt.Errorf("marshaling YAML: %w", err)
	}
	return len(papers), writeExport(path, data)
}

// ExportJSON writes every paper matching pred to path as a JSON array and
// returns the number of papers written.
func (s *Store) ExportJSON(ctx context.Context, pred query.Predicate, path string) (int, error) {
	papers, err := s.exportPapers(ctx, pred)
	if err != nil {
		return 0, err
	}
	data, err := json.MarshalIndent(papers, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("marshaling JSON: %w", err)
	}
	return len(papers), writeExport(path, data)
}

// exportPapers reads every paper matching pred, one page at a time, until
// a short page marks the end.
func (s *Store) exportPapers(ctx context.Context, pred query.Predicate) ([]types.Paper, error) {
	papers := []types.Paper{}
	for offset := 0; ; offset += exportBatch {
		batch, err := s.Fetch(ctx, pred, query.Page{Offset: offset, Limit: exportBatch})
		if err != nil {
			return nil, fmt.Errorf("querying for export at offset %d: %w", offset, err)
		}
		papers = append(papers, batch...)
		if len(batch) < exportBatch {
			return papers, nil
		}
	}
}

func writeExport(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating export directory: %w", err)
		}
	}
	return os.WriteFile(path, data, 0o644)
}
