// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search turns raw request parameters into response envelopes. It
// runs validation, compilation, and execution for one request and never
// returns an error: every failure becomes a code=1 envelope.
package search

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/pdiddy/paper-searcher/internal/query"
	"github.com/pdiddy/paper-searcher/internal/store"
	"github.com/pdiddy/paper-searcher/pkg/types"
)

// Executor runs compiled predicates against stored papers.
type Executor interface {
	Search(ctx context.Context, pred query.Predicate, page query.Page) (types.SearchPage, error)
	Abstract(ctx context.Context, id int64) (types.TitleAbstract, error)
}

// Catalog looks up CCF venue metadata.
type Catalog interface {
	ListVenues(ctx context.Context, filter types.VenueFilter) ([]types.Venue, error)
	VenueInfo(ctx context.Context, abbr string) (types.Venue, error)
}

// ErrInvalidID is returned for paper ids that are not positive integers.
var ErrInvalidID = errors.New("invalid paper id")

// ErrInvalidFilter is returned for unknown venue filter values.
var ErrInvalidFilter = errors.New("invalid venue filter")

// Service answers search, abstract, and venue requests.
type Service struct {
	exec    Executor
	catalog Catalog
	policy  types.SearchPolicy
}

// New returns a Service. catalog may be nil when venue lookups are not
// served.
func New(exec Executor, catalog Catalog, policy types.SearchPolicy) *Service {
	return &Service{exec: exec, catalog: catalog, policy: policy}
}

// Policy returns the search policy the service validates against.
func (s *Service) Policy() types.SearchPolicy {
	return s.policy
}

// Search validates raw, compiles it, and executes it. Validation failures
// never reach the executor.
func (s *Service) Search(ctx context.Context, raw query.RawRequest) types.SearchResponse {
	req, err := query.Validate(raw, s.policy)
	if err != nil {
		return searchFailure(err)
	}
	page, err := s.exec.Search(ctx, req.Compile(), req.Page)
	if err != nil {
		return searchFailure(err)
	}
	if page.Rows == nil {
		page.Rows = []types.Paper{}
	}
	return types.SearchResponse{Code: types.CodeOK, Msg: types.MsgSuccess, SearchPage: &page}
}

func searchFailure(err error) types.SearchResponse {
	return types.SearchResponse{Code: types.CodeFailed, Msg: err.Error()}
}

// Abstract returns the title and abstract of the paper identified by
// rawID, which must be a positive integer. An id with no paper succeeds
// with empty data.
func (s *Service) Abstract(ctx context.Context, rawID string) types.DataResponse {
	id, err := ParseID(rawID)
	if err != nil {
		return dataFailure(err)
	}
	row, err := s.exec.Abstract(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return dataSuccess([]types.TitleAbstract{})
	}
	if err != nil {
		return dataFailure(err)
	}
	return dataSuccess([]types.TitleAbstract{row})
}

// ParseID parses a positive integer paper id.
func ParseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w %q: must be a positive integer", ErrInvalidID, raw)
	}
	return id, nil
}

// Venues lists venues matching the given rank, domain, and type filters.
// Empty filters match everything.
func (s *Service) Venues(ctx context.Context, rank, domain, venueType string) types.DataResponse {
	if s.catalog == nil {
		return dataFailure(errors.New("venue catalog unavailable"))
	}
	filter, err := ParseVenueFilter(rank, domain, venueType)
	if err != nil {
		return dataFailure(err)
	}
	venues, err := s.catalog.ListVenues(ctx, filter)
	if err != nil {
		return dataFailure(err)
	}
	return dataSuccess(venues)
}

// Venue returns the venue with the given abbreviation.
func (s *Service) Venue(ctx context.Context, abbr string) types.DataResponse {
	if s.catalog == nil {
		return dataFailure(errors.New("venue catalog unavailable"))
	}
	if strings.TrimSpace(abbr) == "" {
		return dataFailure(fmt.Errorf("%w: abbreviation is empty", ErrInvalidFilter))
	}
	v, err := s.catalog.VenueInfo(ctx, abbr)
	if err != nil {
		return dataFailure(err)
	}
	return dataSuccess(v)
}

// ParseVenueFilter canonicalizes venue filter values: rank to uppercase,
// type to lowercase, and domain to its code in types.Domains.
func ParseVenueFilter(rank, domain, venueType string) (types.VenueFilter, error) {
	var f types.VenueFilter

	if rank = strings.TrimSpace(rank); rank != "" {
		f.Rank = types.CCFRank(strings.ToUpper(rank))
		if !f.Rank.Valid() {
			return types.VenueFilter{}, fmt.Errorf("%w: rank %q (want A, B, or C)", ErrInvalidFilter, rank)
		}
	}

	if domain = strings.TrimSpace(domain); domain != "" {
		for code := range types.Domains {
			if strings.EqualFold(code, domain) {
				f.Domain = code
				break
			}
		}
		if f.Domain == "" {
			return types.VenueFilter{}, fmt.Errorf("%w: domain %q", ErrInvalidFilter, domain)
		}
	}

	if venueType = strings.TrimSpace(venueType); venueType != "" {
		f.Type = types.VenueType(strings.ToLower(venueType))
		if f.Type != types.VenueConference && f.Type != types.VenueJournal {
			return types.VenueFilter{}, fmt.Errorf("%w: type %q (want conference or journal)", ErrInvalidFilter, venueType)
		}
	}

	return f, nil
}

func dataSuccess(data any) types.DataResponse {
	return types.DataResponse{Code: types.CodeOK, Msg: types.MsgSuccess, Data: data}
}

func dataFailure(err error) types.DataResponse {
	return types.DataResponse{Code: types.CodeFailed, Msg: err.Error()}
}
