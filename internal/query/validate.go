// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package query

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/pdiddy/paper-searcher/pkg/types"
)

// keywordPattern accepts letters and digits of any script, combining
// marks, underscore, whitespace, and the two operators.
var keywordPattern = regexp.MustCompile(`^[\p{L}\p{M}\p{N}_\s+|]+$`)

// Param is an optional request parameter. Present distinguishes an
// explicitly empty value from an absent one.
type Param struct {
	Value   string
	Present bool
}

// Set returns a present Param holding v.
func Set(v string) Param {
	return Param{Value: v, Present: true}
}

// RawRequest holds search parameters exactly as received.
type RawRequest struct {
	Query  string
	Venues Param
	Years  Param
	Offset string
	Limit  string
}

// Page is a validated offset and limit.
type Page struct {
	Offset int
	Limit  int
}

// Request is a validated search request ready for compilation.
type Request struct {
	Keyword string
	Query   Query
	Venues  []string
	Years   []int
	Page    Page
}

// Validate checks raw against policy and parses the keyword expression.
// Checks run in a fixed order (keyword, pagination, venues, years) and the
// first failure is returned as a *ValidationError.
func Validate(raw RawRequest, policy types.SearchPolicy) (Request, error) {
	keyword := Normalize(raw.Query)
	if err := CheckKeyword(keyword, policy); err != nil {
		return Request{}, err
	}

	page, err := ParsePagination(raw.Offset, raw.Limit, policy)
	if err != nil {
		return Request{}, err
	}

	venues, err := ParseVenues(raw.Venues, policy)
	if err != nil {
		return Request{}, err
	}

	years, err := ParseYears(raw.Years, policy)
	if err != nil {
		return Request{}, err
	}

	return Request{
		Keyword: keyword,
		Query:   Parse(keyword),
		Venues:  venues,
		Years:   years,
		Page:    page,
	}, nil
}

// CheckKeyword rejects a non-empty keyword containing characters outside
// the allowed set, then one longer than policy.MaxKeywordLength runes.
func CheckKeyword(q string, policy types.SearchPolicy) error {
	if q != "" && !keywordPattern.MatchString(q) {
		return reject(InvalidKeywordFormat, "q", q,
			"only letters, digits, underscore, whitespace, '+' and '|' are allowed")
	}
	if max := policy.MaxKeywordLength; max > 0 && utf8.RuneCountInString(q) > max {
		return reject(KeywordTooLong, "q", truncate(q, 32),
			"at most "+strconv.Itoa(max)+" characters are allowed")
	}
	return nil
}

// ParsePagination parses offset and limit. Both must be integers; offset
// is floored at 0 and limit is clamped to [1, policy.MaxLimit].
func ParsePagination(offset, limit string, policy types.SearchPolicy) (Page, error) {
	off, err := strconv.Atoi(strings.TrimSpace(offset))
	if err != nil {
		return Page{}, reject(InvalidPagination, "offset", offset, "must be an integer")
	}
	lim, err := strconv.Atoi(strings.TrimSpace(limit))
	if err != nil {
		return Page{}, reject(InvalidPagination, "limit", limit, "must be an integer")
	}

	if off < 0 {
		off = 0
	}
	if lim < 1 {
		lim = 1
	}
	if policy.MaxLimit > 0 && lim > policy.MaxLimit {
		lim = policy.MaxLimit
	}
	return Page{Offset: off, Limit: lim}, nil
}

// ParseVenues splits a comma-separated venue list and checks every code
// against the allow-list. An absent parameter yields nil; a present but
// empty one, or any unknown code, rejects the whole list. Codes are
// returned uppercase, without duplicates, in input order.
func ParseVenues(p Param, policy types.SearchPolicy) ([]string, error) {
	if !p.Present {
		return nil, nil
	}
	if strings.TrimSpace(p.Value) == "" {
		return nil, reject(InvalidVenue, "s", p.Value, "venue filter is empty")
	}

	var (
		venues []string
		seen   = make(map[string]bool)
	)
	for _, tok := range strings.Split(p.Value, ",") {
		code := strings.ToLower(strings.TrimSpace(tok))
		if !policy.AllowsVenue(code) {
			return nil, reject(InvalidVenue, "s", tok, "unknown venue code")
		}
		canonical := strings.ToUpper(code)
		if seen[canonical] {
			continue
		}
		seen[canonical] = true
		venues = append(venues, canonical)
	}
	return venues, nil
}

// ParseYears splits a comma-separated year list. Every token must be
// exactly four ASCII digits within [policy.MinYear, policy.MaxYear]. An
// absent parameter yields nil; a present but empty one rejects.
func ParseYears(p Param, policy types.SearchPolicy) ([]int, error) {
	if !p.Present {
		return nil, nil
	}
	if strings.TrimSpace(p.Value) == "" {
		return nil, reject(InvalidYear, "y", p.Value, "year filter is empty")
	}

	var (
		years []int
		seen  = make(map[int]bool)
	)
	for _, tok := range strings.Split(p.Value, ",") {
		tok = strings.TrimSpace(tok)
		if !isFourDigits(tok) {
			return nil, reject(InvalidYear, "y", tok, "year must be four digits")
		}
		year, _ := strconv.Atoi(tok)
		if year < policy.MinYear || year > policy.MaxYear {
			return nil, reject(InvalidYear, "y", tok,
				"year must be between "+strconv.Itoa(policy.MinYear)+" and "+strconv.Itoa(policy.MaxYear))
		}
		if seen[year] {
			continue
		}
		seen[year] = true
		years = append(years, year)
	}
	return years, nil
}

func isFourDigits(s string) bool {
	if len(s) != 4 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return string(r[:max-3]) + "..."
}
