// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for paper-searcher: paper
// and venue records, the search policy, and application configuration.
package types

import (
	"strings"
	"time"
)

// Environment names select which database file is used when no explicit
// path is configured.
const (
	EnvTest = "test"
	EnvProd = "prod"
)

// SearchPolicy holds the allow-lists and caps applied to every search
// request. It is passed explicitly to the validator and compiler so
// alternate policies can be exercised without global state.
type SearchPolicy struct {
	// AllowedVenues is the closed set of lowercase venue codes accepted by
	// the venue filter.
	AllowedVenues []string `json:"allowed_venues" yaml:"allowed_venues" mapstructure:"allowed_venues"`

	// MinYear and MaxYear bound the year filter, inclusive.
	MinYear int `json:"min_year" yaml:"min_year" mapstructure:"min_year"`
	MaxYear int `json:"max_year" yaml:"max_year" mapstructure:"max_year"`

	// MaxKeywordLength caps the raw query length in runes (default 200).
	MaxKeywordLength int `json:"max_keyword_length" yaml:"max_keyword_length" mapstructure:"max_keyword_length"`

	// MaxLimit caps the page size (default 100).
	MaxLimit int `json:"max_limit" yaml:"max_limit" mapstructure:"max_limit"`
}

// DefaultAllowedVenues are the venue codes served by the reference
// deployment: security, networking, and web venues.
var DefaultAllowedVenues = []string{
	"ccs", "sp", "spw", "uss", "cest", "foci", "soups", "woot",
	"tdsc", "tifs", "ndss", "acsac", "csur", "comsur", "esorics",
	"csfw", "dsn", "compsec", "raid", "jcs", "tissec", "srds",
	"jsac", "tmc", "ton", "sigcomm", "mobicom", "infocom", "nsdi", "www",
}

// DefaultSearchPolicy returns the policy used when configuration does not
// override it.
func DefaultSearchPolicy() SearchPolicy {
	venues := make([]string, len(DefaultAllowedVenues))
	copy(venues, DefaultAllowedVenues)
	return SearchPolicy{
		AllowedVenues:    venues,
		MinYear:          2016,
		MaxYear:          2025,
		MaxKeywordLength: 200,
		MaxLimit:         100,
	}
}

// AllowsVenue reports whether the lowercase code is in the allow-list.
func (p SearchPolicy) AllowsVenue(code string) bool {
	for _, v := range p.AllowedVenues {
		if strings.EqualFold(v, code) {
			return true
		}
	}
	return false
}

// DatabaseConfig locates the SQLite database files.
type DatabaseConfig struct {
	// Path is the production database (default "papers.db").
	Path string `json:"path" yaml:"path" mapstructure:"path"`

	// TestPath is the database used when Env is "test" (default "papers_test.db").
	TestPath string `json:"test_path" yaml:"test_path" mapstructure:"test_path"`
}

// ServerConfig holds HTTP listener settings for the search API.
type ServerConfig struct {
	Host         string        `json:"host" yaml:"host" mapstructure:"host"`
	Port         int           `json:"port" yaml:"port" mapstructure:"port"`
	ReadTimeout  time.Duration `json:"read_timeout" yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout" yaml:"write_timeout" mapstructure:"write_timeout"`
}

// Config is the full application configuration loaded from file,
// environment, and flags.
type Config struct {
	// Env is "test" or "prod". Unknown values are treated as "test".
	Env      string         `json:"env" yaml:"env" mapstructure:"env"`
	Database DatabaseConfig `json:"database" yaml:"database" mapstructure:"database"`
	Server   ServerConfig   `json:"server" yaml:"server" mapstructure:"server"`
	Policy   SearchPolicy   `json:"policy" yaml:"policy" mapstructure:"policy"`
}

// DBPath returns the database file for the configured environment.
func (c Config) DBPath() string {
	if strings.EqualFold(c.Env, EnvProd) {
		return c.Database.Path
	}
	return c.Database.TestPath
}

// EnvName returns the display label for the environment.
func (c Config) EnvName() string {
	if strings.EqualFold(c.Env, EnvProd) {
		return "PROD"
	}
	return "TEST"
}
