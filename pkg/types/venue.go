// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// VenueType distinguishes conferences from journals in the CCF listing.
type VenueType string

const (
	VenueConference VenueType = "conference"
	VenueJournal    VenueType = "journal"
)

// CCFRank is the China Computer Federation recommendation tier.
type CCFRank string

const (
	RankA CCFRank = "A"
	RankB CCFRank = "B"
	RankC CCFRank = "C"
)

// Valid reports whether r is one of A, B, or C.
func (r CCFRank) Valid() bool {
	return r == RankA || r == RankB || r == RankC
}

// Domains maps CCF domain codes to their descriptive names.
var Domains = map[string]string{
	"ARCH":  "Computer Architecture / Parallel and Distributed Computing / Storage Systems",
	"CN":    "Computer Networks",
	"NIS":   "Network and Information Security",
	"SE":    "Software Engineering / System Software / Programming Languages",
	"DB":    "Databases / Data Mining / Information Retrieval",
	"TC":    "Theoretical Computer Science",
	"GM":    "Computer Graphics and Multimedia",
	"AI":    "Artificial Intelligence",
	"HCI":   "Human-Computer Interaction and Pervasive Computing",
	"Cross": "Interdisciplinary / Comprehensive / Emerging",
}

// Venue is a conference or journal from the CCF ranking, keyed by
// abbreviation.
type Venue struct {
	ID           int64     `json:"id" yaml:"id,omitempty"`
	Abbreviation string    `json:"abbreviation" yaml:"abbreviation"`
	FullName     string    `json:"full_name" yaml:"full_name"`
	Publisher    string    `json:"publisher" yaml:"publisher,omitempty"`
	Rank         CCFRank   `json:"ccf_rank" yaml:"ccf_rank"`
	Type         VenueType `json:"venue_type" yaml:"venue_type"`
	Domain       string    `json:"domain" yaml:"domain"`
	DBLPURL      string    `json:"dblp_url,omitempty" yaml:"dblp_url,omitempty"`
	CreatedAt    time.Time `json:"created_at" yaml:"-"`
	UpdatedAt    time.Time `json:"updated_at" yaml:"-"`
}

// VenueFilter narrows a venue listing. Empty fields match everything.
type VenueFilter struct {
	Rank   CCFRank
	Domain string
	Type   VenueType
}

// VenueStatistics summarizes the venues table.
type VenueStatistics struct {
	Total    int            `json:"total" yaml:"total"`
	ByRank   map[string]int `json:"by_rank" yaml:"by_rank"`
	ByType   map[string]int `json:"by_type" yaml:"by_type"`
	ByDomain map[string]int `json:"by_domain" yaml:"by_domain"`
}
