// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"encoding/json"
	"fmt"
)

// Paper is one row of the papers table: a single conference or journal
// paper listed by DBLP. JSON keys follow the column names of the search
// API (conference, cat) rather than the Go field names.
type Paper struct {
	// ID is the row identifier assigned by the store.
	ID int64 `json:"id" yaml:"id,omitempty"`

	// Venue is the uppercase venue abbreviation (e.g. "CCS").
	Venue string `json:"conference" yaml:"conference"`

	// Year is the publication year.
	Year int `json:"year" yaml:"year"`

	// Volume is the proceedings or journal volume, when known.
	Volume *int `json:"volume" yaml:"volume,omitempty"`

	// Title is the paper title. Titles are unique across the store.
	Title string `json:"title" yaml:"title"`

	// Href links to the paper's DBLP record page.
	Href string `json:"href" yaml:"href,omitempty"`

	// Origin is the listing page the paper was collected from.
	Origin string `json:"origin" yaml:"origin,omitempty"`

	// Abstract is nil when no abstract has been collected.
	Abstract *string `json:"abstract" yaml:"abstract,omitempty"`

	// Bib links to the BibTeX export for the paper.
	Bib string `json:"bib" yaml:"bib,omitempty"`

	// Category is a free-form topic tag.
	Category string `json:"cat" yaml:"cat,omitempty"`
}

// PaperColumns lists the papers table columns in the order rows are
// scanned and serialized.
var PaperColumns = []string{
	"id", "conference", "year", "volume", "title",
	"href", "origin", "abstract", "bib", "cat",
}

// TitleAbstract is the payload of an abstract lookup. It serializes as a
// two-element array, [title, abstract], with abstract null when missing.
type TitleAbstract struct {
	Title    string
	Abstract *string
}

// MarshalJSON encodes t as [title, abstract].
func (t TitleAbstract) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{t.Title, t.Abstract})
}

// UnmarshalJSON decodes a [title, abstract] pair.
func (t *TitleAbstract) UnmarshalJSON(data []byte) error {
	var pair []*string
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 || pair[0] == nil {
		return fmt.Errorf("title/abstract pair: want [title, abstract], got %s", data)
	}
	t.Title = *pair[0]
	t.Abstract = pair[1]
	return nil
}
