// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package catalog

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// =============================================================================
// KINDS
// =============================================================================

// Kind names one catalog list. The value is the API path segment.
type Kind string

const (
	KindActivities  Kind = "activities"
	KindSegments    Kind = "tramos"
	KindWorkers     Kind = "workers"
	KindSupervisors Kind = "supervisors"
)

// Kinds lists every catalog in display order.
var Kinds = []Kind{KindActivities, KindSegments, KindWorkers, KindSupervisors}

// ParseKind accepts the API name or the English alias.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "activities", "activity":
		return KindActivities, nil
	case "tramos", "segments", "segment":
		return KindSegments, nil
	case "workers", "worker":
		return KindWorkers, nil
	case "supervisors", "supervisor":
		return KindSupervisors, nil
	}
	return "", fmt.Errorf("unknown catalog %q", s)
}

// Label returns the display name of the catalog.
func (k Kind) Label() string {
	switch k {
	case KindActivities:
		return "Activities"
	case KindSegments:
		return "Segments"
	case KindWorkers:
		return "Workers"
	case KindSupervisors:
		return "Supervisors"
	}
	return string(k)
}

// HasPerson reports whether entries of this kind carry a RUT.
func (k Kind) HasPerson() bool {
	return k == KindWorkers || k == KindSupervisors
}

// =============================================================================
// ENTRY
// =============================================================================

// Entry is one catalog item. Activities and segments only use Name; workers
// also use RUT and Position; supervisors use RUT.
type Entry struct {
	ID       string `json:"id,omitempty"`
	Name     string `json:"nombre"`
	RUT      string `json:"rut,omitempty"`
	Position string `json:"cargo,omitempty"`
}

// UnmarshalJSON accepts both "id" and "_id" for the identifier.
func (e *Entry) UnmarshalJSON(data []byte) error {
	type alias Entry
	aux := struct {
		*alias
		MongoID string `json:"_id"`
	}{alias: (*alias)(e)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if e.ID == "" {
		e.ID = aux.MongoID
	}
	return nil
}

// Validate checks the fields required for kind.
func (e Entry) Validate(kind Kind) error {
	if strings.TrimSpace(e.Name) == "" {
		return fmt.Errorf("%s: name is required", kind)
	}
	if kind.HasPerson() && strings.TrimSpace(e.RUT) == "" {
		return fmt.Errorf("%s: RUT is required", kind)
	}
	if kind == KindWorkers && strings.TrimSpace(e.Position) == "" {
		return fmt.Errorf("%s: position is required", kind)
	}
	return nil
}

// =============================================================================
// CATALOG
// =============================================================================

// Catalog holds the four reference lists.
type Catalog struct {
	Activities  []Entry `json:"activities"`
	Segments    []Entry `json:"tramos"`
	Workers     []Entry `json:"workers"`
	Supervisors []Entry `json:"supervisors"`
}

// List returns the entries of kind.
func (c *Catalog) List(kind Kind) []Entry {
	switch kind {
	case KindActivities:
		return c.Activities
	case KindSegments:
		return c.Segments
	case KindWorkers:
		return c.Workers
	case KindSupervisors:
		return c.Supervisors
	}
	return nil
}

// Set replaces the entries of kind.
func (c *Catalog) Set(kind Kind, entries []Entry) {
	switch kind {
	case KindActivities:
		c.Activities = entries
	case KindSegments:
		c.Segments = entries
	case KindWorkers:
		c.Workers = entries
	case KindSupervisors:
		c.Supervisors = entries
	}
}

// Find returns the entry of kind with the given ID.
func (c *Catalog) Find(kind Kind, id string) (Entry, bool) {
	if id == "" {
		return Entry{}, false
	}
	for _, e := range c.List(kind) {
		if e.ID == id {
			return e, true
		}
	}
	return Entry{}, false
}

// ActivityName returns the activity name for id, "" if unknown.
func (c *Catalog) ActivityName(id string) string {
	e, _ := c.Find(KindActivities, id)
	return e.Name
}

// SegmentName returns the segment name for id, "" if unknown.
func (c *Catalog) SegmentName(id string) string {
	e, _ := c.Find(KindSegments, id)
	return e.Name
}

// Positions returns the distinct worker positions, sorted.
func (c *Catalog) Positions() []string {
	seen := make(map[string]bool)
	var out []string
	for _, w := range c.Workers {
		p := strings.TrimSpace(w.Position)
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// SearchWorkers returns workers whose name or RUT contains query, ignoring
// case and accents. An empty query returns every worker.
func (c *Catalog) SearchWorkers(query string) []Entry {
	q := Fold(query)
	if q == "" {
		return append([]Entry(nil), c.Workers...)
	}
	var out []Entry
	for _, w := range c.Workers {
		if strings.Contains(Fold(w.Name), q) || strings.Contains(Fold(w.RUT), q) {
			out = append(out, w)
		}
	}
	return out
}

// =============================================================================
// HELPERS
// =============================================================================

// Fold lowercases s and strips accents so "José" matches "jose". RUT
// punctuation (dots and dashes) is dropped as well.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	folded = strings.ToLower(strings.TrimSpace(folded))
	return strings.NewReplacer(".", "", "-", "").Replace(folded)
}
