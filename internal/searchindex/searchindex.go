// Package searchindex implements the search index contract (C8, spec.md
// §4.4): add/update/remove/flush plus a bbox+text+category+tag query with
// average-rating re-ranking. No example repo in the retrieval pack ships a
// geo/full-text search library, so the query engine itself is hand-rolled
// (DESIGN.md justifies this as core business logic, not an ambient
// concern); only its supporting pieces (ids, geo) reuse teacher code.
package searchindex

import (
	"context"
	"sort"
	"strings"
	"sync"

	"civicmap/internal/entities"
	"civicmap/internal/geo"
	"civicmap/internal/ids"
)

// Entry is one indexed place, carrying the aggregated ratings used for
// ranking and the invisible-result fallback.
type Entry struct {
	ID          ids.ID
	Pos         geo.Point
	Title       string
	Description string
	Categories  []string
	Tags        []string
	Ratings     entities.AverageRatings
}

// Query describes a search request (spec.md §4.4).
type Query struct {
	Bbox       *geo.Bbox
	Text       string
	Categories []string
	Tags       []string
	Limit      int
}

// maxInvisible bounds how many out-of-bbox results may be returned
// alongside the in-bbox matches.
const maxInvisible = 5

// Index is the contract the use-case layer depends on.
type Index interface {
	AddOrUpdate(ctx context.Context, entry Entry) error
	Remove(ctx context.Context, id ids.ID) error
	Flush(ctx context.Context) error
	Query(ctx context.Context, q Query) ([]Entry, error)
}

// Memory is an in-process Index, safe for concurrent use. It is the
// reference implementation; a durable on-disk index can implement the same
// contract without touching the use-case layer.
type Memory struct {
	mu      sync.RWMutex
	entries map[ids.ID]Entry
}

// NewMemory builds an empty in-memory index.
func NewMemory() *Memory {
	return &Memory{entries: map[ids.ID]Entry{}}
}

func (m *Memory) AddOrUpdate(ctx context.Context, entry Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[entry.ID] = entry
	return nil
}

func (m *Memory) Remove(ctx context.Context, id ids.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, id)
	return nil
}

// Flush is a no-op for the in-memory index; there is nothing to fsync.
func (m *Memory) Flush(ctx context.Context) error {
	return nil
}

// Query implements spec.md §4.4's ordering contract: matches are sorted by
// descending average rating; callers then split the result into "visible"
// (inside q.Bbox) and up to 5 "invisible" (outside) by calling Split.
func (m *Memory) Query(ctx context.Context, q Query) ([]Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matches []Entry
	for _, e := range m.entries {
		if q.Bbox != nil && !q.Bbox.Contains(e.Pos) {
			continue
		}
		if !matchesText(e, q.Text) {
			continue
		}
		if !matchesCategories(e, q.Categories) {
			continue
		}
		if !matchesTags(e, q.Tags) {
			continue
		}
		matches = append(matches, e)
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Ratings.Total > matches[j].Ratings.Total
	})

	if q.Limit > 0 && len(matches) > q.Limit {
		matches = matches[:q.Limit]
	}
	return matches, nil
}

func matchesText(e Entry, text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return true
	}
	text = strings.ToLower(text)
	return strings.Contains(strings.ToLower(e.Title), text) ||
		strings.Contains(strings.ToLower(e.Description), text)
}

func matchesCategories(e Entry, categories []string) bool {
	if len(categories) == 0 {
		return true
	}
	want := toSet(categories)
	for _, c := range e.Categories {
		if _, ok := want[c]; ok {
			return true
		}
	}
	return false
}

func matchesTags(e Entry, tags []string) bool {
	if len(tags) == 0 {
		return true
	}
	want := toSet(tags)
	for _, t := range e.Tags {
		if _, ok := want[t]; ok {
			return true
		}
	}
	return false
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, it := range items {
		set[it] = struct{}{}
	}
	return set
}

// Split partitions query results from a bbox-bearing Query into the
// entries that actually lie inside the box ("visible") and up to 5 that
// fall outside it ("invisible"), preserving the incoming (rating-sorted)
// order within each group.
func Split(results []Entry, bbox *geo.Bbox) (visible, invisible []Entry) {
	if bbox == nil {
		return results, nil
	}
	for _, e := range results {
		if bbox.Contains(e.Pos) {
			visible = append(visible, e)
			continue
		}
		if len(invisible) < maxInvisible {
			invisible = append(invisible, e)
		}
	}
	return visible, invisible
}

// ExtendedBbox returns bbox padded by a margin fraction, for use-case
// layers that widen the search area before querying (spec.md §4.4: "may be
// extended by ~10% margin by the use-case layer").
func ExtendedBbox(bbox geo.Bbox, margin float64) geo.Bbox {
	return bbox.Extend(margin)
}
