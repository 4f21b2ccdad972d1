package entities

import (
	"sort"
	"strings"
)

// NormalizeTags implements spec.md §4.6: trim, split on ASCII space, strip
// every '#', trim again, drop empties, sort, dedup. Category ids must be
// merged into the raw tag list by the caller before normalization.
func NormalizeTags(raw []string) []string {
	var out []string
	for _, t := range raw {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		for _, part := range strings.Split(t, " ") {
			part = strings.ReplaceAll(part, "#", "")
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			out = append(out, part)
		}
	}
	sort.Strings(out)
	out = dedupSorted(out)
	return out
}

func dedupSorted(sorted []string) []string {
	if len(sorted) == 0 {
		return sorted
	}
	out := sorted[:1]
	for _, v := range sorted[1:] {
		if v != out[len(out)-1] {
			out = append(out, v)
		}
	}
	return out
}

// IsNormalizedTag reports whether t is already in normalized form: non-empty,
// no whitespace, no '#'.
func IsNormalizedTag(t string) bool {
	if t == "" {
		return false
	}
	if strings.ContainsAny(t, " \t\n\r#") {
		return false
	}
	return true
}

// MergeCategoryIDsIntoTags folds category identifiers into a raw tag list
// before normalization, the way spec.md §4.6 describes: category ids
// contribute to the tag multiset but remain distinguishable by id once
// resolved back against the Category table.
func MergeCategoryIDsIntoTags(categoryIDs []string, tags []string) []string {
	out := make([]string, 0, len(categoryIDs)+len(tags))
	out = append(out, categoryIDs...)
	out = append(out, tags...)
	return out
}

// TagSet returns the tags as a set for delta computation.
func TagSet(tags []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		set[t] = struct{}{}
	}
	return set
}

// TagDelta computes added/removed tags between an old and new normalized tag
// list (spec.md §4.1 tag ownership rule).
func TagDelta(oldTags, newTags []string) (added, removed []string) {
	oldSet := TagSet(oldTags)
	newSet := TagSet(newTags)
	for t := range newSet {
		if _, ok := oldSet[t]; !ok {
			added = append(added, t)
		}
	}
	for t := range oldSet {
		if _, ok := newSet[t]; !ok {
			removed = append(removed, t)
		}
	}
	sort.Strings(added)
	sort.Strings(removed)
	return added, removed
}
