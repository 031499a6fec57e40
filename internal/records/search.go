package records

import (
	"iter"
	"strings"

	"github.com/agnivade/levenshtein"
)

// fuzzyMinLen is the shortest query that may match with one typo.
const fuzzyMinLen = 4

// Search narrows seq to records whose name (as returned by name) matches
// query. An empty query matches everything.
func Search[T any](seq iter.Seq[T], query string, name func(T) string) iter.Seq[T] {
	q := strings.ToLower(strings.TrimSpace(query))
	return func(yield func(T) bool) {
		for it := range seq {
			if q != "" && !MatchName(name(it), q) {
				continue
			}
			if !yield(it) {
				return
			}
		}
	}
}

// MatchName reports whether query is a substring of name, or is within one
// edit of a whole word of name. Both sides are compared case-insensitively.
func MatchName(name, query string) bool {
	n := strings.ToLower(name)
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" || strings.Contains(n, q) {
		return true
	}
	if len(q) < fuzzyMinLen {
		return false
	}
	for _, word := range strings.Fields(n) {
		if levenshtein.ComputeDistance(word, q) <= 1 {
			return true
		}
	}
	return false
}
