// Package search provides the text-matching primitive behind the portal's
// record search: Unicode case-folded substring containment. The stored data
// is user-supplied and not limited to ASCII (deployments include
// Persian-language communities), so matching folds with golang.org/x/text
// rather than strings.ToLower.
//
// The package is deliberately small and logging-free; callers decide what a
// match means and how results are assembled.
package search

import (
	"strings"

	"golang.org/x/text/cases"
)

// Fold returns s trimmed and case-folded for caseless comparison.
//
// A fresh Caser is built per call: cases.Caser carries internal state and is
// not safe for concurrent reuse.
func Fold(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

// Contains reports whether haystack contains needle under case folding.
// An empty needle matches every haystack, including the empty one; this is
// what lets an empty search query list all records.
func Contains(haystack, needle string) bool {
	return strings.Contains(Fold(haystack), Fold(needle))
}

// ContainsAny reports whether any of the fields contains needle under case
// folding. The needle is folded once.
func ContainsAny(needle string, fields ...string) bool {
	n := Fold(needle)
	for _, f := range fields {
		if strings.Contains(Fold(f), n) {
			return true
		}
	}
	return false
}
