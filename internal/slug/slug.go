// Package slug normalizes display names and usernames into the canonical keys
// used to name stored profile images.
package slug

import (
	"regexp"
	"strings"
)

// Separator joins the alphanumeric runs of a slug.
const Separator = "-"

var (
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)
	canonical       = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
)

// Slugify lower-cases name, collapses every run of characters outside [a-z0-9]
// into a single [Separator] and trims separators from both ends.
//
// Input with no ASCII letters or digits yields the empty string.
//
//	Slugify("Jane Doe!!")             // "jane-doe"
//	Slugify("  multiple   spaces ")   // "multiple-spaces"
func Slugify(name string) string {
	s := strings.ToLower(name)
	s = nonAlphanumeric.ReplaceAllString(s, Separator)
	return strings.Trim(s, Separator)
}

// Valid reports whether s is already a non-empty canonical slug.
func Valid(s string) bool {
	return canonical.MatchString(s)
}
