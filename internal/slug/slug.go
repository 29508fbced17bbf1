// Package slug derives filesystem-safe page names from display names.
package slug

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Fallback is returned whenever a name reduces to nothing.
const Fallback = "unknown"

// Extension is appended to a slug to form a page filename.
const Extension = ".html"

var separatorRun = regexp.MustCompile(`[^a-z0-9']+`)

// Make turns a display name into a stable identifier made of [a-z0-9'_].
//
// The name is lower-cased with full Unicode case mapping, every run of
// characters outside [a-z0-9'] collapses to one separator, separators at
// either end are dropped and the rest become underscores. Distinct names
// may share a slug. The result is never empty and Make(Make(s)) == Make(s).
func Make(name string) string {
	s := cases.Lower(language.Und).String(name)
	s = separatorRun.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	s = strings.ReplaceAll(s, "-", "_")
	if s == "" {
		return Fallback
	}
	return s
}

// Filename returns the page filename for name.
func Filename(name string) string {
	return Make(name) + Extension
}
