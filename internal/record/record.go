// Package record loads the JSON dataset and flattens it into Records.
//
// The input is a JSON array whose elements are either records themselves or
// wrappers holding a record under "data". Anything else is skipped.
package record

import (
	"fmt"

	"git.home.luguber.info/inful/pagegen/internal/slug"
)

// Well-known keys.
const (
	KeyData     = "data"
	KeyName     = "name"
	KeyFilename = "filename"
)

// DefaultNameKeys is the localized name lookup order.
var DefaultNameKeys = []string{"eng", "rus"}

// Record is one JSON object rendered as one detail page. Fields other than
// name and filename are passed to templates untouched.
type Record map[string]any

// DisplayName resolves the record's name with the default key order.
func (r Record) DisplayName() string {
	return ResolveName(r, DefaultNameKeys, slug.Fallback)
}

// Filename returns the attached page filename, or "" before SetFilename.
func (r Record) Filename() string {
	s, _ := r[KeyFilename].(string)
	return s
}

// SetFilename attaches the page filename so templates can link to it.
func (r Record) SetFilename(name string) {
	r[KeyFilename] = name
}

// ResolveName returns the first non-empty string found under name.<key> for
// keys in order, or fallback. A name that is not an object, and keys holding
// anything but a string, count as absent.
func ResolveName(r Record, keys []string, fallback string) string {
	var names map[string]any
	switch n := r[KeyName].(type) {
	case map[string]any:
		names = n
	case Record:
		names = n
	}
	for _, k := range keys {
		if s, ok := names[k].(string); ok && s != "" {
			return s
		}
	}
	return fallback
}

// Normalize flattens the decoded top-level JSON value into records in input
// order. The value must be an array. Objects with a "data" key contribute
// that value, other objects contribute themselves and every other element is
// dropped.
func Normalize(raw any) ([]Record, error) {
	entries, ok := raw.([]any)
	if !ok {
		return nil, &ShapeError{Kind: kindOf(raw)}
	}

	records := make([]Record, 0, len(entries))
	for i, entry := range entries {
		obj, isObj := entry.(map[string]any)
		if !isObj {
			continue
		}
		wrapped, hasData := obj[KeyData]
		if !hasData {
			records = append(records, Record(obj))
			continue
		}
		inner, ok := wrapped.(map[string]any)
		if !ok {
			return nil, &ShapeError{Index: i, Kind: kindOf(wrapped), Wrapped: true}
		}
		records = append(records, Record(inner))
	}
	return records, nil
}

// ShapeError reports input whose structure cannot yield records.
type ShapeError struct {
	// Index of the offending element when Wrapped is set.
	Index   int
	Kind    string
	Wrapped bool
}

func (e *ShapeError) Error() string {
	if e.Wrapped {
		return fmt.Sprintf("element %d: %q must hold an object, got %s", e.Index, KeyData, e.Kind)
	}
	return fmt.Sprintf("top-level JSON value must be an array, got %s", e.Kind)
}

func kindOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case bool:
		return "boolean"
	default:
		return "number"
	}
}
