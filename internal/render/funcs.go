package render

import (
	"bytes"
	"fmt"
	"reflect"
	"text/template"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"

	"git.home.luguber.info/inful/pagegen/internal/record"
	"git.home.luguber.info/inful/pagegen/internal/slug"
)

var (
	markdownRenderer = goldmark.New()
	markdownPolicy   = bluemonday.UGCPolicy()
)

func (e *TextEngine) builtinFuncs() template.FuncMap {
	return template.FuncMap{
		"displayName": e.displayName,
		"slugify":     slug.Make,
		"markdown":    Markdown,
		"default":     defaultValue,
	}
}

// displayName resolves a record's localized name the same way page
// filenames are derived.
func (e *TextEngine) displayName(v any) string {
	switch r := v.(type) {
	case record.Record:
		return record.ResolveName(r, e.nameKeys, e.fallback)
	case map[string]any:
		return record.ResolveName(record.Record(r), e.nameKeys, e.fallback)
	default:
		return e.fallback
	}
}

// Markdown renders CommonMark to sanitized HTML. Record payloads are
// untrusted, so raw HTML and scripts are filtered out.
func Markdown(v any) (string, error) {
	if v == nil {
		return "", nil
	}
	var buf bytes.Buffer
	if err := markdownRenderer.Convert([]byte(fmt.Sprint(v)), &buf); err != nil {
		return "", fmt.Errorf("markdown: %w", err)
	}
	return string(markdownPolicy.SanitizeBytes(buf.Bytes())), nil
}

// defaultValue is used as {{ .x | default "n/a" }}.
func defaultValue(fallback, v any) any {
	if v == nil {
		return fallback
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String, reflect.Slice, reflect.Map, reflect.Array:
		if rv.Len() == 0 {
			return fallback
		}
	case reflect.Bool:
		if !rv.Bool() {
			return fallback
		}
	}
	return v
}
