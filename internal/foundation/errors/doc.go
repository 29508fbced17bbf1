// Package errors provides the classified error primitives used across pagegen.
//
// Every failure pagegen can hit is fatal, so classification exists to give
// the CLI a readable message, a log category and a stable exit status rather
// than to drive retries.
//
// Example usage:
//
//	err := errors.RenderError("render detail page").
//		WithContext("template", "detail.html").
//		WithCause(execErr).
//		Build()
package errors
