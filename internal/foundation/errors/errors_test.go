package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestClassifiedError(t *testing.T) {
	t.Run("Basic error creation", func(t *testing.T) {
		err := NewError(CategoryConfig, "invalid configuration").
			WithSeverity(SeverityFatal).
			WithContext("file", "pagegen.yaml").
			Build()

		if err.Category() != CategoryConfig {
			t.Errorf("expected category %s, got %s", CategoryConfig, err.Category())
		}
		if err.Severity() != SeverityFatal {
			t.Errorf("expected severity %s, got %s", SeverityFatal, err.Severity())
		}
		if err.Message() != "invalid configuration" {
			t.Errorf("expected message 'invalid configuration', got %s", err.Message())
		}

		file, exists := err.Context().Get("file")
		if !exists || file != "pagegen.yaml" {
			t.Errorf("expected context file=pagegen.yaml, got %v", file)
		}
	})

	t.Run("Error detection", func(t *testing.T) {
		err := InputError("malformed JSON").Build()

		if !IsClassified(err) {
			t.Error("expected error to be classified")
		}
		if !HasCategory(err, CategoryInput) {
			t.Error("expected error to have input category")
		}
		if !err.IsFatal() {
			t.Error("expected input error to be fatal")
		}
	})

	t.Run("Detection through wrapping", func(t *testing.T) {
		inner := RenderError("render detail page").Build()
		wrapped := fmt.Errorf("generate: %w", inner)

		if GetCategory(wrapped) != CategoryRender {
			t.Errorf("expected render category, got %s", GetCategory(wrapped))
		}
		if GetCategory(errors.New("plain")) != CategoryInternal {
			t.Error("expected unclassified errors to report internal category")
		}
	})
}

func TestErrorBuilder(t *testing.T) {
	original := errors.New("permission denied")
	err := WrapError(original, CategoryFileSystem, "write page").
		Fatal().
		WithContext("path", "out/index.html").
		Build()

	if !errors.Is(err, original) {
		t.Error("expected wrapped cause to be reachable with errors.Is")
	}
	if err.Cause() != original {
		t.Errorf("expected cause %v, got %v", original, err.Cause())
	}
	if got := err.Error(); got != "[filesystem:fatal] write page: permission denied" {
		t.Errorf("unexpected Error(): %s", got)
	}

	extended := err.WithContext("attempt", 1)
	if _, ok := err.Context().Get("attempt"); ok {
		t.Error("WithContext must not mutate the original error")
	}
	if v, ok := extended.Context().Get("attempt"); !ok || v != 1 {
		t.Errorf("expected attempt=1 on extended error, got %v", v)
	}
}

func TestWithContextOnEmptyContext(t *testing.T) {
	err := (&ClassifiedError{category: CategoryInput, message: "bad"}).WithContext("path", "data.json")
	if v, ok := err.Context().Get("path"); !ok || v != "data.json" {
		t.Errorf("expected path context, got %v", v)
	}
}
