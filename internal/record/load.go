package record

import (
	"bytes"
	stderrors "errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"unicode/utf8"

	"github.com/goccy/go-json"

	"git.home.luguber.info/inful/pagegen/internal/foundation/errors"
	"git.home.luguber.info/inful/pagegen/internal/logfields"
)

// Load reads the JSON file at path and normalizes it into records.
func Load(path string) ([]Record, error) {
	// #nosec G304 -- path is the user-supplied dataset.
	data, err := os.ReadFile(path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, errors.NotFoundError("JSON file not found").
				WithCause(err).
				WithContext("path", path).
				Build()
		}
		return nil, errors.WrapError(err, errors.CategoryInput, "read JSON file").
			Fatal().
			WithContext("path", path).
			Build()
	}

	if !utf8.Valid(data) {
		return nil, errors.InputError("JSON file is not valid UTF-8").
			WithContext("path", path).
			Build()
	}

	raw, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryInput, "parse JSON file").
			Fatal().
			WithContext("path", path).
			Build()
	}

	records, err := Normalize(raw)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryValidation, "unsupported JSON shape").
			Fatal().
			WithContext("path", path).
			Build()
	}

	if entries, ok := raw.([]any); ok && len(entries) != len(records) {
		slog.Debug("Skipped non-object entries",
			logfields.Path(path),
			logfields.Count(len(entries)-len(records)))
	}
	slog.Info("Loaded records", logfields.Path(path), logfields.Count(len(records)))
	return records, nil
}

// Decode reads exactly one JSON value from r. Numbers are kept as their
// literal text so payload values render exactly as written.
func Decode(r io.Reader) (any, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}

	var extra any
	switch err := dec.Decode(&extra); {
	case err == io.EOF:
		return v, nil
	case err != nil:
		return nil, err
	default:
		return nil, stderrors.New("unexpected data after top-level JSON value")
	}
}
