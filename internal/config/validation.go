package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/pagegen/internal/render"
)

// Validate checks a configuration with defaults already applied.
func Validate(cfg *Config) error {
	if err := validateIndexFile(cfg.Output.IndexFile); err != nil {
		return err
	}
	if len(cfg.Names.Keys) == 0 {
		return errors.New("names.keys must list at least one key")
	}
	for i, k := range cfg.Names.Keys {
		if strings.TrimSpace(k) == "" {
			return fmt.Errorf("names.keys[%d] is empty", i)
		}
	}
	if _, err := render.ParseMissingKeyMode(cfg.Templates.MissingKey); err != nil {
		return fmt.Errorf("templates.missing_key: %w", err)
	}
	return nil
}

func validateIndexFile(name string) error {
	if name == "" {
		return errors.New("output.index_file is required")
	}
	if name == "." || name == ".." || filepath.Base(name) != name || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("output.index_file %q must be a plain file name", name)
	}
	return nil
}
