package config

import (
	"bytes"
	stderrors "errors"
	"io"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/pagegen/internal/foundation/errors"
)

// Config is the optional pagegen configuration file.
type Config struct {
	Output    OutputConfig    `yaml:"output"`
	Names     NamesConfig     `yaml:"names"`
	Templates TemplatesConfig `yaml:"templates"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// OutputConfig controls output file naming.
type OutputConfig struct {
	IndexFile string `yaml:"index_file"`
}

// NamesConfig controls how a record's display name is resolved.
type NamesConfig struct {
	Keys     []string `yaml:"keys"`     // Lookup order under the record's "name" object
	Fallback string   `yaml:"fallback"` // Used when no key yields a non-empty string
}

// TemplatesConfig controls template execution.
type TemplatesConfig struct {
	MissingKey string `yaml:"missing_key"` // default, zero or error
}

// MetricsConfig controls metrics export.
type MetricsConfig struct {
	Textfile string `yaml:"textfile"` // Prometheus textfile path, empty disables
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills unset fields.
func ApplyDefaults(cfg *Config) {
	if cfg.Output.IndexFile == "" {
		cfg.Output.IndexFile = "index.html"
	}
	if len(cfg.Names.Keys) == 0 {
		cfg.Names.Keys = []string{"eng", "rus"}
	}
	if cfg.Names.Fallback == "" {
		cfg.Names.Fallback = "unknown"
	}
	if cfg.Templates.MissingKey == "" {
		cfg.Templates.MissingKey = "default"
	}
}

// Load reads the configuration file at path. An empty path yields Default.
// ${VAR} references are expanded from the environment before parsing.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}

	// #nosec G304 -- path is the user-supplied configuration file.
	data, err := os.ReadFile(path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, errors.ConfigError("configuration file not found").
				WithCause(err).
				WithContext("path", path).
				Build()
		}
		return nil, errors.ConfigError("read configuration file").
			WithCause(err).
			WithContext("path", path).
			Build()
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader([]byte(expanded)))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !stderrors.Is(err, io.EOF) {
		return nil, errors.ConfigError("parse configuration file").
			WithCause(err).
			WithContext("path", path).
			Build()
	}

	ApplyDefaults(&cfg)
	if err := Validate(&cfg); err != nil {
		return nil, errors.ConfigError("invalid configuration").
			WithCause(err).
			WithContext("path", path).
			Build()
	}
	return &cfg, nil
}
