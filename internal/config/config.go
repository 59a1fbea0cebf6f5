// Package config loads the optional YAML run configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/capesgraph/authormerge/internal/author"
	"github.com/capesgraph/authormerge/internal/fault"
	"github.com/capesgraph/authormerge/internal/importer"
	"github.com/capesgraph/authormerge/internal/pipeline"
	"github.com/capesgraph/authormerge/internal/resolve"
)

// DefaultFile is looked up in the working directory when no path is given.
const DefaultFile = "authormerge.yml"

// Validation errors.
var (
	ErrNegativeMinScore = errors.New("min_score cannot be negative")
	ErrBadWorkers       = errors.New("workers must be at least 1")
	ErrBadFaultSamples  = errors.New("fault_samples cannot be negative")
	ErrUnknownAttribute = errors.New("unknown attribute")
)

// Config is the run configuration stored in authormerge.yml.
type Config struct {
	Delimiter    string              `yaml:"delimiter"`
	MinScore     int                 `yaml:"min_score"`
	MergeSchema  []string            `yaml:"merge_schema,omitempty"`
	Priorities   map[string][]string `yaml:"priorities,omitempty"`
	Workers      int                 `yaml:"workers"`
	FaultSamples int                 `yaml:"fault_samples"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Delimiter:    string(importer.DefaultDelimiter),
		MinScore:     resolve.DefaultMinScore,
		MergeSchema:  append([]string(nil), author.AttributeNames...),
		Priorities:   pipeline.DefaultPriorities(),
		Workers:      1,
		FaultSamples: fault.DefaultSampleLimit,
	}
}

// Load reads the configuration at path. An empty path means DefaultFile,
// and a missing DefaultFile yields the defaults. A missing explicit path is
// an error. Keys absent from the file keep their default value.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", filepath.Base(path), err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", filepath.Base(path), err)
	}
	return cfg, nil
}

// Validate checks value ranges and attribute names.
func (c *Config) Validate() error {
	if _, err := importer.ParseDelimiter(c.Delimiter); err != nil {
		return err
	}
	if c.MinScore < 0 {
		return ErrNegativeMinScore
	}
	if c.Workers < 1 {
		return ErrBadWorkers
	}
	if c.FaultSamples < 0 {
		return ErrBadFaultSamples
	}
	for _, name := range c.MergeSchema {
		if !knownAttribute(name) {
			return fmt.Errorf("merge_schema: %w %q", ErrUnknownAttribute, name)
		}
	}
	for name := range c.Priorities {
		if !knownAttribute(name) {
			return fmt.Errorf("priorities: %w %q", ErrUnknownAttribute, name)
		}
	}
	return nil
}

// Delim returns the parsed delimiter. Call after Validate.
func (c *Config) Delim() rune {
	r, err := importer.ParseDelimiter(c.Delimiter)
	if err != nil {
		return importer.DefaultDelimiter
	}
	return r
}

// Options converts the configuration into pipeline options with a fresh
// fault report.
func (c *Config) Options() pipeline.Options {
	opts := pipeline.DefaultOptions()
	opts.MinScore = c.MinScore
	opts.Schema = author.NewSchema(c.MergeSchema...)
	opts.Workers = c.Workers
	opts.Report = fault.NewReport(c.FaultSamples)

	priorities := pipeline.DefaultPriorities()
	for name, order := range c.Priorities {
		priorities[name] = order
	}
	opts.Priorities = priorities
	return opts
}

func knownAttribute(name string) bool {
	if name == author.FullName {
		return true
	}
	for _, a := range author.AttributeNames {
		if a == name {
			return true
		}
	}
	return false
}
