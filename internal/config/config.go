// Package config loads the source registry and environment overrides.
//
// The registry is a YAML file listing every site generation the tool knows how
// to scrape. A default registry is embedded in the binary; --config points at a
// replacement. Environment variables (optionally from a .env file) override the
// selected source, data directory and log level.
package config

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pfrederiksen/parole-stats/internal/datetext"
	"github.com/pfrederiksen/parole-stats/internal/report"
	"github.com/pfrederiksen/parole-stats/internal/resolver"
	"gopkg.in/yaml.v3"
)

//go:embed sources.yaml
var sourcesYAML embed.FS

const (
	StrategyTemplate   = "template"
	StrategyPagination = "pagination"

	TableFirst  = "first"
	TableHeader = "header"
)

// Registry holds the configuration for all sources
type Registry struct {
	Default string         `yaml:"default,omitempty"`
	Sources []SourceConfig `yaml:"sources"`
}

// SourceConfig describes one site generation
type SourceConfig struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description,omitempty"`
	Strategy    string   `yaml:"strategy"`               // "template" or "pagination"
	BaseURL     string   `yaml:"base_url,omitempty"`     // pagination listing
	Templates   []string `yaml:"templates,omitempty"`    // URL templates with {date}
	DateStyle   string   `yaml:"date_style,omitempty"`   // "de" or "plain", default "de"
	Table       string   `yaml:"table"`                  // "first" or "header"
	HeaderMatch string   `yaml:"header_match,omitempty"` // default "cuba"
	DataDir     string   `yaml:"data_dir"`
	InitialDate string   `yaml:"initial_date"` // YYYY-MM-DD
}

// Load reads the registry at path, or the embedded registry when path is empty.
// Environment variables in the file (e.g. ${HOME}) are expanded.
func Load(path string) (*Registry, error) {
	var data []byte
	var err error
	if path == "" {
		data, err = sourcesYAML.ReadFile("sources.yaml")
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading registry: %w", err)
	}

	return Parse(data)
}

// Parse decodes and validates a registry
func Parse(data []byte) (*Registry, error) {
	var reg Registry
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &reg); err != nil {
		return nil, fmt.Errorf("parsing registry: %w", err)
	}

	if len(reg.Sources) == 0 {
		return nil, errors.New("registry has no sources")
	}

	seen := make(map[string]bool)
	for i := range reg.Sources {
		src := &reg.Sources[i]
		if err := src.Validate(); err != nil {
			return nil, err
		}
		if seen[src.Name] {
			return nil, fmt.Errorf("duplicate source %q", src.Name)
		}
		seen[src.Name] = true
	}

	if reg.Default != "" && !seen[reg.Default] {
		return nil, fmt.Errorf("default source %q is not defined", reg.Default)
	}

	return &reg, nil
}

// Source returns the named source. An empty name selects the default source,
// or the first one when no default is set.
func (r *Registry) Source(name string) (*SourceConfig, error) {
	if name == "" {
		name = r.Default
	}
	if name == "" {
		return &r.Sources[0], nil
	}

	for i := range r.Sources {
		if r.Sources[i].Name == name {
			return &r.Sources[i], nil
		}
	}
	return nil, fmt.Errorf("unknown source %q", name)
}

// Validate checks the source and fills in defaults
func (s *SourceConfig) Validate() error {
	if s.Name == "" {
		return errors.New("source without name")
	}

	switch s.Strategy {
	case StrategyTemplate:
		if len(s.Templates) == 0 {
			return fmt.Errorf("source %q: template strategy needs templates", s.Name)
		}
		for _, t := range s.Templates {
			if !strings.Contains(t, resolver.DatePlaceholder) {
				return fmt.Errorf("source %q: template %q has no %s placeholder", s.Name, t, resolver.DatePlaceholder)
			}
		}
	case StrategyPagination:
		if s.BaseURL == "" {
			return fmt.Errorf("source %q: pagination strategy needs base_url", s.Name)
		}
	default:
		return fmt.Errorf("source %q: unknown strategy %q", s.Name, s.Strategy)
	}

	if s.DateStyle == "" {
		s.DateStyle = string(datetext.StyleDe)
	}
	if !datetext.ValidStyle(datetext.Style(s.DateStyle)) {
		return fmt.Errorf("source %q: unknown date_style %q", s.Name, s.DateStyle)
	}

	if s.Table == "" {
		s.Table = TableHeader
	}
	if s.Table != TableFirst && s.Table != TableHeader {
		return fmt.Errorf("source %q: unknown table policy %q", s.Name, s.Table)
	}
	if s.HeaderMatch == "" {
		s.HeaderMatch = report.DefaultHeaderMatch
	}

	if s.DataDir == "" {
		return fmt.Errorf("source %q: data_dir is required", s.Name)
	}
	if _, err := s.Initial(); err != nil {
		return fmt.Errorf("source %q: %w", s.Name, err)
	}

	return nil
}

// Initial returns the first report date of the source
func (s *SourceConfig) Initial() (time.Time, error) {
	t, err := time.Parse(report.DateLayout, s.InitialDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid initial_date %q: %w", s.InitialDate, err)
	}
	return t, nil
}

// Resolver builds the URL resolver of the source
func (s *SourceConfig) Resolver(client resolver.Client) resolver.Resolver {
	if s.Strategy == StrategyPagination {
		return resolver.NewPaginationResolver(s.BaseURL, client)
	}
	return resolver.NewTemplateResolver(s.Templates, datetext.Style(s.DateStyle), client)
}

// Extractor builds the table extractor of the source
func (s *SourceConfig) Extractor() report.Extractor {
	if s.Table == TableFirst {
		return report.FirstTable{}
	}
	return report.HeaderContains{Text: s.HeaderMatch}
}

// Env holds the environment overrides
type Env struct {
	Source   string
	DataDir  string
	LogLevel string
}

// LoadEnv loads the .env files (or ./.env when none are given) and reads the
// PAROLE_* variables. Missing .env files are not an error.
func LoadEnv(files ...string) (Env, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Env{}, fmt.Errorf("loading .env: %w", err)
	}

	return Env{
		Source:   os.Getenv("PAROLE_SOURCE"),
		DataDir:  os.Getenv("PAROLE_DATA_DIR"),
		LogLevel: os.Getenv("PAROLE_LOG_LEVEL"),
	}, nil
}

// First returns the first non-empty value
func First(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
