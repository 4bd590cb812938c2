package app

import (
	"errors"
	"time"

	"github.com/specialistvlad/shipwright/internal/config"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	Root          string
	ProjectFile   string // empty means <Root>/build.hcl when present
	Configuration config.Configuration
	GitHubToken   string
	Targets       []string

	Workers           int
	Timeout           time.Duration
	ContinueOnFailure bool

	ReportPath string
	PlanOnly   bool
	ListOnly   bool
	NoColor    bool

	LogFormat string
	LogLevel  string
}

// NewConfig validates cfg and fills in defaults.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.Root == "" {
		return nil, errors.New("Root is a required configuration field and cannot be empty")
	}
	if cfg.Configuration == "" {
		cfg.Configuration = config.Debug
	}
	if cfg.Workers < 1 {
		return nil, errors.New("workers must be at least 1")
	}
	if cfg.Timeout < 0 {
		return nil, errors.New("timeout must not be negative")
	}
	if cfg.PlanOnly && cfg.ListOnly {
		return nil, errors.New("-plan and -list are mutually exclusive")
	}
	return &cfg, nil
}
