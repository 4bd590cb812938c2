package report

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/specialistvlad/shipwright/internal/artifact"
	"github.com/specialistvlad/shipwright/internal/executor"
	"github.com/specialistvlad/shipwright/internal/node"
)

// NewRunID returns a fresh identifier for one invocation.
func NewRunID() string {
	return uuid.NewString()
}

// RunInfo is the context of a run that the engine does not know about.
type RunInfo struct {
	ID            string
	Requested     []string
	Configuration string
	Branch        string
	Version       string
	Package       *artifact.Artifact
	Started       time.Time
}

// Document is the serialisable outcome of a run.
type Document struct {
	RunID         string             `yaml:"run_id"`
	Started       time.Time          `yaml:"started"`
	Elapsed       string             `yaml:"elapsed"`
	Status        string             `yaml:"status"`
	Requested     []string           `yaml:"requested"`
	Configuration string             `yaml:"configuration"`
	Branch        string             `yaml:"branch,omitempty"`
	Version       string             `yaml:"version,omitempty"`
	FailedTarget  string             `yaml:"failed_target,omitempty"`
	RootCause     string             `yaml:"root_cause,omitempty"`
	Warnings      []string           `yaml:"warnings,omitempty"`
	Targets       []Target           `yaml:"targets"`
	Package       *artifact.Artifact `yaml:"package,omitempty"`
}

// Target is one plan member's outcome.
type Target struct {
	Name       string `yaml:"name"`
	State      string `yaml:"state"`
	SkipReason string `yaml:"skip_reason,omitempty"`
	Detail     string `yaml:"detail,omitempty"`
	Error      string `yaml:"error,omitempty"`
	Elapsed    string `yaml:"elapsed,omitempty"`
}

const (
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// Build combines the engine report with the run context.
func Build(info RunInfo, r *executor.Report) Document {
	doc := Document{
		RunID:         info.ID,
		Started:       info.Started.UTC(),
		Elapsed:       r.Elapsed.Round(time.Millisecond).String(),
		Status:        StatusSucceeded,
		Requested:     info.Requested,
		Configuration: info.Configuration,
		Branch:        info.Branch,
		Version:       info.Version,
		Warnings:      r.Warnings,
		Package:       info.Package,
	}
	if r.Failed() {
		doc.Status = StatusFailed
		doc.RootCause = r.RootCause.Error()
		var tf *executor.TargetFailure
		if errors.As(r.RootCause, &tf) {
			doc.FailedTarget = tf.Target
		}
	}
	for _, rec := range r.Records {
		t := Target{
			Name:       rec.Name,
			State:      rec.State.String(),
			SkipReason: rec.SkipReason.String(),
			Detail:     rec.Detail,
		}
		if rec.Err != nil {
			t.Error = rec.Err.Error()
		}
		if rec.State == node.Succeeded || rec.State == node.Failed {
			t.Elapsed = rec.Elapsed.Round(time.Millisecond).String()
		}
		doc.Targets = append(doc.Targets, t)
	}
	return doc
}

// WriteYAML saves doc to path, creating parent directories.
func WriteYAML(path string, doc Document) error {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing report %s: %w", path, err)
	}
	return nil
}

// ReadYAML loads a report written by WriteYAML.
func ReadYAML(path string) (Document, error) {
	var doc Document
	data, err := os.ReadFile(path)
	if err != nil {
		return doc, err
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return doc, fmt.Errorf("decoding report %s: %w", path, err)
	}
	return doc, nil
}
