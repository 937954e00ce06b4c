package workflow

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/oshokin/wallpaper-deployer/internal/config"
	"github.com/oshokin/wallpaper-deployer/internal/version"
)

// reportDocument is the YAML layout of the run report.
type reportDocument struct {
	Version    string       `yaml:"version"`
	StartedAt  time.Time    `yaml:"started_at"`
	FinishedAt time.Time    `yaml:"finished_at"`
	Success    bool         `yaml:"success"`
	Steps      []reportStep `yaml:"steps"`
}

type reportStep struct {
	Step  Step   `yaml:"step"`
	Kind  Kind   `yaml:"kind"`
	Fatal bool   `yaml:"fatal,omitempty"`
	Error string `yaml:"error,omitempty"`
}

func newReportDocument(summary *Summary) *reportDocument {
	doc := &reportDocument{
		Version:    version.Short(),
		StartedAt:  summary.StartedAt,
		FinishedAt: summary.FinishedAt,
		Success:    summary.Err() == nil,
		Steps:      make([]reportStep, 0, len(summary.Outcomes)),
	}

	for _, o := range summary.Outcomes {
		step := reportStep{
			Step:  o.Step,
			Kind:  o.Kind,
			Fatal: o.Fatal(),
		}

		if o.Err != nil {
			step.Error = o.Err.Error()
		}

		doc.Steps = append(doc.Steps, step)
	}

	return doc
}

// writeReport stores the summary at path, replacing any previous report in one rename.
func writeReport(path string, summary *Summary) error {
	data, err := yaml.Marshal(newReportDocument(summary))
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	path = filepath.Clean(path)
	tmpPath := path + ".tmp"

	if err = os.WriteFile(tmpPath, data, config.DefaultFilePermissions); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	if err = os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)

		return fmt.Errorf("replace report: %w", err)
	}

	return nil
}
