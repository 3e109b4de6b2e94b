package io

import (
	"encoding/json"
	"fmt"
	stdio "io"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/idlab-discover/agropredict-cli/internal/dataset"
	"github.com/idlab-discover/agropredict-cli/internal/ml"
	"github.com/idlab-discover/agropredict-cli/internal/trainer"
)

// Report is the serialisable outcome of a training run.
type Report struct {
	Dataset     DatasetInfo     `json:"dataset" yaml:"dataset"`
	Split       SplitInfo       `json:"split" yaml:"split"`
	Metrics     []ml.Metric     `json:"metrics" yaml:"metrics"`
	Best        string          `json:"best" yaml:"best"`
	Importances []ml.Importance `json:"feature_importances,omitempty" yaml:"feature_importances,omitempty"`
}

// DatasetInfo identifies the training table.
type DatasetInfo struct {
	Rows        int    `json:"rows" yaml:"rows"`
	Seed        uint64 `json:"seed" yaml:"seed"`
	Fingerprint string `json:"fingerprint" yaml:"fingerprint"`
}

// SplitInfo describes the held-out partition and model settings.
type SplitInfo struct {
	Seed      uint64  `json:"seed" yaml:"seed"`
	TestSize  float64 `json:"test_size" yaml:"test_size"`
	TrainRows int     `json:"train_rows" yaml:"train_rows"`
	TestRows  int     `json:"test_rows" yaml:"test_rows"`
	Trees     int     `json:"trees" yaml:"trees"`
	MaxDepth  int     `json:"max_depth" yaml:"max_depth"`
}

// NewReport flattens a training result.
func NewReport(ds *dataset.Dataset, res *trainer.Result) Report {
	return Report{
		Dataset: DatasetInfo{
			Rows:        ds.Len(),
			Seed:        ds.Seed(),
			Fingerprint: res.Fingerprint,
		},
		Split: SplitInfo{
			Seed:      res.Options.Seed,
			TestSize:  res.Options.TestSize,
			TrainRows: res.TrainRows,
			TestRows:  res.TestRows,
			Trees:     res.Options.Trees,
			MaxDepth:  res.Options.MaxDepth,
		},
		Metrics:     res.Metrics,
		Best:        res.Best().Model,
		Importances: res.Importances,
	}
}

// Encode writes v as indented JSON or as YAML.
func Encode(w stdio.Writer, v any, format string) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unsupported output format: %q", format)
}
