package io

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"go.yaml.in/yaml/v3"

	"github.com/idlab-discover/agropredict-cli/internal/dataset"
	"github.com/idlab-discover/agropredict-cli/internal/trainer"
)

func trainedReport(t *testing.T) Report {
	t.Helper()
	ds := dataset.Generate(3, 200)
	opts := trainer.DefaultOptions()
	opts.Trees = 10
	res, err := trainer.Train(context.Background(), ds, opts)
	if err != nil {
		t.Fatalf("Train: %v", err)
	}
	return NewReport(ds, res)
}

func TestNewReport(t *testing.T) {
	r := trainedReport(t)
	if r.Dataset.Rows != 200 || r.Dataset.Seed != 3 {
		t.Fatalf("dataset info = %+v", r.Dataset)
	}
	if r.Split.TrainRows+r.Split.TestRows != 200 || r.Split.TestRows != 40 {
		t.Fatalf("split info = %+v", r.Split)
	}
	if len(r.Metrics) != len(trainer.ModelNames) {
		t.Fatalf("expected %d metric rows, got %d", len(trainer.ModelNames), len(r.Metrics))
	}
	if r.Best == "" {
		t.Fatalf("best model not set")
	}
}

func TestEncode_JSON(t *testing.T) {
	r := trainedReport(t)
	var buf bytes.Buffer
	if err := Encode(&buf, r, "json"); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	metrics := decoded["metrics"].([]any)
	first := metrics[0].(map[string]any)
	for _, k := range []string{"model", "r2", "rmse", "mae"} {
		if _, ok := first[k]; !ok {
			t.Fatalf("metric row missing %q: %v", k, first)
		}
	}
}

func TestEncode_YAML(t *testing.T) {
	r := trainedReport(t)
	var buf bytes.Buffer
	if err := Encode(&buf, r, "YAML"); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !strings.Contains(buf.String(), "model: Linear Regression") {
		t.Fatalf("expected inline metric fields, got:\n%s", buf.String())
	}

	var decoded Report
	if err := yaml.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not YAML: %v", err)
	}
	if decoded.Metrics[2].Model != trainer.ModelForest || decoded.Dataset.Fingerprint != r.Dataset.Fingerprint {
		t.Fatalf("decoded report = %+v", decoded)
	}
}

func TestEncode_UnsupportedFormat(t *testing.T) {
	if err := Encode(&bytes.Buffer{}, Report{}, "toml"); err == nil {
		t.Fatalf("expected error for unsupported format")
	}
}
