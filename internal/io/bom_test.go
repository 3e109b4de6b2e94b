package io

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	cdx "github.com/CycloneDX/cyclonedx-go"
)

// modelCardBOM is the smallest BOM shaped like the builder's output: one
// model with an r2 metric trained on one data component.
func modelCardBOM() *cdx.BOM {
	metrics := []cdx.MLPerformanceMetric{{Type: "r2", Value: "0.9100"}}
	datasets := []cdx.MLDatasetChoice{{Ref: "pkg:generic/agropredict/datasets/yield"}}
	components := []cdx.Component{
		{Type: cdx.ComponentTypeData, BOMRef: "pkg:generic/agropredict/datasets/yield", Name: "yield"},
		{
			Type:   cdx.ComponentTypeMachineLearningModel,
			BOMRef: "pkg:generic/agropredict/models/random-forest",
			Name:   "Random Forest",
			ModelCard: &cdx.MLModelCard{
				ModelParameters:      &cdx.MLModelParameters{Task: "regression", Datasets: &datasets},
				QuantitativeAnalysis: &cdx.MLQuantitativeAnalysis{PerformanceMetrics: &metrics},
			},
		},
	}
	bom := cdx.NewBOM()
	bom.SpecVersion = cdx.SpecVersion1_6
	bom.Metadata = &cdx.Metadata{Component: &cdx.Component{Type: cdx.ComponentTypeApplication, Name: "agropredict"}}
	bom.Components = &components
	return bom
}

func TestParseSpecVersion(t *testing.T) {
	tcs := []struct {
		in   string
		want cdx.SpecVersion
		ok   bool
	}{
		{"1.0", cdx.SpecVersion1_0, true},
		{"1.4", cdx.SpecVersion1_4, true},
		{"1.5", cdx.SpecVersion1_5, true},
		{"1.6", cdx.SpecVersion1_6, true},
		{" 1.6 ", cdx.SpecVersion1_6, true},
		{"", 0, false},
		{"1", 0, false},
		{"1.7", 0, false},
		{"2.0", 0, false},
	}
	for _, tc := range tcs {
		got, ok := ParseSpecVersion(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Errorf("ParseSpecVersion(%q) = (%v,%v), want (%v,%v)", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestWriteBOM_RoundTrip(t *testing.T) {
	tcs := []struct {
		name, file, writeFmt, readFmt, spec string
		json                                bool
	}{
		{"json auto", "bom.json", "auto", " JSON ", "", true},
		{"json pinned spec", "out/nested/bom.cdx.json", "json", "json", "1.6", true},
		{"xml explicit", "bom.xml", "xml", "", "", false},
		{"xml by extension", "bom.cdx.xml", "auto", "auto", "1.6", false},
	}
	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tc.file)
			if err := WriteBOM(modelCardBOM(), path, tc.writeFmt, tc.spec); err != nil {
				t.Fatalf("WriteBOM: %v", err)
			}
			got, err := ReadBOM(path, tc.readFmt)
			if err != nil {
				t.Fatalf("ReadBOM: %v", err)
			}
			if got.Components == nil || len(*got.Components) != 2 {
				t.Fatalf("components lost in round trip")
			}
			if !tc.json {
				return
			}
			if got.SpecVersion != cdx.SpecVersion1_6 {
				t.Errorf("specVersion = %v", got.SpecVersion)
			}
			model := (*got.Components)[1]
			if model.ModelCard == nil || model.ModelCard.ModelParameters == nil ||
				(*model.ModelCard.ModelParameters.Datasets)[0].Ref != "pkg:generic/agropredict/datasets/yield" {
				t.Fatalf("model card lost in round trip: %+v", model.ModelCard)
			}
			if v := (*model.ModelCard.QuantitativeAnalysis.PerformanceMetrics)[0].Value; v != "0.9100" {
				t.Errorf("r2 = %q, want 0.9100", v)
			}
		})
	}
}

func TestReadBOM_Errors(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
		return p
	}
	jsonFile := write("bom.json", `{}`)
	broken := write("broken.json", `{`)

	tcs := []struct {
		name, path, format string
	}{
		{"missing file", filepath.Join(dir, "missing.json"), "auto"},
		{"json read as xml", jsonFile, "xml"},
		{"invalid json", broken, "json"},
		{"unsupported format", jsonFile, "yaml"},
	}
	for _, tc := range tcs {
		if _, err := ReadBOM(tc.path, tc.format); err == nil {
			t.Errorf("%s: expected error", tc.name)
		}
	}

	noExt := write("bom", `{}`)
	if _, err := ReadBOM(noExt, ""); err != nil {
		t.Errorf("auto without extension should read JSON: %v", err)
	}
}

func TestWriteBOM_Rejects(t *testing.T) {
	dir := t.TempDir()
	mismatch := filepath.Join(dir, "bom.json")
	if err := WriteBOM(modelCardBOM(), mismatch, "xml", ""); err == nil {
		t.Fatalf("expected error when format and extension disagree")
	}
	if _, err := os.Stat(mismatch); !os.IsNotExist(err) {
		t.Fatalf("no file should be created on mismatch")
	}
	if err := WriteBOM(modelCardBOM(), filepath.Join(dir, "bom2.json"), "json", "9.9"); err == nil {
		t.Fatalf("expected error for unsupported spec version")
	}
}

func TestEncodeBOM_ToWriter(t *testing.T) {
	var buf bytes.Buffer
	if err := EncodeBOM(&buf, modelCardBOM(), "json", "1.5"); err != nil {
		t.Fatalf("EncodeBOM: %v", err)
	}
	for _, want := range []string{`"specVersion": "1.5"`, `"machine-learning-model"`, "Random Forest"} {
		if !bytes.Contains(buf.Bytes(), []byte(want)) {
			t.Errorf("output missing %s:\n%s", want, buf.String())
		}
	}
	if err := EncodeBOM(&buf, modelCardBOM(), "json", "0.9"); err == nil {
		t.Errorf("expected error for unsupported spec")
	}
}
