package builder

import (
	"strings"
	"testing"
	"time"

	cdx "github.com/CycloneDX/cyclonedx-go"
)

func TestAddMetaSerialNumber(t *testing.T) {
	a, b := &cdx.BOM{}, &cdx.BOM{}
	AddMetaSerialNumber(a)
	AddMetaSerialNumber(b)
	if !strings.HasPrefix(a.SerialNumber, "urn:uuid:") {
		t.Fatalf("SerialNumber = %q", a.SerialNumber)
	}
	if a.SerialNumber == b.SerialNumber {
		t.Fatalf("serial numbers should differ, both %q", a.SerialNumber)
	}

	kept := &cdx.BOM{SerialNumber: "urn:uuid:existing"}
	AddMetaSerialNumber(kept)
	if kept.SerialNumber != "urn:uuid:existing" {
		t.Fatalf("existing serial overwritten: %q", kept.SerialNumber)
	}
}

func TestAddMetaTimestamp(t *testing.T) {
	now := time.Date(2026, 3, 1, 14, 30, 0, 0, time.FixedZone("IST", 5*3600+1800))

	bom := &cdx.BOM{}
	AddMetaTimestamp(bom, now)
	if bom.Metadata.Timestamp != "2026-03-01T09:00:00Z" {
		t.Fatalf("Timestamp = %q", bom.Metadata.Timestamp)
	}

	AddMetaTimestamp(bom, now.Add(time.Hour))
	if bom.Metadata.Timestamp != "2026-03-01T09:00:00Z" {
		t.Fatalf("existing timestamp overwritten: %q", bom.Metadata.Timestamp)
	}
}

func TestAddMetaTools(t *testing.T) {
	tests := []struct {
		name, toolName, toolVersion string
		wantName, wantVersion       string
	}{
		{name: "defaults", wantName: DefaultToolName, wantVersion: DefaultToolVersion},
		{name: "explicit", toolName: "agropredict", toolVersion: "v1.2.0", wantName: "agropredict", wantVersion: "v1.2.0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bom := &cdx.BOM{}
			AddMetaTools(bom, tt.toolName, tt.toolVersion)
			tools := *bom.Metadata.Tools.Components
			if len(tools) != 1 {
				t.Fatalf("expected 1 tool, got %d", len(tools))
			}
			if tools[0].Name != tt.wantName || tools[0].Version != tt.wantVersion {
				t.Fatalf("tool = %s@%s, want %s@%s", tools[0].Name, tools[0].Version, tt.wantName, tt.wantVersion)
			}
			if tools[0].Manufacturer == nil || tools[0].Manufacturer.Name != DefaultToolVendor {
				t.Fatalf("manufacturer = %+v", tools[0].Manufacturer)
			}
		})
	}
}

func TestAddMetaTools_UpdatesExisting(t *testing.T) {
	bom := &cdx.BOM{}
	AddMetaTools(bom, "agropredict", "v1.0.0")
	AddMetaTools(bom, "cyclonedx-cli", "0.27.0")
	AddMetaTools(bom, "agropredict", "v1.1.0")

	tools := *bom.Metadata.Tools.Components
	if len(tools) != 2 {
		t.Fatalf("expected 2 tools, got %d", len(tools))
	}
	if tools[0].Version != "v1.1.0" {
		t.Fatalf("agropredict version = %q, want v1.1.0", tools[0].Version)
	}
}

func TestGeneratePurl(t *testing.T) {
	tests := []struct {
		typ     cdx.ComponentType
		id      string
		version string
		want    string
	}{
		{cdx.ComponentTypeMachineLearningModel, "random-forest", "ABC123", "pkg:generic/agropredict/models/random-forest@abc123"},
		{cdx.ComponentTypeData, "agropredict-synthetic-yield", "", "pkg:generic/agropredict/datasets/agropredict-synthetic-yield"},
		{cdx.ComponentTypeApplication, "agropredict", "v1.0.0", "pkg:generic/agropredict/agropredict@v1.0.0"},
		{cdx.ComponentTypeLibrary, "", "", "pkg:generic/agropredict/unknown/unknown"},
	}
	for _, tt := range tests {
		if got := GeneratePurl(tt.typ, tt.id, tt.version); got != tt.want {
			t.Errorf("GeneratePurl(%s, %q, %q) = %q, want %q", tt.typ, tt.id, tt.version, got, tt.want)
		}
	}
}

func TestNormalizeSegment(t *testing.T) {
	tests := map[string]string{
		"plain":       "plain",
		"a b":         "a%20b",
		"org/model":   "org%2Fmodel",
		"name@v1 / x": "name%40v1%20%2F%20x",
	}
	for in, want := range tests {
		if got := NormalizeSegment(in); got != want {
			t.Errorf("NormalizeSegment(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSlug(t *testing.T) {
	tests := map[string]string{
		"Random Forest":     "random-forest",
		"Linear Regression": "linear-regression",
		"  Decision   Tree": "decision-tree",
		"":                  "",
	}
	for in, want := range tests {
		if got := Slug(in); got != want {
			t.Errorf("Slug(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestAddComponentPurl(t *testing.T) {
	c := &cdx.Component{Type: cdx.ComponentTypeMachineLearningModel, Name: "Decision Tree", Version: "a1b2"}
	AddComponentPurl(c)
	if c.PackageURL != "pkg:generic/agropredict/models/decision-tree@a1b2" {
		t.Fatalf("PackageURL = %q", c.PackageURL)
	}

	kept := &cdx.Component{Name: "x", PackageURL: "pkg:generic/other/x"}
	AddComponentPurl(kept)
	if kept.PackageURL != "pkg:generic/other/x" {
		t.Fatalf("existing purl overwritten: %q", kept.PackageURL)
	}

	AddComponentPurl(nil)
}

func TestAddComponentBOMRef(t *testing.T) {
	withPurl := &cdx.Component{PackageURL: "pkg:generic/agropredict/models/random-forest"}
	AddComponentBOMRef(withPurl)
	if withPurl.BOMRef != withPurl.PackageURL {
		t.Fatalf("BOMRef = %q, want purl", withPurl.BOMRef)
	}

	bare := &cdx.Component{}
	AddComponentBOMRef(bare)
	if !strings.HasPrefix(bare.BOMRef, "urn:uuid:") {
		t.Fatalf("BOMRef = %q, want urn:uuid", bare.BOMRef)
	}

	kept := &cdx.Component{BOMRef: "ref-1", PackageURL: "pkg:generic/x"}
	AddComponentBOMRef(kept)
	if kept.BOMRef != "ref-1" {
		t.Fatalf("existing BOMRef overwritten: %q", kept.BOMRef)
	}

	AddComponentBOMRef(nil)
}
