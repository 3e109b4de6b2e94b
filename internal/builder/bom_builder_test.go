package builder

import (
	"context"
	"strings"
	"testing"

	cdx "github.com/CycloneDX/cyclonedx-go"

	"github.com/idlab-discover/agropredict-cli/internal/dataset"
	"github.com/idlab-discover/agropredict-cli/internal/trainer"
)

func trainedContext(t *testing.T) BuildContext {
	t.Helper()
	ds := dataset.Generate(5, 150)
	opts := trainer.DefaultOptions()
	opts.Trees = 8
	res, err := trainer.Train(context.Background(), ds, opts)
	if err != nil {
		t.Fatalf("Train: %v", err)
	}
	return BuildContext{Dataset: ds, Result: res}
}

func TestNewBOMBuilder(t *testing.T) {
	b := NewBOMBuilder(DefaultOptions())
	if b == nil || b.Opts.Name != "agropredict" {
		t.Fatalf("NewBOMBuilder() = %+v", b)
	}
}

func TestBOMBuilder_Build(t *testing.T) {
	ctx := trainedContext(t)
	bom, err := NewBOMBuilder(DefaultOptions()).Build(ctx)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if bom.SpecVersion != cdx.SpecVersion1_6 {
		t.Errorf("SpecVersion = %v, want 1.6", bom.SpecVersion)
	}
	if !strings.HasPrefix(bom.SerialNumber, "urn:uuid:") {
		t.Errorf("SerialNumber = %q", bom.SerialNumber)
	}
	if bom.Metadata == nil || bom.Metadata.Component == nil || bom.Metadata.Component.Type != cdx.ComponentTypeApplication {
		t.Fatalf("expected application metadata component")
	}
	if bom.Metadata.Timestamp == "" || bom.Metadata.Tools == nil {
		t.Errorf("expected timestamp and tools in metadata")
	}

	comps := *bom.Components
	if len(comps) != 1+len(trainer.ModelNames) {
		t.Fatalf("len(components) = %d, want %d", len(comps), 1+len(trainer.ModelNames))
	}
	data := comps[0]
	if data.Type != cdx.ComponentTypeData || data.Version != ctx.Dataset.FingerprintHex() {
		t.Fatalf("first component should be the dataset, got %+v", data)
	}

	for i, name := range trainer.ModelNames {
		c := comps[i+1]
		if c.Type != cdx.ComponentTypeMachineLearningModel || c.Name != name {
			t.Fatalf("component %d = %s (%s), want model %s", i+1, c.Name, c.Type, name)
		}
		if c.BOMRef == "" || !strings.HasPrefix(c.PackageURL, "pkg:generic/agropredict/models/") {
			t.Errorf("%s: purl = %q, bom-ref = %q", name, c.PackageURL, c.BOMRef)
		}
		card := c.ModelCard
		if card == nil || card.ModelParameters == nil || card.QuantitativeAnalysis == nil {
			t.Fatalf("%s: incomplete model card", name)
		}
		if card.ModelParameters.Task != "regression" {
			t.Errorf("%s: task = %q", name, card.ModelParameters.Task)
		}
		ds := *card.ModelParameters.Datasets
		if len(ds) != 1 || ds[0].Ref != data.BOMRef {
			t.Errorf("%s: datasets = %+v, want ref %s", name, ds, data.BOMRef)
		}
		pm := *card.QuantitativeAnalysis.PerformanceMetrics
		if len(pm) != 3 || pm[0].Type != "r2" || pm[1].Type != "rmse" || pm[2].Type != "mae" {
			t.Errorf("%s: performance metrics = %+v", name, pm)
		}
		if want := formatMetric(ctx.Result.Metrics[i].R2); pm[0].Value != want {
			t.Errorf("%s: r2 = %s, want %s", name, pm[0].Value, want)
		}
	}

	forest := comps[len(comps)-1]
	if forest.Properties == nil || len(*forest.Properties) != len(dataset.FeatureColumns) {
		t.Errorf("forest should carry one importance property per feature")
	}
	if comps[1].Properties != nil {
		t.Errorf("linear model should carry no importance properties")
	}

	if bom.Dependencies == nil || len(*bom.Dependencies) != 1+len(comps) {
		t.Fatalf("expected a dependency node per component plus the application")
	}
}

func TestBOMBuilder_Build_WithoutImportances(t *testing.T) {
	opts := DefaultOptions()
	opts.IncludeImportances = false
	bom, err := NewBOMBuilder(opts).Build(trainedContext(t))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	for _, c := range *bom.Components {
		if c.Type == cdx.ComponentTypeMachineLearningModel && c.Properties != nil {
			t.Fatalf("%s: unexpected properties", c.Name)
		}
	}
}

func TestBOMBuilder_Build_Errors(t *testing.T) {
	b := NewBOMBuilder(DefaultOptions())
	if _, err := b.Build(BuildContext{}); err == nil {
		t.Fatalf("expected error for empty context")
	}
	ctx := trainedContext(t)
	ctx.Result = &trainer.Result{}
	if _, err := b.Build(ctx); err == nil {
		t.Fatalf("expected error for result without models")
	}
}

func TestModelCardBuilder_UnknownModel(t *testing.T) {
	ctx := trainedContext(t)
	m := ctx.Result.Metrics[0]
	m.Model = "Support Vector Machine"
	if _, err := (ModelCardBuilder{}).Build(ModelContext{Metric: m}); err == nil {
		t.Fatalf("expected error for unknown model")
	}
}

func TestDataComponentBuilder(t *testing.T) {
	ds := dataset.Generate(9, 20)
	comp, err := DataComponentBuilder{}.Build(ds)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if comp.Type != cdx.ComponentTypeData || comp.Name != DatasetName {
		t.Fatalf("unexpected component %+v", comp)
	}
	if comp.Data == nil || (*comp.Data)[0].Type != cdx.ComponentDataTypeDataset {
		t.Fatalf("expected dataset component data")
	}
	found := false
	for _, p := range *comp.Properties {
		if p.Name == "agropredict:fingerprint" && p.Value == ds.FingerprintHex() {
			found = true
		}
	}
	if !found {
		t.Fatalf("fingerprint property missing")
	}

	if _, err := (DataComponentBuilder{}).Build(nil); err == nil {
		t.Fatalf("expected error for nil dataset")
	}
}
