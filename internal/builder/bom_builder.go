// Package builder turns a training run into a CycloneDX 1.6 BOM: one
// machine-learning-model component per trained regressor, each with a model
// card carrying its held-out metrics, plus a data component for the
// synthetic dataset.
package builder

import (
	"fmt"
	"strings"
	"time"

	cdx "github.com/CycloneDX/cyclonedx-go"

	"github.com/idlab-discover/agropredict-cli/internal/trainer"
)

type BOMBuilder struct {
	Opts Options
	Card ModelCardBuilder
	Data DataComponentBuilder
}

func NewBOMBuilder(opts Options) *BOMBuilder {
	return &BOMBuilder{Opts: opts}
}

func (b BOMBuilder) Build(ctx BuildContext) (*cdx.BOM, error) {
	if ctx.Dataset == nil || ctx.Result == nil {
		return nil, fmt.Errorf("build BOM: dataset and training result are required")
	}
	if len(ctx.Result.Metrics) == 0 {
		return nil, fmt.Errorf("build BOM: training result has no models")
	}

	app := buildApplicationComponent(b.Opts)
	AddComponentPurl(app)
	AddComponentBOMRef(app)

	data, err := b.Data.Build(ctx.Dataset)
	if err != nil {
		return nil, err
	}
	AddComponentPurl(data)
	AddComponentBOMRef(data)

	components := []cdx.Component{*data}
	for _, m := range ctx.Result.Metrics {
		comp, err := b.buildModelComponent(ctx.Result, m.Model, data.BOMRef)
		if err != nil {
			return nil, err
		}
		components = append(components, *comp)
	}

	bom := cdx.NewBOM()
	bom.SpecVersion = cdx.SpecVersion1_6
	bom.Metadata = &cdx.Metadata{Component: app}
	bom.Components = &components

	AddDependencies(bom)
	AddMetaSerialNumber(bom)
	AddMetaTimestamp(bom, time.Now())
	AddMetaTools(bom, b.Opts.ToolName, b.Opts.ToolVersion)
	return bom, nil
}

func (b BOMBuilder) buildModelComponent(res *trainer.Result, name, dataRef string) (*cdx.Component, error) {
	idx := -1
	for i, m := range res.Metrics {
		if m.Model == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("build BOM: no metrics for %q", name)
	}

	card, err := b.Card.Build(ModelContext{
		Metric:     res.Metrics[idx],
		DatasetRef: dataRef,
		Options:    res.Options,
		TestRows:   res.TestRows,
	})
	if err != nil {
		logf(name, "model card build failed (%v)", err)
		return nil, err
	}

	comp := &cdx.Component{
		Type:        cdx.ComponentTypeMachineLearningModel,
		Name:        name,
		Version:     res.Fingerprint,
		Description: fmt.Sprintf("%s yield regressor trained on %d rows", name, res.TrainRows),
		ModelCard:   card,
	}
	if b.Opts.IncludeImportances && name == trainer.ModelForest && len(res.Importances) > 0 {
		props := ImportanceProperties(res.Importances)
		comp.Properties = &props
	}
	AddComponentPurl(comp)
	AddComponentBOMRef(comp)
	return comp, nil
}

func buildApplicationComponent(opts Options) *cdx.Component {
	name := strings.TrimSpace(opts.Name)
	if name == "" {
		name = "agropredict"
	}
	return &cdx.Component{
		Type:        cdx.ComponentTypeApplication,
		Name:        name,
		Version:     GetVersion(),
		Description: "Crop yield prediction benchmark",
	}
}
