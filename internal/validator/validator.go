// Package validator checks that a model-card BOM is complete enough to be
// published: every model carries its card and held-out metrics, and every
// dataset reference resolves to a data component in the same BOM.
package validator

import (
	"fmt"
	"slices"
	"strconv"

	cdx "github.com/CycloneDX/cyclonedx-go"

	bomio "github.com/idlab-discover/agropredict-cli/internal/io"
)

// RequiredMetrics are the performance metrics every model card must report.
var RequiredMetrics = []string{"r2", "rmse", "mae"}

// ValidationOptions configures validation.
type ValidationOptions struct {
	// StrictMode turns warnings (missing considerations, serial number,
	// dataset fingerprint) into errors.
	StrictMode bool
	// ExpectedSpec, when set, must equal the BOM's specVersion.
	ExpectedSpec string
	// MinR2 fails models whose reported R² is lower. Zero disables the check.
	MinR2 float64
}

// ModelResult is the outcome for one machine-learning-model component.
type ModelResult struct {
	Name     string
	Ref      string
	Score    float64 // fraction of card checks that passed
	Errors   []string
	Warnings []string
}

// ValidationResult is the outcome of Validate.
type ValidationResult struct {
	Valid    bool
	Errors   []string
	Warnings []string
	Models   []ModelResult
	Datasets []string
}

// Validate checks bom. A nil BOM is reported as an error.
func Validate(bom *cdx.BOM, opts ValidationOptions) (r ValidationResult) {
	defer func() { r.Valid = len(r.Errors) == 0 && allModelsValid(r.Models) }()

	if bom == nil {
		r.Errors = append(r.Errors, "BOM is nil")
		return r
	}
	r.Errors = append(r.Errors, ValidateSpecVersion(bom, opts.ExpectedSpec)...)

	if bom.Metadata == nil || bom.Metadata.Component == nil {
		r.Errors = append(r.Errors, "metadata component is missing")
	}
	if bom.SerialNumber == "" {
		r.addIssue(opts.StrictMode, "serial number is missing")
	}
	if bom.Components == nil || len(*bom.Components) == 0 {
		r.Errors = append(r.Errors, "BOM has no components")
		return r
	}

	data := map[string]bool{}
	for _, c := range *bom.Components {
		if c.Type != cdx.ComponentTypeData {
			continue
		}
		data[c.BOMRef] = true
		r.Datasets = append(r.Datasets, c.Name)
		if !hasProperty(c, "agropredict:fingerprint") {
			r.addIssue(opts.StrictMode, fmt.Sprintf("data component %q: fingerprint property missing", c.Name))
		}
	}

	for _, c := range *bom.Components {
		if c.Type == cdx.ComponentTypeMachineLearningModel {
			r.Models = append(r.Models, validateModel(c, data, opts))
		}
	}
	if len(r.Models) == 0 {
		r.Errors = append(r.Errors, "BOM has no machine-learning-model components")
	}
	logf("validated %d models, %d datasets", len(r.Models), len(r.Datasets))
	return r
}

func (r *ValidationResult) addIssue(strict bool, msg string) {
	if strict {
		r.Errors = append(r.Errors, msg)
	} else {
		r.Warnings = append(r.Warnings, msg)
	}
}

func allModelsValid(models []ModelResult) bool {
	for _, m := range models {
		if len(m.Errors) > 0 {
			return false
		}
	}
	return true
}

// validateModel scores one model component. Each check counts once towards
// the score whether it is reported as an error or a warning.
func validateModel(c cdx.Component, data map[string]bool, opts ValidationOptions) ModelResult {
	m := ModelResult{Name: c.Name, Ref: c.BOMRef}
	total, passed := 0, 0
	check := func(ok, required bool, msg string) {
		total++
		switch {
		case ok:
			passed++
		case required || opts.StrictMode:
			m.Errors = append(m.Errors, msg)
		default:
			m.Warnings = append(m.Warnings, msg)
		}
	}

	check(c.Name != "", true, "name is required")
	check(c.Version != "", false, "version is missing")
	check(c.PackageURL != "", false, "purl is missing")

	card := c.ModelCard
	if card == nil {
		m.Errors = append(m.Errors, "model card is missing")
		m.Score = 0
		return m
	}

	mp := card.ModelParameters
	check(mp != nil && mp.Task != "", true, "task is missing")
	check(mp != nil && mp.Inputs != nil && len(*mp.Inputs) > 0, true, "inputs are missing")
	check(mp != nil && mp.Outputs != nil && len(*mp.Outputs) > 0, true, "outputs are missing")
	check(mp != nil && mp.ArchitectureFamily != "", false, "architecture family is missing")

	hasData := mp != nil && mp.Datasets != nil && len(*mp.Datasets) > 0
	check(hasData, true, "no training dataset referenced")
	if hasData {
		for _, d := range *mp.Datasets {
			check(data[d.Ref], true, fmt.Sprintf("dataset ref %q does not resolve to a data component", d.Ref))
		}
	}

	metrics := map[string]string{}
	if qa := card.QuantitativeAnalysis; qa != nil && qa.PerformanceMetrics != nil {
		for _, pm := range *qa.PerformanceMetrics {
			metrics[pm.Type] = pm.Value
		}
	}
	for _, name := range RequiredMetrics {
		v, ok := metrics[name]
		if !ok {
			check(false, true, fmt.Sprintf("performance metric %q is missing", name))
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		check(err == nil, true, fmt.Sprintf("performance metric %q is not a number: %q", name, v))
		if err == nil && name == "r2" && opts.MinR2 != 0 {
			check(f >= opts.MinR2, true, fmt.Sprintf("r2 %.4f below minimum %.4f", f, opts.MinR2))
		}
	}

	cons := card.Considerations
	check(cons != nil && cons.UseCases != nil && len(*cons.UseCases) > 0, false, "use cases are missing")
	check(cons != nil && cons.TechnicalLimitations != nil && len(*cons.TechnicalLimitations) > 0, false, "technical limitations are missing")

	if total > 0 {
		m.Score = float64(passed) / float64(total)
	}
	return m
}

func hasProperty(c cdx.Component, name string) bool {
	if c.Properties == nil {
		return false
	}
	return slices.ContainsFunc(*c.Properties, func(p cdx.Property) bool { return p.Name == name && p.Value != "" })
}

// ValidateFromFile decodes (JSON or XML) then validates a BOM. format can be
// "json", "xml" or "auto".
func ValidateFromFile(path, format string, opts ValidationOptions) (*cdx.BOM, ValidationResult, error) {
	bom, err := bomio.ReadBOM(path, format)
	if err != nil {
		return nil, ValidationResult{}, err
	}
	return bom, Validate(bom, opts), nil
}

// ValidateSpecVersion ensures the BOM's declared SpecVersion matches expected.
// Returns a slice of errors (empty when OK or when expected is blank).
func ValidateSpecVersion(bom *cdx.BOM, expected string) []string {
	if expected == "" {
		return nil
	}
	if bom == nil {
		return []string{"BOM is nil"}
	}
	exp, ok := bomio.ParseSpecVersion(expected)
	if !ok {
		return []string{fmt.Sprintf("unsupported CycloneDX specVersion: %q", expected)}
	}
	if bom.SpecVersion == 0 {
		return []string{"BOM missing specVersion"}
	}
	if bom.SpecVersion != exp {
		return []string{fmt.Sprintf("specVersion mismatch: expected %s, got %s", exp.String(), bom.SpecVersion.String())}
	}
	return nil
}
