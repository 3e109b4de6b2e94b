// Package dataset synthesizes the agricultural telemetry used to train and
// benchmark the yield models.
//
// A Dataset is a plain immutable value: Generate builds it once from a seed
// and every accessor hands out copies, so it can be shared freely between the
// trainer, the dashboard and the HTTP server.
package dataset

import (
	"math/rand/v2"
	"slices"
)

// DefaultSeed and DefaultRows reproduce the reference dataset.
const (
	DefaultSeed uint64 = 42
	DefaultRows        = 1500
)

// MinYield is the floor applied to every generated target value.
const MinYield = 0.5

// Category enumerations, in draw order.
var (
	Crops   = []string{"Rice", "Wheat", "Maize", "Cotton", "Sugarcane", "Pulses"}
	Seasons = []string{"Kharif", "Rabi", "Summer", "Whole Year"}
	States  = []string{"Punjab", "Haryana", "UP", "Maharashtra", "Karnataka", "Tamil Nadu"}
)

// Range is a closed interval a continuous feature is drawn from.
type Range struct {
	Min, Max float64
}

// Continuous feature ranges.
var (
	AreaRange        = Range{50, 1000}
	RainfallRange    = Range{300, 2500}
	TemperatureRange = Range{12, 45}
	PHRange          = Range{4.5, 9.5}
	NRange           = Range{30, 200}
	PRange           = Range{10, 100}
	KRange           = Range{10, 100}
)

// Noise parameters for the target.
const (
	NoiseMean = 1.5
	NoiseStd  = 0.4
)

// Column names in feature order followed by the target.
const (
	ColCrop        = "Crop"
	ColSeason      = "Season"
	ColState       = "State"
	ColArea        = "Area"
	ColRainfall    = "Rainfall"
	ColTemperature = "Temperature"
	ColPH          = "pH"
	ColN           = "N"
	ColP           = "P"
	ColK           = "K"
	ColYield       = "Yield"
)

// FeatureColumns lists the ten model inputs in training order.
var FeatureColumns = []string{
	ColCrop, ColSeason, ColState,
	ColArea, ColRainfall, ColTemperature, ColPH, ColN, ColP, ColK,
}

// CategoricalColumns are the label-encoded inputs.
var CategoricalColumns = []string{ColCrop, ColSeason, ColState}

// Record is one synthetic observation.
type Record struct {
	Crop        string
	Season      string
	State       string
	Area        float64
	Rainfall    float64
	Temperature float64
	PH          float64
	N           float64
	P           float64
	K           float64
	Yield       float64
}

// Category returns the value of a categorical column.
func (r Record) Category(col string) (string, bool) {
	switch col {
	case ColCrop:
		return r.Crop, true
	case ColSeason:
		return r.Season, true
	case ColState:
		return r.State, true
	}
	return "", false
}

// Numeric returns the value of a continuous column (including Yield).
func (r Record) Numeric(col string) (float64, bool) {
	switch col {
	case ColArea:
		return r.Area, true
	case ColRainfall:
		return r.Rainfall, true
	case ColTemperature:
		return r.Temperature, true
	case ColPH:
		return r.PH, true
	case ColN:
		return r.N, true
	case ColP:
		return r.P, true
	case ColK:
		return r.K, true
	case ColYield:
		return r.Yield, true
	}
	return 0, false
}

// PHBonus is the agronomic bonus for near-neutral soil.
func PHBonus(ph float64) float64 {
	if ph >= 6.2 && ph <= 7.2 {
		return 2.5
	}
	return 1.2
}

// CropBonus favours sugarcane.
func CropBonus(crop string) float64 {
	if crop == "Sugarcane" {
		return 3
	}
	return 1.5
}

// YieldFor evaluates the heuristic target for r with an explicit noise term.
// r.Yield is ignored.
func YieldFor(r Record, noise float64) float64 {
	y := 0.0015*r.Rainfall +
		0.012*r.N -
		0.04*r.Temperature +
		PHBonus(r.PH) +
		CropBonus(r.Crop) +
		noise
	return max(y, MinYield)
}

// Dataset is an immutable, seed-determined table of records.
type Dataset struct {
	seed    uint64
	records []Record
}

// Generate draws rows records from a PCG source seeded with seed. Columns are
// drawn one after another (all crops, then all seasons, ...), followed by one
// noise sample per row, so the same seed always yields the same table.
func Generate(seed uint64, rows int) *Dataset {
	if rows < 0 {
		rows = 0
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	recs := make([]Record, rows)

	for i := range recs {
		recs[i].Crop = Crops[rng.IntN(len(Crops))]
	}
	for i := range recs {
		recs[i].Season = Seasons[rng.IntN(len(Seasons))]
	}
	for i := range recs {
		recs[i].State = States[rng.IntN(len(States))]
	}

	uniform := func(r Range, set func(*Record, float64)) {
		for i := range recs {
			set(&recs[i], r.Min+rng.Float64()*(r.Max-r.Min))
		}
	}
	uniform(AreaRange, func(rec *Record, v float64) { rec.Area = v })
	uniform(RainfallRange, func(rec *Record, v float64) { rec.Rainfall = v })
	uniform(TemperatureRange, func(rec *Record, v float64) { rec.Temperature = v })
	uniform(PHRange, func(rec *Record, v float64) { rec.PH = v })
	uniform(NRange, func(rec *Record, v float64) { rec.N = v })
	uniform(PRange, func(rec *Record, v float64) { rec.P = v })
	uniform(KRange, func(rec *Record, v float64) { rec.K = v })

	for i := range recs {
		noise := NoiseMean + NoiseStd*rng.NormFloat64()
		recs[i].Yield = YieldFor(recs[i], noise)
	}

	return &Dataset{seed: seed, records: recs}
}

// Default returns the reference dataset (seed 42, 1500 rows).
func Default() *Dataset { return Generate(DefaultSeed, DefaultRows) }

// FromRecords wraps a copy of recs; used for tests and imported tables.
func FromRecords(recs []Record) *Dataset {
	return &Dataset{records: slices.Clone(recs)}
}

// Seed returns the generator seed (0 for FromRecords datasets).
func (d *Dataset) Seed() uint64 { return d.seed }

// Len returns the number of records.
func (d *Dataset) Len() int { return len(d.records) }

// At returns record i.
func (d *Dataset) At(i int) Record { return d.records[i] }

// Records returns a copy of all records.
func (d *Dataset) Records() []Record { return slices.Clone(d.records) }

// Head returns a copy of at most n leading records.
func (d *Dataset) Head(n int) []Record {
	n = min(n, len(d.records))
	return slices.Clone(d.records[:n])
}

// Column returns the values of a continuous column, or nil for unknown names.
func (d *Dataset) Column(col string) []float64 {
	if _, ok := (Record{}).Numeric(col); !ok {
		return nil
	}
	out := make([]float64, len(d.records))
	for i, r := range d.records {
		out[i], _ = r.Numeric(col)
	}
	return out
}

// Categories returns the values of a categorical column, or nil for unknown names.
func (d *Dataset) Categories(col string) []string {
	if _, ok := (Record{}).Category(col); !ok {
		return nil
	}
	out := make([]string, len(d.records))
	for i, r := range d.records {
		out[i], _ = r.Category(col)
	}
	return out
}

// Yields is shorthand for Column(ColYield).
func (d *Dataset) Yields() []float64 { return d.Column(ColYield) }

// Distinct returns the sorted distinct values of a categorical column.
func (d *Dataset) Distinct(col string) []string {
	vals := d.Categories(col)
	slices.Sort(vals)
	return slices.Compact(vals)
}
