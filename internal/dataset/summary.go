package dataset

import (
	"cmp"
	"fmt"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/stat"
)

// Bar is one labelled value of a chart series.
type Bar struct {
	Label string  `json:"label" yaml:"label"`
	Value float64 `json:"value" yaml:"value"`
}

// Spread summarises the distribution of a value within one group.
type Spread struct {
	Label string  `json:"label" yaml:"label"`
	Min   float64 `json:"min" yaml:"min"`
	Mean  float64 `json:"mean" yaml:"mean"`
	Max   float64 `json:"max" yaml:"max"`
}

// Stats are the descriptive statistics of a continuous column.
type Stats struct {
	Mean float64 `json:"mean" yaml:"mean"`
	Std  float64 `json:"std" yaml:"std"`
	Min  float64 `json:"min" yaml:"min"`
	Max  float64 `json:"max" yaml:"max"`
}

// Summary bundles the series shown by the dashboard.
type Summary struct {
	Rows               int      `json:"rows" yaml:"rows"`
	Seed               uint64   `json:"seed" yaml:"seed"`
	Fingerprint        string   `json:"fingerprint" yaml:"fingerprint"`
	Yield              Stats    `json:"yield" yaml:"yield"`
	MeanYieldByState   []Bar    `json:"mean_yield_by_state" yaml:"mean_yield_by_state"`
	CropCounts         []Bar    `json:"crop_counts" yaml:"crop_counts"`
	YieldByRainfall    []Bar    `json:"yield_by_rainfall" yaml:"yield_by_rainfall"`
	YieldByTemperature []Bar    `json:"yield_by_temperature" yaml:"yield_by_temperature"`
	PHByCrop           []Spread `json:"ph_by_crop" yaml:"ph_by_crop"`
}

// Summarize computes every dashboard series with default bucket counts.
func (d *Dataset) Summarize() Summary {
	return Summary{
		Rows:               d.Len(),
		Seed:               d.seed,
		Fingerprint:        d.FingerprintHex(),
		Yield:              d.Stats(ColYield),
		MeanYieldByState:   d.MeanYieldBy(ColState),
		CropCounts:         d.Counts(ColCrop),
		YieldByRainfall:    d.MeanYieldByBucket(ColRainfall, RainfallRange, 8),
		YieldByTemperature: d.MeanYieldByBucket(ColTemperature, TemperatureRange, 8),
		PHByCrop:           d.SpreadBy(ColCrop, ColPH),
	}
}

// Stats returns mean, standard deviation and extremes of a continuous column.
func (d *Dataset) Stats(col string) Stats {
	vals := d.Column(col)
	if len(vals) == 0 {
		return Stats{}
	}
	mean, std := stat.MeanStdDev(vals, nil)
	return Stats{Mean: mean, Std: std, Min: floats.Min(vals), Max: floats.Max(vals)}
}

// MeanYieldBy groups by a categorical column and returns mean yields in
// ascending order.
func (d *Dataset) MeanYieldBy(col string) []Bar {
	groups := map[string][]float64{}
	for _, r := range d.records {
		key, ok := r.Category(col)
		if !ok {
			return nil
		}
		groups[key] = append(groups[key], r.Yield)
	}
	bars := make([]Bar, 0, len(groups))
	for label, ys := range groups {
		bars = append(bars, Bar{Label: label, Value: stat.Mean(ys, nil)})
	}
	slices.SortFunc(bars, func(a, b Bar) int {
		if c := cmp.Compare(a.Value, b.Value); c != 0 {
			return c
		}
		return cmp.Compare(a.Label, b.Label)
	})
	return bars
}

// Counts returns how often each category occurs, most frequent first.
func (d *Dataset) Counts(col string) []Bar {
	counts := map[string]float64{}
	for _, r := range d.records {
		key, ok := r.Category(col)
		if !ok {
			return nil
		}
		counts[key]++
	}
	bars := make([]Bar, 0, len(counts))
	for label, n := range counts {
		bars = append(bars, Bar{Label: label, Value: n})
	}
	slices.SortFunc(bars, func(a, b Bar) int {
		if c := cmp.Compare(b.Value, a.Value); c != 0 {
			return c
		}
		return cmp.Compare(a.Label, b.Label)
	})
	return bars
}

// MeanYieldByBucket splits rng into n equal-width buckets over a continuous
// column and returns the mean yield per bucket. Empty buckets report 0.
func (d *Dataset) MeanYieldByBucket(col string, rng Range, n int) []Bar {
	if n <= 0 {
		return nil
	}
	width := (rng.Max - rng.Min) / float64(n)
	sums := make([]float64, n)
	counts := make([]int, n)
	for _, r := range d.records {
		v, ok := r.Numeric(col)
		if !ok {
			return nil
		}
		i := int((v - rng.Min) / width)
		i = max(0, min(i, n-1))
		sums[i] += r.Yield
		counts[i]++
	}
	bars := make([]Bar, n)
	for i := range bars {
		lo := rng.Min + float64(i)*width
		bars[i].Label = fmt.Sprintf("%g-%g", roundTo(lo, 1), roundTo(lo+width, 1))
		if counts[i] > 0 {
			bars[i].Value = sums[i] / float64(counts[i])
		}
	}
	return bars
}

// SpreadBy reports min/mean/max of a continuous column per category, ordered
// by category name.
func (d *Dataset) SpreadBy(group, col string) []Spread {
	vals := map[string][]float64{}
	for _, r := range d.records {
		key, ok := r.Category(group)
		if !ok {
			return nil
		}
		v, ok := r.Numeric(col)
		if !ok {
			return nil
		}
		vals[key] = append(vals[key], v)
	}
	out := make([]Spread, 0, len(vals))
	for label, vs := range vals {
		out = append(out, Spread{
			Label: label,
			Min:   floats.Min(vs),
			Mean:  stat.Mean(vs, nil),
			Max:   floats.Max(vs),
		})
	}
	slices.SortFunc(out, func(a, b Spread) int { return cmp.Compare(a.Label, b.Label) })
	return out
}

func roundTo(v float64, digits int) float64 {
	return scalar.Round(v, digits)
}
