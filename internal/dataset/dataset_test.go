package dataset

import (
	"bytes"
	"math"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_ShapeAndFloor(t *testing.T) {
	ds := Generate(DefaultSeed, DefaultRows)
	require.Equal(t, 1500, ds.Len())

	for i := 0; i < ds.Len(); i++ {
		r := ds.At(i)
		assert.Contains(t, Crops, r.Crop)
		assert.Contains(t, Seasons, r.Season)
		assert.Contains(t, States, r.State)
		for _, col := range []string{ColArea, ColRainfall, ColTemperature, ColPH, ColN, ColP, ColK, ColYield} {
			v, ok := r.Numeric(col)
			require.True(t, ok)
			require.False(t, math.IsNaN(v) || math.IsInf(v, 0), "row %d col %s", i, col)
		}
		require.GreaterOrEqual(t, r.Yield, MinYield, "row %d", i)
	}
}

func TestGenerate_RangesRespected(t *testing.T) {
	ds := Default()
	check := func(col string, rng Range) {
		st := ds.Stats(col)
		assert.GreaterOrEqual(t, st.Min, rng.Min, col)
		assert.LessOrEqual(t, st.Max, rng.Max, col)
	}
	check(ColArea, AreaRange)
	check(ColRainfall, RainfallRange)
	check(ColTemperature, TemperatureRange)
	check(ColPH, PHRange)
	check(ColN, NRange)
	check(ColP, PRange)
	check(ColK, KRange)
}

func TestGenerate_Deterministic(t *testing.T) {
	a := Generate(42, DefaultRows)
	b := Generate(42, DefaultRows)

	require.Equal(t, a.Records(), b.Records())
	require.Equal(t, a.Fingerprint(), b.Fingerprint())

	var ba, bb bytes.Buffer
	require.NoError(t, a.WriteCSV(&ba))
	require.NoError(t, b.WriteCSV(&bb))
	require.Equal(t, ba.Bytes(), bb.Bytes())
}

func TestGenerate_DifferentSeedsDiffer(t *testing.T) {
	a := Generate(1, 200)
	b := Generate(2, 200)
	require.NotEqual(t, a.Fingerprint(), b.Fingerprint())
}

func TestGenerate_NegativeRows(t *testing.T) {
	require.Equal(t, 0, Generate(1, -5).Len())
}

func TestYieldFor_Formula(t *testing.T) {
	r := Record{Crop: "Rice", Rainfall: 1000, N: 100, Temperature: 25, PH: 6.5}
	// 1.5 + 1.2 - 1.0 + 2.5 + 1.5 + 1.5
	assert.InDelta(t, 7.2, YieldFor(r, 1.5), 1e-9)

	r.Crop = "Sugarcane"
	r.PH = 8
	// 1.5 + 1.2 - 1.0 + 1.2 + 3 + 0
	assert.InDelta(t, 5.9, YieldFor(r, 0), 1e-9)
}

func TestYieldFor_PHBandInclusive(t *testing.T) {
	assert.Equal(t, 2.5, PHBonus(6.2))
	assert.Equal(t, 2.5, PHBonus(7.2))
	assert.Equal(t, 1.2, PHBonus(6.19))
	assert.Equal(t, 1.2, PHBonus(7.21))
}

func TestYieldFor_Clamped(t *testing.T) {
	r := Record{Crop: "Rice", Rainfall: 300, N: 30, Temperature: 45, PH: 5}
	assert.Equal(t, MinYield, YieldFor(r, -10))
}

func TestYieldFor_MonotoneInRainfall(t *testing.T) {
	ds := Generate(7, 100)
	for _, r := range ds.Records() {
		const noise = NoiseMean
		lo := YieldFor(r, noise)
		r.Rainfall += 50
		hi := YieldFor(r, noise)
		if lo > MinYield {
			require.Greater(t, hi, lo)
		} else {
			require.GreaterOrEqual(t, hi, lo)
		}
	}
}

func TestDataset_AccessorsReturnCopies(t *testing.T) {
	ds := Generate(3, 10)
	recs := ds.Records()
	recs[0].Crop = "Mutated"
	require.NotEqual(t, "Mutated", ds.At(0).Crop)

	col := ds.Column(ColRainfall)
	col[0] = -1
	require.NotEqual(t, -1.0, ds.At(0).Rainfall)

	require.Nil(t, ds.Column("nope"))
	require.Nil(t, ds.Categories("nope"))
	require.Len(t, ds.Head(3), 3)
	require.Len(t, ds.Head(100), 10)
}

func TestDataset_Distinct(t *testing.T) {
	ds := Default()
	crops := slices.Clone(Crops)
	slices.Sort(crops)
	require.Equal(t, crops, ds.Distinct(ColCrop))
}
