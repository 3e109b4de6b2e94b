package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixture() *Dataset {
	return FromRecords([]Record{
		{Crop: "Rice", Season: "Rabi", State: "Punjab", Rainfall: 400, Temperature: 20, PH: 6, Yield: 4},
		{Crop: "Rice", Season: "Rabi", State: "Punjab", Rainfall: 2400, Temperature: 40, PH: 7, Yield: 6},
		{Crop: "Wheat", Season: "Kharif", State: "UP", Rainfall: 1000, Temperature: 30, PH: 5, Yield: 3},
	})
}

func TestMeanYieldBy_Ascending(t *testing.T) {
	bars := fixture().MeanYieldBy(ColState)
	require.Equal(t, []Bar{{"UP", 3}, {"Punjab", 5}}, bars)
	require.Nil(t, fixture().MeanYieldBy(ColArea))
}

func TestCounts_MostFrequentFirst(t *testing.T) {
	bars := fixture().Counts(ColCrop)
	require.Equal(t, []Bar{{"Rice", 2}, {"Wheat", 1}}, bars)
}

func TestMeanYieldByBucket(t *testing.T) {
	bars := fixture().MeanYieldByBucket(ColRainfall, RainfallRange, 2)
	require.Len(t, bars, 2)
	assert.Equal(t, "300-1400", bars[0].Label)
	assert.InDelta(t, 3.5, bars[0].Value, 1e-9)
	assert.Equal(t, "1400-2500", bars[1].Label)
	assert.InDelta(t, 6, bars[1].Value, 1e-9)

	require.Nil(t, fixture().MeanYieldByBucket(ColRainfall, RainfallRange, 0))
}

func TestMeanYieldByBucket_EmptyBucketIsZero(t *testing.T) {
	bars := fixture().MeanYieldByBucket(ColRainfall, RainfallRange, 4)
	require.Len(t, bars, 4)
	assert.Zero(t, bars[2].Value)
}

func TestSpreadBy(t *testing.T) {
	sp := fixture().SpreadBy(ColCrop, ColPH)
	require.Equal(t, []Spread{
		{Label: "Rice", Min: 6, Mean: 6.5, Max: 7},
		{Label: "Wheat", Min: 5, Mean: 5, Max: 5},
	}, sp)
}

func TestSummarize_Default(t *testing.T) {
	s := Default().Summarize()
	require.Equal(t, DefaultRows, s.Rows)
	require.Equal(t, DefaultSeed, s.Seed)
	require.Len(t, s.MeanYieldByState, len(States))
	require.Len(t, s.CropCounts, len(Crops))
	require.Len(t, s.YieldByRainfall, 8)
	require.Len(t, s.PHByCrop, len(Crops))
	require.GreaterOrEqual(t, s.Yield.Min, MinYield)

	total := 0.0
	for _, b := range s.CropCounts {
		total += b.Value
	}
	require.Equal(t, float64(DefaultRows), total)
}
