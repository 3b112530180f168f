package rsivolume

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vadiminshakov/rsivolume/internal/domain"
)

var (
	threshold  = decimal.NewFromInt(30)
	multiplier = decimal.RequireFromString("1.2")
	start      = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
)

func buildSeries(closes, volumes []int64) domain.CandleSeries {
	series := make(domain.CandleSeries, len(closes))
	for i := range closes {
		price := decimal.NewFromInt(closes[i])
		series[i] = domain.Candle{
			Time:   start.Add(time.Duration(i) * 4 * time.Hour),
			Open:   price,
			High:   price,
			Low:    price,
			Close:  price,
			Volume: decimal.NewFromInt(volumes[i]),
		}
	}
	return series
}

func constant(n int, v int64) []int64 {
	out := make([]int64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

// dropThenJump falls by 1 per candle and jumps by 100 on the last candle.
func dropThenJump(n int) []int64 {
	out := make([]int64, n)
	for i := 0; i < n-1; i++ {
		out[i] = int64(1000 - i)
	}
	out[n-1] = out[n-2] + 100
	return out
}

func rsiValue(v float64) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.NewFromFloat(v))
}

// scenario returns eleven candles with volume 100, the last one with lastVolume, and their
// indicators with RSI set to rsi for the trailing candles.
func scenario(t *testing.T, lastVolume int64, rsi ...float64) (domain.CandleSeries, domain.IndicatorFrame) {
	t.Helper()

	volumes := constant(11, 100)
	volumes[10] = lastVolume
	series := buildSeries(constant(11, 100), volumes)

	ind, err := ComputeIndicators(series, 10, 10)
	require.NoError(t, err)

	for i, v := range rsi {
		ind[len(ind)-len(rsi)+i].RSI = rsiValue(v)
	}
	return series, ind
}

func TestComputeEntrySignal_CrossWithVolumeSurge(t *testing.T) {
	series, ind := scenario(t, 200, 25, 35)

	require.True(t, ind[10].VolumeMeanPrev.Valid)
	require.True(t, ind[10].VolumeMeanPrev.Decimal.Equal(decimal.NewFromInt(100)))

	signals, err := ComputeEntrySignal(series, ind, threshold, multiplier)
	require.NoError(t, err)
	require.Len(t, signals, 11)

	for i := 0; i < 10; i++ {
		assert.False(t, signals[i], "index %d", i)
	}
	assert.True(t, signals[10])
}

func TestComputeEntrySignal_VolumeFilter(t *testing.T) {
	tests := []struct {
		name     string
		volume   int64
		expected bool
	}{
		{name: "below threshold", volume: 110, expected: false},
		{name: "exactly at threshold", volume: 120, expected: false},
		{name: "just above threshold", volume: 121, expected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			series, ind := scenario(t, tt.volume, 25, 35)
			signals, err := ComputeEntrySignal(series, ind, threshold, multiplier)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, signals[10])
		})
	}
}

func TestComputeEntrySignal_CrossingIsStrict(t *testing.T) {
	tests := []struct {
		name string
		rsi  []float64
	}{
		{name: "held at threshold", rsi: []float64{30, 30}},
		{name: "already above before rising", rsi: []float64{25, 31, 35}},
		{name: "falling through threshold", rsi: []float64{35, 25}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			series, ind := scenario(t, 200, tt.rsi...)
			signals, err := ComputeEntrySignal(series, ind, threshold, multiplier)
			require.NoError(t, err)
			assert.Zero(t, signals.Count())
		})
	}
}

func TestComputeEntrySignal_ReachingThresholdCounts(t *testing.T) {
	series, ind := scenario(t, 200, 29.99, 30)
	signals, err := ComputeEntrySignal(series, ind, threshold, multiplier)
	require.NoError(t, err)
	assert.True(t, signals[10])
}

func TestComputeEntrySignal_UndefinedOperands(t *testing.T) {
	t.Run("undefined previous rsi", func(t *testing.T) {
		series, ind := scenario(t, 200, 35)
		ind[9].RSI = decimal.NullDecimal{}
		signals, err := ComputeEntrySignal(series, ind, threshold, multiplier)
		require.NoError(t, err)
		assert.False(t, signals[10])
	})

	t.Run("undefined volume mean", func(t *testing.T) {
		series, ind := scenario(t, 200, 25, 35)
		ind[10].VolumeMeanPrev = decimal.NullDecimal{}
		signals, err := ComputeEntrySignal(series, ind, threshold, multiplier)
		require.NoError(t, err)
		assert.False(t, signals[10])
	})

	t.Run("crossing inside volume warmup", func(t *testing.T) {
		series, ind := scenario(t, 200)
		ind[4].RSI = rsiValue(25)
		ind[5].RSI = rsiValue(35)
		series[5].Volume = decimal.NewFromInt(10_000)
		signals, err := ComputeEntrySignal(series, ind, threshold, multiplier)
		require.NoError(t, err)
		assert.Zero(t, signals.Count())
	})
}

func TestComputeEntrySignal_Misaligned(t *testing.T) {
	series, ind := scenario(t, 200, 25, 35)
	_, err := ComputeEntrySignal(series, ind[:5], threshold, multiplier)
	require.ErrorIs(t, err, domain.ErrMisalignedInput)
}

func TestComputeIndicators_ShortSeries(t *testing.T) {
	for n := 1; n <= 10; n++ {
		series := buildSeries(dropThenJump(n+1)[:n], constant(n, 100))
		ind, err := ComputeIndicators(series, 10, 10)
		require.ErrorIs(t, err, domain.ErrInsufficientHistory, "n=%d", n)
		require.Len(t, ind, n)

		for i, row := range ind {
			assert.False(t, row.VolumeMeanPrev.Valid, "n=%d index %d", n, i)
		}

		signals, err := ComputeEntrySignal(series, ind, threshold, multiplier)
		require.NoError(t, err)
		assert.Zero(t, signals.Count(), "n=%d", n)
	}
}

func TestComputeIndicators_Errors(t *testing.T) {
	_, err := ComputeIndicators(nil, 10, 10)
	require.ErrorIs(t, err, domain.ErrEmptySeries)

	series := buildSeries(constant(20, 100), constant(20, 100))
	_, err = ComputeIndicators(series, 0, 10)
	require.ErrorIs(t, err, domain.ErrInvalidParameter)
	_, err = ComputeIndicators(series, 10, 0)
	require.ErrorIs(t, err, domain.ErrInvalidParameter)
}

func TestComputeIndicators_Warmup(t *testing.T) {
	series := buildSeries(dropThenJump(30), constant(30, 100))
	ind, err := ComputeIndicators(series, 10, 10)
	require.NoError(t, err)
	require.Len(t, ind, len(series))

	for i := 0; i < 10; i++ {
		assert.False(t, ind[i].RSI.Valid, "rsi index %d", i)
		assert.False(t, ind[i].VolumeMeanPrev.Valid, "volume index %d", i)
	}
	for i := 10; i < len(ind); i++ {
		assert.True(t, ind[i].Defined(), "index %d", i)
	}
	assert.Equal(t, 10, ind.WarmupRows())
}

func TestComputeIndicators_Idempotent(t *testing.T) {
	volumes := make([]int64, 40)
	for i := range volumes {
		volumes[i] = int64(100 + (i*37)%50)
	}
	series := buildSeries(dropThenJump(40), volumes)

	first, err := ComputeIndicators(series, 10, 10)
	require.NoError(t, err)
	second, err := ComputeIndicators(series, 10, 10)
	require.NoError(t, err)

	for i := range first {
		require.Equal(t, first[i].RSI.Valid, second[i].RSI.Valid)
		require.Equal(t, first[i].VolumeMeanPrev.Valid, second[i].VolumeMeanPrev.Valid)
		require.True(t, first[i].RSI.Decimal.Equal(second[i].RSI.Decimal))
		require.True(t, first[i].VolumeMeanPrev.Decimal.Equal(second[i].VolumeMeanPrev.Decimal))
	}
}

func TestComputeIndicators_VolumeMeanIgnoresCurrentCandle(t *testing.T) {
	const window = 10
	series := buildSeries(dropThenJump(25), constant(25, 100))
	base, err := ComputeIndicators(series, 10, window)
	require.NoError(t, err)

	for i := range series {
		mutated := append(domain.CandleSeries(nil), series...)
		mutated[i].Volume = decimal.NewFromInt(5000)

		ind, err := ComputeIndicators(mutated, 10, window)
		require.NoError(t, err)

		for j := range ind {
			if !base[j].VolumeMeanPrev.Valid {
				require.False(t, ind[j].VolumeMeanPrev.Valid)
				continue
			}
			changed := !ind[j].VolumeMeanPrev.Decimal.Equal(base[j].VolumeMeanPrev.Decimal)
			assert.Equal(t, j > i && j <= i+window, changed, "mutated %d, index %d", i, j)
		}
	}
}

func TestComputeEntrySignal_FromComputedIndicators(t *testing.T) {
	volumes := constant(21, 100)
	volumes[20] = 200
	series := buildSeries(dropThenJump(21), volumes)

	ind, err := ComputeIndicators(series, 10, 10)
	require.NoError(t, err)

	// steady decline pins RSI at the bottom, the jump lifts it far above 30
	require.True(t, ind[19].RSI.Decimal.LessThan(threshold))
	require.True(t, ind[20].RSI.Decimal.GreaterThanOrEqual(threshold))

	signals, err := ComputeEntrySignal(series, ind, threshold, multiplier)
	require.NoError(t, err)
	assert.Equal(t, 1, signals.Count())
	assert.True(t, signals[20])

	series[20].Volume = decimal.NewFromInt(100)
	signals, err = ComputeEntrySignal(series, ind, threshold, multiplier)
	require.NoError(t, err)
	assert.Zero(t, signals.Count())
}

func TestComputeEntrySignal_FlatThenJump(t *testing.T) {
	closes := constant(21, 100)
	closes[20] = 110
	volumes := constant(21, 100)
	volumes[20] = 200
	series := buildSeries(closes, volumes)

	ind, err := ComputeIndicators(series, 10, 10)
	require.NoError(t, err)

	// no movement means RSI 0, not undefined
	require.True(t, ind[19].RSI.Valid)
	require.True(t, ind[19].RSI.Decimal.IsZero())
	require.True(t, ind[20].RSI.Valid)
	assert.Equal(t, 10, ind.WarmupRows())

	signals, err := ComputeEntrySignal(series, ind, threshold, multiplier)
	require.NoError(t, err)
	assert.Equal(t, 1, signals.Count())
	assert.True(t, signals[20])
}

func TestComputeExitSignal(t *testing.T) {
	series := buildSeries(dropThenJump(15), constant(15, 100))
	exits := ComputeExitSignal(series)
	require.Len(t, exits, 15)
	assert.Zero(t, exits.Count())
}
