// Package indicators provides technical analysis indicators (RSI, shifted rolling mean, crossovers)
// over decimal price series. Every output is aligned 1:1 with its input; rows without enough
// history are left undefined.
package indicators

import (
	"math"

	"github.com/cinar/indicator/v2/helper"
	"github.com/cinar/indicator/v2/momentum"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/vadiminshakov/rsivolume/internal/domain"
)

// RSI calculates the Relative Strength Index (Wilder smoothing) for the given period.
// The first period values are undefined. A window without any price movement has RSI 0.
func RSI(closes []decimal.Decimal, period int) ([]decimal.NullDecimal, error) {
	if period <= 0 {
		return nil, errors.Wrapf(domain.ErrInvalidParameter, "rsi period must be positive, got %d", period)
	}

	result := make([]decimal.NullDecimal, len(closes))
	if len(closes) <= period {
		return result, nil
	}

	rsi := momentum.NewRsiWithPeriod[float64](period)
	inputChan := helper.SliceToChan(decimalsToFloat64(closes))
	outputChan := rsi.Compute(inputChan)
	rsiFloat := helper.ChanToSlice(outputChan)

	// warmup rows are dropped by the library, place values at the tail
	offset := len(closes) - len(rsiFloat)
	for i, v := range rsiFloat {
		if offset+i < period {
			continue
		}
		if math.IsNaN(v) {
			// no gains and no losses
			result[offset+i] = decimal.NewNullDecimal(decimal.Zero)
			continue
		}
		result[offset+i] = nullFromFloat(v)
	}

	return result, nil
}

// ShiftedMean calculates the arithmetic mean of the previous window values for every index,
// excluding the value at the index itself. Indices below window are undefined.
func ShiftedMean(values []decimal.Decimal, window int) ([]decimal.NullDecimal, error) {
	if window <= 0 {
		return nil, errors.Wrapf(domain.ErrInvalidParameter, "window must be positive, got %d", window)
	}

	result := make([]decimal.NullDecimal, len(values))
	divisor := decimal.NewFromInt(int64(window))

	for i := window; i < len(values); i++ {
		sum := decimal.Zero
		for _, v := range values[i-window : i] {
			sum = sum.Add(v)
		}
		result[i] = decimal.NewNullDecimal(sum.Div(divisor))
	}

	return result, nil
}

// CrossedAbove flags indices where the series moves from strictly below level to at or above it
// between two consecutive values. Undefined values never cross.
func CrossedAbove(series []decimal.NullDecimal, level decimal.Decimal) []bool {
	result := make([]bool, len(series))
	for i := 1; i < len(series); i++ {
		prev, cur := series[i-1], series[i]
		if !prev.Valid || !cur.Valid {
			continue
		}
		result[i] = prev.Decimal.LessThan(level) && cur.Decimal.GreaterThanOrEqual(level)
	}
	return result
}

// decimalsToFloat64 converts a slice of decimal.Decimal to []float64.
func decimalsToFloat64(decimals []decimal.Decimal) []float64 {
	result := make([]float64, len(decimals))
	for i, d := range decimals {
		result[i], _ = d.Float64()
	}
	return result
}

// nullFromFloat wraps a float, infinities become undefined.
func nullFromFloat(f float64) decimal.NullDecimal {
	if math.IsInf(f, 0) {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(decimal.NewFromFloat(f))
}
