// Package rsivolume implements the RSI crossover with volume surge entry strategy.
//
// The computation is a pure batch transform: a candle series goes in, aligned indicator
// and signal frames come out. Nothing is retained between calls.
package rsivolume

import (
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/vadiminshakov/rsivolume/internal/domain"
	"github.com/vadiminshakov/rsivolume/pkg/indicators"
)

// ComputeIndicators derives RSI over closes and the mean volume of the previous volumeWindow
// candles. The frame is always aligned with series; when the series is too short for both
// indicators to produce a value it is returned together with domain.ErrInsufficientHistory.
func ComputeIndicators(series domain.CandleSeries, rsiPeriod, volumeWindow int) (domain.IndicatorFrame, error) {
	if len(series) == 0 {
		return nil, domain.ErrEmptySeries
	}

	rsi, err := indicators.RSI(series.Closes(), rsiPeriod)
	if err != nil {
		return nil, errors.Wrap(err, "failed to calculate RSI")
	}

	volumeMean, err := indicators.ShiftedMean(series.Volumes(), volumeWindow)
	if err != nil {
		return nil, errors.Wrap(err, "failed to calculate volume mean")
	}

	frame := make(domain.IndicatorFrame, len(series))
	for i := range series {
		frame[i] = domain.IndicatorRow{
			RSI:            rsi[i],
			VolumeMeanPrev: volumeMean[i],
		}
	}

	need := max(rsiPeriod, volumeWindow) + 1
	if len(series) < need {
		return frame, errors.Wrapf(domain.ErrInsufficientHistory, "need %d candles, got %d", need, len(series))
	}

	return frame, nil
}

// ComputeEntrySignal flags candle i for a long entry when RSI crosses above rsiThreshold
// (rsi[i-1] < threshold <= rsi[i]) and the candle volume exceeds volumeMultiplier times the
// previous mean volume. Undefined operands never signal.
func ComputeEntrySignal(series domain.CandleSeries, ind domain.IndicatorFrame, rsiThreshold, volumeMultiplier decimal.Decimal) (domain.SignalFrame, error) {
	if len(ind) != len(series) {
		return nil, errors.Wrapf(domain.ErrMisalignedInput, "series has %d candles, indicators %d rows", len(series), len(ind))
	}

	rsi := make([]decimal.NullDecimal, len(ind))
	for i, row := range ind {
		rsi[i] = row.RSI
	}
	crossed := indicators.CrossedAbove(rsi, rsiThreshold)

	signals := make(domain.SignalFrame, len(series))
	for i, c := range series {
		if !crossed[i] {
			continue
		}
		mean := ind[i].VolumeMeanPrev
		if !mean.Valid {
			continue
		}
		signals[i] = c.Volume.GreaterThan(volumeMultiplier.Mul(mean.Decimal))
	}

	return signals, nil
}

// ComputeExitSignal never flags an exit: positions are closed by the host's stoploss and trailing stop.
func ComputeExitSignal(series domain.CandleSeries) domain.SignalFrame {
	return make(domain.SignalFrame, len(series))
}
