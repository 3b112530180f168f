package domain

import (
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// Candle single OHLCV candlestick.
type Candle struct {
	Time   time.Time
	Open   decimal.Decimal
	High   decimal.Decimal
	Low    decimal.Decimal
	Close  decimal.Decimal
	Volume decimal.Decimal
}

// CandleSeries candles ordered by time, index is the position in time.
type CandleSeries []Candle

// Validate checks ordering and volume constraints of the series.
func (s CandleSeries) Validate() error {
	if len(s) == 0 {
		return ErrEmptySeries
	}
	for i, c := range s {
		if c.Volume.IsNegative() {
			return errors.Errorf("negative volume %s at index %d", c.Volume, i)
		}
		if i > 0 && !c.Time.After(s[i-1].Time) {
			return errors.Errorf("candle time %s at index %d is not after %s", c.Time.Format(time.RFC3339), i, s[i-1].Time.Format(time.RFC3339))
		}
	}
	return nil
}

// Closes returns the close prices.
func (s CandleSeries) Closes() []decimal.Decimal {
	out := make([]decimal.Decimal, len(s))
	for i, c := range s {
		out[i] = c.Close
	}
	return out
}

// Volumes returns the traded volumes.
func (s CandleSeries) Volumes() []decimal.Decimal {
	out := make([]decimal.Decimal, len(s))
	for i, c := range s {
		out[i] = c.Volume
	}
	return out
}

// Latest returns the most recent candle.
func (s CandleSeries) Latest() (Candle, bool) {
	if len(s) == 0 {
		return Candle{}, false
	}
	return s[len(s)-1], true
}
