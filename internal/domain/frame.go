package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// IndicatorRow derived indicator values for one candle. Invalid values are undefined.
type IndicatorRow struct {
	RSI            decimal.NullDecimal
	VolumeMeanPrev decimal.NullDecimal
}

// Defined reports whether every indicator has a value.
func (r IndicatorRow) Defined() bool {
	return r.RSI.Valid && r.VolumeMeanPrev.Valid
}

// IndicatorFrame indicator rows aligned 1:1 with a CandleSeries.
type IndicatorFrame []IndicatorRow

// WarmupRows counts leading rows where at least one indicator is undefined.
func (f IndicatorFrame) WarmupRows() int {
	for i, r := range f {
		if r.Defined() {
			return i
		}
	}
	return len(f)
}

// SignalFrame per-candle signal flags aligned 1:1 with a CandleSeries.
type SignalFrame []bool

// Count returns the number of raised flags.
func (f SignalFrame) Count() int {
	n := 0
	for _, v := range f {
		if v {
			n++
		}
	}
	return n
}

// Row candle with the columns added by a strategy.
type Row struct {
	Candle
	IndicatorRow
	EnterLong bool
	ExitLong  bool
}

// Frame strategy output for one pair, same length and order as the input series.
type Frame struct {
	Pair      Pair
	Timeframe string
	Rows      []Row
	// InsufficientHistory is set when the series was shorter than the indicator warmup.
	InsufficientHistory bool
}

// NewFrame zips candles, indicators and signals into rows.
// All inputs must have the same length.
func NewFrame(pair Pair, timeframe string, series CandleSeries, ind IndicatorFrame, enter, exit SignalFrame) (*Frame, error) {
	n := len(series)
	if len(ind) != n || len(enter) != n || len(exit) != n {
		return nil, ErrMisalignedInput
	}

	rows := make([]Row, n)
	for i := range series {
		rows[i] = Row{
			Candle:       series[i],
			IndicatorRow: ind[i],
			EnterLong:    enter[i],
			ExitLong:     exit[i],
		}
	}

	return &Frame{Pair: pair, Timeframe: timeframe, Rows: rows}, nil
}

// WarmupRows counts leading rows where at least one indicator is undefined.
func (f *Frame) WarmupRows() int {
	if f == nil {
		return 0
	}
	for i, r := range f.Rows {
		if r.Defined() {
			return i
		}
	}
	return len(f.Rows)
}

// EntryRows returns the rows flagged for a long entry.
func (f *Frame) EntryRows() []Row {
	if f == nil {
		return nil
	}
	var out []Row
	for _, r := range f.Rows {
		if r.EnterLong {
			out = append(out, r)
		}
	}
	return out
}

// LastEntryTime returns the time of the latest entry signal.
func (f *Frame) LastEntryTime() (time.Time, bool) {
	if f == nil {
		return time.Time{}, false
	}
	for i := len(f.Rows) - 1; i >= 0; i-- {
		if f.Rows[i].EnterLong {
			return f.Rows[i].Time, true
		}
	}
	return time.Time{}, false
}
