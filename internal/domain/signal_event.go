package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SignalEvent entry signal emitted for a candle, as persisted in the journal.
type SignalEvent struct {
	ID             string          `json:"id"`
	RunID          string          `json:"run_id"`
	Strategy       string          `json:"strategy"`
	Pair           string          `json:"pair"`
	Timeframe      string          `json:"timeframe"`
	CandleTime     time.Time       `json:"candle_time"`
	Close          decimal.Decimal `json:"close"`
	Volume         decimal.Decimal `json:"volume"`
	RSI            decimal.Decimal `json:"rsi"`
	VolumeMeanPrev decimal.Decimal `json:"volume_mean_prev"`
}

// NewSignalEvent builds an event from a flagged frame row.
func NewSignalEvent(id, runID, strategy string, pair Pair, timeframe string, row Row) SignalEvent {
	return SignalEvent{
		ID:             id,
		RunID:          runID,
		Strategy:       strategy,
		Pair:           pair.String(),
		Timeframe:      timeframe,
		CandleTime:     row.Time,
		Close:          row.Close,
		Volume:         row.Volume,
		RSI:            row.RSI.Decimal,
		VolumeMeanPrev: row.VolumeMeanPrev.Decimal,
	}
}

// SignalEventRecord bundles an event with its journal index.
type SignalEventRecord struct {
	Index uint64
	Event SignalEvent
}
