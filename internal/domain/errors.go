package domain

import "github.com/pkg/errors"

var (
	// ErrEmptySeries is returned when a computation receives no candles.
	ErrEmptySeries = errors.New("candle series is empty")
	// ErrInsufficientHistory marks a series too short for every indicator to warm up.
	// Values are still returned, leading rows are simply undefined and never signal.
	ErrInsufficientHistory = errors.New("insufficient candle history")
	// ErrMisalignedInput is returned when an indicator frame was not derived from the given series.
	ErrMisalignedInput = errors.New("indicator frame is not aligned with candle series")
	// ErrInvalidParameter is returned for non-positive periods or windows.
	ErrInvalidParameter = errors.New("invalid parameter")
)
