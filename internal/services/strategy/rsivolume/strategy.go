package rsivolume

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/vadiminshakov/rsivolume/config"
	"github.com/vadiminshakov/rsivolume/internal/domain"
	"github.com/vadiminshakov/rsivolume/internal/host"
)

// Name strategy name used for registration.
const Name = "rsi_volume"

// Strategy host-facing wrapper around the signal computation.
type Strategy struct {
	l    *zap.Logger
	cfg  config.StrategyConfig
	host config.HostConfig
}

// New returns a configured strategy.
func New(l *zap.Logger, cfg config.StrategyConfig, hostCfg config.HostConfig) (*Strategy, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid strategy config")
	}
	if err := hostCfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid host config")
	}
	if l == nil {
		l = zap.NewNop()
	}
	return &Strategy{l: l, cfg: cfg, host: hostCfg}, nil
}

// Name returns the registration name.
func (s *Strategy) Name() string { return Name }

// Timeframe candle interval the strategy expects.
func (s *Strategy) Timeframe() string { return s.host.Timeframe }

// WarmupPeriod number of leading candles without a defined indicator row.
func (s *Strategy) WarmupPeriod() int { return s.cfg.Warmup() }

// HostConfig returns the declarative settings the host applies around the signals.
func (s *Strategy) HostConfig() config.HostConfig { return s.host }

// Registration returns the explicit registration record handed to the host.
func (s *Strategy) Registration() host.Registration {
	return host.Registration{
		Name:     Name,
		Strategy: s,
		Config:   s.host,
	}
}

// Populate computes indicators and signals for one pair. The returned frame has one row per
// candle in input order; the series itself is not modified. A series shorter than the warmup
// yields a frame without signals instead of an error.
func (s *Strategy) Populate(ctx context.Context, pair domain.Pair, series domain.CandleSeries) (*domain.Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := series.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid candle series for %s", pair.String())
	}

	ind, err := ComputeIndicators(series, s.cfg.RSIPeriod, s.cfg.VolumeWindow)
	insufficient := errors.Is(err, domain.ErrInsufficientHistory)
	switch {
	case insufficient:
		s.l.Warn("not enough candles for indicators, no signals will be produced",
			zap.String("pair", pair.String()),
			zap.Int("candles", len(series)),
			zap.Int("warmup", s.cfg.Warmup()),
		)
	case err != nil:
		return nil, errors.Wrapf(err, "failed to compute indicators for %s", pair.String())
	}

	enter, err := ComputeEntrySignal(series, ind, s.cfg.RSIThreshold, s.cfg.VolumeMultiplier)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to compute entry signal for %s", pair.String())
	}

	frame, err := domain.NewFrame(pair, s.host.Timeframe, series, ind, enter, ComputeExitSignal(series))
	if err != nil {
		return nil, err
	}
	frame.InsufficientHistory = insufficient
	return frame, nil
}
