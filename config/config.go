package config

import (
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/vadiminshakov/rsivolume/internal/domain"
)

const (
	defaultRSIPeriod          = 10
	defaultVolumeWindow       = 10
	defaultTimeframe          = "4h"
	defaultStartupCandleCount = 10
	defaultWALDir             = "./wal/signals"
)

var (
	defaultRSIThreshold               = decimal.NewFromInt(30)
	defaultVolumeMultiplier           = decimal.RequireFromString("1.2")
	defaultStoploss                   = decimal.RequireFromString("-0.01")
	defaultTrailingStopPositive       = decimal.RequireFromString("0.005")
	defaultTrailingStopPositiveOffset = decimal.RequireFromString("0.02")
	disabledROI                       = decimal.NewFromInt(999)
)

// StrategyConfig parameters of the entry signal.
type StrategyConfig struct {
	RSIPeriod        int
	VolumeWindow     int
	RSIThreshold     decimal.Decimal
	VolumeMultiplier decimal.Decimal
}

// HostConfig declarative settings interpreted by the host that executes the signals.
// Nothing in this module enforces them.
type HostConfig struct {
	Timeframe                   string
	StartupCandleCount          int
	Stoploss                    decimal.Decimal
	TrailingStop                bool
	TrailingStopPositive        decimal.Decimal
	TrailingStopPositiveOffset  decimal.Decimal
	TrailingOnlyOffsetIsReached bool
	// MinimalROI maps minutes since entry to the profit ratio that closes the trade.
	MinimalROI             map[int]decimal.Decimal
	UseExitSignal          bool
	ExitProfitOnly         bool
	IgnoreROIIfEntrySignal bool
}

// PairSource candle history file for a pair.
type PairSource struct {
	Pair    domain.Pair
	Candles string
}

// Config full run configuration.
type Config struct {
	Strategy    StrategyConfig
	Host        HostConfig
	Pairs       []PairSource
	WALDir      string
	MetricsAddr string
}

// ConfigTmp yaml representation, decimals are kept as strings.
type ConfigTmp struct {
	RSIPeriod                   *int              `yaml:"rsi_period,omitempty"`
	VolumeWindow                *int              `yaml:"volume_window,omitempty"`
	RSIThresholdStr             string            `yaml:"rsi_threshold,omitempty"`
	VolumeMultiplierStr         string            `yaml:"volume_multiplier,omitempty"`
	Timeframe                   string            `yaml:"timeframe,omitempty"`
	StartupCandleCount          *int              `yaml:"startup_candle_count,omitempty"`
	StoplossStr                 string            `yaml:"stoploss,omitempty"`
	TrailingStop                *bool             `yaml:"trailing_stop,omitempty"`
	TrailingStopPositiveStr     string            `yaml:"trailing_stop_positive,omitempty"`
	TrailingStopPositiveOffset  string            `yaml:"trailing_stop_positive_offset,omitempty"`
	TrailingOnlyOffsetIsReached *bool             `yaml:"trailing_only_offset_is_reached,omitempty"`
	MinimalROI                  map[string]string `yaml:"minimal_roi,omitempty"`
	UseExitSignal               *bool             `yaml:"use_exit_signal,omitempty"`
	ExitProfitOnly              *bool             `yaml:"exit_profit_only,omitempty"`
	IgnoreROIIfEntrySignal      *bool             `yaml:"ignore_roi_if_entry_signal,omitempty"`
	Pairs                       []PairSourceTmp   `yaml:"pairs"`
	WALDir                      string            `yaml:"wal_dir,omitempty"`
	MetricsAddr                 string            `yaml:"metrics_addr,omitempty"`
}

// PairSourceTmp yaml representation of a PairSource.
type PairSourceTmp struct {
	Pair    string `yaml:"pair"`
	Candles string `yaml:"candles"`
}

// DefaultStrategy returns RSI(10) crossing 30 with a 1.2x surge over the previous 10 volumes.
func DefaultStrategy() StrategyConfig {
	return StrategyConfig{
		RSIPeriod:        defaultRSIPeriod,
		VolumeWindow:     defaultVolumeWindow,
		RSIThreshold:     defaultRSIThreshold,
		VolumeMultiplier: defaultVolumeMultiplier,
	}
}

// DefaultHost returns the 4h, 1% stoploss, trailing 0.5% after +2% host settings with ROI disabled.
func DefaultHost() HostConfig {
	return HostConfig{
		Timeframe:                   defaultTimeframe,
		StartupCandleCount:          defaultStartupCandleCount,
		Stoploss:                    defaultStoploss,
		TrailingStop:                true,
		TrailingStopPositive:        defaultTrailingStopPositive,
		TrailingStopPositiveOffset:  defaultTrailingStopPositiveOffset,
		TrailingOnlyOffsetIsReached: true,
		MinimalROI:                  map[int]decimal.Decimal{0: disabledROI},
		UseExitSignal:               false,
		ExitProfitOnly:              false,
		IgnoreROIIfEntrySignal:      false,
	}
}

// Default returns a config with default strategy and host sections and no pairs.
func Default() Config {
	return Config{
		Strategy: DefaultStrategy(),
		Host:     DefaultHost(),
		WALDir:   defaultWALDir,
	}
}

// Validate checks the signal parameters.
func (c StrategyConfig) Validate() error {
	if c.RSIPeriod <= 0 {
		return fmt.Errorf("rsi_period must be positive, got %d", c.RSIPeriod)
	}
	if c.VolumeWindow <= 0 {
		return fmt.Errorf("volume_window must be positive, got %d", c.VolumeWindow)
	}
	if !c.RSIThreshold.IsPositive() || c.RSIThreshold.GreaterThanOrEqual(decimal.NewFromInt(100)) {
		return fmt.Errorf("rsi_threshold must be within (0, 100), got %s", c.RSIThreshold)
	}
	if !c.VolumeMultiplier.IsPositive() {
		return fmt.Errorf("volume_multiplier must be positive, got %s", c.VolumeMultiplier)
	}
	return nil
}

// Warmup returns the number of leading candles without a complete indicator row.
func (c StrategyConfig) Warmup() int {
	if c.RSIPeriod > c.VolumeWindow {
		return c.RSIPeriod
	}
	return c.VolumeWindow
}

// Validate checks the host settings for values the host would reject.
func (h HostConfig) Validate() error {
	if _, err := domain.ParseTimeframe(h.Timeframe); err != nil {
		return errors.Wrap(err, "timeframe")
	}
	if h.StartupCandleCount < 0 {
		return fmt.Errorf("startup_candle_count cannot be negative, got %d", h.StartupCandleCount)
	}
	if !h.Stoploss.IsNegative() || h.Stoploss.LessThan(decimal.NewFromInt(-1)) {
		return fmt.Errorf("stoploss must be within [-1, 0), got %s", h.Stoploss)
	}
	if h.TrailingStop {
		if !h.TrailingStopPositive.IsPositive() {
			return fmt.Errorf("trailing_stop_positive must be positive, got %s", h.TrailingStopPositive)
		}
		if h.TrailingStopPositiveOffset.IsNegative() {
			return fmt.Errorf("trailing_stop_positive_offset cannot be negative, got %s", h.TrailingStopPositiveOffset)
		}
		if h.TrailingOnlyOffsetIsReached && h.TrailingStopPositiveOffset.LessThanOrEqual(h.TrailingStopPositive) {
			return fmt.Errorf("trailing_stop_positive_offset (%s) must be greater than trailing_stop_positive (%s)",
				h.TrailingStopPositiveOffset, h.TrailingStopPositive)
		}
	}
	for minutes := range h.MinimalROI {
		if minutes < 0 {
			return fmt.Errorf("minimal_roi key cannot be negative, got %d", minutes)
		}
	}
	return nil
}

// ROISteps returns the minimal ROI table ordered by minutes.
func (h HostConfig) ROISteps() []int {
	steps := make([]int, 0, len(h.MinimalROI))
	for minutes := range h.MinimalROI {
		steps = append(steps, minutes)
	}
	sort.Ints(steps)
	return steps
}

// Validate checks every section and their consistency.
func (c Config) Validate() error {
	if err := c.Strategy.Validate(); err != nil {
		return errors.Wrap(err, "strategy")
	}
	if err := c.Host.Validate(); err != nil {
		return errors.Wrap(err, "host")
	}
	if c.Host.StartupCandleCount < c.Strategy.Warmup() {
		return fmt.Errorf("startup_candle_count (%d) is below the indicator warmup (%d)",
			c.Host.StartupCandleCount, c.Strategy.Warmup())
	}
	seen := make(map[string]bool, len(c.Pairs))
	for _, p := range c.Pairs {
		if p.Pair.IsZero() {
			return errors.New("pair is required")
		}
		if p.Candles == "" {
			return fmt.Errorf("candles path is required for %s", p.Pair.String())
		}
		if seen[p.Pair.String()] {
			return fmt.Errorf("duplicate pair %s", p.Pair.String())
		}
		seen[p.Pair.String()] = true
	}
	return nil
}

// Load reads a yaml config, missing fields keep their defaults.
func Load(path string) (Config, error) {
	f, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "read config %s", path)
	}
	return Parse(f)
}

// Parse decodes yaml bytes into a validated Config.
func Parse(data []byte) (Config, error) {
	var tmp ConfigTmp
	if err := yaml.Unmarshal(data, &tmp); err != nil {
		return Config{}, errors.Wrap(err, "decode yaml config")
	}

	conf, err := tmp.toConfig()
	if err != nil {
		return Config{}, err
	}
	if err := conf.Validate(); err != nil {
		return Config{}, err
	}
	return conf, nil
}

func (c ConfigTmp) toConfig() (Config, error) {
	conf := Default()

	if c.RSIPeriod != nil {
		conf.Strategy.RSIPeriod = *c.RSIPeriod
	}
	if c.VolumeWindow != nil {
		conf.Strategy.VolumeWindow = *c.VolumeWindow
	}
	if err := parseDecimal(c.RSIThresholdStr, "rsi_threshold", &conf.Strategy.RSIThreshold); err != nil {
		return Config{}, err
	}
	if err := parseDecimal(c.VolumeMultiplierStr, "volume_multiplier", &conf.Strategy.VolumeMultiplier); err != nil {
		return Config{}, err
	}

	if c.Timeframe != "" {
		conf.Host.Timeframe = c.Timeframe
	}
	if c.StartupCandleCount != nil {
		conf.Host.StartupCandleCount = *c.StartupCandleCount
	}
	if err := parseDecimal(c.StoplossStr, "stoploss", &conf.Host.Stoploss); err != nil {
		return Config{}, err
	}
	if c.TrailingStop != nil {
		conf.Host.TrailingStop = *c.TrailingStop
	}
	if err := parseDecimal(c.TrailingStopPositiveStr, "trailing_stop_positive", &conf.Host.TrailingStopPositive); err != nil {
		return Config{}, err
	}
	if err := parseDecimal(c.TrailingStopPositiveOffset, "trailing_stop_positive_offset", &conf.Host.TrailingStopPositiveOffset); err != nil {
		return Config{}, err
	}
	if c.TrailingOnlyOffsetIsReached != nil {
		conf.Host.TrailingOnlyOffsetIsReached = *c.TrailingOnlyOffsetIsReached
	}
	if len(c.MinimalROI) > 0 {
		roi := make(map[int]decimal.Decimal, len(c.MinimalROI))
		for k, v := range c.MinimalROI {
			minutes, err := strconv.Atoi(k)
			if err != nil {
				return Config{}, fmt.Errorf("incorrect 'minimal_roi' key %q in yaml config (must be minutes), error: %w", k, err)
			}
			ratio, err := decimal.NewFromString(v)
			if err != nil {
				return Config{}, fmt.Errorf("incorrect 'minimal_roi' value for %q in yaml config (must be a decimal), error: %w", k, err)
			}
			roi[minutes] = ratio
		}
		conf.Host.MinimalROI = roi
	}
	if c.UseExitSignal != nil {
		conf.Host.UseExitSignal = *c.UseExitSignal
	}
	if c.ExitProfitOnly != nil {
		conf.Host.ExitProfitOnly = *c.ExitProfitOnly
	}
	if c.IgnoreROIIfEntrySignal != nil {
		conf.Host.IgnoreROIIfEntrySignal = *c.IgnoreROIIfEntrySignal
	}

	for _, p := range c.Pairs {
		pair, err := domain.ParsePair(p.Pair)
		if err != nil {
			return Config{}, fmt.Errorf("incorrect 'pair' param in yaml config: %s, error: %w", p.Pair, err)
		}
		conf.Pairs = append(conf.Pairs, PairSource{Pair: pair, Candles: p.Candles})
	}

	if c.WALDir != "" {
		conf.WALDir = c.WALDir
	}
	conf.MetricsAddr = c.MetricsAddr

	return conf, nil
}

func parseDecimal(raw, name string, dst *decimal.Decimal) error {
	if raw == "" {
		return nil
	}
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return fmt.Errorf("incorrect '%s' param in yaml config (must be a decimal), error: %w", name, err)
	}
	*dst = v
	return nil
}
