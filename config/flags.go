package config

import (
	"flag"
	"fmt"

	"github.com/vadiminshakov/rsivolume/internal/domain"
)

// Get builds the run configuration from command line arguments.
// With --config the yaml file is used; otherwise a single pair is taken from --pair and --candles
// and every other setting keeps its default.
func Get(args []string) (Config, error) {
	fs := flag.NewFlagSet("rsivolume", flag.ContinueOnError)
	path := fs.String("config", "", "path to yaml config")
	pairFlag := fs.String("pair", "BTC_USDT", "trade pair, example: BTC_USDT")
	candles := fs.String("candles", "", "candle history file (.csv or .json)")
	walDir := fs.String("wal", "", "signal journal directory")
	metricsAddr := fs.String("metrics-addr", "", "serve /metrics and /signals on this address after the run, example: :9090")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	var (
		conf Config
		err  error
	)
	if *path != "" {
		conf, err = Load(*path)
		if err != nil {
			return Config{}, err
		}
	} else {
		if *candles == "" {
			return Config{}, fmt.Errorf("either --config or --candles must be provided")
		}
		pair, err := domain.ParsePair(*pairFlag)
		if err != nil {
			return Config{}, fmt.Errorf("invalid --pair provided, --pair=%s", *pairFlag)
		}
		conf = Default()
		conf.Pairs = []PairSource{{Pair: pair, Candles: *candles}}
	}

	if *walDir != "" {
		conf.WALDir = *walDir
	}
	if *metricsAddr != "" {
		conf.MetricsAddr = *metricsAddr
	}

	if err := conf.Validate(); err != nil {
		return Config{}, err
	}
	return conf, nil
}
