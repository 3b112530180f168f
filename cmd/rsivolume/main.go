// Command rsivolume evaluates the RSI crossover with volume surge entry signal over candle history
// and journals every entry it finds.
//
// Usage:
//
//	rsivolume --config config.yaml
//	rsivolume --pair BTC_USDT --candles btc_4h.csv [--metrics-addr :9090]
//	rsivolume setup
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/vadiminshakov/rsivolume/config"
	"github.com/vadiminshakov/rsivolume/dashboard"
	"github.com/vadiminshakov/rsivolume/internal/app"
	"github.com/vadiminshakov/rsivolume/internal/host"
	"github.com/vadiminshakov/rsivolume/internal/report"
	"github.com/vadiminshakov/rsivolume/internal/services/marketdata"
	"github.com/vadiminshakov/rsivolume/internal/services/strategy/rsivolume"
	"github.com/vadiminshakov/rsivolume/internal/setup"
	"github.com/vadiminshakov/rsivolume/internal/storage/signals"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	args := os.Args[1:]
	if len(args) > 0 && args[0] == "setup" {
		if err := setup.RunTUI(setup.DefaultFile); err != nil {
			logger.Fatal("setup failed", zap.Error(err))
		}
		args = []string{"--config", setup.DefaultFile}
	}

	conf, err := config.Get(args)
	if err != nil {
		logger.Fatal("failed to get configuration", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, conf); err != nil {
		logger.Fatal("run failed", zap.Error(err))
	}
}

func run(ctx context.Context, logger *zap.Logger, conf config.Config) error {
	strategy, err := rsivolume.New(logger, conf.Strategy, conf.Host)
	if err != nil {
		return err
	}

	registry := host.NewRegistry()
	if err := registry.Register(strategy.Registration()); err != nil {
		return err
	}
	reg, err := registry.Get(rsivolume.Name)
	if err != nil {
		return err
	}

	jobs := make([]app.Job, 0, len(conf.Pairs))
	for _, p := range conf.Pairs {
		series, err := marketdata.LoadFile(p.Candles)
		if err != nil {
			return errors.Wrapf(err, "load candles for %s", p.Pair.String())
		}
		logger.Info("candles loaded",
			zap.String("pair", p.Pair.String()),
			zap.String("file", p.Candles),
			zap.Int("candles", len(series)))
		jobs = append(jobs, app.Job{Pair: p.Pair, Series: series})
	}

	store, err := signals.NewWALStore(conf.WALDir)
	if err != nil {
		return err
	}
	defer store.Close()

	results, err := app.NewEvaluator(logger, reg, store, 0).Run(ctx, jobs)
	if err != nil {
		return err
	}
	if err := report.Write(os.Stdout, reg.Name, results); err != nil {
		return errors.Wrap(err, "write report")
	}

	if conf.MetricsAddr == "" {
		return nil
	}
	return dashboard.NewServer(logger, conf.MetricsAddr, store).Start(ctx)
}
