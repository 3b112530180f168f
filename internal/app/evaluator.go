// Package app runs a registered strategy over the candle history of several pairs.
package app

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/vadiminshakov/rsivolume/internal/domain"
	"github.com/vadiminshakov/rsivolume/internal/host"
	"github.com/vadiminshakov/rsivolume/internal/metrics"
)

const defaultConcurrency = 4

type signalJournal interface {
	Save(event domain.SignalEvent) (uint64, error)
}

// Job candle history of one pair.
type Job struct {
	Pair   domain.Pair
	Series domain.CandleSeries
}

// Result outcome of evaluating one pair.
type Result struct {
	RunID        string
	Pair         domain.Pair
	Frame        *domain.Frame
	Candles      int
	WarmupRows   int
	Entries      int
	Insufficient bool
	LastEntry    time.Time
	Took         time.Duration
}

// Evaluator runs one strategy over many pairs concurrently.
type Evaluator struct {
	l           *zap.Logger
	reg         host.Registration
	journal     signalJournal
	concurrency int
}

// NewEvaluator creates an evaluator for reg. journal may be nil, then signals are not persisted.
func NewEvaluator(l *zap.Logger, reg host.Registration, journal signalJournal, concurrency int) *Evaluator {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	return &Evaluator{l: l, reg: reg, journal: journal, concurrency: concurrency}
}

// Run evaluates all jobs and returns results in job order.
// The first failing pair cancels the rest.
func (e *Evaluator) Run(ctx context.Context, jobs []Job) ([]Result, error) {
	runID := uuid.NewString()
	results := make([]Result, len(jobs))

	e.l.Info("evaluation started",
		zap.String("run_id", runID),
		zap.String("strategy", e.reg.Name),
		zap.Int("pairs", len(jobs)))

	var journalMu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for i, job := range jobs {
		g.Go(func() error {
			res, err := e.evaluate(ctx, runID, job, &journalMu)
			if err != nil {
				return errors.Wrapf(err, "evaluate %s", job.Pair.String())
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	e.l.Info("evaluation finished", zap.String("run_id", runID))
	return results, nil
}

func (e *Evaluator) evaluate(ctx context.Context, runID string, job Job, journalMu *sync.Mutex) (Result, error) {
	start := time.Now()

	frame, err := e.reg.Strategy.Populate(ctx, job.Pair, job.Series)
	if err != nil {
		return Result{}, err
	}

	res := Result{
		RunID:   runID,
		Pair:    job.Pair,
		Frame:   frame,
		Candles: len(frame.Rows),
	}
	res.LastEntry, _ = frame.LastEntryTime()
	res.WarmupRows = frame.WarmupRows()
	res.Insufficient = frame.InsufficientHistory

	entries := frame.EntryRows()
	res.Entries = len(entries)

	if e.journal != nil {
		// keep one pair's signals contiguous in the journal
		journalMu.Lock()
		for _, row := range entries {
			event := domain.NewSignalEvent(uuid.NewString(), runID, e.reg.Name, job.Pair, frame.Timeframe, row)
			if _, err := e.journal.Save(event); err != nil {
				journalMu.Unlock()
				return Result{}, errors.Wrap(err, "journal entry signal")
			}
		}
		journalMu.Unlock()
	}

	for _, row := range entries {
		e.l.Info("entry signal",
			zap.String("pair", job.Pair.String()),
			zap.Time("candle", row.Time),
			zap.String("close", row.Close.String()),
			zap.String("volume", row.Volume.String()),
			zap.String("rsi", row.RSI.Decimal.StringFixed(2)))
	}

	res.Took = time.Since(start)
	metrics.ObserveEvaluation(job.Pair.String(), res.Candles, res.Entries, res.Insufficient, res.Took)

	e.l.Info("pair evaluated",
		zap.String("pair", job.Pair.String()),
		zap.Int("candles", res.Candles),
		zap.Int("warmup_rows", res.WarmupRows),
		zap.Int("entries", res.Entries),
		zap.Duration("took", res.Took))

	return res, nil
}
