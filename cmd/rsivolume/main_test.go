package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vadiminshakov/rsivolume/config"
	"github.com/vadiminshakov/rsivolume/internal/domain"
	"github.com/vadiminshakov/rsivolume/internal/storage/signals"
)

// writeCandles writes a falling market that jumps on its last candle with doubled volume.
func writeCandles(t *testing.T, dir string, n int) string {
	t.Helper()

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var b strings.Builder
	b.WriteString("time,open,high,low,close,volume\n")
	for i := 0; i < n; i++ {
		price, volume := 1000-i, 100
		if i == n-1 {
			price, volume = 1000-i+101, 200
		}
		ts := start.Add(time.Duration(i) * 4 * time.Hour).UnixMilli()
		fmt.Fprintf(&b, "%d,%d,%d,%d,%d,%d\n", ts, price, price, price, price, volume)
	}

	path := filepath.Join(dir, "btc.csv")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
	return path
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	conf := config.Default()
	conf.WALDir = filepath.Join(dir, "wal")
	conf.Pairs = []config.PairSource{{
		Pair:    domain.Pair{From: "BTC", To: "USDT"},
		Candles: writeCandles(t, dir, 30),
	}}
	require.NoError(t, conf.Validate())

	require.NoError(t, run(context.Background(), zap.NewNop(), conf))

	store, err := signals.NewWALStore(conf.WALDir)
	require.NoError(t, err)
	defer store.Close()

	records, err := store.EventsAfter(0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "BTC_USDT", records[0].Event.Pair)
	assert.Equal(t, "rsi_volume", records[0].Event.Strategy)
}

func TestRun_MissingCandles(t *testing.T) {
	conf := config.Default()
	conf.WALDir = filepath.Join(t.TempDir(), "wal")
	conf.Pairs = []config.PairSource{{
		Pair:    domain.Pair{From: "BTC", To: "USDT"},
		Candles: filepath.Join(t.TempDir(), "missing.csv"),
	}}

	require.Error(t, run(context.Background(), zap.NewNop(), conf))
}
