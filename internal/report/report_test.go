package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vadiminshakov/rsivolume/internal/app"
	"github.com/vadiminshakov/rsivolume/internal/domain"
)

func TestWrite(t *testing.T) {
	results := []app.Result{
		{
			Pair:       domain.Pair{From: "BTC", To: "USDT"},
			Candles:    500,
			WarmupRows: 10,
			Entries:    3,
			LastEntry:  time.Date(2024, 3, 5, 8, 0, 0, 0, time.UTC),
		},
		{
			Pair:         domain.Pair{From: "ETH", To: "USDT"},
			Candles:      4,
			WarmupRows:   4,
			Insufficient: true,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, "rsi_volume", results))

	out := buf.String()
	assert.Contains(t, out, "rsi_volume: 2 pairs")
	assert.Contains(t, out, "BTC_USDT")
	assert.Contains(t, out, "ETH_USDT")
	assert.Contains(t, out, "500")
	assert.Contains(t, out, "2024-03-05 08:00:00")
	assert.Contains(t, out, "4 (short)")
	assert.NotContains(t, out, "10 (short)")
	assert.Contains(t, out, "LAST SIGNAL")
}

func TestWrite_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, "rsi_volume", nil))
	assert.Contains(t, buf.String(), "rsi_volume: 0 pairs")
}
