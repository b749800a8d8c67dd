package series

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quoteflow/quoteflow/internal/archive"
)

func row(ticker string, hour int, close float64) archive.Row {
	return archive.Row{
		Timestamp: time.Date(2024, 3, 4, hour, 0, 0, 0, time.UTC),
		Close:     close,
		Ticker:    ticker,
	}
}

func TestNormalize(t *testing.T) {
	rows := []archive.Row{
		row("META", 14, 50),
		row("AAPL", 14, 200),
		row("AAPL", 15, 210),
		row("AAPL", 16, 190),
		row("META", 15, 55),
	}

	normalized := Normalize(rows)
	require.Len(t, normalized, 2)

	// Ordered by ticker.
	assert.Equal(t, "AAPL", normalized[0].Ticker)
	assert.Equal(t, "META", normalized[1].Ticker)

	aapl := normalized[0].Points
	require.Len(t, aapl, 3)
	assert.Equal(t, 1.0, aapl[0].Value)
	assert.InDelta(t, 1.05, aapl[1].Value, 1e-9)
	assert.InDelta(t, 0.95, aapl[2].Value, 1e-9)

	meta := normalized[1].Points
	require.Len(t, meta, 2)
	assert.Equal(t, 1.0, meta[0].Value)
	assert.InDelta(t, 1.1, meta[1].Value, 1e-9)
}

func TestNormalize_SkipsInvalidBase(t *testing.T) {
	rows := []archive.Row{
		// First close is zero: the base is the first valid one instead.
		row("AAPL", 14, 0),
		row("AAPL", 15, 100),
		row("AAPL", 16, 150),
		// All closes invalid: ticker is dropped entirely.
		row("GONE", 14, 0),
		row("GONE", 15, math.NaN()),
	}

	normalized := Normalize(rows)
	require.Len(t, normalized, 1)
	assert.Equal(t, "AAPL", normalized[0].Ticker)

	points := normalized[0].Points
	require.Len(t, points, 2)
	assert.Equal(t, 1.0, points[0].Value)
	assert.InDelta(t, 1.5, points[1].Value, 1e-9)
}

func TestNormalize_SortsByTime(t *testing.T) {
	rows := []archive.Row{
		row("AAPL", 16, 300),
		row("AAPL", 14, 100),
		row("AAPL", 15, 200),
	}

	normalized := Normalize(rows)
	require.Len(t, normalized, 1)

	points := normalized[0].Points
	require.Len(t, points, 3)
	// Base is the earliest close after sorting, not the first row seen.
	assert.Equal(t, 1.0, points[0].Value)
	assert.InDelta(t, 2.0, points[1].Value, 1e-9)
	assert.InDelta(t, 3.0, points[2].Value, 1e-9)
}

func TestNormalize_Empty(t *testing.T) {
	assert.Empty(t, Normalize(nil))
}

func TestTickers(t *testing.T) {
	rows := []archive.Row{
		row("NFLX", 14, 1),
		row("AAPL", 14, 1),
		row("NFLX", 15, 1),
		row("GOOG", 14, 1),
	}

	assert.Equal(t, []string{"AAPL", "GOOG", "NFLX"}, Tickers(rows))
	assert.Empty(t, Tickers(nil))
}
