// Package series derives normalized per-ticker series from archived candles.
package series

import (
	"math"
	"sort"
	"time"

	"github.com/quoteflow/quoteflow/internal/archive"
)

// Point is one normalized observation.
type Point struct {
	Timestamp time.Time
	Value     float64
}

// Normalized is one ticker's close series rebased so the first valid
// observation equals 1.0.
type Normalized struct {
	Ticker string
	Points []Point
}

// Normalize groups rows by ticker, sorts each group by time and divides
// every close by the ticker's first valid (finite, non-zero) close.
// Tickers with no valid base are dropped. Results are ordered by ticker.
func Normalize(rows []archive.Row) []Normalized {
	byTicker := make(map[string][]archive.Row)
	for _, r := range rows {
		byTicker[r.Ticker] = append(byTicker[r.Ticker], r)
	}

	out := make([]Normalized, 0, len(byTicker))
	for _, ticker := range Tickers(rows) {
		group := byTicker[ticker]
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].Timestamp.Before(group[j].Timestamp)
		})

		base := math.NaN()
		for _, r := range group {
			if valid(r.Close) {
				base = r.Close
				break
			}
		}
		if math.IsNaN(base) {
			continue
		}

		n := Normalized{Ticker: ticker, Points: make([]Point, 0, len(group))}
		for _, r := range group {
			if !valid(r.Close) {
				continue
			}
			n.Points = append(n.Points, Point{Timestamp: r.Timestamp, Value: r.Close / base})
		}
		out = append(out, n)
	}

	return out
}

// Tickers returns the distinct tickers in rows, sorted.
func Tickers(rows []archive.Row) []string {
	seen := make(map[string]struct{})
	var tickers []string
	for _, r := range rows {
		if _, ok := seen[r.Ticker]; ok {
			continue
		}
		seen[r.Ticker] = struct{}{}
		tickers = append(tickers, r.Ticker)
	}
	sort.Strings(tickers)
	return tickers
}

// valid reports whether a close price can anchor or join a series.
func valid(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0) && f != 0
}
