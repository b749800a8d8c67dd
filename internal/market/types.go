package market

import "time"

// Candle is a single OHLCV bar.
type Candle struct {
	Timestamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    int64
}

// Series holds the downloaded candles for one ticker.
type Series struct {
	Ticker  string
	Candles []Candle
}

// Empty reports whether the series carries no candles.
func (s *Series) Empty() bool {
	return s == nil || len(s.Candles) == 0
}

// Window is the half-open time range [Start, End) to download.
type Window struct {
	Start time.Time
	End   time.Time
}

// LastDays returns a window covering the previous n days ending now (UTC).
func LastDays(n int) Window {
	end := time.Now().UTC()
	return Window{Start: end.AddDate(0, 0, -n), End: end}
}
