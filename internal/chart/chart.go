// Package chart renders normalized close series as a self-contained HTML
// line chart, one line per ticker.
package chart

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/quoteflow/quoteflow/internal/series"
)

const outputTimeLayout = "20060102-150405"

// axisTimeLayout labels the X axis, e.g. "Mar 04 15:00".
const axisTimeLayout = "Jan 02 15:04"

// Render writes an overlay chart of the normalized series to w.
func Render(w io.Writer, title string, normalized []series.Normalized) error {
	if len(normalized) == 0 {
		return fmt.Errorf("nothing to chart: no normalized series")
	}

	labels, index := timeline(normalized)

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: title,
			Width:     "1100px",
			Height:    "600px",
		}),
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: true, Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: true, Top: "30px"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Time"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Normalized close (start = 1.0)", Scale: true}),
	)

	line.SetXAxis(labels)
	for _, n := range normalized {
		line.AddSeries(n.Ticker, alignedData(n, index, len(labels)))
	}

	return line.Render(w)
}

// WriteFile renders the chart into a timestamped HTML file under dir,
// creating the directory if needed. Returns the written path.
func WriteFile(dir, title string, normalized []series.Normalized) (string, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", fmt.Errorf("failed to create plots directory: %w", err)
	}

	path := filepath.Join(dir, time.Now().UTC().Format(outputTimeLayout)+".html")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create chart file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := Render(f, title, normalized); err != nil {
		return "", err
	}
	return path, nil
}

// timeline builds the shared X axis: the sorted union of all observation
// times across tickers, plus a lookup from time to axis position.
func timeline(normalized []series.Normalized) ([]string, map[int64]int) {
	seen := make(map[int64]struct{})
	var stamps []time.Time
	for _, n := range normalized {
		for _, p := range n.Points {
			key := p.Timestamp.Unix()
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			stamps = append(stamps, p.Timestamp)
		}
	}
	sort.Slice(stamps, func(i, j int) bool { return stamps[i].Before(stamps[j]) })

	labels := make([]string, len(stamps))
	index := make(map[int64]int, len(stamps))
	for i, ts := range stamps {
		labels[i] = ts.UTC().Format(axisTimeLayout)
		index[ts.Unix()] = i
	}
	return labels, index
}

// alignedData maps one ticker's points onto the shared axis, marking
// positions the ticker has no observation for as missing ("-").
func alignedData(n series.Normalized, index map[int64]int, width int) []opts.LineData {
	data := make([]opts.LineData, width)
	for i := range data {
		data[i] = opts.LineData{Value: "-"}
	}
	for _, p := range n.Points {
		if i, ok := index[p.Timestamp.Unix()]; ok {
			data[i] = opts.LineData{Value: p.Value}
		}
	}
	return data
}
