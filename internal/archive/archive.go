// Package archive persists combined candle snapshots as timestamped CSV
// files, one file per fetch.
package archive

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

// ErrNoSnapshots is returned when the archive directory holds no CSV files.
var ErrNoSnapshots = errors.New("no snapshots in archive")

// snapshotTimeLayout names snapshot files, e.g. 20240304-141500.csv.
const snapshotTimeLayout = "20060102-150405"

// header is the column order of every snapshot file.
var header = []string{"Datetime", "Open", "High", "Low", "Close", "Volume", "Ticker"}

// Row is one candle of one ticker inside a combined snapshot.
type Row struct {
	Timestamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    int64
	Ticker    string
}

// Snapshot describes an archived CSV file.
type Snapshot struct {
	Path      string
	Name      string
	Size      int64
	Timestamp time.Time
}

// Sort orders rows by (Datetime, Ticker), the canonical snapshot order.
func Sort(rows []Row) {
	sort.SliceStable(rows, func(i, j int) bool {
		if !rows[i].Timestamp.Equal(rows[j].Timestamp) {
			return rows[i].Timestamp.Before(rows[j].Timestamp)
		}
		return rows[i].Ticker < rows[j].Ticker
	})
}

// Write stores rows as a new timestamped snapshot under dir, creating the
// directory if needed. Rows are written in canonical order. Returns the
// path of the written file.
func Write(dir string, rows []Row) (string, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	Sort(rows)

	path := filepath.Join(dir, time.Now().UTC().Format(snapshotTimeLayout)+".csv")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create snapshot: %w", err)
	}
	defer func() { _ = f.Close() }()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return "", fmt.Errorf("failed to write snapshot header: %w", err)
	}

	for _, r := range rows {
		record := []string{
			r.Timestamp.UTC().Format(time.RFC3339),
			formatFloat(r.Open),
			formatFloat(r.High),
			formatFloat(r.Low),
			formatFloat(r.Close),
			strconv.FormatInt(r.Volume, 10),
			r.Ticker,
		}
		if err := w.Write(record); err != nil {
			return "", fmt.Errorf("failed to write snapshot row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("failed to flush snapshot: %w", err)
	}

	return path, nil
}

// List returns all snapshots under dir, oldest first.
func List(dir string) ([]Snapshot, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read archive directory: %w", err)
	}

	var snapshots []Snapshot
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".csv") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		snap := Snapshot{
			Path: filepath.Join(dir, entry.Name()),
			Name: entry.Name(),
			Size: info.Size(),
		}
		if ts, err := time.Parse(snapshotTimeLayout, strings.TrimSuffix(entry.Name(), ".csv")); err == nil {
			snap.Timestamp = ts
		}
		snapshots = append(snapshots, snap)
	}

	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].Name < snapshots[j].Name
	})

	return snapshots, nil
}

// Latest returns the newest snapshot under dir.
func Latest(dir string) (Snapshot, error) {
	snapshots, err := List(dir)
	if err != nil {
		return Snapshot{}, err
	}
	if len(snapshots) == 0 {
		return Snapshot{}, fmt.Errorf("%w: %s", ErrNoSnapshots, dir)
	}
	return snapshots[len(snapshots)-1], nil
}

// Read parses a snapshot file back into rows. Rows whose close price does
// not parse as a number are dropped rather than failing the whole read.
func Read(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse snapshot %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("snapshot %s is empty", path)
	}

	cols, err := columnIndex(records[0])
	if err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", path, err)
	}

	rows := make([]Row, 0, len(records)-1)
	for _, record := range records[1:] {
		ts, err := time.Parse(time.RFC3339, record[cols["Datetime"]])
		if err != nil {
			continue
		}
		closePrice, err := strconv.ParseFloat(record[cols["Close"]], 64)
		if err != nil {
			continue
		}
		row := Row{
			Timestamp: ts,
			Close:     closePrice,
			Ticker:    record[cols["Ticker"]],
		}
		row.Open, _ = strconv.ParseFloat(record[cols["Open"]], 64)
		row.High, _ = strconv.ParseFloat(record[cols["High"]], 64)
		row.Low, _ = strconv.ParseFloat(record[cols["Low"]], 64)
		row.Volume, _ = strconv.ParseInt(record[cols["Volume"]], 10, 64)
		rows = append(rows, row)
	}

	return rows, nil
}

// columnIndex maps required header names to their positions.
func columnIndex(headerRow []string) (map[string]int, error) {
	cols := make(map[string]int, len(headerRow))
	for i, name := range headerRow {
		cols[strings.TrimSpace(name)] = i
	}
	for _, required := range header {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("missing required column %q", required)
		}
	}
	return cols, nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
