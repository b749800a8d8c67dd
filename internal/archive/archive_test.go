package archive

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRows() []Row {
	t0 := time.Date(2024, 3, 4, 14, 0, 0, 0, time.UTC)
	return []Row{
		{Timestamp: t0.Add(time.Hour), Open: 101, High: 102, Low: 100, Close: 101.5, Volume: 500, Ticker: "AAPL"},
		{Timestamp: t0, Open: 100, High: 101, Low: 99, Close: 100.5, Volume: 400, Ticker: "META"},
		{Timestamp: t0, Open: 200, High: 201, Low: 199, Close: 200.5, Volume: 300, Ticker: "AAPL"},
	}
}

func TestWriteAndRead_RoundTrip(t *testing.T) {
	dir := t.TempDir()

	path, err := Write(dir, sampleRows())
	require.NoError(t, err)
	assert.FileExists(t, path)

	rows, err := Read(path)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	// Canonical order: by timestamp, then ticker.
	assert.Equal(t, "AAPL", rows[0].Ticker)
	assert.Equal(t, "META", rows[1].Ticker)
	assert.Equal(t, "AAPL", rows[2].Ticker)
	assert.Equal(t, 200.5, rows[0].Close)
	assert.Equal(t, int64(300), rows[0].Volume)
	assert.True(t, rows[0].Timestamp.Before(rows[2].Timestamp))
}

func TestWrite_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")

	path, err := Write(dir, sampleRows())
	require.NoError(t, err)
	assert.FileExists(t, path)
}

func TestRead_DropsUnparsableRows(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "20240304-141500.csv")
	content := "Datetime,Open,High,Low,Close,Volume,Ticker\n" +
		"2024-03-04T14:00:00Z,100,101,99,100.5,400,AAPL\n" +
		"2024-03-04T15:00:00Z,100,101,99,not-a-number,400,AAPL\n" +
		"garbage,100,101,99,101.5,400,AAPL\n" +
		"2024-03-04T16:00:00Z,100,101,99,102.5,400,AAPL\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	rows, err := Read(path)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 100.5, rows[0].Close)
	assert.Equal(t, 102.5, rows[1].Close)
}

func TestRead_MissingColumn(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "20240304-141500.csv")
	content := "Datetime,Open,High,Low,Volume,Ticker\n" +
		"2024-03-04T14:00:00Z,100,101,99,400,AAPL\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	_, err := Read(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"Close"`)
}

func TestList_OrdersByName(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"20240302-090000.csv", "20240301-090000.csv", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0600))
	}

	snapshots, err := List(dir)
	require.NoError(t, err)
	require.Len(t, snapshots, 2)
	assert.Equal(t, "20240301-090000.csv", snapshots[0].Name)
	assert.Equal(t, "20240302-090000.csv", snapshots[1].Name)
	assert.Equal(t, time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC), snapshots[0].Timestamp)
}

func TestList_MissingDirectory(t *testing.T) {
	snapshots, err := List(filepath.Join(t.TempDir(), "missing"))
	require.NoError(t, err)
	assert.Empty(t, snapshots)
}

func TestLatest(t *testing.T) {
	dir := t.TempDir()

	_, err := Latest(dir)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoSnapshots)

	for _, name := range []string{"20240301-090000.csv", "20240302-090000.csv"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0600))
	}

	latest, err := Latest(dir)
	require.NoError(t, err)
	assert.Equal(t, "20240302-090000.csv", latest.Name)
}
