package engine

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quoteflow/quoteflow/internal/archive"
	"github.com/quoteflow/quoteflow/internal/state"
	"github.com/quoteflow/quoteflow/internal/testutil"
)

// fakeChartAPI serves canned candles for a fixed set of tickers and 404s
// for everything else.
func fakeChartAPI(t *testing.T, closes map[string][]float64) *httptest.Server {
	t.Helper()
	base := time.Date(2024, 3, 4, 14, 0, 0, 0, time.UTC).Unix()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ticker := strings.TrimPrefix(r.URL.Path, "/v8/finance/chart/")
		prices, ok := closes[ticker]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		var ts, cl, vol []string
		for i, p := range prices {
			ts = append(ts, fmt.Sprintf("%d", base+int64(i)*3600))
			cl = append(cl, fmt.Sprintf("%g", p))
			vol = append(vol, "1000")
		}
		fmt.Fprintf(w, `{"chart":{"result":[{"timestamp":[%s],"indicators":{"quote":[{"open":[%s],"high":[%s],"low":[%s],"close":[%s],"volume":[%s]}]}}],"error":null}}`,
			strings.Join(ts, ","), strings.Join(cl, ","), strings.Join(cl, ","),
			strings.Join(cl, ","), strings.Join(cl, ","), strings.Join(vol, ","))
	}))
}

func newTestEngine(t *testing.T, baseURL string, tickers []string) *Engine {
	t.Helper()
	root := t.TempDir()

	eng, err := New(Config{
		Tickers:   tickers,
		Days:      5,
		Interval:  "1h",
		DataDir:   filepath.Join(root, "data"),
		PlotsDir:  filepath.Join(root, "plots"),
		StatePath: filepath.Join(root, "state.db"),
		BaseURL:   baseURL,
		Logger:    testutil.NewTestLogger(t),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = eng.Close() })
	return eng
}

func TestEngine_Fetch(t *testing.T) {
	srv := fakeChartAPI(t, map[string][]float64{
		"AAPL": {180, 181, 182},
		"META": {500, 505},
	})
	defer srv.Close()

	eng := newTestEngine(t, srv.URL, []string{"AAPL", "META"})

	result, err := eng.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, result.Rows)
	assert.Empty(t, result.Skipped)
	assert.FileExists(t, result.SnapshotPath)

	rows, err := archive.Read(result.SnapshotPath)
	require.NoError(t, err)
	assert.Len(t, rows, 5)

	run, err := eng.Store().GetRun(result.RunID)
	require.NoError(t, err)
	assert.Equal(t, state.RunStatusCompleted, run.Status)
	assert.Equal(t, 5, run.Rows)
	assert.Equal(t, result.SnapshotPath, run.SnapshotPath)
}

func TestEngine_Fetch_SkipsUnknownTickers(t *testing.T) {
	srv := fakeChartAPI(t, map[string][]float64{
		"AAPL": {180, 181},
	})
	defer srv.Close()

	eng := newTestEngine(t, srv.URL, []string{"AAPL", "NOPE"})

	result, err := eng.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, result.Rows)
	assert.Equal(t, []string{"NOPE"}, result.Skipped)
}

func TestEngine_Fetch_AllEmptyFails(t *testing.T) {
	srv := fakeChartAPI(t, map[string][]float64{})
	defer srv.Close()

	eng := newTestEngine(t, srv.URL, []string{"NOPE", "GONE"})

	_, err := eng.Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no data downloaded")

	runs, err := eng.Store().ListRuns(1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, state.RunStatusFailed, runs[0].Status)
}

func TestEngine_Fetch_NoTickers(t *testing.T) {
	eng := newTestEngine(t, "http://unused", nil)

	_, err := eng.Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no tickers")
}

func TestEngine_Plot_LatestSnapshot(t *testing.T) {
	srv := fakeChartAPI(t, map[string][]float64{
		"AAPL": {100, 110},
		"META": {50, 45},
	})
	defer srv.Close()

	eng := newTestEngine(t, srv.URL, []string{"AAPL", "META"})

	fetched, err := eng.Fetch(context.Background())
	require.NoError(t, err)

	plotted, err := eng.Plot(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, fetched.SnapshotPath, plotted.Snapshot)
	assert.Equal(t, []string{"AAPL", "META"}, plotted.Tickers)
	assert.FileExists(t, plotted.Output)
	assert.True(t, strings.HasSuffix(plotted.Output, ".html"))
}

func TestEngine_Plot_EmptyArchive(t *testing.T) {
	eng := newTestEngine(t, "http://unused", []string{"AAPL"})

	_, err := eng.Plot(context.Background(), "")
	require.Error(t, err)
	assert.ErrorIs(t, err, archive.ErrNoSnapshots)
}

func TestEngine_Pull(t *testing.T) {
	srv := fakeChartAPI(t, map[string][]float64{
		"AAPL": {100, 105, 95},
	})
	defer srv.Close()

	eng := newTestEngine(t, srv.URL, []string{"AAPL"})

	fetched, plotted, err := eng.Pull(context.Background())
	require.NoError(t, err)
	assert.FileExists(t, fetched.SnapshotPath)
	require.NotNil(t, plotted)
	assert.Equal(t, fetched.SnapshotPath, plotted.Snapshot)
	assert.FileExists(t, plotted.Output)
}

func TestChartTitle(t *testing.T) {
	assert.Equal(t, "Normalized Close - 20240304", chartTitle("data/20240304-141500.csv"))
	assert.Equal(t, "Normalized Close - adhoc", chartTitle("adhoc.csv"))
}
