package collector_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"findata/internal/collector"
)

// 2024-01-02 and 2024-01-03 09:15 IST, plus a holiday row with nulls.
const chartBody = `{"chart": {"result": [{
	"meta": {"gmtoffset": 19800},
	"timestamp": [1704167100, 1704253500, 1704339900],
	"indicators": {"quote": [{
		"open":   [100.0, 101.0, null],
		"high":   [102.0, 103.0, null],
		"low":    [99.0, 100.0, null],
		"close":  [101.0, 102.0, null],
		"volume": [1000, 1100, null]
	}]}
}], "error": null}}`

func newYahoo(t *testing.T, handler http.HandlerFunc) *collector.Yahoo {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	y := collector.NewYahoo(srv.URL, ".NS", "")
	y.Now = func() time.Time { return time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC) }
	return y
}

func TestYahoo_Fetch(t *testing.T) {
	t.Parallel()

	y := newYahoo(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v8/finance/chart/TCS.NS", r.URL.Path)
		require.Equal(t, "1d", r.URL.Query().Get("interval"))
		w.Write([]byte(chartBody))
	})

	bars, err := y.Fetch(t.Context(), "TCS", 30)
	require.NoError(t, err)
	require.Len(t, bars, 3, "null row is forward-filled")
	require.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), bars[0].Date)
	require.Equal(t, 102.0, bars[2].Close)
	require.Equal(t, int64(1100), bars[2].Volume)
}

func TestYahoo_SymbolMapping(t *testing.T) {
	t.Parallel()

	var paths []string
	y := newYahoo(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.EscapedPath())
		w.Write([]byte(chartBody))
	})

	for _, sym := range []string{"RELIANCE.BO", "NIFTY", "^GSPC"} {
		_, err := y.Fetch(t.Context(), sym, 30)
		require.NoError(t, err)
	}
	require.Equal(t, "/v8/finance/chart/RELIANCE.BO", paths[0])
	require.True(t, strings.HasSuffix(paths[1], "NSEI"))
	require.True(t, strings.HasSuffix(paths[2], "GSPC"))
}

func TestYahoo_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status int
		body   string
		want   collector.Reason
	}{
		{"not found", 404, `{}`, collector.ReasonUnknownSymbol},
		{"api error", 200, `{"chart": {"result": null, "error": {"code": "Not Found", "description": "No data found"}}}`, collector.ReasonUnknownSymbol},
		{"no result", 200, `{"chart": {"result": []}}`, collector.ReasonEmpty},
		{"all null", 200, `{"chart": {"result": [{"timestamp": [1704167100], "indicators": {"quote": [{"open": [null], "high": [null], "low": [null], "close": [null], "volume": [null]}]}}]}}`, collector.ReasonEmpty},
		{"decode", 200, `{"chart": 7}`, collector.ReasonDecode},
		{"throttled", 429, ``, collector.ReasonRateLimited},
		{"server error", 500, `oops`, collector.ReasonTransport},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			y := newYahoo(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})
			_, err := y.Fetch(t.Context(), "TCS", 30)

			var ue *collector.UnavailableError
			require.True(t, errors.As(err, &ue), "got %v", err)
			require.Equal(t, tt.want, ue.Reason)
		})
	}
}
