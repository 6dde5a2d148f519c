package feed

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/Ruscigno/StockPulse/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAlphaVantageRequiresKey(t *testing.T) {
	_, err := NewAlphaVantageDataFeed("")
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestAlphaVantageDownloadPriceSeries(t *testing.T) {
	payload, err := os.ReadFile("testdata/av_daily_IBM.json")
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "TIME_SERIES_DAILY", q.Get("function"))
		assert.Equal(t, "IBM", q.Get("symbol"))
		assert.Equal(t, "compact", q.Get("outputsize"))
		assert.Equal(t, "demo", q.Get("apikey"))
		_, _ = w.Write(payload)
	}))
	defer srv.Close()

	now := func() time.Time { return time.Date(2024, 1, 9, 12, 0, 0, 0, time.UTC) }
	f, err := NewAlphaVantageDataFeed("demo", WithBaseURL(srv.URL), WithClock(now))
	require.NoError(t, err)

	series, err := f.DownloadPriceSeries(context.Background(), "IBM", "5d")
	require.NoError(t, err)
	assert.Equal(t, models.OHLCVColumns, series.Columns)
	assert.Equal(t, "US/Eastern", series.TimeZone)

	// 5d back from 2024-01-09 starts on 2024-01-04
	require.Equal(t, 3, series.Len())
	assert.Equal(t, time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC), series.Bars[0].Date)
	assert.Equal(t, time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC), series.Bars[2].Date)
	assert.InDelta(t, 161.14, series.Bars[2].Close, 1e-9)
	assert.InDelta(t, 3342910, series.Bars[2].Volume, 1e-9)
	assert.True(t, math.IsNaN(series.Bars[0].AdjClose))
}

func TestAlphaVantageFullOutputForLongPeriods(t *testing.T) {
	f := &alphaVantageScrapper{apiKey: "k", opts: applyOptions(ALPHA_VANTAGE_URL, nil)}
	start, err := ParsePeriod("2y", time.Now())
	require.NoError(t, err)
	u, err := f.constructURL("IBM", start)
	require.NoError(t, err)
	assert.Contains(t, u, "outputsize=full")
}

func TestParseDailySeriesUnknownSymbol(t *testing.T) {
	series, err := ParseDailySeries([]byte(`{"Error Message": "Invalid API call."}`), "ZZZINVALID", "1mo")
	require.NoError(t, err)
	assert.True(t, series.Empty())
}

func TestParseDailySeriesThrottled(t *testing.T) {
	_, err := ParseDailySeries([]byte(`{"Note": "Thank you for using Alpha Vantage! Our standard API rate limit is 25 requests per day."}`), "IBM", "1mo")
	require.Error(t, err)
	assert.True(t, IsProviderError(err))
}

func TestParseDailySeriesBadNumber(t *testing.T) {
	_, err := ParseDailySeries([]byte(`{"Time Series (Daily)": {"2024-01-02": {"1. open": "x"}}}`), "IBM", "1mo")
	require.Error(t, err)
}
