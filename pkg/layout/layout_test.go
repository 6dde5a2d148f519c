package layout

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPageDefaults(t *testing.T) {
	p := NewPage("AAPL", "1y")

	assert.Equal(t, "Stock Ticker Analysis", p.Title)
	assert.Equal(t, Input{ID: "input-ticker", Label: "Enter a stock ticker symbol:", Default: "AAPL"}, p.Ticker)
	assert.Equal(t, Input{ID: "input-period", Label: "Enter time series period (e.g., 1y, 3mo, 1d):", Default: "1y"}, p.Period)
	assert.Equal(t, "submit-button", p.SubmitID)
	assert.Equal(t, "price-graph", p.GraphID)
	assert.Equal(t, "Descriptive Statistics", p.StatisticsHeading)
	assert.Equal(t, "statistics-output", p.StatisticsID)
}

func TestRendererHTML(t *testing.T) {
	r, err := NewRenderer(NewPage("MSFT", "3mo"))
	require.NoError(t, err)
	html := string(r.HTML())

	for _, want := range []string{
		"<h1>Stock Ticker Analysis</h1>",
		`<input id="input-ticker" type="text" value="MSFT">`,
		`<input id="input-period" type="text" value="3mo">`,
		`<button id="submit-button" type="button">Submit</button>`,
		`<div id="price-graph"`,
		"<h3>Descriptive Statistics</h3>",
		`<div id="statistics-output"></div>`,
		PlotlyURL,
		`data-submit-path="/api/submit"`,
	} {
		assert.Contains(t, html, want)
	}
}

func TestRendererEscapesDefaults(t *testing.T) {
	r, err := NewRenderer(NewPage(`"><script>`, "1y"))
	require.NoError(t, err)
	assert.NotContains(t, string(r.HTML()), `"><script>`)
}

func TestRendererServeHTTP(t *testing.T) {
	r, err := NewRenderer(NewPage("AAPL", "1y"))
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, r.HTML(), rec.Body.Bytes())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("If-None-Match", rec.Header().Get("ETag"))
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotModified, rec.Code)
}

func TestStaticAssets(t *testing.T) {
	for _, name := range []string{"app.js", "style.css"} {
		f, err := Static().Open(name)
		require.NoError(t, err, name)
		b, err := io.ReadAll(f)
		require.NoError(t, err)
		assert.NotEmpty(t, b)
		f.Close()
	}

	f, err := Static().Open("app.js")
	require.NoError(t, err)
	defer f.Close()
	b, _ := io.ReadAll(f)
	for _, id := range []string{TickerInputID, PeriodInputID, SubmitButtonID, GraphID, StatisticsID} {
		assert.Contains(t, string(b), id)
	}
}
