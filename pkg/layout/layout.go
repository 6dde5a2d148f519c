// Package layout describes the dashboard page and renders it once at startup.
package layout

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strconv"
	"time"
)

// Element ids shared by the template and static/app.js.
const (
	TickerInputID  = "input-ticker"
	PeriodInputID  = "input-period"
	SubmitButtonID = "submit-button"
	GraphID        = "price-graph"
	StatisticsID   = "statistics-output"
)

// PlotlyURL is the charting library the page loads.
const PlotlyURL = "https://cdn.plot.ly/plotly-2.27.0.min.js"

//go:embed templates/index.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Input is a labelled text box.
type Input struct {
	ID      string
	Label   string
	Default string
}

// Page is the static description of the dashboard.
type Page struct {
	Title             string
	Ticker            Input
	Period            Input
	SubmitID          string
	SubmitLabel       string
	GraphID           string
	StatisticsHeading string
	StatisticsID      string
	SubmitPath        string
	PlotlyURL         string
}

// NewPage returns the dashboard page with the given input defaults.
func NewPage(defaultTicker, defaultPeriod string) Page {
	return Page{
		Title: "Stock Ticker Analysis",
		Ticker: Input{
			ID:      TickerInputID,
			Label:   "Enter a stock ticker symbol:",
			Default: defaultTicker,
		},
		Period: Input{
			ID:      PeriodInputID,
			Label:   "Enter time series period (e.g., 1y, 3mo, 1d):",
			Default: defaultPeriod,
		},
		SubmitID:          SubmitButtonID,
		SubmitLabel:       "Submit",
		GraphID:           GraphID,
		StatisticsHeading: "Descriptive Statistics",
		StatisticsID:      StatisticsID,
		SubmitPath:        "/api/submit",
		PlotlyURL:         PlotlyURL,
	}
}

// Renderer holds the page rendered to HTML.
type Renderer struct {
	page     Page
	html     []byte
	etag     string
	modified time.Time
}

// NewRenderer parses the template and renders page. Errors here are
// programming errors in the template.
func NewRenderer(page Page) (*Renderer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/index.html")
	if err != nil {
		return nil, fmt.Errorf("parse page template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, page); err != nil {
		return nil, fmt.Errorf("render page: %w", err)
	}

	now := time.Now()
	return &Renderer{
		page:     page,
		html:     buf.Bytes(),
		etag:     strconv.Quote(strconv.FormatInt(now.UnixNano(), 36)),
		modified: now,
	}, nil
}

// Page returns the description the renderer was built from.
func (r *Renderer) Page() Page { return r.page }

// HTML returns the rendered document.
func (r *Renderer) HTML() []byte { return r.html }

// ServeHTTP writes the rendered page.
func (r *Renderer) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("ETag", r.etag)
	http.ServeContent(w, req, "index.html", r.modified, bytes.NewReader(r.html))
}

// Static returns the embedded script and stylesheet rooted at static/.
func Static() http.FileSystem {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}
