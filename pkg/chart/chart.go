// Package chart turns a price series into a Plotly figure description.
package chart

import (
	"fmt"
	"math"

	"github.com/Ruscigno/StockPulse/pkg/models"
)

const DateLayout = "2006-01-02"

// Figure is a Plotly figure. The zero Figure marshals to {} and renders as
// a blank graph.
type Figure struct {
	Data   []Trace `json:"data,omitempty"`
	Layout *Layout `json:"layout,omitempty"`
}

// Trace is a single line trace.
type Trace struct {
	X    []string   `json:"x"`
	Y    []*float64 `json:"y"`
	Type string     `json:"type"`
	Mode string     `json:"mode"`
	Name string     `json:"name"`
}

type Layout struct {
	Title Title `json:"title"`
}

type Title struct {
	Text string `json:"text"`
}

// TitleFor returns the figure title for label.
func TitleFor(label string) string {
	return fmt.Sprintf("%s Price Time Series", label)
}

// BuildChart plots the close price of every bar against its date, in the
// order the series holds them. Missing closes are gaps in the line.
func BuildChart(series *models.PriceSeries, label string) Figure {
	trace := Trace{
		X:    make([]string, 0, series.Len()),
		Y:    make([]*float64, 0, series.Len()),
		Type: "scatter",
		Mode: "lines",
		Name: label,
	}
	if series != nil {
		for _, bar := range series.Bars {
			trace.X = append(trace.X, bar.Date.Format(DateLayout))
			trace.Y = append(trace.Y, nullable(bar.Close))
		}
	}
	return Figure{
		Data:   []Trace{trace},
		Layout: &Layout{Title: Title{Text: TitleFor(label)}},
	}
}

// Empty reports whether f is the idle figure.
func (f Figure) Empty() bool {
	return len(f.Data) == 0 && f.Layout == nil
}

// Points is the number of plotted points of the first trace.
func (f Figure) Points() int {
	if len(f.Data) == 0 {
		return 0
	}
	return len(f.Data[0].X)
}

func nullable(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
