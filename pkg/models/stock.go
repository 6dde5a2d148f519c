package models

import (
	"math"
	"time"
)

// Column names a numeric column of a price series, spelled the way the
// provider's tabular schema spells it.
type Column string

const (
	ColumnOpen     Column = "Open"
	ColumnHigh     Column = "High"
	ColumnLow      Column = "Low"
	ColumnClose    Column = "Close"
	ColumnAdjClose Column = "Adj Close"
	ColumnVolume   Column = "Volume"
)

// OHLCVColumns are the columns every provider supplies.
var OHLCVColumns = []Column{ColumnOpen, ColumnHigh, ColumnLow, ColumnClose, ColumnVolume}

// AdjustedOHLCVColumns adds the adjusted close reported by Yahoo.
var AdjustedOHLCVColumns = []Column{ColumnOpen, ColumnHigh, ColumnLow, ColumnClose, ColumnAdjClose, ColumnVolume}

// Query is what the user submitted from the dashboard.
type Query struct {
	Ticker string `json:"ticker"`
	Period string `json:"period"`
}

// PriceBar is a single trading day. Values the provider left blank are NaN.
type PriceBar struct {
	Date     time.Time `json:"date"`
	Open     float64   `json:"open"`
	High     float64   `json:"high"`
	Low      float64   `json:"low"`
	Close    float64   `json:"close"`
	AdjClose float64   `json:"adj_close"`
	Volume   float64   `json:"volume"`
}

// Value returns the bar's value for column c, NaN for an unknown column.
func (b PriceBar) Value(c Column) float64 {
	switch c {
	case ColumnOpen:
		return b.Open
	case ColumnHigh:
		return b.High
	case ColumnLow:
		return b.Low
	case ColumnClose:
		return b.Close
	case ColumnAdjClose:
		return b.AdjClose
	case ColumnVolume:
		return b.Volume
	default:
		return math.NaN()
	}
}

// PriceSeries is the daily history returned for one query, ascending by date.
// It lives for a single request.
type PriceSeries struct {
	Symbol        string     `json:"symbol"`
	Period        string     `json:"period"`
	Provider      string     `json:"provider"`
	TimeZone      string     `json:"time_zone"`
	LastRefreshed time.Time  `json:"last_refreshed"`
	Columns       []Column   `json:"columns"`
	Bars          []PriceBar `json:"bars"`
}

// NewPriceSeries returns an empty series that will carry the given columns.
func NewPriceSeries(symbol, period, provider string, columns []Column) *PriceSeries {
	return &PriceSeries{
		Symbol:   symbol,
		Period:   period,
		Provider: provider,
		Columns:  append([]Column(nil), columns...),
		Bars:     []PriceBar{},
	}
}

// Len is nil-safe.
func (s *PriceSeries) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Bars)
}

func (s *PriceSeries) Empty() bool {
	return s.Len() == 0
}

// Values extracts one column in bar order.
func (s *PriceSeries) Values(c Column) []float64 {
	values := make([]float64, 0, s.Len())
	if s == nil {
		return values
	}
	for _, b := range s.Bars {
		values = append(values, b.Value(c))
	}
	return values
}
