// Package stats builds the descriptive-statistics table shown under the
// price chart.
package stats

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"

	"github.com/Ruscigno/StockPulse/pkg/models"
	"github.com/shopspring/decimal"
)

const (
	// IndexColumn holds the name of the summarized column in each row.
	IndexColumn = "index"
	// Places is the number of decimals every statistic is rounded to.
	Places = 2
)

// Statistics are the fields of every row, in display order.
var Statistics = []string{"count", "mean", "std", "min", "25%", "50%", "75%", "max"}

// ErrEmptySeries is returned when there is nothing to summarize.
var ErrEmptySeries = errors.New("stats: empty price series")

// Column is a table header cell.
type Column struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

// Row summarizes one numeric column. Values align with Statistics; an
// invalid entry is a statistic that could not be computed.
type Row struct {
	Column models.Column
	Values []decimal.NullDecimal
}

// Value returns the named statistic.
func (r Row) Value(stat string) (decimal.NullDecimal, bool) {
	for i, s := range Statistics {
		if s == stat && i < len(r.Values) {
			return r.Values[i], true
		}
	}
	return decimal.NullDecimal{}, false
}

// Table is the descriptive-statistics table. The zero Table is the empty
// table and marshals to {}.
type Table struct {
	Columns []Column
	Rows    []Row
}

func (t Table) Empty() bool {
	return len(t.Rows) == 0
}

// BuildStatistics summarizes every numeric column of series, one row per
// column in series order, rounding each value to two decimals.
func BuildStatistics(series *models.PriceSeries) (Table, error) {
	if series.Empty() {
		return Table{}, ErrEmptySeries
	}

	t := Table{Columns: header()}
	for _, c := range series.Columns {
		summary := Describe(series.Values(c))
		row := Row{Column: c, Values: make([]decimal.NullDecimal, 0, len(Statistics))}
		for _, v := range summary.Values() {
			row.Values = append(row.Values, round(v))
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

func header() []Column {
	cols := []Column{{Name: IndexColumn, ID: IndexColumn}}
	for _, s := range Statistics {
		cols = append(cols, Column{Name: s, ID: s})
	}
	return cols
}

// round is half away from zero.
func round(v float64) decimal.NullDecimal {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: decimal.NewFromFloat(v).Round(Places), Valid: true}
}

// MarshalJSON writes the table in the shape a Dash DataTable takes:
// {"columns":[{"name","id"}...],"data":[{"index":"Open","count":251.00,...}]}.
// Numbers always carry two decimals.
func (t Table) MarshalJSON() ([]byte, error) {
	if t.Empty() {
		return []byte("{}"), nil
	}

	var buf bytes.Buffer
	cols, err := json.Marshal(t.Columns)
	if err != nil {
		return nil, err
	}
	buf.WriteString(`{"columns":`)
	buf.Write(cols)
	buf.WriteString(`,"data":[`)
	for i, row := range t.Rows {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, _ := json.Marshal(string(row.Column))
		buf.WriteString(`{"` + IndexColumn + `":`)
		buf.Write(name)
		for j, stat := range Statistics {
			key, _ := json.Marshal(stat)
			buf.WriteByte(',')
			buf.Write(key)
			buf.WriteByte(':')
			if j < len(row.Values) && row.Values[j].Valid {
				buf.WriteString(row.Values[j].Decimal.StringFixed(Places))
			} else {
				buf.WriteString("null")
			}
		}
		buf.WriteByte('}')
	}
	buf.WriteString("]}")
	return buf.Bytes(), nil
}
