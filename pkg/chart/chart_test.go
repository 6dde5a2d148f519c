package chart

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/Ruscigno/StockPulse/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func series(closes ...float64) *models.PriceSeries {
	s := models.NewPriceSeries("AAPL", "1y", "yahoo", models.AdjustedOHLCVColumns)
	day := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	for i, c := range closes {
		s.Bars = append(s.Bars, models.PriceBar{Date: day.AddDate(0, 0, i), Close: c})
	}
	return s
}

func TestBuildChart(t *testing.T) {
	fig := BuildChart(series(185.64, 184.25, 181.91), "AAPL")

	require.Len(t, fig.Data, 1)
	tr := fig.Data[0]
	assert.Equal(t, "AAPL", tr.Name)
	assert.Equal(t, []string{"2024-01-02", "2024-01-03", "2024-01-04"}, tr.X)
	require.Len(t, tr.Y, 3)
	assert.Equal(t, 185.64, *tr.Y[0])
	assert.Equal(t, 181.91, *tr.Y[2])
	assert.Equal(t, "AAPL Price Time Series", fig.Layout.Title.Text)
	assert.Equal(t, 3, fig.Points())
	assert.False(t, fig.Empty())
}

func TestBuildChartEmptySeries(t *testing.T) {
	fig := BuildChart(series(), "ZZZINVALID")

	require.Len(t, fig.Data, 1)
	assert.Empty(t, fig.Data[0].X)
	assert.Empty(t, fig.Data[0].Y)
	assert.Equal(t, "ZZZINVALID Price Time Series", fig.Layout.Title.Text)

	b, err := json.Marshal(fig)
	require.NoError(t, err)
	assert.JSONEq(t, `{"data":[{"x":[],"y":[],"type":"scatter","mode":"lines","name":"ZZZINVALID"}],
		"layout":{"title":{"text":"ZZZINVALID Price Time Series"}}}`, string(b))

	assert.Equal(t, 0, BuildChart(nil, "X").Points())
}

func TestFigureJSON(t *testing.T) {
	b, err := json.Marshal(Figure{})
	require.NoError(t, err)
	assert.Equal(t, "{}", string(b))
	assert.True(t, Figure{}.Empty())

	b, err = json.Marshal(BuildChart(series(1.5, math.NaN()), "X"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"data":[{"x":["2024-01-02","2024-01-03"],"y":[1.5,null],"type":"scatter","mode":"lines","name":"X"}],
		"layout":{"title":{"text":"X Price Time Series"}}}`, string(b))
}
