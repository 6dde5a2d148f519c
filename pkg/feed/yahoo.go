package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/Ruscigno/StockPulse/pkg/models"
	"go.uber.org/zap"
)

const (
	FinanceYahooURL = "https://query2.finance.yahoo.com"
	YahooChartPath  = "/v8/finance/chart/"
	UserAgent       = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) Chrome/91.0.4472.124"

	yahooNotFound = "Not Found"
)

type yahooChartResponse struct {
	Chart struct {
		Result []yahooChartResult `json:"result"`
		Error  *yahooChartError   `json:"error"`
	} `json:"chart"`
}

type yahooChartError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type yahooChartResult struct {
	Meta struct {
		Symbol               string `json:"symbol"`
		ExchangeTimezoneName string `json:"exchangeTimezoneName"`
		GMTOffset            int    `json:"gmtoffset"`
		RegularMarketTime    int64  `json:"regularMarketTime"`
	} `json:"meta"`
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []struct {
			Open   []*float64 `json:"open"`
			High   []*float64 `json:"high"`
			Low    []*float64 `json:"low"`
			Close  []*float64 `json:"close"`
			Volume []*float64 `json:"volume"`
		} `json:"quote"`
		AdjClose []struct {
			AdjClose []*float64 `json:"adjclose"`
		} `json:"adjclose"`
	} `json:"indicators"`
}

type yahooScraper struct {
	opts options
}

// NewYahooDataFeed returns a feed backed by the Yahoo Finance chart API.
func NewYahooDataFeed(opts ...Option) PriceFeed {
	return &yahooScraper{opts: applyOptions(FinanceYahooURL, opts)}
}

func (y *yahooScraper) Name() string {
	return DataFeedProviderYahoo
}

// DownloadPriceSeries fetches daily bars for symbol over period. An unknown
// symbol yields an empty series, any other provider complaint an error.
func (y *yahooScraper) DownloadPriceSeries(ctx context.Context, symbol, period string) (*models.PriceSeries, error) {
	u, err := y.constructURL(symbol, period)
	if err != nil {
		return nil, err
	}

	resp, err := y.makeHTTPRequest(ctx, u)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	chart, err := y.parseResponse(resp)
	if err != nil {
		return nil, err
	}
	if chart == nil {
		y.opts.logger.Info("no data for symbol",
			zap.String("provider", DataFeedProviderYahoo),
			zap.String("symbol", symbol),
			zap.String("period", period))
		return models.NewPriceSeries(symbol, period, DataFeedProviderYahoo, models.AdjustedOHLCVColumns), nil
	}

	series := y.extractPriceSeries(chart, symbol, period)
	y.opts.logger.Debug("downloaded price series",
		zap.String("provider", DataFeedProviderYahoo),
		zap.String("symbol", symbol),
		zap.String("period", period),
		zap.Int("rows", series.Len()))
	return series, nil
}

func (y *yahooScraper) constructURL(symbol, period string) (string, error) {
	base, err := url.Parse(strings.TrimRight(y.opts.baseURL, "/"))
	if err != nil {
		return "", fmt.Errorf("invalid yahoo base url: %w", err)
	}
	base.Path += YahooChartPath + symbol
	q := url.Values{}
	q.Set("interval", "1d")
	q.Set("range", period)
	q.Set("includeAdjustedClose", "true")
	base.RawQuery = q.Encode()
	return base.String(), nil
}

func (y *yahooScraper) makeHTTPRequest(ctx context.Context, u string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", y.opts.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := y.opts.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch data: %w", err)
	}
	return resp, nil
}

// parseResponse returns nil without error when Yahoo has no data for the
// symbol.
func (y *yahooScraper) parseResponse(resp *http.Response) (*yahooChartResult, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return decodeYahooChart(body, resp.StatusCode)
}

func decodeYahooChart(body []byte, status int) (*yahooChartResult, error) {
	var chart yahooChartResponse
	if err := json.Unmarshal(body, &chart); err != nil {
		if status != http.StatusOK {
			return nil, &ProviderError{Provider: DataFeedProviderYahoo, StatusCode: status}
		}
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if e := chart.Chart.Error; e != nil {
		if e.Code == yahooNotFound {
			return nil, nil
		}
		return nil, &ProviderError{
			Provider:    DataFeedProviderYahoo,
			StatusCode:  status,
			Code:        e.Code,
			Description: e.Description,
		}
	}
	if status != http.StatusOK {
		return nil, &ProviderError{Provider: DataFeedProviderYahoo, StatusCode: status}
	}

	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Timestamp) == 0 {
		return nil, nil
	}
	return &chart.Chart.Result[0], nil
}

func (y *yahooScraper) extractPriceSeries(chart *yahooChartResult, symbol, period string) *models.PriceSeries {
	columns := models.OHLCVColumns
	var adj []*float64
	if len(chart.Indicators.AdjClose) > 0 {
		adj = chart.Indicators.AdjClose[0].AdjClose
		columns = models.AdjustedOHLCVColumns
	}

	series := models.NewPriceSeries(symbol, period, DataFeedProviderYahoo, columns)
	loc := exchangeLocation(chart.Meta.ExchangeTimezoneName, chart.Meta.GMTOffset)
	series.TimeZone = loc.String()
	if chart.Meta.RegularMarketTime > 0 {
		series.LastRefreshed = time.Unix(chart.Meta.RegularMarketTime, 0).UTC()
	}
	if len(chart.Indicators.Quote) == 0 {
		return series
	}
	quote := chart.Indicators.Quote[0]

	for i, ts := range chart.Timestamp {
		bar := models.PriceBar{
			Date:     tradingDate(ts, loc),
			Open:     valueAt(quote.Open, i),
			High:     valueAt(quote.High, i),
			Low:      valueAt(quote.Low, i),
			Close:    valueAt(quote.Close, i),
			AdjClose: valueAt(adj, i),
			Volume:   valueAt(quote.Volume, i),
		}
		if adj == nil {
			bar.AdjClose = math.NaN()
		}
		// rows without any price are placeholders for halted sessions
		if math.IsNaN(bar.Open) && math.IsNaN(bar.High) && math.IsNaN(bar.Low) && math.IsNaN(bar.Close) {
			continue
		}
		series.Bars = append(series.Bars, bar)
	}
	sort.SliceStable(series.Bars, func(i, j int) bool {
		return series.Bars[i].Date.Before(series.Bars[j].Date)
	})
	return series
}

func exchangeLocation(name string, gmtOffset int) *time.Location {
	if name != "" {
		if loc, err := time.LoadLocation(name); err == nil {
			return loc
		}
	}
	if gmtOffset == 0 {
		return time.UTC
	}
	return time.FixedZone(fmt.Sprintf("GMT%+d", gmtOffset/3600), gmtOffset)
}

// tradingDate is the exchange-local calendar day of ts, at UTC midnight.
func tradingDate(ts int64, loc *time.Location) time.Time {
	t := time.Unix(ts, 0).In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func valueAt(values []*float64, i int) float64 {
	if i >= len(values) || values[i] == nil {
		return math.NaN()
	}
	return *values[i]
}
