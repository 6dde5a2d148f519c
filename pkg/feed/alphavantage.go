package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/Ruscigno/StockPulse/pkg/models"
	"go.uber.org/zap"
)

const (
	ALPHA_VANTAGE_URL = "https://www.alphavantage.co/query"
	FUNCTION          = "TIME_SERIES_DAILY"
	DATA_TYPE         = "json"

	FIELD_LAST_REFRESHED = "3. Last Refreshed"
	FIELD_TIME_ZONE      = "5. Time Zone"
	FIELD_OPEN           = "1. open"
	FIELD_HIGH           = "2. high"
	FIELD_LOW            = "3. low"
	FIELD_CLOSE          = "4. close"
	FIELD_VOLUME         = "5. volume"
	DATE_LAYOUT          = "2006-01-02"

	// compact output covers the last 100 trading days
	compactWindow = 140 * 24 * time.Hour
)

// ErrMissingAPIKey is returned when the Alpha Vantage feed has no key.
var ErrMissingAPIKey = errors.New("alpha vantage api key is missing")

type alphaVantageResponse struct {
	MetaData     map[string]string            `json:"Meta Data"`
	TimeSeries   map[string]map[string]string `json:"Time Series (Daily)"`
	ErrorMessage string                       `json:"Error Message"`
	Note         string                       `json:"Note"`
	Information  string                       `json:"Information"`
}

type alphaVantageScrapper struct {
	apiKey string
	opts   options
}

// NewAlphaVantageDataFeed returns a feed backed by TIME_SERIES_DAILY.
func NewAlphaVantageDataFeed(apiKey string, opts ...Option) (PriceFeed, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	return &alphaVantageScrapper{apiKey: apiKey, opts: applyOptions(ALPHA_VANTAGE_URL, opts)}, nil
}

func (s *alphaVantageScrapper) Name() string {
	return DataFeedProviderAlphaVantage
}

func (s *alphaVantageScrapper) DownloadPriceSeries(ctx context.Context, symbol, period string) (*models.PriceSeries, error) {
	start, err := ParsePeriod(period, s.opts.now())
	if err != nil {
		return nil, err
	}

	queryURL, err := s.constructURL(symbol, start)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, queryURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := s.opts.client.Do(req)
	if err != nil {
		s.opts.logger.Error("HTTP request failed", zap.Error(err))
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.opts.logger.Error("Non-200 response", zap.String("status", resp.Status))
		return nil, &ProviderError{Provider: DataFeedProviderAlphaVantage, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response body: %w", err)
	}
	series, err := ParseDailySeries(body, symbol, period)
	if err != nil {
		return nil, err
	}
	series.Bars = trimToPeriod(series.Bars, start, func(b models.PriceBar) time.Time { return b.Date })
	s.opts.logger.Debug("downloaded price series",
		zap.String("provider", DataFeedProviderAlphaVantage),
		zap.String("symbol", symbol),
		zap.String("period", period),
		zap.Int("rows", series.Len()))
	return series, nil
}

func (s *alphaVantageScrapper) constructURL(symbol string, start time.Time) (string, error) {
	u, err := url.Parse(s.opts.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid alpha vantage url: %w", err)
	}
	outputSize := "full"
	if !start.IsZero() && s.opts.now().Sub(start) <= compactWindow {
		outputSize = "compact"
	}
	q := url.Values{}
	q.Set("function", FUNCTION)
	q.Set("symbol", symbol)
	q.Set("outputsize", outputSize)
	q.Set("datatype", DATA_TYPE)
	q.Set("apikey", s.apiKey)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// ParseDailySeries decodes a TIME_SERIES_DAILY payload. An "Error Message"
// payload is how Alpha Vantage reports an unknown symbol and yields an empty
// series; throttling notices are errors.
func ParseDailySeries(jsonData []byte, symbol, period string) (*models.PriceSeries, error) {
	var response alphaVantageResponse
	if err := json.Unmarshal(jsonData, &response); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}

	series := models.NewPriceSeries(symbol, period, DataFeedProviderAlphaVantage, models.OHLCVColumns)
	if response.ErrorMessage != "" {
		return series, nil
	}
	if notice := response.Note + response.Information; notice != "" {
		return nil, &ProviderError{
			Provider:    DataFeedProviderAlphaVantage,
			StatusCode:  http.StatusOK,
			Code:        "Throttled",
			Description: notice,
		}
	}
	if response.TimeSeries == nil {
		return series, nil
	}

	series.TimeZone = response.MetaData[FIELD_TIME_ZONE]
	if lr, err := time.Parse(DATE_LAYOUT, response.MetaData[FIELD_LAST_REFRESHED]); err == nil {
		series.LastRefreshed = lr
	}

	for day, data := range response.TimeSeries {
		date, err := time.Parse(DATE_LAYOUT, day)
		if err != nil {
			return nil, fmt.Errorf("failed to parse date %q: %w", day, err)
		}
		bar := models.PriceBar{Date: date, AdjClose: math.NaN()}
		for field, dst := range map[string]*float64{
			FIELD_OPEN:   &bar.Open,
			FIELD_HIGH:   &bar.High,
			FIELD_LOW:    &bar.Low,
			FIELD_CLOSE:  &bar.Close,
			FIELD_VOLUME: &bar.Volume,
		} {
			v, err := strconv.ParseFloat(data[field], 64)
			if err != nil {
				return nil, fmt.Errorf("failed to parse %s value: %w", field, err)
			}
			*dst = v
		}
		series.Bars = append(series.Bars, bar)
	}
	sort.Slice(series.Bars, func(i, j int) bool {
		return series.Bars[i].Date.Before(series.Bars[j].Date)
	})
	return series, nil
}
