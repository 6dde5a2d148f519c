package feed

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Ruscigno/StockPulse/pkg/models"
	"go.uber.org/zap"
)

type localDataFeed struct {
	dir  string
	opts options
}

// NewLocalDataFeed serves chart responses saved as <dir>/<SYMBOL>.json, in
// the Yahoo chart format. Useful offline and in development.
func NewLocalDataFeed(dir string, opts ...Option) PriceFeed {
	return &localDataFeed{dir: dir, opts: applyOptions("", opts)}
}

func (s *localDataFeed) Name() string {
	return DataFeedProviderLocal
}

func (s *localDataFeed) DownloadPriceSeries(ctx context.Context, symbol, period string) (*models.PriceSeries, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start, err := ParsePeriod(period, s.opts.now())
	if err != nil {
		return nil, err
	}

	fileName := filepath.Join(s.dir, strings.ToUpper(filepath.Base(symbol))+".json")
	data, err := os.ReadFile(fileName)
	if errors.Is(err, fs.ErrNotExist) {
		s.opts.logger.Warn("file does not exist", zap.String("file", fileName))
		return models.NewPriceSeries(symbol, period, DataFeedProviderLocal, models.AdjustedOHLCVColumns), nil
	}
	if err != nil {
		return nil, err
	}

	chart, err := decodeYahooChart(data, http.StatusOK)
	if err != nil {
		s.opts.logger.Error("error parsing stock data", zap.Error(err))
		return nil, fmt.Errorf("error parsing stock data: %w", err)
	}
	if chart == nil {
		return models.NewPriceSeries(symbol, period, DataFeedProviderLocal, models.AdjustedOHLCVColumns), nil
	}

	y := yahooScraper{opts: s.opts}
	series := y.extractPriceSeries(chart, symbol, period)
	series.Provider = DataFeedProviderLocal
	series.Bars = trimToPeriod(series.Bars, start, func(b models.PriceBar) time.Time { return b.Date })
	return series, nil
}
