package feed

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Ruscigno/StockPulse/pkg/config"
	"github.com/Ruscigno/StockPulse/pkg/models"
	"go.uber.org/zap"
)

const (
	DataFeedProviderLocal        = "local"
	DataFeedProviderAlphaVantage = "alphavantage"
	DataFeedProviderYahoo        = "yahoo"
)

// PriceFeed downloads the daily price history of a symbol over a provider
// period code such as "1y" or "3mo". Implementations do not validate their
// input, retry, or cache: every call is one request to the origin.
type PriceFeed interface {
	DownloadPriceSeries(ctx context.Context, symbol, period string) (*models.PriceSeries, error)
	Name() string
}

// ProviderError is a failure reported by the market-data provider itself.
type ProviderError struct {
	Provider    string
	StatusCode  int
	Code        string
	Description string
}

func (e *ProviderError) Error() string {
	if e.Code == "" && e.Description == "" {
		return fmt.Sprintf("%s: unexpected status code: %d", e.Provider, e.StatusCode)
	}
	return fmt.Sprintf("%s: %s: %s (status %d)", e.Provider, e.Code, e.Description, e.StatusCode)
}

// IsProviderError reports whether err originated from the provider rather
// than from the network or from decoding.
func IsProviderError(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe)
}

// NewPriceFeed builds the feed selected by cfg.FeedProvider.
func NewPriceFeed(cfg config.Config, logger *zap.Logger) (PriceFeed, error) {
	client := newHTTPClient(cfg.FetchTimeout)
	switch strings.ToLower(cfg.FeedProvider) {
	case DataFeedProviderYahoo, "":
		return NewYahooDataFeed(
			WithBaseURL(cfg.YahooBaseURL),
			WithHTTPClient(client),
			WithUserAgent(cfg.UserAgent),
			WithLogger(logger),
		), nil
	case DataFeedProviderAlphaVantage:
		return NewAlphaVantageDataFeed(cfg.AlphaVantageAPIKey,
			WithBaseURL(cfg.AlphaVantageURL),
			WithHTTPClient(client),
			WithLogger(logger),
		)
	case DataFeedProviderLocal:
		return NewLocalDataFeed(cfg.LocalFeedDir, WithLogger(logger)), nil
	default:
		return nil, fmt.Errorf("unknown feed provider %q", cfg.FeedProvider)
	}
}

// newHTTPClient returns a client without a deadline when timeout is zero;
// a slow provider then stalls the request until the caller gives up.
func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}
