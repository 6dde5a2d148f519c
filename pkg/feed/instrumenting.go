package feed

import (
	"context"
	"time"

	"github.com/Ruscigno/StockPulse/pkg/models"
	"github.com/go-kit/kit/metrics"
)

type instrumentingFeed struct {
	fetches  metrics.Counter
	duration metrics.Histogram
	next     PriceFeed
}

// NewInstrumentingFeed counts fetches by provider and outcome and observes
// their latency in seconds.
func NewInstrumentingFeed(fetches metrics.Counter, duration metrics.Histogram, next PriceFeed) PriceFeed {
	return &instrumentingFeed{fetches: fetches, duration: duration, next: next}
}

func (f *instrumentingFeed) Name() string {
	return f.next.Name()
}

func (f *instrumentingFeed) DownloadPriceSeries(ctx context.Context, symbol, period string) (series *models.PriceSeries, err error) {
	defer func(begin time.Time) {
		outcome := "ok"
		switch {
		case err != nil:
			outcome = "error"
		case series.Empty():
			outcome = "empty"
		}
		lvs := []string{"provider", f.next.Name(), "outcome", outcome}
		f.fetches.With(lvs...).Add(1)
		f.duration.With(lvs...).Observe(time.Since(begin).Seconds())
	}(time.Now())
	return f.next.DownloadPriceSeries(ctx, symbol, period)
}
