package feed

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Option configures a feed.
type Option func(*options)

type options struct {
	baseURL   string
	client    *http.Client
	userAgent string
	logger    *zap.Logger
	now       func() time.Time
}

func defaultOptions(baseURL string) options {
	return options{
		baseURL:   baseURL,
		client:    http.DefaultClient,
		userAgent: UserAgent,
		logger:    zap.NewNop(),
		now:       time.Now,
	}
}

func applyOptions(baseURL string, opts []Option) options {
	o := defaultOptions(baseURL)
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithBaseURL points the feed at another origin. Empty keeps the default.
func WithBaseURL(u string) Option {
	return func(o *options) {
		if u != "" {
			o.baseURL = u
		}
	}
}

func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		if c != nil {
			o.client = c
		}
	}
}

func WithUserAgent(ua string) Option {
	return func(o *options) {
		if ua != "" {
			o.userAgent = ua
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithClock replaces time.Now, used to resolve relative periods.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}
