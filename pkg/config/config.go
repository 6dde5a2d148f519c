package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	KeyPort               = "PORT"
	KeyLogLevel           = "LOG_LEVEL"
	KeyLogFile            = "LOG_FILE"
	KeyFeedProvider       = "FEED_PROVIDER"
	KeyYahooBaseURL       = "YAHOO_BASE_URL"
	KeyUserAgent          = "USER_AGENT"
	KeyAlphaVantageURL    = "ALPHA_VANTAGE_URL"
	KeyAlphaVantageAPIKey = "ALPHA_VANTAGE_API_KEY"
	KeyLocalFeedDir       = "LOCAL_FEED_DIR"
	KeyFetchTimeout       = "FETCH_TIMEOUT"
	KeyDatabaseURL        = "DATABASE_URL"
	KeyMaxBodySize        = "MAX_BODY_SIZE"
	KeyAllowedOrigins     = "ALLOWED_ORIGINS"
	KeyDefaultTicker      = "DEFAULT_TICKER"
	KeyDefaultPeriod      = "DEFAULT_PERIOD"
	KeyGinMode            = "GIN_MODE"
	KeyShutdownTimeout    = "SHUTDOWN_TIMEOUT"
)

// Config holds service configuration.
type Config struct {
	HTTPPort           string
	LogLevel           string
	LogFile            string
	FeedProvider       string
	YahooBaseURL       string
	UserAgent          string
	AlphaVantageURL    string
	AlphaVantageAPIKey string
	LocalFeedDir       string
	FetchTimeout       time.Duration
	DatabaseURL        string
	MaxBodySize        int64
	AllowedOrigins     []string
	DefaultTicker      string
	DefaultPeriod      string
	GinMode            string
	ShutdownTimeout    time.Duration
}

// SetDefaults registers every key with its default and binds it to the
// environment variable of the same name.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyPort, "8054")
	v.SetDefault(KeyLogLevel, "debug")
	v.SetDefault(KeyLogFile, "")
	v.SetDefault(KeyFeedProvider, "yahoo")
	v.SetDefault(KeyYahooBaseURL, "https://query2.finance.yahoo.com")
	v.SetDefault(KeyUserAgent, "")
	v.SetDefault(KeyAlphaVantageURL, "https://www.alphavantage.co/query")
	v.SetDefault(KeyAlphaVantageAPIKey, "")
	v.SetDefault(KeyLocalFeedDir, "data")
	v.SetDefault(KeyFetchTimeout, "0s")
	v.SetDefault(KeyDatabaseURL, "")
	v.SetDefault(KeyMaxBodySize, int64(1<<20))
	v.SetDefault(KeyAllowedOrigins, "*")
	v.SetDefault(KeyDefaultTicker, "AAPL")
	v.SetDefault(KeyDefaultPeriod, "1y")
	v.SetDefault(KeyGinMode, "release")
	v.SetDefault(KeyShutdownTimeout, "10s")
	v.AutomaticEnv()
}

// Load reads the configuration out of v.
func Load(v *viper.Viper) Config {
	return Config{
		HTTPPort:           v.GetString(KeyPort),
		LogLevel:           strings.ToLower(v.GetString(KeyLogLevel)),
		LogFile:            v.GetString(KeyLogFile),
		FeedProvider:       strings.ToLower(v.GetString(KeyFeedProvider)),
		YahooBaseURL:       v.GetString(KeyYahooBaseURL),
		UserAgent:          v.GetString(KeyUserAgent),
		AlphaVantageURL:    v.GetString(KeyAlphaVantageURL),
		AlphaVantageAPIKey: v.GetString(KeyAlphaVantageAPIKey),
		LocalFeedDir:       v.GetString(KeyLocalFeedDir),
		FetchTimeout:       v.GetDuration(KeyFetchTimeout),
		DatabaseURL:        v.GetString(KeyDatabaseURL),
		MaxBodySize:        v.GetInt64(KeyMaxBodySize),
		AllowedOrigins:     splitList(v.GetString(KeyAllowedOrigins)),
		DefaultTicker:      v.GetString(KeyDefaultTicker),
		DefaultPeriod:      v.GetString(KeyDefaultPeriod),
		GinMode:            v.GetString(KeyGinMode),
		ShutdownTimeout:    v.GetDuration(KeyShutdownTimeout),
	}
}

// LoadConfig loads configuration from defaults and environment variables.
func LoadConfig() Config {
	v := viper.New()
	SetDefaults(v)
	return Load(v)
}

// Addr is the listen address for HTTPPort, which may be "8054" or ":8054".
func (c Config) Addr() string {
	if strings.Contains(c.HTTPPort, ":") {
		return c.HTTPPort
	}
	return ":" + c.HTTPPort
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
