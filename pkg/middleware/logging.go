package middleware

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/Ruscigno/StockPulse/pkg/errors"
	"go.uber.org/zap"
)

type loggingContextKey string

const requestLoggerKey loggingContextKey = "request_logger"

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Logger           *zap.Logger
	SensitiveHeaders []string // redacted in addition to the defaults
	SkipPaths        []string // logged at debug level only, e.g. /health and /metrics
}

var defaultSensitiveHeaders = []string{
	"authorization",
	"cookie",
	"set-cookie",
	"x-api-key",
}

// responseWriter wraps http.ResponseWriter to capture status and size.
type responseWriter struct {
	http.ResponseWriter
	statusCode  int
	size        int
	wroteHeader bool
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

func (rw *responseWriter) WriteHeader(statusCode int) {
	if !rw.wroteHeader {
		rw.statusCode = statusCode
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(statusCode)
}

func (rw *responseWriter) Write(data []byte) (int, error) {
	rw.wroteHeader = true
	size, err := rw.ResponseWriter.Write(data)
	rw.size += size
	return size, err
}

// Hijack implements http.Hijacker interface
func (rw *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if hijacker, ok := rw.ResponseWriter.(http.Hijacker); ok {
		return hijacker.Hijack()
	}
	return nil, nil, fmt.Errorf("hijacking not supported")
}

// Flush implements http.Flusher interface
func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// RequestLogging middleware logs HTTP requests and responses
func RequestLogging(config LoggingConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			requestID := RequestIDFromContext(r.Context())
			quiet := hasPrefix(r.URL.Path, config.SkipPaths)

			wrapped := newResponseWriter(w)
			if !quiet {
				logRequest(config, r, requestID)
			}

			next.ServeHTTP(wrapped, r)

			logResponse(config, r, wrapped, time.Since(start), requestID, quiet)
		})
	}
}

func logRequest(config LoggingConfig, r *http.Request, requestID string) {
	headers := make(map[string]string, len(r.Header))
	for name, values := range r.Header {
		if len(values) == 0 {
			continue
		}
		if isSensitiveHeader(name, config.SensitiveHeaders) {
			headers[name] = "[REDACTED]"
		} else {
			headers[name] = values[0]
		}
	}

	config.Logger.Debug("HTTP request",
		zap.String("request_id", requestID),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.String("query", r.URL.RawQuery),
		zap.String("remote_addr", getClientIP(r)),
		zap.String("user_agent", r.UserAgent()),
		zap.Int64("content_length", r.ContentLength),
		zap.Any("headers", headers),
	)
}

func logResponse(config LoggingConfig, r *http.Request, rw *responseWriter, duration time.Duration, requestID string, quiet bool) {
	fields := []zap.Field{
		zap.String("request_id", requestID),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Int("status_code", rw.statusCode),
		zap.Int("response_size", rw.size),
		zap.Duration("duration", duration),
	}

	switch {
	case rw.statusCode >= 500:
		config.Logger.Error("HTTP response", fields...)
	case rw.statusCode >= 400:
		config.Logger.Warn("HTTP response", fields...)
	case quiet:
		config.Logger.Debug("HTTP response", fields...)
	default:
		config.Logger.Info("HTTP response", fields...)
	}
}

// StructuredLogging middleware puts a request-scoped logger in the context.
func StructuredLogging(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestLogger := logger.With(
				zap.String("request_id", RequestIDFromContext(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
			)
			ctx := context.WithValue(r.Context(), requestLoggerKey, requestLogger)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// LoggerFromContext returns the request logger or fallback when none is set.
func LoggerFromContext(ctx context.Context, fallback *zap.Logger) *zap.Logger {
	if l, ok := ctx.Value(requestLoggerKey).(*zap.Logger); ok {
		return l
	}
	return fallback
}

// ErrorLogging middleware recovers panics, logs them and answers 500.
func ErrorLogging(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				logger.Error("HTTP handler panic",
					zap.String("request_id", RequestIDFromContext(r.Context())),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", getClientIP(r)),
					zap.Any("panic", rec),
					zap.Stack("stack"),
				)

				WriteError(w, r, apperrors.NewAppError(apperrors.ErrCodeInternal, "Internal server error"))
			}()

			next.ServeHTTP(w, r)
		})
	}
}

func getClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func isSensitiveHeader(headerName string, sensitiveHeaders []string) bool {
	for _, list := range [][]string{defaultSensitiveHeaders, sensitiveHeaders} {
		for _, sensitive := range list {
			if strings.EqualFold(sensitive, headerName) {
				return true
			}
		}
	}
	return false
}

func hasPrefix(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}
