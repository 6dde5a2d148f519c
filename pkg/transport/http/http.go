package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/Ruscigno/StockPulse/pkg/endpoint"
	apperrors "github.com/Ruscigno/StockPulse/pkg/errors"
	"github.com/Ruscigno/StockPulse/pkg/metrics"
	"github.com/Ruscigno/StockPulse/pkg/middleware"
	"github.com/Ruscigno/StockPulse/pkg/service"
	kitzap "github.com/go-kit/kit/log/zap"
	"github.com/go-kit/kit/transport"
	httptransport "github.com/go-kit/kit/transport/http"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Routes served by the API, used to bound metric labels.
const (
	SubmitPath  = "/api/submit"
	HistoryPath = "/api/history"
	HealthPath  = "/health"
	MetricsPath = "/metrics"
)

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	Logger         *zap.Logger
	MaxBodySize    int64
	AllowedOrigins []string
	Metrics        *metrics.ApplicationMetrics
	// Gatherer backs /metrics. Nil disables the route.
	Gatherer prometheus.Gatherer
	// Page serves everything outside the API: the dashboard and its assets.
	Page http.Handler
}

// NewHTTPHandler sets up HTTP handlers for the endpoints with middleware.
func NewHTTPHandler(endpoints endpoint.Endpoints, config HTTPConfig) http.Handler {
	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}
	if config.Metrics == nil {
		config.Metrics = metrics.NewDiscardMetrics()
	}

	options := []httptransport.ServerOption{
		httptransport.ServerErrorEncoder(errorEncoder(config.Metrics)),
		httptransport.ServerErrorHandler(transport.NewLogErrorHandler(
			kitzap.NewZapSugarLogger(config.Logger, zapcore.ErrorLevel))),
	}

	mux := http.NewServeMux()

	submit := httptransport.NewServer(endpoints.Submit, decodeSubmitRequest, encodeResponse, options...)
	mux.Handle("GET "+SubmitPath, submit)
	mux.Handle("POST "+SubmitPath, submit)
	mux.Handle(SubmitPath, methodNotAllowed(http.MethodGet, http.MethodPost))

	mux.Handle("GET "+HistoryPath, httptransport.NewServer(
		endpoints.History,
		decodeHistoryRequest,
		encodeResponse,
		options...,
	))
	mux.Handle(HistoryPath, methodNotAllowed(http.MethodGet))

	mux.Handle("GET "+HealthPath, httptransport.NewServer(
		endpoints.CheckHealth,
		decodeHealthRequest,
		encodeHealthResponse,
		options...,
	))
	mux.Handle(HealthPath, methodNotAllowed(http.MethodGet))

	if config.Gatherer != nil {
		mux.Handle("GET "+MetricsPath, metrics.Handler(config.Gatherer))
	}

	if config.Page != nil {
		mux.Handle("/", config.Page)
	} else {
		mux.Handle("/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			middleware.WriteError(w, r, apperrors.NewAppError(apperrors.ErrCodeNotFound, "Route not found").
				WithDetails(r.URL.Path))
		}))
	}

	var handler http.Handler = mux

	// Apply middleware in reverse order (last applied = first executed)
	handler = metrics.MetricsMiddleware(config.Metrics, "/", SubmitPath, HistoryPath, HealthPath, MetricsPath)(handler)
	handler = middleware.ErrorLogging(config.Logger)(handler)
	handler = middleware.RequestValidation(middleware.ValidationConfig{
		MaxBodySize: config.MaxBodySize,
		Logger:      config.Logger,
	})(handler)
	handler = middleware.RequestLogging(middleware.LoggingConfig{
		Logger:    config.Logger,
		SkipPaths: []string{HealthPath, MetricsPath, "/static/"},
	})(handler)
	handler = middleware.StructuredLogging(config.Logger)(handler)
	handler = middleware.CORS(config.AllowedOrigins)(handler)
	handler = middleware.SecurityHeaders()(handler)
	handler = middleware.RequestID()(handler)

	return handler
}

func methodNotAllowed(allowed ...string) http.Handler {
	allow := strings.Join(allowed, ", ")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Allow", allow)
		middleware.WriteError(w, r, apperrors.NewAppError(apperrors.ErrCodeMethodNotAllowed, "Method not allowed").
			WithDetails(r.Method+" "+r.URL.Path))
	})
}

// decodeSubmitRequest accepts query parameters on GET, and a JSON object or
// form fields on POST. A missing ticker is the idle request, not an error.
func decodeSubmitRequest(_ context.Context, r *http.Request) (interface{}, error) {
	if r.Method == http.MethodGet {
		q := r.URL.Query()
		return service.SubmitRequest{Ticker: q.Get("ticker"), Period: q.Get("period")}, nil
	}

	mediaType := "application/json"
	if ct := r.Header.Get("Content-Type"); ct != "" {
		var err error
		mediaType, _, err = mime.ParseMediaType(ct)
		if err != nil {
			return nil, apperrors.NewAppError(apperrors.ErrCodeBadRequest, "Invalid Content-Type").WithCause(err)
		}
	}

	switch mediaType {
	case "application/json":
		var req service.SubmitRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			return nil, apperrors.NewAppError(apperrors.ErrCodeBadRequest, "Invalid request body").
				WithDetails(err.Error()).WithCause(err)
		}
		return req, nil
	case "application/x-www-form-urlencoded", "multipart/form-data":
		if err := r.ParseMultipartForm(32 << 10); err != nil && !errors.Is(err, http.ErrNotMultipart) {
			return nil, apperrors.NewAppError(apperrors.ErrCodeBadRequest, "Invalid form body").
				WithDetails(err.Error()).WithCause(err)
		}
		return service.SubmitRequest{Ticker: r.FormValue("ticker"), Period: r.FormValue("period")}, nil
	default:
		return nil, apperrors.NewAppError(apperrors.ErrCodeBadRequest, "Unsupported Content-Type").
			WithDetails(mediaType)
	}
}

func decodeHistoryRequest(_ context.Context, r *http.Request) (interface{}, error) {
	req := service.HistoryRequest{}
	query := r.URL.Query()

	if ticker := strings.TrimSpace(query.Get("ticker")); ticker != "" {
		req.Ticker = &ticker
	}

	if limitStr := query.Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 0 {
			return nil, apperrors.NewValidationError("Invalid query parameters", nil).
				AddField("limit", "must be a non-negative integer", limitStr)
		}
		req.Limit = limit
	}

	return req, nil
}

func decodeHealthRequest(_ context.Context, r *http.Request) (interface{}, error) {
	return nil, nil
}

func encodeResponse(_ context.Context, w http.ResponseWriter, response interface{}) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	return json.NewEncoder(w).Encode(response)
}

// encodeHealthResponse answers 503 when the service cannot serve submits.
func encodeHealthResponse(_ context.Context, w http.ResponseWriter, response interface{}) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if h, ok := response.(service.HealthResponse); ok && h.Status == service.HealthStatusUnhealthy {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	return json.NewEncoder(w).Encode(response)
}

func errorEncoder(m *metrics.ApplicationMetrics) httptransport.ErrorEncoder {
	return func(ctx context.Context, err error, w http.ResponseWriter) {
		appErr := apperrors.GetAppError(err)
		if appErr == nil {
			appErr = apperrors.WrapError(err, apperrors.ErrCodeInternal, "Internal server error")
		}
		m.RecordError(string(appErr.Code), "transport")

		resp := appErr.WithRequestID(middleware.RequestIDFromContext(ctx)).ToErrorResponse()
		var ve *apperrors.ValidationError
		if errors.As(err, &ve) && ve.HasFields() {
			if resp.Metadata == nil {
				resp.Metadata = map[string]interface{}{}
			}
			resp.Metadata["fields"] = ve.Fields
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(appErr.HTTPStatus)
		_ = json.NewEncoder(w).Encode(resp)
	}
}
