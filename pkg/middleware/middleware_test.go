package middleware

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apperrors "github.com/Ruscigno/StockPulse/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
}

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, seen, 36, "uuid")
	assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", seen)
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
}

func TestRequestIDFromContextDefault(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Equal(t, "unknown", RequestIDFromContext(req.Context()))
}

func TestSecurityHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	SecurityHeaders()(okHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "https://cdn.plot.ly")
}

func TestCORS(t *testing.T) {
	h := CORS([]string{"http://allowed.example"})(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/submit", nil)
	req.Header.Set("Origin", "http://allowed.example")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "http://allowed.example", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/submit", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/submit", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestRequestLoggingRedactsAndLevels(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	logger := zap.New(core)

	h := RequestID()(RequestLogging(LoggingConfig{Logger: logger, SkipPaths: []string{"/health"}})(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/missing" {
				w.WriteHeader(http.StatusNotFound)
			}
		})))

	req := httptest.NewRequest(http.MethodGet, "/api/submit", nil)
	req.Header.Set("Authorization", "Bearer secret")
	h.ServeHTTP(httptest.NewRecorder(), req)

	reqLogs := logs.FilterMessage("HTTP request").All()
	require.Len(t, reqLogs, 1)
	headers := reqLogs[0].ContextMap()["headers"].(map[string]string)
	assert.Equal(t, "[REDACTED]", headers["Authorization"])

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, 1, logs.FilterMessage("HTTP response").FilterField(zap.Int("status_code", 404)).Len())

	before := logs.FilterMessage("HTTP request").Len()
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, before, logs.FilterMessage("HTTP request").Len(), "skipped paths log no request line")
}

func TestStructuredLogging(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	h := RequestID()(StructuredLogging(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		LoggerFromContext(r.Context(), zap.NewNop()).Info("inside")
	})))

	req := httptest.NewRequest(http.MethodGet, "/api/history", nil)
	req.Header.Set(RequestIDHeader, "rid-1")
	h.ServeHTTP(httptest.NewRecorder(), req)

	entries := logs.FilterMessage("inside").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "rid-1", entries[0].ContextMap()["request_id"])
	assert.Equal(t, "/api/history", entries[0].ContextMap()["path"])
}

func TestErrorLoggingRecoversPanics(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	h := RequestID()(ErrorLogging(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body apperrors.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, apperrors.ErrCodeInternal, body.Code)
	assert.Equal(t, rec.Header().Get(RequestIDHeader), body.RequestID)
	assert.Equal(t, 1, logs.FilterMessage("HTTP handler panic").Len())
}

func TestRequestValidation(t *testing.T) {
	var got string
	h := RequestValidation(ValidationConfig{MaxBodySize: 64, Logger: zap.NewNop()})(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			b, _ := io.ReadAll(r.Body)
			got = string(b)
		}))

	tests := []struct {
		name        string
		method      string
		contentType string
		body        string
		wantStatus  int
		wantCode    apperrors.ErrorCode
	}{
		{"valid json", http.MethodPost, "application/json", `{"ticker":"AAPL"}`, http.StatusOK, ""},
		{"empty json body", http.MethodPost, "application/json", ``, http.StatusOK, ""},
		{"malformed json", http.MethodPost, "application/json", `{"ticker":`, http.StatusBadRequest, apperrors.ErrCodeBadRequest},
		{"too large", http.MethodPost, "application/json", `{"ticker":"` + strings.Repeat("A", 100) + `"}`, http.StatusRequestEntityTooLarge, apperrors.ErrCodeRequestTooLarge},
		{"form passes", http.MethodPost, "application/x-www-form-urlencoded", `ticker=AAPL`, http.StatusOK, ""},
		{"get ignored", http.MethodGet, "", ``, http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got = ""
			req := httptest.NewRequest(tt.method, "/api/submit", strings.NewReader(tt.body))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantCode != "" {
				var body apperrors.ErrorResponse
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
				assert.Equal(t, tt.wantCode, body.Code)
				return
			}
			if tt.method == http.MethodPost {
				assert.Equal(t, tt.body, got, "body is restored for the handler")
			}
		})
	}
}
