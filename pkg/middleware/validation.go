package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	apperrors "github.com/Ruscigno/StockPulse/pkg/errors"
	"go.uber.org/zap"
)

// ValidationConfig holds validation configuration
type ValidationConfig struct {
	MaxBodySize int64 // Maximum request body size in bytes
	Logger      *zap.Logger
}

// RequestValidation middleware bounds request bodies and rejects malformed
// JSON before it reaches a decoder. Form posts pass through untouched.
func RequestValidation(config ValidationConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost && r.Method != http.MethodPut {
				next.ServeHTTP(w, r)
				return
			}

			if config.MaxBodySize > 0 && r.ContentLength > config.MaxBodySize {
				config.Logger.Warn("Request body too large",
					zap.Int64("content_length", r.ContentLength),
					zap.Int64("max_size", config.MaxBodySize),
					zap.String("path", r.URL.Path))

				WriteError(w, r, apperrors.NewAppError(apperrors.ErrCodeRequestTooLarge,
					fmt.Sprintf("Request body too large. Maximum size: %d bytes", config.MaxBodySize)))
				return
			}

			if !isJSONRequest(r) {
				if config.MaxBodySize > 0 {
					r.Body = http.MaxBytesReader(w, r.Body, config.MaxBodySize)
				}
				next.ServeHTTP(w, r)
				return
			}

			body, err := readBody(r.Body, config.MaxBodySize)
			r.Body.Close()
			if err != nil {
				config.Logger.Warn("Failed to read request body", zap.Error(err), zap.String("path", r.URL.Path))
				code := apperrors.ErrCodeBadRequest
				if errors.Is(err, errBodyTooLarge) {
					code = apperrors.ErrCodeRequestTooLarge
				}
				WriteError(w, r, apperrors.NewAppError(code, "Failed to read request body").WithCause(err))
				return
			}

			if len(bytes.TrimSpace(body)) > 0 && !json.Valid(body) {
				config.Logger.Warn("Invalid JSON format", zap.String("path", r.URL.Path))
				WriteError(w, r, apperrors.NewAppError(apperrors.ErrCodeBadRequest, "Invalid JSON format"))
				return
			}

			r.Body = io.NopCloser(bytes.NewReader(body))
			next.ServeHTTP(w, r)
		})
	}
}

var errBodyTooLarge = errors.New("request body too large")

func readBody(rc io.Reader, limit int64) ([]byte, error) {
	if limit <= 0 {
		return io.ReadAll(rc)
	}
	body, err := io.ReadAll(io.LimitReader(rc, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > limit {
		return nil, errBodyTooLarge
	}
	return body, nil
}

func isJSONRequest(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "application/json"
}

// WriteError writes err as the standard JSON error body, stamped with the
// request id.
func WriteError(w http.ResponseWriter, r *http.Request, err *apperrors.AppError) {
	resp := err.WithRequestID(RequestIDFromContext(r.Context())).ToErrorResponse()

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(err.HTTPStatus)
	_ = json.NewEncoder(w).Encode(resp)
}
