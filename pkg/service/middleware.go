package service

import (
	"context"
	"time"

	apperrors "github.com/Ruscigno/StockPulse/pkg/errors"
	"github.com/Ruscigno/StockPulse/pkg/metrics"
	"github.com/Ruscigno/StockPulse/pkg/repository"
	"go.uber.org/zap"
)

// Middleware decorates a Service.
type Middleware func(Service) Service

// Chain applies middlewares so the first one is outermost.
func Chain(svc Service, mws ...Middleware) Service {
	for i := len(mws) - 1; i >= 0; i-- {
		svc = mws[i](svc)
	}
	return svc
}

// LoggingMiddleware logs every call with its outcome and latency.
func LoggingMiddleware(logger *zap.Logger) Middleware {
	return func(next Service) Service {
		return &loggingMiddleware{next: next, logger: logger}
	}
}

type loggingMiddleware struct {
	next   Service
	logger *zap.Logger
}

func (mw *loggingMiddleware) Submit(ctx context.Context, req SubmitRequest) (resp SubmitResponse, err error) {
	defer func(begin time.Time) {
		fields := []zap.Field{
			zap.String("method", "submit"),
			zap.String("ticker", req.Ticker),
			zap.String("period", req.Period),
			zap.Int("points", resp.Figure.Points()),
			zap.Duration("took", time.Since(begin)),
		}
		if err != nil {
			mw.logger.Warn("Submit failed", append(fields, zap.Error(err))...)
			return
		}
		mw.logger.Info("Submit handled", fields...)
	}(time.Now())
	return mw.next.Submit(ctx, req)
}

func (mw *loggingMiddleware) History(ctx context.Context, req HistoryRequest) (resp HistoryResponse, err error) {
	defer func(begin time.Time) {
		mw.logger.Debug("History handled",
			zap.Int("limit", req.Limit),
			zap.Int("count", len(resp.Submissions)),
			zap.Duration("took", time.Since(begin)),
			zap.Error(err))
	}(time.Now())
	return mw.next.History(ctx, req)
}

// InstrumentingMiddleware counts submissions by the state they produced:
// idle, ok, empty or failed.
func InstrumentingMiddleware(m *metrics.ApplicationMetrics) Middleware {
	return func(next Service) Service {
		return &instrumentingMiddleware{next: next, metrics: m}
	}
}

type instrumentingMiddleware struct {
	next    Service
	metrics *metrics.ApplicationMetrics
}

func (mw *instrumentingMiddleware) Submit(ctx context.Context, req SubmitRequest) (resp SubmitResponse, err error) {
	defer func() {
		state := string(repository.SubmissionStatusOK)
		switch {
		case err != nil:
			state = string(repository.SubmissionStatusFailed)
			if appErr := apperrors.GetAppError(err); appErr != nil {
				mw.metrics.RecordError(string(appErr.Code), "service")
			}
		case resp.Idle():
			state = "idle"
		case resp.Statistics.Empty():
			state = string(repository.SubmissionStatusEmpty)
		}
		mw.metrics.RecordSubmission(state)
	}()
	return mw.next.Submit(ctx, req)
}

func (mw *instrumentingMiddleware) History(ctx context.Context, req HistoryRequest) (HistoryResponse, error) {
	resp, err := mw.next.History(ctx, req)
	if appErr := apperrors.GetAppError(err); appErr != nil {
		mw.metrics.RecordError(string(appErr.Code), "service")
	}
	return resp, err
}

// InstrumentJournal counts journal writes by success.
func InstrumentJournal(m *metrics.ApplicationMetrics, next repository.SubmissionRepository) repository.SubmissionRepository {
	return &instrumentedJournal{SubmissionRepository: next, metrics: m}
}

type instrumentedJournal struct {
	repository.SubmissionRepository
	metrics *metrics.ApplicationMetrics
}

func (j *instrumentedJournal) RecordSubmission(ctx context.Context, s *repository.Submission) error {
	err := j.SubmissionRepository.RecordSubmission(ctx, s)
	j.metrics.RecordJournalWrite(err == nil)
	return err
}
