package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Ruscigno/StockPulse/pkg/chart"
	apperrors "github.com/Ruscigno/StockPulse/pkg/errors"
	"github.com/Ruscigno/StockPulse/pkg/feed"
	"github.com/Ruscigno/StockPulse/pkg/models"
	"github.com/Ruscigno/StockPulse/pkg/repository"
	"github.com/Ruscigno/StockPulse/pkg/stats"
	"go.uber.org/zap"
)

const journalTimeout = 2 * time.Second

// SubmitRequest is what the dashboard sends when Submit is pressed.
type SubmitRequest = models.Query

// SubmitResponse holds the two dashboard outputs. Both are empty in the
// idle state.
type SubmitResponse struct {
	Figure     chart.Figure `json:"figure"`
	Statistics stats.Table  `json:"statistics"`
}

// Idle reports whether nothing was fetched.
func (r SubmitResponse) Idle() bool {
	return r.Figure.Empty() && r.Statistics.Empty()
}

// HistoryRequest defines the input for listing past submissions
type HistoryRequest struct {
	Limit  int     `json:"limit"`
	Ticker *string `json:"ticker,omitempty"`
}

// HistoryResponse defines the response for listing past submissions
type HistoryResponse struct {
	Submissions []*repository.Submission `json:"submissions"`
}

// Service is the dashboard controller.
type Service interface {
	Submit(ctx context.Context, req SubmitRequest) (SubmitResponse, error)
	History(ctx context.Context, req HistoryRequest) (HistoryResponse, error)
}

// service implements the Service interface
type service struct {
	feed          feed.PriceFeed
	journal       repository.SubmissionRepository
	defaultPeriod string
	logger        *zap.Logger
}

// NewService wires the controller. A nil journal drops history.
func NewService(
	priceFeed feed.PriceFeed,
	journal repository.SubmissionRepository,
	defaultPeriod string,
	logger *zap.Logger,
) Service {
	if journal == nil {
		journal = repository.NewNopSubmissionRepository()
	}
	if defaultPeriod == "" {
		defaultPeriod = "1y"
	}
	return &service{
		feed:          priceFeed,
		journal:       journal,
		defaultPeriod: defaultPeriod,
		logger:        logger,
	}
}

// Submit fetches the price history of req.Ticker and builds the chart and
// the statistics table. An empty or blank ticker returns the idle response
// without touching the provider.
func (s *service) Submit(ctx context.Context, req SubmitRequest) (SubmitResponse, error) {
	ticker := strings.TrimSpace(req.Ticker)
	if ticker == "" {
		return SubmitResponse{}, nil
	}
	period := strings.TrimSpace(req.Period)
	if period == "" {
		period = s.defaultPeriod
	}

	s.logger.Info("Fetching price series",
		zap.String("ticker", ticker),
		zap.String("period", period),
		zap.String("provider", s.feed.Name()))

	start := time.Now()
	series, err := s.feed.DownloadPriceSeries(ctx, ticker, period)
	if err != nil {
		s.logger.Error("Failed to download price series",
			zap.String("ticker", ticker),
			zap.String("period", period),
			zap.Error(err))
		s.record(ctx, ticker, period, 0, repository.SubmissionStatusFailed, err, time.Since(start))
		return SubmitResponse{}, fetchError(err, ticker, period)
	}

	resp := SubmitResponse{Figure: chart.BuildChart(series, ticker)}
	resp.Statistics, err = stats.BuildStatistics(series)
	status := repository.SubmissionStatusOK
	switch {
	case errors.Is(err, stats.ErrEmptySeries):
		status = repository.SubmissionStatusEmpty
		resp.Statistics = stats.Table{}
	case err != nil:
		return SubmitResponse{}, apperrors.WrapError(err, apperrors.ErrCodeInternal, "failed to build statistics")
	}

	s.record(ctx, ticker, period, series.Len(), status, nil, time.Since(start))
	s.logger.Info("Price series processed",
		zap.String("ticker", ticker),
		zap.Int("rows", series.Len()),
		zap.String("status", string(status)))
	return resp, nil
}

// History lists recent submissions, newest first.
func (s *service) History(ctx context.Context, req HistoryRequest) (HistoryResponse, error) {
	list, err := s.journal.ListSubmissions(ctx, repository.SubmissionFilters{
		Ticker: req.Ticker,
		Limit:  repository.ClampLimit(req.Limit),
	})
	if err != nil {
		return HistoryResponse{}, apperrors.WrapError(err, apperrors.ErrCodeDatabaseError, "failed to list submissions")
	}
	if list == nil {
		list = []*repository.Submission{}
	}
	return HistoryResponse{Submissions: list}, nil
}

// record journals a submission. Journal failures are logged and otherwise
// ignored; they never affect the dashboard response.
func (s *service) record(ctx context.Context, ticker, period string, rows int, status repository.SubmissionStatus, cause error, elapsed time.Duration) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), journalTimeout)
	defer cancel()

	sub := &repository.Submission{
		Ticker:     ticker,
		Period:     period,
		Provider:   s.feed.Name(),
		Rows:       rows,
		Status:     status,
		DurationMS: elapsed.Milliseconds(),
	}
	if cause != nil {
		msg := cause.Error()
		sub.ErrorMessage = &msg
	}
	if err := s.journal.RecordSubmission(ctx, sub); err != nil {
		s.logger.Warn("Failed to journal submission", zap.String("ticker", ticker), zap.Error(err))
	}
}

// fetchError maps a feed failure onto the error returned to the client.
func fetchError(err error, ticker, period string) error {
	appErr := apperrors.FromContext(err, "timed out downloading price data")
	if appErr == nil {
		appErr = apperrors.WrapError(err, apperrors.ErrCodeProvider, "failed to download price data")
	}
	return appErr.
		WithDetails(err.Error()).
		WithMetadata("ticker", ticker).
		WithMetadata("period", period)
}
