package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// RecordSubmission inserts s, filling in ID and CreatedAt when unset.
func (r *submissionRepository) RecordSubmission(ctx context.Context, s *Submission) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO submissions (
			id, ticker, period, provider, rows, status, error_message, duration_ms, created_at
		) VALUES (
			:id, :ticker, :period, :provider, :rows, :status, :error_message, :duration_ms, :created_at
		)`

	_, err := r.db.NamedExecContext(ctx, query, s)
	if err != nil {
		r.logger.Error("Failed to record submission", zap.Error(err), zap.String("ticker", s.Ticker))
		return fmt.Errorf("failed to record submission: %w", err)
	}
	return nil
}

// ListSubmissions returns the newest submissions first.
func (r *submissionRepository) ListSubmissions(ctx context.Context, filters SubmissionFilters) ([]*Submission, error) {
	query, args := buildListQuery(filters)

	submissions := []*Submission{}
	if err := r.db.SelectContext(ctx, &submissions, query, args...); err != nil {
		r.logger.Error("Failed to list submissions", zap.Error(err))
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	return submissions, nil
}

func buildListQuery(filters SubmissionFilters) (string, []interface{}) {
	query := `SELECT id, ticker, period, provider, rows, status, error_message, duration_ms, created_at
		FROM submissions WHERE 1=1`
	args := []interface{}{}
	argIndex := 1

	if filters.Ticker != nil {
		query += fmt.Sprintf(" AND ticker = $%d", argIndex)
		args = append(args, *filters.Ticker)
		argIndex++
	}

	if filters.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argIndex)
		args = append(args, *filters.Status)
		argIndex++
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", argIndex)
	args = append(args, ClampLimit(filters.Limit))
	return query, args
}

// ClampLimit maps non-positive limits to DefaultListLimit and caps the rest
// at MaxListLimit.
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultListLimit
	case limit > MaxListLimit:
		return MaxListLimit
	default:
		return limit
	}
}
