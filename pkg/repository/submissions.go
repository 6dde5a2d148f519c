package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// SubmissionStatus is the outcome of a populated dashboard submit.
type SubmissionStatus string

const (
	SubmissionStatusOK     SubmissionStatus = "ok"
	SubmissionStatusEmpty  SubmissionStatus = "empty"
	SubmissionStatusFailed SubmissionStatus = "failed"
)

// Submission is one journal entry. Only the query and its outcome are kept,
// never the downloaded prices.
type Submission struct {
	ID           uuid.UUID        `db:"id" json:"id"`
	Ticker       string           `db:"ticker" json:"ticker"`
	Period       string           `db:"period" json:"period"`
	Provider     string           `db:"provider" json:"provider"`
	Rows         int              `db:"rows" json:"rows"`
	Status       SubmissionStatus `db:"status" json:"status"`
	ErrorMessage *string          `db:"error_message" json:"error_message,omitempty"`
	DurationMS   int64            `db:"duration_ms" json:"duration_ms"`
	CreatedAt    time.Time        `db:"created_at" json:"created_at"`
}

// SubmissionFilters narrows ListSubmissions.
type SubmissionFilters struct {
	Ticker *string
	Status *SubmissionStatus
	Limit  int
}

// SubmissionRepository defines the interface for journal data access
type SubmissionRepository interface {
	RecordSubmission(ctx context.Context, s *Submission) error
	ListSubmissions(ctx context.Context, filters SubmissionFilters) ([]*Submission, error)
}

// submissionRepository implements SubmissionRepository on Postgres.
type submissionRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewSubmissionRepository creates a new submission repository
func NewSubmissionRepository(db *sqlx.DB, logger *zap.Logger) SubmissionRepository {
	return &submissionRepository{
		db:     db,
		logger: logger,
	}
}

type nopSubmissionRepository struct{}

// NewNopSubmissionRepository is the journal used when no database is
// configured: writes are dropped and listings are empty.
func NewNopSubmissionRepository() SubmissionRepository {
	return nopSubmissionRepository{}
}

func (nopSubmissionRepository) RecordSubmission(ctx context.Context, s *Submission) error {
	return nil
}

func (nopSubmissionRepository) ListSubmissions(ctx context.Context, filters SubmissionFilters) ([]*Submission, error) {
	return []*Submission{}, nil
}
