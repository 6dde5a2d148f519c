package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Ruscigno/StockPulse/pkg/feed"
	"github.com/Ruscigno/StockPulse/pkg/metrics"
	"go.uber.org/zap"
)

// HealthStatus represents the health status of a component
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
	HealthStatusDegraded  HealthStatus = "degraded"
)

// ComponentHealth represents the health of a single component
type ComponentHealth struct {
	Name      string       `json:"name"`
	Status    HealthStatus `json:"status"`
	Message   string       `json:"message,omitempty"`
	Timestamp time.Time    `json:"timestamp"`
	Duration  string       `json:"duration,omitempty"`
}

// HealthResponse represents the overall health response
type HealthResponse struct {
	Status     HealthStatus      `json:"status"`
	Timestamp  time.Time         `json:"timestamp"`
	Version    string            `json:"version"`
	Components []ComponentHealth `json:"components"`
	Uptime     string            `json:"uptime"`
}

// Pinger is satisfied by *database.DB.
type Pinger interface {
	Health(ctx context.Context) error
}

// HealthService defines the health check service interface
type HealthService interface {
	CheckHealth(ctx context.Context) HealthResponse
}

type healthService struct {
	feed      feed.PriceFeed
	db        Pinger
	metrics   *metrics.ApplicationMetrics
	logger    *zap.Logger
	startTime time.Time
	version   string
}

// NewHealthService creates a new health service. A nil db means the
// journal is disabled, which is healthy.
func NewHealthService(priceFeed feed.PriceFeed, db Pinger, m *metrics.ApplicationMetrics, logger *zap.Logger, version string) HealthService {
	if m == nil {
		m = metrics.NewDiscardMetrics()
	}
	return &healthService{
		feed:      priceFeed,
		db:        db,
		metrics:   m,
		logger:    logger,
		startTime: time.Now(),
		version:   version,
	}
}

func (h *healthService) CheckHealth(ctx context.Context) HealthResponse {
	start := time.Now()

	components := []ComponentHealth{
		h.checkFeed(),
		h.checkJournal(ctx),
	}
	for _, c := range components {
		h.metrics.RecordHealthCheck(c.Name, c.Status == HealthStatusHealthy)
	}

	overallStatus := determineOverallStatus(components)
	response := HealthResponse{
		Status:     overallStatus,
		Timestamp:  time.Now(),
		Version:    h.version,
		Components: components,
		Uptime:     time.Since(h.startTime).String(),
	}

	h.logger.Debug("Health check completed",
		zap.String("status", string(overallStatus)),
		zap.Duration("duration", time.Since(start)),
		zap.Int("components", len(components)))

	return response
}

// checkFeed reports the configured provider. It does not call out to the
// provider: every outbound request belongs to a user submit.
func (h *healthService) checkFeed() ComponentHealth {
	component := ComponentHealth{Name: "feed", Timestamp: time.Now()}
	if h.feed == nil {
		component.Status = HealthStatusUnhealthy
		component.Message = "Price feed not initialized"
		return component
	}
	component.Status = HealthStatusHealthy
	component.Message = fmt.Sprintf("Provider %s configured", h.feed.Name())
	return component
}

func (h *healthService) checkJournal(ctx context.Context) ComponentHealth {
	start := time.Now()
	component := ComponentHealth{Name: "journal", Timestamp: start}

	if h.db == nil {
		component.Status = HealthStatusHealthy
		component.Message = "Journal disabled"
		return component
	}

	if err := h.db.Health(ctx); err != nil {
		// the dashboard still works without its journal
		component.Status = HealthStatusDegraded
		component.Message = err.Error()
		h.logger.Error("Database health check failed", zap.Error(err))
	} else {
		component.Status = HealthStatusHealthy
		component.Message = "Database is healthy"
	}
	component.Duration = time.Since(start).String()
	return component
}

// determineOverallStatus determines the overall health status based on component statuses
func determineOverallStatus(components []ComponentHealth) HealthStatus {
	hasUnhealthy := false
	hasDegraded := false

	for _, component := range components {
		switch component.Status {
		case HealthStatusUnhealthy:
			hasUnhealthy = true
		case HealthStatusDegraded:
			hasDegraded = true
		}
	}

	if hasUnhealthy {
		return HealthStatusUnhealthy
	}
	if hasDegraded {
		return HealthStatusDegraded
	}
	return HealthStatusHealthy
}
