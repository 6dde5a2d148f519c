package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Ruscigno/StockPulse/api"
	"github.com/Ruscigno/StockPulse/logging"
	"github.com/Ruscigno/StockPulse/pkg/config"
	"github.com/Ruscigno/StockPulse/pkg/database"
	"github.com/Ruscigno/StockPulse/pkg/endpoint"
	"github.com/Ruscigno/StockPulse/pkg/feed"
	"github.com/Ruscigno/StockPulse/pkg/layout"
	"github.com/Ruscigno/StockPulse/pkg/metrics"
	"github.com/Ruscigno/StockPulse/pkg/repository"
	"github.com/Ruscigno/StockPulse/pkg/service"
	httptransport "github.com/Ruscigno/StockPulse/pkg/transport/http"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard server",
	Long:  `Starts a http server and serves the dashboard, its API, health and metrics`,
	RunE:  runServe,
}

func init() {
	RootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load(viper.GetViper())
	logger := logging.SetupLogger(cfg.LogLevel, cfg.LogFile)
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return serve(ctx, cfg, logger)
}

// app is the wired dashboard: its HTTP handler and what to release on exit.
type app struct {
	handler http.Handler
	db      *database.DB
}

func (a *app) Close() error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

// newApp wires feed, journal, service, endpoints and transport. The journal
// is optional: without DATABASE_URL, or when the database is unreachable,
// the dashboard runs without history.
func newApp(cfg config.Config, logger *zap.Logger, reg *prometheus.Registry) (*app, error) {
	m := metrics.NewApplicationMetrics(reg)

	priceFeed, err := feed.NewPriceFeed(cfg, logger)
	if err != nil {
		return nil, err
	}
	priceFeed = feed.NewInstrumentingFeed(m.Fetches, m.FetchDuration, priceFeed)

	a := &app{}
	journal := repository.NewNopSubmissionRepository()
	var pinger service.Pinger

	db, err := database.NewDB(cfg, logger)
	switch {
	case errors.Is(err, database.ErrNoDatabase):
		logger.Info("DATABASE_URL not set, submission history disabled")
	case err != nil:
		logger.Warn("Journal database unavailable, submission history disabled", zap.Error(err))
	default:
		if err := db.RunMigrations(); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("migrate journal: %w", err)
		}
		a.db = db
		pinger = db
		journal = repository.NewSubmissionRepository(db.DB, logger)
	}

	svc := service.Chain(
		service.NewService(priceFeed, service.InstrumentJournal(m, journal), cfg.DefaultPeriod, logger),
		service.LoggingMiddleware(logger),
		service.InstrumentingMiddleware(m),
	)
	health := service.NewHealthService(priceFeed, pinger, m, logger, Version)

	page, err := layout.NewRenderer(layout.NewPage(cfg.DefaultTicker, cfg.DefaultPeriod))
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	a.handler = httptransport.NewHTTPHandler(endpoint.MakeEndpoints(svc, health), httptransport.HTTPConfig{
		Logger:         logger,
		MaxBodySize:    cfg.MaxBodySize,
		AllowedOrigins: cfg.AllowedOrigins,
		Metrics:        m,
		Gatherer:       reg,
		Page:           api.SetupRouter(page, cfg.GinMode),
	})
	return a, nil
}

func serve(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	a, err := newApp(cfg, logger, reg)
	if err != nil {
		return err
	}
	defer a.Close()

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           a.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting server",
			zap.String("addr", server.Addr),
			zap.String("provider", cfg.FeedProvider),
			zap.String("version", Version))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down server", zap.Duration("timeout", cfg.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
