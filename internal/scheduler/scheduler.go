package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/shoeshop/pos-backend/internal/config"
	"github.com/shoeshop/pos-backend/internal/domain/models"
	"github.com/shoeshop/pos-backend/internal/service/reporting"
)

// SummaryNotifier pushes a generated daily summary to an external endpoint.
type SummaryNotifier interface {
	NotifyDailySummary(ctx context.Context, summary models.DailySummary) error
}

// Scheduler manages scheduled reporting tasks.
type Scheduler struct {
	cron         *cron.Cron
	reportingSvc *reporting.Service
	notifier     SummaryNotifier
	cfg          config.Config
	logger       *zap.Logger
}

// NewScheduler creates a new scheduler instance. The notifier may be nil.
func NewScheduler(cfg config.Config, reportingSvc *reporting.Service, notifier SummaryNotifier, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Scheduler{
		cron:         cron.New(),
		reportingSvc: reportingSvc,
		notifier:     notifier,
		cfg:          cfg,
		logger:       logger,
	}
}

// Start registers the daily summary job and starts the cron loop.
func (s *Scheduler) Start() {
	s.logger.Info("starting scheduler", zap.String("schedule", s.cfg.Reporting.CronSchedule))

	if _, err := s.cron.AddFunc(s.cfg.Reporting.CronSchedule, s.runDailySummary); err != nil {
		s.logger.Error("failed to schedule daily summary", zap.Error(err))
	}

	s.cron.Start()
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	s.cron.Stop()
}

func (s *Scheduler) runDailySummary() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	summary, err := s.reportingSvc.GenerateDailySummary(ctx, time.Now())
	if err != nil {
		s.logger.Error("failed to generate daily summary", zap.Error(err))
		return
	}

	if s.notifier == nil {
		return
	}
	if err := s.notifier.NotifyDailySummary(ctx, *summary); err != nil {
		s.logger.Error("failed to push daily summary", zap.Error(err))
	} else {
		s.logger.Info("daily summary pushed")
	}
}
