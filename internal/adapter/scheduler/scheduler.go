// Package scheduler runs the periodic maintenance jobs: the overdue-todos
// gauge and the process metrics sample.
package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"tasktracker/internal/core/port"
	"tasktracker/internal/core/telemetry"
)

const systemMetricsSpec = "@every 10s"

type Scheduler struct {
	cron    *cron.Cron
	todos   port.TodoService
	metrics *telemetry.AppMetrics
	logger  *otelzap.Logger
	now     func() time.Time
}

func New(todos port.TodoService, metrics *telemetry.AppMetrics, logger *otelzap.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithLocation(time.UTC)),
		todos:   todos,
		metrics: metrics,
		logger:  logger,
		now:     time.Now,
	}
}

// Register adds both jobs. overdueSpec accepts standard cron expressions and
// descriptors such as "@every 1m".
func (s *Scheduler) Register(overdueSpec string) error {
	if _, err := s.cron.AddFunc(overdueSpec, s.RefreshOverdue); err != nil {
		return err
	}

	_, err := s.cron.AddFunc(systemMetricsSpec, s.metrics.CollectSystemMetrics)

	return err
}

// RefreshOverdue recounts open todos past their deadline and publishes the
// total on the overdue gauge.
func (s *Scheduler) RefreshOverdue() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	count, err := s.todos.OverdueCount(ctx, s.now())

	if err != nil {
		s.logger.Ctx(ctx).Warn("overdue count failed", zap.Error(err))
		return
	}

	s.metrics.SetOverdueTodos(count)
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
