// Package jobs runs scheduled maintenance against the session store.
package jobs

import (
	"context"
	"time"

	"alcyxob/studio-calendar/internal/service"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const auditTimeout = 4 * time.Minute

// AuditJob reports duplicate trainer slots. It never deletes; cleanup is
// done with the dedupe command after review.
type AuditJob struct {
	audit  service.AuditService
	logger *zap.Logger
}

func NewAuditJob(audit service.AuditService, logger *zap.Logger) *AuditJob {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditJob{audit: audit, logger: logger.Named("audit-job")}
}

// Run implements cron.Job.
func (j *AuditJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), auditTimeout)
	defer cancel()

	report, err := j.audit.FindDuplicates(ctx)
	if err != nil {
		j.logger.Error("duplicate slot audit failed", zap.Error(err))
		return
	}
	if report.Removable == 0 {
		j.logger.Info("duplicate slot audit clean", zap.Int("scanned", report.Scanned))
		return
	}
	for _, g := range report.Groups {
		j.logger.Warn("duplicate slot",
			zap.String("trainer", g.TrainerName),
			zap.String("date", g.Date),
			zap.String("time", g.Time),
			zap.Int("extra", len(g.Extra)),
		)
	}
	j.logger.Warn("duplicate slot audit found double bookings",
		zap.Int("scanned", report.Scanned),
		zap.Int("groups", len(report.Groups)),
		zap.Int("removable", report.Removable),
	)
}

// NewScheduler registers job under the cron expression expr. An empty expr
// returns a nil scheduler, meaning the job is disabled.
func NewScheduler(expr string, job cron.Job, logger *zap.Logger) (*cron.Cron, error) {
	if expr == "" {
		return nil, nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	cl := cronLogger{logger.Named("cron").Sugar()}
	c := cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)))
	if _, err := c.AddJob(expr, job); err != nil {
		return nil, err
	}
	return c, nil
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}
