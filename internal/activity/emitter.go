// Package activity records booking side effects in the append-only
// activity log.
package activity

import (
	"context"
	"time"

	"alcyxob/studio-calendar/internal/domain"
	"alcyxob/studio-calendar/internal/repository"

	"go.uber.org/zap"
)

// Sink receives activity events. Record never fails from the caller's
// point of view.
type Sink interface {
	Record(ctx context.Context, action domain.ActivityAction, session *domain.Session, actor domain.Actor)
}

// Emitter writes activity entries through the activity repository.
type Emitter struct {
	repo   repository.ActivityRepository
	logger *zap.Logger
	now    func() time.Time
}

// NewEmitter returns an Emitter. A nil logger discards warnings.
func NewEmitter(repo repository.ActivityRepository, logger *zap.Logger) *Emitter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Emitter{
		repo:   repo,
		logger: logger.Named("activity"),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Record appends one entry snapshotting session and actor. Store failures
// are logged and dropped.
func (e *Emitter) Record(ctx context.Context, action domain.ActivityAction, session *domain.Session, actor domain.Actor) {
	if session == nil {
		return
	}
	entry := &domain.ActivityLogEntry{
		Action:         action,
		SessionDetails: session.Snapshot(),
		PerformedBy:    actor.Performer(),
		Timestamp:      e.now(),
	}
	if _, err := e.repo.Append(ctx, entry); err != nil {
		e.logger.Warn("failed to record activity",
			zap.String("action", string(action)),
			zap.String("session_id", session.ID.Hex()),
			zap.String("performed_by", entry.PerformedBy.UID),
			zap.Error(err),
		)
	}
}

// Discard is a Sink that records nothing.
type Discard struct{}

func (Discard) Record(context.Context, domain.ActivityAction, *domain.Session, domain.Actor) {}
