package service

import (
	"context"

	"alcyxob/studio-calendar/internal/repository"
	"alcyxob/studio-calendar/internal/view"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// AuditReport lists trainer slots holding more than one session.
type AuditReport struct {
	Scanned   int                   `json:"scanned"`
	Groups    []view.DuplicateGroup `json:"groups"`
	Removable int                   `json:"removable"`
}

// AuditService finds and removes double bookings left behind by races or
// imports.
type AuditService interface {
	FindDuplicates(ctx context.Context) (*AuditReport, error)
	// RemoveDuplicates keeps the newest session of each duplicate slot and
	// deletes the rest.
	RemoveDuplicates(ctx context.Context) (*AuditReport, int64, error)
}

type auditService struct {
	sessionRepo repository.SessionRepository
	logger      *zap.Logger
}

func NewAuditService(sessionRepo repository.SessionRepository, logger *zap.Logger) AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &auditService{sessionRepo: sessionRepo, logger: logger.Named("audit")}
}

func (s *auditService) FindDuplicates(ctx context.Context) (*AuditReport, error) {
	sessions, err := s.sessionRepo.Find(ctx, repository.SessionFilter{})
	if err != nil {
		return nil, storeErr("load sessions", err)
	}
	report := &AuditReport{Scanned: len(sessions), Groups: view.DuplicateSlots(sessions)}
	if report.Groups == nil {
		report.Groups = []view.DuplicateGroup{}
	}
	for _, g := range report.Groups {
		report.Removable += len(g.Extra)
	}
	return report, nil
}

func (s *auditService) RemoveDuplicates(ctx context.Context) (*AuditReport, int64, error) {
	report, err := s.FindDuplicates(ctx)
	if err != nil {
		return nil, 0, err
	}
	if report.Removable == 0 {
		return report, 0, nil
	}

	ids := make([]primitive.ObjectID, 0, report.Removable)
	for _, g := range report.Groups {
		for _, extra := range g.Extra {
			ids = append(ids, extra.ID)
		}
	}
	n, err := s.sessionRepo.DeleteByIDs(ctx, ids)
	if err != nil {
		return report, n, storeErr("delete duplicates", err)
	}
	s.logger.Info("duplicate sessions removed", zap.Int("groups", len(report.Groups)), zap.Int64("deleted", n))
	return report, n, nil
}
