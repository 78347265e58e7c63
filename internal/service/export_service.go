package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"alcyxob/studio-calendar/internal/domain"
	"alcyxob/studio-calendar/internal/ics"
	"alcyxob/studio-calendar/internal/repository"
	"alcyxob/studio-calendar/internal/schedule"
	"alcyxob/studio-calendar/internal/storage"
	"alcyxob/studio-calendar/internal/view"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const calendarContentType = "text/calendar; charset=utf-8"

type ExportResult struct {
	Export      *domain.CalendarExport `json:"export"`
	DownloadURL string                 `json:"downloadUrl"`
}

// ExportService publishes a client's upcoming sessions as an iCalendar file.
type ExportService interface {
	ExportClientCalendar(ctx context.Context, actor domain.Actor) (*ExportResult, error)
}

type exportService struct {
	sessionRepo repository.SessionRepository
	serviceRepo repository.ServiceRepository
	exportRepo  repository.CalendarExportRepository
	fileStorage storage.FileStorage
	siteID      string
	loc         *time.Location
	logger      *zap.Logger
	now         func() time.Time
}

// NewExportService creates a new instance of exportService.
func NewExportService(
	sessionRepo repository.SessionRepository,
	serviceRepo repository.ServiceRepository,
	exportRepo repository.CalendarExportRepository,
	fileStorage storage.FileStorage,
	siteID string,
	loc *time.Location,
	logger *zap.Logger,
) ExportService {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &exportService{
		sessionRepo: sessionRepo,
		serviceRepo: serviceRepo,
		exportRepo:  exportRepo,
		fileStorage: fileStorage,
		siteID:      siteID,
		loc:         loc,
		logger:      logger.Named("export"),
		now:         time.Now,
	}
}

func (s *exportService) ExportClientCalendar(ctx context.Context, actor domain.Actor) (*ExportResult, error) {
	clientRef := actor.ClientRef()
	if clientRef.IsZero() {
		return nil, validationErr("calendar export needs a client identity")
	}

	// 1. Gather upcoming sessions
	now := s.now()
	today := schedule.ISODate(schedule.StartOfDay(now.In(s.loc)))
	sessions, err := s.sessionRepo.Find(ctx, repository.SessionFilter{
		ClientID:   clientRef,
		ClientName: actor.Name,
		FromDate:   today,
	})
	if err != nil {
		return nil, storeErr("load sessions", err)
	}
	sessions = view.ForActor(sessions, actor)
	view.SortChronological(sessions)

	services, err := s.serviceRepo.List(ctx)
	if err != nil {
		return nil, storeErr("list services", err)
	}
	durations := make(map[string]int, len(services))
	for i := range services {
		durations[services[i].Name] = services[i].Minutes()
	}

	// 2. Render
	events := ics.FromSessions(sessions, s.loc, func(name string) int { return durations[name] })
	doc := ics.Render(actor.Name+" sessions", events, now)

	// 3. Upload
	key := fmt.Sprintf("exports/%s/%s/%s.ics", s.siteID, clientRef.Hex(), uuid.NewString())
	if err := s.fileStorage.PutObject(ctx, key, calendarContentType, strings.NewReader(doc), int64(len(doc))); err != nil {
		return nil, fmt.Errorf("%w: upload calendar: %v", ErrStore, err)
	}

	previous, err := s.exportRepo.GetLatestForClient(ctx, clientRef)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		s.logger.Warn("failed to load previous export", zap.Error(err))
	}

	// 4. Record metadata
	export := &domain.CalendarExport{
		ClientID:     clientRef,
		S3ObjectKey:  key,
		SessionCount: len(events),
		Size:         int64(len(doc)),
		CreatedBy:    actor.Performer().UID,
	}
	if _, err := s.exportRepo.Create(ctx, export); err != nil {
		return nil, storeErr("record export", err)
	}

	// Only the latest export is kept in the bucket.
	if previous != nil && previous.S3ObjectKey != key {
		if err := s.fileStorage.DeleteObject(ctx, previous.S3ObjectKey); err != nil {
			s.logger.Warn("failed to delete previous export", zap.String("key", previous.S3ObjectKey), zap.Error(err))
		}
	}

	// 5. Hand out a short-lived link
	url, err := s.fileStorage.GeneratePresignedDownloadURL(ctx, key, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return nil, fmt.Errorf("%w: presign calendar: %v", ErrStore, err)
	}
	return &ExportResult{Export: export, DownloadURL: url}, nil
}
