package service

import (
	"context"
	"time"

	"alcyxob/studio-calendar/internal/activity"
	"alcyxob/studio-calendar/internal/domain"
	"alcyxob/studio-calendar/internal/repository"
	"alcyxob/studio-calendar/internal/schedule"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type ClientInput struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"omitempty,email"`
	Phone string `json:"phone"`
}

type ClientService interface {
	Create(ctx context.Context, in ClientInput) (*domain.Client, error)
	Get(ctx context.Context, id primitive.ObjectID) (*domain.Client, error)
	List(ctx context.Context) ([]domain.Client, error)
	Update(ctx context.Context, id primitive.ObjectID, in ClientInput) (*domain.Client, error)
	// Delete removes the client together with their sessions from today on
	// and returns how many sessions were cancelled.
	Delete(ctx context.Context, actor domain.Actor, id primitive.ObjectID) (int64, error)
}

type clientService struct {
	clientRepo  repository.ClientRepository
	sessionRepo repository.SessionRepository
	sink        activity.Sink
	loc         *time.Location
	logger      *zap.Logger
	now         func() time.Time
}

// NewClientService creates a new instance of clientService.
func NewClientService(
	clientRepo repository.ClientRepository,
	sessionRepo repository.SessionRepository,
	sink activity.Sink,
	loc *time.Location,
	logger *zap.Logger,
) ClientService {
	if sink == nil {
		sink = activity.Discard{}
	}
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &clientService{
		clientRepo:  clientRepo,
		sessionRepo: sessionRepo,
		sink:        sink,
		loc:         loc,
		logger:      logger.Named("clients"),
		now:         time.Now,
	}
}

func (s *clientService) Create(ctx context.Context, in ClientInput) (*domain.Client, error) {
	if err := checkStruct(in); err != nil {
		return nil, err
	}
	client := &domain.Client{Name: in.Name, Email: in.Email, Phone: in.Phone}
	if _, err := s.clientRepo.Create(ctx, client); err != nil {
		return nil, storeErr("create client", err)
	}
	return client, nil
}

func (s *clientService) Get(ctx context.Context, id primitive.ObjectID) (*domain.Client, error) {
	client, err := s.clientRepo.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr("load client", err)
	}
	return client, nil
}

func (s *clientService) List(ctx context.Context) ([]domain.Client, error) {
	clients, err := s.clientRepo.List(ctx)
	if err != nil {
		return nil, storeErr("list clients", err)
	}
	return clients, nil
}

func (s *clientService) Update(ctx context.Context, id primitive.ObjectID, in ClientInput) (*domain.Client, error) {
	if err := checkStruct(in); err != nil {
		return nil, err
	}
	client, err := s.clientRepo.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr("load client", err)
	}
	oldName := client.Name
	client.Name, client.Email, client.Phone = in.Name, in.Email, in.Phone
	if err := s.clientRepo.Update(ctx, client); err != nil {
		return nil, storeErr("update client", err)
	}

	if oldName != client.Name {
		if _, err := s.sessionRepo.UpdateDisplayName(ctx, repository.ClientNameRef, client.ID, client.Name); err != nil {
			s.logger.Warn("failed to refresh client name on sessions", zap.String("client_id", id.Hex()), zap.Error(err))
		}
	}
	return client, nil
}

// Delete cascades to the client's sessions dated today or later, logging
// one cancellation per session. Sessions go first so a failed call can be
// repeated.
func (s *clientService) Delete(ctx context.Context, actor domain.Actor, id primitive.ObjectID) (int64, error) {
	client, err := s.clientRepo.GetByID(ctx, id)
	if err != nil {
		return 0, storeErr("load client", err)
	}

	// 1. Collect future sessions, including legacy name-only records
	today := schedule.ISODate(schedule.StartOfDay(s.now().In(s.loc)))
	sessions, err := s.sessionRepo.Find(ctx, repository.SessionFilter{
		ClientID:   client.ID,
		ClientName: client.Name,
		FromDate:   today,
	})
	if err != nil {
		return 0, storeErr("load client sessions", err)
	}

	// 2. Delete them in chunked batches
	ids := make([]primitive.ObjectID, len(sessions))
	for i := range sessions {
		ids[i] = sessions[i].ID
	}
	n, err := s.sessionRepo.DeleteByIDs(ctx, ids)
	if err != nil {
		return n, storeErr("delete client sessions", err)
	}
	for i := range sessions {
		s.sink.Record(ctx, domain.ActionCancelled, &sessions[i], actor)
	}

	// 3. Delete the client
	if err := s.clientRepo.Delete(ctx, client.ID); err != nil {
		return n, storeErr("delete client", err)
	}
	s.logger.Info("client deleted", zap.String("client", client.Name), zap.Int64("cancelled_sessions", n))
	return n, nil
}
