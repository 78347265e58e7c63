package service

import (
	"context"

	"alcyxob/studio-calendar/internal/domain"
	"alcyxob/studio-calendar/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ServiceInput describes a bookable offering.
type ServiceInput struct {
	Name               string   `json:"name" validate:"required"`
	Duration           int      `json:"duration" validate:"omitempty,min=5,max=480"`
	Price              float64  `json:"price" validate:"min=0"`
	AssignedTrainerIDs []string `json:"assignedTrainerIds" validate:"dive,mongodb"`
}

// CatalogService manages the service catalog.
type CatalogService interface {
	Create(ctx context.Context, in ServiceInput) (*domain.Service, error)
	Get(ctx context.Context, id primitive.ObjectID) (*domain.Service, error)
	List(ctx context.Context) ([]domain.Service, error)
	Update(ctx context.Context, id primitive.ObjectID, in ServiceInput) (*domain.Service, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type catalogService struct {
	serviceRepo repository.ServiceRepository
	trainerRepo repository.TrainerRepository
	sessionRepo repository.SessionRepository
	logger      *zap.Logger
}

// NewCatalogService creates a new instance of catalogService.
func NewCatalogService(
	serviceRepo repository.ServiceRepository,
	trainerRepo repository.TrainerRepository,
	sessionRepo repository.SessionRepository,
	logger *zap.Logger,
) CatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &catalogService{
		serviceRepo: serviceRepo,
		trainerRepo: trainerRepo,
		sessionRepo: sessionRepo,
		logger:      logger.Named("catalog"),
	}
}

// trainerIDs parses the assigned trainer ids. Validation has already
// rejected malformed hex, so parse failures are skipped.
func (in ServiceInput) trainerIDs() []primitive.ObjectID {
	ids := make([]primitive.ObjectID, 0, len(in.AssignedTrainerIDs))
	for _, hex := range in.AssignedTrainerIDs {
		if id, err := primitive.ObjectIDFromHex(hex); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}

// Create validates the input and stores a new service.
func (s *catalogService) Create(ctx context.Context, in ServiceInput) (*domain.Service, error) {
	if err := checkStruct(in); err != nil {
		return nil, err
	}
	svc := &domain.Service{
		Name:               in.Name,
		Duration:           in.Duration,
		Price:              in.Price,
		AssignedTrainerIDs: in.trainerIDs(),
	}
	if _, err := s.serviceRepo.Create(ctx, svc); err != nil {
		return nil, storeErr("create service", err)
	}
	return svc, nil
}

// Get retrieves a service by its ID.
func (s *catalogService) Get(ctx context.Context, id primitive.ObjectID) (*domain.Service, error) {
	svc, err := s.serviceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr("load service", err)
	}
	return svc, nil
}

// List returns every service of the site.
func (s *catalogService) List(ctx context.Context) ([]domain.Service, error) {
	services, err := s.serviceRepo.List(ctx)
	if err != nil {
		return nil, storeErr("list services", err)
	}
	return services, nil
}

// Update saves the service. A rename rewrites the specialty lists of
// trainers and the service name cached on sessions.
func (s *catalogService) Update(ctx context.Context, id primitive.ObjectID, in ServiceInput) (*domain.Service, error) {
	if err := checkStruct(in); err != nil {
		return nil, err
	}
	// 1. Load the current document
	svc, err := s.serviceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr("load service", err)
	}
	oldName := svc.Name

	// 2. Apply and save

	svc.Name = in.Name
	if in.Duration > 0 {
		svc.Duration = in.Duration
	}
	svc.Price = in.Price
	svc.AssignedTrainerIDs = in.trainerIDs()
	if err := s.serviceRepo.Update(ctx, svc); err != nil {
		return nil, storeErr("update service", err)
	}

	// 3. Propagate a rename
	if oldName != svc.Name {
		trainers, err := s.trainerRepo.RenameSpecialty(ctx, oldName, svc.Name)
		if err != nil {
			return nil, storeErr("rename trainer specialties", err)
		}
		sessions, err := s.sessionRepo.UpdateDisplayName(ctx, repository.ServiceNameRef, svc.ID, svc.Name)
		if err != nil {
			s.logger.Warn("failed to refresh service name on sessions", zap.String("service_id", id.Hex()), zap.Error(err))
		}
		s.logger.Info("service renamed",
			zap.String("from", oldName),
			zap.String("to", svc.Name),
			zap.Int64("trainers", trainers),
			zap.Int64("sessions", sessions),
		)
	}
	return svc, nil
}

// Delete removes the service. Sessions and trainer specialties that still
// name it are left as they are.
func (s *catalogService) Delete(ctx context.Context, id primitive.ObjectID) error {
	if err := s.serviceRepo.Delete(ctx, id); err != nil {
		return storeErr("delete service", err)
	}
	return nil
}
