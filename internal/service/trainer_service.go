package service

import (
	"context"

	"alcyxob/studio-calendar/internal/domain"
	"alcyxob/studio-calendar/internal/repository"
	"alcyxob/studio-calendar/internal/schedule"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// TrainerInput is the editable part of a trainer.
type TrainerInput struct {
	Name         string               `json:"name" validate:"required"`
	Specialties  []string             `json:"specialties"`
	Availability domain.Availability  `json:"availability"`
	Status       domain.TrainerStatus `json:"status" validate:"omitempty,oneof=Active Inactive"`
}

type TrainerService interface {
	Create(ctx context.Context, in TrainerInput) (*domain.Trainer, error)
	Get(ctx context.Context, id primitive.ObjectID) (*domain.Trainer, error)
	List(ctx context.Context) ([]domain.Trainer, error)
	Update(ctx context.Context, id primitive.ObjectID, in TrainerInput) (*domain.Trainer, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type trainerService struct {
	trainerRepo repository.TrainerRepository
	sessionRepo repository.SessionRepository
	logger      *zap.Logger
}

// NewTrainerService creates a new instance of trainerService.
func NewTrainerService(trainerRepo repository.TrainerRepository, sessionRepo repository.SessionRepository, logger *zap.Logger) TrainerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &trainerService{
		trainerRepo: trainerRepo,
		sessionRepo: sessionRepo,
		logger:      logger.Named("trainers"),
	}
}

// validateAvailability checks weekday keys and that every shift is a
// well-formed, non-empty interval.
func validateAvailability(a domain.Availability) error {
	known := make(map[string]bool, len(domain.WeekdayKeys))
	for _, k := range domain.WeekdayKeys {
		known[k] = true
	}
	for day, ds := range a {
		if !known[day] {
			return validationErr("unknown weekday %q", day)
		}
		for _, sh := range ds.Shifts {
			if err := checkStruct(sh); err != nil {
				return err
			}
			if schedule.To24h(sh.Start) >= schedule.To24h(sh.End) {
				return validationErr("%s shift %s-%s ends before it starts", day, sh.Start, sh.End)
			}
		}
	}
	return nil
}

func (s *trainerService) Create(ctx context.Context, in TrainerInput) (*domain.Trainer, error) {
	// 1. Validate input
	if err := checkStruct(in); err != nil {
		return nil, err
	}
	if err := validateAvailability(in.Availability); err != nil {
		return nil, err
	}

	// 2. Save
	trainer := &domain.Trainer{
		Name:         in.Name,
		Specialties:  in.Specialties,
		Availability: in.Availability,
		Status:       in.Status,
	}
	if _, err := s.trainerRepo.Create(ctx, trainer); err != nil {
		return nil, storeErr("create trainer", err)
	}
	return trainer, nil
}

func (s *trainerService) Get(ctx context.Context, id primitive.ObjectID) (*domain.Trainer, error) {
	trainer, err := s.trainerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr("load trainer", err)
	}
	return trainer, nil
}

func (s *trainerService) List(ctx context.Context) ([]domain.Trainer, error) {
	trainers, err := s.trainerRepo.List(ctx)
	if err != nil {
		return nil, storeErr("list trainers", err)
	}
	return trainers, nil
}

// Update replaces the trainer's profile. A rename is propagated to the
// display name cached on their sessions.
func (s *trainerService) Update(ctx context.Context, id primitive.ObjectID, in TrainerInput) (*domain.Trainer, error) {
	if err := checkStruct(in); err != nil {
		return nil, err
	}
	if err := validateAvailability(in.Availability); err != nil {
		return nil, err
	}

	trainer, err := s.trainerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr("load trainer", err)
	}
	oldName := trainer.Name

	trainer.Name = in.Name
	trainer.Specialties = in.Specialties
	if in.Availability != nil {
		trainer.Availability = in.Availability
	}
	if in.Status != "" {
		trainer.Status = in.Status
	}
	if err := s.trainerRepo.Update(ctx, trainer); err != nil {
		return nil, storeErr("update trainer", err)
	}

	if oldName != trainer.Name {
		n, err := s.sessionRepo.UpdateDisplayName(ctx, repository.TrainerNameRef, trainer.ID, trainer.Name)
		if err != nil {
			s.logger.Warn("failed to refresh trainer name on sessions", zap.String("trainer_id", id.Hex()), zap.Error(err))
		} else {
			s.logger.Info("trainer renamed", zap.String("from", oldName), zap.String("to", trainer.Name), zap.Int64("sessions", n))
		}
	}
	return trainer, nil
}

// Delete removes the trainer immediately. Their sessions are kept.
func (s *trainerService) Delete(ctx context.Context, id primitive.ObjectID) error {
	if err := s.trainerRepo.Delete(ctx, id); err != nil {
		return storeErr("delete trainer", err)
	}
	return nil
}
