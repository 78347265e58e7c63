package service

import (
	"context"

	"alcyxob/studio-calendar/internal/domain"
	"alcyxob/studio-calendar/internal/repository"
	"alcyxob/studio-calendar/internal/schedule"
	"alcyxob/studio-calendar/internal/view"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func (s *bookingService) sessionsOn(ctx context.Context, trainer *domain.Trainer, date string) ([]domain.Session, error) {
	sessions, err := s.deps.Sessions.Find(ctx, repository.SessionFilter{Date: date})
	if err != nil {
		return nil, storeErr("load sessions", err)
	}
	return view.OnDate(sessions, trainer, date), nil
}

// SessionsOnDay lists a trainer's bookings on date. It backs the off-day
// reconciliation view.
func (s *bookingService) SessionsOnDay(ctx context.Context, trainerID primitive.ObjectID, date string) ([]domain.Session, error) {
	d, err := s.parseDate("date", date)
	if err != nil {
		return nil, err
	}
	trainer, err := s.deps.Trainers.GetByID(ctx, trainerID)
	if err != nil {
		return nil, storeErr("load trainer", err)
	}
	return s.sessionsOn(ctx, trainer, schedule.ISODate(d))
}

// AvailableTrainers lists the trainers who can take the slot: active,
// teaching the service, working that hour, not on an off-day and not
// already booked. Slots outside the actor's window yield no trainers.
func (s *bookingService) AvailableTrainers(ctx context.Context, actor domain.Actor, q AvailabilityQuery) ([]domain.Trainer, error) {
	if err := checkStruct(q); err != nil {
		return nil, err
	}
	date, err := s.parseDate("date", q.Date)
	if err != nil {
		return nil, err
	}
	if s.checkWindow(s.policies.For(actor.Role), date) != nil {
		return []domain.Trainer{}, nil
	}
	var exclude primitive.ObjectID
	if q.ExcludeTrainerID != "" {
		if exclude, err = parseID("excludeTrainerId", q.ExcludeTrainerID); err != nil {
			return nil, err
		}
	}

	iso := schedule.ISODate(date)
	trainers, err := s.deps.Trainers.List(ctx)
	if err != nil {
		return nil, storeErr("list trainers", err)
	}
	offDays, err := s.deps.OffDays.ListBetween(ctx, iso, schedule.ISODate(date.AddDate(0, 0, 1)))
	if err != nil {
		return nil, storeErr("list off-days", err)
	}
	sessions, err := s.deps.Sessions.Find(ctx, repository.SessionFilter{Date: iso})
	if err != nil {
		return nil, storeErr("load sessions", err)
	}

	slot := schedule.To12h(q.Time)
	candidates := schedule.AvailableTrainers(trainers, schedule.SlotQuery{
		Date:           date,
		Time:           slot,
		ServiceName:    q.ServiceName,
		ExcludeTrainer: exclude,
	}, offDays)

	out := make([]domain.Trainer, 0, len(candidates))
	for i := range candidates {
		if !schedule.SlotTaken(sessions, &candidates[i], iso, slot, primitive.NilObjectID) {
			out = append(out, candidates[i])
		}
	}
	return out, nil
}

// Week builds the calendar grid for the week containing weekStart (today
// when empty). A zero trainerID shows all trainers.
func (s *bookingService) Week(ctx context.Context, actor domain.Actor, weekStart string, trainerID primitive.ObjectID) (*view.Week, error) {
	start := s.today()
	if weekStart != "" {
		d, err := s.parseDate("weekStart", weekStart)
		if err != nil {
			return nil, err
		}
		start = d
	}
	monday := schedule.StartOfDay(schedule.StartOfWeek(start))
	from, to := schedule.ISODate(monday), schedule.ISODate(monday.AddDate(0, 0, 7))

	trainers, err := s.deps.Trainers.List(ctx)
	if err != nil {
		return nil, storeErr("list trainers", err)
	}
	var selected *domain.Trainer
	if !trainerID.IsZero() {
		for i := range trainers {
			if trainers[i].ID == trainerID {
				selected = &trainers[i]
				break
			}
		}
		if selected == nil {
			return nil, notFoundErr("trainer")
		}
	}

	sessions, err := s.deps.Sessions.Find(ctx, repository.SessionFilter{FromDate: from, ToDate: to})
	if err != nil {
		return nil, storeErr("load sessions", err)
	}
	offDays, err := s.deps.OffDays.ListBetween(ctx, from, to)
	if err != nil {
		return nil, storeErr("list off-days", err)
	}

	return view.BuildWeek(view.WeekParams{
		WeekStart: monday,
		Today:     s.today(),
		Trainers:  trainers,
		Trainer:   selected,
		Sessions:  sessions,
		OffDays:   offDays,
		Policy:    s.policies.For(actor.Role),
		FirstHour: s.first,
		LastHour:  s.last,
	}), nil
}

// ClientSessions splits the actor's own sessions into upcoming and past.
// Legacy records are matched by display name as well as id.
func (s *bookingService) ClientSessions(ctx context.Context, actor domain.Actor) (view.Partition, error) {
	sessions, err := s.deps.Sessions.Find(ctx, repository.SessionFilter{
		ClientID:   actor.ClientRef(),
		ClientName: actor.Name,
	})
	if err != nil {
		return view.Partition{}, storeErr("load sessions", err)
	}
	return view.PartitionByToday(view.ForActor(sessions, actor), s.today()), nil
}

// Dashboard summarizes today. Trainer logins only see their own sessions.
func (s *bookingService) Dashboard(ctx context.Context, actor domain.Actor) (view.Dashboard, error) {
	trainers, err := s.deps.Trainers.List(ctx)
	if err != nil {
		return view.Dashboard{}, storeErr("list trainers", err)
	}
	clients, err := s.deps.Clients.List(ctx)
	if err != nil {
		return view.Dashboard{}, storeErr("list clients", err)
	}
	today := s.today()
	sessions, err := s.deps.Sessions.Find(ctx, repository.SessionFilter{FromDate: schedule.ISODate(today)})
	if err != nil {
		return view.Dashboard{}, storeErr("load sessions", err)
	}

	var own *domain.Trainer
	if actor.Role == domain.RoleTrainer && actor.TrainerID != nil {
		for i := range trainers {
			if trainers[i].ID == *actor.TrainerID {
				own = &trainers[i]
				break
			}
		}
		if own == nil {
			// Unlinked trainer login: nothing of theirs to show.
			own = &domain.Trainer{ID: *actor.TrainerID}
		}
	}
	return view.BuildDashboard(trainers, clients, sessions, own, today), nil
}

// Activity returns filtered activity log entries, newest first.
func (s *bookingService) Activity(ctx context.Context, filter repository.ActivityFilter, limit int64) ([]domain.ActivityLogEntry, error) {
	entries, err := s.deps.Activity.List(ctx, filter, limit)
	if err != nil {
		return nil, storeErr("list activity", err)
	}
	return entries, nil
}

// Subscribe streams the sessions visible to actor: their own for clients,
// their calendar for linked trainers, everything for staff.
func (s *bookingService) Subscribe(ctx context.Context, actor domain.Actor) (<-chan repository.SessionSnapshot, error) {
	var filter repository.SessionFilter
	switch {
	case s.policies.For(actor.Role).OwnSessionsOnly:
		filter.ClientID = actor.ClientRef()
		filter.ClientName = actor.Name
	case actor.Role == domain.RoleTrainer && actor.TrainerID != nil:
		filter.TrainerID = *actor.TrainerID
	}
	ch, err := s.deps.Sessions.Watch(ctx, filter)
	if err != nil {
		return nil, storeErr("subscribe to sessions", err)
	}
	return ch, nil
}
