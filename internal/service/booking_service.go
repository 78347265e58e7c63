package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"alcyxob/studio-calendar/internal/activity"
	"alcyxob/studio-calendar/internal/domain"
	"alcyxob/studio-calendar/internal/repository"
	"alcyxob/studio-calendar/internal/schedule"
	"alcyxob/studio-calendar/internal/view"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const seriesIDPrefix = "series_"

// BookingRequest selects one slot. Client actors book for themselves and
// leave the client fields empty.
type BookingRequest struct {
	ClientName  string `json:"clientName"`
	ClientID    string `json:"clientId,omitempty" validate:"omitempty,mongodb"`
	TrainerID   string `json:"trainerId" validate:"required,mongodb"`
	ServiceName string `json:"serviceName" validate:"required"`
	Date        string `json:"date" validate:"required,datetime=2006-01-02"`
	Time        string `json:"time" validate:"required,clock"`
}

// RecurrenceRequest is the wire form of a recurrence rule. Days are
// Monday-indexed and only read for weekly rules.
type RecurrenceRequest struct {
	Frequency string `json:"frequency" validate:"required,oneof=daily weekly"`
	Days      []int  `json:"days" validate:"dive,min=0,max=6"`
	EndType   string `json:"endType" validate:"omitempty,oneof=never on_date"`
	EndDate   string `json:"endDate" validate:"omitempty,datetime=2006-01-02"`
}

// SessionChanges lists the mutable fields of a session. Empty fields are
// left unchanged.
type SessionChanges struct {
	TrainerID   string `json:"trainerId,omitempty" validate:"omitempty,mongodb"`
	ServiceName string `json:"serviceName,omitempty"`
	Date        string `json:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Time        string `json:"time,omitempty" validate:"omitempty,clock"`
}

type SeriesResult struct {
	SeriesID string           `json:"seriesId,omitempty"`
	Sessions []domain.Session `json:"sessions"`
	Count    int              `json:"count"`
}

// OffDayToggle reports the outcome of ToggleOffDay. AffectedSessions lists
// bookings already on a newly blocked date; they are not cancelled.
type OffDayToggle struct {
	Created          bool             `json:"created"`
	OffDay           *domain.OffDay   `json:"offDay"`
	AffectedSessions []domain.Session `json:"affectedSessions"`
}

// AvailabilityQuery asks which trainers can take a slot.
type AvailabilityQuery struct {
	Date             string `form:"date" validate:"required,datetime=2006-01-02"`
	Time             string `form:"time" validate:"required,clock"`
	ServiceName      string `form:"service"`
	ExcludeTrainerID string `form:"excludeTrainerId" validate:"omitempty,mongodb"`
}

// BookingService creates, reschedules and cancels sessions and answers the
// calendar queries built on them.
type BookingService interface {
	CreateSingle(ctx context.Context, actor domain.Actor, req BookingRequest) (*domain.Session, error)
	CreateSeries(ctx context.Context, actor domain.Actor, req BookingRequest, rec RecurrenceRequest) (*SeriesResult, error)
	EditSingle(ctx context.Context, actor domain.Actor, sessionID primitive.ObjectID, changes SessionChanges) (*domain.Session, error)
	EditSeriesForward(ctx context.Context, actor domain.Actor, anchorID primitive.ObjectID, changes SessionChanges) (*SeriesResult, error)
	DeleteSingle(ctx context.Context, actor domain.Actor, sessionID primitive.ObjectID) error
	DeleteSeriesForward(ctx context.Context, actor domain.Actor, anchorID primitive.ObjectID) (int64, error)
	ToggleOffDay(ctx context.Context, actor domain.Actor, trainerID primitive.ObjectID, date string) (*OffDayToggle, error)

	SessionsOnDay(ctx context.Context, trainerID primitive.ObjectID, date string) ([]domain.Session, error)
	AvailableTrainers(ctx context.Context, actor domain.Actor, q AvailabilityQuery) ([]domain.Trainer, error)
	Week(ctx context.Context, actor domain.Actor, weekStart string, trainerID primitive.ObjectID) (*view.Week, error)
	ClientSessions(ctx context.Context, actor domain.Actor) (view.Partition, error)
	Dashboard(ctx context.Context, actor domain.Actor) (view.Dashboard, error)
	Activity(ctx context.Context, filter repository.ActivityFilter, limit int64) ([]domain.ActivityLogEntry, error)
	Subscribe(ctx context.Context, actor domain.Actor) (<-chan repository.SessionSnapshot, error)
}

// BookingDeps are the collaborators of the booking service.
type BookingDeps struct {
	Sessions repository.SessionRepository
	Trainers repository.TrainerRepository
	Clients  repository.ClientRepository
	Services repository.ServiceRepository
	OffDays  repository.OffDayRepository
	Activity repository.ActivityRepository
	Sink     activity.Sink
}

type BookingOptions struct {
	Location      *time.Location
	Policies      schedule.PolicyTable
	FirstSlotHour int
	LastSlotHour  int
}

type bookingService struct {
	deps     BookingDeps
	loc      *time.Location
	policies schedule.PolicyTable
	first    int
	last     int
	logger   *zap.Logger
	now      func() time.Time
}

// NewBookingService creates a new instance of bookingService.
func NewBookingService(deps BookingDeps, opts BookingOptions, logger *zap.Logger) BookingService {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Policies == nil {
		opts.Policies = schedule.NewPolicyTable(14, 730)
	}
	if opts.LastSlotHour == 0 {
		opts.FirstSlotHour, opts.LastSlotHour = 6, 22
	}
	if deps.Sink == nil {
		deps.Sink = activity.Discard{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &bookingService{
		deps:     deps,
		loc:      opts.Location,
		policies: opts.Policies,
		first:    opts.FirstSlotHour,
		last:     opts.LastSlotHour,
		logger:   logger.Named("booking"),
		now:      time.Now,
	}
}

// === Helpers ===

func (s *bookingService) today() time.Time {
	return schedule.StartOfDay(s.now().In(s.loc))
}

func (s *bookingService) parseDate(field, value string) (time.Time, error) {
	d, err := schedule.ParseISODate(value, s.loc)
	if err != nil {
		return time.Time{}, validationErr("%s must be a YYYY-MM-DD date", field)
	}
	return d, nil
}

func parseID(field, hex string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, validationErr("%s is not a valid id", field)
	}
	return id, nil
}

func slotKeyOf(date, slot string) string {
	return date + "|" + schedule.To24h(slot)
}

// takenSlots indexes the (date, time) pairs already booked for trainer.
func takenSlots(sessions []domain.Session, trainer *domain.Trainer) map[string]bool {
	taken := make(map[string]bool)
	for _, s := range view.ForTrainer(sessions, trainer) {
		taken[slotKeyOf(s.DateKey(), s.Time)] = true
	}
	return taken
}

// checkWindow enforces the rolling booking window of windowed roles.
func (s *bookingService) checkWindow(policy schedule.RolePolicy, date time.Time) error {
	if policy.BookingWindowDays <= 0 {
		return nil
	}
	today := s.today()
	if date.Before(today) {
		return validationErr("date %s is in the past", schedule.ISODate(date))
	}
	if !policy.WithinWindow(date, today) {
		return validationErr("date %s is outside the %d-day booking window", schedule.ISODate(date), policy.BookingWindowDays)
	}
	return nil
}

func (s *bookingService) trainerByHex(ctx context.Context, hex string) (*domain.Trainer, error) {
	id, err := parseID("trainerId", hex)
	if err != nil {
		return nil, err
	}
	trainer, err := s.deps.Trainers.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr("load trainer", err)
	}
	return trainer, nil
}

// trainerOf resolves the trainer of an existing session, by id or by the
// legacy display name.
func (s *bookingService) trainerOf(ctx context.Context, session *domain.Session) (*domain.Trainer, error) {
	var (
		trainer *domain.Trainer
		err     error
	)
	if !session.TrainerID.IsZero() {
		trainer, err = s.deps.Trainers.GetByID(ctx, session.TrainerID)
	} else {
		trainer, err = s.deps.Trainers.GetByName(ctx, session.TrainerName)
	}
	if err != nil {
		return nil, storeErr("load trainer", err)
	}
	return trainer, nil
}

func (s *bookingService) serviceByName(ctx context.Context, name string) (*domain.Service, error) {
	svc, err := s.deps.Services.GetByName(ctx, name)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, validationErr("unknown service %q", name)
	}
	if err != nil {
		return nil, storeErr("load service", err)
	}
	return svc, nil
}

// resolveClient returns the client identity of a booking. Self-booking
// actors book as themselves; everyone else must name an existing client.
func (s *bookingService) resolveClient(ctx context.Context, actor domain.Actor, policy schedule.RolePolicy, req BookingRequest) (string, primitive.ObjectID, error) {
	if !policy.RequireClientLookup {
		return actor.Name, actor.ClientRef(), nil
	}

	var (
		client *domain.Client
		err    error
	)
	switch {
	case req.ClientID != "":
		id, perr := parseID("clientId", req.ClientID)
		if perr != nil {
			return "", primitive.NilObjectID, perr
		}
		client, err = s.deps.Clients.GetByID(ctx, id)
	case req.ClientName != "":
		client, err = s.deps.Clients.GetByName(ctx, req.ClientName)
	default:
		return "", primitive.NilObjectID, validationErr("a client must be selected")
	}
	if errors.Is(err, repository.ErrNotFound) {
		return "", primitive.NilObjectID, validationErr("unknown client %q", req.ClientName+req.ClientID)
	}
	if err != nil {
		return "", primitive.NilObjectID, storeErr("load client", err)
	}
	return client.Name, client.ID, nil
}

func (s *bookingService) offDaysOn(ctx context.Context, trainerID primitive.ObjectID, date string) ([]domain.OffDay, error) {
	od, err := s.deps.OffDays.Get(ctx, trainerID, date)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr("load off-days", err)
	}
	return []domain.OffDay{*od}, nil
}

func (s *bookingService) checkBookable(ctx context.Context, trainer *domain.Trainer, date time.Time, slot string) error {
	if !trainer.IsActive() {
		return validationErr("trainer %s is not taking bookings", trainer.Name)
	}
	offDays, err := s.offDaysOn(ctx, trainer.ID, schedule.ISODate(date))
	if err != nil {
		return err
	}
	if !schedule.IsBookable(trainer, date, slot, offDays) {
		return validationErr("%s is not available on %s at %s", trainer.Name, schedule.ISODate(date), slot)
	}
	return nil
}

// checkFree is the double-booking guard. ignore skips the session being
// edited.
func (s *bookingService) checkFree(ctx context.Context, trainer *domain.Trainer, date, slot string, ignore primitive.ObjectID) error {
	existing, err := s.deps.Sessions.Find(ctx, repository.SessionFilter{Date: date})
	if err != nil {
		return storeErr("load sessions", err)
	}
	if schedule.SlotTaken(existing, trainer, date, slot, ignore) {
		return fmt.Errorf("%w: %s already has a session on %s at %s", ErrConflict, trainer.Name, date, slot)
	}
	return nil
}

// loadForChange loads a session the actor wants to mutate and enforces
// ownership for roles limited to their own sessions.
func (s *bookingService) loadForChange(ctx context.Context, actor domain.Actor, policy schedule.RolePolicy, id primitive.ObjectID) (*domain.Session, error) {
	if !policy.CanBook {
		return nil, forbiddenErr("%s cannot change bookings", actor.Role)
	}
	session, err := s.deps.Sessions.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr("load session", err)
	}
	if policy.OwnSessionsOnly && !actor.Owns(session) {
		return nil, forbiddenErr("session belongs to another client")
	}
	return session, nil
}

// === Create ===

type slotBooking struct {
	trainer *domain.Trainer
	date    time.Time
	session domain.Session
}

// prepare validates a booking request and resolves it into a session
// template. The double-booking guard is left to the caller.
func (s *bookingService) prepare(ctx context.Context, actor domain.Actor, policy schedule.RolePolicy, req BookingRequest) (*slotBooking, error) {
	// 1. Validate input
	if err := checkStruct(req); err != nil {
		return nil, err
	}
	date, err := s.parseDate("date", req.Date)
	if err != nil {
		return nil, err
	}

	// 2. Booking window
	if err := s.checkWindow(policy, date); err != nil {
		return nil, err
	}

	// 3. Resolve references
	trainer, err := s.trainerByHex(ctx, req.TrainerID)
	if err != nil {
		return nil, err
	}
	clientName, clientID, err := s.resolveClient(ctx, actor, policy, req)
	if err != nil {
		return nil, err
	}
	svc, err := s.serviceByName(ctx, req.ServiceName)
	if err != nil {
		return nil, err
	}

	// 4. Availability
	slot := schedule.To12h(req.Time)
	if err := s.checkBookable(ctx, trainer, date, slot); err != nil {
		return nil, err
	}

	return &slotBooking{
		trainer: trainer,
		date:    date,
		session: domain.Session{
			ClientName:  clientName,
			ClientID:    clientID,
			TrainerName: trainer.Name,
			TrainerID:   trainer.ID,
			ServiceName: svc.Name,
			ServiceID:   svc.ID,
			Time:        slot,
			Day:         schedule.WeekdayIndexOf(date),
			Date:        schedule.ISODate(date),
			Status:      domain.StatusScheduled,
		},
	}, nil
}

// CreateSingle books one session.
func (s *bookingService) CreateSingle(ctx context.Context, actor domain.Actor, req BookingRequest) (*domain.Session, error) {
	policy := s.policies.For(actor.Role)
	if !policy.CanBook {
		return nil, forbiddenErr("%s cannot create bookings", actor.Role)
	}

	b, err := s.prepare(ctx, actor, policy, req)
	if err != nil {
		return nil, err
	}
	if err := s.checkFree(ctx, b.trainer, b.session.Date, b.session.Time, primitive.NilObjectID); err != nil {
		return nil, err
	}

	session := b.session
	if _, err := s.deps.Sessions.Create(ctx, &session); err != nil {
		return nil, storeErr("create session", err)
	}

	s.deps.Sink.Record(ctx, domain.ActionBooked, &session, actor)
	return &session, nil
}

// CreateSeries materializes a recurring series. The whole series is
// rejected when any instance collides with an existing booking.
func (s *bookingService) CreateSeries(ctx context.Context, actor domain.Actor, req BookingRequest, rec RecurrenceRequest) (*SeriesResult, error) {
	policy := s.policies.For(actor.Role)
	if !policy.CanBook {
		return nil, forbiddenErr("%s cannot create bookings", actor.Role)
	}

	// 1. Validate the rule
	if err := checkStruct(rec); err != nil {
		return nil, err
	}
	rule := schedule.Rule{
		Frequency: schedule.Frequency(rec.Frequency),
		Days:      schedule.NormalizeDays(rec.Days),
		EndType:   schedule.EndType(rec.EndType),
	}
	if rule.Frequency == schedule.Weekly && len(rule.Days) == 0 {
		return nil, validationErr("weekly recurrence needs at least one day")
	}
	if rec.EndDate != "" {
		until, err := s.parseDate("endDate", rec.EndDate)
		if err != nil {
			return nil, err
		}
		rule.Until = until
	}
	if rule.EndType == "" {
		rule.EndType = schedule.EndOnDate
		if rule.Until.IsZero() {
			rule.EndType = schedule.EndNever
		}
	}
	if rule.EndType == schedule.EndOnDate && rule.Until.IsZero() {
		return nil, validationErr("endDate is required when the series ends on a date")
	}

	// 2. Resolve the anchor slot
	b, err := s.prepare(ctx, actor, policy, req)
	if err != nil {
		return nil, err
	}

	// 3. Expand
	today := s.today()
	end := policy.SeriesEnd(rule, today)
	occurrences := schedule.Expand(rule, b.date, end, today)
	if len(occurrences) == 0 {
		return nil, validationErr("recurrence produces no sessions before %s", schedule.ISODate(end))
	}

	// 4. Conflict pre-check over the whole span
	first := occurrences[0].Date
	for _, o := range occurrences {
		if o.Date.Before(first) {
			first = o.Date
		}
	}
	existing, err := s.deps.Sessions.Find(ctx, repository.SessionFilter{
		FromDate: schedule.ISODate(first),
		ToDate:   schedule.ISODate(end.AddDate(0, 0, 1)),
	})
	if err != nil {
		return nil, storeErr("load sessions", err)
	}
	taken := takenSlots(existing, b.trainer)
	for _, o := range occurrences {
		if iso := schedule.ISODate(o.Date); taken[slotKeyOf(iso, b.session.Time)] {
			return nil, fmt.Errorf("%w: %s already has a session on %s at %s", ErrConflict, b.trainer.Name, iso, b.session.Time)
		}
	}

	// 5. Write in chunked batches
	seriesID := seriesIDPrefix + uuid.NewString()
	sessions := make([]domain.Session, len(occurrences))
	anchor := b.session
	anchor.SeriesID = seriesID
	for i, o := range occurrences {
		session := b.session
		session.Date = schedule.ISODate(o.Date)
		session.Day = o.Weekday
		session.SeriesID = seriesID
		sessions[i] = session
	}

	n, err := s.deps.Sessions.CreateMany(ctx, sessions)
	if err != nil {
		// A failed write leaves no member of the series behind.
		removed, cleanupErr := s.deps.Sessions.DeleteMatching(ctx, repository.SessionFilter{SeriesID: seriesID})
		fields := []zap.Field{
			zap.String("series_id", seriesID),
			zap.Int("written", n),
			zap.Int("planned", len(sessions)),
			zap.Int64("rolled_back", removed),
			zap.Error(err),
		}
		if cleanupErr != nil {
			fields = append(fields, zap.NamedError("rollback_error", cleanupErr))
			s.logger.Error("series creation incomplete, rollback failed", fields...)
			return &SeriesResult{SeriesID: seriesID, Count: n - int(removed)},
				fmt.Errorf("%w (%d of %d sessions written, rollback failed: %v)", storeErr("create series", err), n, len(sessions), cleanupErr)
		}
		s.logger.Error("series creation failed, rolled back", fields...)
		return nil, fmt.Errorf("%w (%d of %d sessions written and rolled back)", storeErr("create series", err), n, len(sessions))
	}

	// 6. One activity event for the whole series, on the slot the actor picked
	for i := range sessions {
		if sessions[i].Date == b.session.Date {
			anchor = sessions[i]
			break
		}
	}
	s.deps.Sink.Record(ctx, domain.ActionBooked, &anchor, actor)
	s.logger.Info("series created",
		zap.String("series_id", seriesID),
		zap.String("trainer", b.trainer.Name),
		zap.Int("sessions", n),
	)
	return &SeriesResult{SeriesID: seriesID, Sessions: sessions, Count: n}, nil
}

// === Edit ===

// EditSingle reschedules one session.
func (s *bookingService) EditSingle(ctx context.Context, actor domain.Actor, sessionID primitive.ObjectID, changes SessionChanges) (*domain.Session, error) {
	policy := s.policies.For(actor.Role)
	if err := checkStruct(changes); err != nil {
		return nil, err
	}
	session, err := s.loadForChange(ctx, actor, policy, sessionID)
	if err != nil {
		return nil, err
	}

	// 1. Apply changes
	updated := *session
	trainer, err := s.applyTrainerAndService(ctx, &updated, changes)
	if err != nil {
		return nil, err
	}
	if changes.Time != "" {
		updated.Time = schedule.To12h(changes.Time)
	}
	dateChanged := changes.Date != "" && changes.Date != session.DateKey()
	if dateChanged {
		updated.Date = changes.Date
	}
	date, err := s.parseDate("date", updated.DateKey())
	if err != nil {
		return nil, err
	}
	updated.Day = schedule.WeekdayIndexOf(date)

	// 2. Re-check the slot when it moved
	if dateChanged {
		if err := s.checkWindow(policy, date); err != nil {
			return nil, err
		}
	}
	moved := dateChanged ||
		updated.TrainerID != session.TrainerID ||
		schedule.To24h(updated.Time) != schedule.To24h(session.Time)
	if moved {
		if err := s.checkBookable(ctx, trainer, date, updated.Time); err != nil {
			return nil, err
		}
		if err := s.checkFree(ctx, trainer, updated.DateKey(), updated.Time, session.ID); err != nil {
			return nil, err
		}
	}

	// 3. Persist and log
	if err := s.deps.Sessions.Update(ctx, &updated); err != nil {
		return nil, storeErr("update session", err)
	}
	s.deps.Sink.Record(ctx, domain.ActionRescheduled, &updated, actor)
	return &updated, nil
}

// applyTrainerAndService resolves the trainer and service a session ends up
// with and writes them onto it.
func (s *bookingService) applyTrainerAndService(ctx context.Context, session *domain.Session, changes SessionChanges) (*domain.Trainer, error) {
	var (
		trainer *domain.Trainer
		err     error
	)
	if changes.TrainerID != "" {
		trainer, err = s.trainerByHex(ctx, changes.TrainerID)
	} else {
		trainer, err = s.trainerOf(ctx, session)
	}
	if err != nil {
		return nil, err
	}
	session.TrainerID = trainer.ID
	session.TrainerName = trainer.Name

	if changes.ServiceName != "" && changes.ServiceName != session.ServiceName {
		svc, err := s.serviceByName(ctx, changes.ServiceName)
		if err != nil {
			return nil, err
		}
		session.ServiceName = svc.Name
		session.ServiceID = svc.ID
	}
	return trainer, nil
}

// EditSeriesForward applies trainer, service and time changes to the
// anchor and every later member of its series. Dates never move; each
// member's weekday is recomputed from its own date.
func (s *bookingService) EditSeriesForward(ctx context.Context, actor domain.Actor, anchorID primitive.ObjectID, changes SessionChanges) (*SeriesResult, error) {
	policy := s.policies.For(actor.Role)
	if err := checkStruct(changes); err != nil {
		return nil, err
	}
	anchor, err := s.loadForChange(ctx, actor, policy, anchorID)
	if err != nil {
		return nil, err
	}
	if !anchor.InSeries() {
		single, err := s.EditSingle(ctx, actor, anchorID, changes)
		if err != nil {
			return nil, err
		}
		return &SeriesResult{Sessions: []domain.Session{*single}, Count: 1}, nil
	}
	if changes.Date != "" && changes.Date != anchor.DateKey() {
		return nil, validationErr("a series edit cannot move dates; edit the single session instead")
	}

	// 1. Resolve the new trainer, service and time on the anchor
	updatedAnchor := *anchor
	trainer, err := s.applyTrainerAndService(ctx, &updatedAnchor, changes)
	if err != nil {
		return nil, err
	}
	if changes.Time != "" {
		updatedAnchor.Time = schedule.To12h(changes.Time)
	}
	anchorDate, err := s.parseDate("date", anchor.DateKey())
	if err != nil {
		return nil, err
	}
	moved := updatedAnchor.TrainerID != anchor.TrainerID ||
		schedule.To24h(updatedAnchor.Time) != schedule.To24h(anchor.Time)
	if moved {
		if err := s.checkBookable(ctx, trainer, anchorDate, updatedAnchor.Time); err != nil {
			return nil, err
		}
	}

	// 2. Load the forward slice
	members, err := s.deps.Sessions.Find(ctx, repository.SessionFilter{
		SeriesID: anchor.SeriesID,
		FromDate: anchor.DateKey(),
	})
	if err != nil {
		return nil, storeErr("load series", err)
	}

	// 3. Conflicts against sessions outside the slice
	if moved {
		others, err := s.deps.Sessions.Find(ctx, repository.SessionFilter{FromDate: anchor.DateKey()})
		if err != nil {
			return nil, storeErr("load sessions", err)
		}
		var outside []domain.Session
		for _, o := range others {
			if o.SeriesID != anchor.SeriesID {
				outside = append(outside, o)
			}
		}
		taken := takenSlots(outside, trainer)
		for _, m := range members {
			if taken[slotKeyOf(m.DateKey(), updatedAnchor.Time)] {
				return nil, fmt.Errorf("%w: %s already has a session on %s at %s", ErrConflict, trainer.Name, m.DateKey(), updatedAnchor.Time)
			}
		}
	}

	// 4. Rewrite every member
	for i := range members {
		m := &members[i]
		m.TrainerID = updatedAnchor.TrainerID
		m.TrainerName = updatedAnchor.TrainerName
		m.ServiceID = updatedAnchor.ServiceID
		m.ServiceName = updatedAnchor.ServiceName
		m.Time = updatedAnchor.Time
		if d, err := schedule.ParseISODate(m.DateKey(), s.loc); err == nil {
			m.Day = schedule.WeekdayIndexOf(d)
		}
		if m.ID == anchor.ID {
			updatedAnchor = *m
		}
	}
	n, err := s.deps.Sessions.UpdateMany(ctx, members)
	if err != nil {
		return &SeriesResult{SeriesID: anchor.SeriesID, Count: n},
			fmt.Errorf("%w (%d of %d sessions written)", storeErr("update series", err), n, len(members))
	}

	s.deps.Sink.Record(ctx, domain.ActionRescheduled, &updatedAnchor, actor)
	s.logger.Info("series rescheduled",
		zap.String("series_id", anchor.SeriesID),
		zap.String("from", anchor.DateKey()),
		zap.Int("sessions", n),
	)
	return &SeriesResult{SeriesID: anchor.SeriesID, Sessions: members, Count: n}, nil
}

// === Delete ===

func (s *bookingService) DeleteSingle(ctx context.Context, actor domain.Actor, sessionID primitive.ObjectID) error {
	policy := s.policies.For(actor.Role)
	session, err := s.loadForChange(ctx, actor, policy, sessionID)
	if err != nil {
		return err
	}
	if err := s.deps.Sessions.Delete(ctx, session.ID); err != nil {
		return storeErr("delete session", err)
	}
	s.deps.Sink.Record(ctx, domain.ActionCancelled, session, actor)
	return nil
}

// DeleteSeriesForward removes the anchor and every later member of its
// series. It deletes by filter, so repeating a failed call is safe.
func (s *bookingService) DeleteSeriesForward(ctx context.Context, actor domain.Actor, anchorID primitive.ObjectID) (int64, error) {
	policy := s.policies.For(actor.Role)
	anchor, err := s.loadForChange(ctx, actor, policy, anchorID)
	if err != nil {
		return 0, err
	}
	if !anchor.InSeries() {
		if err := s.DeleteSingle(ctx, actor, anchorID); err != nil {
			return 0, err
		}
		return 1, nil
	}

	n, err := s.deps.Sessions.DeleteMatching(ctx, repository.SessionFilter{
		SeriesID: anchor.SeriesID,
		FromDate: anchor.DateKey(),
	})
	if err != nil {
		return n, storeErr("delete series", err)
	}

	s.deps.Sink.Record(ctx, domain.ActionCancelled, anchor, actor)
	s.logger.Info("series cancelled",
		zap.String("series_id", anchor.SeriesID),
		zap.String("from", anchor.DateKey()),
		zap.Int64("sessions", n),
	)
	return n, nil
}

// === Off-days ===

// ToggleOffDay removes the trainer's off-day on date, or creates one when
// none exists. Creating never cancels sessions; they are returned for
// manual reconciliation instead.
func (s *bookingService) ToggleOffDay(ctx context.Context, actor domain.Actor, trainerID primitive.ObjectID, date string) (*OffDayToggle, error) {
	if !s.policies.For(actor.Role).CanManageOffDays {
		return nil, forbiddenErr("%s cannot manage off-days", actor.Role)
	}
	d, err := s.parseDate("date", date)
	if err != nil {
		return nil, err
	}
	iso := schedule.ISODate(d)
	trainer, err := s.deps.Trainers.GetByID(ctx, trainerID)
	if err != nil {
		return nil, storeErr("load trainer", err)
	}

	existing, err := s.deps.OffDays.Get(ctx, trainer.ID, iso)
	switch {
	case err == nil:
		if err := s.deps.OffDays.Delete(ctx, existing.ID); err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, storeErr("delete off-day", err)
		}
		s.logger.Info("off-day removed", zap.String("trainer", trainer.Name), zap.String("date", iso))
		return &OffDayToggle{Created: false, OffDay: existing, AffectedSessions: []domain.Session{}}, nil
	case !errors.Is(err, repository.ErrNotFound):
		return nil, storeErr("load off-day", err)
	}

	offDay := &domain.OffDay{
		TrainerID: trainer.ID,
		Date:      iso,
		CreatedBy: actor.Performer().UID,
	}
	if _, err := s.deps.OffDays.Create(ctx, offDay); err != nil {
		if !errors.Is(err, repository.ErrDuplicate) {
			return nil, storeErr("create off-day", err)
		}
		// Lost a race with another toggle; report the stored one.
		if offDay, err = s.deps.OffDays.Get(ctx, trainer.ID, iso); err != nil {
			return nil, storeErr("load off-day", err)
		}
	}

	affected, err := s.sessionsOn(ctx, trainer, iso)
	if err != nil {
		return nil, err
	}
	s.logger.Info("off-day created",
		zap.String("trainer", trainer.Name),
		zap.String("date", iso),
		zap.Int("affected_sessions", len(affected)),
	)
	return &OffDayToggle{Created: true, OffDay: offDay, AffectedSessions: affected}, nil
}
