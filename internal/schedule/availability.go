package schedule

import (
	"time"

	"alcyxob/studio-calendar/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// IsBookable reports whether trainer works at slot (12h or 24h) on date:
// the weekday must be active, no OffDay may cover the date, and the slot
// must fall inside some shift [start, end). Missing data yields false.
//
// Double-booking is checked separately with SlotTaken.
func IsBookable(trainer *domain.Trainer, date time.Time, slot string, offDays []domain.OffDay) bool {
	if trainer == nil {
		return false
	}
	day, ok := trainer.Availability[WeekdayName(WeekdayIndexOf(date))]
	if !ok || !day.Active {
		return false
	}
	if IsOffDay(offDays, trainer.ID, ISODate(date)) {
		return false
	}
	return withinShifts(day, To24h(slot))
}

func withinShifts(day domain.DaySchedule, slot24 string) bool {
	if slot24 == "" {
		return false
	}
	shifts := day.Shifts
	if shifts == nil && day.Start != "" && day.End != "" {
		shifts = []domain.Shift{{Start: day.Start, End: day.End}}
	}
	for _, sh := range shifts {
		start, end := To24h(sh.Start), To24h(sh.End)
		if start == "" || end == "" {
			continue
		}
		if slot24 >= start && slot24 < end {
			return true
		}
	}
	return false
}

// IsOffDay reports whether an OffDay exists for (trainerID, date).
func IsOffDay(offDays []domain.OffDay, trainerID primitive.ObjectID, date string) bool {
	for _, od := range offDays {
		if od.TrainerID == trainerID && od.Date == date {
			return true
		}
	}
	return false
}

// SlotTaken reports whether sessions already hold (trainer, date, slot).
// Sessions whose id equals ignore are skipped so an edit does not collide
// with itself.
func SlotTaken(sessions []domain.Session, trainer *domain.Trainer, date string, slot string, ignore primitive.ObjectID) bool {
	if trainer == nil {
		return false
	}
	want := To24h(slot)
	for i := range sessions {
		s := &sessions[i]
		if !ignore.IsZero() && s.ID == ignore {
			continue
		}
		if !sameTrainer(s, trainer) || s.DateKey() != date {
			continue
		}
		if To24h(s.Time) == want {
			return true
		}
	}
	return false
}

func sameTrainer(s *domain.Session, t *domain.Trainer) bool {
	if !s.TrainerID.IsZero() {
		return s.TrainerID == t.ID
	}
	return s.TrainerName != "" && s.TrainerName == t.Name
}

// SlotQuery describes a candidate slot when listing bookable trainers.
type SlotQuery struct {
	Date           time.Time
	Time           string
	ServiceName    string
	ExcludeTrainer primitive.ObjectID
}

// AvailableTrainers filters trainers to those who are active, teach the
// requested service (when one is given), are bookable for the slot and are
// not the excluded trainer.
func AvailableTrainers(trainers []domain.Trainer, q SlotQuery, offDays []domain.OffDay) []domain.Trainer {
	var out []domain.Trainer
	for i := range trainers {
		t := &trainers[i]
		if !t.IsActive() {
			continue
		}
		if !q.ExcludeTrainer.IsZero() && t.ID == q.ExcludeTrainer {
			continue
		}
		if q.ServiceName != "" && !t.Teaches(q.ServiceName) {
			continue
		}
		if IsBookable(t, q.Date, q.Time, offDays) {
			out = append(out, *t)
		}
	}
	return out
}

// AnyBookable reports whether at least one of trainers is bookable for the
// slot. It backs the calendar grid when no single trainer is selected.
func AnyBookable(trainers []domain.Trainer, date time.Time, slot string, offDays []domain.OffDay) bool {
	for i := range trainers {
		if IsBookable(&trainers[i], date, slot, offDays) {
			return true
		}
	}
	return false
}
