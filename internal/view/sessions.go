package view

import (
	"sort"
	"time"

	"alcyxob/studio-calendar/internal/domain"
	"alcyxob/studio-calendar/internal/schedule"
)

// Partition splits a client's sessions at the start of today. Upcoming is
// sorted oldest first, Past newest first.
type Partition struct {
	Upcoming []domain.Session `json:"upcoming"`
	Past     []domain.Session `json:"past"`
}

// ForActor keeps the sessions owned by a client actor.
func ForActor(sessions []domain.Session, actor domain.Actor) []domain.Session {
	out := make([]domain.Session, 0)
	for i := range sessions {
		if actor.Owns(&sessions[i]) {
			out = append(out, sessions[i])
		}
	}
	return out
}

// PartitionByToday splits sessions into upcoming and past relative to today.
func PartitionByToday(sessions []domain.Session, today time.Time) Partition {
	cut := schedule.ISODate(schedule.StartOfDay(today))
	p := Partition{Upcoming: []domain.Session{}, Past: []domain.Session{}}
	for _, s := range sessions {
		if s.DateKey() >= cut {
			p.Upcoming = append(p.Upcoming, s)
		} else {
			p.Past = append(p.Past, s)
		}
	}
	SortChronological(p.Upcoming)
	SortChronological(p.Past)
	for i, j := 0, len(p.Past)-1; i < j; i, j = i+1, j-1 {
		p.Past[i], p.Past[j] = p.Past[j], p.Past[i]
	}
	return p
}

// SortChronological orders sessions by date and then by 24h time.
func SortChronological(sessions []domain.Session) {
	sort.SliceStable(sessions, func(i, j int) bool {
		di, dj := sessions[i].DateKey(), sessions[j].DateKey()
		if di != dj {
			return di < dj
		}
		return schedule.To24h(sessions[i].Time) < schedule.To24h(sessions[j].Time)
	})
}

// OnDate returns the sessions of trainer t on date, for the off-day
// reconciliation list.
func OnDate(sessions []domain.Session, t *domain.Trainer, date string) []domain.Session {
	out := make([]domain.Session, 0)
	for _, s := range ForTrainer(sessions, t) {
		if s.DateKey() == date {
			out = append(out, s)
		}
	}
	SortChronological(out)
	return out
}
