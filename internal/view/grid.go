// Package view holds read-only projections over the current session set.
// Every function is pure: callers pass in the snapshot and parameters.
package view

import (
	"time"

	"alcyxob/studio-calendar/internal/domain"
	"alcyxob/studio-calendar/internal/schedule"
)

type slotKey struct {
	date string
	slot string // 24h
}

// Grid indexes sessions by (date, 24h time) for constant-time cell lookup.
type Grid struct {
	cells map[slotKey][]domain.Session
}

// NewGrid indexes sessions. Sessions with an unparseable time are dropped.
func NewGrid(sessions []domain.Session) *Grid {
	g := &Grid{cells: make(map[slotKey][]domain.Session)}
	for _, s := range sessions {
		slot := schedule.To24h(s.Time)
		if slot == "" {
			continue
		}
		k := slotKey{date: s.DateKey(), slot: slot}
		g.cells[k] = append(g.cells[k], s)
	}
	return g
}

// At returns the sessions booked at date and time (12h or 24h).
func (g *Grid) At(date, slot string) []domain.Session {
	return g.cells[slotKey{date: date, slot: schedule.To24h(slot)}]
}

// Cell is one hourly slot of the weekly calendar.
type Cell struct {
	Time      string           `json:"time"` // 12h display
	Sessions  []domain.Session `json:"sessions"`
	Available bool             `json:"available"`
}

type Day struct {
	Index  int    `json:"index"` // 0=Monday
	Name   string `json:"name"`
	Date   string `json:"date"`
	OffDay bool   `json:"offDay"`
	Cells  []Cell `json:"cells"`
}

// Week is the calendar grid for one Monday-started week.
type Week struct {
	Start     string   `json:"start"`
	TrainerID string   `json:"trainerId,omitempty"`
	Slots     []string `json:"slots"`
	Days      []Day    `json:"days"`
}

// WeekParams carries everything BuildWeek needs. Trainer, when set,
// restricts the grid to one trainer; otherwise Trainers are all considered.
type WeekParams struct {
	WeekStart time.Time
	Today     time.Time
	Trainers  []domain.Trainer
	Trainer   *domain.Trainer
	Sessions  []domain.Session
	OffDays   []domain.OffDay
	Policy    schedule.RolePolicy
	FirstHour int
	LastHour  int
}

// BuildWeek lays out seven days of hourly cells. A cell is available when a
// considered trainer is bookable, the date is not in the past and lies
// inside the actor's booking window, and, for a single trainer, the slot is
// not already taken.
func BuildWeek(p WeekParams) *Week {
	start := schedule.StartOfDay(schedule.StartOfWeek(p.WeekStart))
	today := schedule.StartOfDay(p.Today)
	slots := schedule.HourlySlots(p.FirstHour, p.LastHour)

	trainers := p.Trainers
	sessions := p.Sessions
	w := &Week{Start: schedule.ISODate(start), Slots: make([]string, len(slots))}
	if p.Trainer != nil {
		trainers = []domain.Trainer{*p.Trainer}
		sessions = ForTrainer(p.Sessions, p.Trainer)
		w.TrainerID = p.Trainer.ID.Hex()
	}
	grid := NewGrid(sessions)
	for i, slot := range slots {
		w.Slots[i] = schedule.To12h(slot)
	}

	for idx := 0; idx < 7; idx++ {
		date := start.AddDate(0, 0, idx)
		iso := schedule.ISODate(date)
		day := Day{
			Index: idx,
			Name:  schedule.WeekdayName(idx),
			Date:  iso,
			Cells: make([]Cell, 0, len(slots)),
		}
		if p.Trainer != nil {
			day.OffDay = schedule.IsOffDay(p.OffDays, p.Trainer.ID, iso)
		}
		selectable := !date.Before(today) && p.Policy.WithinWindow(date, today)

		for _, slot := range slots {
			booked := grid.At(iso, slot)
			cell := Cell{Time: schedule.To12h(slot), Sessions: booked}
			if cell.Sessions == nil {
				cell.Sessions = []domain.Session{}
			}
			if selectable {
				if p.Trainer != nil {
					cell.Available = len(booked) == 0 && schedule.IsBookable(p.Trainer, date, slot, p.OffDays)
				} else {
					cell.Available = schedule.AnyBookable(activeOnly(trainers), date, slot, p.OffDays)
				}
			}
			day.Cells = append(day.Cells, cell)
		}
		w.Days = append(w.Days, day)
	}
	return w
}

// ForTrainer keeps the sessions of t, matching legacy name-only records.
func ForTrainer(sessions []domain.Session, t *domain.Trainer) []domain.Session {
	out := make([]domain.Session, 0)
	for _, s := range sessions {
		if !s.TrainerID.IsZero() {
			if s.TrainerID == t.ID {
				out = append(out, s)
			}
			continue
		}
		if s.TrainerName != "" && s.TrainerName == t.Name {
			out = append(out, s)
		}
	}
	return out
}

func activeOnly(trainers []domain.Trainer) []domain.Trainer {
	out := make([]domain.Trainer, 0, len(trainers))
	for _, t := range trainers {
		if t.IsActive() {
			out = append(out, t)
		}
	}
	return out
}
