package view

import (
	"time"

	"alcyxob/studio-calendar/internal/domain"
	"alcyxob/studio-calendar/internal/schedule"
)

type Dashboard struct {
	ActiveTrainers   int              `json:"activeTrainers"`
	TotalClients     int              `json:"totalClients"`
	UpcomingSessions int              `json:"upcomingSessions"`
	Today            []domain.Session `json:"today"`
}

// BuildDashboard summarizes the studio for today. When trainer is non-nil
// only that trainer's sessions are counted.
func BuildDashboard(trainers []domain.Trainer, clients []domain.Client, sessions []domain.Session, trainer *domain.Trainer, today time.Time) Dashboard {
	if trainer != nil {
		sessions = ForTrainer(sessions, trainer)
	}
	todayKey := schedule.ISODate(schedule.StartOfDay(today))

	d := Dashboard{TotalClients: len(clients), Today: []domain.Session{}}
	for i := range trainers {
		if trainers[i].IsActive() {
			d.ActiveTrainers++
		}
	}
	for _, s := range sessions {
		switch key := s.DateKey(); {
		case key == todayKey:
			d.Today = append(d.Today, s)
			d.UpcomingSessions++
		case key > todayKey:
			d.UpcomingSessions++
		}
	}
	SortChronological(d.Today)
	return d
}
