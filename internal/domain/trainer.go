package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TrainerStatus marks whether a trainer takes bookings.
type TrainerStatus string

const (
	TrainerActive   TrainerStatus = "Active"
	TrainerInactive TrainerStatus = "Inactive"
)

// Weekday keys used in Availability, indexed Monday=0.
var WeekdayKeys = [7]string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

// Shift is a half-open [Start, End) working interval in 24h "HH:MM".
type Shift struct {
	Start string `bson:"start" json:"start" validate:"required,datetime=15:04"`
	End   string `bson:"end" json:"end" validate:"required,datetime=15:04"`
}

// DaySchedule is one weekday of a trainer's template.
type DaySchedule struct {
	Active bool    `bson:"active" json:"active"`
	Shifts []Shift `bson:"shifts" json:"shifts" validate:"dive"`

	// Legacy single-shift form, migrated into Shifts by Normalize.
	Start string `bson:"start,omitempty" json:"-"`
	End   string `bson:"end,omitempty" json:"-"`
}

// Availability maps a weekday key ("monday".."sunday") to its schedule.
type Availability map[string]DaySchedule

// Normalize migrates legacy start/end pairs into one-element shift lists.
func (a Availability) Normalize() {
	for day, ds := range a {
		if ds.Shifts == nil && (ds.Start != "" || ds.End != "") {
			start, end := ds.Start, ds.End
			if start == "" {
				start = "09:00"
			}
			if end == "" {
				end = "17:00"
			}
			ds.Shifts = []Shift{{Start: start, End: end}}
		}
		ds.Start, ds.End = "", ""
		a[day] = ds
	}
}

// Trainer is a bookable staff member.
type Trainer struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SiteID       string             `bson:"siteId" json:"-"`
	Name         string             `bson:"name" json:"name"`
	Specialties  []string           `bson:"specialties" json:"specialties"`
	Availability Availability       `bson:"availability" json:"availability"`
	Status       TrainerStatus      `bson:"status" json:"status"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func (t *Trainer) IsActive() bool {
	return t.Status != TrainerInactive
}

// Teaches reports whether the trainer lists serviceName as a specialty.
func (t *Trainer) Teaches(serviceName string) bool {
	for _, s := range t.Specialties {
		if s == serviceName {
			return true
		}
	}
	return false
}
