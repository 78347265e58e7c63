package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SessionStatus is persisted booking state. "Completed" and similar labels
// are derived by comparing the date with now and never stored.
type SessionStatus string

const StatusScheduled SessionStatus = "Scheduled"

// Session is one booked slot. Names are display caches of the referenced
// documents; legacy records may carry a name without the id.
type Session struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SiteID      string             `bson:"siteId" json:"-"`
	ClientName  string             `bson:"clientName" json:"clientName"`
	ClientID    primitive.ObjectID `bson:"clientId,omitempty" json:"clientId,omitempty"`
	TrainerName string             `bson:"trainerName" json:"trainerName"`
	TrainerID   primitive.ObjectID `bson:"trainerId,omitempty" json:"trainerId,omitempty"`
	ServiceName string             `bson:"serviceName" json:"serviceName"`
	ServiceID   primitive.ObjectID `bson:"serviceId,omitempty" json:"serviceId,omitempty"`
	Time        string             `bson:"time" json:"time"` // "hh:mm AM"
	Day         int                `bson:"day" json:"day"`   // 0=Monday..6=Sunday
	Date        string             `bson:"date" json:"date"` // YYYY-MM-DD, instance identity
	Status      SessionStatus      `bson:"status" json:"status"`
	SeriesID    string             `bson:"seriesId,omitempty" json:"seriesId,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}

// DateKey returns the calendar date part of Date, tolerating legacy full
// ISO timestamps.
func (s *Session) DateKey() string {
	if len(s.Date) > 10 {
		return s.Date[:10]
	}
	return s.Date
}

// InSeries reports whether s belongs to a recurring series.
func (s *Session) InSeries() bool {
	return s.SeriesID != ""
}

// Snapshot copies the fields recorded on activity log entries.
func (s *Session) Snapshot() SessionSnapshot {
	return SessionSnapshot{
		ClientName:  s.ClientName,
		TrainerName: s.TrainerName,
		ServiceName: s.ServiceName,
		Date:        s.Date,
		Time:        s.Time,
	}
}
