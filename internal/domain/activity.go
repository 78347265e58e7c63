package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ActivityAction is what happened to a session.
type ActivityAction string

const (
	ActionBooked      ActivityAction = "booked"
	ActionCancelled   ActivityAction = "cancelled"
	ActionRescheduled ActivityAction = "rescheduled"
)

type SessionSnapshot struct {
	ClientName  string `bson:"clientName" json:"clientName"`
	TrainerName string `bson:"trainerName" json:"trainerName"`
	ServiceName string `bson:"serviceName" json:"serviceName"`
	Date        string `bson:"date" json:"date"`
	Time        string `bson:"time" json:"time"`
}

type Performer struct {
	UID  string `bson:"uid" json:"uid"`
	Name string `bson:"name" json:"name"`
	Role string `bson:"role" json:"role"`
}

// ActivityLogEntry is append-only; entries are never updated.
type ActivityLogEntry struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SiteID         string             `bson:"siteId" json:"-"`
	Action         ActivityAction     `bson:"action" json:"action"`
	SessionDetails SessionSnapshot    `bson:"sessionDetails" json:"sessionDetails"`
	PerformedBy    Performer          `bson:"performedBy" json:"performedBy"`
	Timestamp      time.Time          `bson:"timestamp" json:"timestamp"`
}
