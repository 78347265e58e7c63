package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultServiceDuration is used when a service has no duration recorded.
const DefaultServiceDuration = 60

// Service is a bookable offering such as "Personal Training".
type Service struct {
	ID                 primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	SiteID             string               `bson:"siteId" json:"-"`
	Name               string               `bson:"name" json:"name"`
	Duration           int                  `bson:"duration" json:"duration"` // minutes
	Price              float64              `bson:"price,omitempty" json:"price,omitempty"`
	AssignedTrainerIDs []primitive.ObjectID `bson:"assignedTrainerIds,omitempty" json:"assignedTrainerIds,omitempty"`
	CreatedAt          time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt          time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// Minutes returns the session length, falling back to DefaultServiceDuration.
func (s *Service) Minutes() int {
	if s == nil || s.Duration <= 0 {
		return DefaultServiceDuration
	}
	return s.Duration
}
