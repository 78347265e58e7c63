package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OffDay blocks a whole calendar date for one trainer. At most one exists
// per (trainerId, date).
type OffDay struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SiteID    string             `bson:"siteId" json:"-"`
	TrainerID primitive.ObjectID `bson:"trainerId" json:"trainerId"`
	Date      string             `bson:"date" json:"date"` // YYYY-MM-DD
	CreatedBy string             `bson:"createdBy" json:"createdBy"`
	Timestamp time.Time          `bson:"timestamp" json:"timestamp"`
}
