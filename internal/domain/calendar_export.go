package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CalendarExport stores metadata about an iCalendar file generated for a
// client. The file itself resides in S3.
type CalendarExport struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SiteID       string             `bson:"siteId" json:"-"`
	ClientID     primitive.ObjectID `bson:"clientId" json:"clientId"`
	S3ObjectKey  string             `bson:"s3ObjectKey" json:"-"` // internal use
	SessionCount int                `bson:"sessionCount" json:"sessionCount"`
	Size         int64              `bson:"size" json:"size"`
	CreatedBy    string             `bson:"createdBy" json:"createdBy"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
}
