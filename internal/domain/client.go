package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Client is a studio member who can be booked into sessions.
type Client struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SiteID    string             `bson:"siteId" json:"-"`
	Name      string             `bson:"name" json:"name"`
	Email     string             `bson:"email,omitempty" json:"email,omitempty"`
	Phone     string             `bson:"phone,omitempty" json:"phone,omitempty"`
	JoinedAt  time.Time          `bson:"joined" json:"joined"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}
