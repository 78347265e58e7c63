package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role type to distinguish between user roles
type Role string

// Define constants for roles
const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleTrainer Role = "trainer"
	RoleClient  Role = "client"
)

// Valid reports whether r is one of the four known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleTrainer, RoleClient:
		return true
	}
	return false
}

// User represents a login account (staff or client) for one studio site.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SiteID       string             `bson:"siteId" json:"-"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`    // Should be unique per site
	PasswordHash string             `bson:"passwordHash" json:"-"` // Never expose this via JSON
	Role         Role               `bson:"role" json:"role"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`

	// --- Trainer-specific ---
	// Trainer document this login manages the calendar of.
	TrainerID *primitive.ObjectID `bson:"trainerId,omitempty" json:"trainerId,omitempty"`

	// --- Client-specific ---
	// Client record linked to this login. Self-booking falls back to the
	// user ID when no record is linked.
	ClientID *primitive.ObjectID `bson:"clientId,omitempty" json:"clientId,omitempty"`
}

func (u *User) IsStaff() bool {
	return u.Role == RoleAdmin || u.Role == RoleManager
}

func (u *User) IsClient() bool {
	return u.Role == RoleClient
}

// Actor returns the identity used by booking operations on behalf of u.
func (u *User) Actor() Actor {
	return Actor{
		UID:       u.ID,
		Name:      u.Name,
		Role:      u.Role,
		TrainerID: u.TrainerID,
		ClientID:  u.ClientID,
	}
}
