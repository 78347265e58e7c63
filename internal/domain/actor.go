package domain

import "go.mongodb.org/mongo-driver/bson/primitive"

// Actor is the authenticated caller of a booking operation.
type Actor struct {
	UID       primitive.ObjectID
	Name      string
	Role      Role
	TrainerID *primitive.ObjectID
	ClientID  *primitive.ObjectID
}

// ClientRef returns the id a self-booking client is stored under: the linked
// client record when present, otherwise the user id.
func (a Actor) ClientRef() primitive.ObjectID {
	if a.ClientID != nil && !a.ClientID.IsZero() {
		return *a.ClientID
	}
	return a.UID
}

// Performer is the snapshot of an Actor stored on activity log entries.
func (a Actor) Performer() Performer {
	uid := "unknown"
	if !a.UID.IsZero() {
		uid = a.UID.Hex()
	}
	name := a.Name
	if name == "" {
		name = "Unknown User"
	}
	role := string(a.Role)
	if role == "" {
		role = "unknown"
	}
	return Performer{UID: uid, Name: name, Role: role}
}

// Owns reports whether a client actor is the client of s. Legacy sessions
// without a client id are matched by display name.
func (a Actor) Owns(s *Session) bool {
	if !s.ClientID.IsZero() {
		return s.ClientID == a.ClientRef() || s.ClientID == a.UID
	}
	return a.Name != "" && s.ClientName == a.Name
}
