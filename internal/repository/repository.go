package repository

import (
	"alcyxob/studio-calendar/internal/domain" // Import our defined domain models
	"context"                                 // Standard for request-scoped deadlines, cancellation signals, etc.

	"go.mongodb.org/mongo-driver/bson/primitive" // For using ObjectIDs
)

// Error constants for repository layer
var (
	ErrNotFound     = RepositoryError("not found")
	ErrDuplicate    = RepositoryError("duplicate key")
	ErrMissingIndex = RepositoryError("query requires an index that does not exist")
	ErrUpdateFailed = RepositoryError("update failed")
	ErrDeleteFailed = RepositoryError("delete failed")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// SessionFilter selects sessions. Zero-valued fields are ignored. When both
// ClientID and ClientName are set they are OR'ed so legacy name-only
// records still match.
type SessionFilter struct {
	TrainerID  primitive.ObjectID
	ClientID   primitive.ObjectID
	ClientName string
	SeriesID   string
	Date       string // exact YYYY-MM-DD
	FromDate   string // inclusive lower bound
	ToDate     string // exclusive upper bound
	Time       string
}

// DisplayNameRef identifies which denormalized name on sessions to refresh.
type DisplayNameRef string

const (
	TrainerNameRef DisplayNameRef = "trainer"
	ClientNameRef  DisplayNameRef = "client"
	ServiceNameRef DisplayNameRef = "service"
)

// SessionSnapshot is one push of a live session query: the full current
// result set, or the error that ended the subscription.
type SessionSnapshot struct {
	Sessions []domain.Session
	Err      error
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
}

// TrainerRepository defines the interface for interacting with trainer data.
type TrainerRepository interface {
	Create(ctx context.Context, trainer *domain.Trainer) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Trainer, error)
	GetByName(ctx context.Context, name string) (*domain.Trainer, error)
	List(ctx context.Context) ([]domain.Trainer, error)
	Update(ctx context.Context, trainer *domain.Trainer) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	// RenameSpecialty replaces oldName with newName in every specialty list.
	RenameSpecialty(ctx context.Context, oldName, newName string) (int64, error)
}

// ClientRepository defines the interface for interacting with client data.
type ClientRepository interface {
	Create(ctx context.Context, client *domain.Client) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Client, error)
	GetByName(ctx context.Context, name string) (*domain.Client, error)
	List(ctx context.Context) ([]domain.Client, error)
	Update(ctx context.Context, client *domain.Client) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// ServiceRepository defines the interface for the service catalog.
type ServiceRepository interface {
	Create(ctx context.Context, svc *domain.Service) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Service, error)
	GetByName(ctx context.Context, name string) (*domain.Service, error)
	List(ctx context.Context) ([]domain.Service, error)
	Update(ctx context.Context, svc *domain.Service) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// SessionRepository defines the interface for interacting with sessions.
// Batch methods split their work into physical commits of at most the
// configured batch limit.
type SessionRepository interface {
	Create(ctx context.Context, session *domain.Session) (primitive.ObjectID, error)
	CreateMany(ctx context.Context, sessions []domain.Session) (int, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Session, error)
	Find(ctx context.Context, filter SessionFilter) ([]domain.Session, error)
	Update(ctx context.Context, session *domain.Session) error
	UpdateMany(ctx context.Context, sessions []domain.Session) (int, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteByIDs(ctx context.Context, ids []primitive.ObjectID) (int64, error)
	// DeleteMatching removes every session matching filter. Repeating the
	// call is safe.
	DeleteMatching(ctx context.Context, filter SessionFilter) (int64, error)
	UpdateDisplayName(ctx context.Context, ref DisplayNameRef, id primitive.ObjectID, name string) (int64, error)
	// Watch pushes the full matching set on subscribe and after every
	// change until ctx is cancelled.
	Watch(ctx context.Context, filter SessionFilter) (<-chan SessionSnapshot, error)
}

// OffDayRepository defines the interface for trainer off-days.
type OffDayRepository interface {
	Create(ctx context.Context, offDay *domain.OffDay) (primitive.ObjectID, error)
	Get(ctx context.Context, trainerID primitive.ObjectID, date string) (*domain.OffDay, error)
	ListForTrainer(ctx context.Context, trainerID primitive.ObjectID) ([]domain.OffDay, error)
	ListBetween(ctx context.Context, fromDate, toDate string) ([]domain.OffDay, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// ActivityFilter narrows the activity log. Empty fields match everything.
type ActivityFilter struct {
	Date    string // session date, YYYY-MM-DD
	Trainer string // trainer name, case-insensitive exact
	Client  string // case-insensitive substring of the client name
}

// ActivityRepository stores append-only activity log entries.
type ActivityRepository interface {
	Append(ctx context.Context, entry *domain.ActivityLogEntry) (primitive.ObjectID, error)
	// List returns entries matching filter, newest first. The limit applies
	// after filtering.
	List(ctx context.Context, filter ActivityFilter, limit int64) ([]domain.ActivityLogEntry, error)
}

// CalendarExportRepository stores metadata of generated calendar files.
type CalendarExportRepository interface {
	Create(ctx context.Context, export *domain.CalendarExport) (primitive.ObjectID, error)
	GetLatestForClient(ctx context.Context, clientID primitive.ObjectID) (*domain.CalendarExport, error)
}
