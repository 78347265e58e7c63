package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Default connection timeout
const defaultTimeout = 10 * time.Second

// Collection names. Every document additionally carries a siteId.
const (
	userCollectionName     = "users"
	trainerCollectionName  = "trainers"
	serviceCollectionName  = "services"
	clientCollectionName   = "clients"
	sessionCollectionName  = "sessions"
	offDayCollectionName   = "off_days"
	activityCollectionName = "activity_logs"
	exportCollectionName   = "calendar_exports"
)

// ConnectDB establishes a connection to MongoDB using the provided URI.
// It returns the mongo.Client which can be used to access databases and collections.
func ConnectDB(uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	// Ping the primary node to verify the connection.
	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer pingCancel()

	if err = client.Ping(pingCtx, readpref.Primary()); err != nil {
		disconnectCtx, disconnectCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer disconnectCancel()
		_ = client.Disconnect(disconnectCtx)
		return nil, err
	}

	return client, nil
}

// DisconnectDB gracefully disconnects the MongoDB client.
func DisconnectDB(client *mongo.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	return client.Disconnect(ctx)
}

// EnsureIndexes creates the indexes of every collection. Failures are
// collected per collection so one bad index does not hide the others.
func EnsureIndexes(ctx context.Context, db *mongo.Database) map[string]error {
	failures := make(map[string]error)
	steps := []struct {
		name string
		fn   func(context.Context, *mongo.Collection) error
	}{
		{userCollectionName, EnsureUserIndexes},
		{trainerCollectionName, EnsureTrainerIndexes},
		{serviceCollectionName, EnsureServiceIndexes},
		{clientCollectionName, EnsureClientIndexes},
		{sessionCollectionName, EnsureSessionIndexes},
		{offDayCollectionName, EnsureOffDayIndexes},
		{activityCollectionName, EnsureActivityIndexes},
		{exportCollectionName, EnsureExportIndexes},
	}
	for _, step := range steps {
		if err := step.fn(ctx, db.Collection(step.name)); err != nil {
			failures[step.name] = err
		}
	}
	return failures
}
