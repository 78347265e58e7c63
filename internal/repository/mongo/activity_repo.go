package mongo

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"alcyxob/studio-calendar/internal/domain"
	"alcyxob/studio-calendar/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// mongoActivityRepository is append-only: there is no update or delete.
type mongoActivityRepository struct {
	collection *mongo.Collection
	siteID     string
}

func NewMongoActivityRepository(db *mongo.Database, siteID string) repository.ActivityRepository {
	return &mongoActivityRepository{
		collection: db.Collection(activityCollectionName),
		siteID:     siteID,
	}
}

func (r *mongoActivityRepository) Append(ctx context.Context, entry *domain.ActivityLogEntry) (primitive.ObjectID, error) {
	if entry.Action == "" {
		return primitive.NilObjectID, errors.New("activity entry requires an action")
	}

	entry.ID = primitive.NewObjectID()
	entry.SiteID = r.siteID
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	result, err := r.collection.InsertOne(ctx, entry)
	if err != nil {
		return primitive.NilObjectID, mapError(err)
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

// activityFilterDoc builds the query document for f within one site.
func activityFilterDoc(siteID string, f repository.ActivityFilter) bson.M {
	doc := bson.M{"siteId": siteID}

	if date := strings.TrimSpace(f.Date); date != "" {
		// legacy entries may carry a full timestamp
		doc["sessionDetails.date"] = bson.M{"$regex": "^" + regexp.QuoteMeta(date)}
	}
	if trainer := strings.TrimSpace(f.Trainer); trainer != "" {
		doc["sessionDetails.trainerName"] = bson.M{"$regex": "^" + regexp.QuoteMeta(trainer) + "$", "$options": "i"}
	}
	if client := strings.TrimSpace(f.Client); client != "" {
		doc["sessionDetails.clientName"] = bson.M{"$regex": regexp.QuoteMeta(client), "$options": "i"}
	}
	return doc
}

// List returns matching entries newest first. limit <= 0 means no limit.
func (r *mongoActivityRepository) List(ctx context.Context, filter repository.ActivityFilter, limit int64) ([]domain.ActivityLogEntry, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cursor, err := r.collection.Find(ctx, activityFilterDoc(r.siteID, filter), opts)
	if err != nil {
		return nil, mapError(err)
	}
	defer cursor.Close(ctx)

	var entries []domain.ActivityLogEntry
	if err = cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []domain.ActivityLogEntry{}
	}
	return entries, nil
}

// EnsureActivityIndexes creates necessary indexes for the activity_logs collection.
func EnsureActivityIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "siteId", Value: 1}, {Key: "timestamp", Value: -1}},
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
