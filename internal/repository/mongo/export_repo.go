package mongo

import (
	"context"
	"errors"
	"time"

	"alcyxob/studio-calendar/internal/domain"
	"alcyxob/studio-calendar/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// mongoExportRepository implements repository.CalendarExportRepository
type mongoExportRepository struct {
	collection *mongo.Collection
	siteID     string
}

// NewMongoExportRepository creates a calendar export repository backed by MongoDB.
func NewMongoExportRepository(db *mongo.Database, siteID string) repository.CalendarExportRepository {
	return &mongoExportRepository{
		collection: db.Collection(exportCollectionName),
		siteID:     siteID,
	}
}

// Create inserts export metadata after the file has been written to S3.
func (r *mongoExportRepository) Create(ctx context.Context, export *domain.CalendarExport) (primitive.ObjectID, error) {
	if export.ClientID.IsZero() || export.S3ObjectKey == "" {
		return primitive.NilObjectID, errors.New("calendar export requires clientId and s3ObjectKey")
	}

	export.ID = primitive.NewObjectID()
	export.SiteID = r.siteID
	export.CreatedAt = time.Now().UTC()

	result, err := r.collection.InsertOne(ctx, export)
	if err != nil {
		return primitive.NilObjectID, mapError(err)
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

// GetLatestForClient returns the most recent export of a client.
func (r *mongoExportRepository) GetLatestForClient(ctx context.Context, clientID primitive.ObjectID) (*domain.CalendarExport, error) {
	var export domain.CalendarExport
	filter := bson.M{"siteId": r.siteID, "clientId": clientID}
	opts := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	if err := r.collection.FindOne(ctx, filter, opts).Decode(&export); err != nil {
		return nil, mapError(err)
	}
	return &export, nil
}

// EnsureExportIndexes creates necessary indexes for the calendar_exports collection.
func EnsureExportIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "siteId", Value: 1}, {Key: "clientId", Value: 1}, {Key: "createdAt", Value: -1}},
		},
		{
			Keys:    bson.D{{Key: "s3ObjectKey", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
