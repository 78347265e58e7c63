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

type mongoOffDayRepository struct {
	collection *mongo.Collection
	siteID     string
}

func NewMongoOffDayRepository(db *mongo.Database, siteID string) repository.OffDayRepository {
	return &mongoOffDayRepository{
		collection: db.Collection(offDayCollectionName),
		siteID:     siteID,
	}
}

// Create inserts an off-day. A second off-day for the same trainer and
// date is rejected with repository.ErrDuplicate by the unique index.
func (r *mongoOffDayRepository) Create(ctx context.Context, offDay *domain.OffDay) (primitive.ObjectID, error) {
	if offDay.TrainerID.IsZero() || offDay.Date == "" {
		return primitive.NilObjectID, errors.New("off-day requires trainerId and date")
	}

	offDay.ID = primitive.NewObjectID()
	offDay.SiteID = r.siteID
	if offDay.Timestamp.IsZero() {
		offDay.Timestamp = time.Now().UTC()
	}

	result, err := r.collection.InsertOne(ctx, offDay)
	if err != nil {
		return primitive.NilObjectID, mapError(err)
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

func (r *mongoOffDayRepository) Get(ctx context.Context, trainerID primitive.ObjectID, date string) (*domain.OffDay, error) {
	var offDay domain.OffDay
	filter := bson.M{"siteId": r.siteID, "trainerId": trainerID, "date": date}
	if err := r.collection.FindOne(ctx, filter).Decode(&offDay); err != nil {
		return nil, mapError(err)
	}
	return &offDay, nil
}

func (r *mongoOffDayRepository) list(ctx context.Context, filter bson.M) ([]domain.OffDay, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, mapError(err)
	}
	defer cursor.Close(ctx)

	var offDays []domain.OffDay
	if err = cursor.All(ctx, &offDays); err != nil {
		return nil, err
	}
	if offDays == nil {
		offDays = []domain.OffDay{}
	}
	return offDays, nil
}

func (r *mongoOffDayRepository) ListForTrainer(ctx context.Context, trainerID primitive.ObjectID) ([]domain.OffDay, error) {
	return r.list(ctx, bson.M{"siteId": r.siteID, "trainerId": trainerID})
}

// ListBetween returns off-days of all trainers with fromDate <= date < toDate.
// An empty bound is open.
func (r *mongoOffDayRepository) ListBetween(ctx context.Context, fromDate, toDate string) ([]domain.OffDay, error) {
	filter := bson.M{"siteId": r.siteID}
	cond := bson.M{}
	if fromDate != "" {
		cond["$gte"] = fromDate
	}
	if toDate != "" {
		cond["$lt"] = toDate
	}
	if len(cond) > 0 {
		filter["date"] = cond
	}
	return r.list(ctx, filter)
}

func (r *mongoOffDayRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "siteId": r.siteID})
	if err != nil {
		return mapError(err)
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureOffDayIndexes creates necessary indexes for the off_days collection.
func EnsureOffDayIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "siteId", Value: 1}, {Key: "trainerId", Value: 1}, {Key: "date", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "siteId", Value: 1}, {Key: "date", Value: 1}},
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
