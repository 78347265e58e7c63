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

// mongoTrainerRepository implements repository.TrainerRepository.
// Availability templates are normalized on every read so callers never see
// the legacy single-shift form.
type mongoTrainerRepository struct {
	collection *mongo.Collection
	siteID     string
}

func NewMongoTrainerRepository(db *mongo.Database, siteID string) repository.TrainerRepository {
	return &mongoTrainerRepository{
		collection: db.Collection(trainerCollectionName),
		siteID:     siteID,
	}
}

func (r *mongoTrainerRepository) Create(ctx context.Context, trainer *domain.Trainer) (primitive.ObjectID, error) {
	if trainer.Name == "" {
		return primitive.NilObjectID, errors.New("trainer name is required")
	}

	trainer.ID = primitive.NewObjectID()
	trainer.SiteID = r.siteID
	if trainer.Status == "" {
		trainer.Status = domain.TrainerActive
	}
	if trainer.Specialties == nil {
		trainer.Specialties = []string{}
	}
	if trainer.Availability == nil {
		trainer.Availability = domain.Availability{}
	}
	trainer.Availability.Normalize()
	now := time.Now().UTC()
	trainer.CreatedAt = now
	trainer.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, trainer)
	if err != nil {
		return primitive.NilObjectID, mapError(err)
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

func (r *mongoTrainerRepository) findOne(ctx context.Context, filter bson.M) (*domain.Trainer, error) {
	filter["siteId"] = r.siteID
	var trainer domain.Trainer
	if err := r.collection.FindOne(ctx, filter).Decode(&trainer); err != nil {
		return nil, mapError(err)
	}
	trainer.Availability.Normalize()
	return &trainer, nil
}

func (r *mongoTrainerRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Trainer, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *mongoTrainerRepository) GetByName(ctx context.Context, name string) (*domain.Trainer, error) {
	return r.findOne(ctx, bson.M{"name": name})
}

// List returns every trainer of the site ordered by name.
func (r *mongoTrainerRepository) List(ctx context.Context) ([]domain.Trainer, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"siteId": r.siteID}, opts)
	if err != nil {
		return nil, mapError(err)
	}
	defer cursor.Close(ctx)

	var trainers []domain.Trainer
	if err = cursor.All(ctx, &trainers); err != nil {
		return nil, err
	}
	if trainers == nil {
		trainers = []domain.Trainer{}
	}
	for i := range trainers {
		trainers[i].Availability.Normalize()
	}
	return trainers, nil
}

func (r *mongoTrainerRepository) Update(ctx context.Context, trainer *domain.Trainer) error {
	if trainer.Availability != nil {
		trainer.Availability.Normalize()
	}
	trainer.UpdatedAt = time.Now().UTC()

	filter := bson.M{"_id": trainer.ID, "siteId": r.siteID}
	update := bson.M{
		"$set": bson.M{
			"name":         trainer.Name,
			"specialties":  trainer.Specialties,
			"availability": trainer.Availability,
			"status":       trainer.Status,
			"updatedAt":    trainer.UpdatedAt,
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return mapError(err)
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoTrainerRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "siteId": r.siteID})
	if err != nil {
		return mapError(err)
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// RenameSpecialty rewrites oldName to newName in every trainer's specialties.
func (r *mongoTrainerRepository) RenameSpecialty(ctx context.Context, oldName, newName string) (int64, error) {
	filter := bson.M{"siteId": r.siteID, "specialties": oldName}
	update := bson.M{
		"$set": bson.M{
			"specialties.$": newName,
			"updatedAt":     time.Now().UTC(),
		},
	}
	result, err := r.collection.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, mapError(err)
	}
	return result.ModifiedCount, nil
}

// EnsureTrainerIndexes creates necessary indexes for the trainers collection.
func EnsureTrainerIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "siteId", Value: 1}, {Key: "name", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "siteId", Value: 1}, {Key: "specialties", Value: 1}},
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
