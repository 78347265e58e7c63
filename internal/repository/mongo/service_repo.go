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

// mongoServiceRepository stores the bookable service catalog.
type mongoServiceRepository struct {
	collection *mongo.Collection
	siteID     string
}

func NewMongoServiceRepository(db *mongo.Database, siteID string) repository.ServiceRepository {
	return &mongoServiceRepository{
		collection: db.Collection(serviceCollectionName),
		siteID:     siteID,
	}
}

func (r *mongoServiceRepository) Create(ctx context.Context, svc *domain.Service) (primitive.ObjectID, error) {
	if svc.Name == "" {
		return primitive.NilObjectID, errors.New("service name is required")
	}

	svc.ID = primitive.NewObjectID()
	svc.SiteID = r.siteID
	if svc.Duration <= 0 {
		svc.Duration = domain.DefaultServiceDuration
	}
	now := time.Now().UTC()
	svc.CreatedAt = now
	svc.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, svc)
	if err != nil {
		return primitive.NilObjectID, mapError(err)
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

func (r *mongoServiceRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Service, error) {
	var svc domain.Service
	if err := r.collection.FindOne(ctx, bson.M{"_id": id, "siteId": r.siteID}).Decode(&svc); err != nil {
		return nil, mapError(err)
	}
	return &svc, nil
}

func (r *mongoServiceRepository) GetByName(ctx context.Context, name string) (*domain.Service, error) {
	var svc domain.Service
	if err := r.collection.FindOne(ctx, bson.M{"name": name, "siteId": r.siteID}).Decode(&svc); err != nil {
		return nil, mapError(err)
	}
	return &svc, nil
}

func (r *mongoServiceRepository) List(ctx context.Context) ([]domain.Service, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"siteId": r.siteID}, opts)
	if err != nil {
		return nil, mapError(err)
	}
	defer cursor.Close(ctx)

	var services []domain.Service
	if err = cursor.All(ctx, &services); err != nil {
		return nil, err
	}
	if services == nil {
		services = []domain.Service{}
	}
	return services, nil
}

func (r *mongoServiceRepository) Update(ctx context.Context, svc *domain.Service) error {
	svc.UpdatedAt = time.Now().UTC()
	filter := bson.M{"_id": svc.ID, "siteId": r.siteID}
	update := bson.M{
		"$set": bson.M{
			"name":               svc.Name,
			"duration":           svc.Duration,
			"price":              svc.Price,
			"assignedTrainerIds": svc.AssignedTrainerIDs,
			"updatedAt":          svc.UpdatedAt,
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

func (r *mongoServiceRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "siteId": r.siteID})
	if err != nil {
		return mapError(err)
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureServiceIndexes creates necessary indexes for the services collection.
func EnsureServiceIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "siteId", Value: 1}, {Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true), // Names are the specialty keys on trainers
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
