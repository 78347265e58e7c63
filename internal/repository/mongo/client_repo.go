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

type mongoClientRepository struct {
	collection *mongo.Collection
	siteID     string
}

func NewMongoClientRepository(db *mongo.Database, siteID string) repository.ClientRepository {
	return &mongoClientRepository{
		collection: db.Collection(clientCollectionName),
		siteID:     siteID,
	}
}

func (r *mongoClientRepository) Create(ctx context.Context, client *domain.Client) (primitive.ObjectID, error) {
	if client.Name == "" {
		return primitive.NilObjectID, errors.New("client name is required")
	}

	client.ID = primitive.NewObjectID()
	client.SiteID = r.siteID
	now := time.Now().UTC()
	if client.JoinedAt.IsZero() {
		client.JoinedAt = now
	}
	client.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, client)
	if err != nil {
		return primitive.NilObjectID, mapError(err)
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

func (r *mongoClientRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Client, error) {
	var client domain.Client
	if err := r.collection.FindOne(ctx, bson.M{"_id": id, "siteId": r.siteID}).Decode(&client); err != nil {
		return nil, mapError(err)
	}
	return &client, nil
}

func (r *mongoClientRepository) GetByName(ctx context.Context, name string) (*domain.Client, error) {
	var client domain.Client
	if err := r.collection.FindOne(ctx, bson.M{"name": name, "siteId": r.siteID}).Decode(&client); err != nil {
		return nil, mapError(err)
	}
	return &client, nil
}

// List returns clients ordered by name.
func (r *mongoClientRepository) List(ctx context.Context) ([]domain.Client, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"siteId": r.siteID}, opts)
	if err != nil {
		return nil, mapError(err)
	}
	defer cursor.Close(ctx)

	var clients []domain.Client
	if err = cursor.All(ctx, &clients); err != nil {
		return nil, err
	}
	if clients == nil {
		clients = []domain.Client{}
	}
	return clients, nil
}

func (r *mongoClientRepository) Update(ctx context.Context, client *domain.Client) error {
	client.UpdatedAt = time.Now().UTC()
	filter := bson.M{"_id": client.ID, "siteId": r.siteID}
	update := bson.M{
		"$set": bson.M{
			"name":      client.Name,
			"email":     client.Email,
			"phone":     client.Phone,
			"updatedAt": client.UpdatedAt,
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

func (r *mongoClientRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "siteId": r.siteID})
	if err != nil {
		return mapError(err)
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureClientIndexes creates necessary indexes for the clients collection.
func EnsureClientIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "siteId", Value: 1}, {Key: "name", Value: 1}},
		},
		{
			Keys:    bson.D{{Key: "siteId", Value: 1}, {Key: "email", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
