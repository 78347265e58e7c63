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

// legacyDateCeiling sorts after any "THH:MM..." suffix so an exact date
// also matches sessions stored with a full ISO timestamp.
const legacyDateCeiling = "T~"

type mongoSessionRepository struct {
	collection *mongo.Collection
	siteID     string
	batchLimit int
}

// NewMongoSessionRepository creates a session repository whose batch writes
// are split into commits of at most batchLimit operations.
func NewMongoSessionRepository(db *mongo.Database, siteID string, batchLimit int) repository.SessionRepository {
	return &mongoSessionRepository{
		collection: db.Collection(sessionCollectionName),
		siteID:     siteID,
		batchLimit: ClampBatchLimit(batchLimit),
	}
}

// sessionFilterDoc builds the query document for f within one site.
func sessionFilterDoc(siteID string, f repository.SessionFilter) bson.M {
	doc := bson.M{"siteId": siteID}

	if !f.TrainerID.IsZero() {
		doc["trainerId"] = f.TrainerID
	}

	switch {
	case !f.ClientID.IsZero() && f.ClientName != "":
		// name only matches legacy records stored without a client id
		doc["$or"] = bson.A{
			bson.M{"clientId": f.ClientID},
			bson.M{"clientName": f.ClientName, "clientId": bson.M{"$in": bson.A{nil, primitive.NilObjectID}}},
		}
	case !f.ClientID.IsZero():
		doc["clientId"] = f.ClientID
	case f.ClientName != "":
		doc["clientName"] = f.ClientName
	}

	if f.SeriesID != "" {
		doc["seriesId"] = f.SeriesID
	}

	if f.Date != "" {
		doc["date"] = bson.M{"$gte": f.Date, "$lte": f.Date + legacyDateCeiling}
	} else if f.FromDate != "" || f.ToDate != "" {
		cond := bson.M{}
		if f.FromDate != "" {
			cond["$gte"] = f.FromDate
		}
		if f.ToDate != "" {
			cond["$lt"] = f.ToDate
		}
		doc["date"] = cond
	}

	if f.Time != "" {
		doc["time"] = f.Time
	}
	return doc
}

// sessionSetDoc holds the mutable fields written on edits.
func sessionSetDoc(s *domain.Session) bson.M {
	set := bson.M{
		"clientName":  s.ClientName,
		"trainerName": s.TrainerName,
		"serviceName": s.ServiceName,
		"time":        s.Time,
		"day":         s.Day,
		"date":        s.Date,
	}
	if !s.ClientID.IsZero() {
		set["clientId"] = s.ClientID
	}
	if !s.TrainerID.IsZero() {
		set["trainerId"] = s.TrainerID
	}
	if !s.ServiceID.IsZero() {
		set["serviceId"] = s.ServiceID
	}
	return set
}

func (r *mongoSessionRepository) prepare(s *domain.Session, now time.Time) {
	s.ID = primitive.NewObjectID()
	s.SiteID = r.siteID
	if s.Status == "" {
		s.Status = domain.StatusScheduled
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
}

func (r *mongoSessionRepository) Create(ctx context.Context, session *domain.Session) (primitive.ObjectID, error) {
	if session.Date == "" || session.Time == "" {
		return primitive.NilObjectID, errors.New("session date and time are required")
	}
	r.prepare(session, time.Now().UTC())

	result, err := r.collection.InsertOne(ctx, session)
	if err != nil {
		return primitive.NilObjectID, mapError(err)
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

// CreateMany inserts sessions in chunked bulk commits. IDs are assigned in
// place. The returned count covers every committed insert even on error.
func (r *mongoSessionRepository) CreateMany(ctx context.Context, sessions []domain.Session) (int, error) {
	w := newChunkedWriter(r.batchLimit, collectionCommitter(r.collection))
	now := time.Now().UTC()
	for i := range sessions {
		r.prepare(&sessions[i], now)
		if err := w.Add(ctx, mongo.NewInsertOneModel().SetDocument(&sessions[i])); err != nil {
			return int(w.stats.Inserted), mapError(err)
		}
	}
	if err := w.Flush(ctx); err != nil {
		return int(w.stats.Inserted), mapError(err)
	}
	return int(w.stats.Inserted), nil
}

func (r *mongoSessionRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Session, error) {
	var session domain.Session
	if err := r.collection.FindOne(ctx, bson.M{"_id": id, "siteId": r.siteID}).Decode(&session); err != nil {
		return nil, mapError(err)
	}
	return &session, nil
}

// Find returns matching sessions ordered by date then creation time.
func (r *mongoSessionRepository) Find(ctx context.Context, filter repository.SessionFilter) ([]domain.Session, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "createdAt", Value: 1}})
	cursor, err := r.collection.Find(ctx, sessionFilterDoc(r.siteID, filter), opts)
	if err != nil {
		return nil, mapError(err)
	}
	defer cursor.Close(ctx)

	var sessions []domain.Session
	if err = cursor.All(ctx, &sessions); err != nil {
		return nil, mapError(err)
	}
	if sessions == nil {
		sessions = []domain.Session{}
	}
	return sessions, nil
}

func (r *mongoSessionRepository) Update(ctx context.Context, session *domain.Session) error {
	filter := bson.M{"_id": session.ID, "siteId": r.siteID}
	result, err := r.collection.UpdateOne(ctx, filter, bson.M{"$set": sessionSetDoc(session)})
	if err != nil {
		return mapError(err)
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// UpdateMany rewrites the mutable fields of each session in chunked commits
// and returns how many documents matched.
func (r *mongoSessionRepository) UpdateMany(ctx context.Context, sessions []domain.Session) (int, error) {
	w := newChunkedWriter(r.batchLimit, collectionCommitter(r.collection))
	for i := range sessions {
		s := &sessions[i]
		model := mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": s.ID, "siteId": r.siteID}).
			SetUpdate(bson.M{"$set": sessionSetDoc(s)})
		if err := w.Add(ctx, model); err != nil {
			return int(w.stats.Matched), mapError(err)
		}
	}
	if err := w.Flush(ctx); err != nil {
		return int(w.stats.Matched), mapError(err)
	}
	return int(w.stats.Matched), nil
}

func (r *mongoSessionRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "siteId": r.siteID})
	if err != nil {
		return mapError(err)
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// DeleteByIDs removes the given sessions in chunked commits. Ids that no
// longer exist are skipped.
func (r *mongoSessionRepository) DeleteByIDs(ctx context.Context, ids []primitive.ObjectID) (int64, error) {
	w := newChunkedWriter(r.batchLimit, collectionCommitter(r.collection))
	for _, id := range ids {
		model := mongo.NewDeleteOneModel().SetFilter(bson.M{"_id": id, "siteId": r.siteID})
		if err := w.Add(ctx, model); err != nil {
			return w.stats.Deleted, mapError(err)
		}
	}
	if err := w.Flush(ctx); err != nil {
		return w.stats.Deleted, mapError(err)
	}
	return w.stats.Deleted, nil
}

func (r *mongoSessionRepository) DeleteMatching(ctx context.Context, filter repository.SessionFilter) (int64, error) {
	result, err := r.collection.DeleteMany(ctx, sessionFilterDoc(r.siteID, filter))
	if err != nil {
		return 0, mapError(err)
	}
	return result.DeletedCount, nil
}

// UpdateDisplayName refreshes the cached name of a renamed trainer, client
// or service on every session that references it by id.
func (r *mongoSessionRepository) UpdateDisplayName(ctx context.Context, ref repository.DisplayNameRef, id primitive.ObjectID, name string) (int64, error) {
	var idField, nameField string
	switch ref {
	case repository.TrainerNameRef:
		idField, nameField = "trainerId", "trainerName"
	case repository.ClientNameRef:
		idField, nameField = "clientId", "clientName"
	case repository.ServiceNameRef:
		idField, nameField = "serviceId", "serviceName"
	default:
		return 0, errors.New("unknown display name reference")
	}

	filter := bson.M{"siteId": r.siteID, idField: id}
	result, err := r.collection.UpdateMany(ctx, filter, bson.M{"$set": bson.M{nameField: name}})
	if err != nil {
		return 0, mapError(err)
	}
	return result.ModifiedCount, nil
}

// EnsureSessionIndexes creates necessary indexes for the sessions collection.
// The unique slot index backs the double-booking guard.
func EnsureSessionIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "siteId", Value: 1},
				{Key: "trainerId", Value: 1},
				{Key: "date", Value: 1},
				{Key: "time", Value: 1},
			},
			Options: options.Index().
				SetUnique(true).
				SetName("unique_trainer_slot").
				SetPartialFilterExpression(bson.M{"trainerId": bson.M{"$exists": true}}),
		},
		{
			Keys: bson.D{{Key: "siteId", Value: 1}, {Key: "seriesId", Value: 1}, {Key: "date", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "siteId", Value: 1}, {Key: "clientId", Value: 1}, {Key: "date", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "siteId", Value: 1}, {Key: "clientName", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "siteId", Value: 1}, {Key: "date", Value: 1}},
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
