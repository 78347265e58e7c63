package mongo

import (
	"context"

	"alcyxob/studio-calendar/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Watch opens a change stream on the site's sessions and re-runs filter on
// every change. Change streams need a replica set; the open error is
// returned as is so callers can fall back to polling.
func (r *mongoSessionRepository) Watch(ctx context.Context, filter repository.SessionFilter) (<-chan repository.SessionSnapshot, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"$or": bson.A{
			bson.M{"fullDocument.siteId": r.siteID},
			bson.M{"operationType": "delete"},
		}}}},
	}
	opts := options.ChangeStream().SetFullDocument(options.UpdateLookup)
	stream, err := r.collection.Watch(ctx, pipeline, opts)
	if err != nil {
		return nil, mapError(err)
	}

	out := make(chan repository.SessionSnapshot, 1)
	go func() {
		defer close(out)
		defer stream.Close(context.Background())

		push := func() bool {
			sessions, err := r.Find(ctx, filter)
			select {
			case out <- repository.SessionSnapshot{Sessions: sessions, Err: err}:
			case <-ctx.Done():
				return false
			}
			return err == nil
		}

		if !push() {
			return
		}
		for stream.Next(ctx) {
			// Drain events that piled up while the last query ran.
			for stream.RemainingBatchLength() > 0 && stream.Next(ctx) {
			}
			if !push() {
				return
			}
		}
		if err := stream.Err(); err != nil && ctx.Err() == nil {
			select {
			case out <- repository.SessionSnapshot{Err: mapError(err)}:
			case <-ctx.Done():
			}
		}
	}()
	return out, nil
}
