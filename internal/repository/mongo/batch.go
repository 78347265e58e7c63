package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
)

// MaxBatchOps is the hard ceiling of write models per physical commit.
const MaxBatchOps = 450

// ClampBatchLimit keeps a configured batch size within (0, MaxBatchOps].
func ClampBatchLimit(limit int) int {
	if limit <= 0 || limit > MaxBatchOps {
		return MaxBatchOps
	}
	return limit
}

type bulkCommitter func(ctx context.Context, models []mongo.WriteModel) (*mongo.BulkWriteResult, error)

// batchStats accumulates the results of every commit of one chunkedWriter.
type batchStats struct {
	Commits  int
	Inserted int64
	Modified int64
	Matched  int64
	Deleted  int64
}

// chunkedWriter buffers write models and commits them whenever the buffer
// reaches the limit. Callers Add models and Flush once at the end.
type chunkedWriter struct {
	limit   int
	commit  bulkCommitter
	pending []mongo.WriteModel
	stats   batchStats
}

func newChunkedWriter(limit int, commit bulkCommitter) *chunkedWriter {
	limit = ClampBatchLimit(limit)
	return &chunkedWriter{
		limit:   limit,
		commit:  commit,
		pending: make([]mongo.WriteModel, 0, limit),
	}
}

func collectionCommitter(coll *mongo.Collection) bulkCommitter {
	return func(ctx context.Context, models []mongo.WriteModel) (*mongo.BulkWriteResult, error) {
		return coll.BulkWrite(ctx, models)
	}
}

// Add queues m and commits the batch once it is full.
func (w *chunkedWriter) Add(ctx context.Context, m mongo.WriteModel) error {
	w.pending = append(w.pending, m)
	if len(w.pending) >= w.limit {
		return w.Flush(ctx)
	}
	return nil
}

// Flush commits whatever is queued. It is a no-op on an empty buffer.
func (w *chunkedWriter) Flush(ctx context.Context) error {
	if len(w.pending) == 0 {
		return nil
	}
	res, err := w.commit(ctx, w.pending)
	w.stats.Commits++
	if res != nil {
		w.stats.Inserted += res.InsertedCount
		w.stats.Modified += res.ModifiedCount
		w.stats.Matched += res.MatchedCount
		w.stats.Deleted += res.DeletedCount
	}
	w.pending = w.pending[:0]
	return err
}
