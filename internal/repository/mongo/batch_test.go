package mongo

import (
	"context"
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/mongo"
)

func TestClampBatchLimit(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{0, MaxBatchOps},
		{-5, MaxBatchOps},
		{1000, MaxBatchOps},
		{450, 450},
		{100, 100},
		{1, 1},
	}
	for _, tt := range tests {
		if got := ClampBatchLimit(tt.in); got != tt.want {
			t.Errorf("ClampBatchLimit(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestChunkedWriterSplitsCommits(t *testing.T) {
	tests := []struct {
		name      string
		limit     int
		ops       int
		wantSizes []int
	}{
		{"empty", 450, 0, nil},
		{"under limit", 450, 10, []int{10}},
		{"exactly limit", 450, 450, []int{450}},
		{"over limit", 450, 1000, []int{450, 450, 100}},
		{"small limit", 3, 7, []int{3, 3, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var sizes []int
			w := newChunkedWriter(tt.limit, func(_ context.Context, models []mongo.WriteModel) (*mongo.BulkWriteResult, error) {
				sizes = append(sizes, len(models))
				return &mongo.BulkWriteResult{InsertedCount: int64(len(models))}, nil
			})
			ctx := context.Background()
			for i := 0; i < tt.ops; i++ {
				if err := w.Add(ctx, mongo.NewInsertOneModel().SetDocument(i)); err != nil {
					t.Fatalf("Add: %v", err)
				}
			}
			if err := w.Flush(ctx); err != nil {
				t.Fatalf("Flush: %v", err)
			}
			if len(sizes) != len(tt.wantSizes) {
				t.Fatalf("commits = %v, want %v", sizes, tt.wantSizes)
			}
			for i := range sizes {
				if sizes[i] != tt.wantSizes[i] {
					t.Errorf("commit %d size = %d, want %d", i, sizes[i], tt.wantSizes[i])
				}
			}
			if w.stats.Inserted != int64(tt.ops) {
				t.Errorf("inserted = %d, want %d", w.stats.Inserted, tt.ops)
			}
		})
	}
}

func TestChunkedWriterStopsOnError(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	w := newChunkedWriter(2, func(_ context.Context, models []mongo.WriteModel) (*mongo.BulkWriteResult, error) {
		calls++
		if calls == 2 {
			return nil, boom
		}
		return &mongo.BulkWriteResult{DeletedCount: int64(len(models))}, nil
	})
	ctx := context.Background()

	var err error
	added := 0
	for i := 0; i < 6 && err == nil; i++ {
		err = w.Add(ctx, mongo.NewDeleteOneModel())
		added++
	}
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if added != 4 {
		t.Errorf("added = %d before failure, want 4", added)
	}
	if w.stats.Deleted != 2 {
		t.Errorf("deleted = %d, want 2 from the first commit only", w.stats.Deleted)
	}
}
