package mongo

import (
	"errors"
	"testing"

	"alcyxob/studio-calendar/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestSessionFilterDoc(t *testing.T) {
	trainerID := primitive.NewObjectID()
	clientID := primitive.NewObjectID()

	t.Run("site only", func(t *testing.T) {
		doc := sessionFilterDoc("studio-a", repository.SessionFilter{})
		if len(doc) != 1 || doc["siteId"] != "studio-a" {
			t.Fatalf("doc = %v", doc)
		}
	})

	t.Run("client id and name are OR'ed", func(t *testing.T) {
		doc := sessionFilterDoc("s", repository.SessionFilter{ClientID: clientID, ClientName: "Dana"})
		or, ok := doc["$or"].(bson.A)
		if !ok || len(or) != 2 {
			t.Fatalf("$or = %v", doc["$or"])
		}
		if _, present := doc["clientId"]; present {
			t.Error("clientId must only appear inside $or")
		}
		byName, _ := or[1].(bson.M)
		if byName["clientName"] != "Dana" {
			t.Fatalf("name branch = %v", or[1])
		}
		legacy, ok := byName["clientId"].(bson.M)
		if !ok || len(legacy["$in"].(bson.A)) != 2 {
			t.Errorf("name branch must be limited to sessions without a client id, got %v", byName["clientId"])
		}
	})

	t.Run("name only", func(t *testing.T) {
		doc := sessionFilterDoc("s", repository.SessionFilter{ClientName: "Dana"})
		if doc["clientName"] != "Dana" {
			t.Errorf("clientName = %v", doc["clientName"])
		}
	})

	t.Run("series forward", func(t *testing.T) {
		doc := sessionFilterDoc("s", repository.SessionFilter{SeriesID: "series_x", FromDate: "2026-01-19"})
		if doc["seriesId"] != "series_x" {
			t.Errorf("seriesId = %v", doc["seriesId"])
		}
		cond, ok := doc["date"].(bson.M)
		if !ok || cond["$gte"] != "2026-01-19" {
			t.Errorf("date = %v", doc["date"])
		}
		if _, has := cond["$lt"]; has {
			t.Error("unexpected upper bound")
		}
	})

	t.Run("exact date tolerates legacy timestamps", func(t *testing.T) {
		doc := sessionFilterDoc("s", repository.SessionFilter{TrainerID: trainerID, Date: "2026-01-05", Time: "10:00 AM"})
		cond := doc["date"].(bson.M)
		lo, hi := cond["$gte"].(string), cond["$lte"].(string)
		for _, stored := range []string{"2026-01-05", "2026-01-05T00:00:00.000Z", "2026-01-05T23:59:59.999Z"} {
			if stored < lo || stored > hi {
				t.Errorf("%q outside [%q, %q]", stored, lo, hi)
			}
		}
		if "2026-01-06" <= hi {
			t.Errorf("next day matched by %q", hi)
		}
		if doc["trainerId"] != trainerID || doc["time"] != "10:00 AM" {
			t.Errorf("doc = %v", doc)
		}
	})

	t.Run("range", func(t *testing.T) {
		doc := sessionFilterDoc("s", repository.SessionFilter{FromDate: "2026-01-05", ToDate: "2026-01-12"})
		cond := doc["date"].(bson.M)
		if cond["$gte"] != "2026-01-05" || cond["$lt"] != "2026-01-12" {
			t.Errorf("date = %v", cond)
		}
	})
}

func TestMapError(t *testing.T) {
	dup := mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 11000, Message: "E11000 duplicate key"}}}
	missing := mongo.CommandError{Code: 291, Message: "No query solutions"}

	tests := []struct {
		name string
		in   error
		want error
	}{
		{"nil", nil, nil},
		{"no documents", mongo.ErrNoDocuments, repository.ErrNotFound},
		{"duplicate key", dup, repository.ErrDuplicate},
		{"missing index", missing, repository.ErrMissingIndex},
		{"missing index message", errors.New("The query requires an index"), repository.ErrMissingIndex},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapError(tt.in)
			if tt.want == nil {
				if got != nil {
					t.Fatalf("got %v, want nil", got)
				}
				return
			}
			if !errors.Is(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}

	other := errors.New("network down")
	if got := mapError(other); got != other {
		t.Errorf("unrelated error rewritten: %v", got)
	}
}
