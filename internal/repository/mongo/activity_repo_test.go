package mongo

import (
	"regexp"
	"testing"

	"alcyxob/studio-calendar/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
)

func TestActivityFilterDoc(t *testing.T) {
	t.Run("site only", func(t *testing.T) {
		doc := activityFilterDoc("studio-a", repository.ActivityFilter{})
		if len(doc) != 1 || doc["siteId"] != "studio-a" {
			t.Fatalf("doc = %v", doc)
		}
	})

	doc := activityFilterDoc("s", repository.ActivityFilter{
		Date:    "2026-01-05",
		Trainer: " Alex ",
		Client:  "o'neil (jr.)",
	})

	tests := []struct {
		field   string
		options string
		matches []string
		rejects []string
	}{
		{"sessionDetails.date", "", []string{"2026-01-05", "2026-01-05T09:00:00.000Z"}, []string{"2026-01-06", "x2026-01-05"}},
		{"sessionDetails.trainerName", "i", []string{"Alex", "ALEX"}, []string{"Alexa", "Sam"}},
		{"sessionDetails.clientName", "i", []string{"Pat O'Neil (Jr.)"}, []string{"O'Neil Jr"}},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			cond, ok := doc[tt.field].(bson.M)
			if !ok {
				t.Fatalf("%s missing from %v", tt.field, doc)
			}
			if opt, _ := cond["$options"].(string); opt != tt.options {
				t.Errorf("$options = %q, want %q", opt, tt.options)
			}
			expr := cond["$regex"].(string)
			if tt.options == "i" {
				expr = "(?i)" + expr
			}
			re := regexp.MustCompile(expr)
			for _, s := range tt.matches {
				if !re.MatchString(s) {
					t.Errorf("%q should match %q", expr, s)
				}
			}
			for _, s := range tt.rejects {
				if re.MatchString(s) {
					t.Errorf("%q should not match %q", expr, s)
				}
			}
		})
	}
}
