package schedule

import (
	"reflect"
	"testing"
	"time"
)

func dates(occ []Occurrence) []string {
	out := make([]string, len(occ))
	for i, o := range occ {
		out[i] = ISODate(o.Date)
	}
	return out
}

func TestExpand_Weekly(t *testing.T) {
	anchor := time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, time.January, 19, 0, 0, 0, 0, time.UTC)
	today := time.Date(2026, time.January, 1, 9, 0, 0, 0, time.UTC)

	got := Expand(Rule{Frequency: Weekly, Days: []int{0, 2}}, anchor, end, today)

	// The listed dates are authoritative: Mondays Jan 5, 12, 19 and
	// Wednesdays Jan 7, 14. Wednesday Jan 21 falls after end.
	want := []string{"2026-01-05", "2026-01-12", "2026-01-19", "2026-01-07", "2026-01-14"}
	if !reflect.DeepEqual(dates(got), want) {
		t.Fatalf("Expand weekly = %v, want %v", dates(got), want)
	}
	for _, o := range got {
		if WeekdayIndexOf(o.Date) != o.Weekday {
			t.Errorf("occurrence %s tagged weekday %d", ISODate(o.Date), o.Weekday)
		}
	}
}

func TestExpand_WeeklySkipsPastStart(t *testing.T) {
	anchor := time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, time.January, 26, 0, 0, 0, 0, time.UTC)
	today := time.Date(2026, time.January, 8, 0, 0, 0, 0, time.UTC) // Thursday

	got := Expand(Rule{Frequency: Weekly, Days: []int{0, 4}}, anchor, end, today)

	// Monday Jan 5 is before today and moves forward one week. Friday Jan 9
	// is already in the future.
	want := []string{"2026-01-12", "2026-01-19", "2026-01-26", "2026-01-09", "2026-01-16", "2026-01-23"}
	if !reflect.DeepEqual(dates(got), want) {
		t.Fatalf("Expand weekly = %v, want %v", dates(got), want)
	}
}

func TestExpand_Daily(t *testing.T) {
	anchor := time.Date(2026, time.January, 3, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, time.January, 7, 0, 0, 0, 0, time.UTC)
	today := time.Date(2026, time.January, 5, 18, 0, 0, 0, time.UTC)

	got := Expand(Rule{Frequency: Daily}, anchor, end, today)

	want := []string{"2026-01-05", "2026-01-06", "2026-01-07"}
	if !reflect.DeepEqual(dates(got), want) {
		t.Fatalf("Expand daily = %v, want %v", dates(got), want)
	}
	if got[0].Weekday != 0 || got[2].Weekday != 2 {
		t.Errorf("unexpected weekdays: %+v", got)
	}
}

func TestExpand_EndBeforeStart(t *testing.T) {
	anchor := time.Date(2026, time.January, 10, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, time.January, 9, 0, 0, 0, 0, time.UTC)
	if got := Expand(Rule{Frequency: Daily}, anchor, end, anchor); len(got) != 0 {
		t.Fatalf("expected no occurrences, got %v", dates(got))
	}
	if got := Expand(Rule{Frequency: "monthly"}, anchor, anchor.AddDate(0, 1, 0), anchor); len(got) != 0 {
		t.Fatalf("unknown frequency must expand to nothing, got %v", dates(got))
	}
}

func TestNormalizeDays(t *testing.T) {
	got := NormalizeDays([]int{4, 0, 4, 9, 2, -1})
	want := []int{0, 2, 4}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("NormalizeDays = %v, want %v", got, want)
	}
}
