package schedule

import (
	"testing"
	"time"
)

func TestTo24h(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"02:30 PM", "14:30"},
		{"12:00 AM", "00:00"},
		{"12:00 PM", "12:00"},
		{"09:00 AM", "09:00"},
		{"9:15 AM", "09:15"},
		{"11:45 pm", "23:45"},
		{"17:00", "17:00"},
		{"", ""},
		{"noon", ""},
		{"13:00 PM", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := To24h(tt.in); got != tt.want {
				t.Errorf("To24h(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestTo12h(t *testing.T) {
	tests := map[string]string{
		"00:00":    "12:00 AM",
		"06:00":    "06:00 AM",
		"12:30":    "12:30 PM",
		"22:00":    "10:00 PM",
		"02:30 PM": "02:30 PM",
	}
	for in, want := range tests {
		if got := To12h(in); got != want {
			t.Errorf("To12h(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestHourlySlots(t *testing.T) {
	slots := HourlySlots(6, 22)
	if len(slots) != 17 {
		t.Fatalf("expected 17 slots, got %d", len(slots))
	}
	if slots[0] != "06:00 AM" || slots[6] != "12:00 PM" || slots[16] != "10:00 PM" {
		t.Errorf("unexpected slot labels: %v", slots)
	}
}

func TestWeekdayIndexOf(t *testing.T) {
	mon := time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 7; i++ {
		if got := WeekdayIndexOf(mon.AddDate(0, 0, i)); got != i {
			t.Errorf("WeekdayIndexOf(%s) = %d, want %d", mon.AddDate(0, 0, i).Format(DateLayout), got, i)
		}
	}
}

func TestStartOfWeek(t *testing.T) {
	sun := time.Date(2026, time.January, 11, 15, 30, 0, 0, time.UTC)
	got := StartOfWeek(sun)
	want := time.Date(2026, time.January, 5, 15, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("StartOfWeek(%v) = %v, want %v", sun, got, want)
	}

	mon := time.Date(2026, time.January, 5, 8, 0, 0, 0, time.UTC)
	if !StartOfWeek(mon).Equal(mon) {
		t.Errorf("StartOfWeek of a Monday should be itself")
	}
}

func TestDateForWeekdayIndex(t *testing.T) {
	wed := time.Date(2026, time.January, 7, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		idx  int
		want string
	}{
		{"same weekday", 2, "2026-01-07"},
		{"later this week", 4, "2026-01-09"},
		{"already passed rolls forward", 0, "2026-01-12"},
		{"sunday", 6, "2026-01-11"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DateForWeekdayIndex(wed, tt.idx)
			if ISODate(got) != tt.want {
				t.Errorf("DateForWeekdayIndex(wed, %d) = %s, want %s", tt.idx, ISODate(got), tt.want)
			}
			if WeekdayIndexOf(got) != tt.idx {
				t.Errorf("weekday mismatch: %d", WeekdayIndexOf(got))
			}
		})
	}
}

func TestParseISODate(t *testing.T) {
	d, err := ParseISODate("2026-01-05T10:00:00.000Z", time.UTC)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ISODate(d) != "2026-01-05" {
		t.Errorf("got %s", ISODate(d))
	}
	if _, err := ParseISODate("05/01/2026", time.UTC); err == nil {
		t.Error("expected error for non-ISO date")
	}
}
