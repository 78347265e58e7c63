package schedule

import (
	"testing"
	"time"

	"alcyxob/studio-calendar/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func testTrainer() domain.Trainer {
	return domain.Trainer{
		ID:          primitive.NewObjectID(),
		Name:        "Alex Rivera",
		Specialties: []string{"Strength", "HIIT"},
		Status:      domain.TrainerActive,
		Availability: domain.Availability{
			"monday":    {Active: true, Shifts: []domain.Shift{{Start: "09:00", End: "10:00"}, {Start: "14:00", End: "18:00"}}},
			"tuesday":   {Active: false, Shifts: []domain.Shift{{Start: "09:00", End: "17:00"}}},
			"wednesday": {Active: true},
			"thursday":  {Active: true, Start: "07:00", End: "12:00"},
		},
	}
}

var (
	monday    = time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC)
	tuesday   = monday.AddDate(0, 0, 1)
	wednesday = monday.AddDate(0, 0, 2)
	thursday  = monday.AddDate(0, 0, 3)
	friday    = monday.AddDate(0, 0, 4)
)

func TestIsBookable(t *testing.T) {
	tr := testTrainer()
	tests := []struct {
		name string
		date time.Time
		slot string
		want bool
	}{
		{"shift start is bookable", monday, "09:00 AM", true},
		{"shift end is not bookable", monday, "10:00 AM", false},
		{"second shift", monday, "05:00 PM", true},
		{"gap between shifts", monday, "12:00 PM", false},
		{"24h input", monday, "14:00", true},
		{"inactive day", tuesday, "09:00 AM", false},
		{"active day without shifts", wednesday, "09:00 AM", false},
		{"legacy start/end", thursday, "11:00 AM", true},
		{"absent day", friday, "09:00 AM", false},
		{"empty slot", monday, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsBookable(&tr, tt.date, tt.slot, nil); got != tt.want {
				t.Errorf("IsBookable(%s, %q) = %v, want %v", ISODate(tt.date), tt.slot, got, tt.want)
			}
		})
	}
}

func TestIsBookable_OffDayOverridesShifts(t *testing.T) {
	tr := testTrainer()
	offDays := []domain.OffDay{{TrainerID: tr.ID, Date: "2026-01-05"}}
	if IsBookable(&tr, monday, "09:00 AM", offDays) {
		t.Fatal("off-day must block booking")
	}
	other := []domain.OffDay{{TrainerID: primitive.NewObjectID(), Date: "2026-01-05"}}
	if !IsBookable(&tr, monday, "09:00 AM", other) {
		t.Fatal("another trainer's off-day must not block booking")
	}
}

func TestIsBookable_InactiveDayAlwaysFalse(t *testing.T) {
	tr := testTrainer()
	for _, slot := range HourlySlots(0, 23) {
		if IsBookable(&tr, tuesday, slot, nil) {
			t.Fatalf("slot %s bookable on inactive day", slot)
		}
	}
}

func TestIsBookable_OverlappingShifts(t *testing.T) {
	tr := testTrainer()
	tr.Availability["friday"] = domain.DaySchedule{Active: true, Shifts: []domain.Shift{
		{Start: "08:00", End: "12:00"},
		{Start: "10:00", End: "13:00"},
	}}
	for _, slot := range []string{"08:00 AM", "11:00 AM", "12:00 PM"} {
		if !IsBookable(&tr, friday, slot, nil) {
			t.Errorf("expected %s bookable in overlapping shifts", slot)
		}
	}
	if IsBookable(&tr, friday, "01:00 PM", nil) {
		t.Error("01:00 PM is the end of the union and must not be bookable")
	}
}

func TestSlotTaken(t *testing.T) {
	tr := testTrainer()
	existing := domain.Session{ID: primitive.NewObjectID(), TrainerID: tr.ID, Date: "2026-01-05", Time: "09:00 AM"}
	legacy := domain.Session{ID: primitive.NewObjectID(), TrainerName: tr.Name, Date: "2026-01-05T00:00:00.000Z", Time: "02:00 PM"}
	sessions := []domain.Session{existing, legacy}

	if !SlotTaken(sessions, &tr, "2026-01-05", "09:00 AM", primitive.NilObjectID) {
		t.Error("expected slot taken")
	}
	if !SlotTaken(sessions, &tr, "2026-01-05", "14:00", primitive.NilObjectID) {
		t.Error("expected legacy name-matched slot taken")
	}
	if SlotTaken(sessions, &tr, "2026-01-05", "09:00 AM", existing.ID) {
		t.Error("a session must not collide with itself")
	}
	if SlotTaken(sessions, &tr, "2026-01-06", "09:00 AM", primitive.NilObjectID) {
		t.Error("different date must be free")
	}
}

func TestAvailableTrainers(t *testing.T) {
	a := testTrainer()
	b := testTrainer()
	b.Name = "Sarah Chen"
	b.Specialties = []string{"Yoga"}
	c := testTrainer()
	c.Name = "Marcus Thorne"
	c.Status = domain.TrainerInactive

	all := []domain.Trainer{a, b, c}

	got := AvailableTrainers(all, SlotQuery{Date: monday, Time: "09:00 AM"}, nil)
	if len(got) != 2 {
		t.Fatalf("expected 2 active bookable trainers, got %d", len(got))
	}

	got = AvailableTrainers(all, SlotQuery{Date: monday, Time: "09:00 AM", ServiceName: "Yoga"}, nil)
	if len(got) != 1 || got[0].Name != "Sarah Chen" {
		t.Fatalf("expected only Sarah Chen for Yoga, got %+v", got)
	}

	got = AvailableTrainers(all, SlotQuery{Date: monday, Time: "09:00 AM", ExcludeTrainer: a.ID}, nil)
	if len(got) != 1 || got[0].ID != b.ID {
		t.Fatalf("expected excluded trainer dropped, got %+v", got)
	}
}
