// Package schedule holds the pure booking rules: time-of-day conversion,
// weekday arithmetic, trainer availability, recurrence expansion and the
// per-role booking policy. Nothing here touches the store.
package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"alcyxob/studio-calendar/internal/domain"
)

// DateLayout is the ISO calendar date format used for Session.Date and
// OffDay.Date.
const DateLayout = "2006-01-02"

// To24h converts "hh:mm AM/PM" to "HH:MM". Strings already in 24h form
// (five characters with a colon) pass through unchanged. Empty or malformed
// input yields "", which compares before every real time.
func To24h(t string) string {
	t = strings.TrimSpace(t)
	if t == "" {
		return ""
	}
	if len(t) == 5 && strings.Contains(t, ":") {
		return t
	}
	clock, modifier, _ := strings.Cut(t, " ")
	hh, mm, ok := strings.Cut(clock, ":")
	if !ok {
		return ""
	}
	hours, err := strconv.Atoi(hh)
	if err != nil || hours < 0 || hours > 12 {
		return ""
	}
	if _, err := strconv.Atoi(mm); err != nil || len(mm) != 2 {
		return ""
	}
	if hours == 12 {
		hours = 0
	}
	if strings.EqualFold(modifier, "PM") {
		hours += 12
	}
	return fmt.Sprintf("%02d:%s", hours, mm)
}

// To12h renders "HH:MM" as the "hh:mm AM" display form used on sessions.
func To12h(t string) string {
	hh, mm, ok := strings.Cut(To24h(t), ":")
	if !ok {
		return ""
	}
	hours, _ := strconv.Atoi(hh)
	modifier := "AM"
	if hours >= 12 {
		modifier = "PM"
	}
	hours %= 12
	if hours == 0 {
		hours = 12
	}
	return fmt.Sprintf("%02d:%s %s", hours, mm, modifier)
}

// HourlySlots lists "hh:00 AM" labels from first to last hour inclusive.
func HourlySlots(first, last int) []string {
	var slots []string
	for h := first; h <= last; h++ {
		slots = append(slots, To12h(fmt.Sprintf("%02d:00", h)))
	}
	return slots
}

// WeekdayIndexOf maps a date to Monday=0..Sunday=6.
func WeekdayIndexOf(d time.Time) int {
	return (int(d.Weekday()) + 6) % 7
}

// WeekdayName returns the Availability key for a Monday-indexed weekday.
func WeekdayName(idx int) string {
	if idx < 0 || idx > 6 {
		return ""
	}
	return domain.WeekdayKeys[idx]
}

// StartOfDay truncates d to midnight in its own location.
func StartOfDay(d time.Time) time.Time {
	y, m, day := d.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, d.Location())
}

// StartOfWeek returns the Monday on or before d, keeping d's time of day.
func StartOfWeek(d time.Time) time.Time {
	return d.AddDate(0, 0, -WeekdayIndexOf(d))
}

// DateForWeekdayIndex returns the first date on or after base whose
// Monday-indexed weekday is idx.
func DateForWeekdayIndex(base time.Time, idx int) time.Time {
	diff := idx - WeekdayIndexOf(base)
	if diff < 0 {
		diff += 7
	}
	return base.AddDate(0, 0, diff)
}

// ISODate formats d as YYYY-MM-DD.
func ISODate(d time.Time) string {
	return d.Format(DateLayout)
}

// ParseISODate parses YYYY-MM-DD (or the date prefix of a longer ISO
// timestamp) as midnight in loc.
func ParseISODate(s string, loc *time.Location) (time.Time, error) {
	if len(s) > 10 {
		s = s[:10]
	}
	if loc == nil {
		loc = time.UTC
	}
	return time.ParseInLocation(DateLayout, s, loc)
}
