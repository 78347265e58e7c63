package schedule

import (
	"sort"
	"time"
)

// Frequency is the cadence of a recurring series.
type Frequency string

const (
	Daily  Frequency = "daily"
	Weekly Frequency = "weekly"
)

// EndType selects how a series end date is resolved.
type EndType string

const (
	EndNever  EndType = "never"
	EndOnDate EndType = "on_date"
)

// Rule is a recurrence rule. Days holds Monday-indexed weekdays and is only
// read for Weekly rules.
type Rule struct {
	Frequency Frequency
	Days      []int
	EndType   EndType
	Until     time.Time
}

// Occurrence is one materialized instance of a series.
type Occurrence struct {
	Date    time.Time
	Weekday int
}

// NormalizeDays sorts and de-duplicates a weekday set, dropping values
// outside 0..6.
func NormalizeDays(days []int) []int {
	seen := make(map[int]bool, len(days))
	out := make([]int, 0, len(days))
	for _, d := range days {
		if d < 0 || d > 6 || seen[d] {
			continue
		}
		seen[d] = true
		out = append(out, d)
	}
	sort.Ints(out)
	return out
}

// Expand materializes rule between anchor and end (inclusive, compared as
// calendar dates) without producing instances before today.
//
// Daily rules yield one instance per date from max(anchor, today). Weekly
// rules yield, for each weekday of rule.Days in the given order, every
// seventh day starting at the first occurrence on or after anchor; a start
// that lies before today is pushed forward one week. Instances are grouped
// by weekday, not merged into global date order.
func Expand(rule Rule, anchor, end, today time.Time) []Occurrence {
	anchor, end, today = StartOfDay(anchor), StartOfDay(end), StartOfDay(today)
	var out []Occurrence

	switch rule.Frequency {
	case Daily:
		cur := anchor
		if cur.Before(today) {
			cur = today
		}
		for !cur.After(end) {
			out = append(out, Occurrence{Date: cur, Weekday: WeekdayIndexOf(cur)})
			cur = cur.AddDate(0, 0, 1)
		}
	case Weekly:
		for _, idx := range rule.Days {
			if idx < 0 || idx > 6 {
				continue
			}
			cur := DateForWeekdayIndex(anchor, idx)
			if cur.Before(today) {
				cur = cur.AddDate(0, 0, 7)
			}
			for !cur.After(end) {
				out = append(out, Occurrence{Date: cur, Weekday: idx})
				cur = cur.AddDate(0, 0, 7)
			}
		}
	}
	return out
}
