package schedule

import (
	"time"

	"alcyxob/studio-calendar/internal/domain"
)

// RolePolicy collects the booking rules that differ by actor role.
type RolePolicy struct {
	// BookingWindowDays bounds how far ahead a slot may be selected.
	// Zero means unlimited.
	BookingWindowDays int
	// SeriesHorizonDays caps recurrence end dates.
	SeriesHorizonDays int
	// ForceSeriesEnd makes every series end at the horizon regardless of
	// the requested end type.
	ForceSeriesEnd bool
	// RequireClientLookup means the named client must exist in the client
	// set; self-booking clients use their own identity instead.
	RequireClientLookup bool
	CanBook             bool
	CanManageOffDays    bool
	// OwnSessionsOnly restricts edits and cancellations to the actor's own
	// sessions.
	OwnSessionsOnly bool
}

// PolicyTable maps every role to its policy.
type PolicyTable map[domain.Role]RolePolicy

// NewPolicyTable builds the table from the configured client window and
// staff series horizon.
func NewPolicyTable(clientWindowDays, staffHorizonDays int) PolicyTable {
	staff := RolePolicy{
		SeriesHorizonDays:   staffHorizonDays,
		RequireClientLookup: true,
		CanBook:             true,
		CanManageOffDays:    true,
	}
	trainer := staff
	trainer.CanBook = false
	trainer.CanManageOffDays = false

	return PolicyTable{
		domain.RoleAdmin:   staff,
		domain.RoleManager: staff,
		domain.RoleTrainer: trainer,
		domain.RoleClient: {
			BookingWindowDays: clientWindowDays,
			SeriesHorizonDays: clientWindowDays,
			ForceSeriesEnd:    true,
			CanBook:           true,
			OwnSessionsOnly:   true,
		},
	}
}

// For returns the policy of role. Unknown roles get the zero policy, which
// permits nothing.
func (p PolicyTable) For(role domain.Role) RolePolicy {
	return p[role]
}

// WindowEnd is the last selectable date, or the zero time when unlimited.
func (rp RolePolicy) WindowEnd(today time.Time) time.Time {
	if rp.BookingWindowDays <= 0 {
		return time.Time{}
	}
	return StartOfDay(today).AddDate(0, 0, rp.BookingWindowDays)
}

// WithinWindow reports whether date may be selected. With a 14-day window,
// today+14 is the last accepted date.
func (rp RolePolicy) WithinWindow(date, today time.Time) bool {
	end := rp.WindowEnd(today)
	if end.IsZero() {
		return true
	}
	return !StartOfDay(date).After(end)
}

// SeriesEnd resolves the last date a series may reach: "never" runs two
// years from today, forced policies stop at the horizon, and explicit dates
// are clamped to the horizon.
func (rp RolePolicy) SeriesEnd(rule Rule, today time.Time) time.Time {
	today = StartOfDay(today)
	horizon := today.AddDate(0, 0, rp.SeriesHorizonDays)
	if rp.ForceSeriesEnd {
		return horizon
	}
	if rule.EndType == EndNever || rule.Until.IsZero() {
		return today.AddDate(2, 0, 0)
	}
	until := StartOfDay(rule.Until)
	if rp.SeriesHorizonDays > 0 && until.After(horizon) {
		return horizon
	}
	return until
}
