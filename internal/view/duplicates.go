package view

import (
	"sort"

	"alcyxob/studio-calendar/internal/domain"
	"alcyxob/studio-calendar/internal/schedule"
)

// DuplicateGroup is a set of sessions holding the same trainer slot. Keep
// is the newest by creation time; Extra are the rest.
type DuplicateGroup struct {
	TrainerName string           `json:"trainerName"`
	Date        string           `json:"date"`
	Time        string           `json:"time"`
	Keep        domain.Session   `json:"keep"`
	Extra       []domain.Session `json:"extra"`
}

// DuplicateSlots groups sessions by (trainer, date, time) and returns the
// groups with more than one member, ordered by date and time.
func DuplicateSlots(sessions []domain.Session) []DuplicateGroup {
	type key struct{ trainer, date, slot string }
	buckets := make(map[key][]domain.Session)
	var order []key
	for _, s := range sessions {
		trainer := "name:" + s.TrainerName
		if !s.TrainerID.IsZero() {
			trainer = s.TrainerID.Hex()
		}
		k := key{trainer: trainer, date: s.DateKey(), slot: schedule.To24h(s.Time)}
		if _, seen := buckets[k]; !seen {
			order = append(order, k)
		}
		buckets[k] = append(buckets[k], s)
	}

	var groups []DuplicateGroup
	for _, k := range order {
		members := buckets[k]
		if len(members) < 2 {
			continue
		}
		sort.SliceStable(members, func(i, j int) bool {
			return members[i].CreatedAt.After(members[j].CreatedAt)
		})
		groups = append(groups, DuplicateGroup{
			TrainerName: members[0].TrainerName,
			Date:        k.date,
			Time:        members[0].Time,
			Keep:        members[0],
			Extra:       members[1:],
		})
	}
	sort.SliceStable(groups, func(i, j int) bool {
		if groups[i].Date != groups[j].Date {
			return groups[i].Date < groups[j].Date
		}
		return schedule.To24h(groups[i].Time) < schedule.To24h(groups[j].Time)
	})
	return groups
}
