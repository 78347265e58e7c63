// Package ics renders booked sessions as an iCalendar feed.
package ics

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"alcyxob/studio-calendar/internal/domain"
	"alcyxob/studio-calendar/internal/schedule"
)

const prodID = "-//Studio Calendar//Sessions//EN"

// Event is one VEVENT.
type Event struct {
	UID         string
	Summary     string
	Description string
	Start       time.Time
	End         time.Time
}

// FromSessions converts sessions to events in loc. minutes returns the
// length of a service by name. Sessions with an unreadable date or time
// are skipped.
func FromSessions(sessions []domain.Session, loc *time.Location, minutes func(serviceName string) int) []Event {
	events := make([]Event, 0, len(sessions))
	for _, s := range sessions {
		start, ok := sessionStart(s, loc)
		if !ok {
			continue
		}
		length := domain.DefaultServiceDuration
		if minutes != nil {
			if m := minutes(s.ServiceName); m > 0 {
				length = m
			}
		}
		events = append(events, Event{
			UID:         s.ID.Hex() + "@studio-calendar",
			Summary:     fmt.Sprintf("%s with %s", s.ServiceName, s.TrainerName),
			Description: "Client: " + s.ClientName,
			Start:       start,
			End:         start.Add(time.Duration(length) * time.Minute),
		})
	}
	return events
}

func sessionStart(s domain.Session, loc *time.Location) (time.Time, bool) {
	day, err := schedule.ParseISODate(s.DateKey(), loc)
	if err != nil {
		return time.Time{}, false
	}
	hh, mm, ok := strings.Cut(schedule.To24h(s.Time), ":")
	if !ok {
		return time.Time{}, false
	}
	h, errH := strconv.Atoi(hh)
	m, errM := strconv.Atoi(mm)
	if errH != nil || errM != nil {
		return time.Time{}, false
	}
	return time.Date(day.Year(), day.Month(), day.Day(), h, m, 0, 0, day.Location()), true
}

// Render builds the .ics document. stamp is written as DTSTAMP on every
// event.
func Render(calendarName string, events []Event, stamp time.Time) string {
	var sb strings.Builder

	sb.WriteString("BEGIN:VCALENDAR\r\n")
	sb.WriteString("VERSION:2.0\r\n")
	sb.WriteString("PRODID:" + prodID + "\r\n")
	sb.WriteString("CALSCALE:GREGORIAN\r\n")
	sb.WriteString("METHOD:PUBLISH\r\n")
	if calendarName != "" {
		sb.WriteString("X-WR-CALNAME:" + escape(calendarName) + "\r\n")
	}

	for _, e := range events {
		sb.WriteString("BEGIN:VEVENT\r\n")
		sb.WriteString("UID:" + e.UID + "\r\n")
		sb.WriteString("DTSTAMP:" + formatTime(stamp) + "\r\n")
		sb.WriteString("DTSTART:" + formatTime(e.Start) + "\r\n")
		sb.WriteString("DTEND:" + formatTime(e.End) + "\r\n")
		sb.WriteString("SUMMARY:" + escape(e.Summary) + "\r\n")
		if e.Description != "" {
			sb.WriteString("DESCRIPTION:" + escape(e.Description) + "\r\n")
		}
		sb.WriteString("END:VEVENT\r\n")
	}

	sb.WriteString("END:VCALENDAR\r\n")
	return sb.String()
}

func formatTime(t time.Time) string {
	return t.UTC().Format("20060102T150405Z")
}

func escape(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, ";", "\\;")
	s = strings.ReplaceAll(s, ",", "\\,")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}
