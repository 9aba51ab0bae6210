// Package calendar builds reminder events from task alerts and submits
// them to the external calendar API. OAuth and token refresh are
// handled by the provider; this package only consumes a bearer token.
package calendar

import (
	"fmt"
	"time"

	"github.com/amestudio/agencydesk/internal/model"
)

// reminderMinutes is the popup reminder lead time attached to every
// event.
const reminderMinutes = 10

// EventDateTime is a calendar timestamp: RFC 3339 instant plus the IANA
// time zone the calendar should display it in.
type EventDateTime struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone"`
}

// ReminderOverride is a single non-default reminder on an event.
type ReminderOverride struct {
	Method  string `json:"method"`
	Minutes int    `json:"minutes"`
}

// Reminders configures an event's reminder behavior.
type Reminders struct {
	UseDefault bool               `json:"useDefault"`
	Overrides  []ReminderOverride `json:"overrides,omitempty"`
}

// Event is the calendar-event payload submitted to the API.
type Event struct {
	Summary     string        `json:"summary"`
	Description string        `json:"description,omitempty"`
	Start       EventDateTime `json:"start"`
	End         EventDateTime `json:"end"`
	Reminders   Reminders     `json:"reminders"`
}

// BuildEvent constructs the calendar event for a task's alert. The
// event starts at the alert date (falling back to the due date when no
// alert is set), lasts for duration, and carries a single 10-minute
// popup reminder instead of the calendar's defaults.
func BuildEvent(task model.Task, timeZone string, duration time.Duration) (Event, error) {
	start := task.DueDate
	if task.AlertDate != nil {
		start = *task.AlertDate
	}
	if start.IsZero() {
		return Event{}, fmt.Errorf("task %s has no alert or due date", task.ID)
	}

	loc, err := time.LoadLocation(timeZone)
	if err != nil {
		return Event{}, fmt.Errorf("loading time zone %q: %w", timeZone, err)
	}
	start = start.In(loc)

	if duration <= 0 {
		duration = 30 * time.Minute
	}
	end := start.Add(duration)

	return Event{
		Summary:     task.Name,
		Description: task.Description,
		Start: EventDateTime{
			DateTime: start.Format(time.RFC3339),
			TimeZone: timeZone,
		},
		End: EventDateTime{
			DateTime: end.Format(time.RFC3339),
			TimeZone: timeZone,
		},
		Reminders: Reminders{
			UseDefault: false,
			Overrides: []ReminderOverride{
				{Method: "popup", Minutes: reminderMinutes},
			},
		},
	}, nil
}
