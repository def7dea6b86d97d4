package fixtures

import (
	"fmt"
	"time"

	"github.com/davidleathers/shadow-automation-backend/internal/service/behavior"
)

// BurstEvents returns count events spaced gap apart, all with the same
// content. Useful for exercising rapid-fire detection.
func BurstEvents(start time.Time, count int, gap time.Duration) []behavior.Event {
	events := make([]behavior.Event, count)
	for i := range events {
		events[i] = behavior.Event{
			Timestamp: start.Add(time.Duration(i) * gap),
			Content:   "bulk operation",
		}
	}
	return events
}

// ScheduledEvents returns count events on a fixed interval with varied
// content, the shape a cron-driven automation produces.
func ScheduledEvents(start time.Time, count int, interval time.Duration) []behavior.Event {
	events := make([]behavior.Event, count)
	for i := range events {
		events[i] = behavior.Event{
			Timestamp: start.Add(time.Duration(i) * interval),
			Content:   fmt.Sprintf("scheduled job run %d completed", i),
		}
	}
	return events
}

// HumanEvents returns events with irregular spacing and distinct content,
// the shape of a person working interactively.
func HumanEvents(start time.Time) []behavior.Event {
	gaps := []time.Duration{
		0,
		47 * time.Second,
		3 * time.Minute,
		11 * time.Minute,
		90 * time.Second,
		26 * time.Minute,
	}
	contents := []string{
		"reviewed quarterly report draft",
		"replied to vendor escalation thread",
		"updated project timeline",
		"approved expense submission",
		"commented on design proposal",
		"scheduled team retrospective",
	}

	events := make([]behavior.Event, len(gaps))
	at := start
	for i := range gaps {
		at = at.Add(gaps[i])
		events[i] = behavior.Event{Timestamp: at, Content: contents[i]}
	}
	return events
}
