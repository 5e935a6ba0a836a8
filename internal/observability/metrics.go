package observability

import (
	"fmt"
	"time"
)

// Metrics holds calculated metrics derived from the event log.
type Metrics struct {
	WishesCreated   int            `json:"wishes_created"`
	WishesCompleted int            `json:"wishes_completed"`
	StageMoves      map[string]int `json:"stage_moves"`
	CardsAppended   int            `json:"cards_appended"`
	CardsCompleted  int            `json:"cards_completed"`
	DocsWritten     int            `json:"docs_written"`
	MalformedCards  int            `json:"malformed_cards"`
	EventCount      int            `json:"event_count"`
	OldestEvent     *time.Time     `json:"oldest_event,omitempty"`
	NewestEvent     *time.Time     `json:"newest_event,omitempty"`
}

// ParseWindow parses a lookback window like "7d", "30d", or "24h" into the
// corresponding time in the past. The count must be positive.
func ParseWindow(s string) (time.Time, error) {
	now := time.Now().UTC()
	if len(s) < 2 {
		return time.Time{}, fmt.Errorf("invalid window %q", s)
	}

	var num int
	if _, err := fmt.Sscanf(s[:len(s)-1], "%d", &num); err != nil {
		return time.Time{}, fmt.Errorf("invalid window %q: %w", s, err)
	}
	if num <= 0 {
		return time.Time{}, fmt.Errorf("invalid window %q: count must be positive", s)
	}

	switch s[len(s)-1] {
	case 'd':
		return now.AddDate(0, 0, -num), nil
	case 'h':
		return now.Add(-time.Duration(num) * time.Hour), nil
	}
	return time.Time{}, fmt.Errorf("invalid window suffix in %q (use d or h)", s)
}

// MetricsCalculator derives metrics from the event log.
type MetricsCalculator interface {
	Calculate(since time.Time) (*Metrics, error)
}

// metricsCalculator implements MetricsCalculator by reading from an EventLog.
type metricsCalculator struct {
	eventLog EventLog
}

// NewMetricsCalculator creates a new MetricsCalculator that reads from the given EventLog.
func NewMetricsCalculator(eventLog EventLog) MetricsCalculator {
	return &metricsCalculator{eventLog: eventLog}
}

// Calculate reads all events since the given time and aggregates them into metrics.
func (mc *metricsCalculator) Calculate(since time.Time) (*Metrics, error) {
	events, err := mc.eventLog.Read(EventFilter{Since: &since})
	if err != nil {
		return nil, fmt.Errorf("reading events for metrics: %w", err)
	}

	m := &Metrics{
		StageMoves: make(map[string]int),
	}

	m.EventCount = len(events)

	for i, event := range events {
		if i == 0 {
			t := event.Time
			m.OldestEvent = &t
		}
		t := event.Time
		m.NewestEvent = &t

		switch event.Type {
		case "wish.created":
			m.WishesCreated++
		case "wish.stage_changed":
			if stage, ok := event.Data["new_stage"].(string); ok {
				m.StageMoves[stage]++
				if stage == "completed" {
					m.WishesCompleted++
				}
			}
		case "wish.doc_written":
			m.DocsWritten++
		case "taskcard.appended":
			m.CardsAppended++
		case "taskcard.status_changed":
			if status, ok := event.Data["new_status"].(string); ok && status == "done" {
				m.CardsCompleted++
			}
		case "taskcard.skipped_malformed":
			m.MalformedCards++
		}
	}

	return m, nil
}
