package observability

import (
	"fmt"
	"time"
)

// AlertSeverity represents the urgency of an alert.
type AlertSeverity string

const (
	SeverityHigh   AlertSeverity = "high"
	SeverityMedium AlertSeverity = "medium"
	SeverityLow    AlertSeverity = "low"
)

// Alert represents a triggered alert condition.
type Alert struct {
	ID          string        `json:"id"`
	Condition   string        `json:"condition"`
	Severity    AlertSeverity `json:"severity"`
	Message     string        `json:"message"`
	TriggeredAt time.Time     `json:"triggered_at"`
}

// AlertThresholds configures when alerts should fire.
type AlertThresholds struct {
	StaleDays      int `yaml:"stale_threshold_days" json:"stale_threshold_days"`
	ReviewDays     int `yaml:"review_threshold_days" json:"review_threshold_days"`
	MaxBacklogSize int `yaml:"max_backlog_size" json:"max_backlog_size"`
}

// DefaultAlertThresholds returns sensible defaults for alert thresholds.
func DefaultAlertThresholds() AlertThresholds {
	return AlertThresholds{
		StaleDays:      3,
		ReviewDays:     5,
		MaxBacklogSize: 10,
	}
}

// AlertEngine evaluates alert conditions against the event log.
type AlertEngine interface {
	Evaluate() ([]Alert, error)
}

// alertEngine implements AlertEngine by replaying wish lifecycle events and
// checking thresholds against the reconstructed per-wish state.
type alertEngine struct {
	eventLog   EventLog
	thresholds AlertThresholds
}

// NewAlertEngine creates a new AlertEngine with the given EventLog and thresholds.
func NewAlertEngine(eventLog EventLog, thresholds AlertThresholds) AlertEngine {
	return &alertEngine{
		eventLog:   eventLog,
		thresholds: thresholds,
	}
}

// wishState is the latest known lifecycle position of a wish, replayed from
// wish.created and wish.stage_changed events.
type wishState struct {
	stage        string
	enteredAt    time.Time
	lastActivity time.Time
}

// Evaluate reads events and checks all alert conditions, returning any triggered alerts.
func (ae *alertEngine) Evaluate() ([]Alert, error) {
	now := time.Now().UTC()

	states, err := ae.replayWishStates()
	if err != nil {
		return nil, fmt.Errorf("replaying wish states: %w", err)
	}

	var alerts []Alert
	alerts = append(alerts, ae.checkStaleWishes(now, states)...)
	alerts = append(alerts, ae.checkLongReviews(now, states)...)
	alerts = append(alerts, ae.checkBacklogSize(now, states)...)
	return alerts, nil
}

// replayWishStates reconstructs each wish's current stage and last activity
// from the event log. Wishes start in backlog when created; stage changes
// overwrite the position and reset the entered-at time.
func (ae *alertEngine) replayWishStates() (map[string]*wishState, error) {
	events, err := ae.eventLog.Read(EventFilter{})
	if err != nil {
		return nil, err
	}

	states := make(map[string]*wishState)
	for _, event := range events {
		wishID, _ := event.Data["wish_id"].(string)
		if wishID == "" {
			continue
		}

		state, ok := states[wishID]
		if !ok {
			state = &wishState{}
			states[wishID] = state
		}
		if event.Time.After(state.lastActivity) {
			state.lastActivity = event.Time
		}

		switch event.Type {
		case "wish.created":
			state.stage = "backlog"
			state.enteredAt = event.Time
		case "wish.stage_changed":
			if stage, ok := event.Data["new_stage"].(string); ok && stage != "" {
				state.stage = stage
				state.enteredAt = event.Time
			}
		}
	}
	return states, nil
}

// checkStaleWishes looks for in-progress wishes with no recent activity.
func (ae *alertEngine) checkStaleWishes(now time.Time, states map[string]*wishState) []Alert {
	threshold := time.Duration(ae.thresholds.StaleDays) * 24 * time.Hour
	var alerts []Alert
	for wishID, state := range states {
		if state.stage == "in_progress" && now.Sub(state.lastActivity) > threshold {
			alerts = append(alerts, Alert{
				ID:          fmt.Sprintf("stale-%s", wishID),
				Condition:   "wish_stale",
				Severity:    SeverityMedium,
				Message:     fmt.Sprintf("wish %s has had no activity for more than %d days", wishID, ae.thresholds.StaleDays),
				TriggeredAt: now,
			})
		}
	}
	return alerts
}

// checkLongReviews looks for wishes sitting in review longer than the threshold.
func (ae *alertEngine) checkLongReviews(now time.Time, states map[string]*wishState) []Alert {
	threshold := time.Duration(ae.thresholds.ReviewDays) * 24 * time.Hour
	var alerts []Alert
	for wishID, state := range states {
		if state.stage == "review" && now.Sub(state.enteredAt) > threshold {
			alerts = append(alerts, Alert{
				ID:          fmt.Sprintf("review-%s", wishID),
				Condition:   "review_too_long",
				Severity:    SeverityMedium,
				Message:     fmt.Sprintf("wish %s has been in review for more than %d days", wishID, ae.thresholds.ReviewDays),
				TriggeredAt: now,
			})
		}
	}
	return alerts
}

// checkBacklogSize counts wishes currently in backlog and alerts if over the threshold.
func (ae *alertEngine) checkBacklogSize(now time.Time, states map[string]*wishState) []Alert {
	backlogCount := 0
	for _, state := range states {
		if state.stage == "backlog" {
			backlogCount++
		}
	}

	var alerts []Alert
	if backlogCount > ae.thresholds.MaxBacklogSize {
		alerts = append(alerts, Alert{
			ID:          "backlog-size",
			Condition:   "backlog_too_large",
			Severity:    SeverityLow,
			Message:     fmt.Sprintf("backlog has %d wishes, exceeding the maximum of %d", backlogCount, ae.thresholds.MaxBacklogSize),
			TriggeredAt: now,
		})
	}
	return alerts
}
