package observability

import (
	"path/filepath"
	"testing"
	"time"
)

func writeEvents(t *testing.T, log EventLog, events []Event) {
	t.Helper()
	for _, e := range events {
		if err := log.Write(e); err != nil {
			t.Fatalf("writing event: %v", err)
		}
	}
}

func TestMetricsAggregation(t *testing.T) {
	log := NewJSONLEventLog(filepath.Join(t.TempDir(), "events.jsonl"))
	base := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)

	writeEvents(t, log, []Event{
		{Time: base, Level: "INFO", Type: "wish.created", Data: map[string]any{"wish_id": "w1"}},
		{Time: base.Add(time.Hour), Level: "INFO", Type: "wish.created", Data: map[string]any{"wish_id": "w2"}},
		{Time: base.Add(2 * time.Hour), Level: "INFO", Type: "wish.stage_changed",
			Data: map[string]any{"wish_id": "w1", "old_stage": "backlog", "new_stage": "in_progress"}},
		{Time: base.Add(3 * time.Hour), Level: "INFO", Type: "wish.stage_changed",
			Data: map[string]any{"wish_id": "w1", "old_stage": "in_progress", "new_stage": "review"}},
		{Time: base.Add(4 * time.Hour), Level: "INFO", Type: "wish.stage_changed",
			Data: map[string]any{"wish_id": "w1", "old_stage": "review", "new_stage": "completed"}},
		{Time: base.Add(5 * time.Hour), Level: "INFO", Type: "taskcard.appended",
			Data: map[string]any{"wish_id": "w2", "task_id": "task-001"}},
		{Time: base.Add(6 * time.Hour), Level: "INFO", Type: "taskcard.status_changed",
			Data: map[string]any{"wish_id": "w2", "task_id": "task-001", "new_status": "done"}},
		{Time: base.Add(7 * time.Hour), Level: "INFO", Type: "wish.doc_written",
			Data: map[string]any{"wish_id": "w2", "document": "plan.md"}},
		{Time: base.Add(8 * time.Hour), Level: "WARN", Type: "taskcard.skipped_malformed",
			Data: map[string]any{"wish_id": "w2", "file": "task-009.md"}},
	})

	metrics, err := NewMetricsCalculator(log).Calculate(base.Add(-time.Hour))
	if err != nil {
		t.Fatalf("calculating metrics: %v", err)
	}

	if metrics.WishesCreated != 2 {
		t.Errorf("WishesCreated = %d, want 2", metrics.WishesCreated)
	}
	if metrics.WishesCompleted != 1 {
		t.Errorf("WishesCompleted = %d, want 1", metrics.WishesCompleted)
	}
	if metrics.StageMoves["in_progress"] != 1 || metrics.StageMoves["review"] != 1 || metrics.StageMoves["completed"] != 1 {
		t.Errorf("unexpected stage moves: %v", metrics.StageMoves)
	}
	if metrics.CardsAppended != 1 || metrics.CardsCompleted != 1 {
		t.Errorf("card counts wrong: appended %d, completed %d", metrics.CardsAppended, metrics.CardsCompleted)
	}
	if metrics.DocsWritten != 1 {
		t.Errorf("DocsWritten = %d, want 1", metrics.DocsWritten)
	}
	if metrics.MalformedCards != 1 {
		t.Errorf("MalformedCards = %d, want 1", metrics.MalformedCards)
	}
	if metrics.EventCount != 9 {
		t.Errorf("EventCount = %d, want 9", metrics.EventCount)
	}
	if metrics.OldestEvent == nil || !metrics.OldestEvent.Equal(base) {
		t.Errorf("OldestEvent = %v, want %v", metrics.OldestEvent, base)
	}
	if metrics.NewestEvent == nil || !metrics.NewestEvent.Equal(base.Add(8*time.Hour)) {
		t.Errorf("NewestEvent = %v, want %v", metrics.NewestEvent, base.Add(8*time.Hour))
	}
}

func TestMetricsSinceCutoff(t *testing.T) {
	log := NewJSONLEventLog(filepath.Join(t.TempDir(), "events.jsonl"))
	base := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)

	writeEvents(t, log, []Event{
		{Time: base, Level: "INFO", Type: "wish.created", Data: map[string]any{"wish_id": "old"}},
		{Time: base.Add(48 * time.Hour), Level: "INFO", Type: "wish.created", Data: map[string]any{"wish_id": "new"}},
	})

	metrics, err := NewMetricsCalculator(log).Calculate(base.Add(24 * time.Hour))
	if err != nil {
		t.Fatalf("calculating metrics: %v", err)
	}
	if metrics.WishesCreated != 1 {
		t.Errorf("expected only the recent event to count, got %d", metrics.WishesCreated)
	}
}

func TestMetricsEmptyLog(t *testing.T) {
	log := NewJSONLEventLog(filepath.Join(t.TempDir(), "events.jsonl"))

	metrics, err := NewMetricsCalculator(log).Calculate(time.Time{})
	if err != nil {
		t.Fatalf("calculating metrics: %v", err)
	}
	if metrics.EventCount != 0 || metrics.OldestEvent != nil || metrics.NewestEvent != nil {
		t.Errorf("expected zero metrics from empty log: %+v", metrics)
	}
}

func TestParseWindow(t *testing.T) {
	now := time.Now().UTC()

	got, err := ParseWindow("7d")
	if err != nil {
		t.Fatalf("parsing 7d: %v", err)
	}
	if diff := now.AddDate(0, 0, -7).Sub(got); diff < -time.Minute || diff > time.Minute {
		t.Errorf("7d parsed to %v", got)
	}

	got, err = ParseWindow("24h")
	if err != nil {
		t.Fatalf("parsing 24h: %v", err)
	}
	if diff := now.Add(-24 * time.Hour).Sub(got); diff < -time.Minute || diff > time.Minute {
		t.Errorf("24h parsed to %v", got)
	}

	for _, bad := range []string{"", "d", "7w", "xd", "-7d", "0h", "-24h"} {
		if _, err := ParseWindow(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}
