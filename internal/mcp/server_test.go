package mcp

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/namastexlabs/genie/internal/core"
	"github.com/namastexlabs/genie/internal/observability"
	"github.com/namastexlabs/genie/internal/storage"
)

func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	root := t.TempDir()
	eventLog := observability.NewJSONLEventLog(filepath.Join(root, ".genie_events.jsonl"))
	logger := &eventLogAdapter{log: eventLog}

	store := storage.NewWishStore(root, "", logger)
	deps := Deps{
		Store:       store,
		Cards:       storage.NewTaskCardIndex(root, "", 3, logger),
		Transitions: core.NewTransitionEngine(store, logger),
		Resolver:    core.NewRefResolver(root),
		MetricsCalc: observability.NewMetricsCalculator(eventLog),
		AlertEngine: observability.NewAlertEngine(eventLog, observability.DefaultAlertThresholds()),
	}
	return NewServer(deps, "test"), root
}

type eventLogAdapter struct {
	log observability.EventLog
}

func (a *eventLogAdapter) LogEvent(eventType string, data map[string]any) error {
	return a.log.Write(observability.Event{
		Time:  time.Now().UTC(),
		Level: "INFO",
		Type:  eventType,
		Data:  data,
	})
}

func TestServerVersion(t *testing.T) {
	server, _ := newTestServer(t)
	if server.MCPServer() == nil {
		t.Fatal("expected underlying MCP server")
	}

	empty := NewServer(Deps{}, "")
	if empty.MCPServer() == nil {
		t.Fatal("expected server with default version")
	}
}

func TestHandleCreateAndGetWish(t *testing.T) {
	server, _ := newTestServer(t)
	ctx := context.Background()

	result, out, err := server.handleCreateWish(ctx, nil, createWishInput{WishID: "auth-upgrade", Title: "Auth Upgrade"})
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if result != nil && result.IsError {
		t.Fatalf("create failed: %v", result.Content)
	}
	if out.Stage != "backlog" || out.Title != "Auth Upgrade" {
		t.Errorf("unexpected output: %+v", out)
	}

	result, got, err := server.handleGetWish(ctx, nil, getWishInput{WishID: "auth-upgrade"})
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if result != nil && result.IsError {
		t.Fatalf("get failed: %v", result.Content)
	}
	if got.ID != "auth-upgrade" {
		t.Errorf("unexpected wish: %+v", got)
	}
}

func TestHandleGetWishMissing(t *testing.T) {
	server, _ := newTestServer(t)

	result, _, err := server.handleGetWish(context.Background(), nil, getWishInput{WishID: "no-such-wish"})
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if result == nil || !result.IsError {
		t.Error("expected error result for missing wish")
	}
}

func TestHandleGetWishMissingID(t *testing.T) {
	server, _ := newTestServer(t)

	result, _, err := server.handleGetWish(context.Background(), nil, getWishInput{})
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if result == nil || !result.IsError {
		t.Error("expected error result for empty wish_id")
	}
}

func TestHandleListWishes(t *testing.T) {
	server, _ := newTestServer(t)
	ctx := context.Background()

	for _, id := range []string{"first-wish", "second-wish"} {
		if result, _, _ := server.handleCreateWish(ctx, nil, createWishInput{WishID: id}); result != nil && result.IsError {
			t.Fatalf("creating %s failed: %v", id, result.Content)
		}
	}
	if result, _, _ := server.handleMoveWish(ctx, nil, moveWishInput{WishID: "first-wish", Stage: "in_progress"}); result != nil && result.IsError {
		t.Fatalf("move failed: %v", result.Content)
	}

	_, all, err := server.handleListWishes(ctx, nil, listWishesInput{})
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if all.Count != 2 {
		t.Errorf("expected 2 wishes, got %d", all.Count)
	}

	_, backlog, err := server.handleListWishes(ctx, nil, listWishesInput{Stage: "backlog"})
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if backlog.Count != 1 || backlog.Wishes[0].ID != "second-wish" {
		t.Errorf("unexpected backlog listing: %+v", backlog)
	}
}

func TestHandleMoveWishIllegal(t *testing.T) {
	server, _ := newTestServer(t)
	ctx := context.Background()

	if result, _, _ := server.handleCreateWish(ctx, nil, createWishInput{WishID: "auth-upgrade"}); result != nil && result.IsError {
		t.Fatalf("create failed: %v", result.Content)
	}

	result, _, err := server.handleMoveWish(ctx, nil, moveWishInput{WishID: "auth-upgrade", Stage: "completed"})
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if result == nil || !result.IsError {
		t.Error("expected error result for illegal transition")
	}
}

func TestHandleTaskCardLifecycle(t *testing.T) {
	server, _ := newTestServer(t)
	ctx := context.Background()

	if result, _, _ := server.handleCreateWish(ctx, nil, createWishInput{WishID: "auth-upgrade"}); result != nil && result.IsError {
		t.Fatalf("create failed: %v", result.Content)
	}

	result, added, err := server.handleAddTaskCard(ctx, nil, addTaskCardInput{
		WishID:   "auth-upgrade",
		Title:    "write migration",
		Type:     "[P]",
		Criteria: []string{"migration applies cleanly"},
	})
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if result != nil && result.IsError {
		t.Fatalf("add failed: %v", result.Content)
	}
	if added.TaskID != "task-001" {
		t.Errorf("expected task-001, got %s", added.TaskID)
	}

	result, _, err = server.handleUpdateTaskCard(ctx, nil, updateTaskCardInput{
		WishID: "auth-upgrade", TaskID: "task-001", Status: "done",
	})
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if result != nil && result.IsError {
		t.Fatalf("update failed: %v", result.Content)
	}

	_, listed, err := server.handleListTaskCards(ctx, nil, listTaskCardsInput{WishID: "auth-upgrade"})
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if listed.Count != 1 || listed.Cards[0].Status != "done" || listed.Cards[0].Type != "[P]" {
		t.Errorf("unexpected cards: %+v", listed.Cards)
	}
}

func TestHandleAddTaskCardBadType(t *testing.T) {
	server, _ := newTestServer(t)
	ctx := context.Background()

	if result, _, _ := server.handleCreateWish(ctx, nil, createWishInput{WishID: "auth-upgrade"}); result != nil && result.IsError {
		t.Fatalf("create failed: %v", result.Content)
	}

	result, _, err := server.handleAddTaskCard(ctx, nil, addTaskCardInput{
		WishID: "auth-upgrade", Title: "x", Type: "[X]",
	})
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if result == nil || !result.IsError {
		t.Error("expected error result for bad card type")
	}
}

func TestHandleReadDocument(t *testing.T) {
	server, _ := newTestServer(t)
	ctx := context.Background()

	if result, _, _ := server.handleCreateWish(ctx, nil, createWishInput{WishID: "auth-upgrade"}); result != nil && result.IsError {
		t.Fatalf("create failed: %v", result.Content)
	}

	result, out, err := server.handleReadDocument(ctx, nil, readDocumentInput{WishID: "auth-upgrade", Document: "wish.md"})
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if result != nil && result.IsError {
		t.Fatalf("read failed: %v", result.Content)
	}
	if out.Content == "" {
		t.Error("expected seeded wish.md content")
	}
}

func TestHandleResolveReference(t *testing.T) {
	server, root := newTestServer(t)
	ctx := context.Background()

	if err := os.MkdirAll(filepath.Join(root, "docs"), 0o750); err != nil {
		t.Fatalf("making docs dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "docs", "arch.md"), []byte("architecture notes"), 0o600); err != nil {
		t.Fatalf("writing file: %v", err)
	}

	result, out, err := server.handleResolveReference(ctx, nil, resolveReferenceInput{Reference: "@docs/arch.md"})
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if result != nil && result.IsError {
		t.Fatalf("resolve failed: %v", result.Content)
	}
	if out.Content != "architecture notes" {
		t.Errorf("unexpected content: %q", out.Content)
	}

	result, _, err = server.handleResolveReference(ctx, nil, resolveReferenceInput{Reference: "@docs/missing.md"})
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if result == nil || !result.IsError {
		t.Error("expected error result for dangling reference")
	}
}

func TestHandleGetMetrics(t *testing.T) {
	server, _ := newTestServer(t)
	ctx := context.Background()

	if result, _, _ := server.handleCreateWish(ctx, nil, createWishInput{WishID: "auth-upgrade"}); result != nil && result.IsError {
		t.Fatalf("create failed: %v", result.Content)
	}

	result, out, err := server.handleGetMetrics(ctx, nil, getMetricsInput{Since: "24h"})
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if result != nil && result.IsError {
		t.Fatalf("metrics failed: %v", result.Content)
	}
	if out.WishesCreated != 1 {
		t.Errorf("expected 1 wish created, got %d", out.WishesCreated)
	}
}

func TestHandleGetMetricsBadDuration(t *testing.T) {
	server, _ := newTestServer(t)

	result, _, err := server.handleGetMetrics(context.Background(), nil, getMetricsInput{Since: "7w"})
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if result == nil || !result.IsError {
		t.Error("expected error result for unsupported duration suffix")
	}
}

func TestHandleGetMetricsDisabled(t *testing.T) {
	server := NewServer(Deps{}, "test")

	result, _, err := server.handleGetMetrics(context.Background(), nil, getMetricsInput{})
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if result == nil || !result.IsError {
		t.Error("expected error result when metrics are disabled")
	}
}

func TestHandleGetAlerts(t *testing.T) {
	server, _ := newTestServer(t)

	result, out, err := server.handleGetAlerts(context.Background(), nil, getAlertsInput{})
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if result != nil && result.IsError {
		t.Fatalf("alerts failed: %v", result.Content)
	}
	if out.Count != 0 {
		t.Errorf("expected no alerts on a fresh store, got %d", out.Count)
	}
}

