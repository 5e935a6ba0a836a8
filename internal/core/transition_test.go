package core

import (
	"errors"
	"testing"

	"github.com/namastexlabs/genie/internal/storage"
	"github.com/namastexlabs/genie/pkg/models"
)

func newTestEngine(t *testing.T) (TransitionEngine, storage.WishStore) {
	t.Helper()
	store := storage.NewWishStore(t.TempDir(), "", nil)
	return NewTransitionEngine(store, nil), store
}

func placeWish(t *testing.T, engine TransitionEngine, store storage.WishStore, id string, stage models.Stage) {
	t.Helper()
	if _, err := store.Create(id, storage.CreateWishOpts{}); err != nil {
		t.Fatalf("creating %s: %v", id, err)
	}
	// Walk the forward path to the target stage.
	path := []models.Stage{models.StageInProgress, models.StageReview, models.StageCompleted}
	for _, next := range path {
		if stage == models.StageBacklog {
			return
		}
		if err := engine.Move(id, next); err != nil {
			t.Fatalf("placing %s in %s: %v", id, stage, err)
		}
		if next == stage {
			return
		}
	}
}

func TestLegalMoveGraph(t *testing.T) {
	legal := map[[2]models.Stage]bool{
		{models.StageBacklog, models.StageInProgress}: true,
		{models.StageInProgress, models.StageReview}:  true,
		{models.StageReview, models.StageCompleted}:   true,
		{models.StageReview, models.StageInProgress}:  true,
	}
	for _, from := range models.Stages {
		for _, to := range models.Stages {
			want := legal[[2]models.Stage{from, to}]
			if got := LegalMove(from, to); got != want {
				t.Errorf("LegalMove(%s, %s) = %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestMoveLegalPairs(t *testing.T) {
	pairs := []struct {
		from, to models.Stage
	}{
		{models.StageBacklog, models.StageInProgress},
		{models.StageInProgress, models.StageReview},
		{models.StageReview, models.StageCompleted},
		{models.StageReview, models.StageInProgress},
	}
	for _, pair := range pairs {
		t.Run(string(pair.from)+"_to_"+string(pair.to), func(t *testing.T) {
			engine, store := newTestEngine(t)
			placeWish(t, engine, store, "auth-upgrade", pair.from)

			if err := engine.Move("auth-upgrade", pair.to); err != nil {
				t.Fatalf("legal move failed: %v", err)
			}
			wish, err := store.Find("auth-upgrade")
			if err != nil {
				t.Fatalf("finding wish: %v", err)
			}
			if wish.Stage != pair.to {
				t.Errorf("expected stage %s, got %s", pair.to, wish.Stage)
			}
		})
	}
}

func TestMoveIllegalPairsLeaveWishInPlace(t *testing.T) {
	for _, from := range models.Stages {
		for _, to := range models.Stages {
			if from == to || LegalMove(from, to) {
				continue
			}
			t.Run(string(from)+"_to_"+string(to), func(t *testing.T) {
				engine, store := newTestEngine(t)
				placeWish(t, engine, store, "auth-upgrade", from)

				err := engine.Move("auth-upgrade", to)
				if !errors.Is(err, models.ErrIllegalTransition) {
					t.Fatalf("expected ErrIllegalTransition, got %v", err)
				}
				wish, findErr := store.Find("auth-upgrade")
				if findErr != nil {
					t.Fatalf("finding wish: %v", findErr)
				}
				if wish.Stage != from {
					t.Errorf("illegal move relocated the wish to %s", wish.Stage)
				}
			})
		}
	}
}

func TestMoveSameStageIsIllegal(t *testing.T) {
	engine, store := newTestEngine(t)
	placeWish(t, engine, store, "auth-upgrade", models.StageBacklog)

	err := engine.Move("auth-upgrade", models.StageBacklog)
	if !errors.Is(err, models.ErrIllegalTransition) {
		t.Errorf("expected ErrIllegalTransition for same-stage move, got %v", err)
	}
}

func TestMoveCompletedIsTerminal(t *testing.T) {
	engine, store := newTestEngine(t)
	placeWish(t, engine, store, "auth-upgrade", models.StageCompleted)

	for _, to := range models.Stages {
		if to == models.StageCompleted {
			continue
		}
		if err := engine.Move("auth-upgrade", to); !errors.Is(err, models.ErrIllegalTransition) {
			t.Errorf("expected ErrIllegalTransition moving completed wish to %s, got %v", to, err)
		}
	}
}

func TestMoveMissingWish(t *testing.T) {
	engine, _ := newTestEngine(t)

	err := engine.Move("no-such-wish", models.StageInProgress)
	if !errors.Is(err, models.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMoveUnknownStage(t *testing.T) {
	engine, store := newTestEngine(t)
	placeWish(t, engine, store, "auth-upgrade", models.StageBacklog)

	if err := engine.Move("auth-upgrade", "archived"); err == nil {
		t.Error("expected error for unknown stage")
	}
}

type recordingLogger struct {
	events []string
	data   []map[string]any
}

func (l *recordingLogger) LogEvent(eventType string, data map[string]any) error {
	l.events = append(l.events, eventType)
	l.data = append(l.data, data)
	return nil
}

func TestMoveEmitsStageChangedEvent(t *testing.T) {
	store := storage.NewWishStore(t.TempDir(), "", nil)
	log := &recordingLogger{}
	engine := NewTransitionEngine(store, log)

	if _, err := store.Create("auth-upgrade", storage.CreateWishOpts{}); err != nil {
		t.Fatalf("creating wish: %v", err)
	}
	if err := engine.Move("auth-upgrade", models.StageInProgress); err != nil {
		t.Fatalf("moving wish: %v", err)
	}

	if len(log.events) != 1 || log.events[0] != "wish.stage_changed" {
		t.Fatalf("expected one wish.stage_changed event, got %v", log.events)
	}
	if log.data[0]["old_stage"] != "backlog" || log.data[0]["new_stage"] != "in_progress" {
		t.Errorf("unexpected event data: %v", log.data[0])
	}
}

func TestMoveIllegalEmitsNoEvent(t *testing.T) {
	store := storage.NewWishStore(t.TempDir(), "", nil)
	log := &recordingLogger{}
	engine := NewTransitionEngine(store, log)

	if _, err := store.Create("auth-upgrade", storage.CreateWishOpts{}); err != nil {
		t.Fatalf("creating wish: %v", err)
	}
	if err := engine.Move("auth-upgrade", models.StageCompleted); !errors.Is(err, models.ErrIllegalTransition) {
		t.Fatalf("expected ErrIllegalTransition, got %v", err)
	}
	if len(log.events) != 0 {
		t.Errorf("illegal move emitted events: %v", log.events)
	}
}
