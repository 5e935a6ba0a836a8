// Package core contains the business logic of the wish store: the stage
// transition engine, context reference resolution, and configuration.
package core

import (
	"fmt"

	"github.com/namastexlabs/genie/pkg/models"
)

// WishMover is the subset of storage.WishStore the transition engine needs.
// Defining it here keeps core independent of the storage package.
type WishMover interface {
	Find(wishID string) (*models.Wish, error)
	Move(wishID string, to models.Stage) error
}

// legalMoves is the stage graph: the strict forward path
// backlog -> in_progress -> review -> completed, plus the single backward
// rework edge review -> in_progress. Everything else is illegal.
var legalMoves = map[models.Stage][]models.Stage{
	models.StageBacklog:    {models.StageInProgress},
	models.StageInProgress: {models.StageReview},
	models.StageReview:     {models.StageCompleted, models.StageInProgress},
	models.StageCompleted:  {},
}

// LegalMove reports whether a wish in stage from may move to stage to.
func LegalMove(from, to models.Stage) bool {
	for _, next := range legalMoves[from] {
		if next == to {
			return true
		}
	}
	return false
}

// TransitionEngine enforces the stage lifecycle graph and performs the move
// as a single filesystem rename delegated to the store.
type TransitionEngine interface {
	Move(wishID string, to models.Stage) error
}

type transitionEngine struct {
	store  WishMover
	events EventLogger
}

// NewTransitionEngine creates a TransitionEngine over the given store.
// events may be nil to disable stage-change events.
func NewTransitionEngine(store WishMover, events EventLogger) TransitionEngine {
	return &transitionEngine{store: store, events: events}
}

// Move looks up the wish's current stage, validates the move against the
// lifecycle graph, and delegates the rename to the store. On an illegal move
// the wish remains exactly where it was.
func (e *transitionEngine) Move(wishID string, to models.Stage) error {
	if !models.ValidStage(to) {
		return fmt.Errorf("moving wish %s: unknown stage %q", wishID, to)
	}

	wish, err := e.store.Find(wishID)
	if err != nil {
		return fmt.Errorf("moving wish %s: %w", wishID, err)
	}

	if !LegalMove(wish.Stage, to) {
		return fmt.Errorf("moving wish %s from %s to %s: %w",
			wishID, wish.Stage, to, models.ErrIllegalTransition)
	}

	if err := e.store.Move(wishID, to); err != nil {
		return err
	}

	if e.events != nil {
		_ = e.events.LogEvent("wish.stage_changed", map[string]any{
			"wish_id":   wishID,
			"old_stage": string(wish.Stage),
			"new_stage": string(to),
		})
	}
	return nil
}
