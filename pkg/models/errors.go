package models

import "errors"

// Sentinel errors shared by the storage and core layers. Callers match them
// with errors.Is; every failure path wraps one of these with context about
// the operation that failed.
var (
	// ErrNotFound indicates a wish, document, or task card is absent. It is
	// also what the loser of a concurrent stage-move race observes: the wish
	// directory moved out from under the second caller.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates a wish with the requested id already exists
	// in some stage.
	ErrAlreadyExists = errors.New("already exists")

	// ErrIllegalTransition indicates a stage move that violates the
	// lifecycle graph. The wish remains in its original stage.
	ErrIllegalTransition = errors.New("illegal stage transition")

	// ErrDanglingReference indicates an @path context reference whose
	// target file does not exist.
	ErrDanglingReference = errors.New("dangling context reference")
)
