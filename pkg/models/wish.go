package models

import "time"

// Stage represents the lifecycle position of a wish. A wish lives in exactly
// one stage directory at a time; the directory location is the single source
// of truth for the stage, which is why Stage carries no yaml tag on Wish.
type Stage string

const (
	StageBacklog    Stage = "backlog"
	StageInProgress Stage = "in_progress"
	StageReview     Stage = "review"
	StageCompleted  Stage = "completed"
)

// Stages lists all stages in lifecycle order.
var Stages = []Stage{StageBacklog, StageInProgress, StageReview, StageCompleted}

// ValidStage reports whether s is one of the four known stages.
func ValidStage(s Stage) bool {
	switch s {
	case StageBacklog, StageInProgress, StageReview, StageCompleted:
		return true
	}
	return false
}

// Wish represents a tracked unit of work backed by a directory of markdown
// documents (wish.md, analysis.md, plan.md) plus a tasks/ collection.
type Wish struct {
	ID       string    `yaml:"id"`
	Title    string    `yaml:"title"`
	Assigned string    `yaml:"assigned,omitempty"`
	Created  time.Time `yaml:"created"`
	Updated  time.Time `yaml:"updated"`

	// Stage is derived from the directory the wish was found in and is
	// never persisted to manifest.yaml.
	Stage Stage `yaml:"-"`

	// Status is the free-text "**Status**:" line from wish.md. It is
	// informational for human and agent readers; no component validates it.
	Status string `yaml:"-"`

	// Path is the absolute directory the wish currently occupies.
	Path string `yaml:"-"`
}
