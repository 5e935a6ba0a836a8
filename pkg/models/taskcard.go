package models

import (
	"fmt"
	"strings"
)

// CardKind is the dependency annotation of a task card. It is advisory
// metadata for an external orchestrator; nothing in this repository
// schedules or executes anything based on it.
type CardKind string

const (
	// CardParallel ([P]) may run alongside any other card.
	CardParallel CardKind = "parallel"
	// CardSequential ([S]) must run after the previous card in id order.
	CardSequential CardKind = "sequential"
	// CardWait ([W:ids]) waits on the specific cards listed in WaitsOn.
	CardWait CardKind = "wait"
)

// CardStatus represents the completion state of a task card.
type CardStatus string

const (
	CardPending    CardStatus = "pending"
	CardInProgress CardStatus = "in_progress"
	CardDone       CardStatus = "done"
)

// ValidCardStatus reports whether s is a known card status.
func ValidCardStatus(s CardStatus) bool {
	switch s {
	case CardPending, CardInProgress, CardDone:
		return true
	}
	return false
}

// CardType is the tagged variant for the [P]/[S]/[W:ids] annotation.
// WaitsOn is populated only when Kind is CardWait.
type CardType struct {
	Kind    CardKind
	WaitsOn []string
}

// String renders the annotation in its bracketed wire form:
// "[P]", "[S]", or "[W:task-001,task-002]".
func (ct CardType) String() string {
	switch ct.Kind {
	case CardParallel:
		return "[P]"
	case CardSequential:
		return "[S]"
	case CardWait:
		return "[W:" + strings.Join(ct.WaitsOn, ",") + "]"
	}
	return "[S]"
}

// ParseCardType parses a bracketed annotation string into a CardType.
// Whitespace around ids in the [W:...] form is tolerated.
func ParseCardType(s string) (CardType, error) {
	trimmed := strings.TrimSpace(s)
	switch {
	case trimmed == "[P]":
		return CardType{Kind: CardParallel}, nil
	case trimmed == "[S]":
		return CardType{Kind: CardSequential}, nil
	case strings.HasPrefix(trimmed, "[W:") && strings.HasSuffix(trimmed, "]"):
		inner := trimmed[len("[W:") : len(trimmed)-1]
		var ids []string
		for _, id := range strings.Split(inner, ",") {
			id = strings.TrimSpace(id)
			if id != "" {
				ids = append(ids, id)
			}
		}
		if len(ids) == 0 {
			return CardType{}, fmt.Errorf("parsing card type %q: [W:] requires at least one task id", s)
		}
		return CardType{Kind: CardWait, WaitsOn: ids}, nil
	}
	return CardType{}, fmt.Errorf("parsing card type %q: expected [P], [S], or [W:ids]", s)
}

// TaskCard is an atomic sub-unit of a wish's plan, stored as a markdown
// file under the wish's tasks/ directory. A card belongs to exactly one
// wish; moving the wish between stages moves its cards with it.
type TaskCard struct {
	ID          string
	Title       string
	Type        CardType
	Status      CardStatus
	Assigned    string
	Description string
	Acceptance  []string
}
