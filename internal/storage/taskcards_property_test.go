package storage

import (
	"fmt"
	"testing"

	"github.com/namastexlabs/genie/pkg/models"
	"pgregory.net/rapid"
)

func genCardTitle(rt *rapid.T, label string) string {
	letters := "abcdefghijklmnopqrstuvwxyz "
	n := rapid.IntRange(1, 40).Draw(rt, label+"Len")
	b := make([]byte, n)
	for i := range b {
		b[i] = letters[rapid.IntRange(0, len(letters)-1).Draw(rt, label+"Char")]
	}
	// Leading or trailing spaces would be trimmed by the parser.
	s := string(b)
	if s[0] == ' ' || s[len(s)-1] == ' ' {
		return "x" + s + "x"
	}
	return s
}

func genCardType(rt *rapid.T) models.CardType {
	switch rapid.IntRange(0, 2).Draw(rt, "kindIdx") {
	case 0:
		return models.CardType{Kind: models.CardParallel}
	case 1:
		return models.CardType{Kind: models.CardSequential}
	default:
		nWaits := rapid.IntRange(1, 3).Draw(rt, "nWaits")
		waits := make([]string, nWaits)
		for i := range waits {
			waits[i] = fmt.Sprintf("task-%03d", rapid.IntRange(1, 999).Draw(rt, fmt.Sprintf("wait%d", i)))
		}
		return models.CardType{Kind: models.CardWait, WaitsOn: waits}
	}
}

// Feature: genie, Property 4: Sequential Gapless Task IDs
//
// N appends to a fresh wish yield exactly task-001 through task-00N, and
// List returns them in that order.
func TestTaskIDsSequentialGapless(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		root := t.TempDir()
		store := NewWishStore(root, "", nil)
		if _, err := store.Create("prop-wish", CreateWishOpts{}); err != nil {
			rt.Fatal(err)
		}
		idx := NewTaskCardIndex(root, "", 3, nil)

		n := rapid.IntRange(1, 15).Draw(rt, "nCards")
		for i := 0; i < n; i++ {
			id, err := idx.Append("prop-wish", models.TaskCard{
				Title: genCardTitle(rt, fmt.Sprintf("title%d", i)),
				Type:  genCardType(rt),
			})
			if err != nil {
				rt.Fatal(err)
			}
			want := fmt.Sprintf("task-%03d", i+1)
			if id != want {
				rt.Fatalf("append %d produced id %s, want %s", i, id, want)
			}
		}

		cards, err := idx.List("prop-wish")
		if err != nil {
			rt.Fatal(err)
		}
		if len(cards) != n {
			rt.Fatalf("expected %d cards, got %d", n, len(cards))
		}
		for i, card := range cards {
			want := fmt.Sprintf("task-%03d", i+1)
			if card.ID != want {
				rt.Fatalf("position %d holds %s, want %s", i, card.ID, want)
			}
		}
	})
}

// Feature: genie, Property 5: Task Card Render/Parse Round-Trip
//
// A card written by Append comes back from Get with the same header fields.
func TestTaskCardRoundTrip(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		root := t.TempDir()
		store := NewWishStore(root, "", nil)
		if _, err := store.Create("prop-wish", CreateWishOpts{}); err != nil {
			rt.Fatal(err)
		}
		idx := NewTaskCardIndex(root, "", 3, nil)

		card := models.TaskCard{
			Title:    genCardTitle(rt, "title"),
			Type:     genCardType(rt),
			Assigned: genCardTitle(rt, "assigned"),
		}
		statuses := []models.CardStatus{models.CardPending, models.CardInProgress, models.CardDone}
		card.Status = statuses[rapid.IntRange(0, 2).Draw(rt, "statusIdx")]

		id, err := idx.Append("prop-wish", card)
		if err != nil {
			rt.Fatal(err)
		}

		got, err := idx.Get("prop-wish", id)
		if err != nil {
			rt.Fatal(err)
		}
		if got.Title != card.Title {
			rt.Fatalf("title mismatch: %q vs %q", got.Title, card.Title)
		}
		if got.Status != card.Status {
			rt.Fatalf("status mismatch: %q vs %q", got.Status, card.Status)
		}
		if got.Type.Kind != card.Type.Kind {
			rt.Fatalf("type mismatch: %q vs %q", got.Type.Kind, card.Type.Kind)
		}
		if len(got.Type.WaitsOn) != len(card.Type.WaitsOn) {
			rt.Fatalf("waits-on mismatch: %v vs %v", got.Type.WaitsOn, card.Type.WaitsOn)
		}
		for i := range card.Type.WaitsOn {
			if got.Type.WaitsOn[i] != card.Type.WaitsOn[i] {
				rt.Fatalf("waits-on mismatch at %d: %v vs %v", i, got.Type.WaitsOn, card.Type.WaitsOn)
			}
		}
	})
}
