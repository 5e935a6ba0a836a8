package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/namastexlabs/genie/pkg/models"
)

// EventLogger is the subset of the observability event log the storage layer
// needs for lifecycle events and malformed-card warnings. Defined here to
// keep storage independent of the observability package.
type EventLogger interface {
	LogEvent(eventType string, data map[string]any) error
}

// taskIDPattern matches task card file names and captures the numeric part.
var taskIDPattern = regexp.MustCompile(`^task-(\d+)\.md$`)

// taskLockName is the per-wish lock file guarding id assignment. Append is
// the one read-modify-write in the store, so it is the only operation that
// takes a lock.
const taskLockName = ".task_lock"

// TaskCardIndex manages the ordered collection of task cards under a wish.
// Dependency annotations ([P], [S], [W:ids]) are stored and returned as
// advisory metadata; nothing here schedules or executes anything.
type TaskCardIndex interface {
	Append(wishID string, card models.TaskCard) (string, error)
	List(wishID string) ([]models.TaskCard, error)
	Get(wishID, taskID string) (*models.TaskCard, error)
	UpdateStatus(wishID, taskID string, status models.CardStatus) error
}

type fileTaskCardIndex struct {
	root      string
	wishesDir string
	padWidth  int
	events    EventLogger
}

// NewTaskCardIndex creates a TaskCardIndex over the same directory layout as
// the wish store. padWidth controls the zero-padding of task ids (3 produces
// task-001). events may be nil to disable malformed-card warnings.
func NewTaskCardIndex(root, wishesDir string, padWidth int, events EventLogger) TaskCardIndex {
	if wishesDir == "" {
		wishesDir = DefaultWishesDir
	}
	if padWidth <= 0 {
		padWidth = 3
	}
	return &fileTaskCardIndex{root: root, wishesDir: wishesDir, padWidth: padWidth, events: events}
}

func (idx *fileTaskCardIndex) tasksDir(wishID string) (string, error) {
	_, dir, found := locateWish(idx.root, idx.wishesDir, wishID)
	if !found {
		return "", fmt.Errorf("wish: %w", models.ErrNotFound)
	}
	return filepath.Join(dir, "tasks"), nil
}

// Append assigns the next sequential task id (max existing + 1) and writes a
// new card file. Id assignment is serialised with a per-wish flock so two
// concurrent appenders never mint the same id.
func (idx *fileTaskCardIndex) Append(wishID string, card models.TaskCard) (string, error) {
	dir, err := idx.tasksDir(wishID)
	if err != nil {
		return "", fmt.Errorf("appending task card to %s: %w", wishID, err)
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("appending task card to %s: creating tasks dir: %w", wishID, err)
	}

	unlock, err := lockFile(filepath.Join(dir, taskLockName))
	if err != nil {
		return "", fmt.Errorf("appending task card to %s: %w", wishID, err)
	}
	defer func() { _ = unlock() }()

	next, err := idx.nextTaskNumber(dir)
	if err != nil {
		return "", fmt.Errorf("appending task card to %s: %w", wishID, err)
	}

	card.ID = fmt.Sprintf("task-%0*d", idx.padWidth, next)
	if card.Status == "" {
		card.Status = models.CardPending
	}
	if card.Type.Kind == "" {
		card.Type = models.CardType{Kind: models.CardSequential}
	}

	path := filepath.Join(dir, card.ID+".md")
	if err := writeFileAtomic(path, []byte(renderTaskCard(card)), 0o600); err != nil {
		return "", fmt.Errorf("appending task card to %s: %w", wishID, err)
	}

	if idx.events != nil {
		_ = idx.events.LogEvent("taskcard.appended", map[string]any{
			"wish_id": wishID,
			"task_id": card.ID,
			"type":    card.Type.String(),
		})
	}
	return card.ID, nil
}

// List parses all card files under tasks/ sorted by numeric id ascending.
// Malformed files are skipped with a warning event rather than failing the
// whole listing, since cards are free-text markdown with a loose header
// convention.
func (idx *fileTaskCardIndex) List(wishID string) ([]models.TaskCard, error) {
	dir, err := idx.tasksDir(wishID)
	if err != nil {
		return nil, fmt.Errorf("listing task cards for %s: %w", wishID, err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("listing task cards for %s: %w", wishID, err)
	}

	type numbered struct {
		n    int
		card models.TaskCard
	}
	var cards []numbered
	for _, entry := range entries {
		match := taskIDPattern.FindStringSubmatch(entry.Name())
		if match == nil {
			continue
		}
		n, _ := strconv.Atoi(match[1])

		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			idx.warnSkipped(wishID, entry.Name(), err)
			continue
		}
		card, err := parseTaskCard(string(data))
		if err != nil {
			idx.warnSkipped(wishID, entry.Name(), err)
			continue
		}
		if card.ID == "" {
			card.ID = strings.TrimSuffix(entry.Name(), ".md")
		}
		cards = append(cards, numbered{n: n, card: card})
	}

	sort.Slice(cards, func(i, j int) bool { return cards[i].n < cards[j].n })
	result := make([]models.TaskCard, 0, len(cards))
	for _, c := range cards {
		result = append(result, c.card)
	}
	return result, nil
}

// Get returns a single card by id.
func (idx *fileTaskCardIndex) Get(wishID, taskID string) (*models.TaskCard, error) {
	dir, err := idx.tasksDir(wishID)
	if err != nil {
		return nil, fmt.Errorf("getting task card %s for %s: %w", taskID, wishID, err)
	}
	data, err := os.ReadFile(filepath.Join(dir, taskID+".md"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("getting task card %s for %s: %w", taskID, wishID, models.ErrNotFound)
		}
		return nil, fmt.Errorf("getting task card %s for %s: %w", taskID, wishID, err)
	}
	card, err := parseTaskCard(string(data))
	if err != nil {
		return nil, fmt.Errorf("getting task card %s for %s: %w", taskID, wishID, err)
	}
	if card.ID == "" {
		card.ID = taskID
	}
	return &card, nil
}

// UpdateStatus rewrites the Status field of a card file in place.
func (idx *fileTaskCardIndex) UpdateStatus(wishID, taskID string, status models.CardStatus) error {
	if !models.ValidCardStatus(status) {
		return fmt.Errorf("updating task card %s for %s: invalid status %q", taskID, wishID, status)
	}
	dir, err := idx.tasksDir(wishID)
	if err != nil {
		return fmt.Errorf("updating task card %s for %s: %w", taskID, wishID, err)
	}

	path := filepath.Join(dir, taskID+".md")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("updating task card %s for %s: %w", taskID, wishID, models.ErrNotFound)
		}
		return fmt.Errorf("updating task card %s for %s: %w", taskID, wishID, err)
	}

	lines := strings.Split(string(data), "\n")
	replaced := false
	for i, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "Status:") {
			lines[i] = "Status: " + string(status)
			replaced = true
			break
		}
	}
	if !replaced {
		return fmt.Errorf("updating task card %s for %s: card has no Status field", taskID, wishID)
	}

	if err := writeFileAtomic(path, []byte(strings.Join(lines, "\n")), 0o600); err != nil {
		return fmt.Errorf("updating task card %s for %s: %w", taskID, wishID, err)
	}

	if idx.events != nil {
		_ = idx.events.LogEvent("taskcard.status_changed", map[string]any{
			"wish_id":    wishID,
			"task_id":    taskID,
			"new_status": string(status),
		})
	}
	return nil
}

// nextTaskNumber scans existing card files and returns max + 1.
func (idx *fileTaskCardIndex) nextTaskNumber(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("scanning task ids: %w", err)
	}
	max := 0
	for _, entry := range entries {
		match := taskIDPattern.FindStringSubmatch(entry.Name())
		if match == nil {
			continue
		}
		if n, err := strconv.Atoi(match[1]); err == nil && n > max {
			max = n
		}
	}
	return max + 1, nil
}

func (idx *fileTaskCardIndex) warnSkipped(wishID, file string, cause error) {
	if idx.events == nil {
		return
	}
	_ = idx.events.LogEvent("taskcard.skipped_malformed", map[string]any{
		"wish_id": wishID,
		"file":    file,
		"error":   cause.Error(),
	})
}

// renderTaskCard renders a card in the loose header-block convention.
func renderTaskCard(card models.TaskCard) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## Task: %s\n\n", card.Title)
	fmt.Fprintf(&b, "ID: %s\n", card.ID)
	fmt.Fprintf(&b, "Type: %s\n", card.Type)
	fmt.Fprintf(&b, "Status: %s\n", card.Status)
	fmt.Fprintf(&b, "Assigned: %s\n", card.Assigned)
	if card.Description != "" {
		fmt.Fprintf(&b, "\n%s\n", strings.TrimSpace(card.Description))
	}
	if len(card.Acceptance) > 0 {
		b.WriteString("\n## Acceptance Criteria\n")
		for _, item := range card.Acceptance {
			fmt.Fprintf(&b, "- %s\n", item)
		}
	}
	return b.String()
}

// parseTaskCard parses the loose header block best-effort. A card needs at
// least the "## Task:" title line and a parseable Type to be well-formed;
// everything else is optional free text.
func parseTaskCard(content string) (models.TaskCard, error) {
	var card models.TaskCard
	lines := strings.Split(content, "\n")

	titleFound := false
	inAcceptance := false
	var description []string

	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		switch {
		case strings.HasPrefix(line, "## Task:"):
			card.Title = strings.TrimSpace(strings.TrimPrefix(line, "## Task:"))
			titleFound = true
		case strings.HasPrefix(line, "## Acceptance Criteria"):
			inAcceptance = true
		case strings.HasPrefix(line, "ID:"):
			card.ID = strings.TrimSpace(strings.TrimPrefix(line, "ID:"))
		case strings.HasPrefix(line, "Type:"):
			ct, err := models.ParseCardType(strings.TrimPrefix(line, "Type:"))
			if err != nil {
				return card, err
			}
			card.Type = ct
		case strings.HasPrefix(line, "Status:"):
			card.Status = models.CardStatus(strings.TrimSpace(strings.TrimPrefix(line, "Status:")))
		case strings.HasPrefix(line, "Assigned:"):
			card.Assigned = strings.TrimSpace(strings.TrimPrefix(line, "Assigned:"))
		case inAcceptance && strings.HasPrefix(line, "- "):
			card.Acceptance = append(card.Acceptance, strings.TrimPrefix(line, "- "))
		case titleFound && !inAcceptance && line != "":
			description = append(description, line)
		}
	}

	if !titleFound {
		return card, fmt.Errorf("parsing task card: missing \"## Task:\" header")
	}
	if card.Type.Kind == "" {
		return card, fmt.Errorf("parsing task card: missing or unparseable Type field")
	}
	if card.Status == "" {
		card.Status = models.CardPending
	}
	card.Description = strings.Join(description, "\n")
	return card, nil
}
