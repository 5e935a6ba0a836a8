// Package storage implements the file-backed wish store: wish directories
// spread across four stage directories, task card files nested under each
// wish, and the atomic-write helpers both rely on.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/namastexlabs/genie/pkg/models"
	"gopkg.in/yaml.v3"
)

// manifestName is the per-wish metadata file. The wish's stage is never
// stored in it; directory location is the single source of truth.
const manifestName = "manifest.yaml"

// statusLinePrefix marks the free-text status line inside wish.md. The store
// reads it for display and never validates its value.
const statusLinePrefix = "**Status**:"

// validWishID matches lowercase slug ids like "auth-upgrade".
var validWishID = regexp.MustCompile(`^[a-z0-9]+(?:[-_][a-z0-9]+)*$`)

// skeletonDocs are the documents every wish directory carries.
var skeletonDocs = []string{"wish.md", "analysis.md", "plan.md"}

const wishTemplate = `# Wish: %s

%s %s

## Intent
[What this wish should accomplish and why]

## Success Criteria
- [ ] [Observable outcomes that mark this wish complete]

## Context References
- [@path references other agents should read]
`

const analysisTemplate = `# Analysis: %s

## Findings
- [Investigation results]

## Risks
- [Known risks and unknowns]
`

const planTemplate = `# Plan: %s

## Approach
[How the work will be broken down]

## Task Breakdown
See tasks/ for individual task cards.
`

// CreateWishOpts carries optional attributes for a new wish.
type CreateWishOpts struct {
	Title    string
	Status   string
	Assigned string
}

// WishStore owns the physical directory layout and provides the primitive
// operations the rest of the system composes: create, lookup, document
// read/write, and the raw stage rename.
type WishStore interface {
	Create(wishID string, opts CreateWishOpts) (*models.Wish, error)
	Find(wishID string) (*models.Wish, error)
	ListByStage(stage models.Stage) ([]*models.Wish, error)
	ListAll() ([]*models.Wish, error)
	ReadDocument(wishID, doc string) ([]byte, error)
	WriteDocument(wishID, doc string, content []byte) error
	Move(wishID string, to models.Stage) error
	Root() string
}

type fileWishStore struct {
	root      string
	wishesDir string
	events    EventLogger
}

// NewWishStore creates a WishStore rooted at root, with stage directories
// under wishesDir (DefaultWishesDir when empty). events may be nil to
// disable lifecycle events.
func NewWishStore(root, wishesDir string, events EventLogger) WishStore {
	if wishesDir == "" {
		wishesDir = DefaultWishesDir
	}
	return &fileWishStore{root: root, wishesDir: wishesDir, events: events}
}

func (s *fileWishStore) Root() string {
	return s.root
}

// Create builds the directory skeleton for a new wish in the backlog stage.
// It fails with ErrAlreadyExists if a wish with that id exists in any stage.
func (s *fileWishStore) Create(wishID string, opts CreateWishOpts) (*models.Wish, error) {
	if !validWishID.MatchString(wishID) {
		return nil, fmt.Errorf("creating wish: id %q is not a valid slug", wishID)
	}
	if _, _, found := locateWish(s.root, s.wishesDir, wishID); found {
		return nil, fmt.Errorf("creating wish %s: %w", wishID, models.ErrAlreadyExists)
	}

	dir := wishDir(s.root, s.wishesDir, models.StageBacklog, wishID)
	if err := os.MkdirAll(filepath.Dir(dir), 0o750); err != nil {
		return nil, fmt.Errorf("creating wish %s: making stage directory: %w", wishID, err)
	}
	// Mkdir fails on an existing directory, so the loser of a concurrent
	// create race reports ErrAlreadyExists.
	if err := os.Mkdir(dir, 0o750); err != nil {
		if os.IsExist(err) {
			return nil, fmt.Errorf("creating wish %s: %w", wishID, models.ErrAlreadyExists)
		}
		return nil, fmt.Errorf("creating wish %s: making directories: %w", wishID, err)
	}
	if err := os.Mkdir(filepath.Join(dir, "tasks"), 0o750); err != nil {
		return nil, fmt.Errorf("creating wish %s: making directories: %w", wishID, err)
	}

	title := opts.Title
	if title == "" {
		title = wishID
	}
	status := opts.Status
	if status == "" {
		status = "DRAFT"
	}

	now := time.Now().UTC()
	wish := &models.Wish{
		ID:       wishID,
		Title:    title,
		Assigned: opts.Assigned,
		Created:  now,
		Updated:  now,
		Stage:    models.StageBacklog,
		Status:   status,
		Path:     dir,
	}

	seeds := map[string]string{
		"wish.md":     fmt.Sprintf(wishTemplate, title, statusLinePrefix, status),
		"analysis.md": fmt.Sprintf(analysisTemplate, title),
		"plan.md":     fmt.Sprintf(planTemplate, title),
	}
	for _, doc := range skeletonDocs {
		if err := writeFileAtomic(filepath.Join(dir, doc), []byte(seeds[doc]), 0o600); err != nil {
			return nil, fmt.Errorf("creating wish %s: seeding %s: %w", wishID, doc, err)
		}
	}

	if err := s.saveManifest(dir, wish); err != nil {
		return nil, fmt.Errorf("creating wish %s: %w", wishID, err)
	}

	if s.events != nil {
		_ = s.events.LogEvent("wish.created", map[string]any{
			"wish_id": wishID,
			"title":   title,
		})
	}
	return wish, nil
}

// Find scans the four stage directories in lifecycle order and returns the
// wish from the first directory that holds it.
func (s *fileWishStore) Find(wishID string) (*models.Wish, error) {
	stage, dir, found := locateWish(s.root, s.wishesDir, wishID)
	if !found {
		return nil, fmt.Errorf("finding wish %s: %w", wishID, models.ErrNotFound)
	}
	return s.loadWish(wishID, stage, dir)
}

// ListByStage returns all wishes in the given stage sorted by id.
func (s *fileWishStore) ListByStage(stage models.Stage) ([]*models.Wish, error) {
	if !models.ValidStage(stage) {
		return nil, fmt.Errorf("listing wishes: unknown stage %q", stage)
	}
	entries, err := os.ReadDir(stageDir(s.root, s.wishesDir, stage))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("listing %s wishes: %w", stage, err)
	}

	var wishes []*models.Wish
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := wishDir(s.root, s.wishesDir, stage, entry.Name())
		wish, err := s.loadWish(entry.Name(), stage, dir)
		if err != nil {
			continue
		}
		wishes = append(wishes, wish)
	}
	sort.Slice(wishes, func(i, j int) bool { return wishes[i].ID < wishes[j].ID })
	return wishes, nil
}

// ListAll returns every wish across all stages, in lifecycle order then id order.
func (s *fileWishStore) ListAll() ([]*models.Wish, error) {
	var all []*models.Wish
	for _, stage := range models.Stages {
		wishes, err := s.ListByStage(stage)
		if err != nil {
			return nil, err
		}
		all = append(all, wishes...)
	}
	return all, nil
}

// ReadDocument returns the raw content of a document inside the wish directory.
func (s *fileWishStore) ReadDocument(wishID, doc string) ([]byte, error) {
	if err := validateDocName(doc); err != nil {
		return nil, fmt.Errorf("reading %s for %s: %w", doc, wishID, err)
	}
	_, dir, found := locateWish(s.root, s.wishesDir, wishID)
	if !found {
		return nil, fmt.Errorf("reading %s for %s: wish: %w", doc, wishID, models.ErrNotFound)
	}
	data, err := os.ReadFile(filepath.Join(dir, doc))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("reading %s for %s: document: %w", doc, wishID, models.ErrNotFound)
		}
		return nil, fmt.Errorf("reading %s for %s: %w", doc, wishID, err)
	}
	return data, nil
}

// WriteDocument replaces a document's content via temp-file-then-rename, so a
// crash mid-write never leaves a partial document behind.
func (s *fileWishStore) WriteDocument(wishID, doc string, content []byte) error {
	if err := validateDocName(doc); err != nil {
		return fmt.Errorf("writing %s for %s: %w", doc, wishID, err)
	}
	_, dir, found := locateWish(s.root, s.wishesDir, wishID)
	if !found {
		return fmt.Errorf("writing %s for %s: wish: %w", doc, wishID, models.ErrNotFound)
	}
	if err := writeFileAtomic(filepath.Join(dir, doc), content, 0o600); err != nil {
		return fmt.Errorf("writing %s for %s: %w", doc, wishID, err)
	}
	s.touchManifest(wishID, dir)

	if s.events != nil {
		_ = s.events.LogEvent("wish.doc_written", map[string]any{
			"wish_id":  wishID,
			"document": doc,
		})
	}
	return nil
}

// Move renames the wish directory from its current stage directory into the
// target stage directory. The rename is the sole consistency guarantee:
// concurrent movers race at the filesystem level and the loser sees
// ErrNotFound because the wish moved out from under it. Legality of the move
// is the transition engine's concern, not the store's.
func (s *fileWishStore) Move(wishID string, to models.Stage) error {
	if !models.ValidStage(to) {
		return fmt.Errorf("moving wish %s: unknown stage %q", wishID, to)
	}
	from, fromDir, found := locateWish(s.root, s.wishesDir, wishID)
	if !found {
		return fmt.Errorf("moving wish %s: %w", wishID, models.ErrNotFound)
	}
	if from == to {
		return nil
	}

	if err := os.MkdirAll(stageDir(s.root, s.wishesDir, to), 0o750); err != nil {
		return fmt.Errorf("moving wish %s: creating %s directory: %w", wishID, to, err)
	}

	toDir := wishDir(s.root, s.wishesDir, to, wishID)
	if err := os.Rename(fromDir, toDir); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("moving wish %s: %w", wishID, models.ErrNotFound)
		}
		return fmt.Errorf("moving wish %s to %s: %w", wishID, to, err)
	}

	s.touchManifest(wishID, toDir)
	return nil
}

// loadWish reads manifest.yaml and the wish.md status line for a wish known
// to live at dir. A missing or unreadable manifest degrades to a minimal
// wish built from the directory name rather than failing the lookup.
func (s *fileWishStore) loadWish(wishID string, stage models.Stage, dir string) (*models.Wish, error) {
	wish := &models.Wish{ID: wishID, Title: wishID, Stage: stage, Path: dir}

	if data, err := os.ReadFile(filepath.Join(dir, manifestName)); err == nil {
		if err := yaml.Unmarshal(data, wish); err != nil {
			return nil, fmt.Errorf("parsing %s for %s: %w", manifestName, wishID, err)
		}
		wish.ID = wishID
		wish.Stage = stage
		wish.Path = dir
	}

	if data, err := os.ReadFile(filepath.Join(dir, "wish.md")); err == nil {
		wish.Status = extractStatusLine(string(data))
	}

	return wish, nil
}

func (s *fileWishStore) saveManifest(dir string, wish *models.Wish) error {
	data, err := yaml.Marshal(wish)
	if err != nil {
		return fmt.Errorf("marshalling %s: %w", manifestName, err)
	}
	if err := writeFileAtomic(filepath.Join(dir, manifestName), data, 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", manifestName, err)
	}
	return nil
}

// touchManifest bumps the updated timestamp. Best effort: a missing or
// malformed manifest never fails the operation that triggered the touch.
func (s *fileWishStore) touchManifest(wishID, dir string) {
	data, err := os.ReadFile(filepath.Join(dir, manifestName))
	if err != nil {
		return
	}
	var wish models.Wish
	if err := yaml.Unmarshal(data, &wish); err != nil {
		return
	}
	wish.ID = wishID
	wish.Updated = time.Now().UTC()
	_ = s.saveManifest(dir, &wish)
}

// extractStatusLine returns the free text after the first "**Status**:" line.
func extractStatusLine(content string) string {
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, statusLinePrefix) {
			return strings.TrimSpace(strings.TrimPrefix(trimmed, statusLinePrefix))
		}
	}
	return ""
}

// validateDocName rejects document names that would escape the wish directory.
func validateDocName(doc string) error {
	if doc == "" {
		return fmt.Errorf("document name must not be empty")
	}
	if doc != filepath.Base(doc) || doc == "." || doc == ".." {
		return fmt.Errorf("document name %q must be a bare file name", doc)
	}
	return nil
}
