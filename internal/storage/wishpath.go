package storage

import (
	"os"
	"path/filepath"

	"github.com/namastexlabs/genie/pkg/models"
)

// DefaultWishesDir is the directory under the store root holding the four
// stage directories.
const DefaultWishesDir = "genie/wishes"

// stageDir returns the directory that holds all wishes in the given stage.
func stageDir(root, wishesDir string, stage models.Stage) string {
	return filepath.Join(root, filepath.FromSlash(wishesDir), string(stage))
}

// wishDir returns the directory a wish would occupy in the given stage.
func wishDir(root, wishesDir string, stage models.Stage, wishID string) string {
	return filepath.Join(stageDir(root, wishesDir, stage), wishID)
}

// locateWish scans the stage directories in lifecycle order and returns the
// stage whose directory currently holds the wish. The bool result is false
// when the wish exists in no stage.
func locateWish(root, wishesDir, wishID string) (models.Stage, string, bool) {
	for _, stage := range models.Stages {
		dir := wishDir(root, wishesDir, stage, wishID)
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return stage, dir, true
		}
	}
	return "", "", false
}
