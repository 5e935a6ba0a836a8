package storage

import (
	"fmt"
	"os"
	"syscall"
)

// lockFile acquires an exclusive flock on the given path, creating the file
// if needed, and returns an unlock function. Task card appends use this to
// serialise the read-max-id-then-write step; everything else in the store
// relies on atomic renames alone.
func lockFile(path string) (unlock func() error, err error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o600)
	if err != nil {
		return nil, fmt.Errorf("opening lock file: %w", err)
	}

	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX); err != nil {
		f.Close()
		return nil, fmt.Errorf("acquiring file lock: %w", err)
	}

	return func() error {
		defer f.Close()
		return syscall.Flock(int(f.Fd()), syscall.LOCK_UN)
	}, nil
}
