package stowback

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

// ClearError lists the entries of Dir that could not be removed.
type ClearError struct {
	Dir    string
	Failed []EntryError
}

// EntryError is one directory entry that ClearDirectory failed to remove.
type EntryError struct {
	Name string
	Err  error
}

func (e *ClearError) Error() string {
	names := make([]string, 0, len(e.Failed))
	for _, f := range e.Failed {
		names = append(names, fmt.Sprintf("%s (%v)", f.Name, f.Err))
	}
	return fmt.Sprintf("clear %s: %d entries not removed: %s", e.Dir, len(e.Failed), strings.Join(names, ", "))
}

func (e *ClearError) Is(target error) bool {
	return target == ErrClearFailed
}

func (e *ClearError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failed))
	for _, f := range e.Failed {
		errs = append(errs, f.Err)
	}
	return errs
}

// ClearDirectory removes every entry directly inside dir, leaving dir itself
// in place. Removal is attempted for all entries; failures are collected into
// a *ClearError. A missing directory is treated as already clear.
//
// Removal goes through an os.Root, so symlinks inside dir are unlinked and
// never followed out of it.
func ClearDirectory(dir string) error {
	root, err := os.OpenRoot(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("clear %s: %w: %w", dir, ErrClearFailed, err)
	}
	defer func() { _ = root.Close() }()

	entries, err := fs.ReadDir(root.FS(), ".")
	if err != nil {
		return fmt.Errorf("clear %s: %w: %w", dir, ErrClearFailed, err)
	}

	var failed []EntryError
	for _, e := range entries {
		if err := root.RemoveAll(e.Name()); err != nil {
			failed = append(failed, EntryError{Name: e.Name(), Err: err})
		}
	}

	if len(failed) > 0 {
		return &ClearError{Dir: dir, Failed: failed}
	}
	return nil
}
