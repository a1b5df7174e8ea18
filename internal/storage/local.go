package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// LocalDir deletes generated documents written to a directory on local disk by earlier
// deployments. Keys are flattened to their base name so they can never leave root.
type LocalDir struct {
	root string
}

// NewLocalDir returns a LocalDir rooted at dir.
func NewLocalDir(dir string) *LocalDir {
	return &LocalDir{root: dir}
}

var _ Deleter = (*LocalDir)(nil)

// Delete removes the file named by the last segment of key.
func (l *LocalDir) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if l.root == "" {
		return errors.New("local results directory is not configured")
	}
	name := filepath.Base(filepath.FromSlash(key))
	if name == "." || name == ".." || name == string(filepath.Separator) {
		return fmt.Errorf("invalid key %q", key)
	}
	if err := os.Remove(filepath.Join(l.root, name)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrNotFound
		}
		return err
	}
	return nil
}
