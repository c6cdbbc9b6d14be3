package blobstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"taccd/internal/sanitize"
)

// Local stores one blob per file inside a single directory. Names are
// re-validated on every operation; a name that fails the pattern check
// never reaches the filesystem. Scratch files live in a sibling
// directory so every pattern-valid name stays writable inside root.
type Local struct {
	root    string
	scratch string
}

// NewLocal creates a local blob store rooted at root.
func NewLocal(root string) (*Local, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, fmt.Errorf("blob store root is required")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, err
	}
	scratch := abs + ".tmp"
	if err := os.MkdirAll(scratch, 0o755); err != nil {
		return nil, err
	}
	return &Local{root: abs, scratch: scratch}, nil
}

// Write persists value under name, replacing any previous blob. The
// write goes through a temp file and rename so readers never observe a
// partial blob.
func (l *Local) Write(ctx context.Context, name, value string) error {
	if l == nil {
		return fmt.Errorf("blob store is not configured")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := l.pathFor(name)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(l.scratch, "write-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	if _, err := tmp.WriteString(value); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	return nil
}

// Read returns the blob stored under name. Missing blobs report
// found=false with a nil error.
func (l *Local) Read(ctx context.Context, name string) (string, bool, error) {
	if l == nil {
		return "", false, fmt.Errorf("blob store is not configured")
	}
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	path, err := l.pathFor(name)
	if err != nil {
		return "", false, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return string(data), true, nil
}

// Delete removes one blob. Missing blobs are ignored.
func (l *Local) Delete(ctx context.Context, name string) error {
	if l == nil {
		return fmt.Errorf("blob store is not configured")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := l.pathFor(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// List returns all blob names in the store, sorted.
func (l *Local) List(ctx context.Context) ([]string, error) {
	if l == nil {
		return nil, fmt.Errorf("blob store is not configured")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(l.root)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}

func (l *Local) pathFor(name string) (string, error) {
	checked, err := sanitize.CheckName(name)
	if err != nil {
		return "", err
	}
	return filepath.Join(l.root, checked), nil
}
