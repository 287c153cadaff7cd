package blob

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

// FilesystemStore keeps objects as plain files in one directory.
type FilesystemStore struct {
	dir string
}

// NewFilesystemStore creates dir if needed. An empty dir selects a
// "finance-exports" directory under the OS temp dir.
func NewFilesystemStore(dir string) (*FilesystemStore, error) {
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "finance-exports")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create export directory: %w", err)
	}
	return &FilesystemStore{dir: dir}, nil
}

func (s *FilesystemStore) Put(ctx context.Context, name, _ string, data []byte) error {
	if err := checkName(name); err != nil {
		return err
	}

	// Write then rename so a concurrent download never sees a partial file
	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, name)); err != nil {
		return fmt.Errorf("store %s: %w", name, err)
	}

	slog.DebugContext(ctx, "Export stored", "backend", "filesystem", "name", name, "size_bytes", len(data))
	return nil
}

func (s *FilesystemStore) Get(_ context.Context, name string) (*Object, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return &Object{Name: name, ContentType: ContentTypeFor(name), Data: data}, nil
}
