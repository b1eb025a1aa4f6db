package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// FileBackend keeps one JSON file per collection in a directory, the same
// layout as a solocraft_data folder.
type FileBackend struct {
	dir string
}

func NewFileBackend(dir string) (*FileBackend, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &FileBackend{dir: dir}, nil
}

func (b *FileBackend) path(name string) string {
	return filepath.Join(b.dir, name+".json")
}

func (b *FileBackend) Load(_ context.Context, name string) ([]byte, error) {
	raw, err := os.ReadFile(b.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return raw, nil
}

// Replace writes each document to a temp file in the same directory and
// renames it over the target, so a crash leaves either the old or the new
// document on disk. Documents are written in name order and there is no
// rollback across them: if a later write fails, earlier ones stay replaced.
func (b *FileBackend) Replace(ctx context.Context, docs map[string][]byte) error {
	for _, name := range sortedNames(docs) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := b.writeAtomic(name, docs[name]); err != nil {
			return err
		}
	}
	return nil
}

func (b *FileBackend) writeAtomic(name string, data []byte) error {
	tmp, err := os.CreateTemp(b.dir, "."+name+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp %s: %w", name, err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("sync %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close %s: %w", name, err)
	}
	if err := os.Rename(tmpName, b.path(name)); err != nil {
		cleanup()
		return fmt.Errorf("replace %s: %w", name, err)
	}
	return nil
}

func (b *FileBackend) Close() error { return nil }
