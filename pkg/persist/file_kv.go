package persist

import (
	"context"
	"os"
	"path/filepath"
	"strings"
)

// FileKV stores snapshots as files under a directory. Used for device-local
// deployments and in tests; survives process restarts on the same machine.
type FileKV struct {
	dir string
}

var _ KV = &FileKV{}

func NewFileKV(dir string) (*FileKV, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileKV{dir: dir}, nil
}

func (f *FileKV) path(key string) string {
	// Storage keys contain separators that are not filename-safe
	name := strings.NewReplacer(":", "_", "/", "_").Replace(key)
	return filepath.Join(f.dir, name+".json")
}

func (f *FileKV) Get(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(f.path(key))
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	return data, err
}

func (f *FileKV) Set(_ context.Context, key string, value []byte) error {
	// Write-then-rename keeps a crash from leaving a truncated snapshot
	tmp := f.path(key) + ".tmp"
	if err := os.WriteFile(tmp, value, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, f.path(key))
}
