package index

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrSnapshotNotFound is returned by Load when no durable snapshot exists.
// Callers should initialize an empty index in that case rather than fail.
var ErrSnapshotNotFound = errors.New("index snapshot not found")

// SnapshotStore persists opaque index snapshots.
type SnapshotStore interface {
	Save(ctx context.Context, data []byte) error
	Load(ctx context.Context) ([]byte, error)
}

// FileStore stores the snapshot at a fixed path on local disk.
type FileStore struct {
	Path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

// Save writes to a temp file in the same directory and renames it over the
// target, so a crash mid-write never leaves a truncated snapshot.
func (s *FileStore) Save(ctx context.Context, data []byte) error {
	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.Path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp snapshot: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close snapshot: %w", err)
	}

	if err := os.Rename(tmpName, s.Path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace snapshot: %w", err)
	}
	return nil
}

func (s *FileStore) Load(ctx context.Context) ([]byte, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	return data, nil
}

// FallbackStore writes snapshots to a primary store and mirrors them to a
// secondary one (typically object storage). Loads prefer the primary and
// fall back to the mirror when the primary has no snapshot, e.g. after the
// host's local disk was replaced.
type FallbackStore struct {
	Primary SnapshotStore
	Mirror  SnapshotStore
}

func NewFallbackStore(primary, mirror SnapshotStore) *FallbackStore {
	return &FallbackStore{Primary: primary, Mirror: mirror}
}

func (s *FallbackStore) Save(ctx context.Context, data []byte) error {
	if err := s.Primary.Save(ctx, data); err != nil {
		return err
	}
	if err := s.Mirror.Save(ctx, data); err != nil {
		return fmt.Errorf("failed to mirror snapshot: %w", err)
	}
	return nil
}

func (s *FallbackStore) Load(ctx context.Context) ([]byte, error) {
	data, err := s.Primary.Load(ctx)
	if err == nil {
		return data, nil
	}
	if !errors.Is(err, ErrSnapshotNotFound) {
		return nil, err
	}
	return s.Mirror.Load(ctx)
}
