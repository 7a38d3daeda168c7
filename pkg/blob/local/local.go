// Package local implements the blob Store contract on a local
// filesystem with a hot and a cold root.
//
// Writes stream to {root}/temp/{uuid} through the hashing copier, then
// rename atomically into {root}/sha256/{hh}/{hash}. When durable writes
// are enabled, the temp file is fsynced before the rename and both
// parent directories after it.
package local

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/Glowing-Pixels-UG/just-storage-sub001/internal/logger"
	"github.com/Glowing-Pixels-UG/just-storage-sub001/pkg/blob"
	"github.com/Glowing-Pixels-UG/just-storage-sub001/pkg/objectstore"
)

const (
	dirMode  = 0755
	fileMode = 0644
)

// Options configures the local blob store.
type Options struct {
	// HotRoot and ColdRoot are the tier roots. Both required, distinct.
	HotRoot  string
	ColdRoot string

	// DurableWrites fsyncs the temp file before rename and the parent
	// directories after
	DurableWrites bool
}

// Store implements blob.Store over the local filesystem.
type Store struct {
	paths   *blob.Paths
	durable bool
}

// New creates the store and ensures the temp and shard directories
// exist under both roots.
func New(opts Options) (*Store, error) {
	s := &Store{
		paths:   blob.NewPaths(opts.HotRoot, opts.ColdRoot),
		durable: opts.DurableWrites,
	}

	for _, class := range []objectstore.StorageClass{objectstore.ClassHot, objectstore.ClassCold} {
		tempDir, err := s.paths.TempDir(class)
		if err != nil {
			return nil, err
		}
		shardRoot, err := s.paths.ShardRoot(class)
		if err != nil {
			return nil, err
		}
		for _, dir := range []string{tempDir, shardRoot} {
			if err := os.MkdirAll(dir, dirMode); err != nil {
				return nil, fmt.Errorf("failed to create %s: %w", dir, err)
			}
		}
	}

	return s, nil
}

// Write implements blob.Store.
func (s *Store) Write(ctx context.Context, class objectstore.StorageClass, r io.Reader) (string, int64, error) {
	if err := ctx.Err(); err != nil {
		return "", 0, err
	}

	tempPath, err := s.paths.TempPath(class)
	if err != nil {
		return "", 0, objectstore.NewStorageIO("failed to build temp path", err)
	}

	f, err := os.OpenFile(tempPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, fileMode)
	if err != nil {
		return "", 0, objectstore.NewStorageIO("failed to create temp file", err)
	}

	hash, size, err := blob.WriteAndHash(f, r)
	if err != nil {
		_ = f.Close()
		_ = os.Remove(tempPath)
		return "", 0, objectstore.NewStorageIO("failed to stream content", err)
	}

	if s.durable {
		if err := f.Sync(); err != nil {
			_ = f.Close()
			_ = os.Remove(tempPath)
			return "", 0, objectstore.NewStorageIO("failed to fsync temp file", err)
		}
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tempPath)
		return "", 0, objectstore.NewStorageIO("failed to close temp file", err)
	}

	finalPath, err := s.paths.BlobPath(class, hash)
	if err != nil {
		_ = os.Remove(tempPath)
		return "", 0, err
	}

	// Dedup fast path: the content is already stored
	if _, statErr := os.Stat(finalPath); statErr == nil {
		_ = os.Remove(tempPath)
		return hash, size, nil
	}

	if err := os.MkdirAll(filepath.Dir(finalPath), dirMode); err != nil {
		_ = os.Remove(tempPath)
		return "", 0, objectstore.NewStorageIO("failed to create shard directory", err)
	}

	if err := os.Rename(tempPath, finalPath); err != nil {
		_ = os.Remove(tempPath)
		return "", 0, objectstore.NewStorageIO("failed to commit blob file", err)
	}

	if s.durable {
		s.syncDir(filepath.Dir(finalPath))
		s.syncDir(filepath.Dir(tempPath))
	}

	return hash, size, nil
}

// syncDir fsyncs a directory so the rename survives a crash.
// Failures are logged, not fatal: the data itself is already synced.
func (s *Store) syncDir(dir string) {
	d, err := os.Open(dir)
	if err != nil {
		logger.Warn("failed to open directory for fsync", logger.Path(dir), logger.Err(err))
		return
	}
	defer d.Close()
	if err := d.Sync(); err != nil {
		logger.Warn("failed to fsync directory", logger.Path(dir), logger.Err(err))
	}
}

// Read implements blob.Store.
func (s *Store) Read(ctx context.Context, class objectstore.StorageClass, hash string) (io.ReadCloser, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	path, err := s.paths.BlobPath(class, hash)
	if err != nil {
		return nil, 0, err
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, 0, objectstore.NewNotFound("blob")
		}
		return nil, 0, objectstore.NewStorageIO("failed to open blob file", err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, 0, objectstore.NewStorageIO("failed to stat blob file", err)
	}

	return f, info.Size(), nil
}

// Exists implements blob.Store.
func (s *Store) Exists(ctx context.Context, class objectstore.StorageClass, hash string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	path, err := s.paths.BlobPath(class, hash)
	if err != nil {
		return false, err
	}

	_, err = os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, objectstore.NewStorageIO("failed to stat blob file", err)
}

// Delete implements blob.Store. Removing a file that is already gone is
// a success.
func (s *Store) Delete(ctx context.Context, class objectstore.StorageClass, hash string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path, err := s.paths.BlobPath(class, hash)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return objectstore.NewStorageIO("failed to delete blob file", err)
	}
	return nil
}

// Stat implements blob.Store.
func (s *Store) Stat(ctx context.Context) (blob.Stats, error) {
	if err := ctx.Err(); err != nil {
		return blob.Stats{}, err
	}

	var stats blob.Stats
	for _, class := range []objectstore.StorageClass{objectstore.ClassHot, objectstore.ClassCold} {
		root, err := s.paths.Root(class)
		if err != nil {
			return blob.Stats{}, err
		}

		rs := blob.RootStat{Class: class, Path: root}
		if info, err := os.Stat(root); err == nil && info.IsDir() {
			rs.Writable = dirWritable(root)
		}
		if free, total, err := fsUsage(root); err == nil {
			rs.FreeBytes = free
			rs.TotalBytes = total
		}
		stats.Roots = append(stats.Roots, rs)
	}

	return stats, nil
}

// dirWritable probes writability by creating and removing a marker file.
func dirWritable(dir string) bool {
	probe := filepath.Join(dir, ".probe")
	f, err := os.OpenFile(probe, os.O_WRONLY|os.O_CREATE|os.O_EXCL, fileMode)
	if err != nil {
		return false
	}
	_ = f.Close()
	_ = os.Remove(probe)
	return true
}

// SweepTemp implements blob.Store.
func (s *Store) SweepTemp(ctx context.Context, olderThan time.Duration) (int, error) {
	cutoff := time.Now().Add(-olderThan)
	removed := 0

	for _, class := range []objectstore.StorageClass{objectstore.ClassHot, objectstore.ClassCold} {
		if err := ctx.Err(); err != nil {
			return removed, err
		}

		tempDir, err := s.paths.TempDir(class)
		if err != nil {
			return removed, err
		}

		entries, err := os.ReadDir(tempDir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return removed, objectstore.NewStorageIO("failed to read temp directory", err)
		}

		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			info, err := entry.Info()
			if err != nil {
				continue
			}
			if info.ModTime().After(cutoff) {
				continue
			}
			path := filepath.Join(tempDir, entry.Name())
			if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
				logger.Warn("failed to remove stale temp file", logger.Path(path), logger.Err(err))
				continue
			}
			removed++
		}
	}

	return removed, nil
}

// Walk implements blob.Store. Files whose names are not valid hashes are
// skipped.
func (s *Store) Walk(ctx context.Context, class objectstore.StorageClass, fn blob.WalkFunc) error {
	shardRoot, err := s.paths.ShardRoot(class)
	if err != nil {
		return err
	}

	return filepath.WalkDir(shardRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() {
			return nil
		}

		hash := d.Name()
		if objectstore.ValidateHash(hash) != nil {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}
		return fn(hash, info.Size(), info.ModTime())
	})
}
