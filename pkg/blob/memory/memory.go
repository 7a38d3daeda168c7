// Package memory implements the blob Store contract over an in-memory
// map. It exists for coordinator and collector tests and supports
// failure injection per operation.
package memory

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"sync"
	"time"

	"github.com/Glowing-Pixels-UG/just-storage-sub001/pkg/blob"
	"github.com/Glowing-Pixels-UG/just-storage-sub001/pkg/objectstore"
)

type entry struct {
	data    []byte
	modTime time.Time
}

// Store is an in-memory blob.Store.
type Store struct {
	mu    sync.Mutex
	tiers map[objectstore.StorageClass]map[string]entry

	// Failure injection. When set, the corresponding operation returns
	// the error instead of running.
	WriteErr  error
	ReadErr   error
	DeleteErr error

	writeCount  int
	deleteCount int
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		tiers: map[objectstore.StorageClass]map[string]entry{
			objectstore.ClassHot:  {},
			objectstore.ClassCold: {},
		},
	}
}

// Write implements blob.Store.
func (s *Store) Write(ctx context.Context, class objectstore.StorageClass, r io.Reader) (string, int64, error) {
	if err := ctx.Err(); err != nil {
		return "", 0, err
	}

	s.mu.Lock()
	injected := s.WriteErr
	s.mu.Unlock()
	if injected != nil {
		return "", 0, injected
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return "", 0, objectstore.NewStorageIO("failed to read content", err)
	}

	sum := sha256.Sum256(data)
	hash := hex.EncodeToString(sum[:])

	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeCount++
	if _, ok := s.tiers[class][hash]; !ok {
		s.tiers[class][hash] = entry{data: data, modTime: time.Now()}
	}
	return hash, int64(len(data)), nil
}

// Read implements blob.Store.
func (s *Store) Read(ctx context.Context, class objectstore.StorageClass, hash string) (io.ReadCloser, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ReadErr != nil {
		return nil, 0, s.ReadErr
	}

	e, ok := s.tiers[class][hash]
	if !ok {
		return nil, 0, objectstore.NewNotFound("blob")
	}
	return io.NopCloser(bytes.NewReader(e.data)), int64(len(e.data)), nil
}

// Exists implements blob.Store.
func (s *Store) Exists(ctx context.Context, class objectstore.StorageClass, hash string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.tiers[class][hash]
	return ok, nil
}

// Delete implements blob.Store.
func (s *Store) Delete(ctx context.Context, class objectstore.StorageClass, hash string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.DeleteErr != nil {
		return s.DeleteErr
	}
	s.deleteCount++
	delete(s.tiers[class], hash)
	return nil
}

// Stat implements blob.Store. A memory store is always healthy.
func (s *Store) Stat(ctx context.Context) (blob.Stats, error) {
	if err := ctx.Err(); err != nil {
		return blob.Stats{}, err
	}
	return blob.Stats{
		Roots: []blob.RootStat{
			{Class: objectstore.ClassHot, Path: "memory://hot", Writable: true},
			{Class: objectstore.ClassCold, Path: "memory://cold", Writable: true},
		},
	}, nil
}

// SweepTemp implements blob.Store. Memory stores hold no temp files.
func (s *Store) SweepTemp(ctx context.Context, olderThan time.Duration) (int, error) {
	return 0, ctx.Err()
}

// Walk implements blob.Store.
func (s *Store) Walk(ctx context.Context, class objectstore.StorageClass, fn blob.WalkFunc) error {
	s.mu.Lock()
	snapshot := make(map[string]entry, len(s.tiers[class]))
	for h, e := range s.tiers[class] {
		snapshot[h] = e
	}
	s.mu.Unlock()

	for hash, e := range snapshot {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(hash, int64(len(e.data)), e.modTime); err != nil {
			return err
		}
	}
	return nil
}

// Contains reports whether the store holds content for hash on the tier.
func (s *Store) Contains(class objectstore.StorageClass, hash string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.tiers[class][hash]
	return ok
}

// Len returns the number of blobs stored on the tier.
func (s *Store) Len(class objectstore.StorageClass) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tiers[class])
}

// WriteCount returns how many Write calls succeeded injection.
func (s *Store) WriteCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeCount
}

// DeleteCount returns how many Delete calls ran.
func (s *Store) DeleteCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteCount
}
