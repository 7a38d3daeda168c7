package local

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Glowing-Pixels-UG/just-storage-sub001/pkg/objectstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const helloHash = "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"

func newTestStore(t *testing.T) (*Store, string, string) {
	t.Helper()
	hot := filepath.Join(t.TempDir(), "hot")
	cold := filepath.Join(t.TempDir(), "cold")
	s, err := New(Options{HotRoot: hot, ColdRoot: cold})
	require.NoError(t, err)
	return s, hot, cold
}

func TestNewCreatesLayout(t *testing.T) {
	_, hot, cold := newTestStore(t)

	for _, dir := range []string{
		filepath.Join(hot, "temp"),
		filepath.Join(hot, "sha256"),
		filepath.Join(cold, "temp"),
		filepath.Join(cold, "sha256"),
	} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	s, hot, _ := newTestStore(t)
	ctx := context.Background()

	hash, size, err := s.Write(ctx, objectstore.ClassHot, strings.NewReader("hello"))
	require.NoError(t, err)
	assert.Equal(t, helloHash, hash)
	assert.Equal(t, int64(5), size)

	// File lives at the fan-out path
	_, err = os.Stat(filepath.Join(hot, "sha256", "2c", helloHash))
	require.NoError(t, err)

	rc, rsize, err := s.Read(ctx, objectstore.ClassHot, hash)
	require.NoError(t, err)
	defer rc.Close()
	assert.Equal(t, int64(5), rsize)

	data := make([]byte, 5)
	_, err = rc.Read(data)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestWriteDedupFastPath(t *testing.T) {
	s, hot, _ := newTestStore(t)
	ctx := context.Background()

	_, _, err := s.Write(ctx, objectstore.ClassHot, strings.NewReader("hello"))
	require.NoError(t, err)
	hash, _, err := s.Write(ctx, objectstore.ClassHot, strings.NewReader("hello"))
	require.NoError(t, err)
	assert.Equal(t, helloHash, hash)

	// Exactly one committed file, no temp leftovers
	shard := filepath.Join(hot, "sha256", "2c")
	entries, err := os.ReadDir(shard)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	temps, err := os.ReadDir(filepath.Join(hot, "temp"))
	require.NoError(t, err)
	assert.Empty(t, temps)
}

func TestWriteLeavesNoTempOnFailure(t *testing.T) {
	s, hot, _ := newTestStore(t)

	_, _, err := s.Write(context.Background(), objectstore.ClassHot, &failingReader{})
	require.Error(t, err)
	assert.True(t, objectstore.IsCode(err, objectstore.ErrCodeStorageIO))

	temps, err := os.ReadDir(filepath.Join(hot, "temp"))
	require.NoError(t, err)
	assert.Empty(t, temps)
}

type failingReader struct{}

func (f *failingReader) Read([]byte) (int, error) {
	return 0, assert.AnError
}

func TestReadMissing(t *testing.T) {
	s, _, _ := newTestStore(t)

	_, _, err := s.Read(context.Background(), objectstore.ClassHot, helloHash)
	require.Error(t, err)
	assert.True(t, objectstore.IsCode(err, objectstore.ErrCodeNotFound))
}

func TestExists(t *testing.T) {
	s, _, _ := newTestStore(t)
	ctx := context.Background()

	ok, err := s.Exists(ctx, objectstore.ClassHot, helloHash)
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = s.Write(ctx, objectstore.ClassHot, strings.NewReader("hello"))
	require.NoError(t, err)

	ok, err = s.Exists(ctx, objectstore.ClassHot, helloHash)
	require.NoError(t, err)
	assert.True(t, ok)

	// Tiers are independent
	ok, err = s.Exists(ctx, objectstore.ClassCold, helloHash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDeleteIdempotent(t *testing.T) {
	s, _, _ := newTestStore(t)
	ctx := context.Background()

	_, _, err := s.Write(ctx, objectstore.ClassHot, strings.NewReader("hello"))
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, objectstore.ClassHot, helloHash))
	// Second delete of absent content succeeds
	require.NoError(t, s.Delete(ctx, objectstore.ClassHot, helloHash))

	ok, err := s.Exists(ctx, objectstore.ClassHot, helloHash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStatReportsWritableRoots(t *testing.T) {
	s, hot, cold := newTestStore(t)

	stats, err := s.Stat(context.Background())
	require.NoError(t, err)
	require.Len(t, stats.Roots, 2)
	assert.True(t, stats.Healthy())

	paths := []string{stats.Roots[0].Path, stats.Roots[1].Path}
	assert.Contains(t, paths, hot)
	assert.Contains(t, paths, cold)
}

func TestSweepTemp(t *testing.T) {
	s, hot, _ := newTestStore(t)
	ctx := context.Background()

	stale := filepath.Join(hot, "temp", "stale-upload")
	require.NoError(t, os.WriteFile(stale, []byte("partial"), 0644))
	old := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(stale, old, old))

	fresh := filepath.Join(hot, "temp", "fresh-upload")
	require.NoError(t, os.WriteFile(fresh, []byte("partial"), 0644))

	removed, err := s.SweepTemp(ctx, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = os.Stat(stale)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(fresh)
	assert.NoError(t, err)
}

func TestWalk(t *testing.T) {
	s, _, _ := newTestStore(t)
	ctx := context.Background()

	_, _, err := s.Write(ctx, objectstore.ClassHot, strings.NewReader("hello"))
	require.NoError(t, err)
	_, _, err = s.Write(ctx, objectstore.ClassHot, strings.NewReader("world"))
	require.NoError(t, err)

	seen := map[string]int64{}
	err = s.Walk(ctx, objectstore.ClassHot, func(hash string, size int64, _ time.Time) error {
		seen[hash] = size
		return nil
	})
	require.NoError(t, err)

	assert.Len(t, seen, 2)
	assert.Equal(t, int64(5), seen[helloHash])
}

func TestDurableWrite(t *testing.T) {
	hot := filepath.Join(t.TempDir(), "hot")
	cold := filepath.Join(t.TempDir(), "cold")
	s, err := New(Options{HotRoot: hot, ColdRoot: cold, DurableWrites: true})
	require.NoError(t, err)

	hash, _, err := s.Write(context.Background(), objectstore.ClassHot, strings.NewReader("hello"))
	require.NoError(t, err)
	assert.Equal(t, helloHash, hash)
}
