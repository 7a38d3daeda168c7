package blob

import (
	"strings"
	"testing"

	"github.com/Glowing-Pixels-UG/just-storage-sub001/pkg/objectstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const helloHash = "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"

func TestBlobPathFanOut(t *testing.T) {
	p := NewPaths("/srv/hot", "/srv/cold")

	path, err := p.BlobPath(objectstore.ClassHot, helloHash)
	require.NoError(t, err)
	assert.Equal(t, "/srv/hot/sha256/2c/"+helloHash, path)

	path, err = p.BlobPath(objectstore.ClassCold, helloHash)
	require.NoError(t, err)
	assert.Equal(t, "/srv/cold/sha256/2c/"+helloHash, path)
}

func TestBlobPathRejectsBadHash(t *testing.T) {
	p := NewPaths("/srv/hot", "/srv/cold")

	for _, hash := range []string{
		"",
		"2c",
		strings.ToUpper(helloHash),
		"../../../etc/passwd",
		strings.Repeat("g", 64),
	} {
		_, err := p.BlobPath(objectstore.ClassHot, hash)
		assert.Error(t, err, "hash %q", hash)
		assert.True(t, objectstore.IsCode(err, objectstore.ErrCodeInvalidRequest))
	}
}

func TestTempPathUnique(t *testing.T) {
	p := NewPaths("/srv/hot", "/srv/cold")

	a, err := p.TempPath(objectstore.ClassHot)
	require.NoError(t, err)
	b, err := p.TempPath(objectstore.ClassHot)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasPrefix(a, "/srv/hot/temp/"))
}

func TestRootUnknownClass(t *testing.T) {
	p := NewPaths("/srv/hot", "/srv/cold")
	_, err := p.Root(objectstore.StorageClass("warm"))
	assert.Error(t, err)
}
