// Package blob defines the content-addressed blob filesystem layout and
// the Store contract implemented by pkg/blob/local (production) and
// pkg/blob/memory (tests).
//
// Layout per storage root:
//
//	{root}/temp/{uuid}            in-flight writes
//	{root}/sha256/{hh}/{hash}     committed content, two-char fan-out
//
// A crash can leave garbage under temp/; the garbage collector sweeps it.
package blob

import (
	"fmt"
	"path/filepath"

	"github.com/Glowing-Pixels-UG/just-storage-sub001/pkg/objectstore"
	"github.com/google/uuid"
)

const (
	// tempDirName holds in-flight writes
	tempDirName = "temp"

	// shardDirName holds committed content fanned out by hash prefix
	shardDirName = "sha256"
)

// Paths builds filesystem paths for the two storage tiers.
// Hashes are validated before path construction; no client-controlled
// string ever reaches a path.
type Paths struct {
	hotRoot  string
	coldRoot string
}

// NewPaths creates a path builder over the configured storage roots.
func NewPaths(hotRoot, coldRoot string) *Paths {
	return &Paths{
		hotRoot:  filepath.Clean(hotRoot),
		coldRoot: filepath.Clean(coldRoot),
	}
}

// Root returns the filesystem root for a storage class.
func (p *Paths) Root(class objectstore.StorageClass) (string, error) {
	switch class {
	case objectstore.ClassHot:
		return p.hotRoot, nil
	case objectstore.ClassCold:
		return p.coldRoot, nil
	default:
		return "", fmt.Errorf("unknown storage class %q", class)
	}
}

// TempDir returns the temp directory for a storage class.
func (p *Paths) TempDir(class objectstore.StorageClass) (string, error) {
	root, err := p.Root(class)
	if err != nil {
		return "", err
	}
	return filepath.Join(root, tempDirName), nil
}

// ShardRoot returns the committed-content root for a storage class.
func (p *Paths) ShardRoot(class objectstore.StorageClass) (string, error) {
	root, err := p.Root(class)
	if err != nil {
		return "", err
	}
	return filepath.Join(root, shardDirName), nil
}

// TempPath returns a fresh unique path under {root}/temp for one upload.
func (p *Paths) TempPath(class objectstore.StorageClass) (string, error) {
	dir, err := p.TempDir(class)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, uuid.NewString()), nil
}

// BlobPath returns the final content-addressed path
// {root}/sha256/{hash[0:2]}/{hash}. The hash is validated first.
func (p *Paths) BlobPath(class objectstore.StorageClass, hash string) (string, error) {
	if err := objectstore.ValidateHash(hash); err != nil {
		return "", err
	}
	shard, err := p.ShardRoot(class)
	if err != nil {
		return "", err
	}
	return filepath.Join(shard, hash[:2], hash), nil
}
