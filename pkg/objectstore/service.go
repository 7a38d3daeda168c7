package objectstore

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
)

// BlobStore is the filesystem contract the coordinators drive.
// pkg/blob/local implements it; pkg/blob/memory fakes it for tests.
type BlobStore interface {
	Write(ctx context.Context, class StorageClass, r io.Reader) (string, int64, error)
	Read(ctx context.Context, class StorageClass, hash string) (io.ReadCloser, int64, error)
	Exists(ctx context.Context, class StorageClass, hash string) (bool, error)
	Delete(ctx context.Context, class StorageClass, hash string) error
}

// BlobIndex is the slice of the blob catalog the coordinators use.
type BlobIndex interface {
	GetOrCreate(ctx context.Context, hash string, class StorageClass, size int64) (*Blob, bool, error)
	DecrementRef(ctx context.Context, hash string) (int64, error)
	Get(ctx context.Context, hash string) (*Blob, error)
	Delete(ctx context.Context, hash string) error
}

// ObjectIndex is the slice of the object catalog the coordinators use.
type ObjectIndex interface {
	Create(ctx context.Context, obj *Object) (*Object, error)
	UpdateStatus(ctx context.Context, id string, from, to ObjectStatus, mutate *StatusMutation) (*Object, error)
	Get(ctx context.Context, id string) (*Object, error)
	FindByID(ctx context.Context, tenant uuid.UUID, id string) (*Object, error)
	FindByKey(ctx context.Context, tenant uuid.UUID, namespace, key string) (*Object, error)
	List(ctx context.Context, tenant uuid.UUID, namespace string, limit, offset int) ([]*Object, int64, error)
	Search(ctx context.Context, tenant uuid.UUID, req *SearchRequest) ([]*Object, int64, error)
	TextSearch(ctx context.Context, tenant uuid.UUID, req *TextSearchRequest) ([]*Object, int64, error)
}

// Recorder receives operation metrics. Implemented by pkg/metrics;
// NopRecorder keeps the coordinators quiet in tests.
type Recorder interface {
	RecordUpload(class StorageClass, dedup bool, size int64, elapsed time.Duration)
	RecordDownload(class StorageClass, size int64, elapsed time.Duration)
	RecordDelete(class StorageClass, elapsed time.Duration)
	RecordQuery(op string, elapsed time.Duration)
}

// NopRecorder discards all measurements.
type NopRecorder struct{}

func (NopRecorder) RecordUpload(StorageClass, bool, int64, time.Duration) {}
func (NopRecorder) RecordDownload(StorageClass, int64, time.Duration)     {}
func (NopRecorder) RecordDelete(StorageClass, time.Duration)              {}
func (NopRecorder) RecordQuery(string, time.Duration)                     {}

// Store coordinates the blob filesystem and the catalog into the
// object-store operations. All methods are safe for concurrent use.
type Store struct {
	blobs   BlobStore
	blobIdx BlobIndex
	objects ObjectIndex
	verify  bool
	metrics Recorder
}

// Options configures a Store.
type Options struct {
	Blobs         BlobStore
	BlobCatalog   BlobIndex
	ObjectCatalog ObjectIndex

	// VerifyOnRead re-hashes every download (storage.verify_on_read)
	VerifyOnRead bool

	// Metrics defaults to NopRecorder
	Metrics Recorder
}

// NewStore wires the coordinators.
func NewStore(opts Options) *Store {
	metrics := opts.Metrics
	if metrics == nil {
		metrics = NopRecorder{}
	}
	return &Store{
		blobs:   opts.Blobs,
		blobIdx: opts.BlobCatalog,
		objects: opts.ObjectCatalog,
		verify:  opts.VerifyOnRead,
		metrics: metrics,
	}
}
