package catalog

import "github.com/Glowing-Pixels-UG/just-storage-sub001/pkg/objectstore"

// The search and mutation request types live in pkg/objectstore so the
// coordinators can reference them without importing this package. The
// aliases keep catalog implementations spelled in catalog terms.
type (
	SearchRequest     = objectstore.SearchRequest
	TextSearchRequest = objectstore.TextSearchRequest
	SortField         = objectstore.SortField
	SortOrder         = objectstore.SortOrder
	StatusMutation    = objectstore.StatusMutation
)

const (
	DefaultLimit = objectstore.DefaultLimit
	MaxLimit     = objectstore.MaxLimit
)

const (
	SortCreatedAt = objectstore.SortCreatedAt
	SortUpdatedAt = objectstore.SortUpdatedAt
	SortSizeBytes = objectstore.SortSizeBytes
	SortKey       = objectstore.SortKey

	SortAsc  = objectstore.SortAsc
	SortDesc = objectstore.SortDesc
)
