package objectstore

import "time"

// Paging limits. Limits outside the range are clamped, never rejected;
// a negative offset is a validation error.
const (
	DefaultLimit = 100
	MaxLimit     = 1000
)

// SortField names a sortable column.
type SortField string

const (
	SortCreatedAt SortField = "created_at"
	SortUpdatedAt SortField = "updated_at"
	SortSizeBytes SortField = "size_bytes"
	SortKey       SortField = "key"
)

// Valid reports whether f is a known sort field.
func (f SortField) Valid() bool {
	switch f {
	case SortCreatedAt, SortUpdatedAt, SortSizeBytes, SortKey:
		return true
	}
	return false
}

// SortOrder is asc or desc.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// SearchRequest is a structured filter query. All set filters are ANDed.
// Results are COMMITTED rows of the calling tenant only.
type SearchRequest struct {
	// Namespace restricts to one namespace when set
	Namespace string `json:"namespace,omitempty"`

	// KeyContains matches keys by case-insensitive substring
	KeyContains string `json:"key_contains,omitempty"`

	// ContentType matches exactly
	ContentType string `json:"content_type,omitempty"`

	// StorageClass matches exactly
	StorageClass StorageClass `json:"storage_class,omitempty"`

	// MinSizeBytes / MaxSizeBytes bound the payload size
	MinSizeBytes *int64 `json:"min_size_bytes,omitempty"`
	MaxSizeBytes *int64 `json:"max_size_bytes,omitempty"`

	// CreatedAfter / CreatedBefore bound created_at
	CreatedAfter  *time.Time `json:"created_after,omitempty"`
	CreatedBefore *time.Time `json:"created_before,omitempty"`

	// UpdatedAfter / UpdatedBefore bound updated_at
	UpdatedAfter  *time.Time `json:"updated_after,omitempty"`
	UpdatedBefore *time.Time `json:"updated_before,omitempty"`

	// MetadataKind matches metadata.kind exactly
	MetadataKind string `json:"metadata_kind,omitempty"`

	// Attributes match metadata.attributes entries exactly (jsonb
	// containment); all listed pairs must be present
	Attributes map[string]string `json:"attributes,omitempty"`

	// Tag matches membership in metadata.tags
	Tag string `json:"tag,omitempty"`

	// SortBy / SortOrder; default created_at desc with id desc tiebreak
	SortBy    SortField `json:"sort_by,omitempty"`
	SortOrder SortOrder `json:"sort_order,omitempty"`

	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`
}

// Normalize validates the request and fills defaults, clamping the
// limit into [1, MaxLimit].
func (r *SearchRequest) Normalize() error {
	if r.Offset < 0 {
		return NewInvalidRequest("offset must not be negative")
	}
	if r.Limit <= 0 {
		r.Limit = DefaultLimit
	}
	if r.Limit > MaxLimit {
		r.Limit = MaxLimit
	}

	if r.SortBy == "" {
		r.SortBy = SortCreatedAt
	}
	if !r.SortBy.Valid() {
		return NewInvalidRequest("unknown sort field %q", string(r.SortBy))
	}
	switch r.SortOrder {
	case "":
		r.SortOrder = SortDesc
	case SortAsc, SortDesc:
	default:
		return NewInvalidRequest("sort order must be asc or desc")
	}

	if r.StorageClass != "" && !r.StorageClass.Valid() {
		return NewInvalidRequest("invalid storage class %q", string(r.StorageClass))
	}
	if r.Namespace != "" {
		r.Namespace = NormalizeNamespace(r.Namespace)
		if err := ValidateNamespace(r.Namespace); err != nil {
			return err
		}
	}
	if r.MinSizeBytes != nil && *r.MinSizeBytes < 0 {
		return NewInvalidRequest("min_size_bytes must not be negative")
	}
	if r.MinSizeBytes != nil && r.MaxSizeBytes != nil && *r.MinSizeBytes > *r.MaxSizeBytes {
		return NewInvalidRequest("min_size_bytes exceeds max_size_bytes")
	}

	return nil
}

// TextSearchRequest is a substring query over key and metadata text
// (title, description, tags, attribute values).
type TextSearchRequest struct {
	// Query is the substring to match; required
	Query string `json:"query"`

	// Namespace restricts to one namespace when set
	Namespace string `json:"namespace,omitempty"`

	// SearchKey / SearchMetadata select the match targets.
	// Both default true; both false is a validation error.
	SearchKey      *bool `json:"search_key,omitempty"`
	SearchMetadata *bool `json:"search_metadata,omitempty"`

	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`
}

// Normalize validates the request and fills defaults.
func (r *TextSearchRequest) Normalize() error {
	if r.Query == "" {
		return NewInvalidRequest("query must not be empty")
	}
	if r.Offset < 0 {
		return NewInvalidRequest("offset must not be negative")
	}
	if r.Limit <= 0 {
		r.Limit = DefaultLimit
	}
	if r.Limit > MaxLimit {
		r.Limit = MaxLimit
	}

	if r.SearchKey == nil {
		r.SearchKey = boolPtr(true)
	}
	if r.SearchMetadata == nil {
		r.SearchMetadata = boolPtr(true)
	}
	if !*r.SearchKey && !*r.SearchMetadata {
		return NewInvalidRequest("at least one of search_key and search_metadata must be true")
	}

	if r.Namespace != "" {
		r.Namespace = NormalizeNamespace(r.Namespace)
		if err := ValidateNamespace(r.Namespace); err != nil {
			return err
		}
	}

	return nil
}

func boolPtr(b bool) *bool { return &b }

// StatusMutation carries the column updates applied together with a
// status transition.
type StatusMutation struct {
	ContentHash *string
	SizeBytes   *int64
}
