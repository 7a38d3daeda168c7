package postgres

import (
	"fmt"
	"strings"

	"github.com/Glowing-Pixels-UG/just-storage-sub001/pkg/catalog"
	"github.com/google/uuid"
)

// whereBuilder accumulates ANDed conditions with positional arguments.
type whereBuilder struct {
	conds []string
	args  []any
}

func (b *whereBuilder) sql() string {
	return "WHERE " + strings.Join(b.conds, " AND ")
}

// addCond appends one condition, renumbering its ?-placeholders.
func (b *whereBuilder) addCond(cond string, vals ...any) {
	for _, v := range vals {
		b.args = append(b.args, v)
		cond = strings.Replace(cond, "?", fmt.Sprintf("$%d", len(b.args)), 1)
	}
	b.conds = append(b.conds, cond)
}

// buildSearchWhere translates a normalized SearchRequest into a WHERE
// clause over COMMITTED rows of the tenant.
func buildSearchWhere(tenant uuid.UUID, req *catalog.SearchRequest) (string, []any) {
	b := &whereBuilder{}
	b.addCond("tenant_id = ?", tenant)
	b.addCond("status = 'COMMITTED'")

	if req.Namespace != "" {
		b.addCond("namespace = ?", req.Namespace)
	}
	if req.KeyContains != "" {
		b.addCond("key ILIKE '%' || ? || '%'", escapeLike(req.KeyContains))
	}
	if req.ContentType != "" {
		b.addCond("content_type = ?", req.ContentType)
	}
	if req.StorageClass != "" {
		b.addCond("storage_class = ?", req.StorageClass)
	}
	if req.MinSizeBytes != nil {
		b.addCond("size_bytes >= ?", *req.MinSizeBytes)
	}
	if req.MaxSizeBytes != nil {
		b.addCond("size_bytes <= ?", *req.MaxSizeBytes)
	}
	if req.CreatedAfter != nil {
		b.addCond("created_at >= ?", *req.CreatedAfter)
	}
	if req.CreatedBefore != nil {
		b.addCond("created_at < ?", *req.CreatedBefore)
	}
	if req.UpdatedAfter != nil {
		b.addCond("updated_at >= ?", *req.UpdatedAfter)
	}
	if req.UpdatedBefore != nil {
		b.addCond("updated_at < ?", *req.UpdatedBefore)
	}
	if req.MetadataKind != "" {
		b.addCond("metadata ->> 'kind' = ?", req.MetadataKind)
	}
	if len(req.Attributes) > 0 {
		// Containment hits the GIN index on metadata.
		b.addCond("metadata @> ?", map[string]any{"attributes": req.Attributes})
	}
	if req.Tag != "" {
		b.addCond("metadata @> ?", map[string]any{"tags": []string{req.Tag}})
	}

	return b.sql(), b.args
}

// buildTextWhere translates a normalized TextSearchRequest into a WHERE
// clause. Metadata text covers title, description, tags, and attribute
// values.
func buildTextWhere(tenant uuid.UUID, req *catalog.TextSearchRequest) (string, []any) {
	b := &whereBuilder{}
	b.addCond("tenant_id = ?", tenant)
	b.addCond("status = 'COMMITTED'")

	if req.Namespace != "" {
		b.addCond("namespace = ?", req.Namespace)
	}

	pattern := "%" + escapeLike(req.Query) + "%"
	var targets []string
	if *req.SearchKey {
		b.args = append(b.args, pattern)
		targets = append(targets, fmt.Sprintf("key ILIKE $%d", len(b.args)))
	}
	if *req.SearchMetadata {
		b.args = append(b.args, pattern)
		p := len(b.args)
		targets = append(targets,
			fmt.Sprintf("metadata ->> 'title' ILIKE $%d", p),
			fmt.Sprintf("metadata ->> 'description' ILIKE $%d", p),
			fmt.Sprintf(`EXISTS (SELECT 1 FROM jsonb_array_elements_text(coalesce(metadata -> 'tags', '[]'::jsonb)) t(v) WHERE t.v ILIKE $%d)`, p),
			fmt.Sprintf(`EXISTS (SELECT 1 FROM jsonb_each_text(coalesce(metadata -> 'attributes', '{}'::jsonb)) a(k, v) WHERE a.v ILIKE $%d)`, p),
		)
	}
	b.conds = append(b.conds, "("+strings.Join(targets, " OR ")+")")

	return b.sql(), b.args
}

// buildOrderBy renders the ORDER BY clause from whitelisted sort fields.
// The id tiebreak keeps paging stable.
func buildOrderBy(field catalog.SortField, order catalog.SortOrder) string {
	dir := "DESC"
	if order == catalog.SortAsc {
		dir = "ASC"
	}
	return fmt.Sprintf(" ORDER BY %s %s, id %s", string(field), dir, dir)
}

// appendArg appends v to args and renders "<kw>$n" for the query tail.
func appendArg(args *[]any, kw string, v any) string {
	*args = append(*args, v)
	return fmt.Sprintf("%s$%d", kw, len(*args))
}

// escapeLike neutralizes LIKE wildcards in user input so a substring
// query matches literally.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}
