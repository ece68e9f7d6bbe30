package clause

import "strings"

// Order is a sort direction.
type Order string

// Sort directions. An empty Order means ascending.
const (
	Asc  Order = "asc"
	Desc Order = "desc"
)

// SortRequest is one requested ordering: a comma-delimited field list with an
// optional direction applying to every field in it.
type SortRequest struct {
	Fields string
	Order  Order
}

// SortField is a compiled ordering directive over a whitelisted field.
type SortField struct {
	Field string
	Desc  bool
}

// Sort validates requested sort fields against the mapping's whitelist and
// compiles them to ordering directives. Unknown fields are dropped silently;
// a request that leaves nothing falls back to the mapping's default fields
// ascending.
func Sort(m Mapping, requests ...SortRequest) []SortField {
	var out []SortField
	seen := make(map[string]struct{})
	for _, req := range requests {
		desc := strings.EqualFold(string(req.Order), string(Desc))
		for _, f := range strings.Split(req.Fields, ",") {
			f = strings.ToLower(strings.TrimSpace(f))
			if f == "" || !m.ValidField(f) {
				continue
			}
			if _, dup := seen[f]; dup {
				continue
			}
			seen[f] = struct{}{}
			out = append(out, SortField{Field: f, Desc: desc})
		}
	}
	if len(out) == 0 {
		for _, f := range m.DefaultFields() {
			out = append(out, SortField{Field: f})
		}
	}
	return out
}

// Paginate turns a 1-based page and a page size into offset/limit directives.
// Page 1 and below start at offset 0. A non-positive page size means
// unlimited: limit 0 is "no limit emitted" to the backends.
func Paginate(page, pageSize int) (offset, limit int) {
	if pageSize <= 0 {
		return 0, 0
	}
	if page <= 1 {
		return 0, pageSize
	}
	return (page - 1) * pageSize, pageSize
}
