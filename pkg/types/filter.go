package types

// Filter represents query parameters for filtering and pagination.
type Filter struct {
	Search         string                 `json:"search,omitempty"`
	Sort           map[string]string      `json:"sort,omitempty"`
	Filter         map[string]interface{} `json:"filter,omitempty"`
	Limit          int                    `json:"limit"`
	Offset         int                    `json:"offset"`
	Page           int                    `json:"page"`
	WithPagination bool                   `json:"with_pagination"`
}

// Pagination represents pagination metadata.
type Pagination struct {
	TotalCount uint64 `json:"total_count"`
	Page       int    `json:"page"`
	Limit      int    `json:"limit"`
	TotalPages int    `json:"total_pages"`
}

// StringFilter достает строковое значение filter[key].
func (f Filter) StringFilter(key string) string {
	if v, ok := f.Filter[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// http://localhost:8080/api/devices?search=Dell&filter[status]=AVAILABLE&filter[rack_id]=2&limit=10&page=1&withPagination=true
