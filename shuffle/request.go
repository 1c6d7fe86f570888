package shuffle

const (
	// DefaultPageSize replaces a missing or non-positive page size.
	DefaultPageSize = 10
	// MaxPageSize caps the page size.
	MaxPageSize = 100
)

// PageRequest is one page of a shuffled listing, as asked for by a client.
type PageRequest struct {
	Page      int    `json:"page" form:"page"`
	PageSize  int    `json:"pageSize" form:"pageSize"`
	SessionID string `json:"sessionId,omitempty" form:"sessionId"`
}

// Normalize clamps the request with the package defaults.
// Out of range values are corrected, never rejected.
func (r PageRequest) Normalize() PageRequest {
	return r.normalize(DefaultPageSize, MaxPageSize)
}

func (r PageRequest) normalize(defaultSize, maxSize int) PageRequest {
	if r.Page < 1 {
		r.Page = 1
	}
	switch {
	case r.PageSize < 1:
		r.PageSize = defaultSize
	case r.PageSize > maxSize:
		r.PageSize = maxSize
	}
	return r
}
