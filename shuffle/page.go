package shuffle

// Page is the envelope returned for one page of a shuffled listing.
type Page[T any] struct {
	Data        []T  `json:"data"`
	Page        int  `json:"page"`
	PageSize    int  `json:"pageSize"`
	TotalCount  int  `json:"totalCount"`
	TotalPages  int  `json:"totalPages"`
	HasPrevious bool `json:"hasPrevious"`
	HasNext     bool `json:"hasNext"`
}

// NewPage builds the envelope and its derived fields.
// pageSize must be positive.
func NewPage[T any](data []T, page, pageSize, totalCount int) Page[T] {
	if data == nil {
		data = []T{}
	}

	totalPages := (totalCount + pageSize - 1) / pageSize

	return Page[T]{
		Data:        data,
		Page:        page,
		PageSize:    pageSize,
		TotalCount:  totalCount,
		TotalPages:  totalPages,
		HasPrevious: page > 1,
		HasNext:     page < totalPages,
	}
}
