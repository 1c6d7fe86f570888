package shuffle

// SlicePage returns the window of perm that holds the given page.
// page and pageSize must already be normalized. A page past the end yields an
// empty slice. The result aliases perm and must not be modified.
func SlicePage[ID any](perm []ID, page, pageSize int) []ID {
	// compare page counts rather than offsets so huge page numbers cannot overflow
	if page < 1 || pageSize < 1 || page-1 >= (len(perm)+pageSize-1)/pageSize {
		return []ID{}
	}

	start := (page - 1) * pageSize
	end := start + pageSize
	if end > len(perm) {
		end = len(perm)
	}
	return perm[start:end:end]
}
