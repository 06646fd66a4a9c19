package util

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// Calculate turns 1-based page/size query values into an offset and a
// clamped page size for the search backend.
func Calculate(page, size int) (from, limit int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > maxPageSize {
		size = defaultPageSize
	}
	return (page - 1) * size, size
}
