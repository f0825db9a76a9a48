package models

// Page size bounds shared by the HTTP list endpoints and the document
// store.
const (
	DefaultLimit = 100
	MaxLimit     = 1000
)

// ClampLimit returns DefaultLimit for non-positive limits and caps the
// rest at MaxLimit.
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	default:
		return limit
	}
}

// ClampOffset treats negative offsets as zero.
func ClampOffset(offset int) int {
	return max(offset, 0)
}
