package utils

// NewNullString is a helper for string pointers, returning nil if string is empty.
// Useful for optional fields (phone, notes) that should be NULL in DB if not provided.
func NewNullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
