package utils

// Ptr returns a pointer to v, avoiding a temporary variable when the address
// of a literal or computed value is needed.
//
//	params.Temperature = utils.Ptr(0.7)
func Ptr[T any](v T) *T {
	return &v
}
