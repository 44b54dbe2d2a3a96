package telemetry

// Ptr returns a pointer to a copy of v, for building optional fields inline.
func Ptr[T any](v T) *T { return &v }
