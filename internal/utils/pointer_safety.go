package utils

func Value[T any](v *T) T {
	if v == nil {
		return *new(T)
	}
	return *v
}

func Ptr[T any](v T) *T {
	return &v
}

// Copy returns a new pointer holding a copy of *v, or nil.
func Copy[T any](v *T) *T {
	if v == nil {
		return nil
	}
	return Ptr(*v)
}
