package pagination

// Source is a read-only handle to an externally owned sequence.
// Items is called on every read, so implementations should return the
// current contents rather than a snapshot taken at construction.
type Source[T any] interface {
	Items() []T
}

// SourceFunc adapts a function to Source.
type SourceFunc[T any] func() []T

// Items implements Source.
func (f SourceFunc[T]) Items() []T {
	if f == nil {
		return nil
	}
	return f()
}

// sliceSource observes a slice variable through a pointer so that
// reassignments by the owner are seen on the next read.
type sliceSource[T any] struct {
	ref *[]T
}

// SliceSource returns a Source that reads *ref on every call.
// A nil ref behaves as an empty sequence.
func SliceSource[T any](ref *[]T) Source[T] {
	return sliceSource[T]{ref: ref}
}

func (s sliceSource[T]) Items() []T {
	if s.ref == nil {
		return nil
	}
	return *s.ref
}
