package archive

import "fmt"

// UnregisteredPolymorphicError is returned when a write encounters a
// dynamic type with no typeregistry descriptor, or a read encounters a
// wire type name with no descriptor.
type UnregisteredPolymorphicError struct {
	TypeName string
}

func (e *UnregisteredPolymorphicError) Error() string {
	return fmt.Sprintf("archive: type %q is not registered", e.TypeName)
}

// NotDefaultConstructibleError is returned when a read sentinel requires
// default-constructing a type that has no constructor registered (an
// abstract base marker registered with typeregistry.RegisterBase, or a
// name with no registration at all).
type NotDefaultConstructibleError struct {
	TypeName string
}

func (e *NotDefaultConstructibleError) Error() string {
	return fmt.Sprintf("archive: type %q is not default-constructible", e.TypeName)
}

// CastFailureError from typeregistry (the declared-bases walk between a
// static reference type and a dynamic type exhausted every base without
// finding a chain) surfaces to archive callers unwrapped: it already
// carries everything spec.md §7 asks of CastFailure, and re-wrapping it
// here would only cost an errors.As hop for no benefit.

// StreamFailureError wraps an I/O error reported by the underlying Sink
// or Source.
type StreamFailureError struct {
	Err error
}

func (e *StreamFailureError) Error() string {
	return fmt.Sprintf("archive: stream failure: %v", e.Err)
}

func (e *StreamFailureError) Unwrap() error { return e.Err }

// FormatMismatchError is returned when a token read from the stream
// cannot be parsed in the archive's current encoding.
type FormatMismatchError struct {
	Encoding string
	Detail   string
}

func (e *FormatMismatchError) Error() string {
	return fmt.Sprintf("archive: %s format mismatch: %s", e.Encoding, e.Detail)
}
