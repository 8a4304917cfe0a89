package archive

// Sink is the write-side half of the encoder contract (spec.md §4.1):
// the primitive operations every codec must implement, plus a sticky
// error so the Archive can surface a stream failure at the call where it
// happened instead of threading an error return through every primitive
// transfer (the same shape as core/data/binary.Writer's Error/SetError).
type Sink interface {
	Bool(bool)
	Int16(int16)
	Int32(int32)
	Int64(int64)
	Uint8(uint8)
	Uint64(uint64)
	Float64(float64)
	String(string)
	// CString writes an optional owned string; nil encodes the null
	// C-string sentinel (spec.md §6).
	CString(*string)
	Bytes([]byte)

	// Error returns the error, if any, that has stopped writing. Once
	// non-nil every subsequent primitive write becomes a no-op.
	Error() error
	// SetError latches err as the sink's sticky error if one is not
	// already set.
	SetError(err error)
}

// Source is the read-side half of the encoder contract. Once Error()
// becomes non-nil every subsequent primitive read returns the zero value
// of its type.
type Source interface {
	Bool() bool
	Int16() int16
	Int32() int32
	Int64() int64
	Uint8() uint8
	Uint64() uint64
	Float64() float64
	String() string
	// CString reads an optional owned string; returns nil for the null
	// C-string sentinel.
	CString() *string
	Bytes() []byte

	Error() error
	SetError(err error)
}
