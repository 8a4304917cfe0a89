// Package archive implements the symmetric object-graph archive: a
// single-session, single-direction, single-threaded codec bound to one
// byte stream that writes an in-memory object graph (including shared
// and raw references, polymorphic objects, and standard containers) and
// reconstructs an isomorphic graph from what it wrote.
//
// The package declares the primitive transfer operations (Bool, Int32,
// String, ...) and the generic composition rules (Shared, Raw, Slice,
// Map, ...) against the Sink/Source contract in sink.go; wire/binary and
// wire/text are the two concrete codecs that satisfy that contract.
package archive

import (
	"fmt"
	"reflect"

	"netgen.dev/ngcore/libversion"
	"netgen.dev/ngcore/typeregistry"
)

// Direction fixes, for the lifetime of an Archive, whether it is
// producing a stream or consuming one. An Archive is used for exactly
// one direction for its whole lifetime (spec.md §3).
type Direction int

const (
	Writing Direction = iota
	Reading
)

func (d Direction) String() string {
	if d == Writing {
		return "writing"
	}
	return "reading"
}

// Serializable is implemented by any aggregate type that wants to
// participate in the archive by hand-rolling its own field transfers.
// This is the generic pointer/value transfer's single hook: when the
// value passed to Shared/Raw (or embedded in a container) implements
// Serializable, the archive delegates to it; otherwise the value must be
// one of the primitive kinds or a supported container helper in
// containers.go.
type Serializable interface {
	Serialize(a *Archive) error
}

// reserved sentinel reference IDs (spec.md §3, §4.2).
const (
	sentinelNewPoly  int64 = -3
	sentinelNull     int64 = -2
	sentinelNewInline int64 = -1
)

// Archive is a session-scoped codec bound to one direction and one
// underlying Sink or Source. Its identity tables (the shared/raw address
// registries) are private to the session and die with it.
type Archive struct {
	dir Direction

	sink   Sink   // non-nil when dir == Writing
	source Source // non-nil when dir == Reading

	// write-side identity tables: address of the canonical (most-derived)
	// object -> assigned id.
	sharedAddr map[uintptr]int64
	rawAddr    map[uintptr]int64

	// read-side identity tables: assigned id -> reconstructed value. A
	// shared reference additionally keeps the archive's own strong
	// reference alive for the life of the session (spec.md §3,
	// "Lifecycles": shared references created during reads are owned
	// jointly via the archive's shared-handle vector).
	sharedByID []any
	rawByID    []any

	nextSharedID int64
	nextRawID    int64

	// versions is populated at construction: on read, the header parsed
	// off the stream; on write, a reference to the same table that was
	// just written (kept so VersionOf behaves symmetrically in both
	// directions even though a writer never needs to "look up" a version
	// it is producing itself).
	versions map[string]libversion.Version
}

// NewWriter constructs a write-direction Archive over sink. It
// immediately transfers the library-version header (spec.md §4.6): the
// process-wide table snapshotted at the moment of construction, never
// back-dated to an earlier release.
func NewWriter(sink Sink) (*Archive, error) {
	a := &Archive{
		dir:        Writing,
		sink:       sink,
		sharedAddr: map[uintptr]int64{},
		rawAddr:    map[uintptr]int64{},
		versions:   libversion.Snapshot(),
	}
	if err := writeVersionHeader(a, a.versions); err != nil {
		return nil, err
	}
	return a, nil
}

// NewReader constructs a read-direction Archive over source, parsing the
// library-version header that every writer transfers at construction.
func NewReader(source Source) (*Archive, error) {
	a := &Archive{
		dir:    Reading,
		source: source,
	}
	versions, err := readVersionHeader(a)
	if err != nil {
		return nil, err
	}
	a.versions = versions
	return a, nil
}

// Direction reports whether a is writing or reading.
func (a *Archive) Direction() Direction { return a.dir }

// VersionOf returns the version tuple that the writer's process-wide
// table held for library at save time, and whether that library had an
// entry at all. On a write-direction archive it answers from the same
// snapshot that was just transferred, which is always the current
// process table (spec.md §4.6: "Writers always emit the current process
// table").
func (a *Archive) VersionOf(library string) (libversion.Version, bool) {
	v, ok := a.versions[library]
	return v, ok
}

// errOf returns the sticky error, if any, accumulated by the active
// codec, classified per spec.md §7. Every primitive transfer method
// below checks this immediately after delegating to the codec so that a
// stream failure or format mismatch surfaces to the caller at the call
// where it happened, per spec.md §7 ("all surfaced synchronously to the
// caller").
func (a *Archive) errOf() error {
	var err error
	if a.dir == Writing {
		err = a.sink.Error()
	} else {
		err = a.source.Error()
	}
	if err == nil {
		return nil
	}
	if fe, ok := err.(formatMismatchError); ok {
		return &FormatMismatchError{Encoding: "text", Detail: fe.Error()}
	}
	return &StreamFailureError{Err: err}
}

// formatMismatchError is implemented by wire/text.FormatError; matched
// by interface (naming a marker method, not just error's Error()) so
// that archive can tell a parse failure apart from a plain I/O error
// without importing wire/text — wire/text imports archive, not the
// other way around.
type formatMismatchError interface {
	error
	FormatMismatch()
}

// Bool transfers a boolean primitive.
func (a *Archive) Bool(v *bool) error {
	if a.dir == Writing {
		a.sink.Bool(*v)
	} else {
		*v = a.source.Bool()
	}
	return a.errOf()
}

// Int16 transfers a signed 16-bit integer primitive.
func (a *Archive) Int16(v *int16) error {
	if a.dir == Writing {
		a.sink.Int16(*v)
	} else {
		*v = a.source.Int16()
	}
	return a.errOf()
}

// Int32 transfers a signed 32-bit integer primitive.
func (a *Archive) Int32(v *int32) error {
	if a.dir == Writing {
		a.sink.Int32(*v)
	} else {
		*v = a.source.Int32()
	}
	return a.errOf()
}

// Int64 transfers a signed 64-bit integer primitive.
func (a *Archive) Int64(v *int64) error {
	if a.dir == Writing {
		a.sink.Int64(*v)
	} else {
		*v = a.source.Int64()
	}
	return a.errOf()
}

// Uint8 transfers an unsigned byte primitive.
func (a *Archive) Uint8(v *uint8) error {
	if a.dir == Writing {
		a.sink.Uint8(*v)
	} else {
		*v = a.source.Uint8()
	}
	return a.errOf()
}

// Uint64 transfers an unsigned 64-bit integer primitive. Used for the
// usize kind of spec.md §4.1 (a caller's uintptr-sized values are
// transferred through this, never through the machine uint/int kind
// directly; the archive's own container length prefixes use Int64).
func (a *Archive) Uint64(v *uint64) error {
	if a.dir == Writing {
		a.sink.Uint64(*v)
	} else {
		*v = a.source.Uint64()
	}
	return a.errOf()
}

// Float64 transfers a double-precision float primitive.
func (a *Archive) Float64(v *float64) error {
	if a.dir == Writing {
		a.sink.Float64(*v)
	} else {
		*v = a.source.Float64()
	}
	return a.errOf()
}

// String transfers a UTF-8 string primitive (length-prefixed on the wire
// in both encoders, per spec.md §6).
func (a *Archive) String(v *string) error {
	if a.dir == Writing {
		a.sink.String(*v)
	} else {
		*v = a.source.String()
	}
	return a.errOf()
}

// CString transfers an optional owned C-string: *v == nil means a null
// C pointer on the wire, distinct from a non-nil pointer to an empty
// string (spec.md §6 scenario 6, supplemented in SPEC_FULL.md §7.1).
func (a *Archive) CString(v **string) error {
	if a.dir == Writing {
		a.sink.CString(*v)
	} else {
		*v = a.source.CString()
	}
	return a.errOf()
}

// Bytes transfers a raw byte slice through the bulk path (SPEC_FULL.md
// §7.2: the supplemented Do(unsigned char*, size_t) override point).
func (a *Archive) Bytes(v *[]byte) error {
	if a.dir == Writing {
		a.sink.Bytes(*v)
	} else {
		*v = a.source.Bytes()
	}
	return a.errOf()
}

// Float64Slice transfers a slice of float64 as a length prefix (matching
// every other container in containers.go) followed by the elements,
// through the bulk path when the active codec offers one (wire/binary
// does; wire/text falls back to per-element transfer, per spec.md
// §4.1's explicit carve-out: "the textual encoder is permitted to fall
// back to per-element transfer").
func (a *Archive) Float64Slice(v *[]float64) error {
	n := int64(len(*v))
	if err := a.Int64(&n); err != nil {
		return err
	}

	if a.dir == Writing {
		if bw, ok := a.sink.(BulkFloat64Writer); ok {
			bw.Float64s(*v)
			return a.errOf()
		}
		for _, f := range *v {
			if err := a.Float64(&f); err != nil {
				return err
			}
		}
		return nil
	}

	if br, ok := a.source.(BulkFloat64Reader); ok {
		*v = br.Float64sN(int(n))
		return a.errOf()
	}
	*v = make([]float64, n)
	for i := range *v {
		if err := a.Float64(&(*v)[i]); err != nil {
			return err
		}
	}
	return nil
}

// BulkFloat64Writer is the optional bulk-write path a Sink may implement
// to emit a contiguous block of float64s instead of per-element calls
// (spec.md §4.1's xfer_bulk). Byte-equivalent to Count successive
// Float64 calls when implemented by the binary codec.
type BulkFloat64Writer interface {
	Float64s(v []float64)
}

// BulkFloat64Reader is the read-side counterpart of BulkFloat64Writer.
// The element count was already consumed by Float64Slice's length
// prefix; Float64sN reads exactly that many doubles as one block.
type BulkFloat64Reader interface {
	Float64sN(n int) []float64
}

// addrOf returns the address a shared or raw reference's identity table
// should key on: the storage address for a pointer-shaped value, or 0 for
// a nil reference. v must be a pointer (possibly to an interface, for
// polymorphic reference types) or an interface value wrapping one.
func addrOf(v any) uintptr {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || rv.IsNil() {
		return 0
	}
	return rv.Pointer()
}

func typeNameOf(v any) (string, error) {
	t := reflect.TypeOf(v)
	if name, ok := typeregistry.NameOf(t); ok {
		return name, nil
	}
	return "", &UnregisteredPolymorphicError{TypeName: fmt.Sprintf("%T", v)}
}
