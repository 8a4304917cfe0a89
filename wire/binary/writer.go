// Package binary implements the fixed-width native little-endian wire
// codec (spec.md §4.4, §6): the binary encoder's Sink/Source pair.
package binary

import (
	"encoding/binary"
	"io"
	"math"
)

const bufSize = 1024

// Writer is a buffered archive.Sink: primitive writes copy bytes into a
// fixed-size coalescing buffer, flushed to the underlying stream only
// when a write would overflow it, or before a length-prefixed payload
// (string/bytes) whose own bytes are written directly to the stream
// (spec.md §4.4: "force a buffer flush before their payload bytes so
// that the stream order is unambiguous").
type Writer struct {
	w   io.Writer
	buf [bufSize]byte
	n   int
	err error
}

// NewWriter wraps w as a buffered binary Writer. The caller must call
// Close (or Flush) when done; Close flushes the coalescing buffer on
// every exit path, matching spec.md §4.4's "destruction of a writer must
// flush the buffer."
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Close flushes any buffered bytes to the underlying stream.
func (w *Writer) Close() error {
	w.Flush()
	return w.err
}

// Flush writes any buffered bytes to the underlying stream immediately.
func (w *Writer) Flush() {
	if w.err != nil || w.n == 0 {
		return
	}
	if _, err := w.w.Write(w.buf[:w.n]); err != nil {
		w.err = err
	}
	w.n = 0
}

func (w *Writer) put(b []byte) {
	if w.err != nil {
		return
	}
	if w.n+len(b) > bufSize {
		w.Flush()
		if w.err != nil {
			return
		}
	}
	if len(b) > bufSize {
		// Larger than the coalescing buffer itself: write straight
		// through, bypassing the buffer entirely.
		if _, err := w.w.Write(b); err != nil {
			w.err = err
		}
		return
	}
	copy(w.buf[w.n:], b)
	w.n += len(b)
}

func (w *Writer) Error() error { return w.err }

func (w *Writer) SetError(err error) {
	if w.err == nil {
		w.err = err
	}
}

func (w *Writer) Bool(v bool) {
	if v {
		w.Uint8(1)
	} else {
		w.Uint8(0)
	}
}

func (w *Writer) Int16(v int16) { w.Uint16(uint16(v)) }

func (w *Writer) Uint16(v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	w.put(b[:])
}

func (w *Writer) Int32(v int32) { w.Uint32(uint32(v)) }

func (w *Writer) Uint32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.put(b[:])
}

func (w *Writer) Int64(v int64) { w.Uint64(uint64(v)) }

func (w *Writer) Uint64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	w.put(b[:])
}

func (w *Writer) Uint8(v uint8) {
	w.put([]byte{v})
}

func (w *Writer) Float64(v float64) {
	w.Uint64(math.Float64bits(v))
}

// String writes a 32-bit signed byte count followed by the raw UTF-8
// bytes (spec.md §6), flushing the coalescing buffer first.
func (w *Writer) String(v string) {
	w.Int32(int32(len(v)))
	w.Flush()
	if w.err != nil {
		return
	}
	if _, err := w.w.Write([]byte(v)); err != nil {
		w.err = err
	}
}

// CString writes a 64-bit signed byte count (-1 for nil) followed by the
// raw bytes with no trailing NUL (spec.md §6).
func (w *Writer) CString(v *string) {
	if v == nil {
		w.Int64(-1)
		return
	}
	w.Int64(int64(len(*v)))
	w.Flush()
	if w.err != nil {
		return
	}
	if _, err := w.w.Write([]byte(*v)); err != nil {
		w.err = err
	}
}

// Bytes writes a 64-bit signed byte count followed by the raw bytes,
// sharing CString's length-prefix shape (SPEC_FULL.md §7.2).
func (w *Writer) Bytes(v []byte) {
	w.Int64(int64(len(v)))
	w.Flush()
	if w.err != nil {
		return
	}
	if _, err := w.w.Write(v); err != nil {
		w.err = err
	}
}

// Float64s is the optional bulk-write path archive.BulkFloat64Writer
// looks for: emits the same bytes as len(v) successive Float64 calls
// (spec.md §4.1's xfer_bulk correctness requirement) but as one
// contiguous block rather than one buffered write per element.
func (w *Writer) Float64s(v []float64) {
	block := make([]byte, 8*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint64(block[i*8:], math.Float64bits(f))
	}
	w.put(block)
}
