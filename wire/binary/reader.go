package binary

import (
	"encoding/binary"
	"io"
	"math"
)

// Reader is an archive.Source over the binary wire format. It has no
// read-side coalescing buffer of its own — the writer's buffer exists to
// batch small writes, but io.Reader already batches reads via whatever
// buffering the caller wraps the stream in (bufio.Reader, a bytes.Reader
// over an in-memory buffer, ...).
type Reader struct {
	r   io.Reader
	tmp [8]byte
	err error
}

func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

func (r *Reader) Error() error { return r.err }

func (r *Reader) SetError(err error) {
	if r.err == nil {
		r.err = err
	}
}

func (r *Reader) fill(n int) []byte {
	if r.err != nil {
		return r.tmp[:n]
	}
	if _, err := io.ReadFull(r.r, r.tmp[:n]); err != nil {
		r.err = err
	}
	return r.tmp[:n]
}

func (r *Reader) Bool() bool { return r.Uint8() != 0 }

func (r *Reader) Int16() int16 { return int16(r.Uint16()) }

func (r *Reader) Uint16() uint16 {
	if r.err != nil {
		return 0
	}
	return binary.LittleEndian.Uint16(r.fill(2))
}

func (r *Reader) Int32() int32 { return int32(r.Uint32()) }

func (r *Reader) Uint32() uint32 {
	if r.err != nil {
		return 0
	}
	return binary.LittleEndian.Uint32(r.fill(4))
}

func (r *Reader) Int64() int64 { return int64(r.Uint64()) }

func (r *Reader) Uint64() uint64 {
	if r.err != nil {
		return 0
	}
	return binary.LittleEndian.Uint64(r.fill(8))
}

func (r *Reader) Uint8() uint8 {
	if r.err != nil {
		return 0
	}
	return r.fill(1)[0]
}

func (r *Reader) Float64() float64 {
	return math.Float64frombits(r.Uint64())
}

// String reads a 32-bit signed byte count followed by the raw bytes.
func (r *Reader) String() string {
	n := r.Int32()
	if r.err != nil || n < 0 {
		return ""
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r.r, buf); err != nil {
		r.err = err
		return ""
	}
	return string(buf)
}

// CString reads a 64-bit signed byte count (-1 meaning nil) followed by
// the raw bytes.
func (r *Reader) CString() *string {
	n := r.Int64()
	if r.err != nil {
		return nil
	}
	if n == -1 {
		return nil
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r.r, buf); err != nil {
		r.err = err
		return nil
	}
	s := string(buf)
	return &s
}

// Bytes reads a 64-bit signed byte count followed by the raw bytes
// (SPEC_FULL.md §7.2).
func (r *Reader) Bytes() []byte {
	n := r.Int64()
	if r.err != nil || n < 0 {
		return nil
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r.r, buf); err != nil {
		r.err = err
		return nil
	}
	return buf
}

// Float64sN is the optional bulk-read path archive.BulkFloat64Reader
// looks for. The element count is not self-describing on this path —
// callers (archive.Float64Slice, which has already read its own length
// prefix) know it and pass it through n.
func (r *Reader) Float64sN(n int) []float64 {
	if r.err != nil || n < 0 {
		return nil
	}
	block := make([]byte, 8*n)
	if _, err := io.ReadFull(r.r, block); err != nil {
		r.err = err
		return nil
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Float64frombits(binary.LittleEndian.Uint64(block[i*8:]))
	}
	return out
}
