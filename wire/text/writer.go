// Package text implements the line-oriented human-readable wire codec
// (spec.md §4.5, §6): decimal numerals, t/f booleans, one token per line,
// strings as a length line followed by a payload line.
package text

import (
	"bufio"
	"io"
	"strconv"
)

// Writer is an archive.Sink that renders every primitive as a decimal or
// character token on its own line.
type Writer struct {
	w   *bufio.Writer
	err error
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// Flush writes any buffered bytes to the underlying stream immediately.
func (w *Writer) Flush() {
	if w.err != nil {
		return
	}
	if err := w.w.Flush(); err != nil {
		w.err = err
	}
}

// Close flushes the underlying buffered writer.
func (w *Writer) Close() error {
	if w.err != nil {
		return w.err
	}
	if err := w.w.Flush(); err != nil {
		w.err = err
	}
	return w.err
}

func (w *Writer) Error() error { return w.err }

func (w *Writer) SetError(err error) {
	if w.err == nil {
		w.err = err
	}
}

func (w *Writer) line(s string) {
	if w.err != nil {
		return
	}
	if _, err := w.w.WriteString(s); err != nil {
		w.err = err
		return
	}
	if err := w.w.WriteByte('\n'); err != nil {
		w.err = err
	}
}

func (w *Writer) Bool(v bool) {
	if v {
		w.line("t")
	} else {
		w.line("f")
	}
}

func (w *Writer) Int16(v int16) { w.line(strconv.FormatInt(int64(v), 10)) }
func (w *Writer) Int32(v int32) { w.line(strconv.FormatInt(int64(v), 10)) }
func (w *Writer) Int64(v int64) { w.line(strconv.FormatInt(v, 10)) }

// Uint8 is emitted via its integer value (spec.md §4.5), not as a
// character.
func (w *Writer) Uint8(v uint8) { w.line(strconv.FormatUint(uint64(v), 10)) }

func (w *Writer) Uint64(v uint64) { w.line(strconv.FormatUint(v, 10)) }

func (w *Writer) Float64(v float64) {
	w.line(strconv.FormatFloat(v, 'g', -1, 64))
}

// String writes a length line followed by a line holding the raw bytes
// (spec.md §4.5).
func (w *Writer) String(v string) {
	w.line(strconv.Itoa(len(v)))
	w.line(v)
}

// CString writes its length as a signed integer line (-1 for nil)
// followed by a payload line when non-nil, mirroring the binary
// encoder's sentinel and spec.md §6 scenario 6's text rendering
// (`5\nhello\n-1\n`).
func (w *Writer) CString(v *string) {
	if v == nil {
		w.line("-1")
		return
	}
	w.line(strconv.Itoa(len(*v)))
	w.line(*v)
}

// Bytes renders a byte slice as its length line followed by
// space-separated decimal values, one per line's worth of data but kept
// on a single line for readability (SPEC_FULL.md §7.2).
func (w *Writer) Bytes(v []byte) {
	w.line(strconv.Itoa(len(v)))
	if w.err != nil || len(v) == 0 {
		return
	}
	parts := make([]byte, 0, len(v)*4)
	for i, b := range v {
		if i > 0 {
			parts = append(parts, ' ')
		}
		parts = append(parts, []byte(strconv.Itoa(int(b)))...)
	}
	w.line(string(parts))
}
