package text

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

// Reader is an archive.Source over the text wire format: whitespace
// separated tokens, with strings read by exact byte count rather than by
// line so that an embedded newline in string content can never desync
// the token stream (spec.md §4.5: "Reading parses whitespace-separated
// tokens and, for strings of length L, consumes one separator then
// exactly L bytes").
type Reader struct {
	r   *bufio.Reader
	err error
}

func NewReader(r io.Reader) *Reader {
	return &Reader{r: bufio.NewReader(r)}
}

func (r *Reader) Error() error { return r.err }

func (r *Reader) SetError(err error) {
	if r.err == nil {
		r.err = err
	}
}

func (r *Reader) fail(detail string) {
	if r.err == nil {
		r.err = &FormatError{Detail: detail}
	}
}

// FormatError is returned when a token read from the stream cannot be
// parsed as the primitive kind being transferred. archive.errOf
// recognizes this type and reports it to callers as a
// FormatMismatchError (spec.md §7).
type FormatError struct{ Detail string }

func (e *FormatError) Error() string { return "text: format mismatch: " + e.Detail }

// FormatMismatch is a marker method letting archive.errOf recognize this
// error type across the package boundary without an import cycle.
func (e *FormatError) FormatMismatch() {}

// token reads and returns the next whitespace-delimited token (a
// contiguous run of non-whitespace bytes), skipping any leading
// whitespace first.
func (r *Reader) token() string {
	if r.err != nil {
		return ""
	}
	var sb strings.Builder
	skipping := true
	for {
		b, err := r.r.ReadByte()
		if err != nil {
			if err == io.EOF && sb.Len() > 0 {
				return sb.String()
			}
			r.err = err
			return ""
		}
		if b == ' ' || b == '\n' || b == '\r' || b == '\t' {
			if skipping {
				continue
			}
			return sb.String()
		}
		skipping = false
		sb.WriteByte(b)
	}
}

func (r *Reader) Bool() bool {
	switch r.token() {
	case "t":
		return true
	case "f":
		return false
	default:
		r.fail("expected t/f boolean token")
		return false
	}
}

func (r *Reader) Int16() int16 { return int16(r.int64(16)) }
func (r *Reader) Int32() int32 { return int32(r.int64(32)) }
func (r *Reader) Int64() int64 { return r.int64(64) }

func (r *Reader) int64(bits int) int64 {
	tok := r.token()
	if r.err != nil {
		return 0
	}
	n, err := strconv.ParseInt(tok, 10, bits)
	if err != nil {
		r.fail("expected integer token, got " + strconv.Quote(tok))
		return 0
	}
	return n
}

func (r *Reader) Uint8() uint8 {
	tok := r.token()
	if r.err != nil {
		return 0
	}
	n, err := strconv.ParseUint(tok, 10, 8)
	if err != nil {
		r.fail("expected byte token, got " + strconv.Quote(tok))
		return 0
	}
	return uint8(n)
}

func (r *Reader) Uint64() uint64 {
	tok := r.token()
	if r.err != nil {
		return 0
	}
	n, err := strconv.ParseUint(tok, 10, 64)
	if err != nil {
		r.fail("expected unsigned integer token, got " + strconv.Quote(tok))
		return 0
	}
	return n
}

func (r *Reader) Float64() float64 {
	tok := r.token()
	if r.err != nil {
		return 0
	}
	f, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		r.fail("expected float token, got " + strconv.Quote(tok))
		return 0
	}
	return f
}

// exactBytes reads exactly n payload bytes. The single separator between
// the preceding length token and this payload (spec.md §4.5) was already
// consumed by token() when it read the length — token() stops scanning
// at, and swallows, the first whitespace byte it meets.
func (r *Reader) exactBytes(n int) []byte {
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

func (r *Reader) String() string {
	n := int(r.int64(32))
	if r.err != nil {
		return ""
	}
	return string(r.exactBytes(n))
}

func (r *Reader) CString() *string {
	n := r.int64(64)
	if r.err != nil {
		return nil
	}
	if n == -1 {
		return nil
	}
	s := string(r.exactBytes(int(n)))
	return &s
}

// Bytes reads a length line followed by that many space-separated
// decimal tokens, mirroring Writer.Bytes (SPEC_FULL.md §7.2).
func (r *Reader) Bytes() []byte {
	n := int(r.int64(32))
	if r.err != nil || n == 0 {
		return nil
	}
	out := make([]byte, n)
	for i := range out {
		out[i] = r.Uint8()
	}
	return out
}
