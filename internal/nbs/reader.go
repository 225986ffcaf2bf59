package nbs

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// reader walks a little-endian byte buffer. The first failure sticks: later
// reads return zero values and err keeps the original cause.
type reader struct {
	buf []byte
	pos int
	op  string
	err error
}

func newReader(buf []byte) *reader {
	return &reader{buf: buf}
}

func (r *reader) section(op string) {
	r.op = op
}

func (r *reader) fail(err error) {
	if r.err == nil {
		r.err = &DecodeError{Op: r.op, Offset: r.pos, Err: err}
	}
}

func (r *reader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || r.pos+n > len(r.buf) {
		r.fail(fmt.Errorf("%w: need %d bytes, %d left", ErrTruncatedInput, n, len(r.buf)-r.pos))
		return nil
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b
}

func (r *reader) u8() int {
	b := r.take(1)
	if b == nil {
		return 0
	}
	return int(b[0])
}

func (r *reader) bool() bool {
	return r.u8() == 1
}

func (r *reader) u16() int {
	b := r.take(2)
	if b == nil {
		return 0
	}
	return int(binary.LittleEndian.Uint16(b))
}

func (r *reader) i16() int {
	b := r.take(2)
	if b == nil {
		return 0
	}
	return int(int16(binary.LittleEndian.Uint16(b)))
}

func (r *reader) i32() int {
	b := r.take(4)
	if b == nil {
		return 0
	}
	return int(int32(binary.LittleEndian.Uint32(b)))
}

// str reads a 4-byte length followed by that many single-byte characters.
func (r *reader) str() string {
	n := r.i32()
	if r.err != nil {
		return ""
	}
	if n < 0 {
		r.fail(fmt.Errorf("%w: negative string length %d", ErrTruncatedInput, n))
		return ""
	}
	raw := r.take(n)
	if raw == nil {
		return ""
	}
	out, _, err := transform.Bytes(charmap.ISO8859_1.NewDecoder(), raw)
	if err != nil {
		r.fail(err)
		return ""
	}
	return string(out)
}
