package decoder

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// BitReader reads fields of arbitrary width from a Bits stream.
type BitReader struct {
	bits Bits
	pos  int
}

func NewBitReader(bits Bits) *BitReader {
	return &BitReader{bits: bits}
}

// Remaining returns the number of unread bits.
func (r *BitReader) Remaining() int { return len(r.bits) - r.pos }

// Pos returns the offset of the next unread bit.
func (r *BitReader) Pos() int { return r.pos }

func (r *BitReader) need(width int) error {
	if width < 0 || width > r.Remaining() {
		return &TruncatedMessageError{Needed: width, Remaining: r.Remaining()}
	}
	return nil
}

// ReadUint reads width bits (at most 64) as an unsigned big-endian integer.
func (r *BitReader) ReadUint(width int) (uint64, error) {
	if width > 64 {
		return 0, errors.Newf("field width %d exceeds 64 bits", width)
	}
	if err := r.need(width); err != nil {
		return 0, err
	}
	var v uint64
	for _, b := range r.bits[r.pos : r.pos+width] {
		v = v<<1 | uint64(b&1)
	}
	r.pos += width
	return v, nil
}

// ReadInt reads width bits as a two's complement signed integer.
func (r *BitReader) ReadInt(width int) (int64, error) {
	u, err := r.ReadUint(width)
	if err != nil || width == 0 {
		return 0, err
	}
	if width < 64 && u&(1<<uint(width-1)) != 0 {
		return int64(u) - int64(1)<<uint(width), nil
	}
	return int64(u), nil
}

func (r *BitReader) ReadBool() (bool, error) {
	u, err := r.ReadUint(1)
	return u == 1, err
}

// Skip advances past width reserved or spare bits.
func (r *BitReader) Skip(width int) error {
	if err := r.need(width); err != nil {
		return err
	}
	r.pos += width
	return nil
}

// ReadSixbitString reads chars six-bit characters. Values 0..31 map to
// '@'..'_' and 32..63 to ' '..'?'. Trailing '@' padding and spaces are
// removed; nothing else is.
func (r *BitReader) ReadSixbitString(chars int) (string, error) {
	if err := r.need(chars * 6); err != nil {
		return "", err
	}
	var sb strings.Builder
	sb.Grow(chars)
	for i := 0; i < chars; i++ {
		v, _ := r.ReadUint(6)
		if v < 32 {
			v += 64
		}
		sb.WriteByte(byte(v))
	}
	return strings.TrimRight(sb.String(), "@ "), nil
}
