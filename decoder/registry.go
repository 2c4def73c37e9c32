package decoder

import "fmt"

// decodeFunc decodes the bits following the six-bit type code.
type decodeFunc func(id uint8, f *fieldReader) (Message, error)

type registration struct {
	name string
	fn   decodeFunc
}

var registry = make(map[uint8]registration)

// register is called by each message type in its init().
func register(id uint8, name string, fn decodeFunc) {
	if _, exists := registry[id]; exists {
		panic(fmt.Sprintf("decoder for message type %d already registered", id))
	}
	registry[id] = registration{name: name, fn: fn}
}

// MessageName returns the record name for a type code, or "" when the code
// is not recognized.
func MessageName(id uint8) string {
	return registry[id].name
}

// DecodeBits decodes an assembled bitstream with fill bits already removed.
func DecodeBits(bits Bits) (Message, error) {
	r := NewBitReader(bits)
	code, err := r.ReadUint(6)
	if err != nil {
		return nil, err
	}
	id := uint8(code)
	reg, ok := registry[id]
	if !ok {
		return nil, &UnsupportedMessageTypeError{Type: id}
	}
	return reg.fn(id, &fieldReader{r: r})
}

// fieldReader wraps a BitReader and keeps the first error, so a decoder can
// read its whole layout and check once.
type fieldReader struct {
	r   *BitReader
	err error
}

func (f *fieldReader) u64(width int) uint64 {
	if f.err != nil {
		return 0
	}
	v, err := f.r.ReadUint(width)
	f.err = err
	return v
}

func (f *fieldReader) u8(width int) uint8   { return uint8(f.u64(width)) }
func (f *fieldReader) u16(width int) uint16 { return uint16(f.u64(width)) }
func (f *fieldReader) u32(width int) uint32 { return uint32(f.u64(width)) }

func (f *fieldReader) i64(width int) int64 {
	if f.err != nil {
		return 0
	}
	v, err := f.r.ReadInt(width)
	f.err = err
	return v
}

func (f *fieldReader) flag() bool {
	return f.u64(1) == 1
}

func (f *fieldReader) str(chars int) string {
	if f.err != nil {
		return ""
	}
	s, err := f.r.ReadSixbitString(chars)
	f.err = err
	return s
}

func (f *fieldReader) skip(width int) {
	if f.err == nil {
		f.err = f.r.Skip(width)
	}
}

// position reads a lon/lat pair in 1/div minute.
func (f *fieldReader) position(lonWidth, latWidth int, div float64) (lon, lat float64) {
	lon = float64(f.i64(lonWidth)) / div
	lat = float64(f.i64(latWidth)) / div
	return lon, lat
}

const (
	latLonDiv      = 600000.0 // 1/10000 minute
	longRangeLLDiv = 600.0    // 1/10 minute
)
