package decoder

import "fmt"

// Bits holds a bitstream one bit per byte, most significant bit first.
type Bits []byte

// Unarmor converts a six-bit ASCII armored payload into its bitstream.
// Valid armor characters are '0'..'W' and '`'..'w'.
func Unarmor(payload string) (Bits, error) {
	bits := make(Bits, 0, len(payload)*6)
	for i := 0; i < len(payload); i++ {
		v, ok := armorValue(payload[i])
		if !ok {
			return nil, malformed(payload, fmt.Sprintf("invalid armor character %q at offset %d", payload[i], i))
		}
		for shift := 5; shift >= 0; shift-- {
			bits = append(bits, (v>>uint(shift))&1)
		}
	}
	return bits, nil
}

func armorValue(c byte) (byte, bool) {
	// 'X'..'_' are not armor even though the arithmetic below maps them to 40..47.
	if c < '0' || c > 'w' || (c > 'W' && c < '`') {
		return 0, false
	}
	v := c - 48
	if v > 40 {
		v -= 8
	}
	return v, true
}

// trimFill drops n trailing fill bits.
func (b Bits) trimFill(n int) (Bits, error) {
	if n > len(b) {
		return nil, malformed("", fmt.Sprintf("%d fill bits exceed %d payload bits", n, len(b)))
	}
	return b[:len(b)-n], nil
}
