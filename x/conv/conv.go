// Package conv formats integers into caller-owned buffers.
// No allocations; no fmt/strconv dependency.
package conv

const digits = "0123456789abcdef"

// AppendUint appends n in base (2..16), left-padded with pad to width.
func AppendUint(dst []byte, n uint64, base int, width int, pad byte, upper bool) []byte {
	if base < 2 || base > 16 {
		base = 10
	}
	var tmp [64]byte
	i := len(tmp)
	for {
		i--
		c := digits[n%uint64(base)]
		if upper && c >= 'a' {
			c -= 'a' - 'A'
		}
		tmp[i] = c
		n /= uint64(base)
		if n == 0 {
			break
		}
	}
	for k := len(tmp) - i; k < width; k++ {
		dst = append(dst, pad)
	}
	return append(dst, tmp[i:]...)
}

// AppendInt appends signed n in base 10. Zero padding goes after the sign.
func AppendInt(dst []byte, n int64, width int, pad byte) []byte {
	if n >= 0 {
		return AppendUint(dst, uint64(n), 10, width, pad, false)
	}
	u := uint64(-n)
	if pad == '0' {
		dst = append(dst, '-')
		return AppendUint(dst, u, 10, width-1, pad, false)
	}
	var tmp [21]byte
	s := append(append(tmp[:0], '-'), AppendUint(nil, u, 10, 0, 0, false)...)
	for k := len(s); k < width; k++ {
		dst = append(dst, pad)
	}
	return append(dst, s...)
}

// U32Hex writes 8-digit uppercase hex without 0x, zero-padded.
func U32Hex(buf []byte, n uint32) []byte {
	return AppendUint(buf[:0], uint64(n), 16, 8, '0', true)
}
