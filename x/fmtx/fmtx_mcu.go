//go:build tinygo

package fmtx

import (
	"io"

	"bootcode-go/x/conv"
)

// Small formatter for firmware builds. Supports %s %q %d %x %X %t %v %%
// with an optional '0' flag and width. Anything else is echoed literally.

func Sprintf(format string, a ...any) string { return string(Appendf(nil, format, a...)) }

func Fprintf(w io.Writer, format string, a ...any) (int, error) {
	var stack [96]byte
	return w.Write(Appendf(stack[:0], format, a...))
}

func Appendf(b []byte, format string, a ...any) []byte {
	ai := 0
	for i := 0; i < len(format); i++ {
		c := format[i]
		if c != '%' {
			b = append(b, c)
			continue
		}
		i++
		if i >= len(format) {
			return append(b, '%')
		}
		if format[i] == '%' {
			b = append(b, '%')
			continue
		}
		pad := byte(' ')
		if format[i] == '0' {
			pad = '0'
			i++
		}
		width := 0
		for i < len(format) && '0' <= format[i] && format[i] <= '9' {
			width = width*10 + int(format[i]-'0')
			i++
		}
		if i >= len(format) {
			return b
		}
		verb := format[i]
		if ai >= len(a) {
			b = append(b, "%!"...)
			b = append(b, verb)
			continue
		}
		b = appendArg(b, a[ai], verb, width, pad)
		ai++
	}
	return b
}

func appendArg(b []byte, arg any, verb byte, width int, pad byte) []byte {
	switch verb {
	case 'd':
		if u, ok := asUint(arg); ok {
			return conv.AppendUint(b, u, 10, width, pad, false)
		}
		if n, ok := asInt(arg); ok {
			return conv.AppendInt(b, n, width, pad)
		}
	case 'x', 'X':
		if u, ok := asUint(arg); ok {
			return conv.AppendUint(b, u, 16, width, pad, verb == 'X')
		}
		if n, ok := asInt(arg); ok {
			return conv.AppendUint(b, uint64(n), 16, width, pad, verb == 'X')
		}
	case 's', 'v', 'q', 't':
		var s string
		switch v := arg.(type) {
		case string:
			s = v
		case []byte:
			s = string(v)
		case bool:
			s = "false"
			if v {
				s = "true"
			}
		case error:
			s = v.Error()
		case interface{ String() string }:
			s = v.String()
		default:
			if u, ok := asUint(arg); ok {
				return conv.AppendUint(b, u, 10, width, pad, false)
			}
			if n, ok := asInt(arg); ok {
				return conv.AppendInt(b, n, width, pad)
			}
			s = "<?>"
		}
		for k := len(s); k < width; k++ {
			b = append(b, ' ')
		}
		if verb == 'q' {
			b = append(b, '"')
			b = append(b, s...)
			return append(b, '"')
		}
		return append(b, s...)
	}
	b = append(b, '%')
	return append(b, verb)
}

func asUint(v any) (uint64, bool) {
	switch t := v.(type) {
	case uint:
		return uint64(t), true
	case uint8:
		return uint64(t), true
	case uint16:
		return uint64(t), true
	case uint32:
		return uint64(t), true
	case uint64:
		return t, true
	case uintptr:
		return uint64(t), true
	}
	return 0, false
}

func asInt(v any) (int64, bool) {
	switch t := v.(type) {
	case int:
		return int64(t), true
	case int8:
		return int64(t), true
	case int16:
		return int64(t), true
	case int32:
		return int64(t), true
	case int64:
		return t, true
	}
	return 0, false
}
