//go:build !tinygo

package fmtx

import (
	"fmt"
	"io"
)

func Sprintf(format string, a ...any) string                    { return fmt.Sprintf(format, a...) }
func Fprintf(w io.Writer, format string, a ...any) (int, error) { return fmt.Fprintf(w, format, a...) }
func Appendf(b []byte, format string, a ...any) []byte          { return fmt.Appendf(b, format, a...) }
