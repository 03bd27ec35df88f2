// Package diag is the line logger used by both images. Output goes to the
// diagnostic UART on hardware and to any io.Writer on the host. A Logger
// with a nil writer drops everything, which is the state before the
// bootloader's full init has brought the UART up.
package diag

import (
	"io"

	"bootcode-go/x/fmtx"
)

type Level uint8

const (
	LevelInfo Level = iota
	LevelWarn
	LevelError
)

var levelTags = [...]string{"Info: ", "Warn: ", "Error: "}

type Logger struct {
	out io.Writer
	tag string
	min Level
}

// New returns a logger that prefixes every line with "[tag] ".
func New(out io.Writer, tag string) *Logger { return &Logger{out: out, tag: tag} }

// Discard is a logger that writes nothing.
func Discard() *Logger { return &Logger{} }

// SetOutput swaps the writer, e.g. once the UART is configured.
func (l *Logger) SetOutput(w io.Writer) { l.out = w }

// SetLevel drops lines below min.
func (l *Logger) SetLevel(min Level) { l.min = min }

func (l *Logger) Infof(format string, a ...any)  { l.logf(LevelInfo, format, a...) }
func (l *Logger) Warnf(format string, a ...any)  { l.logf(LevelWarn, format, a...) }
func (l *Logger) Errorf(format string, a ...any) { l.logf(LevelError, format, a...) }

func (l *Logger) logf(lv Level, format string, a ...any) {
	if l == nil || l.out == nil || lv < l.min {
		return
	}
	var stack [128]byte
	b := stack[:0]
	if l.tag != "" {
		b = append(b, '[')
		b = append(b, l.tag...)
		b = append(b, "] "...)
	}
	b = append(b, levelTags[lv]...)
	b = fmtx.Appendf(b, format, a...)
	b = append(b, '\r', '\n')
	_, _ = l.out.Write(b)
}
