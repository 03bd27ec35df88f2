package errcode

import (
	"errors"
	"testing"
)

func TestCodesAreStableStrings(t *testing.T) {
	cases := map[string]Code{
		"ok":             OK,
		"invalid_params": InvalidParams,
		"invalid_layout": InvalidLayout,
		"out_of_bounds":  OutOfBounds,
		"read_only":      ReadOnly,
		"io":             IO,
		"bad_magic":      BadMagic,
		"crc_mismatch":   CRCMismatch,
		"short_image":    ShortImage,
		"error":          Error,
	}
	for want, c := range cases {
		if c.Error() != want {
			t.Fatalf("code %q mismatch: got %q", want, c.Error())
		}
	}
}

func TestOfAndWrap(t *testing.T) {
	if Of(nil) != OK {
		t.Fatal("Of(nil) should be OK")
	}
	if Of(errors.New("x")) != Error {
		t.Fatal("plain error should map to Error")
	}
	w := Wrap("read", OutOfBounds)
	if Of(w) != OutOfBounds {
		t.Fatalf("Of(wrapped) = %q", Of(w))
	}
	if !errors.Is(w, OutOfBounds) {
		t.Fatal("errors.Is should see through E")
	}
	if w.Error() != "read: out_of_bounds" {
		t.Fatalf("unexpected message %q", w.Error())
	}
	if Wrap("x", nil) != nil {
		t.Fatal("Wrap(nil) should be nil")
	}
	e := &E{C: IO, Msg: "nack", Err: errors.New("bus")}
	if e.Error() != "io: nack" || errors.Unwrap(e) == nil {
		t.Fatalf("unexpected E: %q", e.Error())
	}
}
