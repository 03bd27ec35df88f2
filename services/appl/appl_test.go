package appl

import (
	"strings"
	"testing"

	"bootcode-go/services/board"
	"bootcode-go/services/bootdata"
	"bootcode-go/services/handoff"
	"bootcode-go/types"
	"bootcode-go/x/timex"
)

func TestTrigger(t *testing.T) {
	type sample struct {
		at      timex.Ticks
		pressed bool
		fired   bool
	}
	cases := []struct {
		name    string
		samples []sample
	}{
		{"press release settle", []sample{
			{0, false, false},
			{10, true, false},
			{50, true, false},
			{60, false, false},
			{159, false, false},
			{160, false, true},
			{170, true, true},
		}},
		{"bounce restarts settling", []sample{
			{0, true, false},
			{5, false, false},
			{50, true, false},
			{55, false, false},
			{150, false, false},
			{155, false, true},
		}},
		{"never pressed", []sample{
			{0, false, false},
			{1000, false, false},
		}},
		{"held forever", []sample{
			{0, true, false},
			{100000, true, false},
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tr := Trigger{Debounce: 100}
			for _, s := range tc.samples {
				if got := tr.Update(s.at, s.pressed); got != s.fired {
					t.Fatalf("at %d pressed=%v: fired=%v", s.at, s.pressed, got)
				}
			}
		})
	}
}

func TestRunRequestsUpdate(t *testing.T) {
	h := board.NewHost(types.STM32F0)
	h.Reboot(types.HandoffReset)
	h.ButtonFn = func() bool { return h.Clk.T >= 1000 && h.Clk.T < 1300 }

	a, err := New(h, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if handoff.Run(a.Run) {
		t.Fatal("Run returned")
	}

	if last := h.Rec.Last(); last.Op != handoff.OpSoftwareReset {
		t.Fatalf("last machine call = %v", last)
	}
	st, _ := bootdata.New(h.Data)
	if !st.IsUpdateRequested() {
		t.Fatal("update request not signalled")
	}
	if h.Events[len(h.Events)-1] != "deinit" {
		t.Fatalf("events = %v", h.Events)
	}
	if h.Clk.T < 1400 {
		t.Fatalf("reset at %d, before release+debounce", h.Clk.T)
	}
	if h.Kicks < 1300 {
		t.Fatalf("kicks = %d", h.Kicks)
	}
	out := h.Out.String()
	if !strings.Contains(out, "executing application") || !strings.Contains(out, "update requested") {
		t.Fatalf("console:\n%s", out)
	}
}
