package handoff

import (
	"runtime"
	"sync"
)

// Op names a Machine call.
type Op string

const (
	OpSoftwareReset Op = "reset"
	OpRemap         Op = "remap"
	OpBarrier       Op = "barrier"
	OpQuiesce       Op = "quiesce"
	OpJump          Op = "jump"
)

type Call struct {
	Op   Op
	Addr uint32
}

// Recorder is the host Machine. It records every call; SoftwareReset and
// Jump end the calling goroutine, leaving deferred functions to report
// back, so drive it with Run.
type Recorder struct {
	mu    sync.Mutex
	calls []Call
}

func (r *Recorder) record(op Op, addr uint32) {
	r.mu.Lock()
	r.calls = append(r.calls, Call{Op: op, Addr: addr})
	r.mu.Unlock()
}

func (r *Recorder) SoftwareReset()           { r.record(OpSoftwareReset, 0); runtime.Goexit() }
func (r *Recorder) RemapVectors(addr uint32) { r.record(OpRemap, addr) }
func (r *Recorder) Barrier()                 { r.record(OpBarrier, 0) }
func (r *Recorder) Quiesce()                 { r.record(OpQuiesce, 0) }
func (r *Recorder) Jump(addr uint32)         { r.record(OpJump, addr); runtime.Goexit() }

// Calls returns a copy of the recorded calls.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// Last returns the final call, or the zero Call.
func (r *Recorder) Last() Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.calls) == 0 {
		return Call{}
	}
	return r.calls[len(r.calls)-1]
}

// Run calls f on a fresh goroutine and waits for it to either return or be
// ended by a transfer. It reports whether f returned normally, which for
// code that must hand off is a bug.
func Run(f func()) (returned bool) {
	done := make(chan bool, 1)
	go func() {
		ok := false
		defer func() { done <- ok }()
		f()
		ok = true
	}()
	return <-done
}
