package region

// Mem is a Region backed by a byte slice: simulated SRAM or a flash image
// loaded on the host.
type Mem struct {
	base uint32
	buf  []byte
}

var _ Region = (*Mem)(nil)

// NewMem allocates size bytes at base, filled with zero.
func NewMem(base, size uint32) *Mem {
	return &Mem{base: base, buf: make([]byte, size)}
}

// NewMemFrom wraps b (not copied) at base.
func NewMemFrom(base uint32, b []byte) *Mem {
	return &Mem{base: base, buf: b}
}

func (m *Mem) Base() uint32  { return m.base }
func (m *Mem) Size() uint32  { return uint32(len(m.buf)) }
func (m *Mem) Bytes() []byte { return m.buf }

func (m *Mem) ReadAt(p []byte, off int64) (int, error) {
	if err := Check(m.Size(), off, len(p)); err != nil {
		return 0, err
	}
	return copy(p, m.buf[off:]), nil
}

func (m *Mem) WriteAt(p []byte, off int64) (int, error) {
	if err := Check(m.Size(), off, len(p)); err != nil {
		return 0, err
	}
	return copy(m.buf[off:], p), nil
}
