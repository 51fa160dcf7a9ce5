package comm

import (
	"io"
	"sync"
)

// MemoryReadWriter is one end of an in-process packet connection.
type MemoryReadWriter struct {
	in   <-chan []byte
	out  chan<- []byte
	done chan struct{}
	once *sync.Once
}

// NewMemoryPair creates two connected in-process PacketReadWriters.
func NewMemoryPair() (*MemoryReadWriter, *MemoryReadWriter) {
	a, b := make(chan []byte, 16), make(chan []byte, 16)
	done, once := make(chan struct{}), &sync.Once{}
	return &MemoryReadWriter{in: a, out: b, done: done, once: once},
		&MemoryReadWriter{in: b, out: a, done: done, once: once}
}

// ReadPacket implements PacketReadWriter.
func (m *MemoryReadWriter) ReadPacket() ([]byte, error) {
	select {
	case pkt := <-m.in:
		return pkt, nil
	case <-m.done:
		return nil, io.EOF
	}
}

// WritePacket implements PacketReadWriter.
func (m *MemoryReadWriter) WritePacket(pkt []byte) error {
	select {
	case <-m.done:
		return io.ErrClosedPipe
	default:
	}
	select {
	case m.out <- append([]byte(nil), pkt...):
		return nil
	case <-m.done:
		return io.ErrClosedPipe
	}
}

// Close implements io.Closer, both ends are closed.
func (m *MemoryReadWriter) Close() error {
	m.once.Do(func() { close(m.done) })
	return nil
}
