package mqtt

import (
	"context"
	"io"

	"github.com/robotalks/fmtx/pkg/l1"
)

// ReadWriter implements comm.PacketReadWriter.
type ReadWriter struct {
	Queue     *Queue
	SubTopics []string
	PubTopic  string

	packetCh chan []byte
	done     chan struct{}
}

// NewPacketReadWriter creates the ReadWriter.
func NewPacketReadWriter(q *Queue) *ReadWriter {
	return &ReadWriter{
		Queue:    q,
		packetCh: make(chan []byte, 1),
		done:     make(chan struct{}),
	}
}

// WithTopics specifies the topics.
func (p *ReadWriter) WithTopics(pub string, subs ...string) *ReadWriter {
	p.PubTopic, p.SubTopics = pub, subs
	return p
}

// ForConnector reads replies, events and the retained status of the device
// and writes commands.
func (p *ReadWriter) ForConnector(ref l1.DeviceRef) *ReadWriter {
	return p.WithTopics(DeviceTopic(ref, LeafCmd), DeviceTopic(ref, LeafMsg), DeviceTopic(ref, LeafStatus))
}

// ForDevice reads commands and writes replies and events.
func (p *ReadWriter) ForDevice(ref l1.DeviceRef) *ReadWriter {
	return p.WithTopics(DeviceTopic(ref, LeafMsg), DeviceTopic(ref, LeafCmd))
}

// ReadPacket implements comm.PacketReadWriter.
func (p *ReadWriter) ReadPacket() ([]byte, error) {
	select {
	case pkt := <-p.packetCh:
		return pkt, nil
	case <-p.done:
		return nil, io.EOF
	}
}

// WritePacket implements comm.PacketReadWriter.
func (p *ReadWriter) WritePacket(pkt []byte) error {
	token := p.Queue.Pub(p.PubTopic, pkt)
	token.Wait()
	return token.Error()
}

// Run implements Runnable.
func (p *ReadWriter) Run(ctx context.Context) error {
	subs := make([]*Subscription, 0, len(p.SubTopics))
	for _, topic := range p.SubTopics {
		subs = append(subs, p.Queue.Sub(topic, Handler(p.handleMsg)))
	}
	<-ctx.Done()
	close(p.done)
	for _, sub := range subs {
		sub.Close()
	}
	return ctx.Err()
}

func (p *ReadWriter) handleMsg(_ string, payload []byte) {
	// An empty retained status is a clear, not a packet.
	if len(payload) == 0 {
		return
	}
	select {
	case p.packetCh <- payload:
	case <-p.done:
	}
}
