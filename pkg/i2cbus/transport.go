// Package i2cbus connects the transmitter chip over I2C with an optional
// interrupt line on a GPIO pin.
//
// A write is a single I2C write of the opcode followed by the payload. A read
// writes the opcode and reads the requested number of bytes in one
// transaction.
package i2cbus

import (
	"context"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/golang/glog"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"

	"github.com/robotalks/fmtx/pkg/fmtx"
)

// Config configures the I2C chip connection.
type Config struct {
	// Bus is the I2C bus name, empty selects the first bus.
	Bus  string `yaml:"bus"`
	Addr uint16 `yaml:"addr"`
	// IRQ is the GPIO pin of the active-low interrupt line.
	IRQ string `yaml:"irq"`
}

// DefaultConfig returns the default I2C settings.
func DefaultConfig() Config {
	return Config{Addr: 0x63}
}

type request struct {
	op  fmtx.Opcode
	seq uint64
	w   []byte
	r   []byte
}

// Transport implements fmtx.Transport on an I2C device. Operations are
// executed and completed by Run. Only the completion of the latest
// submitted operation is delivered.
type Transport struct {
	Dev      *i2c.Dev
	IRQ      gpio.PinIn
	Notifier fmtx.Notifier
	// EdgeTimeout bounds one wait for the interrupt line so Run can stop.
	EdgeTimeout time.Duration

	reqCh chan request
	seq   atomic.Uint64
}

// New creates a Transport.
func New(dev *i2c.Dev, irq gpio.PinIn) *Transport {
	return &Transport{
		Dev:         dev,
		IRQ:         irq,
		EdgeTimeout: 100 * time.Millisecond,
		reqCh:       make(chan request, 4),
	}
}

// Open initializes the host drivers, opens the bus and the interrupt pin.
// The returned closer releases the bus.
func (c Config) Open() (*Transport, io.Closer, error) {
	if _, err := host.Init(); err != nil {
		return nil, nil, fmt.Errorf("periph host init: %v", err)
	}
	bus, err := i2creg.Open(c.Bus)
	if err != nil {
		return nil, nil, fmt.Errorf("open i2c bus %q: %v", c.Bus, err)
	}
	var irq gpio.PinIn
	if c.IRQ != "" {
		pin := gpioreg.ByName(c.IRQ)
		if pin == nil {
			bus.Close()
			return nil, nil, fmt.Errorf("unknown irq pin %q", c.IRQ)
		}
		if err := pin.In(gpio.PullUp, gpio.FallingEdge); err != nil {
			bus.Close()
			return nil, nil, fmt.Errorf("setup irq pin %s: %v", pin, err)
		}
		irq = pin
	}
	return New(&i2c.Dev{Bus: bus, Addr: c.Addr}, irq), bus, nil
}

// SendWrite implements fmtx.Transport.
func (t *Transport) SendWrite(op fmtx.Opcode, data []byte) fmtx.TransportStatus {
	w := make([]byte, 0, len(data)+1)
	w = append(append(w, byte(op)), data...)
	return t.submit(request{op: op, w: w})
}

// SendRead implements fmtx.Transport.
func (t *Transport) SendRead(op fmtx.Opcode, length int) ([]byte, fmtx.TransportStatus) {
	if length <= 0 || length > fmtx.MaxEventPayload {
		return nil, fmtx.TransportError
	}
	return nil, t.submit(request{op: op, w: []byte{byte(op)}, r: make([]byte, length)})
}

func (t *Transport) submit(req request) fmtx.TransportStatus {
	req.seq = t.seq.Add(1)
	select {
	case t.reqCh <- req:
		return fmtx.TransportPending
	default:
		glog.Errorf("i2cbus: %s rejected, too many operations in flight", req.op)
		return fmtx.TransportError
	}
}

// Run executes operations and watches the interrupt line until ctx is done.
func (t *Transport) Run(ctx context.Context) error {
	if t.IRQ != nil {
		go t.watchIRQ(ctx)
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case req := <-t.reqCh:
			t.exec(req)
		}
	}
}

func (t *Transport) exec(req request) {
	err := t.Dev.Tx(req.w, req.r)
	if err != nil {
		glog.Errorf("i2cbus: %s: %v", req.op, err)
	}
	if req.seq != t.seq.Load() {
		glog.V(2).Infof("i2cbus: superseded completion of %s dropped", req.op)
		return
	}
	if n := t.Notifier; n != nil {
		n.HandleTransportEvent(fmtx.NewChipEvent(req.op, err != nil, req.r))
	}
}

func (t *Transport) watchIRQ(ctx context.Context) {
	for ctx.Err() == nil {
		if !t.IRQ.WaitForEdge(t.EdgeTimeout) {
			continue
		}
		glog.V(4).Infof("i2cbus: interrupt")
		if n := t.Notifier; n != nil {
			n.HandleInterrupt()
		}
	}
}
