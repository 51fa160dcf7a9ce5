package chiplink

import (
	"fmt"
	"time"

	"go.bug.st/serial"
)

// Config configures the serial chip link.
type Config struct {
	Port        string        `yaml:"port"`
	Baud        int           `yaml:"baud"`
	ByteTimeout time.Duration `yaml:"byteTimeout"`
}

// DefaultConfig returns the default serial settings.
func DefaultConfig() Config {
	return Config{
		Port:        "/dev/ttyUSB0",
		Baud:        115200,
		ByteTimeout: 50 * time.Millisecond,
	}
}

// OpenSerial opens the serial port with 8N1 framing.
func OpenSerial(port string, baud int) (serial.Port, error) {
	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	p, err := serial.Open(port, mode)
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %v", port, err)
	}
	return p, nil
}

// Open opens the configured port and creates a Link on it.
// The returned port must be closed by the caller.
func (c Config) Open() (*Link, serial.Port, error) {
	port, err := OpenSerial(c.Port, c.Baud)
	if err != nil {
		return nil, nil, err
	}
	link := NewLink(port)
	if c.ByteTimeout > 0 {
		link.ByteTimeout = c.ByteTimeout
	}
	return link, port, nil
}
