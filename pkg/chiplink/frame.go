package chiplink

import (
	"io"
	"time"

	"github.com/robotalks/fmtx/pkg/fmtx"
)

// Frame constants.
const (
	StartByte byte = 0x7e
	MaxData        = fmtx.MaxEventPayload

	crcPolynomial uint16 = 0x1021
	crcInitial    uint16 = 0xffff
)

// Flags of a frame.
const (
	FlagRead      byte = 0x01
	FlagError     byte = 0x02
	FlagInterrupt byte = 0x40
	FlagReply     byte = 0x80
)

// Seq is the sequence number matching replies to requests.
type Seq byte

// NewSeq creates a random sequence number.
func NewSeq() Seq {
	return Seq(byte(time.Now().UnixNano())).Next()
}

// Next calculates the next sequence number.
func (s Seq) Next() Seq {
	n := byte(s) + 1
	if n == 0 || n >= 0xf0 {
		n = 1
	}
	return Seq(n)
}

// IsValid checks if it's a valid sequence number.
func (s Seq) IsValid() bool {
	n := byte(s)
	return n > 0 && n < 0xf0
}

// Frame is one protocol frame.
type Frame struct {
	Seq   Seq
	Flags byte
	Op    fmtx.Opcode
	Data  []byte
}

// IsReply indicates a reply to a request.
func (f *Frame) IsReply() bool {
	return f.Flags&FlagReply != 0
}

// IsInterrupt indicates an interrupt notification.
func (f *Frame) IsInterrupt() bool {
	return f.Flags&FlagInterrupt != 0
}

// Failed indicates a reply reporting an error.
func (f *Frame) Failed() bool {
	return f.Flags&FlagError != 0
}

// Bytes encodes the frame.
func (f *Frame) Bytes() ([]byte, error) {
	if len(f.Data) > MaxData {
		return nil, ErrFrameTooLong
	}
	b := make([]byte, 0, len(f.Data)+7)
	b = append(b, StartByte, byte(f.Seq), f.Flags, byte(f.Op), byte(len(f.Data)))
	b = append(b, f.Data...)
	crc := CRC(b[1:])
	return append(b, byte(crc>>8), byte(crc)), nil
}

// WriteTo writes the encoded frame.
func (f *Frame) WriteTo(w io.Writer) (int64, error) {
	b, err := f.Bytes()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(b)
	return int64(n), err
}

// CRC computes CRC-16-CCITT.
func CRC(data []byte) uint16 {
	crc := crcInitial
	for _, b := range data {
		crc ^= uint16(b) << 8
		for i := 0; i < 8; i++ {
			if crc&0x8000 != 0 {
				crc = crc<<1 ^ crcPolynomial
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}
