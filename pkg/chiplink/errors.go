package chiplink

import (
	"errors"
	"fmt"
)

var (
	// ErrFrameTooLong indicates the payload exceeds MaxData.
	ErrFrameTooLong = errors.New("frame too long")
	// ErrBadLength indicates a length byte exceeding MaxData.
	ErrBadLength = errors.New("bad frame length")
)

// CRCError indicates a frame failed CRC verification.
type CRCError struct {
	Expected uint16
	Actual   uint16
}

// Error implements error.
func (e *CRCError) Error() string {
	return fmt.Sprintf("crc mismatch: expected 0x%04x, got 0x%04x", e.Expected, e.Actual)
}
