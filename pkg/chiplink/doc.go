// Package chiplink implements the framed serial protocol between the host
// and the transmitter chip.
package chiplink

// Every frame is
//
//	0x7e seq flags op len data[len] crc-hi crc-lo
//
// where crc is CRC-16-CCITT (poly 0x1021, init 0xffff) over seq..data.
// The host sends requests, the chip answers each request with a reply
// carrying the same seq. The chip sends interrupt frames on its own.
//
// Only one request is outstanding at a time. A reply whose seq does not
// match the outstanding request is dropped.
