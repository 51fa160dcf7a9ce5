package chiplink

import "github.com/robotalks/fmtx/pkg/fmtx"

// TimerAction defines what to do with the inter-byte timer.
type TimerAction int

const (
	// TimerNoChange indicates keep the timer as-is.
	TimerNoChange TimerAction = iota
	// TimerRestart to restart the timer.
	TimerRestart
	// TimerStop to stop/cancel the timer.
	TimerStop
)

// ParseResult is the result of one parsing step.
type ParseResult struct {
	Frame *Frame
	Err   error
	// Receiving is set while a frame is partially received.
	Receiving bool
}

// WhatAboutTimer decides what to do with the inter-byte timer.
func (r ParseResult) WhatAboutTimer() TimerAction {
	if r.Receiving {
		return TimerRestart
	}
	return TimerStop
}

type parseState int

const (
	stateStart parseState = iota
	stateSeq
	stateFlags
	stateOp
	stateLen
	stateData
	stateCRCHi
	stateCRCLo
)

// Parser decodes frames byte by byte. Garbage between frames is skipped.
type Parser struct {
	state parseState
	frame *Frame
	buf   [MaxData + 4]byte
	n     int
	want  int
	crc   uint16
}

// Parse consumes one byte.
func (p *Parser) Parse(b byte) (r ParseResult) {
	switch p.state {
	case stateStart:
		if b == StartByte {
			p.frame, p.n, p.state = &Frame{}, 0, stateSeq
		}
	case stateSeq:
		p.frame.Seq = Seq(b)
		p.push(b, stateFlags)
	case stateFlags:
		p.frame.Flags = b
		p.push(b, stateOp)
	case stateOp:
		p.frame.Op = fmtx.Opcode(b)
		p.push(b, stateLen)
	case stateLen:
		if int(b) > MaxData {
			p.reset()
			r.Err = ErrBadLength
			return
		}
		p.want = int(b)
		next := stateData
		if p.want == 0 {
			next = stateCRCHi
		}
		p.push(b, next)
	case stateData:
		next := stateData
		if p.n+1 >= 4+p.want {
			next = stateCRCHi
		}
		p.push(b, next)
	case stateCRCHi:
		p.crc, p.state = uint16(b)<<8, stateCRCLo
	case stateCRCLo:
		p.crc |= uint16(b)
		frame, expected := p.frame, CRC(p.buf[:p.n])
		if p.want > 0 {
			frame.Data = append([]byte(nil), p.buf[4:p.n]...)
		}
		actual := p.crc
		p.reset()
		if expected != actual {
			r.Err = &CRCError{Expected: expected, Actual: actual}
			return
		}
		r.Frame = frame
		return
	}
	r.Receiving = p.state != stateStart
	return
}

// Timeout notifies the inter-byte timer expired. A partial frame is dropped.
func (p *Parser) Timeout() (dropped bool) {
	dropped = p.state != stateStart
	p.reset()
	return
}

func (p *Parser) push(b byte, next parseState) {
	p.buf[p.n] = b
	p.n++
	p.state = next
}

func (p *Parser) reset() {
	p.state, p.frame, p.n, p.want = stateStart, nil, 0, 0
}
