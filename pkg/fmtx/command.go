package fmtx

// command is an accepted request, owned by the queue while pending and by
// the dispatcher while executing. It returns to the pool on completion.
type command struct {
	kind  CommandKind
	ctx   interface{}
	value uint32
	text  []byte
	ta    bool
	tp    bool
	audio AudioRequest

	next      *command
	dedicated bool
	busy      bool
}

func (c *command) load(req *Request) {
	c.ctx = req.Context
	c.value = req.Value
	c.ta, c.tp = req.TrafficAnnouncement, req.TrafficProgram
	c.audio = req.Audio
	if c.dedicated {
		c.text = append(c.text[:0], req.Text...)
	} else if len(req.Text) > 0 {
		c.text = append([]byte(nil), req.Text...)
	}
}

type dedicatedSlot struct {
	cmd command
	buf []byte
}

func newDedicatedSlot(size int) dedicatedSlot {
	return dedicatedSlot{buf: make([]byte, 0, size)}
}

// commandPool allocates Commands from a fixed free list, except for PS text,
// RT text and raw data which own one statically sized slot each.
type commandPool struct {
	cmds []command
	free *command
	ps   dedicatedSlot
	rt   dedicatedSlot
	raw  dedicatedSlot
}

func (p *commandPool) init(size int) {
	p.cmds = make([]command, size)
	p.free = nil
	for n := len(p.cmds) - 1; n >= 0; n-- {
		p.cmds[n].next = p.free
		p.free = &p.cmds[n]
	}
	p.ps = newDedicatedSlot(MaxPSTextLength)
	p.rt = newDedicatedSlot(MaxRTTextLength)
	p.raw = newDedicatedSlot(MaxRawDataLength)
}

func (p *commandPool) slotFor(kind CommandKind) *dedicatedSlot {
	switch kind {
	case CmdSetRDSPSText:
		return &p.ps
	case CmdSetRDSRTText:
		return &p.rt
	case CmdSetRDSRawData:
		return &p.raw
	}
	return nil
}

func (p *commandPool) alloc(kind CommandKind) (*command, error) {
	if slot := p.slotFor(kind); slot != nil {
		if slot.cmd.busy {
			return nil, ErrConflictingCommand
		}
		slot.cmd = command{kind: kind, dedicated: true, busy: true, text: slot.buf[:0]}
		return &slot.cmd, nil
	}
	c := p.free
	if c == nil {
		return nil, ErrTooManyPending
	}
	p.free = c.next
	*c = command{kind: kind, busy: true}
	return c, nil
}

func (p *commandPool) release(c *command) {
	dedicated := c.dedicated
	*c = command{dedicated: dedicated}
	if !dedicated {
		c.next = p.free
		p.free = c
	}
}

// commandQueue is a FIFO of pending commands linked through command.next.
type commandQueue struct {
	head *command
	tail *command
	size int
}

func (q *commandQueue) push(c *command) {
	c.next = nil
	if q.tail == nil {
		q.head = c
	} else {
		q.tail.next = c
	}
	q.tail = c
	q.size++
}

func (q *commandQueue) pop() *command {
	c := q.head
	if c == nil {
		return nil
	}
	q.head = c.next
	if q.head == nil {
		q.tail = nil
	}
	c.next = nil
	q.size--
	return c
}

func (q *commandQueue) contains(kind CommandKind) bool {
	for c := q.head; c != nil; c = c.next {
		if c.kind == kind {
			return true
		}
	}
	return false
}
