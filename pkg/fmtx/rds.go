package fmtx

// payloadFunc returns the bytes an RDS chunk loop transfers.
type payloadFunc func(d *Device, c *command) []byte

func commandText(d *Device, c *command) []byte {
	return c.text
}

func fieldMaskPayload(d *Device, c *command) []byte {
	return EncodeValue(c.value)
}

func defaultPSText(d *Device, c *command) []byte {
	return d.opts.Defaults.PSText
}

// lengthStage announces the payload length before the chunks.
func lengthStage(op Opcode, payload payloadFunc, extra func(c *command) uint32) stage {
	return func(d *Device, c *command) step {
		d.info.sent, d.info.chunk = 0, 0
		v := uint32(len(payload(d, c)))
		if extra != nil {
			v |= extra(c) << 16
		}
		return d.write(op, EncodeValue(v))
	}
}

// chunkSendStage writes the next chunk of at most ChunkSize bytes. An empty
// remainder skips the loop.
func chunkSendStage(op Opcode, payload payloadFunc) stage {
	return func(d *Device, c *command) step {
		rest := payload(d, c)[d.info.sent:]
		if len(rest) == 0 {
			return d.skip(1)
		}
		n := len(rest)
		if n > d.opts.ChunkSize {
			n = d.opts.ChunkSize
		}
		d.info.chunk = n
		return d.write(op, rest[:n])
	}
}

// chunkAdvanceStage accounts the chunk just written and loops back to the
// send stage until the whole payload is out.
func chunkAdvanceStage(payload payloadFunc) stage {
	return func(d *Device, c *command) step {
		if d.chipFailed() {
			return d.finish(StatusInternalError)
		}
		d.info.sent += d.info.chunk
		d.info.chunk = 0
		if d.info.sent < len(payload(d, c)) {
			return d.jump(d.info.stage - 1)
		}
		return d.advance()
	}
}

// chunkLoop is the shared sequence sending a payload in chunks.
func chunkLoop(lengthOp, dataOp Opcode, payload payloadFunc, extra func(c *command) uint32) []stage {
	return []stage{
		lengthStage(lengthOp, payload, extra),
		waitCompleteStage,
		chunkSendStage(dataOp, payload),
		chunkAdvanceStage(payload),
	}
}

func rtType(c *command) uint32 {
	return c.value
}
