// Package fmtx implements the command engine of an FM transmitter chip.
package fmtx

// Application requests are turned into commands and queued in FIFO order.
// A Device executes one command at a time by walking the stage table of
// its kind. Each stage either issues exactly one transport operation,
// arbiter call or script and suspends, or completes synchronously and lets
// the dispatcher run the next stage right away.
//
// Chip interrupts and transport completions arrive independently. They are
// merged into a single stream: an interrupt is only acted upon once no
// transport operation is outstanding, by reading the interrupt status
// register through the transport itself.
//
// A Device is not safe for concurrent use. All calls (Enqueue,
// HandleTransportEvent, HandleInterrupt, CheckTimeout) must be serialized by
// the host, e.g. by running them from a single framework.Loop.
