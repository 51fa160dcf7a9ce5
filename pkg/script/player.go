package script

import (
	"os"

	"github.com/golang/glog"

	"github.com/robotalks/fmtx/pkg/fmtx"
)

// Player implements fmtx.ScriptPlayer. Like the device it serves, it is
// driven from a single goroutine.
type Player struct {
	// Dir holds script files, empty disables file scripts.
	Dir      string
	Builtins map[string]*Script

	prog      *Program
	pos       int
	transport fmtx.Transport
}

// NewPlayer creates a Player with the built-in scripts.
func NewPlayer(dir string) *Player {
	return &Player{Dir: dir, Builtins: Builtins()}
}

// Running reports whether a script is waiting for a completion.
func (p *Player) Running() bool {
	return p.prog != nil
}

// ExecuteScript implements fmtx.ScriptPlayer.
func (p *Player) ExecuteScript(name string, src fmtx.ScriptSource, t fmtx.Transport) fmtx.ScriptStatus {
	if p.prog != nil {
		glog.Warningf("script: %s abandoned by %s", p.prog.Name, name)
		p.prog = nil
	}
	prog, st := p.load(name, src)
	if prog == nil {
		return st
	}
	glog.V(2).Infof("script: executing %s (%d steps)", prog.Name, prog.Len())
	p.prog, p.pos, p.transport = prog, 0, t
	return p.run()
}

// HandleTransportEvent implements fmtx.ScriptPlayer.
func (p *Player) HandleTransportEvent(ev *fmtx.TransportEvent) fmtx.ScriptStatus {
	if p.prog == nil {
		glog.Errorf("script: unexpected completion of %s", ev.Opcode)
		return fmtx.ScriptError
	}
	op := &p.prog.ops[p.pos]
	if ev.Failed || ev.Opcode != op.op {
		glog.Errorf("script: %s step %d: %s failed", p.prog.Name, p.pos+1, ev.Opcode)
		return p.stop(fmtx.ScriptError)
	}
	if !p.verify(op, ev.Payload()) {
		return p.stop(fmtx.ScriptError)
	}
	p.pos++
	return p.run()
}

func (p *Player) load(name string, src fmtx.ScriptSource) (*Program, fmtx.ScriptStatus) {
	switch src {
	case fmtx.ScriptFile:
		if p.Dir == "" {
			return nil, fmtx.ScriptFileNotFound
		}
		prog, err := Load(p.Dir, name)
		if os.IsNotExist(err) {
			return nil, fmtx.ScriptFileNotFound
		}
		if err != nil {
			glog.Errorf("script: load %s: %v", name, err)
			return nil, fmtx.ScriptError
		}
		return prog, fmtx.ScriptSuccess
	case fmtx.ScriptBuiltin:
		s := p.Builtins[name]
		if s == nil {
			return nil, fmtx.ScriptFileNotFound
		}
		prog, err := s.Compile()
		if err != nil {
			glog.Errorf("script: built-in %s: %v", name, err)
			return nil, fmtx.ScriptError
		}
		return prog, fmtx.ScriptSuccess
	}
	return nil, fmtx.ScriptError
}

// run issues operations until one completes asynchronously.
func (p *Player) run() fmtx.ScriptStatus {
	for ; p.pos < len(p.prog.ops); p.pos++ {
		op := &p.prog.ops[p.pos]
		var data []byte
		var st fmtx.TransportStatus
		if op.read {
			data, st = p.transport.SendRead(op.op, op.length)
		} else {
			st = p.transport.SendWrite(op.op, op.data)
		}
		switch st {
		case fmtx.TransportPending:
			return fmtx.ScriptPending
		case fmtx.TransportError:
			glog.Errorf("script: %s step %d: %s failed", p.prog.Name, p.pos+1, op.op)
			return p.stop(fmtx.ScriptError)
		}
		if !p.verify(op, data) {
			return p.stop(fmtx.ScriptError)
		}
	}
	glog.V(2).Infof("script: %s completed", p.prog.Name)
	return p.stop(fmtx.ScriptSuccess)
}

func (p *Player) verify(op *operation, data []byte) bool {
	if !op.read || op.expect == nil {
		return true
	}
	if actual := fmtx.DecodeValue(data); actual != *op.expect {
		glog.Errorf("script: %s: %v", p.prog.Name, &MismatchError{Step: p.pos + 1, Expected: *op.expect, Actual: actual})
		return false
	}
	return true
}

func (p *Player) stop(st fmtx.ScriptStatus) fmtx.ScriptStatus {
	p.prog, p.transport = nil, nil
	return st
}
