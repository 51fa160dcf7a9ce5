// Package script loads and plays chip bring-up scripts.
//
// A script is a YAML document listing chip operations:
//
//	name: fmtx_init
//	steps:
//	  - write: {op: ref-clock, value: 32768}
//	  - write: {op: 0x18, data: [0x1a, 0xa9]}
//	  - read: {op: asic-version, len: 2, expect: 0x1273}
//
// Opcodes are given by name or number.
package script

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v2"

	"github.com/robotalks/fmtx/pkg/fmtx"
	fx "github.com/robotalks/fmtx/pkg/framework"
)

// FileExt is the extension of script files.
const FileExt = ".yaml"

// Script is the file form of a script.
type Script struct {
	Name  string `yaml:"name"`
	Steps []Step `yaml:"steps"`
}

// Step is one chip operation. Exactly one of Write and Read is set.
type Step struct {
	Write *WriteStep `yaml:"write,omitempty"`
	Read  *ReadStep  `yaml:"read,omitempty"`
}

// WriteStep writes either a scalar value or raw data.
type WriteStep struct {
	Op    string  `yaml:"op"`
	Value *uint32 `yaml:"value,omitempty"`
	Data  []uint8 `yaml:"data,omitempty"`
}

// ReadStep reads a register, optionally verifying its value.
type ReadStep struct {
	Op     string  `yaml:"op"`
	Len    int     `yaml:"len"`
	Expect *uint32 `yaml:"expect,omitempty"`
}

// operation is a compiled step.
type operation struct {
	op     fmtx.Opcode
	read   bool
	data   []byte
	length int
	expect *uint32
}

// Program is a compiled script.
type Program struct {
	Name string
	ops  []operation
}

// Len returns the number of operations.
func (p *Program) Len() int {
	return len(p.ops)
}

// Parse decodes and compiles a script.
func Parse(name string, data []byte) (*Program, error) {
	var s Script
	if err := yaml.UnmarshalStrict(data, &s); err != nil {
		return nil, fmt.Errorf("script %s: %v", name, err)
	}
	if s.Name == "" {
		s.Name = name
	}
	return s.Compile()
}

// Compile validates the steps and compiles the script.
func (s *Script) Compile() (*Program, error) {
	p := &Program{Name: s.Name, ops: make([]operation, 0, len(s.Steps))}
	for n, step := range s.Steps {
		op, err := step.compile()
		if err != nil {
			return nil, fmt.Errorf("script %s step %d: %v", s.Name, n+1, err)
		}
		p.ops = append(p.ops, op)
	}
	return p, nil
}

func (s Step) compile() (operation, error) {
	switch {
	case s.Write != nil && s.Read != nil:
		return operation{}, ErrAmbiguousStep
	case s.Write != nil:
		code, ok := fmtx.ParseOpcode(s.Write.Op)
		if !ok {
			return operation{}, &UnknownOpcodeError{Op: s.Write.Op}
		}
		if (s.Write.Value == nil) == (s.Write.Data == nil) {
			return operation{}, ErrWritePayload
		}
		data := []byte(s.Write.Data)
		if s.Write.Value != nil {
			data = fmtx.EncodeValue(*s.Write.Value)
		}
		if len(data) > fmtx.MaxChunkSize {
			return operation{}, ErrDataTooLong
		}
		return operation{op: code, data: data}, nil
	case s.Read != nil:
		code, ok := fmtx.ParseOpcode(s.Read.Op)
		if !ok {
			return operation{}, &UnknownOpcodeError{Op: s.Read.Op}
		}
		if s.Read.Len <= 0 || s.Read.Len > fmtx.MaxEventPayload {
			return operation{}, ErrReadLength
		}
		return operation{op: code, read: true, length: s.Read.Len, expect: s.Read.Expect}, nil
	}
	return operation{}, ErrEmptyStep
}

// Load reads and compiles the script file of name under dir.
// A missing file reports an error satisfying os.IsNotExist.
func Load(dir, name string) (*Program, error) {
	data, err := ioutil.ReadFile(filepath.Join(dir, name+FileExt))
	if err != nil {
		return nil, err
	}
	return Parse(name, data)
}

// ValidateDir compiles every script file under dir and returns the names
// of the valid ones.
func ValidateDir(dir string) ([]string, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*"+FileExt))
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		if _, err := os.Stat(dir); err != nil {
			return nil, err
		}
	}
	var names []string
	var errs fx.AggregatedError
	for _, fn := range files {
		name := filepath.Base(fn)
		name = name[:len(name)-len(FileExt)]
		if _, err := Load(dir, name); err != nil {
			errs.Add(err)
			continue
		}
		names = append(names, name)
	}
	return names, errs.Aggregate()
}
