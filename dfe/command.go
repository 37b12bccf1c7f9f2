package dfe

import (
	"fmt"

	"github.com/sarchlab/akita/v4/sim"
)

// CommandKind tells what a command asks the engine to do.
type CommandKind int

const (
	CmdWriteLMem CommandKind = iota
	CmdReadLMem
	CmdRun
)

// String returns the name of the command kind.
func (k CommandKind) String() string {
	switch k {
	case CmdWriteLMem:
		return "WriteLMem"
	case CmdReadLMem:
		return "ReadLMem"
	case CmdRun:
		return "Run"
	default:
		return fmt.Sprintf("CommandKind(%d)", int(k))
	}
}

// A Command is one entry of the LMem command stream. The engine processes a
// command one burst at a time and records the number of bytes (or, for runs,
// elements) it has completed in Progress.
type Command struct {
	ID   string
	Kind CommandKind

	// Address is the LMem byte address of a read or write.
	Address uint64

	// Data is the source of a write or the destination of a read.
	Data []byte

	// Size is the element count of a run.
	Size int

	// BurstSize is the burst length in bytes used to stream the command.
	BurstSize int

	Progress uint64
	Err      error
	Failed   bool
}

// Total returns the amount of work of the command, in the unit of Progress.
func (c *Command) Total() uint64 {
	if c.Kind == CmdRun {
		return uint64(c.Size)
	}

	return uint64(len(c.Data))
}

// Finished returns true if the command has no more work to do.
func (c *Command) Finished() bool {
	return c.Failed || c.Progress >= c.Total()
}

// Fail marks the command as failed.
func (c *Command) Fail(err error) {
	c.Err = err
	c.Failed = true
}

// CommandBuilder is a factory for Command.
type CommandBuilder struct {
	kind      CommandKind
	address   uint64
	data      []byte
	size      int
	burstSize int
}

// WithKind sets the kind of the command.
func (b CommandBuilder) WithKind(kind CommandKind) CommandBuilder {
	b.kind = kind
	return b
}

// WithAddress sets the LMem byte address of the command.
func (b CommandBuilder) WithAddress(address uint64) CommandBuilder {
	b.address = address
	return b
}

// WithData sets the host buffer of the command.
func (b CommandBuilder) WithData(data []byte) CommandBuilder {
	b.data = data
	return b
}

// WithSize sets the element count of a run command.
func (b CommandBuilder) WithSize(size int) CommandBuilder {
	b.size = size
	return b
}

// WithBurstSize sets the burst length in bytes.
func (b CommandBuilder) WithBurstSize(burstSize int) CommandBuilder {
	b.burstSize = burstSize
	return b
}

// Build creates a Command.
func (b CommandBuilder) Build() *Command {
	return &Command{
		ID:        sim.GetIDGenerator().Generate(),
		Kind:      b.kind,
		Address:   b.address,
		Data:      b.data,
		Size:      b.size,
		BurstSize: b.burstSize,
	}
}
