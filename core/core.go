package core

import (
	"fmt"

	"github.com/sarchlab/akita/v4/mem/mem"
	"github.com/sarchlab/akita/v4/sim"
	"github.com/sarchlab/cmdstream/dfe"
	"github.com/sarchlab/cmdstream/lmem"
)

// HookPosBurst marks when the core moves one burst of a command.
var HookPosBurst = &sim.HookPos{Name: "Burst"}

// BurstInfo describes one burst moved by the core.
type BurstInfo struct {
	Cmd     *dfe.Command
	Address uint64
	Bytes   uint64
	Time    sim.VTimeInSec
}

// Stats counts the work done by a core.
type Stats struct {
	Bursts       uint64
	BytesWritten uint64
	BytesRead    uint64
	Elements     uint64
	Failed       uint64
}

// Core is a dataflow engine with an attached LMem. It executes the commands of
// its command stream in order, one burst per cycle.
type Core struct {
	*sim.TickingComponent

	maxFile  dfe.MaxFile
	storage  *mem.Storage
	capacity uint64
	kernel   dfe.Kernel

	queue     []*dfe.Command
	runLayout *lmem.Layout
	stats     Stats
}

// MaxFile returns the image loaded on the core.
func (c *Core) MaxFile() dfe.MaxFile {
	return c.maxFile
}

// Enqueue appends a command to the command stream.
func (c *Core) Enqueue(cmd *dfe.Command) {
	c.queue = append(c.queue, cmd)
}

// Pending returns the number of commands that have not finished.
func (c *Core) Pending() int {
	return len(c.queue)
}

// Stats returns the work counters of the core.
func (c *Core) Stats() Stats {
	return c.stats
}

// Tick runs the core for one cycle.
func (c *Core) Tick() (madeProgress bool) {
	if len(c.queue) == 0 {
		return false
	}

	cmd := c.queue[0]

	switch cmd.Kind {
	case dfe.CmdWriteLMem:
		c.doWrite(cmd)
	case dfe.CmdReadLMem:
		c.doRead(cmd)
	case dfe.CmdRun:
		c.doRun(cmd)
	default:
		cmd.Fail(fmt.Errorf("%s: unsupported command %s", c.Name(), cmd.Kind))
	}

	if cmd.Finished() {
		c.retire(cmd)
	}

	return true
}

func (c *Core) retire(cmd *dfe.Command) {
	c.queue = c.queue[1:]
	c.runLayout = nil

	if cmd.Failed {
		c.stats.Failed++
	}

	LogCommand(c, cmd)
}

func (c *Core) burstBytes(cmd *dfe.Command) uint64 {
	if cmd.BurstSize <= 0 {
		return cmd.Total() - cmd.Progress
	}

	return uint64(cmd.BurstSize)
}

func (c *Core) mustBeInLMem(cmd *dfe.Command, addr, n uint64) bool {
	if addr > c.capacity || n > c.capacity-addr {
		cmd.Fail(fmt.Errorf("%s: bytes [%d, %d) beyond %d-byte LMem: %w",
			c.Name(), addr, addr+n, c.capacity, lmem.ErrOutOfRange))
		return false
	}

	return true
}

func (c *Core) doWrite(cmd *dfe.Command) {
	n := c.burstBytes(cmd)
	if left := cmd.Total() - cmd.Progress; n > left {
		n = left
	}

	addr := cmd.Address + cmd.Progress
	if !c.mustBeInLMem(cmd, addr, n) {
		return
	}

	err := c.storage.Write(addr, cmd.Data[cmd.Progress:cmd.Progress+n])
	if err != nil {
		cmd.Fail(fmt.Errorf("%s: write LMem at %d: %w", c.Name(), addr, err))
		return
	}

	cmd.Progress += n
	c.stats.BytesWritten += n
	c.burstDone(cmd, addr, n)
}

func (c *Core) doRead(cmd *dfe.Command) {
	n := c.burstBytes(cmd)
	if left := cmd.Total() - cmd.Progress; n > left {
		n = left
	}

	addr := cmd.Address + cmd.Progress
	if !c.mustBeInLMem(cmd, addr, n) {
		return
	}

	data, err := c.storage.Read(addr, n)
	if err != nil {
		cmd.Fail(fmt.Errorf("%s: read LMem at %d: %w", c.Name(), addr, err))
		return
	}

	copy(cmd.Data[cmd.Progress:], data)

	cmd.Progress += n
	c.stats.BytesRead += n
	c.burstDone(cmd, addr, n)
}

func (c *Core) startRun(cmd *dfe.Command) bool {
	if cmd.BurstSize%dfe.ElementSize != 0 {
		cmd.Fail(fmt.Errorf("%s: %d-byte bursts split elements: %w",
			c.Name(), cmd.BurstSize, lmem.ErrMisaligned))
		return false
	}

	layout, err := lmem.NewLayout(cmd.Size, cmd.BurstSize)
	if err == nil {
		err = layout.Fits(c.capacity)
	}

	if err != nil {
		cmd.Fail(fmt.Errorf("%s: run %d elements: %w", c.Name(), cmd.Size, err))
		return false
	}

	c.runLayout = &layout

	return true
}

// doRun streams one burst of each input through the kernel and writes one
// burst of output.
func (c *Core) doRun(cmd *dfe.Command) {
	if c.runLayout == nil && !c.startRun(cmd) {
		return
	}

	perBurst := uint64(cmd.BurstSize / dfe.ElementSize)
	if left := cmd.Total() - cmd.Progress; perBurst > left {
		perBurst = left
	}

	offset := dfe.BytesOf(int(cmd.Progress))
	n := dfe.BytesOf(int(perBurst))

	a, err := c.storage.Read(c.runLayout.Zone(dfe.InA).ByteOffset()+offset, n)
	if err != nil {
		cmd.Fail(fmt.Errorf("%s: stream inA: %w", c.Name(), err))
		return
	}

	b, err := c.storage.Read(c.runLayout.Zone(dfe.InB).ByteOffset()+offset, n)
	if err != nil {
		cmd.Fail(fmt.Errorf("%s: stream inB: %w", c.Name(), err))
		return
	}

	out := c.kernel.Compute(dfe.Decode(a), dfe.Decode(b))
	if uint64(len(out)) != perBurst {
		cmd.Fail(fmt.Errorf("%s: kernel produced %d elements, want %d",
			c.Name(), len(out), perBurst))
		return
	}

	addr := c.runLayout.Zone(dfe.Out).ByteOffset() + offset
	if err := c.storage.Write(addr, dfe.Encode(out)); err != nil {
		cmd.Fail(fmt.Errorf("%s: stream out: %w", c.Name(), err))
		return
	}

	cmd.Progress += perBurst
	c.stats.Elements += perBurst
	c.burstDone(cmd, addr, n)
}

func (c *Core) burstDone(cmd *dfe.Command, addr, n uint64) {
	c.stats.Bursts++

	info := BurstInfo{
		Cmd:     cmd,
		Address: addr,
		Bytes:   n,
		Time:    c.Engine.CurrentTime(),
	}

	c.InvokeHook(sim.HookCtx{
		Domain: c,
		Pos:    HookPosBurst,
		Item:   info,
	})
}
