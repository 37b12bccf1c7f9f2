package core

import (
	"github.com/sarchlab/akita/v4/mem/mem"
	"github.com/sarchlab/akita/v4/sim"
	"github.com/sarchlab/cmdstream/dfe"
)

// Builder can create new cores.
type Builder struct {
	engine   sim.Engine
	freq     sim.Freq
	capacity uint64
	kernel   dfe.Kernel
	maxFile  dfe.MaxFile
}

// NewBuilder returns a builder with a 1 MB LMem and the adder kernel.
func NewBuilder() Builder {
	return Builder{
		freq:     1 * sim.GHz,
		capacity: 1 * mem.MB,
		kernel:   Adder{},
	}
}

// WithEngine sets the engine.
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithFreq sets the frequency of the core.
func (b Builder) WithFreq(freq sim.Freq) Builder {
	b.freq = freq
	return b
}

// WithLMemCapacity sets the LMem size in bytes.
func (b Builder) WithLMemCapacity(capacity uint64) Builder {
	b.capacity = capacity
	return b
}

// WithKernel sets the computation the core performs on a run.
func (b Builder) WithKernel(kernel dfe.Kernel) Builder {
	b.kernel = kernel
	return b
}

// WithMaxFile sets the image the core reports. Its LMem capacity is
// overwritten by the capacity of the core.
func (b Builder) WithMaxFile(maxFile dfe.MaxFile) Builder {
	b.maxFile = maxFile
	return b
}

// Build creates a core.
func (b Builder) Build(name string) *Core {
	if b.kernel == nil {
		panic("core needs a kernel")
	}

	c := &Core{
		storage:  mem.NewStorage(b.capacity),
		capacity: b.capacity,
		kernel:   b.kernel,
		maxFile:  b.maxFile,
	}

	c.maxFile.LMemCapacity = b.capacity
	if c.maxFile.Name == "" {
		c.maxFile.Name = name
	}

	c.TickingComponent = sim.NewTickingComponent(name, b.engine, b.freq, c)

	return c
}
