// Package dfe defines the commonly used data structures for dataflow engines.
package dfe

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/sarchlab/akita/v4/sim"
)

// ErrUnknownStream is returned when a max file does not declare a stream.
var ErrUnknownStream = errors.New("unknown stream")

// ZoneID identifies one of the logical buffers staged in LMem.
type ZoneID int

const (
	InA ZoneID = iota
	InB
	Out
)

// NumZones is the number of zones a command-stream kernel uses.
const NumZones = 3

// Name returns the name of the zone.
func (z ZoneID) Name() string {
	switch z {
	case InA:
		return "inA"
	case InB:
		return "inB"
	case Out:
		return "out"
	default:
		panic("invalid zone")
	}
}

// A MaxFile describes a compiled accelerator image.
type MaxFile struct {
	Name         string
	LMemCapacity uint64

	// Streams maps a LMem stream name to its burst size in bytes.
	Streams map[string]int
}

// BurstSize returns the burst size in bytes of the given stream.
func (f MaxFile) BurstSize(stream string) (int, error) {
	size, ok := f.Streams[stream]
	if !ok {
		return 0, fmt.Errorf("%s: %w %q, declared: [%s]",
			f.Name, ErrUnknownStream, stream, strings.Join(f.StreamNames(), " "))
	}

	return size, nil
}

// StreamNames returns the declared stream names in sorted order.
func (f MaxFile) StreamNames() []string {
	names := make([]string, 0, len(f.Streams))
	for name := range f.Streams {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// A Kernel is the fixed computation that the engine applies to the two input
// streams. Implementations must return a slice of the same length as the
// inputs.
type Kernel interface {
	Compute(a, b []int32) []int32
}

// KernelFunc adapts an ordinary function to a Kernel.
type KernelFunc func(a, b []int32) []int32

// Compute calls f(a, b).
func (f KernelFunc) Compute(a, b []int32) []int32 {
	return f(a, b)
}

// A Device is a DFE that executes LMem commands in order.
type Device interface {
	sim.Component

	MaxFile() MaxFile
	Enqueue(cmd *Command)
	TickLater()
}

// Runtime is the host-side view of an accelerator.
type Runtime interface {
	// Init returns the max file loaded on the accelerator.
	Init() (MaxFile, error)

	// WriteLMem copies size elements from data into LMem, starting at the
	// given element offset.
	WriteLMem(size, offset int, data []int32) error

	// ReadLMem copies size elements starting at the given element offset
	// from LMem into data.
	ReadLMem(size, offset int, data []int32) error

	// Run executes the kernel over size elements with the given burst size
	// and returns when the output has been written.
	Run(size, burstBytes int) error
}
