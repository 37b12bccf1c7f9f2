// Package api defines the driver API for dataflow engines.
package api

import (
	"errors"
	"fmt"

	"github.com/sarchlab/akita/v4/sim"
	"github.com/sarchlab/cmdstream/dfe"
	"github.com/sarchlab/cmdstream/lmem"
)

var (
	// ErrNoDevice is returned when the driver is used before a device is
	// registered.
	ErrNoDevice = errors.New("no device registered")

	// ErrShortBuffer is returned when a host buffer holds fewer elements
	// than a transfer moves.
	ErrShortBuffer = errors.New("host buffer too short")

	// ErrIncomplete is returned when the engine stops before a command has
	// finished.
	ErrIncomplete = errors.New("command did not complete")
)

// Driver provides the interface to control an accelerator. Every call blocks
// until the simulation engine has no more events, so a call that returns
// without an error has fully completed on the device.
type Driver interface {
	dfe.Runtime

	// RegisterDevice registers a device to the driver.
	RegisterDevice(device dfe.Device)
}

type driverImpl struct {
	engine sim.Engine
	stream string

	device dfe.Device
}

// RegisterDevice registers a device to the driver.
func (d *driverImpl) RegisterDevice(device dfe.Device) {
	d.device = device
}

// Init returns the max file of the registered device.
func (d *driverImpl) Init() (dfe.MaxFile, error) {
	if d.device == nil {
		return dfe.MaxFile{}, ErrNoDevice
	}

	maxFile := d.device.MaxFile()
	if _, err := maxFile.BurstSize(d.stream); err != nil {
		return dfe.MaxFile{}, err
	}

	return maxFile, nil
}

func (d *driverImpl) streamBurstSize() (int, error) {
	if d.device == nil {
		return 0, ErrNoDevice
	}

	return d.device.MaxFile().BurstSize(d.stream)
}

func (d *driverImpl) transferCommand(
	kind dfe.CommandKind,
	size, offset int,
	data []int32,
) (*dfe.Command, error) {
	if size < 0 || offset < 0 {
		return nil, fmt.Errorf("%s of %d elements at %d: %w",
			kind, size, offset, lmem.ErrOutOfRange)
	}

	if len(data) < size {
		return nil, fmt.Errorf("%s of %d elements into %d: %w",
			kind, size, len(data), ErrShortBuffer)
	}

	burstSize, err := d.streamBurstSize()
	if err != nil {
		return nil, err
	}

	capacity := d.device.MaxFile().LMemCapacity
	limit := capacity / dfe.ElementSize
	if uint64(offset) > limit || uint64(size) > limit-uint64(offset) {
		return nil, fmt.Errorf("%s of %d elements at %d in a %d-byte LMem: %w",
			kind, size, offset, capacity, lmem.ErrOutOfRange)
	}

	b := dfe.CommandBuilder{}.
		WithKind(kind).
		WithAddress(dfe.BytesOf(offset)).
		WithBurstSize(burstSize)

	if kind == dfe.CmdWriteLMem {
		b = b.WithData(dfe.Encode(data[:size]))
	} else {
		b = b.WithData(make([]byte, dfe.BytesOf(size)))
	}

	return b.Build(), nil
}

// WriteLMem copies size elements of data to LMem at the element offset.
func (d *driverImpl) WriteLMem(size, offset int, data []int32) error {
	cmd, err := d.transferCommand(dfe.CmdWriteLMem, size, offset, data)
	if err != nil {
		return err
	}

	return d.submit(cmd)
}

// ReadLMem copies size elements from LMem at the element offset into data.
func (d *driverImpl) ReadLMem(size, offset int, data []int32) error {
	cmd, err := d.transferCommand(dfe.CmdReadLMem, size, offset, data)
	if err != nil {
		return err
	}

	if err := d.submit(cmd); err != nil {
		return err
	}

	dfe.DecodeInto(data[:size], cmd.Data)

	return nil
}

// Run executes the kernel of the device over size elements.
func (d *driverImpl) Run(size, burstBytes int) error {
	cmd := dfe.CommandBuilder{}.
		WithKind(dfe.CmdRun).
		WithSize(size).
		WithBurstSize(burstBytes).
		Build()

	return d.submit(cmd)
}

func (d *driverImpl) submit(cmd *dfe.Command) error {
	if d.device == nil {
		return ErrNoDevice
	}

	d.device.Enqueue(cmd)
	d.device.TickLater()

	if err := d.engine.Run(); err != nil {
		return fmt.Errorf("%s %s: engine: %w", cmd.Kind, cmd.ID, err)
	}

	if cmd.Err != nil {
		return fmt.Errorf("%s: %w", cmd.Kind, cmd.Err)
	}

	if !cmd.Finished() {
		return fmt.Errorf("%s %s: %w", cmd.Kind, cmd.ID, ErrIncomplete)
	}

	return nil
}
