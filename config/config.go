// Package config provides a default configuration for the DFE device.
package config

import (
	"github.com/sarchlab/akita/v4/monitoring"
	"github.com/sarchlab/akita/v4/sim"
	"github.com/sarchlab/cmdstream/core"
	"github.com/sarchlab/cmdstream/dfe"
)

// DeviceBuilder can build DFE devices.
type DeviceBuilder struct {
	engine   sim.Engine
	platform Platform
	kernel   dfe.Kernel
	monitor  *monitoring.Monitor
	tracer   sim.Hook
}

// MakeDeviceBuilder returns a builder for the default platform.
func MakeDeviceBuilder() DeviceBuilder {
	return DeviceBuilder{
		platform: DefaultPlatform(),
		kernel:   core.Adder{},
	}
}

// WithEngine sets the engine that drives the device simulation.
func (d DeviceBuilder) WithEngine(engine sim.Engine) DeviceBuilder {
	d.engine = engine
	return d
}

// WithPlatform sets the platform the device implements.
func (d DeviceBuilder) WithPlatform(platform Platform) DeviceBuilder {
	d.platform = platform
	return d
}

// WithKernel replaces the kernel of the image.
func (d DeviceBuilder) WithKernel(kernel dfe.Kernel) DeviceBuilder {
	d.kernel = kernel
	return d
}

// WithMonitor sets the monitor that the device registers with.
func (d DeviceBuilder) WithMonitor(monitor *monitoring.Monitor) DeviceBuilder {
	d.monitor = monitor
	return d
}

// WithTracer sets a hook that is attached to the device.
func (d DeviceBuilder) WithTracer(tracer sim.Hook) DeviceBuilder {
	d.tracer = tracer
	return d
}

// Build creates a DFE device.
func (d DeviceBuilder) Build(name string) *core.Core {
	dev := core.NewBuilder().
		WithEngine(d.engine).
		WithFreq(d.platform.Freq()).
		WithLMemCapacity(d.platform.LMemCapacity).
		WithKernel(d.kernel).
		WithMaxFile(d.platform.MaxFile()).
		Build(name)

	if d.tracer != nil {
		dev.AcceptHook(d.tracer)
	}

	if d.monitor != nil {
		d.monitor.RegisterComponent(dev)
	}

	return dev
}
