package api

import "github.com/sarchlab/akita/v4/sim"

// DefaultStream is the LMem stream the CmdStream image uses for transfers.
const DefaultStream = "cmd_tolmem"

// DriverBuilder creates a new instance of Driver.
type DriverBuilder struct {
	engine sim.Engine
	stream string
}

// WithEngine sets the engine.
func (b DriverBuilder) WithEngine(engine sim.Engine) DriverBuilder {
	b.engine = engine
	return b
}

// WithStream sets the LMem stream whose burst size the transfers use.
func (b DriverBuilder) WithStream(stream string) DriverBuilder {
	b.stream = stream
	return b
}

// Build creates a driver.
func (b DriverBuilder) Build() Driver {
	if b.engine == nil {
		panic("driver needs an engine")
	}

	d := &driverImpl{
		engine: b.engine,
		stream: b.stream,
	}

	if d.stream == "" {
		d.stream = DefaultStream
	}

	return d
}
