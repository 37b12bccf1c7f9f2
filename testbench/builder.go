package testbench

import (
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/sarchlab/cmdstream/config"
	"github.com/sarchlab/cmdstream/dfe"
	"github.com/sarchlab/cmdstream/valgen"
)

// Builder can build benches.
type Builder struct {
	runtime dfe.Runtime
	size    int
	stream  string
	gen     valgen.Gen
	inA     []int32
	inB     []int32
	report  string
	stdout  io.Writer
	stderr  io.Writer
	logger  *slog.Logger
	runID   string
}

// MakeBuilder returns a builder for the default CmdStream test.
func MakeBuilder() Builder {
	p := config.DefaultPlatform()

	return Builder{
		size:   p.Size,
		stream: p.Stream,
		report: p.Report,
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
}

// WithRuntime sets the runtime the bench talks to.
func (b Builder) WithRuntime(rt dfe.Runtime) Builder {
	b.runtime = rt
	return b
}

// WithSize sets the number of elements per input vector.
func (b Builder) WithSize(size int) Builder {
	b.size = size
	return b
}

// WithStream sets the stream whose burst size governs the transfers.
func (b Builder) WithStream(stream string) Builder {
	b.stream = stream
	return b
}

// WithGen sets the generator of the input vectors.
func (b Builder) WithGen(gen valgen.Gen) Builder {
	b.gen = gen
	return b
}

// WithInputs fixes the input vectors. They take precedence over the
// generator.
func (b Builder) WithInputs(inA, inB []int32) Builder {
	b.inA = inA
	b.inB = inB
	return b
}

// WithReport sets the report format.
func (b Builder) WithReport(format string) Builder {
	b.report = format
	return b
}

// WithStdout sets where progress and the verdict are written.
func (b Builder) WithStdout(w io.Writer) Builder {
	b.stdout = w
	return b
}

// WithStderr sets where mismatches are written.
func (b Builder) WithStderr(w io.Writer) Builder {
	b.stderr = w
	return b
}

// WithLogger sets the structured logger of the bench.
func (b Builder) WithLogger(logger *slog.Logger) Builder {
	b.logger = logger
	return b
}

// WithRunID sets the run identifier. A random one is used if not set.
func (b Builder) WithRunID(id string) Builder {
	b.runID = id
	return b
}

// Build creates a bench.
func (b Builder) Build() *Bench {
	if b.runtime == nil {
		panic("testbench: runtime is not set")
	}

	gen := b.gen
	if gen == nil {
		gen = valgen.MakeRandomGen(valgen.NewSource(0))
	}

	runID := b.runID
	if runID == "" {
		runID = uuid.NewString()
	}

	logger := b.logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Bench{
		runtime: b.runtime,
		size:    b.size,
		stream:  b.stream,
		gen:     gen,
		inA:     b.inA,
		inB:     b.inB,
		report:  b.report,
		stdout:  b.stdout,
		stderr:  b.stderr,
		logger:  logger.With("RunID", runID),
		runID:   runID,
	}
}
