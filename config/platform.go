package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/sarchlab/akita/v4/mem/mem"
	"github.com/sarchlab/akita/v4/sim"
	"github.com/sarchlab/cmdstream/dfe"
	"github.com/sarchlab/cmdstream/lmem"
	"gopkg.in/yaml.v3"
)

// ErrInvalidPlatform is returned when a platform description is unusable.
var ErrInvalidPlatform = errors.New("invalid platform")

// Report formats.
const (
	ReportLines = "lines"
	ReportTable = "table"
)

// Platform describes the accelerator image and the test run.
type Platform struct {
	Name         string         `yaml:"name"`
	Size         int            `yaml:"size"`
	FreqGHz      float64        `yaml:"freq_ghz"`
	LMemCapacity uint64         `yaml:"lmem_capacity"`
	Stream       string         `yaml:"stream"`
	Streams      map[string]int `yaml:"streams"`

	// Seed of the input generator. Zero seeds from the wall clock.
	Seed int64 `yaml:"seed"`

	Trace   bool   `yaml:"trace"`
	Monitor bool   `yaml:"monitor"`
	Report  string `yaml:"report"`
}

// DefaultPlatform returns the CmdStream test: 1920 elements moved in 384-byte
// bursts.
func DefaultPlatform() Platform {
	return Platform{
		Name:         "CmdStream",
		Size:         1920,
		FreqGHz:      1,
		LMemCapacity: 1 * mem.MB,
		Stream:       "cmd_tolmem",
		Streams:      map[string]int{"cmd_tolmem": 384},
		Report:       ReportLines,
	}
}

// ParsePlatform reads a YAML platform description. Fields that are not
// given keep their default value.
func ParsePlatform(data []byte) (Platform, error) {
	p := DefaultPlatform()
	p.Streams = nil

	if err := yaml.Unmarshal(data, &p); err != nil {
		return Platform{}, fmt.Errorf("%w: %v", ErrInvalidPlatform, err)
	}

	if p.Streams == nil {
		p.Streams = DefaultPlatform().Streams
	}

	if err := p.Validate(); err != nil {
		return Platform{}, err
	}

	return p, nil
}

// LoadPlatformFile reads a YAML platform description from a file.
func LoadPlatformFile(path string) (Platform, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Platform{}, fmt.Errorf("failed to read platform file: %w", err)
	}

	return ParsePlatform(data)
}

// Freq returns the engine frequency.
func (p Platform) Freq() sim.Freq {
	return sim.Freq(p.FreqGHz) * sim.GHz
}

// MaxFile returns the image the platform describes.
func (p Platform) MaxFile() dfe.MaxFile {
	streams := make(map[string]int, len(p.Streams))
	for name, size := range p.Streams {
		streams[name] = size
	}

	return dfe.MaxFile{
		Name:         p.Name,
		LMemCapacity: p.LMemCapacity,
		Streams:      streams,
	}
}

// BurstSize returns the burst size of the transfer stream.
func (p Platform) BurstSize() (int, error) {
	return p.MaxFile().BurstSize(p.Stream)
}

// Validate checks that the run fits the image.
func (p Platform) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("%w: no name", ErrInvalidPlatform)
	}

	if p.FreqGHz <= 0 {
		return fmt.Errorf("%w: frequency %v GHz", ErrInvalidPlatform, p.FreqGHz)
	}

	if p.Report != ReportLines && p.Report != ReportTable {
		return fmt.Errorf("%w: report format %q", ErrInvalidPlatform, p.Report)
	}

	for name, size := range p.Streams {
		if size <= 0 || size%dfe.ElementSize != 0 {
			return fmt.Errorf("%w: stream %s burst size %d",
				ErrInvalidPlatform, name, size)
		}
	}

	burstSize, err := p.BurstSize()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPlatform, err)
	}

	layout, err := lmem.NewLayout(p.Size, burstSize)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPlatform, err)
	}

	if err := layout.Fits(p.LMemCapacity); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPlatform, err)
	}

	return nil
}
