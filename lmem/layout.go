// Package lmem stages host buffers into the large memory (LMem) of a
// dataflow engine.
//
// The LMem is a single linear byte-addressable space. A command-stream run
// splits it into three zones of N elements each: input A at element offset 0,
// input B at N and the output at 2N. Every transfer must start on, and be a
// whole number of, bursts.
package lmem

import (
	"errors"
	"fmt"
	"math"

	"github.com/sarchlab/cmdstream/dfe"
)

var (
	// ErrMisaligned is returned when a transfer does not honor the burst
	// granularity.
	ErrMisaligned = errors.New("transfer not burst aligned")

	// ErrOutOfRange is returned when a transfer leaves the LMem.
	ErrOutOfRange = errors.New("transfer out of LMem range")

	// ErrZeroLength is returned for transfers that move no data.
	ErrZeroLength = errors.New("zero-length transfer")

	// ErrZoneBounds is returned when a transfer leaves the zone it targets.
	ErrZoneBounds = errors.New("transfer outside zone")

	// ErrOverlap is returned when two zones share bytes.
	ErrOverlap = errors.New("zones overlap")
)

// A Zone is a contiguous range of LMem, measured in elements.
type Zone struct {
	ID     dfe.ZoneID
	Offset int
	Length int
}

// End returns the element offset right after the zone.
func (z Zone) End() int {
	return z.Offset + z.Length
}

// ByteOffset returns the LMem byte address of the zone.
func (z Zone) ByteOffset() uint64 {
	return dfe.BytesOf(z.Offset)
}

// ByteLength returns the size of the zone in bytes.
func (z Zone) ByteLength() uint64 {
	return dfe.BytesOf(z.Length)
}

// Contains tells if the element range [offset, offset+length) is inside the
// zone.
func (z Zone) Contains(offset, length int) bool {
	return offset >= z.Offset && length >= 0 && offset+length <= z.End()
}

// Overlaps tells if two zones share at least one byte.
func (z Zone) Overlaps(o Zone) bool {
	if z.Length == 0 || o.Length == 0 {
		return false
	}

	return z.ByteOffset() < o.ByteOffset()+o.ByteLength() &&
		o.ByteOffset() < z.ByteOffset()+z.ByteLength()
}

func (z Zone) String() string {
	return fmt.Sprintf("%s[%d:%d]", z.ID.Name(), z.Offset, z.End())
}

// A Layout places the zones of a run of Size elements.
type Layout struct {
	Size      int
	BurstSize int
	Zones     [dfe.NumZones]Zone
}

// NewLayout places the zones of a run of size elements back to back. The
// zone size in bytes must be a whole number of bursts so that every zone
// starts on a burst boundary.
func NewLayout(size, burstSize int) (Layout, error) {
	if size <= 0 {
		return Layout{}, fmt.Errorf("layout of %d elements: %w",
			size, ErrZeroLength)
	}

	if burstSize <= 0 {
		return Layout{}, fmt.Errorf("burst size %d: %w",
			burstSize, ErrMisaligned)
	}

	if size > math.MaxInt/(dfe.NumZones*dfe.ElementSize) {
		return Layout{}, fmt.Errorf("layout of %d elements: %w",
			size, ErrOutOfRange)
	}

	if dfe.BytesOf(size)%uint64(burstSize) != 0 {
		return Layout{}, fmt.Errorf(
			"zone of %d elements (%d bytes) with %d-byte bursts: %w",
			size, dfe.BytesOf(size), burstSize, ErrMisaligned)
	}

	l := Layout{Size: size, BurstSize: burstSize}
	for i := range l.Zones {
		l.Zones[i] = Zone{
			ID:     dfe.ZoneID(i),
			Offset: i * size,
			Length: size,
		}
	}

	if err := l.Validate(); err != nil {
		return Layout{}, err
	}

	return l, nil
}

// Zone returns the zone with the given id.
func (l Layout) Zone(id dfe.ZoneID) Zone {
	if id < 0 || int(id) >= len(l.Zones) {
		panic("invalid zone")
	}

	return l.Zones[id]
}

// Footprint returns the number of LMem bytes the layout uses.
func (l Layout) Footprint() uint64 {
	var end uint64
	for _, z := range l.Zones {
		if e := z.ByteOffset() + z.ByteLength(); e > end {
			end = e
		}
	}

	return end
}

// Validate checks that zones are pairwise disjoint and burst aligned.
func (l Layout) Validate() error {
	burst := uint64(l.BurstSize)

	for i, z := range l.Zones {
		if burst == 0 || z.ByteOffset()%burst != 0 {
			return fmt.Errorf("zone %s: %w", z, ErrMisaligned)
		}

		for _, o := range l.Zones[i+1:] {
			if z.Overlaps(o) {
				return fmt.Errorf("%s and %s: %w", z, o, ErrOverlap)
			}
		}
	}

	return nil
}

// Fits returns an error if the layout does not fit in capacity bytes.
func (l Layout) Fits(capacity uint64) error {
	if l.Footprint() > capacity {
		return fmt.Errorf("layout needs %d bytes, LMem has %d: %w",
			l.Footprint(), capacity, ErrOutOfRange)
	}

	return nil
}
