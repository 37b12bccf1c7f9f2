package lmem

import (
	"fmt"

	"github.com/sarchlab/cmdstream/dfe"
)

// A Transferer moves elements between host buffers and LMem.
type Transferer interface {
	WriteLMem(size, offset int, data []int32) error
	ReadLMem(size, offset int, data []int32) error
}

// A Stager validates transfers against the burst granularity and the LMem
// capacity before handing them to a Transferer.
type Stager struct {
	transferer Transferer
	burstSize  int
	capacity   uint64
}

// NewStager creates a stager.
func NewStager(t Transferer, burstSize int, capacity uint64) (*Stager, error) {
	if burstSize <= 0 {
		return nil, fmt.Errorf("burst size %d: %w", burstSize, ErrMisaligned)
	}

	return &Stager{
		transferer: t,
		burstSize:  burstSize,
		capacity:   capacity,
	}, nil
}

// BurstSize returns the burst size in bytes.
func (s *Stager) BurstSize() int {
	return s.burstSize
}

// CheckTransfer returns an error if moving length elements at the given
// element offset would break the burst granularity or leave the LMem.
func (s *Stager) CheckTransfer(offset, length int) error {
	if length == 0 {
		return fmt.Errorf("transfer at element %d: %w", offset, ErrZeroLength)
	}

	if offset < 0 || length < 0 {
		return fmt.Errorf("transfer of %d elements at element %d: %w",
			length, offset, ErrOutOfRange)
	}

	// Compare in elements so that huge offsets cannot wrap the byte address.
	limit := s.capacity / dfe.ElementSize
	if uint64(offset) > limit || uint64(length) > limit-uint64(offset) {
		return fmt.Errorf("elements [%d, +%d) of a %d-byte LMem: %w",
			offset, length, s.capacity, ErrOutOfRange)
	}

	start := dfe.BytesOf(offset)
	size := dfe.BytesOf(length)
	burst := uint64(s.burstSize)

	if start%burst != 0 {
		return fmt.Errorf("address %d with %d-byte bursts: %w",
			start, burst, ErrMisaligned)
	}

	if size%burst != 0 {
		return fmt.Errorf("length %d bytes with %d-byte bursts: %w",
			size, burst, ErrMisaligned)
	}

	return nil
}

// Write transfers data into LMem at the given absolute element offset, which
// must fall inside zone z.
func (s *Stager) Write(z Zone, offset int, data []int32) error {
	if err := s.CheckTransfer(offset, len(data)); err != nil {
		return fmt.Errorf("write %s: %w", z.ID.Name(), err)
	}

	if !z.Contains(offset, len(data)) {
		return fmt.Errorf("write [%d:%d] into %s: %w",
			offset, offset+len(data), z, ErrZoneBounds)
	}

	if err := s.transferer.WriteLMem(len(data), offset, data); err != nil {
		return fmt.Errorf("write %s: %w", z.ID.Name(), err)
	}

	return nil
}

// WriteZone fills zone z with data.
func (s *Stager) WriteZone(z Zone, data []int32) error {
	return s.Write(z, z.Offset, data)
}

// Read transfers length elements starting at the given element offset out of
// LMem into a new host buffer.
func (s *Stager) Read(offset, length int) ([]int32, error) {
	if err := s.CheckTransfer(offset, length); err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}

	data := make([]int32, length)
	if err := s.transferer.ReadLMem(length, offset, data); err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}

	return data, nil
}

// ReadZone reads the content of zone z.
func (s *Stager) ReadZone(z Zone) ([]int32, error) {
	return s.Read(z.Offset, z.Length)
}
