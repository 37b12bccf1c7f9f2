package core

// Adder is the kernel of the CmdStream image. It adds the two input streams
// element by element on unsigned 32-bit lanes, so overflow wraps around.
type Adder struct{}

// Compute returns a + b.
func (Adder) Compute(a, b []int32) []int32 {
	out := make([]int32, len(a))
	for i := range out {
		out[i] = int32(uint32(a[i]) + uint32(b[i]))
	}

	return out
}
