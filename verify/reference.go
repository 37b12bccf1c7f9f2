package verify

// Reference computes the expected output of a CmdStream run on the host:
// out[i] = inA[i] + inB[i], wrapping on overflow like the engine does.
//
// The inputs must have the same length.
func Reference(inA, inB []int32) []int32 {
	if len(inA) != len(inB) {
		panic("verify: input length mismatch")
	}

	out := make([]int32, len(inA))
	for i := range inA {
		out[i] = inA[i] + inB[i]
	}

	return out
}
