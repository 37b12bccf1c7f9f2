// Package verify checks the output of a dataflow engine against a host-side
// reference.
//
// Verification has two halves. Reference recomputes the expected output on
// the host, independently from the engine. Check then compares what the
// engine produced with the expectation, element by element and with exact
// equality. Check never stops at the first mismatch: a broken engine tends to
// fail in patterns (one lane, one burst, every other element) and the whole
// pattern is needed to diagnose it.
//
// # Usage
//
//	expected := verify.Reference(inA, inB)
//	result := verify.Check(observed, expected)
//	if !result.Passed() {
//	    result.WriteMismatches(os.Stderr)
//	}
//	os.Exit(result.Status())
package verify

// A Mismatch records one element that differs from the reference.
type Mismatch struct {
	Index    int
	Observed int32
	Expected int32
}

// Result is the outcome of a verification.
type Result struct {
	Size       int
	Mismatches []Mismatch
}

// Passed returns true if no element differed.
func (r Result) Passed() bool {
	return len(r.Mismatches) == 0
}

// Status returns the process exit status for the result.
func (r Result) Status() int {
	if r.Passed() {
		return 0
	}

	return 1
}

// MismatchedIndices returns the indices of all mismatching elements in
// increasing order.
func (r Result) MismatchedIndices() []int {
	indices := make([]int, len(r.Mismatches))
	for i, m := range r.Mismatches {
		indices[i] = m.Index
	}

	return indices
}

// Check compares observed with expected element by element. The two slices
// must have the same length.
func Check(observed, expected []int32) Result {
	if len(observed) != len(expected) {
		panic("verify: output length mismatch")
	}

	result := Result{Size: len(expected)}
	for i := range expected {
		if observed[i] != expected[i] {
			result.Mismatches = append(result.Mismatches, Mismatch{
				Index:    i,
				Observed: observed[i],
				Expected: expected[i],
			})
		}
	}

	return result
}
