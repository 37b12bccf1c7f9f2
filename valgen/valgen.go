// Package valgen provides helpers that use closures to generate test values.
package valgen

import (
	"errors"
	"fmt"
	"math/rand"
	"time"
)

// ErrInvalidSize is returned when asked to generate a non-positive number of
// elements.
var ErrInvalidSize = errors.New("invalid size")

// A Gen returns the next value of a sequence every time it is called.
type Gen func() int32

func MakeConstGen(constant int32) Gen {
	return func() int32 {
		return constant
	}
}

func MakeIncreasingGen(start int32) Gen {
	current := start
	return func() int32 {
		current++
		return current
	}
}

// MakeRandomGen draws values from the whole int32 range.
func MakeRandomGen(r *rand.Rand) Gen {
	return func() int32 {
		return int32(r.Uint32())
	}
}

// NewSource creates a random source. A zero seed picks one from the wall
// clock.
func NewSource(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return rand.New(rand.NewSource(seed))
}

// Fill sets every element of dst to the next value of gen.
func Fill(dst []int32, gen Gen) {
	for i := range dst {
		dst[i] = gen()
	}
}

// GenerateInputs creates the two input streams of a run. Values are drawn
// alternately for A and B.
func GenerateInputs(n int, gen Gen) (inA, inB []int32, err error) {
	if n <= 0 {
		return nil, nil, fmt.Errorf("%w: %d", ErrInvalidSize, n)
	}

	inA = make([]int32, n)
	inB = make([]int32, n)

	for i := 0; i < n; i++ {
		inA[i] = gen()
		inB[i] = gen()
	}

	return inA, inB, nil
}
