package verify

import (
	"bytes"
	"math"
	"math/rand"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Reference", func() {
	It("should add elementwise", func() {
		out := Reference([]int32{1, 2, 3, 4}, []int32{10, 20, 30, 40})
		Expect(out).To(Equal([]int32{11, 22, 33, 44}))
	})

	It("should wrap around", func() {
		out := Reference(
			[]int32{math.MaxInt32, math.MinInt32},
			[]int32{1, -1},
		)
		Expect(out).To(Equal([]int32{math.MinInt32, math.MaxInt32}))
	})

	It("should match the low 32 bits of a wide addition", func() {
		r := rand.New(rand.NewSource(7))
		for n := 1; n <= 64; n *= 2 {
			inA := make([]int32, n)
			inB := make([]int32, n)
			for i := range inA {
				inA[i] = int32(r.Uint32())
				inB[i] = int32(r.Uint32())
			}

			out := Reference(inA, inB)
			Expect(out).To(HaveLen(n))
			for i := range out {
				wide := int64(inA[i]) + int64(inB[i])
				Expect(out[i]).To(Equal(int32(uint32(wide))), "index %d", i)
			}
		}
	})

	It("should return an empty output for empty inputs", func() {
		out := Reference([]int32{}, []int32{})
		Expect(out).NotTo(BeNil())
		Expect(out).To(BeEmpty())
	})

	It("should panic on inputs of different lengths", func() {
		Expect(func() { Reference([]int32{1}, []int32{1, 2}) }).To(Panic())
	})
})

var _ = Describe("Check", func() {
	It("should pass when every element matches", func() {
		result := Check([]int32{11, 22, 33, 44}, []int32{11, 22, 33, 44})

		Expect(result.Passed()).To(BeTrue())
		Expect(result.Mismatches).To(BeEmpty())
		Expect(result.Status()).To(Equal(0))
		Expect(result.Verdict()).To(Equal("Test passed OK!"))
	})

	It("should report a mismatching element", func() {
		expected := Reference([]int32{1, 2, 3, 4}, []int32{10, 20, 30, 40})
		result := Check([]int32{11, 22, 99, 44}, expected)

		Expect(result.Passed()).To(BeFalse())
		Expect(result.Mismatches).To(Equal(
			[]Mismatch{{Index: 2, Observed: 99, Expected: 33}}))
		Expect(result.Status()).NotTo(Equal(0))
		Expect(result.Verdict()).To(Equal("Test failed."))
	})

	It("should report every mismatch", func() {
		expected := make([]int32, 100)
		observed := make([]int32, 100)
		for i := 0; i < 100; i += 3 {
			observed[i] = 1
		}

		result := Check(observed, expected)

		Expect(result.Mismatches).To(HaveLen(34))
		Expect(result.MismatchedIndices()[0]).To(Equal(0))
		Expect(result.MismatchedIndices()[33]).To(Equal(99))
		Expect(result.Size).To(Equal(100))
	})

	It("should pass an empty output", func() {
		result := Check(nil, nil)
		Expect(result.Passed()).To(BeTrue())
		Expect(result.Size).To(Equal(0))
	})

	It("should give the same result twice", func() {
		observed := []int32{5, 6, 7, 8}
		expected := []int32{5, 0, 7, 0}

		Expect(Check(observed, expected)).To(Equal(Check(observed, expected)))
	})

	It("should panic on outputs of different lengths", func() {
		Expect(func() { Check([]int32{1}, nil) }).To(Panic())
	})
})

var _ = Describe("Report", func() {
	It("should print values as unsigned words", func() {
		result := Check([]int32{-1}, []int32{5})

		var buf bytes.Buffer
		Expect(result.WriteMismatches(&buf)).To(Succeed())
		Expect(buf.String()).To(Equal(
			"[0] Verification error, out: 4294967295 != expected: 5\n"))
	})

	It("should print nothing when passing", func() {
		var buf bytes.Buffer
		Expect(Check([]int32{1}, []int32{1}).WriteMismatches(&buf)).To(Succeed())
		Expect(buf.Len()).To(BeZero())
	})

	It("should render a table", func() {
		result := Check([]int32{1, 2, 3}, []int32{0, 0, 0})

		out := strings.ToUpper(result.RenderTable(0))
		Expect(out).To(ContainSubstring("3 OF 3 ELEMENTS MISMATCHED"))
		Expect(out).To(ContainSubstring("DIFF BITS"))

		limited := strings.ToUpper(result.RenderTable(2))
		Expect(limited).To(ContainSubstring("1 MORE"))
	})
})
