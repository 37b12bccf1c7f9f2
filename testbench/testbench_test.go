package testbench

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/akita/v4/sim"
	"github.com/sarchlab/cmdstream/api"
	"github.com/sarchlab/cmdstream/config"
	"github.com/sarchlab/cmdstream/core"
	"github.com/sarchlab/cmdstream/dfe"
	"github.com/sarchlab/cmdstream/lmem"
	"github.com/sarchlab/cmdstream/valgen"
	"github.com/sarchlab/cmdstream/verify"
)

func newDevice(kernel dfe.Kernel, burstSize int) api.Driver {
	engine := sim.NewSerialEngine()

	driver := api.DriverBuilder{}.
		WithEngine(engine).
		Build()

	device := core.NewBuilder().
		WithEngine(engine).
		WithLMemCapacity(4096).
		WithKernel(kernel).
		WithMaxFile(dfe.MaxFile{
			Name:    "CmdStream",
			Streams: map[string]int{api.DefaultStream: burstSize},
		}).
		Build("Device")

	driver.RegisterDevice(device)

	return driver
}

func corruptAt(index int, value int32) dfe.Kernel {
	return dfe.KernelFunc(func(a, b []int32) []int32 {
		out := core.Adder{}.Compute(a, b)
		if index < len(out) {
			out[index] = value
		}
		return out
	})
}

var _ = Describe("Bench", func() {
	var (
		stdout *bytes.Buffer
		stderr *bytes.Buffer
		inA    []int32
		inB    []int32
	)

	BeforeEach(func() {
		stdout = new(bytes.Buffer)
		stderr = new(bytes.Buffer)
		inA = []int32{1, 2, 3, 4, 5, 6, 7, 8}
		inB = []int32{10, 20, 30, 40, 50, 60, 70, 80}
	})

	builder := func(rt dfe.Runtime) Builder {
		return MakeBuilder().
			WithRuntime(rt).
			WithSize(8).
			WithStdout(stdout).
			WithStderr(stderr)
	}

	Context("with a simulated device", func() {
		It("should pass when the device adds correctly", func() {
			bench := builder(newDevice(core.Adder{}, 32)).
				WithInputs(inA, inB).
				Build()

			result, err := bench.Run()

			Expect(err).NotTo(HaveOccurred())
			Expect(result.Passed()).To(BeTrue())
			Expect(result.Status()).To(Equal(0))
			Expect(stdout.String()).To(Equal(
				"Loading DFE memory.\n" +
					"Running DFE.\n" +
					"Reading DFE memory.\n" +
					"Test passed OK!\n"))
			Expect(stderr.String()).To(BeEmpty())
		})

		It("should report a corrupted element", func() {
			bench := builder(newDevice(corruptAt(2, 99), 32)).
				WithInputs(inA, inB).
				Build()

			result, err := bench.Run()

			Expect(err).NotTo(HaveOccurred())
			Expect(result.Passed()).To(BeFalse())
			Expect(result.Status()).To(Equal(1))
			Expect(result.Mismatches).To(ConsistOf(
				verify.Mismatch{Index: 2, Observed: 99, Expected: 33}))
			Expect(stderr.String()).To(Equal(
				"[2] Verification error, out: 99 != expected: 33\n"))
			Expect(stdout.String()).To(HaveSuffix("Reading DFE memory.\nTest failed.\n"))
		})

		It("should render a table when asked to", func() {
			bench := builder(newDevice(corruptAt(5, -1), 32)).
				WithInputs(inA, inB).
				WithReport(config.ReportTable).
				Build()

			result, err := bench.Run()

			Expect(err).NotTo(HaveOccurred())
			Expect(result.MismatchedIndices()).To(Equal([]int{5}))
			Expect(stderr.String()).To(ContainSubstring(
				"[5] Verification error, out: 4294967295 != expected: 66"))
			Expect(stderr.String()).To(ContainSubstring(strings.ToUpper("Index")))
		})

		It("should give the same result when run twice", func() {
			bench := builder(newDevice(corruptAt(7, 0), 32)).
				WithInputs(inA, inB).
				Build()

			first, err := bench.Run()
			Expect(err).NotTo(HaveOccurred())

			second, err := bench.Run()
			Expect(err).NotTo(HaveOccurred())

			Expect(second).To(Equal(first))
		})

		It("should move many bursts of random data", func() {
			bench := builder(newDevice(core.Adder{}, 64)).
				WithSize(256).
				WithGen(valgen.MakeRandomGen(valgen.NewSource(7))).
				Build()

			result, err := bench.Run()

			Expect(err).NotTo(HaveOccurred())
			Expect(result.Size).To(Equal(256))
			Expect(result.Passed()).To(BeTrue())
		})

		It("should not touch the device when the size is misaligned", func() {
			bench := builder(newDevice(core.Adder{}, 32)).
				WithSize(10).
				Build()

			_, err := bench.Run()

			var stateErr *StateError
			Expect(errors.As(err, &stateErr)).To(BeTrue())
			Expect(stateErr.State).To(Equal(StateInit))
			Expect(err).To(MatchError(lmem.ErrMisaligned))
			Expect(stdout.String()).To(BeEmpty())
		})

		It("should fail when the stream is unknown", func() {
			bench := builder(newDevice(core.Adder{}, 32)).
				WithStream("cmd_fromlmem").
				Build()

			_, err := bench.Run()

			Expect(err).To(MatchError(dfe.ErrUnknownStream))
		})

		It("should fail when the run does not fit in LMem", func() {
			bench := builder(newDevice(core.Adder{}, 32)).
				WithSize(512).
				Build()

			_, err := bench.Run()

			Expect(err).To(MatchError(lmem.ErrOutOfRange))
			Expect(err.Error()).To(HavePrefix("Init: "))
		})

		It("should never stage a far offset onto the start of LMem", func() {
			stager, err := lmem.NewStager(newDevice(core.Adder{}, 32), 32, 4096)
			Expect(err).NotTo(HaveOccurred())

			far := 1 << 62
			zone := lmem.Zone{ID: dfe.InA, Offset: far, Length: 8}
			err = stager.Write(zone, far, []int32{7, 7, 7, 7, 7, 7, 7, 7})
			Expect(err).To(MatchError(lmem.ErrOutOfRange))

			got, err := stager.Read(0, 8)
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(HaveEach(int32(0)))
		})

		It("should reject fixed inputs of the wrong size", func() {
			bench := builder(newDevice(core.Adder{}, 32)).
				WithInputs(inA[:4], inB).
				Build()

			_, err := bench.Run()

			var stateErr *StateError
			Expect(errors.As(err, &stateErr)).To(BeTrue())
			Expect(stateErr.State).To(Equal(StateGenerate))
			Expect(err).To(MatchError(valgen.ErrInvalidSize))
		})
	})

	Context("with a mocked runtime", func() {
		var (
			mockCtrl *gomock.Controller
			rt       *MockRuntime
			maxFile  dfe.MaxFile
		)

		BeforeEach(func() {
			mockCtrl = gomock.NewController(GinkgoT())
			rt = NewMockRuntime(mockCtrl)
			maxFile = config.DefaultPlatform().MaxFile()
		})

		AfterEach(func() {
			mockCtrl.Finish()
		})

		It("should stage the default test into three zones", func() {
			a, b, err := valgen.GenerateInputs(1920, valgen.MakeIncreasingGen(0))
			Expect(err).NotTo(HaveOccurred())

			gomock.InOrder(
				rt.EXPECT().Init().Return(maxFile, nil),
				rt.EXPECT().WriteLMem(1920, 0, a).Return(nil),
				rt.EXPECT().WriteLMem(1920, 1920, b).Return(nil),
				rt.EXPECT().Run(1920, 384).Return(nil),
				rt.EXPECT().ReadLMem(1920, 3840, gomock.Any()).
					DoAndReturn(func(size, offset int, data []int32) error {
						copy(data, verify.Reference(a, b))
						return nil
					}),
			)

			result, err := builder(rt).
				WithSize(1920).
				WithInputs(a, b).
				Build().
				Run()

			Expect(err).NotTo(HaveOccurred())
			Expect(result.Passed()).To(BeTrue())
		})

		It("should stop when init fails", func() {
			rt.EXPECT().Init().Return(dfe.MaxFile{}, errors.New("no device"))

			_, err := builder(rt).Build().Run()

			Expect(err).To(MatchError(ContainSubstring("no device")))
			Expect(stdout.String()).To(BeEmpty())
		})

		It("should stop when writing the second input fails", func() {
			maxFile.Streams[api.DefaultStream] = 32
			rt.EXPECT().Init().Return(maxFile, nil)
			rt.EXPECT().WriteLMem(8, 0, inA).Return(nil)
			rt.EXPECT().WriteLMem(8, 8, inB).Return(errors.New("bus error"))

			_, err := builder(rt).WithInputs(inA, inB).Build().Run()

			var stateErr *StateError
			Expect(errors.As(err, &stateErr)).To(BeTrue())
			Expect(stateErr.State).To(Equal(StateWriteB))
			Expect(stdout.String()).To(Equal("Loading DFE memory.\n"))
		})

		It("should stop when the run fails", func() {
			maxFile.Streams[api.DefaultStream] = 32
			rt.EXPECT().Init().Return(maxFile, nil)
			rt.EXPECT().WriteLMem(8, gomock.Any(), gomock.Any()).
				Return(nil).Times(2)
			rt.EXPECT().Run(8, 32).Return(errors.New("stalled"))

			_, err := builder(rt).WithInputs(inA, inB).Build().Run()

			var stateErr *StateError
			Expect(errors.As(err, &stateErr)).To(BeTrue())
			Expect(stateErr.State).To(Equal(StateExecute))
			Expect(stdout.String()).NotTo(ContainSubstring("Test"))
		})

		It("should stop when reading the output fails", func() {
			maxFile.Streams[api.DefaultStream] = 32
			rt.EXPECT().Init().Return(maxFile, nil)
			rt.EXPECT().WriteLMem(8, gomock.Any(), gomock.Any()).
				Return(nil).Times(2)
			rt.EXPECT().Run(8, 32).Return(nil)
			rt.EXPECT().ReadLMem(8, 16, gomock.Any()).
				Return(errors.New("timeout"))

			_, err := builder(rt).WithInputs(inA, inB).Build().Run()

			var stateErr *StateError
			Expect(errors.As(err, &stateErr)).To(BeTrue())
			Expect(stateErr.State).To(Equal(StateReadOutput))
			Expect(stderr.String()).To(BeEmpty())
		})
	})

	Context("run identity", func() {
		It("should use the given run ID in logs", func() {
			var logs bytes.Buffer
			logger := slog.New(slog.NewTextHandler(&logs,
				&slog.HandlerOptions{Level: slog.LevelDebug}))

			bench := builder(newDevice(core.Adder{}, 32)).
				WithInputs(inA, inB).
				WithRunID("run-1").
				WithLogger(logger).
				Build()

			_, err := bench.Run()

			Expect(err).NotTo(HaveOccurred())
			Expect(bench.RunID()).To(Equal("run-1"))
			Expect(logs.String()).To(ContainSubstring("RunID=run-1"))
			Expect(logs.String()).To(ContainSubstring("State=WriteA"))
			Expect(logs.String()).To(ContainSubstring("msg=RunDone"))
		})

		It("should generate a run ID", func() {
			bench := builder(newDevice(core.Adder{}, 32)).Build()

			_, err := uuid.Parse(bench.RunID())
			Expect(err).NotTo(HaveOccurred())
		})

		It("should refuse to build without a runtime", func() {
			Expect(func() { MakeBuilder().Build() }).To(Panic())
		})
	})
})
