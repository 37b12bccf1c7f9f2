package main

import (
	_ "embed"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/sarchlab/akita/v4/monitoring"
	"github.com/sarchlab/akita/v4/sim"
	"github.com/sarchlab/cmdstream/api"
	"github.com/sarchlab/cmdstream/config"
	"github.com/sarchlab/cmdstream/core"
	"github.com/sarchlab/cmdstream/testbench"
	"github.com/sarchlab/cmdstream/valgen"
	"github.com/tebeka/atexit"
)

// Exit status of a run that could not complete.
const statusFatal = 2

//go:embed cmdstream.yaml
var platformYAML []byte

func loadPlatform() (config.Platform, error) {
	if path := os.Getenv("CMDSTREAM_CONFIG"); path != "" {
		return config.LoadPlatformFile(path)
	}

	return config.ParsePlatform(platformYAML)
}

func setupLogging(p config.Platform, w io.Writer) {
	level := slog.LevelWarn
	if p.Trace {
		level = core.LevelTrace
	}

	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	})

	slog.SetDefault(slog.New(handler))
}

func cmdStream(p config.Platform, stdout, stderr io.Writer) int {
	engine := sim.NewSerialEngine()

	var monitor *monitoring.Monitor
	if p.Monitor {
		monitor = monitoring.NewMonitor()
		monitor.RegisterEngine(engine)
	}

	driver := api.DriverBuilder{}.
		WithEngine(engine).
		WithStream(p.Stream).
		Build()

	deviceBuilder := config.MakeDeviceBuilder().
		WithEngine(engine).
		WithPlatform(p).
		WithMonitor(monitor)
	if p.Trace {
		deviceBuilder = deviceBuilder.WithTracer(core.NewBurstTracer())
	}

	device := deviceBuilder.Build("Device")
	driver.RegisterDevice(device)

	if monitor != nil {
		monitor.StartServer()
	}

	bench := testbench.MakeBuilder().
		WithRuntime(driver).
		WithSize(p.Size).
		WithStream(p.Stream).
		WithGen(valgen.MakeRandomGen(valgen.NewSource(p.Seed))).
		WithReport(p.Report).
		WithStdout(stdout).
		WithStderr(stderr).
		Build()

	result, err := bench.Run()

	if p.Trace {
		core.Trace("DeviceState", "Table", core.StateTable(device))
	}

	if err != nil {
		fmt.Fprintln(stderr, err)
		return statusFatal
	}

	return result.Status()
}

func main() {
	p, err := loadPlatform()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		atexit.Exit(statusFatal)
	}

	setupLogging(p, os.Stderr)

	atexit.Exit(cmdStream(p, os.Stdout, os.Stderr))
}
