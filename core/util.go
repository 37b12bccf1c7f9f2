package core

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/sarchlab/akita/v4/sim"
	"github.com/sarchlab/cmdstream/dfe"
)

const (
	// LevelTrace is the slog level of burst and state traces.
	LevelTrace slog.Level = slog.LevelInfo + 1
)

// Trace logs a message at LevelTrace on the default logger.
func Trace(msg string, args ...any) {
	slog.Log(context.Background(), LevelTrace, msg, args...)
}

// BurstTracer is a hook that traces every burst a core moves.
type BurstTracer struct{}

// NewBurstTracer creates a BurstTracer.
func NewBurstTracer() *BurstTracer {
	return &BurstTracer{}
}

// Func logs the burst carried by the hook context.
func (t *BurstTracer) Func(ctx sim.HookCtx) {
	if ctx.Pos != HookPosBurst {
		return
	}

	info, ok := ctx.Item.(BurstInfo)
	if !ok {
		return
	}

	Trace("Burst",
		"Cmd", info.Cmd.Kind.String(),
		"ID", info.Cmd.ID,
		"Address", info.Address,
		"Bytes", info.Bytes,
		slog.Float64("Time", float64(info.Time*1e9)),
	)
}

// LogCommand records a retired command.
func LogCommand(c *Core, cmd *dfe.Command) {
	if cmd.Failed {
		slog.Debug("CommandFailed",
			"Core", c.Name(),
			"Cmd", cmd.Kind.String(),
			"ID", cmd.ID,
			"Error", cmd.Err,
		)

		return
	}

	slog.Debug("CommandDone",
		"Core", c.Name(),
		"Cmd", cmd.Kind.String(),
		"ID", cmd.ID,
		"Progress", cmd.Progress,
	)
}

// StateTable renders the counters and the pending commands of a core.
func StateTable(c *Core) string {
	t := table.NewWriter()
	t.SetTitle(fmt.Sprintf("%s (%s)", c.Name(), c.maxFile.Name))
	t.AppendHeader(table.Row{"Counter", "Value"})
	t.AppendRow(table.Row{"Bursts", c.stats.Bursts})
	t.AppendRow(table.Row{"Bytes written", c.stats.BytesWritten})
	t.AppendRow(table.Row{"Bytes read", c.stats.BytesRead})
	t.AppendRow(table.Row{"Elements computed", c.stats.Elements})
	t.AppendRow(table.Row{"Failed commands", c.stats.Failed})
	t.AppendRow(table.Row{"Pending commands", len(c.queue)})

	return t.Render()
}
