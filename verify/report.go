package verify

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
)

// WriteMismatches writes one line per mismatching element. Values are
// printed as unsigned 32-bit words.
func (r Result) WriteMismatches(w io.Writer) error {
	for _, m := range r.Mismatches {
		_, err := fmt.Fprintf(w,
			"[%d] Verification error, out: %d != expected: %d\n",
			m.Index, uint32(m.Observed), uint32(m.Expected))
		if err != nil {
			return err
		}
	}

	return nil
}

// Verdict returns the final line of a report.
func (r Result) Verdict() string {
	if r.Passed() {
		return "Test passed OK!"
	}

	return "Test failed."
}

// RenderTable renders the first limit mismatches as a table. A limit of zero
// or less renders all of them.
func (r Result) RenderTable(limit int) string {
	t := table.NewWriter()
	t.SetTitle(fmt.Sprintf("%d of %d elements mismatched",
		len(r.Mismatches), r.Size))
	t.AppendHeader(table.Row{"Index", "Observed", "Expected", "Diff bits"})

	for i, m := range r.Mismatches {
		if limit > 0 && i >= limit {
			t.AppendFooter(table.Row{"...",
				fmt.Sprintf("%d more", len(r.Mismatches)-limit), "", ""})
			break
		}

		t.AppendRow(table.Row{
			m.Index,
			m.Observed,
			m.Expected,
			fmt.Sprintf("%#08x", uint32(m.Observed)^uint32(m.Expected)),
		})
	}

	return t.Render()
}
