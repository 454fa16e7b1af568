package ir

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
)

// Dump writes ops as a table with one row per op.
func Dump(w io.Writer, ops []Op) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(fmt.Sprintf("IR (%d ops)", len(ops)))
	t.AppendHeader(table.Row{"#", "Kind", "Arg", "Depth"})

	depth := 0
	for i, op := range ops {
		if op.Kind == JumpIfNotZero {
			depth--
		}

		arg := fmt.Sprintf("%d", op.Arg)
		if op.Kind.IsJump() {
			arg = fmt.Sprintf("-> %d", op.Arg)
		}

		t.AppendRow(table.Row{i, op.Kind, arg, depth})

		if op.Kind == JumpIfZero {
			depth++
		}
	}

	t.Render()
}

// DumpStats writes a one-table summary of a translation.
func DumpStats(w io.Writer, s Stats) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle("Translation")
	t.AppendHeader(table.Row{"Metric", "Count"})
	t.AppendRows([]table.Row{
		{"instructions", s.Instructions},
		{"ops", s.Ops},
		{"loops kept", s.Loops},
		{"loops -> SetZero", s.Reduced[SetZero]},
		{"loops -> ScanPtr", s.Reduced[ScanPtr]},
		{"loops -> Transfer", s.Reduced[Transfer]},
	})
	t.Render()
}
