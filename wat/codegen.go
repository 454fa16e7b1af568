// Package wat generates WebAssembly text from IR.
//
// The program runs in one exported function. A mutable i32 global holds the
// cell pointer; cells are bytes of linear memory starting at
// Layout.PointerStart. Input and output go through two trampolines that
// move one byte between the current cell and a WASI fd_read/fd_write call.
package wat

import (
	"fmt"

	"github.com/sarchlab/bf2wasm/ir"
)

const (
	getPtr   = "global.get $ptr"
	setPtr   = "global.set $ptr"
	load     = "i32.load8_u"
	store    = "i32.store8"
	add      = "i32.add"
	sub      = "i32.sub"
	tempName = "$dst"
)

type generator struct {
	labels LabelStack
	lines  []string
}

// Generate returns the instruction lines of the entry function body, one
// instruction per line, without indentation.
func Generate(ops []ir.Op) ([]string, error) {
	g := &generator{
		lines: []string{fmt.Sprintf("(local %s i32)", tempName)},
	}

	for i, op := range ops {
		if err := g.emit(op); err != nil {
			return nil, fmt.Errorf("op %d %s: %w", i, op, err)
		}
	}

	if g.labels.Depth() != 0 {
		return nil, fmt.Errorf("%w: %d constructs left open", ErrLabelStackImbalance, g.labels.Depth())
	}

	return g.lines, nil
}

func (g *generator) put(lines ...string) {
	g.lines = append(g.lines, lines...)
}

func (g *generator) emit(op ir.Op) error {
	switch op.Kind {
	case ir.IncPtr:
		g.put(getPtr, constant(op.Arg), add, setPtr)
	case ir.DecPtr:
		g.put(getPtr, constant(op.Arg), sub, setPtr)
	case ir.IncData:
		g.put(getPtr, getPtr, load, constant(op.Arg), add, store)
	case ir.DecData:
		g.put(getPtr, getPtr, load, constant(op.Arg), sub, store)
	case ir.ReadByte:
		g.repeat("call $read_byte", op.Arg)
	case ir.WriteByte:
		g.repeat("call $write_byte", op.Arg)
	case ir.SetZero:
		g.put(getPtr, constant(0), store)
	case ir.ScanPtr:
		return g.emitScan(op.Arg)
	case ir.Transfer:
		g.emitTransfer(op.Arg)
	case ir.JumpIfZero:
		g.put("loop "+loopLabel(g.labels.Push()), getPtr, load, "if")
	case ir.JumpIfNotZero:
		id, err := g.labels.Pop()
		if err != nil {
			return err
		}

		g.put(getPtr, load, "if", "br "+loopLabel(id), "end", "end", "end")
	default:
		return fmt.Errorf("unknown op kind %s", op.Kind)
	}

	return nil
}

func (g *generator) repeat(line string, n int) {
	for i := 0; i < n; i++ {
		g.put(line)
	}
}

// emitScan moves the pointer by step until it lands on a zero cell.
func (g *generator) emitScan(step int) error {
	id := g.labels.Push()

	g.put(
		"loop "+loopLabel(id),
		getPtr, load,
		"if",
		getPtr, constant(step), add, setPtr,
		"br "+loopLabel(id),
		"end",
	)

	if _, err := g.labels.Pop(); err != nil {
		return err
	}

	g.put("end")

	return nil
}

// emitTransfer adds the current cell into the cell offset away and clears
// the current cell. One pass is the whole effect of the source loop.
func (g *generator) emitTransfer(offset int) {
	g.put(
		getPtr, load,
		"if",
		getPtr, constant(offset), add, "local.set "+tempName,
		"local.get "+tempName,
		getPtr, load,
		"local.get "+tempName, load,
		add,
		store,
		getPtr, constant(0), store,
		"end",
	)
}

func constant(v int) string {
	return fmt.Sprintf("i32.const %d", v)
}
