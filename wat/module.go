package wat

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sarchlab/bf2wasm/ir"
)

// Layout fixes where the generated module keeps its state and how it talks
// to the host.
type Layout struct {
	// ImportModule is the module name fd_read and fd_write are imported from.
	ImportModule string
	// Entry is the export name of the program function.
	Entry string
	// MemoryPages is the size of linear memory in 64 KiB pages.
	MemoryPages int
	// IOVecOffset is where the trampolines build their one-entry iovec.
	IOVecOffset int
	// ResultOffset receives nread/nwritten.
	ResultOffset int
	// PointerStart is the initial cell pointer. Everything below it is
	// reserved for I/O staging.
	PointerStart int
}

// DefaultLayout targets WASI preview1 with one page of memory.
func DefaultLayout() Layout {
	return Layout{
		ImportModule: "wasi_snapshot_preview1",
		Entry:        "_start",
		MemoryPages:  1,
		IOVecOffset:  0,
		ResultOffset: 8,
		PointerStart: 16,
	}
}

// Validate rejects layouts whose staging area overlaps the tape.
func (l Layout) Validate() error {
	switch {
	case l.ImportModule == "":
		return errors.New("layout: import module is empty")
	case l.Entry == "":
		return errors.New("layout: entry name is empty")
	case l.MemoryPages < 1:
		return fmt.Errorf("layout: memory pages must be positive, got %d", l.MemoryPages)
	case l.IOVecOffset < 0 || l.IOVecOffset%4 != 0:
		return fmt.Errorf("layout: iovec offset %d must be non-negative and 4-aligned", l.IOVecOffset)
	case l.ResultOffset < 0 || l.ResultOffset%4 != 0:
		return fmt.Errorf("layout: result offset %d must be non-negative and 4-aligned", l.ResultOffset)
	case overlaps(l.IOVecOffset, 8, l.ResultOffset, 4):
		return errors.New("layout: iovec and result overlap")
	case l.PointerStart < l.IOVecOffset+8 || l.PointerStart < l.ResultOffset+4:
		return fmt.Errorf("layout: pointer start %d is inside the staging area", l.PointerStart)
	case l.PointerStart >= l.MemoryPages*65536:
		return fmt.Errorf("layout: pointer start %d is outside memory", l.PointerStart)
	}

	return nil
}

func overlaps(a, alen, b, blen int) bool {
	return a < b+blen && b < a+alen
}

const moduleHeader = `(module
    (import "%[1]s" "fd_read" (func $fd_read (param i32 i32 i32 i32) (result i32)))
    (import "%[1]s" "fd_write" (func $fd_write (param i32 i32 i32 i32) (result i32)))

    (memory $mem %[2]d)
    (export "memory" (memory $mem))
    (global $ptr (mut i32) (i32.const %[3]d))

    (func $write_byte
        (i32.store (i32.const %[4]d) (global.get $ptr))
        (i32.store (i32.const %[5]d) (i32.const 1))
        (call $fd_write (i32.const 1) (i32.const %[4]d) (i32.const 1) (i32.const %[6]d))
        drop
    )

    (func $read_byte
        (i32.store (i32.const %[4]d) (global.get $ptr))
        (i32.store (i32.const %[5]d) (i32.const 1))
        (call $fd_read (i32.const 0) (i32.const %[4]d) (i32.const 1) (i32.const %[6]d))
        drop
    )

    (func $main (export "%[7]s")
`

// Module renders a complete module for ops.
func Module(ops []ir.Op, layout Layout) (string, error) {
	text, _, err := ModuleLines(ops, layout)
	return text, err
}

// ModuleLines is Module that also returns the raw body lines.
func ModuleLines(ops []ir.Op, layout Layout) (string, []string, error) {
	if err := layout.Validate(); err != nil {
		return "", nil, err
	}

	body, err := Generate(ops)
	if err != nil {
		return "", nil, err
	}

	var b strings.Builder

	fmt.Fprintf(&b, moduleHeader,
		layout.ImportModule,
		layout.MemoryPages,
		layout.PointerStart,
		layout.IOVecOffset,
		layout.IOVecOffset+4,
		layout.ResultOffset,
		layout.Entry,
	)
	writeIndented(&b, body, 2)
	b.WriteString("    )\n)\n")

	return b.String(), body, nil
}

// writeIndented writes lines indented four spaces per nesting level.
func writeIndented(b *strings.Builder, lines []string, base int) {
	depth := base

	for _, line := range lines {
		if line == "end" {
			depth--
		}

		b.WriteString(strings.Repeat("    ", depth))
		b.WriteString(line)
		b.WriteByte('\n')

		if opensBlock(line) {
			depth++
		}
	}
}

func opensBlock(line string) bool {
	op, _, _ := strings.Cut(line, " ")
	return op == "loop" || op == "if" || op == "block"
}
