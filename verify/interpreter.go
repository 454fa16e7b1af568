package verify

import (
	"errors"
	"fmt"
	"io"

	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/bf2wasm/ir"
	"github.com/sarchlab/bf2wasm/lexer"
)

var (
	// ErrPointerOutOfRange is returned when a cell access falls off the tape.
	ErrPointerOutOfRange = errors.New("pointer out of range")
	// ErrStepLimit is returned when a program runs longer than MaxSteps.
	ErrStepLimit = errors.New("step limit exceeded")
)

// Interpreter runs lexed instructions one per tick.
type Interpreter struct {
	*sim.TickingComponent

	code  []byte
	jumps []int

	tape []byte
	base int
	ptr  int
	pc   int

	in  io.Reader
	out io.Writer

	steps    int
	maxSteps int

	done bool
	err  error
}

// Load installs a program and resets the machine. Brackets are matched here
// so that a bad program never starts.
func (m *Interpreter) Load(tokens []lexer.Token) error {
	jumps := make([]int, len(tokens))

	var open []int
	for i, t := range tokens {
		switch t.Char {
		case lexer.Open:
			open = append(open, i)
		case lexer.Close:
			if len(open) == 0 {
				return &ir.MismatchedLoopError{Pos: t.Pos}
			}

			j := open[len(open)-1]
			open = open[:len(open)-1]
			jumps[i], jumps[j] = j, i
		}
	}

	if len(open) > 0 {
		return &ir.MismatchedLoopError{Pos: tokens[open[len(open)-1]].Pos, Open: true}
	}

	m.code = lexer.Chars(tokens)
	m.jumps = jumps
	m.pc = 0
	m.steps = 0
	m.done = len(m.code) == 0
	m.err = nil

	return nil
}

// Tick executes one instruction.
func (m *Interpreter) Tick() (madeProgress bool) {
	if m.done {
		return false
	}

	if m.maxSteps > 0 && m.steps >= m.maxSteps {
		m.fail(fmt.Errorf("%w: %d steps", ErrStepLimit, m.maxSteps))
		return false
	}

	m.step()
	m.steps++

	if m.pc >= len(m.code) {
		m.done = true
	}

	return !m.done
}

func (m *Interpreter) step() {
	c := m.code[m.pc]

	switch c {
	case lexer.IncPtr:
		m.ptr++
	case lexer.DecPtr:
		m.ptr--
	case lexer.IncData:
		if cell := m.cell(); cell != nil {
			*cell++
		}
	case lexer.DecData:
		if cell := m.cell(); cell != nil {
			*cell--
		}
	case lexer.Write:
		m.write()
	case lexer.Read:
		m.read()
	case lexer.Open:
		if cell := m.cell(); cell != nil && *cell == 0 {
			m.pc = m.jumps[m.pc]
		}
	case lexer.Close:
		if cell := m.cell(); cell != nil && *cell != 0 {
			m.pc = m.jumps[m.pc]
		}
	}

	if !m.done {
		m.pc++
	}
}

// cell returns the current cell. Cells below base hold the compiled
// module's I/O staging and are out of range for programs.
func (m *Interpreter) cell() *byte {
	if m.ptr < m.base || m.ptr >= len(m.tape) {
		m.fail(fmt.Errorf("%w: cell %d at instruction %d", ErrPointerOutOfRange, m.ptr, m.pc))
		return nil
	}

	return &m.tape[m.ptr]
}

func (m *Interpreter) write() {
	cell := m.cell()
	if cell == nil {
		return
	}

	if _, err := m.out.Write([]byte{*cell}); err != nil {
		m.fail(fmt.Errorf("write output: %w", err))
	}
}

// read leaves the cell untouched at end of input.
func (m *Interpreter) read() {
	cell := m.cell()
	if cell == nil {
		return
	}

	var buf [1]byte

	_, err := io.ReadFull(m.in, buf[:])
	switch {
	case err == nil:
		*cell = buf[0]
	case errors.Is(err, io.EOF):
	default:
		m.fail(fmt.Errorf("read input: %w", err))
	}
}

func (m *Interpreter) fail(err error) {
	m.err = err
	m.done = true
}

// Done reports whether the program has stopped.
func (m *Interpreter) Done() bool {
	return m.done
}

// Err is the reason the program stopped early, if any.
func (m *Interpreter) Err() error {
	return m.err
}

// Steps is the number of instructions executed.
func (m *Interpreter) Steps() int {
	return m.steps
}

// Cell returns the tape byte at addr.
func (m *Interpreter) Cell(addr int) byte {
	return m.tape[addr]
}

// Pointer is the current cell address.
func (m *Interpreter) Pointer() int {
	return m.ptr
}
