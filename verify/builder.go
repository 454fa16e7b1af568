package verify

import (
	"io"

	"github.com/sarchlab/akita/v4/sim"
)

// InterpreterBuilder can create new interpreters.
type InterpreterBuilder struct {
	engine       sim.Engine
	freq         sim.Freq
	tapeSize     int
	pointerStart int
	maxSteps     int
	in           io.Reader
	out          io.Writer
}

// MakeInterpreterBuilder returns a builder with the default tape.
func MakeInterpreterBuilder() InterpreterBuilder {
	opts := DefaultRunOptions()

	return InterpreterBuilder{
		freq:         1 * sim.GHz,
		tapeSize:     opts.TapeSize,
		pointerStart: opts.PointerStart,
		maxSteps:     opts.MaxSteps,
	}
}

// WithEngine sets the engine.
func (b InterpreterBuilder) WithEngine(engine sim.Engine) InterpreterBuilder {
	b.engine = engine
	return b
}

// WithFreq sets the frequency of the interpreter.
func (b InterpreterBuilder) WithFreq(freq sim.Freq) InterpreterBuilder {
	b.freq = freq
	return b
}

// WithTapeSize sets the number of cells.
func (b InterpreterBuilder) WithTapeSize(n int) InterpreterBuilder {
	b.tapeSize = n
	return b
}

// WithPointerStart sets the initial cell pointer. Cells below it are not
// addressable.
func (b InterpreterBuilder) WithPointerStart(addr int) InterpreterBuilder {
	b.pointerStart = addr
	return b
}

// WithMaxSteps bounds the run. Zero means no bound.
func (b InterpreterBuilder) WithMaxSteps(n int) InterpreterBuilder {
	b.maxSteps = n
	return b
}

// WithInput sets where ',' reads from.
func (b InterpreterBuilder) WithInput(r io.Reader) InterpreterBuilder {
	b.in = r
	return b
}

// WithOutput sets where '.' writes to.
func (b InterpreterBuilder) WithOutput(w io.Writer) InterpreterBuilder {
	b.out = w
	return b
}

// Build creates an interpreter.
func (b InterpreterBuilder) Build(name string) *Interpreter {
	if b.tapeSize <= 0 {
		panic("tape size must be positive")
	}

	if b.pointerStart < 0 || b.pointerStart >= b.tapeSize {
		panic("pointer start must be on the tape")
	}

	m := &Interpreter{
		tape:     make([]byte, b.tapeSize),
		base:     b.pointerStart,
		ptr:      b.pointerStart,
		in:       b.in,
		out:      b.out,
		maxSteps: b.maxSteps,
		done:     true,
	}

	if m.in == nil {
		m.in = eofReader{}
	}

	if m.out == nil {
		m.out = io.Discard
	}

	m.TickingComponent = sim.NewTickingComponent(name, b.engine, b.freq, m)

	return m
}

type eofReader struct{}

func (eofReader) Read([]byte) (int, error) {
	return 0, io.EOF
}
