package verify

import (
	"io"

	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/bf2wasm/lexer"
)

// RunOptions configure Interpret.
type RunOptions struct {
	TapeSize     int
	PointerStart int
	MaxSteps     int
}

// DefaultRunOptions matches the default WebAssembly layout.
func DefaultRunOptions() RunOptions {
	return RunOptions{
		TapeSize:     65536,
		PointerStart: 16,
		MaxSteps:     10_000_000,
	}
}

// Interpret runs tokens to completion on a fresh serial engine and returns
// the number of instructions executed.
func Interpret(tokens []lexer.Token, stdin io.Reader, stdout io.Writer, opts RunOptions) (int, error) {
	engine := sim.NewSerialEngine()

	m := MakeInterpreterBuilder().
		WithEngine(engine).
		WithTapeSize(opts.TapeSize).
		WithPointerStart(opts.PointerStart).
		WithMaxSteps(opts.MaxSteps).
		WithInput(stdin).
		WithOutput(stdout).
		Build("Interpreter")

	if err := m.Load(tokens); err != nil {
		return 0, err
	}

	if m.Done() {
		return 0, nil
	}

	m.TickLater()

	if err := engine.Run(); err != nil {
		return m.Steps(), err
	}

	return m.Steps(), m.Err()
}
