// Package runner executes compiled modules on the wazero runtime with WASI
// preview1 wired to caller supplied stdin and stdout.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
	"github.com/tetratelabs/wazero/sys"
)

// Module is a compiled program ready to run any number of times.
type Module struct {
	runtime  wazero.Runtime
	compiled wazero.CompiledModule
	entry    string
}

// New compiles binary on a fresh runtime. entry names the exported function
// that runs the program.
func New(ctx context.Context, binary []byte, entry string) (*Module, error) {
	r := wazero.NewRuntime(ctx)

	if _, err := wasi_snapshot_preview1.Instantiate(ctx, r); err != nil {
		r.Close(ctx)
		return nil, fmt.Errorf("runner: instantiate wasi: %w", err)
	}

	compiled, err := r.CompileModule(ctx, binary)
	if err != nil {
		r.Close(ctx)
		return nil, fmt.Errorf("runner: compile: %w", err)
	}

	return &Module{runtime: r, compiled: compiled, entry: entry}, nil
}

// Execute instantiates a fresh copy of the module, so every run starts on a
// zeroed tape, and runs the entry function to completion.
func (m *Module) Execute(ctx context.Context, stdin io.Reader, stdout io.Writer) error {
	cfg := wazero.NewModuleConfig().
		WithName("").
		WithStdin(stdin).
		WithStdout(stdout).
		WithStartFunctions(m.entry)

	mod, err := m.runtime.InstantiateModule(ctx, m.compiled, cfg)
	if err != nil {
		var exit *sys.ExitError
		if errors.As(err, &exit) && exit.ExitCode() == 0 {
			return nil
		}

		return fmt.Errorf("runner: %w", err)
	}

	return mod.Close(ctx)
}

// Close releases the runtime.
func (m *Module) Close(ctx context.Context) error {
	return m.runtime.Close(ctx)
}
