// Package assembler converts WebAssembly text into the binary module format.
package assembler

import (
	"fmt"

	"github.com/bytecodealliance/wasmtime-go/v25"
)

// Wasmtime assembles text with the wasmtime text parser.
type Wasmtime struct{}

// New returns a Wasmtime assembler.
func New() Wasmtime {
	return Wasmtime{}
}

// Assemble returns the binary encoding of a module given as text.
func (Wasmtime) Assemble(text string) ([]byte, error) {
	bin, err := wasmtime.Wat2Wasm(text)
	if err != nil {
		return nil, fmt.Errorf("wat2wasm: %w", err)
	}

	return bin, nil
}
