// Package config loads compiler settings from YAML.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sarchlab/bf2wasm/llvmgen"
	"github.com/sarchlab/bf2wasm/wat"
)

// Target selects what the compiler produces.
type Target string

const (
	TargetWasm Target = "wasm"
	TargetWat  Target = "wat"
	TargetLLVM Target = "llvm"
)

// Extension is the default output file extension for the target.
func (t Target) Extension() string {
	switch t {
	case TargetWat:
		return ".wat"
	case TargetLLVM:
		return ".ll"
	default:
		return ".wasm"
	}
}

// Valid reports whether t names a known target.
func (t Target) Valid() bool {
	return t == TargetWasm || t == TargetWat || t == TargetLLVM
}

// Layout mirrors wat.Layout with YAML names.
type Layout struct {
	ImportModule string `yaml:"import_module"`
	Entry        string `yaml:"entry"`
	MemoryPages  int    `yaml:"memory_pages"`
	IOVecOffset  int    `yaml:"iovec_offset"`
	ResultOffset int    `yaml:"result_offset"`
	PointerStart int    `yaml:"pointer_start"`
}

// Log configures the process logger.
type Log struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// Verify configures the reference interpreter.
type Verify struct {
	MaxSteps int `yaml:"max_steps"`
}

// Config is the whole settings file.
type Config struct {
	Target   Target `yaml:"target"`
	Optimize bool   `yaml:"optimize"`
	Layout   Layout `yaml:"layout"`
	Log      Log    `yaml:"log"`
	Verify   Verify `yaml:"verify"`
}

// Default returns the settings used when no file is given.
func Default() Config {
	l := wat.DefaultLayout()

	return Config{
		Target:   TargetWasm,
		Optimize: true,
		Layout: Layout{
			ImportModule: l.ImportModule,
			Entry:        l.Entry,
			MemoryPages:  l.MemoryPages,
			IOVecOffset:  l.IOVecOffset,
			ResultOffset: l.ResultOffset,
			PointerStart: l.PointerStart,
		},
		Log:    Log{Level: "info"},
		Verify: Verify{MaxSteps: 10_000_000},
	}
}

// Load reads a YAML file on top of Default.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}

	return cfg, nil
}

// Parse decodes YAML on top of Default. Unknown keys are errors.
func Parse(data []byte) (Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks the target and layout.
func (c Config) Validate() error {
	if !c.Target.Valid() {
		return fmt.Errorf("unknown target %q", c.Target)
	}

	if c.Verify.MaxSteps <= 0 {
		return fmt.Errorf("verify.max_steps must be positive, got %d", c.Verify.MaxSteps)
	}

	return c.WatLayout().Validate()
}

// WatLayout converts the layout section for the WebAssembly generator.
func (c Config) WatLayout() wat.Layout {
	return wat.Layout{
		ImportModule: c.Layout.ImportModule,
		Entry:        c.Layout.Entry,
		MemoryPages:  c.Layout.MemoryPages,
		IOVecOffset:  c.Layout.IOVecOffset,
		ResultOffset: c.Layout.ResultOffset,
		PointerStart: c.Layout.PointerStart,
	}
}

// LLVMOptions sizes the LLVM tape like the WebAssembly memory.
func (c Config) LLVMOptions() llvmgen.Options {
	return llvmgen.Options{
		TapeSize:     c.Layout.MemoryPages * 65536,
		PointerStart: c.Layout.PointerStart,
	}
}

// TapeSize is the number of addressable cells, staging area included.
func (c Config) TapeSize() int {
	return c.Layout.MemoryPages * 65536
}
