package compiler

import (
	"log/slog"

	"github.com/sarchlab/bf2wasm/config"
)

// Builder can create new compilers.
type Builder struct {
	cfg       config.Config
	assembler Assembler
	logger    *slog.Logger
}

// NewBuilder returns a builder with the default configuration.
func NewBuilder() Builder {
	return Builder{
		cfg: config.Default(),
	}
}

// WithConfig sets the configuration.
func (b Builder) WithConfig(cfg config.Config) Builder {
	b.cfg = cfg
	return b
}

// WithAssembler sets the collaborator that turns text into a binary module.
func (b Builder) WithAssembler(a Assembler) Builder {
	b.assembler = a
	return b
}

// WithLogger sets the logger. The default logger is used otherwise.
func (b Builder) WithLogger(l *slog.Logger) Builder {
	b.logger = l
	return b
}

// Build creates a compiler.
func (b Builder) Build() *Compiler {
	if err := b.cfg.Validate(); err != nil {
		panic("invalid config: " + err.Error())
	}

	if b.cfg.Target == config.TargetWasm && b.assembler == nil {
		panic("the wasm target needs an assembler")
	}

	c := &Compiler{
		cfg:       b.cfg,
		assembler: b.assembler,
		logger:    b.logger,
	}

	if c.logger == nil {
		c.logger = slog.Default()
	}

	return c
}
