// Package compiler runs the whole pipeline from source text to an output
// artifact for the configured target.
package compiler

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/sarchlab/bf2wasm/config"
	"github.com/sarchlab/bf2wasm/ir"
	"github.com/sarchlab/bf2wasm/lexer"
	"github.com/sarchlab/bf2wasm/llvmgen"
	"github.com/sarchlab/bf2wasm/util"
	"github.com/sarchlab/bf2wasm/verify"
	"github.com/sarchlab/bf2wasm/wat"
)

// ErrInternal marks a defect in the compiler itself rather than in the
// program being compiled.
var ErrInternal = errors.New("internal compiler error")

// Assembler turns WebAssembly text into a binary module.
type Assembler interface {
	Assemble(text string) ([]byte, error)
}

// Result is everything one compilation produced.
type Result struct {
	Target config.Target
	Tokens []lexer.Token
	Ops    []ir.Op
	Stats  ir.Stats
	Text   string
	Binary []byte
}

// Output is the artifact to write for the target: the binary module for
// wasm and the text otherwise.
func (r *Result) Output() []byte {
	if r.Target == config.TargetWasm {
		return r.Binary
	}

	return []byte(r.Text)
}

// Compiler compiles programs with a fixed configuration.
type Compiler struct {
	cfg       config.Config
	assembler Assembler
	logger    *slog.Logger
}

// CompileString compiles src.
func (c *Compiler) CompileString(src string) (*Result, error) {
	return c.Compile(strings.NewReader(src))
}

// CompileFile compiles the file at path.
func (c *Compiler) CompileFile(path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return c.Compile(f)
}

// Compile reads a whole program from src and compiles it.
func (c *Compiler) Compile(src io.Reader) (*Result, error) {
	tokens, err := lexer.Lex(src)
	if err != nil {
		return nil, err
	}

	util.TraceTo(c.logger, "lexed", slog.Int("instructions", len(tokens)))

	ops, stats, err := ir.TranslateWith(tokens, ir.Options{Optimize: c.cfg.Optimize})
	if err != nil {
		return nil, err
	}

	if err := ir.Validate(ops); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInternal, err)
	}

	util.TraceTo(c.logger, "translated",
		slog.Int("ops", stats.Ops),
		slog.Int("loops", stats.Loops),
		slog.Int("reduced", stats.ReducedTotal()),
	)

	res := &Result{
		Target: c.cfg.Target,
		Tokens: tokens,
		Ops:    ops,
		Stats:  stats,
	}

	switch c.cfg.Target {
	case config.TargetLLVM:
		err = c.emitLLVM(res)
	default:
		err = c.emitWat(res)
	}

	if err != nil {
		return nil, err
	}

	if c.cfg.Target == config.TargetWasm {
		res.Binary, err = c.assembler.Assemble(res.Text)
		if err != nil {
			return nil, fmt.Errorf("assemble: %w", err)
		}

		util.TraceTo(c.logger, "assembled", slog.Int("bytes", len(res.Binary)))
	}

	c.logger.Info("compiled",
		slog.String("target", string(res.Target)),
		slog.Int("instructions", stats.Instructions),
		slog.Int("ops", stats.Ops),
		slog.Int("loops_reduced", stats.ReducedTotal()),
	)

	return res, nil
}

func (c *Compiler) emitWat(res *Result) error {
	text, body, err := wat.ModuleLines(res.Ops, c.cfg.WatLayout())
	if err != nil {
		if errors.Is(err, wat.ErrLabelStackImbalance) {
			return fmt.Errorf("%w: %w", ErrInternal, err)
		}

		return err
	}

	if issues := verify.Lint(body); len(issues) > 0 {
		for _, issue := range issues {
			c.logger.Error("lint", slog.String("issue", issue.String()))
		}

		return fmt.Errorf("%w: emitted text has %d lint issues, first: %s",
			ErrInternal, len(issues), issues[0])
	}

	util.TraceTo(c.logger, "generated", slog.Int("lines", len(body)))

	res.Text = text

	return nil
}

func (c *Compiler) emitLLVM(res *Result) error {
	text, err := llvmgen.Generate(res.Ops, c.cfg.LLVMOptions())
	if err != nil {
		if errors.Is(err, llvmgen.ErrUnbalanced) {
			return fmt.Errorf("%w: %w", ErrInternal, err)
		}

		return err
	}

	util.TraceTo(c.logger, "generated", slog.Int("bytes", len(text)))

	res.Text = text

	return nil
}
