package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/sarchlab/bf2wasm/assembler"
	"github.com/sarchlab/bf2wasm/compiler"
	"github.com/sarchlab/bf2wasm/config"
	"github.com/sarchlab/bf2wasm/ir"
	"github.com/sarchlab/bf2wasm/runner"
	"github.com/sarchlab/bf2wasm/util"
	"github.com/sarchlab/bf2wasm/verify"
)

const (
	exitOK    = 0
	exitFail  = 1
	exitUsage = 2
)

type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func (a app) run(ctx context.Context, args []string) int {
	o, err := parseArgs(args, a.stderr)
	if errors.Is(err, flag.ErrHelp) {
		return exitOK
	}

	if err != nil {
		return exitUsage
	}

	cfg, err := o.config()
	if err != nil {
		fmt.Fprintln(a.stderr, "bf2wasm:", err)
		return exitUsage
	}

	level, err := util.ParseLevel(cfg.Log.Level)
	if err != nil {
		fmt.Fprintln(a.stderr, "bf2wasm:", err)
		return exitUsage
	}

	logger := util.SetupLogger(a.stderr, level, cfg.Log.JSON)

	if (o.run || o.verify) && cfg.Target != config.TargetWasm {
		fmt.Fprintf(a.stderr, "bf2wasm: -run and -verify need the %s target, not %s\n",
			config.TargetWasm, cfg.Target)
		return exitUsage
	}

	c := compiler.NewBuilder().
		WithConfig(cfg).
		WithAssembler(assembler.New()).
		WithLogger(logger).
		Build()

	res, err := c.CompileFile(o.input)
	if err != nil {
		logger.Error("compile failed", slog.String("input", o.input), slog.Any("err", err))
		return exitFail
	}

	if o.dumpIR {
		ir.Dump(a.stdout, res.Ops)
		ir.DumpStats(a.stdout, res.Stats)
	}

	out := o.output
	if out == "" {
		out = outputPath(o.input, cfg.Target)
	}

	if err := os.WriteFile(out, res.Output(), 0o644); err != nil {
		logger.Error("write failed", slog.Any("err", err))
		return exitFail
	}

	logger.Debug("wrote output", slog.String("path", out), slog.Int("bytes", len(res.Output())))

	if !o.run && !o.verify {
		return exitOK
	}

	return a.execute(ctx, o, cfg, res, logger)
}

// execute runs the binary on stdin. With -verify the reference interpreter
// sees the same input and the comparison decides the exit code.
func (a app) execute(
	ctx context.Context,
	o options,
	cfg config.Config,
	res *compiler.Result,
	logger *slog.Logger,
) int {
	m, err := runner.New(ctx, res.Binary, cfg.Layout.Entry)
	if err != nil {
		logger.Error("load failed", slog.Any("err", err))
		return exitFail
	}
	defer m.Close(ctx)

	if !o.verify {
		if err := m.Execute(ctx, a.stdin, a.stdout); err != nil {
			logger.Error("run failed", slog.Any("err", err))
			return exitFail
		}

		return exitOK
	}

	input, err := io.ReadAll(a.stdin)
	if err != nil {
		logger.Error("read stdin failed", slog.Any("err", err))
		return exitFail
	}

	r := verify.GenerateReport(ctx, res.Tokens, input, m, verify.RunOptions{
		TapeSize:     cfg.TapeSize(),
		PointerStart: cfg.Layout.PointerStart,
		MaxSteps:     cfg.Verify.MaxSteps,
	})
	r.WriteReport(a.stdout)

	if !r.OK() {
		return exitFail
	}

	return exitOK
}
