package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/sarchlab/bf2wasm/config"
)

var errUsage = errors.New("expected exactly one input file")

type options struct {
	input      string
	output     string
	configPath string
	target     string
	noOpt      bool
	dumpIR     bool
	run        bool
	verify     bool
	logLevel   string
	logJSON    bool

	set map[string]bool
}

func parseArgs(args []string, stderr io.Writer) (options, error) {
	var o options

	fs := flag.NewFlagSet("bf2wasm", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "Usage: bf2wasm [flags] <input>")
		fs.PrintDefaults()
	}

	fs.StringVar(&o.output, "o", "", "output path (default: input base name with the target extension)")
	fs.StringVar(&o.configPath, "config", "", "YAML configuration file")
	fs.StringVar(&o.target, "target", string(config.TargetWasm), "output kind: wasm, wat or llvm")
	fs.BoolVar(&o.noOpt, "O0", false, "keep every loop, skip loop reduction")
	fs.BoolVar(&o.dumpIR, "dump-ir", false, "print the IR and translation stats")
	fs.BoolVar(&o.run, "run", false, "run the compiled module on stdin and stdout")
	fs.BoolVar(&o.verify, "verify", false, "run the module and the reference interpreter on stdin and compare")
	fs.StringVar(&o.logLevel, "log-level", "info", "trace, debug, info, warn or error")
	fs.BoolVar(&o.logJSON, "log-json", false, "log as JSON")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	if fs.NArg() != 1 {
		fs.Usage()
		return options{}, errUsage
	}

	o.input = fs.Arg(0)

	o.set = make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		o.set[f.Name] = true
	})

	return o, nil
}

// config layers explicitly set flags over the file or the defaults.
func (o options) config() (config.Config, error) {
	cfg := config.Default()

	if o.configPath != "" {
		var err error

		cfg, err = config.Load(o.configPath)
		if err != nil {
			return config.Config{}, err
		}
	}

	if o.set["target"] {
		cfg.Target = config.Target(o.target)
	}

	if o.noOpt {
		cfg.Optimize = false
	}

	if o.set["log-level"] {
		cfg.Log.Level = o.logLevel
	}

	if o.set["log-json"] {
		cfg.Log.JSON = o.logJSON
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}

	return cfg, nil
}

func outputPath(input string, target config.Target) string {
	base := filepath.Base(input)
	return strings.TrimSuffix(base, filepath.Ext(base)) + target.Extension()
}
