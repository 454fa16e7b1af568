package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/bf2wasm/config"
)

var _ = Describe("outputPath", func() {
	It("should swap the extension for the target", func() {
		Expect(outputPath("progs/hello.bf", config.TargetWasm)).To(Equal("hello.wasm"))
		Expect(outputPath("hello.b", config.TargetWat)).To(Equal("hello.wat"))
		Expect(outputPath("/tmp/noext", config.TargetLLVM)).To(Equal("noext.ll"))
	})
})

var _ = Describe("parseArgs", func() {
	It("should require one input", func() {
		var stderr bytes.Buffer

		_, err := parseArgs([]string{"-O0"}, &stderr)

		Expect(err).To(MatchError(errUsage))
		Expect(stderr.String()).To(ContainSubstring("Usage: bf2wasm"))
	})

	It("should let set flags override the config file", func() {
		dir := GinkgoT().TempDir()
		path := filepath.Join(dir, "bf2wasm.yaml")
		Expect(os.WriteFile(path, []byte("target: llvm\nlog:\n  level: warn\n"), 0o644)).To(Succeed())

		o, err := parseArgs([]string{"-config", path, "-log-level", "debug", "-O0", "in.bf"}, &bytes.Buffer{})
		Expect(err).NotTo(HaveOccurred())

		cfg, err := o.config()

		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Target).To(Equal(config.TargetLLVM))
		Expect(cfg.Log.Level).To(Equal("debug"))
		Expect(cfg.Optimize).To(BeFalse())
	})

	It("should reject an unknown target", func() {
		o, err := parseArgs([]string{"-target", "elf", "in.bf"}, &bytes.Buffer{})
		Expect(err).NotTo(HaveOccurred())

		_, err = o.config()

		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("app", func() {
	var (
		stdin          *strings.Reader
		stdout, stderr *bytes.Buffer
		dir            string
	)

	BeforeEach(func() {
		stdin = strings.NewReader("")
		stdout = &bytes.Buffer{}
		stderr = &bytes.Buffer{}
		dir = GinkgoT().TempDir()
	})

	run := func(args ...string) int {
		return app{stdin: stdin, stdout: stdout, stderr: stderr}.run(context.Background(), args)
	}

	testdata := func(name string) string {
		return filepath.Join("..", "..", "testdata", name)
	}

	It("should write WebAssembly text", func() {
		out := filepath.Join(dir, "hello.wat")

		Expect(run("-target", "wat", "-o", out, testdata("hello.bf"))).To(Equal(exitOK))

		text, err := os.ReadFile(out)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(text)).To(HavePrefix("(module"))
	})

	It("should write a binary module", func() {
		out := filepath.Join(dir, "hello.wasm")

		Expect(run("-o", out, testdata("hello.bf"))).To(Equal(exitOK))

		bin, err := os.ReadFile(out)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(bin)).To(HavePrefix("\x00asm"))
	})

	It("should dump the IR", func() {
		Expect(run("-target", "llvm", "-dump-ir", "-o", filepath.Join(dir, "add.ll"), testdata("add.bf"))).
			To(Equal(exitOK))

		Expect(stdout.String()).To(ContainSubstring("Transfer"))
	})

	It("should run the module", func() {
		stdin = strings.NewReader("abc")

		Expect(run("-run", "-o", filepath.Join(dir, "r.wasm"), testdata("reverse.bf"))).To(Equal(exitOK))

		Expect(stdout.String()).To(Equal("cba"))
	})

	It("should verify against the interpreter", func() {
		stdin = strings.NewReader("meow")

		Expect(run("-verify", "-O0", "-o", filepath.Join(dir, "c.wasm"), testdata("cat.bf"))).To(Equal(exitOK))

		Expect(stdout.String()).To(ContainSubstring("PASS"))
	})

	It("should refuse to run text output", func() {
		Expect(run("-run", "-target", "wat", testdata("cat.bf"))).To(Equal(exitUsage))

		Expect(stderr.String()).To(ContainSubstring("-run and -verify need the wasm target"))
	})

	It("should report a mismatched loop", func() {
		src := filepath.Join(dir, "bad.bf")
		Expect(os.WriteFile(src, []byte("+[\n>"), 0o644)).To(Succeed())

		Expect(run("-o", filepath.Join(dir, "bad.wasm"), src)).To(Equal(exitFail))

		Expect(stderr.String()).To(ContainSubstring("unclosed '['"))
		Expect(stderr.String()).To(ContainSubstring("1:2"))
	})

	It("should show usage without an input", func() {
		Expect(run()).To(Equal(exitUsage))
	})

	It("should exit cleanly for -h", func() {
		Expect(run("-h")).To(Equal(exitOK))
	})
})
