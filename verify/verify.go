// Package verify checks compiler output two ways.
//
// Lint is a static pass over emitted WebAssembly text: constructs must nest
// and every branch must name an enclosing construct. The compiler runs it on
// every module and treats a finding as an internal error.
//
// Interpreter is a reference implementation of the source language that
// runs the lexed instructions directly, without the translator or the
// optimizer. It is an akita ticking component that executes one instruction
// per tick, so it runs on any akita engine. Cells below the pointer start are
// reserved for the compiled module's I/O staging, and the interpreter treats
// an access to them as ErrPointerOutOfRange.
//
// GenerateReport runs the interpreter and an Executor (normally a compiled
// module on a WebAssembly runtime) on the same input and compares their
// output byte for byte.
//
// # Usage Example
//
//	tokens := lexer.LexString(src)
//	exec, _ := runner.New(ctx, result.Binary, "_start")
//	report := verify.GenerateReport(ctx, tokens, stdin, exec, verify.DefaultRunOptions())
//	report.WriteReport(os.Stdout)
//	if !report.OK() {
//	    os.Exit(1)
//	}
package verify
