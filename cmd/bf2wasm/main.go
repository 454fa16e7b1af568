// Command bf2wasm compiles a program to a WebAssembly module, WebAssembly
// text or LLVM IR, and can run or cross-check the result.
package main

import (
	"context"
	"os"

	"github.com/tebeka/atexit"
)

func main() {
	a := app{
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
	}

	atexit.Exit(a.run(context.Background(), os.Args[1:]))
}
