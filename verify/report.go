package verify

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/sarchlab/bf2wasm/lexer"
)

// Executor runs a compiled program.
type Executor interface {
	Execute(ctx context.Context, stdin io.Reader, stdout io.Writer) error
}

// VerificationReport compares the reference interpreter with an Executor on one input.
type VerificationReport struct {
	Input        []byte
	Expected     []byte
	Actual       []byte
	Steps        int
	ReferenceErr error
	ExecuteErr   error
}

// GenerateReport runs both sides on stdin and returns a report
func GenerateReport(
	ctx context.Context,
	tokens []lexer.Token,
	stdin []byte,
	exec Executor,
	opts RunOptions,
) *VerificationReport {
	r := &VerificationReport{Input: stdin}

	var expected, actual bytes.Buffer

	r.Steps, r.ReferenceErr = Interpret(tokens, bytes.NewReader(stdin), &expected, opts)
	r.ExecuteErr = exec.Execute(ctx, bytes.NewReader(stdin), &actual)

	r.Expected = expected.Bytes()
	r.Actual = actual.Bytes()

	return r
}

// OK is true when both sides finished cleanly with identical output.
func (r *VerificationReport) OK() bool {
	return r.ReferenceErr == nil && r.ExecuteErr == nil && bytes.Equal(r.Expected, r.Actual)
}

// FirstDiff is the offset of the first differing output byte, or -1.
func (r *VerificationReport) FirstDiff() int {
	n := min(len(r.Expected), len(r.Actual))
	for i := 0; i < n; i++ {
		if r.Expected[i] != r.Actual[i] {
			return i
		}
	}

	if len(r.Expected) != len(r.Actual) {
		return n
	}

	return -1
}

// WriteReport writes a formatted report to a writer
func (r *VerificationReport) WriteReport(w io.Writer) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle("Differential check")
	t.AppendHeader(table.Row{"", "Reference", "Compiled"})
	t.AppendRow(table.Row{"output bytes", len(r.Expected), len(r.Actual)})
	t.AppendRow(table.Row{"error", errText(r.ReferenceErr), errText(r.ExecuteErr)})
	t.AppendFooter(table.Row{"steps", r.Steps, ""})
	t.Render()

	if r.OK() {
		fmt.Fprintln(w, "PASS: outputs are identical")
		return
	}

	if d := r.FirstDiff(); d >= 0 {
		fmt.Fprintf(w, "FAIL: outputs differ at byte %d\n", d)
		fmt.Fprintf(w, "  reference: %s\n", excerpt(r.Expected, d))
		fmt.Fprintf(w, "  compiled:  %s\n", excerpt(r.Actual, d))

		return
	}

	fmt.Fprintln(w, "FAIL: one side stopped with an error")
}

func errText(err error) string {
	if err == nil {
		return "-"
	}

	return err.Error()
}

func excerpt(b []byte, at int) string {
	lo := max(0, at-8)
	hi := min(len(b), at+8)

	if lo >= hi {
		return "<end>"
	}

	return strings.TrimSpace(fmt.Sprintf("%q", b[lo:hi]))
}
