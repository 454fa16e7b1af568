package ir

import (
	"errors"
	"fmt"

	"github.com/sarchlab/bf2wasm/lexer"
)

// ErrMismatchedLoop matches every MismatchedLoopError under errors.Is.
var ErrMismatchedLoop = errors.New("mismatched loop")

// ErrMalformed is returned by Validate for IR that breaks the jump pair
// invariant, and by Translate for a token outside the instruction alphabet.
var ErrMalformed = errors.New("malformed IR")

// MismatchedLoopError reports an unmatched bracket. Open is true for a '['
// that is never closed and false for a ']' with nothing to close.
type MismatchedLoopError struct {
	Pos  lexer.Pos
	Open bool
}

func (e *MismatchedLoopError) Error() string {
	if e.Open {
		return fmt.Sprintf("mismatched loop: unclosed '[' at %s", e.Pos)
	}

	return fmt.Sprintf("mismatched loop: unmatched ']' at %s", e.Pos)
}

// Is lets errors.Is(err, ErrMismatchedLoop) succeed.
func (e *MismatchedLoopError) Is(target error) bool {
	return target == ErrMismatchedLoop
}
