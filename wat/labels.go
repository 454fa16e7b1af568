package wat

import (
	"errors"
	"fmt"
)

// ErrLabelStackImbalance means the IR handed to the generator did not nest.
// The translator never produces such IR, so seeing it is a defect.
var ErrLabelStackImbalance = errors.New("internal error: label stack imbalance")

// LabelStack hands out increasing label ids and tracks which loop constructs
// are open in the emitted text.
type LabelStack struct {
	next  int
	stack []int
}

// Push opens a construct under a fresh label id.
func (s *LabelStack) Push() int {
	id := s.next
	s.next++
	s.stack = append(s.stack, id)

	return id
}

// Pop closes the innermost construct and returns its label id.
func (s *LabelStack) Pop() (int, error) {
	if len(s.stack) == 0 {
		return 0, fmt.Errorf("%w: pop on empty stack", ErrLabelStackImbalance)
	}

	id := s.stack[len(s.stack)-1]
	s.stack = s.stack[:len(s.stack)-1]

	return id, nil
}

// Depth is the number of open constructs.
func (s *LabelStack) Depth() int {
	return len(s.stack)
}

func loopLabel(id int) string {
	return fmt.Sprintf("$loop_%d", id)
}
