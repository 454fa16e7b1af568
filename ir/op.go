// Package ir defines the stack-machine intermediate representation and the
// translator that builds it from lexed instructions.
//
// A program is a flat []Op. Loops are jump pairs: the JumpIfZero at index i
// carries the index of its JumpIfNotZero and vice versa. Loops the optimizer
// recognizes are replaced by a single op and leave no jump pair behind.
package ir

import "fmt"

// Kind tags an Op.
type Kind int

const (
	IncPtr Kind = iota
	DecPtr
	IncData
	DecData
	ReadByte
	WriteByte
	SetZero
	ScanPtr
	Transfer
	JumpIfZero
	JumpIfNotZero
)

var kindNames = [...]string{
	IncPtr:        "IncPtr",
	DecPtr:        "DecPtr",
	IncData:       "IncData",
	DecData:       "DecData",
	ReadByte:      "ReadByte",
	WriteByte:     "WriteByte",
	SetZero:       "SetZero",
	ScanPtr:       "ScanPtr",
	Transfer:      "Transfer",
	JumpIfZero:    "JumpIfZero",
	JumpIfNotZero: "JumpIfNotZero",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}

	return kindNames[k]
}

// IsJump reports whether k is one half of a loop jump pair.
func (k Kind) IsJump() bool {
	return k == JumpIfZero || k == JumpIfNotZero
}

// Op is one IR operation. Arg is a repeat count for the run-length kinds, a
// signed pointer offset for ScanPtr and Transfer, and the paired jump's
// index for the jump kinds.
type Op struct {
	Kind Kind
	Arg  int
}

func (o Op) String() string {
	return fmt.Sprintf("%s(%d)", o.Kind, o.Arg)
}

// kindOf maps a run-length instruction character to its op kind.
func kindOf(c byte) (Kind, bool) {
	switch c {
	case '>':
		return IncPtr, true
	case '<':
		return DecPtr, true
	case '+':
		return IncData, true
	case '-':
		return DecData, true
	case ',':
		return ReadByte, true
	case '.':
		return WriteByte, true
	}

	return 0, false
}
