package ir

// OptimizeLoop looks at the loop whose JumpIfZero sits at ops[start] and
// whose body runs to the end of ops. It returns the op that replaces the
// whole loop, or nil when the body is not a recognized shape.
//
// Recognized bodies:
//
//	[-] [+]            SetZero
//	[>>] [<<]          ScanPtr(+n / -n)
//	[->>+<<] [-<<+>>]  Transfer(+n / -n)
func OptimizeLoop(ops []Op, start int) []Op {
	body := ops[start+1:]

	switch len(body) {
	case 1:
		return optimizeSingle(body[0])
	case 4:
		return optimizeTransfer(body)
	}

	return nil
}

func optimizeSingle(op Op) []Op {
	switch op.Kind {
	case IncData, DecData:
		return []Op{{Kind: SetZero}}
	case IncPtr:
		return []Op{{Kind: ScanPtr, Arg: op.Arg}}
	case DecPtr:
		return []Op{{Kind: ScanPtr, Arg: -op.Arg}}
	}

	return nil
}

func optimizeTransfer(body []Op) []Op {
	dec, there, inc, back := body[0], body[1], body[2], body[3]

	if dec != (Op{Kind: DecData, Arg: 1}) || inc != (Op{Kind: IncData, Arg: 1}) {
		return nil
	}

	if there.Arg != back.Arg {
		return nil
	}

	switch {
	case there.Kind == IncPtr && back.Kind == DecPtr:
		return []Op{{Kind: Transfer, Arg: there.Arg}}
	case there.Kind == DecPtr && back.Kind == IncPtr:
		return []Op{{Kind: Transfer, Arg: -there.Arg}}
	}

	return nil
}
