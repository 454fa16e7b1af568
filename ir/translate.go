package ir

import (
	"fmt"

	"github.com/sarchlab/bf2wasm/lexer"
)

// Options tune the translator.
type Options struct {
	// Optimize enables the loop optimizer. With it off every loop stays a
	// jump pair.
	Optimize bool
}

// DefaultOptions has every optimization on.
func DefaultOptions() Options {
	return Options{Optimize: true}
}

// Stats summarizes one translation.
type Stats struct {
	Instructions int
	Ops          int
	Loops        int
	Reduced      map[Kind]int
}

// ReducedTotal is the number of loops replaced by a single op.
func (s Stats) ReducedTotal() int {
	total := 0
	for _, n := range s.Reduced {
		total += n
	}

	return total
}

type openLoop struct {
	index int
	pos   lexer.Pos
}

type translator struct {
	opts  Options
	ops   []Op
	loops []openLoop
	stats Stats
}

// Translate builds optimized IR from tokens.
func Translate(tokens []lexer.Token) ([]Op, error) {
	ops, _, err := TranslateWith(tokens, DefaultOptions())
	return ops, err
}

// TranslateWith builds IR from tokens in one forward pass, folding runs of
// identical instructions and balancing brackets into jump pairs.
func TranslateWith(tokens []lexer.Token, opts Options) ([]Op, Stats, error) {
	t := &translator{
		opts:  opts,
		stats: Stats{Instructions: len(tokens), Reduced: make(map[Kind]int)},
	}

	pc := 0
	for pc < len(tokens) {
		tok := tokens[pc]

		switch tok.Char {
		case lexer.Open:
			t.openLoop(tok)
			pc++
		case lexer.Close:
			if err := t.closeLoop(tok); err != nil {
				return nil, t.stats, err
			}
			pc++
		default:
			n, err := t.appendRun(tokens[pc:])
			if err != nil {
				return nil, t.stats, err
			}
			pc += n
		}
	}

	if len(t.loops) > 0 {
		innermost := t.loops[len(t.loops)-1]
		return nil, t.stats, &MismatchedLoopError{Pos: innermost.pos, Open: true}
	}

	t.stats.Ops = len(t.ops)

	return t.ops, t.stats, nil
}

func (t *translator) openLoop(tok lexer.Token) {
	t.loops = append(t.loops, openLoop{index: len(t.ops), pos: tok.Pos})
	t.ops = append(t.ops, Op{Kind: JumpIfZero})
}

func (t *translator) closeLoop(tok lexer.Token) error {
	if len(t.loops) == 0 {
		return &MismatchedLoopError{Pos: tok.Pos}
	}

	start := t.loops[len(t.loops)-1].index
	t.loops = t.loops[:len(t.loops)-1]

	if t.opts.Optimize {
		if replacement := OptimizeLoop(t.ops, start); len(replacement) > 0 {
			t.ops = append(t.ops[:start], replacement...)
			for _, op := range replacement {
				t.stats.Reduced[op.Kind]++
			}

			return nil
		}
	}

	t.ops[start].Arg = len(t.ops)
	t.ops = append(t.ops, Op{Kind: JumpIfNotZero, Arg: start})
	t.stats.Loops++

	return nil
}

// appendRun folds the run of identical instructions at the head of tokens
// into one op and returns the run length.
func (t *translator) appendRun(tokens []lexer.Token) (int, error) {
	c := tokens[0].Char

	n := 1
	for n < len(tokens) && tokens[n].Char == c {
		n++
	}

	kind, ok := kindOf(c)
	if !ok {
		return 0, fmt.Errorf("%w: unexpected instruction %q at %s", ErrMalformed, c, tokens[0].Pos)
	}

	t.ops = append(t.ops, Op{Kind: kind, Arg: n})

	return n, nil
}

// Validate checks that every jump has a partner pointing back at it and that
// loop pairs nest.
func Validate(ops []Op) error {
	var open []int

	for i, op := range ops {
		switch op.Kind {
		case JumpIfZero:
			if op.Arg <= i || op.Arg >= len(ops) ||
				ops[op.Arg].Kind != JumpIfNotZero || ops[op.Arg].Arg != i {
				return fmt.Errorf("%w: JumpIfZero at %d has no partner", ErrMalformed, i)
			}

			open = append(open, i)
		case JumpIfNotZero:
			if len(open) == 0 || open[len(open)-1] != op.Arg {
				return fmt.Errorf("%w: JumpIfNotZero at %d does not close the innermost loop", ErrMalformed, i)
			}

			open = open[:len(open)-1]
		}
	}

	if len(open) > 0 {
		return fmt.Errorf("%w: %d loops left open", ErrMalformed, len(open))
	}

	return nil
}
