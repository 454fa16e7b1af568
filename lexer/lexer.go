// Package lexer turns source text into the stream of instruction characters
// the translator consumes.
package lexer

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Alphabet lists every significant character. Anything else is a comment.
const Alphabet = "><+-.,[]"

// Instruction characters.
const (
	IncPtr  byte = '>'
	DecPtr  byte = '<'
	IncData byte = '+'
	DecData byte = '-'
	Write   byte = '.'
	Read    byte = ','
	Open    byte = '['
	Close   byte = ']'
)

// Pos locates a token. Index counts instructions, Line and Col are 1-based
// and refer to the raw text.
type Pos struct {
	Index int
	Line  int
	Col   int
}

func (p Pos) String() string {
	return fmt.Sprintf("%d:%d (instruction %d)", p.Line, p.Col, p.Index)
}

// Token is one instruction character and where it was found.
type Token struct {
	Char byte
	Pos  Pos
}

func (t Token) String() string {
	return fmt.Sprintf("%q@%s", t.Char, t.Pos)
}

// IsInstruction reports whether c belongs to the alphabet.
func IsInstruction(c byte) bool {
	return strings.IndexByte(Alphabet, c) >= 0
}

// Lex reads r to the end and returns the instruction tokens in source order.
// The only errors are read errors from r.
func Lex(r io.Reader) ([]Token, error) {
	br := bufio.NewReader(r)

	var tokens []Token
	line, col := 1, 0

	for {
		c, err := br.ReadByte()
		if errors.Is(err, io.EOF) {
			return tokens, nil
		}

		if err != nil {
			return tokens, fmt.Errorf("lexer: read source: %w", err)
		}

		col++

		if c == '\n' {
			line++
			col = 0

			continue
		}

		if !IsInstruction(c) {
			continue
		}

		tokens = append(tokens, Token{
			Char: c,
			Pos:  Pos{Index: len(tokens), Line: line, Col: col},
		})
	}
}

// LexString is Lex over an in-memory source. It cannot fail.
func LexString(src string) []Token {
	tokens, err := Lex(strings.NewReader(src))
	if err != nil {
		panic(err)
	}

	return tokens
}

// Chars returns just the instruction characters of tokens.
func Chars(tokens []Token) []byte {
	chars := make([]byte, len(tokens))
	for i, t := range tokens {
		chars[i] = t.Char
	}

	return chars
}
