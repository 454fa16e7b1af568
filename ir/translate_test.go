package ir_test

import (
	"bytes"
	"errors"
	"math/rand"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/bf2wasm/ir"
	"github.com/sarchlab/bf2wasm/lexer"
)

func translate(src string) ([]ir.Op, error) {
	return ir.Translate(lexer.LexString(src))
}

func mustTranslate(src string) []ir.Op {
	ops, err := translate(src)
	Expect(err).NotTo(HaveOccurred())
	Expect(ir.Validate(ops)).To(Succeed())

	return ops
}

var _ = Describe("Translate", func() {
	Context("run-length folding", func() {
		It("should fold a run into one op", func() {
			Expect(mustTranslate("+++")).To(Equal([]ir.Op{{Kind: ir.IncData, Arg: 3}}))
		})

		It("should fold every run-length kind", func() {
			Expect(mustTranslate(">>><<++---..,")).To(Equal([]ir.Op{
				{Kind: ir.IncPtr, Arg: 3},
				{Kind: ir.DecPtr, Arg: 2},
				{Kind: ir.IncData, Arg: 2},
				{Kind: ir.DecData, Arg: 3},
				{Kind: ir.WriteByte, Arg: 2},
				{Kind: ir.ReadByte, Arg: 1},
			}))
		})

		It("should fold across comments", func() {
			Expect(mustTranslate("+ + +\n+")).To(Equal([]ir.Op{{Kind: ir.IncData, Arg: 4}}))
		})

		It("should not fold different instructions", func() {
			Expect(mustTranslate("+-+")).To(Equal([]ir.Op{
				{Kind: ir.IncData, Arg: 1},
				{Kind: ir.DecData, Arg: 1},
				{Kind: ir.IncData, Arg: 1},
			}))
		})
	})

	Context("loops", func() {
		It("should pair jumps for a generic loop", func() {
			ops := mustTranslate("+[->+>-<<]")

			Expect(ops).To(Equal([]ir.Op{
				{Kind: ir.IncData, Arg: 1},
				{Kind: ir.JumpIfZero, Arg: 8},
				{Kind: ir.DecData, Arg: 1},
				{Kind: ir.IncPtr, Arg: 1},
				{Kind: ir.IncData, Arg: 1},
				{Kind: ir.IncPtr, Arg: 1},
				{Kind: ir.DecData, Arg: 1},
				{Kind: ir.DecPtr, Arg: 2},
				{Kind: ir.JumpIfNotZero, Arg: 1},
			}))
		})

		It("should keep an empty loop as a jump pair", func() {
			Expect(mustTranslate("[]")).To(Equal([]ir.Op{
				{Kind: ir.JumpIfZero, Arg: 1},
				{Kind: ir.JumpIfNotZero, Arg: 0},
			}))
		})

		It("should reduce [-] to SetZero", func() {
			Expect(mustTranslate("[-]")).To(Equal([]ir.Op{{Kind: ir.SetZero}}))
		})

		It("should reduce [>] and [<<] to pointer scans", func() {
			Expect(mustTranslate("[>]")).To(Equal([]ir.Op{{Kind: ir.ScanPtr, Arg: 1}}))
			Expect(mustTranslate("[<<]")).To(Equal([]ir.Op{{Kind: ir.ScanPtr, Arg: -2}}))
		})

		It("should reduce [->>+<<] to a transfer", func() {
			Expect(mustTranslate("[->>+<<]")).To(Equal([]ir.Op{{Kind: ir.Transfer, Arg: 2}}))
		})

		It("should reduce nested recognized loops and patch the outer pair", func() {
			ops := mustTranslate("+[>[-]<-]")

			Expect(ops).To(Equal([]ir.Op{
				{Kind: ir.IncData, Arg: 1},
				{Kind: ir.JumpIfZero, Arg: 6},
				{Kind: ir.IncPtr, Arg: 1},
				{Kind: ir.SetZero},
				{Kind: ir.DecPtr, Arg: 1},
				{Kind: ir.DecData, Arg: 1},
				{Kind: ir.JumpIfNotZero, Arg: 1},
			}))
		})

		It("should not reduce a loop whose body became a single reduced op", func() {
			Expect(mustTranslate("[[-]]")).To(Equal([]ir.Op{
				{Kind: ir.JumpIfZero, Arg: 2},
				{Kind: ir.SetZero},
				{Kind: ir.JumpIfNotZero, Arg: 0},
			}))
		})

		It("should keep jump pairs when optimization is off", func() {
			ops, stats, err := ir.TranslateWith(lexer.LexString("[-]"), ir.Options{})

			Expect(err).NotTo(HaveOccurred())
			Expect(ops).To(Equal([]ir.Op{
				{Kind: ir.JumpIfZero, Arg: 2},
				{Kind: ir.DecData, Arg: 1},
				{Kind: ir.JumpIfNotZero, Arg: 0},
			}))
			Expect(stats.Loops).To(Equal(1))
			Expect(stats.ReducedTotal()).To(BeZero())
		})
	})

	Context("stats", func() {
		It("should count instructions, ops and reductions", func() {
			_, stats, err := ir.TranslateWith(
				lexer.LexString("++[-]>[>]<[->+<][.>]"), ir.DefaultOptions())

			Expect(err).NotTo(HaveOccurred())
			Expect(stats.Instructions).To(Equal(20))
			Expect(stats.Reduced[ir.SetZero]).To(Equal(1))
			Expect(stats.Reduced[ir.ScanPtr]).To(Equal(1))
			Expect(stats.Reduced[ir.Transfer]).To(Equal(1))
			Expect(stats.Loops).To(Equal(1))
			Expect(stats.Ops).To(Equal(10))
		})
	})

	Context("mismatched loops", func() {
		DescribeTable("should reject unbalanced input",
			func(src string, open bool, index int) {
				_, err := translate(src)

				Expect(err).To(MatchError(ir.ErrMismatchedLoop))

				var mismatch *ir.MismatchedLoopError
				Expect(errors.As(err, &mismatch)).To(BeTrue())
				Expect(mismatch.Open).To(Equal(open))
				Expect(mismatch.Pos.Index).To(Equal(index))
			},
			Entry("two opens", "[[", true, 1),
			Entry("lone close", "]", false, 0),
			Entry("extra close", "[+]]", false, 3),
			Entry("open after balanced", "[-]+[", true, 4),
		)

		It("should report line and column", func() {
			_, err := translate("+\n ++]")

			Expect(err).To(MatchError(ContainSubstring("2:4")))
		})
	})

	It("should ignore non-instruction characters anywhere", func() {
		src := "++[>+++[>++<-]<-]>>.[-]>[<]>,[->>+<<]."
		want := mustTranslate(src)

		rng := rand.New(rand.NewSource(7))
		noise := "abcXYZ019 \n\t#!"

		for round := 0; round < 20; round++ {
			var b strings.Builder
			for i := 0; i < len(src); i++ {
				for n := rng.Intn(3); n > 0; n-- {
					b.WriteByte(noise[rng.Intn(len(noise))])
				}
				b.WriteByte(src[i])
			}

			Expect(mustTranslate(b.String())).To(Equal(want))
		}
	})
})

var _ = Describe("Translate with hand-built tokens", func() {
	It("should reject a token outside the alphabet", func() {
		tokens := lexer.LexString("++")
		tokens = append(tokens, lexer.Token{Char: 'x', Pos: lexer.Pos{Index: 2, Line: 1, Col: 3}})

		ops, err := ir.Translate(tokens)

		Expect(ops).To(BeNil())
		Expect(err).To(MatchError(ir.ErrMalformed))
		Expect(err.Error()).To(ContainSubstring("'x' at 1:3"))
	})
})

var _ = Describe("Validate", func() {
	It("should reject a jump without partner", func() {
		Expect(ir.Validate([]ir.Op{{Kind: ir.JumpIfZero, Arg: 0}})).To(MatchError(ir.ErrMalformed))
	})

	It("should reject crossed pairs", func() {
		ops := []ir.Op{
			{Kind: ir.JumpIfZero, Arg: 3},
			{Kind: ir.JumpIfZero, Arg: 2},
			{Kind: ir.JumpIfNotZero, Arg: 0},
			{Kind: ir.JumpIfNotZero, Arg: 1},
		}

		Expect(ir.Validate(ops)).To(MatchError(ir.ErrMalformed))
	})
})

var _ = Describe("Dump", func() {
	It("should list every op", func() {
		var buf bytes.Buffer

		ir.Dump(&buf, mustTranslate("+[>.<-]"))

		Expect(buf.String()).To(ContainSubstring("JumpIfZero"))
		Expect(buf.String()).To(ContainSubstring("-> 6"))
		Expect(buf.String()).To(ContainSubstring("WriteByte"))
	})
})
