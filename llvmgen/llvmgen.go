// Package llvmgen lowers IR to textual LLVM IR. The tape is a zero
// initialised byte array global, the pointer an i64 global, and I/O goes
// through libc getchar and putchar.
package llvmgen

import (
	"errors"
	"fmt"

	llvm "github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"github.com/sarchlab/bf2wasm/ir"
)

// ErrUnbalanced means the IR jump pairs do not nest.
var ErrUnbalanced = errors.New("internal error: unbalanced loops")

// Options sizes the tape.
type Options struct {
	TapeSize     int
	PointerStart int
}

// DefaultOptions matches the default WebAssembly layout.
func DefaultOptions() Options {
	return Options{TapeSize: 65536, PointerStart: 16}
}

type loopBlocks struct {
	cond, exit *llvm.Block
}

type lowering struct {
	fn      *llvm.Func
	cur     *llvm.Block
	tape    *llvm.Global
	tapeTyp *types.ArrayType
	ptr     *llvm.Global
	getchar *llvm.Func
	putchar *llvm.Func

	loops  []loopBlocks
	blocks int
}

// Generate returns the LLVM IR module for ops.
func Generate(ops []ir.Op, opts Options) (string, error) {
	if opts.TapeSize <= 0 || opts.PointerStart < 0 || opts.PointerStart >= opts.TapeSize {
		return "", fmt.Errorf("llvmgen: bad tape size %d / pointer start %d", opts.TapeSize, opts.PointerStart)
	}

	m := llvm.NewModule()

	l := &lowering{tapeTyp: types.NewArray(uint64(opts.TapeSize), types.I8)}
	l.tape = m.NewGlobalDef("tape", constant.NewZeroInitializer(l.tapeTyp))
	l.ptr = m.NewGlobalDef("ptr", constant.NewInt(types.I64, int64(opts.PointerStart)))
	l.getchar = m.NewFunc("getchar", types.I32)
	l.putchar = m.NewFunc("putchar", types.I32, llvm.NewParam("c", types.I32))

	l.fn = m.NewFunc("main", types.I32)
	l.cur = l.fn.NewBlock("entry")

	for i, op := range ops {
		if err := l.lower(op); err != nil {
			return "", fmt.Errorf("llvmgen: op %d %s: %w", i, op, err)
		}
	}

	if len(l.loops) != 0 {
		return "", fmt.Errorf("llvmgen: %w: %d loops left open", ErrUnbalanced, len(l.loops))
	}

	l.cur.NewRet(constant.NewInt(types.I32, 0))

	return m.String(), nil
}

func (l *lowering) newBlock(role string) *llvm.Block {
	b := l.fn.NewBlock(fmt.Sprintf("b%d.%s", l.blocks, role))
	l.blocks++

	return b
}

func (l *lowering) cell() value.Value {
	idx := l.cur.NewLoad(types.I64, l.ptr)
	return l.cellAt(idx)
}

func (l *lowering) cellAt(idx value.Value) value.Value {
	return l.cur.NewGetElementPtr(l.tapeTyp, l.tape, constant.NewInt(types.I64, 0), idx)
}

func (l *lowering) movePtr(delta int) {
	p := l.cur.NewLoad(types.I64, l.ptr)
	l.cur.NewStore(l.cur.NewAdd(p, constant.NewInt(types.I64, int64(delta))), l.ptr)
}

func (l *lowering) addCell(delta int) {
	c := l.cell()
	v := l.cur.NewLoad(types.I8, c)
	l.cur.NewStore(l.cur.NewAdd(v, byteConst(delta)), c)
}

func byteConst(v int) *constant.Int {
	return constant.NewInt(types.I8, int64(int8(uint8(v))))
}

// loopHead branches into a fresh condition block that tests the current
// cell and leaves l.cur at the body.
func (l *lowering) loopHead() loopBlocks {
	lb := loopBlocks{cond: l.newBlock("cond")}
	body := l.newBlock("body")
	lb.exit = l.newBlock("exit")

	l.cur.NewBr(lb.cond)

	l.cur = lb.cond
	v := l.cur.NewLoad(types.I8, l.cell())
	nonZero := l.cur.NewICmp(enum.IPredNE, v, constant.NewInt(types.I8, 0))
	l.cur.NewCondBr(nonZero, body, lb.exit)

	l.cur = body

	return lb
}

func (l *lowering) loopTail(lb loopBlocks) {
	l.cur.NewBr(lb.cond)
	l.cur = lb.exit
}

func (l *lowering) lower(op ir.Op) error {
	switch op.Kind {
	case ir.IncPtr:
		l.movePtr(op.Arg)
	case ir.DecPtr:
		l.movePtr(-op.Arg)
	case ir.IncData:
		l.addCell(op.Arg)
	case ir.DecData:
		l.addCell(-op.Arg)
	case ir.WriteByte:
		for i := 0; i < op.Arg; i++ {
			v := l.cur.NewLoad(types.I8, l.cell())
			l.cur.NewCall(l.putchar, l.cur.NewZExt(v, types.I32))
		}
	case ir.ReadByte:
		for i := 0; i < op.Arg; i++ {
			l.readByte()
		}
	case ir.SetZero:
		l.cur.NewStore(constant.NewInt(types.I8, 0), l.cell())
	case ir.ScanPtr:
		lb := l.loopHead()
		l.movePtr(op.Arg)
		l.loopTail(lb)
	case ir.Transfer:
		l.transfer(op.Arg)
	case ir.JumpIfZero:
		l.loops = append(l.loops, l.loopHead())
	case ir.JumpIfNotZero:
		if len(l.loops) == 0 {
			return ErrUnbalanced
		}

		lb := l.loops[len(l.loops)-1]
		l.loops = l.loops[:len(l.loops)-1]
		l.loopTail(lb)
	default:
		return fmt.Errorf("unknown op kind %s", op.Kind)
	}

	return nil
}

// readByte stores getchar's result in the current cell unless it is EOF.
func (l *lowering) readByte() {
	store := l.newBlock("read")
	done := l.newBlock("read.done")

	c := l.cur.NewCall(l.getchar)
	eof := l.cur.NewICmp(enum.IPredEQ, c, constant.NewInt(types.I32, -1))
	l.cur.NewCondBr(eof, done, store)

	l.cur = store
	l.cur.NewStore(l.cur.NewTrunc(c, types.I8), l.cell())
	l.cur.NewBr(done)

	l.cur = done
}

func (l *lowering) transfer(offset int) {
	body := l.newBlock("move")
	done := l.newBlock("move.done")

	src := l.cell()
	v := l.cur.NewLoad(types.I8, src)
	nonZero := l.cur.NewICmp(enum.IPredNE, v, constant.NewInt(types.I8, 0))
	l.cur.NewCondBr(nonZero, body, done)

	l.cur = body
	p := l.cur.NewLoad(types.I64, l.ptr)
	dst := l.cellAt(l.cur.NewAdd(p, constant.NewInt(types.I64, int64(offset))))
	sum := l.cur.NewAdd(l.cur.NewLoad(types.I8, dst), v)
	l.cur.NewStore(sum, dst)
	l.cur.NewStore(constant.NewInt(types.I8, 0), src)
	l.cur.NewBr(done)

	l.cur = done
}
