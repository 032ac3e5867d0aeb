package hart

import (
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/require"

	"github.com/bassosimone/rv32emu/pkg/decode"
	"github.com/bassosimone/rv32emu/pkg/hostio"
	"github.com/bassosimone/rv32emu/pkg/jitcore"
)

func allExtensions() decode.Extensions {
	return decode.Extensions{M: true, A: true, F: true, C: true, Zicsr: true, Zifencei: true}
}

func newTestHart(t *testing.T) (*Hart, *hostio.FlatMemory) {
	t.Helper()
	fm := hostio.NewFlatMemory(nil, nil)
	h := New(fm, nil, allExtensions())
	return h, fm
}

func store32(fm *hostio.FlatMemory, addr, word uint32) {
	fm.Mem.WriteWord(addr, word)
}

func store16(fm *hostio.FlatMemory, addr uint32, half uint16) {
	fm.Mem.WriteHalf(addr, half)
}

func TestADDIChain(t *testing.T) {
	h, fm := newTestHart(t)
	store32(fm, 0, 0x00500093) // addi x1, x0, 5
	store32(fm, 4, 0x00708093) // addi x1, x1, 7
	h.Step(2)
	require.EqualValues(t, 12, h.GetReg(1))
	require.EqualValues(t, 8, h.GetPC())
}

func TestLUIAndAUIPC(t *testing.T) {
	h, fm := newTestHart(t)
	h.PC = 0x1000
	store32(fm, 0x1000, 0x12345137) // lui x2, 0x12345
	store32(fm, 0x1004, 0x00001197) // auipc x3, 0x1
	h.Step(2)
	require.EqualValues(t, 0x12345000, h.GetReg(2))
	require.EqualValues(t, 0x1004+0x1000, h.GetReg(3))
}

func TestSignedDivisionOverflowDoesNotTrap(t *testing.T) {
	h, fm := newTestHart(t)
	store32(fm, 0, 0x800002b7) // lui x5, 0x80000  (x5 = INT_MIN)
	store32(fm, 4, 0xfff00313) // addi x6, x0, -1
	store32(fm, 8, 0x0262c233) // div x4, x5, x6
	h.Step(3)
	require.EqualValues(t, int32(-0x80000000), int32(h.GetReg(4)))
	require.False(t, h.trapped)
}

func TestDivisionByZero(t *testing.T) {
	h, fm := newTestHart(t)
	store32(fm, 0, 0x00500093) // addi x1, x0, 5
	store32(fm, 4, 0x0200c2b3) // div x5, x1, x0   (divisor x0 == 0)
	h.Step(2)
	require.EqualValues(t, ^uint32(0), h.GetReg(5))
}

func TestMisalignedWordLoadTraps(t *testing.T) {
	h, fm := newTestHart(t)
	h.Mtvec = 0x8000 // direct mode
	store32(fm, 0, 0x00100393) // addi x7, x0, 1
	store32(fm, 4, 0x0003a403) // lw x8, 0(x7)  -- addr 1 is misaligned
	h.Step(2)
	require.EqualValues(t, ExcLoadMisaligned, h.Mcause)
	require.EqualValues(t, 4, h.Mepc)
	require.EqualValues(t, 1, h.Mtval)
	require.EqualValues(t, 0x8000, h.GetPC())
	require.EqualValues(t, 1, h.Mcycle, "the trapping LW must not retire, so only the ADDI advances the cycle counter")
}

func TestCompressedJAL(t *testing.T) {
	h, fm := newTestHart(t)
	h.PC = 0x1000
	store16(fm, 0x1000, 0x2021) // c.jal +8
	h.Step(1)
	require.EqualValues(t, 0x1000+8, h.GetPC())
	require.EqualValues(t, 0x1000+2, h.GetReg(1), "c.jal links ra to the instruction after the (2-byte) jump")
}

func TestFMinPropagatesThroughNaN(t *testing.T) {
	h, _ := newTestHart(t)
	h.F[1] = 0x7fc00000 // canonical quiet NaN
	h.F[2] = 0x3f800000 // 1.0
	got, invalid := fMinMax(f32(h.F[1]), f32(h.F[2]), true)
	require.EqualValues(t, float32(1.0), got)
	require.True(t, invalid)
}

func TestFMinSetsInvalidOpFlagThroughFullInstruction(t *testing.T) {
	h, _ := newTestHart(t)
	h.F[1] = 0x7fc00000 // canonical quiet NaN
	h.F[2] = 0x3f800000 // 1.0
	in := decode.Instruction{Op: decode.OpFMINS, Rd: 3, Rs1: 1, Rs2: 2}
	h.execF(in)
	require.EqualValues(t, float32(1.0), fGetF(h, 3))
	require.NotZero(t, h.Fcsr&fflagNV, "FMIN.S over a NaN operand must raise fcsr's invalid-operation bit")
}

func TestFLTSignalsInvalidOnNaN(t *testing.T) {
	h, _ := newTestHart(t)
	h.F[1] = 0x7fc00000 // canonical quiet NaN
	h.F[2] = 0x3f800000 // 1.0
	in := decode.Instruction{Op: decode.OpFLTS, Rd: 3, Rs1: 1, Rs2: 2}
	h.execF(in)
	require.EqualValues(t, 0, h.GetReg(3))
	require.NotZero(t, h.Fcsr&fflagNV, "FLT.S is signalling: any NaN operand must raise fcsr's invalid-operation bit")
}

func TestAMOAddUsesRegisterValueAsAddress(t *testing.T) {
	h, fm := newTestHart(t)
	fm.Mem.WriteWord(0x100, 10)
	h.X[1] = 0x100 // rs1 holds the address, not a register index
	h.X[2] = 5     // rs2 holds the addend
	in := decode.Instruction{Op: decode.OpAMOADDW, Rd: 3, Rs1: 1, Rs2: 2}
	h.execAMO(in)
	require.EqualValues(t, 10, h.GetReg(3), "rd receives the value read before the update")
	require.EqualValues(t, 15, fm.Mem.ReadWord(0x100))
}

// TestBlockCacheReplayMatchesDirectStep verifies that StepBlock,
// replaying the decoded instruction stream a jitcore.Block captures
// for one basic block, produces exactly the same architectural state
// as driving the same instructions through the ordinary
// per-instruction Step loop. A divergence here would mean the block
// cache's decode-once-replay-many contract is unsound.
func TestBlockCacheReplayMatchesDirectStep(t *testing.T) {
	ext := decode.Extensions{}
	program := []struct {
		addr uint32
		word uint32
	}{
		{0, 0x00500093},  // addi x1, x0, 5
		{4, 0x00a08113},  // addi x2, x1, 10
		{8, 0x002081b3},  // add x3, x1, x2
		{12, 0x00000063}, // beq x0, x0, 0  -- block terminator, branches to itself
	}
	build := func() *Hart {
		fm := hostio.NewFlatMemory(nil, nil)
		for _, ins := range program {
			fm.Mem.WriteWord(ins.addr, ins.word)
		}
		return New(fm, nil, ext)
	}

	direct := build()
	direct.Step(len(program))

	replayed := build()
	block := jitcore.Translate(replayed.IO, ext, 0)
	require.Len(t, block.Instructions, len(program), "the branch must terminate the block, inclusive")
	replayed.StepBlock(block)

	if direct.X != replayed.X || direct.PC != replayed.PC || direct.Mcycle != replayed.Mcycle {
		t.Fatalf("interpreter and block-cache replay diverged:\ndirect:   %s\nreplayed: %s",
			spew.Sdump(direct), spew.Sdump(replayed))
	}
	require.Equal(t, direct.X, replayed.X)
	require.Equal(t, direct.PC, replayed.PC)
	require.Equal(t, direct.Mcycle, replayed.Mcycle)
}

func TestSCWAlwaysSucceeds(t *testing.T) {
	h, fm := newTestHart(t)
	fm.Mem.WriteWord(0x200, 1)
	h.X[1] = 0x200 // rs1 holds the address
	h.X[2] = 99    // rs2 holds the store value
	in := decode.Instruction{Op: decode.OpSCW, Rd: 3, Rs1: 1, Rs2: 2}
	h.execAMO(in) // no prior LR.W, so reserved is false
	require.EqualValues(t, 0, h.GetReg(3), "SC.W unconditionally reports success")
	require.EqualValues(t, 99, fm.Mem.ReadWord(0x200), "SC.W unconditionally stores")
}

func TestCSRReadOnlyAboveC00IgnoresWrites(t *testing.T) {
	h, _ := newTestHart(t)
	h.Mcycle = 42
	old := h.csrOp(CsrCycle, 0xffffffff, nil)
	require.EqualValues(t, 42, old)
	require.EqualValues(t, 42, h.csrRead(CsrCycle), "a write to a >=0xC00 CSR must be silently ignored")
}
