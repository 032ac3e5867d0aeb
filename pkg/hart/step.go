package hart

import (
	"github.com/bassosimone/rv32emu/pkg/decode"
	"github.com/bassosimone/rv32emu/pkg/jitcore"
)

// Step executes up to cycles instructions, or fewer if Halt is called
// from within an ECALL/EBREAK handler along the way, or if dispatch
// returns false. dispatch returns false whenever it has already
// redirected the PC itself — a taken branch/jump, MRET, or a trap —
// and every one of those, per §4.3's dispatch rule 1, ends the Step
// call immediately rather than continuing to the next iteration: the
// reference core's rv_step returns the moment any such handler runs,
// never falling through to its cycle-counting EXEC epilogue. The cycle
// counter (Mcycle) advances once per completed instruction; a trapped
// instruction does not advance it, matching §4.3/§7's "never partially
// retire a trapping instruction" rule.
func (h *Hart) Step(cycles int) {
	for i := 0; i < cycles; i++ {
		if h.halted {
			return
		}
		raw := h.IO.MemIfetch(h.PC)
		in := decode.Decode(raw, h.Ext)
		if !h.stepOne(in) {
			return
		}
	}
}

// StepBlock replays a jitcore.Block's already-decoded instructions in
// place of Step's own fetch/decode, so a caller driving a cached block
// skips re-fetching and re-decoding every instruction on every pass
// through it. b must start at the hart's current PC. It applies the
// same dispatch-returns-false-stops-immediately rule Step does: for a
// well-formed block that triggers on its last instruction when it is a
// taken branch, a jump, or MRET, and earlier on any instruction that
// traps, in which case StepBlock stops at the trapping instruction
// instead of running on through the rest of the cached run. It returns the
// number of instructions it attempted, for callers tracking a step
// budget.
func (h *Hart) StepBlock(b *jitcore.Block) int {
	n := 0
	for _, in := range b.Instructions {
		if h.halted {
			return n
		}
		n++
		if !h.stepOne(in) {
			return n
		}
	}
	return n
}

// stepOne dispatches one already-decoded instruction at the hart's
// current PC and applies the retirement/advance bookkeeping Step and
// StepBlock share. It reports whether the caller should continue on
// to the next instruction.
func (h *Hart) stepOne(in decode.Instruction) bool {
	pc := h.PC
	h.InsnLen = in.Width
	h.trapped = false

	advance := h.dispatch(in, pc)
	h.X[0] = 0 // x0 reads zero immediately after every instruction

	if !advance {
		// dispatch already redirected PC itself (trap, taken
		// branch/jump, or MRET); do not touch it here. A trapped
		// instruction does not retire; anything else that still
		// redirects control flow does.
		if !h.trapped {
			h.Mcycle++
		}
		return false
	}

	h.PC = pc + uint32(in.Width)
	h.Mcycle++
	return true
}

// dispatch runs the semantics for one decoded instruction and reports
// whether the step loop should advance PC sequentially (true) or
// whether the handler already set PC itself, either because it is a
// taken branch/jump/MRET or because it raised a trap (false).
func (h *Hart) dispatch(in decode.Instruction, pc uint32) bool {
	switch in.Op {
	case decode.Unknown:
		h.illegalInstruction(in.Raw)
		return false

	case decode.OpLUI:
		h.SetReg(in.Rd, uint32(in.Imm))
		return true
	case decode.OpAUIPC:
		h.SetReg(in.Rd, pc+uint32(in.Imm))
		return true

	case decode.OpJAL:
		return h.execJAL(in, pc)
	case decode.OpJALR:
		return h.execJALR(in, pc)

	case decode.OpBEQ, decode.OpBNE, decode.OpBLT, decode.OpBGE, decode.OpBLTU, decode.OpBGEU:
		return h.execBranch(in, pc)

	case decode.OpLB, decode.OpLH, decode.OpLW, decode.OpLBU, decode.OpLHU:
		return h.execLoad(in, pc)
	case decode.OpSB, decode.OpSH, decode.OpSW:
		return h.execStore(in, pc)

	case decode.OpADDI, decode.OpSLTI, decode.OpSLTIU, decode.OpXORI, decode.OpORI, decode.OpANDI,
		decode.OpSLLI, decode.OpSRLI, decode.OpSRAI:
		h.execOpImm(in)
		return true

	case decode.OpADD, decode.OpSUB, decode.OpSLL, decode.OpSLT, decode.OpSLTU,
		decode.OpXOR, decode.OpSRL, decode.OpSRA, decode.OpOR, decode.OpAND:
		h.execOp(in)
		return true

	case decode.OpFENCE, decode.OpFENCEI:
		return true // no-ops: the host is single-threaded

	case decode.OpECALL:
		h.IO.OnECall()
		return true
	case decode.OpEBREAK:
		h.IO.OnEBreak()
		return true
	case decode.OpMRET:
		h.PC = h.Mepc
		return false
	case decode.OpURET, decode.OpSRET, decode.OpHRET, decode.OpWFI:
		h.illegalInstruction(in.Raw)
		return false

	case decode.OpCSRRW, decode.OpCSRRS, decode.OpCSRRC, decode.OpCSRRWI, decode.OpCSRRSI, decode.OpCSRRCI:
		h.execCSR(in)
		return true

	case decode.OpMUL, decode.OpMULH, decode.OpMULHSU, decode.OpMULHU,
		decode.OpDIV, decode.OpDIVU, decode.OpREM, decode.OpREMU:
		h.execM(in)
		return true

	case decode.OpLRW, decode.OpSCW, decode.OpAMOSWAPW, decode.OpAMOADDW, decode.OpAMOXORW,
		decode.OpAMOANDW, decode.OpAMOORW, decode.OpAMOMINW, decode.OpAMOMAXW,
		decode.OpAMOMINUW, decode.OpAMOMAXUW:
		h.execAMO(in)
		return true

	case decode.OpFLW, decode.OpFSW:
		return h.execFMem(in, pc)

	case decode.OpFMADDS, decode.OpFMSUBS, decode.OpFNMSUBS, decode.OpFNMADDS,
		decode.OpFADDS, decode.OpFSUBS, decode.OpFMULS, decode.OpFDIVS, decode.OpFSQRTS,
		decode.OpFSGNJS, decode.OpFSGNJNS, decode.OpFSGNJXS, decode.OpFMINS, decode.OpFMAXS,
		decode.OpFCVTWS, decode.OpFCVTWUS, decode.OpFCVTSW, decode.OpFCVTSWU,
		decode.OpFMVXW, decode.OpFMVWX, decode.OpFEQS, decode.OpFLTS, decode.OpFLES, decode.OpFCLASSS:
		h.execF(in)
		return true
	}
	h.illegalInstruction(in.Raw)
	return false
}

func (h *Hart) illegalInstruction(raw uint32) {
	h.trap(ExcIllegalInstruction, h.PC, raw)
	h.trapped = true
}
