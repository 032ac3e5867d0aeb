package hart

import "github.com/bassosimone/rv32emu/pkg/decode"

// execAMO implements the A-extension load-reserved/store-conditional
// and atomic-memory-operation instructions. The effective address is
// always the contents of rs1 (X[rs1]), not the register number itself,
// and every access goes through MemReadWord/MemWriteWord: the reference
// C core computed the address from rs1's register index for two AMO
// opcodes and stored one result with a narrower-than-word helper;
// neither is reproduced here.
//
// The reservation LR.W establishes is a single boolean, kept only as
// bookkeeping (cleared by any AMO/SC.W): it does not gate SC.W's
// outcome. SC.W always stores and always reports success, matching
// the reservation logic the reference core marks as unimplemented and
// defers (its FIXME next to an unconditional store and an rd=0
// success result).
func (h *Hart) execAMO(in decode.Instruction) {
	addr := h.GetReg(in.Rs1)

	if in.Op == decode.OpLRW {
		h.SetReg(in.Rd, h.IO.MemReadWord(addr))
		h.reserved = true
		return
	}
	if in.Op == decode.OpSCW {
		h.IO.MemWriteWord(addr, h.GetReg(in.Rs2))
		h.SetReg(in.Rd, 0)
		h.reserved = false
		return
	}

	old := h.IO.MemReadWord(addr)
	rhs := h.GetReg(in.Rs2)
	var next uint32
	switch in.Op {
	case decode.OpAMOSWAPW:
		next = rhs
	case decode.OpAMOADDW:
		next = old + rhs
	case decode.OpAMOXORW:
		next = old ^ rhs
	case decode.OpAMOANDW:
		next = old & rhs
	case decode.OpAMOORW:
		next = old | rhs
	case decode.OpAMOMINW:
		if int32(old) < int32(rhs) {
			next = old
		} else {
			next = rhs
		}
	case decode.OpAMOMAXW:
		if int32(old) > int32(rhs) {
			next = old
		} else {
			next = rhs
		}
	case decode.OpAMOMINUW:
		if old < rhs {
			next = old
		} else {
			next = rhs
		}
	case decode.OpAMOMAXUW:
		if old > rhs {
			next = old
		} else {
			next = rhs
		}
	}
	h.IO.MemWriteWord(addr, next)
	h.SetReg(in.Rd, old)
	h.reserved = false
}
