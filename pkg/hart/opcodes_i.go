package hart

import "github.com/bassosimone/rv32emu/pkg/decode"

// execOpImm implements the I-type ALU-immediate operations. Shift
// amounts are masked to 5 bits; SRAI is distinguished from SRLI by the
// decoder (they are different Ops), not by inspecting the immediate
// here.
func (h *Hart) execOpImm(in decode.Instruction) {
	rs1 := h.GetReg(in.Rs1)
	var v uint32
	switch in.Op {
	case decode.OpADDI:
		v = rs1 + uint32(in.Imm)
	case decode.OpSLTI:
		if int32(rs1) < in.Imm {
			v = 1
		}
	case decode.OpSLTIU:
		if rs1 < uint32(in.Imm) {
			v = 1
		}
	case decode.OpXORI:
		v = rs1 ^ uint32(in.Imm)
	case decode.OpORI:
		v = rs1 | uint32(in.Imm)
	case decode.OpANDI:
		v = rs1 & uint32(in.Imm)
	case decode.OpSLLI:
		v = rs1 << (uint32(in.Imm) & 0x1f)
	case decode.OpSRLI:
		v = rs1 >> (uint32(in.Imm) & 0x1f)
	case decode.OpSRAI:
		v = uint32(int32(rs1) >> (uint32(in.Imm) & 0x1f))
	}
	h.SetReg(in.Rd, v)
}

// execOp implements the R-type ALU operations.
func (h *Hart) execOp(in decode.Instruction) {
	a, b := h.GetReg(in.Rs1), h.GetReg(in.Rs2)
	var v uint32
	switch in.Op {
	case decode.OpADD:
		v = a + b
	case decode.OpSUB:
		v = a - b
	case decode.OpSLL:
		v = a << (b & 0x1f)
	case decode.OpSLT:
		if int32(a) < int32(b) {
			v = 1
		}
	case decode.OpSLTU:
		if a < b {
			v = 1
		}
	case decode.OpXOR:
		v = a ^ b
	case decode.OpSRL:
		v = a >> (b & 0x1f)
	case decode.OpSRA:
		v = uint32(int32(a) >> (b & 0x1f))
	case decode.OpOR:
		v = a | b
	case decode.OpAND:
		v = a & b
	}
	h.SetReg(in.Rd, v)
}

// execJAL implements JAL: link the return address and jump. A
// misaligned target traps with mepc set to the pre-jump PC, per the
// spec's resolution of the source's mepc-on-misaligned-jump
// inconsistency.
func (h *Hart) execJAL(in decode.Instruction, pc uint32) bool {
	target := pc + uint32(in.Imm)
	if target&h.Ext.PCAlignMask() != 0 {
		h.trap(ExcInstructionMisaligned, pc, target)
		h.trapped = true
		return false
	}
	h.SetReg(in.Rd, pc+uint32(in.Width))
	h.PC = target
	return false
}

// execJALR implements JALR. The computed target's LSB is masked to 0
// before the alignment check, per the base ISA.
func (h *Hart) execJALR(in decode.Instruction, pc uint32) bool {
	target := (h.GetReg(in.Rs1) + uint32(in.Imm)) &^ 1
	if target&h.Ext.PCAlignMask() != 0 {
		h.trap(ExcInstructionMisaligned, pc, target)
		h.trapped = true
		return false
	}
	h.SetReg(in.Rd, pc+uint32(in.Width))
	h.PC = target
	return false
}

// execBranch implements BEQ/BNE/BLT/BGE/BLTU/BGEU. A not-taken branch
// returns true so the step loop advances PC sequentially; a taken
// branch whose target is misaligned traps instead of jumping.
func (h *Hart) execBranch(in decode.Instruction, pc uint32) bool {
	a, b := h.GetReg(in.Rs1), h.GetReg(in.Rs2)
	var taken bool
	switch in.Op {
	case decode.OpBEQ:
		taken = a == b
	case decode.OpBNE:
		taken = a != b
	case decode.OpBLT:
		taken = int32(a) < int32(b)
	case decode.OpBGE:
		taken = int32(a) >= int32(b)
	case decode.OpBLTU:
		taken = a < b
	case decode.OpBGEU:
		taken = a >= b
	}
	if !taken {
		return true
	}
	target := pc + uint32(in.Imm)
	if target&h.Ext.PCAlignMask() != 0 {
		h.trap(ExcInstructionMisaligned, pc, target)
		h.trapped = true
		return false
	}
	h.PC = target
	return false
}

// execLoad implements LB/LH/LW/LBU/LHU, with alignment checks on
// LH/LW/LHU. A misaligned access traps and leaves the destination
// register unchanged.
func (h *Hart) execLoad(in decode.Instruction, pc uint32) bool {
	addr := h.GetReg(in.Rs1) + uint32(in.Imm)
	switch in.Op {
	case decode.OpLB:
		h.SetReg(in.Rd, uint32(int32(int8(h.IO.MemReadByte(addr)))))
	case decode.OpLBU:
		h.SetReg(in.Rd, uint32(h.IO.MemReadByte(addr)))
	case decode.OpLH:
		if addr&0x1 != 0 {
			h.trap(ExcLoadMisaligned, pc, addr)
			h.trapped = true
			return false
		}
		h.SetReg(in.Rd, uint32(int32(int16(h.IO.MemReadHalf(addr)))))
	case decode.OpLHU:
		if addr&0x1 != 0 {
			h.trap(ExcLoadMisaligned, pc, addr)
			h.trapped = true
			return false
		}
		h.SetReg(in.Rd, uint32(h.IO.MemReadHalf(addr)))
	case decode.OpLW:
		if addr&0x3 != 0 {
			h.trap(ExcLoadMisaligned, pc, addr)
			h.trapped = true
			return false
		}
		h.SetReg(in.Rd, h.IO.MemReadWord(addr))
	}
	return true
}

// execStore implements SB/SH/SW, with alignment checks on SH/SW.
func (h *Hart) execStore(in decode.Instruction, pc uint32) bool {
	addr := h.GetReg(in.Rs1) + uint32(in.Imm)
	val := h.GetReg(in.Rs2)
	switch in.Op {
	case decode.OpSB:
		h.IO.MemWriteByte(addr, uint8(val))
	case decode.OpSH:
		if addr&0x1 != 0 {
			h.trap(ExcStoreMisaligned, pc, addr)
			h.trapped = true
			return false
		}
		h.IO.MemWriteHalf(addr, uint16(val))
	case decode.OpSW:
		if addr&0x3 != 0 {
			h.trap(ExcStoreMisaligned, pc, addr)
			h.trapped = true
			return false
		}
		h.IO.MemWriteWord(addr, val)
	}
	return true
}
