// Package disasm renders decoded RV32 instructions as assembly text,
// in the same one-function-per-concern style as the RiSC-32 VM's
// Disassemble helper: decode, then switch on the opcode and format.
package disasm

import (
	"fmt"

	"github.com/bassosimone/rv32emu/pkg/decode"
)

var regNames = [...]string{
	"zero", "ra", "sp", "gp", "tp", "t0", "t1", "t2",
	"s0", "s1", "a0", "a1", "a2", "a3", "a4", "a5",
	"a6", "a7", "s2", "s3", "s4", "s5", "s6", "s7",
	"s8", "s9", "s10", "s11", "t3", "t4", "t5", "t6",
}

func reg(i uint32) string {
	if i < uint32(len(regNames)) {
		return regNames[i]
	}
	return fmt.Sprintf("x%d", i)
}

func freg(i uint32) string { return fmt.Sprintf("f%d", i) }

// Instruction decodes word at pc and renders it as assembly text. The
// returned width is the number of bytes the caller should advance pc
// by (2 for a compressed instruction, 4 otherwise) to reach the
// following instruction.
func Instruction(pc, word uint32, ext decode.Extensions) (text string, width int) {
	in := decode.Decode(word, ext)
	return Render(in, pc), in.Width
}

// Render formats an already-decoded instruction. pc is used only to
// resolve PC-relative targets (branches, jumps, AUIPC) into absolute
// addresses shown as a comment.
func Render(in decode.Instruction, pc uint32) string {
	switch in.Op {
	case decode.Unknown:
		return fmt.Sprintf(".word 0x%08x  # illegal", in.Raw)

	case decode.OpLUI:
		return fmt.Sprintf("lui %s, 0x%x", reg(in.Rd), uint32(in.Imm)>>12)
	case decode.OpAUIPC:
		return fmt.Sprintf("auipc %s, 0x%x  # -> 0x%08x", reg(in.Rd), uint32(in.Imm)>>12, pc+uint32(in.Imm))

	case decode.OpJAL:
		return fmt.Sprintf("jal %s, %d  # -> 0x%08x", reg(in.Rd), in.Imm, pc+uint32(in.Imm))
	case decode.OpJALR:
		return fmt.Sprintf("jalr %s, %d(%s)", reg(in.Rd), in.Imm, reg(in.Rs1))

	case decode.OpBEQ, decode.OpBNE, decode.OpBLT, decode.OpBGE, decode.OpBLTU, decode.OpBGEU:
		return fmt.Sprintf("%s %s, %s, %d  # -> 0x%08x", branchMnemonic(in.Op), reg(in.Rs1), reg(in.Rs2), in.Imm, pc+uint32(in.Imm))

	case decode.OpLB, decode.OpLH, decode.OpLW, decode.OpLBU, decode.OpLHU:
		return fmt.Sprintf("%s %s, %d(%s)", loadMnemonic(in.Op), reg(in.Rd), in.Imm, reg(in.Rs1))
	case decode.OpSB, decode.OpSH, decode.OpSW:
		return fmt.Sprintf("%s %s, %d(%s)", storeMnemonic(in.Op), reg(in.Rs2), in.Imm, reg(in.Rs1))

	case decode.OpADDI, decode.OpSLTI, decode.OpSLTIU, decode.OpXORI, decode.OpORI, decode.OpANDI:
		return fmt.Sprintf("%s %s, %s, %d", opImmMnemonic(in.Op), reg(in.Rd), reg(in.Rs1), in.Imm)
	case decode.OpSLLI, decode.OpSRLI, decode.OpSRAI:
		return fmt.Sprintf("%s %s, %s, %d", opImmMnemonic(in.Op), reg(in.Rd), reg(in.Rs1), in.Imm)

	case decode.OpADD, decode.OpSUB, decode.OpSLL, decode.OpSLT, decode.OpSLTU,
		decode.OpXOR, decode.OpSRL, decode.OpSRA, decode.OpOR, decode.OpAND:
		return fmt.Sprintf("%s %s, %s, %s", opMnemonic(in.Op), reg(in.Rd), reg(in.Rs1), reg(in.Rs2))

	case decode.OpFENCE:
		return "fence"
	case decode.OpFENCEI:
		return "fence.i"
	case decode.OpECALL:
		return "ecall"
	case decode.OpEBREAK:
		return "ebreak"
	case decode.OpMRET:
		return "mret"
	case decode.OpSRET:
		return "sret"
	case decode.OpURET:
		return "uret"
	case decode.OpHRET:
		return "hret"
	case decode.OpWFI:
		return "wfi"

	case decode.OpCSRRW, decode.OpCSRRS, decode.OpCSRRC:
		return fmt.Sprintf("%s %s, 0x%x, %s", csrMnemonic(in.Op), reg(in.Rd), in.Csr, reg(in.Rs1))
	case decode.OpCSRRWI, decode.OpCSRRSI, decode.OpCSRRCI:
		return fmt.Sprintf("%s %s, 0x%x, %d", csrMnemonic(in.Op), reg(in.Rd), in.Csr, in.Imm)

	case decode.OpMUL, decode.OpMULH, decode.OpMULHSU, decode.OpMULHU,
		decode.OpDIV, decode.OpDIVU, decode.OpREM, decode.OpREMU:
		return fmt.Sprintf("%s %s, %s, %s", mMnemonic(in.Op), reg(in.Rd), reg(in.Rs1), reg(in.Rs2))

	case decode.OpLRW:
		return fmt.Sprintf("lr.w %s, (%s)", reg(in.Rd), reg(in.Rs1))
	case decode.OpSCW:
		return fmt.Sprintf("sc.w %s, %s, (%s)", reg(in.Rd), reg(in.Rs2), reg(in.Rs1))
	case decode.OpAMOSWAPW, decode.OpAMOADDW, decode.OpAMOXORW, decode.OpAMOANDW, decode.OpAMOORW,
		decode.OpAMOMINW, decode.OpAMOMAXW, decode.OpAMOMINUW, decode.OpAMOMAXUW:
		return fmt.Sprintf("%s %s, %s, (%s)", amoMnemonic(in.Op), reg(in.Rd), reg(in.Rs2), reg(in.Rs1))

	case decode.OpFLW:
		return fmt.Sprintf("flw %s, %d(%s)", freg(in.Rd), in.Imm, reg(in.Rs1))
	case decode.OpFSW:
		return fmt.Sprintf("fsw %s, %d(%s)", freg(in.Rs2), in.Imm, reg(in.Rs1))

	case decode.OpFMADDS, decode.OpFMSUBS, decode.OpFNMSUBS, decode.OpFNMADDS:
		return fmt.Sprintf("%s %s, %s, %s, %s", fmaMnemonic(in.Op), freg(in.Rd), freg(in.Rs1), freg(in.Rs2), freg(in.Rs3))

	case decode.OpFADDS, decode.OpFSUBS, decode.OpFMULS, decode.OpFDIVS,
		decode.OpFSGNJS, decode.OpFSGNJNS, decode.OpFSGNJXS, decode.OpFMINS, decode.OpFMAXS:
		return fmt.Sprintf("%s %s, %s, %s", fMnemonic(in.Op), freg(in.Rd), freg(in.Rs1), freg(in.Rs2))
	case decode.OpFSQRTS:
		return fmt.Sprintf("fsqrt.s %s, %s", freg(in.Rd), freg(in.Rs1))
	case decode.OpFCVTWS:
		return fmt.Sprintf("fcvt.w.s %s, %s", reg(in.Rd), freg(in.Rs1))
	case decode.OpFCVTWUS:
		return fmt.Sprintf("fcvt.wu.s %s, %s", reg(in.Rd), freg(in.Rs1))
	case decode.OpFCVTSW:
		return fmt.Sprintf("fcvt.s.w %s, %s", freg(in.Rd), reg(in.Rs1))
	case decode.OpFCVTSWU:
		return fmt.Sprintf("fcvt.s.wu %s, %s", freg(in.Rd), reg(in.Rs1))
	case decode.OpFMVXW:
		return fmt.Sprintf("fmv.x.w %s, %s", reg(in.Rd), freg(in.Rs1))
	case decode.OpFMVWX:
		return fmt.Sprintf("fmv.w.x %s, %s", freg(in.Rd), reg(in.Rs1))
	case decode.OpFEQS:
		return fmt.Sprintf("feq.s %s, %s, %s", reg(in.Rd), freg(in.Rs1), freg(in.Rs2))
	case decode.OpFLTS:
		return fmt.Sprintf("flt.s %s, %s, %s", reg(in.Rd), freg(in.Rs1), freg(in.Rs2))
	case decode.OpFLES:
		return fmt.Sprintf("fle.s %s, %s, %s", reg(in.Rd), freg(in.Rs1), freg(in.Rs2))
	case decode.OpFCLASSS:
		return fmt.Sprintf("fclass.s %s, %s", reg(in.Rd), freg(in.Rs1))
	}
	return fmt.Sprintf(".word 0x%08x  # unrenderable", in.Raw)
}

func branchMnemonic(op decode.Op) string {
	switch op {
	case decode.OpBEQ:
		return "beq"
	case decode.OpBNE:
		return "bne"
	case decode.OpBLT:
		return "blt"
	case decode.OpBGE:
		return "bge"
	case decode.OpBLTU:
		return "bltu"
	default:
		return "bgeu"
	}
}

func loadMnemonic(op decode.Op) string {
	switch op {
	case decode.OpLB:
		return "lb"
	case decode.OpLH:
		return "lh"
	case decode.OpLW:
		return "lw"
	case decode.OpLBU:
		return "lbu"
	default:
		return "lhu"
	}
}

func storeMnemonic(op decode.Op) string {
	switch op {
	case decode.OpSB:
		return "sb"
	case decode.OpSH:
		return "sh"
	default:
		return "sw"
	}
}

func opImmMnemonic(op decode.Op) string {
	switch op {
	case decode.OpADDI:
		return "addi"
	case decode.OpSLTI:
		return "slti"
	case decode.OpSLTIU:
		return "sltiu"
	case decode.OpXORI:
		return "xori"
	case decode.OpORI:
		return "ori"
	case decode.OpANDI:
		return "andi"
	case decode.OpSLLI:
		return "slli"
	case decode.OpSRLI:
		return "srli"
	default:
		return "srai"
	}
}

func opMnemonic(op decode.Op) string {
	switch op {
	case decode.OpADD:
		return "add"
	case decode.OpSUB:
		return "sub"
	case decode.OpSLL:
		return "sll"
	case decode.OpSLT:
		return "slt"
	case decode.OpSLTU:
		return "sltu"
	case decode.OpXOR:
		return "xor"
	case decode.OpSRL:
		return "srl"
	case decode.OpSRA:
		return "sra"
	case decode.OpOR:
		return "or"
	default:
		return "and"
	}
}

func csrMnemonic(op decode.Op) string {
	switch op {
	case decode.OpCSRRW:
		return "csrrw"
	case decode.OpCSRRS:
		return "csrrs"
	case decode.OpCSRRC:
		return "csrrc"
	case decode.OpCSRRWI:
		return "csrrwi"
	case decode.OpCSRRSI:
		return "csrrsi"
	default:
		return "csrrci"
	}
}

func mMnemonic(op decode.Op) string {
	switch op {
	case decode.OpMUL:
		return "mul"
	case decode.OpMULH:
		return "mulh"
	case decode.OpMULHSU:
		return "mulhsu"
	case decode.OpMULHU:
		return "mulhu"
	case decode.OpDIV:
		return "div"
	case decode.OpDIVU:
		return "divu"
	case decode.OpREM:
		return "rem"
	default:
		return "remu"
	}
}

func amoMnemonic(op decode.Op) string {
	switch op {
	case decode.OpAMOSWAPW:
		return "amoswap.w"
	case decode.OpAMOADDW:
		return "amoadd.w"
	case decode.OpAMOXORW:
		return "amoxor.w"
	case decode.OpAMOANDW:
		return "amoand.w"
	case decode.OpAMOORW:
		return "amoor.w"
	case decode.OpAMOMINW:
		return "amomin.w"
	case decode.OpAMOMAXW:
		return "amomax.w"
	case decode.OpAMOMINUW:
		return "amominu.w"
	default:
		return "amomaxu.w"
	}
}

func fmaMnemonic(op decode.Op) string {
	switch op {
	case decode.OpFMADDS:
		return "fmadd.s"
	case decode.OpFMSUBS:
		return "fmsub.s"
	case decode.OpFNMSUBS:
		return "fnmsub.s"
	default:
		return "fnmadd.s"
	}
}

func fMnemonic(op decode.Op) string {
	switch op {
	case decode.OpFADDS:
		return "fadd.s"
	case decode.OpFSUBS:
		return "fsub.s"
	case decode.OpFMULS:
		return "fmul.s"
	case decode.OpFDIVS:
		return "fdiv.s"
	case decode.OpFSGNJS:
		return "fsgnj.s"
	case decode.OpFSGNJNS:
		return "fsgnjn.s"
	case decode.OpFSGNJXS:
		return "fsgnjx.s"
	case decode.OpFMINS:
		return "fmin.s"
	default:
		return "fmax.s"
	}
}
