package decode

// Op tags a decoded instruction with its semantic operation. One variant
// exists per instruction supported by the RV32IMAFC + Zicsr + Zifencei
// profile, plus Unknown for anything the decoder could not classify (or
// that belongs to a disabled extension).
type Op int

const (
	Unknown Op = iota

	// RV32I
	OpLUI
	OpAUIPC
	OpJAL
	OpJALR
	OpBEQ
	OpBNE
	OpBLT
	OpBGE
	OpBLTU
	OpBGEU
	OpLB
	OpLH
	OpLW
	OpLBU
	OpLHU
	OpSB
	OpSH
	OpSW
	OpADDI
	OpSLTI
	OpSLTIU
	OpXORI
	OpORI
	OpANDI
	OpSLLI
	OpSRLI
	OpSRAI
	OpADD
	OpSUB
	OpSLL
	OpSLT
	OpSLTU
	OpXOR
	OpSRL
	OpSRA
	OpOR
	OpAND
	OpFENCE
	OpFENCEI
	OpECALL
	OpEBREAK
	OpMRET
	OpURET
	OpSRET
	OpHRET
	OpWFI

	// Zicsr
	OpCSRRW
	OpCSRRS
	OpCSRRC
	OpCSRRWI
	OpCSRRSI
	OpCSRRCI

	// M extension
	OpMUL
	OpMULH
	OpMULHSU
	OpMULHU
	OpDIV
	OpDIVU
	OpREM
	OpREMU

	// A extension (RV32A, word-sized only)
	OpLRW
	OpSCW
	OpAMOSWAPW
	OpAMOADDW
	OpAMOXORW
	OpAMOANDW
	OpAMOORW
	OpAMOMINW
	OpAMOMAXW
	OpAMOMINUW
	OpAMOMAXUW

	// F extension (single precision)
	OpFLW
	OpFSW
	OpFMADDS
	OpFMSUBS
	OpFNMSUBS
	OpFNMADDS
	OpFADDS
	OpFSUBS
	OpFMULS
	OpFDIVS
	OpFSQRTS
	OpFSGNJS
	OpFSGNJNS
	OpFSGNJXS
	OpFMINS
	OpFMAXS
	OpFCVTWS
	OpFCVTWUS
	OpFCVTSW
	OpFCVTSWU
	OpFMVXW
	OpFMVWX
	OpFEQS
	OpFLTS
	OpFLES
	OpFCLASSS
)

// Instruction is a decoded instruction: an Op tag plus the operand
// fields relevant to it. Not every field is meaningful for every Op;
// the per-opcode handler in pkg/hart knows which ones to read.
type Instruction struct {
	Op     Op
	Rd     uint32
	Rs1    uint32
	Rs2    uint32
	Rs3    uint32 // only meaningful for the fused-multiply-add family
	Imm    int32  // sign- or zero-extended per the instruction's format
	Csr    uint32
	Rm     uint32 // rounding-mode field (F extension)
	Width  int    // 2 for RVC, 4 otherwise
	Raw    uint32 // the raw instruction word, for mtval/disassembly
}

// Extensions selects which optional ISA extensions the decoder accepts.
// A word that otherwise matches a disabled extension's encoding decodes
// to Unknown, which the interpreter treats as illegal-instruction.
type Extensions struct {
	M       bool
	A       bool
	F       bool
	C       bool
	Zicsr   bool
	Zifencei bool
}

// PCAlignMask returns the alignment mask PC must satisfy: 2-byte
// alignment with the C extension enabled, 4-byte otherwise.
func (e Extensions) PCAlignMask() uint32 {
	if e.C {
		return 0x1
	}
	return 0x3
}
