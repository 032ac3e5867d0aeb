package decode

// Bit-field extraction for the 32-bit RISC-V base encoding. Field names
// and masks follow the RISC-V unprivileged ISA manual's R/I/S/B/U/J
// instruction formats.
const (
	maskOpcode = 0x7f
	maskRd     = 0x1f
	maskRs     = 0x1f
	maskFunct3 = 0x7
	maskFunct7 = 0x7f
)

func fieldOpcode(w uint32) uint32 { return w & maskOpcode }
func fieldRd(w uint32) uint32     { return (w >> 7) & maskRd }
func fieldFunct3(w uint32) uint32 { return (w >> 12) & maskFunct3 }
func fieldRs1(w uint32) uint32    { return (w >> 15) & maskRs }
func fieldRs2(w uint32) uint32    { return (w >> 20) & maskRs }
func fieldFunct7(w uint32) uint32 { return (w >> 25) & maskFunct7 }
func fieldRs3(w uint32) uint32    { return (w >> 27) & maskRs }
func fieldFmt(w uint32) uint32    { return (w >> 25) & 0x3 }

func immI(w uint32) int32 { return int32(w) >> 20 }

func immS(w uint32) int32 {
	v := ((w >> 7) & 0x1f) | ((w >> 25) << 5)
	return signExtend(v, 12)
}

func immB(w uint32) int32 {
	v := ((w >> 7) & 0x1) << 11
	v |= ((w >> 8) & 0xf) << 1
	v |= ((w >> 25) & 0x3f) << 5
	v |= ((w >> 31) & 0x1) << 12
	return signExtend(v, 13)
}

func immU(w uint32) int32 { return int32(w & 0xfffff000) }

func immJ(w uint32) int32 {
	v := ((w >> 21) & 0x3ff) << 1
	v |= ((w >> 20) & 0x1) << 11
	v |= ((w >> 12) & 0xff) << 12
	v |= ((w >> 31) & 0x1) << 20
	return signExtend(v, 21)
}

func signExtend(v uint32, bits uint) int32 {
	shift := 32 - bits
	return int32(v<<shift) >> shift
}

// base opcode (bits 6:2) values, per the RISC-V manual's instruction
// format table.
const (
	boLoad    = 0x00
	boMiscMem = 0x03
	boOpImm   = 0x04
	boAUIPC   = 0x05
	boStore   = 0x08
	boAMO     = 0x0b
	boOp      = 0x0c
	boLUI     = 0x0d
	boMadd    = 0x10
	boMsub    = 0x11
	boNmsub   = 0x12
	boNmadd   = 0x13
	boOpFP    = 0x14
	boBranch  = 0x18
	boJALR    = 0x19
	boJAL     = 0x1b
	boSystem  = 0x1c
	boLoadFP  = 0x01
	boStoreFP = 0x09
)

// decode32 decodes a 32-bit instruction word (the low two bits are
// assumed to already be 0b11).
func decode32(w uint32, ext Extensions) Instruction {
	in := Instruction{Raw: w, Width: 4}
	bop := (fieldOpcode(w) >> 2) & 0x1f
	f3 := fieldFunct3(w)
	f7 := fieldFunct7(w)

	switch bop {
	case boLUI:
		in.Op = OpLUI
		in.Rd = fieldRd(w)
		in.Imm = immU(w)
	case boAUIPC:
		in.Op = OpAUIPC
		in.Rd = fieldRd(w)
		in.Imm = immU(w)
	case boJAL:
		in.Op = OpJAL
		in.Rd = fieldRd(w)
		in.Imm = immJ(w)
	case boJALR:
		if f3 == 0 {
			in.Op = OpJALR
			in.Rd = fieldRd(w)
			in.Rs1 = fieldRs1(w)
			in.Imm = immI(w)
		}
	case boBranch:
		in.Rs1 = fieldRs1(w)
		in.Rs2 = fieldRs2(w)
		in.Imm = immB(w)
		switch f3 {
		case 0b000:
			in.Op = OpBEQ
		case 0b001:
			in.Op = OpBNE
		case 0b100:
			in.Op = OpBLT
		case 0b101:
			in.Op = OpBGE
		case 0b110:
			in.Op = OpBLTU
		case 0b111:
			in.Op = OpBGEU
		}
	case boLoad:
		in.Rd = fieldRd(w)
		in.Rs1 = fieldRs1(w)
		in.Imm = immI(w)
		switch f3 {
		case 0b000:
			in.Op = OpLB
		case 0b001:
			in.Op = OpLH
		case 0b010:
			in.Op = OpLW
		case 0b100:
			in.Op = OpLBU
		case 0b101:
			in.Op = OpLHU
		}
	case boStore:
		in.Rs1 = fieldRs1(w)
		in.Rs2 = fieldRs2(w)
		in.Imm = immS(w)
		switch f3 {
		case 0b000:
			in.Op = OpSB
		case 0b001:
			in.Op = OpSH
		case 0b010:
			in.Op = OpSW
		}
	case boOpImm:
		in.Rd = fieldRd(w)
		in.Rs1 = fieldRs1(w)
		switch f3 {
		case 0b000:
			in.Op = OpADDI
			in.Imm = immI(w)
		case 0b010:
			in.Op = OpSLTI
			in.Imm = immI(w)
		case 0b011:
			in.Op = OpSLTIU
			in.Imm = immI(w)
		case 0b100:
			in.Op = OpXORI
			in.Imm = immI(w)
		case 0b110:
			in.Op = OpORI
			in.Imm = immI(w)
		case 0b111:
			in.Op = OpANDI
			in.Imm = immI(w)
		case 0b001:
			if f7>>1 == 0 {
				in.Op = OpSLLI
				in.Imm = int32(fieldRs2(w))
			}
		case 0b101:
			in.Imm = int32(fieldRs2(w))
			switch f7 >> 1 {
			case 0x00:
				in.Op = OpSRLI
			case 0x20 >> 1:
				in.Op = OpSRAI
			}
		}
	case boOp:
		in.Rd = fieldRd(w)
		in.Rs1 = fieldRs1(w)
		in.Rs2 = fieldRs2(w)
		if f7 == 0x01 && ext.M {
			switch f3 {
			case 0b000:
				in.Op = OpMUL
			case 0b001:
				in.Op = OpMULH
			case 0b010:
				in.Op = OpMULHSU
			case 0b011:
				in.Op = OpMULHU
			case 0b100:
				in.Op = OpDIV
			case 0b101:
				in.Op = OpDIVU
			case 0b110:
				in.Op = OpREM
			case 0b111:
				in.Op = OpREMU
			}
			break
		}
		switch {
		case f3 == 0b000 && f7 == 0x00:
			in.Op = OpADD
		case f3 == 0b000 && f7 == 0x20:
			in.Op = OpSUB
		case f3 == 0b001 && f7 == 0x00:
			in.Op = OpSLL
		case f3 == 0b010 && f7 == 0x00:
			in.Op = OpSLT
		case f3 == 0b011 && f7 == 0x00:
			in.Op = OpSLTU
		case f3 == 0b100 && f7 == 0x00:
			in.Op = OpXOR
		case f3 == 0b101 && f7 == 0x00:
			in.Op = OpSRL
		case f3 == 0b101 && f7 == 0x20:
			in.Op = OpSRA
		case f3 == 0b110 && f7 == 0x00:
			in.Op = OpOR
		case f3 == 0b111 && f7 == 0x00:
			in.Op = OpAND
		}
	case boMiscMem:
		if ext.Zifencei {
			switch f3 {
			case 0b000:
				in.Op = OpFENCE
			case 0b001:
				in.Op = OpFENCEI
			}
		}
	case boSystem:
		switch f3 {
		case 0b000:
			in.Imm = immI(w)
			switch {
			case w>>20 == 0x000 && fieldRd(w) == 0 && fieldRs1(w) == 0:
				in.Op = OpECALL
			case w>>20 == 0x001 && fieldRd(w) == 0 && fieldRs1(w) == 0:
				in.Op = OpEBREAK
			case w>>20 == 0x302:
				in.Op = OpMRET
			case w>>20 == 0x102:
				in.Op = OpSRET
			case w>>20 == 0x002:
				in.Op = OpURET
			case w>>20 == 0x202:
				in.Op = OpHRET
			case w>>20 == 0x105:
				in.Op = OpWFI
			}
		default:
			if ext.Zicsr {
				in.Rd = fieldRd(w)
				in.Rs1 = fieldRs1(w)
				in.Csr = w >> 20
				switch f3 {
				case 0b001:
					in.Op = OpCSRRW
				case 0b010:
					in.Op = OpCSRRS
				case 0b011:
					in.Op = OpCSRRC
				case 0b101:
					in.Op = OpCSRRWI
					in.Imm = int32(in.Rs1)
				case 0b110:
					in.Op = OpCSRRSI
					in.Imm = int32(in.Rs1)
				case 0b111:
					in.Op = OpCSRRCI
					in.Imm = int32(in.Rs1)
				}
			}
		}
	case boAMO:
		if ext.A && f3 == 0b010 {
			in.Rd = fieldRd(w)
			in.Rs1 = fieldRs1(w)
			in.Rs2 = fieldRs2(w)
			switch (f7 >> 2) & 0x1f {
			case 0b00010:
				in.Op = OpLRW
			case 0b00011:
				in.Op = OpSCW
			case 0b00001:
				in.Op = OpAMOSWAPW
			case 0b00000:
				in.Op = OpAMOADDW
			case 0b00100:
				in.Op = OpAMOXORW
			case 0b01100:
				in.Op = OpAMOANDW
			case 0b01000:
				in.Op = OpAMOORW
			case 0b10000:
				in.Op = OpAMOMINW
			case 0b10100:
				in.Op = OpAMOMAXW
			case 0b11000:
				in.Op = OpAMOMINUW
			case 0b11100:
				in.Op = OpAMOMAXUW
			}
		}
	case boLoadFP:
		if ext.F && f3 == 0b010 {
			in.Op = OpFLW
			in.Rd = fieldRd(w)
			in.Rs1 = fieldRs1(w)
			in.Imm = immI(w)
		}
	case boStoreFP:
		if ext.F && f3 == 0b010 {
			in.Op = OpFSW
			in.Rs1 = fieldRs1(w)
			in.Rs2 = fieldRs2(w)
			in.Imm = immS(w)
		}
	case boMadd, boMsub, boNmsub, boNmadd:
		if ext.F && fieldFmt(w) == 0 {
			in.Rd = fieldRd(w)
			in.Rs1 = fieldRs1(w)
			in.Rs2 = fieldRs2(w)
			in.Rs3 = fieldRs3(w)
			in.Rm = f3
			switch bop {
			case boMadd:
				in.Op = OpFMADDS
			case boMsub:
				in.Op = OpFMSUBS
			case boNmsub:
				in.Op = OpFNMSUBS
			case boNmadd:
				in.Op = OpFNMADDS
			}
		}
	case boOpFP:
		if ext.F {
			decodeOpFP(&in, w, f7, f3)
		}
	}
	return in
}

func decodeOpFP(in *Instruction, w, f7, f3 uint32) {
	in.Rd = fieldRd(w)
	in.Rs1 = fieldRs1(w)
	in.Rs2 = fieldRs2(w)
	in.Rm = f3
	switch f7 {
	case 0x00:
		in.Op = OpFADDS
	case 0x04:
		in.Op = OpFSUBS
	case 0x08:
		in.Op = OpFMULS
	case 0x0c:
		in.Op = OpFDIVS
	case 0x2c:
		in.Op = OpFSQRTS
	case 0x10:
		switch f3 {
		case 0b000:
			in.Op = OpFSGNJS
		case 0b001:
			in.Op = OpFSGNJNS
		case 0b010:
			in.Op = OpFSGNJXS
		}
	case 0x14:
		switch f3 {
		case 0b000:
			in.Op = OpFMINS
		case 0b001:
			in.Op = OpFMAXS
		}
	case 0x60:
		switch fieldRs2(w) {
		case 0:
			in.Op = OpFCVTWS
		case 1:
			in.Op = OpFCVTWUS
		}
	case 0x68:
		switch fieldRs2(w) {
		case 0:
			in.Op = OpFCVTSW
		case 1:
			in.Op = OpFCVTSWU
		}
	case 0x70:
		switch f3 {
		case 0b000:
			in.Op = OpFMVXW
		case 0b001:
			in.Op = OpFCLASSS
		}
	case 0x78:
		if f3 == 0b000 {
			in.Op = OpFMVWX
		}
	case 0x50:
		switch f3 {
		case 0b010:
			in.Op = OpFEQS
		case 0b001:
			in.Op = OpFLTS
		case 0b000:
			in.Op = OpFLES
		}
	}
}
