package decode

// decode16 decodes a 16-bit RVC instruction word into the Op/operand
// fields of its uncompressed counterpart, with Width set to 2. The
// compressed-register encoding (rs1', rs2', rd') always maps onto x8-x15
// by adding 8 to the 3-bit field.
//
// Compressed floating-point loads/stores (C.FLW/C.FSW/C.FLWSP/C.FSWSP)
// are not implemented; they decode to Unknown even when both C and F
// are enabled (see DESIGN.md).
func decode16(w uint16, ext Extensions) Instruction {
	in := Instruction{Raw: uint32(w), Width: 2}
	quadrant := w & 0x3
	funct3 := (w >> 13) & 0x7

	crd := func() uint32 { return uint32((w >> 2) & 0x7) }
	cregToX := func(c uint32) uint32 { return c + 8 }

	switch quadrant {
	case 0b00:
		rdc := cregToX(crd())
		rs1c := cregToX(uint32((w >> 7) & 0x7))
		switch funct3 {
		case 0b000: // C.ADDI4SPN
			nzuimm := ciwImm(w)
			if nzuimm != 0 {
				in.Op = OpADDI
				in.Rd = rdc
				in.Rs1 = 2 // sp
				in.Imm = int32(nzuimm)
			}
		case 0b010: // C.LW
			in.Op = OpLW
			in.Rd = rdc
			in.Rs1 = rs1c
			in.Imm = int32(clImm(w))
		case 0b110: // C.SW
			in.Op = OpSW
			in.Rs1 = rs1c
			in.Rs2 = cregToX(crd())
			in.Imm = int32(clImm(w))
		}
	case 0b01:
		switch funct3 {
		case 0b000: // C.NOP / C.ADDI
			rd := uint32((w >> 7) & 0x1f)
			in.Op = OpADDI
			in.Rd = rd
			in.Rs1 = rd
			in.Imm = ciImm(w)
		case 0b001: // C.JAL (RV32 only)
			in.Op = OpJAL
			in.Rd = 1 // ra
			in.Imm = cjImm(w)
		case 0b010: // C.LI
			in.Op = OpADDI
			in.Rd = uint32((w >> 7) & 0x1f)
			in.Rs1 = 0
			in.Imm = ciImm(w)
		case 0b011:
			rd := uint32((w >> 7) & 0x1f)
			if rd == 2 { // C.ADDI16SP
				in.Op = OpADDI
				in.Rd = 2
				in.Rs1 = 2
				in.Imm = ci16spImm(w)
			} else if rd != 0 { // C.LUI
				in.Op = OpLUI
				in.Rd = rd
				in.Imm = ciImm(w) << 12
			}
		case 0b100:
			rdc := cregToX(uint32((w >> 7) & 0x7))
			funct2 := (w >> 10) & 0x3
			switch funct2 {
			case 0b00: // C.SRLI
				in.Op = OpSRLI
				in.Rd, in.Rs1 = rdc, rdc
				in.Imm = int32(cShamt(w))
			case 0b01: // C.SRAI
				in.Op = OpSRAI
				in.Rd, in.Rs1 = rdc, rdc
				in.Imm = int32(cShamt(w))
			case 0b10: // C.ANDI
				in.Op = OpANDI
				in.Rd, in.Rs1 = rdc, rdc
				in.Imm = ciImm(w)
			case 0b11:
				rs2c := cregToX(uint32(w & 0x7))
				funct1 := (w >> 12) & 0x1
				op2 := (w >> 5) & 0x3
				in.Rd, in.Rs1, in.Rs2 = rdc, rdc, rs2c
				if funct1 == 0 {
					switch op2 {
					case 0b00:
						in.Op = OpSUB
					case 0b01:
						in.Op = OpXOR
					case 0b10:
						in.Op = OpOR
					case 0b11:
						in.Op = OpAND
					}
				}
				// funct1 == 1 selects the RV64/RV128-only
				// SUBW/ADDW/... forms, not present in RV32.
			}
		case 0b101: // C.J
			in.Op = OpJAL
			in.Rd = 0
			in.Imm = cjImm(w)
		case 0b110: // C.BEQZ
			in.Op = OpBEQ
			in.Rs1 = cregToX(uint32((w >> 7) & 0x7))
			in.Rs2 = 0
			in.Imm = cbImm(w)
		case 0b111: // C.BNEZ
			in.Op = OpBNE
			in.Rs1 = cregToX(uint32((w >> 7) & 0x7))
			in.Rs2 = 0
			in.Imm = cbImm(w)
		}
	case 0b10:
		rd := uint32((w >> 7) & 0x1f)
		switch funct3 {
		case 0b000: // C.SLLI
			in.Op = OpSLLI
			in.Rd, in.Rs1 = rd, rd
			in.Imm = int32(cShamt(w))
		case 0b010: // C.LWSP
			if rd != 0 {
				in.Op = OpLW
				in.Rd = rd
				in.Rs1 = 2
				in.Imm = int32(cssLwImm(w))
			}
		case 0b100:
			funct1 := (w >> 12) & 0x1
			rs2 := uint32((w >> 2) & 0x1f)
			if funct1 == 0 {
				if rs2 == 0 { // C.JR
					if rd != 0 {
						in.Op = OpJALR
						in.Rd = 0
						in.Rs1 = rd
						in.Imm = 0
					}
				} else { // C.MV
					in.Op = OpADD
					in.Rd = rd
					in.Rs1 = 0
					in.Rs2 = rs2
				}
			} else {
				if rd == 0 && rs2 == 0 { // C.EBREAK
					in.Op = OpEBREAK
				} else if rs2 == 0 { // C.JALR
					in.Op = OpJALR
					in.Rd = 1
					in.Rs1 = rd
					in.Imm = 0
				} else { // C.ADD
					in.Op = OpADD
					in.Rd = rd
					in.Rs1 = rd
					in.Rs2 = rs2
				}
			}
		case 0b110: // C.SWSP
			in.Op = OpSW
			in.Rs1 = 2
			in.Rs2 = uint32((w >> 2) & 0x1f)
			in.Imm = int32(cssSwImm(w))
		}
	}

	if !ext.C {
		in.Op = Unknown
	}
	return in
}

// cShamt decodes the RVC 6-bit shift-amount field. On RV32, bit 12 must
// be zero (a 5-bit shift amount); we mask to 5 bits either way since the
// interpreter masks shifts to 5 bits regardless.
func cShamt(w uint16) uint32 {
	v := uint32((w>>12)&0x1)<<5 | uint32((w>>2)&0x1f)
	return v & 0x1f
}

func ciImm(w uint16) int32 {
	v := uint32((w>>12)&0x1)<<5 | uint32((w>>2)&0x1f)
	return signExtend(v, 6)
}

func ci16spImm(w uint16) int32 {
	var v uint32
	v |= uint32((w>>12)&0x1) << 9
	v |= uint32((w>>6)&0x1) << 4
	v |= uint32((w>>5)&0x1) << 6
	v |= uint32((w>>3)&0x3) << 7
	v |= uint32((w>>2)&0x1) << 5
	return signExtend(v, 10)
}

func ciwImm(w uint16) uint32 {
	var v uint32
	v |= uint32((w>>11)&0x3) << 4
	v |= uint32((w>>7)&0xf) << 6
	v |= uint32((w>>6)&0x1) << 2
	v |= uint32((w>>5)&0x1) << 3
	return v
}

func clImm(w uint16) uint32 {
	var v uint32
	v |= uint32((w>>10)&0x7) << 3
	v |= uint32((w>>6)&0x1) << 2
	v |= uint32((w>>5)&0x1) << 6
	return v
}

func cjImm(w uint16) int32 {
	var v uint32
	v |= uint32((w>>3)&0x7) << 1
	v |= uint32((w>>11)&0x1) << 4
	v |= uint32((w>>2)&0x1) << 5
	v |= uint32((w>>7)&0x1) << 6
	v |= uint32((w>>6)&0x1) << 7
	v |= uint32((w>>9)&0x3) << 8
	v |= uint32((w>>8)&0x1) << 10
	v |= uint32((w>>12)&0x1) << 11
	return signExtend(v, 12)
}

func cbImm(w uint16) int32 {
	var v uint32
	v |= uint32((w>>3)&0x3) << 1
	v |= uint32((w>>10)&0x3) << 3
	v |= uint32((w>>2)&0x1) << 5
	v |= uint32((w>>5)&0x3) << 6
	v |= uint32((w>>12)&0x1) << 8
	return signExtend(v, 9)
}

func cssLwImm(w uint16) uint32 {
	var v uint32
	v |= uint32((w>>4)&0x7) << 2
	v |= uint32((w>>12)&0x1) << 5
	v |= uint32((w>>2)&0x3) << 6
	return v
}

func cssSwImm(w uint16) uint32 {
	var v uint32
	v |= uint32((w>>9)&0xf) << 2
	v |= uint32((w>>7)&0x3) << 6
	return v
}
