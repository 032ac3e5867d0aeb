package hart

import "github.com/bassosimone/rv32emu/pkg/decode"

// execCSR implements CSRRW/CSRRS/CSRRC and their immediate forms
// through the shared csrOp primitive. The rd write happens
// unconditionally per the base ISA (the optimisation of skipping the
// CSR read when rd is x0 has no observable effect here, since none of
// this core's CSRs have read side effects).
func (h *Hart) execCSR(in decode.Instruction) {
	var old uint32
	switch in.Op {
	case decode.OpCSRRW:
		old = h.csrOp(in.Csr, h.GetReg(in.Rs1), nil)
	case decode.OpCSRRS:
		old = h.csrOp(in.Csr, h.GetReg(in.Rs1), func(o, v uint32) uint32 { return o | v })
	case decode.OpCSRRC:
		old = h.csrOp(in.Csr, h.GetReg(in.Rs1), func(o, v uint32) uint32 { return o &^ v })
	case decode.OpCSRRWI:
		old = h.csrOp(in.Csr, uint32(in.Imm), nil)
	case decode.OpCSRRSI:
		old = h.csrOp(in.Csr, uint32(in.Imm), func(o, v uint32) uint32 { return o | v })
	case decode.OpCSRRCI:
		old = h.csrOp(in.Csr, uint32(in.Imm), func(o, v uint32) uint32 { return o &^ v })
	}
	h.SetReg(in.Rd, old)
}
