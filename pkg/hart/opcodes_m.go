package hart

import "github.com/bassosimone/rv32emu/pkg/decode"

// execM implements the M-extension multiply/divide instructions,
// including the canonical RISC-V results for division by zero and for
// the INT_MIN / -1 signed overflow case: neither one traps.
func (h *Hart) execM(in decode.Instruction) {
	a, b := h.GetReg(in.Rs1), h.GetReg(in.Rs2)
	sa, sb := int32(a), int32(b)
	var v uint32
	switch in.Op {
	case decode.OpMUL:
		v = a * b
	case decode.OpMULH:
		v = uint32((int64(sa) * int64(sb)) >> 32)
	case decode.OpMULHSU:
		v = uint32((int64(sa) * int64(uint64(b))) >> 32)
	case decode.OpMULHU:
		v = uint32((uint64(a) * uint64(b)) >> 32)
	case decode.OpDIV:
		switch {
		case sb == 0:
			v = ^uint32(0)
		case sa == -0x80000000 && sb == -1:
			v = uint32(sa)
		default:
			v = uint32(sa / sb)
		}
	case decode.OpDIVU:
		if b == 0 {
			v = ^uint32(0)
		} else {
			v = a / b
		}
	case decode.OpREM:
		switch {
		case sb == 0:
			v = a
		case sa == -0x80000000 && sb == -1:
			v = 0
		default:
			v = uint32(sa % sb)
		}
	case decode.OpREMU:
		if b == 0 {
			v = a
		} else {
			v = a % b
		}
	}
	h.SetReg(in.Rd, v)
}
