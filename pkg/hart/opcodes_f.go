package hart

import (
	"math"

	"github.com/bassosimone/rv32emu/pkg/decode"
)

// fflags bits within fcsr, per the F-extension's accrued-exception
// register layout.
const (
	fflagNX = 0x01 // inexact
	fflagUF = 0x02 // underflow
	fflagOF = 0x04 // overflow
	fflagDZ = 0x08 // divide by zero
	fflagNV = 0x10 // invalid operation
)

func (h *Hart) setFFlags(bits uint32) { h.Fcsr |= bits & 0x1f }

func f32(bits uint32) float32   { return math.Float32frombits(bits) }
func bits32(f float32) uint32   { return math.Float32bits(f) }
func fGetF(h *Hart, i uint32) float32 { return f32(h.F[i]) }

func (h *Hart) setF(i uint32, v float32) {
	if i < NumRegisters {
		h.F[i] = bits32(v)
	}
}

// execFMem implements FLW/FSW. Both require a word-aligned address;
// misalignment traps exactly like the integer LW/SW handlers.
func (h *Hart) execFMem(in decode.Instruction, pc uint32) bool {
	addr := h.GetReg(in.Rs1) + uint32(in.Imm)
	if addr&0x3 != 0 {
		code := ExcLoadMisaligned
		if in.Op == decode.OpFSW {
			code = ExcStoreMisaligned
		}
		h.trap(uint32(code), pc, addr)
		h.trapped = true
		return false
	}
	switch in.Op {
	case decode.OpFLW:
		h.F[in.Rd] = h.IO.MemReadWord(addr)
	case decode.OpFSW:
		h.IO.MemWriteWord(addr, h.F[in.Rs2])
	}
	return true
}

// execF implements the single-precision arithmetic, conversion,
// move, comparison, and classification instructions. Rounding mode
// (in.Rm) is accepted but not applied: every operation rounds the way
// Go's float32 arithmetic does, which coincides with round-to-nearest-
// even for the operations this core implements.
func (h *Hart) execF(in decode.Instruction) {
	switch in.Op {
	case decode.OpFMADDS:
		h.setF(in.Rd, fGetF(h, in.Rs1)*fGetF(h, in.Rs2)+fGetF(h, in.Rs3))
	case decode.OpFMSUBS:
		h.setF(in.Rd, fGetF(h, in.Rs1)*fGetF(h, in.Rs2)-fGetF(h, in.Rs3))
	case decode.OpFNMSUBS:
		h.setF(in.Rd, -(fGetF(h, in.Rs1)*fGetF(h, in.Rs2))+fGetF(h, in.Rs3))
	case decode.OpFNMADDS:
		h.setF(in.Rd, -(fGetF(h, in.Rs1)*fGetF(h, in.Rs2))-fGetF(h, in.Rs3))
	case decode.OpFADDS:
		h.setF(in.Rd, fGetF(h, in.Rs1)+fGetF(h, in.Rs2))
	case decode.OpFSUBS:
		h.setF(in.Rd, fGetF(h, in.Rs1)-fGetF(h, in.Rs2))
	case decode.OpFMULS:
		h.setF(in.Rd, fGetF(h, in.Rs1)*fGetF(h, in.Rs2))
	case decode.OpFDIVS:
		b := fGetF(h, in.Rs2)
		if b == 0 {
			h.setFFlags(fflagDZ)
		}
		h.setF(in.Rd, fGetF(h, in.Rs1)/b)
	case decode.OpFSQRTS:
		a := fGetF(h, in.Rs1)
		if a < 0 {
			h.setFFlags(fflagNV)
		}
		h.setF(in.Rd, float32(math.Sqrt(float64(a))))

	case decode.OpFSGNJS:
		h.F[in.Rd] = (h.F[in.Rs1] &^ (1 << 31)) | (h.F[in.Rs2] & (1 << 31))
	case decode.OpFSGNJNS:
		h.F[in.Rd] = (h.F[in.Rs1] &^ (1 << 31)) | ((^h.F[in.Rs2]) & (1 << 31))
	case decode.OpFSGNJXS:
		h.F[in.Rd] = h.F[in.Rs1] ^ (h.F[in.Rs2] & (1 << 31))

	case decode.OpFMINS:
		v, invalid := fMinMax(fGetF(h, in.Rs1), fGetF(h, in.Rs2), true)
		if invalid {
			h.setFFlags(fflagNV)
		}
		h.setF(in.Rd, v)
	case decode.OpFMAXS:
		v, invalid := fMinMax(fGetF(h, in.Rs1), fGetF(h, in.Rs2), false)
		if invalid {
			h.setFFlags(fflagNV)
		}
		h.setF(in.Rd, v)

	case decode.OpFCVTWS:
		h.SetReg(in.Rd, uint32(fToI32(fGetF(h, in.Rs1))))
	case decode.OpFCVTWUS:
		h.SetReg(in.Rd, fToU32(fGetF(h, in.Rs1)))
	case decode.OpFCVTSW:
		h.setF(in.Rd, float32(int32(h.GetReg(in.Rs1))))
	case decode.OpFCVTSWU:
		h.setF(in.Rd, float32(h.GetReg(in.Rs1)))

	case decode.OpFMVXW:
		h.SetReg(in.Rd, h.F[in.Rs1])
	case decode.OpFMVWX:
		h.F[in.Rd] = h.GetReg(in.Rs1)

	case decode.OpFEQS:
		v := uint32(0)
		if fGetF(h, in.Rs1) == fGetF(h, in.Rs2) {
			v = 1
		}
		h.SetReg(in.Rd, v)
	case decode.OpFLTS:
		a, b := fGetF(h, in.Rs1), fGetF(h, in.Rs2)
		if math.IsNaN(float64(a)) || math.IsNaN(float64(b)) {
			h.setFFlags(fflagNV) // FLT.S is signalling: any NaN operand is invalid
		}
		v := uint32(0)
		if a < b {
			v = 1
		}
		h.SetReg(in.Rd, v)
	case decode.OpFLES:
		a, b := fGetF(h, in.Rs1), fGetF(h, in.Rs2)
		if math.IsNaN(float64(a)) || math.IsNaN(float64(b)) {
			h.setFFlags(fflagNV) // FLE.S is signalling: any NaN operand is invalid
		}
		v := uint32(0)
		if a <= b {
			v = 1
		}
		h.SetReg(in.Rd, v)

	case decode.OpFCLASSS:
		h.SetReg(in.Rd, fclass(h.F[in.Rs1]))
	}
}

// fMinMax implements FMIN.S/FMAX.S's NaN-propagation rule: if exactly
// one operand is NaN, the other is returned; if both are NaN, the
// canonical quiet NaN is returned. The second return value reports
// whether either operand was NaN, so the caller can raise fcsr's
// invalid-operation flag.
func fMinMax(a, b float32, min bool) (float32, bool) {
	aNaN, bNaN := math.IsNaN(float64(a)), math.IsNaN(float64(b))
	switch {
	case aNaN && bNaN:
		return f32(0x7fc00000), true
	case aNaN:
		return b, true
	case bNaN:
		return a, true
	}
	if min {
		return float32(math.Min(float64(a), float64(b))), false
	}
	return float32(math.Max(float64(a), float64(b))), false
}

func fToI32(f float32) int32 {
	switch {
	case math.IsNaN(float64(f)):
		return math.MaxInt32
	case f >= float32(math.MaxInt32):
		return math.MaxInt32
	case f <= float32(math.MinInt32):
		return math.MinInt32
	default:
		return int32(f)
	}
}

func fToU32(f float32) uint32 {
	switch {
	case math.IsNaN(float64(f)):
		return math.MaxUint32
	case f >= float32(math.MaxUint32):
		return math.MaxUint32
	case f <= 0:
		return 0
	default:
		return uint32(f)
	}
}

// fclass implements FCLASS.S's ten-bit one-hot classification.
func fclass(bits uint32) uint32 {
	sign := bits>>31 != 0
	exp := (bits >> 23) & 0xff
	mant := bits & 0x7fffff

	switch {
	case exp == 0xff && mant == 0:
		if sign {
			return 1 << 0 // -inf
		}
		return 1 << 7 // +inf
	case exp == 0xff:
		if mant&(1<<22) == 0 {
			return 1 << 8 // signalling NaN
		}
		return 1 << 9 // quiet NaN
	case exp == 0 && mant == 0:
		if sign {
			return 1 << 3 // -0
		}
		return 1 << 4 // +0
	case exp == 0:
		if sign {
			return 1 << 2 // negative subnormal
		}
		return 1 << 5 // positive subnormal
	default:
		if sign {
			return 1 << 1 // negative normal
		}
		return 1 << 6 // positive normal
	}
}
