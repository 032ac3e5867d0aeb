package decode_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bassosimone/rv32emu/pkg/decode"
)

var allExt = decode.Extensions{M: true, A: true, F: true, C: true, Zicsr: true, Zifencei: true}

func TestDecodeADDI(t *testing.T) {
	// addi x1, x0, 5
	in := decode.Decode(0x00500093, allExt)
	require.Equal(t, decode.OpADDI, in.Op)
	require.EqualValues(t, 1, in.Rd)
	require.EqualValues(t, 0, in.Rs1)
	require.EqualValues(t, 5, in.Imm)
	require.Equal(t, 4, in.Width)
}

func TestDecodeLUI(t *testing.T) {
	// lui x5, 0xABCDE
	in := decode.Decode(0xABCDE2B7, allExt)
	require.Equal(t, decode.OpLUI, in.Op)
	require.EqualValues(t, 5, in.Rd)
	require.EqualValues(t, int32(0xABCDE000), in.Imm)
}

func TestDecodeSRAIvsSRLI(t *testing.T) {
	in := decode.Decode(0x4030D093, allExt) // srai x1, x1, 3
	require.Equal(t, decode.OpSRAI, in.Op)
	in2 := decode.Decode(0x0030D093, allExt) // srli x1, x1, 3
	require.Equal(t, decode.OpSRLI, in2.Op)
}

func TestDecodeBranchImmediate(t *testing.T) {
	// beq x1, x2, 8
	in := decode.Decode(0x00208463, allExt)
	require.Equal(t, decode.OpBEQ, in.Op)
	require.EqualValues(t, 8, in.Imm)
}

func TestDisabledExtensionYieldsUnknown(t *testing.T) {
	noM := decode.Extensions{}
	// mul x3, x2, x3
	in := decode.Decode(0x023101b3, noM)
	require.Equal(t, decode.Unknown, in.Op)
}

func TestDecodeCompressedNOP(t *testing.T) {
	withC := decode.Extensions{C: true}
	in := decode.Decode(0x0001, withC) // c.nop
	require.Equal(t, decode.OpADDI, in.Op)
	require.EqualValues(t, 0, in.Rd)
	require.Equal(t, 2, in.Width)
}

func TestDecodeCompressedDisabledYieldsUnknown(t *testing.T) {
	noC := decode.Extensions{}
	in := decode.Decode(0x0001, noC)
	require.Equal(t, decode.Unknown, in.Op)
	require.Equal(t, 2, in.Width)
}

func TestDecodeCJAL(t *testing.T) {
	withC := decode.Extensions{C: true}
	// c.jal +6: imm field encodes 6 -> binary per cjImm layout
	// 0b001 ttttttttttt 01  with imm=6 (0b000000000110)
	// bit layout (cjImm): imm[3:1]@[5:3] imm[11]@[12] imm[4]@[11] imm[9:8]@[10:9]
	// imm[10]@[8] imm[6]@[7] imm[7]@[6] imm[5]@[2]
	// For imm=6 (0b0000_0000_0110) only bit1(imm[1])=1,bit2(imm[2])=1 => imm[3:1] = 0b011
	word := uint16(0b001)<<13 | uint16(0b011)<<3 | uint16(0b01)
	in := decode.Decode(uint32(word), withC)
	require.Equal(t, decode.OpJAL, in.Op)
	require.EqualValues(t, 1, in.Rd)
	require.EqualValues(t, 6, in.Imm)
	require.Equal(t, 2, in.Width)
}
