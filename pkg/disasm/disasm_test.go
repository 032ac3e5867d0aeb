package disasm

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bassosimone/rv32emu/pkg/decode"
)

func TestRenderADDI(t *testing.T) {
	ext := decode.Extensions{Zicsr: true, Zifencei: true}
	text, width := Instruction(0, 0x00500093, ext) // addi x1, x0, 5
	require.Equal(t, 4, width)
	require.Equal(t, "addi ra, zero, 5", text)
}

func TestRenderJALShowsAbsoluteTarget(t *testing.T) {
	ext := decode.Extensions{}
	text, _ := Instruction(0x1000, 0x008000ef, ext) // jal ra, 8
	require.Contains(t, text, "jal ra, 8")
	require.Contains(t, text, "0x00001008")
}

func TestRenderUnknownReportsIllegal(t *testing.T) {
	ext := decode.Extensions{}
	text, _ := Instruction(0, 0xffffffff, ext)
	require.Contains(t, text, "illegal")
}
