package memory_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bassosimone/rv32emu/pkg/memory"
)

func TestUnallocatedReadsAsZero(t *testing.T) {
	m := memory.New()
	for _, addr := range []uint32{0, 1, 0xffff, 0x10000, 0xdead0000, 0xffffffff} {
		require.EqualValues(t, 0, m.ReadByte(addr))
		require.EqualValues(t, 0, m.ReadHalf(addr))
		require.EqualValues(t, 0, m.ReadWord(addr))
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	m := memory.New()
	src := []byte{0xde, 0xad, 0xbe, 0xef, 0x01, 0x02, 0x03, 0x04}
	m.WriteBytes(0x1000, src, len(src))
	dst := make([]byte, len(src))
	m.ReadBytes(dst, 0x1000, len(src))
	require.Equal(t, src, dst)
}

func TestWordAcrossChunkBoundary(t *testing.T) {
	m := memory.New()
	const addr = 0xffff
	m.WriteWord(addr, 0x11223344)
	require.EqualValues(t, 0x11223344, m.ReadWord(addr))
	require.EqualValues(t, 0x44, m.ReadByte(addr))
	require.EqualValues(t, 0x11, m.ReadByte(addr+3))
}

func TestHalfAcrossChunkBoundary(t *testing.T) {
	m := memory.New()
	const addr = 0xffff
	m.WriteHalf(addr, 0xbeef)
	require.EqualValues(t, 0xbeef, m.ReadHalf(addr))
}

func TestFill(t *testing.T) {
	m := memory.New()
	m.Fill(0x2000, 16, 0xaa)
	for i := uint32(0); i < 16; i++ {
		require.EqualValues(t, 0xaa, m.ReadByte(0x2000+i))
	}
	require.EqualValues(t, 0, m.ReadByte(0x2010))
}

func TestReadCStringScansPastFullDestination(t *testing.T) {
	m := memory.New()
	s := "hello, world"
	m.WriteBytes(0x3000, append([]byte(s), 0), len(s)+1)
	dst := make([]byte, 4)
	n := m.ReadCString(dst, 0x3000, 64)
	require.Equal(t, len(s)+1, n)
	require.Equal(t, []byte("hell"), dst)
}

func TestIfetchPanicsOnUnallocated(t *testing.T) {
	m := memory.New()
	require.Panics(t, func() { m.Ifetch(0x4000) })
}

func TestIfetchReturnsWrittenWord(t *testing.T) {
	m := memory.New()
	m.WriteWord(0x4000, 0x00000013) // NOP (addi x0, x0, 0)
	require.EqualValues(t, 0x00000013, m.Ifetch(0x4000))
}
