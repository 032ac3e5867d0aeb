package jitcore

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bassosimone/rv32emu/pkg/decode"
	"github.com/bassosimone/rv32emu/pkg/hostio"
)

func TestBlockMapInsertAndFind(t *testing.T) {
	m := NewBlockMap(4)
	b := &Block{PcStart: 0x1000, PcEnd: 0x1008}
	m.Insert(b)
	require.Same(t, b, m.Find(0x1000))
	require.Nil(t, m.Find(0x2000))
}

func TestBlockMapEnlargePreservesEntries(t *testing.T) {
	m := NewBlockMap(2) // capacity 4
	for i := uint32(0); i < 3; i++ {
		m.Insert(&Block{PcStart: i * 4})
	}
	require.EqualValues(t, 4, m.Capacity())
	m.Enlarge()
	require.EqualValues(t, 8, m.Capacity())
	require.EqualValues(t, 3, m.Size())
	for i := uint32(0); i < 3; i++ {
		require.NotNil(t, m.Find(i*4))
	}
}

func TestBlockMapOverLoadedAndClear(t *testing.T) {
	m := NewBlockMap(2) // capacity 4
	m.Insert(&Block{PcStart: 0})
	m.Insert(&Block{PcStart: 4})
	m.Insert(&Block{PcStart: 8})
	m.Insert(&Block{PcStart: 12})
	require.True(t, m.OverLoaded(), "4 entries in a 4-slot table exceed the 1.25 load factor (4*1.25 > 4)")
	m.Clear()
	require.EqualValues(t, 0, m.Size())
	require.Nil(t, m.Find(0))
}

func TestTranslateStopsAtBranch(t *testing.T) {
	fm := hostio.NewFlatMemory(nil, nil)
	fm.Mem.WriteWord(0, 0x00500093) // addi x1, x0, 5
	fm.Mem.WriteWord(4, 0x00000063) // beq x0, x0, 0
	fm.Mem.WriteWord(8, 0x00500093) // addi x1, x0, 5 (should not be reached)

	ext := decode.Extensions{Zicsr: true, Zifencei: true}
	b := Translate(fm, ext, 0)
	require.Len(t, b.Instructions, 2)
	require.Equal(t, decode.OpADDI, b.Instructions[0].Op)
	require.Equal(t, decode.OpBEQ, b.Instructions[1].Op)
	require.EqualValues(t, 8, b.PcEnd)
}

func TestFindOrTranslateCachesAndLinksPredict(t *testing.T) {
	fm := hostio.NewFlatMemory(nil, nil)
	fm.Mem.WriteWord(0, 0x00000063) // beq x0, x0, 0

	ext := decode.Extensions{}
	m := NewBlockMap(4)
	first := FindOrTranslate(m, fm, ext, 0, nil)
	second := FindOrTranslate(m, fm, ext, 0, first)
	require.Same(t, first, second, "a second lookup at the same pc must hit the cache")
	require.Same(t, second, first.Predict)
}

func TestCacheSaveLoadRoundTrip(t *testing.T) {
	fm := hostio.NewFlatMemory(nil, nil)
	fm.Mem.WriteWord(0, 0x00500093)
	fm.Mem.WriteWord(4, 0x00000063)

	ext := decode.Extensions{}
	m := NewBlockMap(4)
	FindOrTranslate(m, fm, ext, 0, nil)

	path := filepath.Join(t.TempDir(), "blocks.cache")
	require.NoError(t, m.SaveFile(path))

	loaded := NewBlockMap(4)
	require.NoError(t, loaded.LoadFile(path, ext))
	require.EqualValues(t, m.Size(), loaded.Size())

	got := loaded.Find(0)
	require.NotNil(t, got)
	require.Len(t, got.Instructions, 2)
	require.Equal(t, decode.OpADDI, got.Instructions[0].Op)
	require.Nil(t, got.Predict, "Predict is not persisted across a save/load cycle")
}

func TestCacheLoadFileRejectsMisalignedRecords(t *testing.T) {
	fm := hostio.NewFlatMemory(nil, nil)
	fm.Mem.WriteWord(0, 0x00500093)
	fm.Mem.WriteWord(4, 0x00000063)

	ext := decode.Extensions{}
	m := NewBlockMap(4)
	FindOrTranslate(m, fm, ext, 0, nil)
	// Plant a corrupt, misaligned block directly in the map before
	// saving, simulating a cache file whose bytes still gob-decode
	// cleanly but no longer describe a genuine Translate result.
	m.Insert(&Block{PcStart: 1, PcEnd: 5, Instructions: []decode.Instruction{{Op: decode.OpADDI, Width: 4}}})

	path := filepath.Join(t.TempDir(), "blocks.cache")
	require.NoError(t, m.SaveFile(path))

	loaded := NewBlockMap(4)
	require.NoError(t, loaded.LoadFile(path, ext))
	require.Nil(t, loaded.Find(1), "a misaligned PcStart must be discarded, not inserted")
	require.NotNil(t, loaded.Find(0), "the genuine, aligned block must still load")
}
