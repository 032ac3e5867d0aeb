package jitcore

import (
	"bufio"
	"encoding/gob"
	"fmt"
	"os"

	"github.com/klauspost/compress/zstd"

	"github.com/bassosimone/rv32emu/pkg/decode"
)

// blockRecord is the on-disk shape of a Block. Predict is deliberately
// dropped: it is a non-owning, best-effort hint, and two blocks can
// predict each other, which would make a naive gob encode of *Block
// follow a pointer cycle forever. Every block is re-linked with a nil
// Predict on load; the cache rebuilds the hint organically as it runs.
type blockRecord struct {
	PcStart, PcEnd uint32
	Instructions   []blockInstruction
}

// blockInstruction mirrors decode.Instruction field-for-field. A
// separate type (rather than gob-encoding decode.Instruction directly)
// keeps the on-disk format decoupled from that package's layout.
type blockInstruction struct {
	Op                           int
	Rd, Rs1, Rs2, Rs3            uint32
	Imm                          int32
	Csr                          uint32
	Rm                           uint32
	Width                        int
	Raw                          uint32
}

// SaveFile persists every block currently in m to path, gob-encoded
// and zstd-compressed. A cache crossing a process boundary is the one
// place this core treats malformed input as recoverable: LoadFile
// returns an error instead of panicking on a corrupt or foreign file,
// since unlike a guest memory image, nothing about program correctness
// depends on the cache being present or well-formed.
func (m *BlockMap) SaveFile(path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("jitcore: creating cache file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	zw, err := zstd.NewWriter(f)
	if err != nil {
		return fmt.Errorf("jitcore: starting zstd writer: %w", err)
	}
	defer func() {
		if cerr := zw.Close(); err == nil {
			err = cerr
		}
	}()

	records := make([]blockRecord, 0, m.Size())
	for _, b := range m.All() {
		records = append(records, toRecord(b))
	}
	if err := gob.NewEncoder(zw).Encode(records); err != nil {
		return fmt.Errorf("jitcore: encoding cache: %w", err)
	}
	return nil
}

// LoadFile replaces m's contents with the blocks persisted at path. On
// any error m is left unmodified.
//
// Loading never trusts file contents for control flow: a record whose
// PcStart or PcEnd fails ext's alignment rule cannot have come from a
// genuine Translate call under this ISA profile, so it is discarded
// rather than inserted, the same way a gob decode error is treated as
// recoverable corruption instead of a reason to panic.
func (m *BlockMap) LoadFile(path string, ext decode.Extensions) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("jitcore: opening cache file: %w", err)
	}
	defer f.Close()

	zr, err := zstd.NewReader(bufio.NewReader(f))
	if err != nil {
		return fmt.Errorf("jitcore: starting zstd reader: %w", err)
	}
	defer zr.Close()

	var records []blockRecord
	if err := gob.NewDecoder(zr).Decode(&records); err != nil {
		return fmt.Errorf("jitcore: decoding cache: %w", err)
	}

	mask := ext.PCAlignMask()
	valid := records[:0]
	for _, r := range records {
		if r.PcStart&mask != 0 || r.PcEnd&mask != 0 {
			continue
		}
		valid = append(valid, r)
	}

	// Pick a capacity that keeps the reloaded map comfortably under the
	// 1.25 load-factor threshold instead of inheriting whatever bits m
	// happened to have before the load.
	bits := uint(1)
	for float64(len(valid))*1.25 > float64(uint32(1)<<bits) {
		bits++
	}
	fresh := NewBlockMap(bits)
	for _, r := range valid {
		fresh.Insert(fromRecord(r))
	}
	*m = *fresh
	return nil
}

func toRecord(b *Block) blockRecord {
	r := blockRecord{PcStart: b.PcStart, PcEnd: b.PcEnd}
	r.Instructions = make([]blockInstruction, len(b.Instructions))
	for i, in := range b.Instructions {
		r.Instructions[i] = blockInstruction{
			Op: int(in.Op), Rd: in.Rd, Rs1: in.Rs1, Rs2: in.Rs2, Rs3: in.Rs3,
			Imm: in.Imm, Csr: in.Csr, Rm: in.Rm, Width: in.Width, Raw: in.Raw,
		}
	}
	return r
}

func fromRecord(r blockRecord) *Block {
	b := &Block{PcStart: r.PcStart, PcEnd: r.PcEnd}
	b.Instructions = make([]decode.Instruction, len(r.Instructions))
	for i, in := range r.Instructions {
		b.Instructions[i] = decode.Instruction{
			Op: decode.Op(in.Op), Rd: in.Rd, Rs1: in.Rs1, Rs2: in.Rs2, Rs3: in.Rs3,
			Imm: in.Imm, Csr: in.Csr, Rm: in.Rm, Width: in.Width, Raw: in.Raw,
		}
	}
	return b
}
