package hostio

import "github.com/bassosimone/rv32emu/pkg/memory"

// FlatMemory adapts a single pkg/memory.Memory into the Interface the
// core expects, with ECall/EBreak delegated to host-supplied closures.
// This is the "one flat address space, nothing memory-mapped" case; a
// host that wants devices mapped into specific ranges implements
// Interface directly instead of using this adapter.
type FlatMemory struct {
	Mem     *memory.Memory
	ECall   func()
	EBreak  func()
}

var _ Interface = (*FlatMemory)(nil)

// NewFlatMemory wires a fresh Memory to the given ECALL/EBREAK
// handlers. Either handler may be nil, in which case the corresponding
// callback is a no-op.
func NewFlatMemory(ecall, ebreak func()) *FlatMemory {
	return &FlatMemory{Mem: memory.New(), ECall: ecall, EBreak: ebreak}
}

func (f *FlatMemory) MemIfetch(addr uint32) uint32    { return f.Mem.Ifetch(addr) }
func (f *FlatMemory) MemReadWord(addr uint32) uint32  { return f.Mem.ReadWord(addr) }
func (f *FlatMemory) MemReadHalf(addr uint32) uint16  { return f.Mem.ReadHalf(addr) }
func (f *FlatMemory) MemReadByte(addr uint32) uint8   { return f.Mem.ReadByte(addr) }

func (f *FlatMemory) MemWriteWord(addr uint32, v uint32) { f.Mem.WriteWord(addr, v) }
func (f *FlatMemory) MemWriteHalf(addr uint32, v uint16) { f.Mem.WriteHalf(addr, v) }
func (f *FlatMemory) MemWriteByte(addr uint32, v uint8)  { f.Mem.WriteByte(addr, v) }

func (f *FlatMemory) OnECall() {
	if f.ECall != nil {
		f.ECall()
	}
}

func (f *FlatMemory) OnEBreak() {
	if f.EBreak != nil {
		f.EBreak()
	}
}
