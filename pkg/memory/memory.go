// Package memory implements the sparse 32-bit guest address space used by
// the RV32 hart: a flat array of page-chunked slots, demand-allocated on
// first write and reading as zero until then.
//
// The architecture is inspired by that of the RiSC-32 VM
// <https://user.eng.umd.edu/~blj/RiSC/>, generalised from a single dense
// word array to a sparse chunk table so a 32-bit address space does not
// require 4 GiB of host memory up front.
package memory

const (
	// chunkBits is the number of low address bits contained in a chunk.
	chunkBits = 16
	// chunkSize is the number of bytes in a chunk (64 KiB).
	chunkSize = 1 << chunkBits
	// chunkMask extracts the in-chunk offset from an address.
	chunkMask = chunkSize - 1
	// numSlots is the number of chunk slots covering the 32-bit space.
	numSlots = 1 << (32 - chunkBits)
)

// chunk is one demand-allocated 64 KiB slice of the address space.
type chunk = [chunkSize]byte

// Memory is the guest's sparse 32-bit physical address space. It is
// created alongside a hart, owned exclusively by it, and torn down when
// the hart is discarded; nothing else should retain a Memory value.
type Memory struct {
	slots [numSlots]*chunk
}

// New returns an empty memory image; every address reads as zero until
// first written.
func New() *Memory {
	return &Memory{}
}

func slotIndex(addr uint32) (uint32, uint32) {
	return addr >> chunkBits, addr & chunkMask
}

func (m *Memory) chunkFor(addr uint32, allocate bool) *chunk {
	slot, _ := slotIndex(addr)
	c := m.slots[slot]
	if c == nil && allocate {
		c = new(chunk)
		m.slots[slot] = c
	}
	return c
}

// ReadByte returns the byte at addr, or zero if its chunk is unallocated.
func (m *Memory) ReadByte(addr uint32) uint8 {
	c := m.chunkFor(addr, false)
	if c == nil {
		return 0
	}
	_, off := slotIndex(addr)
	return c[off]
}

// ReadHalf returns the little-endian half-word at addr. A half that
// straddles a chunk boundary falls back to the byte-wise path.
func (m *Memory) ReadHalf(addr uint32) uint16 {
	_, off := slotIndex(addr)
	if off == chunkMask {
		return uint16(m.ReadByte(addr)) | uint16(m.ReadByte(addr+1))<<8
	}
	c := m.chunkFor(addr, false)
	if c == nil {
		return 0
	}
	return uint16(c[off]) | uint16(c[off+1])<<8
}

// ReadWord returns the little-endian word at addr. A word that straddles
// a chunk boundary falls back to the byte-wise path.
func (m *Memory) ReadWord(addr uint32) uint32 {
	_, off := slotIndex(addr)
	if off > chunkMask-3 {
		var v uint32
		for i := uint32(0); i < 4; i++ {
			v |= uint32(m.ReadByte(addr+i)) << (8 * i)
		}
		return v
	}
	c := m.chunkFor(addr, false)
	if c == nil {
		return 0
	}
	return uint32(c[off]) | uint32(c[off+1])<<8 | uint32(c[off+2])<<16 | uint32(c[off+3])<<24
}

// Ifetch reads a 32-bit instruction word at addr. Callers guarantee addr
// is correctly aligned for the active ISA profile and that the covering
// chunk is present; fetching from unallocated memory is a programmer
// error in the loader, not a guest exception, and panics.
func (m *Memory) Ifetch(addr uint32) uint32 {
	c := m.chunkFor(addr, false)
	if c == nil {
		panic("memory: instruction fetch from unallocated chunk")
	}
	_, off := slotIndex(addr)
	if off > chunkMask-3 {
		var v uint32
		for i := uint32(0); i < 4; i++ {
			v |= uint32(m.ReadByte(addr+i)) << (8 * i)
		}
		return v
	}
	return uint32(c[off]) | uint32(c[off+1])<<8 | uint32(c[off+2])<<16 | uint32(c[off+3])<<24
}

// WriteByte stores a byte at addr, allocating the covering chunk on
// first touch.
func (m *Memory) WriteByte(addr uint32, v uint8) {
	c := m.chunkFor(addr, true)
	_, off := slotIndex(addr)
	c[off] = v
}

// WriteHalf stores a little-endian half-word at addr.
func (m *Memory) WriteHalf(addr uint32, v uint16) {
	_, off := slotIndex(addr)
	if off == chunkMask {
		m.WriteByte(addr, uint8(v))
		m.WriteByte(addr+1, uint8(v>>8))
		return
	}
	c := m.chunkFor(addr, true)
	c[off] = uint8(v)
	c[off+1] = uint8(v >> 8)
}

// WriteWord stores a little-endian word at addr.
func (m *Memory) WriteWord(addr uint32, v uint32) {
	_, off := slotIndex(addr)
	if off > chunkMask-3 {
		for i := uint32(0); i < 4; i++ {
			m.WriteByte(addr+i, uint8(v>>(8*i)))
		}
		return
	}
	c := m.chunkFor(addr, true)
	c[off] = uint8(v)
	c[off+1] = uint8(v >> 8)
	c[off+2] = uint8(v >> 16)
	c[off+3] = uint8(v >> 24)
}

// ReadBytes bulk-reads n bytes starting at addr into dst, zero for any
// byte whose covering chunk is unallocated. dst must have length >= n.
func (m *Memory) ReadBytes(dst []byte, addr uint32, n int) {
	for i := 0; i < n; i++ {
		dst[i] = m.ReadByte(addr + uint32(i))
	}
}

// WriteBytes bulk-writes src[:n] starting at addr, allocating chunks as
// needed.
func (m *Memory) WriteBytes(addr uint32, src []byte, n int) {
	for i := 0; i < n; i++ {
		m.WriteByte(addr+uint32(i), src[i])
	}
}

// Fill sets n bytes starting at addr to value, allocating chunks as
// needed.
func (m *Memory) Fill(addr uint32, n int, value byte) {
	for i := 0; i < n; i++ {
		m.WriteByte(addr+uint32(i), value)
	}
}

// ReadCString reads a NUL-terminated string starting at addr into dst,
// returning the length including the terminating NUL. The scan always
// continues through memory even once dst is full, matching the "a full
// destination never truncates the scan" contract used by the rest of
// the read path.
func (m *Memory) ReadCString(dst []byte, addr uint32, max int) int {
	var n int
	for n = 0; n < max; n++ {
		b := m.ReadByte(addr + uint32(n))
		if n < len(dst) {
			dst[n] = b
		}
		if b == 0 {
			return n + 1
		}
	}
	return n
}
