// Package jitcore implements a block-translation cache: runs of
// instructions from pc_start to the first control-transfer instruction
// are decoded once and kept as a Block, so a caller that re-enters the
// same basic block doesn't re-fetch and re-decode every instruction on
// every pass. It does not emit native machine code (there is no
// platform-specific backend here); "translation" means "decode once,
// cache the decoded form," with the cache keyed and managed the same
// way the reference interpreter's native JIT keys and manages its
// compiled blocks.
package jitcore

import "github.com/bassosimone/rv32emu/pkg/decode"

// Block is a translated basic block: a contiguous run of decoded
// instructions starting at PcStart and ending at the instruction that
// terminates the block (inclusive): a control transfer, ECALL, EBREAK,
// MRET, an undecodable word, or the last instruction Translate takes
// before reaching its per-block instruction cap. PcEnd is the address
// just past that instruction.
type Block struct {
	PcStart, PcEnd uint32
	Instructions   []decode.Instruction

	// Predict is a non-owning hint at the block most recently observed
	// to follow this one; it is a cache for locality, never consulted
	// for correctness, and may point at a stale or since-evicted block.
	Predict *Block
}
