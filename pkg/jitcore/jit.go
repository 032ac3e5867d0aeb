package jitcore

import (
	"github.com/bassosimone/rv32emu/pkg/decode"
	"github.com/bassosimone/rv32emu/pkg/hostio"
)

// maxBlockInstructions bounds how far Translate will extend a single
// block. The reference core grows its per-block code buffer without
// any such ceiling (and, in fact, had a bug where the growth never
// ran at all — see Translate's doc comment); we keep an explicit cap
// so a block that never hits a control-transfer instruction cannot
// grow without bound.
const maxBlockInstructions = 1024

// isBlockTerminator reports whether op ends a basic block: every
// control-transfer instruction, plus ECALL/EBREAK/MRET, since all of
// these may redirect the PC somewhere FindOrTranslate did not predict.
// Unknown also ends a block, since executing it raises an
// illegal-instruction trap.
func isBlockTerminator(op decode.Op) bool {
	switch op {
	case decode.OpJAL, decode.OpJALR,
		decode.OpBEQ, decode.OpBNE, decode.OpBLT, decode.OpBGE, decode.OpBLTU, decode.OpBGEU,
		decode.OpECALL, decode.OpEBREAK, decode.OpMRET,
		decode.Unknown:
		return true
	default:
		return false
	}
}

// Translate decodes instructions starting at pc into a fresh Block,
// stopping at the first block-terminating instruction (inclusive) or
// at maxBlockInstructions, whichever comes first.
//
// The reference core's equivalent loop has a latent bug: its capacity
// check runs `break` before the `code_capacity += 20; realloc(...)`
// that was meant to grow the buffer, so the grow path is dead code and
// a block that reaches code_capacity is silently truncated one
// instruction early, with whatever instruction comes next re-decoded
// as if it started a new block. Here the instruction slice always
// grows by ordinary append, so the only truncation point is the
// explicit, intentional maxBlockInstructions ceiling above.
func Translate(io hostio.Interface, ext decode.Extensions, pc uint32) *Block {
	b := &Block{PcStart: pc, PcEnd: pc}
	cur := pc
	for len(b.Instructions) < maxBlockInstructions {
		raw := io.MemIfetch(cur)
		in := decode.Decode(raw, ext)
		b.Instructions = append(b.Instructions, in)
		cur += uint32(in.Width)
		b.PcEnd = cur
		if isBlockTerminator(in.Op) {
			break
		}
	}
	return b
}

// FindOrTranslate returns the block starting at pc, translating and
// caching it if it is not already present. When the map has crossed
// its load-factor threshold, the whole cache is cleared rather than
// grown, matching the reference core's amortised-reset policy instead
// of letting the table (and its probe chains) grow forever; Enlarge is
// available to callers that prefer to grow instead of reset.
//
// prev, if non-nil, has its Predict hint updated to the returned
// block, except when this call cleared the cache (prev was evicted
// with it); prev is otherwise unused.
func FindOrTranslate(m *BlockMap, io hostio.Interface, ext decode.Extensions, pc uint32, prev *Block) *Block {
	next := m.Find(pc)
	if next == nil {
		if m.OverLoaded() {
			m.Clear()
			prev = nil
		}
		next = Translate(io, ext, pc)
		m.Insert(next)
	}
	if prev != nil {
		prev.Predict = next
	}
	return next
}
