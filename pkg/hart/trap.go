package hart

// trap redirects control flow through mtvec per §4.3's minimal trap
// path. epc is the PC to record in mepc (the pre-trap PC for
// data/illegal traps, or the PC that issued the control transfer for a
// misaligned-fetch trap taken on a branch/jump); tval is the
// offending value (misaligned address, illegal instruction word, or
// misaligned-fetch target). The trapping instruction is never retired:
// callers must return false from their opcode handler so the step
// loop re-enters at the new PC without incrementing the cycle counter.
func (h *Hart) trap(code uint32, epc uint32, tval uint32) {
	h.Mepc = epc
	h.Mtval = tval
	h.Mcause = code
	base := h.Mtvec &^ 0x3
	mode := h.Mtvec & 0x3
	if mode == 1 {
		h.PC = base + 4*code
	} else {
		h.PC = base
	}
}
