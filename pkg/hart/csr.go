package hart

// CSR addresses observable through CSRRW/CSRRS/CSRRC, per §6 of the
// architecture spec this hart implements.
const (
	CsrFflags   = 0x001
	CsrFcsr     = 0x003
	CsrMstatus  = 0x300
	CsrMisa     = 0x301
	CsrMtvec    = 0x305
	CsrMscratch = 0x340
	CsrMepc     = 0x341
	CsrMcause   = 0x342
	CsrMtval    = 0x343
	CsrMip      = 0x344
	CsrCycle    = 0xC00
	CsrCycleH   = 0xC80
)

// csrEntry is one row of the CSR access table described in the core's
// design notes: an address, a getter/setter pair, and whether writes
// are honoured at all. A single csrAccess primitive then implements
// CSRRW/CSRRS/CSRRC/CSRRWI/CSRRSI/CSRRCI uniformly instead of a
// per-address switch inside each of the six opcode handlers.
type csrEntry struct {
	addr      uint32
	get       func(h *Hart) uint32
	set       func(h *Hart, v uint32)
	readOnly  bool
}

func (h *Hart) csrTable() []csrEntry {
	return []csrEntry{
		{addr: CsrFflags, get: func(h *Hart) uint32 { return h.Fcsr & 0x1f }, set: func(h *Hart, v uint32) {
			h.Fcsr = (h.Fcsr &^ 0x1f) | (v & 0x1f)
		}},
		{addr: CsrFcsr, get: func(h *Hart) uint32 { return h.Fcsr }, set: func(h *Hart, v uint32) { h.Fcsr = v & 0xff }},
		{addr: CsrMstatus, get: func(h *Hart) uint32 { return h.Mstatus }, set: func(h *Hart, v uint32) { h.Mstatus = v }},
		{addr: CsrMisa, get: func(h *Hart) uint32 { return h.Misa }, set: func(h *Hart, v uint32) { h.Misa = v }},
		{addr: CsrMtvec, get: func(h *Hart) uint32 { return h.Mtvec }, set: func(h *Hart, v uint32) { h.Mtvec = v }},
		{addr: CsrMscratch, get: func(h *Hart) uint32 { return h.Mscratch }, set: func(h *Hart, v uint32) { h.Mscratch = v }},
		{addr: CsrMepc, get: func(h *Hart) uint32 { return h.Mepc }, set: func(h *Hart, v uint32) { h.Mepc = v }},
		{addr: CsrMcause, get: func(h *Hart) uint32 { return h.Mcause }, set: func(h *Hart, v uint32) { h.Mcause = v }},
		{addr: CsrMtval, get: func(h *Hart) uint32 { return h.Mtval }, set: func(h *Hart, v uint32) { h.Mtval = v }},
		{addr: CsrMip, get: func(h *Hart) uint32 { return h.Mip }, set: func(h *Hart, v uint32) { h.Mip = v }},
		{addr: CsrCycle, get: func(h *Hart) uint32 { return uint32(h.Mcycle) }, readOnly: true},
		{addr: CsrCycleH, get: func(h *Hart) uint32 { return uint32(h.Mcycle >> 32) }, readOnly: true},
	}
}

func (h *Hart) lookupCsr(addr uint32) *csrEntry {
	// Addresses >= 0xC00 are read-only by architectural rule regardless
	// of whether their csrTable entry carries an explicit readOnly
	// flag; the flag on the CsrCycle/CsrCycleH entries is redundant
	// with this check but documents the rule where they are defined.
	for _, e := range h.csrTable() {
		if e.addr == addr {
			if addr >= 0xC00 {
				e.readOnly = true
			}
			return &e
		}
	}
	return nil
}

// csrRead returns the current value of the CSR at addr, or zero if addr
// names no implemented CSR.
func (h *Hart) csrRead(addr uint32) uint32 {
	e := h.lookupCsr(addr)
	if e == nil {
		return 0
	}
	return e.get(h)
}

// csrWrite attempts to store v into the CSR at addr. Writes to
// read-only CSRs (address >= 0xC00, or any entry so marked) are
// silently ignored, per §3's invariant.
func (h *Hart) csrWrite(addr uint32, v uint32) {
	e := h.lookupCsr(addr)
	if e == nil || e.readOnly || e.set == nil {
		return
	}
	e.set(h, v)
}

// csrOp implements the read-modify-write semantics shared by
// CSRRW/CSRRS/CSRRC (and their immediate forms): read the old value,
// apply modify (if any) to compute the new value, write it through
// csrWrite, and return the old value for the architectural writeback.
//
//	modify == nil means an unconditional write (CSRRW): new = in.
//	modify != nil computes new from (old, in) for CSRRS/CSRRC.
func (h *Hart) csrOp(addr uint32, in uint32, modify func(old, in uint32) uint32) uint32 {
	old := h.csrRead(addr)
	var next uint32
	if modify == nil {
		next = in
	} else {
		next = modify(old, in)
	}
	h.csrWrite(addr, next)
	return old
}
