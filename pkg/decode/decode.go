// Package decode converts a 16- or 32-bit RISC-V instruction word into a
// tagged Instruction value. It implements the bit-field extraction rules
// of the RV32I base encoding, the M/A/F standard extensions, Zicsr,
// Zifencei, and the C (RVC) compressed encoding, each of which can be
// toggled independently via Extensions.
package decode

// Decode classifies and decodes a fetched instruction word. When the low
// two bits of word are 0b11 the instruction is the 32-bit encoding;
// otherwise it is a 16-bit compressed encoding and only its low 16 bits
// are significant. An encoding that is unrecognised, or that belongs to
// a disabled extension, decodes to Op == Unknown.
func Decode(word uint32, ext Extensions) Instruction {
	if word&0x3 == 0x3 {
		return decode32(word, ext)
	}
	return decode16(uint16(word), ext)
}

// Width reports the instruction width (2 or 4 bytes) a raw word would
// decode to, without doing the full decode. Useful for PC bookkeeping
// paths that only need to know how far to advance.
func Width(word uint32) int {
	if word&0x3 == 0x3 {
		return 4
	}
	return 2
}
