package mos6502

// addrMode names one of the 6502's addressing modes. Grounded on
// beevik-go6502's cpu.Mode enumeration; unlike that package we keep only
// the NMOS-official modes since this assembler never emits the CMOS-only
// opcodes (BRA, PHX/PLX, STZ, TRB/TSB, the (zp) forms of LDA/STA/ADC/...).
type addrMode byte

const (
	modeImm addrMode = iota
	modeZpg
	modeZpx
	modeZpy
	modeAbs
	modeAbx
	modeAby
	modeInd
	modeIdx
	modeIdy
	modeAcc
	modeImp
	modeRel
)

// size returns an addressing mode's fixed instruction length in bytes.
func (m addrMode) size() int {
	switch m {
	case modeImp, modeAcc:
		return 1
	case modeAbs, modeAbx, modeAby, modeInd:
		return 3
	default:
		return 2
	}
}

type opKey struct {
	mnemonic string
	mode     addrMode
}

// opcodes is the full NMOS 6502 instruction set (151 officially documented
// opcodes), grounded on the (sym, mode, opcode) triples of
// beevik-go6502's cpu/instructions.go `data` table, filtered to the
// entries whose `cmos` flag is false.
var opcodes = map[opKey]byte{
	{"LDA", modeImm}: 0xA9, {"LDA", modeZpg}: 0xA5, {"LDA", modeZpx}: 0xB5,
	{"LDA", modeAbs}: 0xAD, {"LDA", modeAbx}: 0xBD, {"LDA", modeAby}: 0xB9,
	{"LDA", modeIdx}: 0xA1, {"LDA", modeIdy}: 0xB1,

	{"LDX", modeImm}: 0xA2, {"LDX", modeZpg}: 0xA6, {"LDX", modeZpy}: 0xB6,
	{"LDX", modeAbs}: 0xAE, {"LDX", modeAby}: 0xBE,

	{"LDY", modeImm}: 0xA0, {"LDY", modeZpg}: 0xA4, {"LDY", modeZpx}: 0xB4,
	{"LDY", modeAbs}: 0xAC, {"LDY", modeAbx}: 0xBC,

	{"STA", modeZpg}: 0x85, {"STA", modeZpx}: 0x95, {"STA", modeAbs}: 0x8D,
	{"STA", modeAbx}: 0x9D, {"STA", modeAby}: 0x99, {"STA", modeIdx}: 0x81,
	{"STA", modeIdy}: 0x91,

	{"STX", modeZpg}: 0x86, {"STX", modeZpy}: 0x96, {"STX", modeAbs}: 0x8E,

	{"STY", modeZpg}: 0x84, {"STY", modeZpx}: 0x94, {"STY", modeAbs}: 0x8C,

	{"ADC", modeImm}: 0x69, {"ADC", modeZpg}: 0x65, {"ADC", modeZpx}: 0x75,
	{"ADC", modeAbs}: 0x6D, {"ADC", modeAbx}: 0x7D, {"ADC", modeAby}: 0x79,
	{"ADC", modeIdx}: 0x61, {"ADC", modeIdy}: 0x71,

	{"SBC", modeImm}: 0xE9, {"SBC", modeZpg}: 0xE5, {"SBC", modeZpx}: 0xF5,
	{"SBC", modeAbs}: 0xED, {"SBC", modeAbx}: 0xFD, {"SBC", modeAby}: 0xF9,
	{"SBC", modeIdx}: 0xE1, {"SBC", modeIdy}: 0xF1,

	{"CMP", modeImm}: 0xC9, {"CMP", modeZpg}: 0xC5, {"CMP", modeZpx}: 0xD5,
	{"CMP", modeAbs}: 0xCD, {"CMP", modeAbx}: 0xDD, {"CMP", modeAby}: 0xD9,
	{"CMP", modeIdx}: 0xC1, {"CMP", modeIdy}: 0xD1,

	{"CPX", modeImm}: 0xE0, {"CPX", modeZpg}: 0xE4, {"CPX", modeAbs}: 0xEC,
	{"CPY", modeImm}: 0xC0, {"CPY", modeZpg}: 0xC4, {"CPY", modeAbs}: 0xCC,

	{"BIT", modeZpg}: 0x24, {"BIT", modeAbs}: 0x2C,

	{"CLC", modeImp}: 0x18, {"SEC", modeImp}: 0x38, {"CLI", modeImp}: 0x58,
	{"SEI", modeImp}: 0x78, {"CLD", modeImp}: 0xD8, {"SED", modeImp}: 0xF8,
	{"CLV", modeImp}: 0xB8,

	{"BCC", modeRel}: 0x90, {"BCS", modeRel}: 0xB0, {"BEQ", modeRel}: 0xF0,
	{"BNE", modeRel}: 0xD0, {"BMI", modeRel}: 0x30, {"BPL", modeRel}: 0x10,
	{"BVC", modeRel}: 0x50, {"BVS", modeRel}: 0x70,

	{"BRK", modeImp}: 0x00,

	{"AND", modeImm}: 0x29, {"AND", modeZpg}: 0x25, {"AND", modeZpx}: 0x35,
	{"AND", modeAbs}: 0x2D, {"AND", modeAbx}: 0x3D, {"AND", modeAby}: 0x39,
	{"AND", modeIdx}: 0x21, {"AND", modeIdy}: 0x31,

	{"ORA", modeImm}: 0x09, {"ORA", modeZpg}: 0x05, {"ORA", modeZpx}: 0x15,
	{"ORA", modeAbs}: 0x0D, {"ORA", modeAbx}: 0x1D, {"ORA", modeAby}: 0x19,
	{"ORA", modeIdx}: 0x01, {"ORA", modeIdy}: 0x11,

	{"EOR", modeImm}: 0x49, {"EOR", modeZpg}: 0x45, {"EOR", modeZpx}: 0x55,
	{"EOR", modeAbs}: 0x4D, {"EOR", modeAbx}: 0x5D, {"EOR", modeAby}: 0x59,
	{"EOR", modeIdx}: 0x41, {"EOR", modeIdy}: 0x51,

	{"INC", modeZpg}: 0xE6, {"INC", modeZpx}: 0xF6, {"INC", modeAbs}: 0xEE,
	{"INC", modeAbx}: 0xFE,
	{"DEC", modeZpg}: 0xC6, {"DEC", modeZpx}: 0xD6, {"DEC", modeAbs}: 0xCE,
	{"DEC", modeAbx}: 0xDE,

	{"INX", modeImp}: 0xE8, {"INY", modeImp}: 0xC8,
	{"DEX", modeImp}: 0xCA, {"DEY", modeImp}: 0x88,

	{"JMP", modeAbs}: 0x4C, {"JMP", modeInd}: 0x6C,
	{"JSR", modeAbs}: 0x20,

	{"RTS", modeImp}: 0x60, {"RTI", modeImp}: 0x40, {"NOP", modeImp}: 0xEA,

	{"TAX", modeImp}: 0xAA, {"TXA", modeImp}: 0x8A, {"TAY", modeImp}: 0xA8,
	{"TYA", modeImp}: 0x98, {"TXS", modeImp}: 0x9A, {"TSX", modeImp}: 0xBA,

	{"PHA", modeImp}: 0x48, {"PLA", modeImp}: 0x68,
	{"PHP", modeImp}: 0x08, {"PLP", modeImp}: 0x28,

	{"ASL", modeAcc}: 0x0A, {"ASL", modeZpg}: 0x06, {"ASL", modeZpx}: 0x16,
	{"ASL", modeAbs}: 0x0E, {"ASL", modeAbx}: 0x1E,
	{"LSR", modeAcc}: 0x4A, {"LSR", modeZpg}: 0x46, {"LSR", modeZpx}: 0x56,
	{"LSR", modeAbs}: 0x4E, {"LSR", modeAbx}: 0x5E,
	{"ROL", modeAcc}: 0x2A, {"ROL", modeZpg}: 0x26, {"ROL", modeZpx}: 0x36,
	{"ROL", modeAbs}: 0x2E, {"ROL", modeAbx}: 0x3E,
	{"ROR", modeAcc}: 0x6A, {"ROR", modeZpg}: 0x66, {"ROR", modeZpx}: 0x76,
	{"ROR", modeAbs}: 0x6E, {"ROR", modeAbx}: 0x7E,
}

var branchMnemonics = map[string]bool{
	"BCC": true, "BCS": true, "BEQ": true, "BNE": true,
	"BMI": true, "BPL": true, "BVC": true, "BVS": true,
}

func hasMode(mnemonic string, mode addrMode) bool {
	_, ok := opcodes[opKey{mnemonic, mode}]
	return ok
}
