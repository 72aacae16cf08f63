package rv32i

// instFormat identifies which of RV32I's six instruction encodings a
// mnemonic uses.
type instFormat byte

const (
	fmtR instFormat = iota
	fmtI
	fmtIShift // shift-by-immediate I-type: the low 5 bits of imm are a shamt, the high 7 bits are a fixed funct7
	fmtS
	fmtB
	fmtU
	fmtJ
	fmtSystem // no operands, imm fully fixed (ECALL/EBREAK)
	fmtFence  // no operands, fully fixed encoding
)

const (
	opLoad    = 0x03
	opMiscMem = 0x0F
	opOpImm   = 0x13
	opAuipc   = 0x17
	opStore   = 0x23
	opOp      = 0x33
	opLui     = 0x37
	opBranch  = 0x63
	opJalr    = 0x67
	opJal     = 0x6F
	opSystem  = 0x73
)

type opSpec struct {
	format  instFormat
	opcode  uint32
	funct3  uint32
	funct7  uint32
	imm12   uint32 // fixed immediate for fmtSystem/fmtFence (ECALL=0, EBREAK=1)
}

// instructions is the RV32I base integer instruction set, keyed by
// mnemonic: every R/I/S/B/U/J-format opcode in the unprivileged base ISA
// plus FENCE/ECALL/EBREAK. There is no pack or other_examples reference
// for RV32I encoding (see DESIGN.md); these opcode/funct3/funct7 values
// are the public RV32I base ISA encoding.
var instructions = map[string]opSpec{
	"ADD":  {format: fmtR, opcode: opOp, funct3: 0x0, funct7: 0x00},
	"SUB":  {format: fmtR, opcode: opOp, funct3: 0x0, funct7: 0x20},
	"SLL":  {format: fmtR, opcode: opOp, funct3: 0x1, funct7: 0x00},
	"SLT":  {format: fmtR, opcode: opOp, funct3: 0x2, funct7: 0x00},
	"SLTU": {format: fmtR, opcode: opOp, funct3: 0x3, funct7: 0x00},
	"XOR":  {format: fmtR, opcode: opOp, funct3: 0x4, funct7: 0x00},
	"SRL":  {format: fmtR, opcode: opOp, funct3: 0x5, funct7: 0x00},
	"SRA":  {format: fmtR, opcode: opOp, funct3: 0x5, funct7: 0x20},
	"OR":   {format: fmtR, opcode: opOp, funct3: 0x6, funct7: 0x00},
	"AND":  {format: fmtR, opcode: opOp, funct3: 0x7, funct7: 0x00},

	"ADDI":  {format: fmtI, opcode: opOpImm, funct3: 0x0},
	"SLTI":  {format: fmtI, opcode: opOpImm, funct3: 0x2},
	"SLTIU": {format: fmtI, opcode: opOpImm, funct3: 0x3},
	"XORI":  {format: fmtI, opcode: opOpImm, funct3: 0x4},
	"ORI":   {format: fmtI, opcode: opOpImm, funct3: 0x6},
	"ANDI":  {format: fmtI, opcode: opOpImm, funct3: 0x7},

	"SLLI": {format: fmtIShift, opcode: opOpImm, funct3: 0x1, funct7: 0x00},
	"SRLI": {format: fmtIShift, opcode: opOpImm, funct3: 0x5, funct7: 0x00},
	"SRAI": {format: fmtIShift, opcode: opOpImm, funct3: 0x5, funct7: 0x20},

	"LB":  {format: fmtI, opcode: opLoad, funct3: 0x0},
	"LH":  {format: fmtI, opcode: opLoad, funct3: 0x1},
	"LW":  {format: fmtI, opcode: opLoad, funct3: 0x2},
	"LBU": {format: fmtI, opcode: opLoad, funct3: 0x4},
	"LHU": {format: fmtI, opcode: opLoad, funct3: 0x5},

	"JALR": {format: fmtI, opcode: opJalr, funct3: 0x0},

	"SB": {format: fmtS, opcode: opStore, funct3: 0x0},
	"SH": {format: fmtS, opcode: opStore, funct3: 0x1},
	"SW": {format: fmtS, opcode: opStore, funct3: 0x2},

	"BEQ":  {format: fmtB, opcode: opBranch, funct3: 0x0},
	"BNE":  {format: fmtB, opcode: opBranch, funct3: 0x1},
	"BLT":  {format: fmtB, opcode: opBranch, funct3: 0x4},
	"BGE":  {format: fmtB, opcode: opBranch, funct3: 0x5},
	"BLTU": {format: fmtB, opcode: opBranch, funct3: 0x6},
	"BGEU": {format: fmtB, opcode: opBranch, funct3: 0x7},

	"LUI":   {format: fmtU, opcode: opLui},
	"AUIPC": {format: fmtU, opcode: opAuipc},

	"JAL": {format: fmtJ, opcode: opJal},

	"ECALL":  {format: fmtSystem, opcode: opSystem, funct3: 0x0, imm12: 0x000},
	"EBREAK": {format: fmtSystem, opcode: opSystem, funct3: 0x0, imm12: 0x001},

	"FENCE": {format: fmtFence, opcode: opMiscMem},
}
