// Package wasmbin is the WASM binary-format layer: section/opcode
// constants, LEB128 varint encoding, and a growable little-endian byte
// buffer. Nothing here knows about signals, gates, or ISAs — it is pure
// encoding, shared by the Emitter (internal/emit) and, for its section/
// opcode naming conventions, by nothing else in this repo.
package wasmbin

// Magic and Version are the four-byte preamble every WASM module starts
// with.
const (
	Magic   uint32 = 0x6D736100 // "\0asm"
	Version uint32 = 0x01
)

// Section ids. Sections appear in this order in a valid module (barring
// custom sections, which may appear anywhere).
const (
	SectionCustom   byte = 0
	SectionType     byte = 1
	SectionImport   byte = 2
	SectionFunction byte = 3
	SectionTable    byte = 4
	SectionMemory   byte = 5
	SectionGlobal   byte = 6
	SectionExport   byte = 7
	SectionStart    byte = 8
	SectionElement  byte = 9
	SectionCode     byte = 10
	SectionData     byte = 11
)

// Import/export descriptor kinds.
const (
	KindFunc   byte = 0
	KindTable  byte = 1
	KindMemory byte = 2
	KindGlobal byte = 3
)

// Value types. This repo's WASM output only ever uses ValI32 (every
// signal, constant, and local is a 32-bit word; see §4.6's memory layout)
// but the encoder carries the full set for use by the emitted function
// signatures' type section.
const (
	ValI32 byte = 0x7F
	ValI64 byte = 0x7E
	ValF32 byte = 0x7D
	ValF64 byte = 0x7C
)

const (
	BlockTypeVoid int32 = -64
	BlockTypeI32  int32 = -1
)

// Function type form byte.
const FuncTypeForm byte = 0x60

// Control-flow opcodes.
const (
	OpUnreachable byte = 0x00
	OpNop         byte = 0x01
	OpBlock       byte = 0x02
	OpLoop        byte = 0x03
	OpIf          byte = 0x04
	OpElse        byte = 0x05
	OpEnd         byte = 0x0B
	OpBr          byte = 0x0C
	OpBrIf        byte = 0x0D
	OpReturn      byte = 0x0F
	OpCall        byte = 0x10
)

// Parametric and variable-access opcodes.
const (
	OpDrop      byte = 0x1A
	OpSelect    byte = 0x1B
	OpLocalGet  byte = 0x20
	OpLocalSet  byte = 0x21
	OpLocalTee  byte = 0x22
	OpGlobalGet byte = 0x23
	OpGlobalSet byte = 0x24
)

// Memory opcodes. This repo addresses signal storage exclusively through
// OpI32Load/OpI32Store (whole-word bitmask read-modify-write, §4.6).
const (
	OpI32Load    byte = 0x28
	OpI32Store   byte = 0x36
	OpMemorySize byte = 0x3F
	OpMemoryGrow byte = 0x40
)

const OpI32Const byte = 0x41

// i32 comparison opcodes.
const (
	OpI32Eqz byte = 0x45
	OpI32Eq  byte = 0x46
	OpI32Ne  byte = 0x47
	OpI32LtS byte = 0x48
	OpI32LtU byte = 0x49
	OpI32GtS byte = 0x4A
	OpI32GtU byte = 0x4B
	OpI32LeS byte = 0x4C
	OpI32LeU byte = 0x4D
	OpI32GeS byte = 0x4E
	OpI32GeU byte = 0x4F
)

// i32 numeric opcodes.
const (
	OpI32Add  byte = 0x6A
	OpI32Sub  byte = 0x6B
	OpI32Mul  byte = 0x6C
	OpI32DivS byte = 0x6D
	OpI32DivU byte = 0x6E
	OpI32RemS byte = 0x6F
	OpI32RemU byte = 0x70
	OpI32And  byte = 0x71
	OpI32Or   byte = 0x72
	OpI32Xor  byte = 0x73
	OpI32Shl  byte = 0x74
	OpI32ShrS byte = 0x75
	OpI32ShrU byte = 0x76
)
