package emit

import (
	"github.com/tefla/wire-hdl/api"
	"github.com/tefla/wire-hdl/internal/wasmbin"
)

// loadBit emits code that leaves a clean 0/1 value on the stack for the
// given signal: a constant-address i32.load, masked down to its bit, then
// shifted right so the bit lands at position 0 — the "constant byte
// offset (id>>5)<<2, constant bit mask 1<<(id&31)" layout from §4.6.
func loadBit(fb *funcBuilder, id api.SignalId) {
	fb.i32Const(int32(api.SignalWordOffset(id)))
	fb.loadI32()
	fb.i32Const(int32(api.SignalBitMask(id)))
	fb.op(wasmbin.OpI32And)
	bitpos := int32(id & 31)
	if bitpos != 0 {
		fb.i32Const(bitpos)
		fb.op(wasmbin.OpI32ShrU)
	}
}

// storeBit emits code that consumes a 0/1 value already on top of the
// stack and writes it into the given signal's bit, leaving every other
// bit of the containing word untouched (read-modify-write through
// scratch, since WASM has no bit-level store instruction).
func storeBit(fb *funcBuilder, id api.SignalId, scratch uint32) {
	fb.localSet(scratch)
	offset := int32(api.SignalWordOffset(id))
	mask := int32(api.SignalBitMask(id))
	bitpos := int32(id & 31)

	fb.i32Const(offset) // address for the eventual store
	fb.i32Const(offset) // address for the load
	fb.loadI32()
	fb.i32Const(^mask)
	fb.op(wasmbin.OpI32And)
	fb.localGet(scratch)
	if bitpos != 0 {
		fb.i32Const(bitpos)
		fb.op(wasmbin.OpI32Shl)
	}
	fb.op(wasmbin.OpI32Or)
	fb.storeI32()
}

// storeConstBit writes a compile-time-known bit value directly, without
// reading memory first — used for constant-folded NAND outputs. The
// const_1 bit itself is set by the host, not by emitted code.
func storeConstBit(fb *funcBuilder, id api.SignalId, bit int32, scratch uint32) {
	fb.i32Const(bit)
	storeBit(fb, id, scratch)
}
