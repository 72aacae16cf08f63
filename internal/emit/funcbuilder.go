package emit

import "github.com/tefla/wire-hdl/internal/wasmbin"

// funcBuilder accumulates one WASM function's instruction stream and local
// declarations. All locals this package ever declares are ValI32 — every
// signal, constant, and behavioral expression value is a 32-bit word
// (§4.5 "every expression is evaluated at 32-bit precision").
type funcBuilder struct {
	code       wasmbin.Buffer
	numParams  uint32
	numLocals  uint32 // additional (non-param) locals declared so far
}

func newFuncBuilder(numParams uint32) *funcBuilder {
	return &funcBuilder{numParams: numParams}
}

// addLocal declares one more i32 local and returns its function-wide
// index (params occupy indices [0, numParams)).
func (fb *funcBuilder) addLocal() uint32 {
	idx := fb.numParams + fb.numLocals
	fb.numLocals++
	return idx
}

func (fb *funcBuilder) op(b byte)            { fb.code.WriteByte(b) }
func (fb *funcBuilder) i32Const(v int32)     { fb.op(wasmbin.OpI32Const); fb.code.WriteVarInt32(v) }
func (fb *funcBuilder) localGet(idx uint32)  { fb.op(wasmbin.OpLocalGet); fb.code.WriteVarUint32(idx) }
func (fb *funcBuilder) localSet(idx uint32)  { fb.op(wasmbin.OpLocalSet); fb.code.WriteVarUint32(idx) }
func (fb *funcBuilder) localTee(idx uint32)  { fb.op(wasmbin.OpLocalTee); fb.code.WriteVarUint32(idx) }
func (fb *funcBuilder) call(fnIndex uint32)  { fb.op(wasmbin.OpCall); fb.code.WriteVarUint32(fnIndex) }

// memarg immediates: alignment hint (log2, we always use natural i32
// alignment = 2) then constant byte offset. The address itself is always
// pushed on the stack by the caller as an i32.const, so every load/store
// this emitter produces resolves to a compile-time-constant address plus
// a zero memarg offset — "no runtime address arithmetic" (§4.6).
func (fb *funcBuilder) loadI32() {
	fb.op(wasmbin.OpI32Load)
	fb.code.WriteVarUint32(2)
	fb.code.WriteVarUint32(0)
}

func (fb *funcBuilder) storeI32() {
	fb.op(wasmbin.OpI32Store)
	fb.code.WriteVarUint32(2)
	fb.code.WriteVarUint32(0)
}

// ifI32/elseOp/end bracket a WASM "if (result i32) ... else ... end"
// block, used for the guarded division/modulo codegen (WASM's div_s/
// rem_s trap on a zero divisor; §4.5's reference semantics instead
// defines division and modulo by zero as 0).
func (fb *funcBuilder) ifI32() {
	fb.op(wasmbin.OpIf)
	fb.code.WriteVarInt32(wasmbin.BlockTypeI32)
}
func (fb *funcBuilder) elseOp() { fb.op(wasmbin.OpElse) }
func (fb *funcBuilder) end()   { fb.op(wasmbin.OpEnd) }

// blockVoid/loopVoid bracket void-typed control structures for
// run_cycles' counting loop.
func (fb *funcBuilder) blockVoid() {
	fb.op(wasmbin.OpBlock)
	fb.code.WriteVarInt32(wasmbin.BlockTypeVoid)
}
func (fb *funcBuilder) loopVoid() {
	fb.op(wasmbin.OpLoop)
	fb.code.WriteVarInt32(wasmbin.BlockTypeVoid)
}
func (fb *funcBuilder) br(depth uint32)   { fb.op(wasmbin.OpBr); fb.code.WriteVarUint32(depth) }
func (fb *funcBuilder) brIf(depth uint32) { fb.op(wasmbin.OpBrIf); fb.code.WriteVarUint32(depth) }

// finish returns the function's code-section entry: the locals vector
// (one (count=1, type=i32) pair per declared local — simplest possible
// encoding, valid per the binary format even though it is not the most
// compact; this repo's emitter has no optimizer pass, see DESIGN.md) then
// the instruction bytes terminated by an explicit `end`.
func (fb *funcBuilder) finish() []byte {
	var out wasmbin.Buffer
	out.WriteVarUint32(fb.numLocals)
	for i := uint32(0); i < fb.numLocals; i++ {
		out.WriteVarUint32(1)
		out.WriteByte(wasmbin.ValI32)
	}
	body := fb.code.Bytes()
	out.Write(body)
	out.WriteByte(wasmbin.OpEnd)
	return out.Bytes()
}
