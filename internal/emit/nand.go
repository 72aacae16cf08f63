package emit

import (
	"github.com/tefla/wire-hdl/api"
	"github.com/tefla/wire-hdl/internal/netlist"
	"github.com/tefla/wire-hdl/internal/wasmbin"
)

// emitNandGate lowers one gate to out <- (in1 & in2) ^ 1, with the
// emit-time constant folding §4.6 specifies: a const_0 operand forces the
// output constant 1, two const_1 operands force it constant 0. Folded
// gates are written directly with no memory read, matching "they never
// read memory".
func emitNandGate(fb *funcBuilder, g netlist.NandGate, scratch uint32) {
	if g.In1 == api.ConstZeroSignal || g.In2 == api.ConstZeroSignal {
		storeConstBit(fb, g.Out, 1, scratch)
		return
	}
	if g.In1 == api.ConstOneSignal && g.In2 == api.ConstOneSignal {
		storeConstBit(fb, g.Out, 0, scratch)
		return
	}

	loadBit(fb, g.In1)
	loadBit(fb, g.In2)
	fb.op(wasmbin.OpI32And)
	fb.i32Const(1)
	fb.op(wasmbin.OpI32Xor)
	storeBit(fb, g.Out, scratch)
}
