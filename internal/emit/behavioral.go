package emit

import (
	"fmt"

	"github.com/tefla/wire-hdl/internal/behavior"
	"github.com/tefla/wire-hdl/internal/netlist"
	"github.com/tefla/wire-hdl/internal/wasmbin"
)

// compileBehavioral builds the standalone, unexported WASM function body
// for one behavioral instance: unpack its bound input signals into the
// module's locals, run the lowered IR, pack the output locals back into
// their bound signals. One function per *instance* (not per module
// definition) because the bound signal ids differ per instance even when
// two instances share a module type.
func compileBehavioral(inst netlist.BehavioralInstance, mod *behavior.Module) ([]byte, error) {
	fb := newFuncBuilder(0)
	for range mod.Locals {
		fb.addLocal()
	}
	scratch := fb.addLocal()
	divX := fb.addLocal()
	divY := fb.addLocal()

	for _, name := range mod.InputNames {
		ids, ok := inst.Inputs[name]
		if !ok {
			return nil, fmt.Errorf("emit: behavioral instance %s: no binding for input %q", inst.ModuleName, name)
		}
		idx := uint32(mod.LocalIndex(name))
		for bit, id := range ids {
			fb.localGet(idx)
			loadBit(fb, id)
			if bit != 0 {
				fb.i32Const(int32(bit))
				fb.op(wasmbin.OpI32Shl)
			}
			fb.op(wasmbin.OpI32Or)
			fb.localSet(idx)
		}
	}

	c := &bcompiler{fb: fb, mod: mod, divX: divX, divY: divY}
	if err := c.block(mod.Body); err != nil {
		return nil, err
	}

	for _, name := range mod.OutputNames {
		ids, ok := inst.Outputs[name]
		if !ok {
			return nil, fmt.Errorf("emit: behavioral instance %s: no binding for output %q", inst.ModuleName, name)
		}
		idx := uint32(mod.LocalIndex(name))
		for bit, id := range ids {
			fb.localGet(idx)
			if bit != 0 {
				fb.i32Const(int32(bit))
				fb.op(wasmbin.OpI32ShrU)
			}
			fb.i32Const(1)
			fb.op(wasmbin.OpI32And)
			storeBit(fb, id, scratch)
		}
	}

	return fb.finish(), nil
}

// bcompiler translates behavior IR statements/expressions into WASM
// instructions against fb, one module at a time. It does not translate
// ExprCall: lowering keeps cross-module calls as ExprCall nodes (see
// internal/behavior/lower.go), and a behavioral body containing one makes
// Emit fail with an unsupported-expression error.
type bcompiler struct {
	fb        *funcBuilder
	mod       *behavior.Module
	divX, divY uint32
}

func (c *bcompiler) block(stmts []behavior.Stmt) error {
	for _, s := range stmts {
		if err := c.stmt(s); err != nil {
			return err
		}
	}
	return nil
}

func (c *bcompiler) stmt(s behavior.Stmt) error {
	switch {
	case s.Let != nil:
		if err := c.expr(s.Let.Value); err != nil {
			return err
		}
		c.maskTo(s.Let.Width)
		c.fb.localSet(uint32(s.Let.LocalIndex))
		return nil

	case s.Assign != nil:
		if err := c.expr(s.Assign.Value); err != nil {
			return err
		}
		c.maskTo(c.mod.Locals[s.Assign.LocalIndex].Width)
		c.fb.localSet(uint32(s.Assign.LocalIndex))
		return nil

	case s.If != nil:
		if err := c.expr(s.If.Cond); err != nil {
			return err
		}
		c.fb.op(wasmbin.OpIf) // WASM `if` treats any nonzero i32 as true
		c.fb.code.WriteVarInt32(wasmbin.BlockTypeVoid)
		if err := c.block(s.If.Then); err != nil {
			return err
		}
		if len(s.If.Else) > 0 {
			c.fb.elseOp()
			if err := c.block(s.If.Else); err != nil {
				return err
			}
		}
		c.fb.end()
		return nil

	case s.Match != nil:
		return c.matchStmt(s.Match)
	}
	return fmt.Errorf("emit: empty behavioral statement")
}

// matchStmt lowers to a cascade of equality/range tests, first-match-wins
// exactly like the reference interpreter in internal/behavior/eval.go.
func (c *bcompiler) matchStmt(m *behavior.MatchStmt) error {
	subject := c.fb.addLocal()
	if err := c.expr(m.Subject); err != nil {
		return err
	}
	c.fb.localSet(subject)

	depth := 0
	for _, arm := range m.Arms {
		if arm.Pattern.Kind == behavior.PatWildcard {
			if err := c.block(arm.Body); err != nil {
				return err
			}
			break
		}
		c.fb.localGet(subject)
		switch arm.Pattern.Kind {
		case behavior.PatNumber:
			c.fb.i32Const(int32(arm.Pattern.Number))
			c.fb.op(wasmbin.OpI32Eq)
		case behavior.PatRange:
			c.fb.i32Const(int32(arm.Pattern.Lo))
			c.fb.op(wasmbin.OpI32GeS)
			c.fb.localGet(subject)
			c.fb.i32Const(int32(arm.Pattern.Hi))
			c.fb.op(wasmbin.OpI32LeS)
			c.fb.op(wasmbin.OpI32And)
		}
		c.fb.op(wasmbin.OpIf)
		c.fb.code.WriteVarInt32(wasmbin.BlockTypeVoid)
		if err := c.block(arm.Body); err != nil {
			return err
		}
		c.fb.elseOp()
		depth++
	}
	for ; depth > 0; depth-- {
		c.fb.end()
	}
	return nil
}

// maskTo masks the top-of-stack value to width bits, by ANDing with the
// matching bitmask, unless width already covers the full 32-bit word.
func (c *bcompiler) maskTo(width int) {
	if width >= 32 {
		return
	}
	c.fb.i32Const(int32((uint32(1) << uint(width)) - 1))
	c.fb.op(wasmbin.OpI32And)
}

func (c *bcompiler) expr(e behavior.Expr) error {
	switch e.Kind {
	case behavior.ExprLiteral:
		c.fb.i32Const(int32(e.Literal))
		return nil

	case behavior.ExprLocal:
		c.fb.localGet(uint32(e.LocalIndex))
		return nil

	case behavior.ExprUnary:
		if err := c.expr(*e.X); err != nil {
			return err
		}
		if e.UnOp == behavior.OpBitNot {
			c.fb.i32Const(-1)
			c.fb.op(wasmbin.OpI32Xor)
		} else {
			c.fb.op(wasmbin.OpI32Eqz)
		}
		return nil

	case behavior.ExprBinary:
		return c.binary(e)

	case behavior.ExprTernary:
		if err := c.expr(*e.X); err != nil {
			return err
		}
		if err := c.expr(*e.Y); err != nil {
			return err
		}
		if err := c.expr(*e.Cond); err != nil {
			return err
		}
		c.fb.op(wasmbin.OpSelect)
		return nil

	case behavior.ExprBitIndex:
		if err := c.expr(*e.X); err != nil {
			return err
		}
		if err := c.expr(*e.Index); err != nil {
			return err
		}
		c.fb.i32Const(31)
		c.fb.op(wasmbin.OpI32And)
		c.fb.op(wasmbin.OpI32ShrU)
		c.fb.i32Const(1)
		c.fb.op(wasmbin.OpI32And)
		return nil

	case behavior.ExprSlice:
		if err := c.expr(*e.X); err != nil {
			return err
		}
		if e.Lo != 0 {
			c.fb.i32Const(int32(e.Lo))
			c.fb.op(wasmbin.OpI32ShrU)
		}
		width := e.Hi - e.Lo + 1
		c.maskTo(width)
		return nil

	case behavior.ExprConcat:
		return c.concat(e)
	}
	return fmt.Errorf("emit: unsupported behavioral expression kind %v", e.Kind)
}

func (c *bcompiler) binary(e behavior.Expr) error {
	if e.BinOp == behavior.OpDiv || e.BinOp == behavior.OpMod {
		return c.guardedDivMod(e)
	}
	if err := c.expr(*e.X); err != nil {
		return err
	}
	if err := c.expr(*e.Y); err != nil {
		return err
	}
	op, ok := binOpcodes[e.BinOp]
	if !ok {
		return fmt.Errorf("emit: unsupported binary op %v", e.BinOp)
	}
	c.fb.op(op)
	return nil
}

var binOpcodes = map[behavior.BinOp]byte{
	behavior.OpAdd: wasmbin.OpI32Add,
	behavior.OpSub: wasmbin.OpI32Sub,
	behavior.OpMul: wasmbin.OpI32Mul,
	behavior.OpAnd: wasmbin.OpI32And,
	behavior.OpOr:  wasmbin.OpI32Or,
	behavior.OpXor: wasmbin.OpI32Xor,
	behavior.OpShl: wasmbin.OpI32Shl,
	behavior.OpShr: wasmbin.OpI32ShrU,
	behavior.OpEq:  wasmbin.OpI32Eq,
	behavior.OpNe:  wasmbin.OpI32Ne,
	behavior.OpLt:  wasmbin.OpI32LtS,
	behavior.OpGt:  wasmbin.OpI32GtS,
	behavior.OpLe:  wasmbin.OpI32LeS,
	behavior.OpGe:  wasmbin.OpI32GeS,
}

// guardedDivMod implements §4.5's "division/modulo by zero yields zero"
// rule, which WASM's own i32.div_s/rem_s cannot express (they trap).
func (c *bcompiler) guardedDivMod(e behavior.Expr) error {
	if err := c.expr(*e.X); err != nil {
		return err
	}
	c.fb.localSet(c.divX)
	if err := c.expr(*e.Y); err != nil {
		return err
	}
	c.fb.localSet(c.divY)

	c.fb.localGet(c.divY)
	c.fb.op(wasmbin.OpI32Eqz)
	c.fb.ifI32()
	c.fb.i32Const(0)
	c.fb.elseOp()
	c.fb.localGet(c.divX)
	c.fb.localGet(c.divY)
	if e.BinOp == behavior.OpDiv {
		c.fb.op(wasmbin.OpI32DivS)
	} else {
		c.fb.op(wasmbin.OpI32RemS)
	}
	c.fb.end()
	return nil
}

func (c *bcompiler) concat(e behavior.Expr) error {
	// Items are listed MSB-first in source order; the lowered IR keeps
	// that order too (internal/behavior/lower.go does not reorder concat
	// items), so pack LSB-first by walking from the last item forward,
	// exactly mirroring internal/behavior/eval.go's ExprConcat handling.
	items := e.Items
	var shift uint
	for i := len(items) - 1; i >= 0; i-- {
		width := bitWidthOf(items[i])
		if i == len(items)-1 {
			if err := c.expr(items[i]); err != nil {
				return err
			}
		} else {
			acc := c.fb.addLocal()
			// acc currently holds the running result on the stack from
			// the previous iteration; stash it so we can compute the
			// next term cleanly.
			c.fb.localSet(acc)
			if err := c.expr(items[i]); err != nil {
				return err
			}
			if shift != 0 {
				c.fb.i32Const(int32(shift))
				c.fb.op(wasmbin.OpI32Shl)
			}
			c.fb.localGet(acc)
			c.fb.op(wasmbin.OpI32Or)
		}
		shift += width
	}
	return nil
}

func bitWidthOf(e behavior.Expr) uint {
	switch e.Kind {
	case behavior.ExprSlice:
		return uint(e.Hi - e.Lo + 1)
	case behavior.ExprBitIndex:
		return 1
	default:
		return 32
	}
}
