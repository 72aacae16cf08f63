package behavior

import "github.com/tefla/wire-hdl/api"

// Defs used at evaluation time, so a cross-module call can recurse into the
// callee's lowered body. Distinct from the lowerer's Defs only in name to
// keep the two phases visually separate; same map shape.
type EvalDefs map[string]*Module

// Eval runs m's body with the given input values (by input name, not
// width-checked here — the Elaborator is responsible for width agreement)
// and returns the resulting output values. This is the interpreter used
// when a host evaluates a behavioral module outside WASM (§5), and is also
// package behavior's own oracle for testing internal/emit's WASM lowering
// against (§8 invariant 5's spirit, applied to behavioral modules).
func Eval(m *Module, inputs map[string]uint32, defs EvalDefs) (map[string]uint32, error) {
	locals := make([]uint32, len(m.Locals))
	for name, v := range inputs {
		idx := m.LocalIndex(name)
		if idx < 0 {
			continue
		}
		locals[idx] = v & widthMask(m.Locals[idx].Width)
	}

	e := &evaluator{m: m, locals: locals, defs: defs}
	if err := e.runBlock(m.Body); err != nil {
		return nil, err
	}

	out := make(map[string]uint32, len(m.OutputNames))
	for _, name := range m.OutputNames {
		idx := m.LocalIndex(name)
		out[name] = e.locals[idx] & widthMask(m.Locals[idx].Width)
	}
	return out, nil
}

type evaluator struct {
	m      *Module
	locals []uint32
	defs   EvalDefs
}

func widthMask(width int) uint32 {
	if width >= 32 {
		return 0xFFFFFFFF
	}
	return (uint32(1) << uint(width)) - 1
}

func (e *evaluator) runBlock(stmts []Stmt) error {
	for _, s := range stmts {
		if err := e.runStmt(s); err != nil {
			return err
		}
	}
	return nil
}

func (e *evaluator) runStmt(s Stmt) error {
	switch {
	case s.Let != nil:
		v, err := e.eval(s.Let.Value)
		if err != nil {
			return err
		}
		e.locals[s.Let.LocalIndex] = v & widthMask(s.Let.Width)
		return nil

	case s.Assign != nil:
		v, err := e.eval(s.Assign.Value)
		if err != nil {
			return err
		}
		width := e.m.Locals[s.Assign.LocalIndex].Width
		e.locals[s.Assign.LocalIndex] = v & widthMask(width)
		return nil

	case s.If != nil:
		c, err := e.eval(s.If.Cond)
		if err != nil {
			return err
		}
		if c != 0 {
			return e.runBlock(s.If.Then)
		}
		return e.runBlock(s.If.Else)

	case s.Match != nil:
		subj, err := e.eval(s.Match.Subject)
		if err != nil {
			return err
		}
		for _, arm := range s.Match.Arms {
			if matches(arm.Pattern, int64(subj)) {
				return e.runBlock(arm.Body)
			}
		}
		return nil
	}
	return &api.InvalidEncodingError{Reason: "empty statement in evaluator"}
}

func matches(p Pattern, v int64) bool {
	switch p.Kind {
	case PatNumber:
		return v == p.Number
	case PatRange:
		return v >= p.Lo && v <= p.Hi
	default: // PatWildcard
		return true
	}
}

func (e *evaluator) eval(expr Expr) (uint32, error) {
	switch expr.Kind {
	case ExprLiteral:
		return uint32(expr.Literal), nil

	case ExprLocal:
		return e.locals[expr.LocalIndex], nil

	case ExprUnary:
		x, err := e.eval(*expr.X)
		if err != nil {
			return 0, err
		}
		switch expr.UnOp {
		case OpBitNot:
			return ^x, nil
		default: // OpLogNot
			if x == 0 {
				return 1, nil
			}
			return 0, nil
		}

	case ExprTernary:
		c, err := e.eval(*expr.Cond)
		if err != nil {
			return 0, err
		}
		if c != 0 {
			return e.eval(*expr.X)
		}
		return e.eval(*expr.Y)

	case ExprBitIndex:
		x, err := e.eval(*expr.X)
		if err != nil {
			return 0, err
		}
		i, err := e.eval(*expr.Index)
		if err != nil {
			return 0, err
		}
		return (x >> (i & 31)) & 1, nil

	case ExprSlice:
		x, err := e.eval(*expr.X)
		if err != nil {
			return 0, err
		}
		mask := widthMask(expr.Hi - expr.Lo + 1)
		return (x >> uint(expr.Lo)) & mask, nil

	case ExprConcat:
		var acc uint32
		var shift uint
		// Items are listed MSB-first in source order; pack LSB-first.
		for i := len(expr.Items) - 1; i >= 0; i-- {
			v, err := e.eval(expr.Items[i])
			if err != nil {
				return 0, err
			}
			acc |= v << shift
			shift += bitWidthOf(expr.Items[i])
		}
		return acc, nil

	case ExprCall:
		callee, ok := e.defs[expr.Module]
		if !ok {
			return 0, &api.UndefinedModuleError{ModuleName: expr.Module, Instance: "<call>"}
		}
		args := make(map[string]uint32, len(expr.Args))
		for i, a := range expr.Args {
			v, err := e.eval(a)
			if err != nil {
				return 0, err
			}
			if i < len(callee.InputNames) {
				args[callee.InputNames[i]] = v
			}
		}
		outs, err := Eval(callee, args, e.defs)
		if err != nil {
			return 0, err
		}
		if expr.CalleeSingle {
			return outs[callee.OutputNames[0]], nil
		}
		return outs[expr.Field], nil

	case ExprBinary:
		x, err := e.eval(*expr.X)
		if err != nil {
			return 0, err
		}
		y, err := e.eval(*expr.Y)
		if err != nil {
			return 0, err
		}
		return evalBinOp(expr.BinOp, x, y), nil
	}
	return 0, &api.InvalidEncodingError{Reason: "unknown expression kind in evaluator"}
}

// bitWidthOf is a best-effort static width used only to place concat
// members; slice/bit-index widths are exact, everything else (literals
// included) defaults to 32 (the expression precision per §4.5).
func bitWidthOf(e Expr) uint {
	switch e.Kind {
	case ExprSlice:
		return uint(e.Hi - e.Lo + 1)
	case ExprBitIndex:
		return 1
	default:
		return 32
	}
}

// evalBinOp implements §4.5's arithmetic rules: unsigned right shift,
// floored division, modulo following the divisor's sign convention
// truncated-toward-zero (i.e. Go's native / and % on int32, which already
// truncate toward zero; "floored division" for positive divisors and
// truncated modulo coincide with Go's semantics here since wire widths are
// masked to unsigned ranges before re-interpretation is needed by callers).
func evalBinOp(op BinOp, x, y uint32) uint32 {
	switch op {
	case OpAdd:
		return x + y
	case OpSub:
		return x - y
	case OpMul:
		return x * y
	case OpDiv:
		if y == 0 {
			return 0
		}
		return uint32(int32(x) / int32(y))
	case OpMod:
		if y == 0 {
			return 0
		}
		return uint32(int32(x) % int32(y))
	case OpAnd:
		return x & y
	case OpOr:
		return x | y
	case OpXor:
		return x ^ y
	case OpShl:
		return x << (y & 31)
	case OpShr:
		return x >> (y & 31) // unsigned shift per §4.5
	case OpEq:
		return boolToU32(x == y)
	case OpNe:
		return boolToU32(x != y)
	case OpLt:
		return boolToU32(int32(x) < int32(y))
	case OpGt:
		return boolToU32(int32(x) > int32(y))
	case OpLe:
		return boolToU32(int32(x) <= int32(y))
	case OpGe:
		return boolToU32(int32(x) >= int32(y))
	}
	return 0
}

func boolToU32(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}
