package behavior

import (
	"fmt"

	"github.com/tefla/wire-hdl/api"
	"github.com/tefla/wire-hdl/internal/hdlast"
)

// Defs resolves a cross-module call's callee by name during lowering. The
// Elaborator lowers each behavioral module's IR exactly once and supplies
// the already-lowered definitions of any modules it calls (§4.2
// "the IR is lowered once per definition, reused across instances").
type Defs map[string]*Module

// Lower converts one module's @behavior AST into its IR. name is the
// module's own name, stored as Module.Name; self-recursive calls are
// rejected as a cycle by the caller's SCC pass, not here.
func Lower(name string, ports []hdlast.Port, body *hdlast.BehavioralBody, defs Defs) (*Module, error) {
	m := &Module{
		Name:         name,
		InputWidths:  map[string]int{},
		OutputWidths: map[string]int{},
	}
	l := &lowerer{module: m, defs: defs, names: map[string]int{}}

	for _, p := range ports {
		idx := l.declareLocal(p.Name, p.Width, StorageParam)
		if p.Direction == hdlast.DirIn {
			m.InputNames = append(m.InputNames, p.Name)
			m.InputWidths[p.Name] = p.Width
		} else {
			m.OutputNames = append(m.OutputNames, p.Name)
			m.OutputWidths[p.Name] = p.Width
		}
		_ = idx
	}

	stmts, err := l.lowerBlock(body.Stmts)
	if err != nil {
		return nil, err
	}
	m.Body = stmts
	return m, nil
}

type lowerer struct {
	module *Module
	defs   Defs
	names  map[string]int // sanitised names already taken, for clash resolution
}

func (l *lowerer) declareLocal(name string, width int, storage StorageKind) int {
	san := sanitise(name)
	if _, clash := l.names[san]; clash {
		san = fmt.Sprintf("%s_%d", san, len(l.module.Locals))
	}
	l.names[san] = 1
	idx := len(l.module.Locals)
	l.module.Locals = append(l.module.Locals, Local{Name: name, Width: width, Storage: storage})
	return idx
}

func (l *lowerer) lowerBlock(stmts []hdlast.Stmt) ([]Stmt, error) {
	out := make([]Stmt, 0, len(stmts))
	for _, s := range stmts {
		lowered, err := l.lowerStmt(s)
		if err != nil {
			return nil, err
		}
		out = append(out, lowered)
	}
	return out, nil
}

func (l *lowerer) lowerStmt(s hdlast.Stmt) (Stmt, error) {
	switch {
	case s.Let != nil:
		val, err := l.lowerExpr(s.Let.Value)
		if err != nil {
			return Stmt{}, err
		}
		idx := l.declareLocal(s.Let.Name, s.Let.Width, StorageLocal)
		return Stmt{Let: &LetStmt{LocalIndex: idx, Width: s.Let.Width, Value: val}}, nil

	case s.Assign != nil:
		return l.lowerAssign(s.Assign)

	case s.If != nil:
		cond, err := l.lowerExpr(s.If.Cond)
		if err != nil {
			return Stmt{}, err
		}
		then, err := l.lowerBlock(s.If.Then)
		if err != nil {
			return Stmt{}, err
		}
		var els []Stmt
		if s.If.Else != nil {
			els, err = l.lowerBlock(s.If.Else)
			if err != nil {
				return Stmt{}, err
			}
		}
		return Stmt{If: &IfStmt{Cond: cond, Then: then, Else: els}}, nil

	case s.Match != nil:
		subj, err := l.lowerExpr(s.Match.Subject)
		if err != nil {
			return Stmt{}, err
		}
		arms := make([]Arm, 0, len(s.Match.Arms))
		for _, a := range s.Match.Arms {
			body, err := l.lowerBlock(a.Body)
			if err != nil {
				return Stmt{}, err
			}
			arms = append(arms, Arm{Pattern: lowerPattern(a.Pattern), Body: body})
		}
		return Stmt{Match: &MatchStmt{Subject: subj, Arms: arms}}, nil
	}
	return Stmt{}, &api.InvalidEncodingError{Reason: "empty statement node"}
}

// lowerAssign applies §4.5's two rewrite rules for non-whole-name targets so
// that every lowered AssignStmt is a plain whole-local write.
func (l *lowerer) lowerAssign(a *hdlast.AssignStmt) (Stmt, error) {
	idx := l.module.LocalIndex(a.Name)
	if idx < 0 {
		return Stmt{}, &api.InvalidEncodingError{Reason: fmt.Sprintf("assignment to undeclared name %q", a.Name)}
	}
	width := l.module.Locals[idx].Width
	rhs, err := l.lowerExpr(a.Value)
	if err != nil {
		return Stmt{}, err
	}

	switch a.Target {
	case hdlast.LhsName:
		return Stmt{Assign: &AssignStmt{LocalIndex: idx, Value: rhs}}, nil

	case hdlast.LhsBitIndex:
		// x[i] = v  =>  x <- (x & ~(1<<i)) | ((v & 1) << i)
		i, err := l.lowerExpr(a.Index)
		if err != nil {
			return Stmt{}, err
		}
		xRef := Expr{Kind: ExprLocal, LocalIndex: idx}
		one := Expr{Kind: ExprLiteral, Literal: 1}
		shiftedMask := Expr{Kind: ExprBinary, BinOp: OpShl, X: &one, Y: &i}
		notMask := Expr{Kind: ExprUnary, UnOp: OpBitNot, X: &shiftedMask}
		cleared := Expr{Kind: ExprBinary, BinOp: OpAnd, X: &xRef, Y: &notMask}
		vMasked := Expr{Kind: ExprBinary, BinOp: OpAnd, X: &rhs, Y: &one}
		vShifted := Expr{Kind: ExprBinary, BinOp: OpShl, X: &vMasked, Y: &i}
		combined := Expr{Kind: ExprBinary, BinOp: OpOr, X: &cleared, Y: &vShifted}
		return Stmt{Assign: &AssignStmt{LocalIndex: idx, Value: combined}}, nil

	case hdlast.LhsSlice:
		// x[hi:lo] = v  =>  x <- (x & ~(mask<<lo)) | ((v & mask) << lo)
		if a.Hi < a.Lo {
			return Stmt{}, &api.InvalidEncodingError{Reason: fmt.Sprintf("slice [%d:%d] has hi < lo", a.Hi, a.Lo)}
		}
		maskVal := int64(1)<<(a.Hi-a.Lo+1) - 1
		mask := Expr{Kind: ExprLiteral, Literal: maskVal}
		loLit := Expr{Kind: ExprLiteral, Literal: int64(a.Lo)}
		xRef := Expr{Kind: ExprLocal, LocalIndex: idx}
		shiftedMask := Expr{Kind: ExprBinary, BinOp: OpShl, X: &mask, Y: &loLit}
		notMask := Expr{Kind: ExprUnary, UnOp: OpBitNot, X: &shiftedMask}
		cleared := Expr{Kind: ExprBinary, BinOp: OpAnd, X: &xRef, Y: &notMask}
		vMasked := Expr{Kind: ExprBinary, BinOp: OpAnd, X: &rhs, Y: &mask}
		vShifted := Expr{Kind: ExprBinary, BinOp: OpShl, X: &vMasked, Y: &loLit}
		combined := Expr{Kind: ExprBinary, BinOp: OpOr, X: &cleared, Y: &vShifted}
		return Stmt{Assign: &AssignStmt{LocalIndex: idx, Value: combined}}, nil
	}
	_ = width
	return Stmt{}, &api.InvalidEncodingError{Reason: "unknown assignment target kind"}
}

func lowerPattern(p hdlast.Pattern) Pattern {
	switch p.Kind {
	case hdlast.PatNumber:
		return Pattern{Kind: PatNumber, Number: p.Number}
	case hdlast.PatRange:
		return Pattern{Kind: PatRange, Lo: p.Lo, Hi: p.Hi}
	default:
		return Pattern{Kind: PatWildcard}
	}
}

func (l *lowerer) lowerExpr(e hdlast.Expr) (Expr, error) {
	switch e.Kind {
	case hdlast.ExprLiteral:
		return Expr{Kind: ExprLiteral, Literal: e.Literal}, nil

	case hdlast.ExprIdent:
		idx := l.module.LocalIndex(e.Ident)
		if idx < 0 {
			return Expr{}, &api.InvalidEncodingError{Reason: fmt.Sprintf("reference to undeclared name %q", e.Ident)}
		}
		return Expr{Kind: ExprLocal, LocalIndex: idx}, nil

	case hdlast.ExprBinary:
		x, err := l.lowerExpr(*e.X)
		if err != nil {
			return Expr{}, err
		}
		y, err := l.lowerExpr(*e.Y)
		if err != nil {
			return Expr{}, err
		}
		return Expr{Kind: ExprBinary, BinOp: BinOp(e.BinOp), X: &x, Y: &y}, nil

	case hdlast.ExprUnary:
		x, err := l.lowerExpr(*e.X)
		if err != nil {
			return Expr{}, err
		}
		return Expr{Kind: ExprUnary, UnOp: UnOp(e.UnOp), X: &x}, nil

	case hdlast.ExprTernary:
		cond, err := l.lowerExpr(*e.Cond)
		if err != nil {
			return Expr{}, err
		}
		x, err := l.lowerExpr(*e.X)
		if err != nil {
			return Expr{}, err
		}
		y, err := l.lowerExpr(*e.Y)
		if err != nil {
			return Expr{}, err
		}
		return Expr{Kind: ExprTernary, Cond: &cond, X: &x, Y: &y}, nil

	case hdlast.ExprBitIndex:
		x, err := l.lowerExpr(*e.X)
		if err != nil {
			return Expr{}, err
		}
		idx, err := l.lowerExpr(*e.Index)
		if err != nil {
			return Expr{}, err
		}
		return Expr{Kind: ExprBitIndex, X: &x, Index: &idx}, nil

	case hdlast.ExprSlice:
		x, err := l.lowerExpr(*e.X)
		if err != nil {
			return Expr{}, err
		}
		return Expr{Kind: ExprSlice, X: &x, Hi: e.Hi, Lo: e.Lo}, nil

	case hdlast.ExprConcat:
		items := make([]Expr, 0, len(e.Items))
		for _, it := range e.Items {
			le, err := l.lowerExpr(it)
			if err != nil {
				return Expr{}, err
			}
			items = append(items, le)
		}
		return Expr{Kind: ExprConcat, Items: items}, nil

	case hdlast.ExprCall:
		callee, ok := l.defs[e.Module]
		if !ok {
			return Expr{}, &api.UndefinedModuleError{ModuleName: e.Module, Instance: "<behavioral call>"}
		}
		args := make([]Expr, 0, len(e.Args))
		for _, a := range e.Args {
			la, err := l.lowerExpr(a)
			if err != nil {
				return Expr{}, err
			}
			args = append(args, la)
		}
		return Expr{
			Kind:         ExprCall,
			Module:       e.Module,
			Args:         args,
			Field:        e.Field,
			CalleeSingle: len(callee.OutputNames) == 1,
		}, nil
	}
	return Expr{}, &api.InvalidEncodingError{Reason: "unknown expression node"}
}

// sanitise maps name to the portable alphabet alnum + "_" per §4.5.
func sanitise(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			out = append(out, r)
		default:
			out = append(out, '_')
		}
	}
	if len(out) == 0 || (out[0] >= '0' && out[0] <= '9') {
		out = append([]rune{'_'}, out...)
	}
	return string(out)
}
