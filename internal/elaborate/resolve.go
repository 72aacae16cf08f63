package elaborate

import (
	"fmt"

	"github.com/tefla/wire-hdl/api"
	"github.com/tefla/wire-hdl/internal/hdlast"
)

// resolveExpr resolves a structural wiring expression to an ordered,
// little-endian bit list of signal ids. widthHint, when > 0, is the
// formal port width this expression is being bound to; it is used to size
// a freshly-allocated net the first time a bare identifier is seen.
//
// This is the Elaborator's bridge between the HDL-level wiring expression
// grammar (§3 "port binding") and the flat SignalId space: bare
// identifiers are nets, lazily allocated on first reference within the
// enclosing scope's hierarchical prefix; concat/slice/bit-index compose or
// project already-resolved nets; a literal yields constant signal ids.
func (e *elaborator) resolveExpr(sc *scope, expr hdlast.Expr, widthHint int) ([]api.SignalId, error) {
	switch expr.Kind {
	case hdlast.ExprIdent:
		return e.resolveIdent(sc, expr.Ident, widthHint)

	case hdlast.ExprLiteral:
		w := widthHint
		if w <= 0 {
			w = 1
		}
		ids := make([]api.SignalId, w)
		for i := 0; i < w; i++ {
			bit := (expr.Literal >> uint(i)) & 1
			ids[i] = e.table.Constant(int(bit))
		}
		return ids, nil

	case hdlast.ExprConcat:
		// Items are listed MSB-first in source order (§3 "concat
		// e0,e1,..."); items are resolved in source order, then the result
		// is packed LSB-first by appending from the last (least-significant)
		// item to the first.
		var out []api.SignalId
		resolved := make([][]api.SignalId, len(expr.Items))
		for i, it := range expr.Items {
			ids, err := e.resolveExpr(sc, it, 0)
			if err != nil {
				return nil, err
			}
			resolved[i] = ids
		}
		for i := len(resolved) - 1; i >= 0; i-- {
			out = append(out, resolved[i]...)
		}
		return out, nil

	case hdlast.ExprSlice:
		base, err := e.resolveExpr(sc, *expr.X, 0)
		if err != nil {
			return nil, err
		}
		if expr.Hi >= len(base) || expr.Lo < 0 || expr.Hi < expr.Lo {
			return nil, &api.InvalidEncodingError{Reason: fmt.Sprintf("slice [%d:%d] out of range for %d-bit net", expr.Hi, expr.Lo, len(base))}
		}
		return base[expr.Lo : expr.Hi+1], nil

	case hdlast.ExprBitIndex:
		base, err := e.resolveExpr(sc, *expr.X, 0)
		if err != nil {
			return nil, err
		}
		if expr.Index == nil || expr.Index.Kind != hdlast.ExprLiteral {
			return nil, &api.InvalidEncodingError{Reason: "bit index must be a constant in structural wiring"}
		}
		idx := int(expr.Index.Literal)
		if idx < 0 || idx >= len(base) {
			return nil, &api.InvalidEncodingError{Reason: fmt.Sprintf("bit index %d out of range for %d-bit net", idx, len(base))}
		}
		return base[idx : idx+1], nil
	}

	return nil, &api.InvalidEncodingError{Reason: "unsupported expression in structural wiring context"}
}

func (e *elaborator) resolveIdent(sc *scope, name string, widthHint int) ([]api.SignalId, error) {
	if ids, ok := sc.bindings[name]; ok {
		if widthHint > 0 && len(ids) != widthHint {
			return nil, &api.WidthMismatchError{Formal: name, Expected: widthHint, Got: len(ids)}
		}
		return ids, nil
	}
	w := widthHint
	if w <= 0 {
		w = 1
	}
	ids := make([]api.SignalId, w)
	for i := 0; i < w; i++ {
		netName := sc.prefix + name
		if w > 1 {
			netName = fmt.Sprintf("%s%s[%d]", sc.prefix, name, i)
		}
		id, err := e.table.Intern(netName, 1)
		if err != nil {
			return nil, err
		}
		ids[i] = id
	}
	sc.bindings[name] = ids
	return ids, nil
}
