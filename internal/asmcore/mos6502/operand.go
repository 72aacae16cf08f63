package mos6502

import (
	"strings"

	"github.com/tefla/wire-hdl/api"
	"github.com/tefla/wire-hdl/internal/asmcore"
)

// classify inspects a line's already comma-split operand strings (6502
// syntax: "#$4F" immediate, "($20,X)" indexed-indirect, "($20),Y"
// indirect-indexed, "val,X"/"val,Y" indexed, bare "val" zero-page or
// absolute, "A" or nothing accumulator) and picks the addressing mode the
// mnemonic actually supports for that shape. It never needs a label's
// resolved value: a symbolic (non-literal) operand always widens to the
// absolute-family mode, which every zero-page-capable mnemonic in this
// table also has, so pass 1 can size the instruction without resolving
// anything.
func classify(mnemonic string, operands []string) (addrMode, string, error) {
	switch len(operands) {
	case 0:
		if hasMode(mnemonic, modeImp) {
			return modeImp, "", nil
		}
		if hasMode(mnemonic, modeAcc) {
			return modeAcc, "", nil
		}
		return 0, "", &encodeError{"mnemonic " + mnemonic + " requires an operand"}

	case 1:
		op := strings.TrimSpace(operands[0])
		if strings.EqualFold(op, "A") && hasMode(mnemonic, modeAcc) {
			return modeAcc, "", nil
		}
		if strings.HasPrefix(op, "#") {
			return modeImm, op[1:], nil
		}
		if strings.HasPrefix(op, "(") && strings.HasSuffix(op, ")") {
			inner := strings.TrimSpace(op[1 : len(op)-1])
			if idx := strings.IndexByte(inner, ','); idx >= 0 {
				reg := strings.TrimSpace(inner[idx+1:])
				if !strings.EqualFold(reg, "X") {
					return 0, "", &encodeError{"only (zp,X) is valid, not (zp," + reg + ")"}
				}
				return modeIdx, strings.TrimSpace(inner[:idx]), nil
			}
			return modeInd, inner, nil
		}
		if branchMnemonics[mnemonic] {
			return modeRel, op, nil
		}
		if isZeroPageLiteral(op) && hasMode(mnemonic, modeZpg) {
			return modeZpg, op, nil
		}
		if hasMode(mnemonic, modeAbs) {
			return modeAbs, op, nil
		}
		return 0, "", &encodeError{"mnemonic " + mnemonic + " has no absolute or zero-page form"}

	case 2:
		base := strings.TrimSpace(operands[0])
		reg := strings.ToUpper(strings.TrimSpace(operands[1]))
		if strings.HasPrefix(base, "(") && strings.HasSuffix(base, ")") {
			if reg != "Y" {
				return 0, "", &encodeError{"only (zp),Y is valid, not (zp)," + reg}
			}
			return modeIdy, strings.TrimSpace(base[1 : len(base)-1]), nil
		}
		switch reg {
		case "X":
			if isZeroPageLiteral(base) && hasMode(mnemonic, modeZpx) {
				return modeZpx, base, nil
			}
			if hasMode(mnemonic, modeAbx) {
				return modeAbx, base, nil
			}
		case "Y":
			if isZeroPageLiteral(base) && hasMode(mnemonic, modeZpy) {
				return modeZpy, base, nil
			}
			if hasMode(mnemonic, modeAby) {
				return modeAby, base, nil
			}
		default:
			return 0, "", &encodeError{"unknown index register " + reg}
		}
		return 0, "", &encodeError{"mnemonic " + mnemonic + " has no indexed form for ," + reg}

	default:
		return 0, "", &encodeError{"too many operands for " + mnemonic}
	}
}

// isZeroPageLiteral reports whether op is a numeric literal (not a label)
// whose value fits a zero-page byte. A symbolic operand is never treated
// as zero page, since its value isn't known at pass-1 layout time.
func isZeroPageLiteral(op string) bool {
	v, ok := asmcore.ParseNumber(op)
	return ok && v >= 0 && v <= 0xFF
}

// resolveValue resolves a 6502 operand to its final numeric value during
// pass 2: a literal parses directly; a '<' or '>' prefix takes a label's
// low or high byte; otherwise it's a bare label looked up through ctx.
func resolveValue(op string, line int, ctx asmcore.PatchContext) (uint32, error) {
	if strings.HasPrefix(op, "<") {
		v, err := resolveValue(op[1:], line, ctx)
		return v & 0xFF, err
	}
	if strings.HasPrefix(op, ">") {
		v, err := resolveValue(op[1:], line, ctx)
		return (v >> 8) & 0xFF, err
	}
	if v, ok := asmcore.ParseNumber(op); ok {
		return uint32(v), nil
	}
	v, ok := ctx.Resolve(op)
	if !ok {
		return 0, &api.UndefinedSymbolError{Name: op, Line: line}
	}
	return v, nil
}

type encodeError struct{ msg string }

func (e *encodeError) Error() string { return e.msg }
