package mos6502

import (
	"strings"

	"github.com/tefla/wire-hdl/api"
	"github.com/tefla/wire-hdl/internal/asmcore"
)

var directives = map[string]bool{
	".BYTE": true, ".DB": true, ".WORD": true, ".ASCII": true,
	".ASCIIZ": true, ".SPACE": true, ".ALIGN": true,
}

func (ISA) IsDirective(mnemonic string) bool { return directives[mnemonic] }

func (ISA) DirectiveSize(directive string, operands []string, line int) (int, error) {
	switch directive {
	case ".BYTE", ".DB":
		n := 0
		for _, op := range operands {
			s, isStr, err := stringLiteral(op, line)
			if err != nil {
				return 0, err
			}
			if isStr {
				n += len(s)
			} else {
				n++
			}
		}
		return n, nil
	case ".WORD":
		return 2 * len(operands), nil
	case ".ASCII":
		if len(operands) != 1 {
			return 0, &api.SyntaxError{Line: line, Message: ".ascii takes exactly one string operand"}
		}
		s, _, err := stringLiteral(operands[0], line)
		if err != nil {
			return 0, err
		}
		return len(s), nil
	case ".ASCIIZ":
		if len(operands) != 1 {
			return 0, &api.SyntaxError{Line: line, Message: ".asciiz takes exactly one string operand"}
		}
		s, _, err := stringLiteral(operands[0], line)
		if err != nil {
			return 0, err
		}
		return len(s) + 1, nil
	case ".SPACE":
		v, ok := literalOperand(operands)
		if !ok {
			return 0, &api.SyntaxError{Line: line, Message: ".space requires one numeric operand"}
		}
		return int(v), nil
	case ".ALIGN":
		// .align's actual byte count depends on the current PC, which
		// asmcore's Assemble doesn't pass to DirectiveSize; a
		// page-aligned boundary is a rare enough need in 6502 ROMs that
		// callers are expected to pad with explicit .space instead.
		return 0, &api.SyntaxError{Line: line, Message: ".align is not supported; use .space to pad explicitly"}
	}
	return 0, &api.SyntaxError{Line: line, Message: "unknown directive " + directive}
}

func (ISA) EmitDirective(directive string, operands []string, out []byte, ctx asmcore.PatchContext) error {
	switch directive {
	case ".BYTE", ".DB":
		pos := 0
		for _, op := range operands {
			s, isStr, err := stringLiteral(op, 0)
			if err != nil {
				return err
			}
			if isStr {
				copy(out[pos:], s)
				pos += len(s)
				continue
			}
			v, err := resolveValue(op, 0, ctx)
			if err != nil {
				return err
			}
			out[pos] = byte(v)
			pos++
		}
		return nil
	case ".WORD":
		for i, op := range operands {
			v, err := resolveValue(op, 0, ctx)
			if err != nil {
				return err
			}
			out[2*i] = byte(v)
			out[2*i+1] = byte(v >> 8)
		}
		return nil
	case ".ASCII":
		s, _, err := stringLiteral(operands[0], 0)
		if err != nil {
			return err
		}
		copy(out, s)
		return nil
	case ".ASCIIZ":
		s, _, err := stringLiteral(operands[0], 0)
		if err != nil {
			return err
		}
		copy(out, s)
		out[len(s)] = 0
		return nil
	case ".SPACE":
		for i := range out {
			out[i] = 0
		}
		return nil
	}
	return &api.SyntaxError{Message: "unknown directive " + directive}
}

// stringLiteral interprets op as a double-quoted, escape-decoded string
// literal. For any other operand it returns ("", false, nil) and leaves
// numeric parsing to the caller.
func stringLiteral(op string, line int) (string, bool, error) {
	if strings.HasPrefix(op, `"`) && strings.HasSuffix(op, `"`) && len(op) >= 2 {
		s, err := asmcore.UnescapeString(op[1 : len(op)-1])
		if err != nil {
			return "", false, &api.SyntaxError{Line: line, Message: err.Error()}
		}
		return s, true, nil
	}
	return "", false, nil
}

func literalOperand(operands []string) (int64, bool) {
	if len(operands) != 1 {
		return 0, false
	}
	return asmcore.ParseNumber(operands[0])
}
