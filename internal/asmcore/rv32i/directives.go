package rv32i

import (
	"strings"

	"github.com/tefla/wire-hdl/api"
	"github.com/tefla/wire-hdl/internal/asmcore"
)

var directives = map[string]bool{
	".BYTE": true, ".HALF": true, ".WORD": true,
	".ASCII": true, ".ASCIIZ": true, ".SPACE": true,
}

func (ISA) IsDirective(mnemonic string) bool { return directives[mnemonic] }

func (ISA) DirectiveSize(directive string, operands []string, line int) (int, error) {
	switch directive {
	case ".BYTE":
		return sizeOfScalarList(operands, line, 1)
	case ".HALF":
		return sizeOfScalarList(operands, line, 2)
	case ".WORD":
		return sizeOfScalarList(operands, line, 4)
	case ".ASCII":
		s, err := directiveString(operands, line)
		if err != nil {
			return 0, err
		}
		return len(s), nil
	case ".ASCIIZ":
		s, err := directiveString(operands, line)
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
	}
	return 0, &api.SyntaxError{Line: line, Message: "unknown directive " + directive}
}

func (ISA) EmitDirective(directive string, operands []string, out []byte, ctx asmcore.PatchContext) error {
	switch directive {
	case ".BYTE":
		return emitScalarList(operands, out, ctx, 1)
	case ".HALF":
		return emitScalarList(operands, out, ctx, 2)
	case ".WORD":
		return emitScalarList(operands, out, ctx, 4)
	case ".ASCII":
		s, err := directiveString(operands, 0)
		if err != nil {
			return err
		}
		copy(out, s)
		return nil
	case ".ASCIIZ":
		s, err := directiveString(operands, 0)
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

func sizeOfScalarList(operands []string, line int, width int) (int, error) {
	if len(operands) == 0 {
		return 0, &api.SyntaxError{Line: line, Message: "directive requires at least one operand"}
	}
	return width * len(operands), nil
}

func emitScalarList(operands []string, out []byte, ctx asmcore.PatchContext, width int) error {
	for i, op := range operands {
		v, err := resolveValue(strings.TrimSpace(op), 0, ctx)
		if err != nil {
			return err
		}
		for b := 0; b < width; b++ {
			out[i*width+b] = byte(v >> (8 * b))
		}
	}
	return nil
}

func directiveString(operands []string, line int) (string, error) {
	if len(operands) != 1 {
		return "", &api.SyntaxError{Line: line, Message: "expected exactly one string operand"}
	}
	op := operands[0]
	if !strings.HasPrefix(op, `"`) || !strings.HasSuffix(op, `"`) || len(op) < 2 {
		return "", &api.SyntaxError{Line: line, Message: "expected a double-quoted string literal"}
	}
	s, err := asmcore.UnescapeString(op[1 : len(op)-1])
	if err != nil {
		return "", &api.SyntaxError{Line: line, Message: err.Error()}
	}
	return s, nil
}

func literalOperand(operands []string) (int64, bool) {
	if len(operands) != 1 {
		return 0, false
	}
	return asmcore.ParseNumber(operands[0])
}
