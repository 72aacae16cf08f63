// Package mos6502 instantiates asmcore's architecture-independent
// two-pass assembler for the NMOS 6502: the 151 officially documented
// opcodes across the classic addressing modes (immediate, zero page,
// zero page indexed, absolute, absolute indexed, the two indirect
// indexed forms, relative branches, implied and accumulator). Grounded
// on beevik-go6502's cpu package for the opcode/mode/size table and on
// jmchacon/6502's cpu.go for addressing-mode semantics.
package mos6502

import (
	"github.com/tefla/wire-hdl/api"
	"github.com/tefla/wire-hdl/internal/asmcore"
)

// ISA is the mos6502 instantiation of asmcore.ISA.
type ISA struct{}

// New returns the 6502 ISA plug-in.
func New() ISA { return ISA{} }

var _ asmcore.ISA = ISA{}

func (ISA) Encode(mnemonic string, operands []string, line int) (int, asmcore.EmitFunc, error) {
	mode, valueOperand, err := classify(mnemonic, operands)
	if err != nil {
		return 0, nil, &api.SyntaxError{Line: line, Message: err.Error()}
	}
	opcode, ok := opcodes[opKey{mnemonic, mode}]
	if !ok {
		return 0, nil, &api.SyntaxError{Line: line, Message: "unknown mnemonic " + mnemonic}
	}
	size := mode.size()

	emit := func(out []byte, ctx asmcore.PatchContext) error {
		out[0] = opcode
		switch mode {
		case modeImp, modeAcc:
			return nil
		case modeRel:
			target, err := resolveValue(valueOperand, line, ctx)
			if err != nil {
				return err
			}
			offset := int32(target) - int32(ctx.Addr+2)
			if offset < -128 || offset > 127 {
				return &api.SyntaxError{Line: line, Message: "branch target out of range"}
			}
			out[1] = byte(int8(offset))
			return nil
		case modeImm, modeZpg, modeZpx, modeZpy, modeIdx, modeIdy:
			v, err := resolveValue(valueOperand, line, ctx)
			if err != nil {
				return err
			}
			out[1] = byte(v)
			return nil
		default: // modeAbs, modeAbx, modeAby, modeInd
			v, err := resolveValue(valueOperand, line, ctx)
			if err != nil {
				return err
			}
			out[1] = byte(v)
			out[2] = byte(v >> 8)
			return nil
		}
	}
	return size, emit, nil
}

// ExpandPseudo: the NMOS 6502 instruction set used here has no
// pseudo-instructions of its own (unlike RV32I's LI/LA/MV/NOP/RET, every
// 6502 mnemonic already maps to exactly one real opcode once its
// addressing mode is known).
func (ISA) ExpandPseudo(mnemonic string, operands []string, line int) ([]asmcore.Instruction, bool) {
	return nil, false
}
