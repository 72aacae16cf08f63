// Package rv32i instantiates asmcore's architecture-independent two-pass
// assembler for the RV32I base integer instruction set: R/I/S/B/U/J-format
// fixed 4-byte encoding, the common pseudo-instructions, and
// .byte/.half/.word/.ascii/.asciiz/.space directives. Unlike mos6502,
// which is grounded in two pack reference implementations, no example
// repo targets RISC-V; this package is written directly from the public
// RV32I base ISA encoding, in the idiom asmcore's ISA interface and
// mos6502 already establish (see DESIGN.md).
package rv32i

import (
	"strings"

	"github.com/tefla/wire-hdl/api"
	"github.com/tefla/wire-hdl/internal/asmcore"
)

// ISA is the RV32I instantiation of asmcore.ISA.
type ISA struct{}

// New returns the RV32I ISA plug-in.
func New() ISA { return ISA{} }

var _ asmcore.ISA = ISA{}

func (ISA) Encode(mnemonic string, operands []string, line int) (int, asmcore.EmitFunc, error) {
	if emit, ok, err := encodeInternal(mnemonic, operands, line); ok || err != nil {
		return 4, emit, err
	}
	spec, ok := instructions[mnemonic]
	if !ok {
		return 0, nil, &api.SyntaxError{Line: line, Message: "unknown mnemonic " + mnemonic}
	}
	switch spec.format {
	case fmtR:
		rd, rs1, rs2, err := parseRType(operands, line)
		if err != nil {
			return 0, nil, err
		}
		word := spec.funct7<<25 | rs2<<20 | rs1<<15 | spec.funct3<<12 | rd<<7 | spec.opcode
		return 4, constEmit(word), nil

	case fmtI:
		rd, rs1, immOp, err := parseIType(mnemonic, operands, line)
		if err != nil {
			return 0, nil, err
		}
		return 4, func(out []byte, ctx asmcore.PatchContext) error {
			imm, err := resolveSigned(immOp, line, ctx)
			if err != nil {
				return err
			}
			word := (uint32(imm)&0xFFF)<<20 | rs1<<15 | spec.funct3<<12 | rd<<7 | spec.opcode
			putWord(out, word)
			return nil
		}, nil

	case fmtIShift:
		rd, rs1, shamtOp, err := parseRegRegImm(operands, line)
		if err != nil {
			return 0, nil, err
		}
		return 4, func(out []byte, ctx asmcore.PatchContext) error {
			shamt, err := resolveSigned(shamtOp, line, ctx)
			if err != nil {
				return err
			}
			word := spec.funct7<<25 | (uint32(shamt)&0x1F)<<20 | rs1<<15 | spec.funct3<<12 | rd<<7 | spec.opcode
			putWord(out, word)
			return nil
		}, nil

	case fmtS:
		rs2, rs1, immOp, err := parseStoreOperands(operands, line)
		if err != nil {
			return 0, nil, err
		}
		return 4, func(out []byte, ctx asmcore.PatchContext) error {
			imm, err := resolveSigned(immOp, line, ctx)
			if err != nil {
				return err
			}
			u := uint32(imm)
			word := (u>>5&0x7F)<<25 | rs2<<20 | rs1<<15 | spec.funct3<<12 | (u&0x1F)<<7 | spec.opcode
			putWord(out, word)
			return nil
		}, nil

	case fmtB:
		rs1, rs2, target, err := parseBranchOperands(operands, line)
		if err != nil {
			return 0, nil, err
		}
		return 4, func(out []byte, ctx asmcore.PatchContext) error {
			v, err := resolveValue(target, line, ctx)
			if err != nil {
				return err
			}
			offset := int32(v) - int32(ctx.Addr)
			if offset%2 != 0 {
				return &api.SyntaxError{Line: line, Message: "branch target must be 2-byte aligned"}
			}
			u := uint32(offset)
			word := (u>>12&1)<<31 | (u>>5&0x3F)<<25 | rs2<<20 | rs1<<15 | spec.funct3<<12 |
				(u>>1&0xF)<<8 | (u>>11&1)<<7 | spec.opcode
			putWord(out, word)
			return nil
		}, nil

	case fmtU:
		rd, immOp, err := parseUType(operands, line)
		if err != nil {
			return 0, nil, err
		}
		return 4, func(out []byte, ctx asmcore.PatchContext) error {
			imm, err := resolveSigned(immOp, line, ctx)
			if err != nil {
				return err
			}
			word := (uint32(imm)&0xFFFFF)<<12 | rd<<7 | spec.opcode
			putWord(out, word)
			return nil
		}, nil

	case fmtJ:
		rd, target, err := parseJType(operands, line)
		if err != nil {
			return 0, nil, err
		}
		return 4, func(out []byte, ctx asmcore.PatchContext) error {
			v, err := resolveValue(target, line, ctx)
			if err != nil {
				return err
			}
			offset := int32(v) - int32(ctx.Addr)
			if offset%2 != 0 {
				return &api.SyntaxError{Line: line, Message: "jump target must be 2-byte aligned"}
			}
			u := uint32(offset)
			word := (u>>20&1)<<31 | (u>>1&0x3FF)<<21 | (u>>11&1)<<20 | (u>>12&0xFF)<<12 | rd<<7 | spec.opcode
			putWord(out, word)
			return nil
		}, nil

	case fmtSystem:
		word := spec.imm12<<20 | spec.opcode
		return 4, constEmit(word), nil

	case fmtFence:
		// FENCE with all predecessor/successor bits set (iorw,iorw): the
		// conservative "fence everything" encoding, since this assembler
		// has no syntax for selecting individual fence bits.
		word := uint32(0x0FF0_0000) | spec.opcode
		return 4, constEmit(word), nil
	}
	return 0, nil, &api.SyntaxError{Line: line, Message: "unhandled format for " + mnemonic}
}

func constEmit(word uint32) asmcore.EmitFunc {
	return func(out []byte, ctx asmcore.PatchContext) error {
		putWord(out, word)
		return nil
	}
}

func putWord(out []byte, word uint32) {
	out[0] = byte(word)
	out[1] = byte(word >> 8)
	out[2] = byte(word >> 16)
	out[3] = byte(word >> 24)
}

func reg(operands []string, i int, line int) (uint32, error) {
	if i >= len(operands) {
		return 0, &api.SyntaxError{Line: line, Message: "missing register operand"}
	}
	r, ok := parseRegister(operands[i])
	if !ok {
		return 0, &api.SyntaxError{Line: line, Message: "invalid register " + operands[i]}
	}
	return r, nil
}

func parseRType(operands []string, line int) (rd, rs1, rs2 uint32, err error) {
	if len(operands) != 3 {
		return 0, 0, 0, &api.SyntaxError{Line: line, Message: "expected rd, rs1, rs2"}
	}
	if rd, err = reg(operands, 0, line); err != nil {
		return
	}
	if rs1, err = reg(operands, 1, line); err != nil {
		return
	}
	rs2, err = reg(operands, 2, line)
	return
}

// parseIType handles both "rd, rs1, imm" (arithmetic) and "rd, imm(rs1)"
// (loads, jalr) operand shapes.
func parseIType(mnemonic string, operands []string, line int) (rd, rs1 uint32, immOp string, err error) {
	if len(operands) == 2 {
		rd, err = reg(operands, 0, line)
		if err != nil {
			return
		}
		immText, baseReg, ok := splitOffsetReg(operands[1])
		if !ok {
			err = &api.SyntaxError{Line: line, Message: mnemonic + " requires imm(reg) when given two operands"}
			return
		}
		rs1, err = regFromName(baseReg, line)
		immOp = immText
		return
	}
	return parseRegRegImm(operands, line)
}

func parseRegRegImm(operands []string, line int) (rd, rs1 uint32, immOp string, err error) {
	if len(operands) != 3 {
		err = &api.SyntaxError{Line: line, Message: "expected rd, rs1, imm"}
		return
	}
	if rd, err = reg(operands, 0, line); err != nil {
		return
	}
	rs1, err = reg(operands, 1, line)
	immOp = strings.TrimSpace(operands[2])
	return
}

func parseStoreOperands(operands []string, line int) (rs2, rs1 uint32, immOp string, err error) {
	if len(operands) != 2 {
		err = &api.SyntaxError{Line: line, Message: "expected rs2, imm(rs1)"}
		return
	}
	if rs2, err = reg(operands, 0, line); err != nil {
		return
	}
	immText, baseReg, ok := splitOffsetReg(operands[1])
	if !ok {
		err = &api.SyntaxError{Line: line, Message: "expected imm(rs1) operand"}
		return
	}
	rs1, err = regFromName(baseReg, line)
	immOp = immText
	return
}

func parseBranchOperands(operands []string, line int) (rs1, rs2 uint32, target string, err error) {
	if len(operands) != 3 {
		err = &api.SyntaxError{Line: line, Message: "expected rs1, rs2, label"}
		return
	}
	if rs1, err = reg(operands, 0, line); err != nil {
		return
	}
	rs2, err = reg(operands, 1, line)
	target = strings.TrimSpace(operands[2])
	return
}

func parseUType(operands []string, line int) (rd uint32, immOp string, err error) {
	if len(operands) != 2 {
		err = &api.SyntaxError{Line: line, Message: "expected rd, imm"}
		return
	}
	if rd, err = reg(operands, 0, line); err != nil {
		return
	}
	immOp = strings.TrimSpace(operands[1])
	return
}

func parseJType(operands []string, line int) (rd uint32, target string, err error) {
	if len(operands) != 2 {
		err = &api.SyntaxError{Line: line, Message: "expected rd, label"}
		return
	}
	if rd, err = reg(operands, 0, line); err != nil {
		return
	}
	target = strings.TrimSpace(operands[1])
	return
}

func regFromName(name string, line int) (uint32, error) {
	r, ok := parseRegister(name)
	if !ok {
		return 0, &api.SyntaxError{Line: line, Message: "invalid register " + name}
	}
	return r, nil
}

// splitOffsetReg splits a "imm(reg)" operand into its immediate text and
// register name.
func splitOffsetReg(s string) (imm string, reg string, ok bool) {
	s = strings.TrimSpace(s)
	open := strings.IndexByte(s, '(')
	if open < 0 || !strings.HasSuffix(s, ")") {
		return "", "", false
	}
	return strings.TrimSpace(s[:open]), strings.TrimSpace(s[open+1 : len(s)-1]), true
}

// resolveValue resolves an operand to its numeric value: a literal
// parses directly, otherwise it's a label looked up through ctx.
func resolveValue(op string, line int, ctx asmcore.PatchContext) (uint32, error) {
	if v, ok := asmcore.ParseNumber(op); ok {
		return uint32(v), nil
	}
	v, ok := ctx.Resolve(op)
	if !ok {
		return 0, &api.UndefinedSymbolError{Name: op, Line: line}
	}
	return v, nil
}

func resolveSigned(op string, line int, ctx asmcore.PatchContext) (int32, error) {
	v, err := resolveValue(op, line, ctx)
	return int32(v), err
}
