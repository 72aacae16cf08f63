package rv32i

import (
	"strconv"
	"strings"

	"github.com/tefla/wire-hdl/api"
	"github.com/tefla/wire-hdl/internal/asmcore"
)

// ExpandPseudo rewrites the common RV32I pseudo-instructions into real
// base-ISA instructions. LA's two-instruction AUIPC+ADDI expansion needs
// its own addresses to compute a PC-relative offset, which ExpandPseudo
// (running during pass-1 layout, before any address is final) can't
// supply — so it's expanded into the internal "_LA_HI"/"_LA_LO"
// mnemonics, real instructions in every way except that their Encode
// closures know the two are always emitted back-to-back and derive
// AUIPC's own address from the ADDI's.
func (ISA) ExpandPseudo(mnemonic string, operands []string, line int) ([]asmcore.Instruction, bool) {
	switch mnemonic {
	case "NOP":
		return []asmcore.Instruction{{Mnemonic: "ADDI", Operands: []string{"zero", "zero", "0"}, Line: line}}, true
	case "MV":
		if len(operands) != 2 {
			return nil, false
		}
		return []asmcore.Instruction{{Mnemonic: "ADDI", Operands: []string{operands[0], operands[1], "0"}, Line: line}}, true
	case "NOT":
		if len(operands) != 2 {
			return nil, false
		}
		return []asmcore.Instruction{{Mnemonic: "XORI", Operands: []string{operands[0], operands[1], "-1"}, Line: line}}, true
	case "NEG":
		if len(operands) != 2 {
			return nil, false
		}
		return []asmcore.Instruction{{Mnemonic: "SUB", Operands: []string{operands[0], "zero", operands[1]}, Line: line}}, true
	case "SEQZ":
		if len(operands) != 2 {
			return nil, false
		}
		return []asmcore.Instruction{{Mnemonic: "SLTIU", Operands: []string{operands[0], operands[1], "1"}, Line: line}}, true
	case "SNEZ":
		if len(operands) != 2 {
			return nil, false
		}
		return []asmcore.Instruction{{Mnemonic: "SLTU", Operands: []string{operands[0], "zero", operands[1]}, Line: line}}, true
	case "J":
		if len(operands) != 1 {
			return nil, false
		}
		return []asmcore.Instruction{{Mnemonic: "JAL", Operands: []string{"zero", operands[0]}, Line: line}}, true
	case "JR":
		if len(operands) != 1 {
			return nil, false
		}
		return []asmcore.Instruction{{Mnemonic: "JALR", Operands: []string{"zero", "0(" + operands[0] + ")"}, Line: line}}, true
	case "RET":
		return []asmcore.Instruction{{Mnemonic: "JALR", Operands: []string{"zero", "0(ra)"}, Line: line}}, true
	case "BEQZ", "BNEZ", "BLTZ", "BGEZ":
		if len(operands) != 2 {
			return nil, false
		}
		return []asmcore.Instruction{{Mnemonic: mnemonic[:3], Operands: []string{operands[0], "zero", operands[1]}, Line: line}}, true
	case "BLEZ", "BGTZ":
		if len(operands) != 2 {
			return nil, false
		}
		op := map[string]string{"BLEZ": "BGE", "BGTZ": "BLT"}[mnemonic]
		return []asmcore.Instruction{{Mnemonic: op, Operands: []string{"zero", operands[0], operands[1]}, Line: line}}, true
	case "LI":
		return expandLI(operands, line)
	case "LA":
		return expandLA(operands, line)
	}
	return nil, false
}

func expandLI(operands []string, line int) ([]asmcore.Instruction, bool) {
	if len(operands) != 2 {
		return nil, false
	}
	rd := operands[0]
	v, ok := asmcore.ParseNumber(strings.TrimSpace(operands[1]))
	if !ok {
		return nil, false
	}
	if v >= -2048 && v <= 2047 {
		return []asmcore.Instruction{
			{Mnemonic: "ADDI", Operands: []string{rd, "zero", strconv.FormatInt(v, 10)}, Line: line},
		}, true
	}
	hi, lo := splitHiLo32(v)
	return []asmcore.Instruction{
		{Mnemonic: "LUI", Operands: []string{rd, strconv.FormatInt(hi, 10)}, Line: line},
		{Mnemonic: "ADDI", Operands: []string{rd, rd, strconv.FormatInt(lo, 10)}, Line: line},
	}, true
}

func expandLA(operands []string, line int) ([]asmcore.Instruction, bool) {
	if len(operands) != 2 {
		return nil, false
	}
	rd := operands[0]
	label := strings.TrimSpace(operands[1])
	return []asmcore.Instruction{
		{Mnemonic: "_LA_HI", Operands: []string{rd, label}, Line: line},
		{Mnemonic: "_LA_LO", Operands: []string{rd, rd, label}, Line: line},
	}, true
}

// splitHiLo32 splits a 32-bit value into the (hi20, lo12) pair that
// LUI+ADDI (or AUIPC+ADDI) reconstruct it from: lo12 is sign-extended, so
// hi20 is rounded to compensate before the low bits are sliced off.
func splitHiLo32(v int64) (hi, lo int64) {
	hi = (v + 0x800) >> 12
	lo = v - hi<<12
	return hi, lo
}

// encodeInternal handles the internal "_LA_HI"/"_LA_LO" mnemonics LA
// expands into. ok is true whenever mnemonic is one of these two
// (whether or not encoding them then succeeds), so Encode knows not to
// fall through to the public instruction table.
func encodeInternal(mnemonic string, operands []string, line int) (asmcore.EmitFunc, bool, error) {
	switch mnemonic {
	case "_LA_HI":
		if len(operands) != 2 {
			return nil, true, &api.SyntaxError{Line: line, Message: "_LA_HI requires rd, label"}
		}
		rd, err := regFromName(operands[0], line)
		if err != nil {
			return nil, true, err
		}
		label := operands[1]
		return func(out []byte, ctx asmcore.PatchContext) error {
			v, err := resolveValue(label, line, ctx)
			if err != nil {
				return err
			}
			offset := int64(int32(v) - int32(ctx.Addr))
			hi, _ := splitHiLo32(offset)
			word := (uint32(hi)&0xFFFFF)<<12 | rd<<7 | opAuipc
			putWord(out, word)
			return nil
		}, true, nil

	case "_LA_LO":
		if len(operands) != 3 {
			return nil, true, &api.SyntaxError{Line: line, Message: "_LA_LO requires rd, rs1, label"}
		}
		rd, err := regFromName(operands[0], line)
		if err != nil {
			return nil, true, err
		}
		rs1, err := regFromName(operands[1], line)
		if err != nil {
			return nil, true, err
		}
		label := operands[2]
		return func(out []byte, ctx asmcore.PatchContext) error {
			v, err := resolveValue(label, line, ctx)
			if err != nil {
				return err
			}
			hiAddr := ctx.Addr - 4
			offset := int64(int32(v) - int32(hiAddr))
			_, lo := splitHiLo32(offset)
			word := (uint32(lo)&0xFFF)<<20 | rs1<<15 | rd<<7 | opOpImm
			putWord(out, word)
			return nil
		}, true, nil
	}
	return nil, false, nil
}
