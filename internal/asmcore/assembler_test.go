package asmcore

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tefla/wire-hdl/api"
)

// stubISA is a minimal test-only ISA: NOP encodes to 0x00 (no operands),
// JMP <label> encodes to 0x01 followed by the label's one-byte address,
// LDI <imm> is a pseudo for "NOP; NOP" repeated imm times (just to
// exercise ExpandPseudo), and .byte emits its operands as literal bytes.
type stubISA struct{}

func (stubISA) ExpandPseudo(mnemonic string, operands []string, line int) ([]Instruction, bool) {
	if mnemonic != "LDI" {
		return nil, false
	}
	n, _ := strconv.Atoi(operands[0])
	out := make([]Instruction, n)
	for i := range out {
		out[i] = Instruction{Mnemonic: "NOP", Line: line}
	}
	return out, true
}

func (stubISA) IsDirective(mnemonic string) bool {
	return mnemonic == ".BYTE"
}

func (stubISA) DirectiveSize(directive string, operands []string, line int) (int, error) {
	return len(operands), nil
}

func (stubISA) EmitDirective(directive string, operands []string, out []byte, ctx PatchContext) error {
	for i, op := range operands {
		v, ok := ParseNumber(op)
		if !ok {
			return &parseError{"bad .byte operand"}
		}
		out[i] = byte(v)
	}
	return nil
}

func (stubISA) Encode(mnemonic string, operands []string, line int) (int, EmitFunc, error) {
	switch mnemonic {
	case "NOP":
		return 1, func(out []byte, ctx PatchContext) error {
			out[0] = 0x00
			return nil
		}, nil
	case "JMP":
		target := operands[0]
		return 2, func(out []byte, ctx PatchContext) error {
			out[0] = 0x01
			addr, ok := ctx.Resolve(target)
			if !ok {
				return &api.UndefinedSymbolError{Name: target, Line: line}
			}
			out[1] = byte(addr)
			return nil
		}, nil
	}
	return 0, nil, &parseError{"unknown mnemonic " + mnemonic}
}

func TestAssembleBasic(t *testing.T) {
	src := NewSliceSource([]string{
		"start: NOP",
		"       JMP start",
	})
	res, err := Assemble(stubISA{}, src, nil)
	require.NoError(t, err)
	require.Empty(t, res.Errors)
	require.Equal(t, []byte{0x00, 0x01, 0x00}, res.Bytes)
	require.Equal(t, uint32(0), res.Labels["start"])
}

func TestAssembleOrgAndEqu(t *testing.T) {
	src := NewSliceSource([]string{
		"kBase: .equ $10",
		".org $20",
		"here: NOP",
	})
	res, err := Assemble(stubISA{}, src, nil)
	require.NoError(t, err)
	require.Equal(t, uint32(0x10), res.Labels["kBase"])
	require.Equal(t, uint32(0x20), res.Labels["here"])
	require.Equal(t, []byte{0x00}, res.Bytes)
}

func TestAssembleEqualsAssignment(t *testing.T) {
	src := NewSliceSource([]string{
		"kBase = $10",
		"NOP",
	})
	res, err := Assemble(stubISA{}, src, nil)
	require.NoError(t, err)
	require.Equal(t, uint32(0x10), res.Labels["kBase"])
	require.Equal(t, []byte{0x00}, res.Bytes)
}

func TestAssembleUndefinedSymbolIsNonFatal(t *testing.T) {
	src := NewSliceSource([]string{"JMP nowhere"})
	res, err := Assemble(stubISA{}, src, nil)
	require.NoError(t, err)
	require.Len(t, res.Errors, 1)
	require.Contains(t, res.Errors[0].Error(), "nowhere")
}

func TestAssembleDuplicateLabelIsNonFatal(t *testing.T) {
	src := NewSliceSource([]string{"a: NOP", "a: NOP"})
	res, err := Assemble(stubISA{}, src, nil)
	require.NoError(t, err)
	require.Len(t, res.Errors, 1)
	require.Equal(t, []byte{0x00, 0x00}, res.Bytes)
}

func TestAssembleMacroExpansion(t *testing.T) {
	src := NewSliceSource([]string{
		".macro DOUBLE_NOP",
		"NOP",
		"NOP",
		".endm",
		"DOUBLE_NOP",
	})
	res, err := Assemble(stubISA{}, src, nil)
	require.NoError(t, err)
	require.Equal(t, []byte{0x00, 0x00}, res.Bytes)
}

func TestAssemblePseudoExpansion(t *testing.T) {
	src := NewSliceSource([]string{"LDI 3"})
	res, err := Assemble(stubISA{}, src, nil)
	require.NoError(t, err)
	require.Equal(t, []byte{0x00, 0x00, 0x00}, res.Bytes)
}

func TestAssembleDirective(t *testing.T) {
	src := NewSliceSource([]string{".byte 1,2,3"})
	res, err := Assemble(stubISA{}, src, nil)
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3}, res.Bytes)
}

func TestParseLineStripsCommentsRespectingStrings(t *testing.T) {
	p := parseLine(`.ascii "a;b" ; trailing comment`)
	require.Equal(t, ".ASCII", p.mnemonic)
	require.Equal(t, []string{`"a;b"`}, p.operands)
}

func TestSplitOperandsRespectsParens(t *testing.T) {
	got := splitOperands("($20,X),Y")
	require.Equal(t, []string{"($20,X)", "Y"}, got)
}

func TestUnescapeString(t *testing.T) {
	got, err := unescapeString(`hi\n\t\x41`)
	require.NoError(t, err)
	require.Equal(t, "hi\n\tA", got)
}

func TestReaderSource(t *testing.T) {
	src := NewReaderSource(strings.NewReader("NOP\nNOP\n"))
	require.Equal(t, []string{"NOP", "NOP"}, drain(src))
	src.Rewind()
	require.Equal(t, []string{"NOP", "NOP"}, drain(src))
}
