package rv32i_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tefla/wire-hdl/internal/asmcore"
	"github.com/tefla/wire-hdl/internal/asmcore/rv32i"
)

func assemble(t *testing.T, lines []string) *asmcore.AssembleResult {
	t.Helper()
	res, err := asmcore.Assemble(rv32i.New(), asmcore.NewSliceSource(lines), nil)
	require.NoError(t, err)
	require.Empty(t, res.Errors)
	return res
}

func TestAddiEcall(t *testing.T) {
	res := assemble(t, []string{"ADDI a0, zero, 42", "ECALL"})
	require.Equal(t, []byte{0x13, 0x05, 0xA0, 0x02, 0x73, 0x00, 0x00, 0x00}, res.Bytes)
}

func TestRType(t *testing.T) {
	res := assemble(t, []string{"ADD a0, a1, a2"})
	// funct7=0 rs2=a2(12) rs1=a1(11) funct3=0 rd=a0(10) opcode=0x33
	// word = 12<<20 | 11<<15 | 10<<7 | 0x33 = 0x00C58533
	require.Equal(t, []byte{0x33, 0x85, 0xC5, 0x00}, res.Bytes)
}

func TestLoadStore(t *testing.T) {
	res := assemble(t, []string{"LW a0, 4(sp)", "SW a0, 8(sp)"})
	require.Len(t, res.Bytes, 8)
}

func TestBranchRelative(t *testing.T) {
	res := assemble(t, []string{
		"loop: ADDI a0, a0, -1",
		"BNE a0, zero, loop",
	})
	require.Len(t, res.Bytes, 8)
	// BNE at addr4, target=0, offset=-4
	word := uint32(res.Bytes[4]) | uint32(res.Bytes[5])<<8 | uint32(res.Bytes[6])<<16 | uint32(res.Bytes[7])<<24
	require.Equal(t, uint32(0x63), word&0x7F) // BRANCH opcode
}

func TestPseudoNopMvRet(t *testing.T) {
	res := assemble(t, []string{"NOP", "MV a0, a1", "RET"})
	require.Len(t, res.Bytes, 12)
	require.Equal(t, []byte{0x13, 0x00, 0x00, 0x00}, res.Bytes[0:4]) // addi zero,zero,0
}

func TestLiSmallAndLarge(t *testing.T) {
	small := assemble(t, []string{"LI a0, 5"})
	require.Len(t, small.Bytes, 4)

	large := assemble(t, []string{"LI a0, 0x12345678"})
	require.Len(t, large.Bytes, 8)
}

func TestLaExpansion(t *testing.T) {
	res := assemble(t, []string{
		"LA a0, target",
		"target: NOP",
	})
	require.Len(t, res.Bytes, 12) // auipc+addi (8 bytes) + nop (4 bytes)
}

func TestUndefinedLabelIsNonFatal(t *testing.T) {
	res, err := asmcore.Assemble(rv32i.New(), asmcore.NewSliceSource([]string{"JAL ra, nowhere"}), nil)
	require.NoError(t, err)
	require.Len(t, res.Errors, 1)
}

func TestDirectives(t *testing.T) {
	res := assemble(t, []string{
		`.byte 1,2`,
		`.half $1234`,
		`.word $deadbeef`,
		`.ascii "go"`,
	})
	require.Equal(t, []byte{
		1, 2,
		0x34, 0x12,
		0xEF, 0xBE, 0xAD, 0xDE,
		'g', 'o',
	}, res.Bytes)
}
