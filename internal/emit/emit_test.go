package emit

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tefla/wire-hdl/api"
	"github.com/tefla/wire-hdl/internal/behavior"
	"github.com/tefla/wire-hdl/internal/netlist"
)

func sig(id api.SignalId, name string) api.Signal {
	return api.Signal{ID: id, Name: name, Width: 1}
}

// TestEmitNandOnly exercises a two-gate NAND circuit (in1, in2 -> nand1 ->
// nand2, an AND gate built from two NANDs) with no DFFs or behavioral
// instances: evaluate_comb/evaluate_dff must not be exported.
func TestEmitNandOnly(t *testing.T) {
	nl := &netlist.LevelizedNetlist{
		Signals: []api.Signal{
			sig(0, "const_0"), sig(1, "const_1"),
			sig(2, "in1"), sig(3, "in2"), sig(4, "nand_out"), sig(5, "and_out"),
		},
		Levels: [][]netlist.NandGate{
			{{ID: 0, In1: 2, In2: 3, Out: 4}},
			{{ID: 1, In1: 4, In2: 4, Out: 5}},
		},
	}

	cc, err := Emit(nl)
	require.NoError(t, err)
	require.NotEmpty(t, cc.Wasm)
	require.False(t, cc.HasBehavioral)
	require.Equal(t, []string{"evaluate", "run_cycles", "memory"}, cc.Exports)
	require.Equal(t, api.MemoryPagesFor(len(nl.Signals)), cc.MemoryPages)

	require.Equal(t, byte(0x00), cc.Wasm[0])
	require.Equal(t, "asm", string(cc.Wasm[1:4]))
	require.Equal(t, []byte{0x01, 0x00, 0x00, 0x00}, cc.Wasm[4:8])
}

// TestEmitConstFolding runs the two §4.6 NAND foldings (a gate with a
// const_0 operand, and a gate with both operands const_1) through Emit
// and checks that a module is produced; it does not inspect the emitted
// instructions.
func TestEmitConstFolding(t *testing.T) {
	nl := &netlist.LevelizedNetlist{
		Signals: []api.Signal{
			sig(0, "const_0"), sig(1, "const_1"),
			sig(2, "forced_one"), sig(3, "forced_zero"),
		},
		Levels: [][]netlist.NandGate{
			{
				{ID: 0, In1: api.ConstZeroSignal, In2: 1, Out: 2},
				{ID: 1, In1: api.ConstOneSignal, In2: api.ConstOneSignal, Out: 3},
			},
		},
	}

	cc, err := Emit(nl)
	require.NoError(t, err)
	require.NotEmpty(t, cc.Wasm)
}

// TestEmitDffChain exercises a two-flip-flop chain with no combinational
// logic at all, confirming it emits a module and that HasBehavioral stays
// false (DFFs alone do not count as a behavioral module).
func TestEmitDffChain(t *testing.T) {
	nl := &netlist.LevelizedNetlist{
		Signals: []api.Signal{
			sig(0, "const_0"), sig(1, "const_1"),
			sig(2, "d0"), sig(3, "q0"), sig(4, "q1"),
		},
		Dffs: []netlist.Dff{
			{ID: 0, D: 2, Q: 3},
			{ID: 1, D: 3, Q: 4},
		},
	}

	cc, err := Emit(nl)
	require.NoError(t, err)
	require.False(t, cc.HasBehavioral)
	require.NotEmpty(t, cc.Wasm)
}

// TestEmitBehavioral exercises a circuit with one behavioral instance
// gated on a NAND-driven signal, confirming evaluate_comb and
// evaluate_dff are exported once any behavioral module is present.
func TestEmitBehavioral(t *testing.T) {
	mod := &behavior.Module{
		Name:         "inverter",
		InputNames:   []string{"a"},
		InputWidths:  map[string]int{"a": 1},
		OutputNames:  []string{"y"},
		OutputWidths: map[string]int{"y": 1},
		Locals: []behavior.Local{
			{Name: "a", Width: 1},
			{Name: "y", Width: 1},
		},
		Body: []behavior.Stmt{
			{Assign: &behavior.AssignStmt{
				LocalIndex: 1,
				Value: behavior.Expr{
					Kind: behavior.ExprUnary,
					UnOp: behavior.OpBitNot,
					X:    &behavior.Expr{Kind: behavior.ExprLocal, LocalIndex: 0},
				},
			}},
		},
	}

	nl := &netlist.LevelizedNetlist{
		Signals: []api.Signal{
			sig(0, "const_0"), sig(1, "const_1"),
			sig(2, "nand_in1"), sig(3, "nand_in2"), sig(4, "gated"), sig(5, "inv_out"),
		},
		Levels: [][]netlist.NandGate{
			{{ID: 0, In1: 2, In2: 3, Out: 4}},
		},
		Behavioral: []netlist.BehavioralInstance{
			{
				ModuleName:   "inverter",
				Inputs:       map[string][]api.SignalId{"a": {4}},
				Outputs:      map[string][]api.SignalId{"y": {5}},
				InputWidths:  map[string]int{"a": 1},
				OutputWidths: map[string]int{"y": 1},
			},
		},
		BehavioralDefs: map[string]*behavior.Module{"inverter": mod},
	}

	cc, err := Emit(nl)
	require.NoError(t, err)
	require.True(t, cc.HasBehavioral)
	require.Equal(t, []string{"evaluate", "run_cycles", "evaluate_comb", "evaluate_dff", "memory"}, cc.Exports)
	require.NotEmpty(t, cc.Wasm)
}

// TestEmitBehavioralMissingDefinition confirms Emit reports an error
// rather than panicking when a behavioral instance names a module with no
// corresponding lowered definition.
func TestEmitBehavioralMissingDefinition(t *testing.T) {
	nl := &netlist.LevelizedNetlist{
		Signals: []api.Signal{sig(0, "const_0"), sig(1, "const_1")},
		Behavioral: []netlist.BehavioralInstance{
			{ModuleName: "missing", Inputs: map[string][]api.SignalId{}, Outputs: map[string][]api.SignalId{}},
		},
		BehavioralDefs: map[string]*behavior.Module{},
	}

	_, err := Emit(nl)
	require.Error(t, err)
}
