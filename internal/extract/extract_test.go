package extract

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tefla/wire-hdl/api"
	"github.com/tefla/wire-hdl/internal/elaborate"
	"github.com/tefla/wire-hdl/internal/hdlast"
)

func sig(id api.SignalId, name string) api.Signal {
	return api.Signal{ID: id, Name: name, Width: 1}
}

// TestExtractNandAndDff confirms one NAND and one DFF primitive turn into
// the corresponding netlist records with sequential encounter-order ids.
func TestExtractNandAndDff(t *testing.T) {
	r := &elaborate.Result{
		Primitives: []elaborate.ResolvedPrimitive{
			{Kind: hdlast.PrimNand, In1: 2, In2: 3, Out: 4},
			{Kind: hdlast.PrimDff, In1: 4, Out: 5},
		},
	}
	signals := []api.Signal{
		sig(0, "const_0"), sig(1, "const_1"), sig(2, "a"), sig(3, "b"), sig(4, "nand_out"), sig(5, "q"),
	}

	gates, dffs, behaviorals, err := Extract(r, []api.SignalId{2, 3}, signals)
	require.NoError(t, err)
	require.Empty(t, behaviorals)

	require.Len(t, gates, 1)
	require.Equal(t, uint32(0), gates[0].ID)
	require.Equal(t, api.SignalId(2), gates[0].In1)
	require.Equal(t, api.SignalId(3), gates[0].In2)
	require.Equal(t, api.SignalId(4), gates[0].Out)

	require.Len(t, dffs, 1)
	require.Equal(t, uint32(0), dffs[0].ID)
	require.Equal(t, api.SignalId(4), dffs[0].D)
	require.Equal(t, api.SignalId(5), dffs[0].Q)
}

// TestExtractDuplicateDriver confirms a second primitive driving the same
// signal is a fatal DuplicateDriverError.
func TestExtractDuplicateDriver(t *testing.T) {
	r := &elaborate.Result{
		Primitives: []elaborate.ResolvedPrimitive{
			{Kind: hdlast.PrimNand, In1: 2, In2: 3, Out: 4},
			{Kind: hdlast.PrimNand, In1: 2, In2: 2, Out: 4},
		},
	}
	signals := []api.Signal{sig(0, "const_0"), sig(1, "const_1"), sig(2, "a"), sig(3, "b"), sig(4, "out")}

	_, _, _, err := Extract(r, []api.SignalId{2, 3}, signals)
	require.Error(t, err)
	var dup *api.DuplicateDriverError
	require.ErrorAs(t, err, &dup)
	require.Equal(t, api.SignalId(4), dup.Signal.ID)
}

// TestExtractPrimaryInputsDoNotConflict confirms two "primary input"
// claims on the same signal (e.g. const_0/const_1's pre-seeded entries
// plus a caller-supplied primary input) are tolerated, since they both
// mean "already driven", not "driven twice".
func TestExtractPrimaryInputsDoNotConflict(t *testing.T) {
	r := &elaborate.Result{
		Primitives: []elaborate.ResolvedPrimitive{
			{Kind: hdlast.PrimNand, In1: api.ConstZeroSignal, In2: api.ConstOneSignal, Out: 2},
		},
	}
	signals := []api.Signal{sig(0, "const_0"), sig(1, "const_1"), sig(2, "out")}

	gates, _, _, err := Extract(r, []api.SignalId{api.ConstZeroSignal, api.ConstOneSignal}, signals)
	require.NoError(t, err)
	require.Len(t, gates, 1)
}

// TestExtractBehavioralOutputsClaimed confirms every bit of a behavioral
// instance's declared outputs claims a driver, conflicting with a second
// behavioral instance that tries to drive the same bit.
func TestExtractBehavioralOutputsClaimed(t *testing.T) {
	r := &elaborate.Result{
		Behaviors: []elaborate.ResolvedBehavioral{
			{
				ModuleName:   "add8",
				Inputs:       map[string][]api.SignalId{"a": {2}},
				Outputs:      map[string][]api.SignalId{"sum": {3}},
				InputWidths:  map[string]int{"a": 1},
				OutputWidths: map[string]int{"sum": 1},
			},
			{
				ModuleName:   "add8b",
				Inputs:       map[string][]api.SignalId{"a": {2}},
				Outputs:      map[string][]api.SignalId{"sum": {3}},
				InputWidths:  map[string]int{"a": 1},
				OutputWidths: map[string]int{"sum": 1},
			},
		},
	}
	signals := []api.Signal{sig(0, "const_0"), sig(1, "const_1"), sig(2, "a"), sig(3, "sum")}

	_, _, _, err := Extract(r, []api.SignalId{2}, signals)
	require.Error(t, err)
	var dup *api.DuplicateDriverError
	require.ErrorAs(t, err, &dup)
}
