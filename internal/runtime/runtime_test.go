package runtime

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tefla/wire-hdl/api"
	"github.com/tefla/wire-hdl/internal/emit"
	"github.com/tefla/wire-hdl/internal/netlist"
)

func sig(id api.SignalId, name string) api.Signal {
	return api.Signal{ID: id, Name: name, Width: 1}
}

// TestRuntimeNandGate drives a single AND gate (two chained NANDs) through
// a real wasmtime instantiation: set both inputs, evaluate, read the
// output, for every row of the truth table.
func TestRuntimeNandGate(t *testing.T) {
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

	cc, err := emit.Emit(nl)
	require.NoError(t, err)

	rt, err := New(cc)
	require.NoError(t, err)
	defer rt.Close()

	for _, row := range []struct{ a, b, want uint32 }{
		{0, 0, 0},
		{0, 1, 0},
		{1, 0, 0},
		{1, 1, 1},
	} {
		require.NoError(t, rt.SetSignal(2, row.a))
		require.NoError(t, rt.SetSignal(3, row.b))
		require.NoError(t, rt.Evaluate())
		got, err := rt.GetSignal(5)
		require.NoError(t, err)
		require.Equalf(t, row.want, got, "in1=%d in2=%d", row.a, row.b)
	}
}

// TestRuntimeDffChain confirms a DFF samples its D input one cycle before
// that value reaches Q.
func TestRuntimeDffChain(t *testing.T) {
	nl := &netlist.LevelizedNetlist{
		Signals: []api.Signal{
			sig(0, "const_0"), sig(1, "const_1"),
			sig(2, "d"), sig(3, "q"),
		},
		Dffs: []netlist.Dff{{ID: 0, D: 2, Q: 3}},
	}

	cc, err := emit.Emit(nl)
	require.NoError(t, err)

	rt, err := New(cc)
	require.NoError(t, err)
	defer rt.Close()

	require.NoError(t, rt.SetSignal(2, 1))
	got, err := rt.GetSignal(3)
	require.NoError(t, err)
	require.Equal(t, uint32(0), got, "q must not see d before the first evaluate")

	require.NoError(t, rt.Evaluate())
	got, err = rt.GetSignal(3)
	require.NoError(t, err)
	require.Equal(t, uint32(1), got)
}

// TestRuntimeEvaluateCombRequiresBehavioral confirms EvaluateComb/
// EvaluateDff report api.ErrNoBehavioral on a circuit with no behavioral
// modules, since those exports were never built.
func TestRuntimeEvaluateCombRequiresBehavioral(t *testing.T) {
	nl := &netlist.LevelizedNetlist{
		Signals: []api.Signal{sig(0, "const_0"), sig(1, "const_1")},
	}
	cc, err := emit.Emit(nl)
	require.NoError(t, err)

	rt, err := New(cc)
	require.NoError(t, err)
	defer rt.Close()

	require.ErrorIs(t, rt.EvaluateComb(), api.ErrNoBehavioral)
	require.ErrorIs(t, rt.EvaluateDff(), api.ErrNoBehavioral)
}

// TestRuntimeRunCycles confirms run_cycles(n) calls evaluate n times by
// chaining n DFFs and clocking exactly n times.
func TestRuntimeRunCycles(t *testing.T) {
	nl := &netlist.LevelizedNetlist{
		Signals: []api.Signal{
			sig(0, "const_0"), sig(1, "const_1"),
			sig(2, "d0"), sig(3, "q0"), sig(4, "q1"), sig(5, "q2"),
		},
		Dffs: []netlist.Dff{
			{ID: 0, D: 2, Q: 3},
			{ID: 1, D: 3, Q: 4},
			{ID: 2, D: 4, Q: 5},
		},
	}
	cc, err := emit.Emit(nl)
	require.NoError(t, err)

	rt, err := New(cc)
	require.NoError(t, err)
	defer rt.Close()

	require.NoError(t, rt.SetSignal(2, 1))
	require.NoError(t, rt.RunCycles(3))
	got, err := rt.GetSignal(5)
	require.NoError(t, err)
	require.Equal(t, uint32(1), got)
}
