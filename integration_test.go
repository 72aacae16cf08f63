package wirehdl_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	wirehdl "github.com/tefla/wire-hdl"
	"github.com/tefla/wire-hdl/api"
	"github.com/tefla/wire-hdl/internal/hdlast"
	"github.com/tefla/wire-hdl/internal/runtime"
)

func ident(name string) hdlast.Expr {
	return hdlast.Expr{Kind: hdlast.ExprIdent, Ident: name}
}

func lit(v int64) hdlast.Expr {
	return hdlast.Expr{Kind: hdlast.ExprLiteral, Literal: v}
}

func nand(in1, in2, out hdlast.Expr) hdlast.PrimitiveRef {
	return hdlast.PrimitiveRef{Kind: hdlast.PrimNand, In1: in1, In2: in2, Out: out}
}

func dff(d, q hdlast.Expr) hdlast.PrimitiveRef {
	return hdlast.PrimitiveRef{Kind: hdlast.PrimDff, In1: d, Out: q}
}

func signalsByName(cc *api.CompiledCircuit) map[string]api.SignalId {
	m := make(map[string]api.SignalId, len(cc.Signals))
	for _, s := range cc.Signals {
		m[s.Name] = s.ID
	}
	return m
}

// TestHalfAdder is E1: Sum = A xor B, Carry = A and B, built from five
// NANDs with the textbook decomposition (4 NANDs for XOR, 1 more NAND
// folding the shared AND term). After set(A,1); set(B,1); evaluate(),
// Sum must read 0 and Carry must read 1.
func TestHalfAdder(t *testing.T) {
	prog := &hdlast.Program{
		Modules: map[string]*hdlast.ModuleDef{
			"half_adder": {
				Name: "half_adder",
				Ports: []hdlast.Port{
					{Name: "A", Width: 1, Direction: hdlast.DirIn},
					{Name: "B", Width: 1, Direction: hdlast.DirIn},
					{Name: "Sum", Width: 1, Direction: hdlast.DirOut},
					{Name: "Carry", Width: 1, Direction: hdlast.DirOut},
				},
				Body: hdlast.ModuleBody{
					Structural: &hdlast.StructuralBody{
						Primitives: []hdlast.PrimitiveRef{
							nand(ident("A"), ident("B"), ident("n1")),
							nand(ident("A"), ident("n1"), ident("n2")),
							nand(ident("B"), ident("n1"), ident("n3")),
							nand(ident("n2"), ident("n3"), ident("Sum")),
							nand(ident("n1"), ident("n1"), ident("Carry")),
						},
					},
				},
			},
		},
	}

	cc, err := wirehdl.Compile(prog, "half_adder")
	require.NoError(t, err)
	require.False(t, cc.HasBehavioral)

	rt, err := runtime.New(cc)
	require.NoError(t, err)
	defer rt.Close()

	names := signalsByName(cc)
	require.NoError(t, rt.SetSignal(names["A"], 1))
	require.NoError(t, rt.SetSignal(names["B"], 1))
	require.NoError(t, rt.Evaluate())

	sum, err := rt.GetSignal(names["Sum"])
	require.NoError(t, err)
	carry, err := rt.GetSignal(names["Carry"])
	require.NoError(t, err)

	require.Equal(t, uint32(0), sum)
	require.Equal(t, uint32(1), carry)
}

// TestDffChain is E2: a four-stage shift register D0 -> Q0 -> Q1 -> Q2 ->
// Q3. Driving D0 through 1,0,1,0 (one Evaluate per value) must leave
// Q3=1, Q2=0, Q1=1, Q0=0 — each DFF samples its input before any of the
// chain's outputs commit, so a value takes exactly one cycle per stage to
// propagate.
func TestDffChain(t *testing.T) {
	prog := &hdlast.Program{
		Modules: map[string]*hdlast.ModuleDef{
			"dff_chain": {
				Name: "dff_chain",
				Ports: []hdlast.Port{
					{Name: "D0", Width: 1, Direction: hdlast.DirIn},
				},
				Body: hdlast.ModuleBody{
					Structural: &hdlast.StructuralBody{
						Primitives: []hdlast.PrimitiveRef{
							dff(ident("D0"), ident("Q0")),
							dff(ident("Q0"), ident("Q1")),
							dff(ident("Q1"), ident("Q2")),
							dff(ident("Q2"), ident("Q3")),
						},
					},
				},
			},
		},
	}

	cc, err := wirehdl.Compile(prog, "dff_chain")
	require.NoError(t, err)

	rt, err := runtime.New(cc)
	require.NoError(t, err)
	defer rt.Close()

	names := signalsByName(cc)
	sequence := []uint32{1, 0, 1, 0}
	for _, d0 := range sequence {
		require.NoError(t, rt.SetSignal(names["D0"], d0))
		require.NoError(t, rt.Evaluate())
	}

	for name, want := range map[string]uint32{"Q0": 0, "Q1": 1, "Q2": 0, "Q3": 1} {
		got, err := rt.GetSignal(names[name])
		require.NoError(t, err)
		require.Equalf(t, want, got, "signal %s", name)
	}
}

// TestBehavioralAdder8 is E3: add8(a:8, b:8) -> sum:8 computed as
// `sum = a + b`. Packing a=0x7F, b=0x01 must read back sum=0x80.
func TestBehavioralAdder8(t *testing.T) {
	prog := &hdlast.Program{
		Modules: map[string]*hdlast.ModuleDef{
			"add8": {
				Name: "add8",
				Ports: []hdlast.Port{
					{Name: "a", Width: 8, Direction: hdlast.DirIn},
					{Name: "b", Width: 8, Direction: hdlast.DirIn},
					{Name: "sum", Width: 8, Direction: hdlast.DirOut},
				},
				Body: hdlast.ModuleBody{
					Behavioral: &hdlast.BehavioralBody{
						Stmts: []hdlast.Stmt{
							{Assign: &hdlast.AssignStmt{
								Target: hdlast.LhsName,
								Name:   "sum",
								Value: hdlast.Expr{
									Kind:  hdlast.ExprBinary,
									BinOp: hdlast.OpAdd,
									X:     exprPtr(ident("a")),
									Y:     exprPtr(ident("b")),
								},
							}},
						},
					},
				},
			},
		},
	}

	cc, err := wirehdl.Compile(prog, "add8")
	require.NoError(t, err)
	require.True(t, cc.HasBehavioral)

	rt, err := runtime.New(cc)
	require.NoError(t, err)
	defer rt.Close()

	names := signalsByName(cc)
	require.NoError(t, setBits(rt, names, "a", 8, 0x7F))
	require.NoError(t, setBits(rt, names, "b", 8, 0x01))
	require.NoError(t, rt.Evaluate())

	sum, err := getBits(rt, names, "sum", 8)
	require.NoError(t, err)
	require.Equal(t, uint32(0x80), sum)
}

// TestCombinationalCycleDiagnostic is E6: two NANDs wired back into each
// other (g1.out feeds g2.in1, g2.out feeds g1.in1, both second inputs tied
// to const_1) form a pure combinational loop with no DFF or behavioral
// instance breaking it. Compile must fail with CombinationalCycleError.
func TestCombinationalCycleDiagnostic(t *testing.T) {
	prog := &hdlast.Program{
		Modules: map[string]*hdlast.ModuleDef{
			"cycle_mod": {
				Name: "cycle_mod",
				Body: hdlast.ModuleBody{
					Structural: &hdlast.StructuralBody{
						Primitives: []hdlast.PrimitiveRef{
							nand(ident("g2_out"), lit(1), ident("g1_out")),
							nand(ident("g1_out"), lit(1), ident("g2_out")),
						},
					},
				},
			},
		},
	}

	_, err := wirehdl.Compile(prog, "cycle_mod")
	require.Error(t, err)

	var cycleErr *api.CombinationalCycleError
	require.True(t, errors.As(err, &cycleErr))
	require.GreaterOrEqual(t, len(cycleErr.Path), 2)
}

func exprPtr(e hdlast.Expr) *hdlast.Expr { return &e }

func setBits(rt api.Runtime, names map[string]api.SignalId, prefix string, width int, value uint32) error {
	for i := 0; i < width; i++ {
		id, ok := names[indexedName(prefix, i)]
		if !ok {
			return errUnknownSignal(prefix, i)
		}
		if err := rt.SetSignal(id, (value>>uint(i))&1); err != nil {
			return err
		}
	}
	return nil
}

func getBits(rt api.Runtime, names map[string]api.SignalId, prefix string, width int) (uint32, error) {
	var value uint32
	for i := 0; i < width; i++ {
		id, ok := names[indexedName(prefix, i)]
		if !ok {
			return 0, errUnknownSignal(prefix, i)
		}
		bit, err := rt.GetSignal(id)
		if err != nil {
			return 0, err
		}
		value |= bit << uint(i)
	}
	return value, nil
}

func indexedName(prefix string, i int) string {
	return prefix + "[" + itoa(i) + "]"
}

func itoa(i int) string {
	if i < 10 {
		return string(rune('0' + i))
	}
	return itoa(i/10) + string(rune('0'+i%10))
}

type unknownSignalError struct {
	prefix string
	index  int
}

func (e *unknownSignalError) Error() string {
	return "unknown signal " + indexedName(e.prefix, e.index)
}

func errUnknownSignal(prefix string, i int) error {
	return &unknownSignalError{prefix: prefix, index: i}
}
