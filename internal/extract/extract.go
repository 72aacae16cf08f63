// Package extract implements the Primitive Extractor (§4.3): it turns the
// Elaborator's flat list of resolved primitives and behavioral instances
// into the netlist's NandGate/Dff/BehavioralInstance records, assigning
// each gate a deterministic id (encounter order, per §8 invariant 1
// determinism) and enforcing the single-driver invariant.
package extract

import (
	"github.com/tefla/wire-hdl/api"
	"github.com/tefla/wire-hdl/internal/elaborate"
	"github.com/tefla/wire-hdl/internal/hdlast"
	"github.com/tefla/wire-hdl/internal/netlist"
)

// driverKind tags what is driving a given signal, for duplicate-driver
// diagnostics.
type driverKind int

const (
	driverNand driverKind = iota
	driverDff
	driverBehavioral
	driverPrimaryInput
)

// Extract consumes an Elaborator Result and the set of signals the caller
// considers primary inputs (already-driven before extraction — i.e. they
// need no further driver) and produces NandGate/Dff/BehavioralInstance
// records, or the first DuplicateDriverError encountered.
func Extract(r *elaborate.Result, primaryInputs []api.SignalId, signals []api.Signal) ([]netlist.NandGate, []netlist.Dff, []netlist.BehavioralInstance, error) {
	driverOf := make(map[api.SignalId]driverKind, len(signals))
	driverOf[api.ConstZeroSignal] = driverPrimaryInput
	driverOf[api.ConstOneSignal] = driverPrimaryInput
	for _, id := range primaryInputs {
		driverOf[id] = driverPrimaryInput
	}

	claim := func(id api.SignalId, kind driverKind) error {
		if existing, ok := driverOf[id]; ok {
			if existing == driverPrimaryInput && kind == driverPrimaryInput {
				return nil
			}
			return &api.DuplicateDriverError{Signal: signalByID(signals, id)}
		}
		driverOf[id] = kind
		return nil
	}

	var gates []netlist.NandGate
	var dffs []netlist.Dff
	var behaviorals []netlist.BehavioralInstance

	for _, p := range r.Primitives {
		switch p.Kind {
		case hdlast.PrimNand:
			if err := claim(p.Out, driverNand); err != nil {
				return nil, nil, nil, err
			}
			gates = append(gates, netlist.NandGate{ID: uint32(len(gates)), In1: p.In1, In2: p.In2, Out: p.Out})
		case hdlast.PrimDff:
			if err := claim(p.Out, driverDff); err != nil {
				return nil, nil, nil, err
			}
			dffs = append(dffs, netlist.Dff{ID: uint32(len(dffs)), D: p.In1, Q: p.Out})
		}
	}

	for _, b := range r.Behaviors {
		for _, ids := range b.Outputs {
			for _, id := range ids {
				if err := claim(id, driverBehavioral); err != nil {
					return nil, nil, nil, err
				}
			}
		}
		behaviorals = append(behaviorals, netlist.BehavioralInstance{
			ModuleName:   b.ModuleName,
			Inputs:       b.Inputs,
			Outputs:      b.Outputs,
			InputWidths:  b.InputWidths,
			OutputWidths: b.OutputWidths,
		})
	}

	return gates, dffs, behaviorals, nil
}

func signalByID(signals []api.Signal, id api.SignalId) api.Signal {
	if int(id) < len(signals) {
		return signals[id]
	}
	return api.Signal{ID: id, Name: "<unknown>"}
}
