// Package netlist holds the frozen, flat data model §3 describes: the
// output of elaboration + extraction + levelisation, ready for the WASM
// Emitter. Every reference between records is a plain index (§9 "Arena +
// index for graphs"), never a pointer, so the whole structure serializes
// trivially and has no cyclic ownership.
package netlist

import (
	"github.com/tefla/wire-hdl/api"
	"github.com/tefla/wire-hdl/internal/behavior"
)

// NandGate is the sole combinational primitive: out = ¬(in1 ∧ in2).
type NandGate struct {
	ID       uint32
	In1, In2 api.SignalId
	Out      api.SignalId
}

// Dff is an edge-triggered D flip-flop: q follows d on each evaluate.
type Dff struct {
	ID   uint32
	D, Q api.SignalId
}

// BehavioralInstance is one instantiation of a module whose body is a
// @behavior block, bound to concrete signals.
type BehavioralInstance struct {
	ModuleName   string
	Inputs       map[string][]api.SignalId
	Outputs      map[string][]api.SignalId
	InputWidths  map[string]int
	OutputWidths map[string]int
}

// LevelizedNetlist is the hand-off to the WASM Emitter: every NAND gate in
// Levels[0..] ordered by combinational depth, every DFF, every behavioral
// instance, and the frozen signal table they all reference by id.
type LevelizedNetlist struct {
	Signals        []api.Signal
	Levels         [][]NandGate
	Dffs           []Dff
	Behavioral     []BehavioralInstance
	BehavioralDefs map[string]*behavior.Module
}
