// Package api includes the types used by embedders of this module: the
// compiled-circuit result, the host-side Runtime contract, and the typed
// errors the compiler and assembler can return.
//
// Note: This is an interface for decoupling, not third-party implementations.
// All production implementations live under internal/.
package api

import "fmt"

// SignalId is a dense, zero-based identifier assigned during elaboration.
// Ids are contiguous from zero; see Signal Table invariants in DESIGN.md.
type SignalId = uint32

// ConstZeroSignal and ConstOneSignal are the two sentinel signals every
// circuit carries. ConstZeroSignal is always id 0.
const (
	ConstZeroSignal SignalId = 0
	ConstOneSignal  SignalId = 1
)

// Signal is a named, single-bit wire in the elaborated circuit.
type Signal struct {
	ID    SignalId
	Name  string // hierarchical, e.g. "cpu.alu.sum[3]"
	Width uint8  // always 1 after extraction; multi-bit ports are ordered bit slices keyed by port name
}

func (s Signal) String() string {
	return fmt.Sprintf("%s(#%d)", s.Name, s.ID)
}

// PortBinding maps a module instance's port names to their bound signal
// ids. Multi-bit ports carry their bits in little-endian order (bit 0 first).
type PortBinding struct {
	Inputs       map[string][]SignalId
	Outputs      map[string][]SignalId
	InputWidths  map[string]int
	OutputWidths map[string]int
}
