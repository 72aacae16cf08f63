package api

import (
	"errors"
	"fmt"
)

// ErrTableFrozen is returned by the Signal Table when allocation is
// attempted after finalize().
var ErrTableFrozen = errors.New("wirehdl: signal table is frozen")

// ErrNoBehavioral is returned by Runtime.EvaluateComb / EvaluateDff when the
// compiled circuit has no behavioral modules, so those exports don't exist.
var ErrNoBehavioral = errors.New("wirehdl: circuit has no behavioral modules, no split evaluate_comb/evaluate_dff exports")

// UndefinedModuleError is raised by the Elaborator when an instance refers
// to a module name with no definition. Fatal.
type UndefinedModuleError struct {
	ModuleName string
	Instance   string
}

func (e *UndefinedModuleError) Error() string {
	return fmt.Sprintf("undefined module %q (instantiated as %q)", e.ModuleName, e.Instance)
}

// WidthMismatchError is raised by the Elaborator when an actual parameter's
// width disagrees with the formal port's declared width. Fatal.
type WidthMismatchError struct {
	Formal   string
	Expected int
	Got      int
}

func (e *WidthMismatchError) Error() string {
	return fmt.Sprintf("port %q: width mismatch, expected %d got %d", e.Formal, e.Expected, e.Got)
}

// DuplicateDriverError is raised by the Primitive Extractor when a second
// primitive or instance writes a signal that already has a driver. Fatal.
type DuplicateDriverError struct {
	Signal Signal
}

func (e *DuplicateDriverError) Error() string {
	return fmt.Sprintf("signal %s has more than one driver", e.Signal)
}

// CombinationalCycleError is raised by the Leveliser when a pure
// combinational loop (no DFF, no behavioral module in the loop) is found.
// Fatal. Path names at least one full cycle of signal ids.
type CombinationalCycleError struct {
	Path []SignalId
}

func (e *CombinationalCycleError) Error() string {
	return fmt.Sprintf("combinational cycle through signals %v", e.Path)
}

// UndefinedSymbolError is raised by assembler pass 2 when a label is never
// bound. Non-fatal: collected, reported once the pass finishes.
type UndefinedSymbolError struct {
	Name string
	Line int
}

func (e *UndefinedSymbolError) Error() string {
	return fmt.Sprintf("line %d: undefined symbol %q", e.Line, e.Name)
}

// DuplicateLabelError is raised by assembler pass 1 when a label is bound
// twice. Non-fatal: collected.
type DuplicateLabelError struct {
	Name string
	Line int
}

func (e *DuplicateLabelError) Error() string {
	return fmt.Sprintf("line %d: duplicate label %q", e.Line, e.Name)
}

// BufferOverflowError describes a source that doesn't fit a fixed working
// buffer. Nothing in this repository returns it: the assembler reads
// every source fully into memory and has no fixed buffer. Fatal.
type BufferOverflowError struct {
	BufferSize int
}

func (e *BufferOverflowError) Error() string {
	return fmt.Sprintf("source exceeds %d-byte working buffer; use a streaming reader", e.BufferSize)
}

// InvalidEncodingError is raised by the Elaborator's structural wiring
// resolver, the Behavioral Lowerer and the behavioral evaluator on input
// they cannot encode (e.g. an out-of-range slice or an undeclared name).
// Fatal.
type InvalidEncodingError struct {
	Reason string
}

func (e *InvalidEncodingError) Error() string {
	return fmt.Sprintf("invalid encoding: %s", e.Reason)
}

// WasmValidationError describes an emitted module that fails validation,
// which would indicate a bug in the emitter, not in the caller's program.
// The Emitter has no self-check pass, and nothing in this repository
// returns this error. Fatal.
type WasmValidationError struct {
	Reason string
}

func (e *WasmValidationError) Error() string {
	return fmt.Sprintf("wasm validation failed (emitter bug): %s", e.Reason)
}

// BehavioralCallCycleError is raised when a chain of cross-module
// behavioral calls forms a cycle (§9 "the call graph must be a DAG").
// Fatal.
type BehavioralCallCycleError struct {
	Path []string
}

func (e *BehavioralCallCycleError) Error() string {
	return fmt.Sprintf("cyclic behavioral module calls: %v", e.Path)
}

// UnconnectedPortError is raised by the Elaborator when an instance leaves
// a formal port unbound. Fatal.
type UnconnectedPortError struct {
	Instance string
	Port     string
}

func (e *UnconnectedPortError) Error() string {
	return fmt.Sprintf("instance %q: port %q is not connected", e.Instance, e.Port)
}

// SyntaxError is a line-anchored diagnostic with a caret into the offending
// source line, per §4.8 "Error reporting".
type SyntaxError struct {
	Line    int
	Message string
	Source  string
	Column  int
}

func (e *SyntaxError) Error() string {
	caret := ""
	if e.Column >= 0 && e.Column <= len(e.Source) {
		caret = "\n" + e.Source + "\n"
		for i := 0; i < e.Column; i++ {
			caret += " "
		}
		caret += "^"
	}
	return fmt.Sprintf("line %d: %s%s", e.Line, e.Message, caret)
}
