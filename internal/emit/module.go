// Package emit is the WASM Emitter (§4.6): it turns a netlist.LevelizedNetlist
// into a standalone WebAssembly module with a fixed, constant-addressed
// memory layout and no runtime address arithmetic.
package emit

import (
	"fmt"
	"sort"

	"github.com/tefla/wire-hdl/api"
	"github.com/tefla/wire-hdl/internal/netlist"
	"github.com/tefla/wire-hdl/internal/wasmbin"
)

// EmitOptions configures the Emitter. OptimizationLevel is carried through
// as metadata only: this emitter performs no constant-propagation or CSE
// pass beyond the two NAND foldings §4.6 names, so every level produces
// identical code.
type EmitOptions struct {
	OptimizationLevel int
}

// Option mutates an EmitOptions.
type Option func(*EmitOptions)

// WithOptimizationLevel sets OptimizationLevel.
func WithOptimizationLevel(level int) Option {
	return func(o *EmitOptions) { o.OptimizationLevel = level }
}

func newEmitOptions(opts ...Option) EmitOptions {
	var o EmitOptions
	for _, apply := range opts {
		apply(&o)
	}
	return o
}

// Type indices of the two function signatures the module declares. (The
// function index layout is: behavioral instances first, then
// evaluate_comb, evaluate_dff, evaluate, run_cycles.)
const (
	typeVoid  uint32 = 0 // ()->()
	typeI32In uint32 = 1 // (i32)->()
)

// Emit builds the complete WASM module for nl and returns the bookkeeping
// an embedder needs to drive it.
func Emit(nl *netlist.LevelizedNetlist, opts ...Option) (*api.CompiledCircuit, error) {
	o := newEmitOptions(opts...)
	_ = o // no optimization pass reads this yet; kept for forward compatibility

	numBehavioral := uint32(len(nl.Behavioral))
	fnEvaluateComb := numBehavioral
	fnEvaluateDff := numBehavioral + 1

	driverLevel := computeDriverLevel(nl)
	behavioralByLevel := groupBehavioralByLevel(nl, driverLevel)

	behavioralCode := make([][]byte, numBehavioral)
	for i, inst := range nl.Behavioral {
		mod, ok := nl.BehavioralDefs[inst.ModuleName]
		if !ok {
			return nil, fmt.Errorf("emit: no behavioral definition for module %q", inst.ModuleName)
		}
		code, err := compileBehavioral(inst, mod)
		if err != nil {
			return nil, err
		}
		behavioralCode[i] = code
	}

	evaluateCombCode := emitEvaluateComb(nl, behavioralByLevel, 0)
	evaluateDffCode := emitEvaluateDff(nl)
	evaluateCode := emitEvaluate(fnEvaluateComb, fnEvaluateDff)
	runCyclesCode := emitRunCycles(fnEvaluateComb + 2)

	allCode := make([][]byte, 0, numBehavioral+4)
	allCode = append(allCode, behavioralCode...)
	allCode = append(allCode, evaluateCombCode, evaluateDffCode, evaluateCode, runCyclesCode)

	hasBehavioral := numBehavioral > 0

	wasm := assembleModule(allCode, numBehavioral, hasBehavioral, api.MemoryPagesFor(len(nl.Signals)))

	exports := []string{"evaluate", "run_cycles"}
	if hasBehavioral {
		exports = append(exports, "evaluate_comb", "evaluate_dff")
	}
	exports = append(exports, "memory")

	return &api.CompiledCircuit{
		Wasm:          wasm,
		MemoryPages:   api.MemoryPagesFor(len(nl.Signals)),
		Signals:       nl.Signals,
		Exports:       exports,
		HasBehavioral: hasBehavioral,
	}, nil
}

// computeDriverLevel maps every NAND-driven signal to the index of the
// level that produces it, so behavioral instances can be scheduled after
// every NAND level their inputs depend on.
func computeDriverLevel(nl *netlist.LevelizedNetlist) map[api.SignalId]int {
	driverLevel := make(map[api.SignalId]int)
	for levelIdx, gates := range nl.Levels {
		for _, g := range gates {
			driverLevel[g.Out] = levelIdx
		}
	}
	return driverLevel
}

// groupBehavioralByLevel buckets each behavioral instance index under the
// NAND level its inputs require to have already settled: the max
// driverLevel among its bound input signals, or -1 if none of its inputs
// are NAND-driven (primary inputs or DFF outputs only). The -1 group runs
// before level 0.
func groupBehavioralByLevel(nl *netlist.LevelizedNetlist, driverLevel map[api.SignalId]int) map[int][]int {
	groups := make(map[int][]int)
	for i, inst := range nl.Behavioral {
		required := -1
		for _, ids := range inst.Inputs {
			for _, id := range ids {
				if lvl, ok := driverLevel[id]; ok && lvl > required {
					required = lvl
				}
			}
		}
		groups[required] = append(groups[required], i)
	}
	return groups
}

// emitEvaluateComb interleaves NAND level evaluation with behavioral
// instance calls, running each instance as soon as every NAND level its
// inputs depend on has settled.
func emitEvaluateComb(nl *netlist.LevelizedNetlist, behavioralByLevel map[int][]int, base uint32) []byte {
	fb := newFuncBuilder(0)
	scratch := fb.addLocal()

	callGroup := func(level int) {
		indices := behavioralByLevel[level]
		sort.Ints(indices)
		for _, idx := range indices {
			fb.call(base + uint32(idx))
		}
	}

	callGroup(-1)
	for levelIdx, gates := range nl.Levels {
		for _, g := range gates {
			emitNandGate(fb, g, scratch)
		}
		callGroup(levelIdx)
	}
	return fb.finish()
}

func emitEvaluateDff(nl *netlist.LevelizedNetlist) []byte {
	fb := newFuncBuilder(0)
	scratch := fb.addLocal()
	emitDffPass(fb, nl.Dffs, scratch)
	return fb.finish()
}

// emitEvaluate runs comb -> dff -> comb: pre-clock settle, sample-and-
// commit the flip-flops, then resettle combinational logic (including any
// behavioral modules) against the new DFF outputs, per §4.6's evaluation
// sequence.
func emitEvaluate(fnEvaluateComb, fnEvaluateDff uint32) []byte {
	fb := newFuncBuilder(0)
	fb.call(fnEvaluateComb)
	fb.call(fnEvaluateDff)
	fb.call(fnEvaluateComb)
	return fb.finish()
}

// emitRunCycles emits run_cycles(n): a standard counting loop that calls
// evaluate n times.
//
//	local i = 0
//	block {
//	  loop {
//	    if i >= n { br 1 }
//	    call evaluate
//	    i += 1
//	    br 0
//	  }
//	}
func emitRunCycles(fnEvaluate uint32) []byte {
	fb := newFuncBuilder(1) // param 0 = n
	i := fb.addLocal()
	fb.i32Const(0)
	fb.localSet(i)

	fb.blockVoid()
	fb.loopVoid()

	fb.localGet(i)
	fb.localGet(0)
	fb.op(wasmbin.OpI32GeU)
	fb.brIf(1)

	fb.call(fnEvaluate)

	fb.localGet(i)
	fb.i32Const(1)
	fb.op(wasmbin.OpI32Add)
	fb.localSet(i)
	fb.br(0)

	fb.end() // loop
	fb.end() // block
	return fb.finish()
}

// assembleModule writes the full binary: type, import, function, export
// and code sections, in that order, around the given function bodies.
// allCode holds every function's already-finished body (locals vector +
// instructions + end), in final function-index order.
func assembleModule(allCode [][]byte, numBehavioral uint32, hasBehavioral bool, memoryPages uint32) []byte {
	var out wasmbin.Buffer
	out.WriteUint32(wasmbin.Magic)
	out.WriteUint32(wasmbin.Version)

	out.WriteSizedSection(wasmbin.SectionType, typeSection())
	out.WriteSizedSection(wasmbin.SectionImport, importSection(memoryPages))
	out.WriteSizedSection(wasmbin.SectionFunction, functionSection(allCode, numBehavioral))
	out.WriteSizedSection(wasmbin.SectionExport, exportSection(numBehavioral, hasBehavioral))
	out.WriteSizedSection(wasmbin.SectionCode, codeSection(allCode))

	return out.Bytes()
}

// typeSection declares exactly the two function signatures this emitter
// ever needs: the niladic void functions (every behavioral instance,
// evaluate_comb, evaluate_dff, evaluate) and run_cycles' (i32)->().
func typeSection() []byte {
	var body wasmbin.Buffer
	body.WriteVarUint32(2)

	body.WriteByte(wasmbin.FuncTypeForm)
	body.WriteVarUint32(0)
	body.WriteVarUint32(0)

	body.WriteByte(wasmbin.FuncTypeForm)
	body.WriteVarUint32(1)
	body.WriteByte(wasmbin.ValI32)
	body.WriteVarUint32(0)

	return body.Bytes()
}

// importSection imports the embedder-owned linear memory this circuit's
// signals live in. Max is twice the initial size, per §4.7.
func importSection(initialPages uint32) []byte {
	var body wasmbin.Buffer
	body.WriteVarUint32(1)
	body.WriteName("env")
	body.WriteName("memory")
	body.WriteByte(wasmbin.KindMemory)
	body.WriteByte(1) // limits flag: min and max both present
	body.WriteVarUint32(initialPages)
	body.WriteVarUint32(initialPages * 2)
	return body.Bytes()
}

// functionSection declares each function's type index. Every function is
// typeVoid except the last one, run_cycles, which takes the i32 cycle count.
func functionSection(allCode [][]byte, numBehavioral uint32) []byte {
	fnRunCycles := numBehavioral + 3
	var body wasmbin.Buffer
	body.WriteVarUint32(uint32(len(allCode)))
	for i := range allCode {
		if uint32(i) == fnRunCycles {
			body.WriteVarUint32(typeI32In)
		} else {
			body.WriteVarUint32(typeVoid)
		}
	}
	return body.Bytes()
}

func exportSection(numBehavioral uint32, hasBehavioral bool) []byte {
	fnEvaluateComb := numBehavioral
	fnEvaluateDff := numBehavioral + 1
	fnEvaluate := numBehavioral + 2
	fnRunCycles := numBehavioral + 3

	var body wasmbin.Buffer
	count := uint32(3) // evaluate, run_cycles, memory
	if hasBehavioral {
		count += 2
	}
	body.WriteVarUint32(count)

	body.WriteName("evaluate")
	body.WriteByte(wasmbin.KindFunc)
	body.WriteVarUint32(fnEvaluate)

	body.WriteName("run_cycles")
	body.WriteByte(wasmbin.KindFunc)
	body.WriteVarUint32(fnRunCycles)

	if hasBehavioral {
		body.WriteName("evaluate_comb")
		body.WriteByte(wasmbin.KindFunc)
		body.WriteVarUint32(fnEvaluateComb)

		body.WriteName("evaluate_dff")
		body.WriteByte(wasmbin.KindFunc)
		body.WriteVarUint32(fnEvaluateDff)
	}

	body.WriteName("memory")
	body.WriteByte(wasmbin.KindMemory)
	body.WriteVarUint32(0) // the sole imported memory

	return body.Bytes()
}

func codeSection(allCode [][]byte) []byte {
	var body wasmbin.Buffer
	body.WriteVarUint32(uint32(len(allCode)))
	for _, fn := range allCode {
		body.WriteVarUint32(uint32(len(fn)))
		body.Write(fn)
	}
	return body.Bytes()
}
