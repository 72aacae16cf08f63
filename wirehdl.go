// Package wirehdl is the public entry point of the compiler: it wires the
// Elaborator, Primitive Extractor, Leveliser, and WASM Emitter into the
// single Compile call an embedder needs, the way package wazero's top
// level wires runtime, compiler, and engine into NewRuntime/CompileModule
// without exposing any of those internal packages directly.
package wirehdl

import (
	"fmt"

	"github.com/tefla/wire-hdl/api"
	"github.com/tefla/wire-hdl/internal/elaborate"
	"github.com/tefla/wire-hdl/internal/emit"
	"github.com/tefla/wire-hdl/internal/extract"
	"github.com/tefla/wire-hdl/internal/hdlast"
	"github.com/tefla/wire-hdl/internal/levelize"
	"github.com/tefla/wire-hdl/internal/netlist"
)

// CompileOption configures Compile.
type CompileOption func(*compileOptions)

type compileOptions struct {
	optimizationLevel int
}

// WithOptimizationLevel forwards an optimization level hint to the WASM
// Emitter (see emit.WithOptimizationLevel).
func WithOptimizationLevel(level int) CompileOption {
	return func(o *compileOptions) { o.optimizationLevel = level }
}

// Compile runs the full pipeline (§4 "Pipeline overview") over prog,
// instantiating topModule: elaborate, extract, levelize, emit. It returns
// the first fatal error any stage reports.
func Compile(prog *hdlast.Program, topModule string, opts ...CompileOption) (*api.CompiledCircuit, error) {
	var o compileOptions
	for _, apply := range opts {
		apply(&o)
	}

	elaborated, err := elaborate.Elaborate(prog, topModule)
	if err != nil {
		return nil, err
	}

	primaryInputs := primaryInputSignals(prog, topModule, elaborated)
	signals := elaborated.Table.Finalize()

	gates, dffs, behaviorals, err := extract.Extract(elaborated, primaryInputs, signals)
	if err != nil {
		return nil, err
	}

	lvl, err := levelize.Levelize(gates)
	if err != nil {
		return nil, err
	}

	nl := &netlist.LevelizedNetlist{
		Signals:        signals,
		Levels:         lvl.Levels,
		Dffs:           dffs,
		Behavioral:     behaviorals,
		BehavioralDefs: elaborated.BehaviorDefs,
	}

	var emitOpts []emit.Option
	if o.optimizationLevel != 0 {
		emitOpts = append(emitOpts, emit.WithOptimizationLevel(o.optimizationLevel))
	}

	return emit.Emit(nl, emitOpts...)
}

// primaryInputSignals collects the signal ids the Elaborator bound for
// topModule's input ports: these are "already driven" from the Primitive
// Extractor's point of view (§4.2 "Primary inputs are allocated eagerly").
func primaryInputSignals(prog *hdlast.Program, topModule string, r *elaborate.Result) []api.SignalId {
	top := prog.Modules[topModule]
	var ids []api.SignalId
	for _, p := range top.Ports {
		if p.Direction != hdlast.DirIn {
			continue
		}
		if p.Width == 1 {
			if id, ok := r.Table.Lookup(p.Name); ok {
				ids = append(ids, id)
			}
			continue
		}
		for i := 0; i < p.Width; i++ {
			name := fmt.Sprintf("%s[%d]", p.Name, i)
			if id, ok := r.Table.Lookup(name); ok {
				ids = append(ids, id)
			}
		}
	}
	return ids
}
