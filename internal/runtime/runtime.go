// Package runtime is the host-side api.Runtime implementation: it
// instantiates a CompiledCircuit's WASM module with wasmtime-go, owns the
// imported linear memory the circuit's signal bits live in, and exposes
// §5's SetSignal/GetSignal/Evaluate/RunCycles contract on top of it.
package runtime

import (
	"encoding/binary"
	"fmt"

	"github.com/bytecodealliance/wasmtime-go"

	"github.com/tefla/wire-hdl/api"
)

// wasmtimeRuntime is the only api.Runtime implementation in this repo.
// Wasmtime has no explicit destroy for a Store/Instance beyond garbage
// collection, so Close just drops the references.
type wasmtimeRuntime struct {
	store    *wasmtime.Store
	instance *wasmtime.Instance
	mem      *wasmtime.Memory

	evaluate     *wasmtime.Func
	runCycles    *wasmtime.Func
	evaluateComb *wasmtime.Func
	evaluateDff  *wasmtime.Func

	hasBehavioral bool
}

// New instantiates cc's WASM module, creates and wires its imported
// "env"."memory", sets ConstOneSignal's bit per §4.6's "constant
// initialisation" requirement, and resolves its function exports.
func New(cc *api.CompiledCircuit) (api.Runtime, error) {
	engine := wasmtime.NewEngine()
	store := wasmtime.NewStore(engine)

	module, err := wasmtime.NewModule(engine, cc.Wasm)
	if err != nil {
		return nil, fmt.Errorf("runtime: compiling module: %w", err)
	}

	limits := wasmtime.NewLimits(cc.MemoryPages, cc.MemoryPages*2)
	memType := wasmtime.NewMemoryType(limits)
	mem := wasmtime.NewMemory(store, memType)

	linker := wasmtime.NewLinker(engine)
	if err := linker.Define("env", "memory", mem); err != nil {
		return nil, fmt.Errorf("runtime: defining env.memory: %w", err)
	}

	instance, err := linker.Instantiate(store, module)
	if err != nil {
		return nil, fmt.Errorf("runtime: instantiating module: %w", err)
	}

	r := &wasmtimeRuntime{
		store:         store,
		instance:      instance,
		mem:           mem,
		hasBehavioral: cc.HasBehavioral,
	}

	if r.evaluate = instance.GetExport(store, "evaluate").Func(); r.evaluate == nil {
		return nil, fmt.Errorf("runtime: %q is not an exported function", "evaluate")
	}
	if r.runCycles = instance.GetExport(store, "run_cycles").Func(); r.runCycles == nil {
		return nil, fmt.Errorf("runtime: %q is not an exported function", "run_cycles")
	}
	if cc.HasBehavioral {
		if r.evaluateComb = instance.GetExport(store, "evaluate_comb").Func(); r.evaluateComb == nil {
			return nil, fmt.Errorf("runtime: %q is not an exported function", "evaluate_comb")
		}
		if r.evaluateDff = instance.GetExport(store, "evaluate_dff").Func(); r.evaluateDff == nil {
			return nil, fmt.Errorf("runtime: %q is not an exported function", "evaluate_dff")
		}
	}

	r.initConstOne(cc)
	return r, nil
}

// initConstOne sets ConstOneSignal's bit to 1 in linear memory. Every
// other bit — including ConstZeroSignal's — starts zeroed by WASM's own
// "memory starts zero-filled" guarantee, so this is the only bit this
// package ever writes outside of SetSignal.
func (r *wasmtimeRuntime) initConstOne(cc *api.CompiledCircuit) {
	wordOffset, bitMask := cc.ConstOneByteOffset()
	data := r.mem.UnsafeData(r.store)
	word := binary.LittleEndian.Uint32(data[wordOffset : wordOffset+4])
	binary.LittleEndian.PutUint32(data[wordOffset:wordOffset+4], word|bitMask)
}

func (r *wasmtimeRuntime) SetSignal(id api.SignalId, bit uint32) error {
	wordOffset := api.SignalWordOffset(id)
	mask := api.SignalBitMask(id)
	data := r.mem.UnsafeData(r.store)
	word := binary.LittleEndian.Uint32(data[wordOffset : wordOffset+4])
	if bit != 0 {
		word |= mask
	} else {
		word &^= mask
	}
	binary.LittleEndian.PutUint32(data[wordOffset:wordOffset+4], word)
	return nil
}

func (r *wasmtimeRuntime) GetSignal(id api.SignalId) (uint32, error) {
	wordOffset := api.SignalWordOffset(id)
	mask := api.SignalBitMask(id)
	data := r.mem.UnsafeData(r.store)
	word := binary.LittleEndian.Uint32(data[wordOffset : wordOffset+4])
	if word&mask != 0 {
		return 1, nil
	}
	return 0, nil
}

func (r *wasmtimeRuntime) Evaluate() error {
	_, err := r.evaluate.Call(r.store)
	return err
}

func (r *wasmtimeRuntime) RunCycles(n uint32) error {
	_, err := r.runCycles.Call(r.store, int32(n))
	return err
}

func (r *wasmtimeRuntime) EvaluateComb() error {
	if !r.hasBehavioral {
		return api.ErrNoBehavioral
	}
	_, err := r.evaluateComb.Call(r.store)
	return err
}

func (r *wasmtimeRuntime) EvaluateDff() error {
	if !r.hasBehavioral {
		return api.ErrNoBehavioral
	}
	_, err := r.evaluateDff.Call(r.store)
	return err
}

func (r *wasmtimeRuntime) Close() error {
	r.store = nil
	r.instance = nil
	r.mem = nil
	return nil
}
