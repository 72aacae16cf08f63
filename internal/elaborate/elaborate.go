// Package elaborate implements the Elaborator (§4.2): it recursively
// instantiates a module tree into a flat list of resolved primitive
// references and behavioral instances, allocating fresh signals for every
// internal net of every instance as it goes.
package elaborate

import (
	"fmt"

	"github.com/tefla/wire-hdl/api"
	"github.com/tefla/wire-hdl/internal/behavior"
	"github.com/tefla/wire-hdl/internal/hdlast"
	"github.com/tefla/wire-hdl/internal/signaltable"
)

// ResolvedPrimitive is a NAND or DFF reference with its operands resolved
// to concrete signal ids, ready for the Primitive Extractor.
type ResolvedPrimitive struct {
	Kind     hdlast.PrimitiveKind
	In1, In2 api.SignalId // DFF uses In1 as D, In2 is unused (api.ConstZeroSignal)
	Out      api.SignalId // DFF uses Out as Q
}

// ResolvedBehavioral is a behavioral module instance bound to concrete
// input/output signals.
type ResolvedBehavioral struct {
	ModuleName   string
	Inputs       map[string][]api.SignalId
	Outputs      map[string][]api.SignalId
	InputWidths  map[string]int
	OutputWidths map[string]int
}

// Result is the Elaborator's output: everything the Primitive Extractor
// needs, plus the not-yet-frozen signal table.
type Result struct {
	Table      *signaltable.Table
	Primitives []ResolvedPrimitive
	Behaviors  []ResolvedBehavioral
	// BehaviorDefs holds each referenced behavioral module's IR, lowered
	// exactly once per definition and reused across instances (§4.2).
	BehaviorDefs map[string]*behavior.Module
}

// Elaborate instantiates topModule from prog and returns the flattened
// result, or the first fatal error encountered.
func Elaborate(prog *hdlast.Program, topModule string) (*Result, error) {
	top, ok := prog.Modules[topModule]
	if !ok {
		return nil, &api.UndefinedModuleError{ModuleName: topModule, Instance: "<top>"}
	}

	e := &elaborator{
		prog:         prog,
		table:        signaltable.New(),
		behaviorDefs: map[string]*behavior.Module{},
		behaviorColor: map[string]int{},
	}

	rootScope := &scope{bindings: map[string][]api.SignalId{}, prefix: ""}

	// Every top-level port, input or output, is allocated eagerly under its
	// bare port name so embedders can address it without an instance
	// prefix. For a structural top this is a formality: a primitive's Out
	// expression referencing the same bare name would lazily allocate the
	// identical signal anyway. For a top module whose body is itself a
	// @behavior block, it is load-bearing: instantiateBehavioral binds
	// every port, in and out, from the current scope, and nothing else
	// ever allocates a root-level output net for it.
	for _, p := range top.Ports {
		ids := make([]api.SignalId, p.Width)
		for i := 0; i < p.Width; i++ {
			name := p.Name
			if p.Width > 1 {
				name = fmt.Sprintf("%s[%d]", p.Name, i)
			}
			id, err := e.table.Intern(name, 1)
			if err != nil {
				return nil, err
			}
			ids[i] = id
		}
		rootScope.bindings[p.Name] = ids
	}

	if err := e.elaborateModuleBody(top, rootScope, ""); err != nil {
		return nil, err
	}

	return &Result{
		Table:        e.table,
		Primitives:   e.primitives,
		Behaviors:    e.behaviors,
		BehaviorDefs: e.behaviorDefs,
	}, nil
}

type elaborator struct {
	prog       *hdlast.Program
	table      *signaltable.Table
	primitives []ResolvedPrimitive
	behaviors  []ResolvedBehavioral

	behaviorDefs  map[string]*behavior.Module
	behaviorColor map[string]int // 0=white 1=gray 2=black
}

// scope is the per-instantiation environment: the current bindings of bare
// net names to signal ids, and the hierarchical name prefix new nets are
// allocated under (§3 "hierarchical" signal names, e.g. "cpu.alu.sum[3]").
type scope struct {
	bindings map[string][]api.SignalId
	prefix   string
}

func (e *elaborator) elaborateModuleBody(def *hdlast.ModuleDef, sc *scope, instancePath string) error {
	if def.Body.Behavioral != nil {
		// The top module itself can be behavioral: bind every port as a
		// primary signal and record one behavioral instance for it.
		return e.instantiateBehavioral(def.Name, def.Ports, sc, instancePath)
	}

	body := def.Body.Structural
	for _, prim := range body.Primitives {
		if err := e.elaboratePrimitive(prim, sc); err != nil {
			return err
		}
	}
	for _, inst := range body.Instances {
		if err := e.elaborateInstance(inst, sc, instancePath); err != nil {
			return err
		}
	}
	return nil
}

func (e *elaborator) elaboratePrimitive(prim hdlast.PrimitiveRef, sc *scope) error {
	in1, err := e.resolveExpr(sc, prim.In1, 1)
	if err != nil {
		return err
	}
	out, err := e.resolveExpr(sc, prim.Out, 1)
	if err != nil {
		return err
	}
	rp := ResolvedPrimitive{Kind: prim.Kind, In1: in1[0], Out: out[0], In2: api.ConstZeroSignal}
	if prim.Kind == hdlast.PrimNand {
		in2, err := e.resolveExpr(sc, prim.In2, 1)
		if err != nil {
			return err
		}
		rp.In2 = in2[0]
	}
	e.primitives = append(e.primitives, rp)
	return nil
}

func (e *elaborator) elaborateInstance(inst hdlast.Instance, outer *scope, instancePath string) error {
	def, ok := e.prog.Modules[inst.ModuleName]
	if !ok {
		return &api.UndefinedModuleError{ModuleName: inst.ModuleName, Instance: inst.InstanceName}
	}

	childPath := inst.InstanceName
	if instancePath != "" {
		childPath = instancePath + "." + inst.InstanceName
	}

	if def.Body.Behavioral != nil {
		inner := &scope{bindings: map[string][]api.SignalId{}, prefix: childPath + "."}
		for _, p := range def.Ports {
			actual, ok := inst.Actuals[p.Name]
			if !ok {
				return &api.UnconnectedPortError{Instance: inst.InstanceName, Port: p.Name}
			}
			ids, err := e.resolveExpr(outer, actual, p.Width)
			if err != nil {
				return err
			}
			if len(ids) != p.Width {
				return &api.WidthMismatchError{Formal: p.Name, Expected: p.Width, Got: len(ids)}
			}
			inner.bindings[p.Name] = ids
		}
		return e.instantiateBehavioral(def.Name, def.Ports, inner, childPath)
	}

	inner := &scope{bindings: map[string][]api.SignalId{}, prefix: childPath + "."}
	for _, p := range def.Ports {
		actual, ok := inst.Actuals[p.Name]
		if !ok {
			return &api.UnconnectedPortError{Instance: inst.InstanceName, Port: p.Name}
		}
		ids, err := e.resolveExpr(outer, actual, p.Width)
		if err != nil {
			return err
		}
		if len(ids) != p.Width {
			return &api.WidthMismatchError{Formal: p.Name, Expected: p.Width, Got: len(ids)}
		}
		inner.bindings[p.Name] = ids
	}
	return e.elaborateModuleBody(def, inner, childPath)
}

// instantiateBehavioral lowers def's IR (once, cached) and records a bound
// instance using the signals already resolved into sc's bindings for each
// port.
func (e *elaborator) instantiateBehavioral(name string, ports []hdlast.Port, sc *scope, instancePath string) error {
	mod, err := e.lowerBehavioral(name)
	if err != nil {
		return err
	}

	ri := ResolvedBehavioral{
		ModuleName:   name,
		Inputs:       map[string][]api.SignalId{},
		Outputs:      map[string][]api.SignalId{},
		InputWidths:  map[string]int{},
		OutputWidths: map[string]int{},
	}
	for _, p := range ports {
		ids, ok := sc.bindings[p.Name]
		if !ok {
			return &api.UnconnectedPortError{Instance: instancePath, Port: p.Name}
		}
		if p.Direction == hdlast.DirIn {
			ri.Inputs[p.Name] = ids
			ri.InputWidths[p.Name] = p.Width
		} else {
			ri.Outputs[p.Name] = ids
			ri.OutputWidths[p.Name] = p.Width
		}
	}
	_ = mod
	e.behaviors = append(e.behaviors, ri)
	return nil
}

// lowerBehavioral lowers module name's IR on first reference, recursing
// into every module it calls first so Lower's Defs map is always complete,
// and detecting a cyclic call graph via white/gray/black coloring (§9).
func (e *elaborator) lowerBehavioral(name string) (*behavior.Module, error) {
	if mod, ok := e.behaviorDefs[name]; ok {
		return mod, nil
	}
	if e.behaviorColor[name] == 1 {
		return nil, &api.BehavioralCallCycleError{Path: []string{name}}
	}
	def, ok := e.prog.Modules[name]
	if !ok || def.Body.Behavioral == nil {
		return nil, &api.UndefinedModuleError{ModuleName: name, Instance: "<behavioral call>"}
	}

	e.behaviorColor[name] = 1 // gray
	defs := behavior.Defs{}
	for _, callee := range calledModules(def.Body.Behavioral) {
		calleeMod, err := e.lowerBehavioral(callee)
		if err != nil {
			return nil, err
		}
		defs[callee] = calleeMod
	}
	e.behaviorColor[name] = 2 // black

	mod, err := behavior.Lower(name, def.Ports, def.Body.Behavioral, defs)
	if err != nil {
		return nil, err
	}
	e.behaviorDefs[name] = mod
	return mod, nil
}

// calledModules returns every distinct module name referenced by an
// ExprCall anywhere in body, in first-encountered order.
func calledModules(body *hdlast.BehavioralBody) []string {
	seen := map[string]bool{}
	var order []string
	var walkExpr func(hdlast.Expr)
	var walkStmt func(hdlast.Stmt)

	walkExpr = func(e hdlast.Expr) {
		switch e.Kind {
		case hdlast.ExprCall:
			if !seen[e.Module] {
				seen[e.Module] = true
				order = append(order, e.Module)
			}
			for _, a := range e.Args {
				walkExpr(a)
			}
		case hdlast.ExprBinary:
			walkExpr(*e.X)
			walkExpr(*e.Y)
		case hdlast.ExprUnary:
			walkExpr(*e.X)
		case hdlast.ExprTernary:
			walkExpr(*e.Cond)
			walkExpr(*e.X)
			walkExpr(*e.Y)
		case hdlast.ExprBitIndex:
			walkExpr(*e.X)
			walkExpr(*e.Index)
		case hdlast.ExprSlice:
			walkExpr(*e.X)
		case hdlast.ExprConcat:
			for _, it := range e.Items {
				walkExpr(it)
			}
		}
	}
	walkStmt = func(s hdlast.Stmt) {
		switch {
		case s.Let != nil:
			walkExpr(s.Let.Value)
		case s.Assign != nil:
			walkExpr(s.Assign.Value)
		case s.If != nil:
			walkExpr(s.If.Cond)
			for _, b := range s.If.Then {
				walkStmt(b)
			}
			for _, b := range s.If.Else {
				walkStmt(b)
			}
		case s.Match != nil:
			walkExpr(s.Match.Subject)
			for _, a := range s.Match.Arms {
				for _, b := range a.Body {
					walkStmt(b)
				}
			}
		}
	}
	for _, s := range body.Stmts {
		walkStmt(s)
	}
	return order
}
