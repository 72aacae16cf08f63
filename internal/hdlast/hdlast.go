// Package hdlast defines the parsed-program contract the Elaborator
// consumes. The HDL lexer/parser front-end is out of scope (§1 "Explicitly
// out of scope"); callers construct Program values directly, whether by
// hand, from their own parser, or from a test fixture.
package hdlast

// Program is a module definition database: every module name the
// Elaborator may instantiate, keyed by name.
type Program struct {
	Modules map[string]*ModuleDef
}

// ModuleDef is one module's declaration: its port list plus its body,
// which is polymorphic over {Structural, Behavioral} (§9 "Polymorphism").
type ModuleDef struct {
	Name  string
	Ports []Port
	Body  ModuleBody
}

// Port is a formal parameter of a module: a name, a declared bit width, and
// a direction.
type Port struct {
	Name      string
	Width     int
	Direction Direction
}

// Direction is a port's data direction.
type Direction int

const (
	DirIn Direction = iota
	DirOut
)

// ModuleBody is the tagged variant over a module's two possible shapes.
// Exactly one of Structural or Behavioral is non-nil.
type ModuleBody struct {
	Structural *StructuralBody
	Behavioral *BehavioralBody
}

// StructuralBody contains sub-instances and explicit primitive references.
type StructuralBody struct {
	Instances  []Instance
	Primitives []PrimitiveRef
}

// Instance is one sub-module instantiation inside a structural body.
type Instance struct {
	InstanceName string
	ModuleName   string
	// Actuals maps formal port name to the expression bound to it.
	Actuals map[string]Expr
}

// PrimitiveKind names the two built-in primitives every structural body can
// reduce to (§3, §4.3): everything else (AND, OR, MUX, registers, ...) is
// built from these by the elaborator before extraction.
type PrimitiveKind int

const (
	PrimNand PrimitiveKind = iota
	PrimDff
)

// PrimitiveRef is a direct NAND or DFF reference inside a structural body.
type PrimitiveRef struct {
	Kind PrimitiveKind
	// NAND: In1, In2, Out. DFF: In1 is D, Out is Q.
	In1, In2, Out Expr
}

// BehavioralBody is a module's @behavior block: a statement sequence over
// its ports and locals.
type BehavioralBody struct {
	Stmts []Stmt
}
