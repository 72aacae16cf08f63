package hdlast

// Stmt is the tagged union of behavioral statement kinds (§3 "Behavioral IR").
// Exactly one field is non-nil.
type Stmt struct {
	Let    *LetStmt
	Assign *AssignStmt
	If     *IfStmt
	Match  *MatchStmt
}

// LetStmt declares a new local of the given width, initialised by Value.
type LetStmt struct {
	Name  string
	Width int
	Value Expr
}

// AssignStmt writes Value to Target, which may be a whole name, a bit
// index, or a constant slice (§3 "Lhs").
type AssignStmt struct {
	Target LhsKind
	Name   string
	Index  Expr // BitIndex target only
	Hi, Lo int  // Slice target only
	Value  Expr
}

// LhsKind tags the three assignable-target shapes.
type LhsKind int

const (
	LhsName LhsKind = iota
	LhsBitIndex
	LhsSlice
)

// IfStmt is a conditional with an optional else block.
type IfStmt struct {
	Cond Expr
	Then []Stmt
	Else []Stmt // nil if no else
}

// MatchStmt tests Subject against each Arm's pattern in source order; the
// first match wins (§4.5).
type MatchStmt struct {
	Subject Expr
	Arms    []Arm
}

// Arm pairs one pattern with the block to run when it matches.
type Arm struct {
	Pattern Pattern
	Body    []Stmt
}

// PatternKind tags the three match-pattern shapes (§3 "Pattern").
type PatternKind int

const (
	PatNumber PatternKind = iota
	PatRange
	PatWildcard
)

// Pattern is a match arm's test: Number(N), Range(Lo,Hi), or Wildcard.
type Pattern struct {
	Kind   PatternKind
	Number int64
	Lo, Hi int64
}

// ExprKind tags every expression shape the behavioral language supports
// (§3 "Expressions").
type ExprKind int

const (
	ExprLiteral ExprKind = iota
	ExprIdent
	ExprBinary
	ExprUnary
	ExprTernary
	ExprBitIndex
	ExprSlice
	ExprConcat
	ExprCall
)

// BinOp enumerates the binary operators.
type BinOp int

const (
	OpAdd BinOp = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpAnd
	OpOr
	OpXor
	OpShl
	OpShr
	OpEq
	OpNe
	OpLt
	OpGt
	OpLe
	OpGe
)

// UnOp enumerates the unary operators: bitwise-not and logical-not.
type UnOp int

const (
	OpBitNot UnOp = iota
	OpLogNot
)

// Expr is the tagged union of expression node kinds. Only the fields
// relevant to Kind are populated.
type Expr struct {
	Kind    ExprKind
	Literal int64
	Ident   string

	BinOp BinOp
	UnOp  UnOp
	// X, Y are the operands: unary/bit-index/slice use X only (Y unused for
	// unary; slice uses Hi/Lo instead of Y); binary/ternary use both roles
	// below; concat uses Items.
	X, Y *Expr

	// Ternary: Cond ? X : Y.
	Cond *Expr

	// BitIndex: X[Index].
	Index *Expr

	// Slice: X[Hi:Lo], both inclusive, constant.
	Hi, Lo int

	// Concat: {Items[0], Items[1], ...} MSB-first source order.
	Items []Expr

	// Call: cross-module call Module(Args...), optionally projecting Field
	// out of a multi-output result.
	Module string
	Args   []Expr
	Field  string
}
