// Package asmcore is the architecture-independent half of the assembler
// (§4.8): two-pass layout-then-emit over a patch list, a macro pre-pass, a
// streaming source abstraction, and string-escape handling. Everything
// that differs between 6502 and RV32I — mnemonics, addressing modes,
// instruction encodings, directive formats — lives behind the ISA
// interface and is supplied by internal/asmcore/mos6502 and
// internal/asmcore/rv32i.
package asmcore

import "github.com/tefla/wire-hdl/api"

// PatchContext is handed to an instruction's or directive's Emit function
// during pass 2, once every label in the program has a final address.
type PatchContext struct {
	// Addr is this instruction's own address in the final image.
	Addr uint32
	// Resolve looks up a label's (or .equ constant's) value. ok is false
	// for an undefined symbol — callers should leave the field zeroed and
	// return an *api.UndefinedSymbolError, which the assembler collects as
	// non-fatal and continues pass 2 with (§7 policy).
	Resolve func(label string) (value uint32, ok bool)
}

// EmitFunc writes an instruction's or directive's final bytes into out
// (exactly Size bytes, computed during pass 1), now that every label is
// resolvable through ctx.
type EmitFunc func(out []byte, ctx PatchContext) error

// Instruction is one real (non-pseudo) mnemonic with its raw, comma-split,
// whitespace-trimmed operand text — produced either directly by the line
// parser or by ExpandPseudo.
type Instruction struct {
	Mnemonic string
	Operands []string
	Line     int
}

// ISA is the plug-in point the two-pass core is parameterized over.
type ISA interface {
	// Encode returns the fixed size of mnemonic's encoding (determinable
	// from operand syntax alone, without any label's resolved value — see
	// DESIGN.md for how each instantiation avoids address-dependent
	// sizing) plus a closure that writes its final bytes once pass 2 knows
	// every label's address.
	Encode(mnemonic string, operands []string, line int) (size int, emit EmitFunc, err error)

	// ExpandPseudo rewrites a pseudo-instruction into one or more real
	// instructions. ok is false when mnemonic isn't a pseudo-instruction
	// for this ISA; the caller then tries Encode directly.
	ExpandPseudo(mnemonic string, operands []string, line int) (expanded []Instruction, ok bool)

	// IsDirective reports whether mnemonic is an assembler directive this
	// ISA handles itself (.byte, .ascii, ...) rather than a real or pseudo
	// instruction. The core always handles .org and .equ/= directly,
	// without ever asking the ISA.
	IsDirective(mnemonic string) bool

	// DirectiveSize returns a directive's byte size during pass 1 layout.
	DirectiveSize(directive string, operands []string, line int) (int, error)

	// EmitDirective writes a directive's final bytes during pass 2.
	EmitDirective(directive string, operands []string, out []byte, ctx PatchContext) error
}

// errIsUndefinedSymbol reports whether err is the non-fatal kind pass 2
// is required to tolerate and keep going after.
func errIsUndefinedSymbol(err error) bool {
	_, ok := err.(*api.UndefinedSymbolError)
	return ok
}
