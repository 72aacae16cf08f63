package asmcore

import (
	"github.com/tefla/wire-hdl/api"
)

// AssembleResult is the output of Assemble: the final byte image, the
// resolved symbol table, and every non-fatal diagnostic pass 2 tolerated
// and kept going past (§7 policy: UndefinedSymbol and DuplicateLabel
// accumulate; everything else is fatal and returned as Assemble's error
// instead of appearing here).
type AssembleResult struct {
	Bytes  []byte
	Labels map[string]uint32
	Errors []error
}

type nodeKind int

const (
	nodeInstruction nodeKind = iota
	nodeDirective
)

// node is one real instruction or directive after macro expansion and
// pseudo-instruction expansion: its address and size are fixed by the end
// of pass 1, but an instruction's bytes aren't written until pass 2, once
// every label is known.
type node struct {
	kind     nodeKind
	line     int
	mnemonic string
	operands []string
	addr     uint32
	size     int
	emit     EmitFunc // set only for nodeInstruction
}

// Assemble runs the full pipeline: macro pre-pass, per-line parsing and
// pseudo-instruction expansion, pass 1 layout (assigning every label and
// node its address), pass 2 emit-and-patch. A fatal error (per api's error
// kinds) aborts immediately; non-fatal errors (UndefinedSymbolError,
// DuplicateLabelError) are collected into the result and pass 2 continues.
func Assemble(isa ISA, src LineSource, opts *AssembleOptions) (*AssembleResult, error) {
	if opts == nil {
		opts = NewAssembleOptions()
	}

	lines, err := expandMacros(src)
	if err != nil {
		return nil, err
	}

	labels := map[string]uint32{}
	var nodes []*node
	var diagnostics []error

	addr := opts.origin
	for lineNo, raw := range lines {
		p := parseLine(raw)
		if p.label != "" {
			if _, dup := labels[p.label]; dup {
				diagnostics = append(diagnostics, &api.DuplicateLabelError{Name: p.label, Line: lineNo + 1})
			} else {
				labels[p.label] = addr
			}
		}
		if p.mnemonic == "" {
			continue
		}

		switch p.mnemonic {
		case ".ORG":
			v, ok := literalOperand(p.operands)
			if !ok {
				return nil, &api.SyntaxError{Line: lineNo + 1, Message: ".org requires one numeric operand", Source: raw, Column: -1}
			}
			addr = uint32(v)
			continue
		case ".EQU":
			if len(p.operands) != 1 {
				return nil, &api.SyntaxError{Line: lineNo + 1, Message: ".equ requires one value operand", Source: raw, Column: -1}
			}
			v, ok := ParseNumber(p.operands[0])
			if !ok {
				return nil, &api.SyntaxError{Line: lineNo + 1, Message: "invalid .equ value", Source: raw, Column: -1}
			}
			if p.label == "" {
				return nil, &api.SyntaxError{Line: lineNo + 1, Message: ".equ requires a label", Source: raw, Column: -1}
			}
			labels[p.label] = uint32(v)
			continue
		}

		if expanded, ok := isa.ExpandPseudo(p.mnemonic, p.operands, lineNo+1); ok {
			for _, inst := range expanded {
				n, err := layoutInstruction(isa, inst.Mnemonic, inst.Operands, inst.Line, addr)
				if err != nil {
					return nil, err
				}
				nodes = append(nodes, n)
				addr += uint32(n.size)
			}
			continue
		}

		if isa.IsDirective(p.mnemonic) {
			size, err := isa.DirectiveSize(p.mnemonic, p.operands, lineNo+1)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, &node{
				kind: nodeDirective, line: lineNo + 1,
				mnemonic: p.mnemonic, operands: p.operands,
				addr: addr, size: size,
			})
			addr += uint32(size)
			continue
		}

		n, err := layoutInstruction(isa, p.mnemonic, p.operands, lineNo+1, addr)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
		addr += uint32(n.size)
	}

	// The output image spans from the lowest address any node actually
	// occupies (which .org may have moved away from opts.origin, the
	// common "code starts at .org $8000" shape) up to the final running
	// address. A program with no nodes produces an empty image.
	base := opts.origin
	if len(nodes) > 0 {
		base = nodes[0].addr
		for _, n := range nodes {
			if n.addr < base {
				base = n.addr
			}
		}
	}
	total := addr - base
	out := make([]byte, total)

	resolve := func(name string) (uint32, bool) {
		v, ok := labels[name]
		return v, ok
	}

	for _, n := range nodes {
		slice := out[n.addr-base : n.addr-base+uint32(n.size)]
		ctx := PatchContext{Addr: n.addr, Resolve: resolve}

		var emitErr error
		if n.kind == nodeInstruction {
			emitErr = n.emit(slice, ctx)
		} else {
			emitErr = isa.EmitDirective(n.mnemonic, n.operands, slice, ctx)
		}
		if emitErr == nil {
			continue
		}
		if errIsUndefinedSymbol(emitErr) {
			diagnostics = append(diagnostics, emitErr)
			continue
		}
		return nil, emitErr
	}

	return &AssembleResult{Bytes: out, Labels: labels, Errors: diagnostics}, nil
}

func layoutInstruction(isa ISA, mnemonic string, operands []string, line int, addr uint32) (*node, error) {
	size, emit, err := isa.Encode(mnemonic, operands, line)
	if err != nil {
		return nil, err
	}
	return &node{
		kind: nodeInstruction, line: line,
		mnemonic: mnemonic, operands: operands,
		addr: addr, size: size, emit: emit,
	}, nil
}

func literalOperand(operands []string) (int64, bool) {
	if len(operands) != 1 {
		return 0, false
	}
	return ParseNumber(operands[0])
}
