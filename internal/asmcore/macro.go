package asmcore

import "strings"

// maxMacroExpansionDepth guards against a macro that (directly or through
// a chain of other macros) invokes itself; real programs never nest this
// deep, so hitting it means a cycle.
const maxMacroExpansionDepth = 32

type macroDef struct {
	params []string
	body   []string
}

// expandMacros is the macro pre-pass (§4.8): it reads every line out of
// src, collects `.macro NAME p1,p2 / ... / .endm` definitions, and
// rewrites every invocation of a defined macro into its body with
// parameters textually substituted — a full read-through, which is why
// its result is always a materialized []string regardless of what
// LineSource it was given.
func expandMacros(src LineSource) ([]string, error) {
	src.Rewind()
	lines := drain(src)

	macros := make(map[string]*macroDef)
	var withoutDefs []string
	for i := 0; i < len(lines); i++ {
		p := parseLine(lines[i])
		if p.mnemonic != ".MACRO" {
			withoutDefs = append(withoutDefs, lines[i])
			continue
		}
		if len(p.operands) == 0 {
			return nil, &parseError{"`.macro` requires a name"}
		}
		name := strings.ToUpper(p.operands[0])
		params := p.operands[1:]
		def := &macroDef{params: params}
		i++
		for i < len(lines) {
			inner := parseLine(lines[i])
			if inner.mnemonic == ".ENDM" {
				break
			}
			def.body = append(def.body, lines[i])
			i++
		}
		macros[name] = def
	}

	return expandInvocations(withoutDefs, macros, 0)
}

func expandInvocations(lines []string, macros map[string]*macroDef, depth int) ([]string, error) {
	if depth > maxMacroExpansionDepth {
		return nil, &parseError{"macro expansion exceeded maximum nesting depth (likely a recursive macro)"}
	}

	var out []string
	for _, line := range lines {
		p := parseLine(line)
		def, ok := macros[p.mnemonic]
		if !ok {
			out = append(out, line)
			continue
		}
		substituted := make([]string, len(def.body))
		for i, bodyLine := range def.body {
			substituted[i] = substituteParams(bodyLine, def.params, p.operands)
		}
		expanded, err := expandInvocations(substituted, macros, depth+1)
		if err != nil {
			return nil, err
		}
		if p.label != "" {
			out = append(out, p.label+":")
		}
		out = append(out, expanded...)
	}
	return out, nil
}

// substituteParams replaces each formal parameter name in line with its
// corresponding actual argument text, word-for-word (so a parameter named
// "X" never matches inside a longer identifier like "INDEX").
func substituteParams(line string, params, args []string) string {
	for i, param := range params {
		if i >= len(args) {
			break
		}
		line = replaceWord(line, param, args[i])
	}
	return line
}

func replaceWord(s, word, repl string) string {
	var b strings.Builder
	for i := 0; i < len(s); {
		if isWordStart(s, i) && strings.HasPrefix(s[i:], word) && !isIdentByte(byteAt(s, i+len(word))) {
			b.WriteString(repl)
			i += len(word)
			continue
		}
		b.WriteByte(s[i])
		i++
	}
	return b.String()
}

func isWordStart(s string, i int) bool {
	return !isIdentByte(byteAt(s, i-1))
}

func byteAt(s string, i int) byte {
	if i < 0 || i >= len(s) {
		return 0
	}
	return s[i]
}

func isIdentByte(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
