package asmcore

import "strconv"

// ParseNumber parses a literal in any of the forms this assembler's two
// ISAs accept: decimal ("42"), 6502-style hex ("$2a"), RV32I/C-style hex
// ("0x2a"), and binary ("%00101010" or "0b00101010"). It does not accept
// a leading '#' (immediate-mode marker) or '$'-as-register — callers
// strip ISA-specific punctuation before calling this.
func ParseNumber(s string) (int64, bool) {
	switch {
	case len(s) >= 2 && s[0] == '$':
		v, err := strconv.ParseInt(s[1:], 16, 64)
		return v, err == nil
	case len(s) >= 2 && s[0] == '%':
		v, err := strconv.ParseInt(s[1:], 2, 64)
		return v, err == nil
	case len(s) >= 2 && (s[:2] == "0x" || s[:2] == "0X"):
		v, err := strconv.ParseInt(s[2:], 16, 64)
		return v, err == nil
	case len(s) >= 2 && (s[:2] == "0b" || s[:2] == "0B"):
		v, err := strconv.ParseInt(s[2:], 2, 64)
		return v, err == nil
	default:
		v, err := strconv.ParseInt(s, 10, 64)
		return v, err == nil
	}
}
