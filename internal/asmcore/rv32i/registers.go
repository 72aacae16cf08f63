package rv32i

import (
	"strconv"
	"strings"
)

// abiNames maps RISC-V's calling-convention register aliases to their
// architectural x-register number. xN spellings are accepted directly by
// parseRegister without needing this table.
var abiNames = map[string]uint32{
	"ZERO": 0, "RA": 1, "SP": 2, "GP": 3, "TP": 4,
	"T0": 5, "T1": 6, "T2": 7,
	"S0": 8, "FP": 8, "S1": 9,
	"A0": 10, "A1": 11, "A2": 12, "A3": 13, "A4": 14, "A5": 15, "A6": 16, "A7": 17,
	"S2": 18, "S3": 19, "S4": 20, "S5": 21, "S6": 22, "S7": 23, "S8": 24, "S9": 25, "S10": 26, "S11": 27,
	"T3": 28, "T4": 29, "T5": 30, "T6": 31,
}

// parseRegister accepts either an ABI name (a0, sp, ra, ...) or an
// architectural xN form (x0..x31), case-insensitively.
func parseRegister(s string) (uint32, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if n, ok := abiNames[s]; ok {
		return n, true
	}
	if strings.HasPrefix(s, "X") {
		n, err := strconv.Atoi(s[1:])
		if err == nil && n >= 0 && n <= 31 {
			return uint32(n), true
		}
	}
	return 0, false
}
