package emit

import "github.com/tefla/wire-hdl/internal/netlist"

// emitDffPass samples every D into a dedicated local, then commits every
// local into its Q — reading all Ds before writing any Q is mandatory per
// §4.6 so a chain of DFFs sees only the previous cycle's values.
func emitDffPass(fb *funcBuilder, dffs []netlist.Dff, scratch uint32) {
	dLocals := make([]uint32, len(dffs))
	for i, d := range dffs {
		loadBit(fb, d.D)
		local := fb.addLocal()
		fb.localSet(local)
		dLocals[i] = local
	}
	for i, d := range dffs {
		fb.localGet(dLocals[i])
		storeBit(fb, d.Q, scratch)
	}
}
