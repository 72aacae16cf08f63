// Package levelize implements the Leveliser (§4.4): it orders the
// Primitive Extractor's flat NAND gate list into combinational-depth
// levels so the WASM Emitter can evaluate each level in sequence and know
// every operand of a gate in level N was already computed by level N-1.
package levelize

import (
	"sort"

	"github.com/tefla/wire-hdl/api"
	"github.com/tefla/wire-hdl/internal/netlist"
)

// Result is the Leveliser's output: gates grouped by level (ascending
// combinational depth, each level's gates sorted by ascending gate id for
// determinism — §8 invariant 1).
type Result struct {
	Levels [][]netlist.NandGate
}

// Levelize assigns each NAND gate a combinational-depth level via
// Kahn-style BFS: a gate is ready once every gate driving one of its
// operand signals has already been placed. DFF outputs and primary
// inputs (any signal with no entry in driverOf) are available before
// level 0, so a gate reading only those is ready immediately.
//
// Behavioral instance outputs are treated the same as DFF outputs: a
// behavioral module evaluates once per cycle, logically "between"
// combinational settle passes, so gates reading its outputs do not wait
// on any NAND level to resolve them.
func Levelize(gates []netlist.NandGate) (*Result, error) {
	driverOf := make(map[api.SignalId]int, len(gates)) // signal -> gate index
	for i, g := range gates {
		driverOf[g.Out] = i
	}

	indegree := make([]int, len(gates))
	dependents := make(map[int][]int, len(gates)) // gate index -> gates that read its output
	for i, g := range gates {
		for _, in := range []api.SignalId{g.In1, g.In2} {
			if drv, ok := driverOf[in]; ok {
				indegree[i]++
				dependents[drv] = append(dependents[drv], i)
			}
		}
	}

	placed := make([]bool, len(gates))
	placedCount := 0
	var levels [][]netlist.NandGate

	ready := make([]int, 0, len(gates))
	for i := range gates {
		if indegree[i] == 0 {
			ready = append(ready, i)
		}
	}

	for len(ready) > 0 {
		sort.Slice(ready, func(a, b int) bool { return gates[ready[a]].ID < gates[ready[b]].ID })

		level := make([]netlist.NandGate, len(ready))
		for i, gi := range ready {
			level[i] = gates[gi]
			placed[gi] = true
		}
		placedCount += len(level)
		levels = append(levels, level)

		var next []int
		for _, gi := range ready {
			for _, dep := range dependents[gi] {
				indegree[dep]--
				if indegree[dep] == 0 {
					next = append(next, dep)
				}
			}
		}
		ready = next
	}

	if placedCount != len(gates) {
		return nil, combinationalCycleError(gates, placed)
	}

	return &Result{Levels: levels}, nil
}

// combinationalCycleError walks the unresolved gates' dependency edges to
// produce one concrete cycle path for diagnostics.
func combinationalCycleError(gates []netlist.NandGate, placed []bool) error {
	driverOf := make(map[api.SignalId]int, len(gates))
	for i, g := range gates {
		driverOf[g.Out] = i
	}

	start := -1
	for i := range gates {
		if !placed[i] {
			start = i
			break
		}
	}

	visited := make(map[int]bool)
	var path []api.SignalId
	cur := start
	for {
		if visited[cur] {
			path = append(path, gates[cur].Out)
			break
		}
		visited[cur] = true
		path = append(path, gates[cur].Out)

		next := -1
		for _, in := range []api.SignalId{gates[cur].In1, gates[cur].In2} {
			if drv, ok := driverOf[in]; ok && !placed[drv] {
				next = drv
				break
			}
		}
		if next == -1 {
			break
		}
		cur = next
	}

	return &api.CombinationalCycleError{Path: path}
}
