// Package signaltable implements the Signal Table (§4.1): dense id
// allocation, name interning, and the two sentinel constant signals every
// circuit carries.
package signaltable

import (
	"fmt"

	"github.com/tefla/wire-hdl/api"
)

// Table allocates dense SignalIds in declaration order and tracks names and
// widths. The zero value is not usable; use New.
type Table struct {
	byName map[string]api.SignalId
	rows   []api.Signal
	frozen bool
}

// New returns a Table pre-populated with the two sentinel signals
// const_0 (id 0) and const_1 (id 1), per §3 invariant 5.
func New() *Table {
	t := &Table{byName: map[string]api.SignalId{}}
	zero := t.intern("const_0", 1)
	one := t.intern("const_1", 1)
	if zero != api.ConstZeroSignal || one != api.ConstOneSignal {
		panic("signaltable: sentinel ids not allocated first")
	}
	return t
}

// Intern returns the existing id for name, or allocates the next dense id.
func (t *Table) Intern(name string, width uint8) (api.SignalId, error) {
	if t.frozen {
		return 0, api.ErrTableFrozen
	}
	return t.intern(name, width), nil
}

func (t *Table) intern(name string, width uint8) api.SignalId {
	if id, ok := t.byName[name]; ok {
		return id
	}
	id := api.SignalId(len(t.rows))
	t.rows = append(t.rows, api.Signal{ID: id, Name: name, Width: width})
	t.byName[name] = id
	return id
}

// AllocAnonymous allocates a fresh internal net with a hint-derived name
// (disambiguated by id so it never collides), for signals the Elaborator
// creates that have no HDL-level name of their own.
func (t *Table) AllocAnonymous(hint string) (api.SignalId, error) {
	if t.frozen {
		return 0, api.ErrTableFrozen
	}
	id := api.SignalId(len(t.rows))
	name := fmt.Sprintf("%s$%d", hint, id)
	t.rows = append(t.rows, api.Signal{ID: id, Name: name, Width: 1})
	t.byName[name] = id
	return id, nil
}

// Constant returns the canonical id for the given constant bit.
func (t *Table) Constant(bit int) api.SignalId {
	if bit == 0 {
		return api.ConstZeroSignal
	}
	return api.ConstOneSignal
}

// Lookup returns the id already bound to name, if any.
func (t *Table) Lookup(name string) (api.SignalId, bool) {
	id, ok := t.byName[name]
	return id, ok
}

// Len returns the number of signals allocated so far.
func (t *Table) Len() int {
	return len(t.rows)
}

// Finalize freezes the table and returns its contents as a dense slice
// ordered by id. Any further Intern/AllocAnonymous call returns
// ErrTableFrozen.
func (t *Table) Finalize() []api.Signal {
	t.frozen = true
	out := make([]api.Signal, len(t.rows))
	copy(out, t.rows)
	return out
}
