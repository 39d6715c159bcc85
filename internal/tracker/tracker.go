// Package tracker holds the task table and per-unit completion state.
package tracker

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownTask is returned when a task name is not in the table.
	ErrUnknownTask = errors.New("unknown task")
	// ErrUnitOutOfRange is returned when a unit index is outside [0, units).
	ErrUnitOutOfRange = errors.New("unit out of range")
)

// Definition describes one task: a name, how many units it has, and the
// estimated minutes per unit.
type Definition struct {
	Name            string `toml:"name" json:"name"`
	Units           int    `toml:"units" json:"units"`
	DurationMinutes int    `toml:"duration_minutes" json:"duration_minutes"`
}

// TotalMinutes returns units × minutes per unit.
func (d Definition) TotalMinutes() int {
	if d.Units <= 0 || d.DurationMinutes <= 0 {
		return 0
	}
	return d.Units * d.DurationMinutes
}

// DefaultDefinitions returns the built-in task table.
func DefaultDefinitions() []Definition {
	return []Definition{
		{Name: "Pyspark Tutorials", Units: 15, DurationMinutes: 45},
		{Name: "Resume", Units: 6, DurationMinutes: 30},
		{Name: "SQL with Baraa", Units: 22, DurationMinutes: 30},
	}
}

type taskState struct {
	def   Definition
	flags []bool
}

// Tracker owns the completion flags of every configured task.
// It is not safe for concurrent use.
type Tracker struct {
	tasks   []*taskState
	byName  map[string]*taskState
	dropped []string
	unnamed int
}

// New builds a tracker from the task table. Flags for each task are taken
// from saved when present and reconciled to the configured unit count;
// otherwise they start all false.
func New(defs []Definition, saved map[string][]bool) *Tracker {
	t := &Tracker{
		tasks:  make([]*taskState, 0, len(defs)),
		byName: make(map[string]*taskState, len(defs)),
	}
	for _, def := range defs {
		if def.Name == "" {
			// An empty key cannot be persisted.
			t.unnamed++
			continue
		}
		if _, exists := t.byName[def.Name]; exists {
			t.dropped = append(t.dropped, def.Name)
			continue
		}
		if def.Units < 0 {
			def.Units = 0
		}
		st := &taskState{
			def:   def,
			flags: Reconcile(saved[def.Name], def.Units),
		}
		t.tasks = append(t.tasks, st)
		t.byName[def.Name] = st
	}
	return t
}

// Reconcile returns a copy of flags truncated or padded with false so that
// its length equals units.
func Reconcile(flags []bool, units int) []bool {
	if units < 0 {
		units = 0
	}
	out := make([]bool, units)
	copy(out, flags)
	return out
}

// Dropped returns the names of duplicate definitions that were ignored.
func (t *Tracker) Dropped() []string {
	return append([]string(nil), t.dropped...)
}

// Unnamed returns how many definitions were ignored for having no name.
func (t *Tracker) Unnamed() int {
	return t.unnamed
}

// Len returns the number of tasks.
func (t *Tracker) Len() int {
	return len(t.tasks)
}

// Definitions returns the task table in display order.
func (t *Tracker) Definitions() []Definition {
	defs := make([]Definition, len(t.tasks))
	for i, st := range t.tasks {
		defs[i] = st.def
	}
	return defs
}

// Flags returns a copy of the flags for the named task.
func (t *Tracker) Flags(name string) ([]bool, error) {
	st, ok := t.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTask, name)
	}
	return append([]bool(nil), st.flags...), nil
}

// Toggle flips unit i of the named task. No other flag changes.
func (t *Tracker) Toggle(name string, i int) error {
	st, ok := t.byName[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownTask, name)
	}
	if i < 0 || i >= len(st.flags) {
		return fmt.Errorf("%w: %s has %d units, got %d", ErrUnitOutOfRange, name, len(st.flags), i)
	}
	st.flags[i] = !st.flags[i]
	return nil
}

// ToggleAt flips unit i of the task at position idx in display order.
func (t *Tracker) ToggleAt(idx, i int) error {
	if idx < 0 || idx >= len(t.tasks) {
		return fmt.Errorf("%w: index %d", ErrUnknownTask, idx)
	}
	return t.Toggle(t.tasks[idx].def.Name, i)
}

// Completed returns how many units of the named task are done.
func (t *Tracker) Completed(name string) int {
	st, ok := t.byName[name]
	if !ok {
		return 0
	}
	return countDone(st.flags)
}

// Percent returns floor(100 × completed / units) for the named task.
func (t *Tracker) Percent(name string) int {
	st, ok := t.byName[name]
	if !ok {
		return 0
	}
	return Percent(countDone(st.flags), len(st.flags))
}

// Reset sets every flag of every task to false.
func (t *Tracker) Reset() {
	for _, st := range t.tasks {
		for i := range st.flags {
			st.flags[i] = false
		}
	}
}

// Snapshot returns a deep copy of all flags keyed by task name.
func (t *Tracker) Snapshot() map[string][]bool {
	out := make(map[string][]bool, len(t.tasks))
	for _, st := range t.tasks {
		out[st.def.Name] = append([]bool(nil), st.flags...)
	}
	return out
}

// Equal reports whether the tracker flags match rec exactly for every task.
func (t *Tracker) Equal(rec map[string][]bool) bool {
	for _, st := range t.tasks {
		other := Reconcile(rec[st.def.Name], st.def.Units)
		for i, v := range st.flags {
			if other[i] != v {
				return false
			}
		}
	}
	return true
}

func countDone(flags []bool) int {
	n := 0
	for _, v := range flags {
		if v {
			n++
		}
	}
	return n
}
