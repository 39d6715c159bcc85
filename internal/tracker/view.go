package tracker

import "fmt"

// TaskView is a read-only copy of one task used by renderers.
type TaskView struct {
	Index      int
	Definition Definition
	Flags      []bool
	Completed  int
	Percent    int
}

// Summary returns the completion readout, e.g. "1/6 done (16%)".
func (v TaskView) Summary() string {
	return fmt.Sprintf("%d/%d done (%d%%)", v.Completed, len(v.Flags), v.Percent)
}

// Effort returns the effort line, e.g. "22 × 30 min = 11h 0m".
func (v TaskView) Effort() string {
	return Effort(v.Definition)
}

// Tasks returns a view of every task in display order.
func (t *Tracker) Tasks() []TaskView {
	views := make([]TaskView, len(t.tasks))
	for i, st := range t.tasks {
		done := countDone(st.flags)
		views[i] = TaskView{
			Index:      i,
			Definition: st.def,
			Flags:      append([]bool(nil), st.flags...),
			Completed:  done,
			Percent:    Percent(done, len(st.flags)),
		}
	}
	return views
}

// Totals aggregates completion across all tasks.
type Totals struct {
	Completed        int
	Units            int
	Percent          int
	RemainingMinutes int
}

// Overall returns completion across every task plus the estimated
// minutes left for units not yet done.
func (t *Tracker) Overall() Totals {
	var tot Totals
	for _, st := range t.tasks {
		done := countDone(st.flags)
		tot.Completed += done
		tot.Units += len(st.flags)
		if st.def.DurationMinutes > 0 {
			tot.RemainingMinutes += (len(st.flags) - done) * st.def.DurationMinutes
		}
	}
	tot.Percent = Percent(tot.Completed, tot.Units)
	return tot
}

// Percent returns floor(100 × completed / units), clamped to [0, 100].
// Zero units yield 0.
func Percent(completed, units int) int {
	if units <= 0 || completed <= 0 {
		return 0
	}
	if completed >= units {
		return 100
	}
	return completed * 100 / units
}

// FormatMinutes renders minutes as hours and minutes, e.g. 660 -> "11h 0m".
func FormatMinutes(minutes int) string {
	if minutes < 0 {
		minutes = 0
	}
	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}

// Effort returns "<units> × <minutes> min = <h>h <m>m" for a definition.
func Effort(d Definition) string {
	return fmt.Sprintf("%d × %d min = %s", d.Units, d.DurationMinutes, FormatMinutes(d.TotalMinutes()))
}
