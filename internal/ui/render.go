package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/nibzard/tracker-go/internal/tracker"
)

// Render writes a plain-text snapshot of every task to w.
func Render(w io.Writer, tasks []tracker.TaskView, total tracker.Totals) error {
	var b strings.Builder
	writeTitle(&b)
	for _, task := range tasks {
		fmt.Fprintf(&b, "%d. %s\n", task.Index+1, task.Definition.Name)
		fmt.Fprintf(&b, "%sEffort: %s\n", indent, task.Effort())
		cells := make([]string, len(task.Flags))
		for i, done := range task.Flags {
			if done {
				cells[i] = cellDone
			} else {
				cells[i] = cellEmpty
			}
		}
		if len(cells) == 0 {
			fmt.Fprintf(&b, "%s(no units)\n", indent)
		} else {
			fmt.Fprintf(&b, "%s%s\n", indent, strings.Join(cells, " "))
		}
		fmt.Fprintf(&b, "%s%s\n\n", indent, task.Summary())
	}
	fmt.Fprintf(&b, "Overall: %d/%d units (%d%%), %s remaining\n",
		total.Completed, total.Units, total.Percent, tracker.FormatMinutes(total.RemainingMinutes))

	_, err := io.WriteString(w, b.String())
	return err
}
