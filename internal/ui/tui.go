// Package ui provides the interactive terminal interface.
package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nibzard/tracker-go/internal/app"
	"github.com/nibzard/tracker-go/internal/tracker"
)

// TUIOption configures the TUI behavior.
type TUIOption func(*tuiConfig)

// tuiConfig holds TUI configuration.
type tuiConfig struct {
	mouse bool
	input io.Reader
}

// WithMouse enables or disables mouse support.
func WithMouse(enabled bool) TUIOption {
	return func(c *tuiConfig) {
		c.mouse = enabled
	}
}

// WithInput reads terminal input from r instead of stdin.
func WithInput(r io.Reader) TUIOption {
	return func(c *tuiConfig) {
		c.input = r
	}
}

// RunTUI starts the checklist TUI over session.
func RunTUI(ctx context.Context, session *app.Session, opts ...TUIOption) error {
	c := &tuiConfig{mouse: true}
	for _, opt := range opts {
		opt(c)
	}

	if !IsTTY(os.Stdout) {
		return fmt.Errorf("tui requires a TTY")
	}

	programOpts := []tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}
	if c.mouse {
		programOpts = append(programOpts, tea.WithMouseCellMotion())
	}
	if c.input != nil {
		programOpts = append(programOpts, tea.WithInput(c.input))
	}

	program := tea.NewProgram(newTUIModel(session), programOpts...)
	_, err := program.Run()
	return err
}

type tuiModel struct {
	session    *app.Session
	width      int
	height     int
	cursorTask int
	cursorUnit int
	notice     app.Notice
	showHelp   bool
	scroll     int
	layout     layout
}

func newTUIModel(session *app.Session) *tuiModel {
	return &tuiModel{
		session: session,
		notice:  session.StartupNotice(),
	}
}

func (m *tuiModel) Init() tea.Cmd {
	return nil
}

func (m *tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.MouseMsg:
		m.handleMouse(msg)
		return m, nil
	}
	return m, nil
}

func (m *tuiModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "?", "f1":
		m.showHelp = !m.showHelp
	case "esc":
		m.showHelp = false
	case "up", "k":
		m.moveTask(-1)
	case "down", "j":
		m.moveTask(1)
	case "left", "h":
		m.moveUnit(-1)
	case "right", "l":
		m.moveUnit(1)
	case "home":
		m.cursorUnit = 0
	case "end":
		m.cursorUnit = m.unitsAt(m.cursorTask) - 1
		if m.cursorUnit < 0 {
			m.cursorUnit = 0
		}
	case " ", "enter", "x":
		m.toggle(m.cursorTask, m.cursorUnit)
	case "s", "ctrl+s":
		m.notice = m.session.Save()
	case "r":
		m.notice = m.session.Reset()
	}
	return m, nil
}

func (m *tuiModel) handleMouse(msg tea.MouseMsg) {
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return
	}
	hit, ok := m.layout.hit(msg.X, msg.Y)
	if !ok {
		return
	}
	switch hit.kind {
	case zoneCell:
		m.cursorTask, m.cursorUnit = hit.task, hit.unit
		m.toggle(hit.task, hit.unit)
	case zoneSave:
		m.notice = m.session.Save()
	case zoneReset:
		m.notice = m.session.Reset()
	}
}

func (m *tuiModel) toggle(task, unit int) {
	if err := m.session.ToggleAt(task, unit); err != nil {
		return
	}
	// A toggle supersedes the last action's message.
	m.notice = app.Notice{}
}

func (m *tuiModel) unitsAt(task int) int {
	tasks := m.session.Tasks()
	if task < 0 || task >= len(tasks) {
		return 0
	}
	return len(tasks[task].Flags)
}

func (m *tuiModel) moveTask(delta int) {
	n := len(m.session.Tasks())
	if n == 0 {
		return
	}
	m.cursorTask = clamp(m.cursorTask+delta, 0, n-1)
	if units := m.unitsAt(m.cursorTask); m.cursorUnit >= units {
		m.cursorUnit = clamp(units-1, 0, units)
	}
}

func (m *tuiModel) moveUnit(delta int) {
	units := m.unitsAt(m.cursorTask)
	if units == 0 {
		return
	}
	m.cursorUnit = clamp(m.cursorUnit+delta, 0, units-1)
}

func (m *tuiModel) View() string {
	if m.showHelp {
		var b strings.Builder
		writeTitle(&b)
		writeHelp(&b)
		m.layout = layout{}
		return b.String()
	}
	view, l := m.render()
	m.layout = l
	return view
}

// render draws the full screen and records where each clickable element
// landed. The title and the action/status footer stay fixed; task blocks
// scroll so the cursor's task stays on screen.
func (m *tuiModel) render() (string, layout) {
	header := []string{titleStyle.Render(appTitle), taglineStyle.Render(appTagline), ""}
	body, bodyZones, focus := m.renderTasks()
	footer, footerZones := m.renderFooter()

	window := len(body)
	if m.height > 0 && len(header)+len(body)+len(footer) > m.height {
		window = m.height - len(header) - len(footer)
		if window < 1 {
			header = nil
			window = max(1, m.height-len(footer))
		}
		window = min(window, len(body))
		m.scrollTo(focus, window, len(body))
	} else {
		m.scroll = 0
	}

	lines := make([]string, 0, len(header)+window+len(footer))
	lines = append(lines, header...)
	lines = append(lines, body[m.scroll:m.scroll+window]...)
	lines = append(lines, footer...)

	var zones []zone
	for _, z := range bodyZones {
		if z.y < m.scroll || z.y >= m.scroll+window {
			continue
		}
		z.y = len(header) + z.y - m.scroll
		zones = append(zones, z)
	}
	for _, z := range footerZones {
		z.y += len(header) + window
		zones = append(zones, z)
	}
	return strings.Join(lines, "\n"), layout{zones: zones}
}

// span is an inclusive range of body lines plus the cursor's cell row.
type span struct {
	top       int
	bottom    int
	cursorRow int
}

// renderTasks draws every task block. Zone y values are body line indexes.
// The returned span covers the cursor task's block.
func (m *tuiModel) renderTasks() ([]string, []zone, span) {
	var lines []string
	var zones []zone
	var focus span

	perRow := cellsPerRow(m.width)
	for _, task := range m.session.Tasks() {
		top := len(lines)
		cursorRow := top
		lines = append(lines, taskNameStyle.Render(task.Definition.Name))
		lines = append(lines, indent+effortStyle.Render("Effort: "+task.Effort()))

		if len(task.Flags) == 0 {
			lines = append(lines, indent+mutedStyle.Render("(no units)"))
		}
		for start := 0; start < len(task.Flags); start += perRow {
			end := min(start+perRow, len(task.Flags))
			var row strings.Builder
			row.WriteString(indent)
			for j := start; j < end; j++ {
				if j > start {
					row.WriteString(" ")
				}
				zones = append(zones, zone{
					kind: zoneCell, task: task.Index, unit: j,
					x: len(indent) + (j-start)*(cellWidth+1), y: len(lines), w: cellWidth,
				})
				row.WriteString(m.renderCell(task, j))
			}
			if m.cursorUnit >= start && m.cursorUnit < end {
				cursorRow = len(lines)
			}
			lines = append(lines, row.String())
		}

		lines = append(lines, indent+progressBar(task.Percent, barWidth(m.width))+" "+task.Summary())
		lines = append(lines, "")

		if task.Index == m.cursorTask {
			focus = span{top: top, bottom: len(lines) - 1, cursorRow: cursorRow}
		}
	}
	return lines, zones, focus
}

// renderFooter draws the action buttons, status line and help line.
// Zone y values are footer line indexes.
func (m *tuiModel) renderFooter() ([]string, []zone) {
	lines := []string{sectionStyle.Render("Actions")}
	saveX := len(indent)
	resetX := saveX + len(saveLabel) + 2
	zones := []zone{
		{kind: zoneSave, x: saveX, y: len(lines), w: len(saveLabel)},
		{kind: zoneReset, x: resetX, y: len(lines), w: len(resetLabel)},
	}
	lines = append(lines, indent+buttonStyle.Render(saveLabel)+"  "+buttonStyle.Render(resetLabel), "")

	switch {
	case !m.notice.IsZero():
		lines = append(lines, noticeStyle(m.notice.Kind).Render(noticeIcon(m.notice.Kind)+" "+m.notice.Text))
	case m.session.Dirty():
		lines = append(lines, mutedStyle.Render("Unsaved changes"))
	default:
		lines = append(lines, "")
	}

	total := m.session.Overall()
	lines = append(lines,
		mutedStyle.Render(fmt.Sprintf("Overall: %d/%d units (%d%%), %s remaining | %s",
			total.Completed, total.Units, total.Percent,
			tracker.FormatMinutes(total.RemainingMinutes), m.session.Path())),
		mutedStyle.Render("click or space to toggle | s save | r reset | ? help | q quit"),
	)
	return lines, zones
}

// scrollTo moves the scroll position the least needed to show focus in a
// window of the given height. When the whole block does not fit, the
// cursor's cell row is kept visible instead.
func (m *tuiModel) scrollTo(focus span, window, total int) {
	top, bottom := focus.top, focus.bottom
	if bottom-top+1 > window {
		top = max(top, focus.cursorRow-window+1)
		bottom = top + window - 1
	}
	if bottom >= m.scroll+window {
		m.scroll = bottom - window + 1
	}
	if top < m.scroll {
		m.scroll = top
	}
	m.scroll = clamp(m.scroll, 0, total-window)
}

func (m *tuiModel) renderCell(task tracker.TaskView, unit int) string {
	label := cellEmpty
	style := cellEmptyStyle
	if task.Flags[unit] {
		label = cellDone
		style = cellDoneStyle
	}
	if task.Index == m.cursorTask && unit == m.cursorUnit {
		style = style.Reverse(true)
	}
	return style.Render(label)
}

func cellsPerRow(width int) int {
	if width <= 0 {
		return 20
	}
	avail := width - len(indent)
	n := (avail + 1) / (cellWidth + 1)
	if n < 1 {
		return 1
	}
	return n
}

func barWidth(width int) int {
	if width <= 0 {
		return 20
	}
	return clamp(width/3, 10, 40)
}

func progressBar(percent, width int) string {
	filled := clamp(percent*width/100, 0, width)
	return barFilledStyle.Render(strings.Repeat("█", filled)) +
		barEmptyStyle.Render(strings.Repeat("░", width-filled))
}

func writeTitle(b *strings.Builder) {
	b.WriteString(appTitle + "\n")
	b.WriteString(strings.Repeat("=", len(appTitle)) + "\n\n")
}

func writeHelp(b *strings.Builder) {
	b.WriteString("Keyboard Shortcuts\n\n")
	b.WriteString("  q, ctrl+c       Quit\n")
	b.WriteString("  arrows, hjkl    Move between units and tasks\n")
	b.WriteString("  home, end       First or last unit of the task\n")
	b.WriteString("  space, enter    Toggle the selected unit\n")
	b.WriteString("  s, ctrl+s       Save progress\n")
	b.WriteString("  r               Reset progress (deletes the saved file)\n")
	b.WriteString("  ?, F1           Toggle this help screen\n\n")
	b.WriteString("Mouse\n\n")
	b.WriteString("  click a cell    Toggle that unit\n")
	b.WriteString("  click a button  Save or reset\n\n")
	b.WriteString("Press ? or esc to return\n")
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// IsTTY returns true if w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
