package ui

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nibzard/tracker-go/internal/app"
	"github.com/nibzard/tracker-go/internal/progress"
	"github.com/nibzard/tracker-go/internal/tracker"
)

func newTestModel(t *testing.T) (*tuiModel, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "progress.json")
	defs := []tracker.Definition{
		{Name: "Alpha", Units: 3, DurationMinutes: 10},
		{Name: "Beta", Units: 10, DurationMinutes: 30},
	}
	m := newTUIModel(app.New(defs, progress.NewStore(path, nil), nil))
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 60})
	return m, path
}

func key(s string) tea.KeyMsg {
	switch s {
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "end":
		return tea.KeyMsg{Type: tea.KeyEnd}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func click(x, y int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}
}

// lineIndex returns the index of the first view line containing s.
func lineIndex(t *testing.T, view, s string) int {
	t.Helper()
	for i, line := range strings.Split(view, "\n") {
		if strings.Contains(line, s) {
			return i
		}
	}
	t.Fatalf("%q not found in view:\n%s", s, view)
	return -1
}

func TestViewShowsTasks(t *testing.T) {
	m, _ := newTestModel(t)
	view := m.View()

	for _, want := range []string{
		appTitle,
		"Alpha",
		"Effort: 3 × 10 min = 0h 30m",
		"Beta",
		"0/10 done (0%)",
		saveLabel,
		resetLabel,
		"Overall: 0/13 units (0%)",
	} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
	if strings.Contains(view, cellDone) {
		t.Error("fresh view should not contain completed cells")
	}
}

func TestKeyboardToggleAndSave(t *testing.T) {
	m, path := newTestModel(t)

	m.Update(key("down"))
	m.Update(key("right"))
	m.Update(key(" "))
	if got := m.session.Snapshot()["Beta"][1]; !got {
		t.Fatal("space should toggle Beta unit 2")
	}
	if !strings.Contains(m.View(), "Unsaved changes") {
		t.Error("expected unsaved changes indicator")
	}

	m.Update(key("s"))
	if m.notice.Text != app.MsgSaved {
		t.Errorf("notice after save: got %+v", m.notice)
	}
	if !strings.Contains(m.View(), app.MsgSaved) {
		t.Error("view should show the save message")
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("progress file not written: %v", err)
	}

	m.Update(key("r"))
	if m.notice.Text != app.MsgReset {
		t.Errorf("notice after reset: got %+v", m.notice)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("progress file should be removed: %v", err)
	}
}

func TestToggleClearsNotice(t *testing.T) {
	m, _ := newTestModel(t)
	m.Update(key("s"))
	m.Update(key("enter"))
	if !m.notice.IsZero() {
		t.Errorf("toggle should clear notice, got %+v", m.notice)
	}
}

func TestCursorStaysInRange(t *testing.T) {
	m, _ := newTestModel(t)

	m.Update(key("left"))
	if m.cursorUnit != 0 {
		t.Errorf("cursorUnit: got %d, want 0", m.cursorUnit)
	}

	m.Update(key("down"))
	m.Update(key("end"))
	if m.cursorTask != 1 || m.cursorUnit != 9 {
		t.Fatalf("cursor: got (%d,%d), want (1,9)", m.cursorTask, m.cursorUnit)
	}

	// Alpha has only three units.
	m.Update(key("k"))
	if m.cursorTask != 0 || m.cursorUnit != 2 {
		t.Errorf("cursor after up: got (%d,%d), want (0,2)", m.cursorTask, m.cursorUnit)
	}

	m.Update(key("k"))
	if m.cursorTask != 0 {
		t.Errorf("cursorTask: got %d, want 0", m.cursorTask)
	}
}

func TestMouseClickTogglesCell(t *testing.T) {
	m, _ := newTestModel(t)
	view := m.View()

	row := lineIndex(t, view, "Effort: 10 × 30 min") + 1
	x := len(indent) + 3*(cellWidth+1) + 1

	m.Update(click(x, row))
	want := []bool{false, false, false, true, false, false, false, false, false, false}
	if got := m.session.Snapshot()["Beta"]; !reflect.DeepEqual(got, want) {
		t.Fatalf("Beta after click: got %v, want %v", got, want)
	}
	if m.cursorTask != 1 || m.cursorUnit != 3 {
		t.Errorf("click should move cursor, got (%d,%d)", m.cursorTask, m.cursorUnit)
	}

	// The gap between cells is not clickable.
	m.View()
	m.Update(click(len(indent)+cellWidth, row))
	if got := m.session.Snapshot()["Beta"][0]; got {
		t.Error("click on gap toggled a cell")
	}
}

func TestMouseReleaseIgnored(t *testing.T) {
	m, _ := newTestModel(t)
	view := m.View()
	row := lineIndex(t, view, "Effort: 3 × 10 min") + 1

	m.Update(tea.MouseMsg{X: len(indent), Y: row, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})
	if m.session.Dirty() {
		t.Error("mouse release should not toggle")
	}
}

func TestMouseClickButtons(t *testing.T) {
	m, path := newTestModel(t)
	_ = m.session.ToggleAt(0, 0)
	view := m.View()
	row := lineIndex(t, view, saveLabel)

	m.Update(click(len(indent)+1, row))
	if m.notice.Text != app.MsgSaved {
		t.Fatalf("save click: got %+v", m.notice)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("progress file not written: %v", err)
	}

	m.View()
	resetX := strings.Index(strings.Split(view, "\n")[row], resetLabel)
	m.Update(click(resetX, row))
	if m.notice.Text != app.MsgReset {
		t.Fatalf("reset click: got %+v", m.notice)
	}
	if m.session.Overall().Completed != 0 {
		t.Error("reset click should clear all units")
	}
}

func TestCellsWrapToWidth(t *testing.T) {
	m, _ := newTestModel(t)
	m.Update(tea.WindowSizeMsg{Width: 18, Height: 60})
	view := m.View()

	// 18 columns fit four cells after the indent.
	row := lineIndex(t, view, "Effort: 10 × 30 min") + 1
	lines := strings.Split(view, "\n")
	for i, want := range []int{4, 4, 2} {
		if got := strings.Count(lines[row+i], cellEmpty); got != want {
			t.Errorf("row %d: got %d cells, want %d", i, got, want)
		}
	}

	// Unit 9 sits on the third row, second column.
	m.Update(click(len(indent)+(cellWidth+1), row+2))
	if got := m.session.Snapshot()["Beta"][9]; !got {
		t.Error("click on wrapped row should toggle unit 9")
	}
}

func newTallModel(t *testing.T) *tuiModel {
	t.Helper()
	path := filepath.Join(t.TempDir(), "progress.json")
	var defs []tracker.Definition
	for i := 0; i < 6; i++ {
		defs = append(defs, tracker.Definition{Name: fmt.Sprintf("Task%d", i), Units: 5, DurationMinutes: 10})
	}
	m := newTUIModel(app.New(defs, progress.NewStore(path, nil), nil))
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return m
}

func TestTallViewScrollsToCursor(t *testing.T) {
	m := newTallModel(t)

	view := m.View()
	if n := len(strings.Split(view, "\n")); n > 24 {
		t.Fatalf("view has %d lines, terminal has 24", n)
	}
	for _, want := range []string{appTitle, "Task0", saveLabel, "Overall:"} {
		if !strings.Contains(view, want) {
			t.Errorf("initial view missing %q", want)
		}
	}
	if strings.Contains(view, "Task5") {
		t.Error("Task5 should be scrolled out of view")
	}

	for i := 0; i < 5; i++ {
		m.Update(key("down"))
	}
	view = m.View()
	if !strings.Contains(view, "Task5") {
		t.Errorf("cursor task should be visible:\n%s", view)
	}
	if strings.Contains(view, "Task0") {
		t.Error("Task0 should be scrolled out of view")
	}
	if !strings.Contains(view, saveLabel) {
		t.Error("buttons should stay visible while scrolled")
	}

	for i := 0; i < 5; i++ {
		m.Update(key("up"))
		view = m.View()
		name := fmt.Sprintf("Task%d", m.cursorTask)
		if !strings.Contains(view, name) {
			t.Errorf("cursor task %s not visible:\n%s", name, view)
		}
	}
	if !strings.Contains(view, "Task0") {
		t.Error("Task0 should be visible after moving back up")
	}
}

func TestTallViewClicksMatchScreen(t *testing.T) {
	m := newTallModel(t)
	for i := 0; i < 5; i++ {
		m.Update(key("down"))
	}
	view := m.View()

	row := lineIndex(t, view, "Task5") + 2
	m.Update(click(len(indent)+(cellWidth+1), row))
	if got := m.session.Snapshot()["Task5"]; !reflect.DeepEqual(got, []bool{false, true, false, false, false}) {
		t.Fatalf("Task5 after click: got %v", got)
	}

	m.View()
	m.Update(click(len(indent)+1, lineIndex(t, view, saveLabel)))
	if m.notice.Text != app.MsgSaved {
		t.Errorf("save click while scrolled: got %+v", m.notice)
	}

	// Hidden rows have no zones.
	if _, ok := m.layout.hit(len(indent), 24); ok {
		t.Error("hit below the screen should miss")
	}
}

func TestLayoutHit(t *testing.T) {
	l := layout{zones: []zone{{kind: zoneSave, x: 2, y: 20, w: 5}}}
	z, ok := l.hit(3, 20)
	if !ok || z.kind != zoneSave {
		t.Errorf("hit(3,20): got %+v, %v", z, ok)
	}
	if _, ok := l.hit(7, 20); ok {
		t.Error("hit past zone width")
	}
	if _, ok := l.hit(3, 21); ok {
		t.Error("hit on another line")
	}
}

func TestHelpToggle(t *testing.T) {
	m, _ := newTestModel(t)
	m.Update(key("?"))
	if !strings.Contains(m.View(), "Keyboard Shortcuts") {
		t.Fatal("help screen not shown")
	}
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if strings.Contains(m.View(), "Keyboard Shortcuts") {
		t.Error("esc should close help")
	}
}

func TestQuit(t *testing.T) {
	m, _ := newTestModel(t)
	_, cmd := m.Update(key("q"))
	if cmd == nil {
		t.Fatal("q should return a quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestStartupNoticeShown(t *testing.T) {
	path := filepath.Join(t.TempDir(), "progress.json")
	if err := os.WriteFile(path, []byte("not json"), 0644); err != nil {
		t.Fatal(err)
	}
	m := newTUIModel(app.New(tracker.DefaultDefinitions(), progress.NewStore(path, nil), nil))
	if !strings.Contains(m.View(), app.MsgStartFresh) {
		t.Error("startup warning should be visible")
	}
}

func TestRender(t *testing.T) {
	tr := tracker.New([]tracker.Definition{
		{Name: "Resume", Units: 6, DurationMinutes: 30},
		{Name: "Empty", Units: 0, DurationMinutes: 5},
	}, map[string][]bool{"Resume": {false, true}})

	var buf bytes.Buffer
	if err := Render(&buf, tr.Tasks(), tr.Overall()); err != nil {
		t.Fatalf("Render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"1. Resume",
		"Effort: 6 × 30 min = 3h 0m",
		"[ ] [x] [ ] [ ] [ ] [ ]",
		"1/6 done (16%)",
		"2. Empty",
		"(no units)",
		"Overall: 1/6 units (16%), 2h 30m remaining",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Render output missing %q:\n%s", want, out)
		}
	}
}

func TestIsTTY(t *testing.T) {
	if IsTTY(&bytes.Buffer{}) {
		t.Error("buffer is not a TTY")
	}
}
