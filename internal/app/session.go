// Package app ties the task table, the progress file, and user actions
// together in one session.
package app

import (
	"errors"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/nibzard/tracker-go/internal/config"
	"github.com/nibzard/tracker-go/internal/logging"
	"github.com/nibzard/tracker-go/internal/progress"
	"github.com/nibzard/tracker-go/internal/tracker"
)

// NoticeKind classifies a user-visible message.
type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeWarning NoticeKind = "warning"
	NoticeError   NoticeKind = "error"
)

// Notice is the message shown to the user after an action.
type Notice struct {
	Kind NoticeKind
	Text string
}

// IsZero reports whether the notice is empty.
func (n Notice) IsZero() bool {
	return n.Text == ""
}

// User-visible messages.
const (
	MsgSaved       = "Progress saved!"
	MsgReset       = "Progress reset!"
	MsgStartFresh  = "Saved progress could not be read; starting fresh."
	msgSaveFailed  = "Save failed: "
	msgResetFailed = "Progress reset, but the saved file could not be removed: "
)

// Session owns all tracker state for the life of the process. Methods are
// serialized so each action completes before the next one is applied.
type Session struct {
	mu      sync.Mutex
	tracker *tracker.Tracker
	store   *progress.Store
	logger  *log.Logger
	saved   progress.Record
	startup Notice
}

// Open loads the progress file and builds the session for cfg.
// A progress file that cannot be read is logged and replaced by fresh state.
func Open(cfg *config.Config, logger *log.Logger) *Session {
	if logger == nil {
		logger = logging.Discard()
	}

	schema, err := progress.LoadSchema(cfg.SchemaFile)
	if err != nil {
		logger.Warn("using embedded progress schema", "err", err)
		schema = progress.DefaultSchema()
	}

	store := progress.NewStore(cfg.ProgressFile, schema)
	return New(cfg.Tasks, store, logger)
}

// New builds a session from a task table and a store.
func New(defs []tracker.Definition, store *progress.Store, logger *log.Logger) *Session {
	if logger == nil {
		logger = logging.Discard()
	}
	s := &Session{store: store, logger: logger}

	rec, err := store.Load()
	if err != nil {
		reason := "unreadable"
		if errors.Is(err, progress.ErrCorrupt) {
			reason = "corrupt"
		}
		logger.Warn("ignoring saved progress", "path", store.Path, "reason", reason, "err", err)
		rec = progress.Record{}
		s.startup = Notice{Kind: NoticeWarning, Text: MsgStartFresh}
	} else if len(rec) > 0 {
		logger.Info("loaded progress", "path", store.Path, "tasks", len(rec))
	}

	s.tracker = tracker.New(defs, rec)
	for _, name := range s.tracker.Dropped() {
		logger.Warn("duplicate task name ignored", "task", name)
	}
	if n := s.tracker.Unnamed(); n > 0 {
		logger.Warn("unnamed task ignored", "count", n)
	}
	s.saved = s.tracker.Snapshot()
	return s
}

// StartupNotice returns the notice produced while loading, if any.
func (s *Session) StartupNotice() Notice {
	return s.startup
}

// Path returns the progress file path.
func (s *Session) Path() string {
	return s.store.Path
}

// Tasks returns a view of every task in display order.
func (s *Session) Tasks() []tracker.TaskView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tracker.Tasks()
}

// Overall returns totals across every task.
func (s *Session) Overall() tracker.Totals {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tracker.Overall()
}

// Snapshot returns a copy of the in-memory record.
func (s *Session) Snapshot() progress.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tracker.Snapshot()
}

// Dirty reports whether memory differs from the last loaded or saved state.
func (s *Session) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.tracker.Equal(s.saved)
}

// Toggle flips one unit of the named task.
func (s *Session) Toggle(name string, unit int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.tracker.Toggle(name, unit); err != nil {
		return err
	}
	s.logger.Debug("toggled unit", "task", name, "unit", unit)
	return nil
}

// ToggleAt flips one unit of the task at display position idx.
func (s *Session) ToggleAt(idx, unit int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.tracker.ToggleAt(idx, unit); err != nil {
		return err
	}
	s.logger.Debug("toggled unit", "index", idx, "unit", unit)
	return nil
}

// Save writes every task's flags to the progress file. In-memory state is
// unchanged whether or not the write succeeds.
func (s *Session) Save() Notice {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := s.tracker.Snapshot()
	if err := s.store.Save(rec); err != nil {
		s.logger.Error("save failed", "path", s.store.Path, "err", err)
		return Notice{Kind: NoticeError, Text: msgSaveFailed + err.Error()}
	}
	s.saved = rec
	s.logger.Info("progress saved", "path", s.store.Path)
	return Notice{Kind: NoticeSuccess, Text: MsgSaved}
}

// Reset clears every flag and deletes the progress file.
func (s *Session) Reset() Notice {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tracker.Reset()
	if err := s.store.Remove(); err != nil {
		s.logger.Error("remove failed", "path", s.store.Path, "err", err)
		return Notice{Kind: NoticeError, Text: msgResetFailed + err.Error()}
	}
	s.saved = s.tracker.Snapshot()
	s.logger.Info("progress reset", "path", s.store.Path)
	return Notice{Kind: NoticeWarning, Text: MsgReset}
}
