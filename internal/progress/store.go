package progress

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultFile is the progress file name used when none is configured.
const DefaultFile = "progress.json"

// ErrCorrupt marks a progress file that exists but cannot be used.
var ErrCorrupt = errors.New("corrupt progress file")

// Record maps task names to completion flags.
type Record map[string][]bool

// Store reads and writes one progress file.
type Store struct {
	Path   string
	schema *Schema
}

// NewStore returns a store for path validated with schema. A nil schema
// uses the embedded one.
func NewStore(path string, schema *Schema) *Store {
	if path == "" {
		path = DefaultFile
	}
	if schema == nil {
		schema = DefaultSchema()
	}
	return &Store{Path: path, schema: schema}
}

// Exists reports whether the progress file is present.
func (s *Store) Exists() bool {
	_, err := os.Stat(s.Path)
	return err == nil
}

// Load reads the progress file. A missing file returns an empty record and
// no error. A file that cannot be parsed or fails validation returns an
// error wrapping ErrCorrupt.
func (s *Store) Load() (Record, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Record{}, nil
		}
		return nil, fmt.Errorf("read progress file: %w", err)
	}
	return s.Decode(data)
}

// Decode parses and validates raw progress file content.
func (s *Store) Decode(data []byte) (Record, error) {
	if err := s.schema.Validate(data); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("%w: parse: %w", ErrCorrupt, err)
	}
	if rec == nil {
		rec = Record{}
	}
	return rec, nil
}

// Save replaces the progress file with rec.
func (s *Store) Save(rec Record) error {
	if rec == nil {
		rec = Record{}
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal progress: %w", err)
	}

	// Add trailing newline
	data = append(data, '\n')

	if err := writeFileAtomic(s.Path, data, 0644); err != nil {
		return fmt.Errorf("write progress file: %w", err)
	}
	return nil
}

// Remove deletes the progress file. A missing file is not an error.
func (s *Store) Remove() error {
	if err := os.Remove(s.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove progress file: %w", err)
	}
	return nil
}

func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	cleanup := func() {
		tmp.Close()
		os.Remove(tmpName)
	}

	if _, err := tmp.Write(data); err != nil {
		cleanup()
		return err
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
