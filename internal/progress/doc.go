// Package progress reads, validates, and writes the progress file.
//
// The progress file (progress.json by default) holds a single JSON object
// mapping each task name to its completion flags:
//
//	{
//	  "Resume": [false, false, true, false, false, false],
//	  "SQL with Baraa": [true, true, false]
//	}
//
// # Lifecycle
//
//   - Read once at startup. A missing file means no saved progress yet.
//   - Rewritten in full on every save. The new content goes to a temporary
//     file in the same directory which is then renamed over the target, so
//     readers never observe a partially written record.
//   - Deleted on reset.
//
// # Validation
//
// Records are validated against progress.schema.json (JSON Schema draft
// 2020-12), embedded in the binary. A different schema file may be supplied
// through the store options. Files that fail to parse or validate are
// reported with ErrCorrupt.
//
// # File Format
//
// When writing progress files, the package uses:
//   - 2-space indentation
//   - Trailing newline
//   - Keys sorted by task name (via JSON marshaling)
package progress
