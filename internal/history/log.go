// Package history keeps an append-only JSONL record of password searches.
package history

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	xxhash "github.com/cespare/xxhash/v2"
)

type RunRecord struct {
	Timestamp   time.Time `json:"timestamp"`
	RunID       string    `json:"run_id"`
	Archive     string    `json:"archive"`
	Fingerprint string    `json:"fingerprint,omitempty"`
	Format      string    `json:"format,omitempty"`
	Outcome     string    `json:"outcome"`
	Password    string    `json:"password,omitempty"`
	Alphabet    string    `json:"alphabet"`
	MinLength   int       `json:"min_length"`
	MaxLength   int       `json:"max_length"`
	Attempts    int       `json:"attempts"`
	Duration    string    `json:"duration"`
	OutputDir   string    `json:"output_dir,omitempty"`
	Extracted   int       `json:"extracted"`
	Error       string    `json:"error,omitempty"`
}

type Log struct {
	path string
}

// DefaultPath returns $XDG_STATE_HOME/zipcrack/history.jsonl, falling back
// to ~/.local/state.
func DefaultPath() string {
	base := os.Getenv("XDG_STATE_HOME")
	if base == "" {
		home, _ := os.UserHomeDir()
		if home == "" {
			return filepath.Join(os.TempDir(), "zipcrack-history.jsonl")
		}
		base = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(base, "zipcrack", "history.jsonl")
}

func New(path string) *Log {
	if path == "" {
		path = DefaultPath()
	}
	return &Log{path: path}
}

func (l *Log) Path() string { return l.path }

// Load returns all records, newest first.
func (l *Log) Load() ([]RunRecord, error) {
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history: %w", err)
	}
	defer f.Close()

	var records []RunRecord
	decoder := json.NewDecoder(f)
	for decoder.More() {
		var record RunRecord
		if err := decoder.Decode(&record); err != nil {
			break
		}
		records = append(records, record)
	}

	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	return records, nil
}

func (l *Log) Append(record RunRecord) error {
	if record.RunID == "" {
		record.RunID = fmt.Sprintf("run_%d", time.Now().UnixNano())
	}
	if err := os.MkdirAll(filepath.Dir(l.path), 0o700); err != nil {
		return fmt.Errorf("failed to create history dir: %w", err)
	}
	// owner-only: records name archives and hint at passwords
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	defer f.Close()

	if err := json.NewEncoder(f).Encode(record); err != nil {
		return fmt.Errorf("failed to write history record: %w", err)
	}
	return nil
}

// Clear removes the history file. A missing file is not an error.
func (l *Log) Clear() error {
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}

// Fingerprint returns the xxhash64 of the file at path as 16 hex digits.
func Fingerprint(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	d := xxhash.New()
	if _, err := io.Copy(d, f); err != nil {
		return "", err
	}
	return fmt.Sprintf("%016x", d.Sum64()), nil
}

// MaskPassword keeps the first and last character of passwords longer than
// three characters and hides the rest.
func MaskPassword(pw string) string {
	r := []rune(pw)
	switch {
	case len(r) == 0:
		return ""
	case len(r) <= 3:
		return strings.Repeat("*", len(r))
	default:
		return string(r[0]) + strings.Repeat("*", len(r)-2) + string(r[len(r)-1])
	}
}
