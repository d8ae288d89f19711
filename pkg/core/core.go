package core

import (
	"context"

	"github.com/redactyl/zipcrack/internal/archive"
	"github.com/redactyl/zipcrack/internal/search"
)

// Re-export selected internal types as a stable public API surface.
type Config = search.Config
type Result = search.Result
type Outcome = search.Outcome

const (
	Found     = search.Found
	Exhausted = search.Exhausted
)

// Errors callers can match with errors.Is.
var (
	ErrNotFound      = archive.ErrNotFound
	ErrCorrupt       = archive.ErrCorrupt
	ErrUnsupported   = archive.ErrUnsupported
	ErrAttemptFailed = search.ErrAttemptFailed
	ErrExtract       = search.ErrExtract
)

// DefaultConfig returns the built-in defaults: your_file.zip, digits,
// lengths 1 to 4, extraction into uncompressed_content.
func DefaultConfig() Config { return search.DefaultConfig() }

// Search is the stable entrypoint for other programs.
func Search(ctx context.Context, cfg Config) (Result, error) {
	s, err := search.New(cfg)
	if err != nil {
		return Result{}, err
	}
	return s.Search(ctx)
}
