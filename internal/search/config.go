package search

import (
	"errors"
	"fmt"
	"path"

	doublestar "github.com/bmatcuk/doublestar/v4"
	"github.com/redactyl/zipcrack/internal/archive"
	"github.com/redactyl/zipcrack/internal/candidate"
)

// Defaults used when a field is left empty.
const (
	DefaultArchivePath = "your_file.zip"
	DefaultOutputDir   = "uncompressed_content"
	DefaultAlphabet    = candidate.Digits
	DefaultMinLength   = 1
	DefaultMaxLength   = 4
)

// Config describes one search.
type Config struct {
	ArchivePath string
	Alphabet    string
	MinLength   int
	MaxLength   int
	OutputDir   string
	// Members limits extraction to names matching any of these globs.
	// Password testing always covers every encrypted member.
	Members []string

	// OnLength is called before each length is enumerated with the number
	// of candidates of that length.
	OnLength func(length, count int)
	// OnAttempt is called before each candidate is tested.
	OnAttempt func(candidate string)
}

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() Config {
	return Config{
		ArchivePath: DefaultArchivePath,
		Alphabet:    DefaultAlphabet,
		MinLength:   DefaultMinLength,
		MaxLength:   DefaultMaxLength,
		OutputDir:   DefaultOutputDir,
	}
}

// Validate checks bounds and globs.
func (c Config) Validate() error {
	var errs []error
	if c.ArchivePath == "" {
		errs = append(errs, errors.New("archive path is empty"))
	}
	if c.OutputDir == "" {
		errs = append(errs, errors.New("output directory is empty"))
	}
	if c.MinLength < 1 {
		errs = append(errs, fmt.Errorf("min length must be >= 1, got %d", c.MinLength))
	}
	if c.MaxLength < c.MinLength {
		errs = append(errs, fmt.Errorf("max length %d is below min length %d", c.MaxLength, c.MinLength))
	}
	a, err := candidate.New(c.Alphabet)
	if err != nil {
		errs = append(errs, err)
	} else if c.MinLength >= 1 && c.MaxLength >= c.MinLength {
		if _, err := candidate.Count(a.Len(), c.MinLength, c.MaxLength); err != nil {
			errs = append(errs, err)
		}
	}
	for _, g := range c.Members {
		if !doublestar.ValidatePattern(g) {
			errs = append(errs, fmt.Errorf("invalid member glob %q", g))
		}
	}
	return errors.Join(errs...)
}

func (c Config) allow() archive.AllowFunc {
	if len(c.Members) == 0 {
		return nil
	}
	globs := c.Members
	return func(name string) bool {
		for _, g := range globs {
			if ok, _ := doublestar.Match(g, name); ok {
				return true
			}
			if ok, _ := doublestar.Match(g, path.Base(name)); ok {
				return true
			}
		}
		return false
	}
}
