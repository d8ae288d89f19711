package archive

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned by Open when the archive path does not exist.
	ErrNotFound = errors.New("archive not found")
	// ErrUnsupported is returned for container formats no backend handles.
	ErrUnsupported = errors.New("unsupported archive format")
	// ErrCorrupt marks a container that cannot be parsed.
	ErrCorrupt = errors.New("corrupt archive")
	// ErrUnsafePath is returned by Extract for members that would land
	// outside the destination directory.
	ErrUnsafePath = errors.New("member path escapes destination")
)

// Outcome classifies a single password attempt.
type Outcome int

const (
	Accepted Outcome = iota
	WrongPassword
	Corrupt
	IOFailure
	// Unsupported means a member uses a method no decoder is registered for.
	Unsupported
)

func (o Outcome) String() string {
	switch o {
	case Accepted:
		return "accepted"
	case WrongPassword:
		return "wrong_password"
	case Corrupt:
		return "corrupt"
	case IOFailure:
		return "io_failure"
	case Unsupported:
		return "unsupported"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Attempt is the tagged result of Archive.Test.
type Attempt struct {
	Outcome Outcome
	// Member names the entry that rejected the password, if any.
	Member string
	Err    error
}

// Fatal reports whether the attempt should stop a search.
func (a Attempt) Fatal() bool {
	return a.Outcome == Corrupt || a.Outcome == IOFailure || a.Outcome == Unsupported
}

// Member describes one entry stored in an archive.
type Member struct {
	Name      string
	Size      int64
	Encrypted bool
	Dir       bool
	Mode      fs.FileMode
	Modified  time.Time
}

// AllowFunc filters which members Extract writes. A nil AllowFunc allows all.
type AllowFunc func(name string) bool

// Archive is an opened archive. Implementations are not safe for concurrent
// use.
type Archive interface {
	// Format returns the backend name, e.g. "zip" or "7z".
	Format() string
	// Members lists entries known without a password. Formats with encrypted
	// headers may return nil until a password is accepted.
	Members() []Member
	// Encrypted reports whether any member requires a password.
	Encrypted() bool
	// Test decrypts every encrypted member with password, discarding output.
	Test(password string) Attempt
	// Extract writes members under dir using password and returns the
	// written paths relative to dir.
	Extract(dir, password string, allow AllowFunc) ([]string, error)
	Close() error
}

// Open opens the archive at path, choosing a backend from the file
// extension and falling back to the leading magic bytes.
func Open(path string) (Archive, error) {
	st, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("stat archive: %w", err)
	}
	if st.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	kind, err := detect(path)
	if err != nil {
		return nil, err
	}
	switch kind {
	case "zip":
		z, err := openZip(path)
		if err != nil {
			return nil, err
		}
		return z, nil
	case "7z":
		s, err := openSevenZip(path, st.Size())
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, filepath.Base(path))
	}
}

var (
	zipMagic      = []byte("PK\x03\x04")
	zipEmptyMagic = []byte("PK\x05\x06")
	sevenZipMagic = []byte{'7', 'z', 0xBC, 0xAF, 0x27, 0x1C}
)

func detect(path string) (string, error) {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".zip"):
		return "zip", nil
	case strings.HasSuffix(lower, ".7z"):
		return "7z", nil
	}
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open archive: %w", err)
	}
	defer f.Close()
	head := make([]byte, len(sevenZipMagic))
	n, _ := f.Read(head)
	head = head[:n]
	switch {
	case bytes.HasPrefix(head, zipMagic), bytes.HasPrefix(head, zipEmptyMagic):
		return "zip", nil
	case bytes.HasPrefix(head, sevenZipMagic):
		return "7z", nil
	}
	return "", nil
}

// isIOError reports errors raised by the filesystem rather than by the
// decryption or decompression layers.
func isIOError(err error) bool {
	var pe *fs.PathError
	return errors.As(err, &pe)
}
