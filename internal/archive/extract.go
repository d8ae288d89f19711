package archive

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// errOversize means a member produced more bytes than its header declares,
// which only happens when the key stream is wrong.
var errOversize = errors.New("member larger than declared size")

// drain reads r to EOF, discarding output. limit bounds how much a garbage
// stream may produce; negative means unbounded.
func drain(r io.Reader, limit int64) error {
	if limit < 0 {
		_, err := io.Copy(io.Discard, r)
		return err
	}
	n, err := io.Copy(io.Discard, io.LimitReader(r, limit+1))
	if err != nil {
		return err
	}
	if n > limit {
		return errOversize
	}
	return nil
}

// memberTarget resolves name under dir, rejecting absolute paths and any
// path that climbs out of dir.
func memberTarget(dir, name string) (string, error) {
	clean := filepath.FromSlash(strings.TrimSuffix(name, "/"))
	if clean == "" || !filepath.IsLocal(clean) {
		return "", fmt.Errorf("%w: %q", ErrUnsafePath, name)
	}
	return filepath.Join(dir, clean), nil
}

// writeMember creates (or truncates) the file for m under dir and copies the
// member contents into it.
func writeMember(dir string, m Member, open func() (io.ReadCloser, error)) (string, error) {
	target, err := memberTarget(dir, m.Name)
	if err != nil {
		return "", err
	}
	rel, _ := filepath.Rel(dir, target)
	if m.Dir {
		if err := os.MkdirAll(target, 0o755); err != nil {
			return "", fmt.Errorf("create directory %s: %w", rel, err)
		}
		return rel, nil
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("create directory for %s: %w", rel, err)
	}
	mode := m.Mode.Perm()
	if mode == 0 {
		mode = 0o644
	}
	rc, err := open()
	if err != nil {
		return "", fmt.Errorf("open member %s: %w", m.Name, err)
	}
	defer rc.Close()
	f, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, mode)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", rel, err)
	}
	if _, err := io.Copy(f, rc); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("extract %s: %w", m.Name, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", rel, err)
	}
	if !m.Modified.IsZero() {
		_ = os.Chtimes(target, m.Modified, m.Modified)
	}
	return rel, nil
}
