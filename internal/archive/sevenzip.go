package archive

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/bodgit/sevenzip"
)

// sevenZipArchive keeps one file handle for the whole search; every attempt
// builds a fresh reader over it because 7z derives the AES key while
// parsing headers.
type sevenZipArchive struct {
	f         *os.File
	size      int64
	members   []Member
	encrypted bool
}

func openSevenZip(path string, size int64) (*sevenZipArchive, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open 7z: %w", err)
	}
	head := make([]byte, len(sevenZipMagic))
	if _, err := io.ReadFull(f, head); err != nil || !bytes.Equal(head, sevenZipMagic) {
		_ = f.Close()
		return nil, fmt.Errorf("%w: missing 7z signature", ErrCorrupt)
	}
	s := &sevenZipArchive{f: f, size: size, encrypted: true}
	// Plain headers list members up front; encrypted headers only after a
	// password is accepted.
	r, err := sevenzip.NewReader(f, size)
	switch {
	case err == nil:
		s.members = sevenZipMembers(r.File)
		s.encrypted = s.Test("").Outcome != Accepted
	case isIOError(err):
		_ = f.Close()
		return nil, fmt.Errorf("read 7z: %w", err)
	case !encryptedReadError(err):
		_ = f.Close()
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return s, nil
}

// encryptedReadError reports whether err carries the reader's hint that it
// failed inside an encrypted stream.
func encryptedReadError(err error) bool {
	var re *sevenzip.ReadError
	return errors.As(err, &re) && re.Encrypted
}

func sevenZipMembers(files []*sevenzip.File) []Member {
	out := make([]Member, 0, len(files))
	for _, f := range files {
		fi := f.FileInfo()
		out = append(out, Member{
			Name:      f.Name,
			Size:      fi.Size(),
			Encrypted: true,
			Dir:       fi.IsDir(),
			Mode:      fi.Mode(),
			Modified:  fi.ModTime(),
		})
	}
	return out
}

func (s *sevenZipArchive) Format() string { return "7z" }

func (s *sevenZipArchive) Members() []Member { return s.members }

func (s *sevenZipArchive) Encrypted() bool { return s.encrypted }

func (s *sevenZipArchive) Test(password string) Attempt {
	r, err := sevenzip.NewReaderWithPassword(s.f, s.size, password)
	if err != nil {
		return Attempt{Outcome: classifySevenZip(err), Err: err}
	}
	files := make([]*sevenzip.File, 0, len(r.File))
	for _, f := range r.File {
		if !f.FileInfo().IsDir() {
			files = append(files, f)
		}
	}
	sort.SliceStable(files, func(i, j int) bool {
		return files[i].FileInfo().Size() < files[j].FileInfo().Size()
	})
	for _, f := range files {
		if err := testSevenZipFile(f); err != nil {
			return Attempt{Outcome: classifySevenZip(err), Member: f.Name, Err: err}
		}
	}
	return Attempt{Outcome: Accepted}
}

func testSevenZipFile(f *sevenzip.File) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()
	return drain(rc, f.FileInfo().Size())
}

// classifySevenZip maps a read error. Read errors outside any encrypted
// folder mean the container is damaged; decoder and checksum failures past
// an AES stage are what a wrong key looks like.
func classifySevenZip(err error) Outcome {
	var re *sevenzip.ReadError
	switch {
	case isIOError(err):
		return IOFailure
	case errors.As(err, &re) && !re.Encrypted:
		return Corrupt
	default:
		return WrongPassword
	}
}

func (s *sevenZipArchive) Extract(dir, password string, allow AllowFunc) ([]string, error) {
	r, err := sevenzip.NewReaderWithPassword(s.f, s.size, password)
	if err != nil {
		return nil, fmt.Errorf("open 7z with password: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	s.members = sevenZipMembers(r.File)
	var written []string
	for i, f := range r.File {
		m := s.members[i]
		if allow != nil && !allow(m.Name) {
			continue
		}
		rel, err := writeMember(dir, m, f.Open)
		if err != nil {
			return written, err
		}
		written = append(written, rel)
	}
	return written, nil
}

func (s *sevenZipArchive) Close() error { return s.f.Close() }
