// Package archivetest builds password-protected archives for tests.
package archivetest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/yeka/zip"
)

// Encryption methods accepted by WriteZip.
const (
	ZipCrypto = zip.StandardEncryption
	AES256    = zip.AES256Encryption
)

// File is one member to store.
type File struct {
	Name string
	Body string
}

// Fixtures is the default member set used across tests.
var Fixtures = []File{
	{Name: "readme.txt", Body: "the quick brown fox jumps over the lazy dog\n"},
	{Name: "data/numbers.csv", Body: "id,value\n1,42\n2,4242\n3,424242\n"},
	{Name: "data/notes.md", Body: "# notes\n\nnothing to see here\n"},
}

// WriteZip writes an archive named name under dir with every member
// encrypted under password and returns its path.
func WriteZip(t testing.TB, dir, name, password string, method zip.EncryptionMethod, files ...File) string {
	t.Helper()
	p := filepath.Join(dir, name)
	out, err := os.Create(p)
	if err != nil {
		t.Fatalf("create %s: %v", p, err)
	}
	defer out.Close()
	w := zip.NewWriter(out)
	for _, f := range files {
		fw, err := w.Encrypt(f.Name, password, method)
		if err != nil {
			t.Fatalf("encrypt %s: %v", f.Name, err)
		}
		if _, err := fw.Write([]byte(f.Body)); err != nil {
			t.Fatalf("write %s: %v", f.Name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close zip writer: %v", err)
	}
	return p
}

// WritePlainZip writes an unencrypted archive.
func WritePlainZip(t testing.TB, dir, name string, files ...File) string {
	t.Helper()
	p := filepath.Join(dir, name)
	out, err := os.Create(p)
	if err != nil {
		t.Fatalf("create %s: %v", p, err)
	}
	defer out.Close()
	w := zip.NewWriter(out)
	for _, f := range files {
		fw, err := w.Create(f.Name)
		if err != nil {
			t.Fatalf("create member %s: %v", f.Name, err)
		}
		if _, err := fw.Write([]byte(f.Body)); err != nil {
			t.Fatalf("write %s: %v", f.Name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close zip writer: %v", err)
	}
	return p
}

// ReadTree returns the regular files under dir keyed by slash-separated
// relative path.
func ReadTree(t testing.TB, dir string) map[string]string {
	t.Helper()
	out := map[string]string{}
	err := filepath.WalkDir(dir, func(p string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		b, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(dir, p)
		out[filepath.ToSlash(rel)] = string(b)
		return nil
	})
	if err != nil {
		t.Fatalf("walk %s: %v", dir, err)
	}
	return out
}

// AsMap returns files keyed by name.
func AsMap(files []File) map[string]string {
	out := make(map[string]string, len(files))
	for _, f := range files {
		out[f.Name] = f.Body
	}
	return out
}
