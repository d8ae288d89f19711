package archive

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/klauspost/compress/zstd"
	"github.com/yeka/zip"
)

// zstdMethod is the APPNOTE compression method ID for Zstandard.
const zstdMethod = 93

func init() {
	zip.RegisterDecompressor(zstdMethod, newZstdReader)
}

func newZstdReader(r io.Reader) io.ReadCloser {
	dec, err := zstd.NewReader(r, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return errReadCloser{err: err}
	}
	return dec.IOReadCloser()
}

type errReadCloser struct{ err error }

func (e errReadCloser) Read([]byte) (int, error) { return 0, e.err }
func (e errReadCloser) Close() error             { return nil }

// errCheckByte marks a ZipCrypto guess rejected by the encryption header.
var errCheckByte = errors.New("encryption header check failed")

const (
	// zipCryptoHeaderLen is the size of the traditional PKWARE encryption
	// header that precedes member data.
	zipCryptoHeaderLen = 12
	// aesExtraID tags the WinZip AES extra field.
	aesExtraID = 0x9901
	// flagDataDescriptor is general purpose bit 3.
	flagDataDescriptor = 0x8
)

type zipEntry struct {
	f *zip.File
	// zipCrypto is set for traditional PKWARE encryption, whose last
	// header byte lets a wrong key be rejected before decompression.
	zipCrypto bool
}

type zipArchive struct {
	file *os.File
	r    *zip.Reader
	// encrypted members, smallest first so wrong guesses fail fast
	order   []zipEntry
	members []Member
}

func openZip(path string) (*zipArchive, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open zip: %w", err)
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("open zip: %w", err)
	}
	r, err := zip.NewReader(f, st.Size())
	if err != nil {
		_ = f.Close()
		if isIOError(err) {
			return nil, fmt.Errorf("open zip: %w", err)
		}
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	z := &zipArchive{file: f, r: r}
	for _, zf := range r.File {
		fi := zf.FileInfo()
		m := Member{
			Name:      zf.Name,
			Size:      int64(zf.UncompressedSize64),
			Encrypted: zf.IsEncrypted(),
			Dir:       fi.IsDir(),
			Mode:      fi.Mode(),
			Modified:  zf.ModTime(),
		}
		z.members = append(z.members, m)
		if m.Encrypted && !m.Dir {
			z.order = append(z.order, zipEntry{f: zf, zipCrypto: !hasExtra(zf.Extra, aesExtraID)})
		}
	}
	sort.SliceStable(z.order, func(i, j int) bool {
		return z.order[i].f.UncompressedSize64 < z.order[j].f.UncompressedSize64
	})
	return z, nil
}

// hasExtra reports whether the extra field block contains a record tagged id.
func hasExtra(extra []byte, id uint16) bool {
	for len(extra) >= 4 {
		tag := binary.LittleEndian.Uint16(extra)
		size := int(binary.LittleEndian.Uint16(extra[2:]))
		if tag == id {
			return true
		}
		if len(extra) < 4+size {
			return false
		}
		extra = extra[4+size:]
	}
	return false
}

func (z *zipArchive) Format() string { return "zip" }

func (z *zipArchive) Members() []Member { return z.members }

func (z *zipArchive) Encrypted() bool { return len(z.order) > 0 }

func (z *zipArchive) Test(password string) Attempt {
	for _, e := range z.order {
		if e.zipCrypto {
			if err := z.checkZipCryptoHeader(e.f, password); err != nil {
				return Attempt{Outcome: classifyZip(err), Member: e.f.Name, Err: err}
			}
		}
		e.f.SetPassword(password)
		if err := testZipFile(e.f); err != nil {
			return Attempt{Outcome: classifyZip(err), Member: e.f.Name, Err: err}
		}
	}
	return Attempt{Outcome: Accepted}
}

// checkZipCryptoHeader decrypts the 12-byte encryption header and compares
// its last byte with the high byte of the CRC, or of the DOS mod time when
// the sizes and CRC follow in a data descriptor.
func (z *zipArchive) checkZipCryptoHeader(f *zip.File, password string) error {
	if f.CompressedSize64 < zipCryptoHeaderLen {
		return fmt.Errorf("%w: %s: encrypted data shorter than its header", ErrCorrupt, f.Name)
	}
	off, err := f.DataOffset()
	if err != nil {
		return err
	}
	hdr := make([]byte, zipCryptoHeaderLen)
	if _, err := z.file.ReadAt(hdr, off); err != nil {
		if isIOError(err) {
			return err
		}
		return fmt.Errorf("%w: %s: %v", ErrCorrupt, f.Name, err)
	}
	plain := zip.NewZipCrypto([]byte(password)).Decrypt(hdr)
	want := byte(f.CRC32 >> 24)
	if f.Flags&flagDataDescriptor != 0 {
		want = byte(f.ModifiedTime >> 8)
	}
	if plain[zipCryptoHeaderLen-1] != want {
		return errCheckByte
	}
	return nil
}

// openZipMember opens f, naming the method when the reader has no
// decompressor for it.
func openZipMember(f *zip.File) (io.ReadCloser, error) {
	rc, err := f.Open()
	if errors.Is(err, zip.ErrAlgorithm) {
		return nil, fmt.Errorf("%w: %s uses compression method %d: %w", ErrUnsupported, f.Name, f.Method, err)
	}
	return rc, err
}

func testZipFile(f *zip.File) error {
	rc, err := openZipMember(f)
	if err != nil {
		return err
	}
	defer rc.Close()
	return drain(rc, int64(f.UncompressedSize64))
}

// classifyZip maps an error from an encrypted member. Password check values,
// CRC and HMAC mismatches and garbage decompressor input all mean the key
// was wrong; only container-level and filesystem errors are fatal.
func classifyZip(err error) Outcome {
	switch {
	case isIOError(err):
		return IOFailure
	case errors.Is(err, ErrUnsupported), errors.Is(err, zip.ErrAlgorithm):
		return Unsupported
	case errors.Is(err, ErrCorrupt), errors.Is(err, zip.ErrFormat):
		return Corrupt
	default:
		return WrongPassword
	}
}

func (z *zipArchive) Extract(dir, password string, allow AllowFunc) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	var written []string
	for i, f := range z.r.File {
		m := z.members[i]
		if allow != nil && !allow(m.Name) {
			continue
		}
		if f.IsEncrypted() {
			f.SetPassword(password)
		}
		rel, err := writeMember(dir, m, func() (io.ReadCloser, error) { return openZipMember(f) })
		if err != nil {
			return written, err
		}
		written = append(written, rel)
	}
	return written, nil
}

func (z *zipArchive) Close() error { return z.file.Close() }
