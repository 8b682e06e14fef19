package archive

import (
	"archive/zip"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/zeebo/blake3"

	"github.com/FocuswithJustin/epubbuild/core/errors"
)

// Entry describes one stored file.
type Entry struct {
	Name   string
	Method uint16
	Size   uint64
	BLAKE3 string
}

// Stored reports whether the entry was written without compression.
func (e Entry) Stored() bool {
	return e.Method == zip.Store
}

// Reader reads a finished container in stored order.
type Reader struct {
	zr   *zip.Reader
	file *os.File
}

// NewReader wraps an in-memory or already open archive.
func NewReader(r io.ReaderAt, size int64) (*Reader, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	return &Reader{zr: zr}, nil
}

// OpenReader opens the archive at path.
func OpenReader(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat archive: %w", err)
	}
	r, err := NewReader(f, info.Size())
	if err != nil {
		f.Close()
		return nil, err
	}
	r.file = f
	return r, nil
}

// Close closes the underlying file, if the Reader opened one.
func (r *Reader) Close() error {
	if r.file == nil {
		return nil
	}
	return r.file.Close()
}

// Visitor is a callback function for iterating archive entries.
// Return true to stop iteration, false to continue.
type Visitor func(f *zip.File, content io.Reader) (stop bool, err error)

// Iterate walks through all entries in stored order, calling the visitor for each.
func (r *Reader) Iterate(visitor Visitor) error {
	for _, f := range r.zr.File {
		rc, err := f.Open()
		if err != nil {
			return fmt.Errorf("open entry %s: %w", f.Name, err)
		}
		stop, err := visitor(f, rc)
		rc.Close()
		if err != nil {
			return err
		}
		if stop {
			return nil
		}
	}
	return nil
}

// Names lists entry names in stored order.
func (r *Reader) Names() []string {
	names := make([]string, 0, len(r.zr.File))
	for _, f := range r.zr.File {
		names = append(names, f.Name)
	}
	return names
}

// Entries lists every entry with its BLAKE3 content digest.
func (r *Reader) Entries() ([]Entry, error) {
	var entries []Entry
	err := r.Iterate(func(f *zip.File, content io.Reader) (bool, error) {
		h := blake3.New()
		if _, err := io.Copy(h, content); err != nil {
			return true, fmt.Errorf("read entry %s: %w", f.Name, err)
		}
		entries = append(entries, Entry{
			Name:   f.Name,
			Method: f.Method,
			Size:   f.UncompressedSize64,
			BLAKE3: hex.EncodeToString(h.Sum(nil)),
		})
		return false, nil
	})
	return entries, err
}

// ReadFile reads a specific entry.
func (r *Reader) ReadFile(name string) ([]byte, error) {
	var content []byte
	var found bool
	err := r.Iterate(func(f *zip.File, rc io.Reader) (bool, error) {
		if f.Name != name {
			return false, nil
		}
		found = true
		var err error
		content, err = io.ReadAll(rc)
		return true, err
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("file not found: %s", name)
	}
	return content, nil
}

// Has reports whether the archive contains an entry called name.
func (r *Reader) Has(name string) bool {
	for _, f := range r.zr.File {
		if f.Name == name {
			return true
		}
	}
	return false
}

// CheckMarker verifies the container starts with an uncompressed marker entry
// carrying the expected media type.
func (r *Reader) CheckMarker() error {
	if len(r.zr.File) == 0 {
		return errors.NewInvalidEntry(MarkerPath, "archive is empty")
	}
	first := r.zr.File[0]
	if first.Name != MarkerPath {
		return errors.NewInvalidEntry(first.Name, "first entry is not the marker")
	}
	if first.Method != zip.Store {
		return errors.NewInvalidEntry(MarkerPath, "marker entry is compressed")
	}
	rc, err := first.Open()
	if err != nil {
		return errors.NewIO("read", MarkerPath, err)
	}
	defer rc.Close()
	body, err := io.ReadAll(rc)
	if err != nil {
		return errors.NewIO("read", MarkerPath, err)
	}
	if string(body) != MarkerContent {
		return errors.NewInvalidEntry(MarkerPath, fmt.Sprintf("unexpected media type %q", body))
	}
	return nil
}

// Blake3Hash computes the hex BLAKE3 digest of data.
func Blake3Hash(data []byte) string {
	h := blake3.Sum256(data)
	return hex.EncodeToString(h[:])
}
