package archive

import (
	"archive/zip"
	"bytes"
	"hash/crc32"
	"io"
	"time"

	"github.com/FocuswithJustin/epubbuild/core/errors"
	"github.com/FocuswithJustin/epubbuild/internal/logging"
)

// Library builds the archive in memory with archive/zip. It has no external
// dependency and is always available.
type Library struct {
	buf       bytes.Buffer
	zw        *zip.Writer
	modified  time.Time
	finalized bool
}

// NewLibrary creates a Library and writes the marker entry.
func NewLibrary() (*Library, error) {
	l := &Library{modified: now()}
	l.zw = zip.NewWriter(&l.buf)

	// The marker is written raw so it carries no data descriptor and its
	// sizes sit in the local header, as reading systems expect.
	marker := []byte(MarkerContent)
	w, err := l.zw.CreateRaw(&zip.FileHeader{
		Name:               MarkerPath,
		Method:             zip.Store,
		Modified:           l.modified,
		CRC32:              crc32.ChecksumIEEE(marker),
		CompressedSize64:   uint64(len(marker)),
		UncompressedSize64: uint64(len(marker)),
	})
	if err != nil {
		return nil, errors.NewIO("write", MarkerPath, err)
	}
	if _, err := w.Write(marker); err != nil {
		return nil, errors.NewIO("write", MarkerPath, err)
	}

	return l, nil
}

// Kind reports KindLibrary.
func (l *Library) Kind() Kind {
	return KindLibrary
}

// WriteEntry deflates content into the archive under path.
func (l *Library) WriteEntry(path string, content io.Reader) error {
	if l.finalized {
		return errFinalized(path)
	}
	name, err := entryName(path)
	if err != nil {
		return err
	}

	w, err := l.zw.CreateHeader(&zip.FileHeader{
		Name:     name,
		Method:   zip.Deflate,
		Modified: l.modified,
	})
	if err != nil {
		return errors.NewIO("write", name, err)
	}
	n, err := io.Copy(w, content)
	if err != nil {
		return errors.NewIO("write", name, err)
	}

	logging.EntryWritten(string(KindLibrary), name, n)
	return nil
}

// Finalize closes the zip stream and copies it to w.
func (l *Library) Finalize(w io.Writer) error {
	if l.finalized {
		return errFinalized("")
	}
	l.finalized = true

	if err := l.zw.Close(); err != nil {
		return errors.NewIO("finalize", "", err)
	}
	if _, err := l.buf.WriteTo(w); err != nil {
		return errors.NewIO("write", "output", err)
	}
	return nil
}
