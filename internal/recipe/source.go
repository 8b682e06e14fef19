package recipe

import (
	"bufio"
	"compress/gzip"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/ulikunitz/xz"

	apperrors "github.com/FocuswithJustin/epubbuild/core/errors"
	"github.com/FocuswithJustin/epubbuild/internal/validation"
)

// Package-level variables for testing.
var (
	xzNewReader   = xz.NewReader
	gzipNewReader = gzip.NewReader
)

// mediaTypes covers the file kinds an EPUB normally carries. Anything else
// falls back to the system table.
var mediaTypes = map[string]string{
	".xhtml": "application/xhtml+xml",
	".html":  "application/xhtml+xml",
	".htm":   "application/xhtml+xml",
	".css":   "text/css",
	".png":   "image/png",
	".jpg":   "image/jpeg",
	".jpeg":  "image/jpeg",
	".gif":   "image/gif",
	".svg":   "image/svg+xml",
	".webp":  "image/webp",
	".otf":   "font/otf",
	".ttf":   "font/ttf",
	".woff":  "font/woff",
	".woff2": "font/woff2",
	".js":    "application/javascript",
	".smil":  "application/smil+xml",
	".mp3":   "audio/mpeg",
	".mp4":   "video/mp4",
	".ncx":   "application/x-dtbncx+xml",
}

// MediaType guesses the media type of an archive path from its extension.
func MediaType(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if t, ok := mediaTypes[ext]; ok {
		return t
	}
	if t := mime.TypeByExtension(ext); t != "" {
		return t
	}
	return "application/octet-stream"
}

// withSource opens src below baseDir, transparently decompressing xz and
// gzip files, and passes the content to fn.
func withSource(baseDir, src string, fn func(io.Reader) error) error {
	rel, err := validation.SanitizePath(baseDir, src)
	if err != nil {
		return &apperrors.ValidationError{Field: "source", Value: src, Message: err.Error(), Err: err}
	}
	full := filepath.Join(baseDir, rel)

	f, err := os.Open(full)
	if err != nil {
		return apperrors.NewIO("open", full, err)
	}
	defer f.Close()

	r, err := decompress(bufio.NewReader(f))
	if err != nil {
		return apperrors.NewIO("decompress", full, err)
	}
	return fn(r)
}

func decompress(br *bufio.Reader) (io.Reader, error) {
	head, err := br.Peek(validation.MagicLen)
	if err != nil && err != io.EOF {
		return nil, err
	}
	switch validation.DetectFileType(head) {
	case validation.FileTypeXZ:
		return xzNewReader(br)
	case validation.FileTypeGzip:
		return gzipNewReader(br)
	default:
		return br, nil
	}
}
