// Package archive writes and reads EPUB containers.
//
// A Backend accepts entries in order and produces the finished archive when
// finalized. Two strategies exist: Library, built on archive/zip, and Command,
// which stages files on disk and shells out to an Info-ZIP compatible
// executable. Auto probes the command once and falls back to Library.
//
// Every strategy writes the marker entry (mimetype) itself, first and
// uncompressed. Callers never write it.
package archive

import (
	"io"
	"time"

	"github.com/FocuswithJustin/epubbuild/core/errors"
	"github.com/FocuswithJustin/epubbuild/internal/validation"
)

const (
	// MarkerPath is the name of the format-identifying first entry.
	MarkerPath = "mimetype"
	// MarkerContent is the body of the marker entry.
	MarkerContent = "application/epub+zip"
)

// Backend is the capability every archive strategy provides.
type Backend interface {
	// WriteEntry consumes content and records it under path. Paths use
	// forward slashes inside the archive whatever the host convention.
	WriteEntry(path string, content io.Reader) error
	// Finalize flushes the archive to w. The backend cannot be reused.
	Finalize(w io.Writer) error
}

// Kind names a concrete strategy.
type Kind string

const (
	KindLibrary Kind = "library"
	KindCommand Kind = "command"
)

// now is swapped in tests to get stable entry timestamps.
var now = time.Now

// entryName validates a caller-supplied entry path and returns the archive name.
func entryName(path string) (string, error) {
	name, err := validation.ValidateEntryName(path)
	if err != nil {
		return "", errors.NewInvalidEntry(path, err.Error())
	}
	if name == MarkerPath {
		return "", errors.NewInvalidEntry(path, "marker entry is written by the backend and must come first")
	}
	return name, nil
}

func errFinalized(path string) error {
	return errors.NewInvalidEntry(path, "archive already finalized")
}
