package archive

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/FocuswithJustin/epubbuild/core/errors"
	"github.com/FocuswithJustin/epubbuild/internal/logging"
)

// DefaultCommand is the packaging executable used when none is configured.
const DefaultCommand = "zip"

// Package-level hooks swapped in tests.
var (
	execCommand = exec.Command
	mkdirTemp   = os.MkdirTemp
)

// Command stages entries in a temporary directory and runs an external
// Info-ZIP compatible executable to produce the archive.
type Command struct {
	command   string
	stageDir  string
	entries   []string
	seen      map[string]bool
	finalized bool
}

// NewCommand creates the staging directory and the marker file. It does not
// check that the executable works; call Probe for that.
func NewCommand(command string) (*Command, error) {
	if command == "" {
		command = DefaultCommand
	}

	stageDir, err := mkdirTemp("", "epub-stage-*")
	if err != nil {
		return nil, errors.NewIO("create", "staging directory", err)
	}

	marker := filepath.Join(stageDir, MarkerPath)
	if err := os.WriteFile(marker, []byte(MarkerContent), 0644); err != nil {
		os.RemoveAll(stageDir)
		return nil, errors.NewIO("write", MarkerPath, err)
	}

	return &Command{
		command:  command,
		stageDir: stageDir,
		seen:     make(map[string]bool),
	}, nil
}

// Kind reports KindCommand.
func (c *Command) Kind() Kind {
	return KindCommand
}

// Probe runs the executable with -h and reports ErrUnavailable when it is
// missing or exits non-zero.
func (c *Command) Probe() error {
	cmd := execCommand(c.command, "-h")
	cmd.Dir = c.stageDir
	if out, err := cmd.CombinedOutput(); err != nil {
		reason := "probe failed"
		if msg := strings.TrimSpace(string(out)); msg != "" {
			reason = fmt.Sprintf("probe failed: %s", firstLine(msg))
		}
		return errors.NewUnavailable(c.command, reason, err)
	}
	return nil
}

// WriteEntry copies content into the staging directory.
func (c *Command) WriteEntry(path string, content io.Reader) error {
	if c.finalized {
		return errFinalized(path)
	}
	name, err := entryName(path)
	if err != nil {
		return err
	}

	dst := filepath.Join(c.stageDir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return errors.NewIO("create", filepath.Dir(dst), err)
	}

	f, err := os.Create(dst)
	if err != nil {
		return errors.NewIO("create", dst, err)
	}
	n, copyErr := io.Copy(f, content)
	closeErr := f.Close()
	if copyErr != nil {
		return errors.NewIO("write", name, copyErr)
	}
	if closeErr != nil {
		return errors.NewIO("write", name, closeErr)
	}

	// Rewriting a path replaces the staged file but keeps its first position.
	if !c.seen[name] {
		c.seen[name] = true
		c.entries = append(c.entries, name)
	}

	logging.EntryWritten(string(KindCommand), name, n)
	return nil
}

// Finalize zips the marker on its own with no compression, appends the other
// entries in write order, and streams the result to w. The staging
// directory is removed afterwards whatever the outcome.
func (c *Command) Finalize(w io.Writer) error {
	if c.finalized {
		return errFinalized("")
	}
	c.finalized = true
	defer c.Close()

	outDir, err := mkdirTemp("", "epub-out-*")
	if err != nil {
		return errors.NewIO("create", "output directory", err)
	}
	defer os.RemoveAll(outDir)
	out := filepath.Join(outDir, "book.epub")

	if err := c.run(nil, "-X", "-0", "-q", out, MarkerPath); err != nil {
		return err
	}
	if len(c.entries) > 0 {
		// Names go through stdin so they are never mistaken for flags, and
		// -nw keeps zip from expanding wildcards in them.
		var list strings.Builder
		for _, name := range c.entries {
			list.WriteString(filepath.FromSlash(name))
			list.WriteByte('\n')
		}
		if err := c.run(strings.NewReader(list.String()), "-X", "-9", "-D", "-nw", "-q", out, "-@"); err != nil {
			return err
		}
	}

	f, err := os.Open(out)
	if err != nil {
		return errors.NewIO("open", out, err)
	}
	defer f.Close()

	if _, err := io.Copy(w, f); err != nil {
		return errors.NewIO("write", "output", err)
	}
	return nil
}

// Close removes the staging directory. It is safe to call more than once.
func (c *Command) Close() error {
	if c.stageDir == "" {
		return nil
	}
	err := os.RemoveAll(c.stageDir)
	c.stageDir = ""
	return err
}

func (c *Command) run(stdin io.Reader, args ...string) error {
	cmd := execCommand(c.command, args...)
	cmd.Dir = c.stageDir
	cmd.Stdin = stdin
	if out, err := cmd.CombinedOutput(); err != nil {
		msg := strings.TrimSpace(string(out))
		if msg != "" {
			err = fmt.Errorf("%w: %s", err, firstLine(msg))
		}
		return errors.NewIO("run", c.command, err)
	}
	return nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
