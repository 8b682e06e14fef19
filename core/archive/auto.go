package archive

import (
	"io"

	"github.com/FocuswithJustin/epubbuild/internal/logging"
)

// Auto picks a strategy once, at construction, and delegates to it for the
// rest of the session.
type Auto struct {
	impl Backend
	kind Kind
}

// NewAuto tries the external command first. If the staging directory cannot
// be created or the probe fails, the command is discarded and a fresh Library
// is used instead. The probe is attempted exactly once.
func NewAuto(command string) (*Auto, error) {
	cmd, err := NewCommand(command)
	if err == nil {
		if err = cmd.Probe(); err == nil {
			logging.BackendSelected(string(KindCommand), "probe succeeded", "command", cmd.command)
			return &Auto{impl: cmd, kind: KindCommand}, nil
		}
		cmd.Close()
	}
	logging.BackendSelected(string(KindLibrary), "command unavailable", "command", command, "error", err)

	lib, err := NewLibrary()
	if err != nil {
		return nil, err
	}
	return &Auto{impl: lib, kind: KindLibrary}, nil
}

// Kind reports which strategy was selected.
func (a *Auto) Kind() Kind {
	return a.kind
}

// WriteEntry delegates to the selected strategy.
func (a *Auto) WriteEntry(path string, content io.Reader) error {
	return a.impl.WriteEntry(path, content)
}

// Finalize delegates to the selected strategy.
func (a *Auto) Finalize(w io.Writer) error {
	return a.impl.Finalize(w)
}

// Close releases resources held by the selected strategy, such as a staging
// directory, when the session is abandoned before Finalize.
func (a *Auto) Close() error {
	if c, ok := a.impl.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
