package archive

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	apperrors "github.com/FocuswithJustin/epubbuild/core/errors"
)

// fakeZip replaces execCommand with a helper process exiting with exitCode and
// records every invocation.
func fakeZip(t *testing.T, exitCode int) *[][]string {
	t.Helper()
	calls := &[][]string{}
	orig := execCommand
	execCommand = func(name string, args ...string) *exec.Cmd {
		*calls = append(*calls, append([]string{name}, args...))
		cs := append([]string{"-test.run=TestHelperProcess", "--", name}, args...)
		cmd := exec.Command(os.Args[0], cs...)
		cmd.Env = []string{
			"GO_WANT_HELPER_PROCESS=1",
			fmt.Sprintf("GO_HELPER_EXIT_CODE=%d", exitCode),
		}
		return cmd
	}
	t.Cleanup(func() { execCommand = orig })
	return calls
}

// TestHelperProcess is invoked by fakeZip and is not a real test.
func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	code, _ := strconv.Atoi(os.Getenv("GO_HELPER_EXIT_CODE"))
	if code != 0 {
		fmt.Fprintln(os.Stderr, "zip error: simulated failure")
	}
	os.Exit(code)
}

func requireZip(t *testing.T) string {
	t.Helper()
	path, err := exec.LookPath(DefaultCommand)
	if err != nil {
		t.Skip("zip executable not installed")
	}
	return path
}

func TestNewCommandStagesMarker(t *testing.T) {
	cmd, err := NewCommand("")
	if err != nil {
		t.Fatalf("NewCommand failed: %v", err)
	}
	defer cmd.Close()

	if cmd.command != DefaultCommand {
		t.Errorf("command = %q, want %q", cmd.command, DefaultCommand)
	}
	data, err := os.ReadFile(filepath.Join(cmd.stageDir, MarkerPath))
	if err != nil {
		t.Fatalf("marker not staged: %v", err)
	}
	if string(data) != MarkerContent {
		t.Errorf("marker content = %q", data)
	}
}

func TestNewCommandStagingFailure(t *testing.T) {
	orig := mkdirTemp
	mkdirTemp = func(string, string) (string, error) { return "", os.ErrPermission }
	defer func() { mkdirTemp = orig }()

	_, err := NewCommand("zip")
	var ioErr *apperrors.IOError
	if !errors.As(err, &ioErr) {
		t.Errorf("NewCommand error = %v, want IOError", err)
	}
}

func TestCommandProbe(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		calls := fakeZip(t, 0)
		cmd, err := NewCommand("zip")
		if err != nil {
			t.Fatalf("NewCommand failed: %v", err)
		}
		defer cmd.Close()

		if err := cmd.Probe(); err != nil {
			t.Errorf("Probe failed: %v", err)
		}
		if len(*calls) != 1 || strings.Join((*calls)[0], " ") != "zip -h" {
			t.Errorf("invocations = %v, want [zip -h]", *calls)
		}
	})

	t.Run("non-zero exit", func(t *testing.T) {
		fakeZip(t, 2)
		cmd, err := NewCommand("zip")
		if err != nil {
			t.Fatalf("NewCommand failed: %v", err)
		}
		defer cmd.Close()

		err = cmd.Probe()
		if !errors.Is(err, apperrors.ErrUnavailable) {
			t.Fatalf("Probe error = %v, want ErrUnavailable", err)
		}
		if !strings.Contains(err.Error(), "simulated failure") {
			t.Errorf("Probe error should carry tool output, got %v", err)
		}
	})

	t.Run("missing executable", func(t *testing.T) {
		cmd, err := NewCommand("epubbuild-no-such-zip-binary")
		if err != nil {
			t.Fatalf("NewCommand failed: %v", err)
		}
		defer cmd.Close()

		if err := cmd.Probe(); !errors.Is(err, apperrors.ErrUnavailable) {
			t.Errorf("Probe error = %v, want ErrUnavailable", err)
		}
	})
}

func TestCommandFinalizeInvocations(t *testing.T) {
	calls := fakeZip(t, 0)
	cmd, err := NewCommand("zip")
	if err != nil {
		t.Fatalf("NewCommand failed: %v", err)
	}
	stage := cmd.stageDir

	for _, p := range []string{"META-INF/container.xml", "OEBPS/b.xhtml", "OEBPS/a.xhtml", "OEBPS/b.xhtml"} {
		if err := cmd.WriteEntry(p, strings.NewReader(p)); err != nil {
			t.Fatalf("WriteEntry(%s) failed: %v", p, err)
		}
	}
	if want := []string{"META-INF/container.xml", "OEBPS/b.xhtml", "OEBPS/a.xhtml"}; strings.Join(cmd.entries, ",") != strings.Join(want, ",") {
		t.Errorf("staged order = %v, want %v", cmd.entries, want)
	}

	// The fake never writes the archive, so opening the output fails.
	var buf bytes.Buffer
	err = cmd.Finalize(&buf)
	var ioErr *apperrors.IOError
	if !errors.As(err, &ioErr) {
		t.Fatalf("Finalize error = %v, want IOError", err)
	}

	if len(*calls) != 2 {
		t.Fatalf("invocations = %v, want 2", *calls)
	}
	first := (*calls)[0]
	if first[1] != "-X" || first[2] != "-0" || first[len(first)-1] != MarkerPath {
		t.Errorf("marker invocation = %v", first)
	}
	second := strings.Join((*calls)[1], " ")
	if !strings.Contains(second, "-9") || !strings.HasSuffix(second, "-@") {
		t.Errorf("entries invocation = %v", second)
	}

	if _, err := os.Stat(stage); !os.IsNotExist(err) {
		t.Errorf("staging directory should be removed after Finalize, stat err = %v", err)
	}
	if err := cmd.WriteEntry("OEBPS/c.xhtml", strings.NewReader("c")); !errors.Is(err, apperrors.ErrInvalidEntry) {
		t.Errorf("WriteEntry after Finalize error = %v, want ErrInvalidEntry", err)
	}
}

func TestCommandFinalizeToolFailure(t *testing.T) {
	fakeZip(t, 12)
	cmd, err := NewCommand("zip")
	if err != nil {
		t.Fatalf("NewCommand failed: %v", err)
	}
	var buf bytes.Buffer
	err = cmd.Finalize(&buf)
	var ioErr *apperrors.IOError
	if !errors.As(err, &ioErr) {
		t.Fatalf("Finalize error = %v, want IOError", err)
	}
	if !strings.Contains(err.Error(), "simulated failure") {
		t.Errorf("Finalize error should carry tool output, got %v", err)
	}
}

func TestCommandRejectsMarker(t *testing.T) {
	cmd, err := NewCommand("zip")
	if err != nil {
		t.Fatalf("NewCommand failed: %v", err)
	}
	defer cmd.Close()

	if err := cmd.WriteEntry("mimetype", strings.NewReader("x")); !errors.Is(err, apperrors.ErrInvalidEntry) {
		t.Errorf("WriteEntry(mimetype) error = %v, want ErrInvalidEntry", err)
	}
}

func TestCommandRealZip(t *testing.T) {
	requireZip(t)

	cmd, err := NewCommand(DefaultCommand)
	if err != nil {
		t.Fatalf("NewCommand failed: %v", err)
	}
	if err := cmd.Probe(); err != nil {
		t.Fatalf("Probe failed: %v", err)
	}
	names := []string{"META-INF/container.xml", "OEBPS/z.xhtml", "OEBPS/images/a b.png", "OEBPS/[x].css"}
	for _, n := range names {
		if err := cmd.WriteEntry(n, strings.NewReader("content of "+n)); err != nil {
			t.Fatalf("WriteEntry(%s) failed: %v", n, err)
		}
	}

	var buf bytes.Buffer
	if err := cmd.Finalize(&buf); err != nil {
		t.Fatalf("Finalize failed: %v", err)
	}

	r := readArchive(t, buf.Bytes())
	if err := r.CheckMarker(); err != nil {
		t.Errorf("CheckMarker: %v", err)
	}
	want := append([]string{MarkerPath}, names...)
	if got := r.Names(); strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("entries = %v, want %v", got, want)
	}
	body, err := r.ReadFile("OEBPS/images/a b.png")
	if err != nil || string(body) != "content of OEBPS/images/a b.png" {
		t.Errorf("ReadFile = %q, %v", body, err)
	}
}
