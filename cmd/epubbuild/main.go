// Command epubbuild assembles EPUB packages from book recipes and inspects
// existing ones.
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/FocuswithJustin/epubbuild/core/archive"
	"github.com/FocuswithJustin/epubbuild/core/epub"
	"github.com/FocuswithJustin/epubbuild/core/xml"
	"github.com/FocuswithJustin/epubbuild/internal/logging"
	"github.com/FocuswithJustin/epubbuild/internal/recipe"
)

const version = "0.1.0"

// stdout is swapped in tests to capture command output.
var stdout io.Writer = os.Stdout

// CLI defines the command-line interface for epubbuild.
var CLI struct {
	LogLevel  string `name:"log-level" help:"Log level (debug, info, warn, error)" default:"info" env:"EPUBBUILD_LOG_LEVEL"`
	LogFormat string `name:"log-format" help:"Log format (text, json)" default:"text" env:"EPUBBUILD_LOG_FORMAT"`

	Build   BuildCmd   `cmd:"" help:"Build an EPUB from a recipe"`
	Inspect InspectCmd `cmd:"" help:"Show the manifest, spine and navigation of an EPUB"`
	Probe   ProbeCmd   `cmd:"" help:"Report which archive backend would be used"`
	Version VersionCmd `cmd:"" help:"Print version information"`
}

// BuildCmd builds an EPUB from a recipe.
type BuildCmd struct {
	Recipe       string `arg:"" help:"Path to the recipe file" type:"existingfile"`
	Out          string `name:"out" short:"o" help:"Output EPUB path" type:"path" required:""`
	Zip          string `name:"zip" help:"External zip executable" default:"zip" env:"EPUBBUILD_ZIP"`
	ForceLibrary bool   `name:"force-library" help:"Skip the external zip tool and use the embedded writer"`
}

// Run executes the build command.
func (c *BuildCmd) Run() error {
	r, err := recipe.ParseFile(c.Recipe)
	if err != nil {
		return err
	}

	backend, kind, closeBackend, err := selectBackend(c.Zip, c.ForceLibrary)
	if err != nil {
		return err
	}
	defer closeBackend()

	b, err := epub.New(backend)
	if err != nil {
		return err
	}
	if err := r.Apply(b, filepath.Dir(c.Recipe)); err != nil {
		return err
	}

	if err := writeOutput(c.Out, b.Generate); err != nil {
		return err
	}

	data, err := os.ReadFile(c.Out)
	if err != nil {
		return fmt.Errorf("failed to read output: %w", err)
	}
	logging.Info("epub built", "path", c.Out, "backend", string(kind), "bytes", len(data))

	fmt.Fprintf(stdout, "Built: %s\n", c.Out)
	fmt.Fprintf(stdout, "  Backend: %s\n", kind)
	fmt.Fprintf(stdout, "  BLAKE3:  %s\n", archive.Blake3Hash(data))
	return nil
}

// selectBackend returns the backend to build with, its kind, and a release
// function that drops staging files if the build is abandoned.
func selectBackend(zip string, forceLibrary bool) (archive.Backend, archive.Kind, func(), error) {
	if forceLibrary {
		lib, err := archive.NewLibrary()
		if err != nil {
			return nil, "", nil, err
		}
		logging.BackendSelected(string(archive.KindLibrary), "forced")
		return lib, archive.KindLibrary, func() {}, nil
	}
	auto, err := archive.NewAuto(zip)
	if err != nil {
		return nil, "", nil, err
	}
	return auto, auto.Kind(), func() { auto.Close() }, nil
}

// writeOutput creates path and passes a buffered writer to generate. The
// file is removed if generation fails.
func writeOutput(path string, generate func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output: %w", err)
	}
	w := bufio.NewWriter(f)
	err = generate(w)
	if err == nil {
		err = w.Flush()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return err
	}
	return nil
}

// InspectCmd prints what an EPUB contains.
type InspectCmd struct {
	Path string `arg:"" help:"Path to the EPUB" type:"existingfile"`
	Dump string `name:"dump" help:"Pretty-print one XML entry, e.g. OEBPS/content.opf"`
}

// Run executes the inspect command.
func (c *InspectCmd) Run() error {
	if c.Dump != "" {
		return c.dump()
	}

	f, err := os.Open(c.Path)
	if err != nil {
		return fmt.Errorf("failed to open: %w", err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat: %w", err)
	}

	pkg, err := epub.Inspect(f, info.Size())
	if err != nil {
		return err
	}
	printPackage(stdout, pkg)
	return nil
}

func (c *InspectCmd) dump() error {
	r, err := archive.OpenReader(c.Path)
	if err != nil {
		return err
	}
	defer r.Close()

	data, err := r.ReadFile(c.Dump)
	if err != nil {
		return err
	}
	out, err := xml.Format(data, xml.FormatOptions{Indent: "  "})
	if err != nil {
		return fmt.Errorf("failed to format %s: %w", c.Dump, err)
	}
	_, err = stdout.Write(out)
	return err
}

func printPackage(w io.Writer, pkg *epub.Package) {
	fmt.Fprintf(w, "Package: %s (EPUB %s)\n", pkg.OPFPath, pkg.Version)
	fmt.Fprintf(w, "  Identifier: %s\n", pkg.Identifier)
	fmt.Fprintf(w, "  Title:      %s\n", pkg.Title)
	fmt.Fprintf(w, "  Language:   %s\n", pkg.Language)
	if len(pkg.Authors) > 0 {
		fmt.Fprintf(w, "  Authors:    %s\n", strings.Join(pkg.Authors, ", "))
	}

	fmt.Fprintf(w, "\nEntries (%d):\n", len(pkg.Entries))
	for _, e := range pkg.Entries {
		method := "deflate"
		if e.Stored() {
			method = "store"
		}
		fmt.Fprintf(w, "  %-48s %8d %-7s %s\n", e.Name, e.Size, method, e.BLAKE3[:16])
	}

	fmt.Fprintf(w, "\nManifest (%d):\n", len(pkg.Items))
	for _, item := range pkg.Items {
		cover := ""
		if item.CoverImage {
			cover = " [cover-image]"
		}
		fmt.Fprintf(w, "  %-24s %-32s %s%s\n", item.ID, item.Href, item.MediaType, cover)
	}

	fmt.Fprintf(w, "\nSpine: %s\n", strings.Join(pkg.Spine, ", "))

	if len(pkg.Guide) > 0 {
		fmt.Fprintln(w, "\nGuide:")
		for _, ref := range pkg.Guide {
			fmt.Fprintf(w, "  %-16s %s (%s)\n", ref.Type, ref.Href, ref.Title)
		}
	}
	if len(pkg.Landmarks) > 0 {
		fmt.Fprintln(w, "\nLandmarks:")
		for _, ref := range pkg.Landmarks {
			fmt.Fprintf(w, "  %-16s %s (%s)\n", ref.Type, ref.Href, ref.Title)
		}
	}

	fmt.Fprintf(w, "\nNavigation (%d):\n", len(pkg.NavPoints))
	for _, p := range pkg.NavPoints {
		fmt.Fprintf(w, "  %3d %s%s -> %s\n", p.PlayOrder, strings.Repeat("  ", p.Depth-1), p.Title, p.URL)
	}

	if len(pkg.Problems) > 0 {
		fmt.Fprintf(w, "\nProblems (%d):\n", len(pkg.Problems))
		for _, p := range pkg.Problems {
			fmt.Fprintf(w, "  %s\n", p)
		}
	}
}

// ProbeCmd reports which backend the selector picks.
type ProbeCmd struct {
	Zip string `name:"zip" help:"External zip executable" default:"zip" env:"EPUBBUILD_ZIP"`
}

// Run executes the probe command.
func (c *ProbeCmd) Run() error {
	auto, err := archive.NewAuto(c.Zip)
	if err != nil {
		return err
	}
	defer auto.Close()
	fmt.Fprintf(stdout, "Backend: %s\n", auto.Kind())
	return nil
}

// VersionCmd prints version information.
type VersionCmd struct{}

// Run executes the version command.
func (c *VersionCmd) Run() error {
	fmt.Fprintf(stdout, "epubbuild version %s\n", version)
	return nil
}

// configureLogging applies the global log flags.
func configureLogging(level, format string) error {
	lvl, err := logging.ParseLevel(level)
	if err != nil {
		return err
	}
	f, err := logging.ParseFormat(format)
	if err != nil {
		return err
	}
	logging.InitLogger(lvl, f)
	return nil
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("epubbuild"),
		kong.Description("Assemble EPUB packages from book recipes"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)
	ctx.FatalIfErrorf(configureLogging(CLI.LogLevel, CLI.LogFormat))
	err := ctx.Run(ctx)
	ctx.FatalIfErrorf(err)
}
