// Package epub assembles EPUB 2 and EPUB 3 packages.
//
// A Builder registers resources and reading-order content, grows a table of
// contents from (level, url, title) hints and, on Generate, renders the
// package documents and hands every entry to an archive.Backend.
package epub

import (
	"bytes"
	"io"
	"strings"
	"time"

	"github.com/FocuswithJustin/epubbuild/core/archive"
	apperrors "github.com/FocuswithJustin/epubbuild/core/errors"
	"github.com/FocuswithJustin/epubbuild/internal/logging"
	"github.com/FocuswithJustin/epubbuild/internal/validation"
	"github.com/google/uuid"
)

// Fixed entry names inside the container.
const (
	ContainerPath  = "META-INF/container.xml"
	IBooksPath     = "META-INF/com.apple.ibooks.display-options.xml"
	ContentDir     = "OEBPS"
	StylesheetPath = "stylesheet.css"
	InlineTocPath  = "toc.xhtml"
)

// newUUID is swapped in tests for a stable identifier.
var newUUID = uuid.NewString

// Builder is a single-use assembly session. It is not safe for concurrent
// use.
type Builder struct {
	backend  archive.Backend
	renderer Renderer
	clock    func() time.Time

	version  Version
	meta     Metadata
	registry Registry
	toc      *Toc

	stylesheet bool
	inlineToc  bool
	generated  bool
}

// New starts a session on backend and writes the META-INF entries.
func New(backend archive.Backend) (*Builder, error) {
	renderer, err := NewTemplateRenderer()
	if err != nil {
		return nil, err
	}

	b := &Builder{
		backend:  backend,
		renderer: renderer,
		clock:    time.Now,
		version:  V2,
		meta:     NewMetadata(),
		toc:      NewToc(),
	}

	if err := b.renderEntry(ContainerPath, TemplateContainer, nil); err != nil {
		return nil, err
	}
	if err := b.renderEntry(IBooksPath, TemplateIBooks, nil); err != nil {
		return nil, err
	}
	return b, nil
}

// SetVersion selects the EPUB revision. The default is V2.
func (b *Builder) SetVersion(v Version) error {
	if v != V2 && v != V3 {
		return &apperrors.ValidationError{Field: "version", Value: v.String(), Message: "must be 2 or 3"}
	}
	b.version = v
	return nil
}

// SetMetadata sets one metadata field; see Metadata.Set.
func (b *Builder) SetMetadata(kind MetadataKind, value string) error {
	if err := b.meta.Set(kind, value); err != nil {
		return &apperrors.ValidationError{Field: "metadata", Value: value, Message: err.Error()}
	}
	return nil
}

// Metadata returns a copy of the current metadata.
func (b *Builder) Metadata() Metadata {
	return b.meta.clone()
}

// SetRenderer replaces the template renderer.
func (b *Builder) SetRenderer(r Renderer) {
	if r != nil {
		b.renderer = r
	}
}

// SetClock replaces the modification time source.
func (b *Builder) SetClock(clock func() time.Time) {
	if clock != nil {
		b.clock = clock
	}
}

// Stylesheet adds the package stylesheet. Without a call an empty one is
// written by Generate.
func (b *Builder) Stylesheet(content io.Reader) error {
	if err := b.AddResource(StylesheetPath, content, "text/css"); err != nil {
		return err
	}
	b.stylesheet = true
	return nil
}

// InlineToc adds a toc.xhtml page to the reading order, with a table of
// contents entry titled with the current toc name. Calling it again has no
// effect.
func (b *Builder) InlineToc() error {
	if err := b.checkOpen(); err != nil {
		return err
	}
	if b.inlineToc {
		return nil
	}
	b.inlineToc = true
	b.toc.Add(1, InlineTocPath, b.meta.TocName)
	b.registry.Add(Resource{
		Path:      InlineTocPath,
		MediaType: "application/xhtml+xml",
		Spine:     true,
		Reference: ReferenceToc,
		Title:     b.meta.TocName,
	})
	return nil
}

// AddResource writes a file that is listed in the manifest but not in the
// reading order, such as an image or a font.
func (b *Builder) AddResource(path string, content io.Reader, mediaType string) error {
	return b.add(Resource{Path: path, MediaType: mediaType}, content)
}

// AddCoverImage writes the cover image. Its manifest id is always
// "cover-image".
func (b *Builder) AddCoverImage(path string, content io.Reader, mediaType string) error {
	return b.add(Resource{Path: path, MediaType: mediaType, Cover: true}, content)
}

// AddContent writes a reading-order XHTML document. A table of contents
// entry is created only when c.Title is not empty.
func (b *Builder) AddContent(c Content) error {
	res := Resource{
		Path:      c.Href,
		MediaType: "application/xhtml+xml",
		Spine:     true,
		Reference: c.Reference,
		Title:     c.Title,
	}
	if err := b.add(res, c.Body); err != nil {
		return err
	}
	if c.Title != "" {
		b.toc.AddElement(c.navElement())
	}
	return nil
}

func (b *Builder) add(res Resource, content io.Reader) error {
	if err := b.checkOpen(); err != nil {
		return err
	}
	name, err := validation.ValidateEntryName(res.Path)
	if err != nil {
		return apperrors.NewInvalidEntry(res.Path, err.Error())
	}
	if content == nil {
		content = bytes.NewReader(nil)
	}
	if err := b.write(ContentDir+"/"+name, content); err != nil {
		return err
	}
	res.Path = name
	b.registry.Add(res)
	return nil
}

// Manifest assembles the current state without writing anything.
func (b *Builder) Manifest() ManifestData {
	return Assemble(&b.registry, b.toc, b.meta, b.version)
}

// Toc returns the table of contents forest.
func (b *Builder) Toc() []NavElement {
	return b.toc.Elements()
}

// Generate renders the package documents, writes them and finalizes the
// archive to w. A builder generates once.
func (b *Builder) Generate(w io.Writer) error {
	if err := b.checkOpen(); err != nil {
		return err
	}
	if !b.stylesheet {
		if err := b.Stylesheet(strings.NewReader("")); err != nil {
			return err
		}
	}
	b.generated = true

	data := RenderData{
		ManifestData: b.Manifest(),
		Identifier:   b.meta.Identifier,
		Date:         b.clock().UTC().Format("2006-01-02T15:04:05Z"),
		Stylesheet:   StylesheetPath,
	}
	if data.Identifier == "" {
		data.Identifier = "urn:uuid:" + newUUID()
	}

	docs := []struct{ path, template string }{
		{"content.opf", versioned(b.version, TemplateOPF)},
		{"toc.ncx", TemplateNCX},
		{"nav.xhtml", versioned(b.version, TemplateNav)},
	}
	if b.inlineToc {
		docs = append(docs, struct{ path, template string }{InlineTocPath, versioned(b.version, TemplateInlineToc)})
	}
	for _, doc := range docs {
		if err := b.renderEntry(ContentDir+"/"+doc.path, doc.template, data); err != nil {
			return err
		}
	}

	if err := b.backend.Finalize(w); err != nil {
		return apperrors.Wrap(err, "finalizing archive")
	}
	logging.Debug("epub generated",
		"version", b.version.String(),
		"items", len(data.Items),
		"nav_points", len(data.NavPoints))
	return nil
}

func (b *Builder) checkOpen() error {
	if b.generated {
		return apperrors.NewValidation("builder", "package already generated")
	}
	return nil
}

func (b *Builder) renderEntry(path, name string, data any) error {
	out, err := b.renderer.Render(name, data)
	if err != nil {
		var rerr *apperrors.RenderError
		if !apperrors.As(err, &rerr) {
			err = apperrors.NewRender(name, err)
		}
		return err
	}
	return b.write(path, bytes.NewReader(out))
}

func (b *Builder) write(path string, content io.Reader) error {
	if err := b.backend.WriteEntry(path, content); err != nil {
		return apperrors.Wrapf(err, "writing %s", path)
	}
	return nil
}
