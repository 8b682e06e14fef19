package epub

import (
	"bytes"
	"embed"
	"fmt"
	"text/template"

	"github.com/FocuswithJustin/epubbuild/core/encoding"
	apperrors "github.com/FocuswithJustin/epubbuild/core/errors"
)

// Renderer turns a named template and its data into document bytes.
type Renderer interface {
	Render(name string, data any) ([]byte, error)
}

// RenderData is passed to every package document template.
type RenderData struct {
	ManifestData
	Identifier string
	// Date is the modification time, UTC, formatted as 2006-01-02T15:04:05Z.
	Date       string
	Stylesheet string
}

// Template names rendered by the builder. Version-specific names are
// prefixed with "v2/" or "v3/".
const (
	TemplateContainer = "container.xml"
	TemplateIBooks    = "ibooks.xml"
	TemplateNCX       = "toc.ncx"
	TemplateOPF       = "content.opf"
	TemplateNav       = "nav.xhtml"
	TemplateInlineToc = "toc.xhtml"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

// TemplateRenderer renders the embedded text/template set.
type TemplateRenderer struct {
	tmpl *template.Template
}

// NewTemplateRenderer parses the embedded templates.
func NewTemplateRenderer() (*TemplateRenderer, error) {
	tmpl, err := template.New("").Funcs(templateFuncs()).ParseFS(templatesFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return &TemplateRenderer{tmpl: tmpl}, nil
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"xml":    encoding.EscapeXMLText,
		"attr":   encoding.EscapeXMLAttr,
		"indent": encoding.Indent,
		"inc":    func(i int) int { return i + 1 },
	}
}

// Render executes the template called name.
func (r *TemplateRenderer) Render(name string, data any) ([]byte, error) {
	t := r.tmpl.Lookup(name)
	if t == nil {
		return nil, apperrors.NewRender(name, fmt.Errorf("no such template"))
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return nil, apperrors.NewRender(name, err)
	}
	return buf.Bytes(), nil
}

func versioned(v Version, name string) string {
	return v.templateDir() + "/" + name
}
