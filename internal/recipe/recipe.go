// Package recipe reads book recipes: small declarative files that list the
// metadata, resources and reading-order documents of an EPUB and where
// their content comes from on disk.
package recipe

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/participle/v2/lexer"

	"github.com/FocuswithJustin/epubbuild/core/epub"
	apperrors "github.com/FocuswithJustin/epubbuild/core/errors"
	"github.com/FocuswithJustin/epubbuild/internal/logging"
)

// Target receives the directives of a recipe. *epub.Builder implements it.
type Target interface {
	SetVersion(v epub.Version) error
	SetMetadata(kind epub.MetadataKind, value string) error
	Stylesheet(content io.Reader) error
	AddCoverImage(path string, content io.Reader, mediaType string) error
	AddResource(path string, content io.Reader, mediaType string) error
	AddContent(c epub.Content) error
	InlineToc() error
}

// Recipe is a parsed recipe file.
type Recipe struct {
	Name string
	file *file
}

// Parse reads a recipe. name is used in error messages.
func Parse(name string, r io.Reader) (*Recipe, error) {
	f, err := recipeParser.Parse(name, r)
	if err != nil {
		return nil, &apperrors.ParseError{Format: "recipe", Path: name, Message: err.Error(), Err: err}
	}
	return &Recipe{Name: name, file: f}, nil
}

// ParseFile reads the recipe at path.
func ParseFile(path string) (*Recipe, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewIO("open", path, err)
	}
	defer f.Close()
	return Parse(path, f)
}

// Len returns the number of directives.
func (r *Recipe) Len() int {
	return len(r.file.Directives)
}

// Apply replays the directives on t in file order. Source files are
// resolved relative to baseDir and may not escape it.
func (r *Recipe) Apply(t Target, baseDir string) error {
	for _, d := range r.file.Directives {
		if err := r.apply(t, baseDir, d); err != nil {
			return err
		}
	}
	logging.Debug("recipe applied", "recipe", r.Name, "directives", len(r.file.Directives))
	return nil
}

func (r *Recipe) apply(t Target, baseDir string, d *directive) error {
	switch {
	case d.InlineToc:
		return t.InlineToc()

	case d.Version != nil:
		v, err := epub.ParseVersion(*d.Version)
		if err != nil {
			return r.errorAt(d.Pos, err)
		}
		return t.SetVersion(v)

	case d.Stylesheet != nil:
		return withSource(baseDir, *d.Stylesheet, t.Stylesheet)

	case d.Cover != nil:
		return withSource(baseDir, d.Cover.From, func(rd io.Reader) error {
			return t.AddCoverImage(d.Cover.Path, rd, d.Cover.mediaType())
		})

	case d.Resource != nil:
		return withSource(baseDir, d.Resource.From, func(rd io.Reader) error {
			return t.AddResource(d.Resource.Path, rd, d.Resource.mediaType())
		})

	case d.Content != nil:
		c, err := r.content(d.Content)
		if err != nil {
			return err
		}
		return withSource(baseDir, d.Content.From, func(rd io.Reader) error {
			c.Body = rd
			return t.AddContent(c)
		})

	case d.Meta != nil:
		kind, err := epub.ParseMetadataKind(d.Meta.Key)
		if err != nil {
			return r.errorAt(d.Pos, err)
		}
		return t.SetMetadata(kind, d.Meta.Value)
	}
	return r.errorAt(d.Pos, fmt.Errorf("empty directive"))
}

func (r *Recipe) content(block *contentBlock) (epub.Content, error) {
	c := epub.Content{Href: block.Path, Level: 1}
	for _, f := range block.Fields {
		switch {
		case f.Title != nil:
			c.Title = *f.Title
		case f.Level != nil:
			c.Level = *f.Level
		case f.Reference != nil:
			kind, err := epub.ParseReferenceKind(*f.Reference)
			if err != nil {
				return c, r.errorAt(f.Pos, err)
			}
			c.Reference = kind
		case f.Child != nil:
			level := 1
			if f.Child.Level != nil {
				level = *f.Child.Level
			}
			c.Children = append(c.Children, epub.NewNavElement(level, f.Child.Href, f.Child.Title))
		}
	}
	return c, nil
}

func (s *source) mediaType() string {
	if s.MediaType != nil {
		return *s.MediaType
	}
	return MediaType(s.Path)
}

func (r *Recipe) errorAt(pos lexer.Position, err error) error {
	return &apperrors.ParseError{
		Format:  "recipe",
		Path:    fmt.Sprintf("%s:%d:%d", r.Name, pos.Line, pos.Column),
		Message: err.Error(),
		Err:     err,
	}
}
