package epub

import "io"

// Resource is a file registered for the package manifest.
type Resource struct {
	Path      string
	MediaType string
	// Spine marks a reading-order document.
	Spine bool
	// Cover marks the cover image; it always gets the id "cover-image".
	Cover     bool
	Reference ReferenceKind
	Title     string
}

// Registry keeps resources in insertion order.
type Registry struct {
	resources []Resource
}

// Add appends r. Paths are not deduplicated.
func (r *Registry) Add(res Resource) {
	r.resources = append(r.resources, res)
}

// Resources returns a copy of the registered resources.
func (r *Registry) Resources() []Resource {
	return append([]Resource(nil), r.resources...)
}

// Len returns the number of registered resources.
func (r *Registry) Len() int {
	return len(r.resources)
}

// Content is a reading-order document together with its table of contents
// hints. Content without a Title is listed in the manifest and spine but
// gets no navigation entry.
type Content struct {
	Href      string
	Body      io.Reader
	Title     string
	Level     int
	Children  []NavElement
	Reference ReferenceKind
}

func (c Content) navElement() NavElement {
	elem := NewNavElement(c.Level, c.Href, c.Title)
	for _, child := range c.Children {
		elem.AddChild(child)
	}
	return elem
}
