package epub

import (
	"fmt"
	"strings"

	"github.com/FocuswithJustin/epubbuild/core/encoding"
)

// NavElement is a node of the table of contents. A node owns its children.
type NavElement struct {
	Level    int
	URL      string
	Title    string
	Children []NavElement
}

// NewNavElement returns a node at the given level. Levels below 1 become 1.
func NewNavElement(level int, url, title string) NavElement {
	return NavElement{Level: clampLevel(level), URL: url, Title: title}
}

// AddChild appends child to e. The child and its own subtree are pushed
// down so the child sits at least one level below e.
func (e *NavElement) AddChild(child NavElement) {
	child.relevel(e.Level + 1)
	e.Children = append(e.Children, child)
}

func (e *NavElement) relevel(min int) {
	if e.Level < min {
		e.Level = min
	}
	for i := range e.Children {
		e.Children[i].relevel(e.Level + 1)
	}
}

func (e NavElement) clone() NavElement {
	out := e
	if len(e.Children) > 0 {
		out.Children = make([]NavElement, len(e.Children))
		for i, c := range e.Children {
			out.Children[i] = c.clone()
		}
	}
	return out
}

func clampLevel(level int) int {
	if level < 1 {
		return 1
	}
	return level
}

// NavPoint is one entry of the flattened navigation map, in depth-first
// order. PlayOrder starts at 1.
type NavPoint struct {
	URL       string
	Title     string
	PlayOrder int
	Depth     int
}

// Toc is the table of contents forest.
type Toc struct {
	elements []NavElement
}

// NewToc returns an empty table of contents.
func NewToc() *Toc {
	return &Toc{}
}

// Add inserts a node built from level, url and title.
func (t *Toc) Add(level int, url, title string) {
	t.AddElement(NewNavElement(level, url, title))
}

// AddElement inserts elem and its subtree.
//
// The insertion point is found by walking the chain of most recently
// inserted nodes from the last root downwards while the chain node is
// shallower than elem. elem becomes the last child of the deepest node
// reached, or a new root when no root is shallower. A level that skips
// ahead therefore attaches to the deepest ancestor available.
func (t *Toc) AddElement(elem NavElement) {
	elem.relevel(clampLevel(elem.Level))

	var parent *NavElement
	siblings := &t.elements
	for len(*siblings) > 0 {
		last := &(*siblings)[len(*siblings)-1]
		if last.Level >= elem.Level {
			break
		}
		parent = last
		siblings = &last.Children
	}

	if parent == nil {
		t.elements = append(t.elements, elem)
		return
	}
	parent.AddChild(elem)
}

// Elements returns a deep copy of the forest.
func (t *Toc) Elements() []NavElement {
	out := make([]NavElement, len(t.elements))
	for i, e := range t.elements {
		out[i] = e.clone()
	}
	return out
}

// Len returns the number of root nodes.
func (t *Toc) Len() int {
	return len(t.elements)
}

// Depth returns the deepest nesting of titled nodes, at least 1.
func (t *Toc) Depth() int {
	depth := 1
	var walk func(elems []NavElement, d int)
	walk = func(elems []NavElement, d int) {
		for _, e := range elems {
			if e.Title == "" {
				continue
			}
			if d > depth {
				depth = d
			}
			walk(e.Children, d+1)
		}
	}
	walk(t.elements, 1)
	return depth
}

// NavPoints flattens the forest depth-first. Untitled nodes and their
// subtrees are left out.
func (t *Toc) NavPoints() []NavPoint {
	var points []NavPoint
	var walk func(elems []NavElement, d int)
	walk = func(elems []NavElement, d int) {
		for _, e := range elems {
			if e.Title == "" {
				continue
			}
			points = append(points, NavPoint{
				URL:       e.URL,
				Title:     e.Title,
				PlayOrder: len(points) + 1,
				Depth:     d,
			})
			walk(e.Children, d+1)
		}
	}
	walk(t.elements, 1)
	return points
}

// Render serialises the forest as a nested <ol> (numbered) or <ul> list.
func (t *Toc) Render(numbered bool) string {
	tag := "ul"
	if numbered {
		tag = "ol"
	}
	var b strings.Builder
	for _, e := range t.elements {
		b.WriteString(renderItem(e, tag))
	}
	return list(tag, b.String())
}

// RenderNavDocument is the numbered rendering embedded in nav.xhtml.
func (t *Toc) RenderNavDocument() string {
	return t.Render(true)
}

func list(tag, items string) string {
	return "<" + tag + ">\n" + encoding.Indent(items, 1) + "</" + tag + ">\n"
}

func renderItem(e NavElement, tag string) string {
	if e.Title == "" {
		return ""
	}
	link := fmt.Sprintf(`<a href="%s">%s</a>`, encoding.EscapeXMLAttr(e.URL), encoding.EscapeXMLText(e.Title))

	var children strings.Builder
	for _, c := range e.Children {
		children.WriteString(renderItem(c, tag))
	}
	if children.Len() == 0 {
		return "<li>" + link + "</li>\n"
	}
	return "<li>" + link + "\n" + encoding.Indent(list(tag, children.String()), 1) + "</li>\n"
}

// RenderNCX serialises the forest as the navPoint elements of toc.ncx,
// indented to sit inside navMap. Ids and play orders follow NavPoints.
func (t *Toc) RenderNCX() string {
	var b strings.Builder
	order := 0
	for _, e := range t.elements {
		b.WriteString(renderNavPoint(e, &order))
	}
	return encoding.Indent(b.String(), 2)
}

func renderNavPoint(e NavElement, order *int) string {
	if e.Title == "" {
		return ""
	}
	*order++
	id := *order

	var b strings.Builder
	fmt.Fprintf(&b, "<navPoint id=\"navPoint-%d\" playOrder=\"%d\">\n", id, id)
	fmt.Fprintf(&b, "  <navLabel>\n    <text>%s</text>\n  </navLabel>\n", encoding.EscapeXMLText(e.Title))
	fmt.Fprintf(&b, "  <content src=\"%s\"/>\n", encoding.EscapeXMLAttr(e.URL))

	var children strings.Builder
	for _, c := range e.Children {
		children.WriteString(renderNavPoint(c, order))
	}
	b.WriteString(encoding.Indent(children.String(), 1))
	b.WriteString("</navPoint>\n")
	return b.String()
}
