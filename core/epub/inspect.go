package epub

import (
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"

	"github.com/FocuswithJustin/epubbuild/core/archive"
	apperrors "github.com/FocuswithJustin/epubbuild/core/errors"
	"github.com/FocuswithJustin/epubbuild/core/xml"
)

// Package is what Inspect reads back from a finished container.
type Package struct {
	OPFPath    string
	Version    string
	Identifier string
	Title      string
	Language   string
	Authors    []string
	Items      []Item
	Spine      []string
	Guide      []Reference
	Landmarks  []Reference
	NavPoints  []NavPoint
	Entries    []archive.Entry
	// Problems lists marker violations and XML documents that are not
	// well-formed. Inspection continues past them.
	Problems []string
}

// Inspect reads the container in r and parses its package documents.
func Inspect(r io.ReaderAt, size int64) (*Package, error) {
	ar, err := archive.NewReader(r, size)
	if err != nil {
		return nil, apperrors.NewIO("read", "archive", err)
	}

	pkg := &Package{}
	if pkg.Entries, err = ar.Entries(); err != nil {
		return nil, apperrors.NewIO("read", "archive", err)
	}
	if err := ar.CheckMarker(); err != nil {
		pkg.Problems = append(pkg.Problems, err.Error())
	}
	for _, e := range pkg.Entries {
		if !isXMLEntry(e.Name) {
			continue
		}
		data, err := ar.ReadFile(e.Name)
		if err != nil {
			return nil, apperrors.NewIO("read", e.Name, err)
		}
		for _, v := range xml.Validate(data).Errors {
			pkg.Problems = append(pkg.Problems, fmt.Sprintf("%s:%s", e.Name, v))
		}
	}

	if pkg.OPFPath, err = rootfile(ar); err != nil {
		return nil, err
	}
	opf, err := parseEntry(ar, pkg.OPFPath, "OPF")
	if err != nil {
		return nil, err
	}
	if err := pkg.readOPF(opf); err != nil {
		return nil, err
	}

	base := path.Dir(pkg.OPFPath)
	for _, item := range opfItems(opf) {
		target := path.Join(base, item.Href)
		switch {
		case item.MediaType == "application/x-dtbncx+xml":
			doc, err := parseEntry(ar, target, "NCX")
			if err != nil {
				return nil, err
			}
			pkg.NavPoints = readNavPoints(doc)
		case hasProperty(item.properties, "nav"):
			doc, err := parseEntry(ar, target, "navigation document")
			if err != nil {
				return nil, err
			}
			pkg.Landmarks = readLandmarks(doc)
		}
	}
	return pkg, nil
}

func isXMLEntry(name string) bool {
	switch strings.ToLower(path.Ext(name)) {
	case ".xml", ".opf", ".ncx", ".xhtml":
		return true
	}
	return false
}

func parseEntry(ar *archive.Reader, name, format string) (*xml.Document, error) {
	data, err := ar.ReadFile(name)
	if err != nil {
		return nil, &apperrors.ParseError{Format: format, Path: name, Message: "entry missing", Err: err}
	}
	doc, err := xml.Parse(data)
	if err != nil {
		return nil, &apperrors.ParseError{Format: format, Path: name, Message: err.Error(), Err: err}
	}
	return doc, nil
}

func rootfile(ar *archive.Reader) (string, error) {
	doc, err := parseEntry(ar, ContainerPath, "container")
	if err != nil {
		return "", err
	}
	node, err := doc.XPathFirst("//rootfile")
	if err != nil {
		return "", err
	}
	if node == nil || node.Attr("full-path") == "" {
		return "", apperrors.NewParse("container", ContainerPath, "no rootfile")
	}
	return node.Attr("full-path"), nil
}

func metadataField(doc *xml.Document, name string) []*xml.Node {
	nodes, _ := doc.XPath("//metadata/*[local-name()='" + name + "']")
	return nodes
}

func (p *Package) readOPF(doc *xml.Document) error {
	root := doc.Root()
	if root == nil || root.Name() != "package" {
		return apperrors.NewParse("OPF", p.OPFPath, "missing package element")
	}
	p.Version = root.Attr("version")

	uid := root.Attr("unique-identifier")
	for i, n := range metadataField(doc, "identifier") {
		if i == 0 || n.Attr("id") == uid {
			p.Identifier = n.Text()
		}
	}
	if n := metadataField(doc, "title"); len(n) > 0 {
		p.Title = n[0].Text()
	}
	if n := metadataField(doc, "language"); len(n) > 0 {
		p.Language = n[0].Text()
	}
	for _, n := range metadataField(doc, "creator") {
		p.Authors = append(p.Authors, n.Text())
	}

	for _, item := range opfItems(doc) {
		p.Items = append(p.Items, item.Item)
	}

	refs, err := doc.XPath("//spine/itemref")
	if err != nil {
		return err
	}
	for _, n := range refs {
		p.Spine = append(p.Spine, n.Attr("idref"))
	}

	guide, err := doc.XPath("//guide/reference")
	if err != nil {
		return err
	}
	for _, n := range guide {
		p.Guide = append(p.Guide, Reference{Type: n.Attr("type"), Title: n.Attr("title"), Href: n.Attr("href")})
	}
	return nil
}

type opfItem struct {
	Item
	properties string
}

// opfItems lists manifest items with their raw href and properties.
func opfItems(doc *xml.Document) []opfItem {
	nodes, _ := doc.XPath("//manifest/item")
	items := make([]opfItem, 0, len(nodes))
	for _, n := range nodes {
		props := n.Attr("properties")
		items = append(items, opfItem{
			Item: Item{
				ID:         n.Attr("id"),
				MediaType:  n.Attr("media-type"),
				Href:       n.Attr("href"),
				CoverImage: hasProperty(props, "cover-image"),
			},
			properties: props,
		})
	}
	return items
}

func hasProperty(props, want string) bool {
	for _, p := range strings.Fields(props) {
		if p == want {
			return true
		}
	}
	return false
}

func readNavPoints(doc *xml.Document) []NavPoint {
	navMap, _ := doc.XPathFirst("//navMap")
	var points []NavPoint
	var walk func(n *xml.Node, depth int)
	walk = func(n *xml.Node, depth int) {
		for _, child := range n.Children() {
			if child.Name() != "navPoint" {
				continue
			}
			order, _ := strconv.Atoi(child.Attr("playOrder"))
			point := NavPoint{PlayOrder: order, Depth: depth}
			if label, _ := child.XPath("navLabel/text"); len(label) > 0 {
				point.Title = label[0].Text()
			}
			if content, _ := child.XPath("content"); len(content) > 0 {
				point.URL = content[0].Attr("src")
			}
			points = append(points, point)
			walk(child, depth+1)
		}
	}
	if navMap != nil {
		walk(navMap, 1)
	}
	return points
}

func readLandmarks(doc *xml.Document) []Reference {
	navs, _ := doc.XPath("//nav")
	var refs []Reference
	for _, nav := range navs {
		if nav.Attr("epub:type") != "landmarks" {
			continue
		}
		links, _ := nav.XPath(".//a")
		for _, a := range links {
			refs = append(refs, Reference{Type: a.Attr("epub:type"), Title: a.Text(), Href: a.Attr("href")})
		}
	}
	return refs
}
