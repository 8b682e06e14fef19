package xml

import (
	"strings"
	"testing"
)

const sampleOPF = `<?xml version="1.0" encoding="UTF-8"?>
<package xmlns="http://www.idpf.org/2007/opf" version="3.0" unique-identifier="epub-id-1">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/">
    <dc:identifier id="epub-id-1">urn:uuid:1234</dc:identifier>
    <dc:title>Moby &amp; Dick</dc:title>
    <dc:creator>Herman</dc:creator>
    <dc:creator>Melville</dc:creator>
  </metadata>
  <manifest>
    <item id="cover-image" href="cover.png" media-type="image/png" properties="cover-image"/>
    <item id="chapter_1.xhtml" href="chapter_1.xhtml" media-type="application/xhtml+xml"/>
  </manifest>
  <spine toc="ncx">
    <itemref idref="chapter_1.xhtml"/>
  </spine>
</package>`

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		xml     string
		wantErr bool
	}{
		{"package document", sampleOPF, false},
		{"unclosed tag", "<root><element></root>", true},
		{"mismatched tags", "<root></other>", true},
		{"invalid chars", "<root>\x00</root>", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Parse([]byte(tt.xml))
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && doc.Root().Name() != "package" {
				t.Errorf("Root().Name() = %q, want package", doc.Root().Name())
			}
		})
	}
}

func TestValidate(t *testing.T) {
	if result := Validate([]byte(sampleOPF)); !result.Valid {
		t.Errorf("package document should be well-formed: %v", result.Errors)
	}

	result := Validate([]byte("<root>\n  <a></b>\n</root>"))
	if result.Valid {
		t.Fatal("mismatched tags should be reported")
	}
	if len(result.Errors) != 1 {
		t.Fatalf("got %d errors, want 1", len(result.Errors))
	}
	if result.Errors[0].Line != 2 {
		t.Errorf("Line = %d, want 2", result.Errors[0].Line)
	}
	if !strings.HasPrefix(result.Errors[0].String(), "2:") {
		t.Errorf("String() = %q", result.Errors[0].String())
	}
}

func TestValidateDoesNotExpandEntities(t *testing.T) {
	data := `<?xml version="1.0"?><!DOCTYPE r [<!ENTITY x "boom">]><r>&x;</r>`
	if Validate([]byte(data)).Valid {
		t.Error("undeclared entity reference should not validate")
	}
}

func TestXPath(t *testing.T) {
	doc, err := Parse([]byte(sampleOPF))
	if err != nil {
		t.Fatal(err)
	}

	items, err := doc.XPath("//manifest/item")
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	if got := items[0].Attr("media-type"); got != "image/png" {
		t.Errorf("media-type = %q", got)
	}
	if got := items[1].Attr("id"); got != "chapter_1.xhtml" {
		t.Errorf("id = %q", got)
	}

	title, err := doc.XPathFirst("//*[local-name()='title']")
	if err != nil {
		t.Fatal(err)
	}
	if title.Text() != "Moby & Dick" {
		t.Errorf("title = %q", title.Text())
	}

	creators, err := doc.XPath("//metadata/*[local-name()='creator']")
	if err != nil {
		t.Fatal(err)
	}
	if len(creators) != 2 || creators[1].Text() != "Melville" {
		t.Errorf("creators = %d", len(creators))
	}
}

func TestXPathRelativeToNode(t *testing.T) {
	doc, err := Parse([]byte(sampleOPF))
	if err != nil {
		t.Fatal(err)
	}
	spine, err := doc.XPathFirst("//spine")
	if err != nil || spine == nil {
		t.Fatalf("spine: %v", err)
	}
	refs, err := spine.XPath("itemref")
	if err != nil {
		t.Fatal(err)
	}
	if len(refs) != 1 || refs[0].Attr("idref") != "chapter_1.xhtml" {
		t.Errorf("itemrefs = %v", refs)
	}
	if spine.Attr("toc") != "ncx" {
		t.Errorf("toc attr = %q", spine.Attr("toc"))
	}
}

func TestXPathFirstNotFound(t *testing.T) {
	doc, err := Parse([]byte(sampleOPF))
	if err != nil {
		t.Fatal(err)
	}
	node, err := doc.XPathFirst("//guide")
	if err != nil {
		t.Fatal(err)
	}
	if node != nil {
		t.Error("XPathFirst should return nil for no match")
	}
}

func TestXPathInvalidExpression(t *testing.T) {
	doc, err := Parse([]byte(sampleOPF))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := doc.XPath("//[invalid"); err == nil {
		t.Error("XPath should fail on an invalid expression")
	}
	if _, err := doc.XPathFirst("//[invalid"); err == nil {
		t.Error("XPathFirst should fail on an invalid expression")
	}
}

func TestPrefixedAttr(t *testing.T) {
	data := `<html xmlns="http://www.w3.org/1999/xhtml" xmlns:epub="http://www.idpf.org/2007/ops">
<body><nav epub:type="landmarks" id="landmarks"/></body></html>`
	doc, err := Parse([]byte(data))
	if err != nil {
		t.Fatal(err)
	}
	nav, err := doc.XPathFirst("//nav")
	if err != nil || nav == nil {
		t.Fatalf("nav: %v", err)
	}
	if got := nav.Attr("epub:type"); got != "landmarks" {
		t.Errorf(`Attr("epub:type") = %q`, got)
	}
	if got := nav.Attr("type"); got != "landmarks" {
		t.Errorf(`Attr("type") = %q`, got)
	}
	if got := nav.Attr("missing"); got != "" {
		t.Errorf(`Attr("missing") = %q`, got)
	}
}

func TestNodeChildren(t *testing.T) {
	doc, err := Parse([]byte(sampleOPF))
	if err != nil {
		t.Fatal(err)
	}
	children := doc.Root().Children()
	var names []string
	for _, c := range children {
		names = append(names, c.Name())
	}
	if got := strings.Join(names, ","); got != "metadata,manifest,spine" {
		t.Errorf("children = %s", got)
	}
}

func TestNilNode(t *testing.T) {
	var n *Node
	if n.Name() != "" || n.Text() != "" || n.Attr("id") != "" || n.Children() != nil {
		t.Error("nil node accessors should return zero values")
	}
	if nodes, err := n.XPath("x"); nodes != nil || err != nil {
		t.Error("nil node XPath should return nothing")
	}
	if (&Document{}).Root() != nil {
		t.Error("empty document should have no root")
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		indent string
		want   []string
	}{
		{
			name:  "nested elements",
			input: `<root><child>text</child></root>`,
			want:  []string{"<root>\n  <child>text</child>\n</root>\n"},
		},
		{
			name:   "tabs",
			input:  `<root><child/></root>`,
			indent: "\t",
			want:   []string{"\t<child/>"},
		},
		{
			name:  "declaration",
			input: `<?xml version="1.0" encoding="UTF-8"?><root/>`,
			want:  []string{`<?xml version="1.0" encoding="UTF-8"?>`, "<root/>"},
		},
		{
			name:  "prefixed elements and namespace declarations",
			input: `<metadata xmlns:dc="http://purl.org/dc/elements/1.1/"><dc:title>T</dc:title></metadata>`,
			want:  []string{`xmlns:dc="http://purl.org/dc/elements/1.1/"`, "<dc:title>T</dc:title>"},
		},
		{
			name:  "escapes text and attributes",
			input: `<root a="&quot;x&quot;">a &lt; b &amp; c</root>`,
			want:  []string{"a &lt; b &amp; c", `a="&quot;x&quot;"`},
		},
		{
			name:  "comments",
			input: `<root><!-- note --><a/></root>`,
			want:  []string{"<!-- note -->"},
		},
		{
			name:  "cdata",
			input: `<root><![CDATA[<b>]]></root>`,
			want:  []string{"<![CDATA[<b>]]>"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Format([]byte(tt.input), FormatOptions{Indent: tt.indent})
			if err != nil {
				t.Fatalf("Format() error = %v", err)
			}
			for _, w := range tt.want {
				if !strings.Contains(string(out), w) {
					t.Errorf("Format() = %q, want it to contain %q", out, w)
				}
			}
		})
	}
}

func TestFormatInvalidXML(t *testing.T) {
	if _, err := Format([]byte("<root><a></root>"), FormatOptions{}); err == nil {
		t.Error("Format should fail on malformed input")
	}
}
