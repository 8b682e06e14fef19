package recipe

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// file is the root of the recipe grammar.
//
// Example:
//
//	# Moby Dick
//	version 3
//	title "Moby Dick"
//	author "Herman Melville"
//	stylesheet "style.css"
//	cover "images/cover.png" from "art/cover.png"
//	inline_toc
//	content "chapter_1.xhtml" from "text/ch1.xhtml.xz" {
//	    title "Loomings"
//	    reference text
//	    child "chapter_1.xhtml#s1" "Section 1"
//	}
//
//nolint:govet // participle grammar tags are not standard struct tags
type file struct {
	Directives []*directive `@@*`
}

//nolint:govet // participle grammar tags are not standard struct tags
type directive struct {
	Pos lexer.Position

	InlineToc  bool          `  @"inline_toc"`
	Version    *string       `| "version" @(String | Version | Int)`
	Stylesheet *string       `| "stylesheet" @String`
	Cover      *source       `| "cover" @@`
	Resource   *source       `| "resource" @@`
	Content    *contentBlock `| "content" @@`
	Meta       *meta         `| @@`
}

//nolint:govet // participle grammar tags are not standard struct tags
type meta struct {
	Key   string `@Ident`
	Value string `@String`
}

//nolint:govet // participle grammar tags are not standard struct tags
type source struct {
	Path      string  `@String`
	From      string  `"from" @String`
	MediaType *string `( "as" @String )?`
}

//nolint:govet // participle grammar tags are not standard struct tags
type contentBlock struct {
	Path   string          `@String`
	From   string          `"from" @String`
	Fields []*contentField `( "{" @@* "}" )?`
}

//nolint:govet // participle grammar tags are not standard struct tags
type contentField struct {
	Pos lexer.Position

	Title     *string `  "title" @String`
	Level     *int    `| "level" @Int`
	Reference *string `| "reference" @(String | Ident)`
	Child     *child  `| "child" @@`
}

//nolint:govet // participle grammar tags are not standard struct tags
type child struct {
	Href  string `@String`
	Title string `@String`
	Level *int   `@Int?`
}

// recipeLexer tokenises recipe files. Version must come before Int so that
// "3.0" is one token.
var recipeLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `#[^\n]*`},
	{Name: "String", Pattern: `"(\\.|[^"\\])*"`},
	{Name: "Version", Pattern: `[0-9]+(\.[0-9]+)+`},
	{Name: "Int", Pattern: `[0-9]+`},
	{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_-]*`},
	{Name: "Punct", Pattern: `[{}]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var recipeParser = participle.MustBuild[file](
	participle.Lexer(recipeLexer),
	participle.Elide("Comment", "Whitespace"),
	participle.Unquote("String"),
	participle.UseLookahead(2),
)
