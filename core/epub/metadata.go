package epub

import (
	"fmt"
	"strings"
)

// MetadataKind names a metadata field.
type MetadataKind int

const (
	MetaTitle MetadataKind = iota
	MetaLang
	MetaGenerator
	MetaTocName
	MetaLicense
	MetaIdentifier
	MetaAuthor
	MetaSubject
	MetaDescription
)

var metadataNames = [...]string{
	MetaTitle:       "title",
	MetaLang:        "lang",
	MetaGenerator:   "generator",
	MetaTocName:     "toc_name",
	MetaLicense:     "license",
	MetaIdentifier:  "identifier",
	MetaAuthor:      "author",
	MetaSubject:     "subject",
	MetaDescription: "description",
}

func (k MetadataKind) String() string {
	if k >= 0 && int(k) < len(metadataNames) {
		return metadataNames[k]
	}
	return fmt.Sprintf("MetadataKind(%d)", int(k))
}

// ParseMetadataKind resolves a field name such as "author" or "toc_name".
// "language" is accepted for "lang".
func ParseMetadataKind(s string) (MetadataKind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "language" {
		return MetaLang, nil
	}
	for k, name := range metadataNames {
		if name == s {
			return MetadataKind(k), nil
		}
	}
	return 0, fmt.Errorf("unknown metadata field %q", s)
}

// Default metadata values.
const (
	DefaultLang      = "en"
	DefaultGenerator = "epubbuild"
	DefaultTocName   = "Table Of Contents"
)

// Metadata describes the book.
type Metadata struct {
	Title      string
	Lang       string
	Generator  string
	TocName    string
	License    string
	Identifier string

	Authors      []string
	Subjects     []string
	Descriptions []string
}

// NewMetadata returns metadata with the default language, generator and
// table of contents name.
func NewMetadata() Metadata {
	return Metadata{
		Lang:      DefaultLang,
		Generator: DefaultGenerator,
		TocName:   DefaultTocName,
	}
}

// Set assigns a field. Single-valued fields are overwritten. Multi-valued
// fields (author, subject, description) append value, and an empty value
// clears every previous entry.
func (m *Metadata) Set(kind MetadataKind, value string) error {
	switch kind {
	case MetaTitle:
		m.Title = value
	case MetaLang:
		m.Lang = value
	case MetaGenerator:
		m.Generator = value
	case MetaTocName:
		m.TocName = value
	case MetaLicense:
		m.License = value
	case MetaIdentifier:
		m.Identifier = value
	case MetaAuthor:
		m.Authors = appendOrClear(m.Authors, value)
	case MetaSubject:
		m.Subjects = appendOrClear(m.Subjects, value)
	case MetaDescription:
		m.Descriptions = appendOrClear(m.Descriptions, value)
	default:
		return fmt.Errorf("unknown metadata field %v", kind)
	}
	return nil
}

func appendOrClear(values []string, value string) []string {
	if value == "" {
		return nil
	}
	return append(values, value)
}

func (m Metadata) clone() Metadata {
	m.Authors = append([]string(nil), m.Authors...)
	m.Subjects = append([]string(nil), m.Subjects...)
	m.Descriptions = append([]string(nil), m.Descriptions...)
	return m
}
