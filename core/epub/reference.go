package epub

import (
	"fmt"
	"strings"
)

// ReferenceKind classifies a content document for the guide and landmarks
// sections. The zero value means the document has no classification.
type ReferenceKind int

const (
	ReferenceNone ReferenceKind = iota
	// ReferenceCover is the cover page, not the cover image.
	ReferenceCover
	ReferenceTitlePage
	ReferenceToc
	ReferenceIndex
	ReferenceGlossary
	ReferenceAcknowledgements
	ReferenceBibliography
	ReferenceColophon
	ReferenceCopyright
	ReferenceDedication
	ReferenceEpigraph
	ReferenceForeword
	// ReferenceLoi is the list of illustrations.
	ReferenceLoi
	// ReferenceLot is the list of tables.
	ReferenceLot
	ReferenceNotes
	ReferencePreface
	// ReferenceText marks the beginning of the body matter.
	ReferenceText
)

// referenceTokens holds the guide and landmark vocabulary for each kind.
var referenceTokens = map[ReferenceKind]struct{ name, guide, landmark string }{
	ReferenceCover:            {"cover", "cover", "cover"},
	ReferenceTitlePage:        {"titlepage", "title-page", "titlepage"},
	ReferenceToc:              {"toc", "toc", "toc"},
	ReferenceIndex:            {"index", "index", "index"},
	ReferenceGlossary:         {"glossary", "glossary", "glossary"},
	ReferenceAcknowledgements: {"acknowledgements", "acknowledgements", "acknowledgements"},
	ReferenceBibliography:     {"bibliography", "bibliography", "bibliography"},
	ReferenceColophon:         {"colophon", "colophon", "colophon"},
	ReferenceCopyright:        {"copyright", "copyright", "copyright-page"},
	ReferenceDedication:       {"dedication", "dedication", "dedication"},
	ReferenceEpigraph:         {"epigraph", "epigraph", "epigraph"},
	ReferenceForeword:         {"foreword", "foreword", "foreword"},
	ReferenceLoi:              {"loi", "loi", "loi"},
	ReferenceLot:              {"lot", "lot", "lot"},
	ReferenceNotes:            {"notes", "notes", "endnotes"},
	ReferencePreface:          {"preface", "preface", "preface"},
	ReferenceText:             {"text", "text", "bodymatter"},
}

// GuideType returns the OPF guide reference type, or "" for ReferenceNone.
func (k ReferenceKind) GuideType() string {
	return referenceTokens[k].guide
}

// LandmarkType returns the epub:type used in the landmarks nav, or "" for
// ReferenceNone.
func (k ReferenceKind) LandmarkType() string {
	return referenceTokens[k].landmark
}

func (k ReferenceKind) String() string {
	if k == ReferenceNone {
		return "none"
	}
	if t, ok := referenceTokens[k]; ok {
		return t.name
	}
	return fmt.Sprintf("ReferenceKind(%d)", int(k))
}

// ParseReferenceKind accepts the kind name or either of its tokens, so
// "text", "bodymatter", "title-page" and "titlepage" all resolve.
func ParseReferenceKind(s string) (ReferenceKind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for k, t := range referenceTokens {
		if s == t.name || s == t.guide || s == t.landmark {
			return k, nil
		}
	}
	return ReferenceNone, fmt.Errorf("unknown reference kind %q", s)
}

// Version selects the EPUB revision to emit.
type Version int

const (
	// V2 is EPUB 2.0.1.
	V2 Version = 2
	// V3 is EPUB 3.0.1.
	V3 Version = 3
)

func (v Version) String() string {
	switch v {
	case V2:
		return "2.0"
	case V3:
		return "3.0"
	default:
		return fmt.Sprintf("Version(%d)", int(v))
	}
}

// templateDir names the template set for the version.
func (v Version) templateDir() string {
	if v >= V3 {
		return "v3"
	}
	return "v2"
}

// ParseVersion accepts "2", "2.0", "2.0.1", "3", "3.0" and "3.0.1".
func ParseVersion(s string) (Version, error) {
	switch strings.TrimSpace(s) {
	case "2", "2.0", "2.0.1":
		return V2, nil
	case "3", "3.0", "3.0.1":
		return V3, nil
	default:
		return 0, fmt.Errorf("unsupported EPUB version %q", s)
	}
}
