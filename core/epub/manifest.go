package epub

import "strings"

// CoverImageID is the manifest id given to the cover image.
const CoverImageID = "cover-image"

// Item is a manifest entry.
type Item struct {
	ID        string
	MediaType string
	Href      string
	// CoverImage is set for the cover of an EPUB 3 package.
	CoverImage bool
}

// Reference is a guide or landmark entry.
type Reference struct {
	Type  string
	Title string
	Href  string
}

// ManifestData is everything the package documents are rendered from.
type ManifestData struct {
	Metadata  Metadata
	Version   Version
	Items     []Item
	Spine     []string
	Guide     []Reference
	Landmarks []Reference
	NavPoints []NavPoint
	// NavTree is the numbered rendering used by nav.xhtml.
	NavTree string
	// InlineNavTree is the unnumbered rendering used by toc.xhtml.
	InlineNavTree string
	NCX           string
	Depth         int
	HasCover      bool
}

// IsV3 reports whether EPUB 3 documents are rendered.
func (d ManifestData) IsV3() bool {
	return d.Version >= V3
}

// Assemble derives the manifest, spine, guide, landmarks and navigation
// data. It does not modify its inputs.
func Assemble(reg *Registry, toc *Toc, meta Metadata, v Version) ManifestData {
	data := ManifestData{
		Metadata:      meta.clone(),
		Version:       v,
		NavPoints:     toc.NavPoints(),
		NavTree:       toc.RenderNavDocument(),
		InlineNavTree: toc.Render(false),
		NCX:           toc.RenderNCX(),
		Depth:         toc.Depth(),
	}

	for _, res := range reg.resources {
		href := strings.ReplaceAll(res.Path, `\`, "/")
		id := SanitizeID(res.Path)
		if res.Cover {
			id = CoverImageID
			data.HasCover = true
		}

		data.Items = append(data.Items, Item{
			ID:         id,
			MediaType:  res.MediaType,
			Href:       href,
			CoverImage: res.Cover && v >= V3,
		})

		if res.Spine {
			data.Spine = append(data.Spine, id)
		}

		if res.Reference == ReferenceNone || res.Title == "" {
			continue
		}
		data.Guide = append(data.Guide, Reference{
			Type:  res.Reference.GuideType(),
			Title: res.Title,
			Href:  href,
		})
		if v >= V3 {
			data.Landmarks = append(data.Landmarks, Reference{
				Type:  res.Reference.LandmarkType(),
				Title: res.Title,
				Href:  href,
			})
		}
	}

	return data
}
