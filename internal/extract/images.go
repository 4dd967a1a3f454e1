package extract

import (
	"fmt"
	"path"
	"strings"

	"github.com/dgallion1/quizgest/internal/quizdoc"
)

// ResolveImages returns the resources declared by b in document order.
// An unknown reference is skipped for DOCX and fatal for HTML.
func ResolveImages(doc *quizdoc.Document, b quizdoc.Block) ([]*quizdoc.ImageResource, error) {
	var out []*quizdoc.ImageResource
	for _, ref := range b.Refs() {
		res := doc.Image(ref)
		if res == nil {
			if doc.Format == quizdoc.FormatHTML {
				return nil, &quizdoc.ImageNotFoundError{Ref: ref, Position: b.Position}
			}
			continue
		}
		out = append(out, res)
	}
	return out, nil
}

// imageName is the suggested sink name for the n-th image saved from doc.
func imageName(doc string, n int, img *quizdoc.ImageResource) string {
	ext := strings.ToLower(path.Ext(img.Name))
	if ext == "" && img.Format != "" {
		ext = "." + img.Format
	}
	if doc == "" {
		doc = "document"
	}
	return fmt.Sprintf("%s_image_%d%s", doc, n, ext)
}
