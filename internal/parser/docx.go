package parser

import (
	"archive/zip"
	"bytes"
	"errors"
	"strings"

	"github.com/dgallion1/quizgest/internal/quizdoc"
	"github.com/fumiama/go-docx"
)

const docxDocumentPart = "word/document.xml"

// DOCXReader handles .docx packages.
type DOCXReader struct{}

func (p *DOCXReader) Read(data []byte, filename string) (*quizdoc.Document, error) {
	if err := checkDOCXPackage(data); err != nil {
		return nil, &quizdoc.FormatError{Format: quizdoc.FormatDOCX, Err: err}
	}

	// go-docx needs a ReaderAt+size; the upload is already in memory.
	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, &quizdoc.FormatError{Format: quizdoc.FormatDOCX, Err: err}
	}

	out := &quizdoc.Document{
		Format: quizdoc.FormatDOCX,
		Name:   baseName(filename),
		Images: docxImages(doc),
	}

	var walk func(items []interface{})
	walk = func(items []interface{}) {
		for _, item := range items {
			switch it := item.(type) {
			case *docx.Paragraph:
				out.Blocks = append(out.Blocks, docxBlock(it, len(out.Blocks)))
			case *docx.Table:
				for _, row := range it.TableRows {
					if row == nil {
						continue
					}
					for _, cell := range row.TableCells {
						if cell == nil {
							continue
						}
						for _, para := range cell.Paragraphs {
							if para != nil {
								out.Blocks = append(out.Blocks, docxBlock(para, len(out.Blocks)))
							}
						}
						nested := make([]interface{}, 0, len(cell.Tables))
						for _, tbl := range cell.Tables {
							nested = append(nested, tbl)
						}
						walk(nested)
					}
				}
			}
		}
	}
	walk(doc.Document.Body.Items)

	if !hasText(out.Blocks) {
		return nil, &quizdoc.MissingContentError{Name: filename}
	}
	return out, nil
}

func checkDOCXPackage(data []byte) error {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return err
	}
	for _, f := range zr.File {
		if f.Name == docxDocumentPart {
			return nil
		}
	}
	return errors.New(docxDocumentPart + " not found in package")
}

// docxImages maps each internal image relationship id to its media part.
func docxImages(doc *docx.Docx) map[string]*quizdoc.ImageResource {
	images := make(map[string]*quizdoc.ImageResource)
	_ = doc.RangeRelationships(func(rel *docx.Relationship) error {
		if rel.Type != docx.REL_IMAGE || rel.TargetMode == docx.REL_TARGETMODE {
			return nil
		}
		name := strings.TrimPrefix(strings.TrimPrefix(rel.Target, "/word/"), "media/")
		m := doc.Media(name)
		if m == nil {
			return nil
		}
		images[rel.ID] = &quizdoc.ImageResource{
			ID:     rel.ID,
			Name:   m.Name,
			Data:   m.Data,
			Format: imageFormat(m.Name, m.Data),
		}
		return nil
	})
	return images
}

func docxBlock(para *docx.Paragraph, position int) quizdoc.Block {
	var runs []quizdoc.Run
	var refs []string
	addRun := func(r *docx.Run) {
		run, ids := docxRun(r)
		runs = append(runs, run)
		refs = append(refs, ids...)
	}
	for _, child := range para.Children {
		switch c := child.(type) {
		case *docx.Run:
			addRun(c)
		case *docx.Hyperlink:
			addRun(&c.Run)
		}
	}

	var buf strings.Builder
	for _, r := range runs {
		buf.WriteString(r.Text)
	}
	b := quizdoc.NewBlock(strings.TrimSpace(buf.String()), position, refs...)
	b.Runs = runs
	return b
}

func docxRun(r *docx.Run) (quizdoc.Run, []string) {
	var buf strings.Builder
	var refs []string
	for _, rc := range r.Children {
		switch c := rc.(type) {
		case *docx.Text:
			buf.WriteString(c.Text)
		case *docx.Tab:
			buf.WriteByte('\t')
		case *docx.BarterRabbet:
			buf.WriteByte('\n')
		case *docx.Drawing:
			refs = append(refs, drawingEmbeds(c)...)
		}
	}

	run := quizdoc.Run{Text: buf.String()}
	if r.RunProperties != nil && r.RunProperties.Color != nil {
		if c, ok := quizdoc.ParseHexColor(r.RunProperties.Color.Val); ok {
			run.Color = &c
		}
	}
	return run, refs
}

// drawingEmbeds returns the r:embed ids of pictures in an inline or anchored drawing.
func drawingEmbeds(d *docx.Drawing) []string {
	var graphics []*docx.AGraphic
	if d.Inline != nil {
		graphics = append(graphics, d.Inline.Graphic)
	}
	if d.Anchor != nil {
		graphics = append(graphics, d.Anchor.Graphic)
	}

	var ids []string
	for _, g := range graphics {
		if g == nil || g.GraphicData == nil || g.GraphicData.Pic == nil || g.GraphicData.Pic.BlipFill == nil {
			continue
		}
		if id := g.GraphicData.Pic.BlipFill.Blip.Embed; id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

func hasText(blocks []quizdoc.Block) bool {
	for _, b := range blocks {
		if b.Text != "" {
			return true
		}
	}
	return false
}
