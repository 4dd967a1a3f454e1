package quizdoc

import (
	"iter"
	"slices"
)

// Format identifies the source container of a quiz document.
type Format string

const (
	FormatDOCX Format = "docx"
	FormatHTML Format = "html"
)

// Document is the reader output for one quiz file.
type Document struct {
	Format Format
	Name   string  // Base filename without extension
	Blocks []Block // Document order
	Images map[string]*ImageResource

	// AnswerClasses are the CSS classes that mark the correct answer (HTML only).
	AnswerClasses []string
}

// All returns the blocks in document order. The sequence can be ranged over
// any number of times.
func (d *Document) All() iter.Seq[Block] {
	return func(yield func(Block) bool) {
		for _, b := range d.Blocks {
			if !yield(b) {
				return
			}
		}
	}
}

// Image returns the resource registered under id, or nil.
func (d *Document) Image(id string) *ImageResource {
	if d.Images == nil {
		return nil
	}
	return d.Images[id]
}

// Block is one paragraph-level unit of document text.
type Block struct {
	Text     string // Trimmed paragraph text
	Runs     []Run  // DOCX formatting runs
	Spans    []Span // HTML formatting spans
	Position int    // Zero-based document order

	refs []string
}

// NewBlock builds a block that declares the given relationship ids or image refs.
func NewBlock(text string, position int, refs ...string) Block {
	return Block{Text: text, Position: position, refs: refs}
}

// WithRefs returns a copy of b declaring refs in addition to its own.
func (b Block) WithRefs(refs ...string) Block {
	b.refs = append(slices.Clone(b.refs), refs...)
	return b
}

// Declares reports whether the block's node references the relationship id.
func (b Block) Declares(id string) bool {
	return slices.Contains(b.refs, id)
}

// Refs returns the declared references in the order they appear.
func (b Block) Refs() []string {
	return slices.Clone(b.refs)
}

// Run is a formatted DOCX text span. Color is nil unless set explicitly.
type Run struct {
	Text  string
	Color *RGB
}

// Span is a formatted HTML text span.
type Span struct {
	Text    string
	Classes []string
}

// HasClass reports whether the span carries any of the given classes.
func (s Span) HasClass(classes ...string) bool {
	for _, c := range classes {
		if slices.Contains(s.Classes, c) {
			return true
		}
	}
	return false
}

// ImageResource is one embedded binary asset.
type ImageResource struct {
	ID     string // Relationship id (DOCX) or basename (HTML)
	Name   string // Name inside the package, e.g. "image1.png"
	Data   []byte
	Format string // png, jpeg, gif, webp, or the lowercase file extension
}
