package parser

import (
	"archive/zip"
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/dgallion1/quizgest/internal/quizdoc"
	"github.com/fumiama/go-docx"
)

// createTestPNG creates a minimal PNG image with the given dimensions.
func createTestPNG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetRGBA(x, y, color.RGBA{R: 100, G: 150, B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("creating test PNG: %v", err)
	}
	return buf.Bytes()
}

func writeDOCX(t *testing.T, w *docx.Docx) []byte {
	t.Helper()
	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		t.Fatalf("writing docx: %v", err)
	}
	return buf.Bytes()
}

func quizDOCX(t *testing.T) []byte {
	t.Helper()
	w := docx.New().WithDefaultTheme()
	w.AddParagraph().AddText("Q1 stem")
	w.AddParagraph().AddText("A) opt1")
	p := w.AddParagraph()
	p.AddText("B) ")
	p.AddText("opt2").Color("FF0000")
	pic := w.AddParagraph()
	if _, err := pic.AddInlineDrawing(createTestPNG(t, 4, 3)); err != nil {
		t.Fatalf("adding drawing: %v", err)
	}
	tbl := w.AddTable(1, 1, 0, nil)
	tbl.TableRows[0].TableCells[0].AddParagraph().AddText("Q2 in a table")
	w.AddParagraph().AddText("A) x").Color("0000FF")
	return writeDOCX(t, w)
}

func TestDOCXReaderBlocks(t *testing.T) {
	doc, err := (&DOCXReader{}).Read(quizDOCX(t), "quiz.docx")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if doc.Format != quizdoc.FormatDOCX || doc.Name != "quiz" {
		t.Errorf("format=%s name=%q", doc.Format, doc.Name)
	}

	var texts []string
	for b := range doc.All() {
		texts = append(texts, b.Text)
	}
	want := []string{"Q1 stem", "A) opt1", "B) opt2", "", "Q2 in a table", "A) x"}
	if len(texts) != len(want) {
		t.Fatalf("blocks = %q, want %q", texts, want)
	}
	for i := range want {
		if texts[i] != want[i] {
			t.Errorf("block %d = %q, want %q", i, texts[i], want[i])
		}
		if doc.Blocks[i].Position != i {
			t.Errorf("block %d position = %d", i, doc.Blocks[i].Position)
		}
	}
}

func TestDOCXReaderRunColors(t *testing.T) {
	doc, err := (&DOCXReader{}).Read(quizDOCX(t), "quiz.docx")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	runs := doc.Blocks[2].Runs
	if len(runs) != 2 {
		t.Fatalf("runs = %+v", runs)
	}
	if runs[0].Color != nil {
		t.Errorf("first run color = %v, want nil", runs[0].Color)
	}
	if runs[1].Text != "opt2" || runs[1].Color == nil || *runs[1].Color != quizdoc.Red {
		t.Errorf("second run = %+v", runs[1])
	}
	last := doc.Blocks[5].Runs
	if len(last) != 1 || last[0].Color == nil || *last[0].Color != (quizdoc.RGB{B: 0xFF}) {
		t.Errorf("blue run = %+v", last)
	}
}

func TestDOCXReaderImages(t *testing.T) {
	doc, err := (&DOCXReader{}).Read(quizDOCX(t), "quiz.docx")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(doc.Images) != 1 {
		t.Fatalf("images = %d, want 1", len(doc.Images))
	}
	refs := doc.Blocks[3].Refs()
	if len(refs) != 1 {
		t.Fatalf("image paragraph refs = %v", refs)
	}
	img := doc.Image(refs[0])
	if img == nil {
		t.Fatalf("ref %q does not resolve", refs[0])
	}
	if img.Format != "png" || img.Name != "image1.png" || len(img.Data) == 0 {
		t.Errorf("image = %s %s %d bytes", img.Format, img.Name, len(img.Data))
	}
	for i, b := range doc.Blocks {
		if i != 3 && len(b.Refs()) != 0 {
			t.Errorf("block %d unexpectedly declares %v", i, b.Refs())
		}
	}
}

func TestDOCXReaderEmptyDocument(t *testing.T) {
	w := docx.New().WithDefaultTheme()
	w.AddParagraph()
	_, err := (&DOCXReader{}).Read(writeDOCX(t, w), "empty.docx")
	var mc *quizdoc.MissingContentError
	if !errors.As(err, &mc) {
		t.Fatalf("err = %v, want MissingContentError", err)
	}
}

func TestDOCXReaderMalformed(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	f, err := zw.Create("readme.txt")
	if err != nil {
		t.Fatal(err)
	}
	f.Write([]byte("not a word document"))
	zw.Close()

	inputs := map[string][]byte{
		"garbage":     []byte("definitely not a zip"),
		"no document": buf.Bytes(),
		"empty":       nil,
	}
	for name, data := range inputs {
		t.Run(name, func(t *testing.T) {
			_, err := (&DOCXReader{}).Read(data, "bad.docx")
			var fe *quizdoc.FormatError
			if !errors.As(err, &fe) {
				t.Fatalf("err = %v, want FormatError", err)
			}
			if fe.Format != quizdoc.FormatDOCX {
				t.Errorf("format = %s", fe.Format)
			}
		})
	}
}
