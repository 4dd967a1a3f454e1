package parser

import (
	"archive/zip"
	"bytes"
	"encoding/base64"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/dgallion1/quizgest/internal/quizdoc"
)

func addZipFile(t *testing.T, w *zip.Writer, name string, data []byte) {
	t.Helper()
	f, err := w.Create(name)
	if err != nil {
		t.Fatalf("creating zip entry %s: %v", name, err)
	}
	if _, err := f.Write(data); err != nil {
		t.Fatalf("writing zip entry %s: %v", name, err)
	}
}

func zipped(t *testing.T, files map[string][]byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, data := range files {
		addZipFile(t, w, name, data)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("closing zip: %v", err)
	}
	return buf.Bytes()
}

const exportHTML = `<html><head><title>Quiz</title><style type="text/css">
.c3{color:#000000}
.c9, .c10 { font-weight: 700; color: #FF0000 }
.c11{color:rgb(255, 0, 0)}
p.c12{color:red}
</style></head><body>
<p class="c1"><span>1.   What is
 shown?</span></p>
<p><span class="c3">A) a cat</span></p>
<p><span class="c9">B) a dog</span></p>
<p><span><img src="images/image1.png" alt=""></span></p>
<ul><li>2. Next</li></ul>
<script>var x = "<p>not a block</p>";</script>
</body></html>`

func TestHTMLReaderBare(t *testing.T) {
	doc, err := (&HTMLReader{}).Read([]byte(exportHTML), "quiz.html")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if doc.Format != quizdoc.FormatHTML || doc.Name != "quiz" {
		t.Errorf("format=%s name=%q", doc.Format, doc.Name)
	}

	want := []string{"1. What is shown?", "A) a cat", "B) a dog", "", "2. Next"}
	if len(doc.Blocks) != len(want) {
		t.Fatalf("got %d blocks: %+v", len(doc.Blocks), doc.Blocks)
	}
	for i, w := range want {
		if doc.Blocks[i].Text != w {
			t.Errorf("block %d = %q, want %q", i, doc.Blocks[i].Text, w)
		}
	}

	spans := doc.Blocks[2].Spans
	if len(spans) != 1 || spans[0].Text != "B) a dog" || !spans[0].HasClass("c9") {
		t.Errorf("spans = %+v", spans)
	}
	if refs := doc.Blocks[3].Refs(); len(refs) != 1 || refs[0] != "image1.png" {
		t.Errorf("image refs = %v", refs)
	}
}

func TestHTMLReaderAnswerClasses(t *testing.T) {
	doc, err := (&HTMLReader{}).Read([]byte(exportHTML), "quiz.html")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	for _, c := range []string{"c9", "c10", "c11"} {
		if !slices.Contains(doc.AnswerClasses, c) {
			t.Errorf("missing red class %s in %v", c, doc.AnswerClasses)
		}
	}
	for _, c := range []string{"c3", "c12"} {
		if slices.Contains(doc.AnswerClasses, c) {
			t.Errorf("unexpected class %s in %v", c, doc.AnswerClasses)
		}
	}
}

func TestHTMLReaderZippedExport(t *testing.T) {
	png := createTestPNG(t, 2, 2)
	data := zipped(t, map[string][]byte{
		"Quiz.html":          []byte(exportHTML),
		"images/image1.png":  png,
		"images/notes.txt":   []byte("ignored"),
		"images/image2.jpeg": []byte("not really a jpeg"),
	})
	doc, err := (&HTMLReader{}).Read(data, "quiz.zip")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	img := doc.Image("image1.png")
	if img == nil {
		t.Fatalf("image1.png not registered: %v", doc.Images)
	}
	if img.Format != "png" || !bytes.Equal(img.Data, png) {
		t.Errorf("image = %s, %d bytes", img.Format, len(img.Data))
	}
	if j := doc.Image("image2.jpeg"); j == nil || j.Format != "jpeg" {
		t.Errorf("image2 = %+v", j)
	}
	if doc.Image("notes.txt") != nil {
		t.Error("non-image file registered")
	}
}

func TestHTMLReaderZipWithoutHTML(t *testing.T) {
	data := zipped(t, map[string][]byte{"images/image1.png": createTestPNG(t, 1, 1)})
	_, err := (&HTMLReader{}).Read(data, "quiz.zip")
	var fe *quizdoc.FormatError
	if !errors.As(err, &fe) {
		t.Fatalf("err = %v, want FormatError", err)
	}
	if !errors.Is(err, errNoHTMLPart) {
		t.Errorf("err = %v, want errNoHTMLPart", err)
	}
}

func TestHTMLReaderBinaryInput(t *testing.T) {
	_, err := (&HTMLReader{}).Read([]byte{0xff, 0xfe, 0x00, 0x81}, "quiz.html")
	var fe *quizdoc.FormatError
	if !errors.As(err, &fe) {
		t.Fatalf("err = %v, want FormatError", err)
	}
}

func TestHTMLReaderWindows1252(t *testing.T) {
	page := []byte("<html><head><meta charset=\"windows-1252\"></head><body>" +
		"<p>1. Caf\xe9 au lait?</p><p>A) \x93yes\x94</p></body></html>")
	doc, err := (&HTMLReader{}).Read(page, "menu.htm")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(doc.Blocks) != 2 {
		t.Fatalf("got %d blocks", len(doc.Blocks))
	}
	if doc.Blocks[0].Text != "1. Café au lait?" {
		t.Errorf("block 0 = %q", doc.Blocks[0].Text)
	}
	if doc.Blocks[1].Text != "A) \u201cyes\u201d" {
		t.Errorf("block 1 = %q", doc.Blocks[1].Text)
	}
}

func TestHTMLReaderUndeclaredLatin1(t *testing.T) {
	doc, err := (&HTMLReader{}).Read([]byte("<p>1. Na\xefve?</p>"), "q.html")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if doc.Blocks[0].Text != "1. Naïve?" {
		t.Errorf("block 0 = %q", doc.Blocks[0].Text)
	}
}

func TestHTMLReaderLongUndeclaredUTF8(t *testing.T) {
	page := "<html><head><style>" + strings.Repeat(".c1{color:#000000}\n", 100) + "</style></head>" +
		"<body><p>1. Größe?</p></body></html>"
	doc, err := (&HTMLReader{}).Read([]byte(page), "q.html")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if doc.Blocks[0].Text != "1. Größe?" {
		t.Errorf("block 0 = %q", doc.Blocks[0].Text)
	}
}

func TestHTMLReaderNoText(t *testing.T) {
	_, err := (&HTMLReader{}).Read([]byte(`<html><body><p>  </p><div></div></body></html>`), "blank.html")
	var mc *quizdoc.MissingContentError
	if !errors.As(err, &mc) {
		t.Fatalf("err = %v, want MissingContentError", err)
	}
}

func TestHTMLReaderDataURI(t *testing.T) {
	png := createTestPNG(t, 3, 3)
	page := `<p>1. Q</p><p><img src="data:image/png;base64,` + base64.StdEncoding.EncodeToString(png) + `"></p>` +
		`<p><img src="data:image/svg+xml;base64,` + base64.StdEncoding.EncodeToString([]byte("<svg/>")) + `"></p>` +
		`<p><img src="data:text/plain,not-base64"></p>`
	doc, err := (&HTMLReader{}).Read([]byte(page), "q.html")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if refs := doc.Blocks[1].Refs(); len(refs) != 1 || refs[0] != "inline1.png" {
		t.Fatalf("refs = %v", refs)
	}
	if img := doc.Image("inline1.png"); img == nil || !bytes.Equal(img.Data, png) {
		t.Errorf("inline1.png = %+v", img)
	}
	if img := doc.Image("inline2.svg"); img == nil || img.Format != "svg" {
		t.Errorf("inline2.svg = %+v", img)
	}
	if refs := doc.Blocks[3].Refs(); len(refs) != 0 {
		t.Errorf("undecodable data URI produced refs %v", refs)
	}
}
