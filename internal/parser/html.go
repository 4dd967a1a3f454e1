package parser

import (
	"archive/zip"
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/quizgest/internal/quizdoc"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
)

var errNoHTMLPart = errors.New("no .html file found in archive")

// HTMLReader handles HTML exported from a document editor, either bare or
// as a zip holding one .html file plus its images.
type HTMLReader struct{}

func (p *HTMLReader) Read(data []byte, filename string) (*quizdoc.Document, error) {
	out := &quizdoc.Document{
		Format: quizdoc.FormatHTML,
		Name:   baseName(filename),
		Images: make(map[string]*quizdoc.ImageResource),
	}

	page := data
	if isZip(data) {
		var err error
		page, err = unpackHTMLExport(data, out.Images)
		if err != nil {
			return nil, &quizdoc.FormatError{Format: quizdoc.FormatHTML, Err: err}
		}
	}
	if bytes.IndexByte(page, 0) >= 0 {
		return nil, &quizdoc.FormatError{Format: quizdoc.FormatHTML, Err: errors.New("content is neither text nor a zip archive")}
	}

	doc, err := html.Parse(decodePage(page))
	if err != nil {
		return nil, &quizdoc.FormatError{Format: quizdoc.FormatHTML, Err: err}
	}

	out.AnswerClasses = redClasses(styleText(doc))

	inline := 0
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "head", "title":
				return
			case "p", "li", "h1", "h2", "h3", "h4", "h5", "h6":
				b := quizdoc.NewBlock(collapseSpace(textContent(n)), len(out.Blocks))
				b.Spans = spans(n)
				for _, src := range imageSources(n) {
					ref, res := imageRef(src, &inline)
					if res != nil {
						out.Images[res.ID] = res
					}
					if ref != "" {
						b = b.WithRefs(ref)
					}
				}
				out.Blocks = append(out.Blocks, b)
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	if body := findBody(doc); body != nil {
		walk(body)
	} else {
		walk(doc)
	}

	if !hasText(out.Blocks) {
		return nil, &quizdoc.MissingContentError{Name: filename}
	}
	return out, nil
}

// unpackHTMLExport returns the first HTML part of the archive and registers
// every image file under its basename.
func unpackHTMLExport(data []byte, images map[string]*quizdoc.ImageResource) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}

	var page []byte
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		ext := strings.ToLower(path.Ext(f.Name))
		isPage := ext == ".html" || ext == ".htm"
		if !isPage && !isImageName(f.Name) {
			continue
		}
		if isPage && page != nil {
			continue
		}

		content, err := readZipFile(f)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", f.Name, err)
		}
		if isPage {
			page = content
			continue
		}
		name := path.Base(f.Name)
		images[name] = &quizdoc.ImageResource{
			ID:     name,
			Name:   name,
			Data:   content,
			Format: imageFormat(name, content),
		}
	}

	if page == nil {
		return nil, errNoHTMLPart
	}
	return page, nil
}

// decodePage converts the page to UTF-8. Editor exports are often
// windows-1252 and declare it in <meta charset>. Undeclared pages stay as
// they are when they are valid UTF-8 throughout.
func decodePage(page []byte) io.Reader {
	r := bytes.NewReader(page)
	enc, name, certain := charset.DetermineEncoding(page, "text/html")
	if name == "utf-8" || (!certain && utf8.Valid(page)) {
		return r
	}
	return enc.NewDecoder().Reader(r)
}

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// imageRef turns an img src into a lookup key. data: URIs are decoded into a
// resource immediately; other sources resolve by basename.
func imageRef(src string, inline *int) (string, *quizdoc.ImageResource) {
	src = strings.TrimSpace(src)
	if src == "" {
		return "", nil
	}
	if strings.HasPrefix(src, "data:") {
		mediaType, payload, ok := decodeDataURI(src)
		if !ok {
			return "", nil
		}
		*inline++
		format := imageFormat("", payload)
		if format == "" {
			_, sub, _ := strings.Cut(mediaType, "/")
			format, _, _ = strings.Cut(sub, "+")
		}
		if format == "" {
			format = "bin"
		}
		name := fmt.Sprintf("inline%d.%s", *inline, format)
		return name, &quizdoc.ImageResource{
			ID:     name,
			Name:   name,
			Data:   payload,
			Format: format,
		}
	}

	if u, err := url.Parse(src); err == nil && u.Path != "" {
		src = u.Path
	}
	return path.Base(src), nil
}

func decodeDataURI(src string) (string, []byte, bool) {
	header, payload, ok := strings.Cut(strings.TrimPrefix(src, "data:"), ",")
	if !ok || !strings.HasSuffix(header, ";base64") {
		return "", nil, false
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, false
	}
	return strings.TrimSuffix(header, ";base64"), data, true
}

func spans(n *html.Node) []quizdoc.Span {
	var out []quizdoc.Span
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && c.Data == "span" {
				out = append(out, quizdoc.Span{
					Text:    collapseSpace(textContent(c)),
					Classes: strings.Fields(attr(c, "class")),
				})
			}
			visit(c)
		}
	}
	visit(n)
	return out
}

func imageSources(n *html.Node) []string {
	var out []string
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "img" {
			out = append(out, attr(n, "src"))
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(n)
	return out
}

var (
	cssRuleRe  = regexp.MustCompile(`([^{}]+)\{([^}]*)\}`)
	cssClassRe = regexp.MustCompile(`^\.([A-Za-z_][\w-]*)$`)
	cssColorRe = regexp.MustCompile(`(?i)(?:^|[;\s])color\s*:\s*([^;]+)`)
	cssRGBRe   = regexp.MustCompile(`(?i)^rgb\(\s*(\d+)\s*,\s*(\d+)\s*,\s*(\d+)\s*\)$`)
)

// redClasses returns the classes whose stylesheet rule sets a pure red
// foreground color. Editors export text color as generated classes.
func redClasses(css string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, m := range cssRuleRe.FindAllStringSubmatch(css, -1) {
		color := cssColorRe.FindStringSubmatch(m[2])
		if color == nil || !isRed(color[1]) {
			continue
		}
		for _, sel := range strings.Split(m[1], ",") {
			cm := cssClassRe.FindStringSubmatch(strings.TrimSpace(sel))
			if cm == nil || seen[cm[1]] {
				continue
			}
			seen[cm[1]] = true
			out = append(out, cm[1])
		}
	}
	return out
}

func isRed(value string) bool {
	value = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(value), "!important"))
	if strings.EqualFold(value, "red") {
		return true
	}
	if m := cssRGBRe.FindStringSubmatch(value); m != nil {
		return m[1] == "255" && m[2] == "0" && m[3] == "0"
	}
	c, ok := quizdoc.ParseHexColor(value)
	return ok && c == quizdoc.Red
}

func styleText(n *html.Node) string {
	var buf strings.Builder
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "style" {
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.TextNode {
					buf.WriteString(c.Data)
					buf.WriteByte('\n')
				}
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(n)
	return buf.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(buf.String())
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}
