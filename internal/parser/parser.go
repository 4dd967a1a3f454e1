package parser

import (
	"archive/zip"
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dgallion1/quizgest/internal/quizdoc"
)

// Reader converts raw quiz document bytes into ordered blocks and image resources.
type Reader interface {
	Read(data []byte, filename string) (*quizdoc.Document, error)
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".docx": true,
	".html": true,
	".htm":  true,
	".zip":  true, // zipped HTML export
}

// ForFile returns the appropriate reader for a filename.
func ForFile(filename string) (Reader, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".docx":
		return &DOCXReader{}, nil
	case ".html", ".htm", ".zip":
		return &HTMLReader{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// ForFormat returns the reader for a declared format.
func ForFormat(format quizdoc.Format) (Reader, error) {
	switch format {
	case quizdoc.FormatDOCX:
		return &DOCXReader{}, nil
	case quizdoc.FormatHTML:
		return &HTMLReader{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %q", format)
	}
}

// ForData picks a reader by extension, falling back to sniffing the bytes
// when the filename has none.
func ForData(filename string, data []byte) (Reader, error) {
	if filepath.Ext(filename) != "" {
		return ForFile(filename)
	}
	return ForFormat(DetectFormat(data))
}

// DetectFormat sniffs the container: a zip with word/document.xml is DOCX,
// anything else is treated as HTML.
func DetectFormat(data []byte) quizdoc.Format {
	if isZip(data) {
		if zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data))); err == nil {
			for _, f := range zr.File {
				if f.Name == docxDocumentPart {
					return quizdoc.FormatDOCX
				}
			}
		}
	}
	return quizdoc.FormatHTML
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

func isZip(data []byte) bool {
	return bytes.HasPrefix(data, []byte("PK\x03\x04"))
}

func baseName(filename string) string {
	name := filepath.Base(filename)
	return strings.TrimSuffix(name, filepath.Ext(name))
}
