package parser

import (
	"bytes"
	"path"
	"strings"

	"github.com/fumiama/imgsz"
)

var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".bmp":  true,
	".webp": true,
	".svg":  true,
	".tif":  true,
	".tiff": true,
	".emf":  true,
	".wmf":  true,
}

// imageFormat sniffs the encoded bytes and falls back to the file extension.
func imageFormat(name string, data []byte) string {
	if _, format, err := imgsz.DecodeSize(bytes.NewReader(data)); err == nil && format != "" {
		return format
	}
	return strings.TrimPrefix(strings.ToLower(path.Ext(name)), ".")
}

func isImageName(name string) bool {
	return imageExtensions[strings.ToLower(path.Ext(name))]
}
