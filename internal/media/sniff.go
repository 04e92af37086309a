package media

import (
	"mime"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

var extByType = map[string]string{
	"image/jpeg":    ".jpg",
	"image/jpg":     ".jpg",
	"image/pjpeg":   ".jpg",
	"image/png":     ".png",
	"image/gif":     ".gif",
	"image/webp":    ".webp",
	"image/svg+xml": ".svg",
	"image/avif":    ".avif",
	"image/bmp":     ".bmp",
}

var typeByExt = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".svg":  "image/svg+xml",
	".avif": "image/avif",
	".bmp":  "image/bmp",
}

// sniffable are the formats accepted from pasted base64.
var sniffable = []string{"image/jpeg", "image/png", "image/gif", "image/webp", "image/svg+xml"}

// baseType drops parameters and lower-cases a content type.
func baseType(ct string) string {
	if ct == "" {
		return ""
	}
	if t, _, err := mime.ParseMediaType(ct); err == nil {
		return t
	}
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	return strings.ToLower(strings.TrimSpace(ct))
}

func isImageType(ct string) bool {
	return strings.HasPrefix(baseType(ct), "image/")
}

// sniffType detects the content type from magic bytes.
func sniffType(data []byte) string {
	return baseType(mimetype.Detect(data).String())
}

// typeFromName maps a file name or URL path extension to a content type.
func typeFromName(name string) string {
	if i := strings.IndexAny(name, "?#"); i >= 0 {
		name = name[:i]
	}
	return typeByExt[strings.ToLower(path.Ext(name))]
}

// contentTypeOf returns the hint when it names an image, else the sniffed
// image type. The name's extension only decides when neither the hint nor the
// bytes say what the content is. "" means not an image.
func contentTypeOf(hint string, data []byte, name string) string {
	if isImageType(hint) {
		return baseType(hint)
	}
	sniffed := sniffType(data)
	if isImageType(sniffed) {
		return sniffed
	}
	if isOpaqueType(hint) && isOpaqueType(sniffed) {
		return typeFromName(name)
	}
	return ""
}

// isOpaqueType reports a content type that carries no format information.
func isOpaqueType(ct string) bool {
	switch baseType(ct) {
	case "", "application/octet-stream", "binary/octet-stream":
		return true
	}
	return false
}

// ExtensionFor returns the file extension for stored bytes: the content type
// map first, then the sniffed format, then ".bin".
func ExtensionFor(contentType string, data []byte) string {
	if ext, ok := extByType[baseType(contentType)]; ok {
		return ext
	}
	m := mimetype.Detect(data)
	if ext, ok := extByType[baseType(m.String())]; ok {
		return ext
	}
	if isImageType(m.String()) && m.Extension() != "" {
		return m.Extension()
	}
	return ".bin"
}

func isSniffable(ct string) bool {
	for _, s := range sniffable {
		if ct == s {
			return true
		}
	}
	return false
}
