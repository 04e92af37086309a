// Package normalize holds the small cell cleaners used by the bulk importers.
// Nothing here performs I/O.
package normalize

import (
	"math"
	"path"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	slugStripRe   = regexp.MustCompile(`[^a-z0-9\s-]`)
	slugSpaceRe   = regexp.MustCompile(`\s+`)
	slugHyphensRe = regexp.MustCompile(`-{2,}`)
	digitsRe      = regexp.MustCompile(`[0-9]+`)

	// =HYPERLINK("url","label"), =HYPERLINK('url'; 'label') or without a label.
	hyperlinkRe = regexp.MustCompile(`(?i)^=?\s*HYPERLINK\(\s*["']([^"']*)["']\s*(?:[,;]\s*["'][^"']*["']\s*)?\)$`)
)

// ImageExtensions are the file extensions treated as pictures.
var ImageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp", ".svg", ".avif", ".bmp"}

// ToNumber parses a human number such as "1,250.5". Thousands separators are
// dropped. ok is false for blank, unparsable or non-finite values.
func ToNumber(raw string) (float64, bool) {
	s := strings.TrimSpace(strings.ReplaceAll(raw, ",", ""))
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// ToPositiveIntLoose returns the first run of digits found anywhere in raw,
// so "12 x 1kg" is 12 and "Pack of 24" is 24. Zero is not positive.
func ToPositiveIntLoose(raw string) (int, bool) {
	s := strings.ReplaceAll(raw, "×", "x")
	m := digitsRe.FindString(s)
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(m)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// Slugify turns free text into a lower-case hyphenated slug.
func Slugify(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = slugStripRe.ReplaceAllString(s, "")
	s = slugSpaceRe.ReplaceAllString(strings.TrimSpace(s), "-")
	s = slugHyphensRe.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// TitleCaseFromSlug builds a display name from a slug: "dark-chocolate" is
// "Dark Chocolate".
func TitleCaseFromSlug(slug string) string {
	words := strings.FieldsFunc(slug, func(r rune) bool {
		return r == '-' || r == '_' || unicode.IsSpace(r)
	})
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}

// NormalizePicture strips one layer of surrounding quotes and unwraps an
// Excel HYPERLINK formula down to its URL.
func NormalizePicture(raw string) string {
	s := strings.TrimSpace(raw)
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '"' || first == '\'') && first == last {
			s = strings.TrimSpace(s[1 : len(s)-1])
		}
	}
	if m := hyperlinkRe.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1])
	}
	return s
}

// FindPictureFallback scans a row for something that looks like a picture
// reference. The first matching cell in column order wins.
func FindPictureFallback(cells []string) string {
	for _, c := range cells {
		v := NormalizePicture(c)
		if v == "" {
			continue
		}
		if IsAbsoluteURL(v) || strings.HasPrefix(v, "/") || LooksLikeImageFile(v) {
			return v
		}
	}
	return ""
}

// IsAbsoluteURL reports whether v starts with http:// or https://.
func IsAbsoluteURL(v string) bool {
	l := strings.ToLower(v)
	return strings.HasPrefix(l, "http://") || strings.HasPrefix(l, "https://")
}

// LooksLikeImageFile reports whether name ends in a known image extension.
// Query strings and fragments are ignored.
func LooksLikeImageFile(name string) bool {
	if i := strings.IndexAny(name, "?#"); i >= 0 {
		name = name[:i]
	}
	ext := strings.ToLower(path.Ext(name))
	for _, e := range ImageExtensions {
		if ext == e {
			return true
		}
	}
	return false
}
