// Package media resolves the picture references found in import files into
// image bytes and writes them to an asset store.
package media

import (
	"regexp"
	"strings"

	"wholesale/internal/normalize"
)

// SourceKind is the closed set of picture reference shapes.
type SourceKind int

const (
	SourceUnresolvable SourceKind = iota
	SourceAlreadyStored
	SourceDataURI
	SourceRemoteURL
	SourcePublicPath
	SourceBareFilename
	SourceRawBase64
)

var sourceKindNames = map[SourceKind]string{
	SourceUnresolvable:  "unresolvable",
	SourceAlreadyStored: "already_stored",
	SourceDataURI:       "data_uri",
	SourceRemoteURL:     "remote_url",
	SourcePublicPath:    "public_path",
	SourceBareFilename:  "bare_filename",
	SourceRawBase64:     "raw_base64",
}

func (k SourceKind) String() string {
	if s, ok := sourceKindNames[k]; ok {
		return s
	}
	return "unknown"
}

// minRawBase64Len is the shortest value considered a pasted base64 image.
const minRawBase64Len = 100

var base64Re = regexp.MustCompile(`^[A-Za-z0-9+/=\s]+$`)

// Classify decides what kind of reference raw is. The first matching rule
// wins: own stored prefix, data URI, http(s) URL, rooted path, bare image
// filename, raw base64.
func Classify(raw string, storedPrefixes ...string) SourceKind {
	v := strings.TrimSpace(raw)
	if v == "" {
		return SourceUnresolvable
	}
	for _, p := range storedPrefixes {
		if p != "" && strings.HasPrefix(v, p) {
			return SourceAlreadyStored
		}
	}
	switch {
	case strings.HasPrefix(strings.ToLower(v), "data:"):
		return SourceDataURI
	case normalize.IsAbsoluteURL(v):
		return SourceRemoteURL
	case strings.HasPrefix(v, "/"):
		return SourcePublicPath
	case normalize.LooksLikeImageFile(v):
		return SourceBareFilename
	case len(v) > minRawBase64Len && base64Re.MatchString(v):
		return SourceRawBase64
	}
	return SourceUnresolvable
}
