package media

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

var ErrUnresolved = errors.New("picture not resolved")

const (
	browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
	imageAccept      = "image/avif,image/webp,image/apng,image/*,*/*;q=0.8"

	defaultMaxBytes = 10 << 20
)

// DefaultCandidateDirs are searched, relative to the public root, for bare
// file names.
var DefaultCandidateDirs = []string{
	"images",
	"uploads",
	"uploads/products",
	"uploads/categories",
	"uploads/brands",
}

// ResolvedImage is one successfully resolved picture. For SourceAlreadyStored
// only Ref is set.
type ResolvedImage struct {
	Data        []byte
	ContentType string
	Kind        SourceKind
	Ref         string
}

type ResolverConfig struct {
	PublicRoot     string
	CandidateDirs  []string
	StoredPrefixes []string
	MaxBytes       int64
}

type Resolver struct {
	client *http.Client
	cfg    ResolverConfig
	logger *zap.SugaredLogger
}

func NewResolver(client *http.Client, cfg ResolverConfig, logger *zap.SugaredLogger) *Resolver {
	if client == nil {
		client = http.DefaultClient
	}
	if cfg.CandidateDirs == nil {
		cfg.CandidateDirs = DefaultCandidateDirs
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = defaultMaxBytes
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Resolver{client: client, cfg: cfg, logger: logger}
}

// Resolve turns a picture cell into image bytes. Every failure wraps
// ErrUnresolved.
func (r *Resolver) Resolve(ctx context.Context, raw string) (*ResolvedImage, error) {
	v := strings.TrimSpace(raw)
	kind := Classify(v, r.cfg.StoredPrefixes...)

	img, err := r.resolve(ctx, kind, v)
	if err != nil {
		r.logger.Warnw("picture unresolved", "kind", kind.String(), "value", truncate(v, 120), "error", err.Error())
		return nil, err
	}
	r.logger.Debugw("picture resolved", "kind", kind.String(), "content_type", img.ContentType, "bytes", len(img.Data))
	return img, nil
}

func (r *Resolver) resolve(ctx context.Context, kind SourceKind, v string) (*ResolvedImage, error) {
	switch kind {
	case SourceAlreadyStored:
		return r.checkStored(v)
	case SourceDataURI:
		return decodeDataURI(v)
	case SourceRemoteURL:
		return r.fetch(ctx, v)
	case SourcePublicPath:
		return r.readPublic(v)
	case SourceBareFilename:
		return r.findFile(v)
	case SourceRawBase64:
		return decodeRawBase64(v)
	}
	return nil, fmt.Errorf("%w: unrecognised reference", ErrUnresolved)
}

func decodeDataURI(v string) (*ResolvedImage, error) {
	comma := strings.IndexByte(v, ',')
	if comma < 0 {
		return nil, fmt.Errorf("%w: malformed data uri", ErrUnresolved)
	}
	meta := strings.ToLower(v[len("data:"):comma])
	if !strings.HasSuffix(meta, ";base64") {
		return nil, fmt.Errorf("%w: data uri is not base64", ErrUnresolved)
	}
	data, err := decodeBase64(v[comma+1:])
	if err != nil || len(data) == 0 {
		return nil, fmt.Errorf("%w: data uri payload does not decode", ErrUnresolved)
	}
	ct := strings.TrimSuffix(meta, ";base64")
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	ct = contentTypeOf(ct, data, "")
	if ct == "" {
		return nil, fmt.Errorf("%w: data uri is not an image", ErrUnresolved)
	}
	return &ResolvedImage{Data: data, ContentType: ct, Kind: SourceDataURI}, nil
}

func decodeRawBase64(v string) (*ResolvedImage, error) {
	data, err := decodeBase64(v)
	if err != nil {
		return nil, fmt.Errorf("%w: base64 does not decode", ErrUnresolved)
	}
	ct := sniffType(data)
	if !isSniffable(ct) {
		return nil, fmt.Errorf("%w: base64 is not a known image format", ErrUnresolved)
	}
	return &ResolvedImage{Data: data, ContentType: ct, Kind: SourceRawBase64}, nil
}

func decodeBase64(s string) ([]byte, error) {
	s = strings.Join(strings.Fields(s), "")
	if data, err := base64.StdEncoding.DecodeString(s); err == nil {
		return data, nil
	}
	return base64.RawStdEncoding.DecodeString(strings.TrimRight(s, "="))
}

func (r *Resolver) fetch(ctx context.Context, raw string) (*ResolvedImage, error) {
	target := rewriteShareLink(raw)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnresolved, err)
	}
	req.Header.Set("User-Agent", browserUserAgent)
	req.Header.Set("Accept", imageAccept)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch: %v", ErrUnresolved, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: fetch: status %d", ErrUnresolved, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, r.cfg.MaxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrUnresolved, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty body", ErrUnresolved)
	}
	if int64(len(data)) > r.cfg.MaxBytes {
		return nil, fmt.Errorf("%w: image larger than %d bytes", ErrUnresolved, r.cfg.MaxBytes)
	}

	var urlPath string
	if u, err := url.Parse(target); err == nil {
		urlPath = u.Path
	}
	ct := contentTypeOf(resp.Header.Get("Content-Type"), data, urlPath)
	if ct == "" {
		return nil, fmt.Errorf("%w: response is not an image", ErrUnresolved)
	}
	return &ResolvedImage{Data: data, ContentType: ct, Kind: SourceRemoteURL}, nil
}

// rewriteShareLink turns Dropbox and Google Drive sharing pages into their
// direct download form.
func rewriteShareLink(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	host := strings.ToLower(u.Hostname())

	switch {
	case host == "dropbox.com" || strings.HasSuffix(host, ".dropbox.com"):
		q := u.Query()
		q.Del("raw")
		q.Set("dl", "1")
		u.RawQuery = q.Encode()
		return u.String()

	case host == "drive.google.com":
		id := u.Query().Get("id")
		parts := strings.Split(strings.Trim(u.Path, "/"), "/")
		for i := 0; i+2 < len(parts); i++ {
			if parts[i] == "file" && parts[i+1] == "d" {
				id = parts[i+2]
				break
			}
		}
		if id == "" {
			return raw
		}
		return "https://drive.google.com/uc?export=download&id=" + url.QueryEscape(id)
	}
	return raw
}

// underRoot joins a slash path under root without letting it escape.
func underRoot(root, p string) string {
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	return filepath.Join(root, filepath.FromSlash(path.Clean("/"+p)))
}

func (r *Resolver) readPublic(v string) (*ResolvedImage, error) {
	if r.cfg.PublicRoot == "" {
		return nil, fmt.Errorf("%w: no public root configured", ErrUnresolved)
	}
	full := underRoot(r.cfg.PublicRoot, v)
	data, err := readRegular(full)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnresolved, v, err)
	}
	return &ResolvedImage{Data: data, ContentType: contentTypeOf(typeFromName(v), data, v), Kind: SourcePublicPath}, nil
}

func (r *Resolver) findFile(name string) (*ResolvedImage, error) {
	if r.cfg.PublicRoot == "" {
		return nil, fmt.Errorf("%w: no public root configured", ErrUnresolved)
	}
	for _, dir := range r.cfg.CandidateDirs {
		full := underRoot(filepath.Join(r.cfg.PublicRoot, filepath.FromSlash(dir)), name)
		data, err := readRegular(full)
		if err != nil {
			continue
		}
		return &ResolvedImage{Data: data, ContentType: contentTypeOf(typeFromName(name), data, name), Kind: SourceBareFilename}, nil
	}
	return nil, fmt.Errorf("%w: %s not found in candidate directories", ErrUnresolved, name)
}

// checkStored keeps an already stored reference. Local references must
// still exist under the public root; remote ones are taken as they are.
func (r *Resolver) checkStored(v string) (*ResolvedImage, error) {
	if strings.HasPrefix(v, "/") {
		if r.cfg.PublicRoot == "" {
			return nil, fmt.Errorf("%w: no public root configured", ErrUnresolved)
		}
		if err := statRegular(underRoot(r.cfg.PublicRoot, v)); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrUnresolved, v, err)
		}
	}
	return &ResolvedImage{Kind: SourceAlreadyStored, Ref: v}, nil
}

func statRegular(p string) error {
	fi, err := os.Stat(p)
	if err != nil {
		return err
	}
	if !fi.Mode().IsRegular() {
		return errors.New("not a regular file")
	}
	return nil
}

func readRegular(p string) ([]byte, error) {
	if err := statRegular(p); err != nil {
		return nil, err
	}
	return os.ReadFile(p)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
