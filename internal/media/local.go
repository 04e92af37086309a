package media

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// LocalPrefix is the public path every LocalStore asset lives under.
const LocalPrefix = "/uploads/"

// LocalStore writes assets into <Root>/uploads/<kind>/ and returns
// /uploads/<kind>/<file>, served statically from Root.
type LocalStore struct {
	Root string
	now  func() time.Time
}

func NewLocalStore(root string) *LocalStore {
	return &LocalStore{Root: root, now: time.Now}
}

func (s *LocalStore) Prefix() string { return LocalPrefix }

func (s *LocalStore) Store(_ context.Context, kind AssetKind, data []byte, contentType string) (string, error) {
	if len(data) == 0 {
		return "", errors.New("empty asset")
	}
	dir := filepath.Join(s.Root, "uploads", string(kind))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create asset dir: %w", err)
	}
	name := newAssetName(s.now()) + ExtensionFor(contentType, data)
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("write asset: %w", err)
	}
	return LocalPrefix + string(kind) + "/" + name, nil
}

func (s *LocalStore) IsStored(ref string) bool {
	return strings.HasPrefix(ref, LocalPrefix)
}

func (s *LocalStore) Discard(_ context.Context, ref string) error {
	if !s.IsStored(ref) {
		return nil
	}
	err := os.Remove(underRoot(s.Root, ref))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("discard asset: %w", err)
	}
	return nil
}
