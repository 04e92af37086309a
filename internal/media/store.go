package media

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// AssetKind names the folder an entity's pictures are written to.
type AssetKind string

const (
	KindProducts   AssetKind = "products"
	KindCategories AssetKind = "categories"
	KindBrands     AssetKind = "brands"
)

// AssetStore persists resolved image bytes and hands back the public
// reference to save on the entity row.
type AssetStore interface {
	Store(ctx context.Context, kind AssetKind, data []byte, contentType string) (string, error)
	// IsStored reports whether ref already points into this store.
	IsStored(ref string) bool
	// Discard removes an asset written by Store. Missing assets are not an error.
	Discard(ctx context.Context, ref string) error
}

// newAssetName is "<hex token>-<unix millis>", without extension.
func newAssetName(now time.Time) string {
	token := strings.ReplaceAll(uuid.NewString(), "-", "")
	return token + "-" + strconv.FormatInt(now.UnixMilli(), 10)
}
