package catalog

import (
	"context"
	"time"
)

// RefKind is a table that products reference by slug.
type RefKind string

const (
	RefCategories RefKind = "categories"
	RefBrands     RefKind = "brands"
)

const StatusActive = "active"

type Product struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Barcode       string    `json:"barcode"`
	BrandSlug     string    `json:"brand"`
	CategorySlug  string    `json:"category"`
	Picture       string    `json:"picture"`
	CaseSize      *int      `json:"case_size,omitempty"`
	GrossWeight   *float64  `json:"gross_weight,omitempty"`
	Volume        *float64  `json:"volume,omitempty"`
	PalletQty     *int      `json:"pallet_qty,omitempty"`
	LayerQty      *int      `json:"layer_qty,omitempty"`
	Status        string    `json:"status"`
	PromotionType *string   `json:"promotion_type,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

type Category struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Picture   string    `json:"picture"`
	CreatedAt time.Time `json:"created_at"`
}

type Brand struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Picture   string    `json:"picture"`
	CreatedAt time.Time `json:"created_at"`
}

// Placeholder is a minimal category or brand row created for a slug that a
// product import referenced before it existed.
type Placeholder struct {
	Name    string
	Slug    string
	Picture string
}

type Overview struct {
	TotalProducts   int64 `json:"total_products"`
	TotalCategories int64 `json:"total_categories"`
	TotalBrands     int64 `json:"total_brands"`

	// Rows still carrying the placeholder picture.
	PlaceholderCategories int64 `json:"placeholder_categories"`
	PlaceholderBrands     int64 `json:"placeholder_brands"`

	ProductsByStatus map[string]int64 `json:"products_by_status"`
}

type AdminUser struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash []byte    `json:"-"`
	Role         string    `json:"role"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

// Store is the data access abstraction for the catalog.
// Implemented by Repository (which uses pgxpool.Pool).
type Store interface {
	CreateProduct(ctx context.Context, p *Product) (*Product, error)
	CreateCategory(ctx context.Context, c *Category) (*Category, error)
	CreateBrand(ctx context.Context, b *Brand) (*Brand, error)

	// Reference provisioning
	ExistingSlugs(ctx context.Context, kind RefKind, slugs []string) ([]string, error)
	CreatePlaceholders(ctx context.Context, kind RefKind, refs []Placeholder) error

	ListCategories(ctx context.Context, limit, offset int) ([]*Category, int, error)
	ListBrands(ctx context.Context, limit, offset int) ([]*Brand, int, error)
	GetOverview(ctx context.Context, placeholderPicture string) (*Overview, error)

	GetAdminByEmail(ctx context.Context, email string) (*AdminUser, error)
}
