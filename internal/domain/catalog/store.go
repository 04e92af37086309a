package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository struct {
	db *pgxpool.Pool
}

var _ Store = (*Repository)(nil)

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// ------------------------------------
// Inserts, one statement per row
// ------------------------------------

func (r *Repository) CreateProduct(ctx context.Context, p *Product) (*Product, error) {
	const q = `
		INSERT INTO products (
			name, barcode, brand_slug, category_slug, picture,
			case_size, gross_weight, volume, pallet_qty, layer_qty,
			status, promotion_type
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at;
	`
	if p.Status == "" {
		p.Status = StatusActive
	}
	err := r.db.QueryRow(ctx, q,
		p.Name, p.Barcode, p.BrandSlug, p.CategorySlug, p.Picture,
		p.CaseSize, p.GrossWeight, p.Volume, p.PalletQty, p.LayerQty,
		p.Status, p.PromotionType,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return nil, wrapWriteErr("create product", err)
	}
	return p, nil
}

func (r *Repository) CreateCategory(ctx context.Context, c *Category) (*Category, error) {
	const q = `
		INSERT INTO categories (name, slug, picture)
		VALUES ($1, $2, $3)
		RETURNING id, created_at;
	`
	if err := r.db.QueryRow(ctx, q, c.Name, c.Slug, c.Picture).Scan(&c.ID, &c.CreatedAt); err != nil {
		return nil, wrapWriteErr("create category", err)
	}
	return c, nil
}

func (r *Repository) CreateBrand(ctx context.Context, b *Brand) (*Brand, error) {
	const q = `
		INSERT INTO brands (name, slug, picture)
		VALUES ($1, $2, $3)
		RETURNING id, created_at;
	`
	if err := r.db.QueryRow(ctx, q, b.Name, b.Slug, b.Picture).Scan(&b.ID, &b.CreatedAt); err != nil {
		return nil, wrapWriteErr("create brand", err)
	}
	return b, nil
}

// ------------------------------------
// Reference provisioning
// ------------------------------------

// ExistingSlugs returns which of slugs are already present in the kind's table.
func (r *Repository) ExistingSlugs(ctx context.Context, kind RefKind, slugs []string) ([]string, error) {
	table, err := kind.table()
	if err != nil {
		return nil, err
	}
	if len(slugs) == 0 {
		return nil, nil
	}

	q := fmt.Sprintf(`SELECT slug FROM %s WHERE slug = ANY($1)`, table)
	rows, err := r.db.Query(ctx, q, slugs)
	if err != nil {
		return nil, fmt.Errorf("lookup %s slugs: %w", table, err)
	}
	found, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scan %s slugs: %w", table, err)
	}
	return found, nil
}

// CreatePlaceholders inserts every placeholder in a single statement. A
// conflict fails the whole batch.
func (r *Repository) CreatePlaceholders(ctx context.Context, kind RefKind, refs []Placeholder) error {
	table, err := kind.table()
	if err != nil {
		return err
	}
	if len(refs) == 0 {
		return nil
	}

	names := make([]string, len(refs))
	slugs := make([]string, len(refs))
	pictures := make([]string, len(refs))
	for i, p := range refs {
		names[i], slugs[i], pictures[i] = p.Name, p.Slug, p.Picture
	}

	q := fmt.Sprintf(`
		INSERT INTO %s (name, slug, picture)
		SELECT * FROM unnest($1::text[], $2::text[], $3::text[])
	`, table)
	if _, err := r.db.Exec(ctx, q, names, slugs, pictures); err != nil {
		return wrapWriteErr("create placeholder "+table, err)
	}
	return nil
}

// ------------------------------------
// Admin lists
// ------------------------------------

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 || limit > 100 {
		limit = 30
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func (r *Repository) ListCategories(ctx context.Context, limit, offset int) ([]*Category, int, error) {
	limit, offset = clampPage(limit, offset)

	const q = `
		SELECT id, name, slug, picture, created_at,
		       COUNT(*) OVER() AS total_count
		FROM categories
		ORDER BY LOWER(name) ASC, id ASC
		LIMIT $1 OFFSET $2;
	`
	rows, err := r.db.Query(ctx, q, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var (
		out   []*Category
		total int
	)
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Picture, &c.CreatedAt, &total); err != nil {
			return nil, 0, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows iteration: %w", err)
	}
	return out, total, nil
}

func (r *Repository) ListBrands(ctx context.Context, limit, offset int) ([]*Brand, int, error) {
	limit, offset = clampPage(limit, offset)

	const q = `
		SELECT id, name, slug, picture, created_at,
		       COUNT(*) OVER() AS total_count
		FROM brands
		ORDER BY LOWER(name) ASC, id ASC
		LIMIT $1 OFFSET $2;
	`
	rows, err := r.db.Query(ctx, q, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list brands: %w", err)
	}
	defer rows.Close()

	var (
		out   []*Brand
		total int
	)
	for rows.Next() {
		var b Brand
		if err := rows.Scan(&b.ID, &b.Name, &b.Slug, &b.Picture, &b.CreatedAt, &total); err != nil {
			return nil, 0, fmt.Errorf("scan brand: %w", err)
		}
		out = append(out, &b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows iteration: %w", err)
	}
	return out, total, nil
}

// ------------------------------------
// Overview
// ------------------------------------

func (r *Repository) GetOverview(ctx context.Context, placeholderPicture string) (*Overview, error) {
	const q = `
		SELECT
			(SELECT COUNT(*) FROM products),
			(SELECT COUNT(*) FROM categories),
			(SELECT COUNT(*) FROM brands),
			(SELECT COUNT(*) FROM categories WHERE picture = $1),
			(SELECT COUNT(*) FROM brands WHERE picture = $1)
	`
	o := Overview{ProductsByStatus: map[string]int64{}}
	err := r.db.QueryRow(ctx, q, placeholderPicture).Scan(
		&o.TotalProducts,
		&o.TotalCategories,
		&o.TotalBrands,
		&o.PlaceholderCategories,
		&o.PlaceholderBrands,
	)
	if err != nil {
		return nil, fmt.Errorf("get catalog overview: %w", err)
	}

	rows, err := r.db.Query(ctx, `SELECT status, COUNT(*) FROM products GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count products by status: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			status string
			n      int64
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan status count: %w", err)
		}
		o.ProductsByStatus[status] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return &o, nil
}

// ------------------------------------
// Admin users
// ------------------------------------

func (r *Repository) GetAdminByEmail(ctx context.Context, email string) (*AdminUser, error) {
	const q = `
		SELECT id, email, password_hash, role, is_active, created_at
		FROM admin_users
		WHERE LOWER(email) = LOWER($1)
	`
	var u AdminUser
	err := r.db.QueryRow(ctx, q, strings.TrimSpace(email)).Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.IsActive, &u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get admin by email: %w", err)
	}
	return &u, nil
}
