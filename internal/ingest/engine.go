// Package ingest runs bulk spreadsheet imports of products, categories and
// brands, one row at a time, and reports every row's outcome.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"wholesale/internal/domain/catalog"
	"wholesale/internal/media"
	"wholesale/internal/sheet"
)

// Store is the catalog surface the importer writes through.
type Store interface {
	referenceStore
	CreateProduct(ctx context.Context, p *catalog.Product) (*catalog.Product, error)
	CreateCategory(ctx context.Context, c *catalog.Category) (*catalog.Category, error)
	CreateBrand(ctx context.Context, b *catalog.Brand) (*catalog.Brand, error)
}

type PictureResolver interface {
	Resolve(ctx context.Context, raw string) (*media.ResolvedImage, error)
}

type Engine struct {
	store       Store
	resolver    PictureResolver
	assets      media.AssetStore
	provisioner *Provisioner
	logger      *zap.SugaredLogger
}

func NewEngine(store Store, resolver PictureResolver, assets media.AssetStore, placeholderPicture string, logger *zap.SugaredLogger) *Engine {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Engine{
		store:       store,
		resolver:    resolver,
		assets:      assets,
		provisioner: NewProvisioner(store, placeholderPicture, logger),
		logger:      logger,
	}
}

// Import dispatches on kind.
func (e *Engine) Import(ctx context.Context, kind Kind, g *sheet.Grid) (*Report, error) {
	switch kind {
	case KindProducts:
		return e.ImportProducts(ctx, g)
	case KindCategories:
		return e.ImportCategories(ctx, g)
	case KindBrands:
		return e.ImportBrands(ctx, g)
	}
	return nil, fatal("unknown import kind %q", kind)
}

// rowFunc handles data row i and returns the skip reason, "" when inserted.
type rowFunc func(ctx context.Context, g *sheet.Grid, i int) string

func (e *Engine) ImportProducts(ctx context.Context, g *sheet.Grid) (*Report, error) {
	return e.run(ctx, KindProducts, g, e.provisionProductRefs, e.importProduct)
}

func (e *Engine) ImportCategories(ctx context.Context, g *sheet.Grid) (*Report, error) {
	return e.run(ctx, KindCategories, g, nil, e.importReference(media.KindCategories))
}

func (e *Engine) ImportBrands(ctx context.Context, g *sheet.Grid) (*Report, error) {
	return e.run(ctx, KindBrands, g, nil, e.importReference(media.KindBrands))
}

func (e *Engine) run(
	ctx context.Context,
	kind Kind,
	g *sheet.Grid,
	prepare func(ctx context.Context, g *sheet.Grid) error,
	fn rowFunc,
) (*Report, error) {
	start := time.Now()

	if g == nil {
		g = sheet.ParseString("")
	}
	if missing := g.MissingColumns(RequiredColumns(kind)...); len(missing) > 0 {
		return nil, missingColumnsError(missing)
	}
	if err := ctx.Err(); err != nil {
		return nil, fatal("import %s: %w", kind, err)
	}
	if prepare != nil {
		if err := prepare(ctx, g); err != nil {
			return nil, &FatalError{Err: err}
		}
	}

	uploadsTotal.Add(1)
	report := newReport()
	for i := range g.Rows {
		row := i + 2
		if err := ctx.Err(); err != nil {
			e.logger.Warnw("import interrupted", "kind", kind, "row", row, "processed", report.Processed)
			return nil, fmt.Errorf("import %s interrupted at row %d: %w", kind, row, err)
		}

		reason := fn(ctx, g, i)
		if reason == "" {
			report.insert()
			continue
		}
		report.skip(row, reason)
		e.logger.Debugw("row skipped", "kind", kind, "row", row, "reason", reason)
	}

	e.logger.Infow("import finished",
		"kind", kind,
		"processed", report.Processed,
		"inserted", report.Inserted,
		"skipped", report.Skipped,
		"duration", time.Since(start),
	)
	return report, nil
}

func (e *Engine) provisionProductRefs(ctx context.Context, g *sheet.Grid) error {
	brands := make([]string, 0, len(g.Rows))
	categories := make([]string, 0, len(g.Rows))
	for i := range g.Rows {
		rec := readProductRow(g, i)
		brands = append(brands, rec.Brand)
		categories = append(categories, rec.Category)
	}
	if _, err := e.provisioner.EnsureReferences(ctx, catalog.RefBrands, brands); err != nil {
		return err
	}
	if _, err := e.provisioner.EnsureReferences(ctx, catalog.RefCategories, categories); err != nil {
		return err
	}
	return nil
}

func (e *Engine) importProduct(ctx context.Context, g *sheet.Grid, i int) string {
	rec := readProductRow(g, i)
	if missing := missingFields(rec, rec.Picture, RequiredColumns(KindProducts)); len(missing) > 0 {
		return missingReason(missing)
	}

	ref, fresh, err := e.storePicture(ctx, media.KindProducts, rec.Picture)
	if err != nil {
		return missingReason([]string{"picture"})
	}

	status := rec.Status
	if status == "" {
		status = catalog.StatusActive
	}
	p := &catalog.Product{
		Name:          rec.Name,
		Barcode:       rec.Barcode,
		BrandSlug:     rec.Brand,
		CategorySlug:  rec.Category,
		Picture:       ref,
		CaseSize:      rec.CaseSize,
		GrossWeight:   rec.GrossWeight,
		Volume:        rec.Volume,
		PalletQty:     rec.PalletQty,
		LayerQty:      rec.LayerQty,
		Status:        status,
		PromotionType: rec.PromotionType,
	}
	if _, err := e.store.CreateProduct(ctx, p); err != nil {
		e.discard(ctx, ref, fresh)
		if errors.Is(err, catalog.ErrDuplicate) {
			return "Duplicate barcode: " + rec.Barcode
		}
		return catalog.Reason(err)
	}
	return ""
}

func (e *Engine) importReference(kind media.AssetKind) rowFunc {
	required := RequiredColumns(KindCategories)
	if kind == media.KindBrands {
		required = RequiredColumns(KindBrands)
	}

	return func(ctx context.Context, g *sheet.Grid, i int) string {
		rec := readReferenceRow(g, i)
		if missing := missingFields(rec, rec.Picture, required); len(missing) > 0 {
			return missingReason(missing)
		}

		ref, fresh, err := e.storePicture(ctx, kind, rec.Picture)
		if err != nil {
			return missingReason([]string{"picture"})
		}

		if kind == media.KindBrands {
			_, err = e.store.CreateBrand(ctx, &catalog.Brand{Name: rec.Name, Slug: rec.Slug, Picture: ref})
		} else {
			_, err = e.store.CreateCategory(ctx, &catalog.Category{Name: rec.Name, Slug: rec.Slug, Picture: ref})
		}
		if err != nil {
			e.discard(ctx, ref, fresh)
			if errors.Is(err, catalog.ErrDuplicate) {
				return "Duplicate slug: " + rec.Slug
			}
			return catalog.Reason(err)
		}
		return ""
	}
}

// storePicture resolves raw and writes it to the asset store. fresh is false
// when raw already pointed into the store.
func (e *Engine) storePicture(ctx context.Context, kind media.AssetKind, raw string) (ref string, fresh bool, err error) {
	img, err := e.resolver.Resolve(ctx, raw)
	if err != nil {
		return "", false, err
	}
	if img.Kind == media.SourceAlreadyStored {
		return img.Ref, false, nil
	}
	ref, err = e.assets.Store(ctx, kind, img.Data, img.ContentType)
	if err != nil {
		e.logger.Warnw("store picture", "kind", kind, "error", err.Error())
		return "", false, err
	}
	picturesStored.Add(1)
	return ref, true, nil
}

func (e *Engine) discard(ctx context.Context, ref string, fresh bool) {
	if !fresh {
		return
	}
	if err := e.assets.Discard(context.WithoutCancel(ctx), ref); err != nil {
		e.logger.Warnw("discard picture", "ref", ref, "error", err.Error())
	}
}

func missingReason(fields []string) string {
	return "missing: " + strings.Join(fields, ", ")
}
