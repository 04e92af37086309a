package ingest

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wholesale/internal/domain/catalog"
	"wholesale/internal/media"
	"wholesale/internal/sheet"
)

const placeholderPic = "/images/placeholder.png"

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 64)...)

// memStore is an in-memory catalog enforcing unique keys and product
// references the way the schema does.
type memStore struct {
	mu         sync.Mutex
	products   map[string]*catalog.Product
	refs       map[catalog.RefKind]map[string]catalog.Placeholder
	inserted   []string
	failCreate error
	failRefs   error
}

func newMemStore() *memStore {
	return &memStore{
		products: map[string]*catalog.Product{},
		refs: map[catalog.RefKind]map[string]catalog.Placeholder{
			catalog.RefBrands:     {},
			catalog.RefCategories: {},
		},
	}
}

func (m *memStore) CreateProduct(_ context.Context, p *catalog.Product) (*catalog.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failCreate != nil {
		return nil, m.failCreate
	}
	if _, ok := m.products[p.Barcode]; ok {
		return nil, fmt.Errorf("create product: %w", catalog.ErrDuplicate)
	}
	if _, ok := m.refs[catalog.RefBrands][p.BrandSlug]; !ok {
		return nil, errors.New(`insert or update on table "products" violates foreign key constraint "products_brand_slug_fkey"`)
	}
	if _, ok := m.refs[catalog.RefCategories][p.CategorySlug]; !ok {
		return nil, errors.New(`insert or update on table "products" violates foreign key constraint "products_category_slug_fkey"`)
	}
	m.products[p.Barcode] = p
	m.inserted = append(m.inserted, "product:"+p.Barcode)
	return p, nil
}

func (m *memStore) createRef(kind catalog.RefKind, name, slug, picture string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failCreate != nil {
		return m.failCreate
	}
	if _, ok := m.refs[kind][slug]; ok {
		return fmt.Errorf("create %s: %w", kind, catalog.ErrDuplicate)
	}
	m.refs[kind][slug] = catalog.Placeholder{Name: name, Slug: slug, Picture: picture}
	m.inserted = append(m.inserted, string(kind)+":"+slug)
	return nil
}

func (m *memStore) CreateCategory(_ context.Context, c *catalog.Category) (*catalog.Category, error) {
	if err := m.createRef(catalog.RefCategories, c.Name, c.Slug, c.Picture); err != nil {
		return nil, err
	}
	return c, nil
}

func (m *memStore) CreateBrand(_ context.Context, b *catalog.Brand) (*catalog.Brand, error) {
	if err := m.createRef(catalog.RefBrands, b.Name, b.Slug, b.Picture); err != nil {
		return nil, err
	}
	return b, nil
}

func (m *memStore) ExistingSlugs(_ context.Context, kind catalog.RefKind, slugs []string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, s := range slugs {
		if _, ok := m.refs[kind][s]; ok {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memStore) CreatePlaceholders(_ context.Context, kind catalog.RefKind, refs []catalog.Placeholder) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failRefs != nil {
		return m.failRefs
	}
	for _, r := range refs {
		if _, ok := m.refs[kind][r.Slug]; ok {
			return fmt.Errorf("create placeholder: %w", catalog.ErrDuplicate)
		}
	}
	for _, r := range refs {
		m.refs[kind][r.Slug] = r
		m.inserted = append(m.inserted, string(kind)+":"+r.Slug)
	}
	return nil
}

// recordingAssets counts writes and discards around a LocalStore.
type recordingAssets struct {
	*media.LocalStore
	stored    atomic.Int32
	discarded atomic.Int32
}

func (r *recordingAssets) Store(ctx context.Context, kind media.AssetKind, data []byte, ct string) (string, error) {
	r.stored.Add(1)
	return r.LocalStore.Store(ctx, kind, data, ct)
}

func (r *recordingAssets) Discard(ctx context.Context, ref string) error {
	r.discarded.Add(1)
	return r.LocalStore.Discard(ctx, ref)
}

type fixture struct {
	engine *Engine
	store  *memStore
	assets *recordingAssets
	root   string
	srv    *httptest.Server
	hits   *atomic.Int32
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	hits := &atomic.Int32{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if strings.HasPrefix(r.URL.Path, "/missing") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write(pngBytes)
	}))
	t.Cleanup(srv.Close)

	root := t.TempDir()
	assets := &recordingAssets{LocalStore: media.NewLocalStore(root)}
	resolver := media.NewResolver(srv.Client(), media.ResolverConfig{
		PublicRoot:     root,
		StoredPrefixes: []string{assets.Prefix()},
	}, nil)
	store := newMemStore()

	return &fixture{
		engine: NewEngine(store, resolver, assets, placeholderPic, nil),
		store:  store,
		assets: assets,
		root:   root,
		srv:    srv,
		hits:   hits,
	}
}

func (f *fixture) csv(lines ...string) *sheet.Grid {
	text := strings.ReplaceAll(strings.Join(lines, "\n"), "{srv}", f.srv.URL)
	return sheet.ParseString(text)
}

func assertInvariants(t *testing.T, g *sheet.Grid, r *Report) {
	t.Helper()
	assert.True(t, r.OK)
	assert.Equal(t, len(g.Rows), r.Processed)
	assert.Equal(t, r.Processed, r.Inserted+r.Skipped)
	assert.Len(t, r.Errors, r.Skipped)
	for i := 1; i < len(r.Errors); i++ {
		assert.Less(t, r.Errors[i-1].Row, r.Errors[i].Row)
	}
}

func TestImportCategoriesEndToEnd(t *testing.T) {
	f := newFixture(t)
	g := f.csv(
		"name,picture",
		"Chocolate,{srv}/choco.png",
		",{srv}/missing-name.png",
	)

	report, err := f.engine.ImportCategories(context.Background(), g)
	require.NoError(t, err)
	assertInvariants(t, g, report)

	assert.Equal(t, 2, report.Processed)
	assert.Equal(t, 1, report.Inserted)
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, []RowError{{Row: 3, Error: "missing: name"}}, report.Errors)

	cat, ok := f.store.refs[catalog.RefCategories]["chocolate"]
	require.True(t, ok)
	assert.Equal(t, "Chocolate", cat.Name)
	assert.True(t, strings.HasPrefix(cat.Picture, "/uploads/categories/"))
	_, err = os.Stat(filepath.Join(f.root, filepath.FromSlash(cat.Picture)))
	assert.NoError(t, err)

	// the row missing its name never fetched its picture
	assert.Equal(t, int32(1), f.hits.Load())
}

func TestMissingColumnsIsFatal(t *testing.T) {
	f := newFixture(t)

	report, err := f.engine.ImportCategories(context.Background(), f.csv("name", "Chocolate"))
	assert.Nil(t, report)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingColumns)
	var fe *FatalError
	assert.True(t, errors.As(err, &fe))
	assert.Contains(t, err.Error(), "picture")
	assert.Empty(t, f.store.inserted)

	report, err = f.engine.ImportProducts(context.Background(), f.csv(""))
	assert.Nil(t, report)
	assert.ErrorIs(t, err, ErrMissingColumns)
	assert.Equal(t, "missing required columns: productname, brand, category, picture, barcode", err.Error())
}

func TestImportProductsProvisionsReferences(t *testing.T) {
	f := newFixture(t)
	f.store.refs[catalog.RefCategories]["chocolate"] = catalog.Placeholder{Name: "Chocolate", Slug: "chocolate"}

	g := f.csv(
		"productname,brand,category,picture,barcode,casesize,gross_weight,status",
		"Dark 70,Acme Foods,Chocolate,{srv}/a.png,111,12 x 100g,\"1,250.5\",",
		"Milk,acme-foods,Sweets,{srv}/b.png,222,none,,Discontinued",
	)

	report, err := f.engine.ImportProducts(context.Background(), g)
	require.NoError(t, err)
	assertInvariants(t, g, report)
	assert.Equal(t, 2, report.Inserted)
	assert.Empty(t, report.Errors)

	brand, ok := f.store.refs[catalog.RefBrands]["acme-foods"]
	require.True(t, ok)
	assert.Equal(t, "Acme Foods", brand.Name)
	assert.Equal(t, placeholderPic, brand.Picture)

	sweets, ok := f.store.refs[catalog.RefCategories]["sweets"]
	require.True(t, ok)
	assert.Equal(t, "Sweets", sweets.Name)

	// placeholders are written before any product row
	assert.Equal(t, []string{"brands:acme-foods", "categories:sweets", "product:111", "product:222"}, f.store.inserted)

	p := f.store.products["111"]
	require.NotNil(t, p)
	require.NotNil(t, p.CaseSize)
	assert.Equal(t, 12, *p.CaseSize)
	require.NotNil(t, p.GrossWeight)
	assert.Equal(t, 1250.5, *p.GrossWeight)
	assert.Equal(t, catalog.StatusActive, p.Status)

	p = f.store.products["222"]
	require.NotNil(t, p)
	assert.Nil(t, p.CaseSize)
	assert.Equal(t, "discontinued", p.Status)
}

func TestImportProductsTwiceReportsDuplicates(t *testing.T) {
	f := newFixture(t)
	lines := []string{
		"productname,brand,category,picture,barcode",
		"Dark 70,acme,chocolate,{srv}/a.png,111",
		"Milk,acme,chocolate,{srv}/b.png,222",
	}

	first, err := f.engine.ImportProducts(context.Background(), f.csv(lines...))
	require.NoError(t, err)
	assert.Equal(t, 2, first.Inserted)

	g := f.csv(lines...)
	second, err := f.engine.ImportProducts(context.Background(), g)
	require.NoError(t, err)
	assertInvariants(t, g, second)
	assert.Equal(t, 0, second.Inserted)
	assert.Equal(t, []RowError{
		{Row: 2, Error: "Duplicate barcode: 111"},
		{Row: 3, Error: "Duplicate barcode: 222"},
	}, second.Errors)

	// pictures written for the rejected rows are removed again
	assert.Equal(t, int32(2), f.assets.discarded.Load())
	entries, err := os.ReadDir(filepath.Join(f.root, "uploads", "products"))
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestImportRowFailures(t *testing.T) {
	f := newFixture(t)
	g := f.csv(
		"productname,brand,category,picture,barcode",
		"Dark 70,acme,chocolate,{srv}/a.png,111",
		",acme,,{srv}/b.png,222",
		"Tea,acme,drinks,{srv}/missing.png,333",
		"Coffee,acme,drinks,,",
		"Cocoa,acme,drinks,not a picture,444",
		"Juice,acme,drinks,\"=HYPERLINK(\"\"{srv}/j.png\"\",\"\"photo\"\")\",555",
	)

	report, err := f.engine.ImportProducts(context.Background(), g)
	require.NoError(t, err)
	assertInvariants(t, g, report)

	assert.Equal(t, 2, report.Inserted)
	assert.Equal(t, []RowError{
		{Row: 3, Error: "missing: productname, category"},
		{Row: 4, Error: "missing: picture"},
		{Row: 5, Error: "missing: picture, barcode"},
		{Row: 6, Error: "missing: picture"},
	}, report.Errors)
	assert.NotNil(t, f.store.products["555"])
}

func TestPictureFallbackAndAlreadyStored(t *testing.T) {
	f := newFixture(t)
	dir := filepath.Join(f.root, "uploads", "categories")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "existing.png"), pngBytes, 0o644))

	g := f.csv(
		"name,picture,notes",
		"Chocolate,,{srv}/fallback.png",
		"Tea,/uploads/categories/existing.png,",
		"Coffee,/uploads/categories/exsiting.png,",
	)

	report, err := f.engine.ImportCategories(context.Background(), g)
	require.NoError(t, err)
	assertInvariants(t, g, report)
	assert.Equal(t, 2, report.Inserted)
	assert.Equal(t, []RowError{{Row: 4, Error: "missing: picture"}}, report.Errors)

	assert.Equal(t, int32(1), f.assets.stored.Load())
	assert.Equal(t, "/uploads/categories/existing.png", f.store.refs[catalog.RefCategories]["tea"].Picture)
	_, ok := f.store.refs[catalog.RefCategories]["coffee"]
	assert.False(t, ok)
}

func TestImportProductsCapsOversizedQuantities(t *testing.T) {
	f := newFixture(t)
	g := f.csv(
		"productname,brand,category,picture,barcode,casesize,palletqty,layerqty",
		"Bulk Rice,acme,grains,{srv}/rice.png,333,99999999999 units,4294967296,20",
	)

	report, err := f.engine.ImportProducts(context.Background(), g)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Inserted)

	p := f.store.products["333"]
	require.NotNil(t, p)
	require.NotNil(t, p.CaseSize)
	assert.Equal(t, math.MaxInt32, *p.CaseSize)
	require.NotNil(t, p.PalletQty)
	assert.Equal(t, math.MaxInt32, *p.PalletQty)
	require.NotNil(t, p.LayerQty)
	assert.Equal(t, 20, *p.LayerQty)
}

func TestStoredPictureDiscardedOnInsertFailure(t *testing.T) {
	f := newFixture(t)
	f.store.failCreate = errors.New("connection reset by peer")

	g := f.csv("name,picture", "Acme,{srv}/logo.png")
	report, err := f.engine.ImportBrands(context.Background(), g)
	require.NoError(t, err)
	assert.Equal(t, []RowError{{Row: 2, Error: "connection reset by peer"}}, report.Errors)
	assert.Equal(t, int32(1), f.assets.discarded.Load())
}

func TestImportBrandsSlugColumn(t *testing.T) {
	f := newFixture(t)
	g := f.csv(
		"name,picture,slug",
		"Acme Foods,{srv}/a.png,acme",
		"Acme Again,{srv}/b.png,acme",
		"!!!,{srv}/c.png,",
	)

	report, err := f.engine.ImportBrands(context.Background(), g)
	require.NoError(t, err)
	assertInvariants(t, g, report)
	assert.Equal(t, []RowError{
		{Row: 3, Error: "Duplicate slug: acme"},
		{Row: 4, Error: "missing: name"},
	}, report.Errors)
	assert.Equal(t, "Acme Foods", f.store.refs[catalog.RefBrands]["acme"].Name)
}

func TestProvisioningFailureIsFatal(t *testing.T) {
	f := newFixture(t)
	f.store.failRefs = errors.New("deadlock detected")

	g := f.csv("productname,brand,category,picture,barcode", "Dark,acme,choc,{srv}/a.png,1")
	report, err := f.engine.ImportProducts(context.Background(), g)
	assert.Nil(t, report)
	var fe *FatalError
	require.True(t, errors.As(err, &fe))
	assert.Contains(t, err.Error(), "deadlock detected")
	assert.Empty(t, f.store.products)
}

func TestCancelledContext(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := f.engine.ImportCategories(ctx, f.csv("name,picture", "Tea,{srv}/t.png"))
	assert.Nil(t, report)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEnsureReferences(t *testing.T) {
	store := newMemStore()
	store.refs[catalog.RefBrands]["acme"] = catalog.Placeholder{Slug: "acme"}
	p := NewProvisioner(store, placeholderPic, nil)

	created, err := p.EnsureReferences(context.Background(), catalog.RefBrands, []string{"zed", "acme", "", "zed", "big-box"})
	require.NoError(t, err)
	assert.Equal(t, []string{"zed", "big-box"}, created)
	assert.Equal(t, "Big Box", store.refs[catalog.RefBrands]["big-box"].Name)

	created, err = p.EnsureReferences(context.Background(), catalog.RefBrands, []string{"acme", "zed"})
	require.NoError(t, err)
	assert.Empty(t, created)
}
