package ingest

import "wholesale/internal/sheet"

// Kind names an importable entity.
type Kind string

const (
	KindProducts   Kind = "products"
	KindCategories Kind = "categories"
	KindBrands     Kind = "brands"
)

func ParseKind(s string) (Kind, bool) {
	switch k := Kind(s); k {
	case KindProducts, KindCategories, KindBrands:
		return k, true
	}
	return "", false
}

var productColumns = []sheet.Column{
	{Name: "productname", Required: true, Description: "Display name of the product", Example: "Dark Chocolate 70% 100g"},
	{Name: "brand", Required: true, Description: "Brand name or slug; unknown brands are created as placeholders", Example: "acme-foods"},
	{Name: "category", Required: true, Description: "Category name or slug; unknown categories are created as placeholders", Example: "chocolate"},
	{Name: "picture", Required: true, Description: "Image URL, data URI, /path, file name or HYPERLINK formula", Example: "https://example.com/choco.png"},
	{Name: "barcode", Required: true, Description: "Unique barcode (EAN/UPC)", Example: "5012345678900"},
	{Name: "casesize", Description: "Units per case; free text such as '12 x 100g' is accepted", Example: "12 x 100g"},
	{Name: "gross_weight", Description: "Gross weight in kg", Example: "1.35"},
	{Name: "volume", Description: "Volume in m3", Example: "0.004"},
	{Name: "palletqty", Description: "Cases per pallet", Example: "120"},
	{Name: "layerqty", Description: "Cases per pallet layer", Example: "20"},
	{Name: "status", Description: "Product status, defaults to active", Example: "active"},
	{Name: "promotion_type", Description: "Optional promotion label", Example: "new"},
}

var categoryColumns = []sheet.Column{
	{Name: "name", Required: true, Description: "Display name of the category", Example: "Chocolate"},
	{Name: "picture", Required: true, Description: "Image URL, data URI, /path, file name or HYPERLINK formula", Example: "https://example.com/chocolate.png"},
	{Name: "slug", Description: "Unique slug, derived from the name when empty", Example: "chocolate"},
}

var brandColumns = []sheet.Column{
	{Name: "name", Required: true, Description: "Display name of the brand", Example: "Acme Foods"},
	{Name: "picture", Required: true, Description: "Logo URL, data URI, /path, file name or HYPERLINK formula", Example: "https://example.com/acme.png"},
	{Name: "slug", Description: "Unique slug, derived from the name when empty", Example: "acme-foods"},
}

// Columns returns the template columns of an entity kind.
func Columns(k Kind) []sheet.Column {
	switch k {
	case KindProducts:
		return productColumns
	case KindCategories:
		return categoryColumns
	case KindBrands:
		return brandColumns
	}
	return nil
}

// RequiredColumns lists the header names an upload must carry, in column order.
func RequiredColumns(k Kind) []string {
	var out []string
	for _, c := range Columns(k) {
		if c.Required {
			out = append(out, c.Name)
		}
	}
	return out
}
