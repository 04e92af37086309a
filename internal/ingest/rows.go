package ingest

import (
	"errors"
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"wholesale/internal/normalize"
	"wholesale/internal/sheet"
)

var validate = newValidator()

// newValidator reports field errors under their column name.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("col"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

type productRow struct {
	Name     string `col:"productname" validate:"required"`
	Brand    string `col:"brand" validate:"required"`
	Category string `col:"category" validate:"required"`
	Barcode  string `col:"barcode" validate:"required"`
	Picture  string `col:"picture"`

	CaseSize      *int     `col:"casesize"`
	GrossWeight   *float64 `col:"gross_weight"`
	Volume        *float64 `col:"volume"`
	PalletQty     *int     `col:"palletqty"`
	LayerQty      *int     `col:"layerqty"`
	Status        string   `col:"status"`
	PromotionType *string  `col:"promotion_type"`
}

// referenceRow is one category or brand line.
type referenceRow struct {
	Name string `col:"name" validate:"required"`
	// A name that slugifies to nothing counts as a missing name.
	Slug    string `col:"name" validate:"required"`
	Picture string `col:"picture"`
}

func readProductRow(g *sheet.Grid, i int) productRow {
	row := productRow{
		Name:     g.Value(i, "productname"),
		Brand:    normalize.Slugify(g.Value(i, "brand")),
		Category: normalize.Slugify(g.Value(i, "category")),
		Barcode:  g.Value(i, "barcode"),
		Picture:  pictureCell(g, i),
		Status:   strings.ToLower(g.Value(i, "status")),
	}
	row.CaseSize = quantity(g.Value(i, "casesize"))
	row.PalletQty = quantity(g.Value(i, "palletqty"))
	row.LayerQty = quantity(g.Value(i, "layerqty"))
	if f, ok := normalize.ToNumber(g.Value(i, "gross_weight")); ok {
		row.GrossWeight = &f
	}
	if f, ok := normalize.ToNumber(g.Value(i, "volume")); ok {
		row.Volume = &f
	}
	if p := g.Value(i, "promotion_type"); p != "" {
		row.PromotionType = &p
	}
	return row
}

// quantity reads a loose positive count, capped to the INTEGER column range.
func quantity(raw string) *int {
	n, ok := normalize.ToPositiveIntLoose(raw)
	if !ok {
		return nil
	}
	n = min(n, math.MaxInt32)
	return &n
}

func readReferenceRow(g *sheet.Grid, i int) referenceRow {
	row := referenceRow{
		Name:    g.Value(i, "name"),
		Picture: pictureCell(g, i),
	}
	slug := g.Value(i, "slug")
	if slug == "" {
		slug = row.Name
	}
	row.Slug = normalize.Slugify(slug)
	return row
}

// pictureCell is the normalised picture column, or the first picture looking
// cell of the row when that column is blank.
func pictureCell(g *sheet.Grid, i int) string {
	if p := normalize.NormalizePicture(g.Value(i, "picture")); p != "" {
		return p
	}
	return normalize.FindPictureFallback(g.Rows[i])
}

// missingFields validates a row record and returns the blank required
// columns, picture included, in the order of required.
func missingFields(rec any, picture string, required []string) []string {
	blank := make(map[string]bool)
	var verrs validator.ValidationErrors
	if err := validate.Struct(rec); errors.As(err, &verrs) {
		for _, fe := range verrs {
			blank[fe.Field()] = true
		}
	}
	if picture == "" {
		blank["picture"] = true
	}

	var out []string
	for _, name := range required {
		if blank[name] {
			out = append(out, name)
		}
	}
	return out
}
