package main

import (
	"context"
	"net/http"
	"time"

	"wholesale/internal/domain/catalog"
	"wholesale/internal/params"
)

// adminOverviewHandler godoc
//
//	@Summary		Catalog overview
//	@Description	Totals for the admin dashboard, including categories and brands still carrying the placeholder picture.
//	@Tags			admin-overview
//	@Produce		json
//	@Success		200	{object}	catalog.Overview
//	@Failure		401	{object}	error
//	@Failure		403	{object}	error
//	@Failure		500	{object}	error
//	@Security		ApiKeyAuth
//	@Router			/store/admin/overview [get]
func (app *application) adminOverviewHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 12*time.Second)
	defer cancel()

	out, err := app.catalog.GetOverview(ctx, app.config.media.placeholderPicture)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	_ = app.jsonResponse(w, http.StatusOK, out)
}

type CategoryListResponse struct {
	Categories []*catalog.Category `json:"categories"`
	Pagination params.Pagination   `json:"pagination"`
}

type BrandListResponse struct {
	Brands     []*catalog.Brand  `json:"brands"`
	Pagination params.Pagination `json:"pagination"`
}

// listCategoriesHandler godoc
//
//	@Summary	List categories (admin)
//	@Tags		admin-catalog
//	@Produce	json
//	@Param		page	query		int	false	"Page number"		default(1)
//	@Param		limit	query		int	false	"Items per page"	default(20)
//	@Success	200		{object}	CategoryListResponse
//	@Security	ApiKeyAuth
//	@Router		/store/admin/categories [get]
func (app *application) listCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	p := params.ParsePagination(r.URL.Query())

	items, total, err := app.catalog.ListCategories(r.Context(), p.Limit, p.Offset)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	if items == nil {
		items = []*catalog.Category{}
	}
	p.ComputeMeta(total)

	_ = app.jsonResponse(w, http.StatusOK, CategoryListResponse{Categories: items, Pagination: p})
}

// listBrandsHandler godoc
//
//	@Summary	List brands (admin)
//	@Tags		admin-catalog
//	@Produce	json
//	@Param		page	query		int	false	"Page number"		default(1)
//	@Param		limit	query		int	false	"Items per page"	default(20)
//	@Success	200		{object}	BrandListResponse
//	@Security	ApiKeyAuth
//	@Router		/store/admin/brands [get]
func (app *application) listBrandsHandler(w http.ResponseWriter, r *http.Request) {
	p := params.ParsePagination(r.URL.Query())

	items, total, err := app.catalog.ListBrands(r.Context(), p.Limit, p.Offset)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	if items == nil {
		items = []*catalog.Brand{}
	}
	p.ComputeMeta(total)

	_ = app.jsonResponse(w, http.StatusOK, BrandListResponse{Brands: items, Pagination: p})
}
