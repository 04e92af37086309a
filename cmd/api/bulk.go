package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"wholesale/internal/ingest"
	"wholesale/internal/sheet"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-chi/chi/v5"
)

const xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// multipart parts above this stay on disk while parsing
const multipartMemory = 8 << 20

var errUnsupportedFormat = errors.New("unsupported file format, upload a .csv or .xlsx file")

func kindParam(r *http.Request) (ingest.Kind, bool) {
	return ingest.ParseKind(strings.ToLower(chi.URLParam(r, "kind")))
}

// parseUpload picks the reader from the file name, then from the content.
func parseUpload(name string, data []byte, kind ingest.Kind) (*sheet.Grid, error) {
	ext := strings.ToLower(filepath.Ext(name))
	m := mimetype.Detect(data)

	switch {
	case ext == ".xlsx" || m.Is(xlsxMIME):
		return sheet.ParseXLSX(bytes.NewReader(data), string(kind))
	case ext == ".csv" || ext == ".txt" || strings.HasPrefix(m.String(), "text/"):
		return sheet.Parse(data)
	}
	return nil, fmt.Errorf("%w (detected %s)", errUnsupportedFormat, m.String())
}

// bulkUploadHandler godoc
//
//	@Summary		Bulk import
//	@Description	Imports products, categories or brands from a CSV or XLSX file. Row failures are reported, not fatal.
//	@Tags			admin-bulk
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			kind	path		string	true	"products, categories or brands"
//	@Param			file	formData	file	true	"CSV or XLSX file"
//	@Success		200		{object}	ingest.Report
//	@Failure		400		{object}	error
//	@Failure		401		{object}	error
//	@Failure		403		{object}	error
//	@Failure		429		{object}	error
//	@Failure		500		{object}	error
//	@Security		ApiKeyAuth
//	@Router			/store/admin/{kind}/bulk [post]
func (app *application) bulkUploadHandler(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindParam(r)
	if !ok {
		app.notFoundResponse(w, r, fmt.Errorf("unknown import kind %q", chi.URLParam(r, "kind")))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, app.config.upload.maxBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("failed to parse form: %w", err))
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("missing file field: %w", err))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("read upload: %w", err))
		return
	}

	grid, err := parseUpload(header.Filename, data, kind)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var adminID int64
	if s := getSessionFromContext(r); s != nil {
		adminID = s.AdminID
	}
	app.logger.Infow("bulk upload received",
		"kind", kind,
		"admin_id", adminID,
		"file", header.Filename,
		"bytes", len(data),
		"rows", len(grid.Rows),
	)

	report, err := app.importer.Import(r.Context(), kind, grid)
	if err != nil {
		switch {
		case errors.Is(err, ingest.ErrMissingColumns):
			app.badRequestResponse(w, r, err)
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			app.internalServerError(w, r, fmt.Errorf("upload aborted: %w", err))
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	if err := writeJSON(w, http.StatusOK, report); err != nil {
		app.internalServerError(w, r, err)
	}
}

// bulkTemplateHandler godoc
//
//	@Summary		Download an import template
//	@Tags			admin-bulk
//	@Produce		text/csv
//	@Produce		application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
//	@Param			kind	path	string	true	"products, categories or brands"
//	@Param			format	query	string	false	"csv or xlsx"	default(csv)
//	@Success		200
//	@Failure		400	{object}	error
//	@Security		ApiKeyAuth
//	@Router			/store/admin/{kind}/bulk/template [get]
func (app *application) bulkTemplateHandler(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindParam(r)
	if !ok {
		app.notFoundResponse(w, r, fmt.Errorf("unknown import kind %q", chi.URLParam(r, "kind")))
		return
	}
	cols := ingest.Columns(kind)

	format := strings.ToLower(r.URL.Query().Get("format"))
	switch format {
	case "", "csv":
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s-template.csv"`, kind))
		if err := sheet.WriteCSVTemplate(w, cols); err != nil {
			app.logger.Errorw("write csv template", "kind", kind, "error", err.Error())
		}
	case "xlsx":
		w.Header().Set("Content-Type", xlsxMIME)
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s-template.xlsx"`, kind))
		title := strings.ToUpper(string(kind[:1])) + string(kind[1:])
		if err := sheet.WriteXLSXTemplate(w, title, cols); err != nil {
			app.logger.Errorw("write xlsx template", "kind", kind, "error", err.Error())
		}
	default:
		app.badRequestResponse(w, r, fmt.Errorf("unknown template format %q", format))
	}
}
