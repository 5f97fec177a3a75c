// Package request parses incoming HTTP payloads into service inputs.
package request

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/shopspring/decimal"

	"github.com/ndewijer/Parts-Shop-Manager-Backend/internal/model"
	"github.com/ndewijer/Parts-Shop-Manager-Backend/internal/validation"
)

// Product form field names.
const (
	FieldName             = "name"
	FieldStock            = "stock"
	FieldPurchasePrice    = "purchasePrice"
	FieldSellingPrice     = "sellingPrice"
	FieldCompatibility    = "compatibility"
	FieldLastPurchaseDate = "lastPurchaseDate"
	FieldImage            = "image"
)

// maxFormSize bounds the whole product form: the largest accepted image plus room for the
// text fields and multipart framing. Larger bodies are cut off before they are parsed.
const maxFormSize = validation.MaxImageSize + 1<<20

// ParseNewProduct reads a product creation form. The image part is required.
func ParseNewProduct(w http.ResponseWriter, r *http.Request) (model.NewProduct, error) {
	fields, img, err := parseProductForm(w, r)
	if err != nil {
		return model.NewProduct{}, err
	}
	if img == nil {
		return model.NewProduct{}, &validation.Error{Fields: map[string]string{FieldImage: "image is required"}}
	}
	return model.NewProduct{Fields: fields, Image: img}, nil
}

// ParseProductEdit reads a product update form. Without an image part the current
// image is kept.
func ParseProductEdit(w http.ResponseWriter, r *http.Request) (model.ProductEdit, error) {
	fields, img, err := parseProductForm(w, r)
	if err != nil {
		return nil, err
	}
	if img == nil {
		return model.EditFieldsOnly{Fields: fields}, nil
	}
	return model.EditWithImage{Fields: fields, Image: *img}, nil
}

func parseProductForm(w http.ResponseWriter, r *http.Request) (model.ProductFields, *model.ImageUpload, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormSize)
	if err := r.ParseMultipartForm(maxFormSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return model.ProductFields{}, nil, &validation.Error{Fields: map[string]string{
				FieldImage: "image must be 5MB or smaller",
			}}
		}
		return model.ProductFields{}, nil, fmt.Errorf("invalid multipart form: %w", err)
	}

	errs := make(map[string]string)
	fields := model.ProductFields{
		Name:          r.FormValue(FieldName),
		Compatibility: r.FormValue(FieldCompatibility),
	}

	stock, err := strconv.Atoi(strings.TrimSpace(r.FormValue(FieldStock)))
	if err != nil {
		errs[FieldStock] = "stock must be a whole number"
	}
	fields.Stock = stock

	fields.PurchasePrice = parsePrice(errs, FieldPurchasePrice, r.FormValue(FieldPurchasePrice))
	fields.SellingPrice = parsePrice(errs, FieldSellingPrice, r.FormValue(FieldSellingPrice))

	if raw := strings.TrimSpace(r.FormValue(FieldLastPurchaseDate)); raw != "" {
		t, err := dateparse.ParseIn(raw, time.UTC)
		if err != nil {
			errs[FieldLastPurchaseDate] = "lastPurchaseDate is not a valid date"
		}
		fields.LastPurchaseDate = t.UTC()
	}

	img, err := readImage(r)
	if err != nil {
		errs[FieldImage] = err.Error()
	}

	if len(errs) > 0 {
		return model.ProductFields{}, nil, &validation.Error{Fields: errs}
	}
	return fields, img, nil
}

func parsePrice(errs map[string]string, field, raw string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		errs[field] = field + " must be a number"
		return decimal.Zero
	}
	return d
}

// readImage returns nil when the form carries no image part. It reads at most one byte
// past the size limit so oversized files are still rejected by validation.
func readImage(r *http.Request) (*model.ImageUpload, error) {
	file, header, err := r.FormFile(FieldImage)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("unreadable image: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, validation.MaxImageSize+1))
	if err != nil {
		return nil, fmt.Errorf("unreadable image: %w", err)
	}
	return &model.ImageUpload{
		Filename:    header.Filename,
		ContentType: contentType(header),
		Data:        data,
	}, nil
}

func contentType(h *multipart.FileHeader) string {
	return h.Header.Get("Content-Type")
}
