package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PlaceholderImageURL is used for products created without an image.
const PlaceholderImageURL = "https://placehold.co/400x300"

// Product is a catalog entry. Stock is the only source of truth for available quantity.
type Product struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	Stock            int             `json:"stock"`
	PurchasePrice    decimal.Decimal `json:"purchasePrice"`
	SellingPrice     decimal.Decimal `json:"sellingPrice"`
	Compatibility    string          `json:"compatibility"`
	ImageURL         string          `json:"imageUrl"`
	LastPurchaseDate time.Time       `json:"lastPurchaseDate"`
	CreatedAt        time.Time       `json:"createdAt"`
}

// ProfitPerUnit is the margin of one unit at the product's current prices.
func (p Product) ProfitPerUnit() decimal.Decimal {
	return p.SellingPrice.Sub(p.PurchasePrice)
}

// ProductCSVRow is one line of the stock CSV export.
type ProductCSVRow struct {
	Name             string `csv:"name"`
	Stock            int    `csv:"stock"`
	SellingPrice     string `csv:"sellingPrice"`
	Compatibility    string `csv:"compatibility"`
	LastPurchaseDate string `csv:"lastPurchaseDate"`
}

// ProductFields are the operator-editable attributes of a product.
type ProductFields struct {
	Name             string
	Stock            int
	PurchasePrice    decimal.Decimal
	SellingPrice     decimal.Decimal
	Compatibility    string
	LastPurchaseDate time.Time
}

// ImageUpload is an image file submitted with a product form.
type ImageUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// NewProduct is the input for creating a product. Image is optional; without it the
// product gets the placeholder image.
type NewProduct struct {
	Fields ProductFields
	Image  *ImageUpload
}

// ProductEdit is an update to an existing product. It is either EditWithImage, which
// replaces the stored image, or EditFieldsOnly, which keeps the current image URL.
type ProductEdit interface {
	EditedFields() ProductFields
	isProductEdit()
}

// EditWithImage updates the fields and replaces the image.
type EditWithImage struct {
	Fields ProductFields
	Image  ImageUpload
}

// EditFieldsOnly updates the fields and keeps the existing image.
type EditFieldsOnly struct {
	Fields ProductFields
}

func (e EditWithImage) EditedFields() ProductFields  { return e.Fields }
func (e EditFieldsOnly) EditedFields() ProductFields { return e.Fields }

func (EditWithImage) isProductEdit()  {}
func (EditFieldsOnly) isProductEdit() {}
