package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/ndewijer/Parts-Shop-Manager-Backend/internal/model"
	"github.com/ndewijer/Parts-Shop-Manager-Backend/internal/repository"
)

var counter atomic.Int64

// MakeID returns a new UUID string.
func MakeID() string {
	return uuid.New().String()
}

// MakeName returns prefix followed by a unique number.
func MakeName(prefix string) string {
	return fmt.Sprintf("%s %d", prefix, counter.Add(1))
}

// ProductBuilder provides a fluent interface for creating test products.
//
// Example usage:
//
//	// Simple creation with defaults
//	product := testutil.NewProduct().Build(t, db)
//
//	// Customized product
//	product := testutil.NewProduct().
//	    WithName("Brake Pad").
//	    WithStock(0).
//	    WithPrices("100", "150").
//	    Build(t, db)
type ProductBuilder struct {
	product model.Product
}

// NewProduct creates a ProductBuilder with sensible defaults.
func NewProduct() *ProductBuilder {
	now := time.Now().UTC().Truncate(time.Millisecond)
	return &ProductBuilder{product: model.Product{
		ID:               MakeID(),
		Name:             MakeName("Test Part"),
		Stock:            10,
		PurchasePrice:    decimal.NewFromInt(100),
		SellingPrice:     decimal.NewFromInt(150),
		Compatibility:    "Universal",
		ImageURL:         model.PlaceholderImageURL,
		LastPurchaseDate: now,
		CreatedAt:        now,
	}}
}

// WithID sets a custom ID.
func (b *ProductBuilder) WithID(id string) *ProductBuilder {
	b.product.ID = id
	return b
}

// WithName sets a custom name.
func (b *ProductBuilder) WithName(name string) *ProductBuilder {
	b.product.Name = name
	return b
}

// WithStock sets the stock level.
func (b *ProductBuilder) WithStock(stock int) *ProductBuilder {
	b.product.Stock = stock
	return b
}

// WithPrices sets the purchase and selling price from decimal strings.
func (b *ProductBuilder) WithPrices(purchase, selling string) *ProductBuilder {
	b.product.PurchasePrice = decimal.RequireFromString(purchase)
	b.product.SellingPrice = decimal.RequireFromString(selling)
	return b
}

// WithImageURL sets the image URL.
func (b *ProductBuilder) WithImageURL(url string) *ProductBuilder {
	b.product.ImageURL = url
	return b
}

// WithCreatedAt sets the creation time.
func (b *ProductBuilder) WithCreatedAt(at time.Time) *ProductBuilder {
	b.product.CreatedAt = at.UTC()
	return b
}

// Model returns the product without storing it.
func (b *ProductBuilder) Model() model.Product {
	return b.product
}

// Build stores the product and returns it.
func (b *ProductBuilder) Build(t *testing.T, db *sqlx.DB) model.Product {
	t.Helper()

	if err := repository.NewProductRepository(db).InsertProduct(t.Context(), b.product); err != nil {
		t.Fatalf("Failed to create test product: %v", err)
	}
	return b.product
}

// TransactionBuilder provides a fluent interface for creating ledger entries directly,
// bypassing the stock update a sale or return would make.
//
// Example usage:
//
//	tx := testutil.NewTransaction(product).Return().At(yesterday).Build(t, db)
type TransactionBuilder struct {
	transaction model.Transaction
}

// NewTransaction creates a Sale of one unit of product at the current time.
func NewTransaction(product model.Product) *TransactionBuilder {
	return &TransactionBuilder{transaction: model.Transaction{
		ID:          MakeID(),
		Type:        model.TransactionSale,
		ProductID:   product.ID,
		ProductName: product.Name,
		DateTime:    time.Now().UTC().Truncate(time.Millisecond),
		Quantity:    1,
		Amount:      product.SellingPrice,
	}}
}

// Return turns the entry into a Return with a negative amount.
func (b *TransactionBuilder) Return() *TransactionBuilder {
	b.transaction.Type = model.TransactionReturn
	b.transaction.Amount = b.transaction.Amount.Abs().Neg()
	return b
}

// At sets the transaction time.
func (b *TransactionBuilder) At(at time.Time) *TransactionBuilder {
	b.transaction.DateTime = at.UTC()
	return b
}

// WithQuantity sets the quantity and scales the amount accordingly.
func (b *TransactionBuilder) WithQuantity(q int) *TransactionBuilder {
	unit := b.transaction.Amount.Div(decimal.NewFromInt(int64(b.transaction.Quantity)))
	b.transaction.Quantity = q
	b.transaction.Amount = unit.Mul(decimal.NewFromInt(int64(q)))
	return b
}

// Model returns the transaction without storing it.
func (b *TransactionBuilder) Model() model.Transaction {
	return b.transaction
}

// Build stores the transaction and returns it.
func (b *TransactionBuilder) Build(t *testing.T, db *sqlx.DB) model.Transaction {
	t.Helper()

	if err := repository.NewTransactionRepository(db).InsertTransaction(t.Context(), b.transaction); err != nil {
		t.Fatalf("Failed to create test transaction: %v", err)
	}
	return b.transaction
}

// CreateProduct creates a product with the given name and default values.
func CreateProduct(t *testing.T, db *sqlx.DB, name string) model.Product {
	t.Helper()
	return NewProduct().WithName(name).Build(t, db)
}

// CreateProducts creates count products with distinct names and creation times.
func CreateProducts(t *testing.T, db *sqlx.DB, count int) []model.Product {
	t.Helper()

	base := time.Now().UTC().Truncate(time.Millisecond)
	products := make([]model.Product, count)
	for i := range count {
		products[i] = NewProduct().
			WithName(MakeName("Part")).
			WithCreatedAt(base.Add(time.Duration(i) * time.Second)).
			Build(t, db)
	}
	return products
}
