package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/ndewijer/Parts-Shop-Manager-Backend/internal/apperrors"
	"github.com/ndewijer/Parts-Shop-Manager-Backend/internal/model"
)

const productCollection = "products"

// productRow is the stored form of a product. Money and time are kept as text.
type productRow struct {
	ID               string `db:"id"`
	Name             string `db:"name"`
	Stock            int    `db:"stock"`
	PurchasePrice    string `db:"purchase_price"`
	SellingPrice     string `db:"selling_price"`
	Compatibility    string `db:"compatibility"`
	ImageURL         string `db:"image_url"`
	LastPurchaseDate string `db:"last_purchase_date"`
	CreatedAt        string `db:"created_at"`
}

func newProductRow(p model.Product) productRow {
	return productRow{
		ID:               p.ID,
		Name:             p.Name,
		Stock:            p.Stock,
		PurchasePrice:    p.PurchasePrice.String(),
		SellingPrice:     p.SellingPrice.String(),
		Compatibility:    p.Compatibility,
		ImageURL:         p.ImageURL,
		LastPurchaseDate: FormatTime(p.LastPurchaseDate),
		CreatedAt:        FormatTime(p.CreatedAt),
	}
}

func (r productRow) toModel() (model.Product, error) {
	purchase, err := parseDecimal("purchase_price", r.PurchasePrice)
	if err != nil {
		return model.Product{}, err
	}
	selling, err := parseDecimal("selling_price", r.SellingPrice)
	if err != nil {
		return model.Product{}, err
	}
	return model.Product{
		ID:               r.ID,
		Name:             r.Name,
		Stock:            r.Stock,
		PurchasePrice:    purchase,
		SellingPrice:     selling,
		Compatibility:    r.Compatibility,
		ImageURL:         r.ImageURL,
		LastPurchaseDate: parseTimeOrZero(r.LastPurchaseDate),
		CreatedAt:        parseTimeOrZero(r.CreatedAt),
	}, nil
}

// ProductRepository provides data access methods for the product table.
type ProductRepository struct {
	db *sqlx.DB
	tx *sqlx.Tx
}

// NewProductRepository creates a new ProductRepository with the provided database connection.
func NewProductRepository(db *sqlx.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// WithTx returns a new ProductRepository scoped to the provided transaction.
func (r *ProductRepository) WithTx(tx *sqlx.Tx) *ProductRepository {
	return &ProductRepository{
		db: r.db,
		tx: tx,
	}
}

// getQuerier returns the active transaction if one is set, otherwise the database connection.
func (r *ProductRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

// ListProducts retrieves all products, newest first.
func (r *ProductRepository) ListProducts(ctx context.Context) ([]model.Product, error) {
	query := `
		SELECT id, name, stock, purchase_price, selling_price, compatibility,
			image_url, last_purchase_date, created_at
		FROM product
		ORDER BY created_at DESC, id ASC
	`

	var rows []productRow
	if err := r.getQuerier().SelectContext(ctx, &rows, query); err != nil {
		err = translateError(err, "list", productCollection, productCollection, nil)
		return nil, fmt.Errorf("failed to query products: %w", err)
	}

	products := make([]model.Product, 0, len(rows))
	for _, row := range rows {
		p, err := row.toModel()
		if err != nil {
			return nil, fmt.Errorf("failed to read product %s: %w", row.ID, err)
		}
		products = append(products, p)
	}
	return products, nil
}

// GetProduct retrieves a single product by its ID.
// Returns ErrProductNotFound if no product with the given ID exists.
func (r *ProductRepository) GetProduct(ctx context.Context, id string) (model.Product, error) {
	query := `
		SELECT id, name, stock, purchase_price, selling_price, compatibility,
			image_url, last_purchase_date, created_at
		FROM product
		WHERE id = ?
	`

	var row productRow
	err := r.getQuerier().GetContext(ctx, &row, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Product{}, apperrors.ErrProductNotFound
	}
	if err != nil {
		err = translateError(err, "get", productCollection, productPath(id), nil)
		return model.Product{}, fmt.Errorf("failed to query product: %w", err)
	}
	return row.toModel()
}

// InsertProduct stores a new product.
func (r *ProductRepository) InsertProduct(ctx context.Context, p model.Product) error {
	query := `
		INSERT INTO product (id, name, stock, purchase_price, selling_price, compatibility,
			image_url, last_purchase_date, created_at)
		VALUES (:id, :name, :stock, :purchase_price, :selling_price, :compatibility,
			:image_url, :last_purchase_date, :created_at)
	`

	if _, err := r.getQuerier().NamedExecContext(ctx, query, newProductRow(p)); err != nil {
		err = translateError(err, "create", productCollection, productPath(p.ID), p)
		return fmt.Errorf("failed to insert product: %w", err)
	}
	return nil
}

// UpdateProduct overwrites every mutable field of an existing product.
// Returns ErrProductNotFound if no product with the given ID exists.
func (r *ProductRepository) UpdateProduct(ctx context.Context, p model.Product) error {
	query := `
		UPDATE product
		SET name = :name, stock = :stock, purchase_price = :purchase_price,
			selling_price = :selling_price, compatibility = :compatibility,
			image_url = :image_url, last_purchase_date = :last_purchase_date
		WHERE id = :id
	`

	result, err := r.getQuerier().NamedExecContext(ctx, query, newProductRow(p))
	if err != nil {
		err = translateError(err, "update", productCollection, productPath(p.ID), p)
		return fmt.Errorf("failed to update product: %w", err)
	}
	return expectAffected(result, apperrors.ErrProductNotFound)
}

// AdjustStock atomically applies delta to a product's stock, refusing to go below zero.
// Returns ErrProductNotFound if the product does not exist and ErrOutOfStock if the
// resulting stock would be negative.
func (r *ProductRepository) AdjustStock(ctx context.Context, id string, delta int) error {
	query := `
		UPDATE product
		SET stock = stock + ?
		WHERE id = ? AND stock + ? >= 0
	`

	result, err := r.getQuerier().ExecContext(ctx, query, delta, id, delta)
	if err != nil {
		err = translateError(err, "update", productCollection, productPath(id), map[string]int{"stockDelta": delta})
		return fmt.Errorf("failed to adjust stock: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected > 0 {
		return nil
	}

	var exists int
	err = r.getQuerier().GetContext(ctx, &exists, `SELECT COUNT(*) FROM product WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to check product: %w", err)
	}
	if exists == 0 {
		return apperrors.ErrProductNotFound
	}
	return apperrors.ErrOutOfStock
}

// DeleteProduct removes a product by ID.
// Returns ErrProductNotFound if no product with the given ID exists.
func (r *ProductRepository) DeleteProduct(ctx context.Context, id string) error {
	result, err := r.getQuerier().ExecContext(ctx, `DELETE FROM product WHERE id = ?`, id)
	if err != nil {
		err = translateError(err, "delete", productCollection, productPath(id), nil)
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return expectAffected(result, apperrors.ErrProductNotFound)
}

// DeleteAllProducts empties the product table.
func (r *ProductRepository) DeleteAllProducts(ctx context.Context) error {
	if _, err := r.getQuerier().ExecContext(ctx, `DELETE FROM product`); err != nil {
		err = translateError(err, "delete", productCollection, productCollection, nil)
		return fmt.Errorf("failed to delete products: %w", err)
	}
	return nil
}

func productPath(id string) string {
	return productCollection + "/" + id
}

func expectAffected(result sql.Result, notFound error) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return notFound
	}
	return nil
}
