package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/ndewijer/Parts-Shop-Manager-Backend/internal/apperrors"
	"github.com/ndewijer/Parts-Shop-Manager-Backend/internal/model"
	"github.com/ndewijer/Parts-Shop-Manager-Backend/internal/repository"
	"github.com/ndewijer/Parts-Shop-Manager-Backend/internal/storage"
	"github.com/ndewijer/Parts-Shop-Manager-Backend/internal/validation"
)

// CSVDateLayout is the lastPurchaseDate format in the stock CSV export.
const CSVDateLayout = "2006-01-02"

// ProductService handles the product catalog.
type ProductService struct {
	db              *sqlx.DB
	productRepo     *repository.ProductRepository
	transactionRepo *repository.TransactionRepository
	images          storage.ImageStore
	notifier        *Notifier
}

// NewProductService creates a new ProductService with the provided dependencies.
func NewProductService(
	db *sqlx.DB,
	productRepo *repository.ProductRepository,
	transactionRepo *repository.TransactionRepository,
	images storage.ImageStore,
	notifier *Notifier,
) *ProductService {
	return &ProductService{
		db:              db,
		productRepo:     productRepo,
		transactionRepo: transactionRepo,
		images:          images,
		notifier:        notifier,
	}
}

// ListProducts returns every product, newest first.
func (s *ProductService) ListProducts(ctx context.Context) ([]model.Product, error) {
	if err := requireSession(ctx); err != nil {
		return nil, err
	}
	products, err := s.productRepo.ListProducts(ctx)
	if err != nil {
		return nil, s.notifier.fail("listProducts", err)
	}
	return products, nil
}

// GetProduct returns a single product.
func (s *ProductService) GetProduct(ctx context.Context, id string) (model.Product, error) {
	if err := requireSession(ctx); err != nil {
		return model.Product{}, err
	}
	product, err := s.productRepo.GetProduct(ctx, id)
	if err != nil {
		return model.Product{}, s.notifier.fail("getProduct", err)
	}
	return product, nil
}

// CreateProduct validates and stores a new product.
//
// The product gets a new ID and CreatedAt. Without an image it uses the placeholder
// image; without a purchase date it uses the creation time.
func (s *ProductService) CreateProduct(ctx context.Context, in model.NewProduct) (model.Product, error) {
	const op = "createProduct"
	if err := requireSession(ctx); err != nil {
		return model.Product{}, s.notifier.fail(op, err)
	}
	if err := validation.ValidateProductFields(in.Fields); err != nil {
		return model.Product{}, s.notifier.fail(op, err)
	}

	now := time.Now().UTC()
	product := applyFields(model.Product{
		ID:        uuid.New().String(),
		ImageURL:  model.PlaceholderImageURL,
		CreatedAt: now,
	}, in.Fields)
	if product.LastPurchaseDate.IsZero() {
		product.LastPurchaseDate = now
	}

	if in.Image != nil {
		url, err := s.images.Save(product.ID, *in.Image)
		if err != nil {
			return model.Product{}, s.notifier.fail(op, err)
		}
		product.ImageURL = url
	}

	if err := s.productRepo.InsertProduct(ctx, product); err != nil {
		if in.Image != nil {
			s.removeImage(product.ImageURL)
		}
		return model.Product{}, s.notifier.fail(op, err)
	}

	s.notifier.committed(ctx, productsChanged)
	return product, nil
}

// UpdateProduct applies an edit to an existing product.
//
// EditWithImage stores the new image and replaces the URL; EditFieldsOnly keeps the
// current URL. CreatedAt is never changed. Returns ErrProductNotFound when the product
// does not exist.
func (s *ProductService) UpdateProduct(ctx context.Context, id string, edit model.ProductEdit) (model.Product, error) {
	const op = "updateProduct"
	if err := requireSession(ctx); err != nil {
		return model.Product{}, s.notifier.fail(op, err)
	}
	if edit == nil {
		return model.Product{}, s.notifier.fail(op, fmt.Errorf("%w: no edit given", apperrors.ErrValidation))
	}
	fields := edit.EditedFields()
	if err := validation.ValidateProductFields(fields); err != nil {
		return model.Product{}, s.notifier.fail(op, err)
	}

	existing, err := s.productRepo.GetProduct(ctx, id)
	if err != nil {
		return model.Product{}, s.notifier.fail(op, err)
	}

	updated := applyFields(existing, fields)
	if fields.LastPurchaseDate.IsZero() {
		updated.LastPurchaseDate = existing.LastPurchaseDate
	}

	switch e := edit.(type) {
	case model.EditWithImage:
		url, err := s.images.Save(id, e.Image)
		if err != nil {
			return model.Product{}, s.notifier.fail(op, err)
		}
		updated.ImageURL = url
	case model.EditFieldsOnly:
		updated.ImageURL = existing.ImageURL
	}

	if err := s.productRepo.UpdateProduct(ctx, updated); err != nil {
		if updated.ImageURL != existing.ImageURL {
			s.removeImage(updated.ImageURL)
		}
		return model.Product{}, s.notifier.fail(op, err)
	}
	if updated.ImageURL != existing.ImageURL {
		s.removeImage(existing.ImageURL)
	}

	s.notifier.committed(ctx, productsChanged)
	return updated, nil
}

// DeleteProduct removes a product together with every ledger entry that references it.
// Both deletes happen in one database transaction. Returns ErrProductNotFound when the
// product does not exist.
func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	const op = "deleteProduct"
	if err := requireSession(ctx); err != nil {
		return s.notifier.fail(op, err)
	}

	var imageURL string
	err := runInTx(ctx, s.db, func(tx *sqlx.Tx) error {
		products := s.productRepo.WithTx(tx)

		product, err := products.GetProduct(ctx, id)
		if err != nil {
			return err
		}
		imageURL = product.ImageURL

		if _, err := s.transactionRepo.WithTx(tx).DeleteTransactionsByProduct(ctx, id); err != nil {
			return err
		}
		return products.DeleteProduct(ctx, id)
	})
	if err != nil {
		return s.notifier.fail(op, fmt.Errorf("failed to delete product: %w", err))
	}

	s.removeImage(imageURL)
	s.notifier.committed(ctx, productsChanged|transactionsChanged)
	return nil
}

// ExportCSV writes one CSV row per product with name, stock, sellingPrice,
// compatibility and lastPurchaseDate columns.
func (s *ProductService) ExportCSV(ctx context.Context, w io.Writer) error {
	products, err := s.ListProducts(ctx)
	if err != nil {
		return err
	}

	rows := make([]*model.ProductCSVRow, 0, len(products))
	for _, p := range products {
		lastPurchase := ""
		if !p.LastPurchaseDate.IsZero() {
			lastPurchase = p.LastPurchaseDate.UTC().Format(CSVDateLayout)
		}
		rows = append(rows, &model.ProductCSVRow{
			Name:             p.Name,
			Stock:            p.Stock,
			SellingPrice:     p.SellingPrice.StringFixed(2),
			Compatibility:    p.Compatibility,
			LastPurchaseDate: lastPurchase,
		})
	}

	if err := gocsv.Marshal(rows, w); err != nil {
		return fmt.Errorf("failed to write CSV: %w", err)
	}
	return nil
}

func (s *ProductService) removeImage(url string) {
	if s.images == nil || url == "" {
		return
	}
	if err := s.images.Remove(url); err != nil {
		s.notifier.logger().Warn("failed to remove product image", zap.String("url", url), zap.Error(err))
	}
}

func applyFields(p model.Product, f model.ProductFields) model.Product {
	p.Name = strings.TrimSpace(f.Name)
	p.Stock = f.Stock
	p.PurchasePrice = f.PurchasePrice
	p.SellingPrice = f.SellingPrice
	p.Compatibility = strings.TrimSpace(f.Compatibility)
	if !f.LastPurchaseDate.IsZero() {
		p.LastPurchaseDate = f.LastPurchaseDate.UTC()
	}
	return p
}
