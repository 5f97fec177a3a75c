package service_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/Parts-Shop-Manager-Backend/internal/apperrors"
	"github.com/ndewijer/Parts-Shop-Manager-Backend/internal/model"
	"github.com/ndewijer/Parts-Shop-Manager-Backend/internal/testutil"
	"github.com/ndewijer/Parts-Shop-Manager-Backend/internal/validation"
)

func validFields() model.ProductFields {
	return model.ProductFields{
		Name:          "Brake Pad",
		Stock:         4,
		PurchasePrice: decimal.NewFromInt(100),
		SellingPrice:  decimal.NewFromInt(150),
		Compatibility: "Fiat Egea",
	}
}

// TestProductService_CreateProduct tests product creation.
//
// WHY: Creation is the only way a product enters the catalog outside a restore, so it
// must enforce the product invariants and always leave a usable image URL.
func TestProductService_CreateProduct(t *testing.T) {
	t.Run("creates with placeholder image", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestServices(t, db)

		p, err := svc.Products.CreateProduct(testutil.AuthedContext(), model.NewProduct{Fields: validFields()})
		if err != nil {
			t.Fatalf("CreateProduct() error: %v", err)
		}
		if p.ID == "" || p.CreatedAt.IsZero() || p.LastPurchaseDate.IsZero() {
			t.Errorf("CreateProduct() = %+v", p)
		}
		if p.ImageURL != model.PlaceholderImageURL {
			t.Errorf("ImageURL = %q, want placeholder", p.ImageURL)
		}

		stored, err := svc.Products.GetProduct(testutil.AuthedContext(), p.ID)
		if err != nil {
			t.Fatalf("GetProduct() error: %v", err)
		}
		if stored.Name != "Brake Pad" || stored.Stock != 4 || !stored.SellingPrice.Equal(decimal.NewFromInt(150)) {
			t.Errorf("stored product = %+v", stored)
		}
	})

	t.Run("stores an uploaded image", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestServices(t, db)

		img := &model.ImageUpload{Filename: "pad.png", Data: testutil.PNGImage()}
		p, err := svc.Products.CreateProduct(testutil.AuthedContext(), model.NewProduct{Fields: validFields(), Image: img})
		if err != nil {
			t.Fatalf("CreateProduct() error: %v", err)
		}
		if !strings.HasPrefix(p.ImageURL, "/uploads/") {
			t.Errorf("ImageURL = %q, want an /uploads/ URL", p.ImageURL)
		}
	})

	t.Run("rejects invalid fields", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestServices(t, db)

		fields := validFields()
		fields.Name = " x "
		fields.Stock = -1
		fields.SellingPrice = decimal.NewFromInt(-5)

		_, err := svc.Products.CreateProduct(testutil.AuthedContext(), model.NewProduct{Fields: fields})
		if !errors.Is(err, apperrors.ErrValidation) {
			t.Fatalf("CreateProduct() error = %v, want validation error", err)
		}
		var vErr *validation.Error
		if !errors.As(err, &vErr) {
			t.Fatalf("CreateProduct() error = %T, want *validation.Error", err)
		}
		for _, field := range []string{"name", "stock", "sellingPrice"} {
			if _, ok := vErr.Fields[field]; !ok {
				t.Errorf("missing error for %s: %v", field, vErr.Fields)
			}
		}
		testutil.AssertRowCount(t, db, "product", 0)
	})

	t.Run("rejects a non-image upload", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestServices(t, db)

		img := &model.ImageUpload{Filename: "notes.png", Data: []byte("hello")}
		_, err := svc.Products.CreateProduct(testutil.AuthedContext(), model.NewProduct{Fields: validFields(), Image: img})
		if !errors.Is(err, apperrors.ErrValidation) {
			t.Fatalf("CreateProduct() error = %v, want validation error", err)
		}
		testutil.AssertRowCount(t, db, "product", 0)
	})

	t.Run("requires a session", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestServices(t, db)

		_, err := svc.Products.CreateProduct(context.Background(), model.NewProduct{Fields: validFields()})
		if !errors.Is(err, apperrors.ErrNotAuthenticated) {
			t.Errorf("CreateProduct() error = %v, want ErrNotAuthenticated", err)
		}
	})
}

// TestProductService_UpdateProduct tests both edit variants.
//
// WHY: Whether the image is kept or replaced is decided by the edit variant, never by a
// missing value. Both paths must be pinned down.
func TestProductService_UpdateProduct(t *testing.T) {
	t.Run("fields only keeps the image", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestServices(t, db)
		product := testutil.NewProduct().WithImageURL("/uploads/original.png").Build(t, db)

		fields := validFields()
		fields.Name = "Renamed Pad"
		updated, err := svc.Products.UpdateProduct(testutil.AuthedContext(), product.ID, model.EditFieldsOnly{Fields: fields})
		if err != nil {
			t.Fatalf("UpdateProduct() error: %v", err)
		}
		if updated.ImageURL != "/uploads/original.png" {
			t.Errorf("ImageURL = %q, want it unchanged", updated.ImageURL)
		}
		if updated.Name != "Renamed Pad" || updated.Stock != fields.Stock {
			t.Errorf("UpdateProduct() = %+v", updated)
		}
		if !updated.CreatedAt.Equal(product.CreatedAt) {
			t.Errorf("CreatedAt changed: %v -> %v", product.CreatedAt, updated.CreatedAt)
		}
		if !updated.LastPurchaseDate.Equal(product.LastPurchaseDate) {
			t.Errorf("LastPurchaseDate changed without a new value")
		}
	})

	t.Run("with image replaces the image", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestServices(t, db)
		product := testutil.NewProduct().Build(t, db)

		edit := model.EditWithImage{
			Fields: validFields(),
			Image:  model.ImageUpload{Filename: "new.png", Data: testutil.PNGImage()},
		}
		updated, err := svc.Products.UpdateProduct(testutil.AuthedContext(), product.ID, edit)
		if err != nil {
			t.Fatalf("UpdateProduct() error: %v", err)
		}
		if updated.ImageURL == product.ImageURL || !strings.HasPrefix(updated.ImageURL, "/uploads/") {
			t.Errorf("ImageURL = %q, want a new upload", updated.ImageURL)
		}
	})

	t.Run("sets a new purchase date", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestServices(t, db)
		product := testutil.NewProduct().Build(t, db)

		fields := validFields()
		fields.LastPurchaseDate = time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
		updated, err := svc.Products.UpdateProduct(testutil.AuthedContext(), product.ID, model.EditFieldsOnly{Fields: fields})
		if err != nil {
			t.Fatalf("UpdateProduct() error: %v", err)
		}
		if !updated.LastPurchaseDate.Equal(fields.LastPurchaseDate) {
			t.Errorf("LastPurchaseDate = %v, want %v", updated.LastPurchaseDate, fields.LastPurchaseDate)
		}
	})

	t.Run("unknown product", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestServices(t, db)

		_, err := svc.Products.UpdateProduct(testutil.AuthedContext(), testutil.MakeID(), model.EditFieldsOnly{Fields: validFields()})
		if !errors.Is(err, apperrors.ErrProductNotFound) {
			t.Errorf("UpdateProduct() error = %v, want ErrProductNotFound", err)
		}
	})

	t.Run("invalid fields", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestServices(t, db)
		product := testutil.NewProduct().Build(t, db)

		fields := validFields()
		fields.Compatibility = ""
		_, err := svc.Products.UpdateProduct(testutil.AuthedContext(), product.ID, model.EditFieldsOnly{Fields: fields})
		if !errors.Is(err, apperrors.ErrValidation) {
			t.Errorf("UpdateProduct() error = %v, want validation error", err)
		}
	})

	t.Run("missing edit is a validation error", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestServices(t, db)
		product := testutil.NewProduct().WithName("Brake pad").Build(t, db)

		_, err := svc.Products.UpdateProduct(testutil.AuthedContext(), product.ID, nil)
		if !errors.Is(err, apperrors.ErrValidation) {
			t.Errorf("UpdateProduct() error = %v, want validation error", err)
		}

		got, err := svc.Products.GetProduct(testutil.AuthedContext(), product.ID)
		if err != nil {
			t.Fatalf("GetProduct() error: %v", err)
		}
		if got.Name != "Brake pad" {
			t.Errorf("Name = %q, product must be unchanged", got.Name)
		}
	})
}

// TestProductService_DeleteProduct tests the cascade delete.
//
// WHY: Deleting a product purges its ledger entries in the same transaction and must
// leave other products' history untouched.
func TestProductService_DeleteProduct(t *testing.T) {
	t.Run("removes product and only its transactions", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestServices(t, db)
		doomed := testutil.NewProduct().Build(t, db)
		kept := testutil.NewProduct().Build(t, db)

		testutil.NewTransaction(doomed).Build(t, db)
		testutil.NewTransaction(doomed).Return().Build(t, db)
		other := testutil.NewTransaction(kept).Build(t, db)

		if err := svc.Products.DeleteProduct(testutil.AuthedContext(), doomed.ID); err != nil {
			t.Fatalf("DeleteProduct() error: %v", err)
		}

		if _, err := svc.Products.GetProduct(testutil.AuthedContext(), doomed.ID); !errors.Is(err, apperrors.ErrProductNotFound) {
			t.Errorf("GetProduct() after delete error = %v, want ErrProductNotFound", err)
		}
		testutil.AssertRowCount(t, db, "product", 1)
		testutil.AssertRowCount(t, db, `"transaction"`, 1)
		if _, err := svc.Ledger.GetTransaction(testutil.AuthedContext(), other.ID); err != nil {
			t.Errorf("unrelated transaction was removed: %v", err)
		}
	})

	t.Run("unknown product", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestServices(t, db)

		err := svc.Products.DeleteProduct(testutil.AuthedContext(), testutil.MakeID())
		if !errors.Is(err, apperrors.ErrProductNotFound) {
			t.Errorf("DeleteProduct() error = %v, want ErrProductNotFound", err)
		}
	})

	t.Run("failed delete keeps everything", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestServices(t, db)
		product := testutil.NewProduct().Build(t, db)
		testutil.NewTransaction(product).Build(t, db)
		testutil.MakeReadOnly(t, db)

		err := svc.Products.DeleteProduct(testutil.AuthedContext(), product.ID)
		if !errors.Is(err, apperrors.ErrPermissionDenied) {
			t.Fatalf("DeleteProduct() error = %v, want ErrPermissionDenied", err)
		}
		testutil.AssertRowCount(t, db, "product", 1)
		testutil.AssertRowCount(t, db, `"transaction"`, 1)
	})
}

func TestProductService_ListProducts(t *testing.T) {
	t.Run("empty catalog", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestServices(t, db)

		products, err := svc.Products.ListProducts(testutil.AuthedContext())
		if err != nil {
			t.Fatalf("ListProducts() error: %v", err)
		}
		if products == nil || len(products) != 0 {
			t.Errorf("ListProducts() = %v, want empty slice", products)
		}
	})

	t.Run("newest first", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestServices(t, db)
		created := testutil.CreateProducts(t, db, 3)

		products, err := svc.Products.ListProducts(testutil.AuthedContext())
		if err != nil {
			t.Fatalf("ListProducts() error: %v", err)
		}
		if len(products) != 3 {
			t.Fatalf("ListProducts() returned %d products, want 3", len(products))
		}
		if products[0].ID != created[2].ID || products[2].ID != created[0].ID {
			t.Errorf("unexpected order: %s, %s, %s", products[0].Name, products[1].Name, products[2].Name)
		}
	})
}

func TestProductService_ExportCSV(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := testutil.NewTestServices(t, db)
	testutil.NewProduct().WithName("Oil Filter").WithStock(7).WithPrices("20", "35.5").Build(t, db)

	var buf bytes.Buffer
	if err := svc.Products.ExportCSV(testutil.AuthedContext(), &buf); err != nil {
		t.Fatalf("ExportCSV() error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("ExportCSV() wrote %d lines, want 2:\n%s", len(lines), buf.String())
	}
	if lines[0] != "name,stock,sellingPrice,compatibility,lastPurchaseDate" {
		t.Errorf("header = %q", lines[0])
	}
	today := time.Now().UTC().Format("2006-01-02")
	if want := "Oil Filter,7,35.50,Universal," + today; lines[1] != want {
		t.Errorf("row = %q, want %q", lines[1], want)
	}
}
