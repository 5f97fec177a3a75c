package repository_test

import (
	"errors"
	"testing"
	"time"

	"github.com/ndewijer/Parts-Shop-Manager-Backend/internal/apperrors"
	"github.com/ndewijer/Parts-Shop-Manager-Backend/internal/repository"
	"github.com/ndewijer/Parts-Shop-Manager-Backend/internal/testutil"
)

// TestProductRepository_AdjustStock tests the conditional stock update.
//
// WHY: Stock must never go negative, even when two sales race. The check lives in the
// UPDATE itself, so this exercises the SQL rather than a service-level guard.
func TestProductRepository_AdjustStock(t *testing.T) {
	tests := []struct {
		name      string
		stock     int
		delta     int
		wantStock int
		wantErr   error
	}{
		{"decrement", 3, -1, 2, nil},
		{"decrement to zero", 1, -1, 0, nil},
		{"decrement below zero", 0, -1, 0, apperrors.ErrOutOfStock},
		{"increment from zero", 0, 1, 1, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := testutil.SetupTestDB(t)
			repo := repository.NewProductRepository(db)
			product := testutil.NewProduct().WithStock(tt.stock).Build(t, db)

			err := repo.AdjustStock(t.Context(), product.ID, tt.delta)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("AdjustStock() error = %v, want %v", err, tt.wantErr)
			}

			got, err := repo.GetProduct(t.Context(), product.ID)
			if err != nil {
				t.Fatalf("GetProduct() error: %v", err)
			}
			if got.Stock != tt.wantStock {
				t.Errorf("stock = %d, want %d", got.Stock, tt.wantStock)
			}
		})
	}

	t.Run("unknown product", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := repository.NewProductRepository(db)

		if err := repo.AdjustStock(t.Context(), testutil.MakeID(), -1); !errors.Is(err, apperrors.ErrProductNotFound) {
			t.Errorf("AdjustStock() error = %v, want ErrProductNotFound", err)
		}
	})
}

func TestProductRepository_RoundTrip(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewProductRepository(db)
	want := testutil.NewProduct().WithName("Clutch Kit").WithPrices("1234.56", "1999.99").Model()

	if err := repo.InsertProduct(t.Context(), want); err != nil {
		t.Fatalf("InsertProduct() error: %v", err)
	}
	got, err := repo.GetProduct(t.Context(), want.ID)
	if err != nil {
		t.Fatalf("GetProduct() error: %v", err)
	}

	if got.Name != want.Name || got.Stock != want.Stock || got.ImageURL != want.ImageURL {
		t.Errorf("GetProduct() = %+v, want %+v", got, want)
	}
	if !got.PurchasePrice.Equal(want.PurchasePrice) || !got.SellingPrice.Equal(want.SellingPrice) {
		t.Errorf("prices = %s/%s, want %s/%s", got.PurchasePrice, got.SellingPrice, want.PurchasePrice, want.SellingPrice)
	}
	if !got.CreatedAt.Equal(want.CreatedAt) || !got.LastPurchaseDate.Equal(want.LastPurchaseDate) {
		t.Errorf("times = %v/%v, want %v/%v", got.CreatedAt, got.LastPurchaseDate, want.CreatedAt, want.LastPurchaseDate)
	}
}

func TestProductRepository_ListProducts(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewProductRepository(db)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	oldest := testutil.NewProduct().WithCreatedAt(base).Build(t, db)
	newest := testutil.NewProduct().WithCreatedAt(base.Add(48 * time.Hour)).Build(t, db)
	middle := testutil.NewProduct().WithCreatedAt(base.Add(time.Hour)).Build(t, db)

	products, err := repo.ListProducts(t.Context())
	if err != nil {
		t.Fatalf("ListProducts() error: %v", err)
	}
	if len(products) != 3 {
		t.Fatalf("ListProducts() returned %d products, want 3", len(products))
	}
	for i, want := range []string{newest.ID, middle.ID, oldest.ID} {
		if products[i].ID != want {
			t.Errorf("products[%d] = %s, want %s", i, products[i].ID, want)
		}
	}
}

// TestProductRepository_PermissionDenied checks that a refused write surfaces as a
// PermissionError with the product path.
func TestProductRepository_PermissionDenied(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewProductRepository(db)
	product := testutil.NewProduct().Build(t, db)
	testutil.MakeReadOnly(t, db)

	err := repo.AdjustStock(t.Context(), product.ID, -1)

	var permErr *apperrors.PermissionError
	if !errors.As(err, &permErr) {
		t.Fatalf("AdjustStock() error = %v, want PermissionError", err)
	}
	if permErr.Operation != "update" || permErr.Path != "products/"+product.ID {
		t.Errorf("PermissionError = %+v", permErr)
	}
	if !errors.Is(err, apperrors.ErrPermissionDenied) {
		t.Error("PermissionError does not match ErrPermissionDenied")
	}

	// Reads still work.
	if _, err := repo.GetProduct(t.Context(), product.ID); err != nil {
		t.Errorf("GetProduct() on read-only database error: %v", err)
	}
}
