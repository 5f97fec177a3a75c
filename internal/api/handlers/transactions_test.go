package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ndewijer/Parts-Shop-Manager-Backend/internal/model"
	"github.com/ndewijer/Parts-Shop-Manager-Backend/internal/testutil"
)

func setupTransactionHandler(t *testing.T) (*TransactionHandler, *testutil.Services) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	svc := testutil.NewTestServices(t, db)
	return NewTransactionHandler(svc.Ledger), svc
}

func TestTransactionHandler_AllTransactions(t *testing.T) {
	t.Run("returns empty array when no transactions exist", func(t *testing.T) {
		handler, _ := setupTransactionHandler(t)

		w := httptest.NewRecorder()
		handler.AllTransactions(w, testutil.NewAuthedRequest(http.MethodGet, "/api/transaction", nil))

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}
		if strings.TrimSpace(w.Body.String()) != "[]" {
			t.Errorf("Expected empty array, got %s", w.Body.String())
		}
	})

	t.Run("returns all transactions newest first", func(t *testing.T) {
		handler, svc := setupTransactionHandler(t)
		product := testutil.NewProduct().Build(t, svc.DB)
		now := time.Now().UTC()
		older := testutil.NewTransaction(product).At(now.Add(-time.Hour)).Build(t, svc.DB)
		newer := testutil.NewTransaction(product).At(now).Build(t, svc.DB)

		w := httptest.NewRecorder()
		handler.AllTransactions(w, testutil.NewAuthedRequest(http.MethodGet, "/api/transaction", nil))

		var response []model.Transaction
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&response)

		if len(response) != 2 {
			t.Fatalf("Expected 2 transactions, got %d", len(response))
		}
		if response[0].ID != newer.ID || response[1].ID != older.ID {
			t.Errorf("Expected newest first, got %s then %s", response[0].ID, response[1].ID)
		}
	})

	t.Run("filters by product", func(t *testing.T) {
		handler, svc := setupTransactionHandler(t)
		pad := testutil.NewProduct().Build(t, svc.DB)
		filter := testutil.NewProduct().Build(t, svc.DB)
		testutil.NewTransaction(pad).Build(t, svc.DB)
		want := testutil.NewTransaction(filter).Build(t, svc.DB)

		w := httptest.NewRecorder()
		handler.AllTransactions(w, testutil.NewAuthedRequest(http.MethodGet, "/api/transaction?productId="+filter.ID, nil))

		var response []model.Transaction
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&response)

		if len(response) != 1 || response[0].ID != want.ID {
			t.Errorf("Expected only %s, got %+v", want.ID, response)
		}
	})
}

func TestTransactionHandler_GroupedTransactions(t *testing.T) {
	handler, svc := setupTransactionHandler(t)
	product := testutil.NewProduct().Build(t, svc.DB)
	day := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	testutil.NewTransaction(product).At(day).Build(t, svc.DB)
	testutil.NewTransaction(product).At(day.Add(2 * time.Hour)).Build(t, svc.DB)
	testutil.NewTransaction(product).Return().At(day.AddDate(0, 0, 1)).Build(t, svc.DB)

	w := httptest.NewRecorder()
	handler.GroupedTransactions(w, testutil.NewAuthedRequest(http.MethodGet, "/api/transaction/grouped", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var response []model.DayGroup
	//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
	json.NewDecoder(w.Body).Decode(&response)

	if len(response) != 2 {
		t.Fatalf("Expected 2 days, got %d", len(response))
	}
	if response[0].Date != "2024-03-11" || len(response[0].Transactions) != 1 {
		t.Errorf("Unexpected first day: %+v", response[0])
	}
	if response[1].Date != "2024-03-10" || len(response[1].Transactions) != 2 {
		t.Errorf("Unexpected second day: %+v", response[1])
	}
}

func TestTransactionHandler_GetTransaction(t *testing.T) {
	t.Run("returns transaction", func(t *testing.T) {
		handler, svc := setupTransactionHandler(t)
		product := testutil.NewProduct().Build(t, svc.DB)
		tx := testutil.NewTransaction(product).Build(t, svc.DB)

		w := httptest.NewRecorder()
		handler.GetTransaction(w, testutil.NewRequestWithURLParams(http.MethodGet, "/api/transaction/"+tx.ID, map[string]string{"uuid": tx.ID}))

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}
		var response model.Transaction
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&response)
		if response.ID != tx.ID || response.ProductID != product.ID {
			t.Errorf("Unexpected transaction: %+v", response)
		}
	})

	t.Run("returns 404 when transaction not found", func(t *testing.T) {
		handler, _ := setupTransactionHandler(t)
		id := testutil.MakeID()

		w := httptest.NewRecorder()
		handler.GetTransaction(w, testutil.NewRequestWithURLParams(http.MethodGet, "/api/transaction/"+id, map[string]string{"uuid": id}))

		if w.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d: %s", w.Code, w.Body.String())
		}
	})
}
