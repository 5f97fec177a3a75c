// Package backup encodes and decodes full product and transaction snapshots.
//
// A snapshot is a single JSON document {"products": [...], "transactions": [...]}.
// Timestamps are written as RFC3339 in UTC. On the read path every timestamp shape seen in
// older exports is normalised here, once, so the rest of the application only ever deals
// with time.Time.
package backup

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ndewijer/Parts-Shop-Manager-Backend/internal/apperrors"
	"github.com/ndewijer/Parts-Shop-Manager-Backend/internal/model"
	"github.com/ndewijer/Parts-Shop-Manager-Backend/internal/validation"
)

// Snapshot is the full state of the shop.
type Snapshot struct {
	Products     []model.Product     `json:"products"`
	Transactions []model.Transaction `json:"transactions"`
}

// legacyTypes maps transaction type names found in early exports.
var legacyTypes = map[string]model.TransactionType{
	"Satış": model.TransactionSale,
	"İade":  model.TransactionReturn,
	"Alış":  model.TransactionPurchase,
}

// Encode writes the snapshot as indented JSON with UTC timestamps.
func Encode(w io.Writer, s Snapshot) error {
	out := Snapshot{
		Products:     make([]model.Product, len(s.Products)),
		Transactions: make([]model.Transaction, len(s.Transactions)),
	}
	for i, p := range s.Products {
		p.CreatedAt = p.CreatedAt.UTC()
		p.LastPurchaseDate = p.LastPurchaseDate.UTC()
		out.Products[i] = p
	}
	for i, t := range s.Transactions {
		t.DateTime = t.DateTime.UTC()
		out.Transactions[i] = t
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return nil
}

type rawSnapshot struct {
	Products     json.RawMessage `json:"products"`
	Transactions json.RawMessage `json:"transactions"`
}

type rawProduct struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	Stock            int             `json:"stock"`
	PurchasePrice    decimal.Decimal `json:"purchasePrice"`
	SellingPrice     decimal.Decimal `json:"sellingPrice"`
	Compatibility    string          `json:"compatibility"`
	ImageURL         string          `json:"imageUrl"`
	LastPurchaseDate json.RawMessage `json:"lastPurchaseDate"`
	CreatedAt        json.RawMessage `json:"createdAt"`
}

type rawTransaction struct {
	ID          string          `json:"id"`
	Type        string          `json:"type"`
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName"`
	DateTime    json.RawMessage `json:"dateTime"`
	Quantity    *int            `json:"quantity"`
	Amount      decimal.Decimal `json:"amount"`
}

// Decode reads and validates a snapshot.
//
// Both top-level fields must be present and array-valued, otherwise the error matches
// apperrors.ErrInvalidFormat. Records are then normalised: timestamps are parsed into UTC,
// legacy type names are mapped, a missing quantity defaults to 1 and a missing id is
// replaced by a fresh UUID. Records that still violate an invariant are reported as a
// validation.Error with indexed field names.
func Decode(r io.Reader) (Snapshot, error) {
	var raw rawSnapshot
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidFormat, err)
	}
	if !isArray(raw.Products) {
		return Snapshot{}, fmt.Errorf("%w: products must be an array", apperrors.ErrInvalidFormat)
	}
	if !isArray(raw.Transactions) {
		return Snapshot{}, fmt.Errorf("%w: transactions must be an array", apperrors.ErrInvalidFormat)
	}

	var rawProducts []rawProduct
	if err := json.Unmarshal(raw.Products, &rawProducts); err != nil {
		return Snapshot{}, fmt.Errorf("%w: products: %v", apperrors.ErrInvalidFormat, err)
	}
	var rawTransactions []rawTransaction
	if err := json.Unmarshal(raw.Transactions, &rawTransactions); err != nil {
		return Snapshot{}, fmt.Errorf("%w: transactions: %v", apperrors.ErrInvalidFormat, err)
	}

	fieldErrs := make(map[string]string)
	snap := Snapshot{
		Products:     make([]model.Product, 0, len(rawProducts)),
		Transactions: make([]model.Transaction, 0, len(rawTransactions)),
	}

	for i, rp := range rawProducts {
		p := model.Product{
			ID:            rp.ID,
			Name:          rp.Name,
			Stock:         rp.Stock,
			PurchasePrice: rp.PurchasePrice,
			SellingPrice:  rp.SellingPrice,
			Compatibility: rp.Compatibility,
			ImageURL:      rp.ImageURL,
		}
		if p.ID == "" {
			p.ID = uuid.New().String()
		}
		if p.ImageURL == "" {
			p.ImageURL = model.PlaceholderImageURL
		}

		var err error
		if p.CreatedAt, err = NormalizeTime(rp.CreatedAt); err != nil {
			fieldErrs[fmt.Sprintf("products[%d].createdAt", i)] = err.Error()
		}
		if p.LastPurchaseDate, err = NormalizeTime(rp.LastPurchaseDate); err != nil {
			fieldErrs[fmt.Sprintf("products[%d].lastPurchaseDate", i)] = err.Error()
		}
		snap.Products = append(snap.Products, p)
	}

	for i, rt := range rawTransactions {
		t := model.Transaction{
			ID:          rt.ID,
			Type:        model.TransactionType(rt.Type),
			ProductID:   rt.ProductID,
			ProductName: rt.ProductName,
			Quantity:    1,
			Amount:      rt.Amount,
		}
		if t.ID == "" {
			t.ID = uuid.New().String()
		}
		if mapped, ok := legacyTypes[rt.Type]; ok {
			t.Type = mapped
		}
		if rt.Quantity != nil {
			t.Quantity = *rt.Quantity
		}

		var err error
		if t.DateTime, err = NormalizeTime(rt.DateTime); err != nil {
			fieldErrs[fmt.Sprintf("transactions[%d].dateTime", i)] = err.Error()
		}
		snap.Transactions = append(snap.Transactions, t)
	}

	if err := validation.ValidateSnapshotRecords(snap.Products, snap.Transactions); err != nil {
		if vErr, ok := err.(*validation.Error); ok {
			for k, v := range vErr.Fields {
				fieldErrs[k] = v
			}
		}
	}
	if len(fieldErrs) > 0 {
		return Snapshot{}, &validation.Error{Fields: fieldErrs}
	}

	return snap, nil
}

func isArray(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '['
}

// Equal reports whether two snapshots hold the same records in the same order,
// comparing timestamps by instant and amounts by value.
func Equal(a, b Snapshot) bool {
	if len(a.Products) != len(b.Products) || len(a.Transactions) != len(b.Transactions) {
		return false
	}
	for i := range a.Products {
		if !productsEqual(a.Products[i], b.Products[i]) {
			return false
		}
	}
	for i := range a.Transactions {
		if !transactionsEqual(a.Transactions[i], b.Transactions[i]) {
			return false
		}
	}
	return true
}

func productsEqual(a, b model.Product) bool {
	return a.ID == b.ID &&
		a.Name == b.Name &&
		a.Stock == b.Stock &&
		a.PurchasePrice.Equal(b.PurchasePrice) &&
		a.SellingPrice.Equal(b.SellingPrice) &&
		a.Compatibility == b.Compatibility &&
		a.ImageURL == b.ImageURL &&
		a.LastPurchaseDate.Equal(b.LastPurchaseDate) &&
		a.CreatedAt.Equal(b.CreatedAt)
}

func transactionsEqual(a, b model.Transaction) bool {
	return a.ID == b.ID &&
		a.Type == b.Type &&
		a.ProductID == b.ProductID &&
		a.ProductName == b.ProductName &&
		a.DateTime.Equal(b.DateTime) &&
		a.Quantity == b.Quantity &&
		a.Amount.Equal(b.Amount)
}
