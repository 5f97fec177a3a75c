package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType classifies a ledger entry.
type TransactionType string

const (
	// TransactionSale removes one unit from stock and records positive revenue.
	TransactionSale TransactionType = "Sale"
	// TransactionReturn puts one unit back into stock and records negative revenue.
	TransactionReturn TransactionType = "Return"
	// TransactionPurchase only appears in legacy data. It is kept on import and ignored by aggregates.
	TransactionPurchase TransactionType = "Purchase"
)

// Valid reports whether t is a known transaction type.
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionSale, TransactionReturn, TransactionPurchase:
		return true
	}
	return false
}

// Transaction is an immutable ledger entry.
// ProductName is a snapshot taken when the entry was written and ProductID may outlive the product.
type Transaction struct {
	ID          string          `json:"id"`
	Type        TransactionType `json:"type"`
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName"`
	DateTime    time.Time       `json:"dateTime"`
	Quantity    int             `json:"quantity"`
	Amount      decimal.Decimal `json:"amount"`
}
