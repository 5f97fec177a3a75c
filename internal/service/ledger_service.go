package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/ndewijer/Parts-Shop-Manager-Backend/internal/aggregate"
	"github.com/ndewijer/Parts-Shop-Manager-Backend/internal/model"
	"github.com/ndewijer/Parts-Shop-Manager-Backend/internal/repository"
)

// LedgerService records sales and returns and reads the transaction ledger.
type LedgerService struct {
	db              *sqlx.DB
	productRepo     *repository.ProductRepository
	transactionRepo *repository.TransactionRepository
	notifier        *Notifier
}

// NewLedgerService creates a new LedgerService with the provided dependencies.
func NewLedgerService(
	db *sqlx.DB,
	productRepo *repository.ProductRepository,
	transactionRepo *repository.TransactionRepository,
	notifier *Notifier,
) *LedgerService {
	return &LedgerService{
		db:              db,
		productRepo:     productRepo,
		transactionRepo: transactionRepo,
		notifier:        notifier,
	}
}

// RecordSale sells one unit of a product.
//
// The stock decrement and the ledger entry are written in one database transaction. The
// decrement is conditional on stock being positive, so two concurrent sales of the last
// unit cannot both succeed. Returns ErrOutOfStock when no unit is left and
// ErrProductNotFound when the product does not exist; in both cases nothing is written.
func (s *LedgerService) RecordSale(ctx context.Context, productID string) (model.Transaction, error) {
	return s.record(ctx, "recordSale", productID, model.TransactionSale, -1)
}

// RecordReturn takes one unit of a product back into stock. There is no upper bound on
// returns. Returns ErrProductNotFound when the product does not exist.
func (s *LedgerService) RecordReturn(ctx context.Context, productID string) (model.Transaction, error) {
	return s.record(ctx, "recordReturn", productID, model.TransactionReturn, 1)
}

func (s *LedgerService) record(ctx context.Context, operation, productID string, txType model.TransactionType, delta int) (model.Transaction, error) {
	if err := requireSession(ctx); err != nil {
		return model.Transaction{}, s.notifier.fail(operation, err)
	}

	var entry model.Transaction
	err := runInTx(ctx, s.db, func(tx *sqlx.Tx) error {
		products := s.productRepo.WithTx(tx)

		product, err := products.GetProduct(ctx, productID)
		if err != nil {
			return err
		}
		if err := products.AdjustStock(ctx, productID, delta); err != nil {
			return err
		}

		quantity := 1
		amount := product.SellingPrice.Mul(decimal.NewFromInt(int64(quantity)))
		if txType == model.TransactionReturn {
			amount = amount.Neg()
		}

		entry = model.Transaction{
			ID:          uuid.New().String(),
			Type:        txType,
			ProductID:   product.ID,
			ProductName: product.Name,
			DateTime:    time.Now().UTC(),
			Quantity:    quantity,
			Amount:      amount,
		}
		return s.transactionRepo.WithTx(tx).InsertTransaction(ctx, entry)
	})
	if err != nil {
		return model.Transaction{}, s.notifier.fail(operation, fmt.Errorf("failed to record %s: %w", txType, err))
	}

	s.notifier.committed(ctx, productsChanged|transactionsChanged)
	return entry, nil
}

// ListTransactions returns the whole ledger, most recent first.
func (s *LedgerService) ListTransactions(ctx context.Context) ([]model.Transaction, error) {
	if err := requireSession(ctx); err != nil {
		return nil, err
	}
	transactions, err := s.transactionRepo.ListTransactions(ctx)
	if err != nil {
		return nil, s.notifier.fail("listTransactions", err)
	}
	return transactions, nil
}

// ListProductTransactions returns the ledger entries of one product, most recent first.
func (s *LedgerService) ListProductTransactions(ctx context.Context, productID string) ([]model.Transaction, error) {
	if err := requireSession(ctx); err != nil {
		return nil, err
	}
	transactions, err := s.transactionRepo.ListTransactionsByProduct(ctx, productID)
	if err != nil {
		return nil, s.notifier.fail("listProductTransactions", err)
	}
	return transactions, nil
}

// GetTransaction returns one ledger entry.
func (s *LedgerService) GetTransaction(ctx context.Context, id string) (model.Transaction, error) {
	if err := requireSession(ctx); err != nil {
		return model.Transaction{}, err
	}
	transaction, err := s.transactionRepo.GetTransaction(ctx, id)
	if err != nil {
		return model.Transaction{}, s.notifier.fail("getTransaction", err)
	}
	return transaction, nil
}

// GroupedTransactions returns the ledger bucketed by UTC calendar day.
func (s *LedgerService) GroupedTransactions(ctx context.Context) (model.GroupedTransactions, error) {
	transactions, err := s.ListTransactions(ctx)
	if err != nil {
		return nil, err
	}
	return aggregate.GroupByDay(transactions), nil
}
