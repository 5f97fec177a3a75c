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

const transactionCollection = "transactions"

type transactionRow struct {
	ID          string `db:"id"`
	Type        string `db:"type"`
	ProductID   string `db:"product_id"`
	ProductName string `db:"product_name"`
	DateTime    string `db:"date_time"`
	Quantity    int    `db:"quantity"`
	Amount      string `db:"amount"`
}

func newTransactionRow(t model.Transaction) transactionRow {
	return transactionRow{
		ID:          t.ID,
		Type:        string(t.Type),
		ProductID:   t.ProductID,
		ProductName: t.ProductName,
		DateTime:    FormatTime(t.DateTime),
		Quantity:    t.Quantity,
		Amount:      t.Amount.String(),
	}
}

func (r transactionRow) toModel() (model.Transaction, error) {
	amount, err := parseDecimal("amount", r.Amount)
	if err != nil {
		return model.Transaction{}, err
	}
	return model.Transaction{
		ID:          r.ID,
		Type:        model.TransactionType(r.Type),
		ProductID:   r.ProductID,
		ProductName: r.ProductName,
		DateTime:    parseTimeOrZero(r.DateTime),
		Quantity:    r.Quantity,
		Amount:      amount,
	}, nil
}

// TransactionRepository provides data access methods for the ledger.
// Ledger entries are never updated; they are only inserted and deleted in bulk.
type TransactionRepository struct {
	db *sqlx.DB
	tx *sqlx.Tx
}

// NewTransactionRepository creates a new TransactionRepository with the provided database connection.
func NewTransactionRepository(db *sqlx.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// WithTx returns a new TransactionRepository scoped to the provided transaction.
func (r *TransactionRepository) WithTx(tx *sqlx.Tx) *TransactionRepository {
	return &TransactionRepository{
		db: r.db,
		tx: tx,
	}
}

func (r *TransactionRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

const transactionColumns = `id, type, product_id, product_name, date_time, quantity, amount`

// ListTransactions retrieves the whole ledger, most recent first.
func (r *TransactionRepository) ListTransactions(ctx context.Context) ([]model.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM "transaction" ORDER BY date_time DESC, id ASC`
	return r.list(ctx, query)
}

// ListTransactionsByProduct retrieves the ledger entries of one product, most recent first.
func (r *TransactionRepository) ListTransactionsByProduct(ctx context.Context, productID string) ([]model.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM "transaction" WHERE product_id = ? ORDER BY date_time DESC, id ASC`
	return r.list(ctx, query, productID)
}

func (r *TransactionRepository) list(ctx context.Context, query string, args ...any) ([]model.Transaction, error) {
	var rows []transactionRow
	if err := r.getQuerier().SelectContext(ctx, &rows, query, args...); err != nil {
		err = translateError(err, "list", transactionCollection, transactionCollection, nil)
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}

	transactions := make([]model.Transaction, 0, len(rows))
	for _, row := range rows {
		t, err := row.toModel()
		if err != nil {
			return nil, fmt.Errorf("failed to read transaction %s: %w", row.ID, err)
		}
		transactions = append(transactions, t)
	}
	return transactions, nil
}

// GetTransaction retrieves a single ledger entry by ID.
// Returns ErrTransactionNotFound if no entry with the given ID exists.
func (r *TransactionRepository) GetTransaction(ctx context.Context, id string) (model.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM "transaction" WHERE id = ?`

	var row transactionRow
	err := r.getQuerier().GetContext(ctx, &row, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Transaction{}, apperrors.ErrTransactionNotFound
	}
	if err != nil {
		err = translateError(err, "get", transactionCollection, transactionPath(id), nil)
		return model.Transaction{}, fmt.Errorf("failed to query transaction: %w", err)
	}
	return row.toModel()
}

// InsertTransaction appends a ledger entry.
func (r *TransactionRepository) InsertTransaction(ctx context.Context, t model.Transaction) error {
	query := `
		INSERT INTO "transaction" (id, type, product_id, product_name, date_time, quantity, amount)
		VALUES (:id, :type, :product_id, :product_name, :date_time, :quantity, :amount)
	`

	if _, err := r.getQuerier().NamedExecContext(ctx, query, newTransactionRow(t)); err != nil {
		err = translateError(err, "create", transactionCollection, transactionPath(t.ID), t)
		return fmt.Errorf("failed to insert transaction: %w", err)
	}
	return nil
}

// DeleteTransactionsByProduct removes every ledger entry referencing productID and
// returns how many were removed.
func (r *TransactionRepository) DeleteTransactionsByProduct(ctx context.Context, productID string) (int64, error) {
	result, err := r.getQuerier().ExecContext(ctx, `DELETE FROM "transaction" WHERE product_id = ?`, productID)
	if err != nil {
		err = translateError(err, "delete", transactionCollection, transactionCollection+"?productId="+productID, nil)
		return 0, fmt.Errorf("failed to delete transactions: %w", err)
	}
	return result.RowsAffected()
}

// DeleteAllTransactions empties the ledger.
func (r *TransactionRepository) DeleteAllTransactions(ctx context.Context) error {
	if _, err := r.getQuerier().ExecContext(ctx, `DELETE FROM "transaction"`); err != nil {
		err = translateError(err, "delete", transactionCollection, transactionCollection, nil)
		return fmt.Errorf("failed to delete transactions: %w", err)
	}
	return nil
}

func transactionPath(id string) string {
	return transactionCollection + "/" + id
}
