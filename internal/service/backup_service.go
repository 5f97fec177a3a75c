package service

import (
	"context"
	"fmt"
	"io"

	"github.com/jmoiron/sqlx"

	"github.com/ndewijer/Parts-Shop-Manager-Backend/internal/backup"
	"github.com/ndewijer/Parts-Shop-Manager-Backend/internal/repository"
	"github.com/ndewijer/Parts-Shop-Manager-Backend/internal/validation"
)

// BackupService exports and restores full snapshots of the shop.
type BackupService struct {
	db              *sqlx.DB
	productRepo     *repository.ProductRepository
	transactionRepo *repository.TransactionRepository
	notifier        *Notifier
}

// NewBackupService creates a new BackupService with the provided dependencies.
func NewBackupService(
	db *sqlx.DB,
	productRepo *repository.ProductRepository,
	transactionRepo *repository.TransactionRepository,
	notifier *Notifier,
) *BackupService {
	return &BackupService{
		db:              db,
		productRepo:     productRepo,
		transactionRepo: transactionRepo,
		notifier:        notifier,
	}
}

// Export reads products and transactions from one consistent database state.
func (s *BackupService) Export(ctx context.Context) (backup.Snapshot, error) {
	if err := requireSession(ctx); err != nil {
		return backup.Snapshot{}, err
	}

	var snap backup.Snapshot
	err := runInTx(ctx, s.db, func(tx *sqlx.Tx) error {
		var err error
		if snap.Products, err = s.productRepo.WithTx(tx).ListProducts(ctx); err != nil {
			return err
		}
		snap.Transactions, err = s.transactionRepo.WithTx(tx).ListTransactions(ctx)
		return err
	})
	if err != nil {
		return backup.Snapshot{}, s.notifier.fail("exportBackup", fmt.Errorf("failed to export backup: %w", err))
	}
	return snap, nil
}

// Import replaces every product and transaction with the snapshot contents.
// It is a full replace, not a merge: the delete and all inserts run in one database
// transaction, so a failed import leaves the previous state untouched.
func (s *BackupService) Import(ctx context.Context, snap backup.Snapshot) error {
	const op = "importBackup"
	if err := requireSession(ctx); err != nil {
		return s.notifier.fail(op, err)
	}
	if err := validation.ValidateSnapshotRecords(snap.Products, snap.Transactions); err != nil {
		return s.notifier.fail(op, err)
	}

	err := runInTx(ctx, s.db, func(tx *sqlx.Tx) error {
		products := s.productRepo.WithTx(tx)
		transactions := s.transactionRepo.WithTx(tx)

		if err := transactions.DeleteAllTransactions(ctx); err != nil {
			return err
		}
		if err := products.DeleteAllProducts(ctx); err != nil {
			return err
		}
		for _, p := range snap.Products {
			if err := products.InsertProduct(ctx, p); err != nil {
				return err
			}
		}
		for _, t := range snap.Transactions {
			if err := transactions.InsertTransaction(ctx, t); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return s.notifier.fail(op, fmt.Errorf("failed to import backup: %w", err))
	}

	s.notifier.committed(ctx, productsChanged|transactionsChanged)
	return nil
}

// WriteSnapshot exports the current state and encodes it to w.
func (s *BackupService) WriteSnapshot(ctx context.Context, w io.Writer) error {
	snap, err := s.Export(ctx)
	if err != nil {
		return err
	}
	return backup.Encode(w, snap)
}

// Restore decodes a snapshot from r and imports it.
func (s *BackupService) Restore(ctx context.Context, r io.Reader) (backup.Snapshot, error) {
	if err := requireSession(ctx); err != nil {
		return backup.Snapshot{}, err
	}
	snap, err := backup.Decode(r)
	if err != nil {
		return backup.Snapshot{}, s.notifier.fail("restoreBackup", err)
	}
	if err := s.Import(ctx, snap); err != nil {
		return backup.Snapshot{}, err
	}
	return snap, nil
}
