package service

import (
	"context"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/ndewijer/Parts-Shop-Manager-Backend/internal/live"
	"github.com/ndewijer/Parts-Shop-Manager-Backend/internal/model"
	"github.com/ndewijer/Parts-Shop-Manager-Backend/internal/repository"
)

// Feeds holds the live collections. Shop carries products and transactions together,
// read in one transaction, for views that combine them.
type Feeds struct {
	Products     *live.Feed[[]model.Product]
	Transactions *live.Feed[[]model.Transaction]
	Shop         *live.Feed[model.ShopState]
}

// NewFeeds creates feeds that load straight from the repositories.
func NewFeeds(
	db *sqlx.DB,
	productRepo *repository.ProductRepository,
	transactionRepo *repository.TransactionRepository,
	logger *zap.Logger,
) *Feeds {
	loadShop := func(ctx context.Context) (model.ShopState, error) {
		var state model.ShopState
		err := runInTx(ctx, db, func(tx *sqlx.Tx) error {
			var err error
			if state.Products, err = productRepo.WithTx(tx).ListProducts(ctx); err != nil {
				return err
			}
			state.Transactions, err = transactionRepo.WithTx(tx).ListTransactions(ctx)
			return err
		})
		return state, err
	}

	return &Feeds{
		Products:     live.NewFeed("products", productRepo.ListProducts, logger),
		Transactions: live.NewFeed("transactions", transactionRepo.ListTransactions, logger),
		Shop:         live.NewFeed("shop", loadShop, logger),
	}
}

// change marks which collections a commit touched.
type change uint8

const (
	productsChanged change = 1 << iota
	transactionsChanged
)

// Notifier publishes committed changes to the live feeds and reports failed operations.
// A nil Notifier or nil feed is valid and does nothing.
type Notifier struct {
	Feeds       *Feeds
	Logger      *zap.Logger
	Development bool
}

// NewNotifier creates a Notifier. development enables payload logging on permission failures.
func NewNotifier(feeds *Feeds, logger *zap.Logger, development bool) *Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Notifier{Feeds: feeds, Logger: logger, Development: development}
}

// committed publishes one change event for a single commit. Each touched collection feed is
// reloaded, then the combined shop feed once, so no subscriber sees half of a commit.
func (n *Notifier) committed(ctx context.Context, c change) {
	if n == nil || n.Feeds == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	if c&productsChanged != 0 && n.Feeds.Products != nil {
		n.Feeds.Products.Notify(ctx)
	}
	if c&transactionsChanged != 0 && n.Feeds.Transactions != nil {
		n.Feeds.Transactions.Notify(ctx)
	}
	if n.Feeds.Shop != nil {
		n.Feeds.Shop.Notify(ctx)
	}
}

func (n *Notifier) fail(operation string, err error) error {
	if n != nil {
		reportError(n.Logger, n.Development, operation, err)
	}
	return err
}

func (n *Notifier) logger() *zap.Logger {
	if n == nil || n.Logger == nil {
		return zap.NewNop()
	}
	return n.Logger
}
