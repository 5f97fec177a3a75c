package service

import (
	"context"
	"fmt"

	"github.com/ndewijer/Parts-Shop-Manager-Backend/internal/aggregate"
	"github.com/ndewijer/Parts-Shop-Manager-Backend/internal/model"
)

// DashboardService computes the overview figures from the product and transaction collections.
// Both are always read from the same commit.
type DashboardService struct {
	feeds    *Feeds
	notifier *Notifier
}

// NewDashboardService creates a new DashboardService with the provided dependencies.
func NewDashboardService(feeds *Feeds, notifier *Notifier) *DashboardService {
	return &DashboardService{
		feeds:    feeds,
		notifier: notifier,
	}
}

// GetDashboard loads products and transactions in one read and aggregates them.
func (s *DashboardService) GetDashboard(ctx context.Context) (model.Dashboard, error) {
	if err := requireSession(ctx); err != nil {
		return model.Dashboard{}, err
	}
	if err := s.requireFeeds(); err != nil {
		return model.Dashboard{}, err
	}

	state, err := s.feeds.Shop.Load(ctx)
	if err != nil {
		return model.Dashboard{}, s.notifier.fail("getDashboard", fmt.Errorf("failed to load dashboard data: %w", err))
	}
	return aggregate.Build(state.Products, state.Transactions), nil
}

// Watch delivers a freshly computed dashboard now and once after every commit that touches
// products or transactions, until the returned function is called.
func (s *DashboardService) Watch(ctx context.Context, onChange func(model.Dashboard)) (func(), error) {
	if err := requireSession(ctx); err != nil {
		return nil, err
	}
	if err := s.requireFeeds(); err != nil {
		return nil, err
	}

	unsubscribe, err := s.feeds.Shop.Subscribe(ctx, func(state model.ShopState) {
		onChange(aggregate.Build(state.Products, state.Transactions))
	})
	if err != nil {
		return nil, s.notifier.fail("watchDashboard", err)
	}
	return unsubscribe, nil
}

func (s *DashboardService) requireFeeds() error {
	if s.feeds == nil || s.feeds.Shop == nil {
		return fmt.Errorf("live feeds are not configured")
	}
	return nil
}
