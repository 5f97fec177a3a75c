package model

import (
	"sort"

	"github.com/shopspring/decimal"
)

// UndatedDayKey is the bucket for transactions without a readable timestamp.
const UndatedDayKey = "undated"

// ShopState is both collections as of a single commit.
type ShopState struct {
	Products     []Product
	Transactions []Transaction
}

// Summary holds the revenue and profit figures derived from the ledger.
type Summary struct {
	GrossSales   decimal.Decimal `json:"grossSales"`
	GrossReturns decimal.Decimal `json:"grossReturns"`
	NetRevenue   decimal.Decimal `json:"netRevenue"`
	NetProfit    decimal.Decimal `json:"netProfit"`
}

// SummaryCard is a formatted summary figure ready for display.
type SummaryCard struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Icon  string `json:"icon"`
}

// ProductCount is a product name with its cumulative unit count for one transaction type.
type ProductCount struct {
	ProductName string `json:"productName"`
	Count       int    `json:"count"`
}

// DayGroup is one calendar day of transactions, most recent first.
type DayGroup struct {
	Date         string        `json:"date"`
	Transactions []Transaction `json:"transactions"`
}

// GroupedTransactions maps a calendar day key (YYYY-MM-DD) to that day's transactions.
type GroupedTransactions map[string][]Transaction

// Days returns the day keys newest first. The undated bucket, if any, comes last.
func (g GroupedTransactions) Days() []string {
	days := make([]string, 0, len(g))
	undated := false
	for day := range g {
		if day == UndatedDayKey {
			undated = true
			continue
		}
		days = append(days, day)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(days)))
	if undated {
		days = append(days, UndatedDayKey)
	}
	return days
}

// Ordered returns the buckets in Days order.
func (g GroupedTransactions) Ordered() []DayGroup {
	groups := make([]DayGroup, 0, len(g))
	for _, day := range g.Days() {
		groups = append(groups, DayGroup{Date: day, Transactions: g[day]})
	}
	return groups
}

// Len returns the number of transactions across all buckets.
func (g GroupedTransactions) Len() int {
	n := 0
	for _, bucket := range g {
		n += len(bucket)
	}
	return n
}

// Dashboard is everything the overview screen shows.
type Dashboard struct {
	TotalStock   int            `json:"totalStock"`
	ProductCount int            `json:"productCount"`
	Summary      Summary        `json:"summary"`
	Cards        []SummaryCard  `json:"cards,omitempty"`
	TopSelling   []ProductCount `json:"topSelling"`
	TopReturning []ProductCount `json:"topReturning"`
	RecentByDay  []DayGroup     `json:"recentByDay,omitempty"`
}
