// Package aggregate derives dashboard figures from the product and transaction collections.
//
// Every function here is pure. Malformed records are tolerated: they are bucketed or skipped,
// never allowed to abort the aggregation of the remaining records.
package aggregate

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/Parts-Shop-Manager-Backend/internal/model"
)

// TopN is the length of the top-selling and top-returning rankings.
const TopN = 5

// TotalStock sums the stock of all products.
func TotalStock(products []model.Product) int {
	total := 0
	for _, p := range products {
		if p.Stock > 0 {
			total += p.Stock
		}
	}
	return total
}

// Summarize computes gross sales, gross returns, net revenue and net profit.
//
// Revenue figures come from the stored transaction amounts. Profit is re-priced against the
// current product record, so a transaction whose product no longer exists contributes nothing
// to NetProfit while still counting towards GrossSales or GrossReturns.
func Summarize(products []model.Product, transactions []model.Transaction) model.Summary {
	byID := make(map[string]model.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	grossSales := decimal.Zero
	grossReturns := decimal.Zero
	netProfit := decimal.Zero

	for _, t := range transactions {
		var sign int64
		switch t.Type {
		case model.TransactionSale:
			grossSales = grossSales.Add(t.Amount)
			sign = 1
		case model.TransactionReturn:
			grossReturns = grossReturns.Add(t.Amount.Abs())
			sign = -1
		default:
			continue
		}

		product, ok := byID[t.ProductID]
		if !ok {
			continue
		}
		contribution := product.ProfitPerUnit().Mul(decimal.NewFromInt(int64(t.Quantity) * sign))
		netProfit = netProfit.Add(contribution)
	}

	return model.Summary{
		GrossSales:   grossSales,
		GrossReturns: grossReturns,
		NetRevenue:   grossSales.Sub(grossReturns),
		NetProfit:    netProfit,
	}
}

// TopProducts ranks product names by the summed quantity of transactions of the given type.
// Ties are broken by product name so the order is total. At most n entries are returned.
func TopProducts(transactions []model.Transaction, txType model.TransactionType, n int) []model.ProductCount {
	counts := make(map[string]int)
	for _, t := range transactions {
		if t.Type != txType {
			continue
		}
		counts[t.ProductName] += t.Quantity
	}

	ranking := make([]model.ProductCount, 0, len(counts))
	for name, count := range counts {
		ranking = append(ranking, model.ProductCount{ProductName: name, Count: count})
	}

	sort.Slice(ranking, func(i, j int) bool {
		if ranking[i].Count != ranking[j].Count {
			return ranking[i].Count > ranking[j].Count
		}
		return strings.Compare(ranking[i].ProductName, ranking[j].ProductName) < 0
	})

	if n >= 0 && len(ranking) > n {
		ranking = ranking[:n]
	}
	return ranking
}

// TopSelling returns the five products with the most units sold.
func TopSelling(transactions []model.Transaction) []model.ProductCount {
	return TopProducts(transactions, model.TransactionSale, TopN)
}

// TopReturning returns the five products with the most units returned.
func TopReturning(transactions []model.Transaction) []model.ProductCount {
	return TopProducts(transactions, model.TransactionReturn, TopN)
}

// Build composes every figure shown on the dashboard.
func Build(products []model.Product, transactions []model.Transaction) model.Dashboard {
	return model.Dashboard{
		TotalStock:   TotalStock(products),
		ProductCount: len(products),
		Summary:      Summarize(products, transactions),
		TopSelling:   TopSelling(transactions),
		TopReturning: TopReturning(transactions),
		RecentByDay:  GroupByDay(transactions).Ordered(),
	}
}
