package aggregate

import (
	"github.com/shopspring/decimal"

	"github.com/ndewijer/Parts-Shop-Manager-Backend/internal/model"
)

// FormatMoney renders an amount with two decimals, prefixed by the currency symbol.
// Negative amounts keep the sign in front of the symbol.
func FormatMoney(amount decimal.Decimal, currencySymbol string) string {
	if amount.IsNegative() {
		return "-" + currencySymbol + amount.Abs().StringFixed(2)
	}
	return currencySymbol + amount.StringFixed(2)
}

// FormatCards renders the summary as display cards.
func FormatCards(summary model.Summary, currencySymbol string) []model.SummaryCard {
	return []model.SummaryCard{
		{Title: "Net Revenue", Value: FormatMoney(summary.NetRevenue, currencySymbol), Icon: "dollar-sign"},
		{Title: "Net Profit", Value: FormatMoney(summary.NetProfit, currencySymbol), Icon: "trending-up"},
		{Title: "Gross Sales", Value: FormatMoney(summary.GrossSales, currencySymbol), Icon: "shopping-bag"},
		{Title: "Gross Returns", Value: FormatMoney(summary.GrossReturns, currencySymbol), Icon: "arrow-left-right"},
	}
}
