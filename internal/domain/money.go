package domain

import "github.com/shopspring/decimal"

// CurrencySymbol рупия
const CurrencySymbol = "₹"

// FormatPrice переводит пайсы в строку вида ₹12.50
func FormatPrice(paise int64) string {
	return CurrencySymbol + decimal.New(paise, -2).StringFixed(2)
}
