package model

import (
	"slices"
	"strings"
)

const (
	USD = "USD"

	PlaceholderFlag = "🏳️"
)

// DefaultCurrencyRates is the built-in catalog. The currency provider keeps
// this order and metadata and only replaces Rate (and Change) with live values.
var DefaultCurrencyRates = []CurrencyRate{
	{Code: "USD", Name: "US Dollar", Flag: "🇺🇸", Rate: 1, Change: 0, Region: "Americas", Major: true},
	{Code: "EUR", Name: "Euro", Flag: "🇪🇺", Rate: 0.91, Change: -0.015, Region: "Europe", Major: true},
	{Code: "GBP", Name: "British Pound", Flag: "🇬🇧", Rate: 0.78, Change: 0.008, Region: "Europe", Major: true},
	{Code: "JPY", Name: "Japanese Yen", Flag: "🇯🇵", Rate: 156.25, Change: -2.15, Region: "Asia", Major: true},
	{Code: "CAD", Name: "Canadian Dollar", Flag: "🇨🇦", Rate: 1.44, Change: 0.02, Region: "Americas", Major: false},
	{Code: "AUD", Name: "Australian Dollar", Flag: "🇦🇺", Rate: 1.62, Change: 0.035, Region: "Oceania", Major: false},
	{Code: "CNY", Name: "Chinese Yuan", Flag: "🇨🇳", Rate: 7.32, Change: 0.18, Region: "Asia", Major: true},
	{Code: "INR", Name: "Indian Rupee", Flag: "🇮🇳", Rate: 85.45, Change: 0.65, Region: "Asia", Major: false},
	{Code: "CHF", Name: "Swiss Franc", Flag: "🇨🇭", Rate: 0.89, Change: -0.008, Region: "Europe", Major: false},
	{Code: "SGD", Name: "Singapore Dollar", Flag: "🇸🇬", Rate: 1.35, Change: 0.015, Region: "Asia", Major: false},
	{Code: "MXN", Name: "Mexican Peso", Flag: "🇲🇽", Rate: 20.15, Change: 0.45, Region: "Americas", Major: false},
	{Code: "BRL", Name: "Brazilian Real", Flag: "🇧🇷", Rate: 6.12, Change: 0.28, Region: "Americas", Major: false},
	{Code: "RUB", Name: "Russian Ruble", Flag: "🇷🇺", Rate: 98.75, Change: 2.35, Region: "Europe", Major: false},
	{Code: "KRW", Name: "South Korean Won", Flag: "🇰🇷", Rate: 1445.8, Change: 18.5, Region: "Asia", Major: false},
	{Code: "ZAR", Name: "South African Rand", Flag: "🇿🇦", Rate: 18.95, Change: -0.25, Region: "Africa", Major: false},
	{Code: "SEK", Name: "Swedish Krona", Flag: "🇸🇪", Rate: 10.85, Change: 0.12, Region: "Europe", Major: false},
	{Code: "NZD", Name: "New Zealand Dollar", Flag: "🇳🇿", Rate: 1.75, Change: 0.045, Region: "Oceania", Major: false},
	{Code: "TRY", Name: "Turkish Lira", Flag: "🇹🇷", Rate: 34.25, Change: 0.95, Region: "Europe", Major: false},
	{Code: "AED", Name: "UAE Dirham", Flag: "🇦🇪", Rate: 3.67, Change: 0, Region: "Middle East", Major: false},
	{Code: "HKD", Name: "Hong Kong Dollar", Flag: "🇭🇰", Rate: 7.78, Change: -0.02, Region: "Asia", Major: false},
}

func NormalizeCurrencyCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// FindCurrency looks a code up case-insensitively.
func FindCurrency(rates []CurrencyRate, code string) (CurrencyRate, bool) {
	code = NormalizeCurrencyCode(code)
	i := slices.IndexFunc(rates, func(r CurrencyRate) bool { return r.Code == code })
	if i < 0 {
		return CurrencyRate{}, false
	}
	return rates[i], true
}
