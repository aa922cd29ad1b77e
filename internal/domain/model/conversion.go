package model

import "github.com/shopspring/decimal"

type ConversionRequest struct {
	From   string          `json:"from"`
	To     string          `json:"to"`
	Amount decimal.Decimal `json:"amount"`
}

type ConversionResult struct {
	From     string          `json:"from"`
	To       string          `json:"to"`
	Amount   decimal.Decimal `json:"amount"`
	Result   decimal.Decimal `json:"result"`
	Rate     decimal.Decimal `json:"rate"`
	FromFeed Feed            `json:"from_feed"`
	ToFeed   Feed            `json:"to_feed"`
}
