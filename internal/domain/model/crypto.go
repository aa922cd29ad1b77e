package model

import (
	"slices"
	"strings"
)

const PlaceholderImage = "/placeholder.svg?height=24&width=24"

// DefaultCryptoRates is served only when no snapshot has ever been obtained.
var DefaultCryptoRates = []CryptoRate{
	{ID: "bitcoin", Name: "Bitcoin", Symbol: "BTC", PriceUSD: 43250.00, ChangePercent24h: 2.45, ImageURL: "https://assets.coingecko.com/coins/images/1/small/bitcoin.png", MarketCap: 850000000000, Volume24h: 25000000000, Rank: 1},
	{ID: "ethereum", Name: "Ethereum", Symbol: "ETH", PriceUSD: 2580.00, ChangePercent24h: -1.23, ImageURL: "https://assets.coingecko.com/coins/images/279/small/ethereum.png", MarketCap: 310000000000, Volume24h: 15000000000, Rank: 2},
	{ID: "tether", Name: "Tether", Symbol: "USDT", PriceUSD: 1.00, ChangePercent24h: 0.01, ImageURL: "https://assets.coingecko.com/coins/images/325/small/Tether.png", MarketCap: 95000000000, Volume24h: 45000000000, Rank: 3},
	{ID: "binancecoin", Name: "BNB", Symbol: "BNB", PriceUSD: 315.50, ChangePercent24h: 1.87, ImageURL: "https://assets.coingecko.com/coins/images/825/small/bnb-icon2_2x.png", MarketCap: 47000000000, Volume24h: 1200000000, Rank: 4},
	{ID: "solana", Name: "Solana", Symbol: "SOL", PriceUSD: 98.75, ChangePercent24h: 4.32, ImageURL: "https://assets.coingecko.com/coins/images/4128/small/solana.png", MarketCap: 45000000000, Volume24h: 2800000000, Rank: 5},
	{ID: "cardano", Name: "Cardano", Symbol: "ADA", PriceUSD: 0.52, ChangePercent24h: -0.85, ImageURL: "https://assets.coingecko.com/coins/images/975/small/cardano.png", MarketCap: 18000000000, Volume24h: 450000000, Rank: 6},
	{ID: "ripple", Name: "XRP", Symbol: "XRP", PriceUSD: 0.63, ChangePercent24h: 3.21, ImageURL: "https://assets.coingecko.com/coins/images/44/small/xrp-symbol-white-128.png", MarketCap: 35000000000, Volume24h: 1800000000, Rank: 7},
	{ID: "dogecoin", Name: "Dogecoin", Symbol: "DOGE", PriceUSD: 0.085, ChangePercent24h: 5.67, ImageURL: "https://assets.coingecko.com/coins/images/5/small/dogecoin.png", MarketCap: 12000000000, Volume24h: 800000000, Rank: 8},
}

// FindCrypto matches a coin by symbol first, then by id, case-insensitively.
func FindCrypto(rates []CryptoRate, key string) (CryptoRate, bool) {
	key = strings.TrimSpace(key)
	if i := slices.IndexFunc(rates, func(r CryptoRate) bool { return strings.EqualFold(r.Symbol, key) }); i >= 0 {
		return rates[i], true
	}
	if i := slices.IndexFunc(rates, func(r CryptoRate) bool { return strings.EqualFold(r.ID, key) }); i >= 0 {
		return rates[i], true
	}
	return CryptoRate{}, false
}
