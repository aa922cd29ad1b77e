package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"rates-service/internal/domain/model"
)

// CoinGecko reads the top coins by market cap from /api/v3/coins/markets.
type CoinGecko struct {
	client
	baseURL  string
	pageSize int
}

// coinMarket mirrors the consumed fields. Pointers let null and absent
// values fall through to defaults.
type coinMarket struct {
	ID                       *string  `json:"id"`
	Name                     *string  `json:"name"`
	Symbol                   *string  `json:"symbol"`
	CurrentPrice             *float64 `json:"current_price"`
	PriceChangePercentage24h *float64 `json:"price_change_percentage_24h"`
	MarketCap                *float64 `json:"market_cap"`
	TotalVolume              *float64 `json:"total_volume"`
	MarketCapRank            *int     `json:"market_cap_rank"`
	Image                    *string  `json:"image"`
}

func NewCoinGecko(baseURL string, timeout time.Duration, pageSize int, opts ...Option) *CoinGecko {
	if pageSize <= 0 {
		pageSize = 250
	}
	return &CoinGecko{
		client:   newClient(model.FeedCrypto, timeout, opts...),
		baseURL:  strings.TrimRight(baseURL, "/"),
		pageSize: pageSize,
	}
}

func (c *CoinGecko) FetchLive(ctx context.Context) ([]model.CryptoRate, error) {
	body, err := c.get(ctx, c.marketsURL())
	if err != nil {
		return nil, err
	}

	// Decode elements as raw messages so one malformed coin is repaired
	// instead of failing the batch.
	var raw []json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, model.NewProviderError(c.feed, 0, fmt.Errorf("response is not an array: %w", err))
	}
	if len(raw) == 0 {
		return nil, model.NewProviderError(c.feed, 0, errors.New("empty market data"))
	}

	rates := make([]model.CryptoRate, 0, len(raw))
	for i, msg := range raw {
		// A type mismatch still fills the fields that did decode.
		var coin coinMarket
		_ = json.Unmarshal(msg, &coin)
		rates = append(rates, normalizeCoin(coin, i))
	}

	return dedupe(rates), nil
}

func (c *CoinGecko) marketsURL() string {
	q := url.Values{}
	q.Set("vs_currency", "usd")
	q.Set("order", "market_cap_desc")
	q.Set("per_page", strconv.Itoa(c.pageSize))
	q.Set("page", "1")
	q.Set("sparkline", "false")
	q.Set("price_change_percentage", "24h")
	return c.baseURL + "/api/v3/coins/markets?" + q.Encode()
}

// normalizeCoin fills absent fields with defaults. A coin without an id gets
// one derived from its position so it survives dedupe.
func normalizeCoin(coin coinMarket, index int) model.CryptoRate {
	rate := model.CryptoRate{
		ID:               stringOr(coin.ID, fmt.Sprintf("unknown-%d", index+1)),
		Name:             stringOr(coin.Name, "Unknown"),
		Symbol:           strings.ToUpper(stringOr(coin.Symbol, "UNK")),
		PriceUSD:         floatOr(coin.CurrentPrice),
		ChangePercent24h: decimal.NewFromFloat(floatOr(coin.PriceChangePercentage24h)).Round(2).InexactFloat64(),
		ImageURL:         stringOr(coin.Image, model.PlaceholderImage),
		MarketCap:        floatOr(coin.MarketCap),
		Volume24h:        floatOr(coin.TotalVolume),
		Rank:             index + 1,
	}
	if coin.MarketCapRank != nil && *coin.MarketCapRank > 0 {
		rate.Rank = *coin.MarketCapRank
	}
	return rate
}

func stringOr(v *string, fallback string) string {
	if v == nil || *v == "" {
		return fallback
	}
	return *v
}

func floatOr(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
