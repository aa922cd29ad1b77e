package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"rates-service/internal/domain/model"
	"rates-service/pkg/logger"
)

// CurrencyAPI reads USD-based rates from an exchangerate-api style endpoint
// and projects them onto the built-in currency catalog.
type CurrencyAPI struct {
	client
	baseURL         string
	catalog         []model.CurrencyRate
	syntheticChange bool
	random          func() float64
	log             *logger.Logger
	warnOnce        sync.Once
}

type exchangerateAPIResponse struct {
	Base  string                     `json:"base"`
	Date  string                     `json:"date"`
	Rates map[string]json.RawMessage `json:"rates"`
}

func NewCurrencyAPI(baseURL string, timeout time.Duration, syntheticChange bool, log *logger.Logger, opts ...Option) *CurrencyAPI {
	return &CurrencyAPI{
		client:          newClient(model.FeedCurrency, timeout, opts...),
		baseURL:         strings.TrimRight(baseURL, "/"),
		catalog:         model.DefaultCurrencyRates,
		syntheticChange: syntheticChange,
		random:          rand.Float64,
		log:             log,
	}
}

func (c *CurrencyAPI) FetchLive(ctx context.Context) ([]model.CurrencyRate, error) {
	body, err := c.get(ctx, c.baseURL+"/v4/latest/USD")
	if err != nil {
		return nil, err
	}

	var apiResp exchangerateAPIResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, model.NewProviderError(c.feed, 0, fmt.Errorf("failed to decode response: %w", err))
	}
	if len(apiResp.Rates) == 0 {
		return nil, model.NewProviderError(c.feed, 0, errors.New("response has no rates"))
	}
	if c.syntheticChange {
		c.warnOnce.Do(func() {
			c.log.Warn("Currency change values are synthetic", "feed", c.feed)
		})
	}

	rates := make([]model.CurrencyRate, 0, len(c.catalog))
	for _, currency := range c.catalog {
		rates = append(rates, c.normalize(currency, apiResp.Rates))
	}

	rates = dedupe(rates)
	if len(rates) == 0 {
		return nil, model.NewProviderError(c.feed, 0, errors.New("empty rate set"))
	}

	return rates, nil
}

// normalize overlays the live rate on a catalog entry. Missing, malformed
// or non-positive upstream values keep the catalog rate.
func (c *CurrencyAPI) normalize(currency model.CurrencyRate, quotes map[string]json.RawMessage) model.CurrencyRate {
	if currency.Flag == "" {
		currency.Flag = model.PlaceholderFlag
	}
	if currency.Code == model.USD {
		currency.Rate = 1
		currency.Change = 0
		return currency
	}

	quote, ok := parseQuote(quotes[currency.Code])
	if !ok {
		return currency
	}

	currency.Rate = quote
	currency.Change = 0
	if c.syntheticChange {
		change := (c.random() - 0.5) * 0.1 * quote
		currency.Change = decimal.NewFromFloat(change).Round(4).InexactFloat64()
	}

	return currency
}

// parseQuote decodes one upstream rate. Absent, null, non-numeric and
// non-positive values are rejected.
func parseQuote(raw json.RawMessage) (float64, bool) {
	if len(raw) == 0 {
		return 0, false
	}
	var quote *float64
	if err := json.Unmarshal(raw, &quote); err != nil || quote == nil || *quote <= 0 {
		return 0, false
	}
	return *quote, true
}
