package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"rates-service/internal/domain/model"
	"rates-service/pkg/logger"
)

var (
	ErrInvalidCurrency    = errors.New("invalid currency")
	ErrRateNotFound       = errors.New("exchange rate not found")
	ErrExternalAPIFailure = errors.New("external API failure")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrUnknownFeed        = errors.New("unknown feed")
	ErrInvalidQuery       = errors.New("invalid query")
)

// EntrySource yields the current entries of one feed.
type EntrySource[T model.Entry] interface {
	Entries(ctx context.Context) ([]T, model.Source, error)
}

// Converter converts amounts between currencies and coins, pivoting on USD.
type Converter struct {
	currencies EntrySource[model.CurrencyRate]
	coins      EntrySource[model.CryptoRate]
	log        *logger.Logger
}

func NewConverter(currencies EntrySource[model.CurrencyRate], coins EntrySource[model.CryptoRate], log *logger.Logger) *Converter {
	return &Converter{
		currencies: currencies,
		coins:      coins,
		log:        log,
	}
}

// quote is one side of a conversion: how many units one USD buys, or how
// many USD one unit buys for coins.
type quote struct {
	key    string
	feed   model.Feed
	amount decimal.Decimal
}

func (c *Converter) Convert(ctx context.Context, request model.ConversionRequest) (*model.ConversionResult, error) {
	if !request.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	var coins []model.CryptoRate
	loadCoins := func() ([]model.CryptoRate, error) {
		if coins != nil {
			return coins, nil
		}
		rates, _, err := c.coins.Entries(ctx)
		if err != nil {
			return nil, err
		}
		coins = rates
		return coins, nil
	}

	currencies, _, err := c.currencies.Entries(ctx)
	if err != nil {
		c.log.Error("Failed to load currency rates", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrExternalAPIFailure, err)
	}

	from, err := c.resolve(request.From, currencies, loadCoins)
	if err != nil {
		return nil, err
	}
	to, err := c.resolve(request.To, currencies, loadCoins)
	if err != nil {
		return nil, err
	}

	usd := request.Amount
	if from.feed == model.FeedCrypto {
		usd = usd.Mul(from.amount)
	} else {
		usd = usd.Div(from.amount)
	}

	result := usd
	if to.feed == model.FeedCrypto {
		result = result.Div(to.amount)
	} else {
		result = result.Mul(to.amount)
	}

	return &model.ConversionResult{
		From:     from.key,
		To:       to.key,
		Amount:   request.Amount,
		Result:   result.Round(6),
		Rate:     result.Div(request.Amount).Round(8),
		FromFeed: from.feed,
		ToFeed:   to.feed,
	}, nil
}

func (c *Converter) resolve(key string, currencies []model.CurrencyRate, loadCoins func() ([]model.CryptoRate, error)) (quote, error) {
	if key == "" {
		return quote{}, ErrInvalidCurrency
	}

	if currency, ok := model.FindCurrency(currencies, key); ok {
		if currency.Rate <= 0 {
			return quote{}, fmt.Errorf("%w: %s", ErrRateNotFound, currency.Code)
		}
		return quote{key: currency.Code, feed: model.FeedCurrency, amount: decimal.NewFromFloat(currency.Rate)}, nil
	}

	coins, err := loadCoins()
	if err != nil {
		c.log.Error("Failed to load crypto rates", "error", err)
		return quote{}, fmt.Errorf("%w: %v", ErrExternalAPIFailure, err)
	}
	if coin, ok := model.FindCrypto(coins, key); ok {
		if coin.PriceUSD <= 0 {
			return quote{}, fmt.Errorf("%w: %s", ErrRateNotFound, coin.Symbol)
		}
		return quote{key: coin.Symbol, feed: model.FeedCrypto, amount: decimal.NewFromFloat(coin.PriceUSD)}, nil
	}

	return quote{}, fmt.Errorf("%w: %s", ErrInvalidCurrency, key)
}
