package service

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"rates-service/internal/domain/model"
)

type CryptoQuery struct {
	Search string
	Sort   string
	Order  string
}

type CurrencyQuery struct {
	Search    string
	Region    string
	MajorOnly bool
}

var cryptoSortKeys = map[string]func(model.CryptoRate) float64{
	"rank":   func(r model.CryptoRate) float64 { return float64(r.Rank) },
	"price":  func(r model.CryptoRate) float64 { return r.PriceUSD },
	"change": func(r model.CryptoRate) float64 { return r.ChangePercent24h },
	"volume": func(r model.CryptoRate) float64 { return r.Volume24h },
}

func (q *CryptoQuery) Validate() error {
	if q.Sort == "" {
		q.Sort = "rank"
	}
	if q.Order == "" {
		q.Order = "asc"
	}
	if _, ok := cryptoSortKeys[q.Sort]; !ok {
		return fmt.Errorf("%w: sort must be one of rank, price, change, volume", ErrInvalidQuery)
	}
	if q.Order != "asc" && q.Order != "desc" {
		return fmt.Errorf("%w: order must be asc or desc", ErrInvalidQuery)
	}
	return nil
}

// FilterCrypto matches search against name and symbol and sorts stably.
// q must have been validated.
func FilterCrypto(rates []model.CryptoRate, q CryptoQuery) []model.CryptoRate {
	search := strings.ToLower(strings.TrimSpace(q.Search))

	out := make([]model.CryptoRate, 0, len(rates))
	for _, r := range rates {
		if search == "" ||
			strings.Contains(strings.ToLower(r.Name), search) ||
			strings.Contains(strings.ToLower(r.Symbol), search) {
			out = append(out, r)
		}
	}

	key := cryptoSortKeys[q.Sort]
	if key == nil {
		return out
	}
	slices.SortStableFunc(out, func(a, b model.CryptoRate) int {
		if q.Order == "desc" {
			return cmp.Compare(key(b), key(a))
		}
		return cmp.Compare(key(a), key(b))
	})

	return out
}

func FilterCurrency(rates []model.CurrencyRate, q CurrencyQuery) []model.CurrencyRate {
	search := strings.ToLower(strings.TrimSpace(q.Search))

	out := make([]model.CurrencyRate, 0, len(rates))
	for _, r := range rates {
		if q.MajorOnly && !r.Major {
			continue
		}
		if q.Region != "" && !strings.EqualFold(r.Region, q.Region) {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(r.Code), search) &&
			!strings.Contains(strings.ToLower(r.Name), search) {
			continue
		}
		out = append(out, r)
	}
	return out
}
