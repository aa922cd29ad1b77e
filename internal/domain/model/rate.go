package model

import (
	"slices"
	"time"

	"rates-service/pkg/utils"
)

type Feed string

const (
	FeedCurrency Feed = "currency"
	FeedCrypto   Feed = "crypto"
)

var SupportedFeeds = []Feed{FeedCurrency, FeedCrypto}

func (f Feed) IsSupported() bool {
	return slices.Contains(SupportedFeeds, f)
}

func (f Feed) String() string {
	return string(f)
}

// Entry is a single rate row. Identifier must be unique within one result set.
type Entry interface {
	Identifier() string
}

type CurrencyRate struct {
	Code   string  `json:"code"`
	Name   string  `json:"name"`
	Flag   string  `json:"flag"`
	Rate   float64 `json:"rate"`
	Change float64 `json:"change"`
	Region string  `json:"region"`
	Major  bool    `json:"major"`
}

func (c CurrencyRate) Identifier() string {
	return c.Code
}

type CryptoRate struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	Symbol           string  `json:"symbol"`
	PriceUSD         float64 `json:"priceUsd"`
	ChangePercent24h float64 `json:"changePercent24Hr"`
	ImageURL         string  `json:"imageUrl"`
	MarketCap        float64 `json:"marketCap"`
	Volume24h        float64 `json:"volume24h"`
	Rank             int     `json:"rank"`
}

func (c CryptoRate) Identifier() string {
	return c.ID
}

// Snapshot is an immutable, timestamped batch of entries from one successful fetch.
type Snapshot[T Entry] struct {
	Entries       []T
	LastUpdatedAt time.Time
	ExpiresAt     time.Time
}

// NewSnapshot stamps entries at fetchedAt. Both timestamps are truncated to
// milliseconds so the persisted form reads back identical.
func NewSnapshot[T Entry](entries []T, fetchedAt time.Time, cacheDuration time.Duration) Snapshot[T] {
	last := utils.TruncateMillis(fetchedAt)
	return Snapshot[T]{
		Entries:       slices.Clone(entries),
		LastUpdatedAt: last,
		ExpiresAt:     utils.TruncateMillis(last.Add(cacheDuration)),
	}
}

// IsExpired reports whether now is at or past ExpiresAt.
func (s Snapshot[T]) IsExpired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// State is the cache manager's view of one feed.
type State int

const (
	StateEmpty State = iota
	StateFresh
	StateStale
)

func (s State) String() string {
	switch s {
	case StateFresh:
		return "fresh"
	case StateStale:
		return "stale"
	default:
		return "empty"
	}
}

// Source tells the caller where the entries in a RatesView came from.
type Source string

const (
	SourceCache    Source = "cache"
	SourceLive     Source = "live"
	SourceStale    Source = "stale"
	SourceDefaults Source = "defaults"
)

// RatesView is what the consumer boundary hands to the presentation layer.
type RatesView struct {
	Feed        Feed       `json:"feed"`
	Entries     any        `json:"entries"`
	Count       int        `json:"count"`
	LastUpdated *time.Time `json:"last_updated,omitempty"`
	Stale       bool       `json:"stale"`
	AutoRefresh bool       `json:"auto_refresh"`
	Source      Source     `json:"source"`
	Advisory    string     `json:"advisory,omitempty"`
}

type FeedStatus struct {
	Feed        Feed       `json:"feed"`
	State       string     `json:"state"`
	LastUpdated *time.Time `json:"last_updated,omitempty"`
	Stale       bool       `json:"stale"`
	AutoRefresh bool       `json:"auto_refresh"`
	Advisory    string     `json:"advisory,omitempty"`
}
