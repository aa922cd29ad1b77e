package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rates-service/internal/domain/model"
	"rates-service/internal/domain/ports"
	"rates-service/internal/metrics"
	"rates-service/internal/service"
	"rates-service/pkg/logger"
)

type MockFeedService struct {
	GetRatesFunc     func(ctx context.Context) (*model.RatesView, error)
	RefreshRatesFunc func(ctx context.Context) (*model.RatesView, error)
	StatusFunc       func() model.FeedStatus
	toggled          []bool
}

func (m *MockFeedService) GetRates(ctx context.Context) (*model.RatesView, error) {
	return m.GetRatesFunc(ctx)
}

func (m *MockFeedService) RefreshRates(ctx context.Context) (*model.RatesView, error) {
	return m.RefreshRatesFunc(ctx)
}

func (m *MockFeedService) LastUpdateTime() (time.Time, bool) {
	return time.Time{}, false
}

func (m *MockFeedService) IsStale() bool {
	return true
}

func (m *MockFeedService) ToggleAutoRefresh(enabled bool) {
	m.toggled = append(m.toggled, enabled)
}

func (m *MockFeedService) Status() model.FeedStatus {
	if m.StatusFunc != nil {
		return m.StatusFunc()
	}
	return model.FeedStatus{}
}

type MockConversionService struct {
	ConvertFunc func(ctx context.Context, request model.ConversionRequest) (*model.ConversionResult, error)
}

func (m *MockConversionService) Convert(ctx context.Context, request model.ConversionRequest) (*model.ConversionResult, error) {
	return m.ConvertFunc(ctx, request)
}

type testResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func newTestRouter(feeds map[model.Feed]ports.FeedService, converter ports.ConversionService) http.Handler {
	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics(reg)
	h := NewHandler(feeds, converter, logger.NewNop(), m)
	return NewRouter(h, logger.NewNop(), m, reg).SetupRoutes()
}

func do(t *testing.T, router http.Handler, method, target string) (*httptest.ResponseRecorder, testResponse) {
	t.Helper()
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(method, target, nil))

	var body testResponse
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec, body
}

func cryptoView() *model.RatesView {
	entries := []model.CryptoRate{
		{ID: "bitcoin", Name: "Bitcoin", Symbol: "BTC", PriceUSD: 50000, Rank: 1},
		{ID: "ethereum", Name: "Ethereum", Symbol: "ETH", PriceUSD: 2500, Rank: 2},
		{ID: "dogecoin", Name: "Dogecoin", Symbol: "DOGE", PriceUSD: 0.1, Rank: 3},
	}
	return &model.RatesView{Feed: model.FeedCrypto, Entries: entries, Count: len(entries), Source: model.SourceCache}
}

func TestGetRatesHandler(t *testing.T) {
	feeds := map[model.Feed]ports.FeedService{
		model.FeedCrypto: &MockFeedService{
			GetRatesFunc: func(ctx context.Context) (*model.RatesView, error) { return cryptoView(), nil },
		},
		model.FeedCurrency: &MockFeedService{
			GetRatesFunc: func(ctx context.Context) (*model.RatesView, error) {
				return nil, service.ErrExternalAPIFailure
			},
		},
	}
	router := newTestRouter(feeds, nil)

	testCases := []struct {
		name          string
		target        string
		expectedCode  int
		expectedIDs   []string
		expectedError string
	}{
		{name: "All entries", target: "/api/v1/rates/crypto", expectedCode: http.StatusOK, expectedIDs: []string{"bitcoin", "ethereum", "dogecoin"}},
		{name: "Feed name is case-insensitive", target: "/api/v1/rates/CRYPTO", expectedCode: http.StatusOK, expectedIDs: []string{"bitcoin", "ethereum", "dogecoin"}},
		{name: "Sorted by price ascending", target: "/api/v1/rates/crypto?sort=price&order=asc", expectedCode: http.StatusOK, expectedIDs: []string{"dogecoin", "ethereum", "bitcoin"}},
		{name: "Search", target: "/api/v1/rates/crypto?search=eth", expectedCode: http.StatusOK, expectedIDs: []string{"ethereum"}},
		{name: "Invalid sort", target: "/api/v1/rates/crypto?sort=name", expectedCode: http.StatusBadRequest},
		{name: "Unknown feed", target: "/api/v1/rates/stocks", expectedCode: http.StatusNotFound, expectedError: "unknown feed"},
		{name: "Upstream failure", target: "/api/v1/rates/currency", expectedCode: http.StatusServiceUnavailable, expectedError: "external API failure"},
		{name: "Invalid major flag", target: "/api/v1/rates/currency?major=maybe", expectedCode: http.StatusBadRequest},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec, body := do(t, router, http.MethodGet, tc.target)
			assert.Equal(t, tc.expectedCode, rec.Code)

			if tc.expectedError != "" {
				assert.False(t, body.Success)
				assert.Equal(t, tc.expectedError, body.Error)
			}
			if tc.expectedIDs == nil {
				return
			}

			var view struct {
				Entries []model.CryptoRate `json:"entries"`
				Count   int                `json:"count"`
				Source  string             `json:"source"`
			}
			require.NoError(t, json.Unmarshal(body.Data, &view))
			ids := make([]string, 0, len(view.Entries))
			for _, e := range view.Entries {
				ids = append(ids, e.ID)
			}
			assert.Equal(t, tc.expectedIDs, ids)
			assert.Equal(t, len(tc.expectedIDs), view.Count)
			assert.Equal(t, "cache", view.Source)
		})
	}
}

func TestRefreshRatesHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		router := newTestRouter(map[model.Feed]ports.FeedService{
			model.FeedCrypto: &MockFeedService{
				RefreshRatesFunc: func(ctx context.Context) (*model.RatesView, error) { return cryptoView(), nil },
			},
		}, nil)

		rec, body := do(t, router, http.MethodPost, "/api/v1/rates/crypto/refresh")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, body.Success)
	})

	t.Run("FailureReturnsOldData", func(t *testing.T) {
		router := newTestRouter(map[model.Feed]ports.FeedService{
			model.FeedCrypto: &MockFeedService{
				RefreshRatesFunc: func(ctx context.Context) (*model.RatesView, error) {
					view := cryptoView()
					view.Source = model.SourceStale
					return view, errors.Join(service.ErrExternalAPIFailure, errors.New("timeout"))
				},
			},
		}, nil)

		rec, body := do(t, router, http.MethodPost, "/api/v1/rates/crypto/refresh")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.False(t, body.Success)
		assert.Equal(t, "external API failure", body.Error)

		var view model.RatesView
		require.NoError(t, json.Unmarshal(body.Data, &view))
		assert.Equal(t, model.SourceStale, view.Source)
		assert.Equal(t, 3, view.Count)
	})

	t.Run("WrongMethod", func(t *testing.T) {
		router := newTestRouter(map[model.Feed]ports.FeedService{model.FeedCrypto: &MockFeedService{}}, nil)

		rec, _ := do(t, router, http.MethodGet, "/api/v1/rates/crypto/refresh")
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}

func TestStatusAndAutoRefreshHandlers(t *testing.T) {
	last := time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)
	auto := true
	mock := &MockFeedService{
		StatusFunc: func() model.FeedStatus {
			return model.FeedStatus{Feed: model.FeedCurrency, State: "fresh", LastUpdated: &last, AutoRefresh: auto}
		},
	}
	router := newTestRouter(map[model.Feed]ports.FeedService{model.FeedCurrency: mock}, nil)

	rec, body := do(t, router, http.MethodGet, "/api/v1/rates/currency/status")
	require.Equal(t, http.StatusOK, rec.Code)
	var status model.FeedStatus
	require.NoError(t, json.Unmarshal(body.Data, &status))
	assert.Equal(t, "fresh", status.State)
	assert.True(t, status.LastUpdated.Equal(last))

	rec, _ = do(t, router, http.MethodPut, "/api/v1/rates/currency/auto-refresh")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = do(t, router, http.MethodPut, "/api/v1/rates/currency/auto-refresh?enabled=sometimes")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	auto = false
	rec, body = do(t, router, http.MethodPut, "/api/v1/rates/currency/auto-refresh?enabled=false")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(body.Data, &status))
	assert.False(t, status.AutoRefresh)
	assert.Equal(t, []bool{false}, mock.toggled)
}

func TestConvertHandler(t *testing.T) {
	converter := &MockConversionService{
		ConvertFunc: func(ctx context.Context, request model.ConversionRequest) (*model.ConversionResult, error) {
			switch request.From {
			case "XYZ":
				return nil, service.ErrInvalidCurrency
			case "BTC":
				return nil, service.ErrExternalAPIFailure
			}
			if !request.Amount.IsPositive() {
				return nil, service.ErrInvalidAmount
			}
			return &model.ConversionResult{
				From:   request.From,
				To:     request.To,
				Amount: request.Amount,
				Result: request.Amount.Mul(decimal.RequireFromString("0.9")),
			}, nil
		},
	}
	router := newTestRouter(nil, converter)

	testCases := []struct {
		name           string
		target         string
		expectedCode   int
		expectedResult string
	}{
		{"Default amount", "/api/v1/convert?from=USD&to=EUR", http.StatusOK, "0.9"},
		{"Explicit amount", "/api/v1/convert?from=USD&to=EUR&amount=250.5", http.StatusOK, "225.45"},
		{"Missing to", "/api/v1/convert?from=USD", http.StatusBadRequest, ""},
		{"Bad amount", "/api/v1/convert?from=USD&to=EUR&amount=ten", http.StatusBadRequest, ""},
		{"Negative amount", "/api/v1/convert?from=USD&to=EUR&amount=-1", http.StatusBadRequest, ""},
		{"Unknown currency", "/api/v1/convert?from=XYZ&to=EUR", http.StatusBadRequest, ""},
		{"Feed unavailable", "/api/v1/convert?from=BTC&to=EUR", http.StatusServiceUnavailable, ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec, body := do(t, router, http.MethodGet, tc.target)
			assert.Equal(t, tc.expectedCode, rec.Code)
			if tc.expectedResult == "" {
				assert.False(t, body.Success)
				return
			}

			var result model.ConversionResult
			require.NoError(t, json.Unmarshal(body.Data, &result))
			assert.True(t, decimal.RequireFromString(tc.expectedResult).Equal(result.Result), "got %s", result.Result)
		})
	}
}

func TestHealthAndMetrics(t *testing.T) {
	router := newTestRouter(nil, nil)

	rec, _ := do(t, router, http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())

	rec, _ = do(t, router, http.MethodGet, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")
}
