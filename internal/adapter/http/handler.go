package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"rates-service/internal/domain/model"
	"rates-service/internal/domain/ports"
	"rates-service/internal/metrics"
	"rates-service/internal/service"
	"rates-service/pkg/logger"
)

type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

type Handler struct {
	feeds     map[model.Feed]ports.FeedService
	converter ports.ConversionService
	log       *logger.Logger
	metrics   *metrics.Metrics
}

func NewHandler(feeds map[model.Feed]ports.FeedService, converter ports.ConversionService, log *logger.Logger, metrics *metrics.Metrics) *Handler {
	return &Handler{
		feeds:     feeds,
		converter: converter,
		log:       log,
		metrics:   metrics,
	}
}

// listing holds the parsed filters for one feed's rates request.
type listing struct {
	crypto   service.CryptoQuery
	currency service.CurrencyQuery
}

func parseListing(feed model.Feed, r *http.Request) (listing, error) {
	query := r.URL.Query()

	var l listing
	switch feed {
	case model.FeedCrypto:
		l.crypto = service.CryptoQuery{
			Search: query.Get("search"),
			Sort:   strings.ToLower(query.Get("sort")),
			Order:  strings.ToLower(query.Get("order")),
		}
		if err := l.crypto.Validate(); err != nil {
			return l, err
		}
	case model.FeedCurrency:
		l.currency = service.CurrencyQuery{
			Search: query.Get("search"),
			Region: query.Get("region"),
		}
		if major := query.Get("major"); major != "" {
			v, err := strconv.ParseBool(major)
			if err != nil {
				return l, service.ErrInvalidQuery
			}
			l.currency.MajorOnly = v
		}
	}
	return l, nil
}

func (l listing) apply(view *model.RatesView) {
	switch entries := view.Entries.(type) {
	case []model.CryptoRate:
		filtered := service.FilterCrypto(entries, l.crypto)
		view.Entries, view.Count = filtered, len(filtered)
	case []model.CurrencyRate:
		filtered := service.FilterCurrency(entries, l.currency)
		view.Entries, view.Count = filtered, len(filtered)
	}
}

func (h *Handler) GetRatesHandler(w http.ResponseWriter, r *http.Request) {
	feed, svc, ok := h.lookupFeed(w, r)
	if !ok {
		return
	}
	h.metrics.RateRequestsTotal.WithLabelValues(feed.String()).Inc()

	filters, err := parseListing(feed, r)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	view, err := svc.GetRates(r.Context())
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	filters.apply(view)
	h.sendSuccessResponse(w, view)
}

// RefreshRatesHandler forces a fetch. On failure the best known data is still
// returned in the data field next to the error.
func (h *Handler) RefreshRatesHandler(w http.ResponseWriter, r *http.Request) {
	_, svc, ok := h.lookupFeed(w, r)
	if !ok {
		return
	}

	view, err := svc.RefreshRates(r.Context())
	if err != nil {
		statusCode, message := h.classifyError(err)
		h.log.Warn("Manual refresh failed", "error", err, "status_code", statusCode)
		h.sendResponse(w, statusCode, Response{Success: false, Data: view, Error: message})
		return
	}

	h.sendSuccessResponse(w, view)
}

func (h *Handler) StatusHandler(w http.ResponseWriter, r *http.Request) {
	_, svc, ok := h.lookupFeed(w, r)
	if !ok {
		return
	}
	h.sendSuccessResponse(w, svc.Status())
}

func (h *Handler) AutoRefreshHandler(w http.ResponseWriter, r *http.Request) {
	_, svc, ok := h.lookupFeed(w, r)
	if !ok {
		return
	}

	enabledStr := r.URL.Query().Get("enabled")
	if enabledStr == "" {
		h.sendErrorResponse(w, http.StatusBadRequest, "missing required parameter: enabled")
		return
	}
	enabled, err := strconv.ParseBool(enabledStr)
	if err != nil {
		h.sendErrorResponse(w, http.StatusBadRequest, "invalid enabled parameter, use true or false")
		return
	}

	svc.ToggleAutoRefresh(enabled)
	h.sendSuccessResponse(w, svc.Status())
}

func (h *Handler) ConvertHandler(w http.ResponseWriter, r *http.Request) {
	h.metrics.ConversionRequestsTotal.Inc()

	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")
	amountStr := r.URL.Query().Get("amount")

	if from == "" || to == "" {
		h.sendErrorResponse(w, http.StatusBadRequest, "missing required parameters: from and to")
		return
	}

	amount := decimal.NewFromInt(1)
	if amountStr != "" {
		var err error
		amount, err = decimal.NewFromString(amountStr)
		if err != nil {
			h.sendErrorResponse(w, http.StatusBadRequest, "invalid amount parameter")
			return
		}
	}

	request := model.ConversionRequest{
		From:   from,
		To:     to,
		Amount: amount,
	}

	result, err := h.converter.Convert(r.Context(), request)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.sendSuccessResponse(w, result)
}

func (h *Handler) lookupFeed(w http.ResponseWriter, r *http.Request) (model.Feed, ports.FeedService, bool) {
	feed := model.Feed(strings.ToLower(r.PathValue("feed")))
	svc, ok := h.feeds[feed]
	if !ok {
		h.handleServiceError(w, service.ErrUnknownFeed)
		return "", nil, false
	}
	return feed, svc, true
}

func (h *Handler) sendSuccessResponse(w http.ResponseWriter, data interface{}) {
	h.sendResponse(w, http.StatusOK, Response{
		Success: true,
		Data:    data,
	})
}

func (h *Handler) sendErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	h.sendResponse(w, statusCode, Response{
		Success: false,
		Error:   message,
	})
}

func (h *Handler) sendResponse(w http.ResponseWriter, statusCode int, response Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.log.Error("Failed to encode response", "error", err)
	}
}

func (h *Handler) classifyError(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrUnknownFeed):
		return http.StatusNotFound, "unknown feed"
	case errors.Is(err, service.ErrInvalidQuery):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrInvalidCurrency):
		return http.StatusBadRequest, "invalid currency"
	case errors.Is(err, service.ErrInvalidAmount):
		return http.StatusBadRequest, "invalid amount"
	case errors.Is(err, service.ErrRateNotFound):
		return http.StatusNotFound, "exchange rate not found"
	case errors.Is(err, service.ErrExternalAPIFailure), errors.Is(err, model.ErrProvider):
		return http.StatusServiceUnavailable, "external API failure"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

func (h *Handler) handleServiceError(w http.ResponseWriter, err error) {
	statusCode, errorMessage := h.classifyError(err)

	if statusCode >= http.StatusInternalServerError {
		h.log.Error("Service error", "error", err, "status_code", statusCode)
	} else {
		h.log.Debug("Request rejected", "error", err, "status_code", statusCode)
	}
	h.sendErrorResponse(w, statusCode, errorMessage)
}
