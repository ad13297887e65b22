package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"isp-billing/internal/api/handler/dto"
	"log/slog"
	"net/http"
	"time"
)

// sseHeartbeat keeps idle streams alive through proxies that drop quiet connections.
const sseHeartbeat = 10 * time.Second

type PeriodHandler struct {
	ledger         Ledger
	feed           ChangeFeed
	currencyPrefix string
	logger         *slog.Logger
}

func NewPeriodHandler(ledger Ledger, feed ChangeFeed, currencyPrefix string, l *slog.Logger) *PeriodHandler {
	if ledger == nil {
		panic("ledger cannot be nil")
	}
	if feed == nil {
		panic("change feed cannot be nil")
	}
	if l == nil {
		panic("logger cannot be nil")
	}
	return &PeriodHandler{
		ledger:         ledger,
		feed:           feed,
		currencyPrefix: currencyPrefix,
		logger:         l.With("component", "PeriodHandler"),
	}
}

// GetView handles GET /periods/{year}/{month}/view
// @Summary Reconciliation view of one period
// @Description Active customers of the selected billing cycle with their paid status, filtered by a free-text query, plus the counts of every cycle under the same filter.
// @Tags Periods
// @Produce json
// @Param year path int true "Year" Minimum(1)
// @Param month path int true "Month" Minimum(1) Maximum(12)
// @Param paymentDay query int false "Billing cycle (1, 10 or 20)" default(1)
// @Param q query string false "Case-insensitive search over name, address and phone"
// @Success 200 {object} dto.ViewResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid period or payment day"
// @Failure 502 {object} dto.ErrorResponse "Store unreachable"
// @Router /periods/{year}/{month}/view [get]
func (h *PeriodHandler) GetView(w http.ResponseWriter, r *http.Request) {
	period, err := getPeriodFromURL(r)
	if err != nil {
		respondError(w, err)
		return
	}
	q, err := getViewQuery(r, period)
	if err != nil {
		respondError(w, err)
		return
	}

	view, err := h.ledger.View(r.Context(), q)
	if err != nil {
		h.logger.Log(r.Context(), logLevelFor(err), "Failed to build reconciliation view", slog.Any("error", err))
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewViewResponse(view))
}

// TogglePayment handles POST /periods/{year}/{month}/customers/{customerID}/toggle
// @Summary Flip the paid state of one customer
// @Description Records a payment of the customer's monthly fee dated today, or removes the recorded payment, then returns the reloaded view.
// @Tags Periods
// @Produce json
// @Param year path int true "Year"
// @Param month path int true "Month"
// @Param customerID path string true "Customer ID" Format(uuid)
// @Param paymentDay query int false "Billing cycle of the returned view" default(1)
// @Param q query string false "Search applied to the returned view"
// @Success 200 {object} dto.ViewResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse "Customer is not an active customer"
// @Failure 409 {object} dto.ErrorResponse "Customer row is already being processed"
// @Failure 502 {object} dto.ErrorResponse "Store unreachable, nothing applied"
// @Router /periods/{year}/{month}/customers/{customerID}/toggle [post]
func (h *PeriodHandler) TogglePayment(w http.ResponseWriter, r *http.Request) {
	customerID, err := getCustomerIDFromURL(r)
	if err != nil {
		respondError(w, err)
		return
	}
	period, err := getPeriodFromURL(r)
	if err != nil {
		respondError(w, err)
		return
	}
	q, err := getViewQuery(r, period)
	if err != nil {
		respondError(w, err)
		return
	}

	view, err := h.ledger.TogglePayment(r.Context(), q, customerID)
	if err != nil {
		h.logger.Log(r.Context(), logLevelFor(err), "Toggle payment failed", slog.String("customerID", customerID), slog.Any("error", err))
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewViewResponse(view))
}

// GetHistory handles GET /periods/{year}/{month}/history
// @Summary Payment history of one period
// @Description Every payment recorded for the period, newest first, with the customer name ("Unknown" when the customer is gone) and the total amount.
// @Tags Periods
// @Produce json
// @Param year path int true "Year"
// @Param month path int true "Month"
// @Success 200 {object} dto.HistoryResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /periods/{year}/{month}/history [get]
func (h *PeriodHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	period, err := getPeriodFromURL(r)
	if err != nil {
		respondError(w, err)
		return
	}

	history, err := h.ledger.History(r.Context(), period)
	if err != nil {
		h.logger.Log(r.Context(), logLevelFor(err), "Failed to load payment history", slog.Any("error", err))
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewHistoryResponse(history, h.currencyPrefix))
}

// StreamEvents handles GET /periods/{year}/{month}/events
// @Summary Reload notifications
// @Description Server-Sent Events stream. A "reload" event is sent whenever data shown in the period's view changes.
// @Tags Periods
// @Produce text/event-stream
// @Param year path int true "Year"
// @Param month path int true "Month"
// @Success 200 {string} string "event stream"
// @Router /periods/{year}/{month}/events [get]
func (h *PeriodHandler) StreamEvents(w http.ResponseWriter, r *http.Request) {
	period, err := getPeriodFromURL(r)
	if err != nil {
		respondError(w, err)
		return
	}
	if _, ok := w.(http.Flusher); !ok {
		respondError(w, fmt.Errorf("streaming unsupported by response writer"))
		return
	}

	logger := h.logger.With(slog.String("period", period.String()))

	// The stream outlives the server's WriteTimeout.
	rc := http.NewResponseController(w)
	if err := rc.SetWriteDeadline(time.Time{}); err != nil && !errors.Is(err, http.ErrNotSupported) {
		logger.WarnContext(r.Context(), "Could not clear write deadline for event stream", slog.Any("error", err))
	}

	changes, cancel := h.feed.Subscribe(period)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	send := func(frame string) bool {
		if _, err := fmt.Fprint(w, frame); err != nil {
			logger.DebugContext(r.Context(), "Event stream write failed", slog.Any("error", err))
			return false
		}
		if err := rc.Flush(); err != nil {
			logger.DebugContext(r.Context(), "Event stream flush failed", slog.Any("error", err))
			return false
		}
		return true
	}

	if !send(fmt.Sprintf("event: ready\ndata: {\"period\":%q}\n\n", period.String())) {
		return
	}
	logger.DebugContext(r.Context(), "Event stream opened")

	heartbeat := time.NewTicker(sseHeartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			logger.DebugContext(r.Context(), "Event stream closed by client")
			return
		case <-heartbeat.C:
			if !send(": keep-alive\n\n") {
				return
			}
		case change, open := <-changes:
			if !open {
				return
			}
			payload, err := json.Marshal(change)
			if err != nil {
				logger.ErrorContext(r.Context(), "Failed to encode change", slog.Any("error", err))
				continue
			}
			if !send(fmt.Sprintf("event: reload\ndata: %s\n\n", payload)) {
				return
			}
		}
	}
}
