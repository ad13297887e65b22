package handler

import (
	"fmt"
	"isp-billing/internal/api/handler/dto"
	"log/slog"
	"net/http"
	"strconv"
	"time"
)

type InvoiceHandler struct {
	invoices InvoiceService
	now      func() time.Time
	logger   *slog.Logger
}

func NewInvoiceHandler(invoices InvoiceService, l *slog.Logger) *InvoiceHandler {
	if invoices == nil {
		panic("invoice service cannot be nil")
	}
	if l == nil {
		panic("logger cannot be nil")
	}
	return &InvoiceHandler{
		invoices: invoices,
		now:      time.Now,
		logger:   l.With("component", "InvoiceHandler"),
	}
}

// DownloadInvoice handles GET /customers/{customerID}/invoice
// @Summary Download the invoice PDF
// @Tags Invoices
// @Produce application/pdf
// @Param customerID path string true "Customer ID" Format(uuid)
// @Param month query int false "Month, defaults to the current month"
// @Param year query int false "Year, defaults to the current year"
// @Success 200 {file} file "Invoice PDF"
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /customers/{customerID}/invoice [get]
func (h *InvoiceHandler) DownloadInvoice(w http.ResponseWriter, r *http.Request) {
	customerID, err := getCustomerIDFromURL(r)
	if err != nil {
		respondError(w, err)
		return
	}
	period, err := getPeriodFromQuery(r, h.now())
	if err != nil {
		respondError(w, err)
		return
	}

	doc, err := h.invoices.Render(r.Context(), customerID, period)
	if err != nil {
		h.logger.Log(r.Context(), logLevelFor(err), "Failed to render invoice", slog.String("customerID", customerID), slog.Any("error", err))
		respondError(w, err)
		return
	}

	w.Header().Set("Content-Type", doc.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(doc.Content)))
	w.WriteHeader(http.StatusOK)
	w.Write(doc.Content)
}

// ShareInvoice handles GET /customers/{customerID}/invoice/share
// @Summary Invoice share message
// @Description Plain-text payment message and a WhatsApp link that opens a chat with the customer.
// @Tags Invoices
// @Produce json
// @Param customerID path string true "Customer ID" Format(uuid)
// @Param month query int false "Month, defaults to the current month"
// @Param year query int false "Year, defaults to the current year"
// @Success 200 {object} dto.ShareResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /customers/{customerID}/invoice/share [get]
func (h *InvoiceHandler) ShareInvoice(w http.ResponseWriter, r *http.Request) {
	customerID, err := getCustomerIDFromURL(r)
	if err != nil {
		respondError(w, err)
		return
	}
	period, err := getPeriodFromQuery(r, h.now())
	if err != nil {
		respondError(w, err)
		return
	}

	share, err := h.invoices.Share(r.Context(), customerID, period)
	if err != nil {
		h.logger.Log(r.Context(), logLevelFor(err), "Failed to build invoice share", slog.String("customerID", customerID), slog.Any("error", err))
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewShareResponse(share))
}
