package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"isp-billing/internal/api/handler/dto"
	"isp-billing/internal/domain/customer"
	"isp-billing/internal/domain/invoice"
	"isp-billing/internal/domain/payment"
	"isp-billing/internal/domain/reconciliation"
	"isp-billing/internal/event"
	"isp-billing/internal/pkg/apperrors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// Ledger is the part of the reconciliation controller the HTTP layer drives.
type Ledger interface {
	View(ctx context.Context, q reconciliation.Query) (*reconciliation.View, error)
	TogglePayment(ctx context.Context, q reconciliation.Query, customerID string) (*reconciliation.View, error)
	History(ctx context.Context, period payment.Period) (*reconciliation.History, error)
	RegisterCustomer(ctx context.Context, fields customer.Fields) (*customer.Customer, error)
	GetCustomer(ctx context.Context, customerID string) (*customer.Customer, error)
	EditCustomer(ctx context.Context, q reconciliation.Query, customerID string, fields customer.Fields) (*reconciliation.View, error)
	DeleteCustomer(ctx context.Context, q reconciliation.Query, customerID string, confirmed bool) (*reconciliation.View, error)
}

type InvoiceService interface {
	Render(ctx context.Context, customerID string, period payment.Period) (*invoice.Document, error)
	Share(ctx context.Context, customerID string, period payment.Period) (*invoice.Share, error)
}

type ChangeFeed interface {
	Subscribe(period payment.Period) (<-chan event.Change, func())
}

var (
	_ Ledger         = (*reconciliation.Controller)(nil)
	_ InvoiceService = (*invoice.Service)(nil)
	_ ChangeFeed     = (*event.Hub)(nil)
)

func decodeJSON(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return fmt.Errorf("no request body")
	}
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(v)
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		slog.Default().Error("Failed to marshal JSON response", "error", err)
		http.Error(w, `{"error":{"message":"Internal server error"}}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(response)
}

// respondError maps the error taxonomy to a status. Store failures are reported with a
// generic message; the cause stays in the logs.
func respondError(w http.ResponseWriter, err error) {
	status, message, field := http.StatusInternalServerError, "An unexpected error occurred.", ""
	var validationError *apperrors.ValidationError

	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		status, message = http.StatusNotFound, "Resource not found."
	case errors.As(err, &validationError):
		status, message, field = http.StatusBadRequest, validationError.Message, validationError.Field
	case errors.Is(err, apperrors.ErrInvalidArgument), errors.Is(err, apperrors.ErrValidation):
		status, message = http.StatusBadRequest, err.Error()
	case errors.Is(err, apperrors.ErrProcessing):
		status, message = http.StatusConflict, "This customer is already being processed."
	case errors.Is(err, apperrors.ErrAlreadyExists):
		status, message = http.StatusConflict, err.Error()
	case errors.Is(err, apperrors.ErrDatabase):
		status, message = http.StatusBadGateway, "operation failed"
	default:
		slog.Default().Error("Unhandled internal error", "error", err)
	}

	resp := dto.ErrorResponse{
		Error: dto.ErrorDetail{
			Message: message,
			Field:   field,
		},
	}
	respondJSON(w, status, resp)
}

func getCustomerIDFromURL(r *http.Request) (string, error) {
	idStr := chi.URLParam(r, "customerID")
	if idStr == "" {
		return "", fmt.Errorf("%w: customerID not found in URL path", apperrors.ErrInvalidArgument)
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return "", fmt.Errorf("%w: invalid customerID format in URL path: %s", apperrors.ErrInvalidArgument, idStr)
	}
	return id.String(), nil
}

func getPeriodFromURL(r *http.Request) (payment.Period, error) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		return payment.Period{}, apperrors.NewValidationError("year", "year must be a number")
	}
	month, err := strconv.Atoi(chi.URLParam(r, "month"))
	if err != nil {
		return payment.Period{}, apperrors.NewValidationError("month", "month must be a number")
	}
	return payment.NewPeriod(month, year)
}

// getPeriodFromQuery reads ?month=&year=, defaulting each missing part to the current period.
func getPeriodFromQuery(r *http.Request, now time.Time) (payment.Period, error) {
	current := payment.PeriodOf(now)
	month, year := current.Month, current.Year

	if v := r.URL.Query().Get("month"); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil {
			return payment.Period{}, apperrors.NewValidationError("month", "month must be a number")
		}
		month = m
	}
	if v := r.URL.Query().Get("year"); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil {
			return payment.Period{}, apperrors.NewValidationError("year", "year must be a number")
		}
		year = y
	}
	return payment.NewPeriod(month, year)
}

func getViewQuery(r *http.Request, period payment.Period) (reconciliation.Query, error) {
	q := reconciliation.Query{Period: period, Search: strings.TrimSpace(r.URL.Query().Get("q"))}
	if v := r.URL.Query().Get("paymentDay"); v != "" {
		day, err := strconv.Atoi(v)
		if err != nil {
			return q, apperrors.NewValidationError("paymentDay", "payment day must be one of 1, 10 or 20")
		}
		q.PaymentDay = customer.PaymentDay(day)
	}
	return q, nil
}

// logLevelFor keeps expected outcomes out of the error log.
func logLevelFor(err error) slog.Level {
	if apperrors.IsTransport(err) {
		return slog.LevelError
	}
	if errors.Is(err, apperrors.ErrNotFound) || errors.Is(err, apperrors.ErrValidation) ||
		errors.Is(err, apperrors.ErrInvalidArgument) || errors.Is(err, apperrors.ErrProcessing) ||
		errors.Is(err, apperrors.ErrAlreadyExists) {
		return slog.LevelWarn
	}
	return slog.LevelError
}
