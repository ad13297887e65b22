package handler

import (
	"fmt"
	"isp-billing/internal/api/handler/dto"
	"isp-billing/internal/domain/reconciliation"
	"isp-billing/internal/pkg/apperrors"
	"log/slog"
	"net/http"
	"strconv"
	"time"
)

type CustomerHandler struct {
	ledger Ledger
	now    func() time.Time
	logger *slog.Logger
}

func NewCustomerHandler(ledger Ledger, l *slog.Logger) *CustomerHandler {
	if ledger == nil {
		panic("ledger cannot be nil")
	}
	if l == nil {
		panic("logger cannot be nil")
	}
	return &CustomerHandler{
		ledger: ledger,
		now:    time.Now,
		logger: l.With("component", "CustomerHandler"),
	}
}

// CreateCustomer handles POST /customers
// @Summary Register a customer
// @Description Creates an active customer. Name and monthly fee are required; payment day defaults to 1.
// @Tags Customers
// @Accept json
// @Produce json
// @Param request body dto.CustomerRequest true "Customer registration"
// @Success 201 {object} dto.CustomerResponse "Customer registered"
// @Failure 400 {object} dto.ErrorResponse "Missing name or fee, or invalid payment day"
// @Failure 502 {object} dto.ErrorResponse "Store unreachable"
// @Router /customers [post]
func (h *CustomerHandler) CreateCustomer(w http.ResponseWriter, r *http.Request) {

	h.logger.DebugContext(r.Context(), "Received create customer request")

	var req dto.CustomerRequest
	if err := decodeJSON(r, &req); err != nil {
		h.logger.WarnContext(r.Context(), "Failed to decode request body", slog.Any("error", err))
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	created, err := h.ledger.RegisterCustomer(r.Context(), req.ToFields())
	if err != nil {
		h.logger.Log(r.Context(), logLevelFor(err), "Failed to register customer", slog.Any("error", err))
		respondError(w, err)
		return
	}

	resp := dto.NewCustomerResponse(created)
	h.logger.InfoContext(r.Context(), "Customer created successfully", slog.String("customerID", resp.CustomerID))
	respondJSON(w, http.StatusCreated, resp)
}

// GetCustomer handles GET /customers/{customerID}
// @Summary Retrieve customer details
// @Tags Customers
// @Produce json
// @Param customerID path string true "Customer ID" Format(uuid)
// @Success 200 {object} dto.CustomerResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid customer ID format"
// @Failure 404 {object} dto.ErrorResponse "Customer not found"
// @Router /customers/{customerID} [get]
func (h *CustomerHandler) GetCustomer(w http.ResponseWriter, r *http.Request) {

	customerID, err := getCustomerIDFromURL(r)
	if err != nil {
		h.logger.WarnContext(r.Context(), "Failed to get customer ID from URL", slog.Any("error", err))
		respondError(w, err)
		return
	}

	cust, err := h.ledger.GetCustomer(r.Context(), customerID)
	if err != nil {
		h.logger.Log(r.Context(), logLevelFor(err), "Failed to get customer", slog.Any("error", err))
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewCustomerResponse(cust))
}

// UpdateCustomer handles PUT /customers/{customerID}
// @Summary Edit a customer
// @Description Rewrites every mutable attribute, then returns the view reloaded for the given period, billing cycle and search. The name is normalized so each word starts with a capital letter.
// @Tags Customers
// @Accept json
// @Produce json
// @Param customerID path string true "Customer ID" Format(uuid)
// @Param month query int false "Month of the returned view, defaults to the current month"
// @Param year query int false "Year of the returned view, defaults to the current year"
// @Param paymentDay query int false "Billing cycle of the returned view" default(1)
// @Param q query string false "Search applied to the returned view"
// @Param request body dto.CustomerRequest true "Customer attributes"
// @Success 200 {object} dto.ViewResponse "Customer updated, reloaded view"
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /customers/{customerID} [put]
func (h *CustomerHandler) UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	customerID, err := getCustomerIDFromURL(r)
	if err != nil {
		respondError(w, err)
		return
	}
	q, err := h.reloadQuery(r)
	if err != nil {
		respondError(w, err)
		return
	}

	var req dto.CustomerRequest
	if err := decodeJSON(r, &req); err != nil {
		h.logger.WarnContext(r.Context(), "Failed to decode request body", slog.Any("error", err))
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	view, err := h.ledger.EditCustomer(r.Context(), q, customerID, req.ToFields())
	if err != nil {
		h.logger.Log(r.Context(), logLevelFor(err), "Failed to edit customer", slog.String("customerID", customerID), slog.Any("error", err))
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewViewResponse(view))
}

// DeleteCustomer handles DELETE /customers/{customerID}
// @Summary Delete a customer
// @Description Hard-deletes the customer and its payments, then returns the reloaded view. Without confirm=true nothing happens and deleted is false.
// @Tags Customers
// @Produce json
// @Param customerID path string true "Customer ID" Format(uuid)
// @Param confirm query bool false "Confirm the deletion"
// @Param month query int false "Month of the returned view, defaults to the current month"
// @Param year query int false "Year of the returned view, defaults to the current year"
// @Param paymentDay query int false "Billing cycle of the returned view" default(1)
// @Param q query string false "Search applied to the returned view"
// @Success 200 {object} dto.DeleteCustomerResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /customers/{customerID} [delete]
func (h *CustomerHandler) DeleteCustomer(w http.ResponseWriter, r *http.Request) {
	customerID, err := getCustomerIDFromURL(r)
	if err != nil {
		respondError(w, err)
		return
	}

	confirmed := false
	if v := r.URL.Query().Get("confirm"); v != "" {
		confirmed, err = strconv.ParseBool(v)
		if err != nil {
			respondError(w, apperrors.NewValidationError("confirm", "confirm must be true or false"))
			return
		}
	}
	q, err := h.reloadQuery(r)
	if err != nil {
		respondError(w, err)
		return
	}

	view, err := h.ledger.DeleteCustomer(r.Context(), q, customerID, confirmed)
	if err != nil {
		h.logger.Log(r.Context(), logLevelFor(err), "Failed to delete customer", slog.String("customerID", customerID), slog.Any("error", err))
		respondError(w, err)
		return
	}

	resp := dto.DeleteCustomerResponse{Deleted: view != nil}
	if view != nil {
		v := dto.NewViewResponse(view)
		resp.View = &v
	}
	respondJSON(w, http.StatusOK, resp)
}

// reloadQuery is the view a customer command reloads: ?month=&year= (current period by
// default) with the same paymentDay and q parameters as the view endpoint.
func (h *CustomerHandler) reloadQuery(r *http.Request) (reconciliation.Query, error) {
	period, err := getPeriodFromQuery(r, h.now())
	if err != nil {
		return reconciliation.Query{}, err
	}
	return getViewQuery(r, period)
}
