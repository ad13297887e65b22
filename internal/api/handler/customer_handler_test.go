package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"isp-billing/internal/api/handler"
	"isp-billing/internal/api/handler/dto"
	"isp-billing/internal/domain/customer"
	"isp-billing/internal/domain/payment"
	"isp-billing/internal/domain/reconciliation"
	"isp-billing/internal/pkg/apperrors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func int64Ptr(v int64) *int64 { return &v }

func TestCreateCustomer(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	t.Run("success", func(t *testing.T) {
		mockLedger := new(MockLedger)
		h := handler.NewCustomerHandler(mockLedger, logger)

		reqBody := dto.CustomerRequest{Name: "Budi", Address: "Jl. Mawar 1", Phone: "0812", MonthlyFee: int64Ptr(150000), PaymentDay: 10}
		reqBodyBytes, _ := json.Marshal(reqBody)
		req := httptest.NewRequest(http.MethodPost, "/customers", bytes.NewReader(reqBodyBytes))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()

		created := &customer.Customer{ID: testCustomerID, Name: "Budi", MonthlyFee: 150000, PaymentDay: 10, IsActive: true}
		mockLedger.On("RegisterCustomer", mock.Anything, reqBody.ToFields()).Return(created, nil)

		h.CreateCustomer(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code)
		var resp dto.CustomerResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, testCustomerID, resp.CustomerID)
		assert.Equal(t, 10, resp.PaymentDay)
		mockLedger.AssertExpectations(t)
	})

	t.Run("unknown field", func(t *testing.T) {
		mockLedger := new(MockLedger)
		h := handler.NewCustomerHandler(mockLedger, logger)

		req := httptest.NewRequest(http.MethodPost, "/customers", bytes.NewReader([]byte(`{"name":"x","loan":1}`)))
		rec := httptest.NewRecorder()

		h.CreateCustomer(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		mockLedger.AssertNotCalled(t, "RegisterCustomer")
	})

	t.Run("validation error names the field", func(t *testing.T) {
		mockLedger := new(MockLedger)
		h := handler.NewCustomerHandler(mockLedger, logger)
		mockLedger.On("RegisterCustomer", mock.Anything, mock.Anything).
			Return(nil, apperrors.NewValidationError("monthlyFee", "monthly fee is required"))

		req := httptest.NewRequest(http.MethodPost, "/customers", bytes.NewReader([]byte(`{"name":"Budi"}`)))
		rec := httptest.NewRecorder()

		h.CreateCustomer(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		var resp dto.ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "monthlyFee", resp.Error.Field)
		assert.Equal(t, "monthly fee is required", resp.Error.Message)
	})
}

func TestGetCustomer(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	mockLedger := new(MockLedger)
	h := handler.NewCustomerHandler(mockLedger, logger)

	t.Run("success", func(t *testing.T) {
		mockLedger.On("GetCustomer", mock.Anything, testCustomerID).Return(&customer.Customer{ID: testCustomerID, Name: "Ani"}, nil).Once()

		req := withURLParams(httptest.NewRequest(http.MethodGet, "/customers/"+testCustomerID, nil), map[string]string{"customerID": testCustomerID})
		rec := httptest.NewRecorder()

		h.GetCustomer(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp dto.CustomerResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "Ani", resp.Name)
	})

	t.Run("invalid customer ID", func(t *testing.T) {
		req := withURLParams(httptest.NewRequest(http.MethodGet, "/customers/abc", nil), map[string]string{"customerID": "abc"})
		rec := httptest.NewRecorder()

		h.GetCustomer(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("customer not found", func(t *testing.T) {
		missing := "7d1c2f4a-0000-4000-8000-000000000000"
		mockLedger.On("GetCustomer", mock.Anything, missing).Return(nil, apperrors.ErrNotFound).Once()

		req := withURLParams(httptest.NewRequest(http.MethodGet, "/customers/"+missing, nil), map[string]string{"customerID": missing})
		rec := httptest.NewRecorder()

		h.GetCustomer(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	mockLedger.AssertExpectations(t)
}

func TestUpdateCustomer(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	params := map[string]string{"customerID": testCustomerID}
	reqBody := dto.CustomerRequest{Name: "  sITI   nurHALIZA ", MonthlyFee: int64Ptr(100000), PaymentDay: 20}
	body, _ := json.Marshal(reqBody)

	t.Run("returns the reloaded view", func(t *testing.T) {
		mockLedger := new(MockLedger)
		h := handler.NewCustomerHandler(mockLedger, logger)

		q := reconciliation.Query{Period: payment.Period{Month: 3, Year: 2025}, PaymentDay: customer.PaymentDayTwenty, Search: "siti"}
		reloaded := &reconciliation.View{
			Period:     q.Period,
			PaymentDay: customer.PaymentDayTwenty,
			Search:     "siti",
			Rows:       []reconciliation.Row{{Customer: &customer.Customer{ID: testCustomerID, Name: "Siti   Nurhaliza", PaymentDay: 20}}},
			Stats:      reconciliation.Stats{PaymentDay: customer.PaymentDayTwenty, TotalCount: 1},
		}
		mockLedger.On("EditCustomer", mock.Anything, q, testCustomerID, reqBody.ToFields()).Return(reloaded, nil).Once()

		target := "/customers/" + testCustomerID + "?month=3&year=2025&paymentDay=20&q=%20siti%20"
		req := withURLParams(httptest.NewRequest(http.MethodPut, target, bytes.NewReader(body)), params)
		rec := httptest.NewRecorder()

		h.UpdateCustomer(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var resp dto.ViewResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.Rows, 1)
		assert.Equal(t, "Siti   Nurhaliza", resp.Rows[0].Customer.Name)
		assert.Equal(t, 20, resp.PaymentDay)
		mockLedger.AssertExpectations(t)
	})

	t.Run("invalid reload period", func(t *testing.T) {
		mockLedger := new(MockLedger)
		h := handler.NewCustomerHandler(mockLedger, logger)

		req := withURLParams(httptest.NewRequest(http.MethodPut, "/customers/"+testCustomerID+"?month=13&year=2025", bytes.NewReader(body)), params)
		rec := httptest.NewRecorder()

		h.UpdateCustomer(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		mockLedger.AssertNotCalled(t, "EditCustomer")
	})
}

func TestDeleteCustomer(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	params := map[string]string{"customerID": testCustomerID}
	q := reconciliation.Query{Period: payment.Period{Month: 3, Year: 2025}}
	reloaded := &reconciliation.View{Period: q.Period, PaymentDay: customer.PaymentDayFirst, Rows: []reconciliation.Row{}}

	tests := []struct {
		name        string
		query       string
		confirmed   bool
		view        *reconciliation.View
		err         error
		wantStatus  int
		wantDeleted bool
	}{
		{name: "without confirmation nothing is deleted", query: "?month=3&year=2025", confirmed: false, wantStatus: http.StatusOK},
		{name: "explicitly declined", query: "?confirm=false&month=3&year=2025", confirmed: false, wantStatus: http.StatusOK},
		{name: "confirmed", query: "?confirm=true&month=3&year=2025", confirmed: true, view: reloaded, wantStatus: http.StatusOK, wantDeleted: true},
		{name: "confirmed but missing", query: "?confirm=true&month=3&year=2025", confirmed: true, err: fmt.Errorf("customer: %w", apperrors.ErrNotFound), wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockLedger := new(MockLedger)
			h := handler.NewCustomerHandler(mockLedger, logger)
			mockLedger.On("DeleteCustomer", mock.Anything, q, testCustomerID, tt.confirmed).Return(tt.view, tt.err)

			req := withURLParams(httptest.NewRequest(http.MethodDelete, "/customers/"+testCustomerID+tt.query, nil), params)
			rec := httptest.NewRecorder()

			h.DeleteCustomer(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.err == nil {
				var resp dto.DeleteCustomerResponse
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
				assert.Equal(t, tt.wantDeleted, resp.Deleted)
				assert.Equal(t, tt.wantDeleted, resp.View != nil)
			}
			mockLedger.AssertExpectations(t)
		})
	}

	t.Run("malformed confirm flag", func(t *testing.T) {
		mockLedger := new(MockLedger)
		h := handler.NewCustomerHandler(mockLedger, logger)

		req := withURLParams(httptest.NewRequest(http.MethodDelete, "/customers/"+testCustomerID+"?confirm=maybe", nil), params)
		rec := httptest.NewRecorder()

		h.DeleteCustomer(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		mockLedger.AssertNotCalled(t, "DeleteCustomer")
	})
}
