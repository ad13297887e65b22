package dto

import (
	"isp-billing/internal/domain/customer"
	"time"
)

// CustomerRequest is the body of both registration and edit. MonthlyFee is a pointer so a
// missing fee is reported as a validation error rather than read as zero.
type CustomerRequest struct {
	Name       string `json:"name"`
	Address    string `json:"address"`
	Phone      string `json:"phone"`
	MonthlyFee *int64 `json:"monthlyFee"`
	PaymentDay int    `json:"paymentDay"`
}

func (r *CustomerRequest) ToFields() customer.Fields {
	return customer.Fields{
		Name:       r.Name,
		Address:    r.Address,
		Phone:      r.Phone,
		MonthlyFee: r.MonthlyFee,
		PaymentDay: customer.PaymentDay(r.PaymentDay),
	}
}

type CustomerResponse struct {
	CustomerID string    `json:"customerId"`
	Name       string    `json:"name"`
	Address    string    `json:"address"`
	Phone      string    `json:"phone"`
	MonthlyFee int64     `json:"monthlyFee"`
	PaymentDay int       `json:"paymentDay"`
	IsActive   bool      `json:"isActive"`
	CreatedAt  time.Time `json:"createdAt"`
}

func NewCustomerResponse(cust *customer.Customer) CustomerResponse {
	if cust == nil {

		return CustomerResponse{}
	}

	return CustomerResponse{
		CustomerID: cust.ID,
		Name:       cust.Name,
		Address:    cust.Address,
		Phone:      cust.Phone,
		MonthlyFee: cust.MonthlyFee,
		PaymentDay: int(cust.PaymentDay),
		IsActive:   cust.IsActive,
		CreatedAt:  cust.CreatedAt,
	}
}

type DeleteCustomerResponse struct {
	Deleted bool          `json:"deleted"`
	View    *ViewResponse `json:"view,omitempty"`
}

type ErrorDetail struct {
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}
