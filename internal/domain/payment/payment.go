package payment

import (
	"fmt"
	"isp-billing/internal/pkg/apperrors"
	"time"
)

// Period identifies one billing-cycle instance.
type Period struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

func NewPeriod(month, year int) (Period, error) {
	p := Period{Month: month, Year: year}
	if err := p.Validate(); err != nil {
		return Period{}, err
	}
	return p, nil
}

// PeriodOf returns the period containing t.
func PeriodOf(t time.Time) Period {
	return Period{Month: int(t.Month()), Year: t.Year()}
}

func (p Period) Validate() error {
	if p.Month < 1 || p.Month > 12 {
		return apperrors.NewValidationError("month", "month must be between 1 and 12")
	}
	if p.Year < 1 {
		return apperrors.NewValidationError("year", "year must be positive")
	}
	return nil
}

// Date returns the given day of the period month at midnight UTC.
func (p Period) Date(day int) time.Time {
	return time.Date(p.Year, time.Month(p.Month), day, 0, 0, 0, 0, time.UTC)
}

func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
}

type Payment struct {
	ID          string    `json:"id"`
	CustomerID  string    `json:"customerId"`
	Month       int       `json:"month"`
	Year        int       `json:"year"`
	Amount      int64     `json:"amount"`
	PaymentDate time.Time `json:"paymentDate"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// NewPayment captures the fee at the moment of payment. Later fee changes do not touch it.
func NewPayment(customerID string, period Period, amount int64, paidOn time.Time) *Payment {
	y, m, d := paidOn.Date()
	return &Payment{
		CustomerID:  customerID,
		Month:       period.Month,
		Year:        period.Year,
		Amount:      amount,
		PaymentDate: time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
	}
}

func (p *Payment) Period() Period {
	return Period{Month: p.Month, Year: p.Year}
}
