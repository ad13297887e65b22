package customer

import (
	"isp-billing/internal/pkg/apperrors"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// PaymentDay is the billing-cycle bucket a customer belongs to.
type PaymentDay int

const (
	PaymentDayFirst  PaymentDay = 1
	PaymentDayTenth  PaymentDay = 10
	PaymentDayTwenty PaymentDay = 20
)

// PaymentDays lists the buckets in display order.
var PaymentDays = []PaymentDay{PaymentDayFirst, PaymentDayTenth, PaymentDayTwenty}

func (d PaymentDay) Valid() bool {
	switch d {
	case PaymentDayFirst, PaymentDayTenth, PaymentDayTwenty:
		return true
	}
	return false
}

type Customer struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Address    string     `json:"address"`
	Phone      string     `json:"phone"`
	MonthlyFee int64      `json:"monthlyFee"`
	PaymentDay PaymentDay `json:"paymentDay"`
	IsActive   bool       `json:"isActive"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// Fields carries the mutable attributes of a customer. MonthlyFee is a pointer so that
// a missing fee can be told apart from a zero fee.
type Fields struct {
	Name       string
	Address    string
	Phone      string
	MonthlyFee *int64
	PaymentDay PaymentDay
}

// Validate trims the free-text fields in place and checks the required ones.
// A zero PaymentDay defaults to the first-of-month bucket.
func (f *Fields) Validate() error {
	f.Name = strings.TrimSpace(f.Name)
	f.Address = strings.TrimSpace(f.Address)
	f.Phone = strings.TrimSpace(f.Phone)

	if f.Name == "" {
		return apperrors.NewValidationError("name", "name is required")
	}
	if f.MonthlyFee == nil {
		return apperrors.NewValidationError("monthlyFee", "monthly fee is required")
	}
	if *f.MonthlyFee < 0 {
		return apperrors.NewValidationError("monthlyFee", "monthly fee cannot be negative")
	}
	if f.PaymentDay == 0 {
		f.PaymentDay = PaymentDayFirst
	}
	if !f.PaymentDay.Valid() {
		return apperrors.NewValidationError("paymentDay", "payment day must be one of 1, 10 or 20")
	}
	return nil
}

func NewCustomer(f Fields) *Customer {
	var fee int64
	if f.MonthlyFee != nil {
		fee = *f.MonthlyFee
	}
	return &Customer{
		Name:       f.Name,
		Address:    f.Address,
		Phone:      f.Phone,
		MonthlyFee: fee,
		PaymentDay: f.PaymentDay,
		IsActive:   true,
	}
}

// Apply overwrites every mutable attribute. The name is normalized on the way in.
func (c *Customer) Apply(f Fields) {
	c.Name = NormalizeName(f.Name)
	c.Address = f.Address
	c.Phone = f.Phone
	if f.MonthlyFee != nil {
		c.MonthlyFee = *f.MonthlyFee
	}
	c.PaymentDay = f.PaymentDay
}

// NormalizeName upper-cases the first character of every space-delimited token and
// lower-cases the rest. Runs of spaces are kept as typed.
func NormalizeName(name string) string {
	tokens := strings.Split(strings.ToLower(name), " ")
	for i, tok := range tokens {
		if tok == "" {
			continue
		}
		r, size := utf8.DecodeRuneInString(tok)
		tokens[i] = string(unicode.ToUpper(r)) + tok[size:]
	}
	return strings.Join(tokens, " ")
}

// Matches reports whether query is a case-insensitive substring of the name, address or phone.
// An empty query matches everything.
func (c *Customer) Matches(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(c.Name), q) ||
		strings.Contains(strings.ToLower(c.Address), q) ||
		strings.Contains(strings.ToLower(c.Phone), q)
}
