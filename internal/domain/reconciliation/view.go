package reconciliation

import (
	"isp-billing/internal/domain/customer"
	"isp-billing/internal/domain/payment"
	"time"

	"github.com/shopspring/decimal"
)

// Row is one active customer annotated with its payment status for a period.
type Row struct {
	Customer    *customer.Customer
	HasPaid     bool
	PaymentID   string
	PaymentDate *time.Time

	// DuplicatePaymentIDs holds any extra payments found for the same customer and period.
	// It is empty unless the at-most-one invariant was violated in the store.
	DuplicatePaymentIDs []string
}

// Stats aggregates one billing-cycle bucket.
type Stats struct {
	PaymentDay customer.PaymentDay
	PaidCount  int
	TotalCount int
	Percentage int
}

// Query selects what the view shows.
type Query struct {
	Period     payment.Period
	PaymentDay customer.PaymentDay
	Search     string
}

func (q *Query) normalize() error {
	if err := q.Period.Validate(); err != nil {
		return err
	}
	if q.PaymentDay == 0 {
		q.PaymentDay = customer.PaymentDayFirst
	}
	if !q.PaymentDay.Valid() {
		return errInvalidPaymentDay
	}
	return nil
}

// View is what the presentation layer reads: the rows of the selected bucket, its
// aggregate counts, and the counts of every bucket under the same filter.
type View struct {
	Period     payment.Period
	PaymentDay customer.PaymentDay
	Search     string
	Rows       []Row
	Stats      Stats
	Buckets    []Stats
	LoadedAt   time.Time
}

// Filter keeps the rows whose customer matches the free-text query.
func Filter(rows []Row, query string) []Row {
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		if r.Customer.Matches(query) {
			out = append(out, r)
		}
	}
	return out
}

// Bucket keeps the rows belonging to one billing cycle, preserving order.
func Bucket(rows []Row, day customer.PaymentDay) []Row {
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		if r.Customer.PaymentDay == day {
			out = append(out, r)
		}
	}
	return out
}

// Summarize computes the aggregate counts of rows already narrowed to one bucket.
func Summarize(day customer.PaymentDay, rows []Row) Stats {
	s := Stats{PaymentDay: day, TotalCount: len(rows)}
	for _, r := range rows {
		if r.HasPaid {
			s.PaidCount++
		}
	}
	s.Percentage = Percentage(s.PaidCount, s.TotalCount)
	return s
}

// Percentage returns round(100*paid/total), or 0 when total is 0.
func Percentage(paid, total int) int {
	if total <= 0 {
		return 0
	}
	pct := decimal.NewFromInt(int64(paid) * 100).DivRound(decimal.NewFromInt(int64(total)), 0)
	return int(pct.IntPart())
}

func buildView(q Query, rows []Row, loadedAt time.Time) *View {
	filtered := Filter(rows, q.Search)

	v := &View{
		Period:     q.Period,
		PaymentDay: q.PaymentDay,
		Search:     q.Search,
		Buckets:    make([]Stats, 0, len(customer.PaymentDays)),
		LoadedAt:   loadedAt,
	}
	for _, day := range customer.PaymentDays {
		bucket := Bucket(filtered, day)
		stats := Summarize(day, bucket)
		v.Buckets = append(v.Buckets, stats)
		if day == q.PaymentDay {
			v.Rows = bucket
			v.Stats = stats
		}
	}
	return v
}
