package event

import (
	"context"
	"isp-billing/internal/domain/payment"
	"time"
)

type ChangeKind string

const (
	KindPaymentMarked   ChangeKind = "payment.marked"
	KindPaymentUnmarked ChangeKind = "payment.unmarked"
	KindCustomerCreated ChangeKind = "customer.created"
	KindCustomerUpdated ChangeKind = "customer.updated"
	KindCustomerDeleted ChangeKind = "customer.deleted"
)

// Change tells every view depending on the affected data to reload. A nil Period means the
// change is not tied to one period (customer edits, registrations and deletions).
type Change struct {
	Kind       ChangeKind      `json:"kind"`
	CustomerID string          `json:"customerId"`
	PaymentID  string          `json:"paymentId,omitempty"`
	Period     *payment.Period `json:"period,omitempty"`
	Timestamp  time.Time       `json:"timestamp"`
}

func (c Change) Affects(p payment.Period) bool {
	return c.Period == nil || *c.Period == p
}

// Notifier fans a change out to interested views. Notify never fails the caller's mutation:
// delivery problems are the notifier's to log.
type Notifier interface {
	Notify(ctx context.Context, change Change)
}

// Multi delivers to every notifier in order.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, change Change) {
	for _, n := range m {
		if n != nil {
			n.Notify(ctx, change)
		}
	}
}

type Nop struct{}

func (Nop) Notify(context.Context, Change) {}

var (
	_ Notifier = Multi(nil)
	_ Notifier = Nop{}
)
