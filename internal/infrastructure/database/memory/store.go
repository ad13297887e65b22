package memory

import (
	"context"
	"fmt"
	"isp-billing/internal/domain/customer"
	"isp-billing/internal/domain/payment"
	"isp-billing/internal/pkg/apperrors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store is an in-process stand-in for the postgres schema. It enforces the same
// uniqueness on (customer_id, month, year) and cascades customer deletes to payments.
type Store struct {
	mu        sync.RWMutex
	customers map[string]*customer.Customer
	payments  map[string]*payment.Payment
	seq       int64
	now       func() time.Time
}

func NewStore() *Store {
	return &Store{
		customers: make(map[string]*customer.Customer),
		payments:  make(map[string]*payment.Payment),
		now:       time.Now,
	}
}

func (s *Store) Customers() *CustomerRepository {
	return &CustomerRepository{store: s}
}

func (s *Store) Payments() *PaymentRepository {
	return &PaymentRepository{store: s}
}

// stamp returns a strictly increasing creation time so ordering is stable within one test.
func (s *Store) stamp() time.Time {
	s.seq++
	return s.now().Add(time.Duration(s.seq) * time.Nanosecond)
}

type CustomerRepository struct {
	store *Store
}

var _ customer.CustomerRepository = (*CustomerRepository)(nil)

func (r *CustomerRepository) ListActive(ctx context.Context) ([]*customer.Customer, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.WrapDatabaseError(err, "store read aborted")
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]*customer.Customer, 0, len(r.store.customers))
	for _, c := range r.store.customers {
		if c.IsActive {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *CustomerRepository) FindByID(_ context.Context, customerID string) (*customer.Customer, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	c, ok := r.store.customers[customerID]
	if !ok {
		return nil, fmt.Errorf("%w: customer with ID %s", apperrors.ErrNotFound, customerID)
	}
	cp := *c
	return &cp, nil
}

func (r *CustomerRepository) FindNames(_ context.Context, customerIDs []string) (map[string]string, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	names := make(map[string]string, len(customerIDs))
	for _, id := range customerIDs {
		if c, ok := r.store.customers[id]; ok {
			names[id] = c.Name
		}
	}
	return names, nil
}

func (r *CustomerRepository) Insert(_ context.Context, c *customer.Customer) error {
	if c == nil {
		return fmt.Errorf("%w: customer cannot be nil", apperrors.ErrInvalidArgument)
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if _, exists := r.store.customers[c.ID]; exists {
		return fmt.Errorf("%w: customer with ID %s", apperrors.ErrAlreadyExists, c.ID)
	}
	c.CreatedAt = r.store.stamp()
	cp := *c
	r.store.customers[c.ID] = &cp
	return nil
}

func (r *CustomerRepository) Update(_ context.Context, c *customer.Customer) error {
	if c == nil {
		return fmt.Errorf("%w: customer cannot be nil", apperrors.ErrInvalidArgument)
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	existing, ok := r.store.customers[c.ID]
	if !ok {
		return fmt.Errorf("%w: customer with ID %s", apperrors.ErrNotFound, c.ID)
	}
	cp := *c
	cp.CreatedAt = existing.CreatedAt
	r.store.customers[c.ID] = &cp
	return nil
}

func (r *CustomerRepository) Delete(_ context.Context, customerID string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.customers[customerID]; !ok {
		return fmt.Errorf("%w: customer with ID %s", apperrors.ErrNotFound, customerID)
	}
	delete(r.store.customers, customerID)
	for id, p := range r.store.payments {
		if p.CustomerID == customerID {
			delete(r.store.payments, id)
		}
	}
	return nil
}

type PaymentRepository struct {
	store *Store
}

var _ payment.Repository = (*PaymentRepository)(nil)

func (r *PaymentRepository) ListByPeriod(ctx context.Context, period payment.Period) ([]*payment.Payment, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.WrapDatabaseError(err, "store read aborted")
	}
	out := r.period(period)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *PaymentRepository) ListHistory(_ context.Context, period payment.Period) ([]*payment.Payment, error) {
	out := r.period(period)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].PaymentDate.Equal(out[j].PaymentDate) {
			return out[i].PaymentDate.After(out[j].PaymentDate)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *PaymentRepository) period(period payment.Period) []*payment.Payment {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]*payment.Payment, 0)
	for _, p := range r.store.payments {
		if p.Month == period.Month && p.Year == period.Year {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out
}

func (r *PaymentRepository) Insert(_ context.Context, p *payment.Payment) error {
	if p == nil {
		return fmt.Errorf("%w: payment cannot be nil", apperrors.ErrInvalidArgument)
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.customers[p.CustomerID]; !ok {
		return fmt.Errorf("%w: payment references unknown customer %s", apperrors.ErrInvalidArgument, p.CustomerID)
	}
	for _, existing := range r.store.payments {
		if existing.CustomerID == p.CustomerID && existing.Month == p.Month && existing.Year == p.Year {
			return fmt.Errorf("%w: payment for customer %s in %04d-%02d",
				apperrors.ErrAlreadyExists, p.CustomerID, p.Year, p.Month)
		}
	}

	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.CreatedAt = r.store.stamp()
	cp := *p
	r.store.payments[p.ID] = &cp
	return nil
}

func (r *PaymentRepository) Delete(_ context.Context, paymentID string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	delete(r.store.payments, paymentID)
	return nil
}

// Seed inserts a payment bypassing the uniqueness check. It exists to reproduce stores
// that predate the constraint.
func (r *PaymentRepository) Seed(p *payment.Payment) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = r.store.stamp()
	}
	cp := *p
	r.store.payments[p.ID] = &cp
}

// Count returns how many payments exist for a customer and period.
func (r *PaymentRepository) Count(customerID string, period payment.Period) int {
	n := 0
	for _, p := range r.period(period) {
		if p.CustomerID == customerID {
			n++
		}
	}
	return n
}
