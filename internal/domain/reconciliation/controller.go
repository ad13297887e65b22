package reconciliation

import (
	"context"
	"errors"
	"fmt"
	"isp-billing/internal/domain/customer"
	"isp-billing/internal/domain/payment"
	"isp-billing/internal/event"
	"isp-billing/internal/infrastructure/monitoring"
	"isp-billing/internal/pkg/apperrors"
	"log/slog"
	"os"
	"time"
)

// ProcessingGuard marks a customer row as being processed. Acquire fails with
// apperrors.ErrProcessing while another holder has the key.
type ProcessingGuard interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// Controller applies mutations to the ledger and reloads the view afterwards.
type Controller struct {
	engine    *Engine
	customers customer.CustomerRepository
	payments  payment.Repository
	guard     ProcessingGuard
	notifier  event.Notifier
	now       func() time.Time
	logger    *slog.Logger
}

type Option func(*Controller)

// WithClock replaces time.Now for both payment dates and view timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		c.now = now
		c.engine.now = now
	}
}

func NewController(
	engine *Engine,
	customers customer.CustomerRepository,
	payments payment.Repository,
	guard ProcessingGuard,
	notifier event.Notifier,
	logger *slog.Logger,
	opts ...Option,
) *Controller {
	if engine == nil {
		panic("reconciliation engine cannot be nil")
	}
	if customers == nil || payments == nil {
		panic("controller repositories cannot be nil")
	}
	if guard == nil {
		panic("processing guard cannot be nil")
	}
	if notifier == nil {
		notifier = event.Nop{}
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		logger.Warn("Warning: No logger provided to NewController, using default stderr handler")
	}

	c := &Controller{
		engine:    engine,
		customers: customers,
		payments:  payments,
		guard:     guard,
		notifier:  notifier,
		now:       time.Now,
		logger:    logger.With(slog.String("component", "paymentToggleController")),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// View is the read accessor used by the presentation layer.
func (c *Controller) View(ctx context.Context, q Query) (*View, error) {
	return c.engine.Reconcile(ctx, q)
}

// TogglePayment flips the paid state of one customer for the query's period and returns
// the reloaded view. The state is read from a fresh load, never from a previously rendered view.
func (c *Controller) TogglePayment(ctx context.Context, q Query, customerID string) (*View, error) {
	if err := q.normalize(); err != nil {
		return nil, err
	}
	logger := c.logger.With(slog.String("customerID", customerID), slog.String("period", q.Period.String()))

	release, err := c.guard.Acquire(ctx, processingKey(customerID, q.Period))
	if err != nil {
		if errors.Is(err, apperrors.ErrProcessing) {
			monitoring.RecordToggleConflict()
			logger.WarnContext(ctx, "Toggle rejected, customer row already processing")
		}
		return nil, err
	}
	defer release()

	rows, err := c.engine.Load(ctx, q.Period)
	if err != nil {
		return nil, err
	}
	row, ok := findRow(rows, customerID)
	if !ok {
		logger.WarnContext(ctx, "Toggle target is not an active customer")
		return nil, fmt.Errorf("%w: active customer with ID %s", apperrors.ErrNotFound, customerID)
	}

	if row.HasPaid {
		if err := c.unmark(ctx, logger, row, q.Period); err != nil {
			return nil, err
		}
	} else {
		if err := c.mark(ctx, logger, row, q.Period); err != nil {
			return nil, err
		}
	}

	return c.engine.Reconcile(ctx, q)
}

func (c *Controller) mark(ctx context.Context, logger *slog.Logger, row Row, period payment.Period) error {
	p := payment.NewPayment(row.Customer.ID, period, row.Customer.MonthlyFee, c.now())
	err := c.payments.Insert(ctx, p)
	switch {
	case errors.Is(err, apperrors.ErrAlreadyExists):
		logger.WarnContext(ctx, "Payment already recorded by a concurrent toggle, reloading")
		return nil
	case err != nil:
		logger.ErrorContext(ctx, "Failed to record payment", slog.Any("error", err))
		return err
	}

	monitoring.RecordToggle(monitoring.ToggleMarked)
	logger.InfoContext(ctx, "Payment marked", slog.String("paymentID", p.ID), slog.Int64("amount", p.Amount))
	c.notifier.Notify(ctx, event.Change{
		Kind:       event.KindPaymentMarked,
		CustomerID: row.Customer.ID,
		PaymentID:  p.ID,
		Period:     &period,
		Timestamp:  c.now(),
	})
	return nil
}

// unmark removes the observed payment and any duplicates recorded for the same period.
func (c *Controller) unmark(ctx context.Context, logger *slog.Logger, row Row, period payment.Period) error {
	ids := append([]string{row.PaymentID}, row.DuplicatePaymentIDs...)
	for _, id := range ids {
		if err := c.payments.Delete(ctx, id); err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			logger.ErrorContext(ctx, "Failed to delete payment", slog.String("paymentID", id), slog.Any("error", err))
			return err
		}
	}

	monitoring.RecordToggle(monitoring.ToggleUnmarked)
	logger.InfoContext(ctx, "Payment unmarked", slog.String("paymentID", row.PaymentID), slog.Int("removed", len(ids)))
	c.notifier.Notify(ctx, event.Change{
		Kind:       event.KindPaymentUnmarked,
		CustomerID: row.Customer.ID,
		PaymentID:  row.PaymentID,
		Period:     &period,
		Timestamp:  c.now(),
	})
	return nil
}

// DeleteCustomer hard-deletes a customer and returns the view reloaded for q. Without
// confirmation nothing is touched and the returned view is nil.
func (c *Controller) DeleteCustomer(ctx context.Context, q Query, customerID string, confirmed bool) (*View, error) {
	logger := c.logger.With(slog.String("customerID", customerID))
	if !confirmed {
		logger.InfoContext(ctx, "Customer deletion not confirmed, nothing done")
		return nil, nil
	}
	if err := q.normalize(); err != nil {
		return nil, err
	}

	if err := c.customers.Delete(ctx, customerID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.WarnContext(ctx, "Customer to delete not found")
		} else {
			logger.ErrorContext(ctx, "Failed to delete customer", slog.Any("error", err))
		}
		return nil, err
	}

	monitoring.RecordCustomerMutation("delete")
	logger.InfoContext(ctx, "Customer deleted")
	c.notifier.Notify(ctx, event.Change{Kind: event.KindCustomerDeleted, CustomerID: customerID, Timestamp: c.now()})
	return c.engine.Reconcile(ctx, q)
}

// EditCustomer rewrites every mutable attribute of an existing customer and returns the view
// reloaded for q.
func (c *Controller) EditCustomer(ctx context.Context, q Query, customerID string, fields customer.Fields) (*View, error) {
	logger := c.logger.With(slog.String("customerID", customerID))

	if err := q.normalize(); err != nil {
		return nil, err
	}
	if err := fields.Validate(); err != nil {
		logger.WarnContext(ctx, "Customer edit rejected", slog.Any("error", err))
		return nil, err
	}

	existing, err := c.customers.FindByID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	existing.Apply(fields)

	if err := c.customers.Update(ctx, existing); err != nil {
		logger.ErrorContext(ctx, "Failed to update customer", slog.Any("error", err))
		return nil, err
	}

	monitoring.RecordCustomerMutation("update")
	logger.InfoContext(ctx, "Customer updated", slog.String("name", existing.Name))
	c.notifier.Notify(ctx, event.Change{Kind: event.KindCustomerUpdated, CustomerID: customerID, Timestamp: c.now()})
	return c.engine.Reconcile(ctx, q)
}

func (c *Controller) RegisterCustomer(ctx context.Context, fields customer.Fields) (*customer.Customer, error) {
	if err := fields.Validate(); err != nil {
		c.logger.WarnContext(ctx, "Customer registration rejected", slog.Any("error", err))
		return nil, err
	}

	cust := customer.NewCustomer(fields)
	if err := c.customers.Insert(ctx, cust); err != nil {
		c.logger.ErrorContext(ctx, "Failed to register customer", slog.Any("error", err))
		return nil, err
	}

	monitoring.RecordCustomerMutation("create")
	c.logger.InfoContext(ctx, "Customer registered", slog.String("customerID", cust.ID))
	c.notifier.Notify(ctx, event.Change{Kind: event.KindCustomerCreated, CustomerID: cust.ID, Timestamp: c.now()})
	return cust, nil
}

func (c *Controller) GetCustomer(ctx context.Context, customerID string) (*customer.Customer, error) {
	return c.customers.FindByID(ctx, customerID)
}

func processingKey(customerID string, period payment.Period) string {
	return fmt.Sprintf("%s:%s", customerID, period)
}

func findRow(rows []Row, customerID string) (Row, bool) {
	for _, r := range rows {
		if r.Customer.ID == customerID {
			return r, true
		}
	}
	return Row{}, false
}
