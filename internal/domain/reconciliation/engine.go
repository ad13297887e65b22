package reconciliation

import (
	"context"
	"fmt"
	"isp-billing/internal/domain/customer"
	"isp-billing/internal/domain/payment"
	"isp-billing/internal/infrastructure/monitoring"
	"isp-billing/internal/pkg/apperrors"
	"log/slog"
	"os"
	"time"

	"golang.org/x/sync/errgroup"
)

var errInvalidPaymentDay = apperrors.NewValidationError("paymentDay", "payment day must be one of 1, 10 or 20")

// Engine joins active customers to their payment for a period. It holds no state between calls.
type Engine struct {
	customers customer.CustomerRepository
	payments  payment.Repository
	now       func() time.Time
	logger    *slog.Logger
}

func NewEngine(customers customer.CustomerRepository, payments payment.Repository, logger *slog.Logger) *Engine {
	if customers == nil || payments == nil {
		panic("reconciliation engine repositories cannot be nil")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		logger.Warn("Warning: No logger provided to NewEngine, using default stderr handler")
	}
	return &Engine{
		customers: customers,
		payments:  payments,
		now:       time.Now,
		logger:    logger.With(slog.String("component", "reconciliationEngine")),
	}
}

// Reconcile loads the period, filters by the search text, then buckets and summarizes.
func (e *Engine) Reconcile(ctx context.Context, q Query) (*View, error) {
	if err := q.normalize(); err != nil {
		return nil, err
	}

	rows, err := e.Load(ctx, q.Period)
	if err != nil {
		return nil, err
	}

	view := buildView(q, rows, e.now())
	e.logger.DebugContext(ctx, "Reconciliation view built",
		slog.String("period", q.Period.String()),
		slog.Int("paymentDay", int(q.PaymentDay)),
		slog.Int("paid", view.Stats.PaidCount),
		slog.Int("total", view.Stats.TotalCount),
	)
	return view, nil
}

// Load returns one row per active customer, in name order, with no filtering or bucketing.
// A failure of either fetch fails the whole load.
func (e *Engine) Load(ctx context.Context, period payment.Period) ([]Row, error) {
	logger := e.logger.With(slog.String("period", period.String()))

	var (
		customers []*customer.Customer
		payments  []*payment.Payment
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		customers, err = e.customers.ListActive(gctx)
		if err != nil {
			return fmt.Errorf("failed to list active customers: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		payments, err = e.payments.ListByPeriod(gctx, period)
		if err != nil {
			return fmt.Errorf("failed to list payments for period %s: %w", period, err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		logger.ErrorContext(ctx, "Reconciliation load aborted", slog.Any("error", err))
		return nil, err
	}

	return e.join(ctx, logger, customers, payments), nil
}

func (e *Engine) join(ctx context.Context, logger *slog.Logger, customers []*customer.Customer, payments []*payment.Payment) []Row {
	byCustomer := make(map[string][]*payment.Payment, len(payments))
	for _, p := range payments {
		byCustomer[p.CustomerID] = append(byCustomer[p.CustomerID], p)
	}

	rows := make([]Row, 0, len(customers))
	for _, c := range customers {
		row := Row{Customer: c}
		matched := byCustomer[c.ID]
		if len(matched) > 0 {
			first := matched[0]
			paidOn := first.PaymentDate
			row.HasPaid = true
			row.PaymentID = first.ID
			row.PaymentDate = &paidOn
		}
		if len(matched) > 1 {
			for _, dup := range matched[1:] {
				row.DuplicatePaymentIDs = append(row.DuplicatePaymentIDs, dup.ID)
			}
			monitoring.RecordDuplicatePayments(len(matched) - 1)
			logger.WarnContext(ctx, "Data integrity warning: multiple payments for one customer and period",
				slog.String("customerID", c.ID),
				slog.String("keptPaymentID", row.PaymentID),
				slog.Any("duplicatePaymentIDs", row.DuplicatePaymentIDs),
			)
		}
		rows = append(rows, row)
	}
	return rows
}
