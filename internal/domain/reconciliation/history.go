package reconciliation

import (
	"context"
	"isp-billing/internal/domain/payment"
	"log/slog"
)

const unknownCustomerName = "Unknown"

type HistoryEntry struct {
	Payment      *payment.Payment
	CustomerName string
}

// History is the ledger of one period. Unlike the view it includes payments of
// inactive or deleted customers.
type History struct {
	Period      payment.Period
	Entries     []HistoryEntry
	TotalAmount int64
	Count       int
}

func (c *Controller) History(ctx context.Context, period payment.Period) (*History, error) {
	if err := period.Validate(); err != nil {
		return nil, err
	}

	payments, err := c.payments.ListHistory(ctx, period)
	if err != nil {
		c.logger.ErrorContext(ctx, "Failed to list payment history", slog.String("period", period.String()), slog.Any("error", err))
		return nil, err
	}

	ids := make([]string, 0, len(payments))
	seen := make(map[string]struct{}, len(payments))
	for _, p := range payments {
		if _, ok := seen[p.CustomerID]; ok {
			continue
		}
		seen[p.CustomerID] = struct{}{}
		ids = append(ids, p.CustomerID)
	}

	names := map[string]string{}
	if len(ids) > 0 {
		names, err = c.customers.FindNames(ctx, ids)
		if err != nil {
			c.logger.ErrorContext(ctx, "Failed to resolve customer names for history", slog.Any("error", err))
			return nil, err
		}
	}

	h := &History{Period: period, Entries: make([]HistoryEntry, 0, len(payments))}
	for _, p := range payments {
		name, ok := names[p.CustomerID]
		if !ok {
			name = unknownCustomerName
		}
		h.Entries = append(h.Entries, HistoryEntry{Payment: p, CustomerName: name})
		h.TotalAmount += p.Amount
	}
	h.Count = len(h.Entries)
	return h, nil
}
