package payment

import "context"

type Repository interface {
	// ListByPeriod returns the payments of one period, oldest first.
	ListByPeriod(ctx context.Context, period Period) ([]*Payment, error)

	// ListHistory returns the payments of one period ordered by payment date, newest first.
	ListHistory(ctx context.Context, period Period) ([]*Payment, error)

	// Insert fails with apperrors.ErrAlreadyExists when the customer already has a payment for the period.
	Insert(ctx context.Context, payment *Payment) error

	// Delete is tolerant of ids that no longer exist.
	Delete(ctx context.Context, paymentID string) error
}
