package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"isp-billing/internal/domain/payment"
	"isp-billing/internal/pkg/apperrors"

	"github.com/jackc/pgx/v5"
)

const paymentColumns = `id::text, customer_id::text, month, year, amount, payment_date, COALESCE(notes, ''), created_at`

type PaymentRepository struct {
	db     DBPool
	logger *slog.Logger
}

var _ payment.Repository = (*PaymentRepository)(nil)

func NewPaymentRepository(db DBPool, logger *slog.Logger) *PaymentRepository {
	if db == nil {
		panic("DBPool cannot be nil for PaymentRepository")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		logger.Warn("Warning: No logger provided to NewPaymentRepository, using default stderr handler")
	}
	return &PaymentRepository{
		db:     db,
		logger: logger.With("component", "PaymentRepository"),
	}
}

func (r *PaymentRepository) ListByPeriod(ctx context.Context, period payment.Period) ([]*payment.Payment, error) {
	query := `
        SELECT ` + paymentColumns + `
        FROM payments
        WHERE month = $1 AND year = $2
        ORDER BY created_at ASC, id ASC`

	return r.list(ctx, "ListByPeriod", query, period)
}

func (r *PaymentRepository) ListHistory(ctx context.Context, period payment.Period) ([]*payment.Payment, error) {
	query := `
        SELECT ` + paymentColumns + `
        FROM payments
        WHERE month = $1 AND year = $2
        ORDER BY payment_date DESC, created_at DESC`

	return r.list(ctx, "ListHistory", query, period)
}

func (r *PaymentRepository) list(ctx context.Context, operation, query string, period payment.Period) ([]*payment.Payment, error) {
	logCtx := r.logger.With(slog.String("operation", operation), slog.String("period", period.String()))

	rows, err := r.db.Query(ctx, query, period.Month, period.Year)
	if err != nil {
		logCtx.ErrorContext(ctx, "Failed to query payments", slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to query payments: %w", apperrors.ErrDatabase, err)
	}
	defer rows.Close()

	payments := make([]*payment.Payment, 0)
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			logCtx.ErrorContext(ctx, "Failed to scan payment row", slog.Any("error", err))
			return nil, fmt.Errorf("%w: failed to scan payment row: %w", apperrors.ErrDatabase, err)
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		logCtx.ErrorContext(ctx, "Error iterating payment rows", slog.Any("error", err))
		return nil, fmt.Errorf("%w: error iterating payment rows: %w", apperrors.ErrDatabase, err)
	}

	logCtx.DebugContext(ctx, "Payments listed", slog.Int("count", len(payments)))
	return payments, nil
}

func scanPayment(row pgx.Row) (*payment.Payment, error) {
	var p payment.Payment
	err := row.Scan(
		&p.ID,
		&p.CustomerID,
		&p.Month,
		&p.Year,
		&p.Amount,
		&p.PaymentDate,
		&p.Notes,
		&p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PaymentRepository) Insert(ctx context.Context, p *payment.Payment) error {
	if p == nil {
		return fmt.Errorf("%w: payment cannot be nil", apperrors.ErrInvalidArgument)
	}
	logCtx := r.logger.With(slog.String("customerID", p.CustomerID), slog.String("period", p.Period().String()))

	query := `
        INSERT INTO payments (customer_id, month, year, amount, payment_date, notes, created_at)
        VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), NOW())
        RETURNING id::text, created_at`

	err := r.db.QueryRow(ctx, query,
		p.CustomerID,
		p.Month,
		p.Year,
		p.Amount,
		p.PaymentDate,
		p.Notes,
	).Scan(&p.ID, &p.CreatedAt)

	if err != nil {
		translatedErr := translateDBError(err, logCtx)
		if errors.Is(translatedErr, apperrors.ErrAlreadyExists) {
			logCtx.WarnContext(ctx, "Payment for this customer and period already exists")
			return translatedErr
		}
		if errors.Is(translatedErr, apperrors.ErrNotFound) || errors.Is(translatedErr, apperrors.ErrInvalidArgument) {
			return translatedErr
		}
		logCtx.ErrorContext(ctx, "Failed to insert payment", slog.Any("error", err))
		return fmt.Errorf("%w: failed to insert payment: %w", apperrors.ErrDatabase, err)
	}

	logCtx.InfoContext(ctx, "Payment inserted successfully", slog.String("paymentID", p.ID))
	return nil
}

func (r *PaymentRepository) Delete(ctx context.Context, paymentID string) error {
	logCtx := r.logger.With(slog.String("paymentID", paymentID))

	query := `DELETE FROM payments WHERE id = $1`

	cmdTag, err := r.db.Exec(ctx, query, paymentID)
	if err != nil {
		logCtx.ErrorContext(ctx, "Failed to execute delete payment", slog.Any("error", err))
		return fmt.Errorf("%w: failed to delete payment: %w", apperrors.ErrDatabase, err)
	}

	if cmdTag.RowsAffected() == 0 {
		logCtx.DebugContext(ctx, "Delete affected zero rows, payment already gone")
		return nil
	}

	logCtx.InfoContext(ctx, "Payment deleted successfully")
	return nil
}
