package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"isp-billing/internal/domain/customer"
	"isp-billing/internal/pkg/apperrors"

	"github.com/jackc/pgx/v5"
)

const customerColumns = `id::text, name, address, phone, monthly_fee, payment_day, is_active, created_at`

type CustomerRepository struct {
	db     DBPool
	logger *slog.Logger
}

var _ customer.CustomerRepository = (*CustomerRepository)(nil)

func NewCustomerRepository(db DBPool, logger *slog.Logger) *CustomerRepository {
	if db == nil {
		panic("DBPool cannot be nil for CustomerRepository")
	}
	if logger == nil {

		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		logger.Warn("Warning: No logger provided to NewCustomerRepository, using default stderr handler")
	}
	return &CustomerRepository{
		db:     db,
		logger: logger.With("component", "CustomerRepository"),
	}
}

func scanCustomer(row pgx.Row) (*customer.Customer, error) {
	var cust customer.Customer
	err := row.Scan(
		&cust.ID,
		&cust.Name,
		&cust.Address,
		&cust.Phone,
		&cust.MonthlyFee,
		&cust.PaymentDay,
		&cust.IsActive,
		&cust.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &cust, nil
}

func (r *CustomerRepository) ListActive(ctx context.Context) ([]*customer.Customer, error) {

	r.logger.DebugContext(ctx, "Listing active customers")

	query := `
        SELECT ` + customerColumns + `
        FROM customers
        WHERE is_active = TRUE
        ORDER BY name ASC, id ASC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query active customers", slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to query active customers: %w", apperrors.ErrDatabase, err)
	}
	defer rows.Close()

	customers := make([]*customer.Customer, 0)
	for rows.Next() {
		cust, err := scanCustomer(rows)
		if err != nil {
			r.logger.ErrorContext(ctx, "Failed to scan customer row", slog.Any("error", err))
			return nil, fmt.Errorf("%w: failed to scan customer row: %w", apperrors.ErrDatabase, err)
		}
		customers = append(customers, cust)
	}

	if err = rows.Err(); err != nil {
		r.logger.ErrorContext(ctx, "Error iterating customer rows", slog.Any("error", err))
		return nil, fmt.Errorf("%w: error iterating customer rows: %w", apperrors.ErrDatabase, err)
	}

	r.logger.DebugContext(ctx, "Finished listing active customers", slog.Int("count", len(customers)))
	return customers, nil
}

func (r *CustomerRepository) FindByID(ctx context.Context, customerID string) (*customer.Customer, error) {
	logCtx := r.logger.With(slog.String("customerID", customerID))

	query := `
        SELECT ` + customerColumns + `
        FROM customers
        WHERE id = $1`

	cust, err := scanCustomer(r.db.QueryRow(ctx, query, customerID))
	if err != nil {
		translated := translateDBError(err, logCtx)
		if errors.Is(translated, apperrors.ErrNotFound) {
			logCtx.WarnContext(ctx, "Customer not found")
			return nil, fmt.Errorf("%w: customer with ID %s", apperrors.ErrNotFound, customerID)
		}
		if errors.Is(translated, apperrors.ErrInvalidArgument) {
			return nil, translated
		}
		logCtx.ErrorContext(ctx, "Failed to query/scan customer by ID", slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to get customer by ID: %w", apperrors.ErrDatabase, err)
	}

	return cust, nil
}

func (r *CustomerRepository) FindNames(ctx context.Context, customerIDs []string) (map[string]string, error) {
	names := make(map[string]string, len(customerIDs))
	if len(customerIDs) == 0 {
		return names, nil
	}

	query := `SELECT id::text, name FROM customers WHERE id = ANY($1::uuid[])`

	rows, err := r.db.Query(ctx, query, customerIDs)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query customer names", slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to query customer names: %w", apperrors.ErrDatabase, err)
	}
	defer rows.Close()

	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			r.logger.ErrorContext(ctx, "Failed to scan customer name row", slog.Any("error", err))
			return nil, fmt.Errorf("%w: failed to scan customer name row: %w", apperrors.ErrDatabase, err)
		}
		names[id] = name
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: error iterating customer name rows: %w", apperrors.ErrDatabase, err)
	}
	return names, nil
}

func (r *CustomerRepository) Insert(ctx context.Context, cust *customer.Customer) error {
	if cust == nil {
		return fmt.Errorf("%w: customer cannot be nil", apperrors.ErrInvalidArgument)
	}

	r.logger.InfoContext(ctx, "Attempting to insert new customer", slog.String("name", cust.Name))

	query := `
        INSERT INTO customers (name, address, phone, monthly_fee, payment_day, is_active, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
        RETURNING id::text, created_at`

	err := r.db.QueryRow(ctx, query,
		cust.Name,
		cust.Address,
		cust.Phone,
		cust.MonthlyFee,
		cust.PaymentDay,
		cust.IsActive,
	).Scan(
		&cust.ID,
		&cust.CreatedAt,
	)

	if err != nil {
		translatedErr := translateDBError(err, r.logger)
		if errors.Is(translatedErr, apperrors.ErrAlreadyExists) {
			r.logger.WarnContext(ctx, "Failed to insert customer due to unique constraint violation")
			return translatedErr
		}
		r.logger.ErrorContext(ctx, "Failed to insert customer", slog.Any("error", err))
		return fmt.Errorf("%w: failed to insert customer: %w", apperrors.ErrDatabase, err)
	}

	r.logger.InfoContext(ctx, "Customer inserted successfully", slog.String("customerID", cust.ID))
	return nil
}

func (r *CustomerRepository) Update(ctx context.Context, cust *customer.Customer) error {
	if cust == nil {
		return fmt.Errorf("%w: customer cannot be nil", apperrors.ErrInvalidArgument)
	}
	logCtx := r.logger.With(slog.String("customerID", cust.ID))

	query := `
        UPDATE customers
        SET name = $1,
            address = $2,
            phone = $3,
            monthly_fee = $4,
            payment_day = $5,
            is_active = $6,
            updated_at = NOW()
        WHERE id = $7`

	cmdTag, err := r.db.Exec(ctx, query,
		cust.Name,
		cust.Address,
		cust.Phone,
		cust.MonthlyFee,
		cust.PaymentDay,
		cust.IsActive,
		cust.ID,
	)
	if err != nil {
		logCtx.ErrorContext(ctx, "Failed to update customer", slog.Any("error", err))
		return fmt.Errorf("%w: failed to update customer: %w", apperrors.ErrDatabase, err)
	}

	if cmdTag.RowsAffected() == 0 {
		logCtx.WarnContext(ctx, "Update affected zero rows, customer likely not found")
		return fmt.Errorf("%w: customer with ID %s", apperrors.ErrNotFound, cust.ID)
	}

	logCtx.InfoContext(ctx, "Customer updated successfully")
	return nil
}

func (r *CustomerRepository) Delete(ctx context.Context, customerID string) error {
	logCtx := r.logger.With(slog.String("customerID", customerID))

	query := `DELETE FROM customers WHERE id = $1`

	cmdTag, err := r.db.Exec(ctx, query, customerID)
	if err != nil {
		logCtx.ErrorContext(ctx, "Failed to execute delete customer", slog.Any("error", err))
		return fmt.Errorf("%w: failed to delete customer: %w", apperrors.ErrDatabase, err)
	}

	if cmdTag.RowsAffected() == 0 {
		logCtx.WarnContext(ctx, "Delete affected zero rows, customer likely not found")
		return fmt.Errorf("%w: customer with ID %s", apperrors.ErrNotFound, customerID)
	}

	logCtx.InfoContext(ctx, "Customer deleted successfully")
	return nil
}
