package customer

import (
	"context"
)

type CustomerRepository interface {
	// ListActive returns customers with is_active = true ordered by name ascending.
	ListActive(ctx context.Context) ([]*Customer, error)

	FindByID(ctx context.Context, customerID string) (*Customer, error)

	// FindNames resolves display names for the given ids; missing ids are absent from the map.
	FindNames(ctx context.Context, customerIDs []string) (map[string]string, error)

	// Insert persists a new customer and fills in the store-assigned ID and CreatedAt.
	Insert(ctx context.Context, customer *Customer) error

	Update(ctx context.Context, customer *Customer) error

	// Delete removes the customer row. Payments referencing it go with it.
	Delete(ctx context.Context, customerID string) error
}
