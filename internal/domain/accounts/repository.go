package accounts

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, a Account) error
	Update(ctx context.Context, a Account) error
	GetByID(ctx context.Context, id string) (Account, error)
	GetByEmail(ctx context.Context, email string) (Account, error)
	List(ctx context.Context) ([]Account, error)
	ListByRole(ctx context.Context, role Role) ([]Account, error)
	Count(ctx context.Context) (int, error)

	// ListCreatedSince alimenta el gráfico semanal (solo timestamps).
	ListCreatedSince(ctx context.Context, since time.Time) ([]time.Time, error)
}
