package customer

import (
	"context"

	"cabbooking/internal/domain"
)

type CustomerRepository interface {
	Create(ctx context.Context, c *domain.Customer) error
	GetByPhone(ctx context.Context, phone string) (*domain.Customer, error)
}
