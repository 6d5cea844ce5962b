package store

import (
	"context"

	"github.com/google/uuid"

	"pronto/backend/internal/domain"
)

type ServiceRepository interface {
	Create(ctx context.Context, svc domain.Service) (domain.Service, error)
	// Get accepts the wire-format service id (the first slot identifier
	// component). ErrNotFound for unknown or non-UUID ids.
	Get(ctx context.Context, serviceID string) (domain.Service, error)
	// List returns services with their Provider loaded; typeFilter narrows
	// by service type when non-empty.
	List(ctx context.Context, typeFilter domain.ServiceType) ([]domain.Service, error)
	ListByProvider(ctx context.Context, providerID uuid.UUID) ([]domain.Service, error)
	ListAvailability(ctx context.Context, serviceID uuid.UUID) ([]domain.Availability, error)
	// AddAvailability inserts a weekly window after verifying, inside one
	// transaction, that it overlaps no existing window on the same weekday.
	// ErrConflict on overlap.
	AddAvailability(ctx context.Context, entry domain.Availability) (domain.Availability, error)
}
