package store

import (
	"context"

	"github.com/google/uuid"

	"pronto/backend/internal/domain"
)

type AppointmentRepository interface {
	// InBookingTransaction runs fn inside a transaction serialized against
	// other bookings on the same service/date calendar. A fn error rolls the
	// whole transaction back; nothing is partially written.
	InBookingTransaction(ctx context.Context, serviceID, date string, fn func(ctx context.Context, tx BookingTx) error) error
	// ListByUser returns a user's appointments with Service loaded, ordered
	// by date then start time.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Appointment, error)
	// FindByDateAndService returns appointments with the given status for one
	// service and date, ordered by start time.
	FindByDateAndService(ctx context.Context, serviceID uuid.UUID, date string, status domain.AppointmentStatus) ([]domain.Appointment, error)
}
