package store

import (
	"context"

	"github.com/google/uuid"

	"pronto/backend/internal/domain"
)

// BookingTx is the view of storage available inside a booking transaction.
// All reads observe a snapshot serialized against other bookings of the same
// service/date calendar, so check-then-insert is atomic.
type BookingTx interface {
	// GetService accepts the wire-format service id. ErrNotFound for unknown
	// or non-UUID ids.
	GetService(ctx context.Context, serviceID string) (domain.Service, error)
	ListAvailability(ctx context.Context, serviceID uuid.UUID) ([]domain.Availability, error)
	// ListBooked returns BOOKED appointments for the service on the date.
	ListBooked(ctx context.Context, serviceID uuid.UUID, date string) ([]domain.Appointment, error)
	// CreateAppointment inserts a new appointment. ErrConflict when the slot
	// identifier is already claimed.
	CreateAppointment(ctx context.Context, appt domain.Appointment) (domain.Appointment, error)
}
