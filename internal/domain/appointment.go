package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type AppointmentStatus string

const (
	AppointmentStatusBooked    AppointmentStatus = "BOOKED"
	AppointmentStatusCancelled AppointmentStatus = "CANCELLED"
)

// Appointment is a claimed slot. SlotID is unique across all appointments:
// two bookings can never hold the same identifier, which is the storage-level
// backstop against double-booking.
type Appointment struct {
	bun.BaseModel `bun:"table:appointments"`

	ID           uuid.UUID         `bun:"id,pk,type:uuid"`
	ServiceID    uuid.UUID         `bun:"service_id,notnull,type:uuid"`
	UserID       uuid.UUID         `bun:"user_id,notnull,type:uuid"`
	Date         string            `bun:"date,notnull"`
	StartMinutes int               `bun:"start_minutes,notnull"`
	EndMinutes   int               `bun:"end_minutes,notnull"`
	Status       AppointmentStatus `bun:"status,notnull"`
	SlotID       string            `bun:"slot_id,notnull,unique"`
	CreatedAt    time.Time         `bun:"created_at,notnull"`
	UpdatedAt    time.Time         `bun:"updated_at,notnull"`

	Service *Service `bun:"rel:belongs-to,join:service_id=id"`
}

func (a *Appointment) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	now := time.Now().UTC()
	switch query.(type) {
	case *bun.InsertQuery:
		if a.ID == uuid.Nil {
			id, err := uuid.NewV7()
			if err != nil {
				return err
			}
			a.ID = id
		}
		if a.CreatedAt.IsZero() {
			a.CreatedAt = now
		}
		if a.UpdatedAt.IsZero() {
			a.UpdatedAt = now
		}
	case *bun.UpdateQuery:
		a.UpdatedAt = now
	}
	return nil
}
