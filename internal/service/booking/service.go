package booking

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"pronto/backend/internal/domain"
	"pronto/backend/internal/store"
)

// Reason tags each rejection of a booking request.
type Reason string

const (
	ReasonInvalidSlotID       Reason = "INVALID_SLOT_ID"
	ReasonInvalidDate         Reason = "INVALID_DATE"
	ReasonInvalidTimeFormat   Reason = "INVALID_TIME_FORMAT"
	ReasonServiceNotFound     Reason = "SERVICE_NOT_FOUND"
	ReasonProviderOwnService  Reason = "PROVIDER_CANNOT_BOOK_OWN_SERVICE"
	ReasonOutsideAvailability Reason = "OUTSIDE_AVAILABILITY"
	ReasonSlotConflict        Reason = "SLOT_CONFLICT"
)

// Class groups rejection reasons into the coarse outcome families callers
// map to transport semantics. Anything that is not a Rejection is a storage
// failure.
type Class int

const (
	ClassMalformedInput Class = iota + 1
	ClassNotFound
	ClassBusinessRule
)

func (r Reason) Class() Class {
	switch r {
	case ReasonInvalidSlotID, ReasonInvalidDate, ReasonInvalidTimeFormat:
		return ClassMalformedInput
	case ReasonServiceNotFound:
		return ClassNotFound
	default:
		return ClassBusinessRule
	}
}

// Rejection is a terminal non-success outcome of the booking pipeline. The
// first failing step produces it and aborts the rest; no partial state is
// retained.
type Rejection struct {
	Reason Reason
	msg    string
}

func (r *Rejection) Error() string {
	return r.msg
}

func reject(reason Reason, msg string) error {
	return &Rejection{Reason: reason, msg: msg}
}

type Service struct {
	appointments store.AppointmentRepository
	services     store.ServiceRepository
}

func NewService(appointments store.AppointmentRepository, services store.ServiceRepository) *Service {
	return &Service{appointments: appointments, services: services}
}

type BookInput struct {
	UserID uuid.UUID
	SlotID string
}

// BookSlot runs the whole booking pipeline as one atomic unit: decode the
// slot identifier, load the service, reject self-booking, validate the start
// time, check availability containment and conflicts, then insert. Checks
// and insert share one transaction serialized per service/date, and the slot
// identifier's uniqueness constraint turns any remaining race into a
// SLOT_CONFLICT rejection rather than a double booking.
func (s *Service) BookSlot(ctx context.Context, in BookInput) (domain.Appointment, error) {
	ref, err := domain.DecodeSlotID(in.SlotID)
	if err != nil {
		return domain.Appointment{}, reject(ReasonInvalidSlotID, "invalid slot id")
	}

	var out domain.Appointment
	err = s.appointments.InBookingTransaction(ctx, ref.ServiceID, ref.Date, func(ctx context.Context, tx store.BookingTx) error {
		svc, err := tx.GetService(ctx, ref.ServiceID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return reject(ReasonServiceNotFound, "service not found")
			}
			return err
		}

		if svc.ProviderID == in.UserID {
			return reject(ReasonProviderOwnService, "providers cannot book their own service")
		}

		if !domain.IsHalfHourSlot(ref.StartTime) {
			return reject(ReasonInvalidTimeFormat, "start time must be a half-hour slot")
		}

		day, err := domain.ParseDate(ref.Date)
		if err != nil {
			return reject(ReasonInvalidDate, "date must be YYYY-MM-DD")
		}

		startMinutes, err := domain.ParseClock(ref.StartTime)
		if err != nil {
			return reject(ReasonInvalidTimeFormat, "invalid start time")
		}
		endMinutes := startMinutes + svc.DurationMinutes

		entries, err := tx.ListAvailability(ctx, svc.ID)
		if err != nil {
			return err
		}
		if !domain.CoversInterval(entries, int(day.Weekday()), startMinutes, endMinutes) {
			return reject(ReasonOutsideAvailability, "slot is outside the service's availability")
		}

		booked, err := tx.ListBooked(ctx, svc.ID, ref.Date)
		if err != nil {
			return err
		}
		if c := domain.FindConflict(booked, startMinutes, endMinutes); c != nil {
			return reject(ReasonSlotConflict, "slot overlaps an existing appointment")
		}

		created, err := tx.CreateAppointment(ctx, domain.Appointment{
			ServiceID:    svc.ID,
			UserID:       in.UserID,
			Date:         ref.Date,
			StartMinutes: startMinutes,
			EndMinutes:   endMinutes,
			Status:       domain.AppointmentStatusBooked,
			SlotID:       in.SlotID,
		})
		if err != nil {
			if errors.Is(err, store.ErrConflict) {
				return reject(ReasonSlotConflict, "slot was just booked")
			}
			return err
		}

		out = created
		return nil
	})
	if err != nil {
		return domain.Appointment{}, err
	}
	return out, nil
}

// MyAppointments returns a user's appointments with their services loaded.
func (s *Service) MyAppointments(ctx context.Context, userID uuid.UUID) ([]domain.Appointment, error) {
	return s.appointments.ListByUser(ctx, userID)
}

// ServiceDay is one service's booked appointments on a single date.
type ServiceDay struct {
	ServiceID    uuid.UUID
	ServiceName  string
	Appointments []domain.Appointment
}

// DaySchedule returns a provider's services each with its BOOKED
// appointments for the date, ordered by start time.
func (s *Service) DaySchedule(ctx context.Context, providerID uuid.UUID, date string) ([]ServiceDay, error) {
	if _, err := domain.ParseDate(date); err != nil {
		return nil, reject(ReasonInvalidDate, "date must be YYYY-MM-DD")
	}

	services, err := s.services.ListByProvider(ctx, providerID)
	if err != nil {
		return nil, err
	}

	out := make([]ServiceDay, 0, len(services))
	for _, svc := range services {
		appts, err := s.appointments.FindByDateAndService(ctx, svc.ID, date, domain.AppointmentStatusBooked)
		if err != nil {
			return nil, err
		}
		out = append(out, ServiceDay{
			ServiceID:    svc.ID,
			ServiceName:  svc.Name,
			Appointments: appts,
		})
	}
	return out, nil
}
