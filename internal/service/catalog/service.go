package catalog

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/google/uuid"

	"pronto/backend/internal/domain"
	"pronto/backend/internal/store"
)

// ErrNotOwner marks attempts to manage a service owned by another provider.
var ErrNotOwner = errors.New("service does not belong to provider")

// ErrOverlappingAvailability marks a weekly window that collides with an
// existing one on the same weekday.
var ErrOverlappingAvailability = errors.New("availability overlaps an existing window")

type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string {
	return e.msg
}

func validationError(msg string) error {
	return &ValidationError{msg: msg}
}

type Service struct {
	services     store.ServiceRepository
	appointments store.AppointmentRepository
}

func NewService(services store.ServiceRepository, appointments store.AppointmentRepository) *Service {
	return &Service{services: services, appointments: appointments}
}

type CreateServiceInput struct {
	ProviderID      uuid.UUID
	Name            string
	Type            domain.ServiceType
	DurationMinutes int
}

func (s *Service) CreateService(ctx context.Context, in CreateServiceInput) (domain.Service, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return domain.Service{}, validationError("name is required")
	}
	if !in.Type.Valid() {
		return domain.Service{}, validationError("unknown service type")
	}
	if in.DurationMinutes < domain.MinServiceDurationMinutes ||
		in.DurationMinutes > domain.MaxServiceDurationMinutes ||
		in.DurationMinutes%domain.SlotStepMinutes != 0 {
		return domain.Service{}, validationError("duration must be 30-120 minutes in steps of 30")
	}

	return s.services.Create(ctx, domain.Service{
		ProviderID:      in.ProviderID,
		Name:            name,
		Type:            in.Type,
		DurationMinutes: in.DurationMinutes,
	})
}

type SetAvailabilityInput struct {
	ProviderID uuid.UUID
	ServiceID  string
	DayOfWeek  int
	StartTime  string
	EndTime    string
}

// SetAvailability adds a weekly window to a service the provider owns. The
// overlap check against existing windows runs inside the repository's
// transaction so concurrent writers cannot slip in a colliding window.
func (s *Service) SetAvailability(ctx context.Context, in SetAvailabilityInput) (domain.Availability, error) {
	if in.DayOfWeek < 0 || in.DayOfWeek > 6 {
		return domain.Availability{}, validationError("dayOfWeek must be 0 (Sunday) to 6 (Saturday)")
	}
	start, err := domain.ParseClock(in.StartTime)
	if err != nil {
		return domain.Availability{}, validationError("invalid startTime")
	}
	end, err := domain.ParseClock(in.EndTime)
	if err != nil {
		return domain.Availability{}, validationError("invalid endTime")
	}
	if start >= end {
		return domain.Availability{}, validationError("startTime must be before endTime")
	}

	svc, err := s.services.Get(ctx, in.ServiceID)
	if err != nil {
		return domain.Availability{}, err
	}
	if svc.ProviderID != in.ProviderID {
		return domain.Availability{}, ErrNotOwner
	}

	entry, err := s.services.AddAvailability(ctx, domain.Availability{
		ServiceID:    svc.ID,
		DayOfWeek:    in.DayOfWeek,
		StartMinutes: start,
		EndMinutes:   end,
	})
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			return domain.Availability{}, ErrOverlappingAvailability
		}
		return domain.Availability{}, err
	}
	return entry, nil
}

// ListServices returns the catalog, optionally narrowed by type. An empty
// filter means all types.
func (s *Service) ListServices(ctx context.Context, typeFilter domain.ServiceType) ([]domain.Service, error) {
	if typeFilter != "" && !typeFilter.Valid() {
		return nil, validationError("unknown service type")
	}
	return s.services.List(ctx, typeFilter)
}

// OpenSlot is one bookable start on a given date.
type OpenSlot struct {
	SlotID    string
	StartTime string
	EndTime   string
}

// ListOpenSlots enumerates the half-hour starts on the date that fit inside
// the service's weekly windows and do not overlap a BOOKED appointment. The
// result is what a client feeds back in as a slot identifier.
func (s *Service) ListOpenSlots(ctx context.Context, serviceID, date string) ([]OpenSlot, error) {
	day, err := domain.ParseDate(date)
	if err != nil {
		return nil, validationError("date must be YYYY-MM-DD")
	}

	svc, err := s.services.Get(ctx, serviceID)
	if err != nil {
		return nil, err
	}

	entries, err := s.services.ListAvailability(ctx, svc.ID)
	if err != nil {
		return nil, err
	}
	booked, err := s.appointments.FindByDateAndService(ctx, svc.ID, date, domain.AppointmentStatusBooked)
	if err != nil {
		return nil, err
	}

	weekday := int(day.Weekday())
	starts := make(map[int]struct{})
	for _, entry := range entries {
		if entry.DayOfWeek != weekday {
			continue
		}
		// Windows may start off the half-hour grid; only grid-aligned starts
		// are valid slot identifiers, so round the first candidate up.
		first := entry.StartMinutes
		if rem := first % domain.SlotStepMinutes; rem != 0 {
			first += domain.SlotStepMinutes - rem
		}
		for start := first; start+svc.DurationMinutes <= entry.EndMinutes; start += domain.SlotStepMinutes {
			if domain.FindConflict(booked, start, start+svc.DurationMinutes) != nil {
				continue
			}
			starts[start] = struct{}{}
		}
	}

	ordered := make([]int, 0, len(starts))
	for start := range starts {
		ordered = append(ordered, start)
	}
	sort.Ints(ordered)

	slots := make([]OpenSlot, 0, len(ordered))
	for _, start := range ordered {
		clock := domain.FormatClock(start)
		slots = append(slots, OpenSlot{
			SlotID:    domain.EncodeSlotID(serviceID, date, clock),
			StartTime: clock,
			EndTime:   domain.FormatClock(start + svc.DurationMinutes),
		})
	}
	return slots, nil
}
