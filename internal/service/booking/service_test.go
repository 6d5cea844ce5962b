package booking

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"pronto/backend/internal/domain"
	"pronto/backend/internal/store"
)

// fakeStore is an in-memory AppointmentRepository and ServiceRepository whose
// booking transaction hands back the store itself, mimicking the uniqueness
// guarantee of the slot_id constraint.
type fakeStore struct {
	services []domain.Service
	avail    []domain.Availability
	appts    []domain.Appointment

	txCount   int
	createErr error
}

func (f *fakeStore) InBookingTransaction(ctx context.Context, serviceID, date string, fn func(ctx context.Context, tx store.BookingTx) error) error {
	f.txCount++
	return fn(ctx, f)
}

func (f *fakeStore) GetService(ctx context.Context, serviceID string) (domain.Service, error) {
	for _, s := range f.services {
		if s.ID.String() == serviceID {
			return s, nil
		}
	}
	return domain.Service{}, store.ErrNotFound
}

func (f *fakeStore) ListAvailability(ctx context.Context, serviceID uuid.UUID) ([]domain.Availability, error) {
	var out []domain.Availability
	for _, a := range f.avail {
		if a.ServiceID == serviceID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeStore) ListBooked(ctx context.Context, serviceID uuid.UUID, date string) ([]domain.Appointment, error) {
	var out []domain.Appointment
	for _, a := range f.appts {
		if a.ServiceID == serviceID && a.Date == date && a.Status == domain.AppointmentStatusBooked {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeStore) CreateAppointment(ctx context.Context, appt domain.Appointment) (domain.Appointment, error) {
	if f.createErr != nil {
		return domain.Appointment{}, f.createErr
	}
	for _, existing := range f.appts {
		if existing.SlotID == appt.SlotID {
			return domain.Appointment{}, store.ErrConflict
		}
	}
	appt.ID = uuid.New()
	f.appts = append(f.appts, appt)
	return appt, nil
}

func (f *fakeStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Appointment, error) {
	var out []domain.Appointment
	for _, a := range f.appts {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeStore) FindByDateAndService(ctx context.Context, serviceID uuid.UUID, date string, status domain.AppointmentStatus) ([]domain.Appointment, error) {
	var out []domain.Appointment
	for _, a := range f.appts {
		if a.ServiceID == serviceID && a.Date == date && a.Status == status {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeStore) Create(ctx context.Context, svc domain.Service) (domain.Service, error) {
	panic("not used")
}

func (f *fakeStore) Get(ctx context.Context, serviceID string) (domain.Service, error) {
	return f.GetService(ctx, serviceID)
}

func (f *fakeStore) List(ctx context.Context, typeFilter domain.ServiceType) ([]domain.Service, error) {
	panic("not used")
}

func (f *fakeStore) ListByProvider(ctx context.Context, providerID uuid.UUID) ([]domain.Service, error) {
	var out []domain.Service
	for _, s := range f.services {
		if s.ProviderID == providerID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeStore) AddAvailability(ctx context.Context, entry domain.Availability) (domain.Availability, error) {
	panic("not used")
}

var (
	providerID = uuid.MustParse("00000000-0000-0000-0000-000000000001")
	customerID = uuid.MustParse("00000000-0000-0000-0000-000000000002")
	serviceID  = uuid.MustParse("00000000-0000-0000-0000-000000000011")
)

// newFixture returns a store holding one 30-minute service that is open
// Monday 09:00-12:00 and Tuesday 09:00-10:00.
func newFixture() *fakeStore {
	return &fakeStore{
		services: []domain.Service{
			{
				ID:              serviceID,
				ProviderID:      providerID,
				Name:            "checkup",
				Type:            domain.ServiceTypeMedical,
				DurationMinutes: 30,
			},
		},
		avail: []domain.Availability{
			{ServiceID: serviceID, DayOfWeek: 1, StartMinutes: 540, EndMinutes: 720},
			{ServiceID: serviceID, DayOfWeek: 2, StartMinutes: 540, EndMinutes: 600},
		},
	}
}

func rejectionReason(t *testing.T, err error) Reason {
	t.Helper()
	var rej *Rejection
	if !errors.As(err, &rej) {
		t.Fatalf("error type = %T (%v), want *Rejection", err, err)
	}
	return rej.Reason
}

func TestBookSlot_ScenarioBookThenRepeatConflicts(t *testing.T) {
	st := newFixture()
	svc := NewService(st, st)

	// 2024-01-02 is a Tuesday.
	slotID := domain.EncodeSlotID(serviceID.String(), "2024-01-02", "09:00")

	appt, err := svc.BookSlot(context.Background(), BookInput{UserID: customerID, SlotID: slotID})
	if err != nil {
		t.Fatalf("BookSlot error: %v", err)
	}
	if appt.Status != domain.AppointmentStatusBooked {
		t.Fatalf("status = %s, want %s", appt.Status, domain.AppointmentStatusBooked)
	}
	if appt.SlotID != slotID {
		t.Fatalf("slot_id = %q, want %q", appt.SlotID, slotID)
	}
	if appt.StartMinutes != 540 || appt.EndMinutes != 570 {
		t.Fatalf("interval = [%d,%d), want [540,570)", appt.StartMinutes, appt.EndMinutes)
	}
	if appt.ID == uuid.Nil {
		t.Fatalf("expected generated id")
	}

	_, err = svc.BookSlot(context.Background(), BookInput{UserID: customerID, SlotID: slotID})
	if got := rejectionReason(t, err); got != ReasonSlotConflict {
		t.Fatalf("repeat reason = %s, want %s", got, ReasonSlotConflict)
	}
	if len(st.appts) != 1 {
		t.Fatalf("stored appointments = %d, want 1", len(st.appts))
	}
}

func TestBookSlot_MalformedIdentifierRejectedBeforeStorage(t *testing.T) {
	st := newFixture()
	svc := NewService(st, st)

	for _, slotID := range []string{"", "svc1", "svc1_2024-01-01", "a_b_c_d", "_2024-01-01_09:00"} {
		_, err := svc.BookSlot(context.Background(), BookInput{UserID: customerID, SlotID: slotID})
		if got := rejectionReason(t, err); got != ReasonInvalidSlotID {
			t.Fatalf("BookSlot(%q) reason = %s, want %s", slotID, got, ReasonInvalidSlotID)
		}
	}
	if st.txCount != 0 {
		t.Fatalf("transactions started = %d, want 0", st.txCount)
	}
}

func TestBookSlot_ServiceNotFound(t *testing.T) {
	st := newFixture()
	svc := NewService(st, st)

	slotID := domain.EncodeSlotID(uuid.NewString(), "2024-01-02", "09:00")
	_, err := svc.BookSlot(context.Background(), BookInput{UserID: customerID, SlotID: slotID})
	if got := rejectionReason(t, err); got != ReasonServiceNotFound {
		t.Fatalf("reason = %s, want %s", got, ReasonServiceNotFound)
	}
}

func TestBookSlot_ProviderCannotBookOwnService(t *testing.T) {
	st := newFixture()
	svc := NewService(st, st)

	// Self-booking rejection takes precedence over any availability or
	// conflict state, even for an otherwise valid slot.
	slotID := domain.EncodeSlotID(serviceID.String(), "2024-01-02", "09:00")
	_, err := svc.BookSlot(context.Background(), BookInput{UserID: providerID, SlotID: slotID})
	if got := rejectionReason(t, err); got != ReasonProviderOwnService {
		t.Fatalf("reason = %s, want %s", got, ReasonProviderOwnService)
	}

	// Also rejected when the slot itself would be invalid.
	slotID = domain.EncodeSlotID(serviceID.String(), "2024-01-02", "09:15")
	_, err = svc.BookSlot(context.Background(), BookInput{UserID: providerID, SlotID: slotID})
	if got := rejectionReason(t, err); got != ReasonProviderOwnService {
		t.Fatalf("reason = %s, want %s", got, ReasonProviderOwnService)
	}
}

func TestBookSlot_InvalidStartTime(t *testing.T) {
	st := newFixture()
	svc := NewService(st, st)

	// 11:45 is in range for the Monday window's clock but off the half-hour
	// grid, so it is rejected as a time-format problem before availability
	// is ever consulted.
	for _, start := range []string{"09:15", "11:45", "24:00", "9:05", "0900", "ab:30"} {
		slotID := domain.EncodeSlotID(serviceID.String(), "2024-01-02", start)
		_, err := svc.BookSlot(context.Background(), BookInput{UserID: customerID, SlotID: slotID})
		if got := rejectionReason(t, err); got != ReasonInvalidTimeFormat {
			t.Fatalf("BookSlot(start=%q) reason = %s, want %s", start, got, ReasonInvalidTimeFormat)
		}
	}
}

func TestBookSlot_InvalidDate(t *testing.T) {
	st := newFixture()
	svc := NewService(st, st)

	for _, date := range []string{"2024-13-01", "2024-1-2", "notadate"} {
		slotID := domain.EncodeSlotID(serviceID.String(), date, "09:00")
		_, err := svc.BookSlot(context.Background(), BookInput{UserID: customerID, SlotID: slotID})
		if got := rejectionReason(t, err); got != ReasonInvalidDate {
			t.Fatalf("BookSlot(date=%q) reason = %s, want %s", date, got, ReasonInvalidDate)
		}
	}
}

func TestBookSlot_AvailabilityContainment(t *testing.T) {
	st := newFixture()
	svc := NewService(st, st)

	// 2024-01-01 is a Monday; window 09:00-12:00.
	ok := domain.EncodeSlotID(serviceID.String(), "2024-01-01", "09:30")
	if _, err := svc.BookSlot(context.Background(), BookInput{UserID: customerID, SlotID: ok}); err != nil {
		t.Fatalf("BookSlot inside window error: %v", err)
	}

	// 11:30+30 touches the window end exactly and is allowed.
	boundary := domain.EncodeSlotID(serviceID.String(), "2024-01-01", "11:30")
	if _, err := svc.BookSlot(context.Background(), BookInput{UserID: customerID, SlotID: boundary}); err != nil {
		t.Fatalf("BookSlot at boundary error: %v", err)
	}

	// Wrong weekday: 2024-01-03 is a Wednesday with no availability.
	wrongDay := domain.EncodeSlotID(serviceID.String(), "2024-01-03", "09:30")
	_, err := svc.BookSlot(context.Background(), BookInput{UserID: customerID, SlotID: wrongDay})
	if got := rejectionReason(t, err); got != ReasonOutsideAvailability {
		t.Fatalf("wrong weekday reason = %s, want %s", got, ReasonOutsideAvailability)
	}

	// Tuesday window ends 10:00, so 09:30+30 fits but 10:00 does not start
	// inside the window.
	past := domain.EncodeSlotID(serviceID.String(), "2024-01-02", "10:00")
	_, err = svc.BookSlot(context.Background(), BookInput{UserID: customerID, SlotID: past})
	if got := rejectionReason(t, err); got != ReasonOutsideAvailability {
		t.Fatalf("past window reason = %s, want %s", got, ReasonOutsideAvailability)
	}
}

func TestBookSlot_OverlapConflictAndAdjacentSuccess(t *testing.T) {
	st := newFixture()
	svc := NewService(st, st)

	// Existing BOOKED appointment Monday 10:00-10:30.
	st.appts = append(st.appts, domain.Appointment{
		ID:           uuid.New(),
		ServiceID:    serviceID,
		UserID:       uuid.New(),
		Date:         "2024-01-01",
		StartMinutes: 600,
		EndMinutes:   630,
		Status:       domain.AppointmentStatusBooked,
		SlotID:       domain.EncodeSlotID(serviceID.String(), "2024-01-01", "10:00"),
	})

	// Overlapping on the half-hour grid is impossible for a 30-minute
	// service, but a 60-minute service straddles existing bookings.
	st.services[0].DurationMinutes = 60

	overlapping := domain.EncodeSlotID(serviceID.String(), "2024-01-01", "09:30")
	_, err := svc.BookSlot(context.Background(), BookInput{UserID: customerID, SlotID: overlapping})
	if got := rejectionReason(t, err); got != ReasonSlotConflict {
		t.Fatalf("overlap reason = %s, want %s", got, ReasonSlotConflict)
	}

	adjacent := domain.EncodeSlotID(serviceID.String(), "2024-01-01", "10:30")
	if _, err := svc.BookSlot(context.Background(), BookInput{UserID: customerID, SlotID: adjacent}); err != nil {
		t.Fatalf("BookSlot adjacent error: %v", err)
	}
}

func TestBookSlot_CancelledAppointmentsDoNotConflict(t *testing.T) {
	st := newFixture()
	svc := NewService(st, st)

	st.appts = append(st.appts, domain.Appointment{
		ID:           uuid.New(),
		ServiceID:    serviceID,
		UserID:       uuid.New(),
		Date:         "2024-01-02",
		StartMinutes: 540,
		EndMinutes:   570,
		Status:       domain.AppointmentStatusCancelled,
		SlotID:       "cancelled-slot",
	})

	slotID := domain.EncodeSlotID(serviceID.String(), "2024-01-02", "09:00")
	if _, err := svc.BookSlot(context.Background(), BookInput{UserID: customerID, SlotID: slotID}); err != nil {
		t.Fatalf("BookSlot error: %v", err)
	}
}

func TestBookSlot_InsertRaceSurfacesAsSlotConflict(t *testing.T) {
	st := newFixture()
	svc := NewService(st, st)

	// The conflict scan sees nothing, but the insert loses the race on the
	// slot identifier's uniqueness constraint.
	st.createErr = store.ErrConflict

	slotID := domain.EncodeSlotID(serviceID.String(), "2024-01-02", "09:00")
	_, err := svc.BookSlot(context.Background(), BookInput{UserID: customerID, SlotID: slotID})
	if got := rejectionReason(t, err); got != ReasonSlotConflict {
		t.Fatalf("reason = %s, want %s", got, ReasonSlotConflict)
	}
}

func TestBookSlot_StorageFailurePropagates(t *testing.T) {
	st := newFixture()
	svc := NewService(st, st)

	boom := errors.New("connection reset")
	st.createErr = boom

	slotID := domain.EncodeSlotID(serviceID.String(), "2024-01-02", "09:00")
	_, err := svc.BookSlot(context.Background(), BookInput{UserID: customerID, SlotID: slotID})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
	var rej *Rejection
	if errors.As(err, &rej) {
		t.Fatalf("storage failure must not be a rejection")
	}
}

func TestReasonClass(t *testing.T) {
	tests := []struct {
		reason Reason
		want   Class
	}{
		{reason: ReasonInvalidSlotID, want: ClassMalformedInput},
		{reason: ReasonInvalidDate, want: ClassMalformedInput},
		{reason: ReasonInvalidTimeFormat, want: ClassMalformedInput},
		{reason: ReasonServiceNotFound, want: ClassNotFound},
		{reason: ReasonProviderOwnService, want: ClassBusinessRule},
		{reason: ReasonOutsideAvailability, want: ClassBusinessRule},
		{reason: ReasonSlotConflict, want: ClassBusinessRule},
	}
	for _, tc := range tests {
		if got := tc.reason.Class(); got != tc.want {
			t.Fatalf("%s.Class() = %d, want %d", tc.reason, got, tc.want)
		}
	}
}

func TestDaySchedule(t *testing.T) {
	st := newFixture()
	svc := NewService(st, st)

	st.appts = append(st.appts,
		domain.Appointment{
			ID:           uuid.New(),
			ServiceID:    serviceID,
			UserID:       customerID,
			Date:         "2024-01-02",
			StartMinutes: 540,
			EndMinutes:   570,
			Status:       domain.AppointmentStatusBooked,
			SlotID:       domain.EncodeSlotID(serviceID.String(), "2024-01-02", "09:00"),
		},
		domain.Appointment{
			ID:           uuid.New(),
			ServiceID:    serviceID,
			UserID:       customerID,
			Date:         "2024-01-03",
			StartMinutes: 540,
			EndMinutes:   570,
			Status:       domain.AppointmentStatusBooked,
			SlotID:       domain.EncodeSlotID(serviceID.String(), "2024-01-03", "09:00"),
		},
	)

	days, err := svc.DaySchedule(context.Background(), providerID, "2024-01-02")
	if err != nil {
		t.Fatalf("DaySchedule error: %v", err)
	}
	if len(days) != 1 {
		t.Fatalf("services = %d, want 1", len(days))
	}
	if days[0].ServiceName != "checkup" {
		t.Fatalf("service name = %q", days[0].ServiceName)
	}
	if len(days[0].Appointments) != 1 || days[0].Appointments[0].Date != "2024-01-02" {
		t.Fatalf("appointments = %+v, want the 2024-01-02 booking only", days[0].Appointments)
	}

	if _, err := svc.DaySchedule(context.Background(), providerID, "bad-date"); err == nil {
		t.Fatalf("expected error for malformed date")
	}
}

func TestMyAppointments(t *testing.T) {
	st := newFixture()
	svc := NewService(st, st)

	st.appts = append(st.appts, domain.Appointment{
		ID:        uuid.New(),
		ServiceID: serviceID,
		UserID:    customerID,
		Date:      "2024-01-02",
		Status:    domain.AppointmentStatusBooked,
		SlotID:    domain.EncodeSlotID(serviceID.String(), "2024-01-02", "09:00"),
	})

	appts, err := svc.MyAppointments(context.Background(), customerID)
	if err != nil {
		t.Fatalf("MyAppointments error: %v", err)
	}
	if len(appts) != 1 {
		t.Fatalf("appointments = %d, want 1", len(appts))
	}

	appts, err = svc.MyAppointments(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("MyAppointments error: %v", err)
	}
	if len(appts) != 0 {
		t.Fatalf("appointments = %d, want 0", len(appts))
	}
}
