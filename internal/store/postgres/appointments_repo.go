package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/uptrace/bun"

	"pronto/backend/internal/domain"
	"pronto/backend/internal/store"
)

type AppointmentRepo struct {
	db *bun.DB
}

func NewAppointmentRepo(db *bun.DB) *AppointmentRepo {
	return &AppointmentRepo{db: db}
}

type bookingTx struct {
	tx bun.Tx
}

// InBookingTransaction serializes all bookings for one service/date calendar
// behind an advisory lock, so the availability and conflict checks and the
// insert observe a stable snapshot. The unique constraint on slot_id remains
// the backstop for anything that slips past the lock.
func (r *AppointmentRepo) InBookingTransaction(ctx context.Context, serviceID, date string, fn func(ctx context.Context, tx store.BookingTx) error) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := lockServiceDay(ctx, tx, serviceID, date); err != nil {
			return err
		}
		return fn(ctx, bookingTx{tx: tx})
	})
}

func lockServiceDay(ctx context.Context, tx bun.Tx, serviceID, date string) error {
	_, err := tx.NewRaw("SELECT pg_advisory_xact_lock(hashtext(?))", serviceID+"@"+date).Exec(ctx)
	return err
}

func (r *AppointmentRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Appointment, error) {
	var rows []domain.Appointment
	err := r.db.NewSelect().
		Model(&rows).
		Relation("Service").
		Where("appointment.user_id = ?", userID).
		OrderExpr("appointment.date ASC, appointment.start_minutes ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *AppointmentRepo) FindByDateAndService(ctx context.Context, serviceID uuid.UUID, date string, status domain.AppointmentStatus) ([]domain.Appointment, error) {
	var rows []domain.Appointment
	err := r.db.NewSelect().
		Model(&rows).
		Where("service_id = ?", serviceID).
		Where("date = ?", date).
		Where("status = ?", status).
		OrderExpr("start_minutes ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (t bookingTx) GetService(ctx context.Context, serviceID string) (domain.Service, error) {
	id, err := uuid.Parse(serviceID)
	if err != nil {
		return domain.Service{}, store.ErrNotFound
	}

	var s domain.Service
	err = t.tx.NewSelect().
		Model(&s).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Service{}, store.ErrNotFound
		}
		return domain.Service{}, err
	}
	return s, nil
}

func (t bookingTx) ListAvailability(ctx context.Context, serviceID uuid.UUID) ([]domain.Availability, error) {
	var rows []domain.Availability
	err := t.tx.NewSelect().
		Model(&rows).
		Where("service_id = ?", serviceID).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (t bookingTx) ListBooked(ctx context.Context, serviceID uuid.UUID, date string) ([]domain.Appointment, error) {
	var rows []domain.Appointment
	err := t.tx.NewSelect().
		Model(&rows).
		Where("service_id = ?", serviceID).
		Where("date = ?", date).
		Where("status = ?", domain.AppointmentStatusBooked).
		OrderExpr("start_minutes ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (t bookingTx) CreateAppointment(ctx context.Context, appt domain.Appointment) (domain.Appointment, error) {
	m := appt
	_, err := t.tx.NewInsert().Model(&m).Exec(ctx)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.Appointment{}, store.ErrConflict
		}
		return domain.Appointment{}, err
	}
	return m, nil
}
