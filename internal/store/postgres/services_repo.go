package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"pronto/backend/internal/domain"
	"pronto/backend/internal/store"
)

type ServiceRepo struct {
	db *bun.DB
}

func NewServiceRepo(db *bun.DB) *ServiceRepo {
	return &ServiceRepo{db: db}
}

func (r *ServiceRepo) Create(ctx context.Context, svc domain.Service) (domain.Service, error) {
	m := svc
	_, err := r.db.NewInsert().Model(&m).Exec(ctx)
	if err != nil {
		return domain.Service{}, err
	}
	return m, nil
}

func (r *ServiceRepo) Get(ctx context.Context, serviceID string) (domain.Service, error) {
	id, err := uuid.Parse(serviceID)
	if err != nil {
		return domain.Service{}, store.ErrNotFound
	}

	var s domain.Service
	err = r.db.NewSelect().
		Model(&s).
		Where("service.id = ?", id).
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

func (r *ServiceRepo) List(ctx context.Context, typeFilter domain.ServiceType) ([]domain.Service, error) {
	var rows []domain.Service
	q := r.db.NewSelect().
		Model(&rows).
		Relation("Provider").
		OrderExpr("service.created_at ASC")
	if typeFilter != "" {
		q = q.Where("service.type = ?", typeFilter)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *ServiceRepo) ListByProvider(ctx context.Context, providerID uuid.UUID) ([]domain.Service, error) {
	var rows []domain.Service
	err := r.db.NewSelect().
		Model(&rows).
		Where("provider_id = ?", providerID).
		OrderExpr("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *ServiceRepo) ListAvailability(ctx context.Context, serviceID uuid.UUID) ([]domain.Availability, error) {
	var rows []domain.Availability
	err := r.db.NewSelect().
		Model(&rows).
		Where("service_id = ?", serviceID).
		OrderExpr("day_of_week ASC, start_minutes ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// AddAvailability serializes concurrent window additions for one service with
// an advisory lock, then rejects any overlap on the same weekday before
// inserting.
func (r *ServiceRepo) AddAvailability(ctx context.Context, entry domain.Availability) (domain.Availability, error) {
	var out domain.Availability
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewRaw("SELECT pg_advisory_xact_lock(hashtext(?))", "availability:"+entry.ServiceID.String()).Exec(ctx); err != nil {
			return err
		}

		var existing []domain.Availability
		err := tx.NewSelect().
			Model(&existing).
			Where("service_id = ?", entry.ServiceID).
			Where("day_of_week = ?", entry.DayOfWeek).
			Scan(ctx)
		if err != nil {
			return err
		}
		if domain.HasOverlap(existing, entry.DayOfWeek, entry.StartMinutes, entry.EndMinutes) {
			return store.ErrConflict
		}

		m := entry
		if _, err := tx.NewInsert().Model(&m).Exec(ctx); err != nil {
			return err
		}
		out = m
		return nil
	})
	if err != nil {
		return domain.Availability{}, err
	}
	return out, nil
}
