package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type ServiceType string

const (
	ServiceTypeMedical   ServiceType = "MEDICAL"
	ServiceTypeHouseHelp ServiceType = "HOUSE_HELP"
	ServiceTypeBeauty    ServiceType = "BEAUTY"
	ServiceTypeFitness   ServiceType = "FITNESS"
	ServiceTypeEducation ServiceType = "EDUCATION"
	ServiceTypeOther     ServiceType = "OTHER"
)

func (t ServiceType) Valid() bool {
	switch t {
	case ServiceTypeMedical, ServiceTypeHouseHelp, ServiceTypeBeauty,
		ServiceTypeFitness, ServiceTypeEducation, ServiceTypeOther:
		return true
	}
	return false
}

const (
	MinServiceDurationMinutes = 30
	MaxServiceDurationMinutes = 120
	SlotStepMinutes           = 30
)

// Service has a fixed duration; appointment intervals are always derived
// from it, never supplied independently.
type Service struct {
	bun.BaseModel `bun:"table:services"`

	ID              uuid.UUID   `bun:"id,pk,type:uuid"`
	ProviderID      uuid.UUID   `bun:"provider_id,notnull,type:uuid"`
	Name            string      `bun:"name,notnull"`
	Type            ServiceType `bun:"type,notnull"`
	DurationMinutes int         `bun:"duration_minutes,notnull"`
	CreatedAt       time.Time   `bun:"created_at,notnull"`
	UpdatedAt       time.Time   `bun:"updated_at,notnull"`

	Provider *User `bun:"rel:belongs-to,join:provider_id=id"`
}

func (s *Service) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	now := time.Now().UTC()
	switch query.(type) {
	case *bun.InsertQuery:
		if s.ID == uuid.Nil {
			id, err := uuid.NewV7()
			if err != nil {
				return err
			}
			s.ID = id
		}
		if s.CreatedAt.IsZero() {
			s.CreatedAt = now
		}
		if s.UpdatedAt.IsZero() {
			s.UpdatedAt = now
		}
	case *bun.UpdateQuery:
		s.UpdatedAt = now
	}
	return nil
}

// Availability is a recurring weekly open window for one service.
// Weekday follows the source convention: 0=Sunday .. 6=Saturday.
// Times are minutes since midnight, half-open [StartMinutes, EndMinutes).
type Availability struct {
	bun.BaseModel `bun:"table:availabilities"`

	ID           uuid.UUID `bun:"id,pk,type:uuid"`
	ServiceID    uuid.UUID `bun:"service_id,notnull,type:uuid"`
	DayOfWeek    int       `bun:"day_of_week,notnull"`
	StartMinutes int       `bun:"start_minutes,notnull"`
	EndMinutes   int       `bun:"end_minutes,notnull"`
	CreatedAt    time.Time `bun:"created_at,notnull"`
	UpdatedAt    time.Time `bun:"updated_at,notnull"`
}

func (a *Availability) BeforeAppendModel(ctx context.Context, query bun.Query) error {
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
