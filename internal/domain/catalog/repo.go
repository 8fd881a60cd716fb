package catalog

import (
	"context"

	"github.com/google/uuid"
)

type SanatoriumRepository interface {
	Create(ctx context.Context, s *Sanatorium) error
	GetByID(ctx context.Context, id uuid.UUID) (*Sanatorium, error)
	Update(ctx context.Context, s *Sanatorium) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*Sanatorium, int, error)
}

type ServiceRepository interface {
	Create(ctx context.Context, s *Service) error
	GetByID(ctx context.Context, id uuid.UUID) (*Service, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	Update(ctx context.Context, s *Service) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*Service, int, error)
	// IDsOfType returns the ids of all services refined by the given
	// sub-kind table.
	IDsOfType(ctx context.Context, t ServiceType) ([]uuid.UUID, error)
	// ResolveType reports which sub-kind refines the service, or "" when
	// the service has no refinement yet.
	ResolveType(ctx context.Context, id uuid.UUID) (ServiceType, error)
}

type SubKindRepository interface {
	CreateProcedure(ctx context.Context, p *Procedure) error
	CreateEvent(ctx context.Context, e *Event) error
	CreateSurvey(ctx context.Context, s *Survey) error
	CreateSpeciality(ctx context.Context, s *Speciality) error
	GetProcedure(ctx context.Context, id uuid.UUID) (*Procedure, error)
	GetEvent(ctx context.Context, id uuid.UUID) (*Event, error)
	GetSurvey(ctx context.Context, id uuid.UUID) (*Survey, error)
	GetSpeciality(ctx context.Context, id uuid.UUID) (*Speciality, error)
	ListProcedures(ctx context.Context, limit, offset int) ([]*Procedure, int, error)
	ListEvents(ctx context.Context, limit, offset int) ([]*Event, int, error)
	ListSurveys(ctx context.Context, limit, offset int) ([]*Survey, int, error)
	ListSpecialities(ctx context.Context, limit, offset int) ([]*Speciality, int, error)
	DeleteProcedure(ctx context.Context, id uuid.UUID) error
	DeleteEvent(ctx context.Context, id uuid.UUID) error
	DeleteSurvey(ctx context.Context, id uuid.UUID) error
	DeleteSpeciality(ctx context.Context, id uuid.UUID) error
}

type TimetableRepository interface {
	Create(ctx context.Context, t *Timetable) error
	GetByID(ctx context.Context, id uuid.UUID) (*Timetable, error)
	List(ctx context.Context, limit, offset int) ([]*Timetable, int, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
