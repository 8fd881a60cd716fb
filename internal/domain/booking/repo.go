package booking

import (
	"context"

	"github.com/google/uuid"
)

type RecordRepository interface {
	Create(ctx context.Context, r *Record) error
	GetByID(ctx context.Context, id uuid.UUID) (*Record, error)
	Update(ctx context.Context, r *Record) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, scope Scope, limit, offset int) ([]*Record, int, error)
}

type RecordServiceRepository interface {
	Create(ctx context.Context, rs *RecordService) error
	GetByID(ctx context.Context, id uuid.UUID) (*RecordService, error)
	List(ctx context.Context, scope Scope, limit, offset int) ([]*RecordService, int, error)
}

type RecordStaffRepository interface {
	Create(ctx context.Context, link *RecordServiceMedPersona) error
	GetByID(ctx context.Context, id uuid.UUID) (*RecordServiceMedPersona, error)
	List(ctx context.Context, scope Scope, limit, offset int) ([]*RecordServiceMedPersona, int, error)
}
