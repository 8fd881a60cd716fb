package patients

import (
	"context"

	"github.com/google/uuid"
)

type PatientRepository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*Patient, error)
	Update(ctx context.Context, p *Patient) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*Patient, int, error)
}

type PassportRepository interface {
	Create(ctx context.Context, pd *PassportData) error
	GetByID(ctx context.Context, id uuid.UUID) (*PassportData, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*PassportData, error)
	Update(ctx context.Context, pd *PassportData) error
	Delete(ctx context.Context, id uuid.UUID) error
}
