package staff

import (
	"context"

	"github.com/google/uuid"
)

type MedPersonaRepository interface {
	Create(ctx context.Context, m *MedPersona) error
	GetByID(ctx context.Context, id uuid.UUID) (*MedPersona, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*MedPersona, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	Update(ctx context.Context, m *MedPersona) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*MedPersona, int, error)
}

type OfferingRepository interface {
	Create(ctx context.Context, o *ServiceMedPersona) error
	GetByID(ctx context.Context, id uuid.UUID) (*ServiceMedPersona, error)
	Offers(ctx context.Context, serviceID, medPersonaID uuid.UUID) (bool, error)
	ListByService(ctx context.Context, serviceID uuid.UUID) ([]*MedPersona, error)
	List(ctx context.Context, limit, offset int) ([]*ServiceMedPersona, int, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
