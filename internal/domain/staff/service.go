package staff

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/sanatorium/sanatorium/internal/platform/apierr"
)

// ServiceCatalog is the slice of the catalog module the staff directory
// needs when linking a staff member to a service.
type ServiceCatalog interface {
	ServiceExists(ctx context.Context, id uuid.UUID) (bool, error)
}

type Service struct {
	personas  MedPersonaRepository
	offerings OfferingRepository
	catalog   ServiceCatalog
}

func NewService(personas MedPersonaRepository, offerings OfferingRepository, catalog ServiceCatalog) *Service {
	return &Service{personas: personas, offerings: offerings, catalog: catalog}
}

// Create registers a staff member.
func (s *Service) Create(ctx context.Context, in CreateInput) (*MedPersona, error) {
	if in.UserID == uuid.Nil {
		return nil, apierr.Fields{"user_id": "this field is required"}
	}
	if _, err := s.personas.GetByUserID(ctx, in.UserID); err == nil {
		return nil, apierr.Fields{"user_id": "staff profile for this user already exists"}
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("check existing staff profile: %w", err)
	}

	m := &MedPersona{
		ID:         uuid.New(),
		UserID:     in.UserID,
		Position:   in.Position,
		Speciality: in.Speciality,
		Office:     in.Office,
	}
	if err := s.personas.Create(ctx, m); err != nil {
		return nil, fmt.Errorf("create med persona: %w", err)
	}
	return m, nil
}

// Get returns the staff member with the given id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*MedPersona, error) {
	m, err := s.personas.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apierr.ErrNotFound
		}
		return nil, fmt.Errorf("get med persona: %w", err)
	}
	return m, nil
}

// Exists reports whether a staff member with the given id is registered.
// The booking module uses it to validate staff references before writing.
func (s *Service) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	return s.personas.Exists(ctx, id)
}

// MedPersonaIDByUser resolves the staff profile belonging to a user
// account. The notes module uses it to attribute entries to their author.
func (s *Service) MedPersonaIDByUser(ctx context.Context, userID string) (uuid.UUID, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return uuid.Nil, apierr.ErrNotFound
	}
	m, err := s.personas.GetByUserID(ctx, uid)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, apierr.ErrNotFound
		}
		return uuid.Nil, fmt.Errorf("get med persona by user: %w", err)
	}
	return m.ID, nil
}

// Offers reports whether the staff member is qualified to perform the
// service, i.e. the offering link exists.
func (s *Service) Offers(ctx context.Context, serviceID, medPersonaID uuid.UUID) (bool, error) {
	return s.offerings.Offers(ctx, serviceID, medPersonaID)
}

// List returns staff members page by page.
func (s *Service) List(ctx context.Context, limit, offset int) ([]*MedPersona, int, error) {
	return s.personas.List(ctx, limit, offset)
}

// Update applies a partial staff-member update.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in UpdateInput) (*MedPersona, error) {
	m, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Position != nil {
		m.Position = *in.Position
	}
	if in.Speciality != nil {
		m.Speciality = *in.Speciality
	}
	if in.Office != nil {
		m.Office = *in.Office
	}
	if err := s.personas.Update(ctx, m); err != nil {
		return nil, fmt.Errorf("update med persona: %w", err)
	}
	return m, nil
}

// Delete removes a staff member and their offering links.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.personas.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete med persona: %w", err)
	}
	return nil
}

// CreateOffering links a staff member to a service they perform. Both sides
// are validated independently so a caller learns about every broken
// reference at once.
func (s *Service) CreateOffering(ctx context.Context, in OfferingInput) (*ServiceMedPersona, error) {
	fields := apierr.Fields{}
	if in.ServiceID == uuid.Nil {
		fields["service_id"] = "this field is required"
	}
	if in.MedPersonaID == uuid.Nil {
		fields["medpersona_id"] = "this field is required"
	}
	if len(fields) > 0 {
		return nil, fields
	}

	if exists, err := s.catalog.ServiceExists(ctx, in.ServiceID); err != nil {
		return nil, fmt.Errorf("check service: %w", err)
	} else if !exists {
		fields["service_id"] = fmt.Sprintf("service %s does not exist", in.ServiceID)
	}
	if exists, err := s.personas.Exists(ctx, in.MedPersonaID); err != nil {
		return nil, fmt.Errorf("check med persona: %w", err)
	} else if !exists {
		fields["medpersona_id"] = fmt.Sprintf("medpersona %s does not exist", in.MedPersonaID)
	}
	if len(fields) > 0 {
		return nil, fields
	}

	if dup, err := s.offerings.Offers(ctx, in.ServiceID, in.MedPersonaID); err != nil {
		return nil, fmt.Errorf("check offering: %w", err)
	} else if dup {
		return nil, apierr.Fields{"medpersona_id": fmt.Sprintf("medpersona %s already has service %s", in.MedPersonaID, in.ServiceID)}
	}

	o := &ServiceMedPersona{
		ID:           uuid.New(),
		ServiceID:    in.ServiceID,
		MedPersonaID: in.MedPersonaID,
	}
	if err := s.offerings.Create(ctx, o); err != nil {
		return nil, fmt.Errorf("create offering: %w", err)
	}
	return o, nil
}

// ListOfferings returns offering links page by page.
func (s *Service) ListOfferings(ctx context.Context, limit, offset int) ([]*ServiceMedPersona, int, error) {
	return s.offerings.List(ctx, limit, offset)
}

// StaffForService returns the staff members offering one service.
func (s *Service) StaffForService(ctx context.Context, serviceID uuid.UUID) ([]*MedPersona, error) {
	return s.offerings.ListByService(ctx, serviceID)
}

// DeleteOffering removes an offering link.
func (s *Service) DeleteOffering(ctx context.Context, id uuid.UUID) error {
	if _, err := s.offerings.GetByID(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apierr.ErrNotFound
		}
		return fmt.Errorf("get offering: %w", err)
	}
	if err := s.offerings.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete offering: %w", err)
	}
	return nil
}
