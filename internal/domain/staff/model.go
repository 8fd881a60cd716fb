package staff

import (
	"time"

	"github.com/google/uuid"
)

// MedPersona is a staff member who performs catalog services: a doctor,
// nurse or therapist attached to a user account.
type MedPersona struct {
	ID         uuid.UUID `json:"id"`
	UserID     uuid.UUID `json:"user_id"`
	Position   string    `json:"position"`
	Speciality string    `json:"speciality"`
	Office     string    `json:"office"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ServiceMedPersona links a staff member to a service they are qualified to
// perform. Bookings naming a staff member are only valid through this link.
type ServiceMedPersona struct {
	ID           uuid.UUID `json:"id"`
	ServiceID    uuid.UUID `json:"service_id"`
	MedPersonaID uuid.UUID `json:"medpersona_id"`
}

// CreateInput is the payload for staff-member creation.
type CreateInput struct {
	UserID     uuid.UUID `json:"user_id"`
	Position   string    `json:"position"`
	Speciality string    `json:"speciality"`
	Office     string    `json:"office"`
}

// UpdateInput carries a partial staff-member update; nil fields stay as-is.
type UpdateInput struct {
	Position   *string `json:"position"`
	Speciality *string `json:"speciality"`
	Office     *string `json:"office"`
}

// OfferingInput is the payload linking a staff member to a service.
type OfferingInput struct {
	ServiceID    uuid.UUID `json:"service_id"`
	MedPersonaID uuid.UUID `json:"medpersona_id"`
}
