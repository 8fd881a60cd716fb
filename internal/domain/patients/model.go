package patients

import (
	"time"

	"github.com/google/uuid"
)

// Gender, status and type values follow the closed choices the profile
// stores; validation rejects anything else.
const (
	GenderMale   = "Male"
	GenderFemale = "Female"

	StatusAccept     = "Accept"
	StatusDischarged = "Discharged"

	TypeVacationer = "Vacationer"
	TypeTreating   = "Treating"
)

// Patient is the resort-guest profile attached to a user account. One
// profile per account.
type Patient struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"user_id"`
	BirthDate *time.Time `json:"birth_date"`
	Gender    string     `json:"gender"`
	Region    string     `json:"region"`
	City      string     `json:"city"`
	Bonus     int        `json:"bonus"`
	Status    string     `json:"status"`
	Type      string     `json:"type"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// PassportData holds the identity-document details for a patient.
type PassportData struct {
	ID        uuid.UUID  `json:"id"`
	PatientID uuid.UUID  `json:"patient_id"`
	Series    string     `json:"series"`
	Number    string     `json:"number"`
	IssueDate *time.Time `json:"issue_date"`
	IssuedBy  string     `json:"issued_by"`
}

// CreateInput is the payload for profile creation.
type CreateInput struct {
	UserID    uuid.UUID  `json:"user_id"`
	BirthDate *time.Time `json:"birth_date"`
	Gender    string     `json:"gender"`
	Region    string     `json:"region"`
	City      string     `json:"city"`
	Type      string     `json:"type"`
}

// UpdateInput carries a partial profile update; nil fields are left as-is.
type UpdateInput struct {
	BirthDate *time.Time `json:"birth_date"`
	Gender    *string    `json:"gender"`
	Region    *string    `json:"region"`
	City      *string    `json:"city"`
	Bonus     *int       `json:"bonus"`
	Status    *string    `json:"status"`
	Type      *string    `json:"type"`
}

// PassportInput is the payload for passport-data creation.
type PassportInput struct {
	PatientID uuid.UUID  `json:"patient_id"`
	Series    string     `json:"series"`
	Number    string     `json:"number"`
	IssueDate *time.Time `json:"issue_date"`
	IssuedBy  string     `json:"issued_by"`
}

// PassportUpdateInput carries a partial passport-data update.
type PassportUpdateInput struct {
	Series    *string    `json:"series"`
	Number    *string    `json:"number"`
	IssueDate *time.Time `json:"issue_date"`
	IssuedBy  *string    `json:"issued_by"`
}
