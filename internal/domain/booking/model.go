package booking

import (
	"time"

	"github.com/google/uuid"
)

// Record is a patient's appointment request, independent of what is being
// booked. Listings put unfinished records first, newest start time on top.
type Record struct {
	ID             uuid.UUID  `json:"id"`
	PatientID      uuid.UUID  `json:"patient_id"`
	Name           string     `json:"name"`
	DateOfCreation time.Time  `json:"date_of_creation"`
	DateStart      *time.Time `json:"date_start"`
	DateEnd        *time.Time `json:"date_end"`
	Done           bool       `json:"done"`
	Editable       bool       `json:"editable"`
	Description    string     `json:"description"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// RecordService refines a record with exactly one catalog service. A record
// carries at most one of these.
type RecordService struct {
	ID        uuid.UUID `json:"id"`
	RecordID  uuid.UUID `json:"record_id"`
	ServiceID uuid.UUID `json:"service_id"`
}

// RecordServiceMedPersona refines a RecordService with the staff member who
// will perform the service. Valid only when the staff member offers it.
type RecordServiceMedPersona struct {
	ID              uuid.UUID `json:"id"`
	RecordServiceID uuid.UUID `json:"record_service_id"`
	MedPersonaID    uuid.UUID `json:"medpersona_id"`
}

// RecordInput is the payload for plain record creation.
type RecordInput struct {
	Name           string     `json:"name"`
	DateOfCreation *time.Time `json:"date_of_creation"`
	DateStart      *time.Time `json:"date_start"`
	DateEnd        *time.Time `json:"date_end"`
	Description    string     `json:"description"`
}

// RecordUpdateInput carries a partial record update; nil fields stay as-is.
type RecordUpdateInput struct {
	Name        *string    `json:"name"`
	DateStart   *time.Time `json:"date_start"`
	DateEnd     *time.Time `json:"date_end"`
	Done        *bool      `json:"done"`
	Editable    *bool      `json:"editable"`
	Description *string    `json:"description"`
}

// ServiceRecordInput books a record together with a service attachment.
type ServiceRecordInput struct {
	RecordInput
	ServiceID uuid.UUID `json:"service_id"`
}

// StaffRecordInput books a record together with a service and the staff
// member to perform it.
type StaffRecordInput struct {
	RecordInput
	ServiceID    uuid.UUID `json:"service_id"`
	MedPersonaID uuid.UUID `json:"medpersona_id"`
}

// ServiceRecord is the created booking returned from the combined create:
// the record and its service attachment.
type ServiceRecord struct {
	Record        *Record        `json:"record"`
	RecordService *RecordService `json:"record_service"`
}

// StaffRecord is the created booking returned from the three-level create.
type StaffRecord struct {
	Record        *Record                  `json:"record"`
	RecordService *RecordService           `json:"record_service"`
	StaffLink     *RecordServiceMedPersona `json:"record_service_med_persona"`
}

// Filter carries the optional query filters on list endpoints.
type Filter struct {
	DateStart   *time.Time
	DateEnd     *time.Time
	Done        *bool
	ServiceType string
}
