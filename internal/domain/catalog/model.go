package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ServiceType tags which refinement table a service belongs to. Exactly one
// refinement row exists per service.
type ServiceType string

const (
	TypeProcedure  ServiceType = "procedure"
	TypeEvent      ServiceType = "event"
	TypeSurvey     ServiceType = "survey"
	TypeSpeciality ServiceType = "speciality"
)

// ParseServiceType maps a query value onto the closed type set, ignoring
// case. Unknown values come back as the empty type.
func ParseServiceType(s string) ServiceType {
	switch t := ServiceType(strings.ToLower(s)); t {
	case TypeProcedure, TypeEvent, TypeSurvey, TypeSpeciality:
		return t
	default:
		return ""
	}
}

// Sanatorium is a resort site offering services.
type Sanatorium struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Email   string    `json:"email"`
	Tel     string    `json:"tel"`
	Address string    `json:"address"`
}

// Service is a bookable catalog entry: a procedure, event, survey or
// doctor's speciality, refined by exactly one sub-kind row.
type Service struct {
	ID           uuid.UUID  `json:"id"`
	Name         string     `json:"name"`
	Cost         float64    `json:"cost"`
	SanatoriumID *uuid.UUID `json:"sanatorium_id"`
}

// Procedure refines a service with treatment details.
type Procedure struct {
	ID              uuid.UUID `json:"id"`
	ServiceID       uuid.UUID `json:"service_id"`
	DurationMinutes int       `json:"duration_minutes"`
	Office          string    `json:"office"`
}

// Event refines a service with a scheduled occasion.
type Event struct {
	ID        uuid.UUID  `json:"id"`
	ServiceID uuid.UUID  `json:"service_id"`
	Date      *time.Time `json:"date"`
	Location  string     `json:"location"`
}

// Survey refines a service with an examination.
type Survey struct {
	ID         uuid.UUID `json:"id"`
	ServiceID  uuid.UUID `json:"service_id"`
	Laboratory bool      `json:"laboratory"`
}

// Speciality refines a service with a doctor's consultation field.
type Speciality struct {
	ID        uuid.UUID `json:"id"`
	ServiceID uuid.UUID `json:"service_id"`
	Name      string    `json:"name"`
}

// Timetable is a stored availability window for a service. Rows are plain
// storage; no overlap checking happens here.
type Timetable struct {
	ID        uuid.UUID  `json:"id"`
	ServiceID uuid.UUID  `json:"service_id"`
	DateStart *time.Time `json:"date_start"`
	DateEnd   *time.Time `json:"date_end"`
	Office    string     `json:"office"`
}

// SanatoriumInput is the payload for sanatorium create/update.
type SanatoriumInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Tel     string `json:"tel"`
	Address string `json:"address"`
}

// ServiceInput is the payload for service creation.
type ServiceInput struct {
	Name         string     `json:"name"`
	Cost         float64    `json:"cost"`
	SanatoriumID *uuid.UUID `json:"sanatorium_id"`
}

// ServiceUpdateInput carries a partial service update.
type ServiceUpdateInput struct {
	Name         *string    `json:"name"`
	Cost         *float64   `json:"cost"`
	SanatoriumID *uuid.UUID `json:"sanatorium_id"`
}

// ProcedureInput is the payload for procedure creation.
type ProcedureInput struct {
	ServiceID       uuid.UUID `json:"service_id"`
	DurationMinutes int       `json:"duration_minutes"`
	Office          string    `json:"office"`
}

// EventInput is the payload for event creation.
type EventInput struct {
	ServiceID uuid.UUID  `json:"service_id"`
	Date      *time.Time `json:"date"`
	Location  string     `json:"location"`
}

// SurveyInput is the payload for survey creation.
type SurveyInput struct {
	ServiceID  uuid.UUID `json:"service_id"`
	Laboratory bool      `json:"laboratory"`
}

// SpecialityInput is the payload for speciality creation.
type SpecialityInput struct {
	ServiceID uuid.UUID `json:"service_id"`
	Name      string    `json:"name"`
}

// TimetableInput is the payload for timetable-row creation.
type TimetableInput struct {
	ServiceID uuid.UUID  `json:"service_id"`
	DateStart *time.Time `json:"date_start"`
	DateEnd   *time.Time `json:"date_end"`
	Office    string     `json:"office"`
}
