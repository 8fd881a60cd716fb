package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/sanatorium/sanatorium/internal/domain/catalog"
	"github.com/sanatorium/sanatorium/internal/platform/apierr"
	"github.com/sanatorium/sanatorium/internal/platform/auth"
	"github.com/sanatorium/sanatorium/internal/platform/db"
)

// PatientDirectory resolves the patient profile behind a user account.
type PatientDirectory interface {
	PatientIDByUser(ctx context.Context, userID string) (uuid.UUID, error)
}

// StaffDirectory answers the two questions bookings ask about staff: does
// the member exist, and are they qualified for a service.
type StaffDirectory interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	Offers(ctx context.Context, serviceID, medPersonaID uuid.UUID) (bool, error)
}

// ServiceCatalog is the slice of the catalog bookings consume.
type ServiceCatalog interface {
	ServiceExists(ctx context.Context, id uuid.UUID) (bool, error)
	ServiceIDsOfType(ctx context.Context, t catalog.ServiceType) ([]uuid.UUID, error)
}

type Service struct {
	records  RecordRepository
	services RecordServiceRepository
	links    RecordStaffRepository
	patients PatientDirectory
	staff    StaffDirectory
	catalog  ServiceCatalog
	tx       db.TxRunner
}

func NewService(records RecordRepository, services RecordServiceRepository,
	links RecordStaffRepository, patients PatientDirectory, staff StaffDirectory,
	cat ServiceCatalog, tx db.TxRunner) *Service {
	return &Service{
		records:  records,
		services: services,
		links:    links,
		patients: patients,
		staff:    staff,
		catalog:  cat,
		tx:       tx,
	}
}

const (
	maxNameLen        = 100
	maxDescriptionLen = 500
)

func principal(ctx context.Context) (auth.Principal, error) {
	p, ok := auth.PrincipalFromContext(ctx)
	if !ok {
		return auth.Principal{}, apierr.ErrForbidden
	}
	return p, nil
}

func validateRecordInput(in RecordInput) error {
	fields := apierr.Fields{}
	if len(in.Name) > maxNameLen {
		fields["name"] = fmt.Sprintf("must be at most %d characters", maxNameLen)
	}
	if len(in.Description) > maxDescriptionLen {
		fields["description"] = fmt.Sprintf("must be at most %d characters", maxDescriptionLen)
	}
	if len(fields) > 0 {
		return fields
	}
	return nil
}

// newRecord builds the record a patient is booking. The creation timestamp
// defaults to now when the caller does not supply one.
func newRecord(patientID uuid.UUID, in RecordInput) *Record {
	created := time.Now().UTC()
	if in.DateOfCreation != nil {
		created = *in.DateOfCreation
	}
	return &Record{
		ID:             uuid.New(),
		PatientID:      patientID,
		Name:           in.Name,
		DateOfCreation: created,
		DateStart:      in.DateStart,
		DateEnd:        in.DateEnd,
		Description:    in.Description,
	}
}

// callerPatientID resolves the calling patient's profile. Only patients
// create bookings, and only for themselves.
func (s *Service) callerPatientID(ctx context.Context, p auth.Principal) (uuid.UUID, error) {
	if p.Role != auth.RolePatient {
		return uuid.Nil, apierr.ErrForbidden
	}
	return s.patients.PatientIDByUser(ctx, p.UserID)
}

// -- Records --

func (s *Service) ListRecords(ctx context.Context, f Filter, limit, offset int) ([]*Record, int, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, 0, err
	}
	scope, err := s.buildScope(ctx, p, f)
	if err != nil {
		return nil, 0, err
	}
	return s.records.List(ctx, scope, limit, offset)
}

func (s *Service) CreateRecord(ctx context.Context, in RecordInput) (*Record, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}
	patientID, err := s.callerPatientID(ctx, p)
	if err != nil {
		return nil, err
	}
	if err := validateRecordInput(in); err != nil {
		return nil, err
	}

	rec := newRecord(patientID, in)
	if err := s.records.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("create record: %w", err)
	}
	return rec, nil
}

// GetRecord retrieves one record. Out-of-scope ids read as absent so record
// existence is not leaked across patients.
func (s *Service) GetRecord(ctx context.Context, id uuid.UUID) (*Record, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}
	rec, err := s.records.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apierr.ErrNotFound
		}
		return nil, fmt.Errorf("get record: %w", err)
	}
	if p.Role == auth.RolePatient {
		patientID, err := s.patients.PatientIDByUser(ctx, p.UserID)
		if err != nil || rec.PatientID != patientID {
			return nil, apierr.ErrNotFound
		}
	}
	return rec, nil
}

func (s *Service) UpdateRecord(ctx context.Context, id uuid.UUID, in RecordUpdateInput) (*Record, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}
	if p.Role != auth.RoleDoctor {
		return nil, apierr.ErrForbidden
	}

	rec, err := s.records.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apierr.ErrNotFound
		}
		return nil, fmt.Errorf("get record: %w", err)
	}

	fields := apierr.Fields{}
	if in.Name != nil {
		if len(*in.Name) > maxNameLen {
			fields["name"] = fmt.Sprintf("must be at most %d characters", maxNameLen)
		} else {
			rec.Name = *in.Name
		}
	}
	if in.Description != nil {
		if len(*in.Description) > maxDescriptionLen {
			fields["description"] = fmt.Sprintf("must be at most %d characters", maxDescriptionLen)
		} else {
			rec.Description = *in.Description
		}
	}
	if len(fields) > 0 {
		return nil, fields
	}

	if in.DateStart != nil {
		rec.DateStart = in.DateStart
	}
	if in.DateEnd != nil {
		rec.DateEnd = in.DateEnd
	}
	if in.Done != nil {
		rec.Done = *in.Done
	}
	if in.Editable != nil {
		rec.Editable = *in.Editable
	}

	if err := s.records.Update(ctx, rec); err != nil {
		return nil, fmt.Errorf("update record: %w", err)
	}
	return rec, nil
}

// DeleteRecord removes a record; the storage layer cascades to any attached
// refinements.
func (s *Service) DeleteRecord(ctx context.Context, id uuid.UUID) error {
	p, err := principal(ctx)
	if err != nil {
		return err
	}
	if p.Role != auth.RoleDoctor {
		return apierr.ErrForbidden
	}
	if _, err := s.records.GetByID(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apierr.ErrNotFound
		}
		return fmt.Errorf("get record: %w", err)
	}
	if err := s.records.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	return nil
}

// -- Service attachments --

func (s *Service) ListRecordServices(ctx context.Context, f Filter, limit, offset int) ([]*RecordService, int, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, 0, err
	}
	scope, err := s.buildScope(ctx, p, f)
	if err != nil {
		return nil, 0, err
	}
	return s.services.List(ctx, scope, limit, offset)
}

func (s *Service) GetRecordService(ctx context.Context, id uuid.UUID) (*RecordService, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}
	rs, err := s.services.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apierr.ErrNotFound
		}
		return nil, fmt.Errorf("get record service: %w", err)
	}
	if p.Role == auth.RolePatient {
		if err := s.ownsRecord(ctx, p, rs.RecordID); err != nil {
			return nil, err
		}
	}
	return rs, nil
}

// CreateRecordService books a record with a service attached. The record
// and the attachment persist together or not at all.
func (s *Service) CreateRecordService(ctx context.Context, in ServiceRecordInput) (*ServiceRecord, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}
	patientID, err := s.callerPatientID(ctx, p)
	if err != nil {
		return nil, err
	}
	if in.ServiceID == uuid.Nil {
		return nil, apierr.Fields{"service_id": "this field is required"}
	}
	if err := validateRecordInput(in.RecordInput); err != nil {
		return nil, err
	}

	exists, err := s.catalog.ServiceExists(ctx, in.ServiceID)
	if err != nil {
		return nil, fmt.Errorf("check service: %w", err)
	}
	if !exists {
		return nil, apierr.NotFoundf("service %s does not exist", in.ServiceID)
	}

	rec := newRecord(patientID, in.RecordInput)
	rs := &RecordService{ID: uuid.New(), RecordID: rec.ID, ServiceID: in.ServiceID}

	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := s.records.Create(ctx, rec); err != nil {
			return fmt.Errorf("create record: %w", err)
		}
		if err := s.services.Create(ctx, rs); err != nil {
			return fmt.Errorf("create record service: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &ServiceRecord{Record: rec, RecordService: rs}, nil
}

// -- Staff attachments --

func (s *Service) ListStaffLinks(ctx context.Context, f Filter, limit, offset int) ([]*RecordServiceMedPersona, int, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, 0, err
	}
	scope, err := s.buildScope(ctx, p, f)
	if err != nil {
		return nil, 0, err
	}
	return s.links.List(ctx, scope, limit, offset)
}

func (s *Service) GetStaffLink(ctx context.Context, id uuid.UUID) (*RecordServiceMedPersona, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}
	link, err := s.links.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apierr.ErrNotFound
		}
		return nil, fmt.Errorf("get staff link: %w", err)
	}
	if p.Role == auth.RolePatient {
		rs, err := s.services.GetByID(ctx, link.RecordServiceID)
		if err != nil {
			return nil, apierr.ErrNotFound
		}
		if err := s.ownsRecord(ctx, p, rs.RecordID); err != nil {
			return nil, err
		}
	}
	return link, nil
}

// CreateStaffLink books a record with both a service and the staff member
// to perform it. Reference checks run independently so the caller sees every
// broken id at once, and the qualification check runs before any write so a
// rejected booking leaves nothing behind.
func (s *Service) CreateStaffLink(ctx context.Context, in StaffRecordInput) (*StaffRecord, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}
	patientID, err := s.callerPatientID(ctx, p)
	if err != nil {
		return nil, err
	}

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
	if err := validateRecordInput(in.RecordInput); err != nil {
		return nil, err
	}

	serviceOK, err := s.catalog.ServiceExists(ctx, in.ServiceID)
	if err != nil {
		return nil, fmt.Errorf("check service: %w", err)
	}
	staffOK, err := s.staff.Exists(ctx, in.MedPersonaID)
	if err != nil {
		return nil, fmt.Errorf("check med persona: %w", err)
	}
	if !serviceOK {
		fields["service_id"] = fmt.Sprintf("service %s does not exist", in.ServiceID)
	}
	if !staffOK {
		fields["medpersona_id"] = fmt.Sprintf("medpersona %s does not exist", in.MedPersonaID)
	}
	if len(fields) > 0 {
		return nil, fields
	}

	offers, err := s.staff.Offers(ctx, in.ServiceID, in.MedPersonaID)
	if err != nil {
		return nil, fmt.Errorf("check offering: %w", err)
	}
	if !offers {
		return nil, apierr.Fields{
			"medpersona_id": fmt.Sprintf("medpersona %s does not have service %s", in.MedPersonaID, in.ServiceID),
		}
	}

	rec := newRecord(patientID, in.RecordInput)
	rs := &RecordService{ID: uuid.New(), RecordID: rec.ID, ServiceID: in.ServiceID}
	link := &RecordServiceMedPersona{ID: uuid.New(), RecordServiceID: rs.ID, MedPersonaID: in.MedPersonaID}

	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := s.records.Create(ctx, rec); err != nil {
			return fmt.Errorf("create record: %w", err)
		}
		if err := s.services.Create(ctx, rs); err != nil {
			return fmt.Errorf("create record service: %w", err)
		}
		if err := s.links.Create(ctx, link); err != nil {
			return fmt.Errorf("create staff link: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &StaffRecord{Record: rec, RecordService: rs, StaffLink: link}, nil
}

// ownsRecord checks that the record behind a refinement belongs to the
// calling patient; anything out of scope reads as absent.
func (s *Service) ownsRecord(ctx context.Context, p auth.Principal, recordID uuid.UUID) error {
	patientID, err := s.patients.PatientIDByUser(ctx, p.UserID)
	if err != nil {
		return apierr.ErrNotFound
	}
	rec, err := s.records.GetByID(ctx, recordID)
	if err != nil || rec.PatientID != patientID {
		return apierr.ErrNotFound
	}
	return nil
}
