package patients

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/sanatorium/sanatorium/internal/platform/apierr"
	"github.com/sanatorium/sanatorium/internal/platform/auth"
)

// UserDirectory is the slice of the accounts module the patient directory
// needs: existence checks when attaching a profile to an account.
type UserDirectory interface {
	UserExists(ctx context.Context, id uuid.UUID) (bool, error)
}

type Service struct {
	repo      PatientRepository
	passports PassportRepository
	users     UserDirectory
}

func NewService(repo PatientRepository, passports PassportRepository, users UserDirectory) *Service {
	return &Service{repo: repo, passports: passports, users: users}
}

func validGender(g string) bool {
	return g == "" || g == GenderMale || g == GenderFemale
}

func validStatus(s string) bool {
	return s == StatusAccept || s == StatusDischarged
}

func validType(t string) bool {
	return t == TypeVacationer || t == TypeTreating
}

// Create attaches a patient profile to a user account.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Patient, error) {
	fields := apierr.Fields{}
	if in.UserID == uuid.Nil {
		fields["user_id"] = "this field is required"
	}
	if !validGender(in.Gender) {
		fields["gender"] = fmt.Sprintf("%s is not a valid gender", in.Gender)
	}
	typ := in.Type
	if typ == "" {
		typ = TypeVacationer
	}
	if !validType(typ) {
		fields["type"] = fmt.Sprintf("%s is not a valid type", typ)
	}
	if len(fields) > 0 {
		return nil, fields
	}

	if exists, err := s.users.UserExists(ctx, in.UserID); err != nil {
		return nil, fmt.Errorf("check user: %w", err)
	} else if !exists {
		return nil, apierr.NotFoundf("user %s does not exist", in.UserID)
	}
	if _, err := s.repo.GetByUserID(ctx, in.UserID); err == nil {
		return nil, apierr.Fields{"user_id": "patient profile for this user already exists"}
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("check existing profile: %w", err)
	}

	p := &Patient{
		ID:        uuid.New(),
		UserID:    in.UserID,
		BirthDate: in.BirthDate,
		Gender:    in.Gender,
		Region:    in.Region,
		City:      in.City,
		Status:    StatusAccept,
		Type:      typ,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create patient: %w", err)
	}
	return p, nil
}

// Get returns the profile with the given id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Patient, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apierr.ErrNotFound
		}
		return nil, fmt.Errorf("get patient: %w", err)
	}
	return p, nil
}

// Own returns the caller's own patient profile.
func (s *Service) Own(ctx context.Context) (*Patient, error) {
	p, ok := auth.PrincipalFromContext(ctx)
	if !ok {
		return nil, apierr.ErrForbidden
	}
	userID, err := uuid.Parse(p.UserID)
	if err != nil {
		return nil, apierr.ErrNotFound
	}
	profile, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apierr.ErrNotFound
		}
		return nil, fmt.Errorf("get own patient profile: %w", err)
	}
	return profile, nil
}

// PatientExists reports whether a profile with the given id exists.
func (s *Service) PatientExists(ctx context.Context, id uuid.UUID) (bool, error) {
	_, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check patient: %w", err)
	}
	return true, nil
}

// PatientIDByUser resolves the patient profile belonging to a user account.
// The booking module uses it to scope records to the calling patient.
func (s *Service) PatientIDByUser(ctx context.Context, userID string) (uuid.UUID, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return uuid.Nil, apierr.ErrNotFound
	}
	p, err := s.repo.GetByUserID(ctx, uid)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, apierr.ErrNotFound
		}
		return uuid.Nil, fmt.Errorf("get patient by user: %w", err)
	}
	return p.ID, nil
}

// List returns profiles page by page.
func (s *Service) List(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	return s.repo.List(ctx, limit, offset)
}

// Update applies a partial profile update.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in UpdateInput) (*Patient, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	fields := apierr.Fields{}
	if in.Gender != nil {
		if !validGender(*in.Gender) {
			fields["gender"] = fmt.Sprintf("%s is not a valid gender", *in.Gender)
		} else {
			p.Gender = *in.Gender
		}
	}
	if in.Status != nil {
		if !validStatus(*in.Status) {
			fields["status"] = fmt.Sprintf("%s is not a valid status", *in.Status)
		} else {
			p.Status = *in.Status
		}
	}
	if in.Type != nil {
		if !validType(*in.Type) {
			fields["type"] = fmt.Sprintf("%s is not a valid type", *in.Type)
		} else {
			p.Type = *in.Type
		}
	}
	if len(fields) > 0 {
		return nil, fields
	}

	if in.BirthDate != nil {
		p.BirthDate = in.BirthDate
	}
	if in.Region != nil {
		p.Region = *in.Region
	}
	if in.City != nil {
		p.City = *in.City
	}
	if in.Bonus != nil {
		p.Bonus = *in.Bonus
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("update patient: %w", err)
	}
	return p, nil
}

// Delete removes a profile and everything hanging off it.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete patient: %w", err)
	}
	return nil
}

// CreatePassport records identity-document details for a patient.
func (s *Service) CreatePassport(ctx context.Context, in PassportInput) (*PassportData, error) {
	fields := apierr.Fields{}
	if in.PatientID == uuid.Nil {
		fields["patient_id"] = "this field is required"
	}
	if in.Series == "" {
		fields["series"] = "this field is required"
	}
	if in.Number == "" {
		fields["number"] = "this field is required"
	}
	if len(fields) > 0 {
		return nil, fields
	}

	if _, err := s.Get(ctx, in.PatientID); err != nil {
		if errors.Is(err, apierr.ErrNotFound) {
			return nil, apierr.NotFoundf("patient %s does not exist", in.PatientID)
		}
		return nil, err
	}

	pd := &PassportData{
		ID:        uuid.New(),
		PatientID: in.PatientID,
		Series:    in.Series,
		Number:    in.Number,
		IssueDate: in.IssueDate,
		IssuedBy:  in.IssuedBy,
	}
	if err := s.passports.Create(ctx, pd); err != nil {
		return nil, fmt.Errorf("create passport data: %w", err)
	}
	return pd, nil
}

// GetPassport returns one passport-data row.
func (s *Service) GetPassport(ctx context.Context, id uuid.UUID) (*PassportData, error) {
	pd, err := s.passports.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apierr.ErrNotFound
		}
		return nil, fmt.Errorf("get passport data: %w", err)
	}
	return pd, nil
}

// ListPassports returns the passport rows of one patient.
func (s *Service) ListPassports(ctx context.Context, patientID uuid.UUID) ([]*PassportData, error) {
	return s.passports.ListByPatient(ctx, patientID)
}

// UpdatePassport applies a partial passport-data update.
func (s *Service) UpdatePassport(ctx context.Context, id uuid.UUID, in PassportUpdateInput) (*PassportData, error) {
	pd, err := s.GetPassport(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Series != nil {
		pd.Series = *in.Series
	}
	if in.Number != nil {
		pd.Number = *in.Number
	}
	if in.IssueDate != nil {
		pd.IssueDate = in.IssueDate
	}
	if in.IssuedBy != nil {
		pd.IssuedBy = *in.IssuedBy
	}
	if err := s.passports.Update(ctx, pd); err != nil {
		return nil, fmt.Errorf("update passport data: %w", err)
	}
	return pd, nil
}

// DeletePassport removes one passport-data row.
func (s *Service) DeletePassport(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetPassport(ctx, id); err != nil {
		return err
	}
	if err := s.passports.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete passport data: %w", err)
	}
	return nil
}
