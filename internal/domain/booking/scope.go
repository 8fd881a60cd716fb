package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sanatorium/sanatorium/internal/platform/apierr"
	"github.com/sanatorium/sanatorium/internal/platform/auth"
	"github.com/sanatorium/sanatorium/internal/domain/catalog"
)

// Scope is the storage-layer predicate for one list operation: ownership
// scoping composed with the caller's filters. Repositories translate it to
// SQL; mock repositories evaluate it in memory.
type Scope struct {
	// PatientID restricts results to one patient's records. Nil means all
	// patients are visible.
	PatientID *uuid.UUID
	// DateStartFrom keeps records whose start is at or after the bound.
	DateStartFrom *time.Time
	// DateEndTo keeps records whose end is at or before the bound.
	DateEndTo *time.Time
	Done      *bool
	// ServiceIDs restricts to records attached to one of these services.
	// Only consulted when FilterByService is set; an empty set then matches
	// nothing.
	ServiceIDs      []uuid.UUID
	FilterByService bool
}

// buildScope composes the caller's visibility with the declared filters.
// Patients are always pinned to their own profile; a patient without a
// profile sees an empty listing rather than an error.
func (s *Service) buildScope(ctx context.Context, p auth.Principal, f Filter) (Scope, error) {
	scope := Scope{
		DateStartFrom: f.DateStart,
		DateEndTo:     f.DateEnd,
		Done:          f.Done,
	}

	if p.Role == auth.RolePatient {
		patientID, err := s.patients.PatientIDByUser(ctx, p.UserID)
		if err != nil {
			if errors.Is(err, apierr.ErrNotFound) {
				// No profile: pin the scope to an id no record carries so
				// the listing reads empty.
				patientID = uuid.Nil
			} else {
				return Scope{}, err
			}
		}
		scope.PatientID = &patientID
	}

	if f.ServiceType != "" {
		t := catalog.ParseServiceType(f.ServiceType)
		if t == "" {
			return Scope{}, apierr.Fields{"service_type": fmt.Sprintf("%s is not a valid service type", f.ServiceType)}
		}
		ids, err := s.catalog.ServiceIDsOfType(ctx, t)
		if err != nil {
			return Scope{}, fmt.Errorf("resolve service type: %w", err)
		}
		scope.FilterByService = true
		scope.ServiceIDs = ids
	}

	return scope, nil
}
