package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/sanatorium/sanatorium/internal/platform/apierr"
)

type Catalog struct {
	sanatoriums SanatoriumRepository
	services    ServiceRepository
	subKinds    SubKindRepository
	timetables  TimetableRepository
}

func NewCatalog(sanatoriums SanatoriumRepository, services ServiceRepository,
	subKinds SubKindRepository, timetables TimetableRepository) *Catalog {
	return &Catalog{
		sanatoriums: sanatoriums,
		services:    services,
		subKinds:    subKinds,
		timetables:  timetables,
	}
}

func notFoundOn(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apierr.ErrNotFound
	}
	return err
}

// -- Sanatoriums --

func (c *Catalog) CreateSanatorium(ctx context.Context, in SanatoriumInput) (*Sanatorium, error) {
	if in.Name == "" {
		return nil, apierr.Fields{"name": "this field is required"}
	}
	s := &Sanatorium{ID: uuid.New(), Name: in.Name, Email: in.Email, Tel: in.Tel, Address: in.Address}
	if err := c.sanatoriums.Create(ctx, s); err != nil {
		return nil, fmt.Errorf("create sanatorium: %w", err)
	}
	return s, nil
}

func (c *Catalog) GetSanatorium(ctx context.Context, id uuid.UUID) (*Sanatorium, error) {
	s, err := c.sanatoriums.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOn(err)
	}
	return s, nil
}

func (c *Catalog) ListSanatoriums(ctx context.Context, limit, offset int) ([]*Sanatorium, int, error) {
	return c.sanatoriums.List(ctx, limit, offset)
}

func (c *Catalog) UpdateSanatorium(ctx context.Context, id uuid.UUID, in SanatoriumInput) (*Sanatorium, error) {
	s, err := c.GetSanatorium(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != "" {
		s.Name = in.Name
	}
	if in.Email != "" {
		s.Email = in.Email
	}
	if in.Tel != "" {
		s.Tel = in.Tel
	}
	if in.Address != "" {
		s.Address = in.Address
	}
	if err := c.sanatoriums.Update(ctx, s); err != nil {
		return nil, fmt.Errorf("update sanatorium: %w", err)
	}
	return s, nil
}

func (c *Catalog) DeleteSanatorium(ctx context.Context, id uuid.UUID) error {
	if _, err := c.GetSanatorium(ctx, id); err != nil {
		return err
	}
	return c.sanatoriums.Delete(ctx, id)
}

// -- Services --

func (c *Catalog) CreateService(ctx context.Context, in ServiceInput) (*Service, error) {
	if in.Name == "" {
		return nil, apierr.Fields{"name": "this field is required"}
	}
	if in.SanatoriumID != nil {
		if _, err := c.GetSanatorium(ctx, *in.SanatoriumID); err != nil {
			if errors.Is(err, apierr.ErrNotFound) {
				return nil, apierr.NotFoundf("sanatorium %s does not exist", *in.SanatoriumID)
			}
			return nil, err
		}
	}
	s := &Service{ID: uuid.New(), Name: in.Name, Cost: in.Cost, SanatoriumID: in.SanatoriumID}
	if err := c.services.Create(ctx, s); err != nil {
		return nil, fmt.Errorf("create service: %w", err)
	}
	return s, nil
}

func (c *Catalog) GetService(ctx context.Context, id uuid.UUID) (*Service, error) {
	s, err := c.services.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOn(err)
	}
	return s, nil
}

// ServiceExists reports whether a catalog service with the given id exists.
// The booking and staff modules use it to validate references.
func (c *Catalog) ServiceExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return c.services.Exists(ctx, id)
}

// ServiceIDsOfType returns the ids of every service refined by the given
// sub-kind. Booking filters resolve service_type through this.
func (c *Catalog) ServiceIDsOfType(ctx context.Context, t ServiceType) ([]uuid.UUID, error) {
	return c.services.IDsOfType(ctx, t)
}

// ResolveType reports which sub-kind a service belongs to.
func (c *Catalog) ResolveType(ctx context.Context, id uuid.UUID) (ServiceType, error) {
	return c.services.ResolveType(ctx, id)
}

func (c *Catalog) ListServices(ctx context.Context, limit, offset int) ([]*Service, int, error) {
	return c.services.List(ctx, limit, offset)
}

func (c *Catalog) UpdateService(ctx context.Context, id uuid.UUID, in ServiceUpdateInput) (*Service, error) {
	s, err := c.GetService(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		if *in.Name == "" {
			return nil, apierr.Fields{"name": "this field is required"}
		}
		s.Name = *in.Name
	}
	if in.Cost != nil {
		s.Cost = *in.Cost
	}
	if in.SanatoriumID != nil {
		if _, err := c.GetSanatorium(ctx, *in.SanatoriumID); err != nil {
			if errors.Is(err, apierr.ErrNotFound) {
				return nil, apierr.NotFoundf("sanatorium %s does not exist", *in.SanatoriumID)
			}
			return nil, err
		}
		s.SanatoriumID = in.SanatoriumID
	}
	if err := c.services.Update(ctx, s); err != nil {
		return nil, fmt.Errorf("update service: %w", err)
	}
	return s, nil
}

func (c *Catalog) DeleteService(ctx context.Context, id uuid.UUID) error {
	if _, err := c.GetService(ctx, id); err != nil {
		return err
	}
	return c.services.Delete(ctx, id)
}

// requireUnrefined enforces the one-sub-kind-per-service rule before a
// refinement row is created.
func (c *Catalog) requireUnrefined(ctx context.Context, serviceID uuid.UUID) error {
	if serviceID == uuid.Nil {
		return apierr.Fields{"service_id": "this field is required"}
	}
	exists, err := c.services.Exists(ctx, serviceID)
	if err != nil {
		return fmt.Errorf("check service: %w", err)
	}
	if !exists {
		return apierr.NotFoundf("service %s does not exist", serviceID)
	}
	t, err := c.services.ResolveType(ctx, serviceID)
	if err != nil {
		return fmt.Errorf("resolve service type: %w", err)
	}
	if t != "" {
		return apierr.Fields{"service_id": fmt.Sprintf("service %s is already a %s", serviceID, t)}
	}
	return nil
}

// -- Sub-kinds --

func (c *Catalog) CreateProcedure(ctx context.Context, in ProcedureInput) (*Procedure, error) {
	if err := c.requireUnrefined(ctx, in.ServiceID); err != nil {
		return nil, err
	}
	p := &Procedure{ID: uuid.New(), ServiceID: in.ServiceID, DurationMinutes: in.DurationMinutes, Office: in.Office}
	if err := c.subKinds.CreateProcedure(ctx, p); err != nil {
		return nil, fmt.Errorf("create procedure: %w", err)
	}
	return p, nil
}

func (c *Catalog) CreateEvent(ctx context.Context, in EventInput) (*Event, error) {
	if err := c.requireUnrefined(ctx, in.ServiceID); err != nil {
		return nil, err
	}
	e := &Event{ID: uuid.New(), ServiceID: in.ServiceID, Date: in.Date, Location: in.Location}
	if err := c.subKinds.CreateEvent(ctx, e); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	return e, nil
}

func (c *Catalog) CreateSurvey(ctx context.Context, in SurveyInput) (*Survey, error) {
	if err := c.requireUnrefined(ctx, in.ServiceID); err != nil {
		return nil, err
	}
	s := &Survey{ID: uuid.New(), ServiceID: in.ServiceID, Laboratory: in.Laboratory}
	if err := c.subKinds.CreateSurvey(ctx, s); err != nil {
		return nil, fmt.Errorf("create survey: %w", err)
	}
	return s, nil
}

func (c *Catalog) CreateSpeciality(ctx context.Context, in SpecialityInput) (*Speciality, error) {
	if in.Name == "" {
		return nil, apierr.Fields{"name": "this field is required"}
	}
	if err := c.requireUnrefined(ctx, in.ServiceID); err != nil {
		return nil, err
	}
	s := &Speciality{ID: uuid.New(), ServiceID: in.ServiceID, Name: in.Name}
	if err := c.subKinds.CreateSpeciality(ctx, s); err != nil {
		return nil, fmt.Errorf("create speciality: %w", err)
	}
	return s, nil
}

func (c *Catalog) GetProcedure(ctx context.Context, id uuid.UUID) (*Procedure, error) {
	p, err := c.subKinds.GetProcedure(ctx, id)
	if err != nil {
		return nil, notFoundOn(err)
	}
	return p, nil
}

func (c *Catalog) GetEvent(ctx context.Context, id uuid.UUID) (*Event, error) {
	e, err := c.subKinds.GetEvent(ctx, id)
	if err != nil {
		return nil, notFoundOn(err)
	}
	return e, nil
}

func (c *Catalog) GetSurvey(ctx context.Context, id uuid.UUID) (*Survey, error) {
	s, err := c.subKinds.GetSurvey(ctx, id)
	if err != nil {
		return nil, notFoundOn(err)
	}
	return s, nil
}

func (c *Catalog) GetSpeciality(ctx context.Context, id uuid.UUID) (*Speciality, error) {
	s, err := c.subKinds.GetSpeciality(ctx, id)
	if err != nil {
		return nil, notFoundOn(err)
	}
	return s, nil
}

func (c *Catalog) ListProcedures(ctx context.Context, limit, offset int) ([]*Procedure, int, error) {
	return c.subKinds.ListProcedures(ctx, limit, offset)
}

func (c *Catalog) ListEvents(ctx context.Context, limit, offset int) ([]*Event, int, error) {
	return c.subKinds.ListEvents(ctx, limit, offset)
}

func (c *Catalog) ListSurveys(ctx context.Context, limit, offset int) ([]*Survey, int, error) {
	return c.subKinds.ListSurveys(ctx, limit, offset)
}

func (c *Catalog) ListSpecialities(ctx context.Context, limit, offset int) ([]*Speciality, int, error) {
	return c.subKinds.ListSpecialities(ctx, limit, offset)
}

func (c *Catalog) DeleteProcedure(ctx context.Context, id uuid.UUID) error {
	if _, err := c.GetProcedure(ctx, id); err != nil {
		return err
	}
	return c.subKinds.DeleteProcedure(ctx, id)
}

func (c *Catalog) DeleteEvent(ctx context.Context, id uuid.UUID) error {
	if _, err := c.GetEvent(ctx, id); err != nil {
		return err
	}
	return c.subKinds.DeleteEvent(ctx, id)
}

func (c *Catalog) DeleteSurvey(ctx context.Context, id uuid.UUID) error {
	if _, err := c.GetSurvey(ctx, id); err != nil {
		return err
	}
	return c.subKinds.DeleteSurvey(ctx, id)
}

func (c *Catalog) DeleteSpeciality(ctx context.Context, id uuid.UUID) error {
	if _, err := c.GetSpeciality(ctx, id); err != nil {
		return err
	}
	return c.subKinds.DeleteSpeciality(ctx, id)
}

// -- Timetable --

func (c *Catalog) CreateTimetable(ctx context.Context, in TimetableInput) (*Timetable, error) {
	if in.ServiceID == uuid.Nil {
		return nil, apierr.Fields{"service_id": "this field is required"}
	}
	exists, err := c.services.Exists(ctx, in.ServiceID)
	if err != nil {
		return nil, fmt.Errorf("check service: %w", err)
	}
	if !exists {
		return nil, apierr.NotFoundf("service %s does not exist", in.ServiceID)
	}
	if in.DateStart != nil && in.DateEnd != nil && in.DateEnd.Before(*in.DateStart) {
		return nil, apierr.Fields{"date_end": "date_end must not precede date_start"}
	}
	t := &Timetable{ID: uuid.New(), ServiceID: in.ServiceID, DateStart: in.DateStart, DateEnd: in.DateEnd, Office: in.Office}
	if err := c.timetables.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("create timetable: %w", err)
	}
	return t, nil
}

func (c *Catalog) GetTimetable(ctx context.Context, id uuid.UUID) (*Timetable, error) {
	t, err := c.timetables.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOn(err)
	}
	return t, nil
}

func (c *Catalog) ListTimetables(ctx context.Context, limit, offset int) ([]*Timetable, int, error) {
	return c.timetables.List(ctx, limit, offset)
}

func (c *Catalog) DeleteTimetable(ctx context.Context, id uuid.UUID) error {
	if _, err := c.GetTimetable(ctx, id); err != nil {
		return err
	}
	return c.timetables.Delete(ctx, id)
}
