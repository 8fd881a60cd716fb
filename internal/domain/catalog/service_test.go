package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/sanatorium/sanatorium/internal/platform/apierr"
)

type memCatalogStore struct {
	sanatoriums  map[uuid.UUID]*Sanatorium
	services     map[uuid.UUID]*Service
	procedures   map[uuid.UUID]*Procedure
	events       map[uuid.UUID]*Event
	surveys      map[uuid.UUID]*Survey
	specialities map[uuid.UUID]*Speciality
	timetables   map[uuid.UUID]*Timetable
}

func newMemCatalogStore() *memCatalogStore {
	return &memCatalogStore{
		sanatoriums:  map[uuid.UUID]*Sanatorium{},
		services:     map[uuid.UUID]*Service{},
		procedures:   map[uuid.UUID]*Procedure{},
		events:       map[uuid.UUID]*Event{},
		surveys:      map[uuid.UUID]*Survey{},
		specialities: map[uuid.UUID]*Speciality{},
		timetables:   map[uuid.UUID]*Timetable{},
	}
}

type memSanatoriumRepo struct{ s *memCatalogStore }

func (r *memSanatoriumRepo) Create(ctx context.Context, s *Sanatorium) error {
	r.s.sanatoriums[s.ID] = s
	return nil
}
func (r *memSanatoriumRepo) GetByID(ctx context.Context, id uuid.UUID) (*Sanatorium, error) {
	s, ok := r.s.sanatoriums[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return s, nil
}
func (r *memSanatoriumRepo) Update(ctx context.Context, s *Sanatorium) error {
	r.s.sanatoriums[s.ID] = s
	return nil
}
func (r *memSanatoriumRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.s.sanatoriums, id)
	return nil
}
func (r *memSanatoriumRepo) List(ctx context.Context, limit, offset int) ([]*Sanatorium, int, error) {
	var items []*Sanatorium
	for _, s := range r.s.sanatoriums {
		items = append(items, s)
	}
	return items, len(items), nil
}

type memServiceRepo struct{ s *memCatalogStore }

func (r *memServiceRepo) Create(ctx context.Context, s *Service) error {
	r.s.services[s.ID] = s
	return nil
}
func (r *memServiceRepo) GetByID(ctx context.Context, id uuid.UUID) (*Service, error) {
	s, ok := r.s.services[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return s, nil
}
func (r *memServiceRepo) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	_, ok := r.s.services[id]
	return ok, nil
}
func (r *memServiceRepo) Update(ctx context.Context, s *Service) error {
	r.s.services[s.ID] = s
	return nil
}
func (r *memServiceRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.s.services, id)
	return nil
}
func (r *memServiceRepo) List(ctx context.Context, limit, offset int) ([]*Service, int, error) {
	var items []*Service
	for _, s := range r.s.services {
		items = append(items, s)
	}
	return items, len(items), nil
}
func (r *memServiceRepo) IDsOfType(ctx context.Context, t ServiceType) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	switch t {
	case TypeProcedure:
		for _, p := range r.s.procedures {
			ids = append(ids, p.ServiceID)
		}
	case TypeEvent:
		for _, e := range r.s.events {
			ids = append(ids, e.ServiceID)
		}
	case TypeSurvey:
		for _, s := range r.s.surveys {
			ids = append(ids, s.ServiceID)
		}
	case TypeSpeciality:
		for _, s := range r.s.specialities {
			ids = append(ids, s.ServiceID)
		}
	}
	return ids, nil
}
func (r *memServiceRepo) ResolveType(ctx context.Context, id uuid.UUID) (ServiceType, error) {
	for _, p := range r.s.procedures {
		if p.ServiceID == id {
			return TypeProcedure, nil
		}
	}
	for _, e := range r.s.events {
		if e.ServiceID == id {
			return TypeEvent, nil
		}
	}
	for _, s := range r.s.surveys {
		if s.ServiceID == id {
			return TypeSurvey, nil
		}
	}
	for _, s := range r.s.specialities {
		if s.ServiceID == id {
			return TypeSpeciality, nil
		}
	}
	return "", nil
}

type memSubKindRepo struct{ s *memCatalogStore }

func (r *memSubKindRepo) CreateProcedure(ctx context.Context, p *Procedure) error {
	r.s.procedures[p.ID] = p
	return nil
}
func (r *memSubKindRepo) CreateEvent(ctx context.Context, e *Event) error {
	r.s.events[e.ID] = e
	return nil
}
func (r *memSubKindRepo) CreateSurvey(ctx context.Context, s *Survey) error {
	r.s.surveys[s.ID] = s
	return nil
}
func (r *memSubKindRepo) CreateSpeciality(ctx context.Context, s *Speciality) error {
	r.s.specialities[s.ID] = s
	return nil
}
func (r *memSubKindRepo) GetProcedure(ctx context.Context, id uuid.UUID) (*Procedure, error) {
	p, ok := r.s.procedures[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return p, nil
}
func (r *memSubKindRepo) GetEvent(ctx context.Context, id uuid.UUID) (*Event, error) {
	e, ok := r.s.events[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return e, nil
}
func (r *memSubKindRepo) GetSurvey(ctx context.Context, id uuid.UUID) (*Survey, error) {
	s, ok := r.s.surveys[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return s, nil
}
func (r *memSubKindRepo) GetSpeciality(ctx context.Context, id uuid.UUID) (*Speciality, error) {
	s, ok := r.s.specialities[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return s, nil
}
func (r *memSubKindRepo) ListProcedures(ctx context.Context, limit, offset int) ([]*Procedure, int, error) {
	var items []*Procedure
	for _, p := range r.s.procedures {
		items = append(items, p)
	}
	return items, len(items), nil
}
func (r *memSubKindRepo) ListEvents(ctx context.Context, limit, offset int) ([]*Event, int, error) {
	var items []*Event
	for _, e := range r.s.events {
		items = append(items, e)
	}
	return items, len(items), nil
}
func (r *memSubKindRepo) ListSurveys(ctx context.Context, limit, offset int) ([]*Survey, int, error) {
	var items []*Survey
	for _, s := range r.s.surveys {
		items = append(items, s)
	}
	return items, len(items), nil
}
func (r *memSubKindRepo) ListSpecialities(ctx context.Context, limit, offset int) ([]*Speciality, int, error) {
	var items []*Speciality
	for _, s := range r.s.specialities {
		items = append(items, s)
	}
	return items, len(items), nil
}
func (r *memSubKindRepo) DeleteProcedure(ctx context.Context, id uuid.UUID) error {
	delete(r.s.procedures, id)
	return nil
}
func (r *memSubKindRepo) DeleteEvent(ctx context.Context, id uuid.UUID) error {
	delete(r.s.events, id)
	return nil
}
func (r *memSubKindRepo) DeleteSurvey(ctx context.Context, id uuid.UUID) error {
	delete(r.s.surveys, id)
	return nil
}
func (r *memSubKindRepo) DeleteSpeciality(ctx context.Context, id uuid.UUID) error {
	delete(r.s.specialities, id)
	return nil
}

type memTimetableRepo struct{ s *memCatalogStore }

func (r *memTimetableRepo) Create(ctx context.Context, t *Timetable) error {
	r.s.timetables[t.ID] = t
	return nil
}
func (r *memTimetableRepo) GetByID(ctx context.Context, id uuid.UUID) (*Timetable, error) {
	t, ok := r.s.timetables[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return t, nil
}
func (r *memTimetableRepo) List(ctx context.Context, limit, offset int) ([]*Timetable, int, error) {
	var items []*Timetable
	for _, t := range r.s.timetables {
		items = append(items, t)
	}
	return items, len(items), nil
}
func (r *memTimetableRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.s.timetables, id)
	return nil
}

func newTestCatalog() (*Catalog, *memCatalogStore) {
	store := newMemCatalogStore()
	c := NewCatalog(
		&memSanatoriumRepo{s: store},
		&memServiceRepo{s: store},
		&memSubKindRepo{s: store},
		&memTimetableRepo{s: store},
	)
	return c, store
}

func TestParseServiceType(t *testing.T) {
	cases := []struct {
		in   string
		want ServiceType
	}{
		{"procedure", TypeProcedure},
		{"Procedure", TypeProcedure},
		{"EVENT", TypeEvent},
		{"survey", TypeSurvey},
		{"Speciality", TypeSpeciality},
		{"banquet", ""},
		{"", ""},
	}
	for _, tc := range cases {
		if got := ParseServiceType(tc.in); got != tc.want {
			t.Errorf("ParseServiceType(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCreateServiceUnknownSanatorium(t *testing.T) {
	c, _ := newTestCatalog()
	missing := uuid.New()

	_, err := c.CreateService(context.Background(), ServiceInput{Name: "massage", SanatoriumID: &missing})
	if !errors.Is(err, apierr.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestSubKindExclusivity(t *testing.T) {
	c, _ := newTestCatalog()
	svc, err := c.CreateService(context.Background(), ServiceInput{Name: "massage"})
	if err != nil {
		t.Fatalf("CreateService: %v", err)
	}

	if _, err := c.CreateProcedure(context.Background(), ProcedureInput{ServiceID: svc.ID, DurationMinutes: 30}); err != nil {
		t.Fatalf("CreateProcedure: %v", err)
	}

	_, err = c.CreateEvent(context.Background(), EventInput{ServiceID: svc.ID})
	fields, ok := apierr.AsFields(err)
	if !ok {
		t.Fatalf("second refinement: got %v, want field error", err)
	}
	want := "service " + svc.ID.String() + " is already a procedure"
	if fields["service_id"] != want {
		t.Errorf("service_id = %q, want %q", fields["service_id"], want)
	}
}

func TestSubKindUnknownService(t *testing.T) {
	c, _ := newTestCatalog()

	_, err := c.CreateProcedure(context.Background(), ProcedureInput{ServiceID: uuid.New()})
	if !errors.Is(err, apierr.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
	if _, err := c.CreateProcedure(context.Background(), ProcedureInput{}); err == nil {
		t.Fatal("missing service_id should be rejected")
	}
}

func TestResolveAndFilterByType(t *testing.T) {
	c, _ := newTestCatalog()
	ctx := context.Background()

	proc, _ := c.CreateService(ctx, ServiceInput{Name: "mud bath"})
	evt, _ := c.CreateService(ctx, ServiceInput{Name: "concert"})
	if _, err := c.CreateProcedure(ctx, ProcedureInput{ServiceID: proc.ID}); err != nil {
		t.Fatalf("CreateProcedure: %v", err)
	}
	if _, err := c.CreateEvent(ctx, EventInput{ServiceID: evt.ID}); err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}

	got, err := c.ResolveType(ctx, proc.ID)
	if err != nil || got != TypeProcedure {
		t.Errorf("ResolveType = %q, %v; want procedure", got, err)
	}

	ids, err := c.ServiceIDsOfType(ctx, TypeProcedure)
	if err != nil {
		t.Fatalf("ServiceIDsOfType: %v", err)
	}
	if len(ids) != 1 || ids[0] != proc.ID {
		t.Errorf("ids = %v, want only %s", ids, proc.ID)
	}
}

func TestCreateTimetableValidation(t *testing.T) {
	c, _ := newTestCatalog()
	ctx := context.Background()
	svc, err := c.CreateService(ctx, ServiceInput{Name: "pool"})
	if err != nil {
		t.Fatalf("CreateService: %v", err)
	}

	start := time.Date(2026, 9, 2, 9, 0, 0, 0, time.UTC)
	end := start.Add(-time.Hour)
	_, err = c.CreateTimetable(ctx, TimetableInput{ServiceID: svc.ID, DateStart: &start, DateEnd: &end})
	fields, ok := apierr.AsFields(err)
	if !ok || fields["date_end"] == "" {
		t.Fatalf("inverted window: got %v, want field error on date_end", err)
	}

	end = start.Add(8 * time.Hour)
	tt, err := c.CreateTimetable(ctx, TimetableInput{ServiceID: svc.ID, DateStart: &start, DateEnd: &end})
	if err != nil {
		t.Fatalf("CreateTimetable: %v", err)
	}
	if tt.ServiceID != svc.ID {
		t.Errorf("service_id = %s, want %s", tt.ServiceID, svc.ID)
	}
}
