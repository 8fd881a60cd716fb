package notes

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/sanatorium/sanatorium/internal/platform/apierr"
	"github.com/sanatorium/sanatorium/internal/platform/auth"
)

type memNoteRepo struct {
	notes map[uuid.UUID]*Note
}

func (r *memNoteRepo) Create(ctx context.Context, n *Note) error {
	r.notes[n.ID] = n
	return nil
}

func (r *memNoteRepo) GetByID(ctx context.Context, id uuid.UUID) (*Note, error) {
	n, ok := r.notes[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return n, nil
}

func (r *memNoteRepo) Update(ctx context.Context, n *Note) error {
	r.notes[n.ID] = n
	return nil
}

func (r *memNoteRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.notes, id)
	return nil
}

func (r *memNoteRepo) List(ctx context.Context, patientID *uuid.UUID, limit, offset int) ([]*Note, int, error) {
	var items []*Note
	for _, n := range r.notes {
		if patientID == nil || n.PatientID == *patientID {
			items = append(items, n)
		}
	}
	return items, len(items), nil
}

type memTaskRepo struct {
	tasks map[uuid.UUID]*Task
}

func (r *memTaskRepo) Create(ctx context.Context, t *Task) error {
	r.tasks[t.ID] = t
	return nil
}

func (r *memTaskRepo) GetByID(ctx context.Context, id uuid.UUID) (*Task, error) {
	t, ok := r.tasks[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return t, nil
}

func (r *memTaskRepo) ListByNote(ctx context.Context, noteID uuid.UUID) ([]*Task, error) {
	var items []*Task
	for _, t := range r.tasks {
		if t.NoteID == noteID {
			items = append(items, t)
		}
	}
	return items, nil
}

func (r *memTaskRepo) Update(ctx context.Context, t *Task) error {
	r.tasks[t.ID] = t
	return nil
}

func (r *memTaskRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.tasks, id)
	return nil
}

type memPatientDir struct {
	byUser   map[string]uuid.UUID
	patients map[uuid.UUID]bool
}

func (d *memPatientDir) PatientIDByUser(ctx context.Context, userID string) (uuid.UUID, error) {
	id, ok := d.byUser[userID]
	if !ok {
		return uuid.Nil, apierr.ErrNotFound
	}
	return id, nil
}

func (d *memPatientDir) PatientExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return d.patients[id], nil
}

type memStaffDir struct {
	byUser map[string]uuid.UUID
}

func (d *memStaffDir) MedPersonaIDByUser(ctx context.Context, userID string) (uuid.UUID, error) {
	id, ok := d.byUser[userID]
	if !ok {
		return uuid.Nil, apierr.ErrNotFound
	}
	return id, nil
}

type noteFixture struct {
	svc      *Service
	notes    *memNoteRepo
	tasks    *memTaskRepo
	patients *memPatientDir
	staff    *memStaffDir
}

func newNoteFixture() *noteFixture {
	notes := &memNoteRepo{notes: map[uuid.UUID]*Note{}}
	tasks := &memTaskRepo{tasks: map[uuid.UUID]*Task{}}
	patients := &memPatientDir{byUser: map[string]uuid.UUID{}, patients: map[uuid.UUID]bool{}}
	staff := &memStaffDir{byUser: map[string]uuid.UUID{}}
	return &noteFixture{
		svc:      NewService(notes, tasks, patients, staff),
		notes:    notes,
		tasks:    tasks,
		patients: patients,
		staff:    staff,
	}
}

func (f *noteFixture) addPatient(userID string) uuid.UUID {
	id := uuid.New()
	f.patients.byUser[userID] = id
	f.patients.patients[id] = true
	return id
}

func (f *noteFixture) addDoctor(userID string) uuid.UUID {
	id := uuid.New()
	f.staff.byUser[userID] = id
	return id
}

func asRole(userID string, role auth.Role) context.Context {
	return auth.ContextWithPrincipal(context.Background(), auth.Principal{UserID: userID, Role: role})
}

func TestCreateNoteDoctorOnly(t *testing.T) {
	f := newNoteFixture()
	patientID := f.addPatient("p1")
	doctorID := f.addDoctor("d1")

	in := NoteInput{PatientID: patientID, Title: "intake", Text: "arrived with back pain"}

	if _, err := f.svc.Create(asRole("p1", auth.RolePatient), in); !errors.Is(err, apierr.ErrForbidden) {
		t.Fatalf("patient create: got %v, want ErrForbidden", err)
	}

	n, err := f.svc.Create(asRole("d1", auth.RoleDoctor), in)
	if err != nil {
		t.Fatalf("doctor create: %v", err)
	}
	if n.MedPersonaID != doctorID {
		t.Errorf("author = %s, want %s", n.MedPersonaID, doctorID)
	}
}

func TestCreateNoteUnknownPatient(t *testing.T) {
	f := newNoteFixture()
	f.addDoctor("d1")

	_, err := f.svc.Create(asRole("d1", auth.RoleDoctor), NoteInput{
		PatientID: uuid.New(), Text: "x",
	})
	if !errors.Is(err, apierr.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestPatientSeesOnlyOwnNotes(t *testing.T) {
	f := newNoteFixture()
	mineID := f.addPatient("mine")
	otherID := f.addPatient("other")
	doctorID := f.addDoctor("d1")

	mine := &Note{ID: uuid.New(), PatientID: mineID, MedPersonaID: doctorID, Text: "a"}
	theirs := &Note{ID: uuid.New(), PatientID: otherID, MedPersonaID: doctorID, Text: "b"}
	f.notes.notes[mine.ID] = mine
	f.notes.notes[theirs.ID] = theirs

	items, total, err := f.svc.List(asRole("mine", auth.RolePatient), 20, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 1 || len(items) != 1 || items[0].ID != mine.ID {
		t.Errorf("got %d items (total %d), want only own note", len(items), total)
	}

	if _, err := f.svc.Get(asRole("mine", auth.RolePatient), theirs.ID); !errors.Is(err, apierr.ErrNotFound) {
		t.Fatalf("cross-patient get: got %v, want ErrNotFound", err)
	}

	_, total, err = f.svc.List(asRole("d1", auth.RoleDoctor), 20, 0)
	if err != nil || total != 2 {
		t.Fatalf("doctor list: total = %d, %v; want 2", total, err)
	}
}

func TestListNotesPatientWithoutProfile(t *testing.T) {
	f := newNoteFixture()
	ownerID := f.addPatient("owner")
	doctorID := f.addDoctor("d1")
	n := &Note{ID: uuid.New(), PatientID: ownerID, MedPersonaID: doctorID, Text: "a"}
	f.notes.notes[n.ID] = n

	items, total, err := f.svc.List(asRole("no-profile", auth.RolePatient), 20, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 0 || len(items) != 0 {
		t.Errorf("got %d items (total %d), want empty", len(items), total)
	}
}

func TestTaskLifecycle(t *testing.T) {
	f := newNoteFixture()
	patientID := f.addPatient("p1")
	f.addDoctor("d1")
	ctx := asRole("d1", auth.RoleDoctor)

	n, err := f.svc.Create(ctx, NoteInput{PatientID: patientID, Text: "follow up"})
	if err != nil {
		t.Fatalf("create note: %v", err)
	}

	if _, err := f.svc.CreateTask(ctx, n.ID, TaskInput{}); err == nil {
		t.Fatal("empty task text should be rejected")
	}

	task, err := f.svc.CreateTask(ctx, n.ID, TaskInput{Text: "schedule x-ray"})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	done := true
	updated, err := f.svc.UpdateTask(ctx, n.ID, task.ID, TaskUpdateInput{Done: &done})
	if err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}
	if !updated.Done {
		t.Error("task should be done")
	}

	otherNote, err := f.svc.Create(ctx, NoteInput{PatientID: patientID, Text: "other"})
	if err != nil {
		t.Fatalf("create second note: %v", err)
	}
	if _, err := f.svc.GetTask(ctx, otherNote.ID, task.ID); !errors.Is(err, apierr.ErrNotFound) {
		t.Fatalf("task under wrong note: got %v, want ErrNotFound", err)
	}

	if err := f.svc.DeleteTask(ctx, n.ID, task.ID); err != nil {
		t.Fatalf("DeleteTask: %v", err)
	}
	if _, err := f.svc.GetTask(ctx, n.ID, task.ID); !errors.Is(err, apierr.ErrNotFound) {
		t.Fatalf("after delete: got %v, want ErrNotFound", err)
	}
}
