package notes

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/sanatorium/sanatorium/internal/platform/apierr"
	"github.com/sanatorium/sanatorium/internal/platform/auth"
)

// PatientDirectory resolves the patient profile behind a user account, so
// patients can be scoped to notes written about them.
type PatientDirectory interface {
	PatientIDByUser(ctx context.Context, userID string) (uuid.UUID, error)
	PatientExists(ctx context.Context, id uuid.UUID) (bool, error)
}

// StaffDirectory resolves the staff profile behind a user account, so notes
// are attributed to their author.
type StaffDirectory interface {
	MedPersonaIDByUser(ctx context.Context, userID string) (uuid.UUID, error)
}

type Service struct {
	notes    NoteRepository
	tasks    TaskRepository
	patients PatientDirectory
	staff    StaffDirectory
}

func NewService(notes NoteRepository, tasks TaskRepository, patients PatientDirectory, staff StaffDirectory) *Service {
	return &Service{notes: notes, tasks: tasks, patients: patients, staff: staff}
}

// Create writes a note. Doctors only; the author is resolved from the
// caller's staff profile.
func (s *Service) Create(ctx context.Context, in NoteInput) (*Note, error) {
	p, ok := auth.PrincipalFromContext(ctx)
	if !ok || p.Role != auth.RoleDoctor {
		return nil, apierr.ErrForbidden
	}

	fields := apierr.Fields{}
	if in.PatientID == uuid.Nil {
		fields["patient_id"] = "this field is required"
	}
	if in.Text == "" {
		fields["text"] = "this field is required"
	}
	if len(fields) > 0 {
		return nil, fields
	}

	if exists, err := s.patients.PatientExists(ctx, in.PatientID); err != nil {
		return nil, fmt.Errorf("check patient: %w", err)
	} else if !exists {
		return nil, apierr.NotFoundf("patient %s does not exist", in.PatientID)
	}

	authorID, err := s.staff.MedPersonaIDByUser(ctx, p.UserID)
	if err != nil {
		return nil, err
	}

	n := &Note{
		ID:           uuid.New(),
		PatientID:    in.PatientID,
		MedPersonaID: authorID,
		Title:        in.Title,
		Text:         in.Text,
	}
	if err := s.notes.Create(ctx, n); err != nil {
		return nil, fmt.Errorf("create note: %w", err)
	}
	return n, nil
}

// Get returns one note. Patients only see notes about themselves.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Note, error) {
	p, ok := auth.PrincipalFromContext(ctx)
	if !ok {
		return nil, apierr.ErrForbidden
	}
	n, err := s.notes.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apierr.ErrNotFound
		}
		return nil, fmt.Errorf("get note: %w", err)
	}
	if p.Role == auth.RolePatient {
		patientID, err := s.patients.PatientIDByUser(ctx, p.UserID)
		if err != nil || n.PatientID != patientID {
			return nil, apierr.ErrNotFound
		}
	}
	return n, nil
}

// List returns notes. Patients see only their own; staff see all.
func (s *Service) List(ctx context.Context, limit, offset int) ([]*Note, int, error) {
	p, ok := auth.PrincipalFromContext(ctx)
	if !ok {
		return nil, 0, apierr.ErrForbidden
	}
	var patientID *uuid.UUID
	if p.Role == auth.RolePatient {
		id, err := s.patients.PatientIDByUser(ctx, p.UserID)
		if err != nil {
			if errors.Is(err, apierr.ErrNotFound) {
				id = uuid.Nil
			} else {
				return nil, 0, err
			}
		}
		patientID = &id
	}
	return s.notes.List(ctx, patientID, limit, offset)
}

// Update edits a note's text. Doctors only.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in NoteUpdateInput) (*Note, error) {
	p, ok := auth.PrincipalFromContext(ctx)
	if !ok || p.Role != auth.RoleDoctor {
		return nil, apierr.ErrForbidden
	}
	n, err := s.notes.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apierr.ErrNotFound
		}
		return nil, fmt.Errorf("get note: %w", err)
	}
	if in.Title != nil {
		n.Title = *in.Title
	}
	if in.Text != nil {
		if *in.Text == "" {
			return nil, apierr.Fields{"text": "this field is required"}
		}
		n.Text = *in.Text
	}
	if err := s.notes.Update(ctx, n); err != nil {
		return nil, fmt.Errorf("update note: %w", err)
	}
	return n, nil
}

// Delete removes a note and its tasks. Doctors only.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	p, ok := auth.PrincipalFromContext(ctx)
	if !ok || p.Role != auth.RoleDoctor {
		return apierr.ErrForbidden
	}
	if _, err := s.notes.GetByID(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apierr.ErrNotFound
		}
		return fmt.Errorf("get note: %w", err)
	}
	if err := s.notes.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	return nil
}

// CreateTask attaches a follow-up item to a note. Doctors only; the note
// must be visible to the caller.
func (s *Service) CreateTask(ctx context.Context, noteID uuid.UUID, in TaskInput) (*Task, error) {
	p, ok := auth.PrincipalFromContext(ctx)
	if !ok || p.Role != auth.RoleDoctor {
		return nil, apierr.ErrForbidden
	}
	if in.Text == "" {
		return nil, apierr.Fields{"text": "this field is required"}
	}
	if _, err := s.Get(ctx, noteID); err != nil {
		return nil, err
	}
	t := &Task{ID: uuid.New(), NoteID: noteID, Text: in.Text}
	if err := s.tasks.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	return t, nil
}

// ListTasks returns the tasks of one note, after the note's own visibility
// check.
func (s *Service) ListTasks(ctx context.Context, noteID uuid.UUID) ([]*Task, error) {
	if _, err := s.Get(ctx, noteID); err != nil {
		return nil, err
	}
	return s.tasks.ListByNote(ctx, noteID)
}

func (s *Service) getTask(ctx context.Context, noteID, taskID uuid.UUID) (*Task, error) {
	if _, err := s.Get(ctx, noteID); err != nil {
		return nil, err
	}
	t, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apierr.ErrNotFound
		}
		return nil, fmt.Errorf("get task: %w", err)
	}
	if t.NoteID != noteID {
		return nil, apierr.ErrNotFound
	}
	return t, nil
}

// GetTask returns one task under a note.
func (s *Service) GetTask(ctx context.Context, noteID, taskID uuid.UUID) (*Task, error) {
	return s.getTask(ctx, noteID, taskID)
}

// UpdateTask edits or completes a task. Doctors only.
func (s *Service) UpdateTask(ctx context.Context, noteID, taskID uuid.UUID, in TaskUpdateInput) (*Task, error) {
	p, ok := auth.PrincipalFromContext(ctx)
	if !ok || p.Role != auth.RoleDoctor {
		return nil, apierr.ErrForbidden
	}
	t, err := s.getTask(ctx, noteID, taskID)
	if err != nil {
		return nil, err
	}
	if in.Text != nil {
		if *in.Text == "" {
			return nil, apierr.Fields{"text": "this field is required"}
		}
		t.Text = *in.Text
	}
	if in.Done != nil {
		t.Done = *in.Done
	}
	if err := s.tasks.Update(ctx, t); err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	return t, nil
}

// DeleteTask removes a task. Doctors only.
func (s *Service) DeleteTask(ctx context.Context, noteID, taskID uuid.UUID) error {
	p, ok := auth.PrincipalFromContext(ctx)
	if !ok || p.Role != auth.RoleDoctor {
		return apierr.ErrForbidden
	}
	if _, err := s.getTask(ctx, noteID, taskID); err != nil {
		return err
	}
	if err := s.tasks.Delete(ctx, taskID); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}
