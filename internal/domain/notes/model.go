package notes

import (
	"time"

	"github.com/google/uuid"
)

// Note is a medical-card entry a staff member keeps about a patient.
type Note struct {
	ID           uuid.UUID `json:"id"`
	PatientID    uuid.UUID `json:"patient_id"`
	MedPersonaID uuid.UUID `json:"medpersona_id"`
	Title        string    `json:"title"`
	Text         string    `json:"text"`
	CreatedAt    time.Time `json:"created_at"`
}

// Task is a follow-up item attached to a note.
type Task struct {
	ID     uuid.UUID `json:"id"`
	NoteID uuid.UUID `json:"note_id"`
	Text   string    `json:"text"`
	Done   bool      `json:"done"`
}

// NoteInput is the payload for note creation.
type NoteInput struct {
	PatientID uuid.UUID `json:"patient_id"`
	Title     string    `json:"title"`
	Text      string    `json:"text"`
}

// NoteUpdateInput carries a partial note update.
type NoteUpdateInput struct {
	Title *string `json:"title"`
	Text  *string `json:"text"`
}

// TaskInput is the payload for task creation.
type TaskInput struct {
	Text string `json:"text"`
}

// TaskUpdateInput carries a partial task update.
type TaskUpdateInput struct {
	Text *string `json:"text"`
	Done *bool   `json:"done"`
}
