package notes

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sanatorium/sanatorium/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

func conn(ctx context.Context, pool *pgxpool.Pool) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return pool
}

type noteRepoPG struct{ pool *pgxpool.Pool }

func NewNoteRepoPG(pool *pgxpool.Pool) NoteRepository {
	return &noteRepoPG{pool: pool}
}

const noteCols = `id, patient_id, medpersona_id, title, text, created_at`

func scanNote(row pgx.Row) (*Note, error) {
	var n Note
	err := row.Scan(&n.ID, &n.PatientID, &n.MedPersonaID, &n.Title, &n.Text, &n.CreatedAt)
	return &n, err
}

func (r *noteRepoPG) Create(ctx context.Context, n *Note) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO notes (id, patient_id, medpersona_id, title, text)
		VALUES ($1,$2,$3,$4,$5)`,
		n.ID, n.PatientID, n.MedPersonaID, n.Title, n.Text)
	return err
}

func (r *noteRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Note, error) {
	return scanNote(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+noteCols+` FROM notes WHERE id = $1`, id))
}

func (r *noteRepoPG) Update(ctx context.Context, n *Note) error {
	_, err := conn(ctx, r.pool).Exec(ctx,
		`UPDATE notes SET title=$2, text=$3 WHERE id = $1`, n.ID, n.Title, n.Text)
	return err
}

func (r *noteRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `DELETE FROM notes WHERE id = $1`, id)
	return err
}

func (r *noteRepoPG) List(ctx context.Context, patientID *uuid.UUID, limit, offset int) ([]*Note, int, error) {
	where := ""
	args := []interface{}{}
	if patientID != nil {
		args = append(args, *patientID)
		where = " WHERE patient_id = $1"
	}

	var total int
	if err := conn(ctx, r.pool).QueryRow(ctx, `SELECT COUNT(*) FROM notes`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT `+noteCols+` FROM notes`+where+
			fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args)),
		args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Note
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, note)
	}
	return items, total, nil
}

type taskRepoPG struct{ pool *pgxpool.Pool }

func NewTaskRepoPG(pool *pgxpool.Pool) TaskRepository {
	return &taskRepoPG{pool: pool}
}

func (r *taskRepoPG) Create(ctx context.Context, t *Task) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO tasks (id, note_id, text, done) VALUES ($1,$2,$3,$4)`,
		t.ID, t.NoteID, t.Text, t.Done)
	return err
}

func (r *taskRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Task, error) {
	var t Task
	err := conn(ctx, r.pool).QueryRow(ctx,
		`SELECT id, note_id, text, done FROM tasks WHERE id = $1`, id).
		Scan(&t.ID, &t.NoteID, &t.Text, &t.Done)
	return &t, err
}

func (r *taskRepoPG) ListByNote(ctx context.Context, noteID uuid.UUID) ([]*Task, error) {
	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT id, note_id, text, done FROM tasks WHERE note_id = $1`, noteID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Task
	for rows.Next() {
		var t Task
		if err := rows.Scan(&t.ID, &t.NoteID, &t.Text, &t.Done); err != nil {
			return nil, err
		}
		items = append(items, &t)
	}
	return items, nil
}

func (r *taskRepoPG) Update(ctx context.Context, t *Task) error {
	_, err := conn(ctx, r.pool).Exec(ctx,
		`UPDATE tasks SET text=$2, done=$3 WHERE id = $1`, t.ID, t.Text, t.Done)
	return err
}

func (r *taskRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	return err
}
