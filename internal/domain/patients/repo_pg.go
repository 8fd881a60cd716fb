package patients

import (
	"context"

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

type patientRepoPG struct{ pool *pgxpool.Pool }

func NewPatientRepoPG(pool *pgxpool.Pool) PatientRepository {
	return &patientRepoPG{pool: pool}
}

func (r *patientRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const patientCols = `id, user_id, birth_date, gender, region, city,
	bonus, status, type, created_at, updated_at`

func (r *patientRepoPG) scanRow(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(&p.ID, &p.UserID, &p.BirthDate, &p.Gender, &p.Region, &p.City,
		&p.Bonus, &p.Status, &p.Type, &p.CreatedAt, &p.UpdatedAt)
	return &p, err
}

func (r *patientRepoPG) Create(ctx context.Context, p *Patient) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO patients (id, user_id, birth_date, gender, region, city,
			bonus, status, type)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		p.ID, p.UserID, p.BirthDate, p.Gender, p.Region, p.City,
		p.Bonus, p.Status, p.Type)
	return err
}

func (r *patientRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return r.scanRow(r.conn(ctx).QueryRow(ctx, `SELECT `+patientCols+` FROM patients WHERE id = $1`, id))
}

func (r *patientRepoPG) GetByUserID(ctx context.Context, userID uuid.UUID) (*Patient, error) {
	return r.scanRow(r.conn(ctx).QueryRow(ctx, `SELECT `+patientCols+` FROM patients WHERE user_id = $1`, userID))
}

func (r *patientRepoPG) Update(ctx context.Context, p *Patient) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE patients SET birth_date=$2, gender=$3, region=$4, city=$5,
			bonus=$6, status=$7, type=$8, updated_at=NOW()
		WHERE id = $1`,
		p.ID, p.BirthDate, p.Gender, p.Region, p.City,
		p.Bonus, p.Status, p.Type)
	return err
}

func (r *patientRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM patients WHERE id = $1`, id)
	return err
}

func (r *patientRepoPG) List(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM patients`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+patientCols+` FROM patients ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Patient
	for rows.Next() {
		p, err := r.scanRow(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, nil
}

type passportRepoPG struct{ pool *pgxpool.Pool }

func NewPassportRepoPG(pool *pgxpool.Pool) PassportRepository {
	return &passportRepoPG{pool: pool}
}

func (r *passportRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const passportCols = `id, patient_id, series, number, issue_date, issued_by`

func (r *passportRepoPG) scanRow(row pgx.Row) (*PassportData, error) {
	var pd PassportData
	err := row.Scan(&pd.ID, &pd.PatientID, &pd.Series, &pd.Number, &pd.IssueDate, &pd.IssuedBy)
	return &pd, err
}

func (r *passportRepoPG) Create(ctx context.Context, pd *PassportData) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO passport_data (id, patient_id, series, number, issue_date, issued_by)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		pd.ID, pd.PatientID, pd.Series, pd.Number, pd.IssueDate, pd.IssuedBy)
	return err
}

func (r *passportRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*PassportData, error) {
	return r.scanRow(r.conn(ctx).QueryRow(ctx, `SELECT `+passportCols+` FROM passport_data WHERE id = $1`, id))
}

func (r *passportRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*PassportData, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+passportCols+` FROM passport_data WHERE patient_id = $1`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*PassportData
	for rows.Next() {
		pd, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, pd)
	}
	return items, nil
}

func (r *passportRepoPG) Update(ctx context.Context, pd *PassportData) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE passport_data SET series=$2, number=$3, issue_date=$4, issued_by=$5
		WHERE id = $1`,
		pd.ID, pd.Series, pd.Number, pd.IssueDate, pd.IssuedBy)
	return err
}

func (r *passportRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM passport_data WHERE id = $1`, id)
	return err
}
