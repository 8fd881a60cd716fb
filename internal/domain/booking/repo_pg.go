package booking

import (
	"context"
	"fmt"
	"strings"

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

// scopeWhere translates a Scope into SQL conditions against the records
// table aliased as "r". serviceCol names the column holding the attached
// service id ("rs.service_id" when record_services is joined, or an EXISTS
// probe when listing bare records).
func scopeWhere(scope Scope, serviceCol string, args []interface{}) ([]string, []interface{}) {
	var conds []string
	if scope.PatientID != nil {
		args = append(args, *scope.PatientID)
		conds = append(conds, fmt.Sprintf("r.patient_id = $%d", len(args)))
	}
	if scope.DateStartFrom != nil {
		args = append(args, *scope.DateStartFrom)
		conds = append(conds, fmt.Sprintf("r.date_start >= $%d", len(args)))
	}
	if scope.DateEndTo != nil {
		args = append(args, *scope.DateEndTo)
		conds = append(conds, fmt.Sprintf("r.date_end <= $%d", len(args)))
	}
	if scope.Done != nil {
		args = append(args, *scope.Done)
		conds = append(conds, fmt.Sprintf("r.done = $%d", len(args)))
	}
	if scope.FilterByService {
		ids := scope.ServiceIDs
		if ids == nil {
			ids = []uuid.UUID{}
		}
		args = append(args, ids)
		if serviceCol == "" {
			conds = append(conds, fmt.Sprintf(
				"EXISTS (SELECT 1 FROM record_services rs WHERE rs.record_id = r.id AND rs.service_id = ANY($%d))",
				len(args)))
		} else {
			conds = append(conds, fmt.Sprintf("%s = ANY($%d)", serviceCol, len(args)))
		}
	}
	return conds, args
}

func whereClause(conds []string) string {
	if len(conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(conds, " AND ")
}

type recordRepoPG struct{ pool *pgxpool.Pool }

func NewRecordRepoPG(pool *pgxpool.Pool) RecordRepository {
	return &recordRepoPG{pool: pool}
}

const recordCols = `r.id, r.patient_id, r.name, r.date_of_creation, r.date_start,
	r.date_end, r.done, r.editable, r.description, r.created_at, r.updated_at`

func scanRecord(row pgx.Row) (*Record, error) {
	var rec Record
	err := row.Scan(&rec.ID, &rec.PatientID, &rec.Name, &rec.DateOfCreation, &rec.DateStart,
		&rec.DateEnd, &rec.Done, &rec.Editable, &rec.Description, &rec.CreatedAt, &rec.UpdatedAt)
	return &rec, err
}

func (p *recordRepoPG) Create(ctx context.Context, rec *Record) error {
	_, err := conn(ctx, p.pool).Exec(ctx, `
		INSERT INTO records (id, patient_id, name, date_of_creation, date_start,
			date_end, done, editable, description)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		rec.ID, rec.PatientID, rec.Name, rec.DateOfCreation, rec.DateStart,
		rec.DateEnd, rec.Done, rec.Editable, rec.Description)
	return err
}

func (p *recordRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Record, error) {
	return scanRecord(conn(ctx, p.pool).QueryRow(ctx,
		`SELECT `+recordCols+` FROM records r WHERE r.id = $1`, id))
}

func (p *recordRepoPG) Update(ctx context.Context, rec *Record) error {
	_, err := conn(ctx, p.pool).Exec(ctx, `
		UPDATE records SET name=$2, date_start=$3, date_end=$4, done=$5,
			editable=$6, description=$7, updated_at=NOW()
		WHERE id = $1`,
		rec.ID, rec.Name, rec.DateStart, rec.DateEnd, rec.Done,
		rec.Editable, rec.Description)
	return err
}

func (p *recordRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := conn(ctx, p.pool).Exec(ctx, `DELETE FROM records WHERE id = $1`, id)
	return err
}

func (p *recordRepoPG) List(ctx context.Context, scope Scope, limit, offset int) ([]*Record, int, error) {
	conds, args := scopeWhere(scope, "", nil)
	where := whereClause(conds)

	var total int
	if err := conn(ctx, p.pool).QueryRow(ctx,
		`SELECT COUNT(*) FROM records r`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	rows, err := conn(ctx, p.pool).Query(ctx,
		`SELECT `+recordCols+` FROM records r`+where+
			fmt.Sprintf(` ORDER BY r.done ASC, r.date_start DESC LIMIT $%d OFFSET $%d`,
				len(args)-1, len(args)),
		args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, rec)
	}
	return items, total, nil
}

type recordServiceRepoPG struct{ pool *pgxpool.Pool }

func NewRecordServiceRepoPG(pool *pgxpool.Pool) RecordServiceRepository {
	return &recordServiceRepoPG{pool: pool}
}

func (p *recordServiceRepoPG) Create(ctx context.Context, rs *RecordService) error {
	_, err := conn(ctx, p.pool).Exec(ctx, `
		INSERT INTO record_services (id, record_id, service_id) VALUES ($1,$2,$3)`,
		rs.ID, rs.RecordID, rs.ServiceID)
	return err
}

func (p *recordServiceRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*RecordService, error) {
	var rs RecordService
	err := conn(ctx, p.pool).QueryRow(ctx,
		`SELECT id, record_id, service_id FROM record_services WHERE id = $1`, id).
		Scan(&rs.ID, &rs.RecordID, &rs.ServiceID)
	return &rs, err
}

func (p *recordServiceRepoPG) List(ctx context.Context, scope Scope, limit, offset int) ([]*RecordService, int, error) {
	conds, args := scopeWhere(scope, "rs.service_id", nil)
	where := whereClause(conds)
	from := ` FROM record_services rs JOIN records r ON r.id = rs.record_id`

	var total int
	if err := conn(ctx, p.pool).QueryRow(ctx,
		`SELECT COUNT(*)`+from+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	rows, err := conn(ctx, p.pool).Query(ctx,
		`SELECT rs.id, rs.record_id, rs.service_id`+from+where+
			fmt.Sprintf(` ORDER BY r.done ASC, r.date_start DESC LIMIT $%d OFFSET $%d`,
				len(args)-1, len(args)),
		args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*RecordService
	for rows.Next() {
		var rs RecordService
		if err := rows.Scan(&rs.ID, &rs.RecordID, &rs.ServiceID); err != nil {
			return nil, 0, err
		}
		items = append(items, &rs)
	}
	return items, total, nil
}

type recordStaffRepoPG struct{ pool *pgxpool.Pool }

func NewRecordStaffRepoPG(pool *pgxpool.Pool) RecordStaffRepository {
	return &recordStaffRepoPG{pool: pool}
}

func (p *recordStaffRepoPG) Create(ctx context.Context, link *RecordServiceMedPersona) error {
	_, err := conn(ctx, p.pool).Exec(ctx, `
		INSERT INTO record_service_med_personas (id, record_service_id, medpersona_id)
		VALUES ($1,$2,$3)`,
		link.ID, link.RecordServiceID, link.MedPersonaID)
	return err
}

func (p *recordStaffRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*RecordServiceMedPersona, error) {
	var link RecordServiceMedPersona
	err := conn(ctx, p.pool).QueryRow(ctx,
		`SELECT id, record_service_id, medpersona_id
		 FROM record_service_med_personas WHERE id = $1`, id).
		Scan(&link.ID, &link.RecordServiceID, &link.MedPersonaID)
	return &link, err
}

func (p *recordStaffRepoPG) List(ctx context.Context, scope Scope, limit, offset int) ([]*RecordServiceMedPersona, int, error) {
	conds, args := scopeWhere(scope, "rs.service_id", nil)
	where := whereClause(conds)
	from := ` FROM record_service_med_personas l
		JOIN record_services rs ON rs.id = l.record_service_id
		JOIN records r ON r.id = rs.record_id`

	var total int
	if err := conn(ctx, p.pool).QueryRow(ctx,
		`SELECT COUNT(*)`+from+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	rows, err := conn(ctx, p.pool).Query(ctx,
		`SELECT l.id, l.record_service_id, l.medpersona_id`+from+where+
			fmt.Sprintf(` ORDER BY r.done ASC, r.date_start DESC LIMIT $%d OFFSET $%d`,
				len(args)-1, len(args)),
		args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*RecordServiceMedPersona
	for rows.Next() {
		var link RecordServiceMedPersona
		if err := rows.Scan(&link.ID, &link.RecordServiceID, &link.MedPersonaID); err != nil {
			return nil, 0, err
		}
		items = append(items, &link)
	}
	return items, total, nil
}
