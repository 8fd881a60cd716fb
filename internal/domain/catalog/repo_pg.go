package catalog

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

type sanatoriumRepoPG struct{ pool *pgxpool.Pool }

func NewSanatoriumRepoPG(pool *pgxpool.Pool) SanatoriumRepository {
	return &sanatoriumRepoPG{pool: pool}
}

func (r *sanatoriumRepoPG) Create(ctx context.Context, s *Sanatorium) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO sanatoriums (id, name, email, tel, address)
		VALUES ($1,$2,$3,$4,$5)`,
		s.ID, s.Name, s.Email, s.Tel, s.Address)
	return err
}

func (r *sanatoriumRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Sanatorium, error) {
	var s Sanatorium
	err := conn(ctx, r.pool).QueryRow(ctx,
		`SELECT id, name, email, tel, address FROM sanatoriums WHERE id = $1`, id).
		Scan(&s.ID, &s.Name, &s.Email, &s.Tel, &s.Address)
	return &s, err
}

func (r *sanatoriumRepoPG) Update(ctx context.Context, s *Sanatorium) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE sanatoriums SET name=$2, email=$3, tel=$4, address=$5 WHERE id = $1`,
		s.ID, s.Name, s.Email, s.Tel, s.Address)
	return err
}

func (r *sanatoriumRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `DELETE FROM sanatoriums WHERE id = $1`, id)
	return err
}

func (r *sanatoriumRepoPG) List(ctx context.Context, limit, offset int) ([]*Sanatorium, int, error) {
	var total int
	if err := conn(ctx, r.pool).QueryRow(ctx, `SELECT COUNT(*) FROM sanatoriums`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT id, name, email, tel, address FROM sanatoriums ORDER BY name LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Sanatorium
	for rows.Next() {
		var s Sanatorium
		if err := rows.Scan(&s.ID, &s.Name, &s.Email, &s.Tel, &s.Address); err != nil {
			return nil, 0, err
		}
		items = append(items, &s)
	}
	return items, total, nil
}

type serviceRepoPG struct{ pool *pgxpool.Pool }

func NewServiceRepoPG(pool *pgxpool.Pool) ServiceRepository {
	return &serviceRepoPG{pool: pool}
}

func (r *serviceRepoPG) Create(ctx context.Context, s *Service) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO services (id, name, cost, sanatorium_id) VALUES ($1,$2,$3,$4)`,
		s.ID, s.Name, s.Cost, s.SanatoriumID)
	return err
}

func (r *serviceRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Service, error) {
	var s Service
	err := conn(ctx, r.pool).QueryRow(ctx,
		`SELECT id, name, cost, sanatorium_id FROM services WHERE id = $1`, id).
		Scan(&s.ID, &s.Name, &s.Cost, &s.SanatoriumID)
	return &s, err
}

func (r *serviceRepoPG) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := conn(ctx, r.pool).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM services WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}

func (r *serviceRepoPG) Update(ctx context.Context, s *Service) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE services SET name=$2, cost=$3, sanatorium_id=$4 WHERE id = $1`,
		s.ID, s.Name, s.Cost, s.SanatoriumID)
	return err
}

func (r *serviceRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `DELETE FROM services WHERE id = $1`, id)
	return err
}

func (r *serviceRepoPG) List(ctx context.Context, limit, offset int) ([]*Service, int, error) {
	var total int
	if err := conn(ctx, r.pool).QueryRow(ctx, `SELECT COUNT(*) FROM services`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT id, name, cost, sanatorium_id FROM services ORDER BY name LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Service
	for rows.Next() {
		var s Service
		if err := rows.Scan(&s.ID, &s.Name, &s.Cost, &s.SanatoriumID); err != nil {
			return nil, 0, err
		}
		items = append(items, &s)
	}
	return items, total, nil
}

var subKindTables = map[ServiceType]string{
	TypeProcedure:  "procedures",
	TypeEvent:      "events",
	TypeSurvey:     "surveys",
	TypeSpeciality: "specialities",
}

func (r *serviceRepoPG) IDsOfType(ctx context.Context, t ServiceType) ([]uuid.UUID, error) {
	table, ok := subKindTables[t]
	if !ok {
		return nil, fmt.Errorf("unknown service type %q", t)
	}
	rows, err := conn(ctx, r.pool).Query(ctx, `SELECT service_id FROM `+table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *serviceRepoPG) ResolveType(ctx context.Context, id uuid.UUID) (ServiceType, error) {
	for _, t := range []ServiceType{TypeProcedure, TypeEvent, TypeSurvey, TypeSpeciality} {
		var exists bool
		err := conn(ctx, r.pool).QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM `+subKindTables[t]+` WHERE service_id = $1)`, id).
			Scan(&exists)
		if err != nil {
			return "", err
		}
		if exists {
			return t, nil
		}
	}
	return "", nil
}

type subKindRepoPG struct{ pool *pgxpool.Pool }

func NewSubKindRepoPG(pool *pgxpool.Pool) SubKindRepository {
	return &subKindRepoPG{pool: pool}
}

func (r *subKindRepoPG) CreateProcedure(ctx context.Context, p *Procedure) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO procedures (id, service_id, duration_minutes, office)
		VALUES ($1,$2,$3,$4)`,
		p.ID, p.ServiceID, p.DurationMinutes, p.Office)
	return err
}

func (r *subKindRepoPG) CreateEvent(ctx context.Context, e *Event) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO events (id, service_id, date, location) VALUES ($1,$2,$3,$4)`,
		e.ID, e.ServiceID, e.Date, e.Location)
	return err
}

func (r *subKindRepoPG) CreateSurvey(ctx context.Context, s *Survey) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO surveys (id, service_id, laboratory) VALUES ($1,$2,$3)`,
		s.ID, s.ServiceID, s.Laboratory)
	return err
}

func (r *subKindRepoPG) CreateSpeciality(ctx context.Context, s *Speciality) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO specialities (id, service_id, name) VALUES ($1,$2,$3)`,
		s.ID, s.ServiceID, s.Name)
	return err
}

func (r *subKindRepoPG) GetProcedure(ctx context.Context, id uuid.UUID) (*Procedure, error) {
	var p Procedure
	err := conn(ctx, r.pool).QueryRow(ctx,
		`SELECT id, service_id, duration_minutes, office FROM procedures WHERE id = $1`, id).
		Scan(&p.ID, &p.ServiceID, &p.DurationMinutes, &p.Office)
	return &p, err
}

func (r *subKindRepoPG) GetEvent(ctx context.Context, id uuid.UUID) (*Event, error) {
	var e Event
	err := conn(ctx, r.pool).QueryRow(ctx,
		`SELECT id, service_id, date, location FROM events WHERE id = $1`, id).
		Scan(&e.ID, &e.ServiceID, &e.Date, &e.Location)
	return &e, err
}

func (r *subKindRepoPG) GetSurvey(ctx context.Context, id uuid.UUID) (*Survey, error) {
	var s Survey
	err := conn(ctx, r.pool).QueryRow(ctx,
		`SELECT id, service_id, laboratory FROM surveys WHERE id = $1`, id).
		Scan(&s.ID, &s.ServiceID, &s.Laboratory)
	return &s, err
}

func (r *subKindRepoPG) GetSpeciality(ctx context.Context, id uuid.UUID) (*Speciality, error) {
	var s Speciality
	err := conn(ctx, r.pool).QueryRow(ctx,
		`SELECT id, service_id, name FROM specialities WHERE id = $1`, id).
		Scan(&s.ID, &s.ServiceID, &s.Name)
	return &s, err
}

func (r *subKindRepoPG) ListProcedures(ctx context.Context, limit, offset int) ([]*Procedure, int, error) {
	var total int
	if err := conn(ctx, r.pool).QueryRow(ctx, `SELECT COUNT(*) FROM procedures`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT id, service_id, duration_minutes, office FROM procedures LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Procedure
	for rows.Next() {
		var p Procedure
		if err := rows.Scan(&p.ID, &p.ServiceID, &p.DurationMinutes, &p.Office); err != nil {
			return nil, 0, err
		}
		items = append(items, &p)
	}
	return items, total, nil
}

func (r *subKindRepoPG) ListEvents(ctx context.Context, limit, offset int) ([]*Event, int, error) {
	var total int
	if err := conn(ctx, r.pool).QueryRow(ctx, `SELECT COUNT(*) FROM events`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT id, service_id, date, location FROM events LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.ServiceID, &e.Date, &e.Location); err != nil {
			return nil, 0, err
		}
		items = append(items, &e)
	}
	return items, total, nil
}

func (r *subKindRepoPG) ListSurveys(ctx context.Context, limit, offset int) ([]*Survey, int, error) {
	var total int
	if err := conn(ctx, r.pool).QueryRow(ctx, `SELECT COUNT(*) FROM surveys`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT id, service_id, laboratory FROM surveys LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Survey
	for rows.Next() {
		var s Survey
		if err := rows.Scan(&s.ID, &s.ServiceID, &s.Laboratory); err != nil {
			return nil, 0, err
		}
		items = append(items, &s)
	}
	return items, total, nil
}

func (r *subKindRepoPG) ListSpecialities(ctx context.Context, limit, offset int) ([]*Speciality, int, error) {
	var total int
	if err := conn(ctx, r.pool).QueryRow(ctx, `SELECT COUNT(*) FROM specialities`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT id, service_id, name FROM specialities LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Speciality
	for rows.Next() {
		var s Speciality
		if err := rows.Scan(&s.ID, &s.ServiceID, &s.Name); err != nil {
			return nil, 0, err
		}
		items = append(items, &s)
	}
	return items, total, nil
}

func (r *subKindRepoPG) DeleteProcedure(ctx context.Context, id uuid.UUID) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `DELETE FROM procedures WHERE id = $1`, id)
	return err
}

func (r *subKindRepoPG) DeleteEvent(ctx context.Context, id uuid.UUID) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	return err
}

func (r *subKindRepoPG) DeleteSurvey(ctx context.Context, id uuid.UUID) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `DELETE FROM surveys WHERE id = $1`, id)
	return err
}

func (r *subKindRepoPG) DeleteSpeciality(ctx context.Context, id uuid.UUID) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `DELETE FROM specialities WHERE id = $1`, id)
	return err
}

type timetableRepoPG struct{ pool *pgxpool.Pool }

func NewTimetableRepoPG(pool *pgxpool.Pool) TimetableRepository {
	return &timetableRepoPG{pool: pool}
}

func (r *timetableRepoPG) Create(ctx context.Context, t *Timetable) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO timetables (id, service_id, date_start, date_end, office)
		VALUES ($1,$2,$3,$4,$5)`,
		t.ID, t.ServiceID, t.DateStart, t.DateEnd, t.Office)
	return err
}

func (r *timetableRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Timetable, error) {
	var t Timetable
	err := conn(ctx, r.pool).QueryRow(ctx,
		`SELECT id, service_id, date_start, date_end, office FROM timetables WHERE id = $1`, id).
		Scan(&t.ID, &t.ServiceID, &t.DateStart, &t.DateEnd, &t.Office)
	return &t, err
}

func (r *timetableRepoPG) List(ctx context.Context, limit, offset int) ([]*Timetable, int, error) {
	var total int
	if err := conn(ctx, r.pool).QueryRow(ctx, `SELECT COUNT(*) FROM timetables`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT id, service_id, date_start, date_end, office FROM timetables
		 ORDER BY date_start LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Timetable
	for rows.Next() {
		var t Timetable
		if err := rows.Scan(&t.ID, &t.ServiceID, &t.DateStart, &t.DateEnd, &t.Office); err != nil {
			return nil, 0, err
		}
		items = append(items, &t)
	}
	return items, total, nil
}

func (r *timetableRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `DELETE FROM timetables WHERE id = $1`, id)
	return err
}
