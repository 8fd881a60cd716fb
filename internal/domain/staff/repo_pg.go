package staff

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

type medPersonaRepoPG struct{ pool *pgxpool.Pool }

func NewMedPersonaRepoPG(pool *pgxpool.Pool) MedPersonaRepository {
	return &medPersonaRepoPG{pool: pool}
}

func (r *medPersonaRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const medPersonaCols = `id, user_id, position, speciality, office, created_at, updated_at`

func (r *medPersonaRepoPG) scanRow(row pgx.Row) (*MedPersona, error) {
	var m MedPersona
	err := row.Scan(&m.ID, &m.UserID, &m.Position, &m.Speciality, &m.Office,
		&m.CreatedAt, &m.UpdatedAt)
	return &m, err
}

func (r *medPersonaRepoPG) Create(ctx context.Context, m *MedPersona) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO med_personas (id, user_id, position, speciality, office)
		VALUES ($1,$2,$3,$4,$5)`,
		m.ID, m.UserID, m.Position, m.Speciality, m.Office)
	return err
}

func (r *medPersonaRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*MedPersona, error) {
	return r.scanRow(r.conn(ctx).QueryRow(ctx,
		`SELECT `+medPersonaCols+` FROM med_personas WHERE id = $1`, id))
}

func (r *medPersonaRepoPG) GetByUserID(ctx context.Context, userID uuid.UUID) (*MedPersona, error) {
	return r.scanRow(r.conn(ctx).QueryRow(ctx,
		`SELECT `+medPersonaCols+` FROM med_personas WHERE user_id = $1`, userID))
}

func (r *medPersonaRepoPG) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM med_personas WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}

func (r *medPersonaRepoPG) Update(ctx context.Context, m *MedPersona) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE med_personas SET position=$2, speciality=$3, office=$4, updated_at=NOW()
		WHERE id = $1`,
		m.ID, m.Position, m.Speciality, m.Office)
	return err
}

func (r *medPersonaRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM med_personas WHERE id = $1`, id)
	return err
}

func (r *medPersonaRepoPG) List(ctx context.Context, limit, offset int) ([]*MedPersona, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM med_personas`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+medPersonaCols+` FROM med_personas ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*MedPersona
	for rows.Next() {
		m, err := r.scanRow(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, m)
	}
	return items, total, nil
}

type offeringRepoPG struct{ pool *pgxpool.Pool }

func NewOfferingRepoPG(pool *pgxpool.Pool) OfferingRepository {
	return &offeringRepoPG{pool: pool}
}

func (r *offeringRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func (r *offeringRepoPG) Create(ctx context.Context, o *ServiceMedPersona) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO service_med_personas (id, service_id, medpersona_id)
		VALUES ($1,$2,$3)`,
		o.ID, o.ServiceID, o.MedPersonaID)
	return err
}

func (r *offeringRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*ServiceMedPersona, error) {
	var o ServiceMedPersona
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT id, service_id, medpersona_id FROM service_med_personas WHERE id = $1`, id).
		Scan(&o.ID, &o.ServiceID, &o.MedPersonaID)
	return &o, err
}

func (r *offeringRepoPG) Offers(ctx context.Context, serviceID, medPersonaID uuid.UUID) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM service_med_personas
		 WHERE service_id = $1 AND medpersona_id = $2)`,
		serviceID, medPersonaID).Scan(&exists)
	return exists, err
}

func (r *offeringRepoPG) ListByService(ctx context.Context, serviceID uuid.UUID) ([]*MedPersona, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT m.id, m.user_id, m.position, m.speciality, m.office, m.created_at, m.updated_at
		FROM med_personas m
		JOIN service_med_personas smp ON smp.medpersona_id = m.id
		WHERE smp.service_id = $1`, serviceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*MedPersona
	for rows.Next() {
		var m MedPersona
		if err := rows.Scan(&m.ID, &m.UserID, &m.Position, &m.Speciality, &m.Office,
			&m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, &m)
	}
	return items, nil
}

func (r *offeringRepoPG) List(ctx context.Context, limit, offset int) ([]*ServiceMedPersona, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM service_med_personas`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT id, service_id, medpersona_id FROM service_med_personas LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*ServiceMedPersona
	for rows.Next() {
		var o ServiceMedPersona
		if err := rows.Scan(&o.ID, &o.ServiceID, &o.MedPersonaID); err != nil {
			return nil, 0, err
		}
		items = append(items, &o)
	}
	return items, total, nil
}

func (r *offeringRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM service_med_personas WHERE id = $1`, id)
	return err
}
