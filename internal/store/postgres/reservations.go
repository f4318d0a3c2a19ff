package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"barber-reservation-api/internal/model"
	"barber-reservation-api/internal/store"
)

const reservationColumns = `id, name, email, slot_date, slot_time,
	COALESCE(ip_address, ''), COALESCE(client_id, ''), created_at`

type reservations struct {
	s *Store
}

func (r *reservations) CountBySlot(ctx context.Context, key model.SlotKey) (int, error) {
	var n int
	err := r.s.q(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM reservations WHERE slot_date = $1 AND slot_time = $2`,
		key.Date, key.Time,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count by slot: %w", err)
	}
	return n, nil
}

func (r *reservations) FindByIPAndDate(ctx context.Context, ip, date string) (*model.Reservation, error) {
	return r.findOne(ctx,
		`SELECT `+reservationColumns+` FROM reservations
		 WHERE ip_address = $1 AND slot_date = $2 ORDER BY id LIMIT 1`, ip, date)
}

func (r *reservations) FindByClientAndDate(ctx context.Context, clientID, date string) (*model.Reservation, error) {
	return r.findOne(ctx,
		`SELECT `+reservationColumns+` FROM reservations
		 WHERE client_id = $1 AND slot_date = $2 ORDER BY id LIMIT 1`, clientID, date)
}

func (r *reservations) findOne(ctx context.Context, sql string, args ...any) (*model.Reservation, error) {
	res, err := scanReservation(r.s.q(ctx).QueryRow(ctx, sql, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find reservation: %w", err)
	}
	return res, nil
}

func (r *reservations) Insert(ctx context.Context, res *model.Reservation) error {
	err := r.s.q(ctx).QueryRow(ctx,
		`INSERT INTO reservations (name, email, slot_date, slot_time, ip_address, client_id)
		 VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''))
		 RETURNING id, created_at`,
		res.Name, res.Email, res.Date, res.Time, res.IPAddress, res.ClientID,
	).Scan(&res.ID, &res.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert reservation: %w", err)
	}
	return nil
}

func (r *reservations) Get(ctx context.Context, id int64) (*model.Reservation, error) {
	res, err := scanReservation(r.s.q(ctx).QueryRow(ctx,
		`SELECT `+reservationColumns+` FROM reservations WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get reservation: %w", err)
	}
	return res, nil
}

func (r *reservations) Update(ctx context.Context, res *model.Reservation) error {
	tag, err := r.s.q(ctx).Exec(ctx,
		`UPDATE reservations SET name = $1, email = $2, slot_date = $3, slot_time = $4
		 WHERE id = $5`,
		res.Name, res.Email, res.Date, res.Time, res.ID,
	)
	if err != nil {
		return fmt.Errorf("update reservation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *reservations) Delete(ctx context.Context, id int64) error {
	tag, err := r.s.q(ctx).Exec(ctx, `DELETE FROM reservations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete reservation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *reservations) List(ctx context.Context) ([]model.Reservation, error) {
	return r.list(ctx, `SELECT `+reservationColumns+` FROM reservations ORDER BY slot_date, slot_time, id`)
}

func (r *reservations) ListByDate(ctx context.Context, date string) ([]model.Reservation, error) {
	return r.list(ctx, `SELECT `+reservationColumns+` FROM reservations
		 WHERE slot_date = $1 ORDER BY slot_time, id`, date)
}

func (r *reservations) list(ctx context.Context, query string, args ...any) ([]model.Reservation, error) {
	rows, err := r.s.q(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	defer rows.Close()

	var out []model.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("list reservations: %w", err)
		}
		out = append(out, *res)
	}
	return out, rows.Err()
}

func (r *reservations) Occupancy(ctx context.Context, date string) ([]store.SlotCount, error) {
	rows, err := r.s.q(ctx).Query(ctx,
		`SELECT slot_time, COUNT(*) FROM reservations
		 WHERE slot_date = $1 GROUP BY slot_time ORDER BY slot_time`, date)
	if err != nil {
		return nil, fmt.Errorf("occupancy: %w", err)
	}
	defer rows.Close()

	var out []store.SlotCount
	for rows.Next() {
		var c store.SlotCount
		if err := rows.Scan(&c.Time, &c.Count); err != nil {
			return nil, fmt.Errorf("occupancy: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func scanReservation(row pgx.Row) (*model.Reservation, error) {
	res := &model.Reservation{}
	err := row.Scan(&res.ID, &res.Name, &res.Email, &res.Date, &res.Time,
		&res.IPAddress, &res.ClientID, &res.CreatedAt)
	if err != nil {
		return nil, err
	}
	return res, nil
}
