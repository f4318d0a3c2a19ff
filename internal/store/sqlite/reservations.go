package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"barber-reservation-api/internal/model"
	"barber-reservation-api/internal/store"
)

const reservationColumns = `id, name, email, slot_date, slot_time,
	COALESCE(ip_address, ''), COALESCE(client_id, ''), created_at`

type reservations struct {
	s *Store
}

type scanner interface {
	Scan(dest ...any) error
}

func (r *reservations) CountBySlot(ctx context.Context, key model.SlotKey) (int, error) {
	var n int
	err := r.s.q(ctx).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM reservations WHERE slot_date = ? AND slot_time = ?`,
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
		 WHERE ip_address = ? AND slot_date = ? ORDER BY id LIMIT 1`, ip, date)
}

func (r *reservations) FindByClientAndDate(ctx context.Context, clientID, date string) (*model.Reservation, error) {
	return r.findOne(ctx,
		`SELECT `+reservationColumns+` FROM reservations
		 WHERE client_id = ? AND slot_date = ? ORDER BY id LIMIT 1`, clientID, date)
}

func (r *reservations) findOne(ctx context.Context, query string, args ...any) (*model.Reservation, error) {
	res, err := scanReservation(r.s.q(ctx).QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find reservation: %w", err)
	}
	return res, nil
}

func (r *reservations) Insert(ctx context.Context, res *model.Reservation) error {
	now := time.Now().UTC().Truncate(time.Second)
	err := r.s.q(ctx).QueryRowContext(ctx,
		`INSERT INTO reservations (name, email, slot_date, slot_time, ip_address, client_id, created_at)
		 VALUES (?, ?, ?, ?, NULLIF(?, ''), NULLIF(?, ''), ?)
		 RETURNING id`,
		res.Name, res.Email, res.Date, res.Time, res.IPAddress, res.ClientID, now.Unix(),
	).Scan(&res.ID)
	if err != nil {
		return fmt.Errorf("insert reservation: %w", err)
	}
	res.CreatedAt = now
	return nil
}

func (r *reservations) Get(ctx context.Context, id int64) (*model.Reservation, error) {
	res, err := scanReservation(r.s.q(ctx).QueryRowContext(ctx,
		`SELECT `+reservationColumns+` FROM reservations WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("get reservation: %w", err)
	}
	return res, nil
}

func (r *reservations) Update(ctx context.Context, res *model.Reservation) error {
	out, err := r.s.q(ctx).ExecContext(ctx,
		`UPDATE reservations SET name = ?, email = ?, slot_date = ?, slot_time = ? WHERE id = ?`,
		res.Name, res.Email, res.Date, res.Time, res.ID,
	)
	if err != nil {
		return fmt.Errorf("update reservation: %w", err)
	}
	return affected(out)
}

func (r *reservations) Delete(ctx context.Context, id int64) error {
	out, err := r.s.q(ctx).ExecContext(ctx, `DELETE FROM reservations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete reservation: %w", err)
	}
	return affected(out)
}

func (r *reservations) List(ctx context.Context) ([]model.Reservation, error) {
	return r.list(ctx, `SELECT `+reservationColumns+` FROM reservations ORDER BY slot_date, slot_time, id`)
}

func (r *reservations) ListByDate(ctx context.Context, date string) ([]model.Reservation, error) {
	return r.list(ctx, `SELECT `+reservationColumns+` FROM reservations
		 WHERE slot_date = ? ORDER BY slot_time, id`, date)
}

func (r *reservations) list(ctx context.Context, query string, args ...any) ([]model.Reservation, error) {
	rows, err := r.s.q(ctx).QueryContext(ctx, query, args...)
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
	rows, err := r.s.q(ctx).QueryContext(ctx,
		`SELECT slot_time, COUNT(*) FROM reservations
		 WHERE slot_date = ? GROUP BY slot_time ORDER BY slot_time`, date)
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

func scanReservation(row scanner) (*model.Reservation, error) {
	res := &model.Reservation{}
	var created int64
	err := row.Scan(&res.ID, &res.Name, &res.Email, &res.Date, &res.Time,
		&res.IPAddress, &res.ClientID, &created)
	if err != nil {
		return nil, err
	}
	res.CreatedAt = time.Unix(created, 0).UTC()
	return res, nil
}
