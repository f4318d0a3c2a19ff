package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"barber-reservation-api/internal/model"
	"barber-reservation-api/internal/store"
)

type admins struct {
	s *Store
}

func (a *admins) Create(ctx context.Context, adm *model.Admin) error {
	err := a.s.q(ctx).QueryRow(ctx,
		`INSERT INTO admins (username, password_hash) VALUES ($1, $2)
		 ON CONFLICT (username) DO NOTHING
		 RETURNING id, created_at`,
		adm.Username, adm.PasswordHash,
	).Scan(&adm.ID, &adm.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) || isUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	return nil
}

func (a *admins) ByUsername(ctx context.Context, username string) (*model.Admin, error) {
	return a.one(ctx,
		`SELECT id, username, password_hash, created_at FROM admins WHERE username = $1`, username)
}

func (a *admins) Get(ctx context.Context, id int64) (*model.Admin, error) {
	return a.one(ctx,
		`SELECT id, username, password_hash, created_at FROM admins WHERE id = $1`, id)
}

func (a *admins) one(ctx context.Context, sql string, arg any) (*model.Admin, error) {
	adm := &model.Admin{}
	err := a.s.q(ctx).QueryRow(ctx, sql, arg).
		Scan(&adm.ID, &adm.Username, &adm.PasswordHash, &adm.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get admin: %w", err)
	}
	return adm, nil
}

func (a *admins) List(ctx context.Context) ([]model.Admin, error) {
	rows, err := a.s.q(ctx).Query(ctx,
		`SELECT id, username, password_hash, created_at FROM admins ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list admins: %w", err)
	}
	defer rows.Close()

	var out []model.Admin
	for rows.Next() {
		var adm model.Admin
		if err := rows.Scan(&adm.ID, &adm.Username, &adm.PasswordHash, &adm.CreatedAt); err != nil {
			return nil, fmt.Errorf("list admins: %w", err)
		}
		out = append(out, adm)
	}
	return out, rows.Err()
}

func (a *admins) Update(ctx context.Context, adm *model.Admin) error {
	tag, err := a.s.q(ctx).Exec(ctx,
		`UPDATE admins SET username = $1, password_hash = $2 WHERE id = $3`,
		adm.Username, adm.PasswordHash, adm.ID,
	)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("update admin: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (a *admins) Delete(ctx context.Context, id int64) error {
	tag, err := a.s.q(ctx).Exec(ctx, `DELETE FROM admins WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete admin: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (a *admins) Count(ctx context.Context) (int, error) {
	var n int
	if err := a.s.q(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM admins`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count admins: %w", err)
	}
	return n, nil
}
