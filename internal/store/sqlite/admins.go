package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"barber-reservation-api/internal/model"
	"barber-reservation-api/internal/store"
)

type admins struct {
	s *Store
}

func (a *admins) Create(ctx context.Context, adm *model.Admin) error {
	now := time.Now().UTC().Truncate(time.Second)
	err := a.s.q(ctx).QueryRowContext(ctx,
		`INSERT INTO admins (username, password_hash, created_at) VALUES (?, ?, ?)
		 ON CONFLICT (username) DO NOTHING
		 RETURNING id`,
		adm.Username, adm.PasswordHash, now.Unix(),
	).Scan(&adm.ID)
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	adm.CreatedAt = now
	return nil
}

func (a *admins) ByUsername(ctx context.Context, username string) (*model.Admin, error) {
	return a.one(ctx,
		`SELECT id, username, password_hash, created_at FROM admins WHERE username = ?`, username)
}

func (a *admins) Get(ctx context.Context, id int64) (*model.Admin, error) {
	return a.one(ctx,
		`SELECT id, username, password_hash, created_at FROM admins WHERE id = ?`, id)
}

func (a *admins) one(ctx context.Context, query string, arg any) (*model.Admin, error) {
	adm, err := scanAdmin(a.s.q(ctx).QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("get admin: %w", err)
	}
	return adm, nil
}

func (a *admins) List(ctx context.Context) ([]model.Admin, error) {
	rows, err := a.s.q(ctx).QueryContext(ctx,
		`SELECT id, username, password_hash, created_at FROM admins ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list admins: %w", err)
	}
	defer rows.Close()

	var out []model.Admin
	for rows.Next() {
		adm, err := scanAdmin(rows)
		if err != nil {
			return nil, fmt.Errorf("list admins: %w", err)
		}
		out = append(out, *adm)
	}
	return out, rows.Err()
}

func (a *admins) Update(ctx context.Context, adm *model.Admin) error {
	out, err := a.s.q(ctx).ExecContext(ctx,
		`UPDATE admins SET username = ?, password_hash = ? WHERE id = ?`,
		adm.Username, adm.PasswordHash, adm.ID,
	)
	if err != nil {
		// modernc reports constraint failures only through the message text
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists
		}
		return fmt.Errorf("update admin: %w", err)
	}
	return affected(out)
}

func (a *admins) Delete(ctx context.Context, id int64) error {
	out, err := a.s.q(ctx).ExecContext(ctx, `DELETE FROM admins WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete admin: %w", err)
	}
	return affected(out)
}

func (a *admins) Count(ctx context.Context) (int, error) {
	var n int
	if err := a.s.q(ctx).QueryRowContext(ctx, `SELECT COUNT(*) FROM admins`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count admins: %w", err)
	}
	return n, nil
}

func scanAdmin(row scanner) (*model.Admin, error) {
	adm := &model.Admin{}
	var created int64
	if err := row.Scan(&adm.ID, &adm.Username, &adm.PasswordHash, &created); err != nil {
		return nil, err
	}
	adm.CreatedAt = time.Unix(created, 0).UTC()
	return adm, nil
}
