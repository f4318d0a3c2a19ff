package store

import (
	"context"
	"errors"

	"barber-reservation-api/internal/model"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface implemented by the postgres and
// sqlite drivers. Repositories pick up the transaction opened by WithDayLock
// from the context, so the same repository value works inside and outside a
// unit of work.
type Store interface {
	Reservations() Reservations
	Admins() Admins

	// WithDayLock runs fn in a transaction that holds an exclusive lock on
	// the given date. Every check-then-insert against reservations of that
	// date must go through here. fn's error rolls the transaction back.
	WithDayLock(ctx context.Context, date string, fn func(ctx context.Context) error) error

	Ping(ctx context.Context) error
	Close() error
}

// Reservations is the query surface over reservation rows. It does not
// enforce capacity or throttling; that is the admission controller's job.
type Reservations interface {
	CountBySlot(ctx context.Context, key model.SlotKey) (int, error)

	// FindByIPAndDate and FindByClientAndDate return (nil, nil) when no row matches.
	FindByIPAndDate(ctx context.Context, ip, date string) (*model.Reservation, error)
	FindByClientAndDate(ctx context.Context, clientID, date string) (*model.Reservation, error)

	// Insert assigns ID and CreatedAt on success.
	Insert(ctx context.Context, r *model.Reservation) error

	Get(ctx context.Context, id int64) (*model.Reservation, error)
	// Update rewrites name, email, date and time. IP and client id are immutable.
	Update(ctx context.Context, r *model.Reservation) error
	Delete(ctx context.Context, id int64) error
	// List orders by date, time and id; ListByDate by time and id.
	List(ctx context.Context) ([]model.Reservation, error)
	ListByDate(ctx context.Context, date string) ([]model.Reservation, error)

	// Occupancy returns how many reservations each booked time of date holds,
	// ordered by time.
	Occupancy(ctx context.Context, date string) ([]SlotCount, error)
}

type SlotCount struct {
	Time  string
	Count int
}

type Admins interface {
	// Create returns ErrAlreadyExists when the username is taken.
	Create(ctx context.Context, a *model.Admin) error
	ByUsername(ctx context.Context, username string) (*model.Admin, error)
	Get(ctx context.Context, id int64) (*model.Admin, error)
	List(ctx context.Context) ([]model.Admin, error)
	// Update rewrites username and password hash.
	Update(ctx context.Context, a *model.Admin) error
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int, error)
}
