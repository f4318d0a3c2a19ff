// Package booking decides whether a reservation request may take a place in
// a slot, and carries the admin operations that edit reservations afterwards.
//
// Every check-then-write runs under the store's per-date lock so that two
// requests racing for the last seat of a slot cannot both be admitted.
package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"barber-reservation-api/internal/identity"
	"barber-reservation-api/internal/model"
	"barber-reservation-api/internal/store"
)

// Reason names a business rejection. Rejections are expected outcomes and
// are returned inside a Decision, never as an error.
type Reason string

const (
	SlotFull        Reason = "slot_full"
	DuplicateIP     Reason = "duplicate_ip"
	DuplicateClient Reason = "duplicate_client"
)

// Message is the user-facing explanation of a rejection.
func (r Reason) Message() string {
	switch r {
	case SlotFull:
		return "This time slot is fully booked."
	case DuplicateIP:
		return "A reservation from this network already exists for that day."
	case DuplicateClient:
		return "You already have a reservation for that day."
	}
	return string(r)
}

var (
	ErrNotFound = errors.New("reservation not found")
	// ErrSlotFull is returned by Update when the target slot has no room.
	ErrSlotFull = errors.New("slot is full")
)

// StorageError reports that the backing store failed. It is never used for
// business rejections.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return "storage: " + e.Op + ": " + e.Err.Error() }
func (e *StorageError) Unwrap() error { return e.Err }

func storageErr(op string, err error) error {
	var se *StorageError
	if errors.As(err, &se) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}

// Repository is what the controller needs from a store.
type Repository interface {
	WithDayLock(ctx context.Context, date string, fn func(ctx context.Context) error) error
	Reservations() store.Reservations
}

// Notifier is told about every accepted reservation after it is committed.
// Implementations must not block the caller.
type Notifier interface {
	ReservationConfirmed(ctx context.Context, r model.Reservation)
}

// Candidate is an already validated booking request.
type Candidate struct {
	Name     string
	Email    string
	Slot     model.SlotKey
	IP       string
	ClientID string // empty when the caller presented none
}

// Decision is the outcome of Evaluate. Exactly one of Reservation or Reason
// is set.
type Decision struct {
	Reservation *model.Reservation
	Reason      Reason
	// IssuedClientID is the freshly minted client id when the candidate had
	// none. The caller must hand it back to the client for storage.
	IssuedClientID string
}

func (d Decision) Accepted() bool { return d.Reservation != nil }

type Controller struct {
	repo   Repository
	log    *slog.Logger
	notify Notifier
	newID  func() (string, error)
}

type Option func(*Controller)

func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.log = l
		}
	}
}

func WithNotifier(n Notifier) Option {
	return func(c *Controller) { c.notify = n }
}

// WithIDSource overrides how new client ids are minted.
func WithIDSource(fn func() (string, error)) Option {
	return func(c *Controller) {
		if fn != nil {
			c.newID = fn
		}
	}
}

func NewController(repo Repository, opts ...Option) *Controller {
	c := &Controller{
		repo:  repo,
		log:   slog.Default(),
		newID: identity.NewID,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Evaluate applies, in order, the slot capacity rule, the per-IP daily rule
// and the per-client daily rule, and inserts the reservation if all pass.
// Rejections come back as a Decision with a Reason; err is non-nil only for
// storage failures (*StorageError).
func (c *Controller) Evaluate(ctx context.Context, cand Candidate) (Decision, error) {
	var d Decision
	err := c.repo.WithDayLock(ctx, cand.Slot.Date, func(ctx context.Context) error {
		d = Decision{}
		reason, err := c.check(ctx, cand)
		if err != nil {
			return err
		}
		if reason != "" {
			d.Reason = reason
			return nil
		}

		res := &model.Reservation{
			Name:      cand.Name,
			Email:     cand.Email,
			Date:      cand.Slot.Date,
			Time:      cand.Slot.Time,
			IPAddress: cand.IP,
			ClientID:  cand.ClientID,
		}
		if res.ClientID == "" {
			id, err := c.newID()
			if err != nil {
				return fmt.Errorf("mint client id: %w", err)
			}
			res.ClientID = id
			d.IssuedClientID = id
		}
		if err := c.repo.Reservations().Insert(ctx, res); err != nil {
			return storageErr("insert", err)
		}
		d.Reservation = res
		return nil
	})
	if err != nil {
		c.log.ErrorContext(ctx, "admission failed", "slot", cand.Slot.String(), "err", err)
		return Decision{}, storageErr("admit", err)
	}

	if !d.Accepted() {
		c.log.InfoContext(ctx, "reservation rejected", "slot", cand.Slot.String(), "reason", string(d.Reason))
		return d, nil
	}

	c.log.InfoContext(ctx, "reservation accepted",
		"id", d.Reservation.ID, "slot", cand.Slot.String(), "new_client", d.IssuedClientID != "")
	if c.notify != nil {
		c.notify.ReservationConfirmed(ctx, *d.Reservation)
	}
	return d, nil
}

func (c *Controller) check(ctx context.Context, cand Candidate) (Reason, error) {
	repo := c.repo.Reservations()

	n, err := repo.CountBySlot(ctx, cand.Slot)
	if err != nil {
		return "", storageErr("count by slot", err)
	}
	if n >= model.MaxReservationsPerSlot {
		return SlotFull, nil
	}

	if cand.IP != "" {
		hit, err := repo.FindByIPAndDate(ctx, cand.IP, cand.Slot.Date)
		if err != nil {
			return "", storageErr("find by ip", err)
		}
		if hit != nil {
			return DuplicateIP, nil
		}
	}

	if cand.ClientID != "" {
		hit, err := repo.FindByClientAndDate(ctx, cand.ClientID, cand.Slot.Date)
		if err != nil {
			return "", storageErr("find by client", err)
		}
		if hit != nil {
			return DuplicateClient, nil
		}
	}
	return "", nil
}
