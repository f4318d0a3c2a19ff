package booking

import (
	"context"
	"errors"

	"barber-reservation-api/internal/model"
	"barber-reservation-api/internal/store"
)

func mapErr(op string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrSlotFull) {
		return err
	}
	return storageErr(op, err)
}

func (c *Controller) List(ctx context.Context) ([]model.Reservation, error) {
	out, err := c.repo.Reservations().List(ctx)
	if err != nil {
		return nil, mapErr("list", err)
	}
	return out, nil
}

// ListByDate returns the reservations of one day ordered by time.
func (c *Controller) ListByDate(ctx context.Context, date string) ([]model.Reservation, error) {
	out, err := c.repo.Reservations().ListByDate(ctx, date)
	if err != nil {
		return nil, mapErr("list by date", err)
	}
	return out, nil
}

func (c *Controller) Get(ctx context.Context, id int64) (*model.Reservation, error) {
	r, err := c.repo.Reservations().Get(ctx, id)
	if err != nil {
		return nil, mapErr("get", err)
	}
	return r, nil
}

// Changes is an admin edit of a reservation. IP and client id never change.
type Changes struct {
	Name  string
	Email string
	Slot  model.SlotKey
}

// Update applies ch to reservation id. Moving the reservation into another
// slot is subject to the same capacity rule as a new booking; the throttles
// do not apply to admin edits.
func (c *Controller) Update(ctx context.Context, id int64, ch Changes) (*model.Reservation, error) {
	var out *model.Reservation
	err := c.repo.WithDayLock(ctx, ch.Slot.Date, func(ctx context.Context) error {
		repo := c.repo.Reservations()
		cur, err := repo.Get(ctx, id)
		if err != nil {
			return err
		}

		if cur.Slot() != ch.Slot {
			n, err := repo.CountBySlot(ctx, ch.Slot)
			if err != nil {
				return err
			}
			if n >= model.MaxReservationsPerSlot {
				return ErrSlotFull
			}
		}

		cur.Name, cur.Email = ch.Name, ch.Email
		cur.Date, cur.Time = ch.Slot.Date, ch.Slot.Time
		if err := repo.Update(ctx, cur); err != nil {
			return err
		}
		out = cur
		return nil
	})
	if err != nil {
		return nil, mapErr("update", err)
	}
	c.log.InfoContext(ctx, "reservation updated", "id", id, "slot", ch.Slot.String())
	return out, nil
}

func (c *Controller) Delete(ctx context.Context, id int64) error {
	if err := c.repo.Reservations().Delete(ctx, id); err != nil {
		return mapErr("delete", err)
	}
	c.log.InfoContext(ctx, "reservation deleted", "id", id)
	return nil
}

// Availability is the occupancy of one booked time on a date.
type Availability struct {
	Time      string `json:"time"`
	Booked    int    `json:"booked"`
	Remaining int    `json:"remaining"`
}

// Occupancy lists the times on date that already hold reservations. Times
// not listed are fully open.
func (c *Controller) Occupancy(ctx context.Context, date string) ([]Availability, error) {
	counts, err := c.repo.Reservations().Occupancy(ctx, date)
	if err != nil {
		return nil, mapErr("occupancy", err)
	}
	out := make([]Availability, 0, len(counts))
	for _, sc := range counts {
		left := model.MaxReservationsPerSlot - sc.Count
		if left < 0 {
			left = 0
		}
		out = append(out, Availability{Time: sc.Time, Booked: sc.Count, Remaining: left})
	}
	return out, nil
}
