// Package storetest holds the behaviour every store driver must share.
package storetest

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"barber-reservation-api/internal/model"
	"barber-reservation-api/internal/store"
)

// Run exercises a fresh, empty store returned by open.
func Run(t *testing.T, open func(t *testing.T) store.Store) {
	t.Run("reservation crud", func(t *testing.T) { testReservationCRUD(t, open(t)) })
	t.Run("reservation queries", func(t *testing.T) { testReservationQueries(t, open(t)) })
	t.Run("occupancy", func(t *testing.T) { testOccupancy(t, open(t)) })
	t.Run("day lock rollback", func(t *testing.T) { testDayLockRollback(t, open(t)) })
	t.Run("day lock serialises", func(t *testing.T) { testDayLockSerialises(t, open(t)) })
	t.Run("admins", func(t *testing.T) { testAdmins(t, open(t)) })
}

func reservation(name, date, clock, ip, client string) *model.Reservation {
	return &model.Reservation{
		Name: name, Email: name + "@example.com",
		Date: date, Time: clock, IPAddress: ip, ClientID: client,
	}
}

func testReservationCRUD(t *testing.T, st store.Store) {
	ctx := context.Background()
	repo := st.Reservations()

	r := reservation("ana", "2024-05-01", "10:00", "1.2.3.4", "abc")
	require.NoError(t, repo.Insert(ctx, r))
	require.NotZero(t, r.ID)
	require.False(t, r.CreatedAt.IsZero())

	got, err := repo.Get(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, r.Name, got.Name)
	assert.Equal(t, r.Email, got.Email)
	assert.Equal(t, "2024-05-01", got.Date)
	assert.Equal(t, "10:00", got.Time)
	assert.Equal(t, "1.2.3.4", got.IPAddress)
	assert.Equal(t, "abc", got.ClientID)

	got.Name = "ana maria"
	got.Time = "11:00"
	require.NoError(t, repo.Update(ctx, got))
	again, err := repo.Get(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "ana maria", again.Name)
	assert.Equal(t, "11:00", again.Time)
	assert.Equal(t, "1.2.3.4", again.IPAddress, "ip survives update")

	second := reservation("bo", "2024-04-30", "09:00", "", "")
	require.NoError(t, repo.Insert(ctx, second))
	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, second.ID, all[0].ID, "list is ordered by date")
	assert.Empty(t, all[0].IPAddress)
	assert.Empty(t, all[0].ClientID)

	day, err := repo.ListByDate(ctx, "2024-04-30")
	require.NoError(t, err)
	require.Len(t, day, 1)
	assert.Equal(t, second.ID, day[0].ID)
	none, err := repo.ListByDate(ctx, "1999-01-01")
	require.NoError(t, err)
	assert.Empty(t, none)

	require.NoError(t, repo.Delete(ctx, r.ID))
	_, err = repo.Get(ctx, r.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, r.ID), store.ErrNotFound)
	assert.ErrorIs(t, repo.Update(ctx, r), store.ErrNotFound)
}

func testReservationQueries(t *testing.T, st store.Store) {
	ctx := context.Background()
	repo := st.Reservations()
	slot := model.SlotKey{Date: "2024-05-01", Time: "10:00"}

	n, err := repo.CountBySlot(ctx, slot)
	require.NoError(t, err)
	assert.Zero(t, n)

	require.NoError(t, repo.Insert(ctx, reservation("a", "2024-05-01", "10:00", "1.2.3.4", "abc")))
	require.NoError(t, repo.Insert(ctx, reservation("b", "2024-05-01", "10:00", "5.6.7.8", "")))
	require.NoError(t, repo.Insert(ctx, reservation("c", "2024-05-01", "11:00", "9.9.9.9", "")))

	n, err = repo.CountBySlot(ctx, slot)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	hit, err := repo.FindByIPAndDate(ctx, "1.2.3.4", "2024-05-01")
	require.NoError(t, err)
	require.NotNil(t, hit)
	assert.Equal(t, "a", hit.Name)

	miss, err := repo.FindByIPAndDate(ctx, "1.2.3.4", "2024-05-02")
	require.NoError(t, err)
	assert.Nil(t, miss)

	hit, err = repo.FindByClientAndDate(ctx, "abc", "2024-05-01")
	require.NoError(t, err)
	require.NotNil(t, hit)
	assert.Equal(t, "a", hit.Name)

	// absent client ids are stored as NULL and never match
	miss, err = repo.FindByClientAndDate(ctx, "", "2024-05-01")
	require.NoError(t, err)
	assert.Nil(t, miss)
}

func testOccupancy(t *testing.T, st store.Store) {
	ctx := context.Background()
	repo := st.Reservations()
	for _, clock := range []string{"14:00", "09:00", "14:00"} {
		require.NoError(t, repo.Insert(ctx, reservation("x", "2024-05-03", clock, "", "")))
	}
	require.NoError(t, repo.Insert(ctx, reservation("y", "2024-05-04", "09:00", "", "")))

	got, err := repo.Occupancy(ctx, "2024-05-03")
	require.NoError(t, err)
	assert.Equal(t, []store.SlotCount{{Time: "09:00", Count: 1}, {Time: "14:00", Count: 2}}, got)
}

func testDayLockRollback(t *testing.T, st store.Store) {
	ctx := context.Background()
	boom := errors.New("boom")

	err := st.WithDayLock(ctx, "2024-05-01", func(ctx context.Context) error {
		require.NoError(t, st.Reservations().Insert(ctx, reservation("a", "2024-05-01", "10:00", "", "")))
		return boom
	})
	require.ErrorIs(t, err, boom)

	n, err := st.Reservations().CountBySlot(ctx, model.SlotKey{Date: "2024-05-01", Time: "10:00"})
	require.NoError(t, err)
	assert.Zero(t, n, "insert rolled back")
}

// testDayLockSerialises runs racing read-modify-write units of work; without
// mutual exclusion some of them would observe the same count.
func testDayLockSerialises(t *testing.T, st store.Store) {
	ctx := context.Background()
	slot := model.SlotKey{Date: "2024-06-01", Time: "10:00"}
	const workers = 8

	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- st.WithDayLock(ctx, slot.Date, func(ctx context.Context) error {
				n, err := st.Reservations().CountBySlot(ctx, slot)
				if err != nil {
					return err
				}
				if n >= 3 {
					return nil
				}
				return st.Reservations().Insert(ctx, reservation("w", slot.Date, slot.Time, "", ""))
			})
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	n, err := st.Reservations().CountBySlot(ctx, slot)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func testAdmins(t *testing.T, st store.Store) {
	ctx := context.Background()
	repo := st.Admins()

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	a := &model.Admin{Username: "boss", PasswordHash: "hash-1"}
	require.NoError(t, repo.Create(ctx, a))
	require.NotZero(t, a.ID)

	dup := &model.Admin{Username: "boss", PasswordHash: "hash-2"}
	assert.ErrorIs(t, repo.Create(ctx, dup), store.ErrAlreadyExists)

	got, err := repo.ByUsername(ctx, "boss")
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)
	assert.Equal(t, "hash-1", got.PasswordHash)

	_, err = repo.ByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, store.ErrNotFound)

	b := &model.Admin{Username: "second", PasswordHash: "hash-3"}
	require.NoError(t, repo.Create(ctx, b))

	b.Username = "boss"
	assert.ErrorIs(t, repo.Update(ctx, b), store.ErrAlreadyExists)

	b.Username = "deputy"
	b.PasswordHash = "hash-4"
	require.NoError(t, repo.Update(ctx, b))
	got, err = repo.Get(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "deputy", got.Username)
	assert.Equal(t, "hash-4", got.PasswordHash)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "boss", list[0].Username)

	require.NoError(t, repo.Delete(ctx, a.ID))
	assert.ErrorIs(t, repo.Delete(ctx, a.ID), store.ErrNotFound)
	_, err = repo.Get(ctx, a.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	ghost := &model.Admin{ID: a.ID, Username: "ghost", PasswordHash: "x"}
	assert.ErrorIs(t, repo.Update(ctx, ghost), store.ErrNotFound)
}
