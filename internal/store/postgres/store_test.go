package postgres_test

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/require"

	"barber-reservation-api/internal/store"
	"barber-reservation-api/internal/store/postgres"
	"barber-reservation-api/internal/store/storetest"
)

func TestStore(t *testing.T) {
	_ = godotenv.Load("../../../.env")
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set")
	}

	storetest.Run(t, func(t *testing.T) store.Store {
		ctx := context.Background()
		pool, err := pgxpool.New(ctx, dbURL)
		require.NoError(t, err)
		t.Cleanup(pool.Close)
		if err := pool.Ping(ctx); err != nil {
			t.Skipf("postgres unreachable: %v", err)
		}

		st := postgres.New(pool)
		require.NoError(t, st.EnsureSchema(ctx))
		_, err = pool.Exec(ctx, `TRUNCATE reservations, admins RESTART IDENTITY`)
		require.NoError(t, err)
		return st
	})
}
