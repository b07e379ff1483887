package database_test

import (
	"errors"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/modlog/modlog/internal/database"
	"github.com/stretchr/testify/require"
)

func TestDBErr(t *testing.T) {
	t.Parallel()

	require.NoError(t, database.DBErr(nil))

	require.ErrorIs(t, database.DBErr(pgx.ErrNoRows), database.ErrNoResult)

	dupe := &pgconn.PgError{Code: pgerrcode.UniqueViolation}
	require.ErrorIs(t, database.DBErr(dupe), database.ErrDuplicate)

	check := &pgconn.PgError{Code: pgerrcode.CheckViolation, Message: "check failed"}
	require.Equal(t, check, database.DBErr(check))

	plain := errors.New("boom")
	require.Equal(t, plain, database.DBErr(plain))
}

func TestNotConnected(t *testing.T) {
	t.Parallel()

	db := database.New("postgresql://invalid", false, false, 0)

	_, errQuery := db.Query(t.Context(), "SELECT 1")
	require.ErrorIs(t, errQuery, database.ErrNotConnected)

	var value int
	require.ErrorIs(t, db.QueryRow(t.Context(), "SELECT 1").Scan(&value), database.ErrNotConnected)

	require.ErrorIs(t, db.Exec(t.Context(), "SELECT 1"), database.ErrNotConnected)
}
