package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vytor/recallcards/internal/db"
)

// NewTestDB opens an in-memory SQLite database with all migrations applied.
func NewTestDB(t testing.TB) *db.DB {
	t.Helper()
	database, err := db.Open(":memory:")
	require.NoError(t, err)
	return database
}

// MustClose closes a resource and fails the test on error.
func MustClose(t testing.TB, closer interface{ Close() error }) {
	require.NoError(t, closer.Close())
}
