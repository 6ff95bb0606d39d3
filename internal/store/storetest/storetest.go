// Package storetest opens throwaway in-memory stores for tests
package storetest

import (
	"testing"

	"hopperai/chat-api/db"
	"hopperai/chat-api/internal/store"
	"hopperai/chat-api/pkg/util"

	"github.com/stretchr/testify/require"
)

// New returns a migrated store backed by a private in-memory SQLite database
// with foreign keys enforced. It is closed when the test ends.
func New(t *testing.T) *store.Store {
	t.Helper()

	dsn := "file:" + util.MustID(12) + "?mode=memory&cache=shared&_foreign_keys=on"

	gdb, err := db.New("sqlite", dsn)
	require.NoError(t, err)

	t.Cleanup(func() { db.Close(gdb) })

	return store.New(gdb)
}
