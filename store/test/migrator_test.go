package test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hrygo/lmchat/store"
)

func indexNames(ctx context.Context, t *testing.T, driver store.Driver) []string {
	t.Helper()
	names := []string{}
	rows, err := driver.GetDB().QueryContext(ctx, "SELECT name FROM sqlite_master WHERE type = 'index' AND name LIKE 'idx_%' ORDER BY name")
	require.NoError(t, err)
	defer rows.Close()
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		names = append(names, name)
	}
	require.NoError(t, rows.Err())
	return names
}

func TestMigrateIsIdempotent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	ts, driver := newTestingStoreWithDriver(ctx, t)

	initialized, err := driver.IsInitialized(ctx)
	require.NoError(t, err)
	require.True(t, initialized)

	// A second boot against the same file must not fail or drop data.
	_, err = ts.CreateSession(ctx, newSession("u1", "sess_1", "kept"))
	require.NoError(t, err)
	require.NoError(t, ts.Migrate(ctx))

	list, err := ts.ListSessions(ctx, findSessions("u1", nil))
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestMigrateCreatesIndexes(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	_, driver := newTestingStoreWithDriver(ctx, t)

	require.Equal(t, []string{"idx_messages_user_session", "idx_sessions_user"}, indexNames(ctx, t, driver))
}

func TestMigrateRestoresMissingIndexes(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	ts, driver := newTestingStoreWithDriver(ctx, t)

	// A file that has both tables but was created without the indexes.
	for _, stmt := range []string{"DROP INDEX idx_sessions_user", "DROP INDEX idx_messages_user_session"} {
		_, err := driver.GetDB().ExecContext(ctx, stmt)
		require.NoError(t, err)
	}
	require.Empty(t, indexNames(ctx, t, driver))

	require.NoError(t, ts.Migrate(ctx))
	require.Equal(t, []string{"idx_messages_user_session", "idx_sessions_user"}, indexNames(ctx, t, driver))
}
