package history

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hrygo/lmchat/store"
	teststore "github.com/hrygo/lmchat/store/test"
)

func seed(ctx context.Context, t *testing.T, ts *store.Store, userID, sessionID string, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		sender := store.SenderUser
		if i%2 == 1 {
			sender = store.SenderAI
		}
		_, err := ts.CreateMessage(ctx, &store.Message{
			UserID:    userID,
			SessionID: sessionID,
			Sender:    sender,
			Text:      fmt.Sprintf("m%d", i),
		})
		require.NoError(t, err)
	}
}

func TestServiceList(t *testing.T) {
	ctx := context.Background()
	ts := teststore.NewTestingStore(ctx, t)
	svc := NewService(ts)
	seed(ctx, t, ts, "u1", "s1", 5)

	all, err := svc.List(ctx, "u1", "s1", 1, 50)
	require.NoError(t, err)
	require.Len(t, all, 5)
	require.Equal(t, store.SenderUser, all[0].Sender)
	require.Equal(t, store.SenderAI, all[1].Sender)
	require.Equal(t, "m4", all[4].Text)

	page, err := svc.List(ctx, "u1", "s1", 2, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	require.Equal(t, "m2", page[0].Text)
	require.Equal(t, "m3", page[1].Text)

	clamped, err := svc.List(ctx, "u1", "s1", -5, -5)
	require.NoError(t, err)
	require.Len(t, clamped, 1)
	require.Equal(t, "m0", clamped[0].Text)

	empty, err := svc.List(ctx, "u1", "unknown", 1, 50)
	require.NoError(t, err)
	require.Empty(t, empty)
}

func TestServiceClear(t *testing.T) {
	ctx := context.Background()
	ts := teststore.NewTestingStore(ctx, t)
	svc := NewService(ts)

	_, err := ts.CreateSession(ctx, &store.Session{UserID: "u1", SessionID: "sess_1", Title: "Keep"})
	require.NoError(t, err)
	seed(ctx, t, ts, "u1", "sess_1", 3)
	seed(ctx, t, ts, "u2", "sess_1", 2)

	require.NoError(t, svc.Clear(ctx, "u1", "sess_1"))

	list, err := svc.List(ctx, "u1", "sess_1", 1, 50)
	require.NoError(t, err)
	require.Empty(t, list)

	// Other users and the session row are untouched.
	list, err = svc.List(ctx, "u2", "sess_1", 1, 50)
	require.NoError(t, err)
	require.Len(t, list, 2)

	userID := "u1"
	sessions, err := ts.ListSessions(ctx, &store.FindSession{UserID: &userID})
	require.NoError(t, err)
	require.Len(t, sessions, 1)
}
