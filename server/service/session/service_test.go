package session

import (
	"context"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hrygo/lmchat/server/internal/errors"
	"github.com/hrygo/lmchat/store"
	teststore "github.com/hrygo/lmchat/store/test"
)

var sessionIDPattern = regexp.MustCompile(`^sess_\d+$`)

func TestServiceCreateAndList(t *testing.T) {
	ctx := context.Background()
	svc := NewService(teststore.NewTestingStore(ctx, t))

	first, err := svc.Create(ctx, "u1", "  Trip planning  ")
	require.NoError(t, err)
	require.Regexp(t, sessionIDPattern, first.SessionID)
	require.Equal(t, "Trip planning", first.Title)

	second, err := svc.Create(ctx, "u1", "")
	require.NoError(t, err)
	require.NotEqual(t, first.SessionID, second.SessionID)
	require.Equal(t, "", second.Title)

	_, err = svc.Create(ctx, "u2", "Other user")
	require.NoError(t, err)

	list, err := svc.List(ctx, "u1", 1, 20)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.GreaterOrEqual(t, list[0].CreatedAt, list[1].CreatedAt)

	// Clamped pagination returns the newest session only.
	list, err = svc.List(ctx, "u1", 0, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)

	list, err = svc.List(ctx, "nobody", 1, 20)
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestServiceRenameAndDelete(t *testing.T) {
	ctx := context.Background()
	ts := teststore.NewTestingStore(ctx, t)
	svc := NewService(ts)

	created, err := svc.Create(ctx, "u1", "Old")
	require.NoError(t, err)

	renamed, err := svc.Rename(ctx, "u1", created.SessionID, "  New title ")
	require.NoError(t, err)
	require.Equal(t, created.SessionID, renamed.SessionID)
	require.Equal(t, "New title", renamed.Title)

	list, err := svc.List(ctx, "u1", 1, 20)
	require.NoError(t, err)
	require.Equal(t, "New title", list[0].Title)

	// Renaming a missing session echoes the input.
	renamed, err = svc.Rename(ctx, "u1", "sess_missing", "x")
	require.NoError(t, err)
	require.Equal(t, "x", renamed.Title)

	_, err = ts.CreateMessage(ctx, &store.Message{UserID: "u1", SessionID: created.SessionID, Sender: store.SenderUser, Text: "hi"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, "u1", created.SessionID))
	list, err = svc.List(ctx, "u1", 1, 20)
	require.NoError(t, err)
	require.Empty(t, list)

	messages, err := ts.ListMessages(ctx, &store.FindMessage{UserID: "u1", SessionID: created.SessionID})
	require.NoError(t, err)
	require.Empty(t, messages)

	// Deleting again is a no-op.
	require.NoError(t, svc.Delete(ctx, "u1", created.SessionID))
}

type failingStore struct {
	Store
	err error
}

func (f *failingStore) CreateSession(context.Context, *store.Session) (*store.Session, error) {
	return nil, f.err
}

func TestServiceStoreFailure(t *testing.T) {
	svc := NewService(&failingStore{err: context.DeadlineExceeded})

	_, err := svc.Create(context.Background(), "u1", "t")
	require.Error(t, err)
	require.True(t, errors.IsCode(err, errors.ErrCodeInternal))
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestIDGeneratorMonotonic(t *testing.T) {
	frozen := time.UnixMilli(1700000000000)
	gen := newIDGenerator(func() time.Time { return frozen })

	require.Equal(t, "sess_1700000000000", gen.next())
	require.Equal(t, "sess_1700000000001", gen.next())
	require.Equal(t, "sess_1700000000002", gen.next())
}

func TestIDGeneratorConcurrent(t *testing.T) {
	gen := newIDGenerator(time.Now)

	const workers, perWorker = 8, 200
	var (
		mu   sync.Mutex
		seen = make(map[string]struct{}, workers*perWorker)
		wg   sync.WaitGroup
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				id := gen.next()
				mu.Lock()
				seen[id] = struct{}{}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Len(t, seen, workers*perWorker)
	for id := range seen {
		require.Regexp(t, sessionIDPattern, id)
	}
}
