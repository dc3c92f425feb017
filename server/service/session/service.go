// Package session manages chat sessions: creation with server-generated ids,
// newest-first listing, renaming and cascading deletion.
package session

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/hrygo/lmchat/server/internal/errors"
	"github.com/hrygo/lmchat/store"
)

// IDPrefix starts every generated session id.
const IDPrefix = "sess_"

// Service defines the session operations exposed to the HTTP layer.
type Service interface {
	// Create stores a new session with a trimmed title and a fresh id.
	Create(ctx context.Context, userID, title string) (*store.Session, error)
	// List returns one page of the user's sessions, newest first.
	List(ctx context.Context, userID string, page, size int) ([]*store.Session, error)
	// Rename replaces the title. Unknown sessions are not an error.
	Rename(ctx context.Context, userID, sessionID, title string) (*store.Session, error)
	// Delete removes the session and all of its messages.
	Delete(ctx context.Context, userID, sessionID string) error
}

// Store is the interface for store operations needed by the session service.
type Store interface {
	CreateSession(ctx context.Context, create *store.Session) (*store.Session, error)
	ListSessions(ctx context.Context, find *store.FindSession) ([]*store.Session, error)
	UpdateSession(ctx context.Context, update *store.UpdateSession) error
	DeleteSession(ctx context.Context, delete *store.DeleteSession) error
}

type service struct {
	store Store
	ids   *idGenerator
}

// NewService creates a session service backed by the given store.
func NewService(store Store) Service {
	return &service{
		store: store,
		ids:   newIDGenerator(time.Now),
	}
}

func (s *service) Create(ctx context.Context, userID, title string) (*store.Session, error) {
	session, err := s.store.CreateSession(ctx, &store.Session{
		SessionID: s.ids.next(),
		UserID:    userID,
		Title:     strings.TrimSpace(title),
	})
	if err != nil {
		return nil, errors.Internal("failed to create session", err)
	}
	return session, nil
}

func (s *service) List(ctx context.Context, userID string, page, size int) ([]*store.Session, error) {
	pagination := &store.Pagination{Page: page, Size: size}
	pagination.Normalize()

	sessions, err := s.store.ListSessions(ctx, &store.FindSession{
		UserID:     &userID,
		Pagination: pagination,
	})
	if err != nil {
		return nil, errors.Internal("failed to list sessions", err)
	}
	return sessions, nil
}

func (s *service) Rename(ctx context.Context, userID, sessionID, title string) (*store.Session, error) {
	title = strings.TrimSpace(title)
	if err := s.store.UpdateSession(ctx, &store.UpdateSession{
		UserID:    userID,
		SessionID: sessionID,
		Title:     &title,
	}); err != nil {
		return nil, errors.Internal("failed to rename session", err)
	}
	return &store.Session{SessionID: sessionID, UserID: userID, Title: title}, nil
}

func (s *service) Delete(ctx context.Context, userID, sessionID string) error {
	if err := s.store.DeleteSession(ctx, &store.DeleteSession{
		UserID:    userID,
		SessionID: sessionID,
	}); err != nil {
		return errors.Internal("failed to delete session", err)
	}
	return nil
}

// idGenerator issues sess_<epoch millis> ids that never repeat within the
// process, even when two calls land in the same millisecond.
type idGenerator struct {
	last atomic.Int64
	now  func() time.Time
}

func newIDGenerator(now func() time.Time) *idGenerator {
	return &idGenerator{now: now}
}

func (g *idGenerator) next() string {
	for {
		last := g.last.Load()
		millis := g.now().UnixMilli()
		if millis <= last {
			millis = last + 1
		}
		if g.last.CompareAndSwap(last, millis) {
			return fmt.Sprintf("%s%d", IDPrefix, millis)
		}
	}
}
