// Package history reads and clears the messages of a (user, session) pair.
package history

import (
	"context"

	"github.com/hrygo/lmchat/server/internal/errors"
	"github.com/hrygo/lmchat/store"
)

// Service defines the history operations exposed to the HTTP layer.
type Service interface {
	// List returns one page of messages in insertion order.
	List(ctx context.Context, userID, sessionID string, page, size int) ([]*store.Message, error)
	// Clear deletes every message of the session. The session row is kept.
	Clear(ctx context.Context, userID, sessionID string) error
}

// Store is the interface for store operations needed by the history service.
type Store interface {
	ListMessages(ctx context.Context, find *store.FindMessage) ([]*store.Message, error)
	DeleteMessages(ctx context.Context, delete *store.DeleteMessage) error
}

type service struct {
	store Store
}

// NewService creates a history service backed by the given store.
func NewService(store Store) Service {
	return &service{store: store}
}

func (s *service) List(ctx context.Context, userID, sessionID string, page, size int) ([]*store.Message, error) {
	pagination := &store.Pagination{Page: page, Size: size}
	pagination.Normalize()

	messages, err := s.store.ListMessages(ctx, &store.FindMessage{
		UserID:     userID,
		SessionID:  sessionID,
		Pagination: pagination,
	})
	if err != nil {
		return nil, errors.Internal("failed to list history", err)
	}
	return messages, nil
}

func (s *service) Clear(ctx context.Context, userID, sessionID string) error {
	if err := s.store.DeleteMessages(ctx, &store.DeleteMessage{
		UserID:    userID,
		SessionID: sessionID,
	}); err != nil {
		return errors.Internal("failed to clear history", err)
	}
	return nil
}
