package store

import (
	"context"
	"strings"
	"unicode"
)

const (
	// titleMaxLength is the longest auto-generated title kept as-is.
	titleMaxLength = 48
	// titleCutLength is where longer titles are cut before the ellipsis.
	titleCutLength = 45
)

type Session struct {
	ID        int32
	SessionID string
	UserID    string
	Title     string
	// CreatedAt is epoch seconds with sub-second precision.
	CreatedAt float64
}

type FindSession struct {
	UserID *string

	// Pagination
	Pagination *Pagination
}

type UpdateSession struct {
	UserID    string
	SessionID string
	Title     *string
}

type DeleteSession struct {
	UserID    string
	SessionID string
}

// TruncateTitle turns a seed text into a session title.
// The seed is trimmed; seeds longer than 48 characters keep their first 45
// characters, right-trimmed, followed by "...".
func TruncateTitle(seed string) string {
	title := strings.TrimSpace(seed)
	runes := []rune(title)
	if len(runes) > titleMaxLength {
		title = strings.TrimRightFunc(string(runes[:titleCutLength]), unicode.IsSpace) + "..."
	}
	return title
}

// SetSessionTitleIfEmpty sets the title of a session from a seed text when it has none.
// It is a no-op when the session row does not exist or already has a title.
func (s *Store) SetSessionTitleIfEmpty(ctx context.Context, userID, sessionID, seed string) error {
	return s.driver.SetSessionTitleIfEmpty(ctx, userID, sessionID, TruncateTitle(seed))
}
