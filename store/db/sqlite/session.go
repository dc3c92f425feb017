package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hrygo/lmchat/store"
)

type sessionRow struct {
	ID        int32   `db:"id"`
	SessionID string  `db:"session_id"`
	UserID    string  `db:"user_id"`
	Title     string  `db:"title"`
	CreatedAt float64 `db:"created_at"`
}

func (d *DB) CreateSession(ctx context.Context, create *store.Session) (*store.Session, error) {
	if create.CreatedAt == 0 {
		create.CreatedAt = epochSeconds(time.Now())
	}

	fields := []string{"session_id", "user_id", "title", "created_at"}
	args := []any{create.SessionID, create.UserID, create.Title, create.CreatedAt}

	stmt := `INSERT INTO sessions (` + strings.Join(fields, ", ") + `)
		VALUES (` + placeholders(len(args)) + `)
		RETURNING id`
	if err := d.db.QueryRowContext(ctx, stmt, args...).Scan(&create.ID); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return create, nil
}

func (d *DB) ListSessions(ctx context.Context, find *store.FindSession) ([]*store.Session, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.UserID; v != nil {
		where, args = append(where, "user_id = "+placeholder(len(args)+1)), append(args, *v)
	}

	query := `SELECT id, COALESCE(session_id, '') AS session_id, COALESCE(user_id, '') AS user_id,
			COALESCE(title, '') AS title, COALESCE(created_at, 0) AS created_at
		FROM sessions
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY created_at DESC, id DESC`
	if p := find.Pagination; p != nil {
		query = fmt.Sprintf("%s LIMIT %d OFFSET %d", query, p.Limit(), p.Offset())
	}

	rows := []sessionRow{}
	if err := d.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	list := make([]*store.Session, 0, len(rows))
	for _, row := range rows {
		list = append(list, &store.Session{
			ID:        row.ID,
			SessionID: row.SessionID,
			UserID:    row.UserID,
			Title:     row.Title,
			CreatedAt: row.CreatedAt,
		})
	}
	return list, nil
}

func (d *DB) UpdateSession(ctx context.Context, update *store.UpdateSession) error {
	set, args := []string{}, []any{}

	if update.Title != nil {
		set, args = append(set, "title = "+placeholder(len(args)+1)), append(args, *update.Title)
	}
	if len(set) == 0 {
		return fmt.Errorf("no fields to update")
	}

	args = append(args, update.UserID, update.SessionID)
	stmt := `UPDATE sessions SET ` + strings.Join(set, ", ") + ` WHERE user_id = ? AND session_id = ?`
	if _, err := d.db.ExecContext(ctx, stmt, args...); err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}
	return nil
}

func (d *DB) DeleteSession(ctx context.Context, delete *store.DeleteSession) error {
	tx, err := d.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	// Delete messages first
	if _, err := tx.ExecContext(ctx, `DELETE FROM messages WHERE user_id = ? AND session_id = ?`, delete.UserID, delete.SessionID); err != nil {
		return fmt.Errorf("failed to delete messages: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM sessions WHERE user_id = ? AND session_id = ?`, delete.UserID, delete.SessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit session delete: %w", err)
	}
	return nil
}

func (d *DB) SetSessionTitleIfEmpty(ctx context.Context, userID, sessionID, title string) error {
	stmt := `UPDATE sessions SET title = ?
		WHERE user_id = ? AND session_id = ? AND (title IS NULL OR title = '')`
	if _, err := d.db.ExecContext(ctx, stmt, title, userID, sessionID); err != nil {
		return fmt.Errorf("failed to set session title: %w", err)
	}
	return nil
}
