package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hrygo/lmchat/store"
)

type messageRow struct {
	ID        int64   `db:"id"`
	UserID    string  `db:"user_id"`
	SessionID string  `db:"session_id"`
	Sender    string  `db:"sender"`
	Text      string  `db:"text"`
	Timestamp float64 `db:"timestamp"`
}

func (d *DB) CreateMessage(ctx context.Context, create *store.Message) (*store.Message, error) {
	if create.Timestamp == 0 {
		create.Timestamp = epochSeconds(time.Now())
	}

	fields := []string{"user_id", "session_id", "sender", "text", "timestamp"}
	args := []any{create.UserID, create.SessionID, string(create.Sender), create.Text, create.Timestamp}

	stmt := `INSERT INTO messages (` + strings.Join(fields, ", ") + `)
		VALUES (` + placeholders(len(args)) + `)
		RETURNING id`
	if err := d.db.QueryRowContext(ctx, stmt, args...).Scan(&create.ID); err != nil {
		return nil, fmt.Errorf("failed to create message: %w", err)
	}

	return create, nil
}

func (d *DB) ListMessages(ctx context.Context, find *store.FindMessage) ([]*store.Message, error) {
	query := `SELECT id, COALESCE(user_id, '') AS user_id, COALESCE(session_id, '') AS session_id,
			COALESCE(sender, '') AS sender, COALESCE(text, '') AS text, COALESCE(timestamp, 0) AS timestamp
		FROM messages
		WHERE user_id = ? AND session_id = ?
		ORDER BY id ASC`
	if p := find.Pagination; p != nil {
		query = fmt.Sprintf("%s LIMIT %d OFFSET %d", query, p.Limit(), p.Offset())
	}

	rows := []messageRow{}
	if err := d.db.SelectContext(ctx, &rows, query, find.UserID, find.SessionID); err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	list := make([]*store.Message, 0, len(rows))
	for _, row := range rows {
		list = append(list, &store.Message{
			ID:        row.ID,
			UserID:    row.UserID,
			SessionID: row.SessionID,
			Sender:    store.Sender(row.Sender),
			Text:      row.Text,
			Timestamp: row.Timestamp,
		})
	}
	return list, nil
}

func (d *DB) DeleteMessages(ctx context.Context, delete *store.DeleteMessage) error {
	stmt := `DELETE FROM messages WHERE user_id = ? AND session_id = ?`
	if _, err := d.db.ExecContext(ctx, stmt, delete.UserID, delete.SessionID); err != nil {
		return fmt.Errorf("failed to delete messages: %w", err)
	}
	return nil
}
