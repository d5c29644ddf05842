package sqlite

import (
	"context"
	"fmt"

	"github.com/ericfisherdev/anonbox/internal/domain/model"
	"github.com/ericfisherdev/anonbox/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.InboxStore = (*InboxRepo)(nil)

// InboxRepo is the SQLite implementation of the InboxStore port interface.
// Messages form an append-only log per account ordered by seq; deletion
// removes a row by id without touching the order of the others.
type InboxRepo struct {
	db *DB
}

// NewInboxRepo creates a new InboxRepo backed by the given DB.
func NewInboxRepo(db *DB) *InboxRepo {
	return &InboxRepo{db: db}
}

// Append inserts msg only if its account is verified and accepting at the
// moment of the write. The check and the insert are one statement, so a
// concurrent toggle either precedes it entirely or follows it.
func (r *InboxRepo) Append(ctx context.Context, msg model.Message) error {
	const query = `
		INSERT INTO messages (id, account_id, content, created_at)
		SELECT ?, id, ?, ?
		FROM accounts
		WHERE id = ? AND accepting_messages = 1 AND verification_state = 'verified'`

	result, err := r.db.Writer.ExecContext(ctx, query,
		msg.ID, msg.Content, formatTime(msg.CreatedAt), msg.AccountID,
	)
	if err != nil {
		return fmt.Errorf("append message to %s: %w", msg.AccountID, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("append message to %s: %w", msg.AccountID, driven.ErrRecipientClosed)
	}

	return nil
}

// List returns all messages of accountID in insertion order.
func (r *InboxRepo) List(ctx context.Context, accountID string) ([]model.Message, error) {
	const query = `SELECT seq, id, account_id, content, created_at FROM messages WHERE account_id = ? ORDER BY seq`

	rows, err := r.db.Reader.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("list messages for %s: %w", accountID, err)
	}
	defer rows.Close()

	var msgs []model.Message
	for rows.Next() {
		var msg model.Message
		var createdAt string

		if err := rows.Scan(&msg.Seq, &msg.ID, &msg.AccountID, &msg.Content, &createdAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}

		msg.CreatedAt, err = parseTime(createdAt)
		if err != nil {
			return nil, fmt.Errorf("parse created_at: %w", err)
		}

		msgs = append(msgs, msg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}

	return msgs, nil
}

// Delete removes the message with messageID from accountID's inbox.
func (r *InboxRepo) Delete(ctx context.Context, accountID, messageID string) error {
	const query = `DELETE FROM messages WHERE account_id = ? AND id = ?`

	result, err := r.db.Writer.ExecContext(ctx, query, accountID, messageID)
	if err != nil {
		return fmt.Errorf("delete message %s: %w", messageID, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("delete message %s: %w", messageID, driven.ErrMessageNotFound)
	}

	return nil
}
