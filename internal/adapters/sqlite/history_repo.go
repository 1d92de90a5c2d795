package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/bft-labs/blinkscan/internal/domain"
)

// HistoryRepository implements ports.HistoryRepository with SQLite.
type HistoryRepository struct {
	db *sql.DB
}

// NewHistoryRepository creates a new SQLite history repository.
func NewHistoryRepository(db *sql.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// Append persists msg and sets its ID.
func (r *HistoryRepository) Append(ctx context.Context, msg *domain.Message) error {
	if msg.Text == "" {
		return domain.ErrEmptyMessage
	}
	result, err := r.db.ExecContext(ctx,
		"INSERT INTO messages (text, sent_at) VALUES (?, ?)",
		msg.Text, msg.SentAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to append message: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read message id: %w", err)
	}
	msg.ID = id
	return nil
}

// Recent returns up to limit messages, newest first.
func (r *HistoryRepository) Recent(ctx context.Context, limit int) ([]domain.Message, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, text, sent_at FROM messages ORDER BY sent_at DESC, id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		var (
			msg    domain.Message
			sentAt int64
		)
		if err := rows.Scan(&msg.ID, &msg.Text, &sentAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		msg.SentAt = time.Unix(0, sentAt).UTC()
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return messages, nil
}

// PruneBefore deletes messages sent before cutoff.
func (r *HistoryRepository) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM messages WHERE sent_at < ?", cutoff.UnixNano())
	if err != nil {
		return 0, fmt.Errorf("failed to prune messages: %w", err)
	}
	n, _ := result.RowsAffected()
	return n, nil
}

// Count returns the number of stored messages.
func (r *HistoryRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM messages").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count messages: %w", err)
	}
	return n, nil
}

// Deliver stores msg, letting the repository act as a SEND sink.
func (r *HistoryRepository) Deliver(ctx context.Context, msg domain.Message) error {
	return r.Append(ctx, &msg)
}
