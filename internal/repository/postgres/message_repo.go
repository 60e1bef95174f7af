package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vedran77/konekt/internal/domain"
)

type MessageRepo struct {
	pool *pgxpool.Pool
}

func NewMessageRepo(pool *pgxpool.Pool) *MessageRepo {
	return &MessageRepo{pool: pool}
}

func (r *MessageRepo) Create(ctx context.Context, m *domain.Message) error {
	query := `
		INSERT INTO messages (id, thread_id, user_id, username, body, ts)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.pool.Exec(ctx, query,
		m.ID, m.ThreadID, m.UserID, m.Username, m.Body, m.Timestamp,
	)
	return err
}

func (r *MessageRepo) ListByThread(ctx context.Context, threadID uuid.UUID) ([]domain.Message, error) {
	// Timestamps are assigned by each writer independently, so ordering by
	// (ts, id) gives a stable read-back under concurrent senders.
	query := `SELECT id, thread_id, user_id, username, body, ts
		FROM messages WHERE thread_id = $1 ORDER BY ts, id`

	rows, err := r.pool.Query(ctx, query, threadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		var m domain.Message
		if err := rows.Scan(&m.ID, &m.ThreadID, &m.UserID, &m.Username, &m.Body, &m.Timestamp); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

func (r *MessageRepo) DeleteByThread(ctx context.Context, threadID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM messages WHERE thread_id = $1`, threadID)
	return err
}
