package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vedran77/konekt/internal/domain"
)

type ThreadRepo struct {
	pool *pgxpool.Pool
}

func NewThreadRepo(pool *pgxpool.Pool) *ThreadRepo {
	return &ThreadRepo{pool: pool}
}

// threadSelect aggregates the membership tables so a thread row carries its
// member and pending-request id sets in one round trip.
const threadSelect = `
	SELECT t.id, t.title, t.description, t.location, t.tags,
	       t.creator_id, t.creator_username, t.requires_approval,
	       t.expires_at, t.created_at,
	       COALESCE(m.user_ids, '{}'), COALESCE(p.user_ids, '{}')
	FROM threads t
	LEFT JOIN (
		SELECT thread_id, array_agg(user_id ORDER BY joined_at) AS user_ids
		FROM thread_members GROUP BY thread_id
	) m ON m.thread_id = t.id
	LEFT JOIN (
		SELECT thread_id, array_agg(user_id ORDER BY requested_at) AS user_ids
		FROM thread_join_requests GROUP BY thread_id
	) p ON p.thread_id = t.id`

func scanThread(row pgx.Row) (*domain.Thread, error) {
	var t domain.Thread
	err := row.Scan(
		&t.ID, &t.Title, &t.Description, &t.Location, &t.Tags,
		&t.CreatorID, &t.CreatorUsername, &t.RequiresApproval,
		&t.ExpiresAt, &t.CreatedAt, &t.Members, &t.PendingRequests,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *ThreadRepo) Create(ctx context.Context, t *domain.Thread) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO threads (id, title, description, location, tags, creator_id,
			creator_username, requires_approval, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err = tx.Exec(ctx, query,
		t.ID, t.Title, t.Description, t.Location, t.Tags, t.CreatorID,
		t.CreatorUsername, t.RequiresApproval, t.ExpiresAt, t.CreatedAt,
	)
	if err != nil {
		return err
	}

	for _, userID := range t.Members {
		_, err = tx.Exec(ctx,
			`INSERT INTO thread_members (thread_id, user_id, joined_at) VALUES ($1, $2, $3)
			 ON CONFLICT DO NOTHING`,
			t.ID, userID, t.CreatedAt,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *ThreadRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Thread, error) {
	t, err := scanThread(r.pool.QueryRow(ctx, threadSelect+` WHERE t.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return t, err
}

func (r *ThreadRepo) ListActive(ctx context.Context, now time.Time) ([]domain.Thread, error) {
	rows, err := r.pool.Query(ctx, threadSelect+` WHERE t.expires_at > $1 ORDER BY t.created_at DESC`, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var threads []domain.Thread
	for rows.Next() {
		t, err := scanThread(rows)
		if err != nil {
			return nil, err
		}
		threads = append(threads, *t)
	}
	return threads, rows.Err()
}

func (r *ThreadRepo) Update(ctx context.Context, t *domain.Thread) error {
	query := `UPDATE threads SET title = $1, description = $2, location = $3, tags = $4 WHERE id = $5`
	_, err := r.pool.Exec(ctx, query, t.Title, t.Description, t.Location, t.Tags, t.ID)
	return err
}

func (r *ThreadRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM messages WHERE thread_id = $1`, id); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM threads WHERE id = $1`, id); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *ThreadRepo) AddMember(ctx context.Context, threadID, userID uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO thread_members (thread_id, user_id, joined_at) VALUES ($1, $2, $3)
		 ON CONFLICT DO NOTHING`,
		threadID, userID, time.Now(),
	)
	if err != nil {
		return err
	}

	// A user is never in both sets at once.
	_, err = tx.Exec(ctx,
		`DELETE FROM thread_join_requests WHERE thread_id = $1 AND user_id = $2`,
		threadID, userID,
	)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *ThreadRepo) AddPendingRequest(ctx context.Context, threadID, userID uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO thread_join_requests (thread_id, user_id, requested_at) VALUES ($1, $2, $3)
		 ON CONFLICT DO NOTHING`,
		threadID, userID, time.Now(),
	)
	return err
}

func (r *ThreadRepo) RemovePendingRequest(ctx context.Context, threadID, userID uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM thread_join_requests WHERE thread_id = $1 AND user_id = $2`,
		threadID, userID,
	)
	return err
}

func (r *ThreadRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`DELETE FROM messages WHERE thread_id IN (SELECT id FROM threads WHERE expires_at <= $1)`,
		now,
	)
	if err != nil {
		return 0, err
	}

	tag, err := tx.Exec(ctx, `DELETE FROM threads WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
