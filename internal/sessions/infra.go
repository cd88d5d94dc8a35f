package sessions

import (
	"context"
	"database/sql"
	"time"
)

type sessionRepo struct {
	db *sql.DB
}

func NewSessionRepo(db *sql.DB) Repo {
	return &sessionRepo{db: db}
}

func (r *sessionRepo) Create(ctx context.Context, s Session) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sessions (id, user_id, display_name, created_at, last_seen_at)
		VALUES ($1, $2, $3, $4, $4)
	`, s.ID, s.UserID, s.DisplayName, s.CreatedAt)
	return err
}

func (r *sessionRepo) Get(ctx context.Context, id string) (Session, error) {
	var (
		s       Session
		endedAt sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, display_name, created_at, last_seen_at, ended_at
		FROM sessions
		WHERE id = $1
	`, id).Scan(&s.ID, &s.UserID, &s.DisplayName, &s.CreatedAt, &s.LastSeenAt, &endedAt)
	if err != nil {
		return Session{}, err
	}
	if endedAt.Valid {
		s.EndedAt = &endedAt.Time
	}
	return s, nil
}

func (r *sessionRepo) Touch(ctx context.Context, id string, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE sessions SET last_seen_at = $1 WHERE id = $2 AND ended_at IS NULL
	`, at, id)
	return err
}

func (r *sessionRepo) End(ctx context.Context, id string, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE sessions SET ended_at = $1 WHERE id = $2 AND ended_at IS NULL
	`, at, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *sessionRepo) EndIdleBefore(ctx context.Context, cutoff time.Time) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		UPDATE sessions
		SET ended_at = now()
		WHERE ended_at IS NULL AND last_seen_at < $1
		RETURNING id
	`, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
